package tracing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ernestbuffington/embedkit/internal/shared/id"
)

type ctxKey int

const (
	ctxTrace ctxKey = iota
	ctxSpan
)

// Span is one timed operation within a request.
type Span struct {
	Trace    string
	ID       string
	Parent   string
	Name     string
	Start    time.Time
	Duration time.Duration
	Tags     map[string]string
	Status   int
	Err      error
}

// SetTag attaches a key/value pair to the span.
func (s *Span) SetTag(key, value string) { s.Tags[key] = value }

// SetStatus records the HTTP status the operation produced.
func (s *Span) SetStatus(code int) { s.Status = code }

// SetError marks the span failed.
func (s *Span) SetError(err error) {
	s.Err = err
	if s.Status < 500 {
		s.Status = 500
	}
}

// Tracer mints spans and exports finished ones through the logger.
type Tracer struct {
	service string
	log     *zap.Logger
	out     chan *Span
}

// New creates a tracer and starts its export goroutine.
func New(service string, logger *zap.Logger) *Tracer {
	t := &Tracer{
		service: service,
		log:     logger,
		out:     make(chan *Span, 1024),
	}
	go t.export()
	return t
}

// StartSpan opens a span under whatever trace the context carries,
// minting a fresh trace ID for root requests. The returned context
// parents any span opened beneath it.
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	trace, _ := ctx.Value(ctxTrace).(string)
	if trace == "" {
		trace = string(id.NewRequestID())
	}
	parent, _ := ctx.Value(ctxSpan).(string)

	s := &Span{
		Trace:  trace,
		ID:     string(id.NewRequestID()),
		Parent: parent,
		Name:   name,
		Start:  time.Now(),
		Tags:   make(map[string]string),
	}
	ctx = context.WithValue(ctx, ctxTrace, trace)
	ctx = context.WithValue(ctx, ctxSpan, s.ID)
	return s, ctx
}

// End closes the span and queues it for export. Export never blocks
// request handling; under pressure spans drop, requests do not.
func (t *Tracer) End(s *Span) {
	s.Duration = time.Since(s.Start)
	select {
	case t.out <- s:
	default:
		t.log.Warn("span dropped, export queue full",
			zap.String("trace", s.Trace),
			zap.String("operation", s.Name))
	}
}

func (t *Tracer) export() {
	for s := range t.out {
		fields := []zap.Field{
			zap.String("trace", s.Trace),
			zap.String("span", s.ID),
			zap.String("operation", s.Name),
			zap.String("service", t.service),
			zap.Duration("duration", s.Duration),
			zap.Int("status", s.Status),
		}
		if s.Parent != "" {
			fields = append(fields, zap.String("parent", s.Parent))
		}
		for k, v := range s.Tags {
			fields = append(fields, zap.String(k, v))
		}
		if s.Err != nil {
			t.log.Error("span", append(fields, zap.Error(s.Err))...)
			continue
		}
		t.log.Info("span", fields...)
	}
}

// TraceFrom returns the trace ID the context carries, or "".
func TraceFrom(ctx context.Context) string {
	trace, _ := ctx.Value(ctxTrace).(string)
	return trace
}
