package convert

import (
	"errors"
	"fmt"

	"github.com/ernestbuffington/embedkit/internal/dom"
	"github.com/ernestbuffington/embedkit/internal/shared/types"
)

// ErrUnsupported means no strategy in the chain accepted the response.
var ErrUnsupported = errors.New("no conversion for response")

// Strategy converts one family of provider responses. Convert reports
// ok=false to decline, passing the response to the next strategy.
type Strategy interface {
	Name() string
	Convert(resp *types.ProviderResponse) (*dom.Fragment, bool, error)
}

// Chain tries strategies in order and returns the first produced
// fragment.
type Chain struct {
	strategies []Strategy
}

// NewChain creates a chain from the given strategies.
func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// DefaultChain returns the standard policy: photo, then video/rich.
func DefaultChain() *Chain {
	return NewChain(&PhotoStrategy{}, &MediaStrategy{})
}

// WithPrepended returns a new chain trying extra before the receiver's
// strategies. The receiver is unchanged, so definitions can extend the
// shared default without affecting each other.
func (c *Chain) WithPrepended(extra ...Strategy) *Chain {
	merged := make([]Strategy, 0, len(extra)+len(c.strategies))
	merged = append(merged, extra...)
	merged = append(merged, c.strategies...)
	return &Chain{strategies: merged}
}

// Convert runs the chain. ErrUnsupported means every strategy declined.
func (c *Chain) Convert(resp *types.ProviderResponse) (*dom.Fragment, error) {
	if resp == nil {
		return nil, ErrUnsupported
	}
	for _, s := range c.strategies {
		frag, ok, err := s.Convert(resp)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name(), err)
		}
		if ok {
			return frag, nil
		}
	}
	return nil, ErrUnsupported
}

// Strategies lists the chain's strategy names in order.
func (c *Chain) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}
