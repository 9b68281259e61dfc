package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ernestbuffington/embedkit/internal/infrastructure/logging"
	"github.com/ernestbuffington/embedkit/internal/shared/types"
)

// Provider is one directory entry.
type Provider struct {
	Name      string     `json:"provider_name"`
	URL       string     `json:"provider_url"`
	Endpoints []Endpoint `json:"endpoints"`
}

// Endpoint is one provider endpoint with its accepted URL schemes.
type Endpoint struct {
	URL       string   `json:"url"`
	Schemes   []string `json:"schemes,omitempty"`
	Discovery bool     `json:"discovery,omitempty"`
}

// Match is a successful catalog lookup.
type Match struct {
	Provider string `json:"provider"`
	Endpoint string `json:"endpoint"`
	Scheme   string `json:"scheme"`
}

// Fetcher retrieves the directory document. The provider client
// satisfies this.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

type indexEntry struct {
	pattern  string
	provider string
	endpoint string
}

// Catalog is the in-memory directory mirror.
type Catalog struct {
	mu          sync.RWMutex
	providers   []Provider
	index       []indexEntry
	refreshedAt time.Time

	url     string
	fetcher Fetcher
	cron    *cron.Cron
	log     *logging.Logger
}

// New creates a catalog mirroring the directory at url. An empty url
// disables the catalog: Start and Refresh become no-ops and every
// lookup misses.
func New(url string, fetcher Fetcher, logger *logging.Logger) *Catalog {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Catalog{
		url:     url,
		fetcher: fetcher,
		log:     logger.Named("catalog"),
	}
}

// Enabled reports whether a directory URL is configured.
func (c *Catalog) Enabled() bool {
	return c.url != ""
}

// Start performs the initial refresh in the background and schedules
// recurring refreshes per the cron spec.
func (c *Catalog) Start(spec string) error {
	if !c.Enabled() {
		return nil
	}

	c.cron = cron.New()
	if _, err := c.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := c.Refresh(ctx); err != nil {
			c.log.Warn("catalog refresh failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule catalog refresh: %w", err)
	}
	c.cron.Start()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := c.Refresh(ctx); err != nil {
			c.log.Warn("initial catalog fetch failed", zap.Error(err))
		}
	}()
	return nil
}

// Stop halts the refresh schedule.
func (c *Catalog) Stop() {
	if c.cron != nil {
		c.cron.Stop()
	}
}

// Refresh fetches the directory and rebuilds the lookup index.
func (c *Catalog) Refresh(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}

	data, err := c.fetcher.Fetch(ctx, c.url)
	if err != nil {
		return fmt.Errorf("fetch providers directory: %w", err)
	}

	var providers []Provider
	if err := sonic.Unmarshal(data, &providers); err != nil {
		return fmt.Errorf("parse providers directory: %w", err)
	}

	c.replace(providers)
	c.log.Info("catalog refreshed",
		zap.Int("providers", len(providers)),
		zap.Int("schemes", c.SchemeCount()))
	return nil
}

// replace swaps in a new provider set and rebuilds the scheme index.
// Directory names are provider-controlled text; they are cleaned here
// so lookups and the provider listing never relay markup.
func (c *Catalog) replace(providers []Provider) {
	for i := range providers {
		providers[i].Name = types.CleanText(providers[i].Name)
	}

	var index []indexEntry
	for _, p := range providers {
		for _, e := range p.Endpoints {
			for _, scheme := range e.Schemes {
				pattern := schemePattern(scheme)
				if !doublestar.ValidatePattern(pattern) {
					continue
				}
				index = append(index, indexEntry{
					pattern:  pattern,
					provider: p.Name,
					endpoint: e.URL,
				})
			}
		}
	}

	c.mu.Lock()
	c.providers = providers
	c.index = index
	c.refreshedAt = time.Now()
	c.mu.Unlock()
}

// Lookup maps a resource URL to the directory endpoint that serves it.
func (c *Catalog) Lookup(resourceURL string) (*Match, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, entry := range c.index {
		if ok, err := doublestar.Match(entry.pattern, resourceURL); err == nil && ok {
			return &Match{
				Provider: entry.provider,
				Endpoint: entry.endpoint,
				Scheme:   entry.pattern,
			}, true
		}
	}
	return nil, false
}

// Providers returns a copy of the current provider set.
func (c *Catalog) Providers() []Provider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Provider(nil), c.providers...)
}

// SchemeCount returns the number of indexed URL schemes.
func (c *Catalog) SchemeCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.index)
}

// RefreshedAt returns the time of the last successful refresh.
func (c *Catalog) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshedAt
}

// schemePattern widens directory wildcards so a single star spans path
// segments; directory schemes use * as "anything", including slashes.
func schemePattern(scheme string) string {
	return strings.ReplaceAll(scheme, "*", "**")
}
