// Package catalog queries every configured nutrition provider concurrently
// and merges their results into validated, deduplicated food records.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nutriplan/v1/internal/domain/food"
	"github.com/nutriplan/v1/internal/ports/outbound"
	apperrors "github.com/nutriplan/v1/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrAllProvidersFailed is returned only when every provider errored
var ErrAllProvidersFailed = errors.New("all food providers failed")

// Config tunes provider calls
type Config struct {
	// Timeout bounds a single provider call
	Timeout time.Duration
	// DefaultLimit applies when Search is called with a non-positive limit
	DefaultLimit int
	// RequestsPerSecond throttles each provider; zero disables throttling
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns conservative defaults
func DefaultConfig() Config {
	return Config{
		Timeout:           3 * time.Second,
		DefaultLimit:      20,
		RequestsPerSecond: 5,
		Burst:             5,
	}
}

type source struct {
	provider outbound.FoodProvider
	limiter  *rate.Limiter
}

// Client implements outbound.FoodCatalog over several providers
type Client struct {
	sources []source
	cfg     Config
	metrics outbound.Metrics
	logger  *zap.Logger
}

// NewClient creates a catalog client. Provider order breaks rating ties.
func NewClient(providers []outbound.FoodProvider, cfg Config, metrics outbound.Metrics, logger *zap.Logger) *Client {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}

	sources := make([]source, 0, len(providers))
	for _, p := range providers {
		limit := rate.Inf
		if cfg.RequestsPerSecond > 0 {
			limit = rate.Limit(cfg.RequestsPerSecond)
		}
		sources = append(sources, source{provider: p, limiter: rate.NewLimiter(limit, cfg.Burst)})
	}

	return &Client{
		sources: sources,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger.Named("food-catalog"),
	}
}

// Providers returns the configured provider names in order
func (c *Client) Providers() []string {
	names := make([]string, 0, len(c.sources))
	for _, s := range c.sources {
		names = append(names, s.provider.Name())
	}
	return names
}

// Search implements outbound.FoodCatalog
func (c *Client) Search(ctx context.Context, term string, limit int) ([]food.Record, error) {
	term = strings.TrimSpace(term)
	if term == "" || len(c.sources) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = c.cfg.DefaultLimit
	}

	results := make([][]food.Record, len(c.sources))
	errs := make([]error, len(c.sources))

	// Provider failures are recorded, not returned, so one slow or broken
	// provider never cancels the others.
	var g errgroup.Group
	for i, s := range c.sources {
		i, s := i, s
		g.Go(func() error {
			results[i], errs[i] = c.query(ctx, s, term, limit)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed == len(c.sources) {
		return nil, fmt.Errorf("%w: %w", ErrAllProvidersFailed, errors.Join(errs...))
	}

	return c.merge(results, limit), nil
}

func (c *Client) query(ctx context.Context, s source, term string, limit int) ([]food.Record, error) {
	name := s.provider.Name()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	if err := s.limiter.Wait(ctx); err != nil {
		c.metrics.ProviderRequest(name, err, time.Since(start))
		return nil, apperrors.NewProviderUnavailableError(name, err)
	}

	drafts, err := s.provider.Search(ctx, term, limit)
	c.metrics.ProviderRequest(name, err, time.Since(start))
	if err != nil {
		c.logger.Warn("Food provider failed",
			zap.String("provider", name),
			zap.String("term", term),
			zap.Error(err),
		)
		return nil, apperrors.NewProviderUnavailableError(name, err)
	}

	records := make([]food.Record, 0, len(drafts))
	rejected := 0
	for _, d := range drafts {
		rec, err := food.FromDraft(d)
		if err != nil {
			rejected++
			continue
		}
		records = append(records, rec)
	}
	if rejected > 0 {
		c.logger.Debug("Rejected provider records",
			zap.String("provider", name),
			zap.String("term", term),
			zap.Int("rejected", rejected),
			zap.Int("accepted", len(records)),
		)
	}
	return records, nil
}

// merge orders provider results by descending rating, keeps the first
// record per case-insensitive name and truncates to limit.
func (c *Client) merge(results [][]food.Record, limit int) []food.Record {
	order := make([]int, len(c.sources))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return c.sources[order[a]].provider.Rating() > c.sources[order[b]].provider.Rating()
	})

	seen := make(map[string]bool)
	var out []food.Record
	for _, idx := range order {
		for _, rec := range results[idx] {
			key := rec.NameKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, rec)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
