// Package party resolves display color and ideology for party abbreviations
package party

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"escrutinio/internal/models"
)

// Sources reported in models.PartyMeta
const (
	SourceStatic   = "static"
	SourceStore    = "store"
	SourceFallback = "fallback"
)

const defaultCacheTTL = 10 * time.Minute

// Store looks up party metadata by abbreviation substring
type Store interface {
	FindParty(ctx context.Context, abbr string) (models.Party, error)
}

// Resolver maps abbreviations to metadata.
// The static table is consulted first and never touches the store.
type Resolver struct {
	static map[string]models.PartyMeta
	store  Store
	cache  *cache.Cache
	logger *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithStatic replaces the built-in static table
func WithStatic(table map[string]models.PartyMeta) Option {
	return func(r *Resolver) {
		r.static = make(map[string]models.PartyMeta, len(table))
		for k, v := range table {
			r.static[normalize(k)] = v
		}
	}
}

// WithCacheTTL sets how long store answers are kept
func WithCacheTTL(d time.Duration) Option {
	return func(r *Resolver) {
		r.cache = cache.New(d, 2*d)
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// NewResolver creates a resolver backed by store, which may be nil
func NewResolver(store Store, opts ...Option) *Resolver {
	r := &Resolver{
		static: StaticTable(),
		store:  store,
		cache:  cache.New(defaultCacheTTL, 2*defaultCacheTTL),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("party")
	return r
}

// Resolve returns color and ideology for abbr. It never fails: store errors
// and misses resolve to models.NeutralColor and models.NeutralIdeology.
// Both fields always come from the same source.
func (r *Resolver) Resolve(ctx context.Context, abbr string) models.PartyMeta {
	key := normalize(abbr)

	if meta, ok := r.static[key]; ok {
		meta.Source = SourceStatic
		return meta
	}
	if v, ok := r.cache.Get(key); ok {
		return v.(models.PartyMeta)
	}
	if r.store == nil || key == "" {
		return fallback()
	}

	p, err := r.store.FindParty(ctx, key)
	switch {
	case errors.Is(err, models.ErrPartyNotFound):
		r.logger.Warn("party not in metadata store", zap.String("party", key))
		meta := fallback()
		r.cache.SetDefault(key, meta)
		return meta
	case err != nil:
		// not cached, the next cycle retries the store
		r.logger.Warn("party lookup failed", zap.String("party", key), zap.Error(err))
		return fallback()
	}

	meta := models.PartyMeta{
		Color:    p.Color,
		Ideology: p.Ideology,
		Source:   SourceStore,
	}
	if meta.Color == "" {
		meta.Color = models.NeutralColor
	}
	r.cache.SetDefault(key, meta)
	return meta
}

// ResolveAll resolves every abbreviation concurrently, at most limit at a time.
// The result is keyed by the abbreviations as given.
func (r *Resolver) ResolveAll(ctx context.Context, abbrs []string, limit int) map[string]models.PartyMeta {
	out := make(map[string]models.PartyMeta, len(abbrs))
	var mu sync.Mutex

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	seen := make(map[string]struct{}, len(abbrs))
	for _, abbr := range abbrs {
		if _, dup := seen[abbr]; dup {
			continue
		}
		seen[abbr] = struct{}{}

		g.Go(func() error {
			meta := r.Resolve(ctx, abbr)
			mu.Lock()
			out[abbr] = meta
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Forget drops cached store answers
func (r *Resolver) Forget() {
	r.cache.Flush()
}

func normalize(abbr string) string {
	return strings.ToUpper(strings.TrimSpace(abbr))
}

func fallback() models.PartyMeta {
	return models.PartyMeta{
		Color:    models.NeutralColor,
		Ideology: models.NeutralIdeology,
		Source:   SourceFallback,
	}
}
