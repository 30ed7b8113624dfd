// Package pricing fetches current prices for a set of holdings concurrently.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"folio-backend/internal/application/quotes"
	"folio-backend/internal/domain"

	"github.com/rs/zerolog"
)

const (
	DefaultWorkers      = 5
	DefaultItemTimeout  = 12 * time.Second
	DefaultBatchTimeout = 3 * time.Minute
	DefaultFXRate       = 150.0
)

// Parser returns a price and display name for a symbol.
type Parser interface {
	Quote(ctx context.Context, symbol string) (float64, string, error)
}

// FXSource returns the current USD/JPY rate.
type FXSource interface {
	Rate(ctx context.Context) (float64, error)
}

// Pacer spaces out outbound requests.
type Pacer interface {
	Pace(ctx context.Context) error
}

// Service fans holdings out to parsers through a bounded worker pool.
type Service struct {
	parsers      map[domain.AssetClass]Parser
	fx           FXSource
	cache        quotes.Cache
	pacer        Pacer
	workers      int
	itemTimeout  time.Duration
	batchTimeout time.Duration
	defaultFX    float64
	now          func() time.Time
	logger       zerolog.Logger
}

type Option func(*Service)

func WithParser(class domain.AssetClass, p Parser) Option {
	return func(s *Service) {
		s.parsers[class] = p
	}
}

func WithFXSource(fx FXSource) Option {
	return func(s *Service) {
		s.fx = fx
	}
}

func WithPacer(p Pacer) Option {
	return func(s *Service) {
		s.pacer = p
	}
}

func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithTimeouts(item, batch time.Duration) Option {
	return func(s *Service) {
		s.itemTimeout, s.batchTimeout = item, batch
	}
}

func WithDefaultFXRate(rate float64) Option {
	return func(s *Service) {
		if rate > 0 {
			s.defaultFX = rate
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(cache quotes.Cache, opts ...Option) *Service {
	s := &Service{
		parsers:      make(map[domain.AssetClass]Parser),
		cache:        cache,
		workers:      DefaultWorkers,
		itemTimeout:  DefaultItemTimeout,
		batchTimeout: DefaultBatchTimeout,
		defaultFX:    DefaultFXRate,
		now:          time.Now,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type result struct {
	ref    domain.HoldingRef
	update domain.PriceUpdate
	err    error
}

// FetchAll returns a price update for every market-priced holding it could
// price. Cash and insurance are skipped. Per-item failures are logged and
// dropped; when the batch deadline passes, whatever finished is returned.
func (s *Service) FetchAll(ctx context.Context, refs []domain.HoldingRef) []domain.PriceUpdate {
	items := make([]domain.HoldingRef, 0, len(refs))
	for _, r := range refs {
		if r.AssetClass.HasMarketPrice() {
			items = append(items, r)
		}
	}
	if len(items) == 0 {
		return nil
	}

	batchCtx, cancel := context.WithTimeout(ctx, s.batchTimeout)
	defer cancel()

	start := time.Now()
	jobs := make(chan domain.HoldingRef)
	// buffered so workers never block once the collector has given up
	results := make(chan result, len(items))

	workers := min(s.workers, len(items))
	for i := 0; i < workers; i++ {
		go s.worker(batchCtx, jobs, results)
	}
	go func() {
		defer close(jobs)
		for _, it := range items {
			select {
			case jobs <- it:
			case <-batchCtx.Done():
				return
			}
		}
	}()

	updates := make([]domain.PriceUpdate, 0, len(items))
	failed := 0
	for received := 0; received < len(items); {
		select {
		case r := <-results:
			received++
			if r.err != nil {
				failed++
				s.logger.Warn().Err(r.err).
					Str("asset_class", string(r.ref.AssetClass)).
					Str("symbol", r.ref.Symbol).
					Msg("price fetch failed")
				continue
			}
			updates = append(updates, r.update)
		case <-batchCtx.Done():
			s.logger.Warn().
				Int("requested", len(items)).
				Int("priced", len(updates)).
				Dur("elapsed", time.Since(start)).
				Msg("price batch deadline reached, returning partial results")
			return updates
		}
	}

	s.logger.Info().
		Int("requested", len(items)).
		Int("priced", len(updates)).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("price batch complete")
	return updates
}

func (s *Service) worker(ctx context.Context, jobs <-chan domain.HoldingRef, results chan<- result) {
	for ref := range jobs {
		u, err := s.fetchOne(ctx, ref)
		results <- result{ref: ref, update: u, err: err}
	}
}

func (s *Service) fetchOne(ctx context.Context, ref domain.HoldingRef) (domain.PriceUpdate, error) {
	key := domain.QuoteKey(ref.AssetClass, ref.Symbol)
	if q, ok := s.cache.Get(ctx, key); ok {
		return domain.PriceUpdate{ID: ref.ID, Price: q.Price, Name: q.Name}, nil
	}

	parser, ok := s.parsers[ref.AssetClass]
	if !ok {
		return domain.PriceUpdate{}, fmt.Errorf("%w: no source for %s", domain.ErrQuoteUnavailable, ref.AssetClass)
	}
	if s.pacer != nil {
		if err := s.pacer.Pace(ctx); err != nil {
			return domain.PriceUpdate{}, fmt.Errorf("%w: %s %s: %w", domain.ErrFetchTimeout, ref.AssetClass, ref.Symbol, err)
		}
	}

	price, name, err := s.callWithTimeout(ctx, func(ctx context.Context) (float64, string, error) {
		return parser.Quote(ctx, ref.Symbol)
	})
	if err != nil {
		return domain.PriceUpdate{}, err
	}
	if name == "" {
		name = ref.Symbol
	}

	s.cache.Set(ctx, key, domain.Quote{
		AssetClass: ref.AssetClass,
		Symbol:     ref.Symbol,
		Price:      price,
		Name:       name,
		FetchedAt:  s.now(),
	})
	return domain.PriceUpdate{ID: ref.ID, Price: price, Name: name}, nil
}

// callWithTimeout abandons fn once the per-item deadline passes, even if fn
// ignores its context.
func (s *Service) callWithTimeout(ctx context.Context, fn func(context.Context) (float64, string, error)) (float64, string, error) {
	itemCtx, cancel := context.WithTimeout(ctx, s.itemTimeout)
	defer cancel()

	type out struct {
		price float64
		name  string
		err   error
	}
	done := make(chan out, 1)
	go func() {
		p, n, err := fn(itemCtx)
		done <- out{p, n, err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			if errors.Is(o.err, context.DeadlineExceeded) {
				return 0, "", fmt.Errorf("%w: %w", domain.ErrFetchTimeout, o.err)
			}
			return 0, "", o.err
		}
		if o.price <= 0 || math.IsNaN(o.price) || math.IsInf(o.price, 0) {
			return 0, "", fmt.Errorf("%w: non-positive price %v", domain.ErrQuoteUnavailable, o.price)
		}
		return o.price, o.name, nil
	case <-itemCtx.Done():
		return 0, "", fmt.Errorf("%w: %w", domain.ErrFetchTimeout, itemCtx.Err())
	}
}

// FXRate returns the USD/JPY rate from cache or the FX source, falling back
// to the configured default when neither has one.
func (s *Service) FXRate(ctx context.Context) float64 {
	if q, ok := s.cache.Get(ctx, domain.FXKey); ok && q.Price > 0 {
		return q.Price
	}
	if s.fx == nil {
		return s.defaultFX
	}

	rate, _, err := s.callWithTimeout(ctx, func(ctx context.Context) (float64, string, error) {
		r, err := s.fx.Rate(ctx)
		return r, "", err
	})
	if err != nil {
		s.logger.Warn().Err(err).Float64("default", s.defaultFX).Msg("USD/JPY rate unavailable, using default")
		return s.defaultFX
	}

	s.cache.Set(ctx, domain.FXKey, domain.Quote{Symbol: "USDJPY", Price: rate, Name: "USD/JPY", FetchedAt: s.now()})
	return rate
}
