package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"celestial/internal/domain/models"
	domrepo "celestial/internal/domain/repository"
	domsvc "celestial/internal/domain/service"
	pkgcache "celestial/pkg/cache"
	applogger "celestial/pkg/logger"
	"celestial/pkg/queue"
)

// Source tells where a served chart came from.
type Source string

const (
	SourceComputed Source = "computed"
	SourceCache    Source = "cache"
	SourceArchive  Source = "archive"
)

// ChartResult pairs a chart with its source.
type ChartResult struct {
	Chart  models.NatalChart
	Source Source
}

// ChartService serves charts from the cache, computing and archiving them on
// a miss. Archive and event failures are logged and counted; they never fail
// a computation.
type ChartService struct {
	calc    domsvc.ChartCalculator
	cache   pkgcache.Service
	metrics domrepo.Metrics
	log     *applogger.Logger

	archive    domrepo.ChartArchive
	archiveQ   queue.Publisher
	publisher  domrepo.EventPublisher
	cacheTTL   time.Duration
	batchLimit int
	workers    int
	now        func() time.Time
}

// ChartServiceOption configures ChartService.
type ChartServiceOption func(*ChartService)

// WithArchive stores computed charts through a synchronously called archive
// and lets Get fall back to it.
func WithArchive(a domrepo.ChartArchive) ChartServiceOption {
	return func(s *ChartService) { s.archive = a }
}

// WithArchiveQueue hands computed charts to the archive job instead of saving
// them inline.
func WithArchiveQueue(q queue.Publisher) ChartServiceOption {
	return func(s *ChartService) { s.archiveQ = q }
}

// WithEventPublisher announces computed charts.
func WithEventPublisher(p domrepo.EventPublisher) ChartServiceOption {
	return func(s *ChartService) { s.publisher = p }
}

// WithCacheTTL sets how long computed charts stay cached.
func WithCacheTTL(d time.Duration) ChartServiceOption {
	return func(s *ChartService) {
		if d > 0 {
			s.cacheTTL = d
		}
	}
}

// WithBatch bounds batch size and concurrency.
func WithBatch(limit, workers int) ChartServiceOption {
	return func(s *ChartService) {
		if limit > 0 {
			s.batchLimit = limit
		}
		if workers > 0 {
			s.workers = workers
		}
	}
}

// NewChartService creates a ChartService.
func NewChartService(
	calc domsvc.ChartCalculator,
	cache pkgcache.Service,
	metrics domrepo.Metrics,
	log *applogger.Logger,
	opts ...ChartServiceOption,
) *ChartService {
	if log == nil {
		log = applogger.Nop()
	}
	s := &ChartService{
		calc:       calc,
		cache:      cache,
		metrics:    metrics,
		log:        log.With(applogger.String("component", "chart_service")),
		cacheTTL:   24 * time.Hour,
		batchLimit: 50,
		workers:    4,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChartKey is the cache key of a chart hash.
func ChartKey(hash string) string {
	return pkgcache.GenerateKey("chart", hash)
}

// Hash returns the chart hash of in without computing the chart.
func (s *ChartService) Hash(in models.BirthInput) string {
	return s.calc.Hash(in)
}

// OrderKey is the idempotency key of one order for one set of birth data.
func OrderKey(orderID, chartHash string) string {
	return pkgcache.GenerateKeyWithParams("order", orderID, chartHash)
}

// Compute returns the chart for in, from cache when possible. A freshly
// computed chart is cached, archived and announced.
func (s *ChartService) Compute(ctx context.Context, in models.BirthInput) (models.NatalChart, Source, error) {
	chart, src, err := s.compute(ctx, in)
	if err != nil {
		return models.NatalChart{}, "", err
	}
	if src == SourceComputed && s.publisher != nil {
		ev := s.event(chart, "", chart.Hash, src)
		if err := s.publisher.PublishChartComputed(ctx, ev); err != nil {
			s.metrics.RecordError("event_publish")
			s.log.Warn("publish chart event", applogger.String("hash", chart.Hash), applogger.Error(err))
		}
	}
	return chart, src, nil
}

// ComputeOrder computes the chart of an order and publishes the order's
// ChartComputed event. Unlike Compute, a publish failure is returned, since
// the event is the order's only output.
func (s *ChartService) ComputeOrder(ctx context.Context, orderID string, in models.BirthInput) (models.ChartComputed, error) {
	chart, src, err := s.compute(ctx, in)
	if err != nil {
		return models.ChartComputed{}, err
	}
	ev := s.event(chart, orderID, OrderKey(orderID, chart.Hash), src)
	if s.publisher == nil {
		return ev, nil
	}
	if err := s.publisher.PublishChartComputed(ctx, ev); err != nil {
		s.metrics.RecordError("event_publish")
		return models.ChartComputed{}, fmt.Errorf("publish order %s: %w", orderID, err)
	}
	return ev, nil
}

func (s *ChartService) compute(ctx context.Context, in models.BirthInput) (models.NatalChart, Source, error) {
	start := s.now()
	defer func() { s.metrics.RecordLatency("chart_compute", s.now().Sub(start).Seconds()) }()

	if err := in.Validate(); err != nil {
		s.metrics.RecordError("validation")
		return models.NatalChart{}, "", err
	}

	hash := s.calc.Hash(in)
	if cached, ok := s.lookup(ctx, hash); ok {
		s.metrics.RecordChart(string(SourceCache))
		return cached.WithName(in.Name), SourceCache, nil
	}

	chart, err := s.calc.Compute(in)
	if err != nil {
		kind := "computation"
		if errors.Is(err, models.ErrInvalidInput) {
			kind = "validation"
		}
		s.metrics.RecordError(kind)
		return models.NatalChart{}, "", err
	}
	s.metrics.RecordChart(string(SourceComputed))

	if err := s.cache.Set(ctx, ChartKey(chart.Hash), chart, s.cacheTTL); err != nil {
		s.metrics.RecordError("cache_set")
		s.log.Warn("cache chart", applogger.String("hash", chart.Hash), applogger.Error(err))
	}
	s.store(ctx, chart)

	return chart, SourceComputed, nil
}

func (s *ChartService) lookup(ctx context.Context, hash string) (models.NatalChart, bool) {
	var chart models.NatalChart
	err := s.cache.Get(ctx, ChartKey(hash), &chart)
	switch {
	case err == nil:
		s.metrics.RecordCacheLookup(true)
		return chart, true
	case errors.Is(err, pkgcache.ErrCacheMiss):
		s.metrics.RecordCacheLookup(false)
	default:
		s.metrics.RecordCacheLookup(false)
		s.metrics.RecordError("cache_get")
		s.log.Warn("cache lookup", applogger.String("hash", hash), applogger.Error(err))
	}
	return models.NatalChart{}, false
}

func (s *ChartService) store(ctx context.Context, chart models.NatalChart) {
	var err error
	switch {
	case s.archiveQ != nil:
		err = s.archiveQ.PublishMessage(ctx, ArchiveJobType, chart)
	case s.archive != nil:
		err = s.archive.Save(ctx, chart)
	default:
		return
	}
	if err != nil {
		s.metrics.RecordError("archive")
		s.log.Warn("archive chart", applogger.String("hash", chart.Hash), applogger.Error(err))
	}
}

func (s *ChartService) event(chart models.NatalChart, orderID, idemKey string, src Source) models.ChartComputed {
	return models.ChartComputed{
		EventID:        uuid.NewString(),
		OrderID:        orderID,
		ChartHash:      chart.Hash,
		IdempotencyKey: idemKey,
		SunSign:        chart.SunSign().String(),
		MoonSign:       chart.MoonSign().String(),
		RisingSign:     chart.RisingSign().String(),
		Source:         string(src),
		ComputedAt:     s.now().UnixMilli(),
	}
}

// Get returns a chart by hash from the cache or the archive. Archive hits are
// cached again.
func (s *ChartService) Get(ctx context.Context, hash string) (models.NatalChart, Source, error) {
	if chart, ok := s.lookup(ctx, hash); ok {
		s.metrics.RecordChart(string(SourceCache))
		return chart, SourceCache, nil
	}
	if s.archive == nil {
		return models.NatalChart{}, "", models.ErrChartNotFound
	}

	chart, err := s.archive.Get(ctx, hash)
	if err != nil {
		if !errors.Is(err, models.ErrChartNotFound) {
			s.metrics.RecordError("archive_get")
		}
		return models.NatalChart{}, "", err
	}
	s.metrics.RecordChart(string(SourceArchive))
	if err := s.cache.Set(ctx, ChartKey(hash), chart, s.cacheTTL); err != nil {
		s.log.Warn("cache archived chart", applogger.String("hash", hash), applogger.Error(err))
	}
	return chart, SourceArchive, nil
}

// ComputeBatch computes every input concurrently and returns results in input
// order. All inputs are validated first; the first invalid one fails the
// whole batch before any work starts.
func (s *ChartService) ComputeBatch(ctx context.Context, inputs []models.BirthInput) ([]ChartResult, error) {
	if len(inputs) == 0 {
		return nil, &models.ValidationError{Field: "charts", Message: "must not be empty"}
	}
	if len(inputs) > s.batchLimit {
		return nil, &models.ValidationError{Field: "charts", Message: fmt.Sprintf("at most %d charts per batch", s.batchLimit)}
	}
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			var ve *models.ValidationError
			if errors.As(err, &ve) {
				return nil, &models.ValidationError{Field: fmt.Sprintf("charts[%d].%s", i, ve.Field), Message: ve.Message}
			}
			return nil, err
		}
	}

	results := make([]ChartResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, in := range inputs {
		g.Go(func() error {
			chart, src, err := s.Compute(gctx, in)
			if err != nil {
				return fmt.Errorf("chart %d: %w", i, err)
			}
			results[i] = ChartResult{Chart: chart, Source: src}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
