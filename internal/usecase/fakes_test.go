package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"celestial/internal/domain/models"
	"celestial/internal/services/astro"
	pkgcache "celestial/pkg/cache"
)

var scenarioTime = time.Date(1990, 6, 15, 14, 30, 0, 0, time.UTC)

const scenarioHash = "fbad8101debafe5b"

func scenarioInput(name string) models.BirthInput {
	return models.BirthInput{Name: name, Timestamp: scenarioTime, Latitude: 40.7128, Longitude: -74.006}
}

type fakeMetrics struct {
	mu      sync.Mutex
	charts  map[string]int
	hits    int
	misses  int
	errs    map[string]int
	skipped map[string]int
	latency map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{charts: map[string]int{}, errs: map[string]int{}, skipped: map[string]int{}, latency: map[string]int{}}
}

func (m *fakeMetrics) RecordChart(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.charts[source]++
}

func (m *fakeMetrics) RecordCacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[kind]++
}

func (m *fakeMetrics) RecordSkipped(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped[reason]++
}

func (m *fakeMetrics) RecordLatency(op string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency[op]++
}

type fakeArchive struct {
	mu      sync.Mutex
	charts  map[string]models.NatalChart
	saveErr error
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{charts: map[string]models.NatalChart{}}
}

func (a *fakeArchive) Init(context.Context) error { return nil }

func (a *fakeArchive) Save(_ context.Context, c models.NatalChart) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.saveErr != nil {
		return a.saveErr
	}
	a.charts[c.Hash] = c
	return nil
}

func (a *fakeArchive) SaveBatch(ctx context.Context, cs []models.NatalChart) error {
	for _, c := range cs {
		if err := a.Save(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (a *fakeArchive) Get(_ context.Context, hash string) (models.NatalChart, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.charts[hash]
	if !ok {
		return models.NatalChart{}, models.ErrChartNotFound
	}
	return c, nil
}

func (a *fakeArchive) Health(context.Context) error { return nil }
func (a *fakeArchive) Close() error                 { return nil }

func (a *fakeArchive) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.charts)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.ChartComputed
	err    error
}

func (p *fakePublisher) PublishChartComputed(_ context.Context, ev models.ChartComputed) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) published() []models.ChartComputed {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.ChartComputed(nil), p.events...)
}

type fakeQueue struct {
	mu   sync.Mutex
	msgs []string
}

func (q *fakeQueue) PublishMessage(_ context.Context, msgType string, _ any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, msgType)
	return nil
}

// brokenCache fails every call that is not a miss.
type brokenCache struct{}

var errCacheDown = errors.New("cache down")

func (brokenCache) Set(context.Context, string, any, time.Duration) error        { return errCacheDown }
func (brokenCache) Get(context.Context, string, any) error                       { return errCacheDown }
func (brokenCache) Delete(context.Context, ...string) error                      { return errCacheDown }
func (brokenCache) TryLock(context.Context, string, time.Duration) (bool, error) { return false, errCacheDown }
func (brokenCache) Unlock(context.Context, string) error                         { return errCacheDown }
func (brokenCache) Close() error                                                 { return nil }

func newMemoryCache(t *testing.T) *pkgcache.MemoryCache {
	t.Helper()
	mc := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	return mc
}

type fixture struct {
	svc     *ChartService
	cache   *pkgcache.MemoryCache
	metrics *fakeMetrics
	archive *fakeArchive
	pub     *fakePublisher
}

func newFixture(t *testing.T, opts ...ChartServiceOption) fixture {
	t.Helper()
	f := fixture{
		cache:   newMemoryCache(t),
		metrics: newFakeMetrics(),
		archive: newFakeArchive(),
		pub:     &fakePublisher{},
	}
	base := []ChartServiceOption{WithArchive(f.archive), WithEventPublisher(f.pub)}
	f.svc = NewChartService(astro.NewEngine(), f.cache, f.metrics, nil, append(base, opts...)...)
	return f
}
