package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestAllowBurstThenRefill(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(2, 3, WithClock(clk.Now))

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("a"), "burst token %d", i)
	}
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "keys have independent buckets")

	assert.InDelta(t, 500*time.Millisecond, l.RetryAfter("a"), float64(time.Millisecond))

	clk.Advance(500 * time.Millisecond)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
}

func TestRetryAfterUnknownKey(t *testing.T) {
	l := New(1, 1)
	assert.Zero(t, l.RetryAfter("nobody"))
}

func TestIdleKeysAreSwept(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(1, 1, WithClock(clk.Now), WithIdle(time.Minute))

	l.Allow("a")
	l.Allow("b")
	require.Equal(t, 2, l.Len())

	clk.Advance(2 * time.Minute)
	l.Allow("c")
	assert.Equal(t, 1, l.Len())
}

func TestMiddlewareRejectsOverBudget(t *testing.T) {
	e := echo.New()
	l := New(1, 1)
	e.POST("/api/charts", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, Middleware(l, func(echo.Context) string { return "client" }))

	do := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/charts", nil))
		return rec
	}

	assert.Equal(t, http.StatusNoContent, do().Code)

	rec := do()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "ERR_RATE_LIMITED")
}
