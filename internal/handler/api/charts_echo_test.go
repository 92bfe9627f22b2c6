package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"celestial/internal/domain/models"
	"celestial/internal/service/ratelimit"
	"celestial/internal/services/astro"
	"celestial/internal/usecase"
	pkgcache "celestial/pkg/cache"
	xhttp "celestial/pkg/http"
	"celestial/pkg/metrics"
)

const (
	scenarioBody = `{"name":"Ada","birth_date":"1990-06-15","birth_time":"14:30","latitude":40.7128,"longitude":-74.006}`
	scenarioHash = "fbad8101debafe5b"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, opts ...ChartsOption) *echo.Echo {
	t.Helper()
	mc := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })

	rec := metrics.NewWithRegisterer(prometheus.NewRegistry())
	svc := usecase.NewChartService(astro.NewEngine(), mc, rec, nil)

	e := echo.New()
	NewChartsEchoHandler(nil, svc, opts...).RegisterRoutes(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestCreateChart(t *testing.T) {
	e := newTestServer(t)

	rec, env := do(t, e, http.MethodPost, "/api/charts", scenarioBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var chart ChartResponse
	require.NoError(t, json.Unmarshal(env.Data, &chart))
	assert.Equal(t, scenarioHash, chart.Hash)
	assert.Equal(t, "Ada", chart.Birth.Name)
	assert.Equal(t, "Gemini", chart.SunSign.String())
	assert.Equal(t, "Pisces", chart.MoonSign.String())
	assert.Equal(t, "Leo", chart.RisingSign.String())
	assert.Equal(t, usecase.SourceComputed, chart.Source)
	assert.Len(t, chart.Positions, 11)
	assert.Len(t, chart.Houses, 12)
	for _, a := range chart.Aspects {
		assert.InDelta(t, a.Orb, float64(int(a.Orb*100+0.5))/100, 1e-9)
	}

	_, env = do(t, e, http.MethodPost, "/api/charts", scenarioBody)
	require.NoError(t, json.Unmarshal(env.Data, &chart))
	assert.Equal(t, usecase.SourceCache, chart.Source)
}

func TestCreateChartDefaults(t *testing.T) {
	e := newTestServer(t)

	rec, env := do(t, e, http.MethodPost, "/api/charts", `{"birth_date":"1990-06-15","latitude":0,"longitude":0}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var chart ChartResponse
	require.NoError(t, json.Unmarshal(env.Data, &chart))
	assert.Equal(t, "Anonymous", chart.Birth.Name)
	assert.Equal(t, 12, chart.Birth.BirthTime.Hour())
}

func TestCreateChartValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"latitude out of range", `{"birth_date":"1990-06-15","latitude":95,"longitude":0}`, "latitude"},
		{"longitude missing", `{"birth_date":"1990-06-15","latitude":10}`, "longitude"},
		{"bad date", `{"birth_date":"15/06/1990","latitude":10,"longitude":0}`, "birth_date"},
		{"bad clock", `{"birth_date":"1990-06-15","birth_time":"25:00","latitude":10,"longitude":0}`, "birth_time"},
	}
	e := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, e, http.MethodPost, "/api/charts", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var details []struct {
				Field string `json:"field"`
			}
			require.NoError(t, json.Unmarshal(env.Data, &details))
			require.NotEmpty(t, details)
			assert.Equal(t, tt.field, details[0].Field)
		})
	}
}

func TestGetChart(t *testing.T) {
	e := newTestServer(t)

	rec, _ := do(t, e, http.MethodGet, "/api/charts/"+scenarioHash, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/api/charts/not-a-hash", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	do(t, e, http.MethodPost, "/api/charts", scenarioBody)
	rec, env := do(t, e, http.MethodGet, "/api/charts/"+scenarioHash, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var chart ChartResponse
	require.NoError(t, json.Unmarshal(env.Data, &chart))
	assert.Equal(t, scenarioHash, chart.Hash)
	assert.Equal(t, usecase.SourceCache, chart.Source)
	assert.Contains(t, rec.Header().Get(echo.HeaderCacheControl), "immutable")
}

func TestCreateBatch(t *testing.T) {
	e := newTestServer(t)

	body := `{"charts":[` + scenarioBody + `,{"name":"Bo","birth_date":"2000-01-01","birth_time":"00:00","latitude":51.5,"longitude":-0.12}]}`
	rec, env := do(t, e, http.MethodPost, "/api/charts/batch", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var list struct {
		Rows  []ChartResponse `json:"rows"`
		Total int64           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Rows, 2)
	assert.EqualValues(t, 2, list.Total)
	assert.Equal(t, scenarioHash, list.Rows[0].Hash)
	assert.Equal(t, "Bo", list.Rows[1].Birth.Name)
}

func TestCreateBatchRejects(t *testing.T) {
	e := newTestServer(t)

	rec, _ := do(t, e, http.MethodPost, "/api/charts/batch", `{"charts":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := `{"charts":[` + scenarioBody + `,{"birth_date":"1990-06-15","latitude":10}]}`
	rec, env := do(t, e, http.MethodPost, "/api/charts/batch", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var details []struct {
		Field string `json:"field"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &details))
	require.NotEmpty(t, details)
	assert.Equal(t, "charts[1].longitude", details[0].Field)
}

func TestHealth(t *testing.T) {
	e := newTestServer(t, WithHealthCheck("cache", func(context.Context) error { return nil }))
	rec, env := do(t, e, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var h healthResponse
	require.NoError(t, json.Unmarshal(env.Data, &h))
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "ok", h.Checks["cache"])
	assert.False(t, h.Time.IsZero())

	e = newTestServer(t, WithHealthCheck("archive", func(context.Context) error { return errors.New("down") }))
	rec, env = do(t, e, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &h))
	assert.Equal(t, "degraded", h.Status)
	assert.Equal(t, "down", h.Checks["archive"])
}

func TestRateLimitedPost(t *testing.T) {
	l := ratelimit.New(0.01, 1)
	e := newTestServer(t, WithRateLimit(ratelimit.Middleware(l, nil)))

	rec, _ := do(t, e, http.MethodPost, "/api/charts", scenarioBody)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, e, http.MethodPost, "/api/charts", scenarioBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// reads are not limited
	rec, _ = do(t, e, http.MethodGet, "/api/charts/"+scenarioHash, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestToAppError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{&models.ValidationError{Field: "latitude", Message: "bad"}, http.StatusBadRequest},
		{&models.ComputationError{Stage: "sun"}, http.StatusUnprocessableEntity},
		{models.ErrChartNotFound, http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		var appErr *xhttp.AppError
		require.ErrorAs(t, toAppError(tt.err), &appErr)
		assert.Equal(t, tt.status, appErr.Status, tt.err.Error())
	}
}
