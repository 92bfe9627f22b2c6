package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type SampleRequest struct {
	Name  string   `json:"name" default:"Anonymous" validate:"max=12"`
	Clock string   `json:"clock" validate:"required,clock"`
	Lat   *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
}

type sampleHandler struct{}

func (sampleHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/echo", func(c echo.Context) error {
		var req SampleRequest
		if errs := ReadAndValidateRequest(c, &req); errs != nil {
			return BadRequestResponse(c, errs)
		}
		return SuccessResponse(c, req)
	})
	e.GET("/missing", func(c echo.Context) error {
		return AppErrorResponse(c, NotFoundErrorf("chart %s not found", "abc"))
	})
	e.GET("/opaque", func(c echo.Context) error {
		return AppErrorResponse(c, errors.New("boom"))
	})
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	s := NewServer(sampleHandler{}, WithMetrics("/metrics", reg, reg))
	ts := httptest.NewServer(s.Echo())
	t.Cleanup(ts.Close)
	return ts
}

func TestReadAndValidateRequest(t *testing.T) {
	e := echo.New()
	cases := []struct {
		name   string
		body   string
		fields []string
	}{
		{"valid", `{"clock":"10:30","lat":0}`, nil},
		{"missing lat", `{"clock":"10:30"}`, []string{"lat"}},
		{"bad clock and range", `{"clock":"25:00","lat":91}`, []string{"clock", "lat"}},
		{"too long", `{"name":"Andromeda Galaxy","clock":"10:30","lat":1}`, []string{"name"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(c.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			ctx := e.NewContext(req, httptest.NewRecorder())

			var sr SampleRequest
			errs := ReadAndValidateRequest(ctx, &sr)
			var got []string
			for _, ve := range errs {
				got = append(got, ve.Field)
			}
			assert.ElementsMatch(t, c.fields, got)
			if c.fields == nil {
				assert.Equal(t, "Anonymous", sr.Name)
			}
		})
	}
}

type sampleOrigin struct {
	Place string `json:"Place" validate:"required"`
}

type sampleOrder struct {
	SampleRequest
	Origin sampleOrigin    `json:"origin"`
	Stops  []SampleRequest `json:"stops" validate:"dive"`
}

func TestValidateStructFieldPaths(t *testing.T) {
	lat := 1.0
	order := sampleOrder{
		SampleRequest: SampleRequest{Clock: "10:30"},
		Stops:         []SampleRequest{{Clock: "10:30", Lat: &lat}, {Clock: "99:00", Lat: &lat}},
	}

	var got []string
	for _, ve := range ValidateStruct(context.Background(), &order) {
		got = append(got, ve.Field)
	}
	assert.ElementsMatch(t, []string{"lat", "origin.Place", "stops[1].clock"}, got)
}

func TestMalformedBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"clock":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	errs := ReadAndValidateRequest(e.NewContext(req, httptest.NewRecorder()), &SampleRequest{})
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_MALFORMED", errs[0].Code)
}

func TestClientRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	client := NewClient(ts.URL)
	ctx := context.Background()

	var out SampleRequest
	lat := 12.5
	require.NoError(t, client.Post(ctx, "/echo", SampleRequest{Clock: "08:00", Lat: &lat}, &out))
	assert.Equal(t, "Anonymous", out.Name)
	require.NotNil(t, out.Lat)
	assert.Equal(t, 12.5, *out.Lat)

	err := client.Post(ctx, "/echo", map[string]any{"clock": "8am"}, nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Status)
	assert.Contains(t, string(se.Body), "ERR_CLOCK")

	err = client.Get(ctx, "/missing", nil)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Contains(t, string(se.Body), "chart abc not found")

	err = client.Get(ctx, "/opaque", nil)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
}

func TestServerExposesMetrics(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
