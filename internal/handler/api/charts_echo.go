package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"celestial/internal/domain/models"
	"celestial/internal/usecase"
	xhttp "celestial/pkg/http"
	xlogger "celestial/pkg/logger"
)

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

// ChartsEchoHandler serves the chart API.
type ChartsEchoHandler struct {
	logger  *xlogger.Logger
	charts  *usecase.ChartService
	limit   echo.MiddlewareFunc
	checks  map[string]HealthCheck
	timeout time.Duration
	now     func() time.Time
}

// ChartsOption configures ChartsEchoHandler.
type ChartsOption func(*ChartsEchoHandler)

// WithRateLimit guards the POST routes.
func WithRateLimit(mw echo.MiddlewareFunc) ChartsOption {
	return func(h *ChartsEchoHandler) { h.limit = mw }
}

// WithHealthCheck adds a named dependency check to /api/health.
func WithHealthCheck(name string, check HealthCheck) ChartsOption {
	return func(h *ChartsEchoHandler) {
		if check != nil {
			h.checks[name] = check
		}
	}
}

func NewChartsEchoHandler(logger *xlogger.Logger, charts *usecase.ChartService, opts ...ChartsOption) *ChartsEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	h := &ChartsEchoHandler{
		logger:  logger,
		charts:  charts,
		checks:  make(map[string]HealthCheck),
		timeout: 2 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *ChartsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	var mws []echo.MiddlewareFunc
	if h.limit != nil {
		mws = append(mws, h.limit)
	}
	g.POST("/charts", h.Create, mws...)
	g.POST("/charts/batch", h.CreateBatch, mws...)
	g.GET("/charts/:hash", h.Get)
	g.GET("/health", h.Health)
}

func (h *ChartsEchoHandler) Create(c echo.Context) error {
	req := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	in, err := usecase.BirthInputFromRequest(*req)
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}

	chart, src, err := h.charts.Compute(c.Request().Context(), in)
	if err != nil {
		h.logger.Error("chart compute error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, toChartResponse(chart, src))
}

func (h *ChartsEchoHandler) CreateBatch(c echo.Context) error {
	req := &models.BatchChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	inputs := make([]models.BirthInput, 0, len(req.Charts))
	for i, r := range req.Charts {
		in, err := usecase.BirthInputFromRequest(r)
		if err != nil {
			var ve *models.ValidationError
			if errors.As(err, &ve) {
				err = &models.ValidationError{Field: fmt.Sprintf("charts[%d].%s", i, ve.Field), Message: ve.Message}
			}
			return xhttp.AppErrorResponse(c, toAppError(err))
		}
		inputs = append(inputs, in)
	}

	results, err := h.charts.ComputeBatch(c.Request().Context(), inputs)
	if err != nil {
		h.logger.Error("chart batch error", xlogger.Int("charts", len(inputs)), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	rows := make([]ChartResponse, 0, len(results))
	for _, r := range results {
		rows = append(rows, toChartResponse(r.Chart, r.Source))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *ChartsEchoHandler) Get(c echo.Context) error {
	req := &models.ChartHashRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	chart, src, err := h.charts.Get(c.Request().Context(), req.Hash)
	if err != nil {
		if !errors.Is(err, models.ErrChartNotFound) {
			h.logger.Error("chart get error", xlogger.String("hash", req.Hash), xlogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=86400, immutable")
	return xhttp.SuccessResponse(c, toChartResponse(chart, src))
}

type healthResponse struct {
	Status string            `json:"status"`
	Time   time.Time         `json:"time"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health answers 200 while every check passes and 503 otherwise.
func (h *ChartsEchoHandler) Health(c echo.Context) error {
	resp := healthResponse{Status: "healthy", Time: h.now().UTC()}
	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
		defer cancel()

		resp.Checks = make(map[string]string, len(h.checks))
		for name, check := range h.checks {
			if err := check(ctx); err != nil {
				h.logger.Warn("health check failed", xlogger.String("check", name), xlogger.Error(err))
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				continue
			}
			resp.Checks[name] = "ok"
		}
	}
	if resp.Status != "healthy" {
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, resp)
	}
	return xhttp.SuccessResponse(c, resp)
}

func toAppError(err error) error {
	var ve *models.ValidationError
	var ce *models.ComputationError
	switch {
	case errors.As(err, &ve):
		return xhttp.BadRequestError(ve.Field, ve.Message).WithError(err)
	case errors.As(err, &ce):
		return xhttp.UnprocessableError(ce.Error()).WithError(err)
	case errors.Is(err, models.ErrChartNotFound):
		return xhttp.NotFoundErrorf("chart not found").WithError(err)
	default:
		return xhttp.InternalError("chart service unavailable").WithError(err)
	}
}
