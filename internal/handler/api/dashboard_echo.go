package api

import (
	"context"
	"net/http"
	"time"

	models "EconDash/internal/domain/models"
	xhttp "EconDash/pkg/http"
	xlogger "EconDash/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DatasetLoader is the pipeline as seen by the HTTP layer.
type DatasetLoader interface {
	Load(ctx context.Context) models.Result
	Refresh(ctx context.Context) models.Result
}

type HealthChecker interface {
	Health(ctx context.Context) error
}

// DashboardEchoHandler serves the yearly table, chart series and indicator list.
type DashboardEchoHandler struct {
	logger *xlogger.Logger
	loader DatasetLoader
	health HealthChecker
}

func NewDashboardEchoHandler(logger *xlogger.Logger, loader DatasetLoader, health HealthChecker) *DashboardEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &DashboardEchoHandler{logger: logger, loader: loader, health: health}
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/indicators", h.Indicators)
	g.GET("/yearly", h.Yearly)
	g.GET("/chart", h.Chart)
	g.POST("/refresh", h.Refresh)
	e.GET("/healthz", h.Healthz)
}

func (h *DashboardEchoHandler) Indicators(c echo.Context) error {
	return xhttp.SuccessResponse(c, models.Indicators())
}

func (h *DashboardEchoHandler) Yearly(c echo.Context) error {
	res := h.loader.Load(c.Request().Context())
	if !res.Available() {
		return h.unavailable(c, res)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) Chart(c echo.Context) error {
	req := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res := h.loader.Load(c.Request().Context())
	if !res.Available() {
		return h.unavailable(c, res)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, models.BuildChart(res.Rows, models.NormalizeIndicator(req.Indicator)))
}

func (h *DashboardEchoHandler) Refresh(c echo.Context) error {
	res := h.loader.Refresh(c.Request().Context())
	if !res.Available() {
		return h.unavailable(c, res)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) Healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.health.Health(ctx); err != nil {
		h.logger.Error("health check failed", xlogger.Error(err))
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *DashboardEchoHandler) unavailable(c echo.Context, res models.Result) error {
	msg := res.Message
	if msg == "" {
		msg = models.MessageUnavailable
	}
	appErr := xhttp.DataUnavailableError(msg)
	if res.Reason != models.FailureNone {
		appErr.WithParam("reason", string(res.Reason))
	}
	if res.RunID != "" {
		appErr.WithParam("run_id", res.RunID)
	}
	return xhttp.AppErrorResponse(c, appErr)
}
