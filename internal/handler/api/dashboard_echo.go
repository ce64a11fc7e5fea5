package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/models"
	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/service/ratelimit"
	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/usecase"
	xhttp "github.com/FabienAstre/crypto-bullrun-dashboard/pkg/http"
	xlogger "github.com/FabienAstre/crypto-bullrun-dashboard/pkg/logger"
)

// DashboardEchoHandler exposes the dashboard over HTTP.
type DashboardEchoHandler struct {
	logger    *xlogger.Logger
	dashboard *usecase.DashboardUseCase
	rotation  *usecase.RotationUseCase
	ladder    *usecase.LadderUseCase
	rl        *ratelimit.Limiter
}

func NewDashboardEchoHandler(
	logger *xlogger.Logger,
	dashboard *usecase.DashboardUseCase,
	rotation *usecase.RotationUseCase,
	ladderUC *usecase.LadderUseCase,
) *DashboardEchoHandler {
	return &DashboardEchoHandler{
		logger:    logger,
		dashboard: dashboard,
		rotation:  rotation,
		ladder:    ladderUC,
		rl:        ratelimit.New(),
	}
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/snapshot", h.Snapshot)
	g.GET("/signals", h.Signals)
	g.GET("/rotation", h.Rotation)
	g.GET("/ladders", h.Ladders)
	g.POST("/ladder", h.Ladder)
}

func (h *DashboardEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Snapshot serves the raw inputs of the latest refresh. Degraded sources
// appear in the errors map rather than failing the request.
func (h *DashboardEchoHandler) Snapshot(c echo.Context) error {
	if !h.rl.Allow(c.RealIP()+":snapshot", 10, 2) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limited"})
	}

	snap, err := h.dashboard.Snapshot(c.Request().Context())
	if err != nil {
		h.logger.Error("snapshot usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, snap)
}

func (h *DashboardEchoHandler) Signals(c echo.Context) error {
	if !h.rl.Allow(c.RealIP()+":signals", 10, 2) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limited"})
	}

	res, err := h.dashboard.Signals(c.Request().Context())
	if err != nil {
		h.logger.Error("signals usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) Rotation(c echo.Context) error {
	if !h.rl.Allow(c.RealIP()+":rotation", 5, 1) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limited"})
	}

	advice, err := h.rotation.Advise(c.Request().Context())
	if err != nil {
		h.logger.Error("rotation usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, advice)
}

// Ladders serves the stock per-asset plans built from configured entries.
func (h *DashboardEchoHandler) Ladders(c echo.Context) error {
	plans, err := h.ladder.Plans(c.Request().Context())
	if err != nil {
		h.logger.Error("ladders usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, plans)
}

func (h *DashboardEchoHandler) Ladder(c echo.Context) error {
	req := &models.LadderRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	plan, err := h.ladder.Plan(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("ladder usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, plan)
}
