package api

import (
	"net/http"
	"time"

	"EvoTrader/internal/domain/models"
	"EvoTrader/internal/usecase"
	"EvoTrader/pkg/cache"
	xhttp "EvoTrader/pkg/http"
	xlogger "EvoTrader/pkg/logger"

	"github.com/labstack/echo/v4"
)

// EngineEchoHandler exposes the confirmation engine over HTTP.
type EngineEchoHandler struct {
	logger   *xlogger.Logger
	engine   *usecase.Engine
	cache    cache.Service
	cacheTTL time.Duration
}

func NewEngineEchoHandler(logger *xlogger.Logger, engine *usecase.Engine) *EngineEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &EngineEchoHandler{logger: logger, engine: engine}
}

// SetCache enables short-TTL caching of read-side snapshots.
func (h *EngineEchoHandler) SetCache(c cache.Service, ttl time.Duration) {
	h.cache = c
	if ttl <= 0 {
		ttl = 2 * time.Second
	}
	h.cacheTTL = ttl
}

func (h *EngineEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/alert", h.Alert)
	e.POST("/tick", h.Tick)
	e.GET("/status", h.Status)
	e.GET("/paper_trades", h.PaperTrades)
	e.GET("/bots", h.Bots)
	e.POST("/bots", h.UpsertBot)
	e.POST("/bots/:name/toggle", h.ToggleBot)
	e.GET("/signals", h.Signals)
	e.GET("/settings", h.Settings)
	e.POST("/settings", h.PatchSettings)
}

func (h *EngineEchoHandler) Alert(c echo.Context) error {
	req := &models.AlertRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res := h.engine.HandleAlert(c.Request().Context(), req)
	h.logger.Info("alert processed",
		xlogger.String("symbol", req.Symbol),
		xlogger.String("side", req.Side),
		xlogger.String("status", res.Status),
		xlogger.Float64("consensus", res.Consensus),
	)
	h.invalidateSnapshots(c)
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineEchoHandler) Tick(c echo.Context) error {
	req := &models.TickRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		// Tick ingestion reports failures as {ok:false, error}; a bad
		// payload never reaches the engine.
		return xhttp.DataResponse(c, http.StatusBadRequest, map[string]any{
			"ok":    false,
			"error": tickErrorMessage(verr),
		})
	}

	closed := h.engine.HandleTick(req)
	return xhttp.SuccessResponse(c, map[string]any{
		"ok":     true,
		"closed": len(closed),
	})
}

func tickErrorMessage(verr any) string {
	if errs, ok := verr.([]xhttp.ValidationError); ok && len(errs) > 0 {
		if errs[0].Message != "" {
			return errs[0].Message
		}
		return errs[0].Code
	}
	return "invalid tick payload"
}

func (h *EngineEchoHandler) Status(c echo.Context) error {
	if h.cache != nil {
		var cached models.StatusSnapshot
		if err := h.cache.Get(c.Request().Context(), "status", &cached); err == nil {
			return xhttp.SuccessResponse(c, cached)
		}
	}

	snap := h.engine.Status()
	if h.cache != nil {
		_ = h.cache.Set(c.Request().Context(), "status", snap, h.cacheTTL)
	}
	return xhttp.SuccessResponse(c, snap)
}

func (h *EngineEchoHandler) PaperTrades(c echo.Context) error {
	limit := xhttp.ClampLimit(c.QueryParam("limit"), 50, 500)
	trades := h.engine.PaperTrades(limit)
	return xhttp.ListResponse(c, trades, int64(len(trades)))
}

func (h *EngineEchoHandler) Bots(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]any{"bots": h.engine.Bots()})
}

func (h *EngineEchoHandler) UpsertBot(c echo.Context) error {
	req := &models.BotUpsertRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	bot := h.engine.UpsertBot(req.Config())
	h.logger.Info("bot registered", xlogger.String("name", bot.Name))
	h.invalidateSnapshots(c)
	return xhttp.SuccessResponse(c, map[string]any{"status": "ok", "bot": bot})
}

func (h *EngineEchoHandler) ToggleBot(c echo.Context) error {
	req := &models.BotToggleRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	name := c.Param("name")
	if err := h.engine.ToggleBot(name, *req.Active); err != nil {
		return xhttp.NotFoundResponse(c, "Bot not found")
	}
	h.invalidateSnapshots(c)
	return xhttp.SuccessResponse(c, map[string]any{"status": "ok", "active": *req.Active})
}

func (h *EngineEchoHandler) Signals(c echo.Context) error {
	limit := xhttp.ClampLimit(c.QueryParam("limit"), 50, 500)
	signals := h.engine.Signals(limit)
	return xhttp.SuccessResponse(c, map[string]any{"signals": signals})
}

func (h *EngineEchoHandler) Settings(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.engine.SettingsSnap())
}

func (h *EngineEchoHandler) PatchSettings(c echo.Context) error {
	patch := map[string]any{}
	if err := c.Bind(&patch); err != nil {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_UNKNOWN",
			Message: err.Error(),
		}})
	}

	snap := h.engine.PatchSettings(patch)
	h.logger.Info("settings patched", xlogger.Int("keys", len(patch)))
	h.invalidateSnapshots(c)
	return xhttp.SuccessResponse(c, snap)
}

func (h *EngineEchoHandler) invalidateSnapshots(c echo.Context) {
	if h.cache != nil {
		_ = h.cache.Delete(c.Request().Context(), "status")
	}
}
