package api

import (
	"encoding/json"
	"time"

	"github.com/labstack/echo/v4"

	models "SediPull/internal/domain/models"
	icache "SediPull/internal/service/cache"
	"SediPull/internal/service/metrics"
	"SediPull/internal/service/ratelimit"
	"SediPull/internal/usecase"
	xhttp "SediPull/pkg/http"
	xlogger "SediPull/pkg/logger"
)

// SignalsEchoHandler exposes the scoring pipeline over HTTP: stored
// signals, filing history, the combined overview, on-demand scans and
// watchlist management.
type SignalsEchoHandler struct {
	logger   *xlogger.Logger
	scanner  *usecase.Scanner
	overview *usecase.OverviewUseCase
	history  *usecase.HistoryUseCase
	cache    icache.BytesCache
	rl       *ratelimit.Limiter
}

func NewSignalsEchoHandler(
	logger *xlogger.Logger,
	scanner *usecase.Scanner,
	overview *usecase.OverviewUseCase,
	history *usecase.HistoryUseCase,
) *SignalsEchoHandler {
	metrics.Register()
	return &SignalsEchoHandler{
		logger:   logger,
		scanner:  scanner,
		overview: overview,
		history:  history,
		rl:       ratelimit.New(),
	}
}

// SetCache enables response caching for read endpoints.
func (h *SignalsEchoHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signals", h.Signals)
	g.GET("/overview", h.Overview)
	g.GET("/filings", h.Filings)
	g.POST("/scan", h.Scan)
	g.GET("/watchlist", h.Watchlist)
	g.POST("/watchlist", h.AddWatch)
	g.DELETE("/watchlist/:symbol", h.RemoveWatch)
}

// Signals returns the latest stored signals for a security.
func (h *SignalsEchoHandler) Signals(c echo.Context) error {
	start := time.Now()
	endpoint := "signals"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.overview.GetOverview(c.Request().Context(), usecase.GetOverviewParams{
		Symbol: req.Symbol,
		Limit:  req.Limit,
	})
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("signals usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res.Signals)
}

// Overview returns signals, filing count and quote snapshot in one call.
// Responses are cached briefly: the dashboard polls this endpoint.
func (h *SignalsEchoHandler) Overview(c echo.Context) error {
	start := time.Now()
	endpoint := "overview"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":overview", 5, 2) {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		return echo.NewHTTPError(429, "rate limited")
	}

	cacheKey := "overview:" + req.Symbol
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
			h.logger.Warn("overview cache_get_error", xlogger.Error(err))
		} else if ok {
			var cached usecase.SymbolOverview
			if err := json.Unmarshal(b, &cached); err == nil {
				return xhttp.SuccessResponse(c, &cached)
			}
		}
	}

	res, err := h.overview.GetOverview(c.Request().Context(), usecase.GetOverviewParams{
		Symbol: req.Symbol,
		Limit:  req.Limit,
	})
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("overview usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	if h.cache != nil {
		if b, err := json.Marshal(res); err == nil {
			if err := h.cache.SetBytes(cacheKey, b, 30*time.Second); err != nil {
				h.logger.Warn("overview cache_set_error", xlogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, res)
}

// Filings returns raw stored filing history for audit.
func (h *SignalsEchoHandler) Filings(c echo.Context) error {
	start := time.Now()
	endpoint := "filings"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.history.GetFilings(c.Request().Context(), usecase.GetFilingsParams{
		Symbol: req.Symbol,
		Limit:  req.Limit,
	})
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("filings usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Scan triggers a synchronous rescore of one security. Rate limited
// hard: every scan may hit the quote provider.
func (h *SignalsEchoHandler) Scan(c echo.Context) error {
	start := time.Now()
	endpoint := "scan"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":scan", 3, 1) {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		return echo.NewHTTPError(429, "rate limited")
	}

	res, err := h.scanner.ScanSymbol(c.Request().Context(), req.Symbol)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("scan usecase error",
			xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsEchoHandler) Watchlist(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.scanner.Watchlist())
}

func (h *SignalsEchoHandler) AddWatch(c echo.Context) error {
	req := &models.WatchlistRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	h.scanner.Watch(req.Symbol)
	return xhttp.CreatedResponse(c, h.scanner.Watchlist())
}

func (h *SignalsEchoHandler) RemoveWatch(c echo.Context) error {
	symbol := c.Param("symbol")
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol required")
	}
	h.scanner.Unwatch(symbol)
	return xhttp.SuccessResponse(c, h.scanner.Watchlist())
}
