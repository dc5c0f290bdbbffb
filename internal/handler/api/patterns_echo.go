package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	models "github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
	icache "github.com/trade-stasvinokur/momentum-strategy-cameron/internal/service/cache"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/service/metrics"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/service/ratelimit"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/usecase"
	xhttp "github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/http"
	applogger "github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/logger"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/util"

	"github.com/labstack/echo/v4"
)

// PatternsEchoHandler exposes the scanner and detector endpoints.
type PatternsEchoHandler struct {
	l        *applogger.Logger
	analysis *usecase.PatternAnalysisUseCase
	agg      *usecase.AnalysisAggregateUseCase
	scan     *usecase.ScanUseCase
	cache    icache.BytesCache
	cacheTTL time.Duration
	rl       *ratelimit.Limiter
}

func NewPatternsEchoHandler(l *applogger.Logger, analysis *usecase.PatternAnalysisUseCase, agg *usecase.AnalysisAggregateUseCase, scan *usecase.ScanUseCase) *PatternsEchoHandler {
	metrics.Register()
	return &PatternsEchoHandler{
		l:        l,
		analysis: analysis,
		agg:      agg,
		scan:     scan,
		cacheTTL: 30 * time.Second,
		rl:       ratelimit.New(),
	}
}

// SetCache installs a response cache for detector endpoints.
func (h *PatternsEchoHandler) SetCache(c icache.BytesCache, ttl time.Duration) {
	h.cache = c
	if ttl > 0 {
		h.cacheTTL = ttl
	}
}

func (h *PatternsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/gap-scan", h.GapScan)
	g.GET("/vwap-levels", h.VwapLevels)
	g.GET("/gap-and-go", h.GapAndGo)
	g.GET("/flat-breakout", h.FlatBreakout)
	g.GET("/bull-flag", h.BullFlag)
	g.GET("/first-pullback", h.FirstPullback)
	g.GET("/abcd", h.ABCD)
	g.GET("/analysis", h.Analysis)
}

func (h *PatternsEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// mapDomainError translates known analysis failures into HTTP app errors.
// Everything unrecognized stays an internal error.
func mapDomainError(err error) error {
	if errors.Is(err, usecase.ErrNoCandles) {
		return xhttp.NotFoundError(err.Error()).WithError(err)
	}
	var dq *models.DataQualityError
	if errors.As(err, &dq) {
		return xhttp.BadRequestError(dq.Error()).WithError(err)
	}
	return err
}

func (h *PatternsEchoHandler) GapScan(c echo.Context) error {
	start := time.Now()
	endpoint := "gap_scan"
	defer func() { metrics.PatternLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":"+endpoint, 2, 0.5) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limited"})
	}
	date := util.ParseDateDefault(req.Date, time.Now().UTC())

	records, err := h.scan.Scan(c.Request().Context(), usecase.ScanParams{Date: date, MinGap: req.MinGap})
	if err != nil {
		metrics.PatternErrors.WithLabelValues(endpoint).Inc()
		h.l.Error("gap scan error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"date":    date.Format(util.DateLayout),
		"min_gap": req.MinGap,
		"results": records,
	})
}

// servePattern handles the shared flow of the per-pattern endpoints:
// validation, rate limit, cache lookup, usecase call, cache fill.
func (h *PatternsEchoHandler) servePattern(c echo.Context, endpoint string, run func(ctx context.Context, p usecase.PatternParams) (interface{}, error)) error {
	start := time.Now()
	defer func() { metrics.PatternLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.PatternRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":"+endpoint, 5, 2) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limited"})
	}
	date := util.ParseDateDefault(req.Date, time.Now().UTC())

	cacheKey := endpoint + ":" + req.Ticker + ":" + date.Format(util.DateLayout)
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
			h.l.Warn("pattern cache get error", applogger.String("key", cacheKey), applogger.Error(err))
		} else if ok {
			h.l.Debug("pattern cache hit", applogger.String("key", cacheKey))
			return xhttp.SuccessResponse(c, json.RawMessage(b))
		}
	}

	res, err := run(c.Request().Context(), usecase.PatternParams{
		Ticker: req.Ticker,
		UID:    req.UID,
		Date:   date,
	})
	if err != nil {
		metrics.PatternErrors.WithLabelValues(endpoint).Inc()
		h.l.Error("pattern usecase error",
			applogger.String("endpoint", endpoint),
			applogger.String("ticker", req.Ticker),
			applogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}

	if h.cache != nil {
		if b, err := json.Marshal(res); err == nil {
			if err := h.cache.SetBytes(cacheKey, b, h.cacheTTL); err != nil {
				h.l.Warn("pattern cache set error", applogger.String("key", cacheKey), applogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PatternsEchoHandler) VwapLevels(c echo.Context) error {
	return h.servePattern(c, "vwap_levels", func(ctx context.Context, p usecase.PatternParams) (interface{}, error) {
		return h.analysis.VwapLevels(ctx, p)
	})
}

func (h *PatternsEchoHandler) GapAndGo(c echo.Context) error {
	return h.servePattern(c, "gap_and_go", func(ctx context.Context, p usecase.PatternParams) (interface{}, error) {
		return h.analysis.GapAndGo(ctx, p)
	})
}

func (h *PatternsEchoHandler) FlatBreakout(c echo.Context) error {
	return h.servePattern(c, "flat_breakout", func(ctx context.Context, p usecase.PatternParams) (interface{}, error) {
		return h.analysis.FlatBreakout(ctx, p)
	})
}

func (h *PatternsEchoHandler) BullFlag(c echo.Context) error {
	return h.servePattern(c, "bull_flag", func(ctx context.Context, p usecase.PatternParams) (interface{}, error) {
		return h.analysis.BullFlag(ctx, p)
	})
}

func (h *PatternsEchoHandler) FirstPullback(c echo.Context) error {
	return h.servePattern(c, "first_pullback", func(ctx context.Context, p usecase.PatternParams) (interface{}, error) {
		return h.analysis.FirstPullback(ctx, p)
	})
}

func (h *PatternsEchoHandler) ABCD(c echo.Context) error {
	return h.servePattern(c, "abcd", func(ctx context.Context, p usecase.PatternParams) (interface{}, error) {
		return h.analysis.ABCD(ctx, p)
	})
}

func (h *PatternsEchoHandler) Analysis(c echo.Context) error {
	return h.servePattern(c, "analysis", func(ctx context.Context, p usecase.PatternParams) (interface{}, error) {
		return h.agg.Analyze(ctx, p)
	})
}
