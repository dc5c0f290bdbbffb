package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/handler/api"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/usecase"
	pkgch "github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/clickhouse"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/config"
	xhttp "github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/http"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/http/middleware"
	pkgkafka "github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/kafka"
	applogger "github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/logger"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/queue"

	"github.com/redis/go-redis/v9"
)

const slowRequestThreshold = 2 * time.Second

// App owns the application lifecycle: HTTP API, scheduled scans, the job
// queue and the optional live candle collector.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	handler    *api.PatternsEchoHandler
	orch       *usecase.Orchestrator
	queue      *queue.RedisQueue
	collector  *usecase.CandleCollector
	chClient   *pkgch.Client
	producer   *pkgkafka.Producer
	rdb        *redis.Client
	httpServer *xhttp.Server
}

func New(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.PatternsEchoHandler,
	orch *usecase.Orchestrator,
	q *queue.RedisQueue,
	collector *usecase.CandleCollector,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	rdb *redis.Client,
) *App {
	return &App{
		cfg:       cfg,
		l:         l,
		handler:   handler,
		orch:      orch,
		queue:     q,
		collector: collector,
		chClient:  chClient,
		producer:  producer,
		rdb:       rdb,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(middleware.Metrics(a.l, slowRequestThreshold)),
		xhttp.WithLogger(a.l),
	)

	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			a.l.Error("queue start failed", applogger.Error(err))
			return err
		}
	}

	go a.orch.Start(ctx)
	a.l.Info("scan scheduler started",
		applogger.Strings("tickers", a.cfg.TInvest.Tickers),
		applogger.String("run_at", a.cfg.Scanner.RunAt))

	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx, a.cfg.TInvest.Tickers); err != nil {
				a.l.Error("candle collector error", applogger.Error(err))
			}
		}()
		a.l.Info("candle collector started")
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown stops all services in reverse start order.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.collector != nil {
		if err := a.collector.Stop(); err != nil {
			a.l.Warn("candle collector stop error", applogger.Error(err))
		}
	}

	if a.queue != nil {
		if err := a.queue.Stop(shutdownCtx); err != nil {
			a.l.Warn("queue stop error", applogger.Error(err))
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.l.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.l.Warn("redis close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
