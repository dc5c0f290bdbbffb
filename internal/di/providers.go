package di

import (
	"context"
	"fmt"
	"time"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/repository"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/handler/api"
	internalrepo "github.com/trade-stasvinokur/momentum-strategy-cameron/internal/repository"
	icache "github.com/trade-stasvinokur/momentum-strategy-cameron/internal/service/cache"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/service/report"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/service/tinvest"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/usecase"
	pkgch "github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/clickhouse"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/config"
	pkgkafka "github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/kafka"
	applogger "github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/logger"
	pkgmetrics "github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/metrics"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/queue"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return pkgmetrics.New()
}

// ProvideCandleSource creates the T-Invest REST client.
func ProvideCandleSource(cfg *config.Config) repository.CandleSource {
	return tinvest.New(
		cfg.TInvest.Token,
		cfg.TInvest.BaseURL,
		cfg.TInvest.RequestTimeout,
		cfg.TInvest.RateLimit,
	)
}

// ProvideCandleStream creates the T-Invest market data stream, or nil when
// no websocket endpoint is configured.
func ProvideCandleStream(cfg *config.Config) repository.CandleStream {
	if cfg.TInvest.WebSocketURL == "" {
		return nil
	}
	return tinvest.NewStream(
		cfg.TInvest.Token,
		cfg.TInvest.WebSocketURL,
		repository.NormalizeTimeframe(cfg.Scanner.Timeframe),
		cfg.TInvest.ReconnectDelay,
		cfg.TInvest.PingInterval,
	)
}

// ProvideClickHouseClient creates a ClickHouse client and initializes the
// candle schema. Returns nil when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.Schema()); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideCandleStore wraps the ClickHouse client as a candle store. Returns
// nil when ClickHouse is disabled; analyses then always hit the provider.
func ProvideCandleStore(ch *pkgch.Client) repository.CandleStore {
	if ch == nil {
		return nil
	}
	return internalrepo.NewCHCandleStore(ch)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSignalPublisher wraps the producer as a signal publisher.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SignalPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic)
}

// ProvideRedisClient creates the shared Redis client, or nil when disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideQueue creates the Redis job queue, or nil without Redis.
func ProvideQueue(l *applogger.Logger, cfg *config.Config, rdb *redis.Client) *queue.RedisQueue {
	if rdb == nil {
		return nil
	}
	return queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Redis.Queue.Workers,
		RetryLimit: 3,
		RetryDelay: 30 * time.Second,
	}, rdb, queue.ModeProducerConsumer)
}

// ProvidePatternAnalysis creates the per-pattern analysis use case.
func ProvidePatternAnalysis(source repository.CandleSource, store repository.CandleStore, m repository.Metrics, l *applogger.Logger, cfg *config.Config) *usecase.PatternAnalysisUseCase {
	return usecase.NewPatternAnalysisUseCase(source, store, m, l, cfg.Scanner.TickSize)
}

// ProvideAnalysisAggregate creates the consolidated analysis use case.
func ProvideAnalysisAggregate(analysis *usecase.PatternAnalysisUseCase, publisher repository.SignalPublisher, l *applogger.Logger) *usecase.AnalysisAggregateUseCase {
	return usecase.NewAnalysisAggregateUseCase(analysis, publisher, l)
}

// ProvideScan creates the gap scan use case.
func ProvideScan(source repository.CandleSource, store repository.CandleStore, m repository.Metrics, l *applogger.Logger, cfg *config.Config) *usecase.ScanUseCase {
	return usecase.NewScanUseCase(source, store, m, l, cfg.TInvest.Tickers)
}

// ProvideReportWriter creates the report writer.
func ProvideReportWriter(cfg *config.Config, l *applogger.Logger) *report.Writer {
	return report.NewWriter(cfg.Report.Dir, cfg.Report.Formats, l)
}

// ProvideOrchestrator wires the daily scan orchestrator. The queue is
// optional; without it scheduled runs execute inline.
func ProvideOrchestrator(scan *usecase.ScanUseCase, agg *usecase.AnalysisAggregateUseCase, reporter *report.Writer, q *queue.RedisQueue, l *applogger.Logger, cfg *config.Config) *usecase.Orchestrator {
	var qs queue.QueueService
	if q != nil {
		qs = q
	}
	return usecase.NewOrchestrator(scan, agg, reporter, qs, l, cfg.Scanner.MinGap, cfg.Scanner.RunAt)
}

// ProvideCandleCollector wires the live candle collector when both a stream
// and a store are configured.
func ProvideCandleCollector(stream repository.CandleStream, source repository.CandleSource, store repository.CandleStore, m repository.Metrics, l *applogger.Logger) *usecase.CandleCollector {
	if stream == nil || store == nil {
		return nil
	}
	return usecase.NewCandleCollector(stream, source, store, m, l)
}

// ProvideHandler creates the HTTP handler with its response cache.
func ProvideHandler(l *applogger.Logger, analysis *usecase.PatternAnalysisUseCase, agg *usecase.AnalysisAggregateUseCase, scan *usecase.ScanUseCase, rdb *redis.Client, cfg *config.Config) *api.PatternsEchoHandler {
	h := api.NewPatternsEchoHandler(l, analysis, agg, scan)

	ttl := cfg.Redis.CacheTTL.Patterns
	if rdb != nil {
		h.SetCache(icache.NewRedisCache(rdb), ttl)
	} else {
		h.SetCache(icache.NewMemoryCache(), ttl)
	}
	return h
}

// ProvideApp assembles the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.PatternsEchoHandler,
	orch *usecase.Orchestrator,
	q *queue.RedisQueue,
	collector *usecase.CandleCollector,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	rdb *redis.Client,
) *server.App {
	if q != nil {
		q.RegisterJob(usecase.NewScanDayJob(orch))
	}
	return server.New(cfg, l, handler, orch, q, collector, chClient, producer, rdb)
}
