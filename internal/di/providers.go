package di

import (
	"context"
	"fmt"
	"time"

	"EvoTrader/internal/domain/repository"
	"EvoTrader/internal/handler/api"
	mid "EvoTrader/internal/middleware"
	internalrepo "EvoTrader/internal/repository"
	"EvoTrader/internal/service/feed"
	"EvoTrader/internal/services/dispatch"
	"EvoTrader/internal/usecase"
	"EvoTrader/pkg/cache"
	pkgch "EvoTrader/pkg/clickhouse"
	"EvoTrader/pkg/config"
	xhttp "EvoTrader/pkg/http"
	pkgkafka "EvoTrader/pkg/kafka"
	applogger "EvoTrader/pkg/logger"
	"EvoTrader/pkg/metrics"
	"EvoTrader/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideDispatcher creates the live order dispatcher.
func ProvideDispatcher(cfg *config.Config, l *applogger.Logger) repository.Dispatcher {
	return dispatch.NewHTTPDispatcher(cfg.Dispatch.Timeout, l)
}

// ProvideEngine creates the confirmation engine and registers configured bots.
func ProvideEngine(
	cfg *config.Config,
	l *applogger.Logger,
	m repository.Metrics,
	d repository.Dispatcher,
) *usecase.Engine {
	engine := usecase.NewEngine(usecase.EngineConfig{
		DefaultSymbol:     cfg.Engine.DefaultSymbol,
		CandleSeconds:     cfg.Engine.CandleSeconds,
		CandleCapacity:    cfg.Engine.CandleCapacity,
		PopulationSize:    cfg.Engine.PopulationSize,
		Elites:            cfg.Engine.Elites,
		EvolveInterval:    cfg.Engine.EvolveInterval,
		AlertHistory:      cfg.Engine.AlertHistory,
		VoteWindow:        cfg.Engine.VoteWindow,
		SignalLogCapacity: cfg.Engine.SignalLogCapacity,
		MinConfirmScore:   cfg.Engine.MinConfirmScore,
		Seed:              cfg.Engine.Seed,
	}, cfg.Engine.Settings, l, m, d)

	for _, bc := range cfg.Engine.Bots {
		engine.UpsertBot(bc)
	}
	return engine
}

// ProvideClickHouseClient creates a ClickHouse client when storage is enabled.
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
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideTradeSink creates the closed-trade storage and runs its schema DDL.
func ProvideTradeSink(chClient *pkgch.Client, cfg *config.Config) (repository.TradeSink, error) {
	if chClient == nil {
		return nil, nil
	}
	sink := internalrepo.NewClickHouseTradeSink(chClient.DB(), cfg.ClickHouse.Table)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := chClient.InitSchema(ctx, sink.SchemaStatements()); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return sink, nil
}

// ProvideSignalProducer creates a Kafka producer for the signal bus.
func ProvideSignalProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.SignalBus.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.SignalBus.Brokers),
		pkgkafka.WithCompression(cfg.SignalBus.Compression),
		pkgkafka.WithRequiredAcks(cfg.SignalBus.RequiredAcks),
		pkgkafka.WithWriteTimeout(cfg.SignalBus.WriteTimeout),
		pkgkafka.WithAsync(cfg.SignalBus.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSignalPublisher creates the Kafka signal publisher repository.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SignalPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.SignalBus.Topic)
}

// ProvideOutcomeProcessor creates the background sink worker.
func ProvideOutcomeProcessor(
	engine *usecase.Engine,
	trades repository.TradeSink,
	signals repository.SignalPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.OutcomeProcessor {
	return usecase.NewOutcomeProcessor(engine, trades, signals, m, l)
}

// ProvideKafkaConsumer creates a Kafka consumer when tick ingestion is enabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaTicksHandler registers the handler for the ticks topic.
func ProvideKafkaTicksHandler(engine *usecase.Engine, m repository.Metrics, cfg *config.Config) *usecase.KafkaTicksHandler {
	return usecase.NewKafkaTicksHandler(cfg.Kafka.Topic, engine, m)
}

// ProvideTickStream creates the WebSocket market feed when enabled.
func ProvideTickStream(cfg *config.Config, l *applogger.Logger) repository.TickStream {
	if !cfg.Feed.Enabled {
		return nil
	}
	return feed.New(
		cfg.Feed.APIKey,
		cfg.Feed.WebSocketURL,
		cfg.Feed.Symbols,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PingInterval,
		l,
	)
}

// ProvideTickCollector creates the feed collector with its validation pipeline.
func ProvideTickCollector(
	stream repository.TickStream,
	engine *usecase.Engine,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.TickCollector {
	if stream == nil {
		return nil
	}
	pipe := mid.NewTickPipeline(engine, m, mid.WithMaxRPS(cfg.Feed.MaxRPS))
	return usecase.NewTickCollector(stream, pipe, engine, m)
}

// ProvideCache creates the snapshot cache backend.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if cfg.Cache.Backend == "redis" {
		c, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideHTTPHandler creates the engine API handler.
func ProvideHTTPHandler(l *applogger.Logger, engine *usecase.Engine, c cache.Service, cfg *config.Config) xhttp.Handler {
	h := api.NewEngineEchoHandler(l, engine)
	if c != nil {
		h.SetCache(c, cfg.Cache.TTL)
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	engine *usecase.Engine,
	proc *usecase.OutcomeProcessor,
	handler xhttp.Handler,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaTicksHandler,
	collector *usecase.TickCollector,
	chClient *pkgch.Client,
	publisher repository.SignalPublisher,
	cacheSvc cache.Service,
) *server.App {
	return server.New(cfg, l, engine, proc, handler, consumer, kh, collector, chClient, publisher, cacheSvc)
}
