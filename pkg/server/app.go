package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"EvoTrader/internal/domain/repository"
	"EvoTrader/internal/usecase"
	"EvoTrader/pkg/cache"
	pkgch "EvoTrader/pkg/clickhouse"
	"EvoTrader/pkg/config"
	xhttp "EvoTrader/pkg/http"
	pkgkafka "EvoTrader/pkg/kafka"
	applogger "EvoTrader/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	engine      *usecase.Engine
	proc        *usecase.OutcomeProcessor
	httpHandler xhttp.Handler
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	collector   *usecase.TickCollector
	chClient    *pkgch.Client
	publisher   repository.SignalPublisher
	cache       cache.Service
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
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
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	a := &App{
		cfg:         cfg,
		logger:      l,
		engine:      engine,
		proc:        proc,
		httpHandler: handler,
		consumer:    consumer,
		collector:   collector,
		chClient:    chClient,
		publisher:   publisher,
		cache:       cacheSvc,
	}
	if kh != nil {
		a.kh = kh
	}
	return a
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.logger),
	)

	// Evolution loop
	go a.engine.Run(ctx)
	a.logger.Info("engine started",
		applogger.String("symbol", a.cfg.Engine.DefaultSymbol),
		applogger.String("mode", a.engine.SettingsSnap().Settings.ExecutionMode),
	)

	// Outcome sink worker
	go a.proc.Run(ctx)

	// Market feed collector
	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.logger.Error("collector error", applogger.Error(err))
			}
		}()
		a.logger.Info("feed collector started", applogger.Strings("symbols", a.cfg.Feed.Symbols))
	}

	// Kafka tick consumer
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.logger.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.logger.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.collector != nil {
		if err := a.collector.Stop(); err != nil {
			a.logger.Warn("collector stop error", applogger.Error(err))
		}
	}

	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("http shutdown error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.logger.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("signal publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
