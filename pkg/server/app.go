package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "StockCast/internal/domain/repository"
	pkgch "StockCast/pkg/clickhouse"
	"StockCast/pkg/config"
	xhttp "StockCast/pkg/http"
	applogger "StockCast/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	stream     domrepo.QuoteStream
	metrics    domrepo.Metrics
	chClient   *pkgch.Client
	publisher  domrepo.Publisher
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	stream domrepo.QuoteStream,
	metrics domrepo.Metrics,
	chClient *pkgch.Client,
	publisher domrepo.Publisher,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		handler:   handler,
		stream:    stream,
		metrics:   metrics,
		chClient:  chClient,
		publisher: publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start live quote stream if configured
	if a.stream != nil {
		go a.runStream(ctx)
		a.log.Info("quote stream starting", applogger.Strings("symbols", a.cfg.Stream.Symbols))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// runStream keeps the quote feed alive, pushing last prices into metrics so
// dashboards stay live between full analyses. Reconnects on any read error.
func (a *App) runStream(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if !a.stream.IsConnected() {
			if err := a.stream.Connect(ctx); err != nil {
				a.log.Warn("quote stream connect failed", applogger.Error(err))
				if err := a.stream.Reconnect(ctx); err != nil {
					a.log.Warn("quote stream reconnect failed", applogger.Error(err))
					continue
				}
			} else if err := a.stream.Subscribe(ctx); err != nil {
				a.log.Warn("quote stream subscribe failed", applogger.Error(err))
				continue
			}
		}

		quotes, errs := a.stream.Read(ctx)
	consume:
		for {
			select {
			case <-ctx.Done():
				return
			case q, ok := <-quotes:
				if !ok {
					break consume
				}
				a.metrics.RecordLastPrice(q.Symbol, q.Price)
			case err, ok := <-errs:
				if !ok {
					break consume
				}
				a.log.Warn("quote stream read error", applogger.Error(err))
				break consume
			}
		}

		if err := a.stream.Reconnect(ctx); err != nil {
			a.log.Warn("quote stream reconnect failed", applogger.Error(err))
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.stream != nil {
		if err := a.stream.Close(); err != nil {
			a.log.Warn("quote stream close error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
