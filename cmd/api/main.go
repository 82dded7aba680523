package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zma-auto/taxi-landing/internal/api/router"
	"github.com/zma-auto/taxi-landing/internal/app/bootstrap"
	"github.com/zma-auto/taxi-landing/internal/capture"
	appconfig "github.com/zma-auto/taxi-landing/internal/config"
	"github.com/zma-auto/taxi-landing/internal/countdown"
	httpmiddleware "github.com/zma-auto/taxi-landing/internal/http/middleware"
	"github.com/zma-auto/taxi-landing/internal/landing"
	"github.com/zma-auto/taxi-landing/internal/observability/metrics"
	"github.com/zma-auto/taxi-landing/internal/session"
	"github.com/zma-auto/taxi-landing/pkg/logging"
)

const sessionSweepInterval = time.Minute

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting zma landing server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	metricsHandler, leadMetrics := setupMetrics()
	app := setupApp(ctx, cfg, leadMetrics, metricsHandler, logger)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     app.handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the countdown websocket stays open until the deadline.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	app.close()

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func setupMetrics() (http.Handler, *metrics.LeadMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewLeadMetrics(reg)
}

type application struct {
	handler http.Handler
	close   func()
}

// setupApp wires the landing service and starts its background loops; they
// stop when ctx is cancelled.
func setupApp(ctx context.Context, cfg *appconfig.Config, m *metrics.LeadMetrics, metricsHandler http.Handler, logger *logging.Logger) *application {
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	queue := bootstrap.BuildRetryQueue(cfg, redisClient, m, logger)
	gateway := bootstrap.BuildGateway(cfg, queue, m, logger)

	if replayer := bootstrap.BuildReplayer(cfg, queue, gateway, m, logger); replayer != nil {
		go replayer.Start(ctx)
	}

	sessions := session.NewStore(func() *capture.Set {
		return capture.NewSet(capture.Schemas(), gateway, m)
	}, cfg.SessionTTL)
	go sessions.Run(ctx, sessionSweepInterval)

	deadline := cfg.PromoDeadlineTime()
	logger.Info("promo deadline", "deadline", deadline.Format(time.RFC3339))

	landingHandler := landing.NewHandler(landing.Config{
		PublicBaseURL: cfg.PublicBaseURL,
		Sessions:      sessions,
		Timer:         countdown.NewTimer(deadline),
		Contact: landing.Contact{
			ManagerName: cfg.ContactManagerName,
			WhatsAppURL: cfg.ContactWhatsAppURL,
			QuotaNote:   cfg.ContactQuotaNote,
		},
		SecureCookie: cfg.Env == "production",
		Logger:       logger,
	})

	limiter := httpmiddleware.NewRateLimiter(cfg.SubmitRatePerSec, cfg.SubmitRateBurst)
	go limiter.Run(ctx)

	handler := router.New(&router.Config{
		Logger:             logger,
		Landing:            landingHandler,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		SubmitLimiter:      limiter,
	})

	return &application{
		handler: handler,
		close: func() {
			if redisClient != nil {
				if err := redisClient.Close(); err != nil {
					logger.Warn("failed to close redis client", "error", err)
				}
			}
		},
	}
}
