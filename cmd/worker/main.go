package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jwalitptl/directory-admin/config"
	"github.com/jwalitptl/directory-admin/internal/email"
	"github.com/jwalitptl/directory-admin/internal/handler/health"
	"github.com/jwalitptl/directory-admin/internal/middleware"
	"github.com/jwalitptl/directory-admin/pkg/logger"
	"github.com/jwalitptl/directory-admin/pkg/messaging/redis"
	"github.com/jwalitptl/directory-admin/pkg/metrics"
	"github.com/jwalitptl/directory-admin/pkg/worker"
)

func setupHealthCheck(port int, log *logger.Logger, checks map[string]health.Check, gatherer prometheus.Gatherer) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(middleware.Recovery(log))
	health.NewHandler(checks, gatherer).RegisterRoutes(engine.Group(""))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, "health check server failed")
			os.Exit(1)
		}
	}()
	return srv
}

func main() {
	// Load config
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Logger.ToLoggerConfig()).WithFields(map[string]interface{}{
		"component": "relay",
	})

	// Initialize Redis broker
	rb, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &log.ZL)
	if err != nil {
		log.Fatal(err, "failed to create Redis broker")
	}
	defer rb.Close()

	mailer, err := email.NewSMTPService(cfg.Mail.ToEmailConfig())
	if err != nil {
		log.Fatal(err, "failed to configure mail")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.New("directory_relay")
	if err := m.Register(reg); err != nil {
		log.Fatal(err, "failed to register metrics")
	}

	relay, err := worker.NewRelay(rb, mailer, cfg.ToWorkerConfig(), log, m)
	if err != nil {
		log.Fatal(err, "invalid relay configuration")
	}

	checks := map[string]health.Check{}
	if p, ok := rb.(interface{ Ping(context.Context) error }); ok {
		checks["redis"] = p.Ping
	}
	healthSrv := setupHealthCheck(cfg.Relay.HealthPort, log, checks, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("shutting down...")
		cancel()
	}()

	log.Info("relay started", "channel", cfg.Redis.Channel)
	if err := relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error(err, "relay stopped")
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	_ = healthSrv.Shutdown(shutdownCtx)
}
