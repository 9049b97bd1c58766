package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jwalitptl/directory-admin/config"
	"github.com/jwalitptl/directory-admin/internal/apiclient"
	"github.com/jwalitptl/directory-admin/internal/directory"
	"github.com/jwalitptl/directory-admin/internal/handler/doctor"
	"github.com/jwalitptl/directory-admin/internal/handler/form"
	"github.com/jwalitptl/directory-admin/internal/handler/health"
	"github.com/jwalitptl/directory-admin/internal/handler/resource"
	"github.com/jwalitptl/directory-admin/internal/handler/treatment"
	"github.com/jwalitptl/directory-admin/internal/middleware"
	"github.com/jwalitptl/directory-admin/internal/notify"
	"github.com/jwalitptl/directory-admin/internal/router"
	"github.com/jwalitptl/directory-admin/internal/store"
	"github.com/jwalitptl/directory-admin/pkg/logger"
	"github.com/jwalitptl/directory-admin/pkg/messaging"
	"github.com/jwalitptl/directory-admin/pkg/messaging/redis"
	"github.com/jwalitptl/directory-admin/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Logger.ToLoggerConfig())
	if err := cfg.Validate(); err != nil {
		log.Fatal(err, "invalid configuration")
	}

	client, err := apiclient.New(apiclient.Config{
		BaseURL:   cfg.API.BaseURI,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
	}, log)
	if err != nil {
		log.Fatal(err, "failed to create API client")
	}

	// Metrics
	var (
		m        *metrics.Metrics
		gatherer prometheus.Gatherer
		recorder store.Recorder
		httpRec  middleware.HTTPRecorder
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New("directory_admin")
		if err := m.Register(reg); err != nil {
			log.Fatal(err, "failed to register metrics")
		}
		gatherer, recorder, httpRec = reg, m, m
	}

	// Notifiers: toasts for the response, the log, and optionally the relay channel
	notifiers := notify.Multi{notify.Collecting{}, notify.NewLog(log)}
	checks := map[string]health.Check{
		"api": apiReachable(client, cfg.API.HealthPath),
	}

	if cfg.Notify.BrokerEnabled {
		broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &log.ZL)
		if err != nil {
			log.Fatal(err, "failed to connect to Redis")
		}
		defer broker.Close()

		var pubRec notify.PublishRecorder
		if m != nil {
			pubRec = m
		}
		notifiers = append(notifiers, notify.NewBroker(broker, notify.BrokerConfig{
			Channel: cfg.Redis.Channel,
			Source:  cfg.Notify.Source,
			Timeout: cfg.Notify.Timeout,
		}, log, pubRec))
		checks["redis"] = brokerReachable(broker)
	}

	dir := directory.New(client, directory.Options{
		Notifier:     notifiers,
		Recorder:     recorder,
		Logger:       log,
		UploadKeys:   cfg.UploadKeys,
		AssetBaseURL: cfg.API.AssetBaseURL,
	})

	// Initialize handlers
	formHandler := form.NewHandler(dir, cfg.Cache.OptionsTTL)
	console := []router.Handler{
		resource.NewHandler(dir, formHandler.Invalidate),
		doctor.NewHandler(dir.Doctors),
		treatment.NewHandler(dir.Treatments),
		formHandler,
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORS.AllowedOrigins
	size := middleware.DefaultSizeLimitConfig()
	if cfg.Server.MaxUploadSize > 0 {
		size.MaxUploadSize = cfg.Server.MaxUploadSize
	}

	r := router.NewRouter(log, health.NewHandler(checks, gatherer), console, router.RouterConfig{
		RateLimit:  cfg.RateLimit.RPS,
		RateBurst:  cfg.RateLimit.Burst,
		CORSConfig: cors,
		SizeLimit:  size,
		Metrics:    httpRec,
	})

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info("console server listening", "addr", srv.Addr, "api", client.BaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "server forced to shutdown")
		return
	}

	log.Info("server exited properly")
}

// apiReachable sends HEAD to path; only transport failures fail the check.
func apiReachable(client *apiclient.Client, path string) health.Check {
	return func(ctx context.Context) error {
		return client.Ping(ctx, path)
	}
}

func brokerReachable(b messaging.Broker) health.Check {
	pinger, ok := b.(interface{ Ping(context.Context) error })
	return func(ctx context.Context) error {
		if !ok {
			return nil
		}
		return pinger.Ping(ctx)
	}
}
