package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/medstore/internal/config"
	"github.com/kailas-cloud/medstore/internal/db/emulator"
	"github.com/kailas-cloud/medstore/internal/domain/asset"
	"github.com/kailas-cloud/medstore/internal/domain/clinic"
	logpkg "github.com/kailas-cloud/medstore/internal/logger"
	"github.com/kailas-cloud/medstore/internal/metrics"
	repoclinic "github.com/kailas-cloud/medstore/internal/repository/clinic"
	chiTransport "github.com/kailas-cloud/medstore/internal/transport/chi"
	"github.com/kailas-cloud/medstore/internal/transport/firestore"
	"github.com/kailas-cloud/medstore/internal/transport/httpclient"
	s3Transport "github.com/kailas-cloud/medstore/internal/transport/s3"
	"github.com/kailas-cloud/medstore/internal/transport/storage"
	"github.com/kailas-cloud/medstore/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/medstore/internal/usecase/health"
	"github.com/kailas-cloud/medstore/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting medstore gateway",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("store_emulator", cfg.Store.Emulator),
		zap.String("assets_driver", cfg.Assets.Driver),
	)

	ctx := context.Background()

	// Register store metrics explicitly (no init())
	metrics.RegisterStoreMetrics()

	httpClient := httpclient.New(httpclient.Config{
		Timeout:    time.Duration(cfg.Store.TimeoutSec) * time.Second,
		MaxRetries: cfg.Store.MaxRetries,
		Logger:     logger.Named("http"),
	})

	storeURL := cfg.Store.BaseURL
	if cfg.Store.Emulator {
		url, stop, err := startEmulator(logger)
		if err != nil {
			logger.Fatal("Failed to start store emulator", zap.Error(err))
		}
		defer stop()
		storeURL = url
	}

	store, err := firestore.NewClient(&firestore.Config{
		BaseURL:    storeURL,
		HTTPClient: httpClient,
		Logger:     logger.Named("store"),
	})
	if err != nil {
		logger.Fatal("Failed to create store client", zap.Error(err))
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, time.Duration(cfg.Store.TimeoutSec)*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		// Not fatal: /health reports it and calls fail with a Network reason.
		logger.Warn("Document store not reachable at startup", zap.Error(err))
	} else {
		logger.Info("Connected to document store")
	}
	cancelPing()

	uploader, assetChecker, err := buildUploader(ctx, cfg.Assets, httpClient, logger)
	if err != nil {
		logger.Fatal("Failed to create asset uploader", zap.Error(err))
	}

	// Repositories and use case services, one per kind
	repos := repoclinic.New(store, uploader)
	healthSvc := healthuc.New(store, assetChecker)

	server := chiTransport.NewServer(healthSvc, logger,
		chiTransport.WithMaxBodyBytes(int64(cfg.HTTP.MaxBodyMB)<<20),
	)
	chiTransport.Mount[clinic.Doctor](server, catalog.New[clinic.Doctor](clinic.KindDoctor, repos.Doctors))
	chiTransport.Mount[clinic.Hospital](server, catalog.New[clinic.Hospital](clinic.KindHospital, repos.Hospitals))
	chiTransport.Mount[clinic.Service](server, catalog.New[clinic.Service](clinic.KindService, repos.Services))
	chiTransport.Mount[clinic.Appointment](server, catalog.New[clinic.Appointment](clinic.KindAppointment, repos.Appointments))
	chiTransport.Mount[clinic.Blog](server, catalog.New[clinic.Blog](clinic.KindBlog, repos.Blogs))
	chiTransport.Mount[clinic.Achievement](server, catalog.New[clinic.Achievement](clinic.KindAchievement, repos.Achievements))
	chiTransport.Mount[clinic.PanelUser](server, catalog.New[clinic.PanelUser](clinic.KindPanelUser, repos.PanelUsers))

	httpMetrics := metrics.NewHTTP(prometheus.DefaultRegisterer)

	r := chi.NewRouter()
	r.Use(chiTransport.RequestID)
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(logpkg.Middleware(logger, chiTransport.GetRequestID))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(httpMetrics.Middleware)
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// startEmulator serves an in-memory store on a loopback port and returns its
// documents root.
func startEmulator(logger *zap.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("listen: %w", err)
	}
	srv := &http.Server{
		Handler:           emulator.New(emulator.WithLogger(logger.Named("emulator"))),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("Store emulator stopped", zap.Error(err))
		}
	}()

	url := "http://" + ln.Addr().String() + emulator.Root
	logger.Warn("Using in-memory store emulator, data is lost on exit", zap.String("url", url))
	return url, func() { _ = srv.Close() }, nil
}

// buildUploader selects the asset backend. The returned checker is nil when
// no backend is configured, so /health skips the assets check.
func buildUploader(
	ctx context.Context,
	cfg config.AssetsConfig,
	hc *http.Client,
	logger *zap.Logger,
) (asset.Uploader, healthuc.AssetChecker, error) {
	switch cfg.Driver {
	case config.AssetDriverStorage:
		u, err := storage.NewUploader(&storage.Config{
			BaseURL:    cfg.BaseURL,
			HTTPClient: hc,
			Logger:     logger.Named("assets"),
		})
		if err != nil {
			return nil, nil, err
		}
		return u, u, nil
	case config.AssetDriverS3:
		u, err := s3Transport.NewUploader(ctx, &s3Transport.Config{
			Bucket:        cfg.Bucket,
			Region:        cfg.Region,
			Endpoint:      cfg.Endpoint,
			PublicBaseURL: cfg.PublicBaseURL,
			Logger:        logger.Named("assets"),
		})
		if err != nil {
			return nil, nil, err
		}
		return u, u, nil
	default:
		logger.Info("No asset backend configured, writes with assets will fail at upload")
		return asset.Disabled{}, nil, nil
	}
}
