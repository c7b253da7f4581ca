package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/pharma-portal/internal/apiclient"
	"github.com/pribylovaa/pharma-portal/internal/config"
	"github.com/pribylovaa/pharma-portal/internal/credentials"
	gwhttp "github.com/pribylovaa/pharma-portal/internal/http"
	"github.com/pribylovaa/pharma-portal/internal/http/middleware"
	"github.com/pribylovaa/pharma-portal/internal/portal"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting portal-gateway", "env", cfg.Env, "backend", cfg.API.BaseURL)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	opts, err := cfg.API.Options()
	if err != nil {
		log.Error("config_invalid", slog.String("err", err.Error()))
		os.Exit(1)
	}
	opts.Metrics = apiclient.NewMetrics(prometheus.DefaultRegisterer)

	sessions, closeSessions, err := setupSessions(rootCtx, cfg)
	if err != nil {
		log.Error("sessions_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer closeSessions()

	reg, err := portal.NewRegistry(opts, sessions, portal.DefaultIdle)
	if err != nil {
		log.Error("registry_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	go reg.Run(rootCtx, log)

	log.Info("registry_initialized",
		slog.String("transport", string(opts.CredentialTransport)),
		slog.Int("max_refresh_attempts", cfg.API.MaxRefreshAttempts),
	)

	apiHandler := gwhttp.NewRouter(reg, gwhttp.Options{
		Logger:  log,
		Timeout: cfg.Timeouts.Request,
		Session: middleware.SessionOptions{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.Secure,
		},
	})

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.Handle("/", apiHandler)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)
	log.Info("gateway_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped", slog.Int("sessions", reg.Len()))
}

// setupSessions — пары токенов сессий: Redis, если задан REDIS_URL, иначе память процесса.
// В cookie-транспорте пары живут в cookie jar порталов, хранилище не нужно.
func setupSessions(ctx context.Context, cfg *config.Config) (credentials.Sessions, func(), error) {
	noop := func() {}

	if cfg.API.CredentialTransport == string(apiclient.TransportCookie) {
		return nil, noop, nil
	}

	if cfg.Redis.URL == "" {
		if cfg.Env == envProd {
			return nil, noop, errors.New("REDIS_URL is required in prod with bearer transport")
		}
		slog.Warn("sessions_in_memory", slog.String("reason", "REDIS_URL is empty"))
		return credentials.NewMemorySessions(), noop, nil
	}

	rs, err := credentials.NewRedisStore(ctx, cfg.Redis.URL, cfg.Redis.Prefix, cfg.Session.TTL)
	if err != nil {
		return nil, noop, err
	}

	return rs, func() {
		if err := rs.Close(); err != nil {
			slog.Warn("redis_close_failed", slog.String("err", err.Error()))
		}
	}, nil
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
