package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/codegenesis/internal/config"
	"github.com/rpggio/codegenesis/internal/domain/activity"
	"github.com/rpggio/codegenesis/internal/domain/lifecycle"
	"github.com/rpggio/codegenesis/internal/generation"
	"github.com/rpggio/codegenesis/internal/logging"
	"github.com/rpggio/codegenesis/internal/mcp"
	"github.com/rpggio/codegenesis/internal/metrics"
	"github.com/rpggio/codegenesis/internal/observability"
	"github.com/rpggio/codegenesis/internal/redis"
	"github.com/rpggio/codegenesis/internal/sqlite"
	"github.com/rpggio/codegenesis/internal/storage"
	"github.com/rpggio/codegenesis/internal/transport"
)

var version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		file, err := logging.OpenFile(cfg.Log.Path, cfg.Log.MaxBytes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = file
		}
	}
	logger := logging.New(logWriter, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Exporter:     cfg.Tracing.Exporter,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		OTLPInsecure: cfg.Tracing.OTLPInsecure,
		SampleRatio:  cfg.Tracing.SampleRatio,
		ServiceName:  "codegenesis",
		Version:      version,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	// SQLite always holds the activity log; projects live in the selected backend.
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	kv, closeKV, err := openKV(ctx, cfg, db)
	if err != nil {
		logger.Error("failed to open project storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer closeKV()

	store := storage.NewProjectStore(kv, logger, m)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)
	generator := generation.New(generation.Config{
		BaseURL:     cfg.Generation.BaseURL,
		APIKey:      cfg.Generation.APIKey,
		ChatModel:   cfg.Generation.ChatModel,
		CodeModel:   cfg.Generation.CodeModel,
		Timeout:     cfg.Generation.Timeout,
		CodeTimeout: cfg.Generation.CodeTimeout,
		Language:    cfg.Generation.Language,
	}, logger, m)
	if cfg.Generation.APIKey == "" {
		logger.Warn("no generation API key configured; replies and code generation will fail")
	}

	manager := lifecycle.NewManager(store, generator, activitySvc, m, lifecycle.Config{
		SummarizeEvery: cfg.Lifecycle.SummarizeEvery,
	}, logger)
	state := manager.Init(ctx)
	logger.Info("lifecycle initialized", "projects", len(state.Index), "current", state.Current.ID, "backend", cfg.Storage.Backend)

	handler := mcp.NewHandler(manager)
	mcpServer := mcp.NewServer(mcp.Config{
		Handler:       handler,
		AuthEnabled:   cfg.Auth.Enabled,
		AuthToken:     cfg.Auth.Token,
		TransportMode: cfg.Transport.Mode,
		Version:       version,
		Logger:        logger,
	})

	// Branch based on transport mode
	if cfg.Transport.Mode == "stdio" {
		runStdioMode(ctx, logger, mcpServer)
		return
	}

	var metricsHandler http.Handler
	if m != nil {
		metricsHandler = m.Handler()
	}
	authToken := ""
	if cfg.Auth.Enabled {
		authToken = cfg.Auth.Token
	}
	router := transport.NewServer(transport.Options{
		RPC:       handler,
		Lifecycle: manager,
		MCP: sdkmcp.NewStreamableHTTPHandler(
			func(r *http.Request) *sdkmcp.Server { return mcpServer },
			&sdkmcp.StreamableHTTPOptions{
				SessionTimeout: 30 * time.Minute,
			},
		),
		Metrics:   metricsHandler,
		AuthToken: authToken,
		Logger:    logger,
	})
	runHTTPMode(ctx, logger, router, cfg.Server.Host, cfg.Server.Port)
}

func openKV(ctx context.Context, cfg config.Config, db *sqlite.DB) (storage.KV, func(), error) {
	switch cfg.Storage.Backend {
	case "redis":
		kv, err := redis.New(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { _ = kv.Close() }, nil
	default:
		return sqlite.NewKVStore(db), func() {}, nil
	}
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport", "auth", "disabled")

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, handler http.Handler, host string, port int) {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end with the process context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(ctx, logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(ctx context.Context, logger *slog.Logger, server *http.Server) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
