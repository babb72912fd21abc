package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mktdesk/streammux/internal/config"
	"github.com/mktdesk/streammux/internal/mux"
	"github.com/mktdesk/streammux/internal/server"
	"github.com/mktdesk/streammux/internal/transport"
	"github.com/mktdesk/streammux/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/muxd.yaml", "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Optional .env for local development; missing file is fine.
	godotenv.Load()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	logger.Info("starting muxd",
		"version", version.Version,
		"commit", version.Commit,
		"addr", cfg.Server.Addr,
	)

	tcfg := transport.Config{
		BackoffBase:       cfg.Upstream.BackoffBase.Std(),
		BackoffCap:        cfg.Upstream.BackoffCap.Std(),
		TokenFallback:     cfg.Upstream.TokenFallback.Std(),
		HeartbeatInterval: cfg.Upstream.HeartbeatInterval.Std(),
		HandshakeTimeout:  cfg.Upstream.HandshakeTimeout.Std(),
		WriteTimeout:      cfg.Upstream.WriteTimeout.Std(),
		ReadBuffer:        cfg.Upstream.ReadBuffer,
	}

	m := mux.New(
		mux.Config{SweepInterval: cfg.Sweeper.Interval.Std()},
		tcfg,
		transport.NewWSDialer(tcfg),
		logger.With("component", "mux"),
	)
	srv := server.New(cfg.Server, m, logger.With("component", "server"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.Run(ctx)
	}()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server failed", "error", err)
		stop()
	}

	wg.Wait()
	logger.Info("muxd stopped")
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
