// Command presence-server runs the shared-cursor presence server.
//
// Usage:
//
//	presence-server [-config oxy.yaml] [-addr :8989]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-gl/config"
	"github.com/Carmen-Shannon/oxy-gl/engine/logging"
	"github.com/Carmen-Shannon/oxy-gl/presence"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	addr := flag.String("addr", "", "listen address, overrides the configuration")
	flag.Parse()

	if err := run(*configPath, *addr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, addr string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logger, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logging.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := presence.NewServer(
		presence.WithAddr(cfg.Server.Addr),
		presence.WithRoomSize(cfg.Server.RoomSize),
		presence.WithWorkers(cfg.Server.Workers),
		presence.WithQueueSize(cfg.Server.QueueSize),
	)
	return srv.ListenAndServe(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
