package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/scorchos/site/internal/config"
	"github.com/scorchos/site/internal/logging"
	"github.com/scorchos/site/internal/server"
)

func main() {
	// Flags override the environment
	port := flag.String("port", "", "Server port (overrides PORT)")
	host := flag.String("host", "", "Listen host (overrides HOST)")
	dev := flag.Bool("dev", false, "Development mode: colored debug logs")
	noGzip := flag.Bool("no-gzip", false, "Disable response compression")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	if *noGzip {
		cfg.Site.Gzip = false
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Info("starting scorchOS site",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("site", cfg.Site.Name),
		zap.Int("max_sessions", cfg.Shell.MaxSessions),
		zap.Duration("idle_timeout", cfg.Shell.IdleTimeout))

	srv, err := server.NewServer(*cfg, logger)
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
		_ = srv.Close()
		os.Exit(1)
	}

	logger.Info("shutdown complete")
	_ = srv.Close()
}
