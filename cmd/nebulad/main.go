package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"nebula/internal/app"
	"nebula/internal/retention"
	"nebula/pkg/config"
)

// build metadata - set via ldflags during build/release
var (
	version = "dev"
	commit  = "none"
)

func main() {
	flags := config.ParseFlags()
	cfgPath := config.ResolveConfigPath(flags.Config, flags.Set["config"])

	cfg, err := config.LoadEffective(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// explicit flags win over config/env
	if flags.Set["addr"] {
		cfg.Server.Address = flags.Addr
	}
	if flags.Set["db"] || cfg.Server.DBPath == "" {
		cfg.Server.DBPath = flags.DB
	}

	source := "flags"
	if _, statErr := os.Stat(cfgPath); statErr == nil {
		source = cfgPath
	}

	verStr := version
	if commit != "none" {
		verStr += " (" + commit + ")"
	}

	a, err := app.New(cfg, source, verStr)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stopRetention, err := retention.Start(ctx, cfg.Retention)
	if err != nil {
		log.Fatalf("retention setup failed: %v", err)
	}
	defer stopRetention()

	if err := a.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
