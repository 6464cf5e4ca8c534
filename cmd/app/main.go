package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bcx_go/internal/app"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	flag.Parse()

	// Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, *configPath)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// run owns the session so that deferred cleanup happens before main exits.
func run(ctx context.Context, configPath string) error {
	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap()
	defer bootstrap.Close()

	if err := bootstrap.Initialize(configPath); err != nil {
		slog.Error("Bootstrapping failed", slog.Any("error", err))
		return err
	}

	// 2. Pprof Server (for performance profiling)
	if addr := bootstrap.Config.App.PprofAddr; addr != "" {
		go func() {
			slog.Info("Pprof server started", slog.String("addr", addr))
			if err := http.ListenAndServe(addr, nil); err != nil {
				slog.Error("Pprof server failed", slog.Any("error", err))
			}
		}()
	}

	slog.InfoContext(ctx, "bcx_go running. Press Ctrl+C to exit.",
		slog.String("symbol", bootstrap.Pair.Symbol()),
		slog.Bool("dry_run", bootstrap.Config.Trading.DryRun),
	)

	if err := bootstrap.Run(ctx); err != nil {
		slog.Error("Run failed", slog.Any("error", err))
		return err
	}
	return nil
}
