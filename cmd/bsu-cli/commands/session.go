package commands

import (
	"context"
	"log/slog"
	"os"
	"studentbsu/internal/components/osutil"
	"studentbsu/internal/components/telemetry"
	"studentbsu/internal/scrapers/bsu"
	"time"
)

// openSession builds a session from the config file and flags. The returned
// function flushes telemetry and must be called before exiting.
func openSession(ctx context.Context) (*bsu.Session, func()) {
	// an explicit --config names one file, the default is searched for upwards
	recursive := !rootCmd.PersistentFlags().Changed("config")
	cfg, err := LoadConfig(*configPath, recursive, flagOverrides)
	if err != nil {
		osutil.Fatal("failed to read config", err)
	}

	shutdown := func() {}
	if cfg.Otlp.Enabled() {
		otel, err := telemetry.SetupOtel(ctx, "bsu-cli", cfg.Otlp)
		if err != nil {
			osutil.Fatal("failed to setup opentelemetry", err)
		}
		shutdown = func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			err := otel.Shutdown(ctx)
			if err != nil {
				slog.Warn("failed to flush telemetry", "err", err)
			}
		}
	}

	opts := cfg.SessionOptions()
	opts.Telemetry = telemetry.SlogAPI{}
	if opts.CaptchaSolver == nil {
		opts.CaptchaSolver = bsu.NewPromptSolver(os.Stdin, os.Stderr)
	}
	if cfg.DumpDir != "" {
		output, err := telemetry.NewFilesystemOutput(cfg.DumpDir)
		if err != nil {
			osutil.Fatal("failed to create dump directory", err)
		}
		opts.Output = output
	}

	session, err := bsu.NewSession(cfg.Identity(), opts)
	if err != nil {
		osutil.Fatal("failed to create session", err)
	}
	slog.Debug("session created", "surname", cfg.Surname, "base_url", opts.BaseUrl)

	return session, shutdown
}
