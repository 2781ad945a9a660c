// Command s3-signer serves presigned-URL access to an S3-compatible object
// store, keeping the access key and secret on the server side.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/media-io/s3-signer/internal/config"
	"github.com/media-io/s3-signer/internal/server"
)

// version is injected at link time.
var version = "dev"

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// envOr falls back to an environment variable when the flag is left at its
// zero default, mirroring the historical CLI surface.
func envOr(flagValue, envKey, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return fallback
}

func run(ctx context.Context) error {
	accessKeyID := flag.String("aws-access-key-id", "", "AWS Access Key ID (env AWS_ACCESS_KEY_ID)")
	secretAccessKey := flag.String("aws-secret-access-key", "", "AWS Secret Access Key (env AWS_SECRET_ACCESS_KEY)")
	region := flag.String("aws-region", "", "AWS Region (env AWS_REGION, default "+config.DefaultRegion+")")
	hostname := flag.String("aws-hostname", "", "AWS Hostname, required for non-AWS S3 endpoints (env AWS_HOSTNAME)")
	port := flag.String("port", "", "port number to serve the signer on (env PORT, default 8000)")
	verbosity := flag.Int("v", 0, "verbosity level (0-4)")
	flag.Parse()

	setupLogger(*verbosity)

	cfg, err := loadStore(
		envOr(*accessKeyID, "AWS_ACCESS_KEY_ID", ""),
		envOr(*secretAccessKey, "AWS_SECRET_ACCESS_KEY", ""),
		envOr(*region, "AWS_REGION", ""),
		envOr(*hostname, "AWS_HOSTNAME", ""),
	)
	if err != nil {
		return fmt.Errorf("invalid store configuration: %w", err)
	}

	srv := server.New(cfg, version)

	httpServer := &http.Server{
		Addr:              ":" + envOr(*port, "PORT", "8000"),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 20 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	eg.Go(func() error {
		slog.Info("listening", "addr", httpServer.Addr, "version", version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	return eg.Wait()
}

func loadStore(accessKeyID, secretAccessKey, region, hostname string) (config.Store, error) {
	if hostname != "" {
		return config.NewWithHostname(accessKeyID, secretAccessKey, region, hostname)
	}
	return config.New(accessKeyID, secretAccessKey, region)
}

func setupLogger(verbosity int) {
	var level log.Level
	switch verbosity {
	case 0:
		level = log.ErrorLevel
	case 1:
		level = log.WarnLevel
	case 2:
		level = log.InfoLevel
	default:
		level = log.DebugLevel
	}

	handler := log.NewWithOptions(os.Stdout, log.Options{
		Level:           level,
		TimeFormat:      time.RFC3339,
		ReportTimestamp: true,
	})
	slog.SetDefault(slog.New(handler))
}
