// Command fabriqd is the fabriq control plane daemon: it serves the
// gRPC entity API, runs the reconciler and GitOps consumer loops
// against the event stream, and exposes health/metrics over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/fabriq/internal/acl"
	"github.com/cuemby/fabriq/internal/config"
	"github.com/cuemby/fabriq/internal/eventstream"
	eventstreammemory "github.com/cuemby/fabriq/internal/eventstream/memory"
	eventstreampostgres "github.com/cuemby/fabriq/internal/eventstream/postgres"
	"github.com/cuemby/fabriq/internal/gitops"
	"github.com/cuemby/fabriq/internal/httpside"
	"github.com/cuemby/fabriq/internal/log"
	"github.com/cuemby/fabriq/internal/reconciler"
	"github.com/cuemby/fabriq/internal/rpcapi"
	"github.com/cuemby/fabriq/internal/service"
	"github.com/cuemby/fabriq/internal/storage"
	storagememory "github.com/cuemby/fabriq/internal/storage/memory"
	storagepostgres "github.com/cuemby/fabriq/internal/storage/postgres"
	"github.com/cuemby/fabriq/internal/telemetry"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fabriqd",
	Short: "fabriq control plane daemon",
	Long: `fabriqd serves the fabriq entity API and reconciles assignments
and GitOps manifests in the background. It reads its configuration
from the environment (see internal/config for the variables and their
defaults); only logging is set by the --log-level and --log-json flags.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	cobra.OnInitialize(initLogging)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, stream, err := buildBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("fabriqd: build storage backend: %w", err)
	}

	shutdownTelemetry, err := telemetry.Init(ctx, cfg)
	if err != nil {
		return fmt.Errorf("fabriqd: init telemetry: %w", err)
	}

	services := service.New(store, stream, cfg.Subscribers)
	oracle := buildOracle(cfg)

	errCh := make(chan error, 4)

	recon := reconciler.New(store, services)
	go func() {
		if err := reconciler.Run(ctx, recon, stream, cfg.ReconcilerConsumerID, pollInterval(cfg)); err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("reconciler loop: %w", err)
		}
	}()

	if cfg.GitURL != "" {
		if err := os.MkdirAll(cfg.GitOpsWorkDir, 0o755); err != nil {
			return fmt.Errorf("fabriqd: create gitops work dir: %w", err)
		}
		repo, err := gitops.NewRemoteRepo(cfg.GitOpsWorkDir, cfg.GitURL, cfg.GitRef, cfg.GitSSHKeyPath)
		if err != nil {
			return fmt.Errorf("fabriqd: clone gitops repo: %w", err)
		}
		processor := gitops.New(repo, store, cfg.GitOpsWorkDir, cfg.GitSSHKeyPath)
		go func() {
			if err := gitops.Run(ctx, processor, stream, cfg.GitOpsConsumerID, pollInterval(cfg)); err != nil && ctx.Err() == nil {
				errCh <- fmt.Errorf("gitops loop: %w", err)
			}
		}()
	} else {
		log.Logger.Warn().Msg("GITOPS_GIT_URL unset, GitOps processor disabled")
	}

	rpcServer := rpcapi.NewServer(store, services, oracle)
	go func() {
		log.Logger.Info().Str("addr", cfg.Endpoint).Msg("gRPC API listening")
		if err := rpcServer.Serve(cfg.Endpoint); err != nil {
			errCh <- fmt.Errorf("rpc server: %w", err)
		}
	}()

	httpServer := httpside.NewServer(store, stream)
	go func() {
		log.Logger.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP side-channel listening")
		if err := httpServer.Serve(ctx, cfg.HTTPAddr); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Logger.Error().Err(err).Msg("component failed, shutting down")
	}

	cancel()
	rpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	defer shutdownCancel()
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Logger.Warn().Err(err).Msg("telemetry shutdown")
	}

	return nil
}

func pollInterval(cfg config.Config) time.Duration {
	d := time.Duration(cfg.ReconcilerPollIntervalSeconds * float64(time.Second))
	if d < 250*time.Millisecond {
		return 250 * time.Millisecond
	}
	if d > 5*time.Second {
		return 5 * time.Second
	}
	return d
}

func buildBackend(ctx context.Context, cfg config.Config) (*storage.Store, eventstream.Stream, error) {
	switch cfg.StorageBackend {
	case "memory":
		return storagememory.New(), eventstreammemory.New(), nil
	case "postgres":
		pool, err := storagepostgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return storagepostgres.New(pool), eventstreampostgres.New(pool), nil
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

func buildOracle(cfg config.Config) acl.Oracle {
	switch cfg.ACLOracle {
	case "github":
		return &acl.GitHubOracle{BaseURL: cfg.GitHubBaseURL}
	default:
		return acl.NewStaticOracle()
	}
}
