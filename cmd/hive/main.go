package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/colmeia/hive/internal/application"
	"github.com/colmeia/hive/internal/infrastructure/config"
	"github.com/colmeia/hive/internal/infrastructure/logger"
	"github.com/colmeia/hive/internal/infrastructure/persistence"
	"github.com/colmeia/hive/internal/infrastructure/relay"
	httpiface "github.com/colmeia/hive/internal/interfaces/http"
	"github.com/colmeia/hive/internal/interfaces/websocket"
	"github.com/colmeia/hive/pkg/safego"
)

const (
	appName    = "hive"
	appVersion = "0.1.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Hive - multi-agent chat console",
		Long:  "Hive is a multi-agent LLM chat console with Telegram relay mirroring.",
		RunE:  runServe,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the console server (default)",
		RunE:  runServe,
	})

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup of the console state",
		RunE:  runExport,
	}
	exportCmd.Flags().StringP("out", "o", "hive-backup.json", "output file path")
	rootCmd.AddCommand(exportCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Restore console state from a backup file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s v%s\n", appName, appVersion)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads config, logger and the snapshot store shared by every
// command.
func bootstrap(quiet bool) (*config.Config, config.EnvSecrets, persistence.SnapshotStore, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.EnvSecrets{}, nil, nil, fmt.Errorf("config: %w", err)
	}

	level := cfg.Log.Level
	if quiet {
		level = "error"
	}
	log, err := logger.NewLogger(logger.Config{
		Level:      level,
		Format:     cfg.Log.Format,
		OutputPath: "stdout",
	})
	if err != nil {
		return nil, config.EnvSecrets{}, nil, nil, fmt.Errorf("logger init: %w", err)
	}

	store, err := newStore(cfg)
	if err != nil {
		return nil, config.EnvSecrets{}, nil, nil, err
	}

	return cfg, config.ReadEnvSecrets(), store, log, nil
}

func newStore(cfg *config.Config) (persistence.SnapshotStore, error) {
	switch cfg.Storage.Type {
	case "file":
		return persistence.NewFileStore(cfg.Storage.Path), nil
	case "sqlite", "postgres":
		db, err := persistence.NewDBConnection(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		return persistence.NewGormStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, env, store, log, err := bootstrap(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Starting Hive",
		zap.String("version", appVersion),
		zap.String("storage", cfg.Storage.Type),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub(log)
	safego.Go(log, "websocket-hub", func() {
		hub.Run(ctx)
	})

	app, err := application.NewApp(cfg, env, store, hub, log)
	if err != nil {
		log.Error("Failed to initialize application", zap.Error(err))
		return err
	}

	listener := relay.NewListener(app.RelayConfig, app.HandleInboundText, log)
	safego.Go(log, "relay-listener", func() {
		if err := listener.Run(ctx); err != nil {
			log.Error("Inbound bridge stopped", zap.Error(err))
		}
	})

	server := httpiface.NewServer(httpiface.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
		Mode: cfg.Server.Mode,
	}, app, hub, log)
	if err := server.Start(ctx); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Received shutdown signal", zap.String("signal", sig.String()))

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during shutdown", zap.Error(err))
		return err
	}

	log.Info("Stopped")
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, env, store, log, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer log.Sync()

	app, err := application.NewApp(cfg, env, store, nil, log)
	if err != nil {
		return err
	}

	doc, err := app.Export(context.Background())
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if err := os.WriteFile(out, data, 0o600); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	fmt.Printf("Exported %d agents and %d conversations to %s\n",
		len(doc.Agents), len(doc.Conversations), out)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, env, store, log, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer log.Sync()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}

	app, err := application.NewApp(cfg, env, store, nil, log)
	if err != nil {
		return err
	}
	if err := app.Import(context.Background(), data); err != nil {
		return err
	}

	fmt.Printf("Imported state from %s\n", args[0])
	return nil
}
