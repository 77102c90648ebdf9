package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dicabi/inmobiliaria/api"
	"github.com/dicabi/inmobiliaria/config"
	"github.com/dicabi/inmobiliaria/copywriter"
	"github.com/dicabi/inmobiliaria/db"
	"github.com/dicabi/inmobiliaria/logger"
	"github.com/dicabi/inmobiliaria/telegram"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flags win over the environment and the .env file.
			for flag, env := range map[string]string{"port": "PORT", "store": "STORE_DRIVER"} {
				if !cmd.Flags().Changed(flag) {
					continue
				}
				v, _ := cmd.Flags().GetString(flag)
				if err := os.Setenv(env, v); err != nil {
					return err
				}
			}

			var envFiles []string
			if f, _ := cmd.Flags().GetString("env-file"); f != "" {
				envFiles = append(envFiles, f)
			}
			cfg, err := config.Load(envFiles...)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("port", "", "Port to listen on (overrides PORT)")
	cmd.Flags().String("store", "", "Store driver: mongo or memory (overrides STORE_DRIVER)")
	cmd.Flags().String("env-file", "", "Path to an env file (default .env)")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.New(logger.Config{
		Writer:  os.Stdout,
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.AppName,
	})
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeBackend()

	if err := api.EnsureIndexes(ctx, backend); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	deps := api.Deps{Backend: backend, CacheTTL: cfg.ReferenceCacheTTL}
	if cfg.Telegram.Enabled() {
		notifier, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			log.Warn("appointment notifications disabled", slog.String("error", err.Error()))
		} else {
			deps.Notifier = notifier
		}
	}
	if cfg.OpenAI.Enabled() {
		deps.Writer = copywriter.New(cfg.OpenAI.Token, cfg.OpenAI.Model)
	}

	srv, err := api.NewServer(cfg.Port, deps, log)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("rest server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("Server stopped")
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config, log *slog.Logger) (*db.Backend, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("Using the in-memory store; data is lost on exit")
		return db.NewMemoryBackend(), func() {}, nil
	}

	mongoClient, err := db.Create(ctx, db.Config{Url: cfg.Mongo.URL, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, nil, fmt.Errorf("could not set up database: %w", err)
	}
	log.Info("Connected to MongoDB", slog.String("database", cfg.Mongo.Database))

	closeFn := func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error("disconnect mongodb", slog.String("error", err.Error()))
		}
	}
	return db.NewMongoBackend(mongoClient, cfg.Mongo.Database), closeFn, nil
}
