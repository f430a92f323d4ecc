package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hively/hively/internal/bus"
	"github.com/hively/hively/internal/notify"
	"github.com/hively/hively/internal/snapshot"
	"github.com/hively/hively/internal/storage"
	"github.com/hively/hively/internal/worker"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the offline gateway and background worker",
		Long: `Start the local gateway that keeps the web shell available offline.

On startup the worker pre-caches the shell under the configured cache
version and evicts caches left over from older versions. While running it
serves navigations network-first with a cached fallback, serves assets
cache-first, and checks bill reminders at most twice a day.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	changes := bus.New()
	store, err := storage.Open(cfg.Database.Path, changes)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	snapshots := snapshot.New(store, changes)
	snapshots.Start(ctx)
	defer snapshots.Close()

	cache, err := worker.NewCache(cfg.Cache.Dir)
	if err != nil {
		return err
	}
	w, err := worker.New(cache, worker.Config{
		Origin:   cfg.Server.Origin,
		Version:  cfg.Cache.Version,
		Shell:    cfg.Cache.Shell,
		Precache: cfg.Cache.Precache,
	})
	if err != nil {
		return err
	}

	if err := w.Install(ctx); err != nil {
		return err
	}
	if err := w.Activate(ctx); err != nil {
		return err
	}

	notifications := notify.NewManager(
		notify.Permission(cfg.Notify.Permission),
		&notify.ExecSender{Command: cfg.Notify.Command},
	)
	clients := worker.NewRegistry()
	clicks := worker.NewClickHandler(notifications, clients, &worker.ExecOpener{}, cfg.Server.Origin)

	if notifications.Permission() == notify.PermissionGranted {
		waker := worker.NewReminderWaker(
			func() (*storage.Store, error) {
				return storage.Open(cfg.Database.Path, nil)
			},
			notifications,
			worker.WithWakeInterval(cfg.Notify.WakeInterval),
		)
		go waker.Run(ctx)
	} else {
		slog.Info("reminder notifications disabled", "permission", notifications.Permission())
	}

	gateway := worker.NewGateway(w, snapshots, clicks)
	server := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           gateway.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("gateway listening", "addr", cfg.Server.Listen, "origin", cfg.Server.Origin)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("gateway shutdown failed: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
