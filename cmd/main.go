package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"offer-tracker/internal/api/logics"
	"offer-tracker/internal/api/models"
	"offer-tracker/internal/api/router"
	"offer-tracker/internal/config"
	"offer-tracker/internal/source"
	"offer-tracker/internal/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := config.GetEnvConfig()
	utils.InitTimeConfig()
	utils.InitHTTPConfig()
	logics.InitTrackerConfig()

	cfg := logics.GetTrackerConfig()
	if err := source.ValidateFields(cfg.Fields); err != nil {
		utils.LogWarnWithContext("startup", "invalid field paths, using defaults", err)
		cfg.Fields = source.DefaultFields
	}

	prefs := utils.OpenPreferenceStore(ctx)
	client := source.NewClient(cfg.APIURL, utils.GetHTTPClient(), cfg.Fields)
	tracker := logics.NewTracker(ctx, client, prefs, cfg)
	logics.InitTracker(tracker)

	logics.OnTrackerConfigChange(func(next models.TrackerConfig) {
		if next.APIURL != client.BaseURL() {
			utils.LogWarn("api_url changed to %s, restart to apply", next.APIURL)
		}
		tracker.ApplyConfig(next)
	})
	if path := logics.ConfigPath(); path != "" {
		if err := logics.WatchTrackerConfig(ctx, path); err != nil {
			utils.LogWarnWithContext("startup", "config hot reload disabled", err)
		}
	}

	if err := tracker.Start(ctx); err != nil {
		utils.LogFatal("failed to start dashboard poller: %v", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", env.Port),
		Handler:           router.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogInfo("server running on %s (listings API %s)", srv.Addr, client.BaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.LogFatal("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	utils.LogInfo("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogErrorWithContext("shutdown", "server shutdown failed", err)
	}
	if err := tracker.Close(); err != nil {
		utils.LogErrorWithContext("shutdown", "failed to close preference store", err)
	}
	utils.CloseHTTPClient()
}
