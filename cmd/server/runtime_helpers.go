package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tonetranslate-go/internal/config"
	"tonetranslate-go/internal/constants"
	"tonetranslate-go/internal/events"
	"tonetranslate-go/internal/monitoring"
	srv "tonetranslate-go/internal/server"
	"tonetranslate-go/internal/upstream"
	"tonetranslate-go/internal/usage"
	"tonetranslate-go/internal/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// startUsageTracker opens the configured backend and feeds the tracker from
// translation.completed events.
func startUsageTracker(ctx context.Context, cfg *config.Config, hub *events.Hub) (*usage.Tracker, error) {
	storage, err := srv.BuildUsageStorage(ctx, cfg.Usage)
	if err != nil {
		return nil, err
	}
	loc, err := utils.ParseLocation(cfg.Usage.Timezone)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}
	interval := time.Duration(cfg.Usage.PersistIntervalSec) * time.Second
	tracker := usage.NewTracker(storage, interval)
	tracker.SetLocation(loc)
	if err := tracker.Start(ctx); err != nil {
		_ = storage.Close()
		return nil, err
	}
	tracker.Subscribe(hub)
	log.WithField("backend", usage.BackendLabel(storage)).Info("usage tracking enabled")
	return tracker, nil
}

func recordProviderGauges(cfg *config.Config) {
	for _, kind := range upstream.Kinds() {
		v := 0.0
		if upstream.SettingsFor(kind, cfg.Providers, nil).APIKey != "" {
			v = 1
		}
		monitoring.ProvidersConfigured.WithLabelValues(string(kind)).Set(v)
	}
	if !cfg.Providers.AnyConfigured() {
		log.Warn("no provider API keys configured, serving demo translations")
	}
}

func newHTTPServer(cfg *config.Config, engine *gin.Engine) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
	}
}

// startHTTPServer runs ListenAndServe in the background. The channel receives
// an error only if the server dies for a reason other than Shutdown.
func startHTTPServer(s *http.Server) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("Translation API listening on %s", s.Addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

// shutdown drains HTTP first so the last requests are counted, then flushes usage.
func shutdown(s *http.Server, tracker *usage.Tracker) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.ServerShutdownTimeout)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("http server shutdown")
	}
	if tracker != nil {
		if err := tracker.Stop(ctx); err != nil {
			log.WithError(err).Warn("usage tracker stop")
		}
	}
}
