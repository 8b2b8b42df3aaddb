package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"tonetranslate-go/internal/config"
	"tonetranslate-go/internal/constants"
	"tonetranslate-go/internal/events"
	th "tonetranslate-go/internal/handlers/translate"
	"tonetranslate-go/internal/logging"
	tracing "tonetranslate-go/internal/monitoring/tracing"
	srv "tonetranslate-go/internal/server"

	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	if *debug {
		// env wins over the file, and reloads keep it
		_ = os.Setenv("DEBUG", "true")
	}

	cm, err := config.NewConfigManager(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	cfg := cm.Current()
	if err := logging.Setup(cfg); err != nil {
		log.WithError(err).Fatal("failed to configure logging")
	}
	defer logging.Close()
	for _, w := range cfg.Validate().Warnings {
		log.WithField("field", w.Field).Warn(w.Message)
	}

	traceShutdown, err := tracing.Init(context.Background(), tracing.OptionsFromEnv())
	if err != nil {
		log.WithError(err).Warn("failed to initialize tracing")
	}
	defer func() {
		if err := traceShutdown(context.Background()); err != nil {
			log.WithError(err).Warn("failed to shutdown tracing")
		}
	}()

	log.WithFields(log.Fields{
		"version": constants.GetFullVersion(),
		"config":  *configPath,
	}).Info("Starting tonetranslate-go")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventHub := events.NewHub()
	cm.SetEventPublisher(eventHub)
	cm.OnChange(func(next *config.Config) {
		if err := logging.Setup(next); err != nil {
			log.WithError(err).Warn("failed to reapply logging config")
		}
		recordProviderGauges(next)
	})
	recordProviderGauges(cfg)
	if cfg.Security.Debug {
		eventHub.Subscribe(events.TopicAll, func(_ context.Context, evt events.Event) {
			log.WithField("topic", evt.Topic).Debugf("event: %+v", evt.Payload)
		})
	}
	cm.Watch(ctx)
	defer cm.Close()

	tracker, err := startUsageTracker(ctx, cfg, eventHub)
	if err != nil {
		log.WithError(err).Fatal("failed to start usage tracker")
	}

	engine, _ := srv.BuildEngine(cm, srv.Dependencies{
		Events:          eventHub,
		Usage:           tracker,
		ProviderFactory: th.DefaultFactory,
	})
	httpSrv := newHTTPServer(cfg, engine)
	serveErr := startHTTPServer(httpSrv)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Info("Shutdown signal received")
	case err := <-serveErr:
		log.WithError(err).Error("http server stopped unexpectedly")
	}

	shutdown(httpSrv, tracker)
	log.Info("Server stopped")
}
