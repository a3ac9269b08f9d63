package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"notify-dispatch/internal/api"
	"notify-dispatch/internal/channel"
	"notify-dispatch/internal/common/config"
	"notify-dispatch/internal/common/logger"
	"notify-dispatch/internal/common/observability"
	"notify-dispatch/internal/dispatch"
	"notify-dispatch/internal/enhance"
	"notify-dispatch/internal/pipeline"
	"notify-dispatch/internal/reminder"
	"notify-dispatch/internal/router"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to configs/config.yaml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := logger.NewZapAdapter(zapLogger)

	log.Info("starting", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	smsSender, err := channel.NewSNSSMSSender(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("init sms sender: %w", err)
	}

	emailSender, err := buildEmailSender(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("init email sender: %w", err)
	}

	enhancer := enhance.NewClient(cfg, log)
	engine := dispatch.NewEngine(cfg, smsSender, emailSender, enhancer, log)
	engine.SetObservability(obs)
	rt := router.New(enhancer, log)
	pipe := pipeline.New(rt, engine, log)

	var store *reminder.Store
	var scheduler *reminder.Scheduler
	if cfg.Reminders.Enabled {
		store, err = reminder.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open reminder store: %w", err)
		}
		defer store.Close()

		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate reminder store: %w", err)
		}

		scheduler = reminder.NewScheduler(cfg, store, engine, log)
		if err := scheduler.Start(); err != nil {
			return fmt.Errorf("start reminder scheduler: %w", err)
		}
		defer scheduler.Stop()
	}

	var reminderStore api.ReminderStore
	if store != nil {
		reminderStore = store
	}
	server := api.NewServer(cfg, pipe, engine, reminderStore, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.HTTP.ShutdownTimeout))
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

func buildEmailSender(ctx context.Context, cfg *config.Config, log logger.Logger) (channel.EmailSender, error) {
	if cfg.Notifications.Email.Provider == "smtp" {
		return channel.NewSMTPEmailSender(cfg, log), nil
	}
	return channel.NewSESEmailSender(ctx, cfg, log)
}
