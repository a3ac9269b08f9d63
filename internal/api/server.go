// Package api exposes the dispatch pipeline and the reminder subsystem
// over HTTP.
package api

import (
	"context"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"notify-dispatch/internal/common/config"
	"notify-dispatch/internal/common/logger"
	"notify-dispatch/internal/dispatch"
	"notify-dispatch/internal/intent"
	"notify-dispatch/internal/reminder"
)

// CommandPipeline is the text-in, batch-out surface of the pipeline.
type CommandPipeline interface {
	ProcessText(ctx context.Context, text string) (*dispatch.Batch, error)
	Dispatch(ctx context.Context, in *intent.Intent) (*dispatch.Batch, error)
}

// BatchSender is the structured-send surface used by the direct
// endpoints, bypassing intent routing.
type BatchSender interface {
	SendSMSBatch(ctx context.Context, recipients []string, message string, enhanceBody bool) (*dispatch.Batch, error)
	SendEmailBatch(ctx context.Context, recipients []string, subject, message string, enhanceBody bool) (*dispatch.Batch, error)
	SendMixedBatch(ctx context.Context, recipients []string, subject, message string) (*dispatch.Batch, error)
}

// ReminderStore is the persistence surface of the reminder endpoints.
// Nil disables them.
type ReminderStore interface {
	Create(ctx context.Context, r *reminder.Reminder) (*reminder.Reminder, error)
	GetByID(ctx context.Context, id int64) (*reminder.Reminder, error)
	List(ctx context.Context, status reminder.Status) ([]*reminder.Reminder, error)
	Complete(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type Server struct {
	cfg       *config.Config
	pipeline  CommandPipeline
	sender    BatchSender
	reminders ReminderStore
	logger    logger.Logger
	http      *http.Server
}

func NewServer(cfg *config.Config, p CommandPipeline, sender BatchSender, reminders ReminderStore, log logger.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		pipeline:  p,
		sender:    sender,
		reminders: reminders,
		logger:    log.With(map[string]interface{}{"component": "api"}),
	}
	s.http = &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      s.Router(),
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}
	return s
}

// Router builds the route tree. Split out from Start so tests can mount
// it on httptest servers.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/execute", s.handleExecute)
		r.Post("/send/sms", s.handleSendSMS)
		r.Post("/send/email", s.handleSendEmail)
		r.Post("/send/mixed", s.handleSendMixed)

		if s.reminders != nil {
			r.Route("/reminders", func(r chi.Router) {
				r.Post("/", s.handleCreateReminder)
				r.Get("/", s.handleListReminders)
				r.Get("/{id}", s.handleGetReminder)
				r.Post("/{id}/complete", s.handleCompleteReminder)
				r.Delete("/{id}", s.handleDeleteReminder)
			})
		}
	})

	r.Route("/debug/pprof", func(r chi.Router) {
		r.Get("/", pprof.Index)
		r.Get("/cmdline", pprof.Cmdline)
		r.Get("/profile", pprof.Profile)
		r.Get("/symbol", pprof.Symbol)
		r.Get("/trace", pprof.Trace)
		r.Handle("/{name}", http.HandlerFunc(pprof.Index))
	})

	return r
}

// Start blocks serving HTTP until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"address": s.http.Addr,
	})
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"app":     s.cfg.App.Name,
		"version": s.cfg.App.Version,
	})
}
