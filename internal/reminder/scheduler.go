package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"notify-dispatch/internal/common/config"
	"notify-dispatch/internal/common/logger"
	"notify-dispatch/internal/dispatch"
	"notify-dispatch/internal/recipient"
)

// Notifier is the slice of the dispatch engine the scheduler needs.
type Notifier interface {
	SendSMSBatch(ctx context.Context, recipients []string, message string, enhanceBody bool) (*dispatch.Batch, error)
	SendEmailBatch(ctx context.Context, recipients []string, subject, message string, enhanceBody bool) (*dispatch.Batch, error)
}

// Scheduler periodically checks for due reminders and sends their
// notifications over the contact method's channel.
type Scheduler struct {
	store     *Store
	notifier  Notifier
	cron      *cron.Cron
	schedule  string
	daysAhead int
	logger    logger.Logger
}

func NewScheduler(cfg *config.Config, store *Store, notifier Notifier, log logger.Logger) *Scheduler {
	return &Scheduler{
		store:     store,
		notifier:  notifier,
		cron:      cron.New(),
		schedule:  cfg.Reminders.CheckSchedule,
		daysAhead: cfg.Reminders.DaysAhead,
		logger:    log.With(map[string]interface{}{"component": "reminder-scheduler"}),
	}
}

// Start registers the check job and begins the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := s.CheckAndSend(ctx, time.Now()); err != nil {
			s.logger.Error("reminder check failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	})
	if err != nil {
		return fmt.Errorf("register reminder job: %w", err)
	}
	s.cron.Start()
	s.logger.Info("reminder scheduler started", map[string]interface{}{
		"schedule":  s.schedule,
		"daysAhead": s.daysAhead,
	})
	return nil
}

// Stop halts the cron loop and waits for a running check to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// CheckAndSend notifies every pending reminder due within the lookahead
// window. A failed notification leaves the reminder pending so the next
// run retries it; notification bodies skip the enhancement pass since
// they are machine-generated.
func (s *Scheduler) CheckAndSend(ctx context.Context, now time.Time) error {
	due, err := s.store.Due(ctx, now, s.daysAhead)
	if err != nil {
		return err
	}

	for _, r := range due {
		message := composeNotification(r, now)
		var batch *dispatch.Batch

		switch recipient.Classify(r.ContactMethod) {
		case recipient.KindPhone:
			batch, err = s.notifier.SendSMSBatch(ctx, []string{r.ContactMethod}, message, false)
		case recipient.KindEmail:
			batch, err = s.notifier.SendEmailBatch(ctx, []string{r.ContactMethod},
				"Service Reminder: "+r.Description, message, false)
		default:
			s.logger.Warn("reminder has unusable contact method", map[string]interface{}{
				"reminderId": r.ID,
				"contact":    r.ContactMethod,
			})
			continue
		}

		if err != nil || !batch.Success {
			s.logger.Error("reminder notification failed", map[string]interface{}{
				"reminderId": r.ID,
				"error":      fmt.Sprintf("%v", err),
			})
			continue
		}

		if err := s.store.MarkNotified(ctx, r.ID, now); err != nil {
			s.logger.Error("failed to mark reminder notified", map[string]interface{}{
				"reminderId": r.ID,
				"error":      err.Error(),
			})
		}
	}

	if len(due) > 0 {
		s.logger.Info("reminder check completed", map[string]interface{}{
			"due": len(due),
		})
	}
	return nil
}

func composeNotification(r *Reminder, now time.Time) string {
	days := r.DaysUntilDue(now)
	subject := r.Description
	if r.Vehicle != "" {
		subject = fmt.Sprintf("%s for %s", r.Description, r.Vehicle)
	}
	switch {
	case days < 0:
		return fmt.Sprintf("Overdue: %s was due on %s.", subject, r.DueDate.Format("January 2, 2006"))
	case days == 0:
		return fmt.Sprintf("Reminder: %s is due today.", subject)
	case days == 1:
		return fmt.Sprintf("Reminder: %s is due tomorrow.", subject)
	default:
		return fmt.Sprintf("Reminder: %s is due in %d days, on %s.", subject, days, r.DueDate.Format("January 2, 2006"))
	}
}
