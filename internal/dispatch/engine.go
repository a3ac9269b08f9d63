// Package dispatch fans delivery out across recipients with bounded
// concurrency and aggregates per-recipient outcomes into a batch result.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"notify-dispatch/internal/channel"
	"notify-dispatch/internal/common/config"
	"notify-dispatch/internal/common/errors"
	"notify-dispatch/internal/common/logger"
	"notify-dispatch/internal/common/metrics"
	"notify-dispatch/internal/common/observability"
	"notify-dispatch/internal/intent"
	"notify-dispatch/internal/recipient"
)

// Enhancer is the slice of the enhancement gateway the engine needs.
// Both methods are total: they fall back to their input (or a fixed
// subject) instead of failing.
type Enhancer interface {
	Enhance(ctx context.Context, text string) string
	GenerateSubject(ctx context.Context, text string) string
}

// Engine executes delivery for finalized intents. The message body is
// enhanced exactly once per batch, before fan-out; every recipient in
// the batch receives the same enhanced body.
type Engine struct {
	maxConcurrent int
	sms           channel.SMSSender
	email         channel.EmailSender
	enhancer      Enhancer
	logger        logger.Logger
	obs           *observability.Observability
}

func NewEngine(cfg *config.Config, sms channel.SMSSender, email channel.EmailSender, enhancer Enhancer, log logger.Logger) *Engine {
	return &Engine{
		maxConcurrent: cfg.Dispatch.MaxConcurrent,
		sms:           sms,
		email:         email,
		enhancer:      enhancer,
		logger:        log.With(map[string]interface{}{"component": "dispatch"}),
	}
}

// SetObservability attaches the OpenTelemetry recorder. Optional; the
// engine works without one.
func (e *Engine) SetObservability(obs *observability.Observability) {
	e.obs = obs
}

// Dispatch validates an intent and routes it to the matching batch path.
func (e *Engine) Dispatch(ctx context.Context, in *intent.Intent) (*Batch, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	switch in.Action {
	case intent.ActionSendSMS, intent.ActionSendSMSMulti:
		return e.SendSMSBatch(ctx, in.AllRecipients(), in.Message, true)
	case intent.ActionSendEmail, intent.ActionSendEmailMulti:
		return e.SendEmailBatch(ctx, in.AllRecipients(), in.Subject, in.Message, true)
	case intent.ActionSendMixed:
		return e.SendMixedBatch(ctx, in.AllRecipients(), in.Subject, in.Message)
	}
	return nil, errors.NewUnknownActionError(string(in.Action))
}

// SendSMSBatch delivers one message to every recipient over SMS. When
// enhanceBody is false the body has already been enhanced upstream.
func (e *Engine) SendSMSBatch(ctx context.Context, recipients []string, message string, enhanceBody bool) (*Batch, error) {
	if err := checkPreconditions(recipients, message); err != nil {
		return nil, err
	}

	enhanced := message
	if enhanceBody {
		enhanced = e.enhancer.Enhance(ctx, message)
	}

	start := time.Now()
	deliveries := e.fanOut(ctx, recipients, func(ctx context.Context, token string) Delivery {
		return e.sendSMSTo(ctx, token, enhanced)
	})

	kind := KindSMSMulti
	if len(recipients) == 1 {
		kind = KindSMS
	}
	batch := e.assemble(kind, message, enhanced, "", deliveries)
	e.finish(ctx, batch, time.Since(start))
	return batch, nil
}

// SendEmailBatch delivers one message to every recipient over email.
// When subject is empty, one is generated from the enhanced body before
// fan-out.
func (e *Engine) SendEmailBatch(ctx context.Context, recipients []string, subject, message string, enhanceBody bool) (*Batch, error) {
	if err := checkPreconditions(recipients, message); err != nil {
		return nil, err
	}

	enhanced := message
	if enhanceBody {
		enhanced = e.enhancer.Enhance(ctx, message)
	}
	if subject == "" {
		subject = e.enhancer.GenerateSubject(ctx, enhanced)
	}

	start := time.Now()
	deliveries := e.fanOut(ctx, recipients, func(ctx context.Context, token string) Delivery {
		return e.sendEmailTo(ctx, token, subject, enhanced)
	})

	kind := KindEmailMulti
	if len(recipients) == 1 {
		kind = KindEmail
	}
	batch := e.assemble(kind, message, enhanced, subject, deliveries)
	e.finish(ctx, batch, time.Since(start))
	return batch, nil
}

// SendMixedBatch partitions recipients by classified kind, enhances the
// body once for the whole batch, then fans each partition out on its
// channel and merges the results. Partition sends share the per-recipient
// paths with the dedicated batches but are not reported as batches of
// their own; the merged batch is the only one metrics and logs see.
func (e *Engine) SendMixedBatch(ctx context.Context, recipients []string, subject, message string) (*Batch, error) {
	if err := checkPreconditions(recipients, message); err != nil {
		return nil, err
	}

	var phones, emails, others []string
	for _, r := range recipients {
		switch recipient.Classify(r) {
		case recipient.KindPhone:
			phones = append(phones, r)
		case recipient.KindEmail:
			emails = append(emails, r)
		default:
			others = append(others, r)
		}
	}

	start := time.Now()
	enhanced := e.enhancer.Enhance(ctx, message)
	if subject == "" && len(emails) > 0 {
		subject = e.enhancer.GenerateSubject(ctx, enhanced)
	}

	merged := &Batch{
		BatchID:         uuid.New().String(),
		Kind:            KindMixed,
		Total:           len(recipients),
		PhoneRecipients: len(phones),
		EmailRecipients: len(emails),
		OtherRecipients: len(others),
		OriginalMessage: message,
		EnhancedMessage: enhanced,
		Subject:         subject,
	}

	if len(phones) > 0 {
		merged.Deliveries = append(merged.Deliveries, e.fanOut(ctx, phones, func(ctx context.Context, token string) Delivery {
			return e.sendSMSTo(ctx, token, enhanced)
		})...)
	}

	if len(emails) > 0 {
		merged.Deliveries = append(merged.Deliveries, e.fanOut(ctx, emails, func(ctx context.Context, token string) Delivery {
			return e.sendEmailTo(ctx, token, subject, enhanced)
		})...)
	}

	for _, r := range others {
		merged.Deliveries = append(merged.Deliveries, Delivery{
			Recipient: r,
			Channel:   "unknown",
			Success:   false,
			Error:     errors.NewUnrecognizedRecipientError(r).Message,
		})
	}

	for _, d := range merged.Deliveries {
		if d.Success {
			merged.Succeeded++
		} else {
			merged.Failed++
		}
	}
	merged.Success = merged.Succeeded > 0
	e.finish(ctx, merged, time.Since(start))
	return merged, nil
}

// fanOut runs one send per recipient on a bounded pool. Results flow
// over a channel to a single collecting goroutine, so the slice is only
// ever written by one owner. Order is completion order.
func (e *Engine) fanOut(ctx context.Context, recipients []string, send func(context.Context, string) Delivery) []Delivery {
	results := make(chan Delivery)
	done := make(chan struct{})

	var deliveries []Delivery
	go func() {
		for d := range results {
			deliveries = append(deliveries, d)
		}
		close(done)
	}()

	var g errgroup.Group
	g.SetLimit(e.maxConcurrent)
	for _, r := range recipients {
		g.Go(func() error {
			results <- e.safeSend(ctx, r, send)
			return nil
		})
	}
	_ = g.Wait()
	close(results)
	<-done

	return deliveries
}

// safeSend contains worker panics: an unexpected failure in one send
// becomes a failed delivery for that recipient only.
func (e *Engine) safeSend(ctx context.Context, token string, send func(context.Context, string) Delivery) (d Delivery) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("send worker panicked", map[string]interface{}{
				"recipient": token,
				"panic":     r,
			})
			d = Delivery{
				Recipient: token,
				Success:   false,
				Error:     fmt.Sprintf("unexpected failure: %v", r),
			}
		}
	}()
	return send(ctx, token)
}

func (e *Engine) sendSMSTo(ctx context.Context, token, body string) Delivery {
	if recipient.Classify(token) != recipient.KindPhone {
		return Delivery{
			Recipient: token,
			Channel:   channel.ChannelSMS,
			Success:   false,
			Error:     errors.NewInvalidRecipientFormatError(token, string(channel.ChannelSMS)).Message,
		}
	}

	normalized := recipient.NormalizePhone(token)
	res, err := e.sms.Send(ctx, normalized, body)
	if err != nil {
		metrics.DeliveriesTotal.WithLabelValues(string(channel.ChannelSMS), "failure").Inc()
		return Delivery{
			Recipient:    token,
			NormalizedTo: normalized,
			Channel:      channel.ChannelSMS,
			Success:      false,
			Error:        err.Error(),
		}
	}

	metrics.DeliveriesTotal.WithLabelValues(string(channel.ChannelSMS), "success").Inc()
	return Delivery{
		Recipient:    token,
		NormalizedTo: normalized,
		Channel:      channel.ChannelSMS,
		Success:      true,
		ProviderID:   res.ProviderID,
		SentAt:       res.SentAt,
	}
}

func (e *Engine) sendEmailTo(ctx context.Context, token, subject, body string) Delivery {
	if recipient.Classify(token) != recipient.KindEmail {
		return Delivery{
			Recipient: token,
			Channel:   channel.ChannelEmail,
			Success:   false,
			Error:     errors.NewInvalidRecipientFormatError(token, string(channel.ChannelEmail)).Message,
		}
	}

	res, err := e.email.Send(ctx, token, subject, body)
	if err != nil {
		metrics.DeliveriesTotal.WithLabelValues(string(channel.ChannelEmail), "failure").Inc()
		return Delivery{
			Recipient:    token,
			NormalizedTo: token,
			Channel:      channel.ChannelEmail,
			Success:      false,
			Error:        err.Error(),
		}
	}

	metrics.DeliveriesTotal.WithLabelValues(string(channel.ChannelEmail), "success").Inc()
	return Delivery{
		Recipient:    token,
		NormalizedTo: token,
		Channel:      channel.ChannelEmail,
		Success:      true,
		ProviderID:   res.ProviderID,
		SentAt:       res.SentAt,
	}
}

func (e *Engine) assemble(kind, original, enhanced, subject string, deliveries []Delivery) *Batch {
	batch := &Batch{
		BatchID:         uuid.New().String(),
		Kind:            kind,
		Total:           len(deliveries),
		OriginalMessage: original,
		EnhancedMessage: enhanced,
		Subject:         subject,
		Deliveries:      deliveries,
	}
	for _, d := range deliveries {
		if d.Success {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
	}
	batch.Success = batch.Succeeded > 0
	return batch
}

func (e *Engine) finish(ctx context.Context, batch *Batch, took time.Duration) {
	outcome := "failure"
	if batch.Success {
		outcome = "success"
	}
	metrics.BatchesDispatched.WithLabelValues(batch.Kind, outcome).Inc()
	metrics.BatchDuration.WithLabelValues(batch.Kind).Observe(took.Seconds())
	if e.obs != nil {
		e.obs.RecordBatchProcessed(ctx, outcome)
		e.obs.RecordBatchDuration(ctx, took, outcome)
	}

	e.logger.Info("batch dispatched", map[string]interface{}{
		"batchId":   batch.BatchID,
		"kind":      batch.Kind,
		"total":     batch.Total,
		"succeeded": batch.Succeeded,
		"failed":    batch.Failed,
		"tookMs":    took.Milliseconds(),
	})
}

func checkPreconditions(recipients []string, message string) error {
	if len(recipients) == 0 {
		return errors.NewNoRecipientsError()
	}
	if message == "" {
		return errors.NewEmptyMessageError()
	}
	return nil
}
