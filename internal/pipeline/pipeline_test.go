package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notify-dispatch/internal/common/errors"
	"notify-dispatch/internal/common/logger"
	"notify-dispatch/internal/dispatch"
	"notify-dispatch/internal/intent"
)

type stubRouter struct {
	intent *intent.Intent
	err    error
	seen   string
}

func (s *stubRouter) Route(ctx context.Context, text string) (*intent.Intent, error) {
	s.seen = text
	return s.intent, s.err
}

type stubDispatcher struct {
	batch *dispatch.Batch
	err   error
	seen  *intent.Intent
}

func (s *stubDispatcher) Dispatch(ctx context.Context, in *intent.Intent) (*dispatch.Batch, error) {
	s.seen = in
	return s.batch, s.err
}

func TestProcessText(t *testing.T) {
	in := &intent.Intent{Action: intent.ActionSendSMS, Recipient: "+15551230001", Message: "hi"}
	r := &stubRouter{intent: in}
	d := &stubDispatcher{batch: &dispatch.Batch{BatchID: "b-1", Success: true}}
	p := New(r, d, logger.NewTestLogger(t))

	batch, err := p.ProcessText(context.Background(), "text +15551230001 saying hi")
	require.NoError(t, err)
	assert.Equal(t, "b-1", batch.BatchID)
	assert.Equal(t, "text +15551230001 saying hi", r.seen)
	assert.Same(t, in, d.seen)
}

func TestProcessTextRoutingFailureStopsDispatch(t *testing.T) {
	r := &stubRouter{err: errors.NewNoIntentMatchError("gibberish")}
	d := &stubDispatcher{}
	p := New(r, d, logger.NewTestLogger(t))

	_, err := p.ProcessText(context.Background(), "gibberish")
	require.Error(t, err)
	assert.Nil(t, d.seen)
}

func TestDispatchBypassesRouting(t *testing.T) {
	r := &stubRouter{}
	d := &stubDispatcher{batch: &dispatch.Batch{BatchID: "b-2"}}
	p := New(r, d, logger.NewTestLogger(t))

	in := &intent.Intent{Action: intent.ActionSendEmail, Recipient: "a@x.com", Message: "m"}
	batch, err := p.Dispatch(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "b-2", batch.BatchID)
	assert.Empty(t, r.seen)
}
