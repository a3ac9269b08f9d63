// Package pipeline ties command routing and batch dispatch into the
// single entry point used by the HTTP layer.
package pipeline

import (
	"context"

	"notify-dispatch/internal/common/logger"
	"notify-dispatch/internal/dispatch"
	"notify-dispatch/internal/intent"
)

// IntentRouter resolves free text to a structured intent.
type IntentRouter interface {
	Route(ctx context.Context, text string) (*intent.Intent, error)
}

// Dispatcher executes a finalized intent.
type Dispatcher interface {
	Dispatch(ctx context.Context, in *intent.Intent) (*dispatch.Batch, error)
}

type Pipeline struct {
	router     IntentRouter
	dispatcher Dispatcher
	logger     logger.Logger
}

func New(router IntentRouter, dispatcher Dispatcher, log logger.Logger) *Pipeline {
	return &Pipeline{
		router:     router,
		dispatcher: dispatcher,
		logger:     log.With(map[string]interface{}{"component": "pipeline"}),
	}
}

// ProcessText runs the full path: route the text to an intent, then
// dispatch it. Transcript cleanup happens inside the extractors, so
// raw voice text is accepted here as-is.
func (p *Pipeline) ProcessText(ctx context.Context, text string) (*dispatch.Batch, error) {
	in, err := p.router.Route(ctx, text)
	if err != nil {
		return nil, err
	}

	p.logger.Info("command resolved", map[string]interface{}{
		"action":     in.Action,
		"recipients": len(in.AllRecipients()),
	})

	return p.dispatcher.Dispatch(ctx, in)
}

// Dispatch executes a pre-built intent, bypassing routing. Used by the
// direct send endpoints where the caller supplies structured fields.
func (p *Pipeline) Dispatch(ctx context.Context, in *intent.Intent) (*dispatch.Batch, error) {
	return p.dispatcher.Dispatch(ctx, in)
}
