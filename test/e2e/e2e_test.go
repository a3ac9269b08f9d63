// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notify-dispatch/internal/api"
	"notify-dispatch/internal/channel"
	"notify-dispatch/internal/common/config"
	"notify-dispatch/internal/common/logger"
	"notify-dispatch/internal/dispatch"
	"notify-dispatch/internal/enhance"
	"notify-dispatch/internal/pipeline"
	"notify-dispatch/internal/router"
)

// The e2e suite wires real components together: intent router, dispatch
// engine and enhancement client against an httptest AI service, with
// only the SMS/email providers faked at the channel boundary.

type recordingSMS struct {
	mu    sync.Mutex
	sent  map[string]string // to -> body
	fail  map[string]bool
	calls int
}

func (r *recordingSMS) Send(ctx context.Context, to, body string) (*channel.SendResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.fail[to] {
		return nil, fmt.Errorf("carrier rejected")
	}
	if r.sent == nil {
		r.sent = map[string]string{}
	}
	r.sent[to] = body
	return &channel.SendResult{ProviderID: "sms-" + to, SentAt: time.Now().UTC()}, nil
}

type recordingEmail struct {
	mu     sync.Mutex
	sent   map[string]string // to -> subject
	bodies map[string]string
	fail   map[string]bool
	calls  int
}

func (r *recordingEmail) Send(ctx context.Context, to, subject, body string) (*channel.SendResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.fail[to] {
		return nil, fmt.Errorf("bounced")
	}
	if r.sent == nil {
		r.sent = map[string]string{}
		r.bodies = map[string]string{}
	}
	r.sent[to] = subject
	r.bodies[to] = body
	return &channel.SendResult{ProviderID: "email-" + to, SentAt: time.Now().UTC()}, nil
}

// fakeAIService mimics the enhancement gateway endpoints.
func fakeAIService(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ai/enhance", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(map[string]string{"text": "[polished] " + req.Text})
	})
	mux.HandleFunc("/api/ai/subject", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"text": "AI Subject"})
	})
	mux.HandleFunc("/api/ai/interpret", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"action":    "send_sms",
			"recipient": "+15559990000",
			"message":   "interpreted message",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type env struct {
	api   *httptest.Server
	sms   *recordingSMS
	email *recordingEmail
}

func newEnv(t *testing.T) *env {
	ai := fakeAIService(t)

	cfg := &config.Config{}
	cfg.App.Name = "notify-dispatch"
	cfg.Dispatch.MaxConcurrent = 5
	cfg.Enhancer.BaseURL = ai.URL
	cfg.Enhancer.Timeout = 5000
	cfg.Enhancer.FallbackSubject = "Message from Smart Notify"

	log := logger.NewTestLogger(t)
	sms := &recordingSMS{}
	email := &recordingEmail{}

	enhancer := enhance.NewClient(cfg, log)
	engine := dispatch.NewEngine(cfg, sms, email, enhancer, log)
	rt := router.New(enhancer, log)
	pipe := pipeline.New(rt, engine, log)
	server := api.NewServer(cfg, pipe, engine, nil, log)

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	return &env{api: ts, sms: sms, email: email}
}

func (e *env) execute(t *testing.T, text string) (*http.Response, *dispatch.Batch) {
	raw, _ := json.Marshal(map[string]string{"text": text})
	resp, err := http.Post(e.api.URL+"/api/execute", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	var batch dispatch.Batch
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&batch))
	return resp, &batch
}

func TestE2ESingleSMSCommand(t *testing.T) {
	e := newEnv(t)

	resp, batch := e.execute(t, "text 8136414177 saying meeting moved to 3pm")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.True(t, batch.Success)
	assert.Equal(t, 1, batch.Total)
	assert.Equal(t, "meeting moved to 3pm", batch.OriginalMessage)
	assert.Equal(t, "[polished] meeting moved to 3pm", batch.EnhancedMessage)

	// the number is normalized to E.164 before it reaches the provider
	assert.Contains(t, e.sms.sent, "+18136414177")
	assert.Equal(t, "[polished] meeting moved to 3pm", e.sms.sent["+18136414177"])
}

func TestE2EMultiRecipientEmailWithGeneratedSubject(t *testing.T) {
	e := newEnv(t)

	resp, batch := e.execute(t, "send a@x.com, b@y.com saying quarterly numbers look great")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 2, batch.Total)
	assert.Equal(t, 2, batch.Succeeded)
	assert.Equal(t, "AI Subject", batch.Subject)
	assert.Equal(t, "AI Subject", e.email.sent["a@x.com"])
	assert.Equal(t, "AI Subject", e.email.sent["b@y.com"])
}

func TestE2EEmailWithExplicitSubject(t *testing.T) {
	e := newEnv(t)

	resp, batch := e.execute(t, "send an email to bob@example.com with subject lunch plans saying noon at the usual place")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "lunch plans", batch.Subject)
	assert.Equal(t, "lunch plans", e.email.sent["bob@example.com"])
}

func TestE2EMixedRecipients(t *testing.T) {
	e := newEnv(t)

	resp, batch := e.execute(t, "send 8136414177, bob@example.com saying the deployment finished")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "mixed_multi", batch.Kind)
	assert.Equal(t, 1, batch.PhoneRecipients)
	assert.Equal(t, 1, batch.EmailRecipients)
	assert.Equal(t, 2, batch.Succeeded)

	// both channels carry the same once-enhanced body
	assert.Equal(t, e.sms.sent["+18136414177"], e.email.bodies["bob@example.com"])
}

func TestE2EPartialFailureStillSucceeds(t *testing.T) {
	e := newEnv(t)
	e.sms.fail = map[string]bool{"+15551230002": true}

	resp, batch := e.execute(t, "message +15551230001, +15551230002 that heads up")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.True(t, batch.Success)
	assert.Equal(t, 1, batch.Succeeded)
	assert.Equal(t, 1, batch.Failed)
}

func TestE2EAIFallback(t *testing.T) {
	e := newEnv(t)

	resp, batch := e.execute(t, "could you let Jim know somehow")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.True(t, batch.Success)
	assert.Contains(t, e.sms.sent, "+15559990000")
}

func TestE2EVoicePunctuation(t *testing.T) {
	e := newEnv(t)

	resp, batch := e.execute(t, "text John saying running late period be there soon")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "running late. be there soon", batch.OriginalMessage)
	// "John" is not a deliverable address, so the send is recorded failed
	assert.False(t, batch.Success)
	assert.Zero(t, e.sms.calls)
}

func TestE2EDirectSendBypassesEnhancement(t *testing.T) {
	e := newEnv(t)

	raw, _ := json.Marshal(map[string]interface{}{
		"recipients": []string{"+15551230001"},
		"message":    "raw body",
		"enhance":    false,
	})
	resp, err := http.Post(e.api.URL+"/api/send/sms", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "raw body", e.sms.sent["+15551230001"])
}

func TestE2EMetricsExposed(t *testing.T) {
	e := newEnv(t)
	e.execute(t, "text +15551230001 saying hi")

	resp, err := http.Get(e.api.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
