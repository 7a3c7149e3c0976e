package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-conversation-relay/core"
	"github.com/goliatone/go-conversation-relay/query"
	"github.com/goliatone/go-conversation-relay/webhooks"
)

type stubProcessor struct {
	outcome webhooks.Outcome
	bodies  [][]byte
}

func (s *stubProcessor) Process(_ context.Context, body []byte) webhooks.Outcome {
	s.bodies = append(s.bodies, body)
	return s.outcome
}

type stubDeliveryReader struct {
	entries []core.DeliveryEntry
	err     error
}

func (s stubDeliveryReader) Recent(_ context.Context, _ int) ([]core.DeliveryEntry, error) {
	return s.entries, s.err
}

func testServerConfig() core.Config {
	cfg := core.DefaultConfig()
	cfg.Directory.AccessToken = "secret"
	cfg.Directory.ProjectGID = "1200001"
	cfg.Directory.TargetSectionGID = "1200002"
	return cfg
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func TestHandleWebhook_EchoesPipelineOutcome(t *testing.T) {
	processor := &stubProcessor{outcome: webhooks.Outcome{
		Terminal:   webhooks.TerminalSuccess,
		StatusCode: http.StatusOK,
		Body: map[string]any{
			"status":          "success",
			"message":         "Task moved to target section",
			"conversation_id": "4107",
		},
	}}
	s := New(testServerConfig(), processor)

	rec := doRequest(t, s, http.MethodPost, "/intercom-webhook", `{"data":{"item":{"id":"4107"}}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	payload := decodeBody(t, rec)
	if payload["status"] != "success" {
		t.Fatalf("unexpected body %#v", payload)
	}
	if len(processor.bodies) != 1 {
		t.Fatalf("expected one pipeline invocation")
	}
}

func TestHandleWebhook_FailureStatusPropagates(t *testing.T) {
	processor := &stubProcessor{outcome: webhooks.Outcome{
		Terminal:   webhooks.TerminalTaskNotFound,
		StatusCode: http.StatusNotFound,
		Body: map[string]any{
			"status":          "error",
			"message":         "Task not found for conversation",
			"conversation_id": "4107",
		},
	}}
	s := New(testServerConfig(), processor)

	rec := doRequest(t, s, http.MethodPost, "/intercom-webhook", `{"data":{"item":{"id":"4107"}}}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleWebhook_OversizedBodyRejected(t *testing.T) {
	processor := &stubProcessor{outcome: webhooks.Outcome{
		Terminal:   webhooks.TerminalSuccess,
		StatusCode: http.StatusOK,
		Body:       map[string]any{"status": "success"},
	}}
	s := New(testServerConfig(), processor)

	oversized := strings.Repeat("x", (1<<20)+1)
	rec := doRequest(t, s, http.MethodPost, "/intercom-webhook", oversized)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized payload, got %d", rec.Code)
	}
	payload := decodeBody(t, rec)
	if payload["message"] != "Invalid JSON" {
		t.Fatalf("unexpected body %#v", payload)
	}
	if len(processor.bodies) != 0 {
		t.Fatalf("oversized payload must not reach the pipeline")
	}
}

func TestHandleWebhook_NilProcessorIsUnavailable(t *testing.T) {
	s := New(testServerConfig(), nil)
	rec := doRequest(t, s, http.MethodPost, "/intercom-webhook", `{}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	payload := decodeBody(t, rec)
	if payload["message"] != "Asana client not configured" {
		t.Fatalf("unexpected body %#v", payload)
	}
}

func TestHandleHealth(t *testing.T) {
	s := New(testServerConfig(), &stubProcessor{})
	rec := doRequest(t, s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	payload := decodeBody(t, rec)
	if payload["status"] != "healthy" {
		t.Fatalf("unexpected body %#v", payload)
	}
	if payload["asana_client_configured"] != true {
		t.Fatalf("expected configured client flag")
	}
	check, ok := payload["environment_check"].(map[string]any)
	if !ok || check["ASANA_ACCESS_TOKEN"] != true {
		t.Fatalf("unexpected environment check %#v", payload["environment_check"])
	}
}

func TestHandleDebug_MasksCredential(t *testing.T) {
	s := New(testServerConfig(), &stubProcessor{},
		WithRecentDeliveries(query.NewRecentDeliveriesQuery(stubDeliveryReader{
			entries: []core.DeliveryEntry{{ID: "d1", ConversationID: "4107", Status: "success"}},
		})))

	rec := doRequest(t, s, http.MethodGet, "/debug", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	payload := decodeBody(t, rec)
	env, ok := payload["environment_variables"].(map[string]any)
	if !ok {
		t.Fatalf("expected environment variables section")
	}
	if env["ASANA_ACCESS_TOKEN"] != "***HIDDEN***" {
		t.Fatalf("credential must be masked, got %#v", env["ASANA_ACCESS_TOKEN"])
	}
	if env["ASANA_PROJECT_GID"] != "1200001" {
		t.Fatalf("unexpected project gid %#v", env["ASANA_PROJECT_GID"])
	}
	deliveries, ok := payload["recent_deliveries"].([]any)
	if !ok || len(deliveries) != 1 {
		t.Fatalf("expected one recent delivery, got %#v", payload["recent_deliveries"])
	}
}

func TestHandleDebug_LedgerReadFailureOmitsDeliveries(t *testing.T) {
	s := New(testServerConfig(), &stubProcessor{},
		WithRecentDeliveries(query.NewRecentDeliveriesQuery(stubDeliveryReader{
			err: errors.New("ledger connection reset"),
		})))

	rec := doRequest(t, s, http.MethodGet, "/debug", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	payload := decodeBody(t, rec)
	if _, present := payload["recent_deliveries"]; present {
		t.Fatalf("expected recent deliveries omitted on read failure, got %#v", payload["recent_deliveries"])
	}
}

func TestHandleDebug_NotSetValues(t *testing.T) {
	cfg := core.DefaultConfig()
	s := New(cfg, nil)
	rec := doRequest(t, s, http.MethodGet, "/debug", "")
	payload := decodeBody(t, rec)
	env := payload["environment_variables"].(map[string]any)
	if env["ASANA_ACCESS_TOKEN"] != "NOT SET" {
		t.Fatalf("expected NOT SET marker, got %#v", env["ASANA_ACCESS_TOKEN"])
	}
	if payload["asana_client_initialized"] != false {
		t.Fatalf("expected uninitialized client flag")
	}
}

func TestHandleRoot(t *testing.T) {
	s := New(testServerConfig(), &stubProcessor{})
	rec := doRequest(t, s, http.MethodGet, "/", "")
	payload := decodeBody(t, rec)
	if payload["message"] != "Intercom Webhook Handler" {
		t.Fatalf("unexpected root body %#v", payload)
	}
	endpoints, ok := payload["endpoints"].(map[string]any)
	if !ok || endpoints["webhook"] != "/intercom-webhook" {
		t.Fatalf("unexpected endpoints %#v", payload["endpoints"])
	}
}
