package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	httpadapter "github.com/nexuspro/nexus/internal/adapters/http"
	"github.com/nexuspro/nexus/internal/adapters/llm"
	"github.com/nexuspro/nexus/internal/adapters/storage/credfile"
	"github.com/nexuspro/nexus/internal/adapters/storage/memory"
	"github.com/nexuspro/nexus/internal/app/conversation"
)

func newTestServer(t *testing.T) (http.Handler, *conversation.Service) {
	t.Helper()

	store := memory.NewWorkspaceStore()
	credStore := credfile.NewStore(filepath.Join(t.TempDir(), "nexus_keys.json"))

	svc, err := conversation.NewService(llm.NewMockStreamer("Hel", "lo!"), store, credStore)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	svc.EnsureActiveSession()

	return httpadapter.NewServer(svc), svc
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestGetWorkspace(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/workspace", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Sessions []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"sessions"`
		ActiveSessionID string `json:"active_session_id"`
		SelectedModel   string `json:"selected_model"`
		Models          []any  `json:"models"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(resp.Sessions))
	}
	if resp.ActiveSessionID != resp.Sessions[0].ID {
		t.Fatalf("active id mismatch: %+v", resp)
	}
	if resp.SelectedModel == "" || len(resp.Models) == 0 {
		t.Fatalf("model catalog missing: %+v", resp)
	}
}

func TestSendMessage(t *testing.T) {
	srv, svc := newTestServer(t)
	sessionID := svc.Workspace().ActiveSessionID()

	body := []byte(`{"text":"Hi"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+string(sessionID)+"/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Role != "assistant" || resp.Content != "Hello!" {
		t.Fatalf("unexpected message: %+v", resp)
	}
}

func TestSendMessageUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/missing/messages", strings.NewReader(`{"text":"Hi"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSendMessageEmptyText(t *testing.T) {
	srv, svc := newTestServer(t)
	sessionID := svc.Workspace().ActiveSessionID()

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+string(sessionID)+"/messages", strings.NewReader(`{"text":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSendMessageStreamSSE(t *testing.T) {
	srv, svc := newTestServer(t)
	sessionID := svc.Workspace().ActiveSessionID()

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+string(sessionID)+"/messages/stream?text=Hi", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "event: fragment") {
		t.Fatalf("missing fragment events: %s", body)
	}
	if !strings.Contains(body, `{"text":"Hel"}`) || !strings.Contains(body, `{"text":"lo!"}`) {
		t.Fatalf("fragments not relayed in order: %s", body)
	}
	if !strings.Contains(body, "event: done") || !strings.Contains(body, `"content":"Hello!"`) {
		t.Fatalf("missing done event with settled message: %s", body)
	}
}

func TestNewSelectDeleteSession(t *testing.T) {
	srv, svc := newTestServer(t)
	first := svc.Workspace().ActiveSessionID()

	// new-session
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	// select the original back
	req = httptest.NewRequest(http.MethodPut, "/v1/sessions/"+string(first)+"/select", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if svc.Workspace().ActiveSessionID() != first {
		t.Fatalf("select did not move the active pointer")
	}

	// delete the active one; the other session takes over
	req = httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+string(first), nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if got := svc.Workspace().ActiveSessionID(); string(got) != created.ID {
		t.Fatalf("active = %s, want %s", got, created.ID)
	}
}

func TestUpdateConfigAndModel(t *testing.T) {
	srv, svc := newTestServer(t)

	req := httptest.NewRequest(http.MethodPatch, "/v1/config", strings.NewReader(`{"temperature":1.3,"top_k":20}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	cfg := svc.Config()
	if cfg.Temperature != 1.3 || cfg.TopK != 20 {
		t.Fatalf("config not merged: %+v", cfg)
	}

	req = httptest.NewRequest(http.MethodPut, "/v1/model", strings.NewReader(`{"model_id":"gpt-4o"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/v1/model", strings.NewReader(`{"model_id":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestUpdateCredential(t *testing.T) {
	srv, svc := newTestServer(t)

	req := httptest.NewRequest(http.MethodPut, "/v1/credentials/openai", strings.NewReader(`{"value":"sk-new"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d, body=%s", w.Code, w.Body.String())
	}
	if svc.Credentials().OpenAI != "sk-new" {
		t.Fatalf("credential not updated: %+v", svc.Credentials())
	}

	req = httptest.NewRequest(http.MethodPut, "/v1/credentials/anthropic", strings.NewReader(`{"value":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
