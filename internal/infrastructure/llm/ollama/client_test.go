package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompleteSendsSystemPromptAndJSONFormat(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"response":"  {\"eligible\":true}  "}`))
	}))
	defer server.Close()

	client := New(server.URL+"/", "llama3.1")
	out, err := client.Complete(context.Background(), "system text", "Is \"x\" eligible?")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out != `{"eligible":true}` {
		t.Fatalf("unexpected reply %q", out)
	}
	if payload["system"] != "system text" || payload["format"] != "json" || payload["stream"] != false {
		t.Fatalf("unexpected payload: %#v", payload)
	}
	if payload["model"] != "llama3.1" {
		t.Fatalf("unexpected model: %v", payload["model"])
	}
}

func TestCompleteIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := New(server.URL, "llama3.1").Complete(context.Background(), "s", "u")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}
