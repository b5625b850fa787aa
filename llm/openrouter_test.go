package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func completionRequest() Request {
	return Request{
		Model:    "google/gemini-2.5-flash",
		Messages: []Message{TextMessage(RoleUser, "hello")},
	}
}

func TestChatCompletion_OK(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"reply text"}}]}`))
	}))
	defer server.Close()

	client := NewOpenRouterClient(OpenRouterConfig{APIKey: "test-key", BaseURL: server.URL})

	got, err := client.ChatCompletion(context.Background(), completionRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "reply text" {
		t.Errorf("expected reply text, got %q", got)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("expected bearer credential, got %q", gotAuth)
	}
}

func TestChatCompletion_SchemaConstraint(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer server.Close()

	client := NewOpenRouterClient(OpenRouterConfig{APIKey: "test-key", BaseURL: server.URL})

	req := completionRequest()
	req.Schema = &ResponseSchema{
		Name:   "assessment_report",
		Schema: map[string]any{"type": "object"},
	}
	if _, err := client.ChatCompletion(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	format, ok := body["response_format"].(map[string]any)
	if !ok {
		t.Fatalf("expected response_format in request body, got %v", body)
	}
	if format["type"] != "json_schema" {
		t.Errorf("expected json_schema response format, got %v", format["type"])
	}
	schema, ok := format["json_schema"].(map[string]any)
	if !ok || schema["strict"] != true {
		t.Errorf("expected strict json_schema constraint, got %v", format["json_schema"])
	}
}

func TestChatCompletion_MissingAPIKey(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client := NewOpenRouterClient(OpenRouterConfig{BaseURL: server.URL})

	_, err := client.ChatCompletion(context.Background(), completionRequest())
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if requests != 0 {
		t.Errorf("expected zero network calls, got %d", requests)
	}
}

func TestChatCompletion_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewOpenRouterClient(OpenRouterConfig{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.ChatCompletion(context.Background(), completionRequest())
	if err == nil {
		t.Fatalf("expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("expected status code in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "model overloaded") {
		t.Errorf("expected body text in error, got %v", err)
	}
}

func TestChatCompletion_EmptyEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewOpenRouterClient(OpenRouterConfig{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.ChatCompletion(context.Background(), completionRequest())
	if !errors.Is(err, ErrUnexpectedResponse) {
		t.Fatalf("expected ErrUnexpectedResponse, got %v", err)
	}
}

func TestDataURI(t *testing.T) {
	got := DataURI("image/png", "aGVsbG8=")
	want := "data:image/png;base64,aGVsbG8="
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
