package answer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestGenerator(url string) *Generator {
	return NewGenerator("test", zap.NewNop(), WithBaseURL(url), WithTimeout(5*time.Second))
}

func TestGenerator_TrimsSuccessfulResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [
				{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "  Usa aceite de oliva.  "}}
			]
		}`))
	}))
	defer server.Close()

	g := newTestGenerator(server.URL)
	got := g.Generate(context.Background(), "¿Qué aceite uso para freír?")
	assert.Equal(t, "Usa aceite de oliva.", got)
}

func TestGenerator_ServiceErrorReturnsApology(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	g := newTestGenerator(server.URL)
	got := g.Generate(context.Background(), "¿Qué aceite uso para freír?")
	assert.Equal(t, Apology, got)
}

func TestGenerator_UnreachableServiceReturnsApology(t *testing.T) {
	// Closed server simulates a transport failure
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	g := newTestGenerator(server.URL)
	got := g.Generate(context.Background(), "¿Qué aceite uso para freír?")
	assert.Equal(t, Apology, got)
}

func TestGenerator_EmptyResponseReturnsApology(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "chatcmpl-1", "object": "chat.completion", "choices": []}`))
	}))
	defer server.Close()

	g := newTestGenerator(server.URL)
	got := g.Generate(context.Background(), "¿Qué aceite uso para freír?")
	assert.Equal(t, Apology, got)
}

func TestGenerator_BlankContentReturnsApology(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [
				{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "   "}}
			]
		}`))
	}))
	defer server.Close()

	g := newTestGenerator(server.URL)
	got := g.Generate(context.Background(), "¿Qué aceite uso para freír?")
	assert.Equal(t, Apology, got)
}
