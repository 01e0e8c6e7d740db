package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSend_SlackPostsWebhook(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode webhook body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewReporter(srv.URL, discardLogger())
	if !r.Send(context.Background(), "slack", "weekly numbers") {
		t.Fatal("expected delivery to succeed")
	}
	if got["text"] != "weekly numbers" {
		t.Fatalf("unexpected webhook payload %v", got)
	}
}

func TestSend_SlackWebhookFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	r := NewReporter(srv.URL, discardLogger())
	if r.Send(context.Background(), "slack", "weekly numbers") {
		t.Fatal("expected delivery to fail")
	}
}

func TestSend_NonSlackChannelIsStub(t *testing.T) {
	r := NewReporter("", discardLogger())
	if !r.Send(context.Background(), "teams", "weekly numbers") {
		t.Fatal("non-slack channels are log-only stubs that succeed")
	}
}

func TestSend_SlackUnconfiguredSucceeds(t *testing.T) {
	r := NewReporter("", discardLogger())
	if !r.Send(context.Background(), "slack", "weekly numbers") {
		t.Fatal("unconfigured slack falls back to log-only and succeeds")
	}
}
