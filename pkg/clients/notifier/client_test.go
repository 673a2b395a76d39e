package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNotifyPostsJSON(t *testing.T) {
	var got NotifyRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(Config{WebhookURL: srv.URL, Token: "secret"})
	if err := client.Notify(context.Background(), NotifyRequest{Title: "Low stock", Message: "3 items"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got.Title != "Low stock" || got.Text != "Low stock\n3 items" {
		t.Fatalf("unexpected payload %+v", got)
	}
	if auth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", auth)
	}
}

func TestNotifySurfacesWebhookErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"bad channel"}`))
	}))
	defer srv.Close()

	err := NewClient(Config{WebhookURL: srv.URL}).Notify(context.Background(), NotifyRequest{Message: "x"})
	if err == nil || !strings.Contains(err.Error(), "bad channel") {
		t.Fatalf("expected webhook error, got %v", err)
	}
}

func TestNotifyWithoutURL(t *testing.T) {
	if err := NewClient(Config{}).Notify(context.Background(), NotifyRequest{Message: "x"}); err == nil {
		t.Fatalf("expected error without url")
	}
}
