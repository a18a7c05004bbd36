package notify_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tally/internal/config"
	"tally/internal/notify"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notify.NewService(&cfg)
	if err := svc.NotifyQueuePosition(context.Background(), "kret", 2); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	type captured struct {
		title   string
		tags    string
		message string
	}
	var got captured

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = captured{
			title:   r.Header.Get("Title"),
			tags:    r.Header.Get("Tags"),
			message: string(body),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notify.NewService(&cfg)

	if err := svc.NotifyQueuePosition(context.Background(), "kret", 3); err != nil {
		t.Fatalf("NotifyQueuePosition: %v", err)
	}
	if got.title != "Tally - Queue Update" {
		t.Errorf("title = %q", got.title)
	}
	if got.tags != "tally,queue,position" {
		t.Errorf("tags = %q", got.tags)
	}
	if got.message != "@kret you are now number 3 in the OCR queue." {
		t.Errorf("message = %q", got.message)
	}

	if err := svc.NotifyTurnReady(context.Background(), "kret", time.Now().Add(3*time.Minute)); err != nil {
		t.Fatalf("NotifyTurnReady: %v", err)
	}
	if got.title != "Tally - Your Turn" {
		t.Errorf("title = %q", got.title)
	}
}

func TestNtfyServiceHonorsEventToggles(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.QueuePosition = false
	svc := notify.NewService(&cfg)

	if err := svc.NotifyQueuePosition(context.Background(), "kret", 1); err != nil {
		t.Fatalf("disabled event must be a silent no-op, got %v", err)
	}
	if requests != 0 {
		t.Errorf("expected no requests for disabled event, got %d", requests)
	}
}

func TestNtfyServiceSurfacesHTTPFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notify.NewService(&cfg)

	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
