package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"manimrunner/internal/pkg/logger"
)

func TestCallbackNotify(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cb := NewCallback(srv.URL)
	if err := cb.Notify(context.Background(), "conv-1", "https://cdn/video.mp4"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if got["conversationId"] != "conv-1" {
		t.Errorf("expected conversationId=conv-1, got %v", got)
	}
	if got["videoUrl"] != "https://cdn/video.mp4" {
		t.Errorf("expected videoUrl, got %v", got)
	}
}

func TestCallbackNotifyNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cb := NewCallback(srv.URL)
	if err := cb.Notify(context.Background(), "conv-1", "url"); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

type failingNotifier struct{}

func (failingNotifier) Name() string { return "failing" }
func (failingNotifier) Notify(ctx context.Context, jobID, videoURL string) error {
	return errors.New("unreachable")
}

type recordingNotifier struct {
	jobID string
	url   string
}

func (r *recordingNotifier) Name() string { return "recording" }
func (r *recordingNotifier) Notify(ctx context.Context, jobID, videoURL string) error {
	r.jobID = jobID
	r.url = videoURL
	return nil
}

func TestBestEffortSwallowsFailures(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "debug", Format: "json", Output: &buf})

	rec := &recordingNotifier{}
	be := NewBestEffort(log, failingNotifier{}, rec)

	be.Notify(context.Background(), "conv-9", "https://cdn/v.mp4")

	if rec.jobID != "conv-9" || rec.url != "https://cdn/v.mp4" {
		t.Errorf("later notifiers should still run, got %+v", rec)
	}
	if !strings.Contains(buf.String(), "notification failed") {
		t.Error("expected the failure to be logged")
	}
}

func TestBestEffortEmpty(t *testing.T) {
	be := NewBestEffort(nil)
	// No notifiers configured is valid and must be a no-op.
	be.Notify(context.Background(), "conv-1", "url")
}
