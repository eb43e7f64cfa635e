package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"manimrunner/internal/stream"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream handler did not return")
	}
}

func TestStreamLogsDeliversAndCloses(t *testing.T) {
	h, registry := newTestHandler(&stubRunner{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/render/logs/stream?conversationId=conv-1", nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.StreamLogs(rec, req)
	}()

	waitFor(t, func() bool { return registry.Count() == 1 })

	registry.Publish("conv-1", stream.Progress("Animation 1 loaded"))
	registry.Publish("conv-1", stream.Completed())

	waitDone(t, done)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected event-stream content type, got %q", ct)
	}
	if !rec.Flushed {
		t.Error("expected the response to be flushed")
	}

	body := rec.Body.String()
	progress := strings.Index(body, "data: Animation 1 loaded\n\n")
	completed := strings.Index(body, "data: "+stream.CompletedText+"\n\n")
	if progress == -1 || completed == -1 {
		t.Fatalf("missing frames in body:\n%s", body)
	}
	if progress > completed {
		t.Error("frames delivered out of order")
	}

	if registry.Count() != 0 {
		t.Error("queue must be unregistered after the stream closes")
	}
}

func TestStreamLogsKeepalive(t *testing.T) {
	registry := stream.NewRegistry()
	h := New(Deps{
		Registry:    registry,
		Runner:      &stubRunner{},
		Log:         testLogger(),
		IdleTimeout: 20 * time.Millisecond,
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/render/logs/stream?conversationId=conv-2", nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.StreamLogs(rec, req)
	}()

	waitFor(t, func() bool { return registry.Count() == 1 })
	time.Sleep(80 * time.Millisecond)
	registry.Publish("conv-2", stream.Completed())

	waitDone(t, done)

	if !strings.Contains(rec.Body.String(), keepaliveFrame) {
		t.Errorf("expected at least one keepalive frame, body:\n%s", rec.Body.String())
	}
}

func TestStreamLogsClientDisconnect(t *testing.T) {
	h, registry := newTestHandler(&stubRunner{})

	ctx, cancel := context.WithCancel(context.Background())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/render/logs/stream?conversationId=conv-3", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.StreamLogs(rec, req)
	}()

	waitFor(t, func() bool { return registry.Count() == 1 })
	cancel()

	waitDone(t, done)

	if registry.Count() != 0 {
		t.Error("disconnect must unregister the queue")
	}
}

// faultWriter panics on the first progress frame and behaves normally
// afterwards, simulating a mid-stream write failure.
type faultWriter struct {
	*httptest.ResponseRecorder
	tripped bool
}

func (f *faultWriter) Write(p []byte) (int, error) {
	if !f.tripped && bytes.Contains(p, []byte("Animation")) {
		f.tripped = true
		panic("write failed")
	}
	return f.ResponseRecorder.Write(p)
}

func TestStreamLogsFaultFrame(t *testing.T) {
	h, registry := newTestHandler(&stubRunner{})

	fw := &faultWriter{ResponseRecorder: httptest.NewRecorder()}
	req := httptest.NewRequest(http.MethodGet, "/render/logs/stream?conversationId=conv-4", nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.StreamLogs(fw, req)
	}()

	waitFor(t, func() bool { return registry.Count() == 1 })
	registry.Publish("conv-4", stream.Progress("Animation 1 loaded"))

	waitDone(t, done)

	body := fw.Body.String()
	if !strings.Contains(body, faultFrame) {
		t.Errorf("expected the synthetic fault frame, body:\n%s", body)
	}
	if strings.Contains(body, "data: Error:") {
		t.Error("fault frame must be JSON-wrapped, not a bare error frame")
	}
	if registry.Count() != 0 {
		t.Error("queue must be unregistered after a stream fault")
	}
}

func TestStreamLogsRequiresConversationID(t *testing.T) {
	h, _ := newTestHandler(&stubRunner{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/render/logs/stream", nil)

	h.StreamLogs(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
