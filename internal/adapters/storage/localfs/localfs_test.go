package localfs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"manimrunner/internal/ports"
)

func TestPutObject(t *testing.T) {
	root := t.TempDir()
	l := New(root, "http://localhost:8080/videos/")

	out, err := l.PutObject(context.Background(), ports.PutObjectInput{
		ObjectKey:   "job-1.mp4",
		ContentType: "video/mp4",
		Reader:      strings.NewReader("videobytes"),
	})
	if err != nil {
		t.Fatalf("PutObject: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "job-1.mp4"))
	if err != nil {
		t.Fatalf("read stored object: %v", err)
	}
	if string(data) != "videobytes" {
		t.Errorf("stored %q", data)
	}

	if out.URL != "http://localhost:8080/videos/job-1.mp4" {
		t.Errorf("unexpected URL %q", out.URL)
	}
	if out.Size != int64(len("videobytes")) {
		t.Errorf("unexpected size %d", out.Size)
	}
}

func TestPutObjectNestedKey(t *testing.T) {
	root := t.TempDir()
	l := New(root, "http://localhost")

	_, err := l.PutObject(context.Background(), ports.PutObjectInput{
		ObjectKey: "renders/2026/job-2.mp4",
		Reader:    strings.NewReader("v"),
	})
	if err != nil {
		t.Fatalf("PutObject: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "renders", "2026", "job-2.mp4")); err != nil {
		t.Errorf("nested object not written: %v", err)
	}
}

func TestPutObjectRequiresKey(t *testing.T) {
	l := New(t.TempDir(), "http://localhost")
	if _, err := l.PutObject(context.Background(), ports.PutObjectInput{}); err == nil {
		t.Fatal("expected error for empty object key")
	}
}
