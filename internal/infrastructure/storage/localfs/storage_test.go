package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	storage, err := New(filepath.Join(t.TempDir(), "certs"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key := "u1_certificate.pdf"
	if err := storage.Save(context.Background(), key, strings.NewReader("pdf bytes")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reader, err := storage.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "pdf bytes" {
		t.Fatalf("got %q, want the saved content", data)
	}
}

func TestNewCreatesBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "certs")
	if _, err := New(base); err != nil {
		t.Fatalf("New: %v", err)
	}
	info, err := os.Stat(base)
	if err != nil || !info.IsDir() {
		t.Fatalf("base dir not created: %v", err)
	}
}

func TestPathResolvesUnderBase(t *testing.T) {
	base := filepath.Join(t.TempDir(), "certs")
	storage, err := New(base)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := storage.Path("u1_scan.png"); got != filepath.Join(base, "u1_scan.png") {
		t.Fatalf("Path = %q, want it under the base dir", got)
	}
}

func TestRemoveMissingFileIsNotAnError(t *testing.T) {
	storage, err := New(filepath.Join(t.TempDir(), "certs"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := storage.Remove(context.Background(), "never-saved.txt"); err != nil {
		t.Fatalf("Remove of a missing file: %v", err)
	}
}

func TestRemoveDeletesStoredFile(t *testing.T) {
	storage, err := New(filepath.Join(t.TempDir(), "certs"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	key := "u2_to_delete.txt"
	if err := storage.Save(context.Background(), key, strings.NewReader("bye")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := storage.Remove(context.Background(), key); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(storage.Path(key)); !os.IsNotExist(err) {
		t.Fatalf("file still present after Remove: %v", err)
	}
}
