package media

import (
	"os"
	"strings"
	"testing"
)

func TestSaveAndResolve(t *testing.T) {
	store, err := NewFileUploadStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileUploadStore: %v", err)
	}

	ref, localPath, err := store.Save(strings.NewReader("pdf bytes"), UploadMeta{
		Filename: "book.pdf",
		Kind:     "pdf",
	}, "req-1")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(ref, "upload://") {
		t.Errorf("ref = %q, want upload:// prefix", ref)
	}
	if !strings.HasSuffix(localPath, "_book.pdf") {
		t.Errorf("localPath = %q, want unique name keeping the original", localPath)
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(data) != "pdf bytes" {
		t.Errorf("stored content = %q", data)
	}

	resolved, err := store.Resolve(ref)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved != localPath {
		t.Errorf("Resolve = %q, want %q", resolved, localPath)
	}
}

func TestResolveUnknownRef(t *testing.T) {
	store, err := NewFileUploadStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Resolve("upload://nope"); err == nil {
		t.Error("expected error for unknown ref")
	}
}

func TestSaveSanitizesFilename(t *testing.T) {
	store, err := NewFileUploadStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	_, localPath, err := store.Save(strings.NewReader("x"), UploadMeta{
		Filename: "../../etc/passwd",
	}, "req-1")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if strings.Contains(localPath, "..") {
		t.Errorf("localPath %q keeps traversal sequences", localPath)
	}
}

func TestReleaseAll(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileUploadStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	refA, pathA, err := store.Save(strings.NewReader("a"), UploadMeta{Filename: "a.txt"}, "scope-1")
	if err != nil {
		t.Fatal(err)
	}
	_, pathB, err := store.Save(strings.NewReader("b"), UploadMeta{Filename: "b.txt"}, "scope-2")
	if err != nil {
		t.Fatal(err)
	}

	if err := store.ReleaseAll("scope-1"); err != nil {
		t.Fatalf("ReleaseAll: %v", err)
	}

	if _, err := os.Stat(pathA); !os.IsNotExist(err) {
		t.Errorf("scope-1 file still exists")
	}
	if _, err := os.Stat(pathB); err != nil {
		t.Errorf("scope-2 file was removed: %v", err)
	}
	if _, err := store.Resolve(refA); err == nil {
		t.Error("released ref still resolves")
	}

	// Releasing an unknown scope is a no-op.
	if err := store.ReleaseAll("scope-404"); err != nil {
		t.Errorf("ReleaseAll unknown scope: %v", err)
	}
}
