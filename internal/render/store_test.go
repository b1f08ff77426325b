package render

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskStoreSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	store := NewDiskStore(dir)

	path, err := store.Save("confession_1_slide_1.png", []byte("png"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("artifact not readable: %v", err)
	}
	if string(data) != "png" {
		t.Fatalf("artifact content mismatch: %q", data)
	}
}

func TestDiskStoreCleanupRemovesOnlyImages(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir)

	if _, err := store.Save("confession_1_slide_1.png", []byte("a")); err != nil {
		t.Fatalf("save: %v", err)
	}
	keep := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(keep, []byte("keep"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := store.Cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "confession_1_slide_1.png")); !os.IsNotExist(err) {
		t.Fatal("png should have been removed")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Fatal("non-image files must survive cleanup")
	}
}

func TestDiskStoreCleanupMissingDirIsNoop(t *testing.T) {
	store := NewDiskStore(filepath.Join(t.TempDir(), "never-created"))
	if err := store.Cleanup(); err != nil {
		t.Fatalf("cleanup of a missing dir should be a no-op, got %v", err)
	}
}
