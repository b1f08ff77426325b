package render

import (
	"os"
	"path/filepath"

	apperrors "github.com/iitkqc/confession-bot-go/pkg/errors"
)

// DiskStore persists rendered slides under a single output directory. The
// directory is recreated on demand so a cleanup between runs is harmless.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

// Save writes one artifact and returns its absolute-ish path for the
// uploader.
func (s *DiskStore) Save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", apperrors.NewRenderError("create output directory", name, err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", apperrors.NewRenderError("persist slide artifact", name, err)
	}
	return path, nil
}

// Cleanup removes every artifact from previous runs. Errors are returned but
// callers treat them as advisory; a stale image is not worth failing a run.
func (s *DiskStore) Cleanup() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".png" {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
