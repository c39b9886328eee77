package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/aleister1102/burfisher/internal/trafficstore"
	"github.com/aleister1102/burfisher/pkg/shared/files"
)

// Writer materializes captured transactions as scratch files the scanner can
// read. The returned path doubles as the correlation key for findings, so it
// must never collide between artifacts that are alive at the same time; a
// random UUID component in the name guarantees that even under full batch
// concurrency.
type Writer struct {
	dir    string
	logger hclog.Logger
}

// NewWriter prepares the scratch directory. An empty dir selects a directory
// under the system temp location.
func NewWriter(dir string, logger hclog.Logger) (*Writer, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "burfisher")
	}
	expanded, err := files.ExpandPath(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand scratch dir %q: %w", dir, err)
	}
	if err := files.CreateFolderIfNotExists(expanded); err != nil {
		return nil, err
	}
	return &Writer{dir: expanded, logger: logger}, nil
}

// Dir returns the scratch directory artifacts are written into.
func (w *Writer) Dir() string {
	return w.dir
}

// Write stores the record payload (raw request, a blank line, then the raw
// response if one was captured) and returns the artifact path.
func (w *Writer) Write(rec *trafficstore.Record) (string, error) {
	name := fmt.Sprintf("req-%s-%s.txt", sanitizeID(rec.ID), uuid.NewString())
	path := filepath.Join(w.dir, name)

	payload := make([]byte, 0, len(rec.Request)+2+len(rec.Response))
	payload = append(payload, rec.Request...)
	payload = append(payload, '\n', '\n')
	payload = append(payload, rec.Response...)

	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return "", fmt.Errorf("failed to write artifact for request %q: %w", rec.ID, err)
	}
	return path, nil
}

// OutputPath reserves a unique path in the scratch directory for the
// scanner's structured report file.
func (w *Writer) OutputPath() string {
	return filepath.Join(w.dir, fmt.Sprintf("out-%s.json", uuid.NewString()))
}

// Cleanup removes the given artifacts. It is best effort: a file that is
// already gone is fine, anything else is logged and skipped.
func (w *Writer) Cleanup(paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			w.logger.Warn("failed to remove scan artifact", "path", path, "error", err)
		}
	}
}

// sanitizeID keeps the record id readable inside a file name.
func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}
