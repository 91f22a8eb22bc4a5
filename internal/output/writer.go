// Package output maps namespaces to directories under the output root
// and writes rendered bridge files there.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// GeneratedDir is the per-namespace subdirectory generated files land in.
const GeneratedDir = "Generated"

// Writer writes rendered units under one output root. Files are fully
// generated and never hand-edited, so every write overwrites
// unconditionally; the banner is the only enforcement. Files for
// candidates that disappear between runs are not deleted here; the clean
// command removes the whole root.
type Writer struct {
	root   string
	logger *zap.Logger
}

// New creates a writer rooted at root.
func New(root string, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{root: root, logger: logger}
}

// PathFor returns the file path a unit in namespace would be written to.
// Import-path separators become OS path separators; the rest of the
// namespace is kept verbatim.
func (w *Writer) PathFor(namespace, generatedName string) string {
	nsPath := filepath.Join(strings.Split(namespace, "/")...)
	return filepath.Join(w.root, nsPath, GeneratedDir, generatedName+".go")
}

// Write renders text to the unit's path, creating directories as needed,
// and returns the written path.
func (w *Writer) Write(namespace, generatedName, text string) (string, error) {
	path := w.PathFor(namespace, generatedName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create output dir for %s: %w", namespace, err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	w.logger.Debug("wrote bridge", zap.String("path", path))
	return path, nil
}

// Clean removes the entire output root. This is the bulk escape hatch for
// stale files; it is never invoked as part of a generation batch.
func Clean(root string) error {
	if root == "" || root == "/" {
		return fmt.Errorf("refusing to clean %q", root)
	}
	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("clean %s: %w", root, err)
	}
	return nil
}
