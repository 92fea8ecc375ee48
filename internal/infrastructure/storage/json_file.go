package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"TosdrCollector/internal/domain"
	"TosdrCollector/internal/ports"
)

// JSONFile writes the output table as an indented JSON object.
type JSONFile struct {
	path string
}

var _ ports.TableWriter = (*JSONFile)(nil)

// NewJSONFile targets path; parent directories are created on write.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Name identifies the writer in logs.
func (w *JSONFile) Name() string {
	return "json:" + w.path
}

// Write replaces the file atomically: a failed write leaves the previous
// file untouched.
func (w *JSONFile) Write(ctx context.Context, table domain.OutputTable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if table == nil {
		table = domain.OutputTable{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(table); err != nil {
		return fmt.Errorf("marshal table: %w", err)
	}
	payload := buf.Bytes()

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", w.path, err)
	}

	return nil
}
