// Package report writes comparison results to disk: the JSON download and
// the ZIP report bundle. Writes are atomic and bundles are reproducible.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"filediff/internal/compare"
)

// Filename returns the download name for a comparison made on t,
// e.g. "comparison-results-2024-03-01.json".
func Filename(t time.Time) string {
	return "comparison-results-" + t.Format(time.DateOnly) + ".json"
}

// Destination resolves out: an existing directory (or a path ending in a
// separator) gets the dated download name, anything else is used as is.
func Destination(out string, t time.Time) string {
	if out == "" {
		return Filename(t)
	}
	if os.IsPathSeparator(out[len(out)-1]) {
		return filepath.Join(out, Filename(t))
	}
	if fi, err := os.Stat(out); err == nil && fi.IsDir() {
		return filepath.Join(out, Filename(t))
	}
	return out
}

// WriteJSON writes v as indented JSON to path atomically.
// The write is performed into a temporary file within the same directory,
// then renamed so readers never observe a partially-written file.
func WriteJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LoadResult reads a result previously written with WriteJSON.
func LoadResult(path string) (*compare.Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r compare.Result
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if !r.Kind.Valid() {
		return nil, fmt.Errorf("decode %s: %w: %q", path, compare.ErrUnknownKind, r.Kind)
	}
	if r.Records == nil {
		r.Records = []compare.Record{}
	}
	if r.Keys == nil {
		r.Keys = []compare.Key{}
	}
	return &r, nil
}
