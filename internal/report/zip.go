package report

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// fixedZipTime ensures byte-for-byte reproducible archives (1980-01-01 UTC).
var fixedZipTime = time.Unix(315532800, 0).UTC()

// sanitizePath normalizes ZIP entry paths (forward slashes, no drive, no
// leading '/') and removes '.' and '..' segments without escaping the root.
func sanitizePath(p string) string {
	s := filepath.ToSlash(p)
	if len(s) > 1 && s[1] == ':' {
		s = s[2:]
	}
	s = strings.TrimLeft(s, "/")
	parts := strings.Split(s, "/")
	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		if part == ".." {
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
			continue
		}
		stack = append(stack, part)
	}
	s = strings.Join(stack, "/")
	if s == "" {
		return "entry"
	}
	return s
}

// patchEntryName names the bundle's patch after the compared files. Names
// come from the input envelopes, so they go through sanitizePath before
// becoming an entry path.
func patchEntryName(source, target string) string {
	if source == "" && target == "" {
		return "diff.patch"
	}
	if source == "" {
		source = "source"
	}
	if target == "" {
		target = "target"
	}
	return sanitizePath(source + "-vs-" + target + ".patch")
}

func newHeader(name string) *zip.FileHeader {
	h := &zip.FileHeader{Name: name, Method: zip.Deflate}
	h.SetMode(0o644)
	h.Modified = fixedZipTime
	return h
}

// writeJSONEntry writes a JSON-encoded value with fixed timestamp and mode.
func writeJSONEntry(zw *zip.Writer, name string, v any) error {
	h := newHeader(name)
	w, err := zw.CreateHeader(h)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// writeTextEntry writes a raw text entry with fixed timestamp and mode.
func writeTextEntry(zw *zip.Writer, name string, data []byte) error {
	h := newHeader(name)
	w, err := zw.CreateHeader(h)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
