package report

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"filediff/internal/compare"
	"filediff/internal/textutil"
)

// Bundle is the content of a report archive:
//
//	README.md     # how to read the bundle
//	<source>-vs-<target>.patch  # unified patch (diff.patch when unnamed; omitted when empty)
//	result.json   # the full result, same as the JSON download
//	summary.json  # fileType and summary only
//	view.json     # the current view: mode, rows and index map
type Bundle struct {
	Result *compare.Result
	View   compare.View
	Patch  string
	Readme ReadmeOptions
}

type summaryDoc struct {
	Kind    compare.Kind    `json:"fileType"`
	Summary compare.Summary `json:"summary"`
}

// ViewDoc is the JSON form of a view: its mode, rows and the index map
// from view position to original position.
type ViewDoc struct {
	Mode     string            `json:"mode"`
	Rows     []compare.ViewRow `json:"rows"`
	IndexMap map[int]int       `json:"indexMap"`
}

// NewViewDoc converts v for writing.
func NewViewDoc(v compare.View) ViewDoc {
	rows := v.Rows
	if rows == nil {
		rows = []compare.ViewRow{}
	}
	return ViewDoc{Mode: v.Mode.String(), Rows: rows, IndexMap: v.IndexMap()}
}

// WriteBundle writes b as a ZIP archive at path. Entries are sorted by name,
// carry a fixed timestamp, and the file is replaced atomically.
func WriteBundle(path string, b Bundle) error {
	if b.Result == nil {
		return errors.New("bundle has no result")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	fail := func(err error) error {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}

	zw := zip.NewWriter(f)
	if err := writeEntries(zw, b); err != nil {
		return fail(err)
	}
	if err := zw.Close(); err != nil {
		return fail(err)
	}
	if err := f.Sync(); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func writeEntries(zw *zip.Writer, b Bundle) error {
	opts := b.Readme
	opts.Kind = b.Result.Kind
	opts.Mode = b.View.Mode.String()
	opts.HasPatch = b.Patch != ""
	opts.PatchName = patchEntryName(opts.SourceName, opts.TargetName)

	entries := map[string]func(*zip.Writer, string) error{
		"README.md": func(zw *zip.Writer, name string) error {
			return writeTextEntry(zw, name, GenerateReadme(opts))
		},
		"result.json": func(zw *zip.Writer, name string) error {
			return writeJSONEntry(zw, name, b.Result)
		},
		"summary.json": func(zw *zip.Writer, name string) error {
			return writeJSONEntry(zw, name, summaryDoc{Kind: b.Result.Kind, Summary: b.Result.Summary})
		},
		"view.json": func(zw *zip.Writer, name string) error {
			return writeJSONEntry(zw, name, NewViewDoc(b.View))
		},
	}
	if b.Patch != "" {
		entries[opts.PatchName] = func(zw *zip.Writer, name string) error {
			return writeTextEntry(zw, name, textutil.EnsureTrailingLF([]byte(b.Patch)))
		}
	}

	names := make([]string, 0, len(entries))
	for n := range entries {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		if err := entries[n](zw, n); err != nil {
			return err
		}
	}
	return nil
}
