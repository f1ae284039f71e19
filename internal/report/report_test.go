package report

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filediff/internal/compare"
)

func sample(t *testing.T) *compare.Result {
	t.Helper()
	src := compare.Document{Columns: []compare.Key{"A", "B"}, Rows: []compare.Row{
		compare.RowOf("A", "1", "B", "x"),
		compare.RowOf("A", "2", "B", nil),
	}}
	tgt := compare.Document{Columns: []compare.Key{"A", "B"}, Rows: []compare.Row{
		compare.RowOf("A", "1", "B", "y"),
		compare.RowOf("A", "2"),
	}}
	r, err := compare.Compare(compare.KindCSV, src, tgt)
	require.NoError(t, err)
	return r
}

func TestFilename(t *testing.T) {
	day := time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "comparison-results-2024-03-01.json", Filename(day))

	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, Filename(day)), Destination(dir, day))
	assert.Equal(t, filepath.Join(dir, "x.json"), Destination(filepath.Join(dir, "x.json"), day))
	assert.Equal(t, Filename(day), Destination("", day))
}

func TestWriteJSONThenLoadIsLossless(t *testing.T) {
	r := sample(t)
	path := filepath.Join(t.TempDir(), "out", "result.json")
	require.NoError(t, WriteJSON(path, r))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")

	back, err := LoadResult(path)
	require.NoError(t, err)
	assert.Equal(t, r.Keys, back.Keys)
	assert.Equal(t, r.Summary, back.Summary)
	for i := range r.Records {
		for k, c := range r.Records[i].Cells {
			got := back.Records[i].Cells[k]
			assert.True(t, c.Source.Identical(got.Source), "record %d key %s source", i+1, k)
			assert.True(t, c.Target.Identical(got.Target), "record %d key %s target", i+1, k)
			assert.Equal(t, c.Status, got.Status)
		}
	}
}

func TestLoadResultErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadResult(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"fileType":"pdf"}`), 0o644))
	_, err = LoadResult(bad)
	assert.ErrorIs(t, err, compare.ErrUnknownKind)
}

func readZip(t *testing.T, path string) (map[string][]byte, []string) {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	out := map[string][]byte{}
	var names []string
	for _, f := range zr.File {
		assert.True(t, f.Modified.Equal(fixedZipTime), "%s has timestamp %v", f.Name, f.Modified)
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		_ = rc.Close()
		out[f.Name] = b
		names = append(names, f.Name)
	}
	return out, names
}

func TestWriteBundleIsDeterministic(t *testing.T) {
	r := sample(t)
	b := Bundle{
		Result: r,
		View:   compare.Filter(r, true),
		Patch:  "--- a/source\n+++ b/target\n",
		Readme: ReadmeOptions{SourceName: "old.csv", TargetName: "new.csv", ContextLines: 3},
	}
	dir := t.TempDir()
	p1, p2 := filepath.Join(dir, "a.zip"), filepath.Join(dir, "b.zip")
	require.NoError(t, WriteBundle(p1, b))
	require.NoError(t, WriteBundle(p2, b))

	z1, err := os.ReadFile(p1)
	require.NoError(t, err)
	z2, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(z1, z2), "bundles must be byte-identical")

	files, names := readZip(t, p1)
	assert.Equal(t, []string{"README.md", "old.csv-vs-new.csv.patch", "result.json", "summary.json", "view.json"}, names)
	var view struct {
		Mode     string         `json:"mode"`
		IndexMap map[string]int `json:"indexMap"`
	}
	require.NoError(t, json.Unmarshal(files["view.json"], &view))
	assert.Equal(t, "differences-only", view.Mode)
	assert.Equal(t, map[string]int{"1": 1}, view.IndexMap)

	readme := string(files["README.md"])
	assert.Contains(t, readme, "**old.csv**")
	assert.Contains(t, readme, "**old.csv-vs-new.csv.patch**")
	assert.Contains(t, readme, "mode **differences-only**")
}

func TestWriteBundleWithoutPatchOrResult(t *testing.T) {
	r := sample(t)
	path := filepath.Join(t.TempDir(), "r.zip")
	require.NoError(t, WriteBundle(path, Bundle{Result: r, View: compare.Filter(r, false)}))
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	for _, f := range zr.File {
		assert.False(t, strings.HasSuffix(f.Name, ".patch"), f.Name)
	}

	assert.Error(t, WriteBundle(path, Bundle{}))
}

func TestGenerateReadme(t *testing.T) {
	a := GenerateReadme(ReadmeOptions{Kind: compare.KindXML})
	b := GenerateReadme(ReadmeOptions{Kind: compare.KindXML})
	if !bytes.Equal(a, b) {
		t.Fatalf("readme not deterministic")
	}
	s := string(a)
	if !strings.HasSuffix(s, "\n") || strings.Contains(s, "\r") {
		t.Fatalf("readme must end with \\n and contain no \\r")
	}
	for _, w := range []string{"# filediff report", "structural path", "Statuses", "Conventions"} {
		if !strings.Contains(s, w) {
			t.Fatalf("missing marker %q in readme:\n%s", w, s)
		}
	}
	if strings.Contains(s, "diff.patch") {
		t.Fatalf("readme mentions a patch that is not in the bundle")
	}
}

func TestSanitizePath(t *testing.T) {
	assert.Equal(t, "a/b.txt", sanitizePath("C:/../a/./b.txt"))
	assert.Equal(t, "entry", sanitizePath("/../"))
}

func TestPatchEntryName(t *testing.T) {
	assert.Equal(t, "diff.patch", patchEntryName("", ""))
	assert.Equal(t, "old.csv-vs-target.patch", patchEntryName("old.csv", ""))
	assert.Equal(t, "etc/old.xml-vs-new.xml.patch", patchEntryName("../../etc/old.xml", "new.xml"))
	assert.Equal(t, "old.csv-vs-new.csv.patch", patchEntryName("/old.csv", "new.csv"))
}

func TestWriteBundleUnnamedPatch(t *testing.T) {
	r := sample(t)
	path := filepath.Join(t.TempDir(), "r.zip")
	require.NoError(t, WriteBundle(path, Bundle{Result: r, View: compare.Filter(r, false), Patch: "--- a/source\n+++ b/target\n"}))
	files, names := readZip(t, path)
	assert.Contains(t, names, "diff.patch")
	assert.Contains(t, string(files["README.md"]), "**diff.patch**")
}
