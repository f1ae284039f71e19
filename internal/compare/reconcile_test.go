package compare

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(cols []Key, rows ...Row) Document {
	return Document{Columns: cols, Rows: rows}
}

func TestCompareTabularChangedCell(t *testing.T) {
	src := table([]Key{"A", "B"}, RowOf("A", "1", "B", "x"))
	tgt := table([]Key{"A", "B"}, RowOf("A", "1", "B", "y"))

	res, err := Compare(KindCSV, src, tgt)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	st, ok := res.CellStatus(1, "A")
	require.True(t, ok)
	assert.Equal(t, StatusMatch, st)
	st, ok = res.CellStatus(1, "B")
	require.True(t, ok)
	assert.Equal(t, StatusDifferent, st)

	want := Summary{Total: 2, Matching: 1, Differing: 1, Changed: 1}
	assert.Equal(t, want, res.Summary)
	assert.Equal(t, []string{"1", "x"}, res.Records[0].Values)
}

func TestAssembleAppendsUnorderedRecordKeys(t *testing.T) {
	first := RowOf("A", "1", "Z", "9")
	second := RowOf("A", "2")
	entries := []entry{
		{keys: first.Keys(), lookup: func(k Key) (PairedCell, bool) {
			v, ok := first.Get(k)
			return PairedCell{Source: v, Target: v}, ok
		}},
		{keys: second.Keys(), lookup: func(k Key) (PairedCell, bool) {
			v, ok := second.Get(k)
			return PairedCell{Source: v}, ok
		}},
	}

	res := assemble(KindCSV, []Key{"A"}, entries, false)
	if diff := cmp.Diff([]Key{"A", "Z"}, res.Keys); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"1", "9"}, res.Records[0].Values)
	assert.Equal(t, []string{"2", ""}, res.Records[1].Values)
	st, ok := res.CellStatus(1, "Z")
	require.True(t, ok)
	assert.Equal(t, StatusMatch, st)
	assert.Equal(t, Summary{Total: 3, Matching: 2, Differing: 1, Removed: 1}, res.Summary)
}

func TestCompareTabularSourceOnlyColumn(t *testing.T) {
	src := table([]Key{"A", "C"}, RowOf("A", "1", "C", "foo"))
	tgt := table([]Key{"A"}, RowOf("A", "1"))

	res, err := Compare(KindXLSX, src, tgt)
	require.NoError(t, err)

	st, ok := res.CellStatus(1, "C")
	require.True(t, ok)
	assert.Equal(t, StatusSourceOnly, st)
	assert.Equal(t, 1, res.Summary.Removed)
	assert.True(t, res.Summary.Consistent())
}

func TestCompareTabularAppendsTargetOnlyColumns(t *testing.T) {
	src := table([]Key{"B", "A"}, RowOf("B", "1", "A", "2"))
	tgt := table([]Key{"A", "Z", "B"}, RowOf("A", "2", "Z", "9", "B", "1"))

	res, err := Compare(KindCSV, src, tgt)
	require.NoError(t, err)
	if diff := cmp.Diff([]Key{"B", "A", "Z"}, res.Keys); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	st, _ := res.CellStatus(1, "Z")
	assert.Equal(t, StatusTargetOnly, st)
	assert.Equal(t, []string{"1", "2", "9"}, res.Records[0].Values)
}

func TestCompareTabularUnevenRowCounts(t *testing.T) {
	src := table([]Key{"A"}, RowOf("A", "1"), RowOf("A", "2"), RowOf("A", "3"))
	tgt := table([]Key{"A"}, RowOf("A", "1"))

	res, err := Compare(KindCSV, src, tgt)
	require.NoError(t, err)
	require.Len(t, res.Records, 3)
	for i, rec := range res.Records {
		assert.Equal(t, i+1, rec.Index)
	}
	st, _ := res.CellStatus(3, "A")
	assert.Equal(t, StatusSourceOnly, st)

	res, err = Compare(KindCSV, tgt, src)
	require.NoError(t, err)
	require.Len(t, res.Records, 3)
	st, _ = res.CellStatus(2, "A")
	assert.Equal(t, StatusTargetOnly, st)
	assert.Equal(t, Summary{Total: 3, Matching: 1, Differing: 2, TargetOnly: 2}, res.Summary)
}

func TestCompareTabularKeepsRowsWithoutCells(t *testing.T) {
	src := table([]Key{"A"}, RowOf("A", "1"), RowOf("A", nil))
	tgt := table([]Key{"A"}, RowOf("A", "1"), RowOf())

	res, err := Compare(KindCSV, src, tgt)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Empty(t, res.Records[1].Cells)
	assert.NotNil(t, res.Records[1].Cells)
	assert.Equal(t, []string{""}, res.Records[1].Values)
}

func TestCompareEmptyDocumentIsEmptyResult(t *testing.T) {
	src := table([]Key{"A"}, RowOf("A", "1"))
	for _, kind := range []Kind{KindCSV, KindXML} {
		res, err := Compare(kind, src, Document{})
		require.NoError(t, err)
		assert.Empty(t, res.Records)
		assert.NotNil(t, res.Records)
		assert.Equal(t, Summary{}, res.Summary)
	}
}

func TestCompareUnknownKind(t *testing.T) {
	_, err := Compare("pdf", Document{}, Document{})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestCompareTreeSourceOnlyAndTargetOnly(t *testing.T) {
	src := Document{Rows: []Row{RowOf("/a/b", "5", "/a/d", "1")}}
	tgt := Document{Rows: []Row{RowOf("/a/c", "9", "/a/d", "1")}}

	res, err := Compare(KindXML, src, tgt)
	require.NoError(t, err)

	paths := make([]Key, 0, len(res.Records))
	for _, rec := range res.Records {
		paths = append(paths, rec.Path)
		assert.Zero(t, rec.Index)
		assert.Len(t, rec.Cells, 1)
	}
	if diff := cmp.Diff([]Key{"/a/b", "/a/d", "/a/c"}, paths); diff != "" {
		t.Fatalf("record order (-want +got):\n%s", diff)
	}
	assert.Equal(t, paths, res.Keys)

	pos, ok := res.Find("/a/b")
	require.True(t, ok)
	st, _ := res.CellStatus(pos, "/a/b")
	assert.Equal(t, StatusSourceOnly, st)

	pos, ok = res.Find("/a/c")
	require.True(t, ok)
	st, _ = res.CellStatus(pos, "/a/c")
	assert.Equal(t, StatusTargetOnly, st)

	assert.Equal(t, Summary{Total: 3, Matching: 1, Differing: 2, Removed: 1, TargetOnly: 1}, res.Summary)
}

func TestCompareTreeCanonicalOrderWins(t *testing.T) {
	src := Document{
		Columns: []Key{"/r/y", "/r/x"},
		Rows:    []Row{RowOf("/r/x", "1", "/r/y", "2")},
	}
	tgt := Document{Rows: []Row{RowOf("/r/x", "1", "/r/y", "3")}}

	res, err := Compare(KindXML, src, tgt)
	require.NoError(t, err)
	if diff := cmp.Diff([]Key{"/r/y", "/r/x"}, res.Keys); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
}

func TestCompareTreeLastSeenValueWins(t *testing.T) {
	src := Document{Rows: []Row{RowOf("/p", "1"), RowOf("/p", "2")}}
	tgt := Document{Rows: []Row{RowOf("/p", "2")}}

	res, err := Compare(KindXML, src, tgt)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	st, _ := res.CellStatus(1, "/p")
	assert.Equal(t, StatusMatch, st)
}

func TestFromPayloadTreeHonoursAuthoritativeStatus(t *testing.T) {
	raw := `{
	  "fileType": "xml",
	  "rows": [{"cells": {
	    "/r[1]/b[1]": {"sourceValue": "a", "targetValue": "a", "status": "different"},
	    "/r[1]/t[1]": {"sourceValue": null, "targetValue": "9"},
	    "/r[1]/a[1]": {"sourceValue": "x", "targetValue": "y", "status": "bogus"},
	    "/r[1]/e[1]": {"sourceValue": null, "targetValue": null}
	  }}]
	}`
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	res, err := FromPayload(p)
	require.NoError(t, err)
	if diff := cmp.Diff([]Key{"/r[1]/b[1]", "/r[1]/a[1]", "/r[1]/t[1]"}, res.Keys); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	st, _ := res.CellStatus(1, "/r[1]/b[1]")
	assert.Equal(t, StatusDifferent, st)
	st, _ = res.CellStatus(2, "/r[1]/a[1]")
	assert.Equal(t, StatusDifferent, st)
	src, tgt, ok := res.CellValues(3, "/r[1]/t[1]")
	require.True(t, ok)
	assert.True(t, src.IsNull())
	assert.Equal(t, "9", tgt.Text())
}

func TestFromPayloadTabularDerivesStatus(t *testing.T) {
	p := Payload{Kind: KindCSV, Headers: []Key{"A"}}
	var cells Ordered[PairedCell]
	cells.Set("A", PairedCell{Source: String("1"), Target: String("1"), Status: StatusDifferent})
	cells.Set("N", PairedCell{Target: String("new")})
	p.Rows = []PairedRow{{Cells: cells}}
	p.Summary = &Summary{Total: 99}

	res, err := FromPayload(p)
	require.NoError(t, err)
	st, _ := res.CellStatus(1, "A")
	assert.Equal(t, StatusMatch, st)
	st, _ = res.CellStatus(1, "N")
	assert.Equal(t, StatusTargetOnly, st)
	assert.Equal(t, []Key{"A", "N"}, res.Keys)
	assert.Equal(t, 2, res.Summary.Total)
}

func TestFromPayloadWithoutRowsIsEmpty(t *testing.T) {
	res, err := FromPayload(Payload{Kind: KindXML})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, Summary{}, res.Summary)

	_, err = FromPayload(Payload{Kind: "txt"})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestResultJSONRoundTripIsLossless(t *testing.T) {
	var cells Ordered[PairedCell]
	n, _ := Number("1.50")
	cells.Set("/r/n", PairedCell{Source: n, Target: String("1.5")})
	cells.Set("/r/z", PairedCell{Source: Null(), Target: Bool(false)})
	cells.Set("/r/s", PairedCell{Source: String("<a&b>")})
	res, err := FromPayload(Payload{Kind: KindXML, Rows: []PairedRow{{Cells: cells}}})
	require.NoError(t, err)

	first, err := json.Marshal(res)
	require.NoError(t, err)
	var back Result
	require.NoError(t, json.Unmarshal(first, &back))
	second, err := json.Marshal(&back)
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, string(first), string(second))

	assert.Equal(t, []Key{"/r/n", "/r/s", "/r/z"}, back.Keys)
	src, _, _ := back.CellValues(3, "/r/z")
	assert.True(t, src.IsNull())
	_, tgt, _ := back.CellValues(2, "/r/s")
	assert.True(t, tgt.Absent())
	st, _ := back.CellStatus(1, "/r/n")
	assert.Equal(t, StatusDifferent, st)
}
