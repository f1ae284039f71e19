package compare

import "slices"

// Mode is the state of the differences-only toggle.
type Mode int

const (
	ModeAll Mode = iota
	ModeDifferences
)

func (m Mode) String() string {
	if m == ModeDifferences {
		return "differences-only"
	}
	return "all"
}

// ViewRow places one canonical record at a position of a view.
type ViewRow struct {
	Position int `json:"position"`
	Original int `json:"original"`
}

// View is a derived, disposable projection of a Result. It shares the
// result's records and never modifies them.
type View struct {
	Mode Mode      `json:"-"`
	Rows []ViewRow `json:"rows"`

	records []Record
	back    map[int]int
}

// Filter derives the view for the toggle state. With differencesOnly unset
// every record keeps its original position. With it set, a record is kept
// when it has a non-matching cell; tabular records additionally need a real
// value on one side of that cell. Kept records are renumbered 1..N.
func Filter(r *Result, differencesOnly bool) View {
	v := View{Mode: ModeAll, Rows: []ViewRow{}, back: make(map[int]int)}
	if r == nil {
		return v
	}
	v.records = r.Records
	if differencesOnly {
		v.Mode = ModeDifferences
	}
	realOnly := r.Shape() == ShapeTabular
	for i, rec := range r.Records {
		if v.Mode == ModeDifferences && !rec.HasDifference(realOnly) {
			continue
		}
		pos := len(v.Rows) + 1
		v.Rows = append(v.Rows, ViewRow{Position: pos, Original: i + 1})
		v.back[i+1] = pos
	}
	return v
}

func (v View) clone() View {
	v.Rows = slices.Clone(v.Rows)
	return v
}

// Len returns the number of rows in the view.
func (v View) Len() int { return len(v.Rows) }

// Original translates a view position into the canonical 1-based position.
func (v View) Original(pos int) (int, bool) {
	if pos < 1 || pos > len(v.Rows) {
		return 0, false
	}
	return v.Rows[pos-1].Original, true
}

// Position translates a canonical position into its view position.
func (v View) Position(original int) (int, bool) {
	p, ok := v.back[original]
	return p, ok
}

// IndexMap returns view position -> canonical position.
func (v View) IndexMap() map[int]int {
	m := make(map[int]int, len(v.Rows))
	for _, row := range v.Rows {
		m[row.Position] = row.Original
	}
	return m
}

// Record returns the canonical record shown at view position pos.
func (v View) Record(pos int) (Record, bool) {
	orig, ok := v.Original(pos)
	if !ok || orig > len(v.records) {
		return Record{}, false
	}
	return v.records[orig-1], true
}

// Viewer is the two-state toggle over one Result. The current view is a
// pure function of the result and the mode, so re-toggling to the same
// mode returns the same view.
type Viewer struct {
	result *Result
	view   View
}

// NewViewer starts in ModeAll.
func NewViewer(r *Result) *Viewer {
	return &Viewer{result: r, view: Filter(r, false)}
}

// Mode returns the current toggle state.
func (vw *Viewer) Mode() Mode { return vw.view.Mode }

// View returns a copy of the current view; editing its Rows does not
// affect the Viewer.
func (vw *Viewer) View() View { return vw.view.clone() }

// Toggle switches to the requested state. Requesting the current state is a
// no-op.
func (vw *Viewer) Toggle(differencesOnly bool) View {
	want := ModeAll
	if differencesOnly {
		want = ModeDifferences
	}
	if want != vw.view.Mode {
		vw.view = Filter(vw.result, differencesOnly)
	}
	return vw.view.clone()
}

// CellStatus looks up a cell by its position in the current view.
func (vw *Viewer) CellStatus(pos int, key Key) (Status, bool) {
	orig, ok := vw.view.Original(pos)
	if !ok {
		return "", false
	}
	return vw.result.CellStatus(orig, key)
}

// CellValues looks up both sides of a cell by its position in the current view.
func (vw *Viewer) CellValues(pos int, key Key) (source, target Value, ok bool) {
	orig, ok := vw.view.Original(pos)
	if !ok {
		return Value{}, Value{}, false
	}
	return vw.result.CellValues(orig, key)
}
