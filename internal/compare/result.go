package compare

// Cell is the comparison at one (record, key) coordinate.
type Cell struct {
	Source Value  `json:"sourceValue,omitzero"`
	Target Value  `json:"targetValue,omitzero"`
	Status Status `json:"status"`
}

// Record is one reconciled row (tabular) or path entry (tree).
//
// Tabular records carry a 1-based Index and Values, the display text of each
// key in Result.Keys order. Tree records carry their Path and a single cell
// keyed by it; Index is zero.
type Record struct {
	Index  int          `json:"index,omitempty"`
	Path   Key          `json:"path,omitempty"`
	Cells  map[Key]Cell `json:"cells"`
	Values []string     `json:"values,omitempty"`
}

// HasDifference reports whether any cell is not a match. When realOnly is
// set, a differing cell only counts if one of its sides is a real value.
func (r Record) HasDifference(realOnly bool) bool {
	for _, c := range r.Cells {
		if !c.Status.Differs() {
			continue
		}
		if !realOnly || c.Source.Real() || c.Target.Real() {
			return true
		}
	}
	return false
}

// Summary aggregates cell statuses over one comparison.
type Summary struct {
	Total      int `json:"totalUnits" yaml:"totalUnits"`
	Matching   int `json:"matchingUnits" yaml:"matchingUnits"`
	Differing  int `json:"differingUnits" yaml:"differingUnits"`
	Changed    int `json:"changedCount" yaml:"changedCount"`
	Removed    int `json:"removedCount" yaml:"removedCount"`
	TargetOnly int `json:"targetOnlyCount" yaml:"targetOnlyCount"`
}

// Add counts one cell of status s. Unknown statuses are ignored.
func (s *Summary) Add(st Status) {
	switch st {
	case StatusMatch:
		s.Matching++
	case StatusDifferent:
		s.Changed++
		s.Differing++
	case StatusSourceOnly:
		s.Removed++
		s.Differing++
	case StatusTargetOnly:
		s.TargetOnly++
		s.Differing++
	default:
		return
	}
	s.Total++
}

// Consistent checks total = matching + differing and
// differing = changed + removed + targetOnly.
func (s Summary) Consistent() bool {
	return s.Total == s.Matching+s.Differing &&
		s.Differing == s.Changed+s.Removed+s.TargetOnly
}

// Summarize tallies every materialized cell of records.
func Summarize(records []Record) Summary {
	var s Summary
	for _, r := range records {
		for _, c := range r.Cells {
			s.Add(c.Status)
		}
	}
	return s
}

// Result is the engine's output for one file pair. Consumers treat it as
// read-only; views are derived with Filter or a Viewer.
type Result struct {
	Kind    Kind     `json:"fileType"`
	Keys    []Key    `json:"keys"`
	Records []Record `json:"records"`
	Summary Summary  `json:"summary"`
}

// Shape returns the record-identity strategy of the result.
func (r *Result) Shape() Shape { return r.Kind.Shape() }

// Len returns the number of records.
func (r *Result) Len() int { return len(r.Records) }

// Record returns the record at 1-based position index.
func (r *Result) Record(index int) (Record, bool) {
	if r == nil || index < 1 || index > len(r.Records) {
		return Record{}, false
	}
	return r.Records[index-1], true
}

// CellStatus returns the status at (index, key); ok is false when the cell
// was not materialized.
func (r *Result) CellStatus(index int, key Key) (Status, bool) {
	c, ok := r.cell(index, key)
	return c.Status, ok
}

// CellValues returns both sides at (index, key).
func (r *Result) CellValues(index int, key Key) (source, target Value, ok bool) {
	c, ok := r.cell(index, key)
	return c.Source, c.Target, ok
}

// Find returns the 1-based position of the tree record for path.
func (r *Result) Find(path Key) (int, bool) {
	if r == nil {
		return 0, false
	}
	for i, rec := range r.Records {
		if rec.Path == path {
			return i + 1, true
		}
	}
	return 0, false
}

func (r *Result) cell(index int, key Key) (Cell, bool) {
	rec, ok := r.Record(index)
	if !ok {
		return Cell{}, false
	}
	c, ok := rec.Cells[key]
	return c, ok
}

func emptyResult(kind Kind) *Result {
	return &Result{Kind: kind, Keys: []Key{}, Records: []Record{}}
}
