package compare

import "fmt"

// entry is one record's input before classification: a path for tree
// records, the keys a tabular record carries, and a lookup of the paired
// cell for each key.
type entry struct {
	path   Key
	keys   []Key
	lookup func(Key) (PairedCell, bool)
}

// Compare reconciles two parsed documents of the same kind.
//
// Tabular documents are compared by row position up to the longer
// document; rows missing on one side produce one-sided cells. Tree documents
// are flattened to path -> value (last seen wins) and each path becomes one
// record. If either document is empty the result is empty, not an error.
func Compare(kind Kind, source, target Document) (*Result, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if source.Empty() || target.Empty() {
		return emptyResult(kind), nil
	}
	if kind.Shape() == ShapeTree {
		return compareTrees(kind, source, target), nil
	}
	return compareTables(kind, source, target), nil
}

func compareTables(kind Kind, source, target Document) *Result {
	keys := Align(source.Columns, rowKeys(source.Rows), target.Columns, rowKeys(target.Rows))
	n := max(len(source.Rows), len(target.Rows))
	entries := make([]entry, n)
	for i := range n {
		src, tgt := rowAt(source.Rows, i), rowAt(target.Rows, i)
		entries[i] = entry{keys: Align(src.Keys(), tgt.Keys()), lookup: func(k Key) (PairedCell, bool) {
			s, _ := src.Get(k)
			t, _ := tgt.Get(k)
			return PairedCell{Source: s, Target: t}, true
		}}
	}
	return assemble(kind, keys, entries, false)
}

func compareTrees(kind Kind, source, target Document) *Result {
	src, tgt := flatten(source.Rows), flatten(target.Rows)
	keys := Align(source.Columns, src.Keys(), target.Columns, tgt.Keys())
	entries := make([]entry, len(keys))
	for i, k := range keys {
		entries[i] = entry{path: k, lookup: func(Key) (PairedCell, bool) {
			s, sok := src.Get(k)
			t, tok := tgt.Get(k)
			return PairedCell{Source: s, Target: t}, sok || tok
		}}
	}
	return assemble(kind, keys, entries, false)
}

// FromPayload reconciles a pre-paired payload. Tree cells may carry an
// authoritative status from the parser; tabular statuses are always
// derived locally. The payload's own summary is ignored.
func FromPayload(p Payload) (*Result, error) {
	if !p.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, p.Kind)
	}
	if !payloadHasCells(p.Rows) {
		return emptyResult(p.Kind), nil
	}
	if p.Kind.Shape() == ShapeTree {
		merged := mergePaired(p.Rows)
		sourceSide, targetSide := splitBySide(merged)
		keys := Align(p.order(), sourceSide, targetSide)
		entries := make([]entry, len(keys))
		for i, k := range keys {
			entries[i] = entry{path: k, lookup: merged.Get}
		}
		return assemble(p.Kind, keys, entries, true), nil
	}

	var all Ordered[PairedCell]
	for _, row := range p.Rows {
		for _, k := range row.Cells.Keys() {
			c, _ := row.Cells.Get(k)
			if _, seen := all.Get(k); !seen || c.Source.Present() {
				all.Set(k, c)
			}
		}
	}
	sourceSide, targetSide := splitBySide(all)
	keys := Align(p.order(), sourceSide, targetSide)
	entries := make([]entry, len(p.Rows))
	for i := range p.Rows {
		entries[i] = entry{keys: p.Rows[i].Cells.Keys(), lookup: p.Rows[i].Cells.Get}
	}
	return assemble(p.Kind, keys, entries, false), nil
}

// assemble is the single reconciliation walk shared by every input form;
// the kind's shape decides how records are identified.
func assemble(kind Kind, keys []Key, entries []entry, trustStatus bool) *Result {
	res := &Result{Kind: kind, Keys: keys, Records: make([]Record, 0, len(entries))}
	if kind.Shape() == ShapeTree {
		emitted := make([]Key, 0, len(entries))
		for _, e := range entries {
			pc, ok := e.lookup(e.path)
			if !ok {
				continue
			}
			c, ok := materialize(pc, trustStatus)
			if !ok {
				continue
			}
			res.Records = append(res.Records, Record{Path: e.path, Cells: map[Key]Cell{e.path: c}})
			emitted = append(emitted, e.path)
		}
		res.Keys = emitted
	} else {
		// A record key missing from keys is placed at the end, never dropped.
		order := NewAligner()
		order.AddAll(keys)
		for i, e := range entries {
			rec := Record{Index: i + 1, Cells: make(map[Key]Cell, len(e.keys)), Values: make([]string, order.Len())}
			for _, k := range e.keys {
				pc, ok := e.lookup(k)
				if !ok {
					continue
				}
				c, ok := materialize(pc, trustStatus)
				if !ok {
					continue
				}
				j, _ := order.Position(k)
				rec.Values = padValues(rec.Values, j+1)
				rec.Cells[k] = c
				rec.Values[j] = display(c)
			}
			res.Records = append(res.Records, rec)
		}
		res.Keys = order.Keys()
		for i := range res.Records {
			res.Records[i].Values = padValues(res.Records[i].Values, len(res.Keys))
		}
	}
	res.Summary = Summarize(res.Records)
	return res
}

// materialize turns a paired cell into a Cell, or reports false when there
// is nothing to compare.
func materialize(pc PairedCell, trustStatus bool) (Cell, bool) {
	if trustStatus && pc.Status.Valid() {
		return Cell{Source: pc.Source, Target: pc.Target, Status: pc.Status}, true
	}
	st, ok := Classify(pc.Source, pc.Target)
	if !ok {
		return Cell{}, false
	}
	return Cell{Source: pc.Source, Target: pc.Target, Status: st}, true
}

func padValues(vals []string, n int) []string {
	if len(vals) < n {
		vals = append(vals, make([]string, n-len(vals))...)
	}
	return vals
}

func display(c Cell) string {
	if c.Source.Present() {
		return c.Source.Text()
	}
	return c.Target.Text()
}

func rowAt(rows []Row, i int) Row {
	if i < len(rows) {
		return rows[i]
	}
	return Row{}
}

func rowKeys(rows []Row) []Key {
	a := NewAligner()
	for _, r := range rows {
		a.AddAll(r.Keys())
	}
	return a.Keys()
}

// flatten collects path -> value over every row; a recurring path keeps its
// first position and its last value.
func flatten(rows []Row) Row {
	var out Row
	for _, r := range rows {
		for _, k := range r.Keys() {
			v, _ := r.Get(k)
			out.Set(k, v)
		}
	}
	return out
}

func mergePaired(rows []PairedRow) Ordered[PairedCell] {
	var out Ordered[PairedCell]
	for _, r := range rows {
		for _, k := range r.Cells.Keys() {
			c, _ := r.Cells.Get(k)
			out.Set(k, c)
		}
	}
	return out
}

// splitBySide separates keys that exist on the source side from keys seen
// only on the target side, each in first-observed order.
func splitBySide(cells Ordered[PairedCell]) (source, target []Key) {
	for _, k := range cells.Keys() {
		c, _ := cells.Get(k)
		if !c.Source.Present() && (c.Target.Present() || c.Status == StatusTargetOnly) {
			target = append(target, k)
			continue
		}
		source = append(source, k)
	}
	return source, target
}

func payloadHasCells(rows []PairedRow) bool {
	for _, r := range rows {
		if r.Cells.Len() > 0 {
			return true
		}
	}
	return false
}
