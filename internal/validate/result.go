// Package validate checks the structural invariants of a comparison result
// before it is written or rendered. It does not re-run the comparison; it
// checks that the result is internally coherent so that a hand-edited or
// stale download is caught early.
//
// All issues are aggregated into a single error.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"filediff/internal/compare"
)

// Result validates r:
//
//   - fileType is one of the supported kinds and records is not null.
//   - Keys are unique and every cell key is one of them.
//   - Every cell carries one of the four statuses.
//   - Tabular records are indexed 1..N in order and their values line up with keys.
//   - Tabular statuses agree with the values on both sides.
//   - Tree records have a unique, non-empty path, no index, and exactly one
//     cell keyed by that path; keys list the paths in record order.
//   - The summary equals the recomputed one and is internally consistent.
//
// The function returns nil if everything looks fine, or a single aggregated
// error describing all the issues found.
func Result(r *compare.Result) error {
	var errs errlist
	if r == nil {
		errs.add("result must not be nil")
		return errs.err()
	}

	if !r.Kind.Valid() {
		errs.add("fileType %q is not one of csv, xlsx, xml", r.Kind)
	}
	if r.Records == nil {
		errs.add("records must be an array, got null")
	}

	keys := make(map[compare.Key]struct{}, len(r.Keys))
	for i, k := range r.Keys {
		if _, dup := keys[k]; dup {
			errs.add("keys[%d]: duplicate key %q", i, k)
			continue
		}
		keys[k] = struct{}{}
	}

	tree := r.Shape() == compare.ShapeTree
	paths := make(map[compare.Key]struct{}, len(r.Records))
	for i, rec := range r.Records {
		prefix := fmt.Sprintf("records[%d]", i)
		if tree {
			prefix = fmt.Sprintf("%s (%s)", prefix, rec.Path)
			checkTreeRecord(&errs, prefix, rec, paths)
			if i < len(r.Keys) && r.Keys[i] != rec.Path {
				errs.add("%s: keys[%d] is %q, want the record path", prefix, i, r.Keys[i])
			}
		} else {
			checkTableRecord(&errs, prefix, i+1, rec, len(r.Keys))
		}
		for k, c := range rec.Cells {
			if _, ok := keys[k]; !ok {
				errs.add("%s: cell key %q is not in keys", prefix, k)
			}
			if !c.Status.Valid() {
				errs.add("%s: cell %q has invalid status %q", prefix, k, c.Status)
				continue
			}
			if !tree {
				checkPurity(&errs, prefix, k, c)
			}
		}
	}
	if tree && len(r.Keys) != len(r.Records) {
		errs.add("tree result has %d keys for %d records", len(r.Keys), len(r.Records))
	}

	want := compare.Summarize(r.Records)
	if r.Summary != want {
		errs.add("summary %+v does not match the recomputed %+v", r.Summary, want)
	}
	if !r.Summary.Consistent() {
		errs.add("summary is inconsistent: total=%d matching=%d differing=%d changed=%d removed=%d targetOnly=%d",
			r.Summary.Total, r.Summary.Matching, r.Summary.Differing,
			r.Summary.Changed, r.Summary.Removed, r.Summary.TargetOnly)
	}

	return errs.err()
}

func checkTableRecord(errs *errlist, prefix string, want int, rec compare.Record, nkeys int) {
	if rec.Index != want {
		errs.add("%s: index must be %d (got %d)", prefix, want, rec.Index)
	}
	if rec.Path != "" {
		errs.add("%s: tabular records must not carry a path (got %q)", prefix, rec.Path)
	}
	if rec.Cells == nil {
		errs.add("%s: cells must be an object, got null", prefix)
	}
	if len(rec.Values) != nkeys {
		errs.add("%s: %d values for %d keys", prefix, len(rec.Values), nkeys)
	}
}

func checkTreeRecord(errs *errlist, prefix string, rec compare.Record, seen map[compare.Key]struct{}) {
	if rec.Index != 0 {
		errs.add("%s: tree records have no index (got %d)", prefix, rec.Index)
	}
	if strings.TrimSpace(string(rec.Path)) == "" {
		errs.add("%s: path must be non-empty", prefix)
		return
	}
	if _, dup := seen[rec.Path]; dup {
		errs.add("%s: duplicate path", prefix)
	}
	seen[rec.Path] = struct{}{}
	if _, ok := rec.Cells[rec.Path]; !ok || len(rec.Cells) != 1 {
		errs.add("%s: must hold exactly one cell keyed by its path (got %d cells)", prefix, len(rec.Cells))
	}
}

// checkPurity verifies that a derived status is the one Classify would give.
func checkPurity(errs *errlist, prefix string, k compare.Key, c compare.Cell) {
	got, ok := compare.Classify(c.Source, c.Target)
	if !ok {
		errs.add("%s: cell %q has no value on either side", prefix, k)
		return
	}
	if got != c.Status {
		errs.add("%s: cell %q is %s but its values classify as %s", prefix, k, c.Status, got)
	}
}

// errlist aggregates multiple validation issues into a single error.
type errlist struct {
	msgs []string
}

func (e *errlist) add(format string, args ...any) {
	if e == nil {
		return
	}
	e.msgs = append(e.msgs, fmt.Sprintf(format, args...))
}

func (e *errlist) err() error {
	if e == nil || len(e.msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(e.msgs, "\n"))
}
