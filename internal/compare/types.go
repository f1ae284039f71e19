// Package compare is the comparison engine: it aligns the key space of two
// parsed documents, reconciles them into per-record cells with one of four
// statuses, aggregates a summary, and derives the differences-only view.
//
// The package is pure: no logging, no I/O, no package-level state. Every
// Result is self-contained, so comparisons may run concurrently.
package compare

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnknownKind is returned when a file kind cannot be resolved.
	ErrUnknownKind = errors.New("unknown file kind")
	// ErrKindMismatch is returned when source and target are of different kinds.
	ErrKindMismatch = errors.New("files are of different types; upload files of the same format")
	// ErrNotScalar is returned when a decoded value is an object or array.
	ErrNotScalar = errors.New("value must be a scalar")
)

// Key identifies a comparable unit: a column name (tabular) or a structural
// path such as "root[1]/item[2]/@id" (tree).
type Key string

// Kind is the file format both documents share.
type Kind string

const (
	KindCSV  Kind = "csv"
	KindXLSX Kind = "xlsx"
	KindXML  Kind = "xml"
)

// Shape selects how records are identified during reconciliation.
type Shape int

const (
	// ShapeTabular identifies records by 1-based row position.
	ShapeTabular Shape = iota
	// ShapeTree identifies records by path; there is no row concept.
	ShapeTree
)

func (s Shape) String() string {
	if s == ShapeTree {
		return "tree"
	}
	return "tabular"
}

// ParseKind normalises s ("CSV", ".xlsx", "xml") into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// KindFromFilename derives the kind from the extension of an upload name.
func KindFromFilename(name string) (Kind, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnknownKind, name)
	}
	return ParseKind(ext)
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCSV, KindXLSX, KindXML:
		return true
	}
	return false
}

// Shape returns the record-identity strategy for k.
func (k Kind) Shape() Shape {
	if k == KindXML {
		return ShapeTree
	}
	return ShapeTabular
}

// CheckSameKind enforces the same-format precondition callers must check
// before invoking the engine.
func CheckSameKind(source, target Kind) error {
	if source != target {
		return fmt.Errorf("%w (source=%s, target=%s)", ErrKindMismatch, source, target)
	}
	return nil
}

// Status is the classification of one cell.
type Status string

const (
	StatusMatch      Status = "match"
	StatusDifferent  Status = "different"
	StatusSourceOnly Status = "source_only"
	StatusTargetOnly Status = "target_only"
)

// Valid reports whether s is one of the four statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusMatch, StatusDifferent, StatusSourceOnly, StatusTargetOnly:
		return true
	}
	return false
}

// Differs reports whether s is anything other than a match.
func (s Status) Differs() bool { return s.Valid() && s != StatusMatch }
