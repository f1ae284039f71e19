// Package diff renders a comparison result as a classic unified patch
// (---/+++ headers, @@ hunks, lines prefixed with ' ', '-', '+') using
// github.com/pmezard/go-difflib/difflib.
//
// Each side of the result is rendered one cell per line in canonical order,
// so the patch reads as "what the source had" against "what the target has".
package diff

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"

	"filediff/internal/compare"
	"filediff/internal/textutil"
)

// DefaultContext is the number of context lines used when Options.Context
// is negative.
const DefaultContext = 3

// Options controls patch generation behavior.
type Options struct {
	// MaxBytes is a guardrail on input size (old+new). When exceeded,
	// a minimal placeholder patch is returned and oversize=true.
	// 0 means "no limit".
	MaxBytes int

	// Context controls the number of context lines in unified hunks.
	// 0 means no context; negative values use DefaultContext.
	Context int

	// NoPrefix controls whether FromFile/ToFile are prefixed with "a/" and "b/".
	NoPrefix bool

	// SourceName and TargetName label the two sides; they default to
	// "source" and "target".
	SourceName string
	TargetName string
}

// Patch renders r as a unified patch. It returns "" when both sides render
// identically. oversize reports that MaxBytes was exceeded and a
// placeholder was returned instead.
func Patch(r *compare.Result, opt Options) (body string, oversize bool) {
	if r == nil {
		return "", false
	}
	a, b := Sides(r)
	if a == b {
		return "", false
	}
	aName, bName := names(opt)
	return Unified(aName, bName, []byte(a), []byte(b), opt)
}

// Sides renders the source and target side of r, one present value per line.
// Tabular lines are "[row N] key = value"; tree lines are "path = value".
func Sides(r *compare.Result) (source, target string) {
	var sa, sb strings.Builder
	tree := r.Shape() == compare.ShapeTree
	for _, rec := range r.Records {
		for _, k := range r.Keys {
			c, ok := rec.Cells[k]
			if !ok {
				continue
			}
			label := string(k)
			if !tree {
				label = fmt.Sprintf("[row %d] %s", rec.Index, k)
			}
			if c.Source.Present() {
				writeLine(&sa, label, c.Source)
			}
			if c.Target.Present() {
				writeLine(&sb, label, c.Target)
			}
		}
	}
	return sa.String(), sb.String()
}

func writeLine(sb *strings.Builder, label string, v compare.Value) {
	sb.WriteString(label)
	sb.WriteString(" = ")
	sb.WriteString(textutil.SingleLine(v.Text()))
	sb.WriteByte('\n')
}

func names(opt Options) (string, string) {
	a, b := opt.SourceName, opt.TargetName
	if a == "" {
		a = "source"
	}
	if b == "" {
		b = "target"
	}
	if !opt.NoPrefix {
		a, b = "a/"+a, "b/"+b
	}
	return a, b
}

// Unified produces a classic unified patch for a↦b.
// Returns the patch body and a flag indicating it was omitted due to size.
func Unified(aName, bName string, a, b []byte, opt Options) (body string, oversize bool) {
	if opt.MaxBytes > 0 && (len(a)+len(b)) > opt.MaxBytes {
		return omitted(aName, bName), true
	}

	ctx := opt.Context
	if ctx < 0 {
		ctx = DefaultContext
	}

	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(a)),
		B:        splitLinesKeepNL(string(b)),
		FromFile: aName,
		ToFile:   bName,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil || s == "" {
		return omitted(aName, bName), false
	}
	return s, false
}

// splitLinesKeepNL splits into lines and keeps newline characters,
// which produces better unified hunks.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// omitted returns a compact placeholder when size limits are exceeded.
func omitted(aName, bName string) string {
	return fmt.Sprintf("--- %s\n+++ %s\n@@\n# diff omitted (oversize)\n", aName, bName)
}
