// Package render prints comparison summaries and views to a terminal.
package render

import (
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"filediff/internal/compare"
	"filediff/internal/textutil"
)

// Options controls terminal output.
type Options struct {
	Color bool
	// MaxRows limits the rows of a view; 0 prints all of them.
	MaxRows int
}

type palette struct {
	match, different, sourceOnly, targetOnly, title func(a ...any) string
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		match:      mk(color.FgHiGreen),
		different:  mk(color.FgHiRed),
		sourceOnly: mk(color.FgHiMagenta),
		targetOnly: mk(color.FgHiYellow),
		title:      mk(color.FgHiBlue, color.Bold),
	}
}

func (p palette) status(st compare.Status) func(a ...any) string {
	switch st {
	case compare.StatusDifferent:
		return p.different
	case compare.StatusSourceOnly:
		return p.sourceOnly
	case compare.StatusTargetOnly:
		return p.targetOnly
	}
	return p.match
}

var nsPrefix = regexp.MustCompile(`\{[^{}]*\}`)

// CleanPath strips "{namespace}" qualifiers from a tree path for display.
func CleanPath(k compare.Key) string {
	return nsPrefix.ReplaceAllString(string(k), "")
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetBorder(true)
	return t
}

// Summary prints the aggregate counters of s.
func Summary(w io.Writer, kind compare.Kind, s compare.Summary, opts Options) {
	p := newPalette(opts.Color)
	unit := "cells"
	if kind.Shape() == compare.ShapeTree {
		unit = "nodes"
	}
	fmt.Fprintln(w, p.title(fmt.Sprintf("Comparison summary (%s, %s)", kind, unit)))

	t := newTable(w, []string{"Metric", "Count"})
	t.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	t.Append([]string{"Total " + unit, strconv.Itoa(s.Total)})
	t.Append([]string{p.match("Matching"), strconv.Itoa(s.Matching)})
	t.Append([]string{p.different("Differing"), strconv.Itoa(s.Differing)})
	t.Append([]string{"  changed", strconv.Itoa(s.Changed)})
	t.Append([]string{"  removed (source only)", strconv.Itoa(s.Removed)})
	t.Append([]string{"  added (target only)", strconv.Itoa(s.TargetOnly)})
	t.Render()
}

// View prints the rows of v. Tabular results get one column per key;
// tree results get one line per path.
func View(w io.Writer, r *compare.Result, v compare.View, opts Options) {
	p := newPalette(opts.Color)
	fmt.Fprintln(w, p.title(fmt.Sprintf("Records (%s, %d of %d)", v.Mode, v.Len(), r.Len())))

	n := v.Len()
	if opts.MaxRows > 0 && n > opts.MaxRows {
		n = opts.MaxRows
	}
	if r.Shape() == compare.ShapeTree {
		treeView(w, p, v, n)
	} else {
		tableView(w, p, r.Keys, v, n)
	}
	if rest := v.Len() - n; rest > 0 {
		fmt.Fprintf(w, "(%d more rows not shown)\n", rest)
	}
}

func tableView(w io.Writer, p palette, keys []compare.Key, v compare.View, n int) {
	header := make([]string, 0, len(keys)+2)
	header = append(header, "#", "Row")
	for _, k := range keys {
		header = append(header, string(k))
	}
	t := newTable(w, header)
	for pos := 1; pos <= n; pos++ {
		rec, ok := v.Record(pos)
		if !ok {
			break
		}
		line := make([]string, 0, len(header))
		line = append(line, strconv.Itoa(pos), strconv.Itoa(rec.Index))
		for _, k := range keys {
			c, ok := rec.Cells[k]
			if !ok {
				line = append(line, "")
				continue
			}
			line = append(line, p.status(c.Status)(textutil.SingleLine(cellText(c))))
		}
		t.Append(line)
	}
	t.Render()
}

func treeView(w io.Writer, p palette, v compare.View, n int) {
	t := newTable(w, []string{"#", "Path", "Source", "Target", "Status"})
	for pos := 1; pos <= n; pos++ {
		rec, ok := v.Record(pos)
		if !ok {
			break
		}
		c := rec.Cells[rec.Path]
		paint := p.status(c.Status)
		t.Append([]string{
			strconv.Itoa(pos),
			CleanPath(rec.Path),
			textutil.SingleLine(c.Source.Text()),
			textutil.SingleLine(c.Target.Text()),
			paint(string(c.Status)),
		})
	}
	t.Render()
}

// cellText renders one tabular cell: the shared value for a match, both
// sides for a change, and the present side otherwise.
func cellText(c compare.Cell) string {
	switch c.Status {
	case compare.StatusDifferent:
		return c.Source.Text() + " -> " + c.Target.Text()
	case compare.StatusSourceOnly:
		return "-" + c.Source.Text()
	case compare.StatusTargetOnly:
		return "+" + c.Target.Text()
	}
	return c.Source.Text()
}
