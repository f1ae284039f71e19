package report

import (
	"bytes"
	"strings"
	"text/template"

	"filediff/internal/compare"
)

// ReadmeOptions configures the bundle README. All fields are rendered
// deterministically; no timestamps or environment data.
type ReadmeOptions struct {
	Title        string
	SourceName   string
	TargetName   string
	ContextLines int

	// Filled in by WriteBundle.
	Kind      compare.Kind
	Mode      string
	HasPatch  bool
	PatchName string
}

type rdCtx struct {
	ReadmeOptions
	Shape string
}

const readmeTemplate = `
# {{.Title}}

This archive is a **comparison report** produced by *filediff* for a pair of **{{.Kind}}** files.

- Source: **{{.SourceName}}**
- Target: **{{.TargetName}}**
- Record identity: **{{.Shape}}**{{if eq .Shape "tabular"}} (1-based row position){{else}} (structural path){{end}}

## Layout
- **result.json** — the full result: ` + "`fileType`, `keys`, `records`, `summary`" + `. Same content as the JSON download.
- **summary.json** — the aggregate counters only.
- **view.json** — the view at the time of export (mode **{{.Mode}}**) with its index map (view position → original position).
{{- if .HasPatch}}
- **{{.PatchName}}** — unified diff of source vs target, one cell per line, **{{.ContextLines}}** context lines.
{{- end}}

## Statuses
- **match** — both sides present and equal.
- **different** — both sides present, values differ.
- **source_only** — present in the source only (counted as *removed*).
- **target_only** — present in the target only.

Null counts as absent. Values are compared exactly; "1.50" and "1.5" differ and no string/number coercion is applied.

## Conventions
- Encoding: **UTF-8**; newlines: **\n** only.
- totalUnits = matchingUnits + differingUnits; differingUnits = changedCount + removedCount + targetOnlyCount.
- Consumers should ignore unknown fields for forward compatibility.
`

// GenerateReadme renders the bundle README.
func GenerateReadme(opts ReadmeOptions) []byte {
	if strings.TrimSpace(opts.Title) == "" {
		opts.Title = "filediff report"
	}
	if opts.SourceName == "" {
		opts.SourceName = "source"
	}
	if opts.TargetName == "" {
		opts.TargetName = "target"
	}
	if opts.Mode == "" {
		opts.Mode = compare.ModeAll.String()
	}
	if opts.PatchName == "" {
		opts.PatchName = "diff.patch"
	}
	ctx := rdCtx{ReadmeOptions: opts, Shape: opts.Kind.Shape().String()}

	t := template.Must(template.New("readme").Parse(readmeTemplate))
	var buf bytes.Buffer
	_ = t.Execute(&buf, ctx)
	// Normalize lines: strip trailing spaces; templates use \n already.
	lines := strings.Split(strings.TrimLeft(buf.String(), "\n"), "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " \t")
	}
	out := strings.Join(lines, "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return []byte(out)
}
