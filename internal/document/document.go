// Package document loads parsed documents and pre-paired payloads from disk.
//
// The format-specific parsers (CSV, XLSX, XML) run elsewhere and hand over
// their output as an envelope in JSON or YAML:
//
//	{"file": "orders.csv", "columns": ["id", "qty"], "rows": [{"id": "1", "qty": 3}]}
//
// The file kind comes from "fileType" when present, otherwise from the
// extension of "file", otherwise from the envelope's own name with the
// encoding extension removed ("orders.csv.json" is a csv document).
package document

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"filediff/internal/compare"
)

// ErrUnsupportedEncoding is returned for envelopes that are neither JSON nor YAML.
var ErrUnsupportedEncoding = errors.New("unsupported envelope encoding (want .json, .yaml or .yml)")

// Envelope is the on-disk form of one parsed document.
type Envelope struct {
	File             string `json:"file,omitempty" yaml:"file,omitempty"`
	FileType         string `json:"fileType,omitempty" yaml:"fileType,omitempty"`
	compare.Document `yaml:",inline"`
}

// File is a loaded document with its resolved kind.
type File struct {
	Path     string
	Name     string
	Kind     compare.Kind
	Document compare.Document
}

// Pair is a loaded source/target pair of the same kind.
type Pair struct {
	Kind   compare.Kind
	Source *File
	Target *File
}

// Loader reads envelopes and payloads. Kind, when set, overrides the kind
// recorded in the files.
type Loader struct {
	logger *zap.Logger
	kind   compare.Kind
}

// NewLoader returns a Loader. A nil logger is replaced by a no-op one.
func NewLoader(logger *zap.Logger, kind compare.Kind) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger, kind: kind}
}

// Load reads one parsed-document envelope.
func (l *Loader) Load(path string) (*File, error) {
	var env Envelope
	if err := decodeFile(path, &env); err != nil {
		return nil, err
	}
	name := env.File
	if name == "" {
		name = bareName(path)
	}
	kind, err := l.resolve(env.FileType, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.logger.Debug("loaded document",
		zap.String("path", path),
		zap.String("file", name),
		zap.String("kind", string(kind)),
		zap.Int("columns", len(env.Columns)),
		zap.Int("rows", len(env.Rows)))
	return &File{Path: path, Name: name, Kind: kind, Document: env.Document}, nil
}

// LoadPayload reads a pre-paired payload.
func (l *Loader) LoadPayload(path string) (*compare.Payload, error) {
	var p compare.Payload
	if err := decodeFile(path, &p); err != nil {
		return nil, err
	}
	kind, err := l.resolve(string(p.Kind), bareName(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.Kind = kind
	l.logger.Debug("loaded payload",
		zap.String("path", path),
		zap.String("kind", string(kind)),
		zap.Int("rows", len(p.Rows)),
		zap.Bool("hasSummary", p.Summary != nil))
	return &p, nil
}

// LoadPair loads source and target concurrently and enforces that both are
// of the same kind.
func (l *Loader) LoadPair(ctx context.Context, source, target string) (*Pair, error) {
	var pair Pair
	g, ctx := errgroup.WithContext(ctx)
	load := func(path string, dst **File) func() error {
		return func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := l.Load(path)
			if err != nil {
				return err
			}
			*dst = f
			return nil
		}
	}
	g.Go(load(source, &pair.Source))
	g.Go(load(target, &pair.Target))
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := compare.CheckSameKind(pair.Source.Kind, pair.Target.Kind); err != nil {
		return nil, err
	}
	pair.Kind = pair.Source.Kind
	return &pair, nil
}

func (l *Loader) resolve(fileType, name string) (compare.Kind, error) {
	if l.kind != "" {
		return compare.ParseKind(string(l.kind))
	}
	if fileType != "" {
		return compare.ParseKind(fileType)
	}
	return compare.KindFromFilename(name)
}

func decodeFile(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.NewDecoder(bytes.NewReader(b)).Decode(v); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, v); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%s: %w", path, ErrUnsupportedEncoding)
	}
	return nil
}

// bareName strips the directory and the encoding extension:
// "in/orders.csv.json" -> "orders.csv".
func bareName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
