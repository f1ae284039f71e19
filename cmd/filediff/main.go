// Package main provides the filediff CLI. It compares two parsed documents
// (or reconciles a pre-paired payload), prints a summary and the current
// view, and optionally writes the JSON download, a unified patch and a
// ZIP report bundle.
//
// Commands:
//   - filediff compare <source> <target>   two parsed-document envelopes
//   - filediff reconcile <payload>         a pre-paired payload
//   - filediff summarize <result.json>     print the summary of a download
//   - filediff filter <result.json>        print (or write) a view of a download
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"filediff/internal/compare"
	"filediff/internal/config"
	"filediff/internal/diff"
	"filediff/internal/document"
	applog "filediff/internal/log"
	"filediff/internal/render"
	"filediff/internal/report"
	"filediff/internal/validate"
)

// app carries what every command needs once flags are parsed.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *zap.Logger
	stdout io.Writer
	now    func() time.Time
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{v: viper.New(), stdout: os.Stdout, now: time.Now}
	err := newRootCmd(a).ExecuteContext(ctx)
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err != nil {
		if a.logger != nil {
			applog.LogError(a.logger, err, "filediff failed")
		} else {
			fmt.Fprintln(os.Stderr, "filediff:", err)
		}
	}
	if code := exitCode(err); code != 0 {
		os.Exit(code)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "filediff",
		Short:         "Compare two parsed csv, xlsx or xml documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	config.AddPersistentFlags(root.PersistentFlags(), config.Default())
	root.AddCommand(
		newCompareCmd(a),
		newReconcileCmd(a),
		newSummarizeCmd(a),
		newFilterCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.logger == nil {
		logger, err := applog.New(applog.Options{Debug: cfg.Debug, Color: cfg.Color})
		if err != nil {
			return err
		}
		a.logger = logger
	}
	if used := config.ConfigFileUsed(a.v); used != "" {
		a.logger.Debug("config file loaded", zap.String("path", used))
	}
	a.logger.Debug("config has been initialised", zap.String("cmd", cmd.Name()), zap.Any("config", cfg))
	return nil
}

func (a *app) kindOverride() (compare.Kind, error) {
	if a.cfg.Kind == "" {
		return "", nil
	}
	return compare.ParseKind(a.cfg.Kind)
}

func newCompareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <source> <target>",
		Short: "Compare two parsed-document envelopes (.json, .yaml)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := a.kindOverride()
			if err != nil {
				return err
			}
			pair, err := document.NewLoader(a.logger, kind).LoadPair(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			res, err := compare.Compare(pair.Kind, pair.Source.Document, pair.Target.Document)
			if err != nil {
				return err
			}
			a.logger.Info("compared",
				zap.String("source", pair.Source.Name),
				zap.String("target", pair.Target.Name),
				zap.String("kind", string(res.Kind)),
				zap.Int("records", res.Len()))
			return a.emit(res, pair.Source.Name, pair.Target.Name)
		},
	}
	config.AddCompareFlags(cmd.Flags(), config.Default())
	return cmd
}

func newReconcileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile <payload>",
		Short: "Reconcile a pre-paired comparison payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := a.kindOverride()
			if err != nil {
				return err
			}
			p, err := document.NewLoader(a.logger, kind).LoadPayload(args[0])
			if err != nil {
				return err
			}
			res, err := compare.FromPayload(*p)
			if err != nil {
				return err
			}
			if p.Summary != nil && *p.Summary != res.Summary {
				a.logger.Warn("supplied summary disagrees with the recomputed one; using the recomputed summary",
					zap.Any("supplied", *p.Summary),
					zap.Any("recomputed", res.Summary))
			}
			return a.emit(res, "", "")
		},
	}
	config.AddCompareFlags(cmd.Flags(), config.Default())
	return cmd
}

func newSummarizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <result.json>",
		Short: "Print the summary of a saved comparison",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			res, err := report.LoadResult(args[0])
			if err != nil {
				return err
			}
			if err := validate.Result(res); err != nil {
				return fmt.Errorf("%s is not a valid result:\n%w", args[0], err)
			}
			render.Summary(a.stdout, res.Kind, res.Summary, render.Options{Color: a.cfg.Color})
			return nil
		},
	}
}

func newFilterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter <result.json>",
		Short: "Print the view of a saved comparison; --out writes the view with its index map",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			res, err := report.LoadResult(args[0])
			if err != nil {
				return err
			}
			if a.cfg.Validate {
				if err := validate.Result(res); err != nil {
					return fmt.Errorf("%s is not a valid result:\n%w", args[0], err)
				}
			}
			view := compare.NewViewer(res).Toggle(a.cfg.DifferencesOnly)
			render.View(a.stdout, res, view, render.Options{Color: a.cfg.Color, MaxRows: a.cfg.MaxRows})
			if a.cfg.Out == "" {
				return nil
			}
			if err := report.WriteJSON(a.cfg.Out, report.NewViewDoc(view)); err != nil {
				return err
			}
			a.logger.Info("view written", zap.String("path", a.cfg.Out), zap.Int("rows", view.Len()))
			return nil
		},
	}
	fs := cmd.Flags()
	def := config.Default()
	fs.BoolP("differencesOnly", "d", def.DifferencesOnly, "Show only records that contain a difference")
	fs.Bool("validate", def.Validate, "Check result invariants before filtering")
	fs.Int("maxRows", def.MaxRows, "Rows to print in the terminal view (0 = all)")
	fs.StringP("out", "o", "", "Write the view JSON to this path")
	return cmd
}

// emit validates res, prints it and writes the requested artifacts.
func (a *app) emit(res *compare.Result, sourceName, targetName string) error {
	cfg := a.cfg
	if cfg.Validate {
		if err := validate.Result(res); err != nil {
			return fmt.Errorf("result failed validation:\n%w", err)
		}
	}
	view := compare.NewViewer(res).Toggle(cfg.DifferencesOnly)
	opts := render.Options{Color: cfg.Color, MaxRows: cfg.MaxRows}
	render.Summary(a.stdout, res.Kind, res.Summary, opts)
	render.View(a.stdout, res, view, opts)

	if cfg.Out != "" {
		path := report.Destination(cfg.Out, a.now())
		if err := report.WriteJSON(path, res); err != nil {
			return err
		}
		a.logger.Info("result written", zap.String("path", path))
	}

	var patch string
	if cfg.Patch != "" || cfg.Bundle != "" {
		var oversize bool
		patch, oversize = diff.Patch(res, diff.Options{
			Context:    cfg.PatchContext,
			NoPrefix:   cfg.PatchNoPrefix,
			MaxBytes:   cfg.MaxPatchBytes,
			SourceName: sourceName,
			TargetName: targetName,
		})
		if oversize {
			a.logger.Warn("patch exceeds maxPatchBytes; a placeholder was written", zap.Int("maxPatchBytes", cfg.MaxPatchBytes))
		}
	}
	if cfg.Patch != "" {
		if patch == "" {
			a.logger.Info("no differences; patch not written", zap.String("path", cfg.Patch))
		} else if err := os.WriteFile(cfg.Patch, []byte(patch), 0o644); err != nil {
			return err
		}
	}
	if cfg.Bundle != "" {
		err := report.WriteBundle(cfg.Bundle, report.Bundle{
			Result: res,
			View:   view,
			Patch:  patch,
			Readme: report.ReadmeOptions{
				SourceName:   sourceName,
				TargetName:   targetName,
				ContextLines: cfg.PatchContext,
			},
		})
		if err != nil {
			return err
		}
		a.logger.Info("bundle written", zap.String("path", cfg.Bundle))
	}
	return nil
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}
