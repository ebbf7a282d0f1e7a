package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/stylebox/api/schemas"
	"github.com/xkilldash9x/stylebox/internal/config"
	"github.com/xkilldash9x/stylebox/internal/observability"
	"github.com/xkilldash9x/stylebox/internal/parser"
	"github.com/xkilldash9x/stylebox/internal/property"
	"github.com/xkilldash9x/stylebox/internal/reporting"
	"github.com/xkilldash9x/stylebox/internal/stylesheet"
)

// ErrLintFailed wraps the diagnostics returned by the lint command.
var ErrLintFailed = errors.New("style sheets have diagnostics")

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func newLintCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "lint [sheets...]",
		Short: "Report every rule and declaration a style sheet would drop",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			if format != "" {
				cfg.SetOutputFormat(format)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runLint(cmd.OutOrStdout(), cfg.Output(), args)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, text or sarif (default output.format)")
	return cmd
}

func runLint(w io.Writer, out config.OutputConfig, paths []string) error {
	reg := property.NewDefaultRegistry()
	logger := observability.GetLogger().Named("lint")

	var results []schemas.SheetDiagnostics
	var errs []error
	for _, path := range paths {
		src, err := readFile(path)
		if err != nil {
			return err
		}
		sheet := stylesheet.Parse(filepath.Base(path), string(src), reg, logger)
		sd := schemas.SheetDiagnostics{Name: path, Rules: sheet.Len()}
		for _, d := range sheet.Diagnostics {
			sd.Diagnostics = append(sd.Diagnostics, schemas.Diagnostic{
				Line:    d.Line,
				Kind:    diagnosticKind(d),
				Message: d.Err.Error(),
			})
			errs = append(errs, fmt.Errorf("%s:%d: %w", path, d.Line, d.Err))
		}
		results = append(results, sd)
	}

	if out.Format == config.OutputText {
		for _, sd := range results {
			for _, d := range sd.Diagnostics {
				fmt.Fprintf(w, "%s:%d: %s: %s\n", sd.Name, d.Line, d.Kind, d.Message)
			}
		}
		fmt.Fprintf(w, "%d diagnostics in %d sheets\n", len(errs), len(results))
	} else {
		rep, err := reporting.NewWithWriter(out.Format, nopCloser{w}, logger)
		if err != nil {
			return err
		}
		for _, sd := range results {
			if err := rep.Write(sd); err != nil {
				return err
			}
		}
		if err := rep.Close(); err != nil {
			return err
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrLintFailed, errors.Join(errs...))
	}
	return nil
}

func diagnosticKind(d stylesheet.Diagnostic) string {
	var se *parser.SyntaxError
	switch {
	case errors.Is(d, property.ErrUnknownProperty):
		return "unknown-property"
	case errors.Is(d, property.ErrInvalidValue):
		return "invalid-value"
	case errors.As(d, &se):
		return "syntax"
	}
	return "error"
}
