package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stylebox/api/schemas"
	"github.com/xkilldash9x/stylebox/internal/config"
	"github.com/xkilldash9x/stylebox/internal/dom"
	"github.com/xkilldash9x/stylebox/internal/engine"
	"github.com/xkilldash9x/stylebox/internal/fonts"
	"github.com/xkilldash9x/stylebox/internal/observability"
	"github.com/xkilldash9x/stylebox/internal/property"
	"github.com/xkilldash9x/stylebox/internal/render"
)

type layoutOptions struct {
	sheets      []string
	width       float64
	height      float64
	selectExpr  string
	concurrency int
	format      string
	output      string
}

func newLayoutCmd() *cobra.Command {
	opts := &layoutOptions{}
	cmd := &cobra.Command{
		Use:   "layout [documents...]",
		Short: "Lay out documents and print the resulting boxes",
		Long: `Lay out one or more RML or HTML documents against the given style sheets
and print a box report per document. Documents are processed concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(cmd, opts, args)
		},
	}
	cmd.Flags().StringSliceVar(&opts.sheets, "css", nil, "style sheet to apply (repeatable)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "viewport width (default engine.viewport_width)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "viewport height (default engine.viewport_height)")
	cmd.Flags().StringVar(&opts.selectExpr, "select", "", "only report elements matching this XPath expression")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "documents laid out at once (default engine.batch_concurrency)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: json or text (default output.format)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the report to a file instead of stdout")
	return cmd
}

func runLayout(cmd *cobra.Command, opts *layoutOptions, args []string) error {
	cfg := configFrom(cmd)
	if opts.width > 0 || opts.height > 0 {
		w, h := cfg.Engine().ViewportWidth, cfg.Engine().ViewportHeight
		if opts.width > 0 {
			w = opts.width
		}
		if opts.height > 0 {
			h = opts.height
		}
		cfg.SetViewport(w, h)
	}
	if opts.concurrency > 0 {
		cfg.SetBatchConcurrency(opts.concurrency)
	}
	if opts.format != "" {
		cfg.SetOutputFormat(opts.format)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Output().Format == config.OutputSARIF {
		return fmt.Errorf("sarif output is only available for lint")
	}
	logger := observability.GetLogger().Named("layout")

	var sheets []engine.Sheet
	for _, path := range opts.sheets {
		src, err := readFile(path)
		if err != nil {
			return err
		}
		sheets = append(sheets, engine.Sheet{Name: filepath.Base(path), CSS: string(src)})
	}

	jobs := make([]engine.Job, 0, len(args))
	for _, path := range args {
		src, err := readFile(path)
		if err != nil {
			return err
		}
		doc, err := engine.ParseMarkup(formatOf(path), string(src))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		jobs = append(jobs, engine.Job{
			Name:     path,
			Sheets:   sheets,
			Width:    cfg.Engine().ViewportWidth,
			Height:   cfg.Engine().ViewportHeight,
			Document: doc,
		})
	}

	batch, err := engine.NewBatch(property.NewDefaultRegistry(), newFontProvider(cfg.Fonts()),
		cfg.Engine().BatchConcurrency, logger, contextOptions(cfg)...)
	if err != nil {
		return err
	}
	results, err := batch.Run(cmd.Context(), jobs)
	if err != nil {
		return err
	}

	var failed []error
	reports := make([]schemas.BoxReport, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", res.Job.Name, res.Err))
			continue
		}
		for _, d := range res.Diagnostics {
			logger.Warn("Style sheet diagnostic.", zap.String("document", res.Job.Name), zap.Error(d))
		}
		rep := res.Report
		if opts.selectExpr != "" {
			if rep, err = selectReport(res, opts.selectExpr); err != nil {
				return err
			}
		}
		reports = append(reports, rep)
	}

	out := cmd.OutOrStdout()
	if opts.output != "" {
		path, err := homedir.Expand(opts.output)
		if err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := writeReports(out, reports, cfg.Output()); err != nil {
		return err
	}
	return errors.Join(failed...)
}

// selectReport re-renders the result's context keeping only the elements
// matched by expr.
func selectReport(res engine.Result, expr string) (schemas.BoxReport, error) {
	nodes, err := res.Context.Document().QueryXPath(expr)
	if err != nil {
		return schemas.BoxReport{}, err
	}
	keep := make(map[*dom.Node]bool, len(nodes))
	for _, n := range nodes {
		keep[n] = true
	}
	rec := render.NewRecorder()
	res.Context.Render(render.BridgeFunc(func(it render.Item) {
		if keep[it.Node] {
			rec.Publish(it)
		}
	}))
	return rec.Report(res.Context.ID(), res.Job.Name, res.Context.Dimensions()), nil
}

func writeReports(w io.Writer, reports []schemas.BoxReport, out config.OutputConfig) error {
	if out.Format == config.OutputText {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, rep := range reports {
			fmt.Fprintf(tw, "# %s (%gx%g)\n", rep.Document, rep.Viewport.Width, rep.Viewport.Height)
			for _, el := range rep.Elements {
				name := el.Path
				if el.Text {
					name = strings.Repeat("  ", el.Depth) + "#text"
				}
				fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%g\n", name, el.Rect.X, el.Rect.Y, el.Rect.Width, el.Rect.Height)
			}
		}
		return tw.Flush()
	}
	if len(reports) == 1 {
		return render.WriteJSON(w, reports[0], out.Pretty)
	}
	return render.WriteJSON(w, reports, out.Pretty)
}

func contextOptions(cfg config.Interface) []engine.Option {
	return []engine.Option{
		engine.WithDensityRatio(cfg.Engine().DensityRatio),
		engine.WithUserAgentSheet(cfg.Engine().UserAgentSheet),
	}
}

func newFontProvider(cfg config.FontsConfig) fonts.Provider {
	if cfg.Face == config.FaceBasic {
		return fonts.NewFaceProvider()
	}
	return &fonts.Estimator{
		AdvanceRatio:    cfg.AdvanceRatio,
		AscentRatio:     cfg.AscentRatio,
		LineHeightRatio: cfg.LineHeightRatio,
	}
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return engine.FormatHTML
	case ".rml", ".xml":
		return engine.FormatRML
	}
	return ""
}

func readFile(path string) ([]byte, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
