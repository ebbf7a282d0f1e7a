package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/stylebox/api/schemas"
	"github.com/xkilldash9x/stylebox/internal/dom"
	"github.com/xkilldash9x/stylebox/internal/fonts"
	"github.com/xkilldash9x/stylebox/internal/property"
	"github.com/xkilldash9x/stylebox/internal/render"
	"github.com/xkilldash9x/stylebox/internal/stylesheet"
)

// Markup formats accepted by a Job.
const (
	FormatRML  = "rml"
	FormatHTML = "html"
)

// Sheet is a named style sheet source.
type Sheet struct {
	Name string
	CSS  string
}

// Job is one document to lay out.
type Job struct {
	Name     string
	Format   string
	Markup   string
	Sheets   []Sheet
	Width    float64
	Height   float64
	Document *dom.Document // when set, Markup and Format are ignored
}

// Result is the outcome of a Job.
type Result struct {
	Job         Job
	Context     *Context
	Report      schemas.BoxReport
	Diagnostics []stylesheet.Diagnostic
	Err         error
}

// Batch lays out independent documents concurrently over one sealed registry.
type Batch struct {
	registry    *property.Registry
	fonts       fonts.Provider
	logger      *zap.Logger
	concurrency int
	opts        []Option

	stateLock sync.Mutex
	isRunning bool
}

// NewBatch validates its dependencies. A concurrency below one runs jobs
// sequentially.
func NewBatch(reg *property.Registry, fp fonts.Provider, concurrency int, logger *zap.Logger, opts ...Option) (*Batch, error) {
	if reg == nil {
		return nil, errors.New("registry cannot be nil")
	}
	if !reg.Sealed() {
		return nil, ErrRegistryNotSealed
	}
	if fp == nil {
		return nil, errors.New("font provider cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Batch{
		registry:    reg,
		fonts:       fp,
		logger:      logger.With(zap.String("component", "batch")),
		concurrency: concurrency,
		opts:        opts,
	}, nil
}

// Run lays out every job and returns results in job order. A failing job is
// reported in its Result and does not stop the others; only cancellation of
// ctx aborts the run.
func (b *Batch) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	b.stateLock.Lock()
	if b.isRunning {
		b.stateLock.Unlock()
		return nil, errors.New("batch is already running")
	}
	b.isRunning = true
	b.stateLock.Unlock()
	defer func() {
		b.stateLock.Lock()
		b.isRunning = false
		b.stateLock.Unlock()
	}()

	results := make([]Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	b.logger.Info("Starting batch.", zap.Int("jobs", len(jobs)), zap.Int("concurrency", b.concurrency))
	for i := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = b.runJob(jobs[i])
			if results[i].Err != nil {
				b.logger.Warn("Job failed.", zap.String("job", jobs[i].Name), zap.Error(results[i].Err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("batch aborted: %w", err)
	}
	b.logger.Info("Batch complete.", zap.Int("jobs", len(jobs)))
	return results, nil
}

func (b *Batch) runJob(job Job) Result {
	res := Result{Job: job}

	doc := job.Document
	if doc == nil {
		var err error
		if doc, err = ParseMarkup(job.Format, job.Markup); err != nil {
			res.Err = err
			return res
		}
	}

	opts := make([]Option, 0, len(b.opts)+2)
	opts = append(opts, b.opts...)
	opts = append(opts, WithLogger(b.logger))
	if job.Width > 0 && job.Height > 0 {
		opts = append(opts, WithViewport(job.Width, job.Height))
	}
	c, err := NewContext(job.Name, b.registry, b.fonts, opts...)
	if err != nil {
		res.Err = err
		return res
	}
	for _, s := range job.Sheets {
		c.AddStyleSheet(stylesheet.Parse(s.Name, s.CSS, b.registry, c.logger))
	}
	c.SetDocument(doc)
	res.Context = c

	rec := render.NewRecorder()
	c.Render(rec)
	res.Report = rec.Report(c.ID(), job.Name, c.Dimensions())
	res.Diagnostics = c.Diagnostics()
	return res
}

// ParseMarkup builds a document from RML or HTML text. An empty format is
// sniffed from the first tag.
func ParseMarkup(format, markup string) (*dom.Document, error) {
	if format == "" {
		format = FormatRML
		head := strings.ToLower(strings.TrimSpace(markup))
		if strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html") {
			format = FormatHTML
		}
	}
	switch strings.ToLower(format) {
	case FormatRML:
		return dom.ParseRML(strings.NewReader(markup))
	case FormatHTML:
		return dom.ParseHTML(strings.NewReader(markup))
	}
	return nil, fmt.Errorf("unknown markup format %q", format)
}
