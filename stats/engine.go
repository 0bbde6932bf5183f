package stats

import (
	"context"
	"runtime"
	"strings"
	"time"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/aquasecurity/vuln-list-stats/cve"
)

type options struct {
	workers int
	since   time.Time
}

type Option func(*options)

func WithWorkers(workers int) Option {
	return func(opts *options) {
		if workers > 0 {
			opts.workers = workers
		}
	}
}

// WithPublishedSince keeps only documents published at or after since.
// Documents without a publication date are dropped while the filter is set.
func WithPublishedSince(since time.Time) Option {
	return func(opts *options) { opts.since = since }
}

type Engine struct {
	*options
}

func NewEngine(opts ...Option) Engine {
	o := &options{
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return Engine{
		options: o,
	}
}

type Result struct {
	Tables *FrequencyTables
	Errors []cve.DocumentError
}

// AddErrors appends document errors keeping them ordered by document ID.
func (r *Result) AddErrors(errs ...cve.DocumentError) {
	r.Errors = append(r.Errors, errs...)
	slices.SortStableFunc(r.Errors, func(a, b cve.DocumentError) int {
		return strings.Compare(a.ID, b.ID)
	})
}

type outcome struct {
	partial Partial
	err     *cve.DocumentError
}

// Analyze consumes docs until the channel is closed or ctx is done. Workers
// extract documents independently; a single reducer folds their partial
// results, so the tables are never shared during the parallel phase. On
// cancellation the tables of every completed document are returned along
// with the context error.
func (e Engine) Analyze(ctx context.Context, docs <-chan cve.Document) (Result, error) {
	outcomes := make(chan outcome, e.workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < e.workers; i++ {
		g.Go(func() error {
			return e.work(gctx, docs, outcomes)
		})
	}
	go func() {
		_ = g.Wait()
		close(outcomes)
	}()

	result := Result{Tables: NewFrequencyTables()}
	var errs []cve.DocumentError
	for o := range outcomes {
		switch {
		case o.err != nil:
			errs = append(errs, *o.err)
		case !e.accept(o.partial):
			result.Tables.Totals.Filtered++
		default:
			result.Tables.Absorb(o.partial)
		}
	}
	result.AddErrors(errs...)

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

// AnalyzeDocuments runs Analyze over an in-memory batch.
func (e Engine) AnalyzeDocuments(ctx context.Context, docs []cve.Document) (Result, error) {
	ch := make(chan cve.Document)
	go func() {
		defer close(ch)
		for _, doc := range docs {
			select {
			case ch <- doc:
			case <-ctx.Done():
				return
			}
		}
	}()
	return e.Analyze(ctx, ch)
}

func (e Engine) work(ctx context.Context, docs <-chan cve.Document, outcomes chan<- outcome) error {
	for {
		var doc cve.Document
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-docs:
			if !ok {
				return nil
			}
			doc = d
		}

		o := outcome{}
		p, err := Extract(doc)
		if err != nil {
			o.err = &cve.DocumentError{ID: doc.ID, Err: err}
		} else {
			o.partial = p
		}

		select {
		case outcomes <- o:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (e Engine) accept(p Partial) bool {
	if e.since.IsZero() {
		return true
	}
	return !p.Published.IsZero() && !p.Published.Before(e.since)
}
