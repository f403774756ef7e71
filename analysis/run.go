package analysis

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/hist"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/table"
)

// DefaultMaxEvents effectively means every row
const DefaultMaxEvents = 1234567890

// MaxEvents caps the row count, then applies the sampling fraction
func MaxEvents(rows, maxEvents int, fraction float64) (int, error) {
	if rows <= 0 {
		return 0, table.ErrEmptyTable
	}
	if maxEvents < 0 {
		return 0, fmt.Errorf("negative event limit %d", maxEvents)
	}
	if fraction < 0 || fraction > 1 {
		return 0, fmt.Errorf("fraction %f out of [0, 1]", fraction)
	}

	return int(float64(min(maxEvents, rows)) * fraction), nil
}

// RunOptions zero values mean every row: MaxEvents 0 is DefaultMaxEvents and Fraction 0 is 1
type RunOptions struct {
	MaxEvents int
	// Fraction of the capped rows to process
	Fraction float64

	// Output defaults to hist.Discard
	Output hist.Sink
	Report io.Writer

	// Progress is called every ProgressEvery rows when set
	Progress      func(done, total int)
	ProgressEvery int
}

type Summary struct {
	Rows      int
	Processed int
	Selected  int
	Elapsed   time.Duration
}

// Run initializes, processes the first MaxEvents rows and finalizes.
// ctx is checked between rows only.
func (a *Analysis) Run(ctx context.Context, source table.Table, opts RunOptions) (Summary, error) {
	started := time.Now()
	summary := Summary{Rows: source.Rows()}

	maxEvents, fraction := opts.MaxEvents, opts.Fraction
	if maxEvents == 0 {
		maxEvents = DefaultMaxEvents
	}
	if fraction == 0 {
		fraction = 1
	}

	n, err := MaxEvents(source.Rows(), maxEvents, fraction)
	if err != nil {
		return summary, &SetupError{Sample: a.name, Err: err}
	}

	if err := a.DoInitialization(source); err != nil {
		return summary, err
	}

	every := opts.ProgressEvery
	if every <= 0 {
		every = 10000
	}

	for row := range n {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if _, err := a.DoAnalysis(row); err != nil {
			return summary, fmt.Errorf("unable to analyze row %d of %s: %w", row, a.name, err)
		}

		if opts.Progress != nil && (row+1)%every == 0 {
			opts.Progress(row+1, n)
		}
	}

	if err := a.DoFinalization(opts.Output, opts.Report); err != nil {
		return summary, err
	}

	summary.Processed = a.processed
	summary.Selected = a.selected
	summary.Elapsed = time.Since(started)
	return summary, nil
}
