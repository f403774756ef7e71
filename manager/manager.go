package manager

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/analysis"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/metrics"
	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"
)

type ManagerConfig struct {
	Workers  int
	Parallel bool

	// Metrics may be nil
	Metrics *metrics.Metrics
}

type Manager struct {
	config ManagerConfig
}

// Result of one sample, Err is nil when its outputs were written
type Result struct {
	Job     *Job
	Summary analysis.Summary
	Status  *TaskStatus
	Err     error
}

func (r Result) EventsPerSecond() float64 {
	seconds := r.Status.Elapsed().Seconds()
	if seconds == 0 {
		return 0
	}
	return float64(r.Summary.Processed) / seconds
}

func New(config ManagerConfig) *Manager {
	return &Manager{config: config}
}

func (m *Manager) workers(jobs int) int {
	n := 1
	if m.config.Parallel {
		n = max(m.config.Workers, 1)
	}
	return max(min(n, jobs), 1)
}

// Run processes every job, largest inputs first. A failing sample never stops the others,
// the returned error is only set when ctx was cancelled.
// Results keep the order of jobs.
func (m *Manager) Run(ctx context.Context, jobs []*Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	sizes := make([]int64, len(jobs))
	order := make([]int, len(jobs))
	for i, job := range jobs {
		results[i] = Result{Job: job, Status: &TaskStatus{}}
		sizes[i] = job.Size()
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(sizes[b], sizes[a])
	})

	started := time.Now()
	queue := make(chan int)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(queue)
		for _, idx := range order {
			select {
			case queue <- idx:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	workers := m.workers(len(jobs))
	for range workers {
		g.Go(func() error {
			for idx := range queue {
				m.process(gctx, &results[idx])
			}
			return nil
		})
	}

	waitErr := g.Wait()

	for i := range results {
		if results[i].Status.State() == Pending {
			results[i].Err = fmt.Errorf("sample %s not started: %w", results[i].Job.Name, context.Cause(gctx))
		}
	}

	failed := 0
	var processed int
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
		processed += r.Summary.Processed
	}

	slog.Info("run finished",
		"samples", len(jobs),
		"failed", failed,
		"workers", workers,
		"events", processed,
		"elapsed", time.Since(started).String(),
	)

	if waitErr != nil {
		return results, waitErr
	}
	return results, ctx.Err()
}

func (m *Manager) process(ctx context.Context, r *Result) {
	job := r.Job
	status := r.Status

	if m.config.Metrics != nil {
		m.config.Metrics.SampleStarted()
	}

	status.start()
	slog.Info("sample started", "sample", job.Name, "analysis", job.Analysis, "inputs", len(job.Inputs))

	r.Summary, r.Err = job.Run(ctx, func(done, total int) {
		status.EventsTotal.Store(int64(total))
		status.EventsProcessed.Store(int64(done))
	})
	status.EventsProcessed.Store(int64(r.Summary.Processed))
	status.finish(r.Err)

	if m.config.Metrics != nil {
		m.config.Metrics.SampleFinished(job.Name, job.Analysis, r.Summary.Processed, r.Summary.Selected, status.Elapsed(), r.Err)
	}

	if r.Err != nil {
		slog.Error("sample failed", "sample", job.Name, "err", r.Err)
		color.Red("sample %s failed: %s", job.Name, r.Err.Error())
		return
	}

	slog.Info("sample finished",
		"sample", job.Name,
		"processed", r.Summary.Processed,
		"selected", r.Summary.Selected,
		"elapsed", status.Elapsed().String(),
		"events_per_second", fmt.Sprintf("%.1f", r.EventsPerSecond()),
	)
	color.Green("sample %s done: %d/%d events selected", job.Name, r.Summary.Selected, r.Summary.Processed)
}
