package manager

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/analyses"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/analysis"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/arrowtable"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/compression"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/hist"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/table"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/tuple"
	"github.com/fatih/color"
)

var (
	ErrNoInputs         = errors.New("sample has no input files")
	ErrUnknownExtension = errors.New("unknown input file extension")
)

// Job runs one analysis over every input file of one sample
type Job struct {
	Name     string
	Analysis string
	Inputs   []string
	IsData   bool

	OutputDir string
	MaxEvents int
	Fraction  float64
	Codec     compression.Codec
}

// BuildJobs creates a job per configured sample, ordered by name.
// filter is a comma separated list of sample names, empty means all of them.
func BuildJobs(cfg Config, filter string) ([]*Job, error) {
	codec, err := compression.ParseCodec(cfg.Job.Codec)
	if err != nil {
		return nil, err
	}
	if _, err := analyses.New(cfg.Job.Analysis); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(cfg.Processes))
	if filter == "" {
		for name := range cfg.Processes {
			names = append(names, name)
		}
	} else {
		for _, name := range strings.Split(filter, ",") {
			name = strings.TrimSpace(name)
			if name == "" || slices.Contains(names, name) {
				continue
			}
			if _, ok := cfg.Processes[name]; !ok {
				slog.Warn("sample not configured, skipping", "sample", name)
				color.Yellow("skipping unknown sample %s", name)
				continue
			}
			names = append(names, name)
		}
	}
	slices.Sort(names)

	jobs := make([]*Job, 0, len(names))
	for _, name := range names {
		inputs, globErr := expandInputs(cfg.Processes[name])
		if globErr != nil {
			return nil, fmt.Errorf("sample %s: %w", name, globErr)
		}

		jobs = append(jobs, &Job{
			Name:      name,
			Analysis:  cfg.Job.Analysis,
			Inputs:    inputs,
			IsData:    strings.Contains(strings.ToLower(name), "data"),
			OutputDir: cfg.Job.OutputDirectory,
			MaxEvents: cfg.Job.MaxEvents,
			Fraction:  cfg.Job.Fraction,
			Codec:     codec,
		})
	}

	return jobs, nil
}

// expandInputs resolves globs, a pattern without matches is kept as a literal path
func expandInputs(patterns []string) ([]string, error) {
	var out []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad input pattern %s: %s", pattern, err.Error())
		}
		if len(matches) == 0 {
			out = append(out, pattern)
			continue
		}
		slices.Sort(matches)
		out = append(out, matches...)
	}
	return out, nil
}

// Size is the total byte size of the inputs, missing files count as zero
func (j *Job) Size() int64 {
	var total int64
	for _, path := range j.Inputs {
		if st, err := os.Stat(path); err == nil {
			total += st.Size()
		}
	}
	return total
}

func (j *Job) HistogramPath() string {
	return filepath.Join(j.OutputDir, j.Name+".hist")
}

func (j *Job) CutflowPath() string {
	return filepath.Join(j.OutputDir, j.Name+".cutflow.txt")
}

// Open chains every input of the sample into one table
func (j *Job) Open() (table.Table, error) {
	if len(j.Inputs) == 0 {
		return nil, ErrNoInputs
	}

	parts := make([]table.Table, 0, len(j.Inputs))
	for _, path := range j.Inputs {
		t, err := openInput(path)
		if err != nil {
			for _, opened := range parts {
				opened.Close()
			}
			return nil, err
		}
		parts = append(parts, t)
	}

	return table.Chain(j.Name, parts...), nil
}

func openInput(path string) (table.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tuple":
		return tuple.Open(path)
	case ".arrow", ".ipc", ".feather":
		return arrowtable.Open(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExtension, path)
	}
}

// Run processes the sample and writes its outputs only when everything succeeded.
// Setup failures are returned as *analysis.SetupError.
func (j *Job) Run(ctx context.Context, progress func(done, total int)) (analysis.Summary, error) {
	policy, err := analyses.New(j.Analysis)
	if err != nil {
		return analysis.Summary{}, &analysis.SetupError{Sample: j.Name, Err: err}
	}

	source, err := j.Open()
	if err != nil {
		return analysis.Summary{}, &analysis.SetupError{Sample: j.Name, Err: err}
	}
	defer source.Close()

	if err := os.MkdirAll(j.OutputDir, 0o755); err != nil {
		return analysis.Summary{}, &analysis.SetupError{Sample: j.Name, Err: err}
	}

	pending := j.HistogramPath() + ".tmp"
	out := hist.CreateOutputFile(pending, j.Name, j.Codec)
	var report bytes.Buffer

	a := analysis.New(j.Name, policy, j.IsData)
	summary, runErr := a.Run(ctx, source, analysis.RunOptions{
		MaxEvents: j.MaxEvents,
		Fraction:  j.Fraction,
		Output:    out,
		Report:    &report,
		Progress:  progress,
	})
	if runErr != nil {
		return summary, runErr
	}

	if err := out.Close(); err != nil {
		os.Remove(pending)
		return summary, err
	}
	if err := os.Rename(pending, j.HistogramPath()); err != nil {
		os.Remove(pending)
		return summary, fmt.Errorf("unable to publish %s: %s", j.HistogramPath(), err.Error())
	}
	if err := os.WriteFile(j.CutflowPath(), report.Bytes(), 0o644); err != nil {
		return summary, fmt.Errorf("unable to write cut flow of %s: %s", j.Name, err.Error())
	}

	return summary, nil
}
