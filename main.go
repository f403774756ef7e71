package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/arrowtable"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/compression"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/eventgen"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/hist"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/manager"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/metrics"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/table"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/tuple"
	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var errSamplesFailed = errors.New("some samples failed")

type options struct {
	config      string
	analysis    string
	samples     string
	output      string
	parallel    bool
	workers     int
	fraction    float64
	maxEvents   int
	metricsAddr string

	generate string
	events   int
	seed     uint64

	convert string
	to      string
	codec   string

	inspect string
}

func parseFlags(args []string) (options, *flag.FlagSet, error) {
	var opts options

	fs := flag.NewFlagSet("atlas-analysis", flag.ContinueOnError)
	fs.StringVar(&opts.config, "c", "config.yaml", "job configuration file")
	fs.StringVar(&opts.analysis, "a", "", "analysis to run, overrides job.analysis")
	fs.StringVar(&opts.samples, "s", "", "comma separated samples to process, all when empty")
	fs.StringVar(&opts.output, "o", "", "output directory, overrides job.output_directory")
	fs.BoolVar(&opts.parallel, "p", false, "process samples in parallel")
	fs.IntVar(&opts.workers, "n", 0, "number of parallel workers, overrides job.workers")
	fs.Float64Var(&opts.fraction, "f", -1, "fraction of events to process, overrides job.fraction")
	fs.IntVar(&opts.maxEvents, "m", -1, "maximum events per sample, overrides job.max_events")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	fs.StringVar(&opts.generate, "generate", "", "write a synthetic sample to this .tuple or .arrow file")
	fs.IntVar(&opts.events, "events", 10000, "number of generated events")
	fs.Uint64Var(&opts.seed, "seed", 1, "generator seed")

	fs.StringVar(&opts.convert, "convert", "", "arrow file to convert into a tuple")
	fs.StringVar(&opts.to, "to", "", "converted tuple path")
	fs.StringVar(&opts.codec, "codec", "lz4", "tuple block codec: lz4, zstd or none")

	fs.StringVar(&opts.inspect, "inspect", "", "list the histograms of a .hist file")

	err := fs.Parse(args)
	return opts, fs, err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		color.Red("%s", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, fs, err := parseFlags(args)
	if err != nil {
		return err
	}

	switch {
	case opts.generate != "":
		return generate(opts)
	case opts.convert != "":
		return convert(opts)
	case opts.inspect != "":
		return inspect(opts.inspect, stdout)
	default:
		return runJobs(ctx, opts, fs)
	}
}

func generate(opts options) error {
	var (
		w     table.RowWriter
		finish func() error
	)

	switch strings.ToLower(filepath.Ext(opts.generate)) {
	case ".tuple":
		codec, err := compression.ParseCodec(opts.codec)
		if err != nil {
			return err
		}
		tw, err := tuple.NewWriter(opts.generate, schema.EventLayout(), tuple.WriterOptions{
			Name:  strings.TrimSuffix(filepath.Base(opts.generate), filepath.Ext(opts.generate)),
			Codec: codec,
		})
		if err != nil {
			return err
		}
		w, finish = tw, tw.Close
	case ".arrow", ".ipc", ".feather":
		aw, err := arrowtable.NewFileWriter(opts.generate, schema.EventLayout())
		if err != nil {
			return err
		}
		w, finish = aw, aw.Close
	default:
		return fmt.Errorf("unable to generate %s: use a .tuple or .arrow extension", opts.generate)
	}

	if err := eventgen.Generate(w, opts.events, opts.seed); err != nil {
		finish()
		return fmt.Errorf("unable to generate %s: %w", opts.generate, err)
	}
	if err := finish(); err != nil {
		return err
	}

	log.Printf("generated %d events into %s", opts.events, opts.generate)
	return nil
}

func convert(opts options) error {
	if opts.to == "" {
		return fmt.Errorf("-convert needs -to")
	}

	codec, err := compression.ParseCodec(opts.codec)
	if err != nil {
		return err
	}

	src, err := arrowtable.Open(opts.convert)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := tuple.WriteTable(opts.to, src, tuple.WriterOptions{Name: src.Name(), Codec: codec}); err != nil {
		return err
	}

	slog.Info("converted", "from", opts.convert, "to", opts.to, "rows", src.Rows(), "codec", codec.String())
	return nil
}

func inspect(path string, stdout io.Writer) error {
	f, err := hist.OpenOutputFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(stdout, "sample %s (%s, %s)\n", f.Sample, f.Uid.String(), f.Codec.String())
	for _, name := range f.Names() {
		h, err := f.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%-24s entries=%-8d sumw=%.4g\n", name, h.Entries(), h.SumW())
	}
	return nil
}

func runJobs(ctx context.Context, opts options, fs *flag.FlagSet) error {
	cfg, err := manager.ReadConfig(opts.config)
	if err != nil {
		return err
	}

	// explicitly passed flags win over the file, validation runs on the merged result
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			cfg.Job.Analysis = opts.analysis
		case "o":
			cfg.Job.OutputDirectory = opts.output
		case "p":
			cfg.Job.Parallel = opts.parallel
		case "n":
			cfg.Job.Workers = opts.workers
		case "f":
			cfg.Job.Fraction = opts.fraction
		case "m":
			cfg.Job.MaxEvents = opts.maxEvents
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	jobs, err := manager.BuildJobs(cfg, opts.samples)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		color.Yellow("no samples to process")
		return nil
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if opts.metricsAddr != "" {
		go serveMetrics(opts.metricsAddr, reg)
	}

	results, err := manager.New(manager.ManagerConfig{
		Workers:  cfg.Job.Workers,
		Parallel: cfg.Job.Parallel,
		Metrics:  m,
	}).Run(ctx, jobs)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Err != nil {
			return errSamplesFailed
		}
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	slog.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("metrics server stopped", "err", err)
	}
}
