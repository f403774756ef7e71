// Package analysis drives one sample through a cut-flow policy.
//
// An Analysis moves through Uninitialized, Initialized, Running and Finalized.
// Every row is weighted, counted as "all", handed to the policy and counted as
// "final" when the policy accepts it.
package analysis

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/counter"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/hist"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/store"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/table"
	"go-hep.org/x/hep/hbook"
)

const (
	LabelAll   = "all"
	LabelFinal = "final"
)

type State int

const (
	Uninitialized State = iota
	Initialized
	Running
	Finalized
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case Finalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var ErrInvalidState = errors.New("invalid analysis state")

// SetupError aborts one sample, other samples keep running
type SetupError struct {
	Sample string
	Err    error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("unable to set up sample %s: %s", e.Sample, e.Err.Error())
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// Policy holds the cut-specific logic of an analysis
type Policy interface {
	// Initialize registers histograms
	Initialize(a *Analysis) error
	// Analyze applies the cuts to the current row and reports whether it passed
	Analyze(a *Analysis) bool
	Finalize(a *Analysis) error
}

type Analysis struct {
	name   string
	policy Policy
	isData bool
	state  State

	store   *store.Store
	counter *counter.Counter
	hists   *hist.Registry

	weight    float64
	processed int
	selected  int
}

// New prepares an analysis of one sample, name is usually "<sample>.<policy>"
func New(name string, policy Policy, isData bool) *Analysis {
	return &Analysis{
		name:    name,
		policy:  policy,
		isData:  isData,
		counter: counter.New(name),
		hists:   hist.NewRegistry(name),
	}
}

func (a *Analysis) Name() string {
	return a.name
}

func (a *Analysis) State() State {
	return a.state
}

func (a *Analysis) IsData() bool {
	return a.isData
}

func (a *Analysis) Store() *store.Store {
	return a.store
}

// Weight of the current row
func (a *Analysis) Weight() float64 {
	return a.weight
}

func (a *Analysis) Counter() *counter.Counter {
	return a.counter
}

func (a *Analysis) Histograms() *hist.Registry {
	return a.hists
}

// Processed is the number of rows seen by DoAnalysis
func (a *Analysis) Processed() int {
	return a.processed
}

func (a *Analysis) Selected() int {
	return a.selected
}

// CountEvent adds the current row to label with the current weight
func (a *Analysis) CountEvent(label string) {
	a.counter.Update(label, a.weight)
}

// AddHistogram registers h and returns the histogram kept under name
func (a *Analysis) AddHistogram(name string, h *hbook.H1D) *hbook.H1D {
	a.hists.Register(name, h)
	kept, _ := a.hists.Get(name)
	return kept
}

// AddStandardHistogram returns nil for names outside the catalog
func (a *Analysis) AddStandardHistogram(name string) *hbook.H1D {
	return a.hists.RegisterStandard(name)
}

func (a *Analysis) Histogram(name string) (*hbook.H1D, bool) {
	return a.hists.Get(name)
}

func (a *Analysis) expect(op string, states ...State) error {
	for _, s := range states {
		if a.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s while %s", ErrInvalidState, op, a.state)
}

// DoInitialization binds the store to source and lets the policy register its histograms
func (a *Analysis) DoInitialization(source table.Table) error {
	if err := a.expect("initialize", Uninitialized); err != nil {
		return err
	}

	if source.Rows() == 0 {
		return &SetupError{Sample: a.name, Err: table.ErrEmptyTable}
	}

	s, err := store.Open(source)
	if err != nil {
		return &SetupError{Sample: a.name, Err: err}
	}
	a.store = s

	if err := a.policy.Initialize(a); err != nil {
		return &SetupError{Sample: a.name, Err: err}
	}

	a.state = Initialized
	slog.Info("analysis initialized", "analysis", a.name, "rows", source.Rows(), "histograms", a.hists.Len(), "data", a.isData)
	return nil
}

// DoAnalysis processes one row, a failed cut is a false return and never an error
func (a *Analysis) DoAnalysis(row int) (bool, error) {
	if err := a.expect("analyze", Initialized, Running); err != nil {
		return false, err
	}
	a.state = Running

	if err := a.store.Position(row); err != nil {
		return false, err
	}

	a.weight = 1
	if !a.isData {
		ei := a.store.EventInfo()
		a.weight = ei.ScaleFactor() * ei.EventWeight()
	}

	a.processed++
	a.CountEvent(LabelAll)

	if !a.policy.Analyze(a) {
		return false, nil
	}

	a.selected++
	a.CountEvent(LabelFinal)
	return true, nil
}

// DoFinalization writes the histograms to out and the cut flow to report.
// A nil out discards the histograms, a nil report skips the cut flow.
func (a *Analysis) DoFinalization(out hist.Sink, report io.Writer) error {
	if err := a.expect("finalize", Initialized, Running); err != nil {
		return err
	}
	if out == nil {
		out = hist.Discard
	}

	if err := a.hists.WriteAll(out); err != nil {
		return err
	}

	if report != nil {
		if err := a.counter.Report(report); err != nil {
			return err
		}
	}

	if err := a.policy.Finalize(a); err != nil {
		return fmt.Errorf("unable to finalize %s: %w", a.name, err)
	}

	a.state = Finalized
	slog.Info("analysis finalized", "analysis", a.name, "processed", a.processed, "selected", a.selected)
	return nil
}
