package hist

import (
	"errors"
	"fmt"
	"log/slog"

	"go-hep.org/x/hep/hbook"
)

var ErrAlreadyWritten = errors.New("histograms already written")

// Sink persists one histogram under its registered name
type Sink interface {
	Write(name string, h *hbook.H1D) error
}

// Registry keeps histograms by name, the first registration of a name wins
type Registry struct {
	name    string
	order   []string
	hists   map[string]*hbook.H1D
	written bool
}

func NewRegistry(name string) *Registry {
	return &Registry{
		name:  name,
		hists: make(map[string]*hbook.H1D),
	}
}

func (r *Registry) Name() string {
	return r.name
}

// Register keeps h under name unless the name is taken
func (r *Registry) Register(name string, h *hbook.H1D) bool {
	if h == nil {
		slog.Warn("nil histogram rejected", "registry", r.name, "histogram", name)
		return false
	}
	if _, exists := r.hists[name]; exists {
		slog.Warn("histogram already defined, keeping the first one", "registry", r.name, "histogram", name)
		return false
	}

	if h.Annotation()["name"] == nil {
		h.Annotation()["name"] = name
	}

	r.hists[name] = h
	r.order = append(r.order, name)
	return true
}

// RegisterStandard registers a catalog histogram and returns the registered object,
// nil for names outside the catalog
func (r *Registry) RegisterStandard(name string) *hbook.H1D {
	h, ok := Standard(name)
	if !ok {
		slog.Warn("standard histogram not found", "registry", r.name, "histogram", name)
		return nil
	}

	if !r.Register(name, h) {
		return r.hists[name]
	}
	return h
}

func (r *Registry) Get(name string) (*hbook.H1D, bool) {
	h, ok := r.hists[name]
	return h, ok
}

// Names in registration order
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Len() int {
	return len(r.order)
}

// WriteAll hands every histogram to sink once
func (r *Registry) WriteAll(sink Sink) error {
	if r.written {
		return fmt.Errorf("%w: %s", ErrAlreadyWritten, r.name)
	}
	r.written = true

	for _, name := range r.order {
		if err := sink.Write(name, r.hists[name]); err != nil {
			return fmt.Errorf("unable to write histogram %s: %w", name, err)
		}
	}

	return nil
}

// ScaleFactor normalizes a simulated sample to the data luminosity
func ScaleFactor(luminosity, crossSection, sumOfWeights, efficiency float64) float64 {
	return luminosity * crossSection / (sumOfWeights * efficiency)
}

type discard struct{}

func (discard) Write(string, *hbook.H1D) error { return nil }

// Discard drops every histogram
var Discard Sink = discard{}
