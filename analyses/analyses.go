// Package analyses contains the cut flows shipped with the framework.
package analyses

import (
	"fmt"
	"slices"
	"strings"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/analysis"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/hist"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/selection"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/store"
	"go-hep.org/x/hep/hbook"
)

var registry = map[string]func() analysis.Policy{
	"ZAnalysis":      func() analysis.Policy { return &ZAnalysis{} },
	"WAnalysis":      func() analysis.Policy { return &WAnalysis{} },
	"ZZAnalysis":     func() analysis.Policy { return &ZZAnalysis{} },
	"WZAnalysis":     func() analysis.Policy { return &WZAnalysis{} },
	"HWWAnalysis":    func() analysis.Policy { return &HWWAnalysis{} },
	"ZPrimeAnalysis": func() analysis.Policy { return &ZPrimeAnalysis{} },
}

// New returns a fresh policy, every sample needs its own
func New(name string) (analysis.Policy, error) {
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown analysis '%s', expected one of %s", name, strings.Join(Names(), ", "))
	}
	return build(), nil
}

func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

const labelEventCuts = "EventCuts"

var (
	leptonSeries = []string{"pt", "eta", "E", "phi", "charge", "type", "ptconerel30", "etconerel20", "z0", "d0"}
	jetSeries    = []string{"n_jets", "jet_pt", "jet_m", "jet_jvf", "jet_eta", "jet_MV1"}
	eventSeries  = []string{"etmiss", "vxp_z", "pvxp_n"}
)

// histograms keeps the registered objects of one policy by name
type histograms map[string]*hbook.H1D

func (h histograms) standard(a *analysis.Analysis, names ...string) {
	for _, name := range names {
		if registered := a.AddStandardHistogram(name); registered != nil {
			h[name] = registered
		}
	}
}

func (h histograms) leptonSeries(a *analysis.Analysis, prefix string) {
	for _, s := range leptonSeries {
		h.standard(a, prefix+"_"+s)
	}
}

func (h histograms) add(a *analysis.Analysis, name, title string, bins int, lo, hi float64) {
	h[name] = a.AddHistogram(name, hist.New(name, title, bins, lo, hi))
}

func (h histograms) fill(name string, x, w float64) {
	if hh, ok := h[name]; ok {
		hh.Fill(x, w)
	}
}

func (h histograms) fillLepton(prefix string, l *store.Lepton, w float64) {
	h.fill(prefix+"_pt", l.Pt(), w)
	h.fill(prefix+"_eta", l.Eta(), w)
	h.fill(prefix+"_E", l.E(), w)
	h.fill(prefix+"_phi", l.Phi(), w)
	h.fill(prefix+"_charge", l.Charge(), w)
	h.fill(prefix+"_type", float64(absInt(l.PdgID())), w)
	h.fill(prefix+"_ptconerel30", l.PtConeRel30(), w)
	h.fill(prefix+"_etconerel20", l.EtConeRel20(), w)
	h.fill(prefix+"_z0", l.Z0(), w)
	h.fill(prefix+"_d0", l.D0(), w)
}

func (h histograms) fillJets(jets []*store.Jet, w float64) {
	h.fill("n_jets", float64(len(jets)), w)
	for _, j := range jets {
		h.fill("jet_m", j.M(), w)
		h.fill("jet_pt", j.Pt(), w)
		h.fill("jet_jvf", j.JVF(), w)
		h.fill("jet_eta", j.Eta(), w)
		h.fill("jet_MV1", j.MV1(), w)
	}
}

func (h histograms) fillEvent(s *store.Store, w float64) {
	ei := s.EventInfo()
	h.fill("vxp_z", ei.PrimaryVertexPosition(), w)
	h.fill("pvxp_n", float64(ei.NumberOfVertices()), w)
	h.fill("etmiss", s.MissingEnergy().Et(), w)
}

func goodLeptons(s *store.Store) []*store.Lepton {
	return selection.SelectAndSort(s.Leptons(), selection.IsGoodLepton, selection.ByPt[*store.Lepton])
}

func goodJets(s *store.Store) []*store.Jet {
	return selection.SelectAndSort(s.Jets(), selection.IsGoodJet, selection.ByPt[*store.Jet])
}

// passEventCuts counts EventCuts on success. Policies count no label before it, "all" is counted by the engine.
func passEventCuts(a *analysis.Analysis) bool {
	if !selection.StandardEventCuts(a.Store().EventInfo()) {
		return false
	}
	a.CountEvent(labelEventCuts)
	return true
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
