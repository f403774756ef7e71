package analyses

import (
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/analysis"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/selection"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/store"
)

// WZAnalysis selects WZ pairs with both bosons decaying to leptons
type WZAnalysis struct {
	h histograms
}

func (wz *WZAnalysis) Initialize(a *analysis.Analysis) error {
	wz.h = histograms{}
	wz.h.standard(a, "invMass", "WtMass", "lep_n")
	wz.h.leptonSeries(a, "lep")
	wz.h.standard(a, eventSeries...)
	return nil
}

// wzCandidate puts the Z pair first and the W lepton last
func wzCandidate(leptons []*store.Lepton) ([3]*store.Lepton, bool) {
	var best [3]*store.Lepton
	bestWindow := 0.0
	found := false

	permutations(len(leptons), 3, func(idx []int) bool {
		c := [3]*store.Lepton{leptons[idx[0]], leptons[idx[1]], leptons[idx[2]]}
		if !selection.IsValidPair(c[0], c[1]) {
			return true
		}
		if window := selection.ZWindow(c[0], c[1]); !found || window < bestWindow {
			best, bestWindow, found = c, window, true
		}
		return true
	})

	return best, found
}

func (wz *WZAnalysis) Analyze(a *analysis.Analysis) bool {
	if !passEventCuts(a) {
		return false
	}

	s := a.Store()
	leptons := goodLeptons(s)
	if len(leptons) != 3 {
		return false
	}
	a.CountEvent("3 good leptons")

	candidate, ok := wzCandidate(leptons)
	if !ok {
		return false
	}

	met := s.MissingEnergy()
	mt := selection.TransverseMass(candidate[2], met)
	if !(selection.ZWindow(candidate[0], candidate[1]) < 10) || !(mt > 30) {
		return false
	}
	a.CountEvent("WZ candidate")

	w := a.Weight()
	wz.h.fillEvent(s, w)
	wz.h.fill("invMass", selection.InvariantMass(candidate[0], candidate[1]), w)
	wz.h.fill("WtMass", mt, w)
	wz.h.fill("lep_n", float64(len(leptons)), w)
	for _, l := range leptons {
		wz.h.fillLepton("lep", l, w)
	}

	return true
}

func (wz *WZAnalysis) Finalize(a *analysis.Analysis) error {
	return nil
}
