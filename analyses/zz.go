package analyses

import (
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/analysis"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/selection"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/store"
)

// ZZAnalysis selects Z boson pairs decaying to four leptons
type ZZAnalysis struct {
	h histograms
}

func (zz *ZZAnalysis) Initialize(a *analysis.Analysis) error {
	zz.h = histograms{}
	zz.h.add(a, "invMass1", "Invariant Mass of the Z boson 1;M_{Z1} [GeV]; Events", 30, 60, 120)
	zz.h.add(a, "invMass2", "Invariant Mass of the Z boson 2;M_{Z2} [GeV]; Events", 30, 60, 120)
	zz.h.standard(a, "lep_n")
	zz.h.leptonSeries(a, "lep")
	zz.h.standard(a, eventSeries...)
	return nil
}

// isLooseLepton drops the identification requirement and lowers the pt threshold
func isLooseLepton(l *store.Lepton) bool {
	if !(l.Pt() > 10) {
		return false
	}
	return l.EtConeRel20() < 0.15 && l.PtConeRel30() < 0.15
}

func doubleZWindow(c [4]*store.Lepton) float64 {
	return selection.ZWindow(c[0], c[1]) + selection.ZWindow(c[2], c[3])
}

// zzCandidate orders four leptons into two valid pairs closest to the Z mass
func zzCandidate(leptons []*store.Lepton) ([4]*store.Lepton, bool) {
	var best [4]*store.Lepton
	bestWindow := 0.0
	found := false

	permutations(len(leptons), 4, func(idx []int) bool {
		c := [4]*store.Lepton{leptons[idx[0]], leptons[idx[1]], leptons[idx[2]], leptons[idx[3]]}
		if !selection.IsValidPair(c[0], c[1]) || !selection.IsValidPair(c[2], c[3]) {
			return true
		}
		if window := doubleZWindow(c); !found || window < bestWindow {
			best, bestWindow, found = c, window, true
		}
		return true
	})

	return best, found
}

func (zz *ZZAnalysis) Analyze(a *analysis.Analysis) bool {
	if !passEventCuts(a) {
		return false
	}

	s := a.Store()
	leptons := selection.SelectAndSort(s.Leptons(), isLooseLepton, selection.ByPt[*store.Lepton])
	if len(leptons) < 4 {
		return false
	}
	a.CountEvent("4 loose leptons")

	if !(leptons[0].Pt() > 25) {
		return false
	}

	candidate, ok := zzCandidate(leptons)
	if !ok || doubleZWindow(candidate) > 30 {
		return false
	}
	a.CountEvent("ZZ candidate")

	w := a.Weight()
	zz.h.fillEvent(s, w)
	zz.h.fill("invMass1", selection.InvariantMass(candidate[0], candidate[1]), w)
	zz.h.fill("invMass2", selection.InvariantMass(candidate[2], candidate[3]), w)
	zz.h.fill("lep_n", float64(len(leptons)), w)
	for _, l := range leptons {
		zz.h.fillLepton("lep", l, w)
	}

	return true
}

func (zz *ZZAnalysis) Finalize(a *analysis.Analysis) error {
	return nil
}
