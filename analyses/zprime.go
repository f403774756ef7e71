package analyses

import (
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/analysis"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/selection"
)

// btagCut is the MV1 working point
const btagCut = 0.7892

// ZPrimeAnalysis searches for a Z' in semileptonic top pair events
type ZPrimeAnalysis struct {
	h histograms
}

func (zp *ZPrimeAnalysis) Initialize(a *analysis.Analysis) error {
	zp.h = histograms{}
	zp.h.standard(a, "WtMass")
	zp.h.leptonSeries(a, "lep")
	zp.h.standard(a, jetSeries...)
	zp.h.standard(a, eventSeries...)
	return nil
}

func (zp *ZPrimeAnalysis) Analyze(a *analysis.Analysis) bool {
	if !passEventCuts(a) {
		return false
	}

	s := a.Store()
	leptons := goodLeptons(s)
	if len(leptons) != 1 {
		return false
	}
	a.CountEvent("1 good lepton")

	met := s.MissingEnergy()
	if !(met.Et() > 30) {
		return false
	}
	a.CountEvent("etmiss")

	jets := goodJets(s)
	if len(jets) < 4 {
		return false
	}
	a.CountEvent("4 jets")

	tagged := 0
	for _, j := range jets {
		if j.MV1() >= btagCut {
			tagged++
		}
	}
	if tagged < 1 {
		return false
	}
	a.CountEvent("btag")

	lepton := leptons[0]
	mt := selection.TransverseMass(lepton, met)
	if !(mt > 30) || !(mt+met.Et() > 60) {
		return false
	}
	a.CountEvent("masses")

	w := a.Weight()
	zp.h.fillEvent(s, w)
	zp.h.fill("WtMass", mt, w)
	zp.h.fillLepton("lep", lepton, w)
	zp.h.fillJets(jets, w)

	return true
}

func (zp *ZPrimeAnalysis) Finalize(a *analysis.Analysis) error {
	return nil
}
