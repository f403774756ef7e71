package analyses

import (
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/analysis"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/selection"
)

// WAnalysis selects single leptonic W decays
type WAnalysis struct {
	h histograms
}

func (wa *WAnalysis) Initialize(a *analysis.Analysis) error {
	wa.h = histograms{}
	wa.h.standard(a, "WtMass", "lep_n")
	wa.h.leptonSeries(a, "lep")
	wa.h.standard(a, jetSeries...)
	wa.h.standard(a, eventSeries...)
	return nil
}

func (wa *WAnalysis) Analyze(a *analysis.Analysis) bool {
	if !passEventCuts(a) {
		return false
	}

	s := a.Store()
	leptons := goodLeptons(s)
	if len(leptons) != 1 {
		return false
	}
	a.CountEvent("1 good lepton")

	lepton := leptons[0]
	met := s.MissingEnergy()

	mt := selection.TransverseMass(lepton, met)
	if !(mt > 30) || !(met.Et() > 30) {
		return false
	}
	a.CountEvent("W candidate")

	w := a.Weight()
	wa.h.fillEvent(s, w)
	wa.h.fill("WtMass", mt, w)
	wa.h.fill("lep_n", float64(len(leptons)), w)
	wa.h.fillLepton("lep", lepton, w)
	wa.h.fillJets(goodJets(s), w)

	return true
}

func (wa *WAnalysis) Finalize(a *analysis.Analysis) error {
	return nil
}
