package analyses

import (
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/analysis"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/selection"
)

// ZAnalysis selects Z bosons decaying to two leptons of the same flavour and opposite charge
type ZAnalysis struct {
	h histograms
}

func (z *ZAnalysis) Initialize(a *analysis.Analysis) error {
	z.h = histograms{}
	z.h.standard(a, "invMass", "lep_n")
	z.h.leptonSeries(a, "leadlep")
	z.h.leptonSeries(a, "traillep")
	z.h.standard(a, jetSeries...)
	z.h.standard(a, eventSeries...)
	return nil
}

func (z *ZAnalysis) Analyze(a *analysis.Analysis) bool {
	if !passEventCuts(a) {
		return false
	}

	s := a.Store()
	leptons := goodLeptons(s)
	if len(leptons) != 2 {
		return false
	}
	a.CountEvent("2 good leptons")

	lead, trail := leptons[0], leptons[1]

	if !(lead.Charge()*trail.Charge() < 0) {
		return false
	}
	a.CountEvent("opposite charge")

	if absInt(lead.PdgID()) != absInt(trail.PdgID()) {
		return false
	}
	a.CountEvent("same flavour")

	if !(selection.ZWindow(lead, trail) < 20) {
		return false
	}
	a.CountEvent("Z window")

	w := a.Weight()
	z.h.fillEvent(s, w)
	z.h.fill("invMass", selection.InvariantMass(lead, trail), w)
	z.h.fill("lep_n", float64(len(leptons)), w)
	z.h.fillLepton("leadlep", lead, w)
	z.h.fillLepton("traillep", trail, w)
	z.h.fillJets(goodJets(s), w)

	return true
}

func (z *ZAnalysis) Finalize(a *analysis.Analysis) error {
	return nil
}
