package analyses

import (
	"math"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/analysis"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/selection"
	"go-hep.org/x/hep/fmom"
)

// HWWAnalysis is an abridged H to WW to lvlv selection in the 0-jet bin
type HWWAnalysis struct {
	h histograms
}

func (hww *HWWAnalysis) Initialize(a *analysis.Analysis) error {
	hww.h = histograms{}
	hww.h.add(a, "vismass", "Visible Mass; M^{vis}_{ll};Events", 20, 0, 200)
	hww.h.add(a, "ptll", "Transverse Momentum of Dilepton System; p_{T,ll};Events", 20, 0, 200)
	hww.h.add(a, "deltaphill", "Azimuthal Opening Angle between Leptons; #|Delta#phi_{ll}|;Events", 16, 0, 1.6)
	hww.h.standard(a, "lep_n")
	hww.h.leptonSeries(a, "leadlep")
	hww.h.leptonSeries(a, "traillep")
	hww.h.standard(a, eventSeries...)
	return nil
}

func (hww *HWWAnalysis) Analyze(a *analysis.Analysis) bool {
	if !passEventCuts(a) {
		return false
	}

	s := a.Store()
	leptons := goodLeptons(s)
	if len(leptons) != 2 {
		return false
	}
	a.CountEvent("2 good leptons")

	if len(goodJets(s)) != 0 {
		return false
	}
	a.CountEvent("0 jets")

	lead, trail := leptons[0], leptons[1]
	if !(lead.Charge()*trail.Charge() < 0) {
		return false
	}
	a.CountEvent("opposite charge")

	met := s.MissingEnergy()
	ll := selection.Sum(lead, trail)
	mll := ll.M()

	if absInt(lead.PdgID()) == absInt(trail.PdgID()) {
		if !(mll > 12) || !(math.Abs(mll-selection.ZMass) > 15) || !(met.Et() > 40) {
			return false
		}
	} else {
		if !(mll > 10) || !(met.Et() > 20) {
			return false
		}
	}

	if !(ll.Pt() > 30) {
		return false
	}
	// both angular cuts compare magnitudes, mirrored events select the same way
	if !(math.Abs(fmom.DeltaPhi(&ll, met.P4())) > math.Pi/2) {
		return false
	}
	a.CountEvent("background suppression")

	dphi := math.Abs(selection.DeltaPhi(lead, trail))
	if !(mll < 55) || !(dphi < 1.8) {
		return false
	}
	a.CountEvent("H topology")

	w := a.Weight()
	hww.h.fillEvent(s, w)
	hww.h.fill("vismass", mll, w)
	hww.h.fill("ptll", ll.Pt(), w)
	hww.h.fill("deltaphill", dphi, w)
	hww.h.fill("lep_n", float64(len(leptons)), w)
	hww.h.fillLepton("leadlep", lead, w)
	hww.h.fillLepton("traillep", trail, w)

	return true
}

func (hww *HWWAnalysis) Finalize(a *analysis.Analysis) error {
	return nil
}
