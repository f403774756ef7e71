// Package selection holds the object and event predicates shared by analyses.
package selection

import (
	"cmp"
	"math"
	"slices"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/store"
	"go-hep.org/x/hep/fmom"
)

// ZMass in GeV
const ZMass = 91.1876

const (
	electronPdg = 11
	muonPdg     = 13
)

// IsGoodElectron requires a tight, isolated lepton above 25 GeV
func IsGoodElectron(l *store.Lepton) bool {
	return isTightIsolated(l)
}

// IsGoodMuon uses the electron thresholds
func IsGoodMuon(l *store.Lepton) bool {
	return isTightIsolated(l)
}

func isTightIsolated(l *store.Lepton) bool {
	if !l.IsTight() {
		return false
	}
	if !(l.Pt() > 25) {
		return false
	}
	if !(l.EtConeRel20() < 0.15) {
		return false
	}
	return l.PtConeRel30() < 0.15
}

func IsGoodLepton(l *store.Lepton) bool {
	switch abs(l.PdgID()) {
	case electronPdg:
		return IsGoodElectron(l)
	case muonPdg:
		return IsGoodMuon(l)
	default:
		return false
	}
}

// IsGoodJet rejects soft central jets with a low vertex fraction
func IsGoodJet(j *store.Jet) bool {
	if j.Pt() < 25 {
		return false
	}
	eta := math.Abs(j.Eta())
	if eta > 2.5 {
		return false
	}
	if j.Pt() < 50 && eta <= 2.4 && j.JVF() < 0.5 {
		return false
	}
	return true
}

// SelectAndSort keeps the items passing keep, ordered by key descending.
// Items with equal keys keep their input order.
func SelectAndSort[T any](items []T, keep func(T) bool, key func(T) float64) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}

	slices.SortStableFunc(out, func(a, b T) int {
		return cmp.Compare(key(b), key(a))
	})
	return out
}

// ByPt is the usual sort key for SelectAndSort
func ByPt[T interface{ Pt() float64 }](it T) float64 {
	return it.Pt()
}

func StandardEventCuts(ei *store.EventInfo) bool {
	if !(ei.TriggeredByElectron() || ei.TriggeredByMuon()) {
		return false
	}
	return ei.PassGRL() && ei.HasGoodVertex()
}

// TransverseMass of a lepton and the missing energy, in GeV
func TransverseMass(l *store.Lepton, met *store.MissingEnergy) float64 {
	dphi := fmom.DeltaPhi(l.P4(), met.P4())
	return math.Sqrt(2 * l.Pt() * met.Et() * (1 - math.Cos(dphi)))
}

// Particle is any view carrying a cached 4-vector
type Particle interface {
	P4() *fmom.PxPyPzE
}

// Sum of the 4-vectors
func Sum(parts ...Particle) fmom.PxPyPzE {
	var px, py, pz, e float64
	for _, p := range parts {
		v := p.P4()
		px += v.Px()
		py += v.Py()
		pz += v.Pz()
		e += v.E()
	}
	return fmom.NewPxPyPzE(px, py, pz, e)
}

func InvariantMass(a, b Particle) float64 {
	s := Sum(a, b)
	return s.M()
}

// DeltaPhi is the signed azimuthal separation in [-pi, pi]
func DeltaPhi(a, b Particle) float64 {
	return fmom.DeltaPhi(a.P4(), b.P4())
}

// ZWindow is the distance of the pair mass to the Z mass
func ZWindow(a, b *store.Lepton) float64 {
	return math.Abs(InvariantMass(a, b) - ZMass)
}

// IsValidPair requires opposite charge and the same flavour
func IsValidPair(a, b *store.Lepton) bool {
	if a.Charge()*b.Charge() > 0 {
		return false
	}
	return abs(a.PdgID()) == abs(b.PdgID())
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
