package store

import (
	"fmt"
	"math"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
	"go-hep.org/x/hep/fmom"
)

// TightFlag is the lep_flag bit of tight identification
const TightFlag = 512

type leptonColumns struct {
	slots int

	pt, eta, phi, e    *Array[float32]
	pdg                *Array[int32]
	charge             *Array[float32]
	ptCone30, etCone20 *Array[float32]
	d0, d0Sig, z0      *Array[float32]
	trigMatched        *Array[bool]
	flag               *Array[uint32]
}

func bindLeptons(a *activator, slots int) *leptonColumns {
	return &leptonColumns{
		slots:       slots,
		pt:          array[float32](a, schema.LepPt, slots),
		eta:         array[float32](a, schema.LepEta, slots),
		phi:         array[float32](a, schema.LepPhi, slots),
		e:           array[float32](a, schema.LepE, slots),
		pdg:         array[int32](a, schema.LepType, slots),
		charge:      array[float32](a, schema.LepCharge, slots),
		ptCone30:    array[float32](a, schema.LepPtCone30, slots),
		etCone20:    array[float32](a, schema.LepEtCone20, slots),
		d0:          array[float32](a, schema.LepD0, slots),
		d0Sig:       array[float32](a, schema.LepD0Sig, slots),
		trigMatched: array[bool](a, schema.LepTrigMatched, slots),
		z0:          array[float32](a, schema.LepZ0, slots),
		flag:        array[uint32](a, schema.LepFlag, slots),
	}
}

// Lepton is a view over one slot of the current row
type Lepton struct {
	cols  *leptonColumns
	store *Store
	idx   int

	p4 cachedP4
}

func (l *Lepton) Index() int {
	return l.idx
}

// Pt in GeV
func (l *Lepton) Pt() float64 {
	return float64(l.cols.pt.At(l.idx)) / GeV
}

func (l *Lepton) Eta() float64 {
	return float64(l.cols.eta.At(l.idx))
}

func (l *Lepton) Phi() float64 {
	return float64(l.cols.phi.At(l.idx))
}

// E in GeV
func (l *Lepton) E() float64 {
	return float64(l.cols.e.At(l.idx)) / GeV
}

func (l *Lepton) IsTight() bool {
	return l.cols.flag.At(l.idx)&TightFlag != 0
}

func (l *Lepton) PdgID() int {
	return int(l.cols.pdg.At(l.idx))
}

func (l *Lepton) Charge() float64 {
	return float64(l.cols.charge.At(l.idx))
}

func (l *Lepton) PtCone30() float64 {
	return float64(l.cols.ptCone30.At(l.idx))
}

func (l *Lepton) EtCone20() float64 {
	return float64(l.cols.etCone20.At(l.idx))
}

// PtConeRel30 is the track isolation relative to native pt, +Inf when pt is zero
func (l *Lepton) PtConeRel30() float64 {
	return relative(l.cols.ptCone30.At(l.idx), l.cols.pt.At(l.idx))
}

// EtConeRel20 is the calorimeter isolation relative to native pt, +Inf when pt is zero
func (l *Lepton) EtConeRel20() float64 {
	return relative(l.cols.etCone20.At(l.idx), l.cols.pt.At(l.idx))
}

func relative(cone, pt float32) float64 {
	if pt == 0 {
		return math.Inf(1)
	}
	return float64(cone) / float64(pt)
}

func (l *Lepton) D0() float64 {
	return float64(l.cols.d0.At(l.idx))
}

func (l *Lepton) D0Significance() float64 {
	return float64(l.cols.d0Sig.At(l.idx))
}

func (l *Lepton) Z0() float64 {
	return float64(l.cols.z0.At(l.idx))
}

func (l *Lepton) IsTriggerMatched() bool {
	return l.cols.trigMatched.At(l.idx)
}

// P4 is computed once per row, in GeV
func (l *Lepton) P4() *fmom.PxPyPzE {
	return l.p4.get(l.store.version, func() fmom.PxPyPzE {
		return newPtEtaPhiE(l.Pt(), l.Eta(), l.Phi(), l.E())
	})
}

func (l *Lepton) String() string {
	return fmt.Sprintf("Lepton %d: pdgId: %d  pt: %4.3f  eta: %4.3f  phi: %4.3f", l.idx, l.PdgID(), l.Pt(), l.Eta(), l.Phi())
}
