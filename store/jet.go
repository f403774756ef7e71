package store

import (
	"fmt"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
	"go-hep.org/x/hep/fmom"
)

type jetColumns struct {
	slots int

	pt, eta, phi, e *Array[float32]
	m, jvf, mv1     *Array[float32]
}

func bindJets(a *activator, slots int) *jetColumns {
	return &jetColumns{
		slots: slots,
		pt:    array[float32](a, schema.JetPt, slots),
		eta:   array[float32](a, schema.JetEta, slots),
		e:     array[float32](a, schema.JetE, slots),
		phi:   array[float32](a, schema.JetPhi, slots),
		m:     array[float32](a, schema.JetM, slots),
		jvf:   array[float32](a, schema.JetJVF, slots),
		mv1:   array[float32](a, schema.JetMV1, slots),
	}
}

type Jet struct {
	cols  *jetColumns
	store *Store
	idx   int

	p4 cachedP4
}

func (j *Jet) Index() int {
	return j.idx
}

// Pt in GeV
func (j *Jet) Pt() float64 {
	return float64(j.cols.pt.At(j.idx)) / GeV
}

func (j *Jet) Eta() float64 {
	return float64(j.cols.eta.At(j.idx))
}

func (j *Jet) Phi() float64 {
	return float64(j.cols.phi.At(j.idx))
}

// E in GeV
func (j *Jet) E() float64 {
	return float64(j.cols.e.At(j.idx)) / GeV
}

// M is kept in native units
func (j *Jet) M() float64 {
	return float64(j.cols.m.At(j.idx))
}

func (j *Jet) JVF() float64 {
	return float64(j.cols.jvf.At(j.idx))
}

func (j *Jet) MV1() float64 {
	return float64(j.cols.mv1.At(j.idx))
}

func (j *Jet) P4() *fmom.PxPyPzE {
	return j.p4.get(j.store.version, func() fmom.PxPyPzE {
		return newPtEtaPhiE(j.Pt(), j.Eta(), j.Phi(), j.E())
	})
}

func (j *Jet) String() string {
	return fmt.Sprintf("Jet %d: pt: %4.3f  eta: %4.3f  phi: %4.3f", j.idx, j.Pt(), j.Eta(), j.Phi())
}
