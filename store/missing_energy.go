package store

import (
	"fmt"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
	"go-hep.org/x/hep/fmom"
)

type MissingEnergy struct {
	store *Store

	et  *Scalar[float32]
	phi *Scalar[float32]

	p4 cachedP4
}

func bindMissingEnergy(a *activator) MissingEnergy {
	return MissingEnergy{
		et:  scalar[float32](a, schema.MetEt),
		phi: scalar[float32](a, schema.MetPhi),
	}
}

// Et in GeV
func (m *MissingEnergy) Et() float64 {
	return float64(m.et.Get()) / GeV
}

func (m *MissingEnergy) Phi() float64 {
	return float64(m.phi.Get())
}

// P4 is transverse only: eta 0 and energy equal to Et
func (m *MissingEnergy) P4() *fmom.PxPyPzE {
	return m.p4.get(m.store.version, func() fmom.PxPyPzE {
		return newPtEtaPhiE(m.Et(), 0, m.Phi(), m.Et())
	})
}

func (m *MissingEnergy) String() string {
	return fmt.Sprintf("MET: et: %4.3f  phi: %4.3f", m.Et(), m.Phi())
}
