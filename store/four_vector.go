package store

import (
	"math"

	"go-hep.org/x/hep/fmom"
)

func newPtEtaPhiE(pt, eta, phi, e float64) fmom.PxPyPzE {
	return fmom.NewPxPyPzE(pt*math.Cos(phi), pt*math.Sin(phi), pt*math.Sinh(eta), e)
}

// cachedP4 recomputes its vector once per store version
type cachedP4 struct {
	p4      fmom.PxPyPzE
	version uint64
	valid   bool
}

func (c *cachedP4) get(version uint64, compute func() fmom.PxPyPzE) *fmom.PxPyPzE {
	if !c.valid || c.version != version {
		c.p4 = compute()
		c.version = version
		c.valid = true
	}
	return &c.p4
}
