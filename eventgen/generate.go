package eventgen

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/table"
)

const zMassMeV = 91187.6

// Generate writes n toy events, the same seed always produces the same rows
func Generate(w table.RowWriter, n int, seed uint64) error {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	selected := 0
	for i := range n {
		e := randomEvent(rng, uint32(i))
		if len(e.Leptons) == 2 {
			selected++
		}
		if err := e.WriteTo(w); err != nil {
			return err
		}
	}

	slog.Info("generated toy events", "events", n, "dilepton", selected, "seed", seed)
	return nil
}

func randomEvent(rng *rand.Rand, number uint32) Event {
	e := NewEvent(number)
	e.McWeight = float32(1 + 0.1*rng.NormFloat64())
	e.SFPileup = float32(1 + 0.05*rng.NormFloat64())
	e.TrigE = rng.Float64() < 0.6
	e.TrigM = !e.TrigE || rng.Float64() < 0.2
	e.PassGRL = rng.Float64() < 0.98
	e.HasGoodVertex = rng.Float64() < 0.97
	e.VertexZ = float32(40 * rng.NormFloat64())
	e.Vertices = uint32(1 + rng.IntN(20))

	switch r := rng.Float64(); {
	case r < 0.5:
		e.Leptons = zDecay(rng)
	case r < 0.8:
		e.Leptons = []Lepton{randomLepton(rng)}
	default:
		for range rng.IntN(4) {
			e.Leptons = append(e.Leptons, randomLepton(rng))
		}
	}

	for range rng.IntN(5) {
		pt := float32(20 + 60*rng.ExpFloat64())
		j := NewJet(pt, float32(2.8*(2*rng.Float64()-1)), phi(rng))
		j.JVF = float32(rng.Float64())
		j.MV1 = float32(rng.Float64())
		e.Jets = append(e.Jets, j)
	}

	e.MetEt = float32(1000 * 25 * rng.ExpFloat64())
	e.MetPhi = phi(rng)

	return e
}

// zDecay produces a back-to-back same-flavour pair near the Z mass
func zDecay(rng *rand.Rand) []Lepton {
	pdg := int32(11)
	if rng.IntN(2) == 1 {
		pdg = 13
	}

	mass := zMassMeV + 2495*rng.NormFloat64()
	eta1 := 2 * (2*rng.Float64() - 1)
	eta2 := 2 * (2*rng.Float64() - 1)
	phi1 := float64(phi(rng))

	// massless leptons opposite in phi: m^2 = 2 pt^2 (cosh(deta) + 1)
	pt := mass / math.Sqrt(2*(math.Cosh(eta1-eta2)+1))

	l1 := NewLepton(pdg, -1, float32(pt/1000), float32(eta1), float32(phi1))
	l2 := NewLepton(-pdg, 1, float32(pt/1000), float32(eta2), float32(math.Remainder(phi1+math.Pi, 2*math.Pi)))

	if rng.Float64() < 0.1 {
		l2.Flag = 0
	}

	return []Lepton{l1, l2}
}

func randomLepton(rng *rand.Rand) Lepton {
	pdg := int32(11)
	if rng.IntN(2) == 1 {
		pdg = 13
	}
	charge := float32(1)
	if rng.IntN(2) == 1 {
		charge = -1
	}

	l := NewLepton(pdg, charge, float32(10+40*rng.ExpFloat64()), float32(2.5*(2*rng.Float64()-1)), phi(rng))
	l.PtCone30 = l.Pt * float32(0.3*rng.Float64())
	l.EtCone20 = l.Pt * float32(0.3*rng.Float64())
	if rng.Float64() < 0.3 {
		l.Flag = 0
	}
	return l
}

func phi(rng *rand.Rand) float32 {
	return float32(math.Pi * (2*rng.Float64() - 1))
}

func energy(pt, eta, m float32) float32 {
	p := float64(pt) * math.Cosh(float64(eta))
	return float32(math.Sqrt(p*p + float64(m)*float64(m)))
}
