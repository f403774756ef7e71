package eventgen

import (
	"fmt"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/table"
)

// TightFlag marks a lepton passing tight identification
const TightFlag = 512

// Event is one row of the event layout in native units (MeV)
type Event struct {
	EventNumber   uint32
	RunNumber     uint32
	McWeight      float32
	PassGRL       bool
	HasGoodVertex bool
	TrigE         bool
	TrigM         bool

	SFPileup  float32
	SFEle     float32
	SFMuon    float32
	SFBTag    float32
	SFTrigger float32
	SFJVF     float32
	SFZVertex float32

	VertexZ  float32
	Vertices uint32

	Leptons []Lepton
	Jets    []Jet

	MetEt  float32
	MetPhi float32

	// overrides len(Leptons) when set, used to store inconsistent counts
	LepN *uint32
}

type Lepton struct {
	Pt, Eta, Phi, E float32
	Type            int32
	Charge          float32
	PtCone30        float32
	EtCone20        float32
	D0, D0Sig, Z0   float32
	TrigMatched     bool
	Flag            uint32
}

type Jet struct {
	Pt, Eta, Phi, E float32
	M, JVF, MV1     float32
}

// NewEvent returns an event passing the standard event cuts with unit weights
func NewEvent(number uint32) Event {
	return Event{
		EventNumber:   number,
		RunNumber:     195847,
		McWeight:      1,
		PassGRL:       true,
		HasGoodVertex: true,
		TrigE:         true,
		SFPileup:      1,
		SFEle:         1,
		SFMuon:        1,
		SFBTag:        1,
		SFTrigger:     1,
		SFJVF:         1,
		SFZVertex:     1,
		Vertices:      1,
	}
}

// NewLepton builds an isolated tight lepton, pt and e in GeV
func NewLepton(pdg int32, charge float32, ptGeV, eta, phi float32) Lepton {
	pt := ptGeV * 1000
	return Lepton{
		Pt:          pt,
		Eta:         eta,
		Phi:         phi,
		E:           energy(pt, eta, 0),
		Type:        pdg,
		Charge:      charge,
		PtCone30:    0.01 * pt,
		EtCone20:    0.01 * pt,
		TrigMatched: true,
		Flag:        TightFlag,
	}
}

// NewJet builds a jet with high vertex fraction, pt in GeV
func NewJet(ptGeV, eta, phi float32) Jet {
	pt := ptGeV * 1000
	return Jet{Pt: pt, Eta: eta, Phi: phi, E: energy(pt, eta, 0), M: 5000, JVF: 0.9}
}

func (e Event) WriteTo(w table.RowWriter) error {
	n := len(e.Leptons)
	lepN := uint32(n)
	if e.LepN != nil {
		lepN = *e.LepN
	}

	lep := struct {
		pt, eta, phi, e, charge, ptcone, etcone, d0, d0sig, z0 []float32
		typ                                                   []int32
		matched                                               []bool
		flag                                                  []uint32
	}{}

	for _, l := range e.Leptons {
		lep.pt = append(lep.pt, l.Pt)
		lep.eta = append(lep.eta, l.Eta)
		lep.phi = append(lep.phi, l.Phi)
		lep.e = append(lep.e, l.E)
		lep.charge = append(lep.charge, l.Charge)
		lep.ptcone = append(lep.ptcone, l.PtCone30)
		lep.etcone = append(lep.etcone, l.EtCone20)
		lep.d0 = append(lep.d0, l.D0)
		lep.d0sig = append(lep.d0sig, l.D0Sig)
		lep.z0 = append(lep.z0, l.Z0)
		lep.typ = append(lep.typ, l.Type)
		lep.matched = append(lep.matched, l.TrigMatched)
		lep.flag = append(lep.flag, l.Flag)
	}

	jet := struct{ pt, eta, phi, e, m, jvf, mv1 []float32 }{}
	for _, j := range e.Jets {
		jet.pt = append(jet.pt, j.Pt)
		jet.eta = append(jet.eta, j.Eta)
		jet.phi = append(jet.phi, j.Phi)
		jet.e = append(jet.e, j.E)
		jet.m = append(jet.m, j.M)
		jet.jvf = append(jet.jvf, j.JVF)
		jet.mv1 = append(jet.mv1, j.MV1)
	}

	values := []struct {
		name  string
		value any
	}{
		{schema.EventNumber, e.EventNumber},
		{schema.RunNumber, e.RunNumber},
		{schema.McWeight, e.McWeight},
		{schema.PassGRL, e.PassGRL},
		{schema.HasGoodVertex, e.HasGoodVertex},
		{schema.TrigE, e.TrigE},
		{schema.TrigM, e.TrigM},
		{schema.SFPileup, e.SFPileup},
		{schema.SFEle, e.SFEle},
		{schema.SFMuon, e.SFMuon},
		{schema.SFBTag, e.SFBTag},
		{schema.SFTrigger, e.SFTrigger},
		{schema.SFJVF, e.SFJVF},
		{schema.SFZVertex, e.SFZVertex},
		{schema.VertexZ, e.VertexZ},
		{schema.Vertices, e.Vertices},

		{schema.LepN, lepN},
		{schema.LepPt, lep.pt},
		{schema.LepEta, lep.eta},
		{schema.LepPhi, lep.phi},
		{schema.LepE, lep.e},
		{schema.LepType, lep.typ},
		{schema.LepCharge, lep.charge},
		{schema.LepPtCone30, lep.ptcone},
		{schema.LepEtCone20, lep.etcone},
		{schema.LepD0, lep.d0},
		{schema.LepD0Sig, lep.d0sig},
		{schema.LepTrigMatched, lep.matched},
		{schema.LepZ0, lep.z0},
		{schema.LepFlag, lep.flag},

		{schema.JetN, uint32(len(e.Jets))},
		{schema.JetPt, jet.pt},
		{schema.JetEta, jet.eta},
		{schema.JetE, jet.e},
		{schema.JetPhi, jet.phi},
		{schema.JetM, jet.m},
		{schema.JetJVF, jet.jvf},
		{schema.JetMV1, jet.mv1},

		{schema.MetEt, e.MetEt},
		{schema.MetPhi, e.MetPhi},
	}

	for _, v := range values {
		if err := w.Set(v.name, v.value); err != nil {
			return fmt.Errorf("unable to set %s of event %d: %w", v.name, e.EventNumber, err)
		}
	}

	return w.EndRow()
}

// WriteAll writes events in order
func WriteAll(w table.RowWriter, events ...Event) error {
	for _, e := range events {
		if err := e.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}
