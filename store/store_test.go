package store

import (
	"math"
	"testing"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/arrowtable"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/eventgen"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTable(t *testing.T, layout []schema.Column, events ...eventgen.Event) *arrowtable.Table {
	t.Helper()

	b, err := arrowtable.NewBuilder(nil, layout)
	require.NoError(t, err)
	defer b.Release()

	require.NoError(t, eventgen.WriteAll(b, events...))

	tab, err := b.Table("store")
	require.NoError(t, err)
	t.Cleanup(func() { tab.Close() })
	return tab
}

func TestLeptonUnitsAndWeights(t *testing.T) {
	e := eventgen.NewEvent(1)
	e.McWeight = 2
	e.SFPileup = 0.5
	e.SFZVertex = 3
	e.SFEle = 0.9
	e.SFMuon = 0.8
	e.SFTrigger = 0.5
	e.MetEt = 42000
	e.MetPhi = 1.5
	e.SFBTag = 0.95
	e.SFJVF = 0.97
	e.Leptons = []eventgen.Lepton{eventgen.NewLepton(11, -1, 50, 0.5, 0.25)}
	e.Leptons[0].D0Sig = 2.5

	s, err := Open(buildTable(t, schema.EventLayout(), e))
	require.NoError(t, err)
	require.NoError(t, s.Position(0))

	leptons := s.Leptons()
	require.Len(t, leptons, 1)

	l := leptons[0]
	assert.InDelta(t, 50.0, l.Pt(), 1e-9)
	assert.InDelta(t, 0.01, l.PtConeRel30(), 1e-6)
	assert.True(t, l.IsTight())
	assert.Equal(t, 11, l.PdgID())
	assert.InDelta(t, 50.0, l.P4().Pt(), 1e-4)
	assert.InDelta(t, 2.5, l.D0Significance(), 1e-6)
	assert.True(t, l.IsTriggerMatched())

	ei := s.EventInfo()
	assert.InDelta(t, 3.0, ei.EventWeight(), 1e-6)
	assert.InDelta(t, 0.36, ei.ScaleFactor(), 1e-6)
	assert.InDelta(t, 0.95, ei.BTagScaleFactor(), 1e-6)
	assert.InDelta(t, 0.97, ei.JVFScaleFactor(), 1e-6)

	met := s.MissingEnergy()
	assert.InDelta(t, 42.0, met.Et(), 1e-9)
	assert.InDelta(t, 42.0, met.P4().E(), 1e-4)
	assert.InDelta(t, 0.0, met.P4().Pz(), 1e-9)
}

func TestCollectionsAreCappedAndTruncated(t *testing.T) {
	wide := eventgen.NewEvent(1)
	for i := range 37 {
		wide.Leptons = append(wide.Leptons, eventgen.NewLepton(13, 1, float32(100+i), 0, 0))
	}
	narrow := eventgen.NewEvent(2)
	narrow.Leptons = []eventgen.Lepton{eventgen.NewLepton(13, 1, 30, 0, 0)}

	s, err := Open(buildTable(t, schema.EventLayout(), wide, narrow))
	require.NoError(t, err)

	maximum, err := s.PeakMaximum(schema.LepN)
	require.NoError(t, err)
	assert.Equal(t, 37, maximum)
	assert.Equal(t, MaxSlots, s.LeptonSlots())

	require.NoError(t, s.Position(0))
	leptons := s.Leptons()
	require.Len(t, leptons, MaxSlots)
	assert.InDelta(t, 119.0, leptons[MaxSlots-1].Pt(), 1e-9)

	require.NoError(t, s.Position(1))
	require.Len(t, s.Leptons(), 1)
	assert.InDelta(t, 30.0, s.Leptons()[0].Pt(), 1e-9)
}

func TestCountLargerThanStoredValues(t *testing.T) {
	e := eventgen.NewEvent(1)
	e.Leptons = []eventgen.Lepton{eventgen.NewLepton(11, 1, 30, 0, 0)}
	claimed := uint32(3)
	e.LepN = &claimed

	s, err := Open(buildTable(t, schema.EventLayout(), e))
	require.NoError(t, err)
	require.NoError(t, s.Position(0))

	leptons := s.Leptons()
	require.Len(t, leptons, 3)
	assert.InDelta(t, 30.0, leptons[0].Pt(), 1e-9)
	assert.Zero(t, leptons[2].Pt())
	assert.True(t, math.IsInf(leptons[2].PtConeRel30(), 1))
}

func TestFourVectorFollowsPosition(t *testing.T) {
	first := eventgen.NewEvent(1)
	first.Leptons = []eventgen.Lepton{eventgen.NewLepton(11, 1, 40, 0, 0)}
	second := eventgen.NewEvent(2)
	second.Leptons = []eventgen.Lepton{eventgen.NewLepton(11, 1, 60, 0, 0)}

	s, err := Open(buildTable(t, schema.EventLayout(), first, second))
	require.NoError(t, err)

	require.NoError(t, s.Position(0))
	l := s.Leptons()[0]
	p := l.P4()
	assert.Same(t, p, l.P4())
	assert.InDelta(t, 40.0, p.Pt(), 1e-4)

	version := s.Version()
	require.NoError(t, s.Position(1))
	assert.Equal(t, version+1, s.Version())
	assert.InDelta(t, 60.0, s.Leptons()[0].P4().Pt(), 1e-4)
}

func TestJetViews(t *testing.T) {
	e := eventgen.NewEvent(1)
	j := eventgen.NewJet(45, 1.2, -0.5)
	j.MV1 = 0.8
	e.Jets = []eventgen.Jet{j, eventgen.NewJet(30, 0, 0)}

	s, err := Open(buildTable(t, schema.EventLayout(), e))
	require.NoError(t, err)
	require.NoError(t, s.Position(0))

	jets := s.Jets()
	require.Len(t, jets, 2)
	assert.InDelta(t, 45.0, jets[0].Pt(), 1e-4)
	assert.InDelta(t, 5000.0, jets[0].M(), 1e-4)
	assert.InDelta(t, 0.8, jets[0].MV1(), 1e-6)
	assert.InDelta(t, 0.9, jets[1].JVF(), 1e-6)
	assert.Equal(t, 2, s.JetSlots())
}

func TestMissingColumnFailsBinding(t *testing.T) {
	var layout []schema.Column
	for _, col := range schema.EventLayout() {
		if col.Name != schema.LepPtCone30 {
			layout = append(layout, col)
		}
	}

	b, err := arrowtable.NewBuilder(nil, layout)
	require.NoError(t, err)
	defer b.Release()
	require.NoError(t, b.EndRow())
	tab, err := b.Table("partial")
	require.NoError(t, err)
	defer tab.Close()

	_, err = Open(tab)
	require.Error(t, err)
	assert.ErrorIs(t, err, table.ErrColumnNotFound)

	s := New(tab)
	_, err = ActivateScalar[float32](s, "no_such_column")
	assert.ErrorIs(t, err, table.ErrColumnNotFound)
}

func TestPositionOutOfRange(t *testing.T) {
	s, err := Open(buildTable(t, schema.EventLayout(), eventgen.NewEvent(1)))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Position(1), table.ErrRowOutOfRange)
	assert.ErrorIs(t, s.Position(-1), table.ErrRowOutOfRange)
	assert.Equal(t, -1, s.Row())
}

func TestInactiveColumnsAreNotRead(t *testing.T) {
	e := eventgen.NewEvent(7)
	e.RunNumber = 99
	s := New(buildTable(t, schema.EventLayout(), e))

	run, err := ActivateScalar[uint32](s, schema.RunNumber)
	require.NoError(t, err)
	require.NoError(t, s.Position(0))
	assert.Equal(t, uint32(99), run.Get())
	assert.Len(t, s.binders, 1)
}
