package selection

import (
	"math"
	"testing"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/arrowtable"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/eventgen"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openEvent(t *testing.T, e eventgen.Event) *store.Store {
	t.Helper()

	b, err := arrowtable.NewBuilder(nil, schema.EventLayout())
	require.NoError(t, err)
	defer b.Release()
	require.NoError(t, e.WriteTo(b))

	tab, err := b.Table("selection")
	require.NoError(t, err)
	t.Cleanup(func() { tab.Close() })

	s, err := store.Open(tab)
	require.NoError(t, err)
	require.NoError(t, s.Position(0))
	return s
}

func TestSelectAndSortIsStable(t *testing.T) {
	type item struct {
		name string
		key  float64
	}
	items := []item{{"a", 1}, {"b", 3}, {"c", 1}, {"d", -1}, {"e", 3}}

	got := SelectAndSort(items, func(it item) bool { return it.key > 0 }, func(it item) float64 { return it.key })

	var names []string
	for _, it := range got {
		names = append(names, it.name)
	}
	assert.Equal(t, []string{"b", "e", "a", "c"}, names)
	assert.Len(t, items, 5)
}

func TestLeptonSelection(t *testing.T) {
	e := eventgen.NewEvent(1)
	good := eventgen.NewLepton(11, -1, 40, 0, 0)
	soft := eventgen.NewLepton(13, 1, 20, 0, 1)
	loose := eventgen.NewLepton(13, 1, 60, 0, 2)
	loose.Flag = 0
	nonIsolated := eventgen.NewLepton(11, 1, 50, 0, 3)
	nonIsolated.EtCone20 = 0.2 * nonIsolated.Pt
	tau := eventgen.NewLepton(15, 1, 70, 0, -1)
	negativeMuon := eventgen.NewLepton(-13, 1, 80, 0, -2)
	e.Leptons = []eventgen.Lepton{good, soft, loose, nonIsolated, tau, negativeMuon}

	s := openEvent(t, e)
	leptons := s.Leptons()
	require.Len(t, leptons, 6)

	assert.True(t, IsGoodLepton(leptons[0]))
	assert.False(t, IsGoodLepton(leptons[1]))
	assert.False(t, IsGoodLepton(leptons[2]))
	assert.False(t, IsGoodLepton(leptons[3]))
	assert.False(t, IsGoodLepton(leptons[4]))
	assert.True(t, IsGoodLepton(leptons[5]))

	selected := SelectAndSort(leptons, IsGoodLepton, ByPt[*store.Lepton])
	require.Len(t, selected, 2)
	assert.Equal(t, 5, selected[0].Index())
	assert.Equal(t, 0, selected[1].Index())
}

func TestZeroPtFailsIsolation(t *testing.T) {
	e := eventgen.NewEvent(1)
	l := eventgen.NewLepton(11, 1, 0, 0, 0)
	e.Leptons = []eventgen.Lepton{l}

	s := openEvent(t, e)
	lep := s.Leptons()[0]
	assert.True(t, math.IsInf(lep.EtConeRel20(), 1))
	assert.False(t, IsGoodElectron(lep))
}

func TestJetSelection(t *testing.T) {
	e := eventgen.NewEvent(1)
	central := eventgen.NewJet(30, 0.5, 0)
	pileup := eventgen.NewJet(30, 0.5, 1)
	pileup.JVF = 0.1
	hard := eventgen.NewJet(60, 0.5, 2)
	hard.JVF = 0.1
	forwardEdge := eventgen.NewJet(30, 2.45, 0)
	forwardEdge.JVF = 0.1
	outside := eventgen.NewJet(100, 2.7, 0)
	soft := eventgen.NewJet(20, 0, 0)
	e.Jets = []eventgen.Jet{central, pileup, hard, forwardEdge, outside, soft}

	s := openEvent(t, e)
	jets := s.Jets()
	require.Len(t, jets, 6)

	var got []bool
	for _, j := range jets {
		got = append(got, IsGoodJet(j))
	}
	assert.Equal(t, []bool{true, false, true, true, false, false}, got)
}

func TestStandardEventCuts(t *testing.T) {
	e := eventgen.NewEvent(1)
	assert.True(t, StandardEventCuts(openEvent(t, e).EventInfo()))

	e.TrigE = false
	assert.False(t, StandardEventCuts(openEvent(t, e).EventInfo()))

	e.TrigM = true
	e.PassGRL = false
	assert.False(t, StandardEventCuts(openEvent(t, e).EventInfo()))

	e.PassGRL = true
	e.HasGoodVertex = false
	assert.False(t, StandardEventCuts(openEvent(t, e).EventInfo()))
}

func TestKinematics(t *testing.T) {
	e := eventgen.NewEvent(1)
	e.Leptons = []eventgen.Lepton{
		eventgen.NewLepton(13, -1, 45, 0, 0),
		eventgen.NewLepton(-13, 1, 45, 0, math.Pi),
		eventgen.NewLepton(13, -1, 30, 0, 1),
	}
	e.MetEt = 40000
	e.MetPhi = math.Pi

	s := openEvent(t, e)
	leptons := s.Leptons()
	met := s.MissingEnergy()

	// back to back massless leptons
	assert.InDelta(t, 90.0, InvariantMass(leptons[0], leptons[1]), 1e-3)
	assert.InDelta(t, math.Abs(90.0-ZMass), ZWindow(leptons[0], leptons[1]), 1e-3)
	assert.InDelta(t, math.Pi, math.Abs(DeltaPhi(leptons[0], leptons[1])), 1e-6)

	assert.True(t, IsValidPair(leptons[0], leptons[1]))
	assert.False(t, IsValidPair(leptons[0], leptons[2]))

	// mT = sqrt(2*45*40*2)
	assert.InDelta(t, math.Sqrt(2*45*40*2), TransverseMass(leptons[0], met), 1e-3)
	assert.InDelta(t, 0.0, TransverseMass(leptons[1], met), 1e-3)
}
