package analyses

import (
	"context"
	"math"
	"testing"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/analysis"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/arrowtable"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/eventgen"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, name string, events ...eventgen.Event) *analysis.Analysis {
	t.Helper()

	b, err := arrowtable.NewBuilder(nil, schema.EventLayout())
	require.NoError(t, err)
	defer b.Release()
	require.NoError(t, eventgen.WriteAll(b, events...))
	tab, err := b.Table("sample")
	require.NoError(t, err)
	defer tab.Close()

	policy, err := New(name)
	require.NoError(t, err)

	a := analysis.New("sample."+name, policy, false)
	_, err = a.Run(context.Background(), tab, analysis.RunOptions{MaxEvents: analysis.DefaultMaxEvents, Fraction: 1})
	require.NoError(t, err)
	return a
}

func lepton(pdg int32, charge, pt, eta, phi float32) eventgen.Lepton {
	return eventgen.NewLepton(pdg, charge, pt, eta, phi)
}

func raw(a *analysis.Analysis, label string) int64 {
	return a.Counter().Get(label).Raw
}

func TestFactory(t *testing.T) {
	assert.Equal(t, []string{"HWWAnalysis", "WAnalysis", "WZAnalysis", "ZAnalysis", "ZPrimeAnalysis", "ZZAnalysis"}, Names())

	first, err := New("ZAnalysis")
	require.NoError(t, err)
	second, err := New("ZAnalysis")
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	_, err = New("TTbarAnalysis")
	assert.ErrorContains(t, err, "unknown analysis")
}

func TestZAnalysisThreeRows(t *testing.T) {
	rowA := eventgen.NewEvent(1)
	rowA.Leptons = []eventgen.Lepton{lepton(11, -1, 45.6, 0, 0), lepton(-11, 1, 45.6, 0, math.Pi)}

	rowB := eventgen.NewEvent(2)
	rowB.Leptons = []eventgen.Lepton{lepton(13, 1, 40, 0, 0)}

	rowC := eventgen.NewEvent(3)
	rowC.Leptons = []eventgen.Lepton{lepton(11, -1, 45.6, 0, 0), lepton(-11, 1, 45.6, 0, math.Pi)}
	rowC.Leptons[1].Flag = 0

	a := run(t, "ZAnalysis", rowA, rowB, rowC)

	assert.Equal(t, int64(3), raw(a, analysis.LabelAll))
	assert.InDelta(t, 3.0, a.Counter().Get(analysis.LabelAll).Weighted, 1e-9)
	assert.Equal(t, int64(3), raw(a, "EventCuts"))
	assert.InDelta(t, 3.0, a.Counter().Get("EventCuts").Weighted, 1e-9)
	assert.Equal(t, int64(1), raw(a, "2 good leptons"))
	assert.Equal(t, int64(1), raw(a, "Z window"))
	assert.Equal(t, int64(1), raw(a, analysis.LabelFinal))
	assert.InDelta(t, 1.0, a.Counter().Get(analysis.LabelFinal).Weighted, 1e-9)

	mass, ok := a.Histogram("invMass")
	require.True(t, ok)
	assert.Equal(t, int64(1), mass.Entries())
	assert.Equal(t, 31, a.Histograms().Len())
}

func TestZAnalysisRejectsPairs(t *testing.T) {
	sameCharge := eventgen.NewEvent(1)
	sameCharge.Leptons = []eventgen.Lepton{lepton(11, 1, 45.6, 0, 0), lepton(11, 1, 45.6, 0, math.Pi)}

	mixed := eventgen.NewEvent(2)
	mixed.Leptons = []eventgen.Lepton{lepton(11, -1, 45.6, 0, 0), lepton(-13, 1, 45.6, 0, math.Pi)}

	offPeak := eventgen.NewEvent(3)
	offPeak.Leptons = []eventgen.Lepton{lepton(13, -1, 30, 0, 0), lepton(-13, 1, 30, 0, math.Pi)}

	a := run(t, "ZAnalysis", sameCharge, mixed, offPeak)
	assert.Equal(t, int64(3), raw(a, "2 good leptons"))
	assert.Equal(t, int64(2), raw(a, "opposite charge"))
	assert.Equal(t, int64(1), raw(a, "same flavour"))
	assert.Equal(t, int64(0), raw(a, "Z window"))
	assert.Equal(t, int64(0), raw(a, analysis.LabelFinal))
}

func TestWAnalysis(t *testing.T) {
	pass := eventgen.NewEvent(1)
	pass.Leptons = []eventgen.Lepton{lepton(13, 1, 40, 0, 0)}
	pass.MetEt = 40000
	pass.MetPhi = math.Pi

	lowMet := pass
	lowMet.EventNumber = 2
	lowMet.MetEt = 20000

	a := run(t, "WAnalysis", pass, lowMet)
	assert.Equal(t, int64(2), raw(a, "1 good lepton"))
	assert.Equal(t, int64(1), raw(a, "W candidate"))
	assert.Equal(t, int64(1), raw(a, analysis.LabelFinal))

	mt, ok := a.Histogram("WtMass")
	require.True(t, ok)
	assert.Equal(t, int64(1), mt.Entries())
}

func TestZZAnalysis(t *testing.T) {
	e := eventgen.NewEvent(1)
	e.Leptons = []eventgen.Lepton{
		lepton(11, -1, 45.6, 0, 0),
		lepton(-11, 1, 45.6, 0, math.Pi),
		lepton(13, -1, 45.6, 0, math.Pi/2),
		lepton(-13, 1, 45.6, 0, -math.Pi/2),
	}

	tooFew := eventgen.NewEvent(2)
	tooFew.Leptons = e.Leptons[:3]

	a := run(t, "ZZAnalysis", e, tooFew)
	assert.Equal(t, int64(1), raw(a, "4 loose leptons"))
	assert.Equal(t, int64(1), raw(a, "ZZ candidate"))
	assert.Equal(t, int64(1), raw(a, analysis.LabelFinal))

	for _, name := range []string{"invMass1", "invMass2"} {
		h, ok := a.Histogram(name)
		require.True(t, ok)
		assert.Equal(t, int64(1), h.Entries(), name)
	}
	leptons, ok := a.Histogram("lep_pt")
	require.True(t, ok)
	assert.Equal(t, int64(4), leptons.Entries())
}

func TestWZAnalysis(t *testing.T) {
	e := eventgen.NewEvent(1)
	e.Leptons = []eventgen.Lepton{
		lepton(11, -1, 45.6, 0, 0),
		lepton(-11, 1, 45.6, 0, math.Pi),
		lepton(13, 1, 40, 0, math.Pi/2),
	}
	e.MetEt = 40000
	e.MetPhi = -math.Pi / 2

	a := run(t, "WZAnalysis", e)
	assert.Equal(t, int64(1), raw(a, "3 good leptons"))
	assert.Equal(t, int64(1), raw(a, "WZ candidate"))

	mt, ok := a.Histogram("WtMass")
	require.True(t, ok)
	assert.InDelta(t, 80.0, mt.XMean(), 1e-3)
}

func TestHWWAnalysis(t *testing.T) {
	e := eventgen.NewEvent(1)
	e.Leptons = []eventgen.Lepton{lepton(11, -1, 35, 0, 0), lepton(-13, 1, 30, 0, 1)}
	e.MetEt = 30000
	e.MetPhi = -2.6

	withJet := e
	withJet.EventNumber = 2
	withJet.Jets = []eventgen.Jet{eventgen.NewJet(40, 0, 2)}

	a := run(t, "HWWAnalysis", e, withJet)
	assert.Equal(t, int64(2), raw(a, "2 good leptons"))
	assert.Equal(t, int64(1), raw(a, "0 jets"))
	assert.Equal(t, int64(1), raw(a, "background suppression"))
	assert.Equal(t, int64(1), raw(a, "H topology"))
	assert.Equal(t, int64(1), raw(a, analysis.LabelFinal))

	dphi, ok := a.Histogram("deltaphill")
	require.True(t, ok)
	assert.InDelta(t, 1.0, dphi.XMean(), 1e-4)
}

func TestHWWAnalysisIgnoresAngleSign(t *testing.T) {
	e := eventgen.NewEvent(1)
	e.Leptons = []eventgen.Lepton{lepton(11, -1, 35, 0, 0), lepton(-13, 1, 30, 0, 1)}
	e.MetEt = 30000
	e.MetPhi = -2.6

	mirrored := e
	mirrored.EventNumber = 2
	mirrored.Leptons = []eventgen.Lepton{lepton(11, -1, 35, 0, 0), lepton(-13, 1, 30, 0, -1)}
	mirrored.MetPhi = 2.6

	a := run(t, "HWWAnalysis", e, mirrored)
	assert.Equal(t, int64(2), raw(a, "background suppression"))
	assert.Equal(t, int64(2), raw(a, "H topology"))
	assert.Equal(t, int64(2), raw(a, analysis.LabelFinal))
}

func TestZPrimeAnalysis(t *testing.T) {
	e := eventgen.NewEvent(1)
	e.Leptons = []eventgen.Lepton{lepton(11, 1, 40, 0, 0)}
	e.MetEt = 50000
	e.MetPhi = math.Pi
	for i := range 4 {
		j := eventgen.NewJet(60, 0, float32(i))
		if i == 0 {
			j.MV1 = 0.9
		}
		e.Jets = append(e.Jets, j)
	}

	untagged := e
	untagged.EventNumber = 2
	untagged.Jets = append([]eventgen.Jet(nil), e.Jets...)
	untagged.Jets[0].MV1 = 0.1

	a := run(t, "ZPrimeAnalysis", e, untagged)
	assert.Equal(t, int64(2), raw(a, "etmiss"))
	assert.Equal(t, int64(2), raw(a, "4 jets"))
	assert.Equal(t, int64(1), raw(a, "btag"))
	assert.Equal(t, int64(1), raw(a, "masses"))

	jets, ok := a.Histogram("jet_pt")
	require.True(t, ok)
	assert.Equal(t, int64(4), jets.Entries())
}

func TestGeneratedSampleIsMonotonic(t *testing.T) {
	b, err := arrowtable.NewBuilder(nil, schema.EventLayout())
	require.NoError(t, err)
	defer b.Release()
	require.NoError(t, eventgen.Generate(b, 1000, 3))
	tab, err := b.Table("toy")
	require.NoError(t, err)
	defer tab.Close()

	flows := map[string][]string{
		"ZAnalysis":      {"EventCuts", "2 good leptons", "opposite charge", "same flavour", "Z window"},
		"WAnalysis":      {"EventCuts", "1 good lepton", "W candidate"},
		"HWWAnalysis":    {"EventCuts", "2 good leptons", "0 jets", "opposite charge", "background suppression", "H topology"},
		"ZPrimeAnalysis": {"EventCuts", "1 good lepton", "etmiss", "4 jets", "btag", "masses"},
	}

	for name, labels := range flows {
		policy, err := New(name)
		require.NoError(t, err)
		a := analysis.New("toy."+name, policy, false)
		_, err = a.Run(context.Background(), tab, analysis.RunOptions{MaxEvents: analysis.DefaultMaxEvents, Fraction: 1})
		require.NoError(t, err)

		previous := raw(a, analysis.LabelAll)
		for _, label := range labels {
			current := raw(a, label)
			assert.LessOrEqual(t, current, previous, "%s %s", name, label)
			previous = current
		}
		assert.Equal(t, previous, raw(a, analysis.LabelFinal), name)
	}
}

func TestPermutations(t *testing.T) {
	seen := map[[2]int]bool{}
	permutations(4, 2, func(idx []int) bool {
		seen[[2]int{idx[0], idx[1]}] = true
		return true
	})
	assert.Len(t, seen, 12)
	assert.False(t, seen[[2]int{1, 1}])

	calls := 0
	permutations(5, 3, func([]int) bool {
		calls++
		return calls < 4
	})
	assert.Equal(t, 4, calls)

	permutations(2, 3, func([]int) bool {
		t.Fatal("no permutation expected")
		return false
	})
}
