package hist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/compression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/hbook"
)

type memorySink struct {
	names []string
	hists map[string]*hbook.H1D
}

func (m *memorySink) Write(name string, h *hbook.H1D) error {
	if m.hists == nil {
		m.hists = make(map[string]*hbook.H1D)
	}
	m.names = append(m.names, name)
	m.hists[name] = h
	return nil
}

func TestRegistryKeepsFirst(t *testing.T) {
	r := NewRegistry("sample.ZAnalysis")

	first := New("mass", "first", 10, 0, 100)
	second := New("mass", "second", 20, 0, 200)

	assert.True(t, r.Register("mass", first))
	assert.False(t, r.Register("mass", second))

	got, ok := r.Get("mass")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, []string{"mass"}, r.Names())

	_, ok = r.Get("unknown")
	assert.False(t, ok)
}

func TestRegisterStandard(t *testing.T) {
	r := NewRegistry("standard")

	h := r.RegisterStandard("leadlep_pt")
	require.NotNil(t, h)
	assert.Len(t, h.Binning.Bins, 20)
	assert.Equal(t, 0.0, h.XMin())
	assert.Equal(t, 200.0, h.XMax())

	assert.Same(t, h, r.RegisterStandard("leadlep_pt"))
	assert.Nil(t, r.RegisterStandard("no_such_histogram"))
	assert.Equal(t, []string{"leadlep_pt"}, r.Names())

	jet, ok := Standard("jet_m")
	require.True(t, ok)
	assert.Equal(t, 20000.0, jet.XMax())
	assert.Equal(t, "jet_m", jet.Name())
}

func TestStandardCatalog(t *testing.T) {
	names := StandardNames()
	assert.Len(t, names, 12+30)
	for _, prefix := range []string{"lep", "leadlep", "traillep"} {
		for _, suffix := range []string{"pt", "eta", "E", "phi", "charge", "type", "ptconerel30", "etconerel20", "z0", "d0"} {
			assert.Contains(t, names, prefix+"_"+suffix)
		}
	}
}

func TestWriteAllOnce(t *testing.T) {
	r := NewRegistry("once")
	r.RegisterStandard("etmiss")
	r.Register("custom", New("custom", "Custom", 5, 0, 5))

	sink := &memorySink{}
	require.NoError(t, r.WriteAll(sink))
	assert.Equal(t, []string{"etmiss", "custom"}, sink.names)

	assert.ErrorIs(t, r.WriteAll(sink), ErrAlreadyWritten)
	assert.Len(t, sink.names, 2)
}

func TestOutputFileRoundTrip(t *testing.T) {
	for _, codec := range []compression.Codec{compression.Lz4, compression.Zstd, compression.None} {
		t.Run(codec.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sample.hist")

			r := NewRegistry("roundtrip")
			mass := r.RegisterStandard("invMass")
			mass.Fill(91, 1.5)
			mass.Fill(89, 0.5)
			mass.Fill(150, 1)
			met := r.RegisterStandard("etmiss")
			met.Fill(35, 2)

			out := CreateOutputFile(path, "sample", codec)
			require.NoError(t, r.WriteAll(out))
			require.NoError(t, out.Close())

			f, err := OpenOutputFile(path)
			require.NoError(t, err)

			assert.Equal(t, "sample", f.Sample)
			assert.Equal(t, codec, f.Codec)
			assert.Equal(t, []string{"invMass", "etmiss"}, f.Names())

			got, err := f.Get("invMass")
			require.NoError(t, err)
			assert.Equal(t, mass.Entries(), got.Entries())
			assert.InDelta(t, mass.SumW(), got.SumW(), 1e-9)
			assert.Len(t, got.Binning.Bins, 30)

			_, err = f.Get("missing")
			assert.ErrorIs(t, err, ErrHistogramNotFound)

			require.NoError(t, f.Close())
			_, err = f.Get("invMass")
			assert.ErrorIs(t, err, ErrFileClosed)
			assert.NoError(t, f.Close())
		})
	}
}

func TestEmptyAndBrokenOutputFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.hist")
	out := CreateOutputFile(path, "x", compression.None)
	require.NoError(t, out.Close())

	f, err := OpenOutputFile(path)
	require.NoError(t, err)
	assert.Empty(t, f.Names())
	require.NoError(t, f.Close())

	garbage := filepath.Join(dir, "garbage.hist")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not histograms"), 0644))
	_, err = OpenOutputFile(garbage)
	assert.ErrorIs(t, err, ErrBadOutputMagic)

	_, err = OpenOutputFile(filepath.Join(dir, "missing.hist"))
	assert.Error(t, err)
}

func TestScaleFactor(t *testing.T) {
	assert.InDelta(t, 2.0, ScaleFactor(1000, 4, 2000, 1), 1e-12)
	assert.InDelta(t, 4.0, ScaleFactor(1000, 4, 2000, 0.5), 1e-12)
}
