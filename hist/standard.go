package hist

import (
	"slices"

	"go-hep.org/x/hep/hbook"
)

type binning struct {
	bins   int
	lo, hi float64
	title  string
}

var standard = map[string]binning{
	"vxp_z":  {40, -200, 200, "Primary Vertex Position; z_{Vertex}; Events"},
	"pvxp_n": {30, -0.5, 29.5, "Number of Vertices; N_{vertex}; Events"},
	"etmiss": {20, 0, 200, "Missing Transverse Momentum;E_{T,Miss} [GeV];Events"},

	"n_jets":  {10, -0.5, 9.5, "Number of Jets;N_{jets};Events"},
	"jet_pt":  {20, 0, 200, "Jet Transverse Momentum;p_{T}^{jet} [GeV];Jets"},
	"jet_m":   {20, 0, 20000, "Jet Mass; m^{jet} [MeV]; Jets"},
	"jet_jvf": {20, 0, 1, "Jet Vertex Fraction; JVF ; Jets"},
	"jet_eta": {30, -3, 3, "Jet Pseudorapidity; #eta^{jet}; Jets"},
	"jet_MV1": {20, 0, 1, "Jet MV1; MV1 weight ; Jets"},

	"lep_n": {10, -0.5, 9.5, "Number of Leptons; N_{lep} ;Events"},

	"WtMass":  {40, 0, 200, "Transverse Mass of the W Candidate; M_{T,W} [GeV]; Events"},
	"invMass": {30, 60, 120, "Invariant Mass of the Z Candidate;M_{ll} [GeV]; Events"},
}

func init() {
	series := []struct{ prefix, label string }{
		{"lep", "Lepton"},
		{"leadlep", "Leading Lepton"},
		{"traillep", "Trailing Lepton"},
	}

	for _, s := range series {
		p, l := s.prefix, s.label
		standard[p+"_pt"] = binning{20, 0, 200, l + " Transverse Momentum;p_{T}^{" + p + "} [GeV];Leptons"}
		standard[p+"_eta"] = binning{30, -3, 3, l + " Pseudorapidity; #eta^{" + p + "}; Leptons"}
		standard[p+"_E"] = binning{30, 0, 300, l + " Energy; E^{" + p + "} [GeV]; Leptons"}
		standard[p+"_phi"] = binning{32, -3.2, 3.2, l + " Azimuthal Angle ; #phi^{" + p + "}; Leptons"}
		standard[p+"_charge"] = binning{7, -1.75, 1.75, l + " Charge; Q^{" + p + "}; Leptons"}
		standard[p+"_type"] = binning{31, -0.5, 30.5, l + " Absolute PDG ID; |PDG ID|^{" + p + "}; Leptons"}
		standard[p+"_ptconerel30"] = binning{40, -0.1, 0.4, l + " Relative Transverse Momentum Isolation; ptconerel30^{" + p + "}; Leptons"}
		standard[p+"_etconerel20"] = binning{40, -0.1, 0.4, l + " Relative Transverse Energy Isolation; etconerel20^{" + p + "}; Leptons"}
		standard[p+"_z0"] = binning{40, -1, 1, l + " z0 impact parameter; z_{0}^{" + p + "} [mm]; Leptons"}
		standard[p+"_d0"] = binning{40, -1, 1, l + " d0 impact parameter; d_{0}^{" + p + "} [mm]; Leptons"}
	}
}

// Standard builds a fresh catalog histogram
func Standard(name string) (*hbook.H1D, bool) {
	b, ok := standard[name]
	if !ok {
		return nil, false
	}
	return New(name, b.title, b.bins, b.lo, b.hi), true
}

// StandardNames lists the catalog, sorted
func StandardNames() []string {
	out := make([]string, 0, len(standard))
	for name := range standard {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// New builds a named histogram with uniform bins
func New(name, title string, bins int, lo, hi float64) *hbook.H1D {
	h := hbook.NewH1D(bins, lo, hi)
	h.Annotation()["name"] = name
	h.Annotation()["title"] = title
	return h
}
