package schema

// Names of the event tuple columns
const (
	EventNumber   = "eventNumber"
	RunNumber     = "runNumber"
	McWeight      = "mcWeight"
	PassGRL       = "passGRL"
	HasGoodVertex = "hasGoodVertex"
	TrigE         = "trigE"
	TrigM         = "trigM"

	SFPileup  = "scaleFactor_PILEUP"
	SFEle     = "scaleFactor_ELE"
	SFMuon    = "scaleFactor_MUON"
	SFBTag    = "scaleFactor_BTAG"
	SFTrigger = "scaleFactor_TRIGGER"
	SFJVF     = "scaleFactor_JVFSF"
	SFZVertex = "scaleFactor_ZVERTEX"

	VertexZ  = "vxp_z"
	Vertices = "pvxp_n"

	LepN           = "lep_n"
	LepPt          = "lep_pt"
	LepEta         = "lep_eta"
	LepPhi         = "lep_phi"
	LepE           = "lep_E"
	LepType        = "lep_type"
	LepCharge      = "lep_charge"
	LepPtCone30    = "lep_ptcone30"
	LepEtCone20    = "lep_etcone20"
	LepD0          = "lep_trackd0pvunbiased"
	LepD0Sig       = "lep_tracksigd0pvunbiased"
	LepTrigMatched = "lep_trigMatched"
	LepZ0          = "lep_z0"
	LepFlag        = "lep_flag"

	JetN   = "alljet_n"
	JetPt  = "jet_pt"
	JetEta = "jet_eta"
	JetE   = "jet_E"
	JetPhi = "jet_phi"
	JetM   = "jet_m"
	JetJVF = "jet_jvf"
	JetMV1 = "jet_MV1"

	MetEt  = "met_et"
	MetPhi = "met_phi"
)

// EventLayout is the column set every event sample provides
func EventLayout() []Column {
	return []Column{
		Scalar(EventNumber, Uint32FieldType),
		Scalar(RunNumber, Uint32FieldType),
		Scalar(McWeight, Float32FieldType),
		Scalar(PassGRL, BoolFieldType),
		Scalar(HasGoodVertex, BoolFieldType),
		Scalar(TrigE, BoolFieldType),
		Scalar(TrigM, BoolFieldType),

		Scalar(SFPileup, Float32FieldType),
		Scalar(SFEle, Float32FieldType),
		Scalar(SFMuon, Float32FieldType),
		Scalar(SFBTag, Float32FieldType),
		Scalar(SFTrigger, Float32FieldType),
		Scalar(SFJVF, Float32FieldType),
		Scalar(SFZVertex, Float32FieldType),
		Scalar(VertexZ, Float32FieldType),
		Scalar(Vertices, Uint32FieldType),

		Scalar(LepN, Uint32FieldType),
		Repeated(LepPt, Float32FieldType),
		Repeated(LepEta, Float32FieldType),
		Repeated(LepPhi, Float32FieldType),
		Repeated(LepE, Float32FieldType),
		Repeated(LepType, Int32FieldType),
		Repeated(LepCharge, Float32FieldType),
		Repeated(LepPtCone30, Float32FieldType),
		Repeated(LepEtCone20, Float32FieldType),
		Repeated(LepD0, Float32FieldType),
		Repeated(LepD0Sig, Float32FieldType),
		Repeated(LepTrigMatched, BoolFieldType),
		Repeated(LepZ0, Float32FieldType),
		Repeated(LepFlag, Uint32FieldType),

		Scalar(JetN, Uint32FieldType),
		Repeated(JetPt, Float32FieldType),
		Repeated(JetEta, Float32FieldType),
		Repeated(JetE, Float32FieldType),
		Repeated(JetPhi, Float32FieldType),
		Repeated(JetM, Float32FieldType),
		Repeated(JetJVF, Float32FieldType),
		Repeated(JetMV1, Float32FieldType),

		Scalar(MetEt, Float32FieldType),
		Scalar(MetPhi, Float32FieldType),
	}
}
