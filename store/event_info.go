package store

import (
	"fmt"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
)

type EventInfo struct {
	store *Store

	eventNumber   *Scalar[uint32]
	runNumber     *Scalar[uint32]
	mcWeight      *Scalar[float32]
	passGRL       *Scalar[bool]
	hasGoodVertex *Scalar[bool]
	trigE         *Scalar[bool]
	trigM         *Scalar[bool]

	sfPileup  *Scalar[float32]
	sfEle     *Scalar[float32]
	sfMuon    *Scalar[float32]
	sfBTag    *Scalar[float32]
	sfTrigger *Scalar[float32]
	sfJVF     *Scalar[float32]
	sfZVertex *Scalar[float32]

	vertexZ  *Scalar[float32]
	vertices *Scalar[uint32]
}

func bindEventInfo(a *activator) EventInfo {
	return EventInfo{
		eventNumber:   scalar[uint32](a, schema.EventNumber),
		runNumber:     scalar[uint32](a, schema.RunNumber),
		mcWeight:      scalar[float32](a, schema.McWeight),
		passGRL:       scalar[bool](a, schema.PassGRL),
		hasGoodVertex: scalar[bool](a, schema.HasGoodVertex),
		trigE:         scalar[bool](a, schema.TrigE),
		trigM:         scalar[bool](a, schema.TrigM),

		sfPileup:  scalar[float32](a, schema.SFPileup),
		sfEle:     scalar[float32](a, schema.SFEle),
		sfMuon:    scalar[float32](a, schema.SFMuon),
		sfBTag:    scalar[float32](a, schema.SFBTag),
		sfTrigger: scalar[float32](a, schema.SFTrigger),
		sfJVF:     scalar[float32](a, schema.SFJVF),
		sfZVertex: scalar[float32](a, schema.SFZVertex),

		vertexZ:  scalar[float32](a, schema.VertexZ),
		vertices: scalar[uint32](a, schema.Vertices),
	}
}

func (e *EventInfo) EventNumber() uint32 {
	return e.eventNumber.Get()
}

func (e *EventInfo) RunNumber() uint32 {
	return e.runNumber.Get()
}

func (e *EventInfo) McWeight() float64 {
	return float64(e.mcWeight.Get())
}

// EventWeight combines the generator weight with pileup and vertex corrections
func (e *EventInfo) EventWeight() float64 {
	return float64(e.mcWeight.Get()) * float64(e.sfPileup.Get()) * float64(e.sfZVertex.Get())
}

// ScaleFactor combines the lepton and trigger corrections
func (e *EventInfo) ScaleFactor() float64 {
	return float64(e.sfEle.Get()) * float64(e.sfMuon.Get()) * float64(e.sfTrigger.Get())
}

func (e *EventInfo) BTagScaleFactor() float64 {
	return float64(e.sfBTag.Get())
}

func (e *EventInfo) JVFScaleFactor() float64 {
	return float64(e.sfJVF.Get())
}

func (e *EventInfo) PassGRL() bool {
	return e.passGRL.Get()
}

func (e *EventInfo) HasGoodVertex() bool {
	return e.hasGoodVertex.Get()
}

func (e *EventInfo) TriggeredByElectron() bool {
	return e.trigE.Get()
}

func (e *EventInfo) TriggeredByMuon() bool {
	return e.trigM.Get()
}

func (e *EventInfo) NumberOfVertices() int {
	return int(e.vertices.Get())
}

func (e *EventInfo) PrimaryVertexPosition() float64 {
	return float64(e.vertexZ.Get())
}

func (e *EventInfo) String() string {
	return fmt.Sprintf("EventInfo: run: %d  event: %d  eventweight: %4.2f", e.RunNumber(), e.EventNumber(), e.EventWeight())
}
