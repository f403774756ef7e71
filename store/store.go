package store

import (
	"fmt"
	"log/slog"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/table"
)

// MaxSlots caps every per-event collection
const MaxSlots = 20

// GeV converts native momenta and energies
const GeV = 1000.0

// Store binds active columns of a table to a row cursor.
// Views alias the row buffers, a store must only be used from one goroutine.
type Store struct {
	source  table.Table
	binders []binder

	row     int
	version uint64

	objects *objects
}

type objects struct {
	info EventInfo
	met  MissingEnergy

	lepN    *Scalar[uint32]
	leptons []*Lepton

	jetN *Scalar[uint32]
	jets []*Jet
}

// New binds the table with every column inactive
func New(source table.Table) *Store {
	return &Store{source: source, row: -1}
}

// Open binds the table and activates the event layout
func Open(source table.Table) (*Store, error) {
	s := New(source)
	if err := s.BindObjects(); err != nil {
		return nil, err
	}
	return s, nil
}

// Row is the current cursor position, -1 before the first Position
func (s *Store) Row() int {
	return s.row
}

// Version changes on every Position
func (s *Store) Version() uint64 {
	return s.version
}

// PeakMaximum scans the whole column for its largest value
func (s *Store) PeakMaximum(name string) (int, error) {
	col, err := s.source.Column(name)
	if err != nil {
		return 0, fmt.Errorf("unable to scan %s: %w", name, err)
	}

	bounds, err := col.Bounds()
	if err != nil {
		return 0, fmt.Errorf("unable to scan %s: %w", name, err)
	}

	return int(bounds.Max), nil
}

// capSlots bounds a pre-scanned collection size to MaxSlots
func capSlots(maximum int) int {
	if maximum < 0 {
		maximum = -maximum
	}
	return min(maximum, MaxSlots)
}

// Position loads every active column at row
func (s *Store) Position(row int) error {
	if row < 0 || row >= s.source.Rows() {
		return fmt.Errorf("%w: %d of %d", table.ErrRowOutOfRange, row, s.source.Rows())
	}

	for _, b := range s.binders {
		if err := b.load(row); err != nil {
			return fmt.Errorf("unable to position at row %d: %w", row, err)
		}
	}

	s.row = row
	s.version++
	return nil
}

// BindObjects activates the columns behind EventInfo, leptons, jets and missing energy
func (s *Store) BindObjects() error {
	if s.objects != nil {
		return nil
	}

	maxLep, err := s.PeakMaximum(schema.LepN)
	if err != nil {
		return err
	}
	maxJet, err := s.PeakMaximum(schema.JetN)
	if err != nil {
		return err
	}

	bound := len(s.binders)
	a := &activator{s: s}
	o := &objects{}

	o.info = bindEventInfo(a)

	o.lepN = scalar[uint32](a, schema.LepN)
	leptons := bindLeptons(a, capSlots(maxLep))

	o.jetN = scalar[uint32](a, schema.JetN)
	jets := bindJets(a, capSlots(maxJet))

	o.met = bindMissingEnergy(a)

	if a.err != nil {
		s.binders = s.binders[:bound]
		return a.err
	}

	o.info.store = s
	o.met.store = s
	for i := range leptons.slots {
		o.leptons = append(o.leptons, &Lepton{cols: leptons, store: s, idx: i})
	}
	for i := range jets.slots {
		o.jets = append(o.jets, &Jet{cols: jets, store: s, idx: i})
	}

	s.objects = o

	slog.Info("store bound", "table", s.source.Name(), "rows", s.source.Rows(),
		"lepton_slots", leptons.slots, "lepton_max", maxLep, "jet_slots", jets.slots, "jet_max", maxJet)

	return nil
}

func (s *Store) mustObjects() *objects {
	if s.objects == nil {
		panic("store objects are not bound, call BindObjects first")
	}
	return s.objects
}

func (s *Store) EventInfo() *EventInfo {
	return &s.mustObjects().info
}

func (s *Store) MissingEnergy() *MissingEnergy {
	return &s.mustObjects().met
}

// Leptons of the current row, at most the pre-scanned capacity
func (s *Store) Leptons() []*Lepton {
	o := s.mustObjects()
	n := min(int(o.lepN.Get()), len(o.leptons))
	return o.leptons[:n:n]
}

// Jets of the current row, at most the pre-scanned capacity
func (s *Store) Jets() []*Jet {
	o := s.mustObjects()
	n := min(int(o.jetN.Get()), len(o.jets))
	return o.jets[:n:n]
}

// LeptonSlots is the per-row lepton capacity decided at bind time
func (s *Store) LeptonSlots() int {
	return len(s.mustObjects().leptons)
}

func (s *Store) JetSlots() int {
	return len(s.mustObjects().jets)
}
