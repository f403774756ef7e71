package hist

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	goio "io"
	"log"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/bits"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/compression"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/io"
	"github.com/google/uuid"
	"go-hep.org/x/hep/hbook"
)

const CurrentOutputVersion = 1

var OutputMagic = [4]byte{'H', 'I', 'S', 'T'}

var (
	ErrBadOutputMagic    = errors.New("not a histogram file")
	ErrHistogramNotFound = errors.New("histogram not found")
	ErrFileClosed        = errors.New("histogram file is closed")
)

// histogram file on disk

// *--------------------------------*
// | magic, version, uid            |
// *--------------------------------*
// | sample, codec, entries         |
// *--------------------------------*
// | name, raw size, stored size    |
// | payload (compressed yoda)      |
// | ... per entry                  |
// *--------------------------------*

type outputEntry struct {
	name    string
	raw     uint32
	payload []byte
}

// OutputFile collects histograms of one sample and writes them on Close
type OutputFile struct {
	path   string
	sample string
	codec  compression.Codec
	uid    uuid.UUID

	entries []outputEntry
	names   map[string]struct{}
	closed  bool
}

func CreateOutputFile(path, sample string, codec compression.Codec) *OutputFile {
	return &OutputFile{
		path:   path,
		sample: sample,
		codec:  codec,
		uid:    uuid.New(),
		names:  make(map[string]struct{}),
	}
}

func (o *OutputFile) Write(name string, h *hbook.H1D) error {
	if o.closed {
		return fmt.Errorf("output file %s is closed", o.path)
	}
	if _, exists := o.names[name]; exists {
		return fmt.Errorf("histogram %s already written to %s", name, o.path)
	}

	raw, err := h.MarshalYODA()
	if err != nil {
		return fmt.Errorf("unable to encode histogram %s: %s", name, err.Error())
	}

	payload, err := compression.Compress(o.codec, raw)
	if err != nil {
		return err
	}

	o.names[name] = struct{}{}
	o.entries = append(o.entries, outputEntry{name: name, raw: uint32(len(raw)), payload: payload})
	return nil
}

func (o *OutputFile) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true

	bw := bits.NewEncodeBuffer(make([]byte, 0, 4096), binary.LittleEndian)
	bw.EnableGrowing()

	bw.Write(OutputMagic[:])
	bw.PutUint16(CurrentOutputVersion)
	bw.Write(o.uid[:])
	if err := bw.PutString(o.sample); err != nil {
		return err
	}
	bw.WriteByte(uint8(o.codec))
	bw.PutUint32(uint32(len(o.entries)))

	for _, e := range o.entries {
		if err := bw.PutString(e.name); err != nil {
			return err
		}
		bw.PutUint32(e.raw)
		bw.PutUint32(uint32(len(e.payload)))
		bw.Write(e.payload)
	}

	file := io.NewFileReader(o.path)
	if err := file.Open(false); err != nil {
		return fmt.Errorf("unable to create %s: %s", o.path, err.Error())
	}
	defer file.Close()

	if err := file.WriteAt(bw.Bytes(), 0); err != nil {
		return fmt.Errorf("unable to write %s: %s", o.path, err.Error())
	}

	log.Printf("written histograms %s: %d entries, %d bytes", o.path, len(o.entries), bw.Position())
	o.entries = nil

	return file.Close()
}

type storedEntry struct {
	raw     int
	payload []byte
}

// HistogramFile reads back a file written by OutputFile
type HistogramFile struct {
	Uid    uuid.UUID
	Sample string
	Codec  compression.Codec

	// payloads alias mapped, they are dropped on Close
	mapped  *io.MappedFile
	order   []string
	entries map[string]storedEntry
	closed  bool
}

func OpenOutputFile(path string) (*HistogramFile, error) {
	mapped, err := io.MapFile(path)
	if err != nil {
		return nil, err
	}

	f := &HistogramFile{mapped: mapped, entries: make(map[string]storedEntry)}
	if parseErr := f.parse(mapped.Bytes()); parseErr != nil {
		mapped.Close()
		return nil, fmt.Errorf("unable to read %s: %w", path, parseErr)
	}

	return f, nil
}

func (f *HistogramFile) parse(data []byte) (topErr error) {
	input := bytes.NewReader(data)
	reader := bits.NewReader(input, binary.LittleEndian)

	var magic [4]byte
	if topErr = reader.ReadBytes(4, magic[:]); topErr != nil {
		return fmt.Errorf("unable to read magic: %s", topErr.Error())
	}
	if magic != OutputMagic {
		return ErrBadOutputMagic
	}

	version, versionErr := reader.ReadU16()
	if versionErr != nil {
		return fmt.Errorf("unable to read version: %s", versionErr.Error())
	}
	if version != CurrentOutputVersion {
		return fmt.Errorf("invalid version %d. Supported versions: %d ", version, CurrentOutputVersion)
	}

	if f.Uid, topErr = reader.ReadUUID(); topErr != nil {
		return fmt.Errorf("unable to read uid: %s", topErr.Error())
	}
	if f.Sample, topErr = reader.ReadString(); topErr != nil {
		return fmt.Errorf("unable to read sample: %s", topErr.Error())
	}

	codec, codecErr := reader.ReadU8()
	if codecErr != nil {
		return fmt.Errorf("unable to read codec: %s", codecErr.Error())
	}
	f.Codec = compression.Codec(codec)

	count, countErr := reader.ReadU32()
	if countErr != nil {
		return fmt.Errorf("unable to read entries count: %s", countErr.Error())
	}

	for i := range int(count) {
		name, nameErr := reader.ReadString()
		if nameErr != nil {
			return fmt.Errorf("unable to read entry %d name: %s", i, nameErr.Error())
		}
		raw, rawErr := reader.ReadU32()
		if rawErr != nil {
			return fmt.Errorf("unable to read entry %s size: %s", name, rawErr.Error())
		}
		stored, storedErr := reader.ReadU32()
		if storedErr != nil {
			return fmt.Errorf("unable to read entry %s size: %s", name, storedErr.Error())
		}

		start := len(data) - input.Len()
		end := start + int(stored)
		if end > len(data) {
			return fmt.Errorf("entry %s overflows the file: %d > %d", name, end, len(data))
		}
		if _, seekErr := input.Seek(int64(stored), goio.SeekCurrent); seekErr != nil {
			return seekErr
		}

		f.order = append(f.order, name)
		f.entries[name] = storedEntry{raw: int(raw), payload: data[start:end]}
	}

	return nil
}

// Names in write order
func (f *HistogramFile) Names() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Get decodes the histogram stored under name
func (f *HistogramFile) Get(name string) (*hbook.H1D, error) {
	if f.closed {
		return nil, fmt.Errorf("%w: %s", ErrFileClosed, f.Sample)
	}

	e, ok := f.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrHistogramNotFound, name, f.Sample)
	}

	raw, err := compression.Decompress(f.Codec, e.payload, e.raw)
	if err != nil {
		return nil, fmt.Errorf("unable to read histogram %s: %w", name, err)
	}

	h := hbook.NewH1D(1, 0, 1)
	if err := h.UnmarshalYODA(raw); err != nil {
		return nil, fmt.Errorf("unable to decode histogram %s: %s", name, err.Error())
	}
	return h, nil
}

func (f *HistogramFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.entries = nil
	return f.mapped.Close()
}
