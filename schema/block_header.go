package schema

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/bits"
	"github.com/google/uuid"
)

const BlockRowsSize = 32 * 1024 // 32k rows per block

const TotalHeaderSize = 128

const HeaderSizeUsed uint64 = 16 + 4 + 4 + 8 + 8 + 8 + 1 + BoundsSize // guid + items + values + start offset + compressed size + raw size + datatype + bounds
const ReservedSize uint64 = TotalHeaderSize - HeaderSizeUsed

// DiskHeader describes one compressed block of a column
type DiskHeader struct {
	Uid uuid.UUID

	// rows in the block
	Items uint32
	// stored values, differs from Items for repeated columns
	Values uint32

	// relative to the start of the data section
	StartOffset    uint64
	CompressedSize uint64
	RawSize        uint64

	DataType FieldType
	Bounds   BoundsFloat

	// reserved for future use
	Reserved [ReservedSize]uint8
}

func NewBlockHeader(typ FieldType) *DiskHeader {
	return &DiskHeader{
		Uid:      uuid.New(),
		DataType: typ,
		Items:    0,
	}
}

func (header *DiskHeader) FromBytes(input io.Reader) (topErr error) {

	reader := bits.NewReader(input, binary.LittleEndian)

	header.Uid, topErr = reader.ReadUUID()
	if topErr != nil {
		return fmt.Errorf("unable to decode block header guid: %s", topErr.Error())
	}

	header.Items, topErr = reader.ReadU32()
	if topErr != nil {
		return fmt.Errorf("unable to decode block header items: %s", topErr.Error())
	}
	header.Values, topErr = reader.ReadU32()
	if topErr != nil {
		return fmt.Errorf("unable to decode block header values: %s", topErr.Error())
	}

	header.StartOffset, topErr = reader.ReadU64()
	if topErr != nil {
		return fmt.Errorf("unable to decode block header start offset: %s", topErr.Error())
	}
	header.CompressedSize, topErr = reader.ReadU64()
	if topErr != nil {
		return fmt.Errorf("unable to decode block header compressed size: %s", topErr.Error())
	}
	header.RawSize, topErr = reader.ReadU64()
	if topErr != nil {
		return fmt.Errorf("unable to decode block header raw size: %s", topErr.Error())
	}

	columnTypeRaw, topErr := reader.ReadU8()
	if topErr != nil {
		return fmt.Errorf("unable to decode block header column type: %s", topErr.Error())
	}
	header.DataType = FieldType(columnTypeRaw)

	topErr = header.Bounds.FromBytes(reader)
	if topErr != nil {
		return fmt.Errorf("unable to decode block header bounds: %s", topErr.Error())
	}

	return reader.ReadBytes(int(ReservedSize), header.Reserved[:])
}

func (header *DiskHeader) WriteTo(bw *bits.BitWriter) (int, error) {

	// UUID
	n, _ := bw.Write(header.Uid[:])
	if n != 16 {
		return 0, fmt.Errorf("failed to write block uid")
	}

	bw.PutUint32(header.Items)
	bw.PutUint32(header.Values)

	// Offsets and sizes
	bw.PutUint64(header.StartOffset)
	bw.PutUint64(header.CompressedSize)
	bw.PutUint64(header.RawSize)

	// Column type
	bw.WriteByte(uint8(header.DataType))

	// bounds
	header.Bounds.WriteTo(bw)

	bw.EmptyBytes(int(ReservedSize))

	return bw.Position(), nil
}
