package schema

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/bits"
	"github.com/google/uuid"
)

const CurrentTupleVersion = 1

var TupleMagic = [4]byte{'T', 'U', 'P', 'L'}

var ErrBadMagic = errors.New("not a tuple file")

// tuple file on disk

// *--------------------------------*
// | magic, version, uid            |
// *--------------------------------*
// | rows, codec, name              |
// *--------------------------------*
// | column header 1 ... n          |
// |   block headers 1 ... m        |
// *--------------------------------*
// | compressed block data          |
// *--------------------------------*

type TupleHeader struct {
	Version uint16
	Uid     uuid.UUID

	Rows            uint64
	CompressionType uint8

	Name    string
	Columns []ColumnHeader
}

type ColumnHeader struct {
	Column
	Blocks []DiskHeader
}

// Bounds merges every block header, no data is decoded
func (c *ColumnHeader) Bounds() BoundsFloat {
	result := BoundsFloat{}
	for i, block := range c.Blocks {
		if i == 0 {
			result = block.Bounds
			continue
		}
		result.Morph(block.Bounds)
	}
	return result
}

func NewTupleHeader(name string, codec uint8) *TupleHeader {
	return &TupleHeader{
		Version:         CurrentTupleVersion,
		Uid:             uuid.New(),
		CompressionType: codec,
		Name:            name,
	}
}

func (header *TupleHeader) FromBytes(input io.Reader) (topErr error) {

	reader := bits.NewReader(input, binary.LittleEndian)

	var magic [4]byte
	topErr = reader.ReadBytes(4, magic[:])
	if topErr != nil {
		return fmt.Errorf("unable to read magic: %s", topErr.Error())
	}
	if magic != TupleMagic {
		return ErrBadMagic
	}

	header.Version, topErr = reader.ReadU16()
	if topErr != nil {
		return fmt.Errorf("unable to read version: %s", topErr.Error())
	}
	if header.Version != CurrentTupleVersion {
		return fmt.Errorf("invalid version %d. Supported versions: %d ", header.Version, CurrentTupleVersion)
	}

	header.Uid, topErr = reader.ReadUUID()
	if topErr != nil {
		return fmt.Errorf("unable to read uid: %s", topErr.Error())
	}

	header.Rows, topErr = reader.ReadU64()
	if topErr != nil {
		return fmt.Errorf("unable to read rows: %s", topErr.Error())
	}

	header.CompressionType, topErr = reader.ReadU8()
	if topErr != nil {
		return fmt.Errorf("unable to read compression type: %s", topErr.Error())
	}

	header.Name, topErr = reader.ReadString()
	if topErr != nil {
		return fmt.Errorf("unable to read name: %s", topErr.Error())
	}

	columns, columnsErr := reader.ReadU16()
	if columnsErr != nil {
		return fmt.Errorf("unable to read columns count: %s", columnsErr.Error())
	}

	header.Columns = make([]ColumnHeader, columns)
	for i := range header.Columns {
		columnErr := header.Columns[i].fromBytes(reader, input)
		if columnErr != nil {
			return fmt.Errorf("unable to read column %d header: %s", i, columnErr.Error())
		}
	}

	return nil
}

func (c *ColumnHeader) fromBytes(reader *bits.BitsReader, input io.Reader) (topErr error) {

	c.Name, topErr = reader.ReadString()
	if topErr != nil {
		return topErr
	}

	typ, typErr := reader.ReadU8()
	if typErr != nil {
		return typErr
	}
	c.Type = FieldType(typ)

	c.Repeated, topErr = reader.ReadBool()
	if topErr != nil {
		return topErr
	}

	blocks, blocksErr := reader.ReadU32()
	if blocksErr != nil {
		return blocksErr
	}

	c.Blocks = make([]DiskHeader, blocks)
	for i := range c.Blocks {
		blockErr := c.Blocks[i].FromBytes(input)
		if blockErr != nil {
			return blockErr
		}
	}

	return nil
}

func (header *TupleHeader) WriteTo(bw *bits.BitWriter) (int, error) {

	bw.Write(TupleMagic[:])
	bw.PutUint16(header.Version)
	bw.Write(header.Uid[:])

	bw.PutUint64(header.Rows)
	bw.WriteByte(header.CompressionType)

	if err := bw.PutString(header.Name); err != nil {
		return 0, err
	}

	bw.PutUint16(uint16(len(header.Columns)))

	for _, col := range header.Columns {
		if err := bw.PutString(col.Name); err != nil {
			return 0, err
		}
		bw.WriteByte(uint8(col.Type))
		bw.PutBool(col.Repeated)
		bw.PutUint32(uint32(len(col.Blocks)))

		for i := range col.Blocks {
			if _, err := col.Blocks[i].WriteTo(bw); err != nil {
				return 0, fmt.Errorf("unable to write block header of %s: %s", col.Name, err.Error())
			}
		}
	}

	return bw.Position(), nil
}
