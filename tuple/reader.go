package tuple

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/compression"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/io"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/table"
	"github.com/davecgh/go-spew/spew"
)

// Reader serves a tuple file as a table.Table
type Reader struct {
	path   string
	mapped *io.MappedFile

	header    schema.TupleHeader
	dataStart int
	codec     compression.Codec

	columns map[string]*schema.ColumnHeader
	layout  []schema.Column
}

func Open(path string) (*Reader, error) {
	mapped, mapErr := io.MapFile(path)
	if mapErr != nil {
		return nil, mapErr
	}

	r := &Reader{
		path:    path,
		mapped:  mapped,
		columns: map[string]*schema.ColumnHeader{},
	}

	input := bytes.NewReader(mapped.Bytes())
	if headerErr := r.header.FromBytes(input); headerErr != nil {
		mapped.Close()
		return nil, fmt.Errorf("unable to read tuple header of %s: %w", path, headerErr)
	}

	r.dataStart = mapped.Len() - input.Len()
	r.codec = compression.Codec(r.header.CompressionType)

	for i := range r.header.Columns {
		col := &r.header.Columns[i]

		if validateErr := r.validate(col); validateErr != nil {
			mapped.Close()
			return nil, validateErr
		}

		r.columns[col.Name] = col
		r.layout = append(r.layout, col.Column)
	}

	slog.Info("tuple opened", "path", path, "rows", r.header.Rows, "columns", len(r.layout), "codec", r.codec.String())

	return r, nil
}

func (r *Reader) validate(col *schema.ColumnHeader) error {
	rows := uint64(0)
	dataSize := uint64(r.mapped.Len() - r.dataStart)

	for i, block := range col.Blocks {
		if i < len(col.Blocks)-1 && block.Items != schema.BlockRowsSize {
			return fmt.Errorf("column %s block %d holds %d rows, expected %d", col.Name, i, block.Items, schema.BlockRowsSize)
		}
		if block.StartOffset+block.CompressedSize > dataSize {
			return fmt.Errorf("column %s block %d points outside of the file", col.Name, i)
		}
		rows += uint64(block.Items)
	}

	if rows != r.header.Rows {
		return fmt.Errorf("column %s holds %d rows, table has %d", col.Name, rows, r.header.Rows)
	}

	return nil
}

func (r *Reader) Name() string {
	return r.header.Name
}

func (r *Reader) Rows() int {
	return int(r.header.Rows)
}

func (r *Reader) Columns() []schema.Column {
	return r.layout
}

func (r *Reader) Header() schema.TupleHeader {
	return r.header
}

// Column returns a reader with its own decoded block, columns are not safe for concurrent use
func (r *Reader) Column(name string) (table.Column, error) {
	header, ok := r.columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", table.ErrColumnNotFound, name, r.path)
	}

	return &Column{reader: r, header: header, blockIdx: -1}, nil
}

func (r *Reader) Close() error {
	if r.mapped == nil {
		return nil
	}
	err := r.mapped.Close()
	r.mapped = nil
	return err
}

func (r *Reader) payload(block *schema.DiskHeader) []byte {
	start := r.dataStart + int(block.StartOffset)
	return r.mapped.Bytes()[start : start+int(block.CompressedSize)]
}

type Column struct {
	reader *Reader
	header *schema.ColumnHeader

	block    decodedBlock
	blockIdx int
}

func (c *Column) Info() schema.Column {
	return c.header.Column
}

func (c *Column) Bounds() (schema.BoundsFloat, error) {
	return c.header.Bounds(), nil
}

func (c *Column) load(row int) (int, error) {
	if c.reader.mapped == nil {
		return 0, fmt.Errorf("tuple %s is closed", c.reader.path)
	}
	if row < 0 || row >= c.reader.Rows() {
		return 0, fmt.Errorf("%w: %d of %d", table.ErrRowOutOfRange, row, c.reader.Rows())
	}

	idx := row / schema.BlockRowsSize
	local := row - idx*schema.BlockRowsSize

	if idx == c.blockIdx {
		return local, nil
	}

	blockHeader := &c.header.Blocks[idx]
	payload := c.reader.payload(blockHeader)

	raw, decompressErr := compression.Decompress(c.reader.codec, payload, int(blockHeader.RawSize))
	if decompressErr == nil {
		decompressErr = decodeInto(&c.block, c.header.Column, blockHeader, raw)
	}

	if decompressErr != nil {
		c.blockIdx = -1
		slog.Error("block decode failed", "column", c.header.Name, "block", idx, "error", decompressErr.Error())
		if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
			slog.Debug(spew.Sdump(blockHeader, payload[:min(len(payload), 64)]))
		}
		return 0, fmt.Errorf("unable to decode block %d of %s: %s", idx, c.header.Name, decompressErr.Error())
	}

	c.blockIdx = idx
	return local, nil
}

func (c *Column) Float32s(row int, out []float32) (int, error) {
	local, err := c.load(row)
	if err != nil {
		return 0, err
	}
	start, end := c.block.span(local, c.header.Repeated)
	readNumbers(c.header.Column, &c.block, start, end, out)
	return end - start, nil
}

func (c *Column) Int32s(row int, out []int32) (int, error) {
	local, err := c.load(row)
	if err != nil {
		return 0, err
	}
	start, end := c.block.span(local, c.header.Repeated)
	readNumbers(c.header.Column, &c.block, start, end, out)
	return end - start, nil
}

func (c *Column) Uint32s(row int, out []uint32) (int, error) {
	local, err := c.load(row)
	if err != nil {
		return 0, err
	}
	start, end := c.block.span(local, c.header.Repeated)
	readNumbers(c.header.Column, &c.block, start, end, out)
	return end - start, nil
}

func (c *Column) Bools(row int, out []bool) (int, error) {
	local, err := c.load(row)
	if err != nil {
		return 0, err
	}
	start, end := c.block.span(local, c.header.Repeated)
	readFlags(c.header.Column, &c.block, start, end, out)
	return end - start, nil
}
