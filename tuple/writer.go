package tuple

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/bits"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/compression"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/io"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/table"
)

type WriterOptions struct {
	Name  string
	Codec compression.Codec
}

// Writer buffers rows and writes a tuple file on Close.
// Blocks are compressed as soon as BlockRowsSize rows are collected.
type Writer struct {
	path   string
	header *schema.TupleHeader

	columns []*columnBuffer
	byName  map[string]*columnBuffer

	rows    int
	pending int
	closed  bool
}

type columnBuffer struct {
	info schema.Column

	// current row
	current    any
	currentSet bool

	// current block
	lengths []uint16
	numbers []float64
	flags   []bool

	blocks   []schema.DiskHeader
	payloads [][]byte
}

func NewWriter(path string, columns []schema.Column, opts WriterOptions) (*Writer, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("tuple %s needs at least one column", path)
	}

	w := &Writer{
		path:   path,
		header: schema.NewTupleHeader(opts.Name, uint8(opts.Codec)),
		byName: make(map[string]*columnBuffer, len(columns)),
	}

	for _, col := range columns {
		if !col.Type.Storable() {
			return nil, fmt.Errorf("column %s has unsupported type %s", col.Name, col.Type.String())
		}
		if _, exists := w.byName[col.Name]; exists {
			return nil, fmt.Errorf("column %s declared twice", col.Name)
		}

		buf := &columnBuffer{info: col}
		w.columns = append(w.columns, buf)
		w.byName[col.Name] = buf
	}

	return w, nil
}

func (w *Writer) Set(name string, value any) error {
	buf, ok := w.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", table.ErrColumnNotFound, name)
	}

	buf.current = value
	buf.currentSet = true
	return nil
}

// EndRow appends the current row. A rejected row leaves every column as it was before the call.
func (w *Writer) EndRow() error {
	if w.closed {
		return fmt.Errorf("tuple %s is already closed", w.path)
	}

	marks := make([]columnMark, len(w.columns))
	for i, buf := range w.columns {
		marks[i] = buf.mark()
	}

	var appendErr error
	for _, buf := range w.columns {
		if appendErr == nil {
			appendErr = buf.appendRow()
		}
		buf.current = nil
		buf.currentSet = false
	}

	if appendErr != nil {
		for i, buf := range w.columns {
			buf.rewind(marks[i])
		}
		return fmt.Errorf("unable to append row %d: %w", w.rows, appendErr)
	}

	w.rows++
	w.pending++

	if w.pending == schema.BlockRowsSize {
		return w.flushBlocks()
	}

	return nil
}

type columnMark struct {
	lengths, numbers, flags int
}

func (buf *columnBuffer) mark() columnMark {
	return columnMark{lengths: len(buf.lengths), numbers: len(buf.numbers), flags: len(buf.flags)}
}

func (buf *columnBuffer) rewind(m columnMark) {
	buf.lengths = buf.lengths[:m.lengths]
	buf.numbers = buf.numbers[:m.numbers]
	buf.flags = buf.flags[:m.flags]
}

func (buf *columnBuffer) appendRow() error {
	var (
		flags   []bool
		numbers []float64
		err     error
	)

	if buf.info.Type == schema.BoolFieldType {
		if flags, err = table.Flags(buf.current); err != nil {
			return fmt.Errorf("column %s: %w", buf.info.Name, err)
		}
		if !buf.currentSet {
			flags = defaultFlags(buf.info)
		}
	} else {
		if numbers, err = table.Numbers(buf.current); err != nil {
			return fmt.Errorf("column %s: %w", buf.info.Name, err)
		}
		if !buf.currentSet {
			numbers = defaultNumbers(buf.info)
		}
	}

	count := len(flags) + len(numbers)
	if !buf.info.Repeated && count != 1 {
		return fmt.Errorf("%w: scalar column %s got %d values", table.ErrTypeMismatch, buf.info.Name, count)
	}
	if count > math.MaxUint16 {
		return fmt.Errorf("column %s row holds %d values, more than a block row can store", buf.info.Name, count)
	}

	buf.flags = append(buf.flags, flags...)
	buf.numbers = append(buf.numbers, numbers...)
	if buf.info.Repeated {
		buf.lengths = append(buf.lengths, uint16(count))
	}
	return nil
}

func defaultNumbers(info schema.Column) []float64 {
	if info.Repeated {
		return nil
	}
	return []float64{0}
}

func defaultFlags(info schema.Column) []bool {
	if info.Repeated {
		return nil
	}
	return []bool{false}
}

func (w *Writer) flushBlocks() error {
	if w.pending == 0 {
		return nil
	}

	codec := compression.Codec(w.header.CompressionType)

	for _, buf := range w.columns {
		raw, bounds, encodeErr := encodeBlock(buf.info, buf.lengths, buf.numbers, buf.flags)
		if encodeErr != nil {
			return encodeErr
		}

		payload, compressErr := compression.Compress(codec, raw)
		if compressErr != nil {
			return fmt.Errorf("unable to compress block of %s: %s", buf.info.Name, compressErr.Error())
		}

		header := schema.NewBlockHeader(buf.info.Type)
		header.Items = uint32(w.pending)
		header.Values = uint32(len(buf.numbers) + len(buf.flags))
		header.RawSize = uint64(len(raw))
		header.CompressedSize = uint64(len(payload))
		header.Bounds = bounds

		buf.blocks = append(buf.blocks, *header)
		buf.payloads = append(buf.payloads, payload)

		buf.lengths = buf.lengths[:0]
		buf.numbers = buf.numbers[:0]
		buf.flags = buf.flags[:0]
	}

	w.pending = 0
	return nil
}

func (w *Writer) Rows() int {
	return w.rows
}

func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.flushBlocks(); err != nil {
		return err
	}

	w.header.Rows = uint64(w.rows)

	offset := uint64(0)
	for _, buf := range w.columns {
		for i := range buf.blocks {
			buf.blocks[i].StartOffset = offset
			offset += buf.blocks[i].CompressedSize
		}
		w.header.Columns = append(w.header.Columns, schema.ColumnHeader{Column: buf.info, Blocks: buf.blocks})
	}

	bw := bits.NewEncodeBuffer(make([]byte, 0, 4096), binary.LittleEndian)
	bw.EnableGrowing()

	if _, err := w.header.WriteTo(&bw); err != nil {
		return fmt.Errorf("unable to encode tuple header: %s", err.Error())
	}

	file := io.NewFileReader(w.path)
	if err := file.Open(false); err != nil {
		return fmt.Errorf("unable to create %s: %s", w.path, err.Error())
	}
	defer file.Close()

	position := 0
	if err := file.WriteAt(bw.Bytes(), position); err != nil {
		return fmt.Errorf("unable to write tuple header: %s", err.Error())
	}
	position += bw.Position()

	for _, buf := range w.columns {
		for _, payload := range buf.payloads {
			if err := file.WriteAt(payload, position); err != nil {
				return fmt.Errorf("unable to write block of %s: %s", buf.info.Name, err.Error())
			}
			position += len(payload)
		}
		buf.payloads = nil
	}

	log.Printf("written tuple %s: %d rows, %d columns, %d bytes", w.path, w.rows, len(w.columns), position)

	return file.Close()
}

// WriteTable copies every row of src into a new tuple file
func WriteTable(path string, src table.Table, opts WriterOptions) error {
	if opts.Name == "" {
		opts.Name = src.Name()
	}

	w, err := NewWriter(path, src.Columns(), opts)
	if err != nil {
		return err
	}

	type source struct {
		info schema.Column
		col  table.Column
	}

	sources := make([]source, 0, len(src.Columns()))
	for _, info := range src.Columns() {
		col, colErr := src.Column(info.Name)
		if colErr != nil {
			return colErr
		}
		sources = append(sources, source{info: info, col: col})
	}

	numbers := make([]float32, 32)
	ints := make([]int32, 32)
	uints := make([]uint32, 32)
	flags := make([]bool, 32)

	for row := range src.Rows() {
		for _, s := range sources {
			var value any
			var readErr error

			switch s.info.Type {
			case schema.Float32FieldType:
				numbers, readErr = readAll(s.col.Float32s, row, numbers)
				value = rowValue(s.info, numbers)
			case schema.Int32FieldType:
				ints, readErr = readAll(s.col.Int32s, row, ints)
				value = rowValue(s.info, ints)
			case schema.Uint32FieldType:
				uints, readErr = readAll(s.col.Uint32s, row, uints)
				value = rowValue(s.info, uints)
			case schema.BoolFieldType:
				flags, readErr = readAll(s.col.Bools, row, flags)
				value = rowValue(s.info, flags)
			}

			if readErr != nil {
				return fmt.Errorf("unable to read %s at row %d: %w", s.info.Name, row, readErr)
			}

			if err := w.Set(s.info.Name, value); err != nil {
				return err
			}
		}

		if err := w.EndRow(); err != nil {
			return err
		}
	}

	return w.Close()
}

// readAll returns the row values, growing buf when the row does not fit
func readAll[T any](read func(int, []T) (int, error), row int, buf []T) ([]T, error) {
	n, err := read(row, buf[:cap(buf)])
	if err != nil {
		return buf, err
	}
	if n > cap(buf) {
		buf = make([]T, n)
		n, err = read(row, buf)
	}
	return buf[:n], err
}

func rowValue[T any](info schema.Column, values []T) any {
	if info.Repeated {
		return values
	}
	if len(values) == 0 {
		var zero T
		return zero
	}
	return values[0]
}
