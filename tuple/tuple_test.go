package tuple

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/compression"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLayout = []schema.Column{
	schema.Scalar(schema.EventNumber, schema.Uint32FieldType),
	schema.Scalar(schema.TrigE, schema.BoolFieldType),
	schema.Scalar(schema.LepN, schema.Uint32FieldType),
	schema.Repeated(schema.LepPt, schema.Float32FieldType),
	schema.Repeated(schema.LepType, schema.Int32FieldType),
	schema.Repeated(schema.LepTrigMatched, schema.BoolFieldType),
}

// writeTestTuple writes rows where row i holds i%5 leptons
func writeTestTuple(t *testing.T, rows int, codec compression.Codec) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sample.tuple")
	w, err := NewWriter(path, testLayout, WriterOptions{Name: "sample", Codec: codec})
	require.NoError(t, err)

	for i := range rows {
		n := i % 5
		pts := make([]float32, n)
		types := make([]int32, n)
		matched := make([]bool, n)
		for k := range n {
			pts[k] = float32(1000 * (i + k))
			types[k] = int32(11 + 2*(k%2))
			matched[k] = k == 0
		}

		require.NoError(t, w.Set(schema.EventNumber, uint32(i)))
		require.NoError(t, w.Set(schema.TrigE, i%2 == 0))
		require.NoError(t, w.Set(schema.LepN, n))
		require.NoError(t, w.Set(schema.LepPt, pts))
		require.NoError(t, w.Set(schema.LepType, types))
		require.NoError(t, w.Set(schema.LepTrigMatched, matched))
		require.NoError(t, w.EndRow())
	}

	require.NoError(t, w.Close())
	return path
}

func TestWriteAndReadAcrossBlocks(t *testing.T) {
	rows := schema.BlockRowsSize + 123

	for _, codec := range []compression.Codec{compression.Lz4, compression.Zstd, compression.None} {
		t.Run(codec.String(), func(t *testing.T) {
			r, err := Open(writeTestTuple(t, rows, codec))
			require.NoError(t, err)
			defer r.Close()

			assert.Equal(t, rows, r.Rows())
			assert.Equal(t, "sample", r.Name())
			assert.Equal(t, testLayout, r.Columns())
			require.Len(t, r.Header().Columns[0].Blocks, 2)

			events, err := r.Column(schema.EventNumber)
			require.NoError(t, err)
			pts, err := r.Column(schema.LepPt)
			require.NoError(t, err)
			matched, err := r.Column(schema.LepTrigMatched)
			require.NoError(t, err)
			trig, err := r.Column(schema.TrigE)
			require.NoError(t, err)

			for _, row := range []int{0, 4, schema.BlockRowsSize - 1, schema.BlockRowsSize, rows - 1} {
				id := make([]uint32, 1)
				n, err := events.Uint32s(row, id)
				require.NoError(t, err)
				assert.Equal(t, 1, n)
				assert.Equal(t, uint32(row), id[0])

				values := make([]float32, 8)
				n, err = pts.Float32s(row, values)
				require.NoError(t, err)
				require.Equal(t, row%5, n)
				for k := range n {
					assert.Equal(t, float32(1000*(row+k)), values[k])
				}

				flags := make([]bool, 8)
				n, err = matched.Bools(row, flags)
				require.NoError(t, err)
				require.Equal(t, row%5, n)
				if n > 1 {
					assert.True(t, flags[0])
					assert.False(t, flags[1])
				}

				fired := make([]bool, 1)
				_, err = trig.Bools(row, fired)
				require.NoError(t, err)
				assert.Equal(t, row%2 == 0, fired[0])
			}
		})
	}
}

func TestReadTruncatesIntoShortBuffer(t *testing.T) {
	r, err := Open(writeTestTuple(t, 10, compression.Lz4))
	require.NoError(t, err)
	defer r.Close()

	types, err := r.Column(schema.LepType)
	require.NoError(t, err)

	out := make([]int32, 2)
	n, err := types.Int32s(4, out)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []int32{11, 13}, out)

	asFloat := make([]float32, 1)
	_, err = types.Float32s(4, asFloat)
	require.NoError(t, err)
	assert.Equal(t, float32(11), asFloat[0])
}

func TestBoundsFromBlockHeaders(t *testing.T) {
	rows := schema.BlockRowsSize + 10
	r, err := Open(writeTestTuple(t, rows, compression.Lz4))
	require.NoError(t, err)
	defer r.Close()

	lepN, err := r.Column(schema.LepN)
	require.NoError(t, err)

	bounds, err := lepN.Bounds()
	require.NoError(t, err)
	assert.Equal(t, schema.BoundsFloat{Min: 0, Max: 4}, bounds)

	pts, err := r.Column(schema.LepPt)
	require.NoError(t, err)
	bounds, err = pts.Bounds()
	require.NoError(t, err)
	expected := 0
	for i := range rows {
		if n := i % 5; n > 0 {
			expected = max(expected, 1000*(i+n-1))
		}
	}
	assert.Equal(t, float64(expected), bounds.Max)
	assert.Equal(t, 1000.0, bounds.Min)
}

func TestMissingColumnAndRowRange(t *testing.T) {
	r, err := Open(writeTestTuple(t, 3, compression.Lz4))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Column("jet_pt")
	assert.ErrorIs(t, err, table.ErrColumnNotFound)

	col, err := r.Column(schema.EventNumber)
	require.NoError(t, err)
	_, err = col.Uint32s(3, make([]uint32, 1))
	assert.ErrorIs(t, err, table.ErrRowOutOfRange)
}

func TestWriterRejectsBadRows(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "bad.tuple"), testLayout, WriterOptions{})
	require.NoError(t, err)

	assert.ErrorIs(t, w.Set("jet_pt", 1), table.ErrColumnNotFound)

	require.NoError(t, w.Set(schema.EventNumber, []uint32{1, 2}))
	assert.ErrorIs(t, w.EndRow(), table.ErrTypeMismatch)

	_, err = NewWriter("x", []schema.Column{schema.Scalar("x", schema.Float64FieldType)}, WriterOptions{})
	assert.Error(t, err)
}

func TestRejectedRowLeavesColumnsAligned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rejected.tuple")
	w, err := NewWriter(path, testLayout, WriterOptions{Codec: compression.Lz4})
	require.NoError(t, err)

	require.NoError(t, w.Set(schema.EventNumber, uint32(7)))
	require.NoError(t, w.Set(schema.TrigE, true))
	require.NoError(t, w.Set(schema.LepN, []uint32{1, 2}))
	require.NoError(t, w.Set(schema.LepPt, []float32{1, 2}))
	assert.ErrorIs(t, w.EndRow(), table.ErrTypeMismatch)

	require.NoError(t, w.Set(schema.EventNumber, []uint32{8, 9}))
	assert.ErrorIs(t, w.EndRow(), table.ErrTypeMismatch)

	require.NoError(t, w.Set(schema.EventNumber, uint32(42)))
	require.NoError(t, w.Set(schema.LepN, 1))
	require.NoError(t, w.Set(schema.LepPt, []float32{5000}))
	require.NoError(t, w.Set(schema.LepType, []int32{13}))
	require.NoError(t, w.Set(schema.LepTrigMatched, []bool{true}))
	require.NoError(t, w.EndRow())
	assert.Equal(t, 1, w.Rows())
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, 1, r.Rows())

	col, err := r.Column(schema.EventNumber)
	require.NoError(t, err)
	number := make([]uint32, 1)
	_, err = col.Uint32s(0, number)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), number[0])

	col, err = r.Column(schema.TrigE)
	require.NoError(t, err)
	trig := make([]bool, 1)
	_, err = col.Bools(0, trig)
	require.NoError(t, err)
	assert.False(t, trig[0])

	col, err = r.Column(schema.LepPt)
	require.NoError(t, err)
	pts := make([]float32, 4)
	n, err := col.Float32s(0, pts)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, float32(5000), pts[0])
}

func TestCorruptBlockIsReported(t *testing.T) {
	path := writeTestTuple(t, 3, compression.Lz4)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// break the lz4 frame magic of every block
	frameMagic := []byte{0x04, 0x22, 0x4d, 0x18}
	require.True(t, bytes.Contains(data, frameMagic))
	data = bytes.ReplaceAll(data, frameMagic, []byte{0xde, 0xad, 0xbe, 0xef})
	require.NoError(t, os.WriteFile(path, data, 0o644))

	var logs bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(previous)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	failed := 0
	for _, info := range r.Columns() {
		col, err := r.Column(info.Name)
		require.NoError(t, err)
		if _, err := col.Bools(0, make([]bool, 8)); err != nil {
			failed++
		}
	}

	assert.Positive(t, failed)
	assert.Contains(t, logs.String(), "block decode failed")
	assert.Contains(t, logs.String(), "DiskHeader")
}

func TestEmptyTuple(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.tuple")
	w, err := NewWriter(path, testLayout, WriterOptions{})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 0, r.Rows())
}

func TestOpenRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.tuple")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a tuple file"), 0o644))

	_, err := Open(path)
	assert.ErrorIs(t, err, schema.ErrBadMagic)
}

func TestWriteTableCopiesRows(t *testing.T) {
	src, err := Open(writeTestTuple(t, 20, compression.Lz4))
	require.NoError(t, err)
	defer src.Close()

	path := filepath.Join(t.TempDir(), "copy.tuple")
	require.NoError(t, WriteTable(path, src, WriterOptions{Codec: compression.Zstd}))

	copied, err := Open(path)
	require.NoError(t, err)
	defer copied.Close()

	assert.Equal(t, 20, copied.Rows())
	assert.Equal(t, "sample", copied.Name())

	pts, err := copied.Column(schema.LepPt)
	require.NoError(t, err)
	out := make([]float32, 4)
	n, err := pts.Float32s(19, out)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []float32{19000, 20000, 21000, 22000}, out)
}
