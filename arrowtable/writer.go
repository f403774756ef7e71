package arrowtable

import (
	"fmt"
	"log"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
)

// FileWriter streams rows into an arrow IPC file, one record batch per BlockRowsSize rows
type FileWriter struct {
	path    string
	file    *os.File
	writer  *ipc.FileWriter
	builder *Builder

	rows   int
	closed bool
}

func NewFileWriter(path string, layout []schema.Column) (*FileWriter, error) {
	mem := memory.NewGoAllocator()

	builder, builderErr := NewBuilder(mem, layout)
	if builderErr != nil {
		return nil, builderErr
	}

	f, createErr := os.Create(path)
	if createErr != nil {
		builder.Release()
		return nil, fmt.Errorf("unable to create %s: %s", path, createErr.Error())
	}

	w, writerErr := ipc.NewFileWriter(f, ipc.WithSchema(builder.Schema()), ipc.WithAllocator(mem))
	if writerErr != nil {
		builder.Release()
		f.Close()
		return nil, fmt.Errorf("unable to start arrow file %s: %s", path, writerErr.Error())
	}

	return &FileWriter{path: path, file: f, writer: w, builder: builder}, nil
}

func (w *FileWriter) Set(name string, value any) error {
	return w.builder.Set(name, value)
}

func (w *FileWriter) EndRow() error {
	if err := w.builder.EndRow(); err != nil {
		return err
	}

	w.rows++
	if w.builder.Rows() == schema.BlockRowsSize {
		return w.flush()
	}
	return nil
}

func (w *FileWriter) flush() error {
	if w.builder.Rows() == 0 {
		return nil
	}

	rec := w.builder.NewRecord()
	defer rec.Release()

	if err := w.writer.Write(rec); err != nil {
		return fmt.Errorf("unable to write record batch to %s: %s", w.path, err.Error())
	}
	return nil
}

func (w *FileWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	defer w.builder.Release()

	if err := w.flush(); err != nil {
		w.file.Close()
		return err
	}

	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("unable to finish arrow file %s: %s", w.path, err.Error())
	}

	log.Printf("written arrow file %s: %d rows", w.path, w.rows)

	return w.file.Close()
}

// WriteRecords writes ready record batches into an arrow IPC file
func WriteRecords(path string, s *arrow.Schema, records ...arrow.Record) error {
	f, createErr := os.Create(path)
	if createErr != nil {
		return fmt.Errorf("unable to create %s: %s", path, createErr.Error())
	}
	defer f.Close()

	w, writerErr := ipc.NewFileWriter(f, ipc.WithSchema(s), ipc.WithAllocator(memory.NewGoAllocator()))
	if writerErr != nil {
		return fmt.Errorf("unable to start arrow file %s: %s", path, writerErr.Error())
	}

	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("unable to write record batch to %s: %s", path, err.Error())
		}
	}

	if err := w.Close(); err != nil {
		return err
	}
	return f.Close()
}
