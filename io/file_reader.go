package io

import (
	"errors"
	"os"
)

var ErrNotOpened = errors.New("file not opened")

type FileReader struct {
	path   string
	file   *os.File
	opened bool

	exists bool
	size   int64
}

func NewFileReader(path string) *FileReader {

	stat, err := os.Stat(path)

	freader := &FileReader{
		path:   path,
		exists: err == nil,
	}

	if err == nil {
		freader.size = stat.Size()
	}

	return freader
}

func (f *FileReader) Exists() bool {
	return f.exists
}

func (f *FileReader) Size() int64 {
	return f.size
}

// Open opens an existing file for reading, or creates (truncating) it for writing
func (f *FileReader) Open(readOnly bool) (topErr error) {

	var perm os.FileMode = 0644

	if readOnly {
		f.file, topErr = os.OpenFile(f.path, os.O_RDONLY, perm)
	} else {
		f.file, topErr = os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	}

	if topErr == nil {
		f.opened = true
	}

	return topErr

}

func (f *FileReader) Close() error {
	if !f.opened {
		return nil
	}

	f.opened = false
	return f.file.Close()
}

func (f *FileReader) File() *os.File {
	return f.file
}

func (f *FileReader) ReadAt(out []byte, off, length int) (err error) {
	if !f.opened {
		return ErrNotOpened
	}

	var readBytes int
	readBytes, err = f.file.ReadAt(out[:length], int64(off))

	if readBytes != length {
		err = errors.New("read bytes mismatch")
		return err
	}

	return nil
}

func (f *FileReader) WriteAt(in []byte, off int) (err error) {
	if !f.opened {
		return ErrNotOpened
	}

	var writtenBytes int
	writtenBytes, err = f.file.WriteAt(in, int64(off))
	if err != nil {
		return err
	}
	if writtenBytes != len(in) {
		err = errors.New("written bytes mismatch")
		return err
	}

	return nil
}

