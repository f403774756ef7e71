package io

import "fmt"

// MappedFile is a read-only view of a whole file
type MappedFile struct {
	data   []byte
	unmap  func() error
	reader *FileReader
}

func (m *MappedFile) Bytes() []byte {
	return m.data
}

func (m *MappedFile) Len() int {
	return len(m.data)
}

func (m *MappedFile) Close() error {
	var unmapErr error
	if m.unmap != nil {
		unmapErr = m.unmap()
		m.unmap = nil
	}
	m.data = nil

	closeErr := m.reader.Close()
	if unmapErr != nil {
		return unmapErr
	}
	return closeErr
}

func MapFile(path string) (*MappedFile, error) {
	reader := NewFileReader(path)
	if !reader.Exists() {
		return nil, fmt.Errorf("unable to map %s: file does not exist", path)
	}

	openErr := reader.Open(true)
	if openErr != nil {
		return nil, fmt.Errorf("unable to open %s: %s", path, openErr.Error())
	}

	data, unmap, mapErr := mapReadOnly(reader)
	if mapErr != nil {
		reader.Close()
		return nil, fmt.Errorf("unable to map %s: %s", path, mapErr.Error())
	}

	return &MappedFile{data: data, unmap: unmap, reader: reader}, nil
}

func readWhole(reader *FileReader) ([]byte, func() error, error) {
	data := make([]byte, reader.Size())
	if len(data) == 0 {
		return data, nil, nil
	}
	readErr := reader.ReadAt(data, 0, len(data))
	return data, nil, readErr
}
