//go:build unix

package io

import "golang.org/x/sys/unix"

func mapReadOnly(reader *FileReader) ([]byte, func() error, error) {
	if reader.Size() == 0 {
		return readWhole(reader)
	}

	data, err := unix.Mmap(int(reader.File().Fd()), 0, int(reader.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}

	return data, func() error { return unix.Munmap(data) }, nil
}
