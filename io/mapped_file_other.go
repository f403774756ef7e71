//go:build !unix

package io

func mapReadOnly(reader *FileReader) ([]byte, func() error, error) {
	return readWhole(reader)
}
