package compression

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"
)

func CompressLz4(src []byte, output *bytes.Buffer) error {
	zw := lz4.NewWriter(output)

	_, writeErr := zw.Write(src)
	if writeErr != nil {
		return writeErr
	}

	flushErr := zw.Flush()
	if flushErr != nil {
		return flushErr
	}

	return zw.Close()
}

// DecompressLz4 fills dst completely, dst must be sized to the uncompressed length
func DecompressLz4(src []byte, dst []byte) (int, error) {
	zr := lz4.NewReader(bytes.NewReader(src))
	return io.ReadFull(zr, dst)
}
