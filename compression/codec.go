package compression

import (
	"bytes"
	"fmt"
	"strings"
)

type Codec uint8

const (
	None Codec = iota
	Lz4
	Zstd
)

func (c Codec) String() string {
	switch c {
	case None:
		return "none"
	case Lz4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

func ParseCodec(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "lz4":
		return Lz4, nil
	case "zstd":
		return Zstd, nil
	case "none":
		return None, nil
	default:
		return None, fmt.Errorf("unknown compression codec '%s'", name)
	}
}

func Compress(codec Codec, src []byte) ([]byte, error) {
	switch codec {
	case None:
		out := make([]byte, len(src))
		copy(out, src)
		return out, nil
	case Lz4:
		var buf bytes.Buffer
		if err := CompressLz4(src, &buf); err != nil {
			return nil, fmt.Errorf("unable to compress with lz4: %s", err.Error())
		}
		return buf.Bytes(), nil
	case Zstd:
		return CompressZstd(src, nil)
	default:
		return nil, fmt.Errorf("unsupported codec: %s", codec.String())
	}
}

// Decompress returns exactly rawSize bytes
func Decompress(codec Codec, src []byte, rawSize int) ([]byte, error) {
	switch codec {
	case None:
		if len(src) != rawSize {
			return nil, fmt.Errorf("raw block size mismatch: %d != %d", len(src), rawSize)
		}
		return src, nil
	case Lz4:
		out := make([]byte, rawSize)
		n, err := DecompressLz4(src, out)
		if err != nil {
			return nil, fmt.Errorf("unable to decompress lz4 block: %s", err.Error())
		}
		if n != rawSize {
			return nil, fmt.Errorf("lz4 block size mismatch: %d != %d", n, rawSize)
		}
		return out, nil
	case Zstd:
		out, err := DecompressZstd(src, make([]byte, 0, rawSize))
		if err != nil {
			return nil, fmt.Errorf("unable to decompress zstd block: %s", err.Error())
		}
		if len(out) != rawSize {
			return nil, fmt.Errorf("zstd block size mismatch: %d != %d", len(out), rawSize)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported codec: %s", codec.String())
	}
}
