package bits

import (
	"encoding/binary"
)

// BitfieldBits is the number of flags one bitfield holds, equal to schema.BlockRowsSize
const BitfieldBits = 64 * 8 * 64

const BitfieldBytes = BitfieldBits / 8

type Bitfield [64 * 8]uint64

func (b *Bitfield) Set(bit int) {
	word := bit >> 6 // bit / 64
	mask := uint64(1) << (bit & 63)
	b[word] |= mask
}

func (b *Bitfield) Clear(bit int) {
	word := bit >> 6
	mask := uint64(1) << (bit & 63)
	b[word] &^= mask
}

func (b *Bitfield) Get(bit int) uint64 {
	word := bit >> 6
	return (b[word] >> (bit & 63)) & 1
}

func (b *Bitfield) PutBool(bit int, v bool) {
	if v {
		b.Set(bit)
	} else {
		b.Clear(bit)
	}
}

func (b *Bitfield) Bool(bit int) bool {
	return b.Get(bit) == 1
}

func (b *Bitfield) Reset() {
	*b = Bitfield{}
}

func (b *Bitfield) AppendBytes(out []byte) []byte {
	for _, w := range b {
		out = binary.LittleEndian.AppendUint64(out, w)
	}
	return out
}

func (b *Bitfield) FromBytes(in []byte) error {
	if len(in) < BitfieldBytes {
		return ErrReadMismatch
	}
	for i := range b {
		b[i] = binary.LittleEndian.Uint64(in[i*8:])
	}
	return nil
}

// PackBools packs values into consecutive bitfields
func PackBools(values []bool) []byte {
	fields := (len(values) + BitfieldBits - 1) / BitfieldBits
	out := make([]byte, 0, fields*BitfieldBytes)

	var bf Bitfield
	for f := range fields {
		bf.Reset()
		chunk := values[f*BitfieldBits : min((f+1)*BitfieldBits, len(values))]
		for i, v := range chunk {
			bf.PutBool(i, v)
		}
		out = bf.AppendBytes(out)
	}
	return out
}

// UnpackBools is the reverse of PackBools, out must hold exactly the packed count
func UnpackBools(in []byte, out []bool) error {
	var bf Bitfield
	for f := 0; f*BitfieldBits < len(out); f++ {
		if err := bf.FromBytes(in[f*BitfieldBytes:]); err != nil {
			return err
		}
		chunk := out[f*BitfieldBits : min((f+1)*BitfieldBits, len(out))]
		for i := range chunk {
			chunk[i] = bf.Bool(i)
		}
	}
	return nil
}
