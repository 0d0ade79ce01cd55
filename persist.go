package dac

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/cocosip/go-dac/internal/bitrank"
	"github.com/cocosip/go-dac/internal/packedarray"
)

var dacMagic = [4]byte{'D', 'A', 'C', '1'}

// MarshalBinary serializes d: a small header (N, widths, build
// identity, the baseline sizes needed to reconstruct Metrics) followed
// by each level's packed words. Rank indices are not serialized;
// UnmarshalDAC rebuilds them deterministically from the bitmap words
// rather than persisting them.
func (d *DAC) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(dacMagic[:])

	writeUvarint(&buf, uint64(d.n))
	writeUvarint(&buf, uint64(len(d.widths)))
	for _, w := range d.widths {
		buf.WriteByte(byte(w))
	}

	idBytes, err := d.buildID.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("dac: marshal: %w", err)
	}
	buf.Write(idBytes)

	writeUvarint(&buf, uint64(d.fixedWidthBits))
	writeUvarint(&buf, uint64(d.vbyteBits))

	for l, arr := range d.a {
		writeWords(&buf, uint64(arr.Len()), arr.Words())
		if l < len(d.b) {
			bm := d.b[l]
			writeWords(&buf, uint64(bm.Len()), bm.Words())
		}
	}

	return buf.Bytes(), nil
}

// UnmarshalDAC deserializes a DAC produced by MarshalBinary.
func UnmarshalDAC(data []byte) (*DAC, error) {
	r := bytes.NewReader(data)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("dac: unmarshal: %w", err)
	}
	if magic != dacMagic {
		return nil, fmt.Errorf("dac: unmarshal: bad magic")
	}

	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("dac: unmarshal: %w", err)
	}
	levels, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("dac: unmarshal: %w", err)
	}

	widths := make([]int, levels)
	for i := range widths {
		wb, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("dac: unmarshal: %w", err)
		}
		widths[i] = int(wb)
	}

	idBytes := make([]byte, 16)
	if _, err := io.ReadFull(r, idBytes); err != nil {
		return nil, fmt.Errorf("dac: unmarshal: %w", err)
	}
	buildID, err := uuid.FromBytes(idBytes)
	if err != nil {
		return nil, fmt.Errorf("dac: unmarshal: %w", err)
	}

	fixedWidthBits, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("dac: unmarshal: %w", err)
	}
	vbyteBits, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("dac: unmarshal: %w", err)
	}

	a := make([]*packedarray.PackedArray[uint64], levels)
	b := make([]*bitrank.Bitmap, int(levels)-1)
	for l := 0; l < int(levels); l++ {
		alen, words, err := readWords(r)
		if err != nil {
			return nil, fmt.Errorf("dac: unmarshal: level %d: %w", l, err)
		}
		a[l] = packedarray.FromWords[uint64](words, widths[l], int(alen))

		if l < int(levels)-1 {
			blen, bwords, err := readWords(r)
			if err != nil {
				return nil, fmt.Errorf("dac: unmarshal: level %d bitmap: %w", l, err)
			}
			b[l] = bitrank.FromWords(bwords, int(blen))
		}
	}

	return &DAC{
		n:              int(n),
		widths:         widths,
		a:              a,
		b:              b,
		buildID:        buildID,
		fixedWidthBits: int64(fixedWidthBits),
		vbyteBits:      int64(vbyteBits),
	}, nil
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func writeWords(buf *bytes.Buffer, count uint64, words []uint64) {
	writeUvarint(buf, count)
	writeUvarint(buf, uint64(len(words)))
	var tmp [8]byte
	for _, w := range words {
		binary.LittleEndian.PutUint64(tmp[:], w)
		buf.Write(tmp[:])
	}
}

func readWords(r *bytes.Reader) (uint64, []uint64, error) {
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, nil, err
	}
	wordCount, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, nil, err
	}
	words := make([]uint64, wordCount)
	var tmp [8]byte
	for i := range words {
		if _, err := io.ReadFull(r, tmp[:]); err != nil {
			return 0, nil, err
		}
		words[i] = binary.LittleEndian.Uint64(tmp[:])
	}
	return count, words, nil
}
