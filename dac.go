// Package dac implements Directly Addressable Codes: a random-access,
// variable-length encoding for sequences of non-negative integers.
// Values are stratified into levels of bit-packed chunks (internal/
// packedarray) plus rank-indexed continuation bitmaps (internal/
// bitrank), with per-level widths chosen by a cost-minimizing dynamic
// program (internal/optimizer). Any element can then be recovered in
// O(levels) time, independent of sequence length.
package dac

import (
	"fmt"
	"iter"

	"github.com/google/uuid"

	"github.com/cocosip/go-dac/internal/bitrank"
	"github.com/cocosip/go-dac/internal/optimizer"
	"github.com/cocosip/go-dac/internal/packedarray"
)

// DAC is an immutable, randomly-addressable compressed integer
// sequence. Build it once with Build; all read operations are safe for
// concurrent use by multiple goroutines.
type DAC struct {
	n      int
	widths []int
	a      []*packedarray.PackedArray[uint64]
	b      []*bitrank.Bitmap

	buildID uuid.UUID

	fixedWidthBits int64
	vbyteBits      int64
}

// Build stratifies values into a DAC structure. values must be
// non-empty; opts is validated before construction begins, and any
// failure leaves no observable partial state (construction is
// transactional).
func Build(values []uint64, opts BuildOptions) (*DAC, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("dac: build: %w", ErrInvalidInput)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result, err := optimizer.Optimize(values, opts.Overhead)
	if err != nil {
		return nil, fmt.Errorf("dac: build: %w", err)
	}

	var maxBitLen int
	var vbyteBits int64
	for _, v := range values {
		if bl := optimizer.BitLength(v); bl > maxBitLen {
			maxBitLen = bl
		}
		vbyteBits += vbyteBitCost(v)
	}
	fixedWidthBits := int64(len(values)) * int64(maxBitLen)

	aArrays, bBitmaps := stratify(values, result.Widths)

	return &DAC{
		n:              len(values),
		widths:         result.Widths,
		a:              aArrays,
		b:              bBitmaps,
		buildID:        uuid.New(),
		fixedWidthBits: fixedWidthBits,
		vbyteBits:      vbyteBits,
	}, nil
}

// stratify performs a single linear sweep per level: at each level,
// residual values are split into a low chunk (written straight into a
// pre-sized PackedArray writer) and a high remainder; only non-zero
// remainders survive to the next level, preserving order. No
// intermediate per-level integer list is kept beyond the current
// level's residual buffer; each level streams its contributions
// directly into its writer instead of staging them.
func stratify(values []uint64, widths []int) ([]*packedarray.PackedArray[uint64], []*bitrank.Bitmap) {
	levels := len(widths)
	a := make([]*packedarray.PackedArray[uint64], levels)
	b := make([]*bitrank.Bitmap, levels-1)

	residual := values
	for l, w := range widths {
		isLast := l == levels-1
		mask := chunkMask(w)

		aw := packedarray.NewWriter[uint64](w, len(residual))
		var bw *bitrank.Writer
		if !isLast {
			bw = bitrank.NewWriter(len(residual))
		}

		next := make([]uint64, 0, len(residual))
		for _, r := range residual {
			low := r & mask
			high := r >> uint(w)

			aw.Append(low)
			if !isLast {
				bw.Append(high != 0)
			}
			if high != 0 {
				next = append(next, high)
			}
		}

		a[l] = aw.Freeze()
		if !isLast {
			b[l] = bw.Freeze()
		}
		residual = next
	}

	return a, b
}

func chunkMask(w int) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(w)) - 1
}

// vbyteBitCost returns the number of bits the variable-byte encoding
// (7 data bits + 1 continuation bit per byte) would spend on v.
func vbyteBitCost(v uint64) int64 {
	bl := optimizer.BitLength(v)
	groups := (bl + 6) / 7
	if groups < 1 {
		groups = 1
	}
	return int64(8 * groups)
}

// Len returns the number of values in the sequence (N).
func (d *DAC) Len() int { return d.n }

// Levels returns the number of encoding levels (L).
func (d *DAC) Levels() int { return len(d.widths) }

// BlockSizes returns a copy of the per-level bit widths.
func (d *DAC) BlockSizes() []int {
	widths := make([]int, len(d.widths))
	copy(widths, d.widths)
	return widths
}

// BuildID returns the identifier stamped on this DAC at construction,
// for correlating Metrics reports across many builds (e.g. in a batch
// indexing job's logs).
func (d *DAC) BuildID() uuid.UUID { return d.buildID }

// At returns the k-th value in the original sequence. k must be in
// [0, Len()); otherwise ErrOutOfRange is returned.
//
// Traversal adds each level's chunk contribution before checking that
// level's continuation bit; this is safe because the higher-order
// bits are known to be zero whenever continuation is false.
func (d *DAC) At(k int) (uint64, error) {
	if k < 0 || k >= d.n {
		return 0, fmt.Errorf("dac: at(%d): %w", k, ErrOutOfRange)
	}

	var result uint64
	shift := 0
	idx := k

	for l := 0; l < len(d.widths); l++ {
		chunk := d.a[l].Get(idx)
		result += chunk << uint(shift)
		shift += d.widths[l]

		if l == len(d.widths)-1 {
			return result, nil
		}
		if !d.b[l].Get(idx) {
			return result, nil
		}
		idx = d.b[l].Rank1(idx) - 1
	}

	return result, nil
}

// All returns an in-order iterator over every value in the sequence.
func (d *DAC) All() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for i := 0; i < d.n; i++ {
			v, err := d.At(i)
			if err != nil {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}
