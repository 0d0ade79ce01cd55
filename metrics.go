package dac

import (
	"math"

	"github.com/google/uuid"
)

// Metrics reports the encoded size of a DAC, with the integer block
// cost and the floating rank-index overhead kept as separate fields
// rather than folded into one ambiguous scalar.
type Metrics struct {
	// BlockBits is the total bits spent on A[l] payload chunks across
	// all levels: sum of widths[l] * n[l].
	BlockBits int64

	// RankOverheadBits is the total bits spent on continuation bitmaps
	// B[l], including their rank-index overhead: sum of
	// len(B[l]) * (1 + B[l].Overhead()).
	RankOverheadBits float64

	// BuildID identifies the Build call that produced this report, so
	// reports from many concurrent builds can be told apart.
	BuildID uuid.UUID
}

// Total returns the combined encoded bit footprint, rounding the
// fractional rank overhead up to a whole bit.
func (m Metrics) Total() int64 {
	return m.BlockBits + int64(math.Ceil(m.RankOverheadBits))
}

// RatioReport holds a derived quantity computed against both a
// vbyte-encoded baseline and a fixed-width baseline.
type RatioReport struct {
	VByte      float64
	FixedWidth float64
}

// BitLength reports the encoded size of d, broken down into block
// cost and rank-index overhead.
func (d *DAC) BitLength() Metrics {
	var blockBits int64
	for l, arr := range d.a {
		blockBits += int64(arr.Len()) * int64(d.widths[l])
	}

	var rankOverheadBits float64
	for _, bm := range d.b {
		rankOverheadBits += float64(bm.Len()) * (1 + bm.Overhead())
	}

	return Metrics{
		BlockBits:        blockBits,
		RankOverheadBits: rankOverheadBits,
		BuildID:          d.buildID,
	}
}

// CompressionRatios returns baseline-size / encoded-size for both the
// vbyte and fixed-width baselines (values > 1 mean DAC is smaller).
func (d *DAC) CompressionRatios() RatioReport {
	total := float64(d.BitLength().Total())
	return RatioReport{
		VByte:      float64(d.vbyteBits) / total,
		FixedWidth: float64(d.fixedWidthBits) / total,
	}
}

// SpaceSavings returns 1 - encoded-size/baseline-size for both
// baselines (values in (0, 1) mean DAC is smaller than the baseline).
func (d *DAC) SpaceSavings() RatioReport {
	total := float64(d.BitLength().Total())
	return RatioReport{
		VByte:      1 - total/float64(d.vbyteBits),
		FixedWidth: 1 - total/float64(d.fixedWidthBits),
	}
}
