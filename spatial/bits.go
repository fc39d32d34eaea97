package spatial

import (
	"fmt"
	"math"
)

// AxisBits holds the number of voxel-index bits assigned to each of the
// X, Y, Z axes. The three values always sum to VoxelCountPower2.
type AxisBits [3]int

// Sum returns the total bits assigned across all three axes.
func (b AxisBits) Sum() int { return b[0] + b[1] + b[2] }

// AllocateAxisBits ranks the three user-supplied domain extents and
// distributes VoxelCountPower2 bits between them so that voxel pitch
// (extent / 2^bits) stays roughly balanced across axes.
//
// Neighbouring extents (smallest-to-middle, then middle-to-largest, after
// sorting ascending) are compared in turn: the larger of the pair is
// granted an extra bit whenever its current pitch exceeds sqrt(2) times
// the smaller's pitch, until the ratio settles or the bit budget runs out.
// Any bits left over after that pass go one at a time to whichever axis
// currently has the coarsest pitch, until the full budget is spent.
func AllocateAxisBits(extents [3]float64) (AxisBits, error) {
	for i, e := range extents {
		if e <= 0 || math.IsNaN(e) || math.IsInf(e, 0) {
			return AxisBits{}, fmt.Errorf("spatial: axis %d extent %g is not a positive finite number", i, e)
		}
	}

	order := [3]int{0, 1, 2}
	// insertion sort the three axis indices ascending by extent.
	for i := 1; i < 3; i++ {
		for j := i; j > 0 && extents[order[j-1]] > extents[order[j]]; j-- {
			order[j-1], order[j] = order[j], order[j-1]
		}
	}

	var bits AxisBits
	remaining := VoxelCountPower2

	// Each neighbour pair's extra-bit delta is computed from that
	// pair's own raw (zero-bit) extents, not from bits[], so the
	// middle axis's pitch here is its untouched extent even though the
	// first pair's loop already granted it bits as the "large" side —
	// the two passes are independent walks, mirroring the original's
	// two separate n_more_bits_for_me loops, and are only summed into
	// bits[] afterward.
	pairs := [2][2]int{{order[0], order[1]}, {order[1], order[2]}}
	for _, pair := range pairs {
		small, large := pair[0], pair[1]
		delta := 0
		for remaining > 0 && extents[large]/math.Pow(2, float64(delta)) > extents[small]*math.Sqrt2 {
			delta++
			remaining--
		}
		bits[large] += delta
	}

	// Leftover bits go to whichever axis currently has the coarsest
	// pitch, not whichever has the fewest raw bits: once one pair's
	// delta has bought an axis a double-digit bit lead, a fewest-bits
	// rule just re-equalizes the three counts and throws that lead
	// away. Picking by pitch keeps spending leftover bits on the axis
	// that actually needs them until all three track each other.
	pitch := func(axis int) float64 { return extents[axis] / math.Pow(2, float64(bits[axis])) }
	for remaining > 0 {
		m := 0
		worst := pitch(0)
		for i := 1; i < 3; i++ {
			if p := pitch(i); p > worst {
				worst = p
				m = i
			}
		}
		bits[m]++
		remaining--
	}
	return bits, nil
}

// VoxelScale computes the physical length ℓ of one sub-voxel count such
// that every axis' voxel-plus-sub-voxel range covers at least its user
// requested extent (invariant 1 of the spatial addressing scheme).
//
// If exactAxis is in [0,3) that axis is sized to exactly match its
// requested extent; the other axes may end up covering a larger box than
// requested since ℓ is shared across all three. If exactAxis is out of
// range (e.g. -1) ℓ is the maximum of the three axis-implied values so
// every axis fits.
func VoxelScale(extents [3]float64, bits AxisBits, exactAxis int) float64 {
	implied := func(axis int) float64 {
		counts := math.Pow(2, float64(bits[axis])) * VoxelResolution
		return extents[axis] / counts
	}
	if exactAxis >= 0 && exactAxis < 3 {
		return implied(exactAxis)
	}
	l := implied(0)
	for axis := 1; axis < 3; axis++ {
		if v := implied(axis); v > l {
			l = v
		}
	}
	return l
}
