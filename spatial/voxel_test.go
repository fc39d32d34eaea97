package spatial

import (
	"math"
	"testing"
)

// TestAxisBitAllocationBudget checks that bits always sum to the total
// budget and that the resulting world box is >= the user box on every
// axis, for a handful of representative domain shapes.
func TestAxisBitAllocationBudget(t *testing.T) {
	cases := [][3]float64{
		{1, 1, 1},
		{10, 1, 1},
		{1.5, 1.5, 0.0001},
		{100, 50, 25},
		{0.01, 100, 0.01},
	}
	for _, extents := range cases {
		bits, err := AllocateAxisBits(extents)
		if err != nil {
			t.Fatalf("AllocateAxisBits(%v): %v", extents, err)
		}
		if bits.Sum() != VoxelCountPower2 {
			t.Errorf("AllocateAxisBits(%v) bits=%v sum=%d, want %d", extents, bits, bits.Sum(), VoxelCountPower2)
		}
		l := VoxelScale(extents, bits, -1)
		for axis := 0; axis < 3; axis++ {
			worldSpan := l * math.Pow(2, float64(bits[axis])) * VoxelResolution
			if worldSpan < extents[axis] {
				t.Errorf("axis %d world span %g < user box %g for extents %v", axis, worldSpan, extents[axis], extents)
			}
		}
	}
}

// TestAxisBitAllocationFavorsLargerAxis checks the actual pitch-balance
// property the algorithm exists for: for a thin-slab domain, the two
// wide axes must outweigh the thin axis in bits, not the reverse.
func TestAxisBitAllocationFavorsLargerAxis(t *testing.T) {
	extents := [3]float64{1.5, 1.5, 0.0001}
	bits, err := AllocateAxisBits(extents)
	if err != nil {
		t.Fatal(err)
	}
	if bits[0] <= bits[2] || bits[1] <= bits[2] {
		t.Errorf("AllocateAxisBits(%v) = %v, want the thin Z axis to get fewer bits than both wide axes", extents, bits)
	}
}

// TestExactAxisIsDimensionedExactly verifies that the requested exact
// axis gets a world span equal to (not just >=) its user box.
func TestExactAxisIsDimensionedExactly(t *testing.T) {
	extents := [3]float64{10, 3, 7}
	bits, err := AllocateAxisBits(extents)
	if err != nil {
		t.Fatal(err)
	}
	l := VoxelScale(extents, bits, 1)
	span := l * math.Pow(2, float64(bits[1])) * VoxelResolution
	if math.Abs(span-extents[1]) > 1e-9 {
		t.Errorf("exact axis span = %g, want %g", span, extents[1])
	}
}

// TestSpatialRoundTrip checks getPos(setPos(p)) ≈ p to within ℓ.
func TestSpatialRoundTrip(t *testing.T) {
	d, err := NewDomain(100, 50, 25, -1)
	if err != nil {
		t.Fatal(err)
	}
	points := [][3]float64{
		{0, 0, 0},
		{12.3, 4.5, 6.7},
		{99.99, 49.5, 24.99},
		{50, 25, 12.5},
	}
	for _, p := range points {
		addr := d.ToAddress(p[0], p[1], p[2])
		gx, gy, gz := d.ToPos(addr)
		if math.Abs(gx-p[0]) > d.Length || math.Abs(gy-p[1]) > d.Length || math.Abs(gz-p[2]) > d.Length {
			t.Errorf("round trip %v -> %v off by more than ℓ=%g", p, [3]float64{gx, gy, gz}, d.Length)
		}
	}
}

// TestNormalizeCarriesOverflow checks invariant (2): a sub-voxel
// coordinate never equals or exceeds VoxelResolution after Normalize.
func TestNormalizeCarriesOverflow(t *testing.T) {
	d, err := NewDomain(10, 10, 10, -1)
	if err != nil {
		t.Fatal(err)
	}
	a := Address{VoxelID: d.PackVoxelID(5, 5, 5), Sx: VoxelResolution + 100, Sy: -50, Sz: 0}
	n := d.Normalize(a)
	if n.Sx < 0 || n.Sx >= VoxelResolution || n.Sy < 0 || n.Sy >= VoxelResolution || n.Sz < 0 || n.Sz >= VoxelResolution {
		t.Errorf("Normalize left an out-of-range sub-voxel coordinate: %+v", n)
	}
	ix, iy, iz := d.UnpackVoxelID(n.VoxelID)
	if ix != 6 || iy != 4 || iz != 5 {
		t.Errorf("Normalize carried into the wrong voxel: ix=%d iy=%d iz=%d", ix, iy, iz)
	}
}

func TestBinGridRejectsOverflow(t *testing.T) {
	d, err := NewDomain(1e9, 1e9, 1e9, -1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewBinGrid(d, 1e-6); err == nil {
		t.Error("expected a bin-count overflow error for a huge domain with a tiny bin size")
	}
}

func TestRunLengthEncode(t *testing.T) {
	sorted := []TouchPair{
		{Bin: 1, Primitive: 10},
		{Bin: 1, Primitive: 11},
		{Bin: 3, Primitive: 20},
		{Bin: 3, Primitive: 21},
		{Bin: 3, Primitive: 22},
		{Bin: 7, Primitive: 30},
	}
	ids, offsets, counts := RunLengthEncode(sorted)
	if len(ids) != len(sorted) {
		t.Fatalf("ids length = %d, want %d", len(ids), len(sorted))
	}
	wantOffsets := map[BinID]uint32{1: 0, 3: 2, 7: 5}
	wantCounts := map[BinID]uint32{1: 2, 3: 3, 7: 1}
	for bin, off := range wantOffsets {
		if offsets[bin] != off {
			t.Errorf("bin %d offset = %d, want %d", bin, offsets[bin], off)
		}
		if counts[bin] != wantCounts[bin] {
			t.Errorf("bin %d count = %d, want %d", bin, counts[bin], wantCounts[bin])
		}
	}
}
