package spatial

import (
	"fmt"
	"math"
)

// BinID indexes a single cubic broad-phase cell. The configured bin-index
// type is uint32; BinIDMax bounds how many bins a domain may have.
type BinID uint32

// BinGrid describes the cubic-cell subdivision of a Domain used by the
// kinematic thread's broad phase (spec.md §4.1, §4.5).
type BinGrid struct {
	Domain        *Domain
	BinSize       float64
	NbX, NbY, NbZ uint32 // bin counts per axis.
}

// NewBinGrid computes per-axis bin counts for the given bin edge length,
// following spec.md §4.1: nbAxis = ceil(2^nvAxisP2 * voxelSize / binSize) + 1.
// It returns a ConfigError-flavoured error if the total bin count would
// exceed BinIDMax.
func NewBinGrid(d *Domain, binSize float64) (*BinGrid, error) {
	if binSize <= 0 {
		return nil, fmt.Errorf("spatial: bin size %g must be positive", binSize)
	}
	voxelSize := d.Length * VoxelResolution
	axisBins := func(bits int) float64 {
		span := math.Pow(2, float64(bits)) * voxelSize
		return math.Ceil(span/binSize) + 1
	}
	fx, fy, fz := axisBins(d.Bits[0]), axisBins(d.Bits[1]), axisBins(d.Bits[2])
	total := fx * fy * fz
	if total > float64(BinIDMax) || fx > math.MaxUint32 || fy > math.MaxUint32 || fz > math.MaxUint32 {
		return nil, fmt.Errorf("spatial: %g total bins exceeds the %d bin-id capacity; increase bin size", total, uint64(BinIDMax)+1)
	}
	g := &BinGrid{
		Domain:  d,
		BinSize: binSize,
		NbX:     uint32(fx),
		NbY:     uint32(fy),
		NbZ:     uint32(fz),
	}
	return g, nil
}

// TotalBins returns the total number of bins in the grid.
func (g *BinGrid) TotalBins() uint64 { return uint64(g.NbX) * uint64(g.NbY) * uint64(g.NbZ) }

// BinCoord is a bin's integer (x,y,z) cell coordinate.
type BinCoord struct{ X, Y, Z int64 }

// Less orders bin coordinates lexicographically (X-major), used for the
// owner-bin dedup rule in spec.md §4.6.
func (c BinCoord) Less(o BinCoord) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.Z < o.Z
}

// CoordAt returns the bin coordinate containing the physical-unit
// position (x,y,z) relative to the domain's lower corner.
func (g *BinGrid) CoordAt(x, y, z float64) BinCoord {
	return BinCoord{
		X: int64(math.Floor(x / g.BinSize)),
		Y: int64(math.Floor(y / g.BinSize)),
		Z: int64(math.Floor(z / g.BinSize)),
	}
}

// ID converts a bin coordinate to a flat BinID, or false if the
// coordinate falls outside the grid.
func (g *BinGrid) ID(c BinCoord) (BinID, bool) {
	if c.X < 0 || c.Y < 0 || c.Z < 0 || uint32(c.X) >= g.NbX || uint32(c.Y) >= g.NbY || uint32(c.Z) >= g.NbZ {
		return 0, false
	}
	id := uint64(c.X) + uint64(c.Y)*uint64(g.NbX) + uint64(c.Z)*uint64(g.NbX)*uint64(g.NbY)
	return BinID(id), true
}

// CoordOf is the inverse of ID.
func (g *BinGrid) CoordOf(id BinID) BinCoord {
	n := uint64(id)
	x := n % uint64(g.NbX)
	n /= uint64(g.NbX)
	y := n % uint64(g.NbY)
	z := n / uint64(g.NbY)
	return BinCoord{X: int64(x), Y: int64(y), Z: int64(z)}
}

// BoxRange returns the inclusive range of bin coordinates an
// axis-aligned box [min,max] (already inflated by the contact envelope)
// overlaps.
func (g *BinGrid) BoxRange(minX, minY, minZ, maxX, maxY, maxZ float64) (lo, hi BinCoord) {
	lo = g.CoordAt(minX, minY, minZ)
	hi = g.CoordAt(maxX, maxY, maxZ)
	return
}

// TouchPair is one (bin, primitive) membership emitted by the broad phase
// before sorting and run-length encoding, grounded on DEM-Engine's
// runLength.cpp staging format.
type TouchPair struct {
	Bin       BinID
	Primitive uint32
}

// RunLengthEncode takes touch pairs already sorted ascending by Bin and
// collapses them into per-bin (offset, count) spans over a flat,
// bin-major primitive-id array. It is the Go counterpart of the original
// engine's runLength.cpp helper: a single linear pass that closes the
// current run whenever the bin id changes.
func RunLengthEncode(sorted []TouchPair) (ids []uint32, offsets map[BinID]uint32, counts map[BinID]uint32) {
	ids = make([]uint32, len(sorted))
	offsets = make(map[BinID]uint32)
	counts = make(map[BinID]uint32)
	var cur BinID
	var runStart int
	haveRun := false
	for i, tp := range sorted {
		ids[i] = tp.Primitive
		if !haveRun || tp.Bin != cur {
			if haveRun {
				offsets[cur] = uint32(runStart)
				counts[cur] = uint32(i - runStart)
			}
			cur = tp.Bin
			runStart = i
			haveRun = true
		}
	}
	if haveRun {
		offsets[cur] = uint32(runStart)
		counts[cur] = uint32(len(sorted) - runStart)
	}
	return
}
