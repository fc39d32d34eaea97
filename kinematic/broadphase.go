// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package kinematic

import (
	"fmt"
	"sort"

	"github.com/galvanized/dem/spatial"
)

// Bounds is a primitive's axis-aligned box in world units, already
// inflated by the contact envelope β.
type Bounds struct {
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64
}

// BoundsOf computes primitive i's AABB inflated by beta.
func BoundsOf(p Primitive, beta float64) Bounds {
	switch p.Kind {
	case Sphere:
		r := p.Radius + beta
		return Bounds{
			MinX: p.Center.X - r, MinY: p.Center.Y - r, MinZ: p.Center.Z - r,
			MaxX: p.Center.X + r, MaxY: p.Center.Y + r, MaxZ: p.Center.Z + r,
		}
	case Facet:
		b := Bounds{
			MinX: p.Tri[0].X, MinY: p.Tri[0].Y, MinZ: p.Tri[0].Z,
			MaxX: p.Tri[0].X, MaxY: p.Tri[0].Y, MaxZ: p.Tri[0].Z,
		}
		for _, v := range p.Tri[1:] {
			b.MinX, b.MaxX = min(b.MinX, v.X), max(b.MaxX, v.X)
			b.MinY, b.MaxY = min(b.MinY, v.Y), max(b.MaxY, v.Y)
			b.MinZ, b.MaxZ = min(b.MinZ, v.Z), max(b.MaxZ, v.Z)
		}
		b.MinX -= beta
		b.MinY -= beta
		b.MinZ -= beta
		b.MaxX += beta
		b.MaxY += beta
		b.MaxZ += beta
		return b
	default: // Plane, Plate: analytical owners cover whatever bins their domain spans.
		return Bounds{MinX: p.Center.X - beta, MinY: p.Center.Y - beta, MinZ: p.Center.Z - beta,
			MaxX: p.Center.X + beta, MaxY: p.Center.Y + beta, MaxZ: p.Center.Z + beta}
	}
}

// Production is one kT broad+narrow phase run's intermediate state: the
// primitive list, each primitive's bin range, and the owner-bin sorted
// touch list, kept together because the narrow phase needs both the
// run-length spans and each primitive's full bin range to apply the
// owner-bin dedup rule (spec.md §4.6).
type Production struct {
	Grid       *spatial.BinGrid
	Beta       float64
	Primitives []Primitive
	Ranges     []binRange // Ranges[i] is primitive i's inclusive bin-coordinate range.
	Offsets    map[spatial.BinID]uint32
	Counts     map[spatial.BinID]uint32
	Sorted     []uint32 // bin-major-sorted primitive indices, run-length encoded via Offsets/Counts.
}

type binRange struct {
	Lo, Hi spatial.BinCoord
}

// MaxSpheresPerBin bounds the broad phase's per-bin sphere population
// (spec.md §4.5); exceeding it is a runtime assertion dT must abort on.
const MaxSpheresPerBin = 512

// BroadPhase bins every primitive, run-length-encodes the result, and
// returns the Production the narrow phase consumes. It returns an error
// (a runtime-assertion per spec.md §7) if any bin would exceed
// MaxSpheresPerBin.
func BroadPhase(grid *spatial.BinGrid, prims []Primitive, beta float64) (*Production, error) {
	ranges := make([]binRange, len(prims))
	var touches []spatial.TouchPair
	for i, p := range prims {
		b := BoundsOf(p, beta)
		lo, hi := grid.BoxRange(b.MinX, b.MinY, b.MinZ, b.MaxX, b.MaxY, b.MaxZ)
		ranges[i] = binRange{Lo: lo, Hi: hi}
		for x := lo.X; x <= hi.X; x++ {
			for y := lo.Y; y <= hi.Y; y++ {
				for z := lo.Z; z <= hi.Z; z++ {
					id, ok := grid.ID(spatial.BinCoord{X: x, Y: y, Z: z})
					if !ok {
						continue
					}
					touches = append(touches, spatial.TouchPair{Bin: id, Primitive: uint32(i)})
				}
			}
		}
	}
	sort.Slice(touches, func(i, j int) bool { return touches[i].Bin < touches[j].Bin })
	ids, offsets, counts := spatial.RunLengthEncode(touches)
	for bin, c := range counts {
		if c > MaxSpheresPerBin {
			return nil, fmt.Errorf("kinematic: bin %d holds %d primitives, exceeding MaxSpheresPerBin=%d; reduce bin size or raise the per-bin capacity", bin, c, MaxSpheresPerBin)
		}
	}
	return &Production{
		Grid: grid, Beta: beta, Primitives: prims, Ranges: ranges,
		Offsets: offsets, Counts: counts, Sorted: ids,
	}, nil
}

// binMembers returns the primitive indices touching bin, via the
// run-length-encoded arrays.
func (p *Production) binMembers(bin spatial.BinID) []uint32 {
	off, ok := p.Offsets[bin]
	if !ok {
		return nil
	}
	return p.Sorted[off : off+p.Counts[bin]]
}
