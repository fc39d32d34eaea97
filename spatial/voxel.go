package spatial

import "math"

// Address is the spatial address of a point: a packed voxel id plus a
// sub-voxel integer offset along each axis, per spec.md §3. VoxelID packs
// integer voxel coordinates (ix, iy, iz) using the domain's axis bit
// widths; (Sx, Sy, Sz) live in [0, VoxelResolution).
type Address struct {
	VoxelID    uint64
	Sx, Sy, Sz int32
}

// Domain converts between physical-unit positions and spatial addresses
// for one simulation's chosen length unit and axis bit allocation.
type Domain struct {
	Length float64  // physical length ℓ of one sub-voxel count.
	Bits   AxisBits // per-axis voxel index bit widths.
}

// NewDomain builds a Domain whose length unit and axis bit allocation
// satisfy invariant (1) of spec.md §3 for the given user box dimensions.
// exactAxis selects which axis (0=X,1=Y,2=Z, anything else means none) is
// sized exactly; see VoxelScale.
func NewDomain(boxX, boxY, boxZ float64, exactAxis int) (*Domain, error) {
	extents := [3]float64{boxX, boxY, boxZ}
	bits, err := AllocateAxisBits(extents)
	if err != nil {
		return nil, err
	}
	length := VoxelScale(extents, bits, exactAxis)
	return &Domain{Length: length, Bits: bits}, nil
}

// voxelMask returns the mask selecting the low b bits.
func voxelMask(b int) uint64 {
	if b >= 64 {
		return math.MaxUint64
	}
	return 1<<uint(b) - 1
}

// PackVoxelID packs per-axis voxel indices into a single voxel id using
// the domain's axis bit widths: X occupies the low bits, then Y, then Z.
func (d *Domain) PackVoxelID(ix, iy, iz uint64) uint64 {
	ix &= voxelMask(d.Bits[0])
	iy &= voxelMask(d.Bits[1])
	iz &= voxelMask(d.Bits[2])
	return ix | iy<<uint(d.Bits[0]) | iz<<uint(d.Bits[0]+d.Bits[1])
}

// UnpackVoxelID is the inverse of PackVoxelID.
func (d *Domain) UnpackVoxelID(id uint64) (ix, iy, iz uint64) {
	ix = id & voxelMask(d.Bits[0])
	iy = (id >> uint(d.Bits[0])) & voxelMask(d.Bits[1])
	iz = (id >> uint(d.Bits[0]+d.Bits[1])) & voxelMask(d.Bits[2])
	return
}

// ToAddress converts a physical-unit position, relative to the domain's
// lower corner, to a spatial address.
func (d *Domain) ToAddress(x, y, z float64) Address {
	countX := int64(math.Floor(x/d.Length + 0.5))
	countY := int64(math.Floor(y/d.Length + 0.5))
	countZ := int64(math.Floor(z/d.Length + 0.5))
	ix, sx := divmod(countX, VoxelResolution)
	iy, sy := divmod(countY, VoxelResolution)
	iz, sz := divmod(countZ, VoxelResolution)
	return Address{
		VoxelID: d.PackVoxelID(uint64(ix), uint64(iy), uint64(iz)),
		Sx:      int32(sx), Sy: int32(sy), Sz: int32(sz),
	}
}

// ToPos converts a spatial address back to a physical-unit position
// relative to the domain's lower corner.
func (d *Domain) ToPos(a Address) (x, y, z float64) {
	ix, iy, iz := d.UnpackVoxelID(a.VoxelID)
	x = (float64(ix)*VoxelResolution + float64(a.Sx)) * d.Length
	y = (float64(iy)*VoxelResolution + float64(a.Sy)) * d.Length
	z = (float64(iz)*VoxelResolution + float64(a.Sz)) * d.Length
	return
}

// divmod performs a floor-division split of count into a voxel index and
// a sub-voxel remainder in [0, res).
func divmod(count int64, res int64) (idx, rem int64) {
	idx = count / res
	rem = count % res
	if rem < 0 {
		rem += res
		idx--
	}
	return
}

// Normalize carries any sub-voxel overflow (spec.md §3 invariant 2) back
// into the voxel index. Integration can push Sx/Sy/Sz outside
// [0, VoxelResolution); Normalize must run immediately afterward.
func (d *Domain) Normalize(a Address) Address {
	ix, iy, iz := d.UnpackVoxelID(a.VoxelID)
	cx, sx := divmod(int64(ix)*VoxelResolution+int64(a.Sx), VoxelResolution)
	cy, sy := divmod(int64(iy)*VoxelResolution+int64(a.Sy), VoxelResolution)
	cz, sz := divmod(int64(iz)*VoxelResolution+int64(a.Sz), VoxelResolution)
	return Address{
		VoxelID: d.PackVoxelID(uint64(cx), uint64(cy), uint64(cz)),
		Sx:      int32(sx), Sy: int32(sy), Sz: int32(sz),
	}
}
