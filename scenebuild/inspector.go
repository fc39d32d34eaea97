// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package scenebuild

import (
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/galvanized/dem/family"
	"github.com/galvanized/dem/scene"
)

// Inspector aggregates one scalar quantity, optionally filtered by a
// family-level predicate, across every owner in the scene (spec.md §6
// CreateInspector). Unlike a Tracker it never names a single owner —
// Evaluate recomputes the aggregate fresh from the live scene.
type Inspector struct {
	quantity  string
	predicate family.Expr // nil means "every owner".
}

// Quantities CreateInspector accepts. These mirror the sphere CSV
// column names of spec.md §6 rather than inventing a second
// vocabulary.
const (
	QuantitySpeed  = "speed"
	QuantityPosX   = "pos.x"
	QuantityPosY   = "pos.y"
	QuantityPosZ   = "pos.z"
	QuantityVelX   = "vel.x"
	QuantityVelY   = "vel.y"
	QuantityVelZ   = "vel.z"
	QuantityFamily = "family"
)

// InspectorResult is one Evaluate call's aggregate: mean, variance, and
// extrema over every owner the predicate admitted.
type InspectorResult struct {
	Count          int
	Mean, Variance float64
	Min, Max       float64
}

func ownerQuantity(quantity string, domain quantityDomain, id uint32, o scene.Owner) (float64, error) {
	switch quantity {
	case QuantitySpeed:
		return floats.Norm([]float64{o.Vel.X, o.Vel.Y, o.Vel.Z}, 2), nil
	case QuantityPosX, QuantityPosY, QuantityPosZ:
		x, y, z, err := domain.pos(id)
		if err != nil {
			return 0, err
		}
		switch quantity {
		case QuantityPosX:
			return x, nil
		case QuantityPosY:
			return y, nil
		default:
			return z, nil
		}
	case QuantityVelX:
		return o.Vel.X, nil
	case QuantityVelY:
		return o.Vel.Y, nil
	case QuantityVelZ:
		return o.Vel.Z, nil
	case QuantityFamily:
		return float64(o.Family), nil
	default:
		return 0, fmt.Errorf("scenebuild: inspector: unknown quantity %q", quantity)
	}
}

// quantityDomain is the narrow slice of *spatial.Domain/*scene.Scene an
// Inspector needs to convert a voxel address to physical position,
// kept as an interface so inspector.go doesn't import spatial/scene's
// full surface.
type quantityDomain interface {
	pos(id uint32) (x, y, z float64, err error)
}

type sceneDomain struct{ sc *scene.Scene }

func (d sceneDomain) pos(id uint32) (float64, float64, float64, error) { return d.sc.GetOwnerPos(id) }

// evaluate computes the inspector's aggregate over every owner admitted
// by its predicate, given the live scene and owner snapshot.
func (insp *Inspector) evaluate(sc *scene.Scene, owners []scene.Owner) (InspectorResult, error) {
	dom := sceneDomain{sc: sc}
	var values []float64
	for id, o := range owners {
		if insp.predicate != nil {
			vars := map[string]float64{"family": float64(o.Family)}
			if insp.predicate.Eval(vars) == 0 {
				continue
			}
		}
		v, err := ownerQuantity(insp.quantity, dom, uint32(id), o)
		if err != nil {
			return InspectorResult{}, err
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return InspectorResult{}, nil
	}
	mean, variance := stat.MeanVariance(values, nil)
	return InspectorResult{
		Count: len(values), Mean: mean, Variance: variance,
		Min: floats.Min(values), Max: floats.Max(values),
	}, nil
}

// CreateInspector registers an aggregate quantity to evaluate later via
// Scene.Inspect (spec.md §6). predicate may be nil to mean "every
// owner".
func (b *Builder) CreateInspector(quantity string, predicate family.Expr) ObjectHandle {
	b.assertNotInitialized("CreateInspector")
	h := ObjectHandle(uuid.New())
	b.inspectors[h] = &Inspector{quantity: quantity, predicate: predicate}
	return h
}

// Track registers interest in a single owner's pose/velocity for later
// lookup via Scene.TrackedPos/TrackedVel (spec.md §6). handle must resolve to
// exactly one owner: an AddExternalObject/AddWavefrontMeshObject
// handle, or a single-instance AddClumps batch. Multi-owner batches are
// rejected — tracking ambiguously names "all of them" or "none of
// them", and the spec gives no selection syntax to disambiguate.
func (b *Builder) Track(handle ObjectHandle) (ObjectHandle, error) {
	b.assertNotInitialized("Track")
	if _, ok := b.externals[handle]; ok {
		b.pendingTrackers = append(b.pendingTrackers, handle)
		return handle, nil
	}
	for _, batch := range b.batches {
		if batch.handle == handle {
			if len(batch.positions) != 1 {
				return ObjectHandle{}, fmt.Errorf("scenebuild: Track: batch handle names %d owners, want exactly 1", len(batch.positions))
			}
			b.pendingTrackers = append(b.pendingTrackers, handle)
			return handle, nil
		}
	}
	return ObjectHandle{}, fmt.Errorf("scenebuild: Track: unknown object handle")
}
