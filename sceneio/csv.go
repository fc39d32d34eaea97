// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package sceneio writes per-sphere and per-contact CSV rows, the two
// output record shapes spec.md §6 names. The exact on-disk schema
// beyond the column enumeration is a spec.md Non-goal, so column
// selection and ordering are left to the caller; this package only
// fixes what each named column contains.
package sceneio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/galvanized/dem/contact"
	"github.com/galvanized/dem/dynamic"
	"github.com/galvanized/dem/kinematic"
	"github.com/galvanized/dem/scene"
)

// SphereColumn is one of the per-sphere CSV columns spec.md §6 names.
type SphereColumn int

const (
	ColumnXYZ SphereColumn = iota
	ColumnQuat
	ColumnAbsV
	ColumnVel
	ColumnAngVel
	ColumnAcc
	ColumnAngAcc
	ColumnFamily
	ColumnMat
	ColumnExpFactor
)

// header returns the CSV header field(s) for c.
func (c SphereColumn) header() []string {
	switch c {
	case ColumnXYZ:
		return []string{"x", "y", "z"}
	case ColumnQuat:
		return []string{"qw", "qx", "qy", "qz"}
	case ColumnAbsV:
		return []string{"absv"}
	case ColumnVel:
		return []string{"vx", "vy", "vz"}
	case ColumnAngVel:
		return []string{"wx", "wy", "wz"}
	case ColumnAcc:
		return []string{"ax", "ay", "az"}
	case ColumnAngAcc:
		return []string{"alphax", "alphay", "alphaz"}
	case ColumnFamily:
		return []string{"family"}
	case ColumnMat:
		return []string{"material"}
	case ColumnExpFactor:
		return []string{"exp_factor"}
	default:
		return nil
	}
}

// WriteSphereRows writes one CSV row per sphere primitive in prims
// (non-sphere primitives — analytical planes/plates, mesh facets — are
// not part of this schema and are skipped), with owner id as the first
// column followed by cols in the given order. The sphere's position and
// material come from the primitive; every other column comes from the
// primitive's owning Owner.
func WriteSphereRows(w io.Writer, prims []kinematic.Primitive, owners []scene.Owner, cols []SphereColumn) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"owner"}
	for _, c := range cols {
		header = append(header, c.header()...)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("sceneio: writing sphere CSV header: %w", err)
	}

	for _, p := range prims {
		if p.Kind != kinematic.Sphere {
			continue
		}
		o := owners[p.Owner]
		row := []string{strconv.FormatUint(uint64(p.Owner), 10)}
		for _, c := range cols {
			row = append(row, sphereField(c, p, o)...)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("sceneio: writing sphere CSV row for owner %d: %w", p.Owner, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func sphereField(c SphereColumn, p kinematic.Primitive, o scene.Owner) []string {
	switch c {
	case ColumnXYZ:
		return f3(p.Center.X, p.Center.Y, p.Center.Z)
	case ColumnQuat:
		return []string{ftoa(o.Ori.W), ftoa(o.Ori.X), ftoa(o.Ori.Y), ftoa(o.Ori.Z)}
	case ColumnAbsV:
		return []string{ftoa(floats.Norm([]float64{o.Vel.X, o.Vel.Y, o.Vel.Z}, 2))}
	case ColumnVel:
		return f3(o.Vel.X, o.Vel.Y, o.Vel.Z)
	case ColumnAngVel:
		return f3(o.AVel.X, o.AVel.Y, o.AVel.Z)
	case ColumnAcc:
		return f3(o.Acc.X, o.Acc.Y, o.Acc.Z)
	case ColumnAngAcc:
		return f3(o.AAcc.X, o.AAcc.Y, o.AAcc.Z)
	case ColumnFamily:
		return []string{strconv.FormatUint(uint64(o.Family), 10)}
	case ColumnMat:
		return []string{strconv.Itoa(int(p.Material))}
	case ColumnExpFactor:
		return []string{ftoa(o.Scale)}
	default:
		return nil
	}
}

// ContactColumn is one of the per-contact CSV columns spec.md §6 names.
type ContactColumn int

const (
	ColumnOwners ContactColumn = iota
	ColumnForce
	ColumnPoint
	ColumnComponent
	ColumnNormal
	ColumnTorqueOnlyForce
)

func (c ContactColumn) header() []string {
	switch c {
	case ColumnOwners:
		return []string{"ownerA", "ownerB"}
	case ColumnForce:
		return []string{"fx", "fy", "fz"}
	case ColumnPoint:
		return []string{"pax", "pay", "paz", "pbx", "pby", "pbz"}
	case ColumnComponent:
		return []string{"kind"}
	case ColumnNormal:
		return []string{"nx", "ny", "nz"}
	case ColumnTorqueOnlyForce:
		return []string{"tx", "ty", "tz"}
	default:
		return nil
	}
}

// WriteContactRows writes one CSV row per entry in details (the
// PairForce output of dynamic.EvaluateForcesDetailed) and the matching
// contact.Pair's Kind, in the same order, with cols in the given order.
// pairs and details must be the same length and index-aligned, as
// returned together by EvaluateForcesDetailed's caller.
func WriteContactRows(w io.Writer, pairs []contact.Pair, details []dynamic.PairForce, cols []ContactColumn) error {
	if len(pairs) != len(details) {
		return fmt.Errorf("sceneio: %d contact pairs but %d force-law results", len(pairs), len(details))
	}
	cw := csv.NewWriter(w)
	defer cw.Flush()

	var header []string
	for _, c := range cols {
		header = append(header, c.header()...)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("sceneio: writing contact CSV header: %w", err)
	}

	for i, d := range details {
		var row []string
		for _, c := range cols {
			row = append(row, contactField(c, pairs[i], d)...)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("sceneio: writing contact CSV row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func contactField(c ContactColumn, pair contact.Pair, d dynamic.PairForce) []string {
	switch c {
	case ColumnOwners:
		return []string{strconv.FormatUint(uint64(d.OwnerA), 10), strconv.FormatUint(uint64(d.OwnerB), 10)}
	case ColumnForce:
		return f3(d.Force.X, d.Force.Y, d.Force.Z)
	case ColumnPoint:
		return append(f3(d.PointA.X, d.PointA.Y, d.PointA.Z), f3(d.PointB.X, d.PointB.Y, d.PointB.Z)...)
	case ColumnComponent:
		return []string{pair.Kind.String()}
	case ColumnNormal:
		return f3(d.Normal.X, d.Normal.Y, d.Normal.Z)
	case ColumnTorqueOnlyForce:
		return f3(d.TorqueOnlyForce.X, d.TorqueOnlyForce.Y, d.TorqueOnlyForce.Z)
	default:
		return nil
	}
}

func f3(x, y, z float64) []string { return []string{ftoa(x), ftoa(y), ftoa(z)} }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
