// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package spatial implements the hierarchical voxel/sub-voxel integer
// addressing scheme and bin-based spatial subdivision used by the kinematic
// thread's broad phase.
//
// Package spatial is provided as part of the dem simulation engine.
package spatial

// VoxelCountPower2 is the total number of bits split between the three
// axis voxel counts: nvXp2 + nvYp2 + nvZp2 == VoxelCountPower2.
const VoxelCountPower2 = 64

// VoxelResPower2 is the number of bits of sub-voxel resolution along each
// axis. A sub-voxel coordinate is an integer in [0, 2^VoxelResPower2).
const VoxelResPower2 = 16

// VoxelResolution is 2^VoxelResPower2, the number of sub-voxel counts
// spanning one voxel along an axis.
const VoxelResolution = 1 << VoxelResPower2

// BinIDMax is the largest bin index the configured bin-index type
// (uint32) can represent. Exceeding it at Initialize is a ConfigError.
const BinIDMax = 1<<32 - 1
