// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package montage provides approximate unit-sphere electrode positions for
// the international 10-20 system. Positions are head-frame Cartesian
// coordinates: x to the right ear, y to the nasion, z to the vertex.
package montage

// Position is a head-frame electrode location on the unit sphere.
type Position struct {
	X, Y, Z float64
}

var standard1020 = map[string]Position{
	"Fp1": {-0.309, 0.951, 0.000},
	"Fp2": {0.309, 0.951, 0.000},
	"F7":  {-0.809, 0.588, 0.000},
	"F8":  {0.809, 0.588, 0.000},
	"F3":  {-0.545, 0.673, 0.500},
	"F4":  {0.545, 0.673, 0.500},
	"Fz":  {0.000, 0.719, 0.695},
	"FC5": {-0.850, 0.310, 0.425},
	"FC6": {0.850, 0.310, 0.425},
	"C3":  {-0.707, 0.000, 0.707},
	"C4":  {0.707, 0.000, 0.707},
	"Cz":  {0.000, 0.000, 1.000},
	"T7":  {-1.000, 0.000, 0.000},
	"T8":  {1.000, 0.000, 0.000},
	"CP5": {-0.850, -0.310, 0.425},
	"CP6": {0.850, -0.310, 0.425},
	"P3":  {-0.545, -0.673, 0.500},
	"P4":  {0.545, -0.673, 0.500},
	"Pz":  {0.000, -0.719, 0.695},
	"P7":  {-0.809, -0.588, 0.000},
	"P8":  {0.809, -0.588, 0.000},
	"O1":  {-0.309, -0.951, 0.000},
	"O2":  {0.309, -0.951, 0.000},
	"Oz":  {0.000, -1.000, 0.000},
}

// Standard1020 returns the 10-20 position for an electrode name. The second
// return value reports whether the electrode is part of the montage.
func Standard1020(name string) (Position, bool) {
	p, ok := standard1020[name]
	return p, ok
}
