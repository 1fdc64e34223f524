// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package session assembles raw acquisition sessions into annotated
// multichannel records: it loads sample matrices and event tables, aligns
// events onto a stimulus channel, conditions the EEG channels and
// concatenates per-run records into one continuous recording.
package session

import "github.com/pkg/errors"

// Matrix is a raw sample matrix: rows are channels in acquisition order,
// columns are time samples. The last row is a monotonically non-decreasing
// timestamp sequence used to join event tables onto the samples.
type Matrix [][]float64

// Rows returns the number of channel rows.
func (m Matrix) Rows() int { return len(m) }

// Cols returns the number of time samples.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Timestamps returns the timestamp row (the last row of the matrix).
func (m Matrix) Timestamps() []float64 {
	if len(m) == 0 {
		return nil
	}
	return m[len(m)-1]
}

// validate checks that the matrix is rectangular and has at least one
// channel row ahead of the timestamp row.
func (m Matrix) validate() error {
	if len(m) < 2 {
		return errors.Errorf("matrix needs at least 2 rows, got %d", len(m))
	}
	for i, row := range m {
		if len(row) != len(m[0]) {
			return errors.Errorf("ragged matrix: row %d has %d samples, row 0 has %d",
				i, len(row), len(m[0]))
		}
	}
	return nil
}

// Event is one entry of a session's event table. Code has already been
// incremented at load time, so zero always means "no event".
type Event struct {
	Code      int
	Timestamp float64
}
