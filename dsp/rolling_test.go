// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package dsp_test

import (
	"testing"

	"github.com/OpenPSG/eegprep/dsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollingMean(t *testing.T) {
	data := []float64{3, 6, 9, 12, 15}
	require.NoError(t, dsp.Rolling(data, 3, dsp.Mean))

	// Trailing windows, clamped at the start.
	assert.Equal(t, []float64{3, 4.5, 6, 9, 12}, data)
}

func TestRollingMedian(t *testing.T) {
	data := []float64{1, 100, 2, 3, 200}
	require.NoError(t, dsp.Rolling(data, 3, dsp.Median))

	assert.Equal(t, []float64{1, 50.5, 2, 3, 3}, data)
}

func TestRollingMeanDeterministic(t *testing.T) {
	run := func() []float64 {
		data := []float64{0.5, -1.25, 3.75, 2, -0.125, 7, 1}
		require.NoError(t, dsp.Rolling(data, 3, dsp.Mean))
		return data
	}

	assert.Equal(t, run(), run())
}

func TestRollingRejectsBadArguments(t *testing.T) {
	err := dsp.Rolling([]float64{1, 2, 3}, 0, dsp.Mean)
	require.ErrorIs(t, err, dsp.ErrBadFilterSpec)

	err = dsp.Rolling([]float64{1, 2, 3}, 3, dsp.Agg(42))
	require.ErrorIs(t, err, dsp.ErrBadFilterSpec)
}
