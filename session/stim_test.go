// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package session_test

import (
	"testing"

	"github.com/OpenPSG/eegprep/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stimMatrix(timestamps []float64) session.Matrix {
	eeg := make([]float64, len(timestamps))
	return session.Matrix{eeg, timestamps}
}

func TestBuildStimulus(t *testing.T) {
	m := stimMatrix([]float64{0, 1, 2, 3, 4})
	events := []session.Event{
		{Code: 2, Timestamp: 1},
		{Code: 5, Timestamp: 3},
	}

	stim, gaps := session.BuildStimulus(m, events)
	assert.Equal(t, []float64{0, 2, 0, 5, 0}, stim)
	assert.Empty(t, gaps)
}

func TestBuildStimulusReportsUnmatchedEvents(t *testing.T) {
	m := stimMatrix([]float64{0, 1, 2, 3, 4})
	events := []session.Event{
		{Code: 2, Timestamp: 1},
		{Code: 7, Timestamp: 10}, // no matching column
	}

	stim, gaps := session.BuildStimulus(m, events)
	assert.Equal(t, []float64{0, 2, 0, 0, 0}, stim)

	require.Len(t, gaps, 1)
	assert.Equal(t, session.GapNoMatch, gaps[0].Reason)
	assert.Equal(t, 7, gaps[0].Event.Code)
}

func TestBuildStimulusDuplicateTimestampLastWins(t *testing.T) {
	m := stimMatrix([]float64{0, 1, 2})
	events := []session.Event{
		{Code: 2, Timestamp: 1},
		{Code: 5, Timestamp: 1},
	}

	stim, gaps := session.BuildStimulus(m, events)
	assert.Equal(t, []float64{0, 5, 0}, stim)

	require.Len(t, gaps, 1)
	assert.Equal(t, session.GapOverwrite, gaps[0].Reason)
	assert.Equal(t, 5, gaps[0].Event.Code)
}

func TestBuildStimulusDuplicateColumnsAllSet(t *testing.T) {
	// Duplicate timestamps in the sample row: every matching column is set.
	m := stimMatrix([]float64{0, 1, 1, 2})
	events := []session.Event{{Code: 3, Timestamp: 1}}

	stim, gaps := session.BuildStimulus(m, events)
	assert.Equal(t, []float64{0, 3, 3, 0}, stim)
	assert.Empty(t, gaps)
}

func TestBuildStimulusNoEvents(t *testing.T) {
	m := stimMatrix([]float64{0, 1, 2})

	stim, gaps := session.BuildStimulus(m, nil)
	assert.Equal(t, []float64{0, 0, 0}, stim)
	assert.Empty(t, gaps)
}
