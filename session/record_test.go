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

func assemble(t *testing.T, cols int, fill float64) session.Record {
	t.Helper()

	m := testMatrix(cols)
	for i := range m[0] {
		m[0][i] = fill
	}
	stim := make([]float64, cols)

	rec, err := session.ToRecord(m, testProfile(), stim)
	require.NoError(t, err)
	return rec
}

func TestToRecord(t *testing.T) {
	m := testMatrix(100)
	stim := make([]float64, 100)
	stim[10] = 3

	rec, err := session.ToRecord(m, testProfile(), stim)
	require.NoError(t, err)

	require.Len(t, rec.Channels, 3) // 2 EEG + stim
	assert.Equal(t, "C3", rec.Channels[0].Name)
	assert.Equal(t, session.KindEEG, rec.Channels[0].Kind)
	assert.True(t, rec.Channels[0].HasLoc)
	assert.Equal(t, 250.0, rec.Channels[0].SampleRate)

	sti := rec.Channels[2]
	assert.Equal(t, session.StimChannelName, sti.Name)
	assert.Equal(t, session.KindStim, sti.Kind)
	assert.Equal(t, 250.0, sti.SampleRate)
	assert.False(t, sti.HasLoc)

	assert.Equal(t, 100, rec.Samples())
	assert.Equal(t, 3.0, rec.Data[2][10])
	assert.Equal(t, []string{"C3", "C4"}, rec.EEGChannelNames())
}

func TestToRecordOwnsItsData(t *testing.T) {
	m := testMatrix(50)
	stim := make([]float64, 50)

	rec, err := session.ToRecord(m, testProfile(), stim)
	require.NoError(t, err)

	m[0][0] = 12345
	stim[0] = 9

	assert.NotEqual(t, 12345.0, rec.Data[0][0])
	assert.Equal(t, 0.0, rec.Data[2][0])
}

func TestToRecordStimLengthMismatch(t *testing.T) {
	_, err := session.ToRecord(testMatrix(100), testProfile(), make([]float64, 99))
	require.Error(t, err)
}

func TestConcatenate(t *testing.T) {
	r1 := assemble(t, 100, 1)
	r1.AlignmentGaps = 2
	r2 := assemble(t, 150, 2)
	r2.AlignmentGaps = 1

	out, err := session.Concatenate(r1, r2)
	require.NoError(t, err)

	assert.Equal(t, 250, out.Samples())
	assert.Equal(t, r1.Channels, out.Channels)
	assert.Equal(t, 3, out.AlignmentGaps)

	// Run order is preserved along the time axis.
	assert.Equal(t, 1.0, out.Data[0][0])
	assert.Equal(t, 1.0, out.Data[0][99])
	assert.Equal(t, 2.0, out.Data[0][100])
	assert.Equal(t, 2.0, out.Data[0][249])
}

func TestConcatenateLayoutMismatch(t *testing.T) {
	r1 := assemble(t, 100, 0)

	r2 := assemble(t, 100, 0)
	r2.Channels[0].Name = "F3"

	_, err := session.Concatenate(r1, r2)
	require.ErrorIs(t, err, session.ErrLayoutMismatch)

	r3 := assemble(t, 100, 0)
	r3.Channels[1].SampleRate = 500
	_, err = session.Concatenate(r1, r3)
	require.ErrorIs(t, err, session.ErrLayoutMismatch)
}

func TestConcatenateEmpty(t *testing.T) {
	_, err := session.Concatenate()
	require.Error(t, err)
}

func TestConcatenateSingle(t *testing.T) {
	r := assemble(t, 80, 4)
	out, err := session.Concatenate(r)
	require.NoError(t, err)
	assert.Equal(t, 80, out.Samples())
}
