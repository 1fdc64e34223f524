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
	"math"
	"testing"

	"github.com/OpenPSG/eegprep/board"
	"github.com/OpenPSG/eegprep/dsp"
	"github.com/OpenPSG/eegprep/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() board.Profile {
	return board.Profile{
		Variant:      board.Synthetic,
		EEGChannels:  []int{0, 1},
		SampleRate:   250,
		ChannelNames: []string{"C3", "C4"},
	}
}

func testMatrix(cols int) session.Matrix {
	m := session.Matrix{
		make([]float64, cols),
		make([]float64, cols),
		make([]float64, cols), // timestamp row
	}
	for i := 0; i < cols; i++ {
		m[0][i] = math.Sin(2 * math.Pi * 10 * float64(i) / 250)
		m[1][i] = math.Cos(2 * math.Pi * 20 * float64(i) / 250)
		m[2][i] = float64(i)
	}
	return m
}

func cloneMatrix(m session.Matrix) session.Matrix {
	out := make(session.Matrix, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func TestScale(t *testing.T) {
	cond := session.Conditioner{Profile: testProfile()}

	m := testMatrix(100)
	orig := cloneMatrix(m)
	m = cond.Scale(m)

	for i := 0; i < 100; i++ {
		assert.Equal(t, orig[0][i]*1e-6, m[0][i])
		assert.Equal(t, orig[1][i]*1e-6, m[1][i])
	}
	// The timestamp row is not an EEG channel and must not be scaled.
	assert.Equal(t, orig[2], m[2])
}

func TestPreprocessAllStagesDisabled(t *testing.T) {
	cond := session.Conditioner{Profile: testProfile()}

	m := cond.Scale(testMatrix(500))
	want := cloneMatrix(m)

	got, err := cond.Preprocess(m, session.PipelineOptions{})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPreprocessDefaultPipeline(t *testing.T) {
	opts := session.DefaultPipeline()
	assert.True(t, opts.Notch)
	assert.True(t, opts.Bandpass)
	assert.True(t, opts.Denoise)
	assert.Equal(t, session.DefaultDenoiseMethod, opts.DenoiseMethod)
	assert.Equal(t, session.DenoiseMethod("coif3"), opts.DenoiseMethod)

	cond := session.Conditioner{Profile: testProfile()}
	m := cond.Scale(testMatrix(2500))
	ts := append([]float64(nil), m[2]...)

	got, err := cond.Preprocess(m, opts)
	require.NoError(t, err)

	// Conditioning never touches the timestamp row.
	assert.Equal(t, ts, got[2])
	for _, ch := range []int{0, 1} {
		for _, v := range got[ch] {
			require.False(t, math.IsNaN(v))
		}
	}
}

func TestFilterUnknownKind(t *testing.T) {
	cond := session.Conditioner{Profile: testProfile()}

	m := testMatrix(100)
	want := cloneMatrix(m)

	_, err := cond.Filter(m, session.FilterKind("lowpass"), 10, 5, 2)
	require.ErrorIs(t, err, session.ErrUnknownFilter)

	// Validation happens before any channel is touched.
	assert.Equal(t, want, m)
}

func TestFilterFailsOnNonFiniteSamples(t *testing.T) {
	cond := session.Conditioner{Profile: testProfile()}

	m := testMatrix(500)
	m[0][250] = math.NaN()

	_, err := cond.Filter(m, session.FilterNotch, 60, 2, 4)
	require.Error(t, err)
}

func TestDenoiseMeanDeterministic(t *testing.T) {
	run := func() session.Matrix {
		cond := session.Conditioner{Profile: testProfile()}
		m, err := cond.Denoise(testMatrix(300), session.DenoiseMean)
		require.NoError(t, err)
		return m
	}

	assert.Equal(t, run(), run())
}

func TestDenoiseMedian(t *testing.T) {
	cond := session.Conditioner{Profile: testProfile()}
	_, err := cond.Denoise(testMatrix(300), session.DenoiseMedian)
	require.NoError(t, err)
}

func TestDenoiseUnknownWavelet(t *testing.T) {
	cond := session.Conditioner{Profile: testProfile()}

	m := testMatrix(100)
	want := cloneMatrix(m)

	_, err := cond.Denoise(m, session.DenoiseMethod("bior9.9"))
	require.ErrorIs(t, err, dsp.ErrUnknownWavelet)
	assert.Equal(t, want, m)
}
