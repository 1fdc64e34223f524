// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package dsp

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Spectrum is a one-sided power spectral density estimate.
type Spectrum struct {
	Freqs []float64 // bin center frequencies in Hz
	Power []float64 // power per bin
}

// PSD estimates the one-sided power spectrum of x using a Hann window and a
// single FFT over the whole signal.
func PSD(x []float64, sampleRate float64) Spectrum {
	if len(x) == 0 || sampleRate <= 0 {
		return Spectrum{}
	}

	buf := make([]float64, len(x))
	copy(buf, x)
	window.Apply(buf, window.Hann)

	spec := fft.FFTReal(buf)
	bins := len(buf)/2 + 1

	s := Spectrum{
		Freqs: make([]float64, bins),
		Power: make([]float64, bins),
	}
	for i := 0; i < bins; i++ {
		mag := cmplx.Abs(spec[i])
		s.Freqs[i] = float64(i) * sampleRate / float64(len(buf))
		s.Power[i] = mag * mag / float64(len(buf))
	}
	return s
}

// BandPower sums the spectrum's power between lo and hi Hz (inclusive).
func (s Spectrum) BandPower(lo, hi float64) float64 {
	var sum float64
	for i, f := range s.Freqs {
		if f >= lo && f <= hi {
			sum += s.Power[i]
		}
	}
	return sum
}

// PeakFrequency returns the frequency of the strongest bin above DC.
func (s Spectrum) PeakFrequency() float64 {
	best, bestPower := 0.0, math.Inf(-1)
	for i, f := range s.Freqs {
		if i == 0 {
			continue
		}
		if s.Power[i] > bestPower {
			best, bestPower = f, s.Power[i]
		}
	}
	return best
}

// RMS returns the root mean square amplitude of x.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}
