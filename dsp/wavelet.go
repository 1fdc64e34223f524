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
	"sort"

	"github.com/pkg/errors"
)

// ErrUnknownWavelet is returned when a wavelet name is not in the registry.
var ErrUnknownWavelet = errors.New("unknown wavelet")

// Orthonormal scaling (reconstruction lowpass) filters, keyed by the usual
// family names. Each sums to sqrt(2).
var wavelets = map[string][]float64{
	"haar": {
		0.7071067811865476, 0.7071067811865476,
	},
	"db2": {
		0.48296291314469025, 0.836516303737469,
		0.22414386804185735, -0.12940952255092145,
	},
	"db4": {
		0.23037781330885523, 0.7148465705525415,
		0.6308807679295904, -0.02798376941698385,
		-0.18703481171888114, 0.030841381835986965,
		0.032883011666982945, -0.010597401784997278,
	},
	"sym4": {
		0.03222310060404270, -0.012603967262037833,
		-0.09921954357684722, 0.29785779560527736,
		0.8037387518059161, 0.49761866763201545,
		-0.02963552764599851, -0.07576571478927333,
	},
	"coif3": {
		-0.0000345997728362126, -0.0000709833031381413,
		0.0004662169601128863, 0.0011175187708906016,
		-0.0025745176887502236, -0.0090079761366615805,
		0.0158805448636158,
		0.0345550275730616, -0.0823019271068856,
		-0.0717998216193117, 0.4284834763776168,
		0.7937772226256206, 0.4051769024096169,
		-0.0611233900026726, -0.0657719112818555,
		0.0234526961418363, 0.0077825964273254,
		-0.0037935128644910,
	},
}

// WaveletDenoise shrinks the detail coefficients of a level-deep wavelet
// decomposition of data using soft thresholding with the universal
// threshold, then reconstructs in place.
func WaveletDenoise(data []float64, name string, level int) error {
	h, ok := wavelets[name]
	if !ok {
		return errors.Wrapf(ErrUnknownWavelet, "%q", name)
	}
	if level < 1 {
		return errors.Wrapf(ErrBadFilterSpec, "decomposition level %d", level)
	}
	if len(data) < 2 {
		return nil
	}

	// Decomposition filters are the time-reversed scaling filter and its
	// quadrature mirror.
	n := len(h)
	lo := make([]float64, n)
	hi := make([]float64, n)
	for i := 0; i < n; i++ {
		lo[i] = h[n-1-i]
		sign := 1.0
		if (n-1-i)%2 != 0 {
			sign = -1.0
		}
		hi[i] = sign * h[i]
	}

	// The periodized transform needs an even length at every level; pad by
	// repeating the final sample and truncate after reconstruction.
	orig := len(data)
	block := 1 << uint(level)
	padded := ((orig + block - 1) / block) * block
	x := make([]float64, padded)
	copy(x, data)
	for i := orig; i < padded; i++ {
		x[i] = data[orig-1]
	}

	approx := x
	details := make([][]float64, 0, level)
	for l := 0; l < level && len(approx) >= 2; l++ {
		a, d := analyze(approx, lo, hi)
		details = append(details, d)
		approx = a
	}

	thr := universalThreshold(details[0], orig)
	for _, d := range details {
		for i, v := range d {
			d[i] = softThreshold(v, thr)
		}
	}

	for i := len(details) - 1; i >= 0; i-- {
		approx = synthesize(approx, details[i], lo, hi)
	}

	copy(data, approx[:orig])
	return nil
}

// analyze performs one level of the periodized orthogonal wavelet transform.
func analyze(x, lo, hi []float64) (approx, detail []float64) {
	half := len(x) / 2
	approx = make([]float64, half)
	detail = make([]float64, half)
	for k := 0; k < half; k++ {
		var a, d float64
		for m := range lo {
			v := x[(2*k+m)%len(x)]
			a += lo[m] * v
			d += hi[m] * v
		}
		approx[k] = a
		detail[k] = d
	}
	return approx, detail
}

// synthesize inverts analyze. The analysis operator is orthogonal, so the
// inverse is its transpose.
func synthesize(approx, detail, lo, hi []float64) []float64 {
	n := len(approx) * 2
	x := make([]float64, n)
	for k := 0; k < len(approx); k++ {
		for m := range lo {
			x[(2*k+m)%n] += approx[k]*lo[m] + detail[k]*hi[m]
		}
	}
	return x
}

// universalThreshold estimates the noise level from the finest detail band
// (median absolute deviation over 0.6745) and scales it by sqrt(2 ln N).
func universalThreshold(finest []float64, n int) float64 {
	if len(finest) == 0 || n < 2 {
		return 0
	}
	abs := make([]float64, len(finest))
	for i, v := range finest {
		abs[i] = math.Abs(v)
	}
	sort.Float64s(abs)

	var med float64
	mid := len(abs) / 2
	if len(abs)%2 == 1 {
		med = abs[mid]
	} else {
		med = (abs[mid-1] + abs[mid]) / 2
	}

	sigma := med / 0.6745
	return sigma * math.Sqrt(2*math.Log(float64(n)))
}

func softThreshold(v, thr float64) float64 {
	switch {
	case v > thr:
		return v - thr
	case v < -thr:
		return v + thr
	default:
		return 0
	}
}

// KnownWavelet reports whether name is a supported wavelet family.
func KnownWavelet(name string) bool {
	_, ok := wavelets[name]
	return ok
}
