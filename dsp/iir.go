// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package dsp implements the numeric primitives used to condition raw EEG
// recordings: IIR band filters, rolling aggregation, wavelet denoising and
// spectral estimation.
package dsp

import (
	"math"
	"math/cmplx"

	"github.com/pkg/errors"
)

// IIRKind selects the frequency response shape of a designed filter.
type IIRKind int

const (
	Bandpass IIRKind = iota
	Bandstop
	Highpass
)

// Family selects the analog prototype used for the filter design.
type Family int

const (
	Butterworth Family = iota
	Bessel
)

// IIRSpec describes a filter to design. Center is the band center frequency
// in Hz (the cutoff for Highpass); Bandwidth is the full band width in Hz
// and is ignored for Highpass.
type IIRSpec struct {
	Kind       IIRKind
	Family     Family
	SampleRate float64
	Center     float64
	Bandwidth  float64
	Order      int
}

// ErrBadFilterSpec is returned when a filter cannot be designed from the
// given parameters.
var ErrBadFilterSpec = errors.New("invalid filter specification")

type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// SOSFilter is a cascade of second-order sections applied as a forward
// (causal) IIR filter.
type SOSFilter struct {
	sections []biquad
}

// Bessel lowpass prototype poles, normalized so the -3 dB point sits at
// w = 1 rad/s. Tabulated up to order 4, which covers every filter the
// acquisition pipeline designs.
var besselPoles = map[int][]complex128{
	1: {complex(-1.0000, 0)},
	2: {complex(-1.1016, 0.6364), complex(-1.1016, -0.6364)},
	3: {complex(-1.3227, 0), complex(-1.0474, 0.9993), complex(-1.0474, -0.9993)},
	4: {
		complex(-1.3701, 0.4102), complex(-1.3701, -0.4102),
		complex(-0.9952, 1.2571), complex(-0.9952, -1.2571),
	},
}

func prototypePoles(f Family, order int) ([]complex128, error) {
	if order < 1 {
		return nil, errors.Wrapf(ErrBadFilterSpec, "order %d", order)
	}

	switch f {
	case Butterworth:
		if order > 8 {
			return nil, errors.Wrapf(ErrBadFilterSpec, "butterworth order %d > 8", order)
		}
		poles := make([]complex128, order)
		for k := 0; k < order; k++ {
			theta := math.Pi * float64(2*k+order+1) / float64(2*order)
			poles[k] = cmplx.Exp(complex(0, theta))
		}
		return poles, nil
	case Bessel:
		poles, ok := besselPoles[order]
		if !ok {
			return nil, errors.Wrapf(ErrBadFilterSpec, "bessel order %d not tabulated", order)
		}
		return append([]complex128(nil), poles...), nil
	default:
		return nil, errors.Wrapf(ErrBadFilterSpec, "unknown filter family %d", f)
	}
}

// DesignIIR designs a digital IIR filter by frequency-transforming an analog
// lowpass prototype and applying the bilinear transform with edge
// prewarping.
func DesignIIR(spec IIRSpec) (*SOSFilter, error) {
	fs := spec.SampleRate
	if fs <= 0 {
		return nil, errors.Wrapf(ErrBadFilterSpec, "sample rate %g", fs)
	}
	nyquist := fs / 2

	proto, err := prototypePoles(spec.Family, spec.Order)
	if err != nil {
		return nil, err
	}

	warp := func(f float64) float64 { return 2 * fs * math.Tan(math.Pi*f/fs) }

	var (
		poles, zeros []complex128
		refFreq      float64 // digital frequency at which gain is normalized to 1
	)

	switch spec.Kind {
	case Highpass:
		if spec.Center <= 0 || spec.Center >= nyquist {
			return nil, errors.Wrapf(ErrBadFilterSpec, "highpass cutoff %g Hz at fs %g", spec.Center, fs)
		}
		w0 := warp(spec.Center)
		for _, p := range proto {
			poles = append(poles, complex(w0, 0)/p)
			zeros = append(zeros, 0) // analog zero at s = 0
		}
		refFreq = nyquist

	case Bandpass, Bandstop:
		f1 := spec.Center - spec.Bandwidth/2
		f2 := spec.Center + spec.Bandwidth/2
		if f1 <= 0 || f2 >= nyquist {
			return nil, errors.Wrapf(ErrBadFilterSpec,
				"band [%g, %g] Hz at fs %g", f1, f2, fs)
		}
		w1, w2 := warp(f1), warp(f2)
		w0 := math.Sqrt(w1 * w2)
		bw := w2 - w1

		for _, p := range proto {
			var a complex128
			if spec.Kind == Bandpass {
				a = complex(bw/2, 0) * p
			} else {
				a = complex(bw/2, 0) / p
			}
			d := cmplx.Sqrt(a*a - complex(w0*w0, 0))
			poles = append(poles, a+d, a-d)
			if spec.Kind == Bandpass {
				// n zeros at s = 0, n at infinity.
				zeros = append(zeros, 0)
			} else {
				zeros = append(zeros, complex(0, w0), complex(0, -w0))
			}
		}
		if spec.Kind == Bandpass {
			// The analog band center maps to this digital frequency.
			refFreq = math.Atan(w0/(2*fs)) * fs / math.Pi
		} else {
			refFreq = 0 // DC passes a bandstop unchanged
		}

	default:
		return nil, errors.Wrapf(ErrBadFilterSpec, "unknown filter kind %d", spec.Kind)
	}

	// Bilinear transform. Analog zeros at infinity land at z = -1.
	zp := make([]complex128, len(poles))
	for i, p := range poles {
		zp[i] = bilinear(p, fs)
	}
	zz := make([]complex128, len(zeros))
	for i, z := range zeros {
		zz[i] = bilinear(z, fs)
	}
	for len(zz) < len(zp) {
		zz = append(zz, -1)
	}

	f := &SOSFilter{sections: buildSections(zz, zp)}

	// Normalize the cascade so the reference frequency has unit gain.
	g := cmplx.Abs(f.response(2 * math.Pi * refFreq / fs))
	if g == 0 || math.IsNaN(g) || math.IsInf(g, 0) {
		return nil, errors.Wrap(ErrBadFilterSpec, "degenerate design gain")
	}
	f.sections[0].b0 /= g
	f.sections[0].b1 /= g
	f.sections[0].b2 /= g

	return f, nil
}

func bilinear(s complex128, fs float64) complex128 {
	k := complex(2*fs, 0)
	return (k + s) / (k - s)
}

// buildSections pairs conjugate roots into real second-order sections. The
// i-th zero pair is assigned to the i-th pole pair; an unmatched real root
// yields a first-order section.
func buildSections(zeros, poles []complex128) []biquad {
	zPairs := pairRoots(zeros)
	pPairs := pairRoots(poles)

	sections := make([]biquad, len(pPairs))
	for i, pp := range pPairs {
		sec := biquad{b0: 1}
		sec.a1, sec.a2 = pp.c1, pp.c2
		if i < len(zPairs) {
			sec.b1, sec.b2 = zPairs[i].c1, zPairs[i].c2
		}
		sections[i] = sec
	}
	return sections
}

// rootPair is the real polynomial 1 + c1*z^-1 + c2*z^-2 formed from one or
// two roots (c2 = 0 for a lone real root).
type rootPair struct {
	c1, c2 float64
}

func pairRoots(roots []complex128) []rootPair {
	const eps = 1e-9

	var pairs []rootPair
	var reals []float64
	used := make([]bool, len(roots))

	for i, r := range roots {
		if used[i] {
			continue
		}
		if math.Abs(imag(r)) < eps {
			used[i] = true
			reals = append(reals, real(r))
			continue
		}
		// Find the closest conjugate partner.
		best, bestDist := -1, math.Inf(1)
		for j := i + 1; j < len(roots); j++ {
			if used[j] {
				continue
			}
			d := cmplx.Abs(roots[j] - cmplx.Conj(r))
			if d < bestDist {
				best, bestDist = j, d
			}
		}
		used[i] = true
		if best >= 0 {
			used[best] = true
		}
		pairs = append(pairs, rootPair{c1: -2 * real(r), c2: real(r)*real(r) + imag(r)*imag(r)})
	}

	for len(reals) >= 2 {
		r1, r2 := reals[0], reals[1]
		reals = reals[2:]
		pairs = append(pairs, rootPair{c1: -(r1 + r2), c2: r1 * r2})
	}
	if len(reals) == 1 {
		pairs = append(pairs, rootPair{c1: -reals[0]})
	}
	return pairs
}

// response evaluates the cascade's transfer function at digital frequency w
// (radians per sample).
func (f *SOSFilter) response(w float64) complex128 {
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1

	h := complex(1, 0)
	for _, s := range f.sections {
		num := complex(s.b0, 0) + complex(s.b1, 0)*z1 + complex(s.b2, 0)*z2
		den := complex(1, 0) + complex(s.a1, 0)*z1 + complex(s.a2, 0)*z2
		h *= num / den
	}
	return h
}

// Apply runs the filter forward over data in place, using the transposed
// direct form II realization per section.
func (f *SOSFilter) Apply(data []float64) {
	for _, s := range f.sections {
		var w1, w2 float64
		for i, x := range data {
			y := s.b0*x + w1
			w1 = s.b1*x - s.a1*y + w2
			w2 = s.b2*x - s.a2*y
			data[i] = y
		}
	}
}
