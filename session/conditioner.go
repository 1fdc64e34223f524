// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package session

import (
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/OpenPSG/eegprep/board"
	"github.com/OpenPSG/eegprep/dsp"
)

// FilterKind selects a conditioning filter shape.
type FilterKind string

const (
	FilterBandpass FilterKind = "bandpass"
	FilterNotch    FilterKind = "notch"
	FilterHighpass FilterKind = "highpass"
)

// ErrUnknownFilter is returned for a filter kind outside the supported set.
var ErrUnknownFilter = errors.New("unknown filter kind")

// DenoiseMethod names a denoising strategy: "mean" and "median" select a
// window-3 rolling aggregation, anything else is taken as a wavelet family
// name (validated against the wavelet registry) applied at decomposition
// level 3.
type DenoiseMethod string

const (
	DenoiseMean   DenoiseMethod = "mean"
	DenoiseMedian DenoiseMethod = "median"
	// DefaultDenoiseMethod is the pipeline's default wavelet.
	DefaultDenoiseMethod DenoiseMethod = "coif3"
)

const (
	denoiseWindow = 3
	denoiseLevel  = 3
)

// PipelineOptions toggles the conditioning stages. The zero value disables
// everything; use DefaultPipeline for the standard configuration.
type PipelineOptions struct {
	Notch         bool
	Bandpass      bool
	Denoise       bool
	DenoiseMethod DenoiseMethod
}

// DefaultPipeline enables every stage with the standard parameters:
// 60 Hz notch, 1-51 Hz bandpass, coif3 wavelet denoising.
func DefaultPipeline() PipelineOptions {
	return PipelineOptions{
		Notch:         true,
		Bandpass:      true,
		Denoise:       true,
		DenoiseMethod: DefaultDenoiseMethod,
	}
}

// Conditioner applies scaling, filtering and denoising to the EEG channel
// rows of a sample matrix. Each stage consumes a matrix and returns the
// conditioned matrix; today the same backing buffer is reused, but callers
// must treat the input as consumed.
type Conditioner struct {
	Profile board.Profile
	Log     zerolog.Logger
}

// Scale converts the EEG channel rows from microvolts to volts. It must run
// exactly once per session, before any filtering. Non-EEG rows are left
// untouched.
func (c Conditioner) Scale(m Matrix) Matrix {
	for _, ch := range c.Profile.EEGChannels {
		row := m[ch]
		for i := range row {
			row[i] *= 1e-6
		}
	}
	return m
}

// Filter applies one forward IIR filter to every EEG channel row. The kind
// is validated before any channel is touched, so an unsupported kind never
// leaves the matrix partially filtered. A channel producing non-finite
// output fails the whole call.
func (c Conditioner) Filter(m Matrix, kind FilterKind, center, bandwidth float64, order int) (Matrix, error) {
	spec := dsp.IIRSpec{
		SampleRate: c.Profile.SampleRate,
		Center:     center,
		Bandwidth:  bandwidth,
		Order:      order,
	}

	// The board's own filtering conventions: Bessel for the passband,
	// Butterworth for the reject and highpass filters.
	switch kind {
	case FilterBandpass:
		spec.Kind, spec.Family = dsp.Bandpass, dsp.Bessel
	case FilterNotch:
		spec.Kind, spec.Family = dsp.Bandstop, dsp.Butterworth
	case FilterHighpass:
		spec.Kind, spec.Family = dsp.Highpass, dsp.Butterworth
	default:
		return nil, errors.Wrapf(ErrUnknownFilter, "%q", kind)
	}

	filter, err := dsp.DesignIIR(spec)
	if err != nil {
		return nil, errors.Wrapf(err, "designing %s filter", kind)
	}

	for _, ch := range c.Profile.EEGChannels {
		filter.Apply(m[ch])
		if err := checkFinite(m[ch]); err != nil {
			return nil, errors.Wrapf(err, "%s filter on channel %d", kind, ch)
		}
	}
	return m, nil
}

// Denoise applies the named denoising method to every EEG channel row.
func (c Conditioner) Denoise(m Matrix, method DenoiseMethod) (Matrix, error) {
	switch method {
	case DenoiseMean, DenoiseMedian:
		agg := dsp.Mean
		if method == DenoiseMedian {
			agg = dsp.Median
		}
		for _, ch := range c.Profile.EEGChannels {
			if err := dsp.Rolling(m[ch], denoiseWindow, agg); err != nil {
				return nil, err
			}
		}
	default:
		if !dsp.KnownWavelet(string(method)) {
			return nil, errors.Wrapf(dsp.ErrUnknownWavelet, "denoise method %q", method)
		}
		for _, ch := range c.Profile.EEGChannels {
			if err := dsp.WaveletDenoise(m[ch], string(method), denoiseLevel); err != nil {
				return nil, err
			}
			if err := checkFinite(m[ch]); err != nil {
				return nil, errors.Wrapf(err, "wavelet denoise on channel %d", ch)
			}
		}
	}
	return m, nil
}

// Preprocess runs the standard conditioning pipeline: notch, bandpass, then
// denoise. Disabled stages leave the matrix untouched.
func (c Conditioner) Preprocess(m Matrix, opts PipelineOptions) (Matrix, error) {
	var err error

	if opts.Notch {
		c.Log.Debug().Msg("notch filter")
		if m, err = c.Filter(m, FilterNotch, 60, 2, 4); err != nil {
			return nil, err
		}
	}
	if opts.Bandpass {
		c.Log.Debug().Msg("bandpass filter")
		if m, err = c.Filter(m, FilterBandpass, 26, 50, 3); err != nil {
			return nil, err
		}
	}
	if opts.Denoise {
		method := opts.DenoiseMethod
		if method == "" {
			method = DefaultDenoiseMethod
		}
		c.Log.Debug().Str("method", string(method)).Msg("denoise")
		if m, err = c.Denoise(m, method); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func checkFinite(row []float64) error {
	for i, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Errorf("non-finite sample at column %d", i)
		}
	}
	return nil
}
