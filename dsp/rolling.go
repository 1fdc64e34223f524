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
	"sort"

	"github.com/pkg/errors"
)

// Agg selects the reducer used by a rolling aggregation.
type Agg int

const (
	Mean Agg = iota
	Median
)

// Rolling replaces each sample with the aggregate of the trailing window
// ending at that sample. Windows are clamped at the start of the signal, so
// the output has the same length as the input.
func Rolling(data []float64, window int, agg Agg) error {
	if window < 1 {
		return errors.Wrapf(ErrBadFilterSpec, "rolling window %d", window)
	}
	if agg != Mean && agg != Median {
		return errors.Wrapf(ErrBadFilterSpec, "unknown aggregation %d", agg)
	}

	out := make([]float64, len(data))
	buf := make([]float64, 0, window)
	for i := range data {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		buf = append(buf[:0], data[lo:i+1]...)

		switch agg {
		case Mean:
			var sum float64
			for _, v := range buf {
				sum += v
			}
			out[i] = sum / float64(len(buf))
		case Median:
			sort.Float64s(buf)
			mid := len(buf) / 2
			if len(buf)%2 == 1 {
				out[i] = buf[mid]
			} else {
				out[i] = (buf[mid-1] + buf[mid]) / 2
			}
		}
	}

	copy(data, out)
	return nil
}
