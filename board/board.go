// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package board describes the supported acquisition board variants: which
// rows of a raw sample matrix carry EEG data, at what rate they were
// sampled, and which scalp electrode each row corresponds to.
package board

import (
	"fmt"

	"github.com/pkg/errors"
)

// Variant identifies a supported acquisition board.
type Variant string

const (
	// Synthetic is the 8-channel signal generator board used for testing
	// without hardware attached.
	Synthetic Variant = "synthetic"
	// Cyton is the single 9-channel board.
	Cyton Variant = "cyton"
	// CytonDaisy is the 16-channel daisy-chained dual board.
	CytonDaisy Variant = "daisy"
)

// ErrUnknownVariant is returned when a board variant is not one of the
// supported values.
var ErrUnknownVariant = errors.New("unknown board variant")

// Profile holds the static acquisition characteristics of a board variant.
// Instances are value copies; mutating one has no effect on later lookups.
type Profile struct {
	Variant Variant
	// EEGChannels are the row indices within a raw sample matrix that
	// carry EEG data, in electrode order.
	EEGChannels []int
	// SampleRate is the acquisition rate in Hz.
	SampleRate float64
	// ChannelNames are the 10-20 electrode names, matched 1:1 with
	// EEGChannels.
	ChannelNames []string
}

// The first rows of the OpenBCI default electrode assignment, used for the
// single-board layout.
var openBCIStandard = []string{
	"Fp1", "Fp2", "C3", "C4", "P7", "P8", "O1", "O2",
	"F7", "F8", "F3", "F4", "T7", "T8", "P3", "P4",
}

// Lookup resolves a board variant to its acquisition profile. This is the
// only place in the repository that branches on the variant.
func Lookup(v Variant) (Profile, error) {
	switch v {
	case Synthetic:
		return newProfile(v, 8, 250,
			[]string{"T7", "CP5", "FC5", "C3", "C4", "FC6", "CP6", "T8"}), nil
	case Cyton:
		return newProfile(v, 9, 250, openBCIStandard[:9]), nil
	case CytonDaisy:
		return newProfile(v, 16, 125, openBCIStandard), nil
	default:
		return Profile{}, errors.Wrapf(ErrUnknownVariant, "%q", v)
	}
}

// ParseVariant converts a string (e.g. from a CLI flag) to a Variant.
func ParseVariant(s string) (Variant, error) {
	v := Variant(s)
	if _, err := Lookup(v); err != nil {
		return "", err
	}
	return v, nil
}

func newProfile(v Variant, channels int, rate float64, names []string) Profile {
	if len(names) != channels {
		panic(fmt.Sprintf("board: %s has %d names for %d channels", v, len(names), channels))
	}

	// Row 0 of the raw matrix is the board's packet counter; EEG rows
	// start at 1.
	indices := make([]int, channels)
	for i := range indices {
		indices[i] = i + 1
	}

	return Profile{
		Variant:      v,
		EEGChannels:  indices,
		SampleRate:   rate,
		ChannelNames: append([]string(nil), names...),
	}
}
