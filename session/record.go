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
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/OpenPSG/eegprep/board"
	"github.com/OpenPSG/eegprep/montage"
)

// ChannelKind distinguishes signal channels from the synthetic stimulus
// channel.
type ChannelKind string

const (
	KindEEG  ChannelKind = "eeg"
	KindStim ChannelKind = "stim"
)

// StimChannelName is the conventional name of the stimulus channel.
const StimChannelName = "STI"

// Channel describes one row of a Record.
type Channel struct {
	Name       string
	Kind       ChannelKind
	SampleRate float64
	// Loc is the electrode's 10-20 scalp position; valid when HasLoc is
	// set (the stimulus channel has none).
	Loc    montage.Position
	HasLoc bool
}

// Record is an annotated multichannel time series: the conditioned EEG
// channels of one or more runs plus a stimulus channel. A Record exclusively
// owns its backing data; assembly copies rows out of the session matrix.
type Record struct {
	Channels []Channel
	Data     [][]float64
	// AlignmentGaps counts events that could not be placed exactly on the
	// stimulus channel during assembly.
	AlignmentGaps int
}

// Samples returns the number of time samples in the record.
func (r Record) Samples() int {
	if len(r.Data) == 0 {
		return 0
	}
	return len(r.Data[0])
}

// ErrLayoutMismatch is returned when records with differing channel schemas
// are concatenated.
var ErrLayoutMismatch = errors.New("channel layout mismatch")

// ToRecord builds a single-session Record from a conditioned sample matrix:
// the profile's EEG rows become named "eeg" channels with standard 10-20
// positions, and the stimulus channel is appended as "STI".
func ToRecord(m Matrix, profile board.Profile, stim []float64) (Record, error) {
	if err := m.validate(); err != nil {
		return Record{}, err
	}
	if len(stim) != m.Cols() {
		return Record{}, errors.Errorf(
			"stimulus channel has %d samples, matrix has %d", len(stim), m.Cols())
	}

	channels := make([]Channel, 0, len(profile.EEGChannels)+1)
	data := make([][]float64, 0, len(profile.EEGChannels)+1)

	for i, row := range profile.EEGChannels {
		if row < 0 || row >= m.Rows() {
			return Record{}, errors.Errorf("EEG channel row %d outside matrix with %d rows", row, m.Rows())
		}
		ch := Channel{
			Name:       profile.ChannelNames[i],
			Kind:       KindEEG,
			SampleRate: profile.SampleRate,
		}
		ch.Loc, ch.HasLoc = montage.Standard1020(ch.Name)
		channels = append(channels, ch)
		data = append(data, append([]float64(nil), m[row]...))
	}

	channels = append(channels, Channel{
		Name:       StimChannelName,
		Kind:       KindStim,
		SampleRate: profile.SampleRate,
	})
	data = append(data, append([]float64(nil), stim...))

	return Record{Channels: channels, Data: data}, nil
}

// Concatenate joins records end-to-end along the time axis in the order
// given. All records must share an identical channel layout (name, kind,
// rate, count and order).
func Concatenate(records ...Record) (Record, error) {
	if len(records) == 0 {
		return Record{}, errors.New("no records to concatenate")
	}

	first := records[0]
	for i, r := range records[1:] {
		if err := sameLayout(first.Channels, r.Channels); err != nil {
			return Record{}, errors.Wrapf(err, "record %d", i+1)
		}
	}

	total := lo.SumBy(records, func(r Record) int { return r.Samples() })

	out := Record{
		Channels:      append([]Channel(nil), first.Channels...),
		Data:          make([][]float64, len(first.Channels)),
		AlignmentGaps: lo.SumBy(records, func(r Record) int { return r.AlignmentGaps }),
	}
	for ch := range out.Data {
		out.Data[ch] = make([]float64, 0, total)
		for _, r := range records {
			out.Data[ch] = append(out.Data[ch], r.Data[ch]...)
		}
	}
	return out, nil
}

func sameLayout(a, b []Channel) error {
	if len(a) != len(b) {
		return errors.Wrapf(ErrLayoutMismatch, "%d channels vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Kind != b[i].Kind || a[i].SampleRate != b[i].SampleRate {
			return errors.Wrapf(ErrLayoutMismatch,
				"channel %d: %s/%s@%g vs %s/%s@%g", i,
				a[i].Name, a[i].Kind, a[i].SampleRate,
				b[i].Name, b[i].Kind, b[i].SampleRate)
		}
	}
	return nil
}

// EEGChannelNames returns the names of the record's EEG channels in order.
func (r Record) EEGChannelNames() []string {
	eeg := lo.Filter(r.Channels, func(c Channel, _ int) bool { return c.Kind == KindEEG })
	return lo.Map(eeg, func(c Channel, _ int) string { return c.Name })
}
