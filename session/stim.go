// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package session

// GapReason classifies why an event did not land cleanly on the stimulus
// channel.
type GapReason int

const (
	// GapNoMatch means the event timestamp has no exactly matching column
	// in the sample matrix's timestamp row.
	GapNoMatch GapReason = iota
	// GapOverwrite means the event landed on a column already holding a
	// different event's code; the later event wins.
	GapOverwrite
)

// Gap records one event that could not be placed, or displaced another.
type Gap struct {
	Event  Event
	Reason GapReason
}

func (r GapReason) String() string {
	switch r {
	case GapNoMatch:
		return "no matching sample"
	case GapOverwrite:
		return "overwrote earlier event"
	default:
		return "unknown"
	}
}

// BuildStimulus projects sparse events onto a dense stimulus channel aligned
// column-for-column with the sample matrix. An event is placed at every
// column whose timestamp equals the event's timestamp exactly; no nearest
// match or interpolation is attempted.
//
// Events without a matching column are skipped and reported as gaps rather
// than dropped silently. When two events share a timestamp the later one
// wins, and the collision is reported as an overwrite gap.
func BuildStimulus(m Matrix, events []Event) ([]float64, []Gap) {
	timestamps := m.Timestamps()
	stim := make([]float64, len(timestamps))

	var gaps []Gap
	for _, ev := range events {
		matched := false
		for i, ts := range timestamps {
			if ts != ev.Timestamp {
				continue
			}
			if stim[i] != 0 && stim[i] != float64(ev.Code) {
				gaps = append(gaps, Gap{Event: ev, Reason: GapOverwrite})
			}
			stim[i] = float64(ev.Code)
			matched = true
		}
		if !matched {
			gaps = append(gaps, Gap{Event: ev, Reason: GapNoMatch})
		}
	}
	return stim, gaps
}
