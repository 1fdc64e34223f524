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
	"github.com/rs/zerolog"

	"github.com/OpenPSG/eegprep/board"
)

// Dataset orchestrates loading a subject's recordings for one experimental
// paradigm: per run it loads, scales, aligns the stimulus channel,
// optionally conditions and assembles, then concatenates the runs in order.
//
// A Dataset holds no per-session state, so independent sessions may be
// loaded from separate goroutines.
type Dataset struct {
	ERPType string
	DataDir string

	profile board.Profile
	log     zerolog.Logger
}

// Option configures a Dataset.
type Option func(*Dataset)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Dataset) { d.log = log }
}

// NewDataset resolves the board variant once and returns a Dataset for the
// given paradigm and data directory.
func NewDataset(erpType string, variant board.Variant, dataDir string, opts ...Option) (*Dataset, error) {
	profile, err := board.Lookup(variant)
	if err != nil {
		return nil, err
	}

	d := &Dataset{
		ERPType: erpType,
		DataDir: dataDir,
		profile: profile,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Profile returns the dataset's resolved board profile.
func (d *Dataset) Profile() board.Profile { return d.profile }

// LoadSession loads and assembles a single run. With preprocess set, the
// standard conditioning pipeline runs with the given options between
// stimulus alignment and assembly.
func (d *Dataset) LoadSession(subject string, run int, preprocess bool, opts PipelineOptions) (Record, error) {
	loader := &Loader{DataDir: d.DataDir, Profile: d.profile, Log: d.log}
	m, events, err := loader.Load(subject, d.ERPType, run)
	if err != nil {
		return Record{}, err
	}

	cond := Conditioner{Profile: d.profile, Log: d.log}
	m = cond.Scale(m)

	stim, gaps := BuildStimulus(m, events)
	for _, gap := range gaps {
		d.log.Warn().
			Str("subject", subject).
			Int("run", run).
			Int("code", gap.Event.Code).
			Float64("timestamp", gap.Event.Timestamp).
			Str("reason", gap.Reason.String()).
			Msg("stimulus alignment gap")
	}

	if preprocess {
		if m, err = cond.Preprocess(m, opts); err != nil {
			return Record{}, errors.Wrapf(err, "conditioning %s run %d", subject, run)
		}
	}

	rec, err := ToRecord(m, d.profile, stim)
	if err != nil {
		return Record{}, err
	}
	rec.AlignmentGaps = len(gaps)
	return rec, nil
}

// LoadSubject loads every run in the order given (the order is not
// re-sorted) and concatenates them into one continuous Record.
func (d *Dataset) LoadSubject(subject string, runs []int, preprocess bool) (Record, error) {
	if len(runs) == 0 {
		return Record{}, errors.New("no runs given")
	}

	records := make([]Record, 0, len(runs))
	for _, run := range runs {
		rec, err := d.LoadSession(subject, run, preprocess, DefaultPipeline())
		if err != nil {
			return Record{}, err
		}
		records = append(records, rec)
	}
	return Concatenate(records...)
}
