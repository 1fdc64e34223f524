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
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/OpenPSG/eegprep/board"
)

// settleSeconds is the fixed settle-in interval discarded from the start of
// every session, recorded while waiting for the signal to stabilize.
const settleSeconds = 5

// Loader reads a session's sample matrix and event table from a data
// directory using the `{subject}_{erp}_{run}.csv` naming convention.
type Loader struct {
	DataDir string
	Profile board.Profile
	Log     zerolog.Logger
}

// Load reads one session and trims the settle-in interval from every row of
// the sample matrix, including the timestamp row. The returned matrix and
// events are exclusively owned by the caller.
func (l *Loader) Load(subject, erpType string, run int) (Matrix, []Event, error) {
	base := fmt.Sprintf("%s_%s_%d", subject, erpType, run)
	dataPath := filepath.Join(l.DataDir, base+".csv")
	eventPath := filepath.Join(l.DataDir, base+"_EVENTS.csv")

	m, err := readMatrix(dataPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading samples for %s", base)
	}

	settle := int(settleSeconds * l.Profile.SampleRate)
	if m.Cols() <= settle {
		return nil, nil, errors.Errorf(
			"session %s has %d samples, shorter than the %d-sample settle-in interval",
			base, m.Cols(), settle)
	}
	for i, row := range m {
		m[i] = row[settle:]
	}

	events, err := readEvents(eventPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading events for %s", base)
	}

	l.Log.Debug().
		Str("session", base).
		Int("samples", m.Cols()).
		Int("events", len(events)).
		Msg("loaded session")

	return m, events, nil
}

// readMatrix parses a sample file: one CSV row per channel, one column per
// sample.
func readMatrix(path string) (Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	var m Matrix
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "malformed sample file")
		}

		row := make([]float64, len(rec))
		for i, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "non-numeric sample at row %d col %d", len(m), i)
			}
			row[i] = v
		}
		m = append(m, row)
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// readEvents parses an event file: a header line, then (code, timestamp)
// rows. Codes are 0-based on disk and incremented by 1 here so that zero is
// reserved for "no event" on the stimulus channel.
func readEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "malformed event file")
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Skip the header line if one is present.
	if _, err := strconv.Atoi(records[0][0]); err != nil {
		records = records[1:]
	}

	events := make([]Event, 0, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, errors.Errorf("event row %d has %d columns, need 2", i, len(rec))
		}
		code, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, errors.Wrapf(err, "event row %d code", i)
		}
		ts, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "event row %d timestamp", i)
		}
		events = append(events, Event{Code: code + 1, Timestamp: ts})
	}
	return events, nil
}
