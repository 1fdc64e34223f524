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
	"io"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/OpenPSG/eegprep/edf"
	"github.com/OpenPSG/eegprep/montage"
)

// EDFMeta carries the recording identification stored in an exported EDF
// header.
type EDFMeta struct {
	PatientID   string
	RecordingID string
	StartTime   time.Time
}

const (
	eegLabelPrefix     = "EEG "
	microvoltDimension = "uV"
)

// WriteEDF exports the record as an EDF file with one-second data records
// and per-channel calibration derived from the data's range. A trailing
// partial second is padded with each channel's final value.
func (r Record) WriteEDF(w io.WriteSeeker, meta EDFMeta) error {
	if len(r.Channels) == 0 || r.Samples() == 0 {
		return errors.New("empty record")
	}

	rate := r.Channels[0].SampleRate
	spr := int(rate)
	if float64(spr) != rate {
		return errors.Errorf("non-integral sample rate %g Hz", rate)
	}
	for _, ch := range r.Channels {
		if ch.SampleRate != rate {
			return errors.Errorf("channel %s has rate %g, record rate is %g",
				ch.Name, ch.SampleRate, rate)
		}
	}

	// EEG channels are stored in microvolts, the conventional EDF unit.
	// Volt-scale extrema would be too small for the 8-character physical
	// min/max header fields to calibrate against cleanly.
	rows := make([][]float64, len(r.Channels))
	for i, ch := range r.Channels {
		if ch.Kind != KindEEG {
			rows[i] = r.Data[i]
			continue
		}
		scaled := make([]float64, len(r.Data[i]))
		for j, v := range r.Data[i] {
			scaled[j] = v * 1e6
		}
		rows[i] = scaled
	}

	signals := make([]edf.Signal, len(r.Channels))
	for i, ch := range r.Channels {
		pmin, pmax := rangeOf(rows[i])
		sig := edf.Signal{
			Label:            eegLabelPrefix + ch.Name,
			PhysicalMin:      pmin,
			PhysicalMax:      pmax,
			DigitalMin:       -32768,
			DigitalMax:       32767,
			SamplesPerRecord: spr,
		}
		if ch.Kind == KindEEG {
			sig.TransducerType = "AgAgCl electrode"
			sig.PhysicalDimension = microvoltDimension
		} else {
			sig.Label = ch.Name
		}
		signals[i] = sig
	}

	ew, err := edf.Create(w, edf.Header{
		Version:            edf.Version0,
		PatientID:          meta.PatientID,
		RecordingID:        meta.RecordingID,
		StartTime:          meta.StartTime,
		DataRecordDuration: time.Second,
		SignalCount:        len(signals),
		Signals:            signals,
	})
	if err != nil {
		return err
	}

	chunk := make([][]float64, len(r.Channels))
	for start := 0; start < r.Samples(); start += spr {
		for ch := range rows {
			row := rows[ch]
			end := start + spr
			if end <= len(row) {
				chunk[ch] = row[start:end]
				continue
			}
			// Pad the final partial record.
			padded := make([]float64, spr)
			n := copy(padded, row[start:])
			for i := n; i < spr; i++ {
				padded[i] = row[len(row)-1]
			}
			chunk[ch] = padded
		}
		if err := ew.WriteRecord(chunk); err != nil {
			return err
		}
	}

	return ew.Close()
}

// ReadEDFRecord rebuilds a Record from an EDF file written by WriteEDF.
// Signals labeled with the stimulus channel name come back typed "stim";
// everything else is an EEG channel.
func ReadEDFRecord(r io.ReadSeeker) (Record, error) {
	er, err := edf.Open(r)
	if err != nil {
		return Record{}, err
	}
	hdr := er.Header()
	if hdr.SignalCount == 0 {
		return Record{}, errors.New("EDF file has no signals")
	}

	rec := Record{
		Channels: make([]Channel, hdr.SignalCount),
		Data:     make([][]float64, hdr.SignalCount),
	}
	for i := 0; i < hdr.SignalCount; i++ {
		sig := hdr.Signals[i]

		ch := Channel{
			Name:       strings.TrimPrefix(sig.Label, eegLabelPrefix),
			Kind:       KindEEG,
			SampleRate: sig.SampleRate(hdr.DataRecordDuration),
		}
		if sig.Label == StimChannelName {
			ch.Kind = KindStim
		} else {
			ch.Loc, ch.HasLoc = montage.Standard1020(ch.Name)
		}
		rec.Channels[i] = ch

		sr, err := er.Signal(i)
		if err != nil {
			return Record{}, err
		}
		if rec.Data[i], err = sr.ReadAll(); err != nil {
			return Record{}, errors.Wrapf(err, "reading signal %q", sig.Label)
		}
		if sig.PhysicalDimension == microvoltDimension {
			for j := range rec.Data[i] {
				rec.Data[i][j] *= 1e-6
			}
		}
	}
	return rec, nil
}

func rangeOf(data []float64) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		// Degenerate range; widen so calibration stays invertible.
		min, max = min-1, max+1
	}
	return min, max
}
