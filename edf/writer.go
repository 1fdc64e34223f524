// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package edf

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Writer writes EDF files.
type Writer struct {
	w           io.WriteSeeker
	hdr         *Header
	dataRecords int // Number of data records written so far.
}

// Create creates a new EDF writer that writes to the given writer.
func Create(w io.WriteSeeker, hdr Header) (*Writer, error) {
	hdr.DataRecords = -1 // Unknown number of data records (at this time).

	ew := &Writer{w: w, hdr: &hdr}

	// Write the initial header
	if err := ew.writeHeader(); err != nil {
		return nil, fmt.Errorf("error writing header: %w", err)
	}

	return ew, nil
}

// Close finalizes the EDF file by updating the header with the total number of data records.
func (ew *Writer) Close() error {
	// Finalize the header with the actual number of data records
	ew.hdr.DataRecords = ew.dataRecords
	if err := ew.writeHeader(); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	return nil
}

// WriteRecord writes a single data record to the EDF file.
func (ew *Writer) WriteRecord(signals [][]float64) error {
	if len(signals) != ew.hdr.SignalCount {
		return fmt.Errorf("expected %d signals, got %d", ew.hdr.SignalCount, len(signals))
	}

	var totalSamples int
	for _, signal := range signals {
		totalSamples += len(signal)
	}

	// As recommended by the EDF standard.
	if totalSamples*2 > 61440 {
		return fmt.Errorf("data record too large: %d bytes, max is 61440 bytes", totalSamples*2)
	}

	writer := bufio.NewWriter(ew.w)

	// Write each signal's data
	for i := 0; i < ew.hdr.SignalCount; i++ {
		signal := ew.hdr.Signals[i]
		if len(signals[i]) != signal.SamplesPerRecord {
			return fmt.Errorf("signal %d: expected %d samples, got %d",
				i, signal.SamplesPerRecord, len(signals[i]))
		}
		for _, sample := range signals[i] {
			digitalValue := convertPhysicalToDigital(sample, signal.PhysicalMin, signal.PhysicalMax, signal.DigitalMin, signal.DigitalMax)
			if err := binary.Write(writer, binary.LittleEndian, digitalValue); err != nil {
				return err
			}
		}
	}

	// Ensure all data is flushed to the underlying writer
	if err := writer.Flush(); err != nil {
		return err
	}

	ew.dataRecords++
	return nil
}

// writeHeader writes (or rewrites) the EDF header at the start of the file.
func (ew *Writer) writeHeader() error {
	// Rewind to the beginning of the file.
	if _, err := ew.w.Seek(0, io.SeekStart); err != nil {
		return err
	}

	writer := bufio.NewWriter(ew.w)
	ew.hdr.HeaderBytes = 256 + (ew.hdr.SignalCount * 256)

	// The fixed 256-byte preamble: every field is left-justified,
	// space-padded ASCII.
	preamble := []struct {
		width int
		value string
	}{
		{8, string(ew.hdr.Version)},
		{80, ew.hdr.PatientID},
		{80, ew.hdr.RecordingID},
		{8, ew.hdr.StartTime.Format("02.01.06")},
		{8, ew.hdr.StartTime.Format("15.04.05")},
		{8, strconv.Itoa(ew.hdr.HeaderBytes)},
		{44, ""}, // reserved
		{8, strconv.Itoa(ew.hdr.DataRecords)},
		{8, strconv.Itoa(int(math.Ceil(ew.hdr.DataRecordDuration.Seconds())))},
		{4, strconv.Itoa(ew.hdr.SignalCount)},
	}
	for _, f := range preamble {
		if err := writeField(writer, f.width, f.value); err != nil {
			return err
		}
	}

	// Signal headers are column-major: one field for every signal before
	// the next field begins.
	columns := []struct {
		width int
		value func(Signal) string
	}{
		{16, func(s Signal) string { return s.Label }},
		{80, func(s Signal) string { return s.TransducerType }},
		{8, func(s Signal) string { return s.PhysicalDimension }},
		{8, func(s Signal) string { return formatPhysicalValue(s.PhysicalMin) }},
		{8, func(s Signal) string { return formatPhysicalValue(s.PhysicalMax) }},
		{8, func(s Signal) string { return strconv.Itoa(s.DigitalMin) }},
		{8, func(s Signal) string { return strconv.Itoa(s.DigitalMax) }},
		{80, func(s Signal) string { return s.Prefiltering }},
		{8, func(s Signal) string { return strconv.Itoa(s.SamplesPerRecord) }},
		{32, func(Signal) string { return "" }}, // reserved
	}
	for _, col := range columns {
		for _, signal := range ew.hdr.Signals {
			if err := writeField(writer, col.width, col.value(signal)); err != nil {
				return err
			}
		}
	}

	// Ensure all data is flushed to the underlying writer
	return writer.Flush()
}

func writeField(w *bufio.Writer, width int, value string) error {
	if len(value) > width {
		value = value[:width]
	}
	_, err := fmt.Fprintf(w, "%-*s", width, value)
	return err
}

func formatPhysicalValue(val float64) string {
	// Use the highest precision that fits the 8 character field. The 'g'
	// format keeps small magnitudes in scientific notation rather than
	// rounding them to zero.
	for prec := 7; prec > 1; prec-- {
		s := strconv.FormatFloat(val, 'g', prec, 64)
		if len(s) <= 8 {
			return s
		}
	}
	return strconv.FormatFloat(val, 'g', 1, 64)
}
