// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package session_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenPSG/eegprep/board"
	"github.com/OpenPSG/eegprep/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSessionFixture writes a synthetic-board session: a packet counter
// row, 8 EEG rows and a timestamp row where the timestamp equals the sample
// index.
func writeSessionFixture(t *testing.T, dir, subject, erp string, run, cols int) {
	t.Helper()

	var sb strings.Builder
	for row := 0; row < 10; row++ {
		for col := 0; col < cols; col++ {
			if col > 0 {
				sb.WriteByte(',')
			}
			switch row {
			case 0:
				fmt.Fprintf(&sb, "%d", col%256) // packet counter
			case 9:
				fmt.Fprintf(&sb, "%d", col) // timestamps
			default:
				fmt.Fprintf(&sb, "%g", float64(row)+float64(col)*0.001)
			}
		}
		sb.WriteByte('\n')
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s_%d.csv", subject, erp, run))
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
}

func writeEventsFixture(t *testing.T, dir, subject, erp string, run int, rows []string) {
	t.Helper()

	content := "code,timestamp\n" + strings.Join(rows, "\n") + "\n"
	path := filepath.Join(dir, fmt.Sprintf("%s_%s_%d_EVENTS.csv", subject, erp, run))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func syntheticProfile(t *testing.T) board.Profile {
	t.Helper()
	p, err := board.Lookup(board.Synthetic)
	require.NoError(t, err)
	return p
}

func TestLoaderTrimsSettleInInterval(t *testing.T) {
	dir := t.TempDir()
	// 10 seconds at 250 Hz.
	writeSessionFixture(t, dir, "S001", "P300", 1, 2500)
	writeEventsFixture(t, dir, "S001", "P300", 1, []string{"0,1300"})

	loader := &session.Loader{DataDir: dir, Profile: syntheticProfile(t)}
	m, events, err := loader.Load("S001", "P300", 1)
	require.NoError(t, err)

	// 5 seconds discarded: 2500 - 1250 = 1250 columns remain.
	assert.Equal(t, 1250, m.Cols())
	assert.Equal(t, 10, m.Rows())

	// The trim applies to the timestamp row too.
	assert.Equal(t, 1250.0, m.Timestamps()[0])

	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].Code) // raw code 0 incremented
	assert.Equal(t, 1300.0, events[0].Timestamp)
}

func TestLoaderTooShortSession(t *testing.T) {
	dir := t.TempDir()
	writeSessionFixture(t, dir, "S001", "P300", 1, 1000) // 4 seconds
	writeEventsFixture(t, dir, "S001", "P300", 1, []string{"0,10"})

	loader := &session.Loader{DataDir: dir, Profile: syntheticProfile(t)}
	_, _, err := loader.Load("S001", "P300", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settle-in")
}

func TestLoaderMissingFiles(t *testing.T) {
	dir := t.TempDir()

	loader := &session.Loader{DataDir: dir, Profile: syntheticProfile(t)}
	_, _, err := loader.Load("S001", "P300", 1)
	require.Error(t, err)

	// Sample file present but events missing.
	writeSessionFixture(t, dir, "S001", "P300", 1, 2500)
	_, _, err = loader.Load("S001", "P300", 1)
	require.Error(t, err)
}

func TestLoaderMalformedSampleFile(t *testing.T) {
	dir := t.TempDir()
	writeEventsFixture(t, dir, "S001", "P300", 1, []string{"0,10"})

	tests := []struct {
		name    string
		content string
	}{
		{"non-numeric cell", "1,2,3\n4,x,6\n"},
		{"ragged rows", "1,2,3\n4,5\n"},
		{"too few rows", "1,2,3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "S001_P300_1.csv")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			loader := &session.Loader{DataDir: dir, Profile: syntheticProfile(t)}
			_, _, err := loader.Load("S001", "P300", 1)
			require.Error(t, err)
		})
	}
}

func TestLoaderMalformedEventFile(t *testing.T) {
	dir := t.TempDir()
	writeSessionFixture(t, dir, "S001", "P300", 1, 2500)

	tests := []struct {
		name    string
		content string
	}{
		{"non-numeric code", "code,timestamp\nx,10\n"},
		{"non-numeric timestamp", "code,timestamp\n1,y\n"},
		{"too few columns", "code\n3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "S001_P300_1_EVENTS.csv")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			loader := &session.Loader{DataDir: dir, Profile: syntheticProfile(t)}
			_, _, err := loader.Load("S001", "P300", 1)
			require.Error(t, err)
		})
	}
}
