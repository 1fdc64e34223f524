// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Command eegprep conditions offline EEG recordings: it assembles raw
// sample and event files into annotated multichannel records, optionally
// filters and denoises them, and exports the result as EDF.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/OpenPSG/eegprep/board"
	"github.com/OpenPSG/eegprep/dsp"
	"github.com/OpenPSG/eegprep/session"
)

func main() {
	config, err := parseConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration")
	}

	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger().Level(level)

	app := &cli.App{
		Name:  "eegprep",
		Usage: "condition offline EEG recordings and export them as EDF",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data-dir", Value: config.DataDir, Usage: "directory with session CSV files"},
			&cli.StringFlag{Name: "board", Value: config.Board, Usage: "board variant: synthetic, cyton or daisy"},
			&cli.StringFlag{Name: "erp", Required: true, Usage: "experimental paradigm (e.g. P300)"},
			&cli.StringFlag{Name: "subject", Required: true, Usage: "subject identifier"},
		},
		Commands: []*cli.Command{
			{
				Name:  "preprocess",
				Usage: "load, condition and export a subject's runs",
				Flags: []cli.Flag{
					&cli.IntSliceFlag{Name: "runs", Required: true, Usage: "run indices, in recording order"},
					&cli.StringFlag{Name: "out", Required: true, Usage: "output EDF path"},
					&cli.BoolFlag{Name: "no-notch", Usage: "skip the 60 Hz notch filter"},
					&cli.BoolFlag{Name: "no-bandpass", Usage: "skip the bandpass filter"},
					&cli.BoolFlag{Name: "no-denoise", Usage: "skip denoising"},
					&cli.StringFlag{Name: "denoise-method", Value: string(session.DefaultDenoiseMethod), Usage: "mean, median or a wavelet name"},
				},
				Action: runPreprocess,
			},
			{
				Name:  "export",
				Usage: "export a subject's runs as EDF without conditioning",
				Flags: []cli.Flag{
					&cli.IntSliceFlag{Name: "runs", Required: true, Usage: "run indices, in recording order"},
					&cli.StringFlag{Name: "out", Required: true, Usage: "output EDF path"},
				},
				Action: runExport,
			},
			{
				Name:  "inspect",
				Usage: "print per-channel signal statistics for one run",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "run", Required: true, Usage: "run index"},
					&cli.BoolFlag{Name: "preprocess", Usage: "condition the run before inspecting"},
				},
				Action: runInspect,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("eegprep failed")
	}
}

func datasetFrom(c *cli.Context) (*session.Dataset, error) {
	variant, err := board.ParseVariant(c.String("board"))
	if err != nil {
		return nil, err
	}
	return session.NewDataset(c.String("erp"), variant, c.String("data-dir"),
		session.WithLogger(log.Logger))
}

func loadSubject(c *cli.Context, preprocess bool) (session.Record, error) {
	ds, err := datasetFrom(c)
	if err != nil {
		return session.Record{}, err
	}

	subject := c.String("subject")
	runs := c.IntSlice("runs")

	if !preprocess {
		return ds.LoadSubject(subject, runs, false)
	}

	opts := session.PipelineOptions{
		Notch:         !c.Bool("no-notch"),
		Bandpass:      !c.Bool("no-bandpass"),
		Denoise:       !c.Bool("no-denoise"),
		DenoiseMethod: session.DenoiseMethod(c.String("denoise-method")),
	}

	records := make([]session.Record, 0, len(runs))
	for _, run := range runs {
		rec, err := ds.LoadSession(subject, run, true, opts)
		if err != nil {
			return session.Record{}, err
		}
		records = append(records, rec)
	}
	return session.Concatenate(records...)
}

func writeEDF(c *cli.Context, rec session.Record) error {
	out := c.String("out")
	f, err := os.OpenFile(out, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	meta := session.EDFMeta{
		PatientID:   c.String("subject"),
		RecordingID: fmt.Sprintf("%s runs %v", c.String("erp"), c.IntSlice("runs")),
		StartTime:   time.Now().UTC(),
	}
	if err := rec.WriteEDF(f, meta); err != nil {
		return err
	}

	log.Info().
		Str("path", out).
		Int("channels", len(rec.Channels)).
		Int("samples", rec.Samples()).
		Int("alignment_gaps", rec.AlignmentGaps).
		Msg("wrote EDF")
	return nil
}

func runPreprocess(c *cli.Context) error {
	rec, err := loadSubject(c, true)
	if err != nil {
		return err
	}
	return writeEDF(c, rec)
}

func runExport(c *cli.Context) error {
	rec, err := loadSubject(c, false)
	if err != nil {
		return err
	}
	return writeEDF(c, rec)
}

// Conventional EEG band edges in Hz.
var bands = []struct {
	name   string
	lo, hi float64
}{
	{"delta", 0.5, 4},
	{"theta", 4, 8},
	{"alpha", 8, 12},
	{"beta", 12, 30},
	{"gamma", 30, 50},
}

func runInspect(c *cli.Context) error {
	ds, err := datasetFrom(c)
	if err != nil {
		return err
	}

	rec, err := ds.LoadSession(c.String("subject"), c.Int("run"),
		c.Bool("preprocess"), session.DefaultPipeline())
	if err != nil {
		return err
	}

	header := color.New(color.Bold)
	header.Printf("%-6s %12s", "chan", "rms")
	for _, b := range bands {
		header.Printf(" %10s", b.name)
	}
	header.Printf(" %10s\n", "line 60Hz")

	for i, ch := range rec.Channels {
		if ch.Kind != session.KindEEG {
			continue
		}

		spec := dsp.PSD(rec.Data[i], ch.SampleRate)
		total := spec.BandPower(0.5, ch.SampleRate/2)

		fmt.Printf("%-6s %12.3e", ch.Name, dsp.RMS(rec.Data[i]))
		for _, b := range bands {
			fmt.Printf(" %10.4f", fraction(spec.BandPower(b.lo, b.hi), total))
		}

		// Residual line-frequency interference relative to total power,
		// highlighted when it dominates.
		line := fraction(spec.BandPower(59, 61), total)
		if line > 0.25 {
			color.New(color.FgRed).Printf(" %10.4f\n", line)
		} else {
			fmt.Printf(" %10.4f\n", line)
		}
	}

	fmt.Printf("\n%d samples, %d alignment gaps\n", rec.Samples(), rec.AlignmentGaps)
	return nil
}

func fraction(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total
}
