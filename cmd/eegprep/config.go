// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package main

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config holds environment-level defaults. Command-line flags take
// precedence over these.
type Config struct {
	// DataDir is the directory holding the per-session sample and event
	// CSV files.
	DataDir string `split_words:"true" default:"data"`

	// Board selects the acquisition board variant: synthetic, cyton or
	// daisy.
	Board string `default:"daisy"`

	// LogLevel sets the zerolog level (trace, debug, info, warn, error).
	LogLevel string `split_words:"true" default:"info"`
}

func parseConfig() (*Config, error) {
	// A .env file is optional; environment variables win over it.
	_ = godotenv.Load()

	var config Config
	if err := envconfig.Process("eegprep", &config); err != nil {
		return nil, errors.Wrap(err, "failed to parse configuration")
	}
	return &config, nil
}
