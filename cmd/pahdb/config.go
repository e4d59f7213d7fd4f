/*
 * config.go, part of gopahdb.
 *
 *
 * Copyright 2021 Raul Mera rauldotmeraatusachdotcl
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 *
 */

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

//Config holds everything a run of the program can be told. It is filled, in
//order, from the defaults, a YAML file, the environment, and the command line.
type Config struct {
	Database string `yaml:"database" env:"AMESPAHDEFAULTDB"`
	CacheDir string `yaml:"cache_dir" env:"AMESPAHCACHEDIR"`
	Workers  int    `yaml:"workers" env:"AMESPAHWORKERS"`
	NoCache  bool   `yaml:"no_cache"`
	NoCheck  bool   `yaml:"no_check"`
	Quiet    bool   `yaml:"quiet"`

	Query string `yaml:"query"`
	UIDs  []int  `yaml:"uids"`

	Emission EmissionConfig `yaml:"emission"`
	Convolve ConvolveConfig `yaml:"convolve"`
	Fit      FitConfig      `yaml:"fit"`
}

//EmissionConfig selects the emission model applied to the transitions.
type EmissionConfig struct {
	Model        string  `yaml:"model"` //zerokelvin, fixed, calculated or cascade
	Energy       float64 `yaml:"energy"`
	Temperature  float64 `yaml:"temperature"`
	Approximate  bool    `yaml:"approximate"`
	Star         bool    `yaml:"star"`
	ISRF         bool    `yaml:"isrf"`
	StellarModel string  `yaml:"stellar_model"`
	Convolved    bool    `yaml:"convolved"`
	Shift        float64 `yaml:"shift"`
}

//ConvolveConfig contains the line profile and grid.
type ConvolveConfig struct {
	Profile string  `yaml:"profile"`
	FWHM    float64 `yaml:"fwhm"`
	XMin    float64 `yaml:"xmin"`
	XMax    float64 `yaml:"xmax"`
	NPoints int     `yaml:"npoints"`
}

//FitConfig contains the options of the fit command.
type FitConfig struct {
	Observations []string `yaml:"observations"`
	Samples      int      `yaml:"samples"`
	Uniform      bool     `yaml:"uniform"`
	Output       string   `yaml:"output"`
	Plot         string   `yaml:"plot"` //extension of the plots, empty for none
	Kind         string   `yaml:"kind"`
	Catalog      string   `yaml:"catalog"`
	MetricsFile  string   `yaml:"metrics_file"`
	Watch        bool     `yaml:"watch"`
}

//DefaultConfig returns the configuration used when nothing else is given.
func DefaultConfig() *Config {
	return &Config{
		Emission: EmissionConfig{Model: "zerokelvin", Energy: 6},
		Convolve: ConvolveConfig{Profile: "Lorentzian", FWHM: 15, XMin: 1, XMax: 4000, NPoints: 400},
		Fit:      FitConfig{Output: ".", Kind: "uids"},
	}
}

//LoadConfig returns the defaults, overridden by the YAML file in path, if
//path is not empty, and then by the environment.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

//Validate checks the values that can't be checked by the library.
func (C *Config) Validate() error {
	switch C.Emission.Model {
	case "zerokelvin", "fixed", "calculated", "cascade":
	default:
		return fmt.Errorf("unknown emission model %q", C.Emission.Model)
	}
	switch strings.ToLower(C.Convolve.Profile) {
	case "lorentzian", "gaussian", "drude":
	default:
		return fmt.Errorf("unknown line profile %q", C.Convolve.Profile)
	}
	if C.Query != "" && len(C.UIDs) > 0 {
		return fmt.Errorf("give either a query or UIDs, not both")
	}
	return nil
}

//override is a flag that, if given, replaces a value of the configuration.
type override struct {
	flag string
	set  func(dst, src *Config)
}

var overrides = []override{
	{"db", func(d, s *Config) { d.Database = s.Database }},
	{"cache-dir", func(d, s *Config) { d.CacheDir = s.CacheDir }},
	{"workers", func(d, s *Config) { d.Workers = s.Workers }},
	{"no-cache", func(d, s *Config) { d.NoCache = s.NoCache }},
	{"no-check", func(d, s *Config) { d.NoCheck = s.NoCheck }},
	{"quiet", func(d, s *Config) { d.Quiet = s.Quiet }},
	{"query", func(d, s *Config) { d.Query = s.Query }},
	{"uids", func(d, s *Config) { d.UIDs = s.UIDs }},
	{"model", func(d, s *Config) { d.Emission.Model = s.Emission.Model }},
	{"energy", func(d, s *Config) { d.Emission.Energy = s.Emission.Energy }},
	{"temperature", func(d, s *Config) { d.Emission.Temperature = s.Emission.Temperature }},
	{"approximate", func(d, s *Config) { d.Emission.Approximate = s.Emission.Approximate }},
	{"star", func(d, s *Config) { d.Emission.Star = s.Emission.Star }},
	{"isrf", func(d, s *Config) { d.Emission.ISRF = s.Emission.ISRF }},
	{"stellar-model", func(d, s *Config) { d.Emission.StellarModel = s.Emission.StellarModel }},
	{"convolved", func(d, s *Config) { d.Emission.Convolved = s.Emission.Convolved }},
	{"shift", func(d, s *Config) { d.Emission.Shift = s.Emission.Shift }},
	{"profile", func(d, s *Config) { d.Convolve.Profile = s.Convolve.Profile }},
	{"fwhm", func(d, s *Config) { d.Convolve.FWHM = s.Convolve.FWHM }},
	{"xmin", func(d, s *Config) { d.Convolve.XMin = s.Convolve.XMin }},
	{"xmax", func(d, s *Config) { d.Convolve.XMax = s.Convolve.XMax }},
	{"npoints", func(d, s *Config) { d.Convolve.NPoints = s.Convolve.NPoints }},
	{"samples", func(d, s *Config) { d.Fit.Samples = s.Fit.Samples }},
	{"uniform", func(d, s *Config) { d.Fit.Uniform = s.Fit.Uniform }},
	{"output", func(d, s *Config) { d.Fit.Output = s.Fit.Output }},
	{"plot", func(d, s *Config) { d.Fit.Plot = s.Fit.Plot }},
	{"kind", func(d, s *Config) { d.Fit.Kind = s.Fit.Kind }},
	{"catalog", func(d, s *Config) { d.Fit.Catalog = s.Fit.Catalog }},
	{"metrics-file", func(d, s *Config) { d.Fit.MetricsFile = s.Fit.MetricsFile }},
	{"watch", func(d, s *Config) { d.Fit.Watch = s.Fit.Watch }},
}

//applyFlags copies into dst the values of flags, for the flags that were given in cmd.
func applyFlags(cmd *cobra.Command, dst, flags *Config) {
	for _, o := range overrides {
		if f := cmd.Flags().Lookup(o.flag); f != nil && f.Changed {
			o.set(dst, flags)
		}
	}
}
