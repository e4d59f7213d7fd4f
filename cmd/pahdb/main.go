/*
 * main.go, part of gopahdb.
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

//Command pahdb gives command line access to the NASA Ames PAH IR
//spectroscopic database: searching it, applying emission models to the
//transitions, convolving them into spectra, and fitting observed spectra.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	pahdb "github.com/rmera/gopahdb"
	"github.com/rmera/gopahdb/emission"
	"github.com/rmera/gopahdb/ipac"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

//app carries the configuration shared by the commands.
type app struct {
	configPath string
	flags      Config //values of the flags, applied only if given
	cfg        *Config
}

func rootCmd() *cobra.Command {
	a := &app{flags: *DefaultConfig()}
	cmd := &cobra.Command{
		Use:   "pahdb",
		Short: "NASA Ames PAH IR spectroscopic database tool",
		Long: `pahdb searches the NASA Ames PAH IR spectroscopic database, applies
emission models to the transitions of the species, convolves them into
spectra, and decomposes observed spectra into PAH spectra.

The database file is taken from --db, the configuration file, or the
AMESPAHDEFAULTDB environment variable.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(a.configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg, &a.flags)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			a.cfg = cfg
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&a.flags.Database, "db", "", "database XML file")
	pf.StringVar(&a.flags.CacheDir, "cache-dir", "", "directory for cache files")
	pf.IntVar(&a.flags.Workers, "workers", 0, "number of goroutines (0 for all CPUs)")
	pf.BoolVar(&a.flags.NoCache, "no-cache", false, "don't use or write cache files")
	pf.BoolVar(&a.flags.NoCheck, "no-check", false, "skip the schema check")
	pf.BoolVarP(&a.flags.Quiet, "quiet", "q", false, "don't log banners")
	cmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("pahdb version %s\n", pahdb.Version)
			},
		},
		a.infoCmd(),
		a.searchCmd(),
		a.transitionsCmd(),
		a.convolveCmd(),
		a.fitCmd(),
		a.geometryCmd(),
	)
	return cmd
}

//selectionFlags adds the flags that select species.
func (a *app) selectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.flags.Query, "query", "", "search query selecting the species")
	cmd.Flags().IntSliceVar(&a.flags.UIDs, "uids", nil, "UIDs of the species")
}

//modelFlags adds the flags for the emission model and the line profiles.
func (a *app) modelFlags(cmd *cobra.Command, convolve bool) {
	f := cmd.Flags()
	f.StringVar(&a.flags.Emission.Model, "model", "zerokelvin", "emission model: zerokelvin, fixed, calculated or cascade")
	f.Float64Var(&a.flags.Emission.Energy, "energy", 6, "absorbed energy, in eV, or the temperature of the star with --star")
	f.Float64Var(&a.flags.Emission.Temperature, "temperature", 0, "temperature, in K, for the fixed model")
	f.BoolVar(&a.flags.Emission.Approximate, "approximate", false, "use the approximate model")
	f.BoolVar(&a.flags.Emission.Star, "star", false, "the energy is the temperature of a blackbody radiation field")
	f.BoolVar(&a.flags.Emission.ISRF, "isrf", false, "use the interstellar radiation field")
	f.StringVar(&a.flags.Emission.StellarModel, "stellar-model", "", "IPAC table with FREQUENCY and INTENSITY of a stellar model")
	f.BoolVar(&a.flags.Emission.Convolved, "convolved", false, "convolve the model with the whole radiation field")
	f.Float64Var(&a.flags.Emission.Shift, "shift", 0, "shift applied to all frequencies, in 1/cm")
	if !convolve {
		return
	}
	f.StringVar(&a.flags.Convolve.Profile, "profile", "Lorentzian", "line profile: Lorentzian, Gaussian or Drude")
	f.Float64Var(&a.flags.Convolve.FWHM, "fwhm", 15, "FWHM of the line profiles, in 1/cm")
	f.Float64Var(&a.flags.Convolve.XMin, "xmin", 1, "lower end of the grid, in 1/cm")
	f.Float64Var(&a.flags.Convolve.XMax, "xmax", 4000, "upper end of the grid, in 1/cm")
	f.IntVar(&a.flags.Convolve.NPoints, "npoints", 400, "number of points in the grid")
}

//open opens the database given in the configuration.
func (a *app) open() (*pahdb.DB, error) {
	O := pahdb.DefaultOptions()
	O.Cache(!a.cfg.NoCache)
	O.CacheDir(a.cfg.CacheDir)
	O.Check(!a.cfg.NoCheck)
	O.Verbose(!a.cfg.Quiet)
	O.Workers(a.cfg.Workers)
	return pahdb.Open(a.cfg.Database, O)
}

//uids returns the UIDs selected by the configuration: those matching the
//query, or the given ones, or all.
func (a *app) uids(db *pahdb.DB) ([]int, error) {
	if a.cfg.Query != "" {
		uids, err := db.Search(a.cfg.Query)
		if err != nil {
			return nil, err
		}
		if len(uids) == 0 {
			return nil, fmt.Errorf("no species match %q", a.cfg.Query)
		}
		return uids, nil
	}
	return a.cfg.UIDs, nil
}

//emissionOptions builds the options for the calculated temperature and cascade models.
func (a *app) emissionOptions() (*pahdb.EmissionOptions, error) {
	e := a.cfg.Emission
	O := pahdb.DefaultEmissionOptions()
	O.Approximate, O.Star, O.ISRF, O.Convolved = e.Approximate, e.Star, e.ISRF, e.Convolved
	O.Cache = !a.cfg.NoCache
	if a.cfg.Workers > 0 {
		O.Workers = a.cfg.Workers
	}
	if e.StellarModel == "" {
		return O, nil
	}
	T, err := ipac.ReadFile(e.StellarModel)
	if err != nil {
		return nil, err
	}
	fc, ic := T.Column("FREQUENCY"), T.Column("INTENSITY")
	if fc == nil || ic == nil {
		return nil, fmt.Errorf("stellar model %s needs FREQUENCY and INTENSITY columns", e.StellarModel)
	}
	freq, err := fc.Floats()
	if err != nil {
		return nil, err
	}
	inten, err := ic.Floats()
	if err != nil {
		return nil, err
	}
	if O.StellarModel, err = emission.NewStellar(freq, inten); err != nil {
		return nil, err
	}
	return O, nil
}

//transitions returns the transitions of the selected species with the
//configured emission model and shift applied.
func (a *app) transitions(db *pahdb.DB) (*pahdb.Transitions, error) {
	uids, err := a.uids(db)
	if err != nil {
		return nil, err
	}
	T := db.TransitionsByUID(uids...)
	if len(T.UIDs) == 0 {
		return nil, fmt.Errorf("no species selected")
	}
	if a.cfg.Emission.Shift != 0 {
		T.Shift(a.cfg.Emission.Shift)
	}
	e := a.cfg.Emission
	switch e.Model {
	case "fixed":
		err = T.FixedTemperature(e.Temperature)
	case "calculated", "cascade":
		O, oerr := a.emissionOptions()
		if oerr != nil {
			return nil, oerr
		}
		if e.Model == "calculated" {
			err = T.CalculatedTemperature(e.Energy, O)
		} else {
			err = T.Cascade(e.Energy, O)
		}
	}
	if err != nil {
		return nil, err
	}
	return T, nil
}

//convolveOptions returns the options for the line profiles, on grid if it's not nil.
func (a *app) convolveOptions(grid []float64) *pahdb.ConvolveOptions {
	c := a.cfg.Convolve
	O := pahdb.DefaultConvolveOptions()
	switch c.Profile {
	case "gaussian", "Gaussian":
		O.Profile = pahdb.Gaussian
	case "drude", "Drude":
		O.Profile = pahdb.Drude
	default:
		O.Profile = pahdb.Lorentzian
	}
	O.FWHM = c.FWHM
	O.XRange = [2]float64{c.XMin, c.XMax}
	O.NPoints = c.NPoints
	O.Grid = grid
	if a.cfg.Workers > 0 {
		O.Workers = a.cfg.Workers
	}
	return O
}

func init() {
	log.SetFlags(log.LstdFlags)
}
