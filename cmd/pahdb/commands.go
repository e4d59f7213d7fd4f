/*
 * commands.go, part of gopahdb.
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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pahdb "github.com/rmera/gopahdb"
	"github.com/rmera/gopahdb/pahplot"
)

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print information about the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.open()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:     %s\n", db.Filename())
			fmt.Fprintf(out, "type:     %s\n", db.Type())
			fmt.Fprintf(out, "version:  %s\n", db.Version())
			fmt.Fprintf(out, "date:     %s\n", db.Date())
			fmt.Fprintf(out, "species:  %d\n", db.Len())
			return nil
		},
	}
}

func (a *app) searchCmd() *cobra.Command {
	var details bool
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Print the species matching a query",
		Long: `search prints the UIDs and formulae of the species matching QUERY, e.g.

  pahdb search "c<=20 neutral n=0"
  pahdb search "magnesium=0 wavenumber>1000 with intensity>20"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.open()
			if err != nil {
				return err
			}
			uids, err := db.Search(strings.Join(args, " "))
			if err != nil {
				return err
			}
			S := db.SpeciesByUID(uids...)
			out := cmd.OutOrStdout()
			if details {
				fmt.Fprint(out, S.String())
				return nil
			}
			for _, uid := range S.UIDs {
				fmt.Fprintf(out, "%6d  %s\n", uid, S.Records[uid].Formula)
			}
			fmt.Fprintf(out, "%d species\n", len(S.UIDs))
			return nil
		},
	}
	cmd.Flags().BoolVar(&details, "details", false, "print all the properties of each species")
	return cmd
}

func (a *app) transitionsCmd() *cobra.Command {
	var output, plot string
	cmd := &cobra.Command{
		Use:   "transitions",
		Short: "Apply an emission model to the transitions and write them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.open()
			if err != nil {
				return err
			}
			T, err := a.transitions(db)
			if err != nil {
				return err
			}
			if err := T.Write(output); err != nil {
				return err
			}
			if plot != "" {
				return pahplot.Transitions(T, plot)
			}
			return nil
		},
	}
	a.selectionFlags(cmd)
	a.modelFlags(cmd, false)
	cmd.Flags().StringVarP(&output, "output", "o", "transitions.tbl", "IPAC table to write")
	cmd.Flags().StringVar(&plot, "plot", "", "stick plot to write, its format taken from the extension")
	return cmd
}

func (a *app) convolveCmd() *cobra.Command {
	var output, plot string
	var coadd, average bool
	cmd := &cobra.Command{
		Use:   "convolve",
		Short: "Convolve the transitions with line profiles and write the spectra",
		Long: `convolve applies the emission model to the transitions, convolves them
with the line profile, and writes the resulting spectra. With --coadd, the
spectra are summed (or averaged) into one. A plot file ending in .html gets
an interactive chart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.open()
			if err != nil {
				return err
			}
			T, err := a.transitions(db)
			if err != nil {
				return err
			}
			S, err := T.Convolve(a.convolveOptions(nil))
			if err != nil {
				return err
			}
			if coadd {
				C := S.Coadd(nil, average)
				if err := C.Write(output); err != nil {
					return err
				}
				S = &C.Spectrum
			} else if err := S.Write(output); err != nil {
				return err
			}
			return plotSpectrum(S, plot)
		},
	}
	a.selectionFlags(cmd)
	a.modelFlags(cmd, true)
	cmd.Flags().StringVarP(&output, "output", "o", "", "IPAC table to write (spectrum.tbl or coadded.tbl by default)")
	cmd.Flags().StringVar(&plot, "plot", "", "plot to write, its format taken from the extension")
	cmd.Flags().BoolVar(&coadd, "coadd", false, "sum the spectra")
	cmd.Flags().BoolVar(&average, "average", false, "average, instead of sum, with --coadd")
	return cmd
}

//plotSpectrum writes a plot of S to filename, if it isn't empty.
func plotSpectrum(S *pahdb.Spectrum, filename string) error {
	if filename == "" {
		return nil
	}
	if strings.ToLower(filepath.Ext(filename)) != ".html" {
		return pahplot.Spectrum(S, filename)
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := pahplot.SpectrumHTML(S, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) geometryCmd() *cobra.Command {
	var xyz, output string
	var diagonalize bool
	cmd := &cobra.Command{
		Use:   "geometry",
		Short: "Print masses, rings and areas of the species",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.open()
			if err != nil {
				return err
			}
			uids, err := a.uids(db)
			if err != nil {
				return err
			}
			G := db.GeometryByUID(uids...)
			if diagonalize {
				if err := G.Diagonalize(false, false); err != nil {
					return err
				}
			}
			mass, rings, area := G.Mass(), G.Rings(), G.Area()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%6s  %10s  %4s %4s %4s %4s %4s %4s  %10s\n", "UID", "mass", "3", "4", "5", "6", "7", "8", "area")
			for _, uid := range G.UIDs {
				r := rings[uid]
				fmt.Fprintf(out, "%6d  %10.4f  %4d %4d %4d %4d %4d %4d  %10.4f\n", uid, mass[uid],
					r.Three(), r.Four(), r.Five(), r.Six(), r.Seven(), r.Eight(), area[uid])
			}
			if output != "" {
				if err := G.Write(output); err != nil {
					return err
				}
			}
			if xyz == "" {
				return nil
			}
			if err := os.MkdirAll(xyz, 0o755); err != nil {
				return err
			}
			for _, uid := range G.UIDs {
				if err := writeXYZ(G, uid, filepath.Join(xyz, fmt.Sprintf("%d.xyz", uid))); err != nil {
					return err
				}
			}
			return nil
		},
	}
	a.selectionFlags(cmd)
	cmd.Flags().StringVar(&xyz, "xyz", "", "directory where to write one XYZ file per species")
	cmd.Flags().StringVarP(&output, "output", "o", "", "IPAC table with the geometries")
	cmd.Flags().BoolVar(&diagonalize, "diagonalize", false, "orient the molecules along their principal axes first")
	return cmd
}

func writeXYZ(G *pahdb.Geometry, uid int, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := G.WriteXYZ(f, uid); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
