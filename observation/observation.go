/*
 * observation.go, part of gopahdb.
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

//Package observation reads observed spectra to be fitted with PAH spectra.
//
//IPAC tables and whitespace-separated ASCII tables are supported. The
//columns are found by name, case-insensitively: the abscissa is "wavelength",
//"frequency" or "wavenumber", the ordinate "flux", and the optional
//uncertainties "sigma", "uncertainty" or "error". ASCII tables without a
//header are read as abscissa, flux and, if present, uncertainty.
package observation

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rmera/gopahdb/ipac"
)

//ErrFITS is returned for FITS files, which are not supported.
var ErrFITS = errors.New("FITS files are not supported, convert the spectrum to an IPAC or ASCII table")

var (
	abscissaNames    = []string{"wavelength", "frequency", "wavenumber", "lambda", "x"}
	fluxNames        = []string{"flux", "intensity", "y"}
	uncertaintyNames = []string{"sigma", "uncertainty", "error", "flux_error", "err"}
)

//Units of the axes of an observation.
type Units struct {
	Abscissa string
	Ordinate string
}

//Observation is an observed spectrum.
type Observation struct {
	Filename string
	Abscissa []float64
	Ordinate []float64
	Sigma    []float64 //nil if the file has no uncertainties
	Units    Units
}

//Grid returns the abscissa.
func (O *Observation) Grid() []float64 { return O.Abscissa }

//Flux returns the ordinate.
func (O *Observation) Flux() []float64 { return O.Ordinate }

//Uncertainty returns the uncertainties, or nil.
func (O *Observation) Uncertainty() []float64 { return O.Sigma }

//Len returns the number of points.
func (O *Observation) Len() int { return len(O.Abscissa) }

//Read reads the observation in filename.
func Read(filename string) (*Observation, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".fits" || ext == ".fit" || ext == ".fts" {
		return nil, Error{ErrFITS.Error(), filename, []string{"Read"}, true, ErrFITS}
	}
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, Error{err.Error(), filename, []string{"Read"}, true, err}
	}
	if bytes.HasPrefix(b, []byte("SIMPLE  =")) {
		return nil, Error{ErrFITS.Error(), filename, []string{"Read"}, true, ErrFITS}
	}
	var O *Observation
	if isIPAC(b) {
		O, err = readIPAC(bytes.NewReader(b))
	} else {
		O, err = readASCII(bytes.NewReader(b))
	}
	if err != nil {
		if e, ok := err.(Error); ok {
			e.filename = filename
			return nil, errDecorate(e, "Read")
		}
		return nil, Error{err.Error(), filename, []string{"Read"}, true, err}
	}
	O.Filename = filename
	return O, nil
}

//isIPAC returns true if the first non-blank line starts with a backslash or a bar.
func isIPAC(b []byte) bool {
	s := bufio.NewScanner(bytes.NewReader(b))
	for s.Scan() {
		l := strings.TrimSpace(s.Text())
		if l == "" {
			continue
		}
		return l[0] == '\\' || l[0] == '|'
	}
	return false
}

func readIPAC(r io.Reader) (*Observation, error) {
	T, err := ipac.Read(r)
	if err != nil {
		return nil, err
	}
	x := T.Column(abscissaNames...)
	y := T.Column(fluxNames...)
	if x == nil || y == nil {
		return nil, Error{"abscissa or flux column not found", "", []string{"readIPAC"}, true, nil}
	}
	O := &Observation{Units: Units{Abscissa: x.Unit, Ordinate: y.Unit}}
	if O.Abscissa, err = x.Floats(); err != nil {
		return nil, err
	}
	if O.Ordinate, err = y.Floats(); err != nil {
		return nil, err
	}
	if s := T.Column(uncertaintyNames...); s != nil {
		if O.Sigma, err = s.Floats(); err != nil {
			return nil, err
		}
	}
	if O.Units.Abscissa == "" {
		O.Units.Abscissa = guessUnit(x.Name)
	}
	return O, nil
}

//guessUnit returns the usual unit for a column named name.
func guessUnit(name string) string {
	if strings.EqualFold(name, "wavelength") || strings.EqualFold(name, "lambda") {
		return "micron"
	}
	return "1/cm"
}

//find returns the index of the first header field matching one of names, or -1.
func find(header []string, names []string) int {
	for _, n := range names {
		for i, h := range header {
			if strings.EqualFold(h, n) {
				return i
			}
		}
	}
	return -1
}

func readASCII(r io.Reader) (*Observation, error) {
	s := bufio.NewScanner(r)
	ix, iy, is := 0, 1, 2
	header := false
	xname := "wavelength"
	O := new(Observation)
	line := 0
	for s.Scan() {
		line++
		l := strings.TrimSpace(s.Text())
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		fields := strings.Fields(strings.ReplaceAll(l, ",", " "))
		if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
			if header || len(O.Abscissa) > 0 {
				return nil, Error{fmt.Sprintf("line %d: unexpected text %q", line, fields[0]), "", []string{"readASCII"}, true, err}
			}
			header = true
			ix, iy, is = find(fields, abscissaNames), find(fields, fluxNames), find(fields, uncertaintyNames)
			if ix < 0 || iy < 0 {
				return nil, Error{"abscissa or flux column not found", "", []string{"readASCII"}, true, nil}
			}
			xname = fields[ix]
			continue
		}
		v := make([]float64, len(fields))
		for i, f := range fields {
			var err error
			if v[i], err = strconv.ParseFloat(f, 64); err != nil {
				return nil, Error{fmt.Sprintf("line %d: %v", line, err), "", []string{"readASCII"}, true, err}
			}
		}
		if ix >= len(v) || iy >= len(v) {
			return nil, Error{fmt.Sprintf("line %d: %d fields", line, len(v)), "", []string{"readASCII"}, true, nil}
		}
		O.Abscissa = append(O.Abscissa, v[ix])
		O.Ordinate = append(O.Ordinate, v[iy])
		if is >= 0 && is < len(v) {
			O.Sigma = append(O.Sigma, v[is])
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if len(O.Abscissa) == 0 {
		return nil, Error{"no data found", "", []string{"readASCII"}, true, nil}
	}
	if O.Sigma != nil && len(O.Sigma) != len(O.Ordinate) {
		return nil, Error{"uncertainties missing in some lines", "", []string{"readASCII"}, true, nil}
	}
	O.Units.Abscissa = guessUnit(xname)
	return O, nil
}

//canonical returns the normalized name of an abscissa unit: "micron" or "1/cm",
//or the empty string if it is not known.
func canonical(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	u = strings.NewReplacer(" ", "", "$", "", "{", "", "}", "", "^", "").Replace(u)
	switch u {
	case "micron", "microns", "um", "µm", "micrometer", "micrometers", "mum":
		return "micron"
	case "1/cm", "cm-1", "cm**-1", "/cm", "wavenumber", "kayser":
		return "1/cm"
	}
	return ""
}

//AbscissaUnitsTo converts the abscissa to unit. Only conversions between
//micron and 1/cm are supported. The order of the points is kept.
func (O *Observation) AbscissaUnitsTo(unit string) error {
	from, to := canonical(O.Units.Abscissa), canonical(unit)
	if from == "" || to == "" {
		return Error{fmt.Sprintf("can't convert from %q to %q", O.Units.Abscissa, unit), O.Filename, []string{"AbscissaUnitsTo"}, false, nil}
	}
	if from != to {
		for i, v := range O.Abscissa {
			O.Abscissa[i] = 1e4 / v
		}
	}
	O.Units.Abscissa = to
	return nil
}

//Error is the error type for this package.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
	wrapped  error
}

func (err Error) Error() string {
	if err.filename == "" {
		return fmt.Sprintf("observation error: %s", err.message)
	}
	return fmt.Sprintf("observation file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }

//Unwrap returns the underlying error, if any.
func (err Error) Unwrap() error { return err.wrapped }

func errDecorate(err error, caller string) error {
	if err2, ok := err.(Error); ok {
		err2.deco = append(err2.deco, caller)
		return err2
	}
	return err
}
