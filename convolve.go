/*
 * convolve.go, part of gopahdb.
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

package pahdb

import (
	"math"
	"runtime"
)

//Line profiles.
const (
	Lorentzian = "Lorentzian"
	Gaussian   = "Gaussian"
	Drude      = "Drude"
)

//ConvolveOptions contains the options for Transitions.Convolve.
type ConvolveOptions struct {
	Profile string    //Lorentzian (default), Gaussian or Drude
	FWHM    float64   //1/cm, 15 by default
	Grid    []float64 //if given, XRange and NPoints are ignored
	XRange  [2]float64
	NPoints int
	Workers int
}

//DefaultConvolveOptions returns Lorentzian profiles with a FWHM of 15 1/cm on
//400 points between 1 and 4000 1/cm, using all logical CPUs.
func DefaultConvolveOptions() *ConvolveOptions {
	return &ConvolveOptions{
		Profile: Lorentzian,
		FWHM:    15,
		XRange:  [2]float64{1, 4000},
		NPoints: 400,
		Workers: runtime.NumCPU(),
	}
}

//profile returns the profile, its width parameter and the number of widths
//beyond which lines are not included.
func (O *ConvolveOptions) profile() (string, float64, float64) {
	switch O.Profile {
	case Gaussian:
		return Gaussian, 0.5 * O.FWHM / math.Sqrt(2*math.Ln2), 3
	case Drude:
		return Drude, 1 / O.FWHM, 11
	}
	return Lorentzian, 0.5 * O.FWHM, 22
}

//grid returns the abscissa for the convolution.
func (O *ConvolveOptions) grid() []float64 {
	if len(O.Grid) > 0 {
		return append([]float64(nil), O.Grid...)
	}
	xmin, xmax := math.Min(O.XRange[0], O.XRange[1]), math.Max(O.XRange[0], O.XRange[1])
	n := O.NPoints
	if n <= 0 {
		n = 400
	}
	x := make([]float64, n)
	step := (xmax - xmin) / float64(n)
	for i := range x {
		x[i] = xmin + float64(i)*step
	}
	return x
}

//LineProfile returns the value of a normalized line profile centered at x0 at x.
//For the Drude profile, width is 1/FWHM.
func LineProfile(profile string, x, x0, width float64) float64 {
	switch profile {
	case Gaussian:
		d := x - x0
		return math.Exp(-d*d/(2*width*width)) / (width * math.Sqrt(2*math.Pi))
	case Drude:
		d := x/x0 - x0/x
		return 2 / (math.Pi * x0 * width) * width * width / (d*d + width*width)
	}
	d := x - x0
	return (width / math.Pi) / (d*d + width*width)
}

//convolveModes puts on the grid x the sum of the profiles of all the modes
//with positive intensity within clip widths of the grid.
func convolveModes(modes []Mode, x []float64, profile string, width, clip float64) []float64 {
	s := make([]float64, len(x))
	if len(x) == 0 {
		return s
	}
	xmin, xmax := x[0], x[0]
	for _, v := range x {
		xmin = math.Min(xmin, v)
		xmax = math.Max(xmax, v)
	}
	for _, m := range modes {
		if m.Intensity <= 0 || m.Frequency < xmin-clip*width || m.Frequency > xmax+clip*width {
			continue
		}
		for i, v := range x {
			s[i] += m.Intensity * LineProfile(profile, v, m.Frequency, width)
		}
	}
	return s
}
