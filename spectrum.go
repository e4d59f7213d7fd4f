/*
 * spectrum.go, part of gopahdb.
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
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

//Spectrum holds the spectra of a set of species on a common grid.
type Spectrum struct {
	Data
	Grid        []float64
	Intensities map[int][]float64
	Profile     string
	FWHM        float64
	Shift       float64
}

//NewSpectrum builds a spectrum from raw data. db may be nil, in which case the
//spectrum can't be fitted with breakdowns that need species properties.
func NewSpectrum(grid []float64, intensities map[int][]float64, db *DB) *Spectrum {
	S := &Spectrum{Grid: append([]float64(nil), grid...), Intensities: make(map[int][]float64, len(intensities))}
	for uid, v := range intensities {
		S.UIDs = append(S.UIDs, uid)
		S.Intensities[uid] = append([]float64(nil), v...)
	}
	sort.Ints(S.UIDs)
	if db != nil {
		S.Type, S.Version = db.Type(), db.Version()
		S.SetDB(db)
	}
	S.Units = Units{Abscissa: Unit{Label: "frequency", Str: "cm$^{-1}$"}, Ordinate: Unit{Label: "cross-section", Str: "cm$^{2}$/mol"}}
	S.Model.Type = ZeroKelvin
	return S
}

//Intersect keeps only the given UIDs. If none of them is present, nothing changes.
func (S *Spectrum) Intersect(uids ...int) {
	if S.Data.Intersect(uids...) {
		S.Intensities = keep(S.Intensities, S.UIDs)
	}
}

//Difference removes the given UIDs. If no UID would remain, nothing changes.
func (S *Spectrum) Difference(uids ...int) {
	if S.Data.Difference(uids...) {
		S.Intensities = keep(S.Intensities, S.UIDs)
	}
}

//copySpectrum returns a deep copy of the receiver.
func (S *Spectrum) copySpectrum() *Spectrum {
	r := *S
	r.UIDs = append([]int(nil), S.UIDs...)
	r.Grid = append([]float64(nil), S.Grid...)
	r.Intensities = make(map[int][]float64, len(S.Intensities))
	for k, v := range S.Intensities {
		r.Intensities[k] = append([]float64(nil), v...)
	}
	return &r
}

//Total returns the sum of all the spectra.
func (S *Spectrum) Total() []float64 {
	r := make([]float64, len(S.Grid))
	for _, uid := range S.UIDs {
		floats.Add(r, S.Intensities[uid])
	}
	return r
}

//Coadd returns the sum of the spectra, each multiplied by its weight if weights
//is not empty. Only the UIDs in weights are used in that case. If average is true,
//the sum is divided by the number of spectra in the receiver, weighted or not.
func (S *Spectrum) Coadd(weights map[int]float64, average bool) *Coadded {
	data := make([]float64, len(S.Grid))
	if len(weights) > 0 {
		for _, uid := range S.UIDs {
			if w, ok := weights[uid]; ok {
				floats.AddScaled(data, w, S.Intensities[uid])
			}
		}
	} else {
		data = S.Total()
	}
	if n := len(S.UIDs); average && n > 0 {
		floats.Scale(1/float64(n), data)
	}
	C := &Coadded{Spectrum: *S.copySpectrum(), Averaged: average}
	C.UIDs = []int{0}
	C.Intensities = map[int][]float64{0: data}
	if len(weights) > 0 {
		C.Weights = make(map[int]float64, len(weights))
		for k, v := range weights {
			C.Weights[k] = v
		}
	}
	return C
}

//Normalize divides each spectrum by its maximum, and returns the maxima.
func (S *Spectrum) Normalize() map[int]float64 {
	r := make(map[int]float64, len(S.UIDs))
	for _, uid := range S.UIDs {
		v := S.Intensities[uid]
		if len(v) == 0 {
			continue
		}
		m := floats.Max(v)
		if m != 0 {
			floats.Scale(1/m, v)
		}
		r[uid] = m
	}
	return r
}

//NormalizeAll divides all the spectra by the largest value among them, and returns it.
func (S *Spectrum) NormalizeAll() float64 {
	m := math.Inf(-1)
	for _, uid := range S.UIDs {
		if v := S.Intensities[uid]; len(v) > 0 {
			m = math.Max(m, floats.Max(v))
		}
	}
	if m == 0 || math.IsInf(m, -1) {
		return 0
	}
	for _, uid := range S.UIDs {
		floats.Scale(1/m, S.Intensities[uid])
	}
	return m
}

//Resample puts the spectra on the new grid, conserving the flux. Each value is
//the average of the old values, weighted by the overlap of the old bins with
//the new one. New bins not fully within the old grid get NaN.
func (S *Spectrum) Resample(grid []float64) {
	for _, uid := range S.UIDs {
		S.Intensities[uid] = resample(S.Grid, S.Intensities[uid], grid)
	}
	S.Grid = append([]float64(nil), grid...)
}

//ascending returns the order that sorts x.
func ascending(x []float64) []int {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return x[idx[i]] < x[idx[j]] })
	return idx
}

//binEdges returns the n+1 edges of the bins centered at the sorted points x.
func binEdges(x []float64) []float64 {
	n := len(x)
	e := make([]float64, n+1)
	if n == 1 {
		e[0], e[1] = x[0], x[0]
		return e
	}
	for i := 1; i < n; i++ {
		e[i] = 0.5 * (x[i-1] + x[i])
	}
	e[0] = x[0] - (e[1] - x[0])
	e[n] = x[n-1] + (x[n-1] - e[n-1])
	return e
}

func resample(x, y, nx []float64) []float64 {
	r := make([]float64, len(nx))
	if len(x) == 0 {
		for i := range r {
			r[i] = math.NaN()
		}
		return r
	}
	oi := ascending(x)
	ox := make([]float64, len(x))
	oy := make([]float64, len(x))
	for k, i := range oi {
		ox[k], oy[k] = x[i], y[i]
	}
	ni := ascending(nx)
	nxs := make([]float64, len(nx))
	for k, i := range ni {
		nxs[k] = nx[i]
	}
	oe := binEdges(ox)
	ne := binEdges(nxs)
	lo, hi := oe[0], oe[len(oe)-1]
	for k, i := range ni {
		a, b := ne[k], ne[k+1]
		if a < lo || b > hi {
			r[i] = math.NaN()
			continue
		}
		var sum, wsum float64
		for j := range ox {
			overlap := math.Min(b, oe[j+1]) - math.Max(a, oe[j])
			if overlap <= 0 {
				continue
			}
			sum += oy[j] * overlap
			wsum += overlap
		}
		if wsum == 0 {
			r[i] = math.NaN()
			continue
		}
		r[i] = sum / wsum
	}
	return r
}

//String returns a printout of the spectra.
func (S *Spectrum) String() string {
	var b strings.Builder
	for _, uid := range S.UIDs {
		b.WriteString(strings.Repeat("=", 55) + "\n")
		fmt.Fprintf(&b, "SPECTRUM\nUID: %d\n", uid)
		if S.Profile != "" {
			fmt.Fprintf(&b, "PROFILE: %s, FWHM: %g /cm\n", S.Profile, S.FWHM)
		}
		fmt.Fprintf(&b, "%-20.20s  %-20.20s\n", S.Units.Abscissa.String(), S.Units.Ordinate.String())
		for i, x := range S.Grid {
			fmt.Fprintf(&b, "%-20g  %-20g\n", x, S.Intensities[uid][i])
		}
		b.WriteString(strings.Repeat("=", 55) + "\n")
	}
	return b.String()
}

//Write writes the spectra to filename as an IPAC table, spectrum.tbl if filename is empty.
func (S *Spectrum) Write(filename string) error {
	return errDecorate(S.write(filename, "spectrum"), "Write")
}

func (S *Spectrum) write(filename, kind string) error {
	return S.writeRun(filename, kind, "")
}

//writeRun is write, adding a RUN keyword to the header if run is not empty.
func (S *Spectrum) writeRun(filename, kind, run string) error {
	tbl := S.header(kind)
	if run != "" {
		tbl.AddKeyword("RUN", fmt.Sprintf("'%s'", run))
	}
	var uids []int
	var freq, inten []float64
	for _, uid := range S.UIDs {
		for i, x := range S.Grid {
			uids = append(uids, uid)
			freq = append(freq, x)
			inten = append(inten, S.Intensities[uid][i])
		}
	}
	tbl.AddInts("UID", "", uids)
	tbl.AddFloats("FREQUENCY", "cm-1", freq)
	tbl.AddFloats("INTENSITY", S.Units.Ordinate.Str, inten)
	return writeTable(tbl, filename, kind)
}
