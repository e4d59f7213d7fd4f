/*
 * field.go, part of gopahdb.
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

package emission

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/interp"
)

//Field is a radiation field.
type Field interface {
	//Photons returns a quantity proportional to the number of photons
	//per unit frequency at the frequency f.
	Photons(f float64) float64
	Name() string
}

//Planck is a blackbody at the temperature T.
type Planck struct {
	T float64
}

func (P Planck) Photons(f float64) float64 {
	return f * f / math.Expm1(HCK*f/P.T)
}

func (P Planck) Name() string { return "Star" }

//ISRF is the interstellar radiation field of Mathis, Mezger & Panagia, A&A 128:212 (1983).
type ISRF struct{}

var (
	isrfT = [4]float64{7500, 4000, 3000, 2.73}
	isrfW = [4]float64{1e-14, 1.65e-13, 4e-13, 1}
)

func (I ISRF) Photons(f float64) float64 {
	switch {
	case f > FMax:
		return 0
	case f > 1e4/0.110:
		return 1.202e23 / math.Pow(f, 6.4172)
	case f > 1e4/0.134:
		return 1.366e6 / (f * f * f)
	case f > 1e4/0.246:
		return 1.019e-2 / math.Pow(f, 1.3322)
	}
	var s float64
	for i, t := range isrfT {
		s += isrfW[i] / math.Expm1(HCK*f/t)
	}
	return f * f * s
}

func (I ISRF) Name() string { return "ISRF" }

//Stellar is a tabulated stellar model, with its intensity per unit frequency.
//Use NewStellar to obtain one.
type Stellar struct {
	Frequency   []float64 //rebinned, strictly increasing
	Intensity   []float64
	Temperature float64 //effective temperature of the full model
	photons     interp.PiecewiseLinear
}

//NewStellar builds a stellar model from a tabulated spectrum. The effective temperature
//is obtained from the whole spectrum, which is then rebinned to 100 points between
//FMin and FMax, by taking the nearest neighbour.
func NewStellar(frequency, intensity []float64) (*Stellar, error) {
	n := len(frequency)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return frequency[idx[i]] < frequency[idx[j]] })
	f := make([]float64, 0, n)
	in := make([]float64, 0, n)
	for _, i := range idx {
		if len(f) > 0 && frequency[i] == f[len(f)-1] {
			continue
		}
		f = append(f, frequency[i])
		in = append(in, intensity[i])
	}
	S := new(Stellar)
	S.Temperature = math.Pow(4*math.Pi*integrateTabulated(f, in)/SigmaSB, 0.25)
	var sf, si []float64
	for i, v := range f {
		if v >= FMin && v <= FMax {
			sf = append(sf, v)
			si = append(si, in[i])
		}
	}
	if len(sf) == 0 {
		return nil, Error{NoFieldData, []string{"NewStellar"}}
	}
	const nbins = 100
	nsel := len(sf)
	for i := 0; i < nbins; i++ {
		j := int(math.Floor(float64(nsel)*float64(i)/nbins + 0.5))
		if j > nsel-1 {
			j = nsel - 1
		}
		if len(S.Frequency) > 0 && sf[j] == S.Frequency[len(S.Frequency)-1] {
			continue
		}
		S.Frequency = append(S.Frequency, sf[j])
		S.Intensity = append(S.Intensity, si[j])
	}
	if len(S.Frequency) > 1 {
		ph := make([]float64, len(S.Frequency))
		for i, v := range S.Frequency {
			ph[i] = S.Intensity[i] / v
		}
		if err := S.photons.Fit(S.Frequency, ph); err != nil {
			return nil, Error{err.Error(), []string{"NewStellar"}}
		}
	}
	return S, nil
}

//Photons interpolates the tabulated intensity over frequency linearly.
func (S *Stellar) Photons(f float64) float64 {
	if len(S.Frequency) == 1 {
		return S.Intensity[0] / S.Frequency[0]
	}
	return S.photons.Predict(f)
}

func (S *Stellar) Name() string { return "StellarModel" }

//integrateTabulated integrates tabulated data with Simpson's rule, or with the
//trapezoidal rule if there are too few points.
func integrateTabulated(x, y []float64) float64 {
	switch {
	case len(x) < 2:
		return 0
	case len(x) < 3:
		return integrate.Trapezoidal(x, y)
	}
	return integrate.Simpsons(x, y)
}

//Moments returns the integrals of CrossSection(f)*F.Photons(f)*f^k for k = 0, 1, 2,
//over the frequency range of the field. Tabulated fields are integrated over their points.
func (M *Molecule) Moments(F Field) (m0, m1, m2 float64) {
	if S, ok := F.(*Stellar); ok {
		n := len(S.Frequency)
		y0, y1, y2 := make([]float64, n), make([]float64, n), make([]float64, n)
		for i, f := range S.Frequency {
			y0[i] = M.CrossSection(f) * S.Intensity[i] / f
			y1[i] = y0[i] * f
			y2[i] = y1[i] * f
		}
		return integrateTabulated(S.Frequency, y0), integrateTabulated(S.Frequency, y1), integrateTabulated(S.Frequency, y2)
	}
	w := func(f float64) float64 { return M.CrossSection(f) * F.Photons(f) }
	m0 = Integrate(w, FMin, FMax, 1e-6)
	m1 = Integrate(func(f float64) float64 { return w(f) * f }, FMin, FMax, 1e-6)
	m2 = Integrate(func(f float64) float64 { return w(f) * f * f }, FMin, FMax, 1e-6)
	return m0, m1, m2
}

//MeanEnergy returns the mean energy, in erg, that the molecule absorbs from
//the field F, and its standard deviation. It also returns the number of
//absorbed photons, up to a constant.
func (M *Molecule) MeanEnergy(F Field) (E, sigma, nphot float64) {
	m0, m1, m2 := M.Moments(F)
	if m0 == 0 {
		return 0, 0, 0
	}
	E = HC * m1 / m0
	E2 := HC2 * m2 / m0
	return E, math.Sqrt(math.Max(E2-E*E, 0)), m0
}
