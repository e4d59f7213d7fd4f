/*
 * cascade.go, part of gopahdb.
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
)

//CascadeOptions contains the options for the cascade model.
type CascadeOptions struct {
	Approximate bool  //use the approximate attained temperature and feature strength
	Field       Field //if not nil, the absorbed energy is the mean energy absorbed from this field
	Convolved   bool  //integrate over the whole field instead of using its mean energy
}

//Result is the outcome of an emission model for one molecule.
type Result struct {
	Intensities []float64 //the emitted energy for each mode, erg/molecule
	Energy      float64   //the absorbed energy, erg
	Sigma       float64   //the standard deviation of the absorbed energy, erg
	Tmax        float64   //the maximum attained temperature, K
}

//Conservation returns the ratio of the emitted to the absorbed energy.
func (R *Result) Conservation() float64 {
	var s float64
	for _, v := range R.Intensities {
		s += v
	}
	if R.Energy == 0 {
		return math.NaN()
	}
	return s / R.Energy
}

//CalculatedTemperature applies the fixed temperature model at the maximum temperature
//attained by the molecule after absorbing the energy E.
func (M *Molecule) CalculatedTemperature(E float64, O CascadeOptions) (*Result, error) {
	R := &Result{Energy: E}
	if O.Field != nil {
		R.Energy, R.Sigma, _ = M.MeanEnergy(O.Field)
	}
	var err error
	R.Tmax, err = M.MaxTemperature(R.Energy, O.Approximate)
	if err != nil {
		return nil, errDecorate(err, "CalculatedTemperature")
	}
	R.Intensities = make([]float64, len(M.Intensities))
	for i, v := range M.Intensities {
		if v > 0 {
			R.Intensities[i] = v * FixedTemperatureFactor(M.Frequencies[i], R.Tmax)
		}
	}
	return R, nil
}

//Cascade applies the cascade model, in which the energy emitted by each mode is
//integrated over the whole cooling of the molecule, from the maximum attained
//temperature after absorbing E, down to TMin.
func (M *Molecule) Cascade(E float64, O CascadeOptions) (*Result, error) {
	R := &Result{Energy: E}
	var nphot float64
	if O.Field != nil {
		R.Energy, R.Sigma, nphot = M.MeanEnergy(O.Field)
	}
	var err error
	R.Tmax, err = M.MaxTemperature(R.Energy, O.Approximate)
	if err != nil {
		return nil, errDecorate(err, "Cascade")
	}
	fs := M.FeatureStrength
	if O.Approximate {
		fs = M.ApproximateFeatureStrength
	}
	R.Intensities = make([]float64, len(M.Intensities))
	convolved := O.Convolved && O.Field != nil && nphot > 0
	//the maximum temperature for each absorbed photon, shared by all modes.
	tmax := make(map[float64]float64)
	for i, v := range M.Intensities {
		if v <= 0 {
			continue
		}
		f := M.Frequencies[i]
		if !convolved {
			R.Intensities[i] = v * f * f * f * Integrate(func(T float64) float64 { return fs(f, T) }, TMin, R.Tmax, 1e-6)
			continue
		}
		var ferr error
		photon := func(fp float64) float64 {
			t, ok := tmax[fp]
			if !ok {
				var err error
				t, err = M.MaxTemperature(HC*fp, O.Approximate)
				if err != nil {
					ferr = err
					return 0
				}
				tmax[fp] = t
			}
			return M.CrossSection(fp) * O.Field.Photons(fp) * Integrate(func(T float64) float64 { return fs(f, T) }, TMin, t, 1e-6)
		}
		R.Intensities[i] = v * f * f * f * Integrate(photon, FMin, FMax, 1e-6) / nphot
		if ferr != nil {
			return nil, errDecorate(ferr, "Cascade")
		}
	}
	if O.Approximate {
		var total float64
		for _, v := range M.Intensities {
			total += v
		}
		if total > 0 {
			scale := 2.48534271218563e-23 * float64(M.NC) / total
			for i := range R.Intensities {
				R.Intensities[i] *= scale
			}
		}
	}
	return R, nil
}
