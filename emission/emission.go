/*
 * emission.go, part of gopahdb.
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

//Package emission contains the physics needed to turn the absorption
//spectrum of a PAH into an emission spectrum: the heat capacity, the
//temperature attained after absorbing a given energy, the strength of each
//feature during the cooling cascade, and the absorption cross-section of
//Li & Draine (2007) used to weight radiation fields.
//
//Frequencies are in 1/cm, temperatures in K and energies in erg.
package emission

import (
	"math"
)

//Physical constants, in cgs units.
const (
	HCK      = 1.4387751297850830401  //h*c/k, cm K
	HC       = 1.9864456023253396e-16 //h*c, erg cm
	HC2      = 3.945966130997681e-32  //(h*c)^2
	Kb       = 1.3806505e-16          //Boltzmann's constant, erg/K
	ErgPerEV = 1.6021765e-12
	SigmaSB  = 5.67040e-5 //Stefan-Boltzmann's constant, erg/(cm^2 s K^4)

	//2*h*c^2*N_A*1e5 times the km/mol to cm/molecule conversion, which turns
	//an intensity times f^3/expm1(hc f/kT) into erg/s/molecule.
	PlanckFactor = 2.4853427121856266e-23
)

//Limits for the integrals and the root search.
const (
	TMin = 2.73   //K, the lowest temperature considered
	TMax = 5000.0 //K, the highest temperature considered
	FMin = 2.5e3  //1/cm, the lowest frequency of a radiation field
	FMax = 1.1e5  //1/cm, the highest frequency of a radiation field
)

//maxExp is the largest argument for which math.Exp doesn't overflow.
var maxExp = math.Log(math.MaxFloat64)

//Molecule has the data of a PAH needed for the emission models.
type Molecule struct {
	NC          int //number of carbon atoms
	Charge      int
	Frequencies []float64
	Intensities []float64
}

//FixedTemperatureFactor returns the factor that converts an intensity at the
//frequency f to the energy emitted at the temperature T.
func FixedTemperatureFactor(f, T float64) float64 {
	return PlanckFactor * f * f * f / math.Expm1(HCK*f/T)
}

//HeatCapacity returns the heat capacity of the molecule at the temperature T, in erg/K.
func (M *Molecule) HeatCapacity(T float64) float64 {
	var c float64
	for _, f := range M.Frequencies {
		v := HCK * f / T
		if v > maxExp {
			continue
		}
		e := math.Exp(-v)
		x := v / (1 - e)
		c += e * x * x
	}
	return Kb * c
}

//AttainedTemperature returns the internal energy of the molecule at the
//temperature T, minus E. Its root is the temperature the molecule reaches
//after absorbing E.
func (M *Molecule) AttainedTemperature(T, E float64) float64 {
	return Integrate(M.HeatCapacity, TMin, T, 1e-6) - E
}

//ApproximateAttainedTemperature does the same as AttainedTemperature, but with
//an analytical fit to the internal energy that only depends on the number of carbons.
func (M *Molecule) ApproximateAttainedTemperature(T, E float64) float64 {
	return float64(M.NC)*(7.54267e-11*math.Erf(-4.989231+0.41778*math.Log(T))+7.542670e-11) - E
}

//MaxTemperature returns the maximum temperature the molecule reaches after
//absorbing the energy E.
func (M *Molecule) MaxTemperature(E float64, approximate bool) (float64, error) {
	f := func(T float64) float64 { return M.AttainedTemperature(T, E) }
	if approximate {
		f = func(T float64) float64 { return M.ApproximateAttainedTemperature(T, E) }
	}
	t, err := Brent(f, TMin, TMax, 1e-10, 200)
	if err != nil {
		return 0, errDecorate(err, "MaxTemperature")
	}
	return t, nil
}

//FeatureStrength returns the fraction of the energy emitted at the temperature
//T by the mode at frequency f, times the heat capacity, divided by f^3.
//Modes for which the Boltzmann factor would overflow are ignored.
func (M *Molecule) FeatureStrength(f, T float64) float64 {
	v := HCK * f / T
	if v > maxExp {
		return 0
	}
	var sum float64
	for i, fj := range M.Frequencies {
		vj := HCK * fj / T
		if vj >= maxExp {
			continue
		}
		sum += M.Intensities[i] * fj * fj * fj / math.Expm1(vj)
	}
	if sum == 0 {
		return 0
	}
	return M.HeatCapacity(T) / math.Expm1(v) / sum
}

//bakes holds the temperature ranges and the a, b parameters of the
//approximation to the feature strength of Bakes, Tielens & Bauschlicher,
//ApJ 556:501 (2001). Each range is (Low, High].
type bakes struct {
	Low, High float64
	A, B      float64
}

var bakesCharged = []bakes{
	{1000, math.Inf(1), 4.8e-4, 1.6119},
	{300, 1000, 6.38e-7, 2.5556},
	{100, 300, 1.69e-12, 4.7687},
	{40, 100, 7.7e-9, 2.9244},
	{20, 40, 3.4e-12, 5.0428},
	{2.7, 20, 4.47e-19, 10.3870},
}

var bakesNeutral = []bakes{
	{270, math.Inf(1), 5.5e-7, 2.5270},
	{200, 270, 1.7e-9, 3.5607},
	{60, 200, 1.35e-9, 4.4800},
	{30, 60, 4.18e-8, 2.5217},
	{2.7, 30, 1.8e-16, 8.1860},
}

//ApproximateFeatureStrength is the approximation of Bakes et al. (2001) to FeatureStrength.
//It only depends on the charge of the molecule.
func (M *Molecule) ApproximateFeatureStrength(f, T float64) float64 {
	table := bakesNeutral
	if M.Charge != 0 {
		table = bakesCharged
	}
	var a, b float64
	for _, r := range table {
		if T > r.Low && T <= r.High {
			a, b = r.A, r.B
			break
		}
	}
	v := HCK * f / T
	if a == 0 || v > maxExp {
		return 0
	}
	return 1 / (math.Expm1(v) * a * math.Pow(T, b))
}

//Li & Draine (2007) cross-section parameters.
var (
	ldA = [8]float64{7.97e-17, 1.23e-17, 20e-21, 14e-21, 80e-24, 84e-24, 46e-24, -322e-24}
	ldW = [8]float64{0.195, 0.217, 0.0805, 0.20, 0.0370, 0.0450, 0.0150, 0.135}
	ldC = [8]float64{0.0722, 0.2175, 1.05, 1.23, 1.66, 1.745, 1.885, 1.90}
)

//CrossSection returns the PAH absorption cross-section, in cm^2, at the frequency f,
//per Li & Draine, ApJ 657:810 (2007). The cutoff wavelength is the one of
//Salama et al. (1996).
func (M *Molecule) CrossSection(f float64) float64 {
	wave := 1e4 / f
	y := 1 / (0.889 + 2.282/math.Sqrt(0.4*float64(M.NC))) / wave
	var drude float64
	for i := 0; i < 2; i++ {
		d := wave/ldC[i] - ldC[i]/wave
		drude += ldW[i] * ldC[i] * ldA[i] / (d*d + ldW[i]*ldW[i])
	}
	cs := ((1/math.Pi)*math.Atan(1e3*math.Pow(y-1, 3)/y) + 0.5) *
		(3458e-20*math.Pow(10, -3.431*wave) + (2/math.Pi)*drude)
	if M.Charge != 0 {
		var gauss float64
		for i := 2; i < 8; i++ {
			d := wave - ldC[i]
			gauss += ldA[i] * math.Exp(-2*d*d/(ldW[i]*ldW[i])) / ldW[i]
		}
		cs += math.Exp(-1e-1/(wave*wave))*1.5e-19*math.Pow(10, -wave) + math.Sqrt(2/math.Pi)*gauss
	}
	return cs
}
