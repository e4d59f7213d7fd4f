/*
 * emission_test.go, part of gopahdb.
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//testMolecule returns a molecule with the 48 modes of a naphthalene-sized PAH,
//spread evenly in frequency.
func testMolecule(charge int) *Molecule {
	M := &Molecule{NC: 10, Charge: charge}
	for i := 0; i < 48; i++ {
		f := 170 + float64(i)*(3100-170)/47
		M.Frequencies = append(M.Frequencies, f)
		M.Intensities = append(M.Intensities, 1+float64(i%7)*5)
	}
	return M
}

func TestIntegrate(Te *testing.T) {
	assert.InDelta(Te, 9, Integrate(func(x float64) float64 { return x * x }, 0, 3, 1e-10), 1e-9)
	assert.InDelta(Te, -9, Integrate(func(x float64) float64 { return x * x }, 3, 0, 1e-10), 1e-9)
	assert.InDelta(Te, 2, Integrate(math.Sin, 0, math.Pi, 1e-10), 1e-9)
	assert.Equal(Te, 0.0, Integrate(math.Sin, 1, 1, 1e-10))
	//A sharp peak needs the adaptive bisection.
	peak := func(x float64) float64 { return 1 / (1e-4 + (x-0.3)*(x-0.3)) }
	want := 100 * (math.Atan(0.7/1e-2) + math.Atan(0.3/1e-2))
	assert.InEpsilon(Te, want, Integrate(peak, 0, 1, 1e-8), 1e-6)
}

func TestBrent(Te *testing.T) {
	r, err := Brent(func(x float64) float64 { return x*x - 2 }, 0, 2, 1e-12, 100)
	require.NoError(Te, err)
	assert.InDelta(Te, math.Sqrt2, r, 1e-10)
	_, err = Brent(func(x float64) float64 { return x*x + 1 }, -1, 1, 1e-12, 100)
	assert.Error(Te, err)
}

func TestHeatCapacity(Te *testing.T) {
	M := testMolecule(0)
	//the classical limit is k per mode.
	assert.InEpsilon(Te, Kb*48, M.HeatCapacity(1e7), 1e-6)
	assert.Less(Te, M.HeatCapacity(3), 1e-3*Kb)
	assert.Less(Te, M.HeatCapacity(300), M.HeatCapacity(1000))
}

func TestMaxTemperature(Te *testing.T) {
	M := testMolecule(0)
	E := 6 * ErgPerEV
	T, err := M.MaxTemperature(E, false)
	require.NoError(Te, err)
	assert.Greater(Te, T, 300.0)
	assert.Less(Te, T, TMax)
	assert.InDelta(Te, 0, M.AttainedTemperature(T, E)/E, 1e-6)
	//More energy, higher temperature.
	T2, err := M.MaxTemperature(2*E, false)
	require.NoError(Te, err)
	assert.Greater(Te, T2, T)
	Ta, err := M.MaxTemperature(E, true)
	require.NoError(Te, err)
	assert.Greater(Te, Ta, TMin)
	//Far too much energy can't be bracketed.
	_, err = M.MaxTemperature(1e4*E, false)
	assert.Error(Te, err)
}

func TestCalculatedTemperature(Te *testing.T) {
	M := testMolecule(0)
	R, err := M.CalculatedTemperature(6*ErgPerEV, CascadeOptions{})
	require.NoError(Te, err)
	require.Len(Te, R.Intensities, 48)
	for i, v := range R.Intensities {
		assert.InEpsilon(Te, M.Intensities[i]*FixedTemperatureFactor(M.Frequencies[i], R.Tmax), v, 1e-12)
	}
}

//The cascade redistributes all the absorbed energy among the modes.
func TestCascadeConservation(Te *testing.T) {
	M := testMolecule(0)
	R, err := M.Cascade(6*ErgPerEV, CascadeOptions{})
	require.NoError(Te, err)
	assert.InDelta(Te, 1, R.Conservation(), 1e-3)
	for _, v := range R.Intensities {
		assert.Greater(Te, v, 0.0)
	}
	A, err := testMolecule(1).Cascade(6*ErgPerEV, CascadeOptions{Approximate: true})
	require.NoError(Te, err)
	for _, v := range A.Intensities {
		assert.GreaterOrEqual(Te, v, 0.0)
	}
}

//Integrating over the whole field also conserves the mean absorbed energy.
func TestCascadeConvolved(Te *testing.T) {
	if testing.Short() {
		Te.Skip("the convolved cascade integrates over every photon energy")
	}
	M := testMolecule(0)
	star := Planck{T: 6000}
	R, err := M.Cascade(0, CascadeOptions{Field: star, Convolved: true})
	require.NoError(Te, err)
	E, sigma, _ := M.MeanEnergy(star)
	assert.Equal(Te, E, R.Energy)
	assert.Equal(Te, sigma, R.Sigma)
	assert.InDelta(Te, 1, R.Conservation(), 1e-3)
	for _, v := range R.Intensities {
		assert.Greater(Te, v, 0.0)
	}
	//The mean energy alone distributes it differently among the modes.
	mean, err := M.Cascade(0, CascadeOptions{Field: star})
	require.NoError(Te, err)
	assert.Equal(Te, R.Tmax, mean.Tmax)
	assert.NotEqual(Te, mean.Intensities, R.Intensities)
}

//Every temperature above 2.7 K falls in one of the ranges of the approximation.
func TestApproximateFeatureStrength(Te *testing.T) {
	M := testMolecule(0)
	f := 1000.0
	at := func(T, a, b float64) float64 {
		return 1 / (math.Expm1(HCK*f/T) * a * math.Pow(T, b))
	}
	assert.InEpsilon(Te, at(45, 4.18e-8, 2.5217), M.ApproximateFeatureStrength(f, 45), 1e-12)
	assert.InEpsilon(Te, at(60, 4.18e-8, 2.5217), M.ApproximateFeatureStrength(f, 60), 1e-12)
	assert.InEpsilon(Te, at(500, 5.5e-7, 2.5270), M.ApproximateFeatureStrength(f, 500), 1e-12)
	C := testMolecule(-1)
	assert.InEpsilon(Te, at(45, 7.7e-9, 2.9244), C.ApproximateFeatureStrength(f, 45), 1e-12)
	assert.Equal(Te, 0.0, M.ApproximateFeatureStrength(f, 2.7))
}

func TestFields(Te *testing.T) {
	M := testMolecule(0)
	E, sigma, n := M.MeanEnergy(Planck{T: 20000})
	assert.Greater(Te, E, HC*FMin)
	assert.Less(Te, E, HC*FMax)
	assert.Greater(Te, sigma, 0.0)
	assert.Greater(Te, n, 0.0)
	//A hotter star gives more energetic photons.
	E2, _, _ := M.MeanEnergy(Planck{T: 40000})
	assert.Greater(Te, E2, E)
	assert.Equal(Te, 0.0, ISRF{}.Photons(2*FMax))
	Ei, _, _ := M.MeanEnergy(ISRF{})
	assert.Greater(Te, Ei, HC*FMin)
	assert.Greater(Te, M.CrossSection(5e4), 0.0)
	assert.Greater(Te, testMolecule(1).CrossSection(1e4), M.CrossSection(1e4))
}

func TestStellar(Te *testing.T) {
	var f, in []float64
	for v := 1000.0; v <= 2e5; v += 500 {
		f = append(f, v)
		in = append(in, Planck{T: 30000}.Photons(v)*v)
	}
	S, err := NewStellar(f, in)
	require.NoError(Te, err)
	assert.Greater(Te, S.Temperature, 0.0)
	assert.LessOrEqual(Te, len(S.Frequency), 100)
	for i, v := range S.Frequency {
		assert.GreaterOrEqual(Te, v, FMin)
		assert.LessOrEqual(Te, v, FMax)
		if i > 0 {
			assert.Greater(Te, v, S.Frequency[i-1])
		}
	}
	assert.InEpsilon(Te, S.Intensity[3]/S.Frequency[3], S.Photons(S.Frequency[3]), 1e-9)
	E, _, _ := testMolecule(0).MeanEnergy(S)
	assert.Greater(Te, E, 0.0)
	_, err = NewStellar([]float64{10, 20}, []float64{1, 1})
	assert.Error(Te, err)
}
