/*
 * spectrum_test.go, part of gopahdb.
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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/gopahdb/ipac"
)

func TestNewSpectrum(Te *testing.T) {
	db := openTest(Te, theoreticalFile)
	S := NewSpectrum([]float64{1, 2, 3}, map[int][]float64{601: {1, 1, 1}, 18: {0, 2, 0}}, db)
	assert.Equal(Te, []int{18, 601}, S.UIDs)
	assert.Equal(Te, db, S.DB())
	assert.Equal(Te, "theoretical", S.Type)
	assert.Equal(Te, []float64{1, 3, 1}, S.Total())

	S.Difference(18)
	assert.Equal(Te, []int{601}, S.UIDs)
	assert.Len(Te, S.Intensities, 1)
}

func TestCoadd(Te *testing.T) {
	S := NewSpectrum([]float64{1, 2, 3}, map[int][]float64{1: {1, 2, 3}, 2: {3, 2, 1}, 3: {0, 0, 6}}, nil)
	C := S.Coadd(nil, false)
	assert.Equal(Te, []int{0}, C.UIDs)
	assert.Equal(Te, []float64{4, 4, 10}, C.Intensities[0])
	assert.Nil(Te, C.Weights)

	C = S.Coadd(nil, true)
	assert.InDeltaSlice(Te, []float64{4.0 / 3, 4.0 / 3, 10.0 / 3}, C.Intensities[0], 1e-12)
	assert.Contains(Te, C.String(), "AVERAGED")

	C = S.Coadd(map[int]float64{1: 2, 3: 0.5, 99: 1}, false)
	assert.Equal(Te, []float64{2, 4, 9}, C.Intensities[0])
	assert.Equal(Te, 2.0, C.Weights[1])
	assert.Contains(Te, C.String(), "WITH 3 WEIGHTS")

	//Averages count every spectrum, not only the weighted ones.
	A := NewSpectrum([]float64{1, 2}, map[int][]float64{1: {3, 3}, 2: {3, 3}, 3: {3, 3}}, nil)
	C2 := A.Coadd(map[int]float64{1: 1, 2: 1}, true)
	assert.InDeltaSlice(Te, []float64{2, 2}, C2.Intensities[0], 1e-12)

	//The original is untouched.
	assert.Equal(Te, []int{1, 2, 3}, S.UIDs)
	assert.Equal(Te, []float64{1, 2, 3}, S.Intensities[1])

	out := filepath.Join(Te.TempDir(), "coadded.tbl")
	require.NoError(Te, C.Write(out))
	tbl, err := ipac.ReadFile(out)
	require.NoError(Te, err)
	assert.Equal(Te, 3, tbl.Rows())
	kind, _ := tbl.Keyword("TYPE")
	assert.Equal(Te, "COADDED", kind)
}

func TestNormalize(Te *testing.T) {
	S := NewSpectrum([]float64{1, 2, 3}, map[int][]float64{1: {1, 4, 2}, 2: {0, 0, 0}, 3: {0.5, 0.25, 0}}, nil)
	maxima := S.Normalize()
	assert.Equal(Te, map[int]float64{1: 4, 2: 0, 3: 0.5}, maxima)
	assert.Equal(Te, []float64{0.25, 1, 0.5}, S.Intensities[1])
	assert.Equal(Te, []float64{0, 0, 0}, S.Intensities[2])
	assert.Equal(Te, []float64{1, 0.5, 0}, S.Intensities[3])

	S = NewSpectrum([]float64{1, 2}, map[int][]float64{1: {1, 4}, 2: {2, 8}}, nil)
	assert.Equal(Te, 8.0, S.NormalizeAll())
	assert.Equal(Te, []float64{0.125, 0.5}, S.Intensities[1])
	assert.Equal(Te, []float64{0.25, 1}, S.Intensities[2])
}

func TestResample(Te *testing.T) {
	x := make([]float64, 10)
	line := make([]float64, 10)
	flat := make([]float64, 10)
	for i := range x {
		x[i] = float64(i)
		line[i] = float64(i)
		flat[i] = 2
	}
	S := NewSpectrum(x, map[int][]float64{1: line, 2: flat}, nil)
	S.Resample([]float64{6, 2, 4})
	assert.Equal(Te, []float64{6, 2, 4}, S.Grid)
	assert.InDeltaSlice(Te, []float64{6, 2, 4}, S.Intensities[1], 1e-12)
	assert.InDeltaSlice(Te, []float64{2, 2, 2}, S.Intensities[2], 1e-12)

	//Bins that stick out of the old grid can't be filled.
	r := resample(x, flat, []float64{0, 9})
	assert.True(Te, math.IsNaN(r[0]))
	assert.True(Te, math.IsNaN(r[1]))
	r = resample(nil, nil, []float64{1})
	assert.True(Te, math.IsNaN(r[0]))
}

func TestBinEdges(Te *testing.T) {
	assert.Equal(Te, []float64{-0.5, 0.5, 1.5, 2.5}, binEdges([]float64{0, 1, 2}))
	assert.Equal(Te, []float64{-0.25, 1.25, 3, 5}, binEdges([]float64{0.5, 2, 4}))
	assert.Equal(Te, []int{2, 0, 1}, ascending([]float64{3, 5, 1}))
}

func TestSpectrumWrite(Te *testing.T) {
	db := openTest(Te, theoreticalFile)
	T := db.TransitionsByUID(18, 73)
	O := DefaultConvolveOptions()
	O.NPoints = 50
	S, err := T.Convolve(O)
	require.NoError(Te, err)
	dir := Te.TempDir()
	out := filepath.Join(dir, "spectrum.tbl")
	require.NoError(Te, S.Write(out))
	tbl, err := ipac.ReadFile(out)
	require.NoError(Te, err)
	assert.Equal(Te, 100, tbl.Rows())
	freq, err := tbl.Column("FREQUENCY").Floats()
	require.NoError(Te, err)
	assert.Equal(Te, S.Grid, freq[:50])
	inten, err := tbl.Column("INTENSITY").Floats()
	require.NoError(Te, err)
	assert.Equal(Te, S.Intensities[73], inten[50:])
	assert.Equal(Te, "cm$^{2}$/mol", tbl.Column("INTENSITY").Unit)
	assert.Contains(Te, tbl.Comments, "DATABASE: theoretical 3.20")
	assert.Contains(Te, S.String(), "PROFILE: Lorentzian, FWHM: 15 /cm")
}
