/*
 * nnls_test.go, part of gopahdb.
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

package nnls

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestExactSolution(Te *testing.T) {
	A := mat.NewDense(4, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
		2, 1,
	})
	want := []float64{2, 3}
	b := make([]float64, 4)
	for i := range b {
		b[i] = A.At(i, 0)*want[0] + A.At(i, 1)*want[1]
	}
	x, norm, err := Solve(A, b)
	require.NoError(Te, err)
	assert.InDeltaSlice(Te, want, x, 1e-10)
	assert.InDelta(Te, 0, norm, 1e-10)
}

//The unconstrained solution has a negative component, which must be clamped.
func TestNonNegative(Te *testing.T) {
	A := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		0, 0,
	})
	x, norm, err := Solve(A, []float64{-1, 2, 0})
	require.NoError(Te, err)
	assert.InDeltaSlice(Te, []float64{0, 2}, x, 1e-12)
	assert.InDelta(Te, 1, norm, 1e-12)
	for _, v := range x {
		assert.GreaterOrEqual(Te, v, 0.0)
	}
}

func TestCoupledColumns(Te *testing.T) {
	//The least squares solution is (5/3, -1/2), NNLS keeps only the first column.
	A := mat.NewDense(3, 2, []float64{
		1, 1,
		1, 2,
		1, 3,
	})
	x, _, err := Solve(A, []float64{1, 1, 0})
	require.NoError(Te, err)
	assert.InDelta(Te, 0, x[1], 1e-12)
	assert.InDelta(Te, 2.0/3, x[0], 1e-12)
}

func TestZeroRHS(Te *testing.T) {
	A := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	x, norm, err := Solve(A, []float64{0, 0})
	require.NoError(Te, err)
	assert.Equal(Te, []float64{0, 0}, x)
	assert.Equal(Te, 0.0, norm)
}

func TestDimensionMismatch(Te *testing.T) {
	A := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	_, _, err := Solve(A, []float64{1, 2, 3})
	assert.Error(Te, err)
}

//The coupled problem takes three iterations: one to add the second column, one
//that drops it, and one with only the first column.
func TestMaxIter(Te *testing.T) {
	A := mat.NewDense(3, 2, []float64{
		1, 1,
		1, 2,
		1, 3,
	})
	b := []float64{1, 1, 0}
	x, _, err := solve(A, b, 3)
	require.NoError(Te, err)
	assert.InDelta(Te, 2.0/3, x[0], 1e-12)
	x, _, err = solve(A, b, 2)
	assert.True(Te, errors.Is(err, ErrMaxIter), "got %v", err)
	for _, v := range x {
		assert.GreaterOrEqual(Te, v, 0.0)
	}
}

func TestStep(Te *testing.T) {
	passive := []bool{true, true, false}
	_, ok := step([]float64{1, 2, 0}, []float64{3, 1, -5}, passive)
	assert.True(Te, ok)
	alpha, ok := step([]float64{1, 2, 0}, []float64{-1, 1, 0}, passive)
	assert.False(Te, ok)
	assert.Equal(Te, 0.5, alpha)
	//x == z == 0 gives no bound, rather than NaN.
	alpha, ok = step([]float64{0, 1, 0}, []float64{0, -1, 0}, passive)
	assert.False(Te, ok)
	assert.Equal(Te, 0.5, alpha)
	alpha, ok = step([]float64{0, 1, 0}, []float64{0, 2, 0}, passive)
	assert.False(Te, ok)
	assert.Equal(Te, 1.0, alpha)
}
