/*
 * nnls.go, part of gopahdb.
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

//Package nnls solves non-negative least squares problems with the active set
//method of Lawson and Hanson, "Solving Least Squares Problems", chapter 23.
package nnls

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//ErrMaxIter is returned when the method doesn't converge in the allowed iterations.
var ErrMaxIter = errors.New("nnls: maximum number of iterations reached")

//Solve returns the x >= 0 that minimizes ||Ax - b||, and the norm of the residual.
//It gives up, returning ErrMaxIter and the current x, after 3n iterations (at least 30),
//counting those of the inner loop.
func Solve(A mat.Matrix, b []float64) ([]float64, float64, error) {
	_, n := A.Dims()
	return solve(A, b, max(3*n, 30))
}

func solve(A mat.Matrix, b []float64, maxIter int) ([]float64, float64, error) {
	m, n := A.Dims()
	if len(b) != m {
		return nil, 0, fmt.Errorf("nnls: A has %d rows but b has %d elements", m, len(b))
	}
	bv := mat.NewVecDense(m, append([]float64(nil), b...))
	x := make([]float64, n)
	passive := make([]bool, n)
	w := make([]float64, n)
	tol := 10 * 2.220446049250313e-16 * mat.Norm(A, 1) * float64(max(m, n))
	iter := 0
	gradient(A, bv, x, w)
	for {
		j := -1
		wmax := tol
		for i := range w {
			if !passive[i] && w[i] > wmax {
				wmax = w[i]
				j = i
			}
		}
		if j < 0 {
			break
		}
		passive[j] = true
		for {
			if iter >= maxIter {
				return x, residual(A, bv, x), ErrMaxIter
			}
			iter++
			z, err := subproblem(A, bv, passive)
			if err != nil {
				return x, residual(A, bv, x), err
			}
			alpha, feasible := step(x, z, passive)
			if feasible {
				copy(x, z)
				break
			}
			for i := range x {
				x[i] += alpha * (z[i] - x[i])
				if passive[i] && x[i] <= tol {
					x[i] = 0
					passive[i] = false
				}
			}
		}
		gradient(A, bv, x, w)
	}
	return x, residual(A, bv, x), nil
}

//step returns true if z is positive on the passive set. Otherwise it returns the
//largest fraction of the way from x to z that keeps x non-negative. Indices
//where x equals z don't bound the step, and if none does, the step is 1.
func step(x, z []float64, passive []bool) (float64, bool) {
	alpha := math.Inf(1)
	feasible := true
	for i := range z {
		if !passive[i] || z[i] > 0 {
			continue
		}
		feasible = false
		if d := x[i] - z[i]; d != 0 {
			alpha = math.Min(alpha, x[i]/d)
		}
	}
	if math.IsInf(alpha, 1) {
		alpha = 1
	}
	return alpha, feasible
}

//gradient puts A^T(b - Ax) in w.
func gradient(A mat.Matrix, b *mat.VecDense, x, w []float64) {
	m, _ := A.Dims()
	r := mat.NewVecDense(m, nil)
	r.MulVec(A, mat.NewVecDense(len(x), x))
	r.SubVec(b, r)
	wv := mat.NewVecDense(len(w), w)
	wv.MulVec(A.T(), r)
}

func residual(A mat.Matrix, b *mat.VecDense, x []float64) float64 {
	m, _ := A.Dims()
	r := mat.NewVecDense(m, nil)
	r.MulVec(A, mat.NewVecDense(len(x), x))
	r.SubVec(b, r)
	return mat.Norm(r, 2)
}

//subproblem solves the unconstrained least squares problem for the passive
//columns of A. The other elements of the result are zero.
func subproblem(A mat.Matrix, b *mat.VecDense, passive []bool) ([]float64, error) {
	m, n := A.Dims()
	var cols []int
	for i, p := range passive {
		if p {
			cols = append(cols, i)
		}
	}
	sub := mat.NewDense(m, len(cols), nil)
	for k, c := range cols {
		for r := 0; r < m; r++ {
			sub.Set(r, k, A.At(r, c))
		}
	}
	var zp mat.VecDense
	if err := zp.SolveVec(sub, b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("nnls: %w", err)
		}
	}
	z := make([]float64, n)
	for k, c := range cols {
		z[c] = zp.AtVec(k)
	}
	if floats.HasNaN(z) {
		return nil, errors.New("nnls: singular subproblem")
	}
	return z, nil
}
