/*
 * numeric.go, part of gopahdb.
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
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

const (
	quadOrder = 15 //Gauss-Legendre points per panel
	maxDepth  = 16
)

//Integrate returns the integral of f between a and b, to a relative tolerance tol.
//Each interval is integrated with a fixed-order Gauss-Legendre rule and bisected
//until the two halves agree with the whole.
func Integrate(f func(float64) float64, a, b, tol float64) float64 {
	if a == b {
		return 0
	}
	sign := 1.0
	if a > b {
		a, b = b, a
		sign = -1
	}
	whole := quad.Fixed(f, a, b, quadOrder, quad.Legendre{}, 0)
	//panels that contribute less than this are not refined further
	abstol := 1e-3 * tol * math.Abs(whole)
	return sign * adapt(f, a, b, whole, tol, abstol, 0)
}

func adapt(f func(float64) float64, a, b, whole, tol, abstol float64, depth int) float64 {
	m := 0.5 * (a + b)
	left := quad.Fixed(f, a, m, quadOrder, quad.Legendre{}, 0)
	right := quad.Fixed(f, m, b, quadOrder, quad.Legendre{}, 0)
	sum := left + right
	diff := math.Abs(sum - whole)
	if depth >= maxDepth || diff <= tol*math.Abs(sum) || diff <= abstol {
		return sum
	}
	return adapt(f, a, m, left, tol, abstol, depth+1) + adapt(f, m, b, right, tol, abstol, depth+1)
}

//Brent finds a root of f in [a, b] with Brent's method. f(a) and f(b) must
//have different signs. tol is the absolute tolerance for the root.
func Brent(f func(float64) float64, a, b, tol float64, maxIter int) (float64, error) {
	const eps = 2.220446049250313e-16
	fa, fb := f(a), f(b)
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if (fa > 0) == (fb > 0) {
		return 0, Error{fmt.Sprintf("%s: f(%g)=%g, f(%g)=%g", NotBracketed, a, fa, b, fb), []string{"Brent"}}
	}
	c, fc := b, fb
	var d, e float64
	for i := 0; i < maxIter; i++ {
		if (fb > 0) == (fc > 0) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}
		tol1 := 2*eps*math.Abs(b) + 0.5*tol
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol1 || fb == 0 {
			return b, nil
		}
		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			//inverse quadratic interpolation, or secant if only two points
			s := fb / fa
			var p, q float64
			if a == c {
				p = 2 * xm * s
				q = 1 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2*xm*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			if 2*p < math.Min(3*xm*q-math.Abs(tol1*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}
		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else {
			b += math.Copysign(tol1, xm)
		}
		fb = f(b)
	}
	return b, Error{fmt.Sprintf("%s after %d iterations", NoConvergence, maxIter), []string{"Brent"}}
}

//Error is the error type for this package.
type Error struct {
	message string
	deco    []string
}

func (err Error) Error() string { return fmt.Sprintf("emission error: %s", err.message) }

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func errDecorate(err error, caller string) error {
	if err2, ok := err.(Error); ok {
		err2.deco = append(err2.deco, caller)
		return err2
	}
	return err
}

const (
	NotBracketed  = "Root not bracketed"
	NoConvergence = "No convergence"
	NoFieldData   = "Stellar model has no data between 2.5e3 and 1.1e5 1/cm"
)
