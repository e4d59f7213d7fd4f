/*
 * geometry.go, part of gopahdb.
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
	"io"
	"math"
	"sort"
	"strings"

	"github.com/skelterjohn/go.matrix"
	"gonum.org/v1/gonum/mat"
)

//bondCutoff is the largest distance, in A, between two bonded atoms.
const bondCutoff = 1.7

//ringArea is the area, in A^2, of a ring with the given number of members.
var ringArea = map[int]float64{3: 0.848, 4: 1.96, 5: 3.37, 6: 5.09, 7: 7.12, 8: 9.46}

//Geometry contains the geometries of a set of species.
type Geometry struct {
	Data
	Atoms map[int][]Atom
}

//RingCount is the number of rings of each size, indexed by the number of members, from 3 to 8.
type RingCount [9]int

//Three returns the number of three-membered rings. Same for the other methods.
func (R RingCount) Three() int { return R[3] }
func (R RingCount) Four() int  { return R[4] }
func (R RingCount) Five() int  { return R[5] }
func (R RingCount) Six() int   { return R[6] }
func (R RingCount) Seven() int { return R[7] }
func (R RingCount) Eight() int { return R[8] }

//Intersect keeps only the given UIDs. If none of them is present, nothing changes.
func (G *Geometry) Intersect(uids ...int) {
	if G.Data.Intersect(uids...) {
		G.Atoms = keep(G.Atoms, G.UIDs)
	}
}

//Difference removes the given UIDs. If no UID would remain, nothing changes.
func (G *Geometry) Difference(uids ...int) {
	if G.Data.Difference(uids...) {
		G.Atoms = keep(G.Atoms, G.UIDs)
	}
}

//Mass returns the mass, in amu, of each specie.
func (G *Geometry) Mass() map[int]float64 {
	r := make(map[int]float64, len(G.UIDs))
	for _, uid := range G.UIDs {
		var m float64
		for _, a := range G.Atoms[uid] {
			m += Mass(a.Type)
		}
		r[uid] = m
	}
	return r
}

//Inertia returns the moment of inertia tensor of each specie, in amu A^2,
//with respect to the origin of coordinates.
func (G *Geometry) Inertia() map[int]*mat.Dense {
	r := make(map[int]*mat.Dense, len(G.UIDs))
	for _, uid := range G.UIDs {
		var xx, yy, zz, xy, xz, yz float64
		for _, a := range G.Atoms[uid] {
			m := Mass(a.Type)
			xx += m * (a.Y*a.Y + a.Z*a.Z)
			yy += m * (a.X*a.X + a.Z*a.Z)
			zz += m * (a.X*a.X + a.Y*a.Y)
			xy -= m * a.X * a.Y
			xz -= m * a.X * a.Z
			yz -= m * a.Y * a.Z
		}
		r[uid] = mat.NewDense(3, 3, []float64{
			xx, xy, xz,
			xy, yy, yz,
			xz, yz, zz,
		})
	}
	return r
}

//Diagonalize centers each geometry on its mass-weighted center and rotates it
//onto the principal axes of its second moment tensor, so the axis with the largest
//spread becomes X and the one with the smallest, Z. Magnesium and iron atoms carry
//no weight unless equal is true, in which case all atoms weigh the same. If full is
//false only the diagonal of the tensor is used, so the axes are just reordered.
func (G *Geometry) Diagonalize(full, equal bool) error {
	for _, uid := range G.UIDs {
		atoms := G.Atoms[uid]
		if len(atoms) == 0 {
			continue
		}
		w := make([]float64, len(atoms))
		var wsum, cx, cy, cz float64
		for i, a := range atoms {
			switch {
			case equal:
				w[i] = 1
			case a.Type == 12 || a.Type == 26:
				w[i] = 0
			default:
				w[i] = Mass(a.Type)
			}
			wsum += w[i]
			cx += w[i] * a.X
			cy += w[i] * a.Y
			cz += w[i] * a.Z
		}
		if wsum == 0 {
			return newError(fmt.Sprintf("UID %d has no weighted atoms", uid), "", "Diagonalize", false)
		}
		cx, cy, cz = cx/wsum, cy/wsum, cz/wsum
		t := make([]float64, 9)
		for i := range atoms {
			a := &atoms[i]
			a.X, a.Y, a.Z = a.X-cx, a.Y-cy, a.Z-cz
			t[0] += w[i] * a.X * a.X
			t[4] += w[i] * a.Y * a.Y
			t[8] += w[i] * a.Z * a.Z
			if full {
				t[1] += w[i] * a.X * a.Y
				t[2] += w[i] * a.X * a.Z
				t[5] += w[i] * a.Y * a.Z
			}
		}
		t[3], t[6], t[7] = t[1], t[2], t[5]
		vecs, vals, err := matrix.MakeDenseMatrix(t, 3, 3).Eigen()
		if err != nil {
			return newError(err.Error(), "", "Diagonalize", false, err)
		}
		order := []int{0, 1, 2}
		sort.SliceStable(order, func(i, j int) bool { return vals.Get(order[i], order[i]) > vals.Get(order[j], order[j]) })
		for i := range atoms {
			a := &atoms[i]
			p := [3]float64{}
			for k, c := range order {
				p[k] = vecs.Get(0, c)*a.X + vecs.Get(1, c)*a.Y + vecs.Get(2, c)*a.Z
			}
			a.X, a.Y, a.Z = p[0], p[1], p[2]
		}
	}
	return nil
}

//neighbors returns, for each atom, the atoms closer than bondCutoff.
func neighbors(atoms []Atom) [][]int {
	r := make([][]int, len(atoms))
	for i, a := range atoms {
		for j, b := range atoms {
			d := math.Sqrt((a.X-b.X)*(a.X-b.X) + (a.Y-b.Y)*(a.Y-b.Y) + (a.Z-b.Z)*(a.Z-b.Z))
			if d > 0 && d < bondCutoff {
				r[i] = append(r[i], j)
			}
		}
	}
	return r
}

//countRings counts every simple cycle of 3 to 8 atoms in the bond graph. Each cycle
//is found once, starting from its lowest-index atom, in the direction where the
//second atom has a lower index than the last one.
func countRings(atoms []Atom) RingCount {
	var r RingCount
	nb := neighbors(atoms)
	path := make([]int, 0, 9)
	in := make([]bool, len(atoms))
	var walk func(start, cur int)
	walk = func(start, cur int) {
		for _, next := range nb[cur] {
			if next == start {
				if len(path) >= 3 && path[1] < path[len(path)-1] {
					r[len(path)]++
				}
				continue
			}
			if next < start || in[next] || len(path) == 8 {
				continue
			}
			in[next] = true
			path = append(path, next)
			walk(start, next)
			path = path[:len(path)-1]
			in[next] = false
		}
	}
	for i := range atoms {
		path = append(path[:0], i)
		in[i] = true
		walk(i, i)
		in[i] = false
	}
	return r
}

//Rings returns the number of rings of each size in each specie.
func (G *Geometry) Rings() map[int]RingCount {
	r := make(map[int]RingCount, len(G.UIDs))
	for _, uid := range G.UIDs {
		r[uid] = countRings(G.Atoms[uid])
	}
	return r
}

//Area returns the area, in A^2, of each specie, as the sum of the areas of its rings.
func (G *Geometry) Area() map[int]float64 {
	r := make(map[int]float64, len(G.UIDs))
	for uid, rc := range G.Rings() {
		var a float64
		for n := 3; n <= 8; n++ {
			a += float64(rc[n]) * ringArea[n]
		}
		r[uid] = a
	}
	return r
}

//WriteXYZ writes the geometry of uid to w in XYZ format.
func (G *Geometry) WriteXYZ(w io.Writer, uid int) error {
	atoms, ok := G.Atoms[uid]
	if !ok {
		return newError(fmt.Sprintf("UID %d not found", uid), "", "WriteXYZ", false)
	}
	if _, err := fmt.Fprintf(w, "%d\nUID %d\n", len(atoms), uid); err != nil {
		return newError(err.Error(), "", "WriteXYZ", false, err)
	}
	for _, a := range atoms {
		if _, err := fmt.Fprintf(w, "%-2s  %12.6f%12.6f%12.6f\n", Symbol(a.Type), a.X, a.Y, a.Z); err != nil {
			return newError(err.Error(), "", "WriteXYZ", false, err)
		}
	}
	return nil
}

func (G *Geometry) String() string {
	var b strings.Builder
	for _, uid := range G.UIDs {
		b.WriteString(strings.Repeat("=", 55) + "\n")
		fmt.Fprintf(&b, "GEOMETRY\nUID: %d\n", uid)
		for _, a := range G.Atoms[uid] {
			fmt.Fprintf(&b, "%4d %-2s %12.6f%12.6f%12.6f\n", a.Position, Symbol(a.Type), a.X, a.Y, a.Z)
		}
		b.WriteString(strings.Repeat("=", 55) + "\n")
	}
	return b.String()
}

//Write writes the geometries as an IPAC table, geometry.tbl if filename is empty.
func (G *Geometry) Write(filename string) error {
	tbl := G.header("geometry")
	var uids, pos, typ []int
	var x, y, z []float64
	for _, uid := range G.UIDs {
		for _, a := range G.Atoms[uid] {
			uids = append(uids, uid)
			pos = append(pos, a.Position)
			typ = append(typ, a.Type)
			x = append(x, a.X)
			y = append(y, a.Y)
			z = append(z, a.Z)
		}
	}
	tbl.AddInts("UID", "", uids)
	tbl.AddInts("POSITION", "", pos)
	tbl.AddInts("TYPE", "", typ)
	tbl.AddFloats("X", "A", x)
	tbl.AddFloats("Y", "A", y)
	tbl.AddFloats("Z", "A", z)
	return errDecorate(writeTable(tbl, filename, "geometry"), "Write")
}
