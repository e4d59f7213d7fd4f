/*
 * species.go, part of gopahdb.
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
	"regexp"
	"sort"
	"strings"
)

//Species contains the properties of a set of species.
type Species struct {
	Data
	Records map[int]*Specie
}

//Intersect keeps only the given UIDs. If none of them is present, nothing changes.
func (S *Species) Intersect(uids ...int) {
	if S.Data.Intersect(uids...) {
		S.Records = keep(S.Records, S.UIDs)
	}
}

//Difference removes the given UIDs. If no UID would remain, nothing changes.
func (S *Species) Difference(uids ...int) {
	if S.Data.Difference(uids...) {
		S.Records = keep(S.Records, S.UIDs)
	}
}

//Transitions returns the transitions of the species.
func (S *Species) Transitions() *Transitions {
	if S.db != nil {
		return S.db.TransitionsByUID(S.UIDs...)
	}
	T := &Transitions{Data: S.Data, Modes: make(map[int][]Mode, len(S.UIDs))}
	T.Model = Model{Type: ZeroKelvin}
	for _, uid := range S.UIDs {
		T.Modes[uid] = append([]Mode(nil), S.Records[uid].Transitions...)
	}
	return T
}

//Geometry returns the geometries of the species.
func (S *Species) Geometry() *Geometry {
	if S.db != nil {
		return S.db.GeometryByUID(S.UIDs...)
	}
	G := &Geometry{Data: S.Data, Atoms: make(map[int][]Atom, len(S.UIDs))}
	for _, uid := range S.UIDs {
		G.Atoms[uid] = append([]Atom(nil), S.Records[uid].Geometry...)
	}
	return G
}

//Laboratory returns the laboratory spectra of the species. It requires the experimental database.
func (S *Species) Laboratory() (*Laboratory, error) {
	if S.db == nil {
		return nil, newError(ErrNoDB.Error(), "", "Laboratory", false, ErrNoDB)
	}
	L, err := S.db.LaboratoryByUID(S.UIDs...)
	return L, errDecorate(err, "Laboratory")
}

//References returns the literature references of each specie.
func (S *Species) References() map[int][]string {
	r := make(map[int][]string, len(S.UIDs))
	for _, uid := range S.UIDs {
		r[uid] = append([]string(nil), S.Records[uid].References...)
	}
	return r
}

//Comments returns the comments on each specie.
func (S *Species) Comments() map[int][]Comment {
	r := make(map[int][]Comment, len(S.UIDs))
	for _, uid := range S.UIDs {
		r[uid] = append([]Comment(nil), S.Records[uid].Comments...)
	}
	return r
}

var (
	formulaCount  = regexp.MustCompile(`([A-Z][a-z]?)([0-9]+)`)
	formulaCharge = regexp.MustCompile(`(\++|-+)$`)
)

//FormatFormula returns the formula in the LaTeX form used by matplotlib-style
//labels, for instance C$_{\mathregular{24}}$H$_{\mathregular{12}}$$^{\mathregular{+}}$
//for C24H12+. A charge of more than one is written with its number, as in 2+.
func FormatFormula(formula string) string {
	charge := formulaCharge.FindString(formula)
	body := strings.TrimSuffix(formula, charge)
	r := formulaCount.ReplaceAllString(body, `$1$$_{\mathregular{$2}}$$`)
	if charge != "" {
		c := charge[:1]
		if len(charge) > 1 {
			c = fmt.Sprintf("%d%s", len(charge), c)
		}
		r += `$^{\mathregular{` + c + `}}$`
	}
	return r
}

//String returns a printout of the properties of the species.
func (S *Species) String() string {
	var b strings.Builder
	for _, uid := range S.UIDs {
		s := S.Records[uid]
		b.WriteString(strings.Repeat("=", 55) + "\n")
		fmt.Fprintf(&b, "%-10s%d\n", "UID:", s.UID)
		fmt.Fprintf(&b, "%-10s%s\n", "FORMULA:", s.Formula)
		fmt.Fprintf(&b, "%-10s%d\n", "CHARGE:", s.Charge)
		fmt.Fprintf(&b, "%-10s%s\n", "SYMMETRY:", s.Symmetry)
		fmt.Fprintf(&b, "%-10s%.4f\n", "WEIGHT:", s.Weight)
		fmt.Fprintf(&b, "%-10s%s\n", "METHOD:", s.Method)
		fmt.Fprintf(&b, "%-10sC:%d H:%d N:%d O:%d Mg:%d Si:%d Fe:%d\n", "ATOMS:", s.NC, s.NH, s.NN, s.NO, s.NMg, s.NSi, s.NFe)
		fmt.Fprintf(&b, "%-10ssolo:%d duo:%d trio:%d quartet:%d quintet:%d\n", "HYDROGEN:", s.NSolo, s.NDuo, s.NTrio, s.NQuartet, s.NQuintet)
		for _, c := range s.Comments {
			if c.Type != "" {
				fmt.Fprintf(&b, "%-10s[%s] %s\n", "COMMENT:", c.Type, c.Text)
				continue
			}
			fmt.Fprintf(&b, "%-10s%s\n", "COMMENT:", c.Text)
		}
		for _, r := range s.References {
			fmt.Fprintf(&b, "%-10s%s\n", "REFERENCE:", r)
		}
		keys := make([]string, 0, len(s.Extra))
		for k := range s.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%-10s%s\n", strings.ToUpper(k)+":", s.Extra[k])
		}
		b.WriteString(strings.Repeat("=", 55) + "\n")
	}
	return b.String()
}

//Write writes the properties of the species as an IPAC table, species.tbl if filename is empty.
func (S *Species) Write(filename string) error {
	tbl := S.header("species")
	var formula, symmetry, method []string
	var charge, nc, nh, nn, no, nsolo, nduo, ntrio, nquartet, nquintet []int
	var weight, scale []float64
	for _, uid := range S.UIDs {
		s := S.Records[uid]
		formula = append(formula, s.Formula)
		charge = append(charge, s.Charge)
		symmetry = append(symmetry, s.Symmetry)
		weight = append(weight, s.Weight)
		scale = append(scale, s.Scale)
		method = append(method, s.Method)
		nc = append(nc, s.NC)
		nh = append(nh, s.NH)
		nn = append(nn, s.NN)
		no = append(no, s.NO)
		nsolo = append(nsolo, s.NSolo)
		nduo = append(nduo, s.NDuo)
		ntrio = append(ntrio, s.NTrio)
		nquartet = append(nquartet, s.NQuartet)
		nquintet = append(nquintet, s.NQuintet)
	}
	tbl.AddInts("UID", "", S.UIDs)
	tbl.AddStrings("FORMULA", "", formula)
	tbl.AddInts("CHARGE", "", charge)
	tbl.AddStrings("SYMMETRY", "", symmetry)
	tbl.AddFloats("WEIGHT", "amu", weight)
	tbl.AddFloats("SCALE", "", scale)
	tbl.AddStrings("METHOD", "", method)
	tbl.AddInts("N_C", "", nc)
	tbl.AddInts("N_H", "", nh)
	tbl.AddInts("N_N", "", nn)
	tbl.AddInts("N_O", "", no)
	tbl.AddInts("N_SOLO", "", nsolo)
	tbl.AddInts("N_DUO", "", nduo)
	tbl.AddInts("N_TRIO", "", ntrio)
	tbl.AddInts("N_QUARTET", "", nquartet)
	tbl.AddInts("N_QUINTET", "", nquintet)
	return errDecorate(writeTable(tbl, filename, "species"), "Write")
}
