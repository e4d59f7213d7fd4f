/*
 * laboratory.go, part of gopahdb.
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
	"strings"
)

//Laboratory contains measured absorbance spectra.
type Laboratory struct {
	Data
	Spectra map[int]LabSpectrum
}

//Intersect keeps only the given UIDs. If none of them is present, nothing changes.
func (L *Laboratory) Intersect(uids ...int) {
	if L.Data.Intersect(uids...) {
		L.Spectra = keep(L.Spectra, L.UIDs)
	}
}

//Difference removes the given UIDs. If no UID would remain, nothing changes.
func (L *Laboratory) Difference(uids ...int) {
	if L.Data.Difference(uids...) {
		L.Spectra = keep(L.Spectra, L.UIDs)
	}
}

func (L *Laboratory) String() string {
	var b strings.Builder
	for _, uid := range L.UIDs {
		s := L.Spectra[uid]
		b.WriteString(strings.Repeat("=", 55) + "\n")
		fmt.Fprintf(&b, "LABORATORY\nUID: %d\nPOINTS: %d\n", uid, len(s.Frequency))
		fmt.Fprintf(&b, "%-20.20s  %-20.20s\n", L.Units.Abscissa.String(), L.Units.Ordinate.String())
		for i, f := range s.Frequency {
			fmt.Fprintf(&b, "%-20g  %-20g\n", f, s.Intensity[i])
		}
		b.WriteString(strings.Repeat("=", 55) + "\n")
	}
	return b.String()
}

//Write writes the spectra as an IPAC table, laboratory.tbl if filename is empty.
func (L *Laboratory) Write(filename string) error {
	tbl := L.header("laboratory")
	var uids []int
	var freq, inten []float64
	for _, uid := range L.UIDs {
		s := L.Spectra[uid]
		for i, f := range s.Frequency {
			uids = append(uids, uid)
			freq = append(freq, f)
			inten = append(inten, s.Intensity[i])
		}
	}
	tbl.AddInts("UID", "", uids)
	tbl.AddFloats("FREQUENCY", "cm-1", freq)
	tbl.AddFloats("INTENSITY", "-log(I/I0)", inten)
	return errDecorate(writeTable(tbl, filename, "laboratory"), "Write")
}
