/*
 * coadded.go, part of gopahdb.
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

import "fmt"

//Coadded is the sum, or average, of the spectra of a Spectrum. Its only UID is 0.
type Coadded struct {
	Spectrum
	Weights  map[int]float64 //nil if the spectra were simply added
	Averaged bool
}

//Write writes the coadded spectrum as an IPAC table, coadded.tbl if filename is empty.
func (C *Coadded) Write(filename string) error {
	return errDecorate(C.write(filename, "coadded"), "Write")
}

func (C *Coadded) String() string {
	s := "COADDED"
	if C.Averaged {
		s = "AVERAGED"
	}
	if C.Weights != nil {
		s += fmt.Sprintf(" WITH %d WEIGHTS", len(C.Weights))
	}
	return s + "\n" + C.Spectrum.String()
}
