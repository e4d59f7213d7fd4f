/*
 * atomicdata.go, part of gopahdb.
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

//atomicMass is the mass, in amu, of each element, indexed by atomic number.
//Index 0 is a dummy atom with no mass.
var atomicMass = [...]float64{
	0.0, 1.007940, 4.002602, 6.941000, 9.012182, 10.811000, 12.011000, 14.006740,
	15.999400, 18.998404, 20.179701, 22.989767, 24.305000, 26.981539, 28.085501,
	30.973763, 32.066002, 35.452702, 39.948002, 39.098301, 40.077999, 44.955910,
	47.880001, 50.941502, 51.996101, 54.938049, 55.847000, 58.933201, 58.693401,
	63.546001, 65.389999, 69.723000, 72.610001, 74.921593, 78.959999, 79.903999,
	83.800003, 85.467796, 87.620003, 88.905853, 91.223999, 92.906380, 95.940002,
	98.000000, 101.070000, 102.905502, 106.419998, 107.868202, 112.411003,
	114.820000, 118.709999, 121.757004, 127.599998, 126.904472, 131.289993,
	132.905426, 137.326996, 138.905502, 140.115005, 140.907654, 144.240005,
	145.000000, 150.360001, 151.964996, 157.250000, 158.925339, 162.500000,
	164.930313, 167.259995, 168.934204, 173.039993, 174.966995, 178.490005,
	180.947906, 183.850006, 186.207001, 190.199997, 192.220001, 195.080002,
	196.966537, 200.589996, 204.383301, 207.199997, 208.980377, 209.000000,
	210.000000, 222.000000, 223.000000, 226.024994, 227.028000, 232.038101,
	231.035904, 238.028900, 237.048004, 244.000000, 243.000000, 247.000000,
	247.000000, 251.000000, 252.000000, 257.000000, 258.000000, 259.000000,
	262.000000, 261.000000, 262.000000, 263.000000, 262.000000, 265.000000,
	266.000000,
}

//elementSymbol gives the symbol of the elements up to krypton, indexed by atomic number.
var elementSymbol = [...]string{
	"X", "H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne", "Na", "Mg", "Al",
	"Si", "P", "S", "Cl", "Ar", "K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe",
	"Co", "Ni", "Cu", "Zn", "Ga", "Ge", "As", "Se", "Br", "Kr",
}

//Mass returns the mass of the element with atomic number z, or 0 if z is out of range.
func Mass(z int) float64 {
	if z < 0 || z >= len(atomicMass) {
		return 0
	}
	return atomicMass[z]
}

//Symbol returns the symbol for the element with atomic number z, or "X" if unknown.
func Symbol(z int) string {
	if z <= 0 || z >= len(elementSymbol) {
		return "X"
	}
	return elementSymbol[z]
}
