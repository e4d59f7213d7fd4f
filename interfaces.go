/*
 * interfaces.go, part of gopahdb.
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

//Observed is anything that can be fitted with a database spectrum: a grid in
//wavenumbers, the fluxes on that grid and, optionally, their uncertainties.
//observation.Observation implements it.
type Observed interface {
	//The abscissa, in 1/cm
	Grid() []float64

	//The flux on each grid point
	Flux() []float64

	//Uncertainty returns the 1-sigma uncertainties for each grid point, or nil
	//if there are none. Without uncertainties, fits fall back to plain NNLS.
	Uncertainty() []float64
}

//Errors

//PAHError is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
//error, without changing it's type or wrapping it around something else.
type PAHError interface {
	Error() string
	Decorate(string) []string //Each call adds the caller to the "decoration" slice and returns it. An empty string only returns the current value.
}

//Critical errors are those after which the object involved is not usable anymore.
type CriticalError interface {
	PAHError
	Critical() bool
}
