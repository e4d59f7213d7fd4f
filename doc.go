/*
 * doc.go, part of gopahdb.
 *
 * Copyright 2021 Raul Mera rauldotmeraatusachdotcl
 *
 */

/*Package pahdb reads the NASA Ames PAH IR Spectroscopic Database and provides
tools to model and decompose astronomical spectra with it.



	**gopahdb Capabilities**


    Parses the XML database files (theoretical, experimental and clusters),
	caching the parsed result as a compressed binary file, so later runs
	don't need to parse the XML again.

    Searches the database with a simple query language, e.g.
	"c<=20 neutral n=0" or "magnesium=0 wavenumber>1000 with intensity>20".

    Retrieves, by UID, the properties of each species, its vibrational
	transitions, its geometry and, for the experimental database, its
	laboratory spectrum.

    Applies emission models to the transitions: fixed temperature,
	calculated temperature and the full cooling cascade, for a given
	absorbed energy or for the average energy absorbed from a blackbody,
	the interstellar radiation field or a stellar model.

    Convolves transitions with Gaussian, Lorentzian or Drude profiles.

    Decomposes an observed spectrum into database spectra using
	non-negative least squares, optionally in a Monte Carlo fashion to
	estimate uncertainties, and breaks down the fit into charge, size,
	composition and edge-structure contributions.

    Works with molecular geometries: masses, moments of inertia, rings and
	areas.

    Reads and writes IPAC tables (package ipac), reads observations
	(package observation), and plots (package pahplot).


The emission physics is in the emission package. Most computations on more
than one species can be spread over several goroutines, see the Workers option.
*/
package pahdb

//Version is the version of this library. It is written to the headers of the output tables.
const Version = "0.4.0"
