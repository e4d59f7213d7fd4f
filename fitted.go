/*
 * fitted.go, part of gopahdb.
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
	"log"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"

	"github.com/rmera/gopahdb/nnls"
)

//Fitting methods.
const (
	NNLS = "NNLS"
	NNLC = "NNLC"
)

//DefaultSmall is the largest number of carbon atoms of a "small" PAH.
const DefaultSmall = 50

var notice = []string{
	" NOTICE: PLEASE TAKE CONSIDERABLE CARE WHEN INTERPRETING ",
	" THESE RESULTS AND PUTTING THEM IN AN ASTRONOMICAL       ",
	" CONTEXT. THERE ARE MANY SUBTLETIES THAT NEED TO BE TAKEN",
	" INTO ACCOUNT, RANGING FROM PAH SIZE, INCLUSION OF       ",
	" HETEROATOMS, ETC. TO DETAILS OF THE APPLIED EMISSION    ",
	" MODEL, BEFORE ANY THOROUGH ASSESSMENT CAN BE MADE.      ",
}

//errorRanges are the spectral ranges, in 1/cm, for the piecewise fit errors.
var errorRanges = []struct {
	Name     string
	Min, Max float64
}{
	{"e127", 754, 855},
	{"e112", 855, 1000},
	{"e77", 1000, 1495},
	{"e62", 1495, 1712},
	{"e33", 2900, 3125},
}

//Class names, as used by GetClasses and GetBreakdown.
var classNames = []string{"anion", "neutral", "cation", "small", "large", "nitrogen", "pure"}

//observed is a plain implementation of Observed.
type observed struct {
	grid, flux, sigma []float64
}

func (O *observed) Grid() []float64        { return O.grid }
func (O *observed) Flux() []float64        { return O.flux }
func (O *observed) Uncertainty() []float64 { return O.sigma }

//hasUncertainties returns true if sigma contains at least one positive value.
func hasUncertainties(sigma []float64) bool {
	for _, v := range sigma {
		if v > 0 {
			return true
		}
	}
	return false
}

//Fitted is a spectrum fitted to an observation. Its intensities are the
//spectra of the species with non-zero weights, multiplied by their weights.
type Fitted struct {
	Spectrum
	Weights     map[int]float64
	Method      string
	Observation Observed
	Norm        float64 //the norm of the (weighted) residual
	Run         string  //optional run identifier, written to the table headers
}

//Fit decomposes the observation obs into the spectra of the receiver, with
//non-negative weights. The uncertainties are used if present.
func (S *Spectrum) Fit(obs Observed) (*Fitted, error) {
	if len(obs.Grid()) > 0 && len(obs.Grid()) != len(S.Grid) {
		return nil, newError(fmt.Sprintf("%d points in the observation, %d in the spectrum", len(obs.Grid()), len(S.Grid)), "", "Fit", true, ErrGridMismatch)
	}
	f, err := S.fit(obs.Flux(), obs.Uncertainty(), S.verbose())
	if err != nil {
		return nil, errDecorate(err, "Fit")
	}
	if len(obs.Grid()) > 0 {
		f.Observation = obs
	}
	return f, nil
}

//FitArrays is like Fit, but takes the flux and the uncertainties, which can be nil, as slices.
//The observation is assumed to be on the grid of the receiver.
func (S *Spectrum) FitArrays(flux, sigma []float64) (*Fitted, error) {
	f, err := S.fit(flux, sigma, S.verbose())
	return f, errDecorate(err, "FitArrays")
}

//checkUncertainties returns an error if any of sigma is not a positive number.
func checkUncertainties(sigma []float64, caller string) error {
	for i, v := range sigma {
		if !(v > 0) || math.IsInf(v, 1) {
			return newError(fmt.Sprintf("%s: %g at point %d", ErrBadUncertainty.Error(), v, i), "", caller, true, ErrBadUncertainty)
		}
	}
	return nil
}

//matrix returns the matrix with the spectra as columns, each row divided by
//the corresponding sigma, if given.
func (S *Spectrum) matrix(sigma []float64) *mat.Dense {
	A := mat.NewDense(len(S.Grid), len(S.UIDs), nil)
	for j, uid := range S.UIDs {
		v := S.Intensities[uid]
		for i := range S.Grid {
			if sigma != nil {
				A.Set(i, j, v[i]/sigma[i])
				continue
			}
			A.Set(i, j, v[i])
		}
	}
	return A
}

func (S *Spectrum) fit(flux, sigma []float64, verbose bool) (*Fitted, error) {
	if len(flux) != len(S.Grid) {
		return nil, newError(fmt.Sprintf("%d points in the flux, %d in the spectrum", len(flux), len(S.Grid)), "", "fit", true, ErrGridMismatch)
	}
	method := NNLS
	if hasUncertainties(sigma) {
		if len(sigma) != len(flux) {
			return nil, newError(fmt.Sprintf("%d uncertainties for %d fluxes", len(sigma), len(flux)), "", "fit", true, ErrGridMismatch)
		}
		if err := checkUncertainties(sigma, "fit"); err != nil {
			return nil, err
		}
		method = NNLC
	} else {
		sigma = nil
	}
	message(verbose, "DOING "+method)
	b := append([]float64(nil), flux...)
	if sigma != nil {
		floats.Div(b, sigma)
	}
	x, norm, err := nnls.Solve(S.matrix(sigma), b)
	if err != nil {
		return nil, newError(err.Error(), "", "fit", true, err)
	}
	F := S.fitted(x, method)
	F.Norm = norm
	F.Observation = &observed{grid: append([]float64(nil), S.Grid...), flux: append([]float64(nil), flux...), sigma: append([]float64(nil), sigma...)}
	message(verbose, notice...)
	return F, nil
}

//fitted builds the Fitted for the weights x, given in the order of S.UIDs.
func (S *Spectrum) fitted(x []float64, method string) *Fitted {
	F := &Fitted{Spectrum: S.Spectrum0(), Weights: make(map[int]float64), Method: method}
	F.Intensities = make(map[int][]float64)
	for j, uid := range S.UIDs {
		if x[j] <= 0 {
			continue
		}
		F.Weights[uid] = x[j]
		v := append([]float64(nil), S.Intensities[uid]...)
		floats.Scale(x[j], v)
		F.Intensities[uid] = v
		F.UIDs = append(F.UIDs, uid)
	}
	return F
}

//Spectrum0 returns a copy of the receiver without UIDs or intensities.
func (S *Spectrum) Spectrum0() Spectrum {
	r := *S
	r.UIDs = nil
	r.Intensities = nil
	r.Grid = append([]float64(nil), S.Grid...)
	return r
}

//GetFit returns the fitted spectrum, the sum of all the weighted spectra.
func (F *Fitted) GetFit() []float64 {
	return F.Total()
}

//GetResidual returns the observed flux minus the fit.
func (F *Fitted) GetResidual() []float64 {
	r := append([]float64(nil), F.Observation.Flux()...)
	floats.Sub(r, F.GetFit())
	return r
}

//specie returns the database record for uid, or nil.
func (F *Fitted) specie(uid int) *Specie {
	if F.db == nil {
		return nil
	}
	return F.db.db.Species[uid]
}

//classOf returns the classes uid belongs to.
func classOf(s *Specie, small int) []string {
	var r []string
	switch {
	case s.Charge < 0:
		r = append(r, "anion")
	case s.Charge == 0:
		r = append(r, "neutral")
	default:
		r = append(r, "cation")
	}
	if s.NC <= small {
		r = append(r, "small")
	} else {
		r = append(r, "large")
	}
	if s.NN > 0 {
		r = append(r, "nitrogen")
	}
	if s.Pure() {
		r = append(r, "pure")
	}
	return r
}

//GetClasses returns the fitted spectra summed by charge, size and composition.
//Species with no more than small carbon atoms count as small; small <= 0 means DefaultSmall.
//All seven classes are always present, with zeros if no species belongs to them.
//Species not found in the database are not classified.
func (F *Fitted) GetClasses(small int) map[string][]float64 {
	if small <= 0 {
		small = DefaultSmall
	}
	r := make(map[string][]float64, len(classNames))
	for _, c := range classNames {
		r[c] = make([]float64, len(F.Grid))
	}
	for _, uid := range F.UIDs {
		s := F.specie(uid)
		if s == nil {
			continue
		}
		for _, c := range classOf(s, small) {
			floats.Add(r[c], F.Intensities[uid])
		}
	}
	return r
}

//areaIn returns the area under |y| for the points of x within [min, max], and under
//|ref| for the same points.
func areaIn(x, y, ref []float64, min, max float64) (float64, float64) {
	var xs, ys, rs []float64
	for _, i := range ascending(x) {
		if x[i] < min || x[i] > max {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, math.Abs(y[i]))
		rs = append(rs, ref[i])
	}
	if len(xs) < 2 {
		return 0, 0
	}
	return integrate.Trapezoidal(xs, ys), integrate.Trapezoidal(xs, rs)
}

//GetError returns the area of the absolute residual divided by the area of
//the observation, over the whole grid ("err") and over the ranges of the
//main PAH bands. Ranges with less than two points, or with zero observed area, give 0.
func (F *Fitted) GetError() map[string]float64 {
	res := F.GetResidual()
	obs := F.Observation.Flux()
	r := make(map[string]float64, len(errorRanges)+1)
	ratio := func(a, b float64) float64 {
		if b == 0 {
			return 0
		}
		return a / b
	}
	r["err"] = ratio(areaIn(F.Grid, res, obs, math.Inf(-1), math.Inf(1)))
	for _, e := range errorRanges {
		r[e.Name] = ratio(areaIn(F.Grid, res, obs, e.Min, e.Max))
	}
	return r
}

//GetBreakdown returns the fractional contribution of each class of species
//to the fit, the weighted averages of the numbers of solo, duo, trio, quartet and quintet
//hydrogens (normalized to their sum), the average number of carbon atoms, and the errors of GetError.
//If flux is true, each species contributes according to the integrated flux of its fitted spectrum,
//otherwise according to its weight.
func (F *Fitted) GetBreakdown(small int, flux bool) map[string]float64 {
	if small <= 0 {
		small = DefaultSmall
	}
	r := make(map[string]float64)
	for _, k := range append([]string{"solo", "duo", "trio", "quartet", "quintet", "nc"}, classNames...) {
		r[k] = 0
	}
	var total, adj float64
	for _, uid := range F.UIDs {
		s := F.specie(uid)
		if s == nil {
			continue
		}
		w := F.Weights[uid]
		if flux {
			w = spectralArea(F.Grid, F.Intensities[uid])
		}
		total += w
		for _, c := range classOf(s, small) {
			r[c] += w
		}
		r["nc"] += w * float64(s.NC)
		r["solo"] += w * float64(s.NSolo)
		r["duo"] += w * float64(s.NDuo)
		r["trio"] += w * float64(s.NTrio)
		r["quartet"] += w * float64(s.NQuartet)
		r["quintet"] += w * float64(s.NQuintet)
	}
	if total > 0 {
		for _, c := range append([]string{"nc"}, classNames...) {
			r[c] /= total
		}
	}
	for _, k := range []string{"solo", "duo", "trio", "quartet", "quintet"} {
		adj += r[k]
	}
	if adj > 0 {
		for _, k := range []string{"solo", "duo", "trio", "quartet", "quintet"} {
			r[k] /= adj
		}
	}
	for k, v := range F.GetError() {
		r[k] = v
	}
	return r
}

//spectralArea integrates y over the sorted x.
func spectralArea(x, y []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	idx := ascending(x)
	xs := make([]float64, len(x))
	ys := make([]float64, len(x))
	for k, i := range idx {
		xs[k], ys[k] = x[i], y[i]
	}
	return integrate.Trapezoidal(xs, ys)
}

//Write writes the fitted spectra as an IPAC table, fitted.tbl if filename is empty.
func (F *Fitted) Write(filename string) error {
	return errDecorate(F.writeRun(filename, "fitted", F.Run), "Write")
}

//WriteResults writes, to <basename>_results.tbl, the properties and weights of the
//species in the fit.
func (F *Fitted) WriteResults(basename string) error {
	if basename == "" {
		basename = "fitted"
	}
	tbl := F.header("fitted results")
	tbl.AddKeyword("METHOD", fmt.Sprintf("'%s'", F.Method))
	if F.Run != "" {
		tbl.AddKeyword("RUN", fmt.Sprintf("'%s'", F.Run))
	}
	uids := append([]int(nil), F.UIDs...)
	sort.Ints(uids)
	var formula []string
	var nc, charge, nsolo, nduo, ntrio, nquartet, nquintet []int
	var mweight, fweight []float64
	for _, uid := range uids {
		s := F.specie(uid)
		if s == nil {
			s = &Specie{UID: uid}
			log.Printf("UID %d NOT IN THE DATABASE", uid)
		}
		formula = append(formula, s.Formula)
		nc = append(nc, s.NC)
		charge = append(charge, s.Charge)
		mweight = append(mweight, s.Weight)
		nsolo = append(nsolo, s.NSolo)
		nduo = append(nduo, s.NDuo)
		ntrio = append(ntrio, s.NTrio)
		nquartet = append(nquartet, s.NQuartet)
		nquintet = append(nquintet, s.NQuintet)
		fweight = append(fweight, F.Weights[uid])
	}
	tbl.AddInts("UID", "", uids)
	tbl.AddStrings("formula", "", formula)
	tbl.AddInts("Nc", "", nc)
	tbl.AddInts("charge", "", charge)
	tbl.AddFloats("mweight", "amu", mweight)
	tbl.AddInts("n_solo", "", nsolo)
	tbl.AddInts("n_duo", "", nduo)
	tbl.AddInts("n_trio", "", ntrio)
	tbl.AddInts("n_quartet", "", nquartet)
	tbl.AddInts("n_quintet", "", nquintet)
	tbl.AddFloats("fweight", "", fweight)
	err := writeTable(tbl, basename+"_results.tbl", basename)
	return errDecorate(err, "WriteResults")
}
