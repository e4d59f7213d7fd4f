/*
 * mcfitted.go, part of gopahdb.
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
	"encoding/json"
	"fmt"
	"io"
	"math"
	"runtime"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rmera/gopahdb/histo"
	"github.com/rmera/gopahdb/nnls"
)

//MCOptions contains the options for Spectrum.MCFit
type MCOptions struct {
	Samples int
	Uniform bool //if false, the perturbed fluxes follow a normal distribution
	Small   int  //the largest number of carbon atoms of a small PAH
	Workers int
}

//DefaultMCOptions returns 1024 normally distributed samples, DefaultSmall and
//as many workers as logical CPUs.
func DefaultMCOptions() *MCOptions {
	return &MCOptions{Samples: 1024, Small: DefaultSmall, Workers: runtime.NumCPU()}
}

//Stats are the statistics of a quantity over the Monte Carlo samples.
//Std is the population standard deviation.
type Stats struct {
	Min, Max, Median, Mean, Std float64
}

//SpectrumStats contains the mean and standard deviation, for each grid point,
//of a spectrum over the Monte Carlo samples.
type SpectrumStats struct {
	Mean, Std []float64
}

//mcSample is the result of fitting one perturbed observation.
type mcSample struct {
	flux    []float64
	weights []float64 //in the order of the UIDs of the fitted spectrum
	norm    float64
}

//MCFitted contains the fits of an observation perturbed within its uncertainties.
type MCFitted struct {
	Spectrum     *Spectrum //the spectra that were fitted
	Observation  Observed
	Distribution string //"normal" or "uniform"
	Small        int
	samples      []mcSample
}

//MCFit fits O.Samples copies of obs, each perturbed within the uncertainties of obs,
//which are required.
func (S *Spectrum) MCFit(obs Observed, O *MCOptions) (*MCFitted, error) {
	if O == nil {
		O = DefaultMCOptions()
	}
	flux, sigma := obs.Flux(), obs.Uncertainty()
	if !hasUncertainties(sigma) || len(sigma) != len(flux) {
		return nil, newError(ErrNoUncertainties.Error(), "", "MCFit", true, ErrNoUncertainties)
	}
	if len(flux) != len(S.Grid) {
		return nil, newError(fmt.Sprintf("%d points in the observation, %d in the spectrum", len(flux), len(S.Grid)), "", "MCFit", true, ErrGridMismatch)
	}
	if err := checkUncertainties(sigma, "MCFit"); err != nil {
		return nil, err
	}
	n := O.Samples
	if n <= 0 {
		n = 1024
	}
	dist := "normal"
	if O.Uniform {
		dist = "uniform"
	}
	message(S.verbose(), fmt.Sprintf("MONTE CARLO FIT: %d %s SAMPLES", n, dist))
	A := S.matrix(sigma)
	samples, err := parallel(n, O.Workers, func(i int) (mcSample, error) {
		p := perturb(flux, sigma, O.Uniform)
		b := append([]float64(nil), p...)
		floats.Div(b, sigma)
		x, norm, err := nnls.Solve(A, b)
		if err != nil {
			return mcSample{}, newError(err.Error(), "", "MCFit", true, err)
		}
		return mcSample{flux: p, weights: x, norm: norm}, nil
	})
	if err != nil {
		return nil, errDecorate(err, "MCFit")
	}
	small := O.Small
	if small <= 0 {
		small = DefaultSmall
	}
	message(S.verbose(), notice...)
	return &MCFitted{Spectrum: S, Observation: obs, Distribution: dist, Small: small, samples: samples}, nil
}

//perturb returns a copy of flux with each point displaced within its uncertainty.
func perturb(flux, sigma []float64, uniform bool) []float64 {
	r := make([]float64, len(flux))
	u := distuv.Uniform{Min: -1, Max: 1}
	for i, f := range flux {
		if sigma[i] <= 0 {
			r[i] = f
			continue
		}
		if uniform {
			r[i] = f + sigma[i]*u.Rand()
			continue
		}
		r[i] = distuv.Normal{Mu: f, Sigma: sigma[i]}.Rand()
	}
	return r
}

//Len returns the number of samples.
func (M *MCFitted) Len() int { return len(M.samples) }

//Sample returns the fit of the ith perturbed observation.
func (M *MCFitted) Sample(i int) *Fitted {
	s := M.samples[i]
	F := M.Spectrum.fitted(s.weights, NNLC)
	F.Norm = s.norm
	F.Observation = &observed{grid: M.Spectrum.Grid, flux: s.flux, sigma: M.Observation.Uncertainty()}
	return F
}

//spectrumStats returns the mean and std, point by point, of the spectra.
func spectrumStats(spectra [][]float64) SpectrumStats {
	if len(spectra) == 0 {
		return SpectrumStats{}
	}
	n := len(spectra[0])
	r := SpectrumStats{Mean: make([]float64, n), Std: make([]float64, n)}
	col := make([]float64, len(spectra))
	for j := 0; j < n; j++ {
		for i, s := range spectra {
			col[i] = s[j]
		}
		mean, variance := stat.PopMeanVariance(col, nil)
		r.Mean[j], r.Std[j] = mean, math.Sqrt(variance)
	}
	return r
}

//GetFit returns the mean and standard deviation of the fitted spectrum.
func (M *MCFitted) GetFit() SpectrumStats {
	fits := make([][]float64, M.Len())
	for i := range fits {
		fits[i] = M.Sample(i).GetFit()
	}
	return spectrumStats(fits)
}

//GetClasses returns the mean and standard deviation of the spectra of each class
//of species (see Fitted.GetClasses), and of the fit, under the key "fit".
func (M *MCFitted) GetClasses() map[string]SpectrumStats {
	classes := make(map[string][][]float64, len(classNames)+1)
	for i := 0; i < M.Len(); i++ {
		F := M.Sample(i)
		classes["fit"] = append(classes["fit"], F.GetFit())
		for k, v := range F.GetClasses(M.Small) {
			classes[k] = append(classes[k], v)
		}
	}
	r := make(map[string]SpectrumStats, len(classes))
	for k, v := range classes {
		r[k] = spectrumStats(v)
	}
	return r
}

//breakdownKeys are the quantities GetBreakdown reports, in output order.
var breakdownKeys = []string{"solo", "duo", "trio", "quartet", "quintet", "anion", "neutral", "cation", "small", "large", "nitrogen", "pure", "nc", "err"}

//median returns the median of v, averaging the central pair for even lengths. v is not modified.
func median(v []float64) float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return 0.5 * (s[n/2-1] + s[n/2])
}

//statsOf returns the statistics of v.
func statsOf(v []float64) Stats {
	if len(v) == 0 {
		return Stats{}
	}
	mean, variance := stat.PopMeanVariance(v, nil)
	return Stats{Min: floats.Min(v), Max: floats.Max(v), Median: median(v), Mean: mean, Std: math.Sqrt(variance)}
}

//GetBreakdown returns the statistics, over the samples, of the breakdown of each fit
//(see Fitted.GetBreakdown).
func (M *MCFitted) GetBreakdown(flux bool) map[string]Stats {
	values := make(map[string][]float64, len(breakdownKeys))
	for i := 0; i < M.Len(); i++ {
		b := M.Sample(i).GetBreakdown(M.Small, flux)
		for _, k := range breakdownKeys {
			values[k] = append(values[k], b[k])
		}
	}
	r := make(map[string]Stats, len(breakdownKeys))
	for _, k := range breakdownKeys {
		r[k] = statsOf(values[k])
	}
	return r
}

//WriteStatistics writes the statistics of the breakdown to w, one line per parameter.
func (M *MCFitted) WriteStatistics(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "# param min max median mean std"); err != nil {
		return err
	}
	b := M.GetBreakdown(false)
	for _, k := range breakdownKeys {
		s := b[k]
		if _, err := fmt.Fprintf(w, "%s %.5f %.5f %.5f %.5f %.5f\n", k, s.Min, s.Max, s.Median, s.Mean, s.Std); err != nil {
			return err
		}
	}
	return nil
}

//Write writes the statistics of the breakdown as an IPAC table, mcfitted.tbl if
//filename is empty.
func (M *MCFitted) Write(filename string) error {
	tbl := M.Spectrum.header("mcfitted")
	tbl.AddKeyword("SAMPLES", fmt.Sprintf("%d", M.Len()))
	tbl.AddKeyword("DISTRIBUTION", fmt.Sprintf("'%s'", M.Distribution))
	b := M.GetBreakdown(false)
	var min, max, med, mean, std []float64
	for _, k := range breakdownKeys {
		s := b[k]
		min = append(min, s.Min)
		max = append(max, s.Max)
		med = append(med, s.Median)
		mean = append(mean, s.Mean)
		std = append(std, s.Std)
	}
	tbl.AddStrings("param", "", breakdownKeys)
	tbl.AddFloats("min", "", min)
	tbl.AddFloats("max", "", max)
	tbl.AddFloats("median", "", med)
	tbl.AddFloats("mean", "", mean)
	tbl.AddFloats("std", "", std)
	return errDecorate(writeTable(tbl, filename, "mcfitted"), "Write")
}

//Weights returns the weights of uid over all the samples. Samples where uid
//didn't contribute give 0.
func (M *MCFitted) Weights(uid int) []float64 {
	j := -1
	for i, u := range M.Spectrum.UIDs {
		if u == uid {
			j = i
			break
		}
	}
	r := make([]float64, M.Len())
	if j < 0 {
		return r
	}
	for i, s := range M.samples {
		r[i] = math.Max(s.weights[j], 0)
	}
	return r
}

//WeightHistogram returns the histogram of the weights of uid over the samples.
//If dividers is nil, 20 equal bins between the smallest and largest weight are used.
func (M *MCFitted) WeightHistogram(uid int, dividers []float64) *histo.Data {
	w := M.Weights(uid)
	if dividers == nil {
		dividers = histo.Dividers(w, 20)
	}
	return histo.NewData(dividers, w, uid)
}

//WeightHistograms returns the histograms of the weights of every species that
//contributed to at least one sample, in the given number of bins (20 if bins <= 0)
//shared by all of them.
func (M *MCFitted) WeightHistograms(bins int) *histo.Set {
	if bins <= 0 {
		bins = 20
	}
	weights := make(map[int][]float64)
	var all []float64
	for _, uid := range M.Spectrum.UIDs {
		w := M.Weights(uid)
		if floats.Max(append([]float64{0}, w...)) <= 0 {
			continue
		}
		weights[uid] = w
		all = append(all, w...)
	}
	set := histo.NewSet(histo.Dividers(all, bins))
	for uid, w := range weights {
		set.Add(uid, w)
	}
	return set
}

//WriteHistograms writes to w, as JSON, the normalized weight histograms
//given by WeightHistograms.
func (M *MCFitted) WriteHistograms(w io.Writer, bins int) error {
	set := M.WeightHistograms(bins)
	set.NormalizeAll()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errDecorate(enc.Encode(set), "WriteHistograms")
}

func (M *MCFitted) String() string {
	s := fmt.Sprintf("MONTE CARLO FIT: %d %s SAMPLES\n", M.Len(), M.Distribution)
	b := M.GetBreakdown(false)
	for _, k := range breakdownKeys {
		v := b[k]
		s += fmt.Sprintf("%-9s %10.5f +/- %.5f\n", k, v.Mean, v.Std)
	}
	return s
}
