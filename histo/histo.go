/*
 * histo.go, part of gopahdb.
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

//Package histo builds histograms of the values a quantity takes over many
//Monte Carlo samples, such as the weight of one species in a set of fits.
package histo

import (
	"encoding/json"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Dividers returns bins+1 equally spaced dividers spanning all the values.
//The last divider is slightly above the largest value, so it is counted.
func Dividers(values []float64, bins int) []float64 {
	if bins <= 0 {
		bins = 1
	}
	lo, hi := 0.0, 1.0
	if len(values) > 0 {
		lo, hi = floats.Min(values), floats.Max(values)
	}
	if hi <= lo {
		hi = lo + 1
	}
	hi += (hi - lo) * 1e-9
	d := make([]float64, bins+1)
	floats.Span(d, lo, hi)
	return d
}

//Data is a histogram. The ID is usually the UID of the species the values belong to.
type Data struct {
	id         int
	normalized bool
	total      int
	dividers   []float64
	histo      []float64
}

//MarshalJSON encodes the histogram without its dividers. The mode is
//omitted for an empty histogram.
func (D *Data) MarshalJSON() ([]byte, error) {
	var mode *float64
	if m := D.Mode(); !math.IsNaN(m) {
		mode = &m
	}
	return json.Marshal(struct {
		ID         int       `json:"id"`
		Normalized bool      `json:"normalized"`
		Total      int       `json:"total"`
		Mode       *float64  `json:"mode,omitempty"`
		Histo      []float64 `json:"histo"`
	}{D.id, D.normalized, D.total, mode, D.histo})
}

//ID returns the ID of the histogram
func (D *Data) ID() int {
	return D.id
}

//Total returns the number of values counted.
func (D *Data) Total() int {
	return D.total
}

//NewData returns a new histogram with the given dividers, holding rawdata, which can be nil.
//If an ID is given, it is set, otherwise the ID is -1. Values outside the dividers are omitted.
func NewData(dividers []float64, rawdata []float64, ID ...int) *Data {
	d := new(Data)
	d.dividers = append([]float64(nil), dividers...)
	d.histo = make([]float64, len(dividers)-1)
	if rawdata != nil {
		d.rehisto(rawdata)
	}
	d.id = -1
	if len(ID) > 0 {
		d.id = ID[0]
	}
	return d
}

//rehisto replaces the counts with those of rawdata, which is not modified.
func (D *Data) rehisto(rawdata []float64) {
	raw := append([]float64(nil), rawdata...)
	sort.Float64s(raw)
	//stat.Histogram panics on values outside the dividers.
	maxi := sort.SearchFloat64s(raw, D.dividers[len(D.dividers)-1])
	mini := sort.SearchFloat64s(raw, D.dividers[0])
	raw = raw[mini:maxi]
	D.total = len(raw)
	D.normalized = false
	D.histo = stat.Histogram(nil, D.dividers, raw, nil)
}

//Normalized Returns true if the histogram is normalized
func (D *Data) Normalized() bool {
	return D.normalized
}

//Normalize divides the counts by the total, so they become fractions.
//It does nothing on an empty or already normalized histogram.
func (D *Data) Normalize() {
	if D.total <= 0 || D.normalized {
		return
	}
	D.normalized = true
	floats.Scale(1/float64(D.total), D.histo)
}

//View returns the bin values, not a copy.
func (D *Data) View() []float64 {
	return D.histo
}

//Centers returns the center of each bin.
func (D *Data) Centers() []float64 {
	r := make([]float64, len(D.histo))
	for i := range r {
		r[i] = 0.5 * (D.dividers[i] + D.dividers[i+1])
	}
	return r
}

//Mode returns the center of the most populated bin, or NaN for an empty histogram.
func (D *Data) Mode() float64 {
	if len(D.histo) == 0 || D.total == 0 {
		return math.NaN()
	}
	return D.Centers()[floats.MaxIdx(D.histo)]
}

//Set is a group of histograms sharing dividers, one per ID.
type Set struct {
	dividers []float64
	d        map[int]*Data
}

//NewSet returns an empty set of histograms with the given dividers.
func NewSet(dividers []float64) *Set {
	return &Set{dividers: append([]float64(nil), dividers...), d: make(map[int]*Data)}
}

//Add puts in the set a histogram of rawdata with the given ID, replacing any previous one.
func (S *Set) Add(id int, rawdata []float64) *Data {
	S.d[id] = NewData(S.dividers, rawdata, id)
	return S.d[id]
}

//Get returns the histogram with the given ID, or nil.
func (S *Set) Get(id int) *Data {
	return S.d[id]
}

//IDs returns the sorted IDs in the set.
func (S *Set) IDs() []int {
	r := make([]int, 0, len(S.d))
	for k := range S.d {
		r = append(r, k)
	}
	sort.Ints(r)
	return r
}

//NormalizeAll normalizes all the histograms in the set.
func (S *Set) NormalizeAll() {
	for _, v := range S.d {
		v.Normalize()
	}
}

//MarshalJSON encodes the shared dividers once, and the histograms in ID order.
func (S *Set) MarshalJSON() ([]byte, error) {
	h := make([]*Data, 0, len(S.d))
	for _, id := range S.IDs() {
		h = append(h, S.d[id])
	}
	return json.Marshal(struct {
		Dividers []float64 `json:"dividers"`
		Histos   []*Data   `json:"histograms"`
	}{S.dividers, h})
}
