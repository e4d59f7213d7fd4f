/*
 * records.go, part of gopahdb.
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

import "strings"

//Database contains a parsed PAH database file. It is what the cache stores.
type Database struct {
	Type     string //the "database" attribute: theoretical, experimental, clusters/theoretical
	Version  string
	Date     string
	Full     bool
	Comment  string
	Filename string
	UIDs     []int //in file order
	Species  map[int]*Specie
}

//Comment is a free-text comment on a specie. Type is the optional "type" attribute.
type Comment struct {
	Type string
	Text string
}

//Atom is one atom of the geometry of a specie. Coordinates are in Angstrom, Type is the atomic number.
type Atom struct {
	Position int
	Type     int
	X, Y, Z  float64
}

//Mode is a vibrational transition. Frequency in 1/cm, Intensity in km/mol.
type Mode struct {
	Frequency float64
	Scale     float64
	Intensity float64
	Symmetry  string
}

//LabSpectrum is a measured laboratory spectrum, only present in the experimental database.
type LabSpectrum struct {
	Frequency []float64
	Intensity []float64
}

//Specie is one record of the database.
type Specie struct {
	UID      int
	Formula  string
	Charge   int
	Symmetry string
	Weight   float64
	TotalE   float64
	VibE     float64
	Scale    float64
	Method   string
	Exp      float64

	NC, NH, NN, NO, NMg, NSi, NFe          int
	NCH, NCH2, NCH3, NCHx                  int
	NSolo, NDuo, NTrio, NQuartet, NQuintet int

	//only in the clusters database
	Monomers     string
	Type         string
	Conformation string

	Comments    []Comment
	References  []string
	Geometry    []Atom
	Transitions []Mode
	Laboratory  LabSpectrum

	Extra map[string]string //scalar tags this package doesn't know about
}

//Copy returns a deep copy of the receiver.
func (S *Specie) Copy() *Specie {
	if S == nil {
		return nil
	}
	r := *S
	r.Comments = append([]Comment(nil), S.Comments...)
	r.References = append([]string(nil), S.References...)
	r.Geometry = append([]Atom(nil), S.Geometry...)
	r.Transitions = append([]Mode(nil), S.Transitions...)
	r.Laboratory = S.Laboratory.Copy()
	if S.Extra != nil {
		r.Extra = make(map[string]string, len(S.Extra))
		for k, v := range S.Extra {
			r.Extra[k] = v
		}
	}
	return &r
}

//Copy returns a deep copy of the receiver.
func (L LabSpectrum) Copy() LabSpectrum {
	return LabSpectrum{
		Frequency: append([]float64(nil), L.Frequency...),
		Intensity: append([]float64(nil), L.Intensity...),
	}
}

//Pure returns true if the specie contains no nitrogen, oxygen, magnesium, silicon or iron.
func (S *Specie) Pure() bool {
	return S.NN == 0 && S.NO == 0 && S.NMg == 0 && S.NSi == 0 && S.NFe == 0
}

//numeric returns the value of the numeric field with the given XML tag name
//and true, or 0 and false if there is no such numeric field.
func (S *Specie) numeric(tag string) (float64, bool) {
	switch tag {
	case "uid":
		return float64(S.UID), true
	case "charge":
		return float64(S.Charge), true
	case "weight":
		return S.Weight, true
	case "total_e":
		return S.TotalE, true
	case "vib_e":
		return S.VibE, true
	case "scale":
		return S.Scale, true
	case "exp":
		return S.Exp, true
	case "n_c":
		return float64(S.NC), true
	case "n_h":
		return float64(S.NH), true
	case "n_n":
		return float64(S.NN), true
	case "n_o":
		return float64(S.NO), true
	case "n_mg":
		return float64(S.NMg), true
	case "n_si":
		return float64(S.NSi), true
	case "n_fe":
		return float64(S.NFe), true
	case "n_ch":
		return float64(S.NCH), true
	case "n_ch2":
		return float64(S.NCH2), true
	case "n_ch3":
		return float64(S.NCH3), true
	case "n_chx":
		return float64(S.NCHx), true
	case "n_solo":
		return float64(S.NSolo), true
	case "n_duo":
		return float64(S.NDuo), true
	case "n_trio":
		return float64(S.NTrio), true
	case "n_quartet":
		return float64(S.NQuartet), true
	case "n_quintet":
		return float64(S.NQuintet), true
	}
	return 0, false
}

//text returns the value of the string field with the given XML tag name.
func (S *Specie) text(tag string) (string, bool) {
	switch tag {
	case "formula":
		return S.Formula, true
	case "symmetry":
		return S.Symmetry, true
	case "method":
		return S.Method, true
	case "monomers":
		return S.Monomers, true
	case "type":
		return S.Type, true
	case "conformation":
		return S.Conformation, true
	}
	v, ok := S.Extra[tag]
	return v, ok
}

//setNumeric sets the numeric field with the given tag. It returns false
//if the tag is not a numeric field.
func (S *Specie) setNumeric(tag string, v float64) bool {
	i := int(v)
	switch tag {
	case "charge":
		S.Charge = i
	case "weight":
		S.Weight = v
	case "total_e":
		S.TotalE = v
	case "vib_e":
		S.VibE = v
	case "scale":
		S.Scale = v
	case "exp":
		S.Exp = v
	case "n_c":
		S.NC = i
	case "n_h":
		S.NH = i
	case "n_n":
		S.NN = i
	case "n_o":
		S.NO = i
	case "n_mg":
		S.NMg = i
	case "n_si":
		S.NSi = i
	case "n_fe":
		S.NFe = i
	case "n_ch":
		S.NCH = i
	case "n_ch2":
		S.NCH2 = i
	case "n_ch3":
		S.NCH3 = i
	case "n_chx":
		S.NCHx = i
	case "n_solo":
		S.NSolo = i
	case "n_duo":
		S.NDuo = i
	case "n_trio":
		S.NTrio = i
	case "n_quartet":
		S.NQuartet = i
	case "n_quintet":
		S.NQuintet = i
	default:
		return false
	}
	return true
}

//setText sets the string field with the given tag, or stores it in Extra.
func (S *Specie) setText(tag, v string) {
	switch tag {
	case "formula":
		S.Formula = v
	case "symmetry":
		S.Symmetry = v
	case "method":
		S.Method = v
	case "monomers":
		S.Monomers = v
	case "type":
		S.Type = v
	case "conformation":
		S.Conformation = v
	default:
		if S.Extra == nil {
			S.Extra = make(map[string]string)
		}
		S.Extra[tag] = v
	}
}

//numericTags lists the numeric fields in the order they are written to XML.
var numericTags = []string{"charge", "weight", "total_e", "vib_e", "scale", "exp",
	"n_c", "n_h", "n_n", "n_o", "n_mg", "n_si", "n_fe", "n_ch", "n_ch2", "n_ch3", "n_chx",
	"n_solo", "n_duo", "n_trio", "n_quartet", "n_quintet"}

var textTags = []string{"formula", "symmetry", "method", "monomers", "type", "conformation"}

//isNumericTag is true for the tags that setNumeric knows about.
func isNumericTag(tag string) bool {
	for _, v := range numericTags {
		if v == tag {
			return true
		}
	}
	return false
}

func isTextTag(tag string) bool {
	for _, v := range textTags {
		if strings.EqualFold(v, tag) {
			return true
		}
	}
	return false
}
