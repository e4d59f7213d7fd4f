/*
 * data.go, part of gopahdb.
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
	"os"
	"strings"
	"time"

	"github.com/rmera/gopahdb/ipac"
)

//Emission models, as stored in Model.Type.
const (
	ZeroKelvin            = "zerokelvin_m"
	FixedTemperatureModel = "fixedtemperature_m"
	CalculatedTempModel   = "calculatedtemperature_m"
	CascadeModel          = "cascade_m"
	LaboratoryModel       = "laboratory_m"
)

//Unit is the label and unit string of an axis.
type Unit struct {
	Label string
	Str   string
}

func (U Unit) String() string {
	return fmt.Sprintf("%s [%s]", U.Label, U.Str)
}

//Units holds the units for both axes of the data.
type Units struct {
	Abscissa Unit
	Ordinate Unit
}

//Model describes the emission model applied to the data.
type Model struct {
	Type        string
	Energy      float64         //the absorbed energy, in eV, or the field temperature when the energy is not given.
	Temperature map[int]float64 //the fixed or maximum attained temperature for each UID, in K.
	Field       string          //Star, ISRF, StellarModel or empty.
	Approximate bool
	Description string
}

//Data contains the elements shared by all the containers obtained from a DB.
type Data struct {
	Type    string
	Version string
	UIDs    []int
	Model   Model
	Units   Units
	db      *DB
}

//DB returns the database the data was obtained from, or nil.
func (D *Data) DB() *DB { return D.db }

//SetDB associates the data with db. A different type or version is logged.
func (D *Data) SetDB(db *DB) {
	if db == nil {
		D.db = nil
		return
	}
	if D.Type != "" && D.Type != db.Type() {
		log.Printf("DATABASE MISMATCH: %s != %s", D.Type, db.Type())
	}
	if D.Version != "" && D.Version != db.Version() {
		log.Printf("VERSION MISMATCH: %s != %s", D.Version, db.Version())
	}
	D.db = db
}

func (D *Data) verbose() bool {
	if D.db == nil {
		return true
	}
	return D.db.opts.Verbose()
}

//Intersect keeps only the UIDs that are also in uids. If the intersection is empty
//the data is left untouched and false is returned.
func (D *Data) Intersect(uids ...int) bool {
	in := make(map[int]bool, len(uids))
	for _, u := range uids {
		in[u] = true
	}
	var r []int
	for _, u := range D.UIDs {
		if in[u] {
			r = append(r, u)
		}
	}
	if len(r) == 0 {
		log.Println("NO INTERSECTION FOUND")
		return false
	}
	message(D.verbose(), fmt.Sprintf("INTERSECTION FOUND: %d", len(r)))
	D.UIDs = r
	return true
}

//Difference removes the UIDs in uids. If nothing would be left, the data is
//left untouched and false is returned.
func (D *Data) Difference(uids ...int) bool {
	out := make(map[int]bool, len(uids))
	for _, u := range uids {
		out[u] = true
	}
	var r []int
	for _, u := range D.UIDs {
		if !out[u] {
			r = append(r, u)
		}
	}
	if len(r) == 0 || len(r) == len(D.UIDs) {
		log.Println("NO DIFFERENCE FOUND")
		return false
	}
	message(D.verbose(), fmt.Sprintf("DIFFERENCE FOUND: %d", len(D.UIDs)-len(r)))
	D.UIDs = r
	return true
}

//header returns a table with the header keywords shared by all the outputs.
func (D *Data) header(kind string) *ipac.Table {
	T := new(ipac.Table)
	T.AddKeyword("DATE", fmt.Sprintf("'%s'", time.Now().UTC().Format(time.RFC3339)))
	T.AddKeyword("ORIGIN", "'NASA Ames Research Center'")
	T.AddKeyword("CREATOR", fmt.Sprintf("'gopahdb %s'", Version))
	T.AddKeyword("SOFTWARE", "'gopahdb'")
	T.AddKeyword("AUTHOR", fmt.Sprintf("'%s'", author()))
	T.AddKeyword("TYPE", fmt.Sprintf("'%s'", strings.ToUpper(kind)))
	T.AddKeyword("SPECIES", fmt.Sprintf("%d", len(D.UIDs)))
	T.Comments = append(T.Comments, fmt.Sprintf("DATABASE: %s %s", D.Type, D.Version))
	if D.Model.Type != "" {
		T.Comments = append(T.Comments, fmt.Sprintf("MODEL: %s", D.Model.Type))
		if D.Model.Description != "" {
			T.Comments = append(T.Comments, D.Model.Description)
		}
	}
	return T
}

//writeTable writes T to filename, or to <defname>.tbl if filename is empty.
func writeTable(T *ipac.Table, filename, defname string) error {
	if filename == "" {
		filename = defname + ".tbl"
	}
	if err := T.WriteFile(filename); err != nil {
		return newError(err.Error(), filename, "writeTable", false, err)
	}
	log.Printf("WRITTEN: %s", filename)
	return nil
}

func author() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}

//keep returns the entries of m for the given UIDs.
func keep[T any](m map[int]T, uids []int) map[int]T {
	r := make(map[int]T, len(uids))
	for _, u := range uids {
		if v, ok := m[u]; ok {
			r[u] = v
		}
	}
	return r
}
