/*
 * database.go, part of gopahdb.
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
	"path/filepath"
	"sort"
	"strings"
	"time"
)

//DB is an open PAH database.
type DB struct {
	db   *Database
	opts *Options
	hash string //SHA-256 of the source file, used for the cache names.
}

//Open parses the database in filename. If filename is empty, the AMESPAHDEFAULTDB
//environment variable is used. If O is nil, DefaultOptions() is used.
//The parsed database is cached according to O, and a cache that can't be
//decoded is removed and replaced.
func Open(filename string, O *Options) (*DB, error) {
	if O == nil {
		O = DefaultOptions()
	}
	if filename == "" {
		e, err := ParseEnv()
		if err != nil {
			return nil, newError(err.Error(), "", "Open", true, err)
		}
		if e.DefaultDB == "" {
			return nil, newError(ErrNoDatabase.Error(), "", "Open", true, ErrNoDatabase)
		}
		filename = e.DefaultDB
	}
	if _, err := os.Stat(filename); err != nil {
		return nil, newError(fmt.Sprintf("%s: %v", UnableToOpen, err), filename, "Open", true, err)
	}
	hash, err := hashFile(filename)
	if err != nil {
		return nil, newError(fmt.Sprintf("%s: %v", UnableToRead, err), filename, "Open", true, err)
	}
	D := &DB{opts: O, hash: hash}
	start := time.Now()
	cachename := filepath.Join(O.CacheDir(), hash+cacheSuffix)
	if O.Cache() {
		db := new(Database)
		if err := readCache(cachename, db); err == nil {
			D.db = db
			D.db.Filename = filename
			message(O.Verbose(), "RESTORING DATABASE FROM CACHE")
		}
	}
	if D.db == nil {
		f, err := os.Open(filename)
		if err != nil {
			return nil, newError(fmt.Sprintf("%s: %v", UnableToOpen, err), filename, "Open", true, err)
		}
		db, err := parseXMLChecked(f, filename, O.Check(), O.SchemaTimeout())
		f.Close()
		if err != nil {
			return nil, errDecorate(err, "Open")
		}
		D.db = db
		if O.Cache() {
			if err := writeCache(cachename, db); err != nil {
				log.Printf("Unable to write database cache %s: %v", cachename, err)
			}
		}
	}
	message(O.Verbose(),
		"NASA Ames PAH IR Spectroscopic Database",
		fmt.Sprintf("FILENAME: %s", filename),
		fmt.Sprintf("PARSE TIME: %s", time.Since(start)),
		fmt.Sprintf("VERSION (DATE): %s (%s)", D.db.Version, D.db.Date),
		fmt.Sprintf("TYPE: %s (%d species)", D.db.Type, len(D.db.UIDs)),
		fmt.Sprintf("COMMENT: %s", D.db.Comment))
	return D, nil
}

//FromDatabase wraps an already-parsed database. Nothing is cached.
func FromDatabase(db *Database, O *Options) *DB {
	if O == nil {
		O = DefaultOptions()
	}
	hash, err := hashValues(db.Type, db.Version, db.Date, db.UIDs)
	if err != nil {
		hash = ""
	}
	return &DB{db: db, opts: O, hash: hash}
}

//Ref returns the underlying Database. Changes to it are visible through the DB.
func (D *DB) Ref() *Database { return D.db }

//Options returns the options the DB was opened with.
func (D *DB) Options() *Options { return D.opts }

//Version returns the version of the database.
func (D *DB) Version() string { return D.db.Version }

//Type returns the type of the database, i.e. theoretical or experimental.
func (D *DB) Type() string { return D.db.Type }

//Date returns the date of the database.
func (D *DB) Date() string { return D.db.Date }

//Filename returns the name of the file the database was read from.
func (D *DB) Filename() string { return D.db.Filename }

//CheckVersion returns true if the version of the database is v.
func (D *DB) CheckVersion(v string) bool { return D.db.Version == v }

//Theoretical returns true if the database holds computed spectra.
func (D *DB) Theoretical() bool { return strings.Contains(D.db.Type, "theoretical") }

//Experimental returns true if the database holds laboratory spectra.
func (D *DB) Experimental() bool { return strings.Contains(D.db.Type, "experimental") }

//Clusters returns true if the database is the clusters database.
func (D *DB) Clusters() bool { return strings.Contains(D.db.Type, "clusters") }

//Len returns the number of species in the database.
func (D *DB) Len() int { return len(D.db.UIDs) }

//UIDs returns a copy of the list of UIDs in the database, in file order.
func (D *DB) UIDs() []int { return append([]int(nil), D.db.UIDs...) }

//Extend adds the given species to the database, replacing the records with the same UID.
//New UIDs are appended in ascending order.
func (D *DB) Extend(species map[int]*Specie) {
	uids := make([]int, 0, len(species))
	for uid := range species {
		uids = append(uids, uid)
	}
	sort.Ints(uids)
	for _, uid := range uids {
		s := species[uid].Copy()
		s.UID = uid
		if _, ok := D.db.Species[uid]; !ok {
			D.db.UIDs = append(D.db.UIDs, uid)
		}
		D.db.Species[uid] = s
	}
	message(D.opts.Verbose(), fmt.Sprintf("DATABASE EXTENDED WITH %d SPECIES", len(uids)))
}

//WriteFile saves the database to filename in XML format.
func (D *DB) WriteFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return newError(fmt.Sprintf("%s: %v", UnableToOpen, err), filename, "WriteFile", true, err)
	}
	if err := WriteXML(f, D.db); err != nil {
		f.Close()
		return newError(err.Error(), filename, "WriteFile", true, err)
	}
	return f.Close()
}

//known returns the UIDs in uids that are in the database, in the given order,
//without repetitions.
func (D *DB) known(uids []int) []int {
	seen := make(map[int]bool, len(uids))
	r := make([]int, 0, len(uids))
	for _, uid := range uids {
		if _, ok := D.db.Species[uid]; !ok || seen[uid] {
			continue
		}
		seen[uid] = true
		r = append(r, uid)
	}
	return r
}

//newData returns a Data for the given known UIDs of the database.
func (D *DB) newData(uids []int) Data {
	return Data{Type: D.db.Type, Version: D.db.Version, UIDs: uids, db: D}
}

//SpeciesByUID returns copies of the properties of the species with the given UIDs.
//Unknown UIDs are dropped. With no UIDs, all species are returned.
func (D *DB) SpeciesByUID(uids ...int) *Species {
	if len(uids) == 0 {
		uids = D.db.UIDs
	}
	uids = D.known(uids)
	S := &Species{Data: D.newData(uids), Records: make(map[int]*Specie, len(uids))}
	for _, uid := range uids {
		S.Records[uid] = D.db.Species[uid].Copy()
	}
	return S
}

//TransitionsByUID returns copies of the transitions of the species with the given UIDs.
func (D *DB) TransitionsByUID(uids ...int) *Transitions {
	if len(uids) == 0 {
		uids = D.db.UIDs
	}
	uids = D.known(uids)
	T := &Transitions{Data: D.newData(uids), Modes: make(map[int][]Mode, len(uids))}
	T.Model = Model{Type: ZeroKelvin}
	T.Units = Units{
		Abscissa: Unit{Label: "frequency", Str: "cm$^{-1}$"},
		Ordinate: Unit{Label: "integrated cross-section", Str: "km/mol"},
	}
	for _, uid := range uids {
		T.Modes[uid] = append([]Mode(nil), D.db.Species[uid].Transitions...)
	}
	return T
}

//GeometryByUID returns copies of the geometries of the species with the given UIDs.
func (D *DB) GeometryByUID(uids ...int) *Geometry {
	if len(uids) == 0 {
		uids = D.db.UIDs
	}
	uids = D.known(uids)
	G := &Geometry{Data: D.newData(uids), Atoms: make(map[int][]Atom, len(uids))}
	for _, uid := range uids {
		G.Atoms[uid] = append([]Atom(nil), D.db.Species[uid].Geometry...)
	}
	return G
}

//LaboratoryByUID returns copies of the laboratory spectra of the species with the given UIDs.
//It requires the experimental database.
func (D *DB) LaboratoryByUID(uids ...int) (*Laboratory, error) {
	if !D.Experimental() {
		return nil, newError(ErrNotExperimental.Error(), D.db.Filename, "LaboratoryByUID", false, ErrNotExperimental)
	}
	if len(uids) == 0 {
		uids = D.db.UIDs
	}
	uids = D.known(uids)
	L := &Laboratory{Data: D.newData(uids), Spectra: make(map[int]LabSpectrum, len(uids))}
	L.Model = Model{Type: LaboratoryModel}
	L.Units = Units{
		Abscissa: Unit{Label: "frequency", Str: "cm$^{-1}$"},
		Ordinate: Unit{Label: "absorbance", Str: "-log(I/I$_{0}$)"},
	}
	for _, uid := range uids {
		L.Spectra[uid] = D.db.Species[uid].Laboratory.Copy()
	}
	return L, nil
}
