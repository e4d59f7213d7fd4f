/*
 * transitions.go, part of gopahdb.
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
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rmera/gopahdb/emission"
)

//Transitions holds the vibrational transitions of a set of species.
type Transitions struct {
	Data
	Modes map[int][]Mode
	shift float64
}

//EmissionOptions contains the options for the calculated temperature and cascade models.
type EmissionOptions struct {
	Approximate  bool              //use the approximate temperature and feature strength
	Star         bool              //the energy given is the temperature of a blackbody
	ISRF         bool              //use the interstellar radiation field, ignoring the energy given
	StellarModel *emission.Stellar //use a stellar model, ignoring the energy given
	Convolved    bool              //integrate over the whole radiation field
	Cache        bool              //cache the results of the cascade model
	Workers      int
}

//DefaultEmissionOptions returns options for the exact model for a given energy,
//caching the cascade results and using all logical CPUs.
func DefaultEmissionOptions() *EmissionOptions {
	return &EmissionOptions{Cache: true, Workers: runtime.NumCPU()}
}

//field returns the radiation field selected by O for the energy or temperature E, if any.
func (O *EmissionOptions) field(E float64) emission.Field {
	switch {
	case O.StellarModel != nil:
		return O.StellarModel
	case O.ISRF:
		return emission.ISRF{}
	case O.Star:
		return emission.Planck{T: E}
	}
	return nil
}

//Shift adds dv to the frequencies of all the transitions.
func (T *Transitions) Shift(dv float64) {
	T.shift += dv
	for _, uid := range T.UIDs {
		for i := range T.Modes[uid] {
			T.Modes[uid][i].Frequency += dv
		}
	}
	message(T.verbose(), fmt.Sprintf("TOTAL SHIFT: %g /cm", T.shift))
}

//TotalShift returns the sum of all the shifts applied.
func (T *Transitions) TotalShift() float64 { return T.shift }

//Intersect keeps only the given UIDs. If none of them is present, nothing changes.
func (T *Transitions) Intersect(uids ...int) {
	if T.Data.Intersect(uids...) {
		T.Modes = keep(T.Modes, T.UIDs)
	}
}

//Difference removes the given UIDs. If no UID would remain, nothing changes.
func (T *Transitions) Difference(uids ...int) {
	if T.Data.Difference(uids...) {
		T.Modes = keep(T.Modes, T.UIDs)
	}
}

func (T *Transitions) modelApplied() error {
	if T.Model.Type != "" && T.Model.Type != ZeroKelvin {
		log.Printf("%s: %s", ErrModelApplied.Error(), T.Model.Type)
		return newError(fmt.Sprintf("%s: %s", ErrModelApplied.Error(), T.Model.Type), "", "modelApplied", false, ErrModelApplied)
	}
	return nil
}

//FixedTemperature applies the fixed temperature emission model at the temperature t, in K.
func (T *Transitions) FixedTemperature(t float64) error {
	if err := T.modelApplied(); err != nil {
		return errDecorate(err, "FixedTemperature")
	}
	message(T.verbose(), "APPLYING FIXED TEMPERATURE EMISSION MODEL")
	T.Model = Model{Type: FixedTemperatureModel, Temperature: make(map[int]float64, len(T.UIDs)),
		Description: fmt.Sprintf("model: fixed_temperature, temperature: %g Kelvin", t)}
	T.Units.Ordinate = Unit{Label: "integrated spectral radiance", Str: "erg s$^{-1}$ molecule$^{-1}$"}
	for _, uid := range T.UIDs {
		T.Model.Temperature[uid] = t
		for i, m := range T.Modes[uid] {
			T.Modes[uid][i].Intensity = m.Intensity * emission.FixedTemperatureFactor(m.Frequency, t)
		}
	}
	return nil
}

//checkEmission verifies that a calculated temperature or cascade model can be applied.
func (T *Transitions) checkEmission(approximate bool) error {
	if T.db == nil {
		log.Println(ErrNoDB.Error())
		return newError(ErrNoDB.Error(), "", "checkEmission", false, ErrNoDB)
	}
	if !T.db.Theoretical() && !approximate {
		log.Println(ErrNotTheoretical.Error())
		return newError(ErrNotTheoretical.Error(), "", "checkEmission", false, ErrNotTheoretical)
	}
	return T.modelApplied()
}

//molecule collects what the emission models need for the species uid.
func (T *Transitions) molecule(uid int) *emission.Molecule {
	modes := T.Modes[uid]
	M := &emission.Molecule{Frequencies: make([]float64, len(modes)), Intensities: make([]float64, len(modes))}
	if s, ok := T.db.db.Species[uid]; ok {
		M.NC = s.NC
		M.Charge = s.Charge
	}
	for i, m := range modes {
		M.Frequencies[i] = m.Frequency
		M.Intensities[i] = m.Intensity
	}
	return M
}

//fieldMessages logs the radiation field selected, and returns its description.
func (T *Transitions) fieldMessages(E float64, O *EmissionOptions) string {
	v := T.verbose()
	switch {
	case O.StellarModel != nil:
		message(v, "STELLAR MODEL SELECTED: USING FIRST PARAMETER AS MODEL",
			fmt.Sprintf("CALCULATED EFFECTIVE TEMPERATURE: %g Kelvin", O.StellarModel.Temperature))
		return fmt.Sprintf("star: yes, Tstar: %g Kelvin, modelled: true, convolved: %t", O.StellarModel.Temperature, O.Convolved)
	case O.ISRF:
		if !O.Convolved {
			message(v, "ISRF SELECTED: IGNORING FIRST PARAMETER")
		}
		return fmt.Sprintf("isrf: yes, convolved: %t", O.Convolved)
	case O.Star:
		message(v, fmt.Sprintf("BLACKBODY TEMPERATURE: %g Kelvin", E))
		return fmt.Sprintf("star: yes, Tstar: %g Kelvin, modelled: false, convolved: %t", E, O.Convolved)
	}
	return fmt.Sprintf("<E>: %g eV", E)
}

//energy converts the first parameter of the models to erg, when it is an energy.
func (O *EmissionOptions) energy(E float64) float64 {
	if O.field(E) != nil {
		return E
	}
	return E * emission.ErgPerEV
}

func (T *Transitions) report(n, total, uid int, R *emission.Result, start time.Time) {
	message(T.verbose(),
		fmt.Sprintf("SPECIES                          : %d/%d", n, total),
		fmt.Sprintf("UID                              : %d", uid),
		fmt.Sprintf("MEAN ABSORBED ENERGY             : %g +/- %g eV", R.Energy/emission.ErgPerEV, R.Sigma/emission.ErgPerEV),
		fmt.Sprintf("MAXIMUM ATTAINED TEMPERATURE     : %g Kelvin", R.Tmax),
		fmt.Sprintf("ENERGY CONSERVATION IN SPECTRUM  : %g", R.Conservation()),
		fmt.Sprintf("ELAPSED TIME                     : %s", time.Since(start)))
}

//emit runs model on every species, in parallel if O.Workers > 1, and stores the results.
func (T *Transitions) emit(model func(*emission.Molecule) (*emission.Result, error), O *EmissionOptions) error {
	uids := T.UIDs
	results, err := parallel(len(uids), O.Workers, func(i int) (*emission.Result, error) {
		start := time.Now()
		R, err := model(T.molecule(uids[i]))
		if err != nil {
			return nil, newError(fmt.Sprintf("UID %d: %v", uids[i], err), "", "emit", false, err)
		}
		T.report(i+1, len(uids), uids[i], R, start)
		return R, nil
	})
	if err != nil {
		return errDecorate(err, "emit")
	}
	T.Model.Temperature = make(map[int]float64, len(uids))
	for i, uid := range uids {
		T.Model.Temperature[uid] = results[i].Tmax
		for j := range T.Modes[uid] {
			T.Modes[uid][j].Intensity = results[i].Intensities[j]
		}
	}
	return nil
}

//CalculatedTemperature applies the calculated temperature emission model. E is the
//absorbed energy in eV or, with O.Star, the temperature of the blackbody in K.
//With O.ISRF or O.StellarModel, E is ignored.
//If O is nil, DefaultEmissionOptions() is used.
func (T *Transitions) CalculatedTemperature(E float64, O *EmissionOptions) error {
	if O == nil {
		O = DefaultEmissionOptions()
	}
	if err := T.checkEmission(false); err != nil {
		return errDecorate(err, "CalculatedTemperature")
	}
	message(T.verbose(), "APPLYING CALCULATED TEMPERATURE EMISSION MODEL")
	desc := T.fieldMessages(E, O)
	field := O.field(E)
	eerg := O.energy(E)
	err := T.emit(func(M *emission.Molecule) (*emission.Result, error) {
		return M.CalculatedTemperature(eerg, emission.CascadeOptions{Approximate: O.Approximate, Field: field})
	}, O)
	if err != nil {
		return errDecorate(err, "CalculatedTemperature")
	}
	temps := T.Model.Temperature
	T.Model = Model{Type: CalculatedTempModel, Energy: E, Temperature: temps, Approximate: O.Approximate,
		Description: fmt.Sprintf("model: calculated_temperature, approximated: %t, %s", O.Approximate, desc)}
	if field != nil {
		T.Model.Field = field.Name()
	}
	T.Units.Ordinate = Unit{Label: "integrated spectral radiance", Str: "erg s$^{-1}$ molecule$^{-1}$"}
	return nil
}

//cascadeCache is what gets stored in the cascade cache files.
type cascadeCache struct {
	Modes map[int][]Mode
	Model Model
	Units Units
}

func (T *Transitions) cascadeKey(E float64, O *EmissionOptions) (string, error) {
	var stellar [][]float64
	if O.StellarModel != nil {
		stellar = [][]float64{O.StellarModel.Frequency, O.StellarModel.Intensity}
	}
	return hashValues("cascade", E, O.Approximate, O.Star, O.ISRF, O.Convolved, stellar,
		T.Type, T.Version, T.UIDs, T.Modes, T.shift)
}

//Cascade applies the cascade emission model. E is the absorbed energy in eV or, with O.Star, the
//temperature of the blackbody in K. With O.ISRF or O.StellarModel, E is ignored.
//If O.Cache is set, the results are stored under the cache directory of the database,
//and restored from there when the same model is applied to the same transitions.
//If O is nil, DefaultEmissionOptions() is used.
func (T *Transitions) Cascade(E float64, O *EmissionOptions) error {
	if O == nil {
		O = DefaultEmissionOptions()
	}
	var cachename string
	if O.Cache && T.db != nil {
		key, err := T.cascadeKey(E, O)
		if err == nil {
			cachename = filepath.Join(T.db.opts.CacheDir(), "cascade-"+key+cacheSuffix)
			var c cascadeCache
			if err := readCache(cachename, &c); err == nil {
				message(T.verbose(), fmt.Sprintf("RESTORING CASCADE: %s", strings.ToUpper(key[:32])))
				T.Modes, T.Model, T.Units = c.Modes, c.Model, c.Units
				return nil
			}
		}
	}
	if err := T.checkEmission(O.Approximate); err != nil {
		return errDecorate(err, "Cascade")
	}
	message(T.verbose(), "APPLYING CASCADE EMISSION MODEL")
	desc := T.fieldMessages(E, O)
	field := O.field(E)
	if field != nil && O.Convolved {
		message(T.verbose(), "CONVOLVING WITH ENTIRE RADIATION FIELD")
	}
	if O.Approximate {
		message(T.verbose(), "USING APPROXIMATION")
	}
	eerg := O.energy(E)
	opts := emission.CascadeOptions{Approximate: O.Approximate, Field: field, Convolved: O.Convolved}
	err := T.emit(func(M *emission.Molecule) (*emission.Result, error) {
		return M.Cascade(eerg, opts)
	}, O)
	if err != nil {
		return errDecorate(err, "Cascade")
	}
	temps := T.Model.Temperature
	T.Model = Model{Type: CascadeModel, Energy: E, Temperature: temps, Approximate: O.Approximate,
		Description: fmt.Sprintf("model: cascade, approximated: %t, %s", O.Approximate, desc)}
	if field != nil {
		T.Model.Field = field.Name()
	}
	T.Units.Ordinate = Unit{Label: "integrated radiant energy", Str: "10$^{5}$ erg mol$^{-1}$"}
	if cachename != "" {
		if err := writeCache(cachename, cascadeCache{T.Modes, T.Model, T.Units}); err != nil {
			log.Printf("Unable to cache cascade results: %v", err)
		} else {
			message(T.verbose(), "CACHING CASCADE")
		}
	}
	return nil
}

//Convolve puts the transitions on a grid using line profiles, and returns the
//resulting spectra. If O is nil, DefaultConvolveOptions() is used.
func (T *Transitions) Convolve(O *ConvolveOptions) (*Spectrum, error) {
	if O == nil {
		O = DefaultConvolveOptions()
	}
	if O.FWHM <= 0 {
		c := *O
		c.FWHM = 15
		O = &c
	}
	profile, width, clip := O.profile()
	x := O.grid()
	if len(x) == 0 {
		return nil, newError(EmptyGrid, "", "Convolve", false)
	}
	message(T.verbose(), fmt.Sprintf("USING %s LINE PROFILES", strings.ToUpper(profile)),
		fmt.Sprintf("GRID: (XMIN,XMAX)=(%.3f, %.3f); %d POINTS", x[0], x[len(x)-1], len(x)),
		fmt.Sprintf("FWHM: %g /cm", O.FWHM))
	uids := T.UIDs
	spectra, err := parallel(len(uids), O.Workers, func(i int) ([]float64, error) {
		return convolveModes(T.Modes[uids[i]], x, profile, width, clip), nil
	})
	if err != nil {
		return nil, errDecorate(err, "Convolve")
	}
	S := &Spectrum{Data: T.Data, Grid: x, Intensities: make(map[int][]float64, len(uids)),
		Profile: profile, FWHM: O.FWHM, Shift: T.shift}
	S.UIDs = append([]int(nil), uids...)
	S.Units.Ordinate = Unit{Label: "radiant energy", Str: "erg cm mol$^{-1}$"}
	if T.Model.Type == "" || T.Model.Type == ZeroKelvin {
		S.Units.Ordinate = Unit{Label: "cross-section", Str: "cm$^{2}$/mol"}
	}
	for i, uid := range uids {
		S.Intensities[uid] = spectra[i]
	}
	return S, nil
}

//String returns a printout of the transitions.
func (T *Transitions) String() string {
	var b strings.Builder
	theoretical := strings.Contains(T.Type, "theoretical")
	for _, uid := range T.UIDs {
		b.WriteString(strings.Repeat("=", 55) + "\n")
		fmt.Fprintf(&b, "TRANSITIONS\nUID: %d\n", uid)
		fmt.Fprintf(&b, "%-20.20s  %-20.20s", T.Units.Abscissa.String(), T.Units.Ordinate.String())
		if theoretical {
			b.WriteString("  symmetry  scale")
		}
		b.WriteString("\n")
		for _, m := range T.Modes[uid] {
			fmt.Fprintf(&b, "%-20g  %-20g", m.Frequency, m.Intensity)
			if theoretical {
				fmt.Fprintf(&b, "  %-8.8s  %g", m.Symmetry, m.Scale)
			}
			b.WriteString("\n")
		}
		b.WriteString(strings.Repeat("=", 55) + "\n")
	}
	return b.String()
}

//Write writes the transitions to filename as an IPAC table. If filename is empty,
//transitions.tbl is used.
func (T *Transitions) Write(filename string) error {
	tbl := T.header("transitions")
	var uids []int
	var freq, inten, scale []float64
	var sym []string
	for _, uid := range T.UIDs {
		for _, m := range T.Modes[uid] {
			uids = append(uids, uid)
			freq = append(freq, m.Frequency)
			inten = append(inten, m.Intensity)
			scale = append(scale, m.Scale)
			sym = append(sym, m.Symmetry)
		}
	}
	tbl.AddInts("UID", "", uids)
	tbl.AddFloats("FREQUENCY", "cm-1", freq)
	tbl.AddFloats("INTENSITY", T.Units.Ordinate.Str, inten)
	if strings.Contains(T.Type, "theoretical") {
		tbl.AddFloats("SCALE", "", scale)
		tbl.AddStrings("SYMMETRY", "", sym)
	}
	return errDecorate(writeTable(tbl, filename, "transitions"), "Write")
}
