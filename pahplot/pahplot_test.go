/*
 * pahplot_test.go, part of gopahdb.
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

package pahplot

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pahdb "github.com/rmera/gopahdb"
	"github.com/rmera/gopahdb/observation"
)

func testDB(Te *testing.T) *pahdb.DB {
	Te.Helper()
	O := pahdb.DefaultOptions()
	O.CacheDir(Te.TempDir())
	O.Check(false)
	O.Verbose(false)
	db, err := pahdb.Open("../test/theoretical.xml", O)
	require.NoError(Te, err)
	return db
}

func exists(Te *testing.T, filename string) {
	Te.Helper()
	info, err := os.Stat(filename)
	require.NoError(Te, err)
	assert.Greater(Te, info.Size(), int64(0), filename)
}

func TestTransitionsAndSpectrum(Te *testing.T) {
	db := testDB(Te)
	T := db.TransitionsByUID(18, 73)
	dir := Te.TempDir()
	require.NoError(Te, Transitions(T, filepath.Join(dir, "transitions.png")))
	exists(Te, filepath.Join(dir, "transitions.png"))

	S, err := T.Convolve(nil)
	require.NoError(Te, err)
	require.NoError(Te, Spectrum(S, filepath.Join(dir, "spectrum.svg")))
	exists(Te, filepath.Join(dir, "spectrum.svg"))
	//No extension means png.
	require.NoError(Te, Spectrum(S, filepath.Join(dir, "noext")))
	exists(Te, filepath.Join(dir, "noext.png"))
}

func TestSpectrumHTML(Te *testing.T) {
	db := testDB(Te)
	S, err := db.TransitionsByUID(18, 73).Convolve(nil)
	require.NoError(Te, err)
	var buf bytes.Buffer
	require.NoError(Te, SpectrumHTML(S, &buf))
	html := buf.String()
	assert.Contains(Te, html, "PAH spectrum")
	assert.Contains(Te, html, "UID 18")
	assert.Contains(Te, html, "UID 73")
}

//fitted returns a fit of the total spectrum of three species to itself,
//with 5% uncertainties.
func fitted(Te *testing.T) (*pahdb.Spectrum, *observation.Observation) {
	Te.Helper()
	db := testDB(Te)
	O := pahdb.DefaultConvolveOptions()
	O.XRange = [2]float64{500, 3200}
	O.NPoints = 200
	S, err := db.TransitionsByUID(18, 74, 601).Convolve(O)
	require.NoError(Te, err)
	flux := S.Total()
	sigma := make([]float64, len(flux))
	for i, f := range flux {
		sigma[i] = 0.05*f + 1e-3
	}
	return S, &observation.Observation{Abscissa: S.Grid, Ordinate: flux, Sigma: sigma}
}

func TestFit(Te *testing.T) {
	S, obs := fitted(Te)
	F, err := S.Fit(obs)
	require.NoError(Te, err)
	dir := Te.TempDir()
	for _, kind := range []string{"", ByUID, ByCharge, BySize, ByComposition} {
		name := filepath.Join(dir, "fit"+kind+".png")
		require.NoError(Te, Fit(F, name, FitPlotOptions{Kind: kind}), kind)
		exists(Te, name)
	}
	name := filepath.Join(dir, "wave.pdf")
	require.NoError(Te, Fit(F, name, FitPlotOptions{Wavelength: true, Residual: true}))
	exists(Te, name)
	exists(Te, filepath.Join(dir, "wave_residual.pdf"))
	assert.Error(Te, Fit(F, filepath.Join(dir, "bad.png"), FitPlotOptions{Kind: "mass"}))
}

func TestMCFit(Te *testing.T) {
	S, obs := fitted(Te)
	M, err := S.MCFit(obs, &pahdb.MCOptions{Samples: 8, Workers: 2})
	require.NoError(Te, err)
	dir := Te.TempDir()
	require.NoError(Te, MCFit(M, filepath.Join(dir, "mc.png"), ""))
	exists(Te, filepath.Join(dir, "mc.png"))
	require.NoError(Te, MCFit(M, filepath.Join(dir, "mcsize.png"), BySize))
	assert.Error(Te, MCFit(M, filepath.Join(dir, "bad.png"), "mass"))

	set := M.WeightHistograms(10)
	require.NotEmpty(Te, set.IDs())
	name := filepath.Join(dir, "weights.svg")
	require.NoError(Te, WeightHistograms(set, name))
	exists(Te, name)
	for _, uid := range set.IDs() {
		assert.True(Te, set.Get(uid).Normalized(), "UID %d", uid)
	}
}

func TestXYs(Te *testing.T) {
	pts := xys([]float64{1000, 0, 2000, 500}, []float64{1, 2, math.NaN(), 4}, true)
	require.Len(Te, pts, 2)
	assert.Equal(Te, 10.0, pts[0].X)
	assert.Equal(Te, 1.0, pts[0].Y)
	assert.Equal(Te, 20.0, pts[1].X)
	pts = xys([]float64{3, 1, 2}, []float64{30, 10, 20}, false)
	assert.Equal(Te, []float64{1, 2, 3}, []float64{pts[0].X, pts[1].X, pts[2].X})
	assert.Equal(Te, 20.0, pts[1].Y)
}

func TestColors(Te *testing.T) {
	seen := make(map[[3]uint8]bool)
	for i := 0; i < 6; i++ {
		c := colors(i, 6)
		assert.Equal(Te, uint8(255), c.A)
		seen[[3]uint8{c.R, c.G, c.B}] = true
	}
	assert.Len(Te, seen, 6)
	r, g, b := hsv2RGB(0, 1, 0)
	assert.Equal(Te, [3]uint8{255, 255, 255}, [3]uint8{r, g, b})
	//The value scales the channels once.
	r, g, b = hsv2RGB(0, 0.5, 1)
	assert.Equal(Te, [3]uint8{127, 0, 0}, [3]uint8{r, g, b})
	r, g, b = hsv2RGB(120, 0.9, 1)
	assert.Equal(Te, [3]uint8{0, 229, 0}, [3]uint8{r, g, b})
}
