/*
 * commands_test.go, part of gopahdb.
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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDB = "../../test/theoretical.xml"

//run executes the program with args, plus the flags that keep it quiet and
//away from the network, and returns its output.
func run(Te *testing.T, args ...string) (string, error) {
	Te.Helper()
	Te.Setenv("AMESPAHDEFAULTDB", "")
	Te.Setenv("AMESPAHWORKERS", "")
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--db", testDB, "--no-check", "--cache-dir", Te.TempDir(), "-q"))
	err := cmd.Execute()
	return out.String(), err
}

func TestInfo(Te *testing.T) {
	out, err := run(Te, "info")
	require.NoError(Te, err)
	assert.Contains(Te, out, "species:  5")
	assert.Contains(Te, out, "theoretical")
}

func TestSearchCmd(Te *testing.T) {
	out, err := run(Te, "search", "c<=20", "neutral", "n=0")
	require.NoError(Te, err)
	assert.Contains(Te, out, "    18  C6H6")
	assert.Contains(Te, out, "2 species")
	_, err = run(Te, "search", "c<")
	assert.Error(Te, err)
}

func TestConvolveCmd(Te *testing.T) {
	dir := Te.TempDir()
	out := filepath.Join(dir, "coadded.tbl")
	html := filepath.Join(dir, "coadded.html")
	_, err := run(Te, "convolve", "--uids", "18,73", "--coadd", "--npoints", "100", "-o", out, "--plot", html)
	require.NoError(Te, err)
	for _, f := range []string{out, html} {
		info, err := os.Stat(f)
		require.NoError(Te, err)
		assert.Greater(Te, info.Size(), int64(0))
	}
	_, err = run(Te, "convolve", "--uids", "18", "--query", "c<20")
	assert.Error(Te, err)
}

func TestTransitionsCmd(Te *testing.T) {
	out := filepath.Join(Te.TempDir(), "transitions.tbl")
	_, err := run(Te, "transitions", "--uids", "73", "--model", "fixed", "--temperature", "600", "-o", out)
	require.NoError(Te, err)
	b, err := os.ReadFile(out)
	require.NoError(Te, err)
	assert.Contains(Te, string(b), "fixedtemperature_m")
}

func TestGeometryCmd(Te *testing.T) {
	dir := Te.TempDir()
	out, err := run(Te, "geometry", "--uids", "18,73", "--xyz", dir)
	require.NoError(Te, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(Te, lines, 3)
	assert.Contains(Te, lines[1], "78.1136")
	assert.Contains(Te, lines[1], "5.0900")
	assert.Contains(Te, lines[2], "10.1800")
	_, err = os.Stat(filepath.Join(dir, "73.xyz"))
	assert.NoError(Te, err)
}

func TestFitCmd(Te *testing.T) {
	dir := Te.TempDir()
	cat := filepath.Join(dir, "catalog.db")
	metrics := filepath.Join(dir, "metrics.prom")
	_, err := run(Te, "fit", "../../test/observation.tbl", "-o", dir, "--samples", "4",
		"--catalog", cat, "--metrics-file", metrics)
	require.NoError(Te, err)
	for _, f := range []string{"observation_fitted.tbl", "observation_results.tbl", "observation_mcfitted.tbl", "observation_statistics.txt", "observation_weights.json"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(Te, err, f)
	}
	//The fitted tables carry the id of the run.
	fitted, err := os.ReadFile(filepath.Join(dir, "observation_fitted.tbl"))
	require.NoError(Te, err)
	results, err := os.ReadFile(filepath.Join(dir, "observation_results.tbl"))
	require.NoError(Te, err)
	id := regexp.MustCompile(`\\RUN = '([0-9a-f-]{36})'`).FindSubmatch(fitted)
	require.Len(Te, id, 2)
	assert.Contains(Te, string(results), string(id[1]))

	b, err := os.ReadFile(metrics)
	require.NoError(Te, err)
	assert.Contains(Te, string(b), `pahdb_fits_total{method="NNLC"} 1`)
	_, err = os.Stat(cat)
	assert.NoError(Te, err)

	_, err = run(Te, "fit", filepath.Join(dir, "*.fits"))
	assert.Error(Te, err)
}
