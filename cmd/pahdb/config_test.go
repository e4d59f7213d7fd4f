/*
 * config_test.go, part of gopahdb.
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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `database: /data/theoretical.xml
workers: 2
uids: [18, 73]
emission:
  model: cascade
  energy: 8
convolve:
  profile: Gaussian
  fwhm: 20
fit:
  samples: 64
  plot: png
`

func writeConfig(Te *testing.T, content string) string {
	Te.Helper()
	path := filepath.Join(Te.TempDir(), "pahdb.yaml")
	require.NoError(Te, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(Te *testing.T) {
	Te.Setenv("AMESPAHDEFAULTDB", "")
	Te.Setenv("AMESPAHCACHEDIR", "")
	Te.Setenv("AMESPAHWORKERS", "")
	cfg, err := LoadConfig("")
	require.NoError(Te, err)
	assert.Equal(Te, DefaultConfig(), cfg)
	require.NoError(Te, cfg.Validate())
}

func TestLoadConfigYAML(Te *testing.T) {
	Te.Setenv("AMESPAHDEFAULTDB", "")
	Te.Setenv("AMESPAHWORKERS", "")
	cfg, err := LoadConfig(writeConfig(Te, testConfig))
	require.NoError(Te, err)
	assert.Equal(Te, "/data/theoretical.xml", cfg.Database)
	assert.Equal(Te, 2, cfg.Workers)
	assert.Equal(Te, []int{18, 73}, cfg.UIDs)
	assert.Equal(Te, "cascade", cfg.Emission.Model)
	assert.Equal(Te, 8.0, cfg.Emission.Energy)
	assert.Equal(Te, "Gaussian", cfg.Convolve.Profile)
	assert.Equal(Te, 20.0, cfg.Convolve.FWHM)
	//Values not in the file keep their defaults.
	assert.Equal(Te, 4000.0, cfg.Convolve.XMax)
	assert.Equal(Te, 400, cfg.Convolve.NPoints)
	assert.Equal(Te, 64, cfg.Fit.Samples)
	assert.Equal(Te, ".", cfg.Fit.Output)
	require.NoError(Te, cfg.Validate())
}

func TestLoadConfigEmptyFile(Te *testing.T) {
	cfg, err := LoadConfig(writeConfig(Te, ""))
	require.NoError(Te, err)
	assert.Equal(Te, "zerokelvin", cfg.Emission.Model)
}

func TestLoadConfigUnknownField(Te *testing.T) {
	_, err := LoadConfig(writeConfig(Te, "databse: typo.xml\n"))
	assert.Error(Te, err)
}

func TestLoadConfigMissingFile(Te *testing.T) {
	_, err := LoadConfig(filepath.Join(Te.TempDir(), "nothere.yaml"))
	assert.Error(Te, err)
}

func TestLoadConfigEnv(Te *testing.T) {
	Te.Setenv("AMESPAHDEFAULTDB", "/env/experimental.xml")
	Te.Setenv("AMESPAHCACHEDIR", "/env/cache")
	Te.Setenv("AMESPAHWORKERS", "3")
	cfg, err := LoadConfig(writeConfig(Te, testConfig))
	require.NoError(Te, err)
	assert.Equal(Te, "/env/experimental.xml", cfg.Database)
	assert.Equal(Te, "/env/cache", cfg.CacheDir)
	assert.Equal(Te, 3, cfg.Workers)
	assert.Equal(Te, "cascade", cfg.Emission.Model)
}

func TestApplyFlags(Te *testing.T) {
	Te.Setenv("AMESPAHDEFAULTDB", "")
	Te.Setenv("AMESPAHWORKERS", "")
	a := &app{flags: *DefaultConfig()}
	cmd := a.fitCmd()
	require.NoError(Te, cmd.Flags().Parse([]string{"--fwhm", "30", "--model", "fixed", "--temperature", "800", "--samples", "10"}))
	cfg, err := LoadConfig(writeConfig(Te, testConfig))
	require.NoError(Te, err)
	applyFlags(cmd, cfg, &a.flags)
	assert.Equal(Te, 30.0, cfg.Convolve.FWHM)
	assert.Equal(Te, "fixed", cfg.Emission.Model)
	assert.Equal(Te, 800.0, cfg.Emission.Temperature)
	assert.Equal(Te, 10, cfg.Fit.Samples)
	//Flags not given don't override the file.
	assert.Equal(Te, "Gaussian", cfg.Convolve.Profile)
	assert.Equal(Te, "png", cfg.Fit.Plot)
	assert.Equal(Te, []int{18, 73}, cfg.UIDs)
}

func TestValidate(Te *testing.T) {
	cases := map[string]func(*Config){
		"model":   func(c *Config) { c.Emission.Model = "hot" },
		"profile": func(c *Config) { c.Convolve.Profile = "voigt" },
		"both":    func(c *Config) { c.Query = "c<20"; c.UIDs = []int{1} },
	}
	for name, change := range cases {
		cfg := DefaultConfig()
		change(cfg)
		assert.Error(Te, cfg.Validate(), name)
	}
	cfg := DefaultConfig()
	cfg.Convolve.Profile = "drude"
	assert.NoError(Te, cfg.Validate())
}

func TestExpand(Te *testing.T) {
	dir := Te.TempDir()
	for _, name := range []string{"a.tbl", "sub/b.tbl", "sub/deeper/c.tbl", "sub/d.txt"} {
		p := filepath.Join(dir, name)
		require.NoError(Te, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(Te, os.WriteFile(p, nil, 0o644))
	}
	files, err := expand([]string{filepath.Join(dir, "**", "*.tbl"), filepath.Join(dir, "a.tbl")})
	require.NoError(Te, err)
	assert.Equal(Te, []string{
		filepath.Join(dir, "a.tbl"),
		filepath.Join(dir, "sub", "b.tbl"),
		filepath.Join(dir, "sub", "deeper", "c.tbl"),
	}, files)
	_, err = expand([]string{filepath.Join(dir, "*.fits")})
	assert.Error(Te, err)
}
