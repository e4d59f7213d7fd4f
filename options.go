/*
 * options.go, part of gopahdb.
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
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

//Environment holds the settings that can be given through environment variables.
type Environment struct {
	DefaultDB string `env:"AMESPAHDEFAULTDB"`
	CacheDir  string `env:"AMESPAHCACHEDIR"`
	Workers   int    `env:"AMESPAHWORKERS"`
}

//ParseEnv reads the environment variables used by this package.
func ParseEnv() (*Environment, error) {
	e := new(Environment)
	if err := env.Parse(e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

//Options contains the options for opening a database.
type Options struct {
	cache         bool
	cacheDir      string
	check         bool
	schemaTimeout time.Duration
	verbose       bool
	workers       int
}

//DefaultOptions returns options that cache the parsed database in the
//system's temporary directory (or AMESPAHCACHEDIR, if set), check the
//schema with a 3 s timeout, and use all logical CPUs for the models.
func DefaultOptions() *Options {
	r := new(Options)
	r.cache = true
	r.cacheDir = os.TempDir()
	r.check = true
	r.schemaTimeout = 3 * time.Second
	r.verbose = true
	r.workers = runtime.NumCPU()
	if e, err := ParseEnv(); err == nil {
		if e.CacheDir != "" {
			r.cacheDir = e.CacheDir
		}
		if e.Workers > 0 {
			r.workers = e.Workers
		}
	}
	return r
}

//Cache returns whether the parsed database is cached,
//and sets it to a new value, if given.
func (O *Options) Cache(c ...bool) bool {
	if len(c) > 0 {
		O.cache = c[0]
	}
	return O.cache
}

//CacheDir returns the directory for cache files,
//and sets it to a new value, if given.
func (O *Options) CacheDir(d ...string) string {
	if len(d) > 0 && d[0] != "" {
		O.cacheDir = d[0]
	}
	return O.cacheDir
}

//Check returns whether the schema check is performed,
//and sets it to a new value, if given.
func (O *Options) Check(c ...bool) bool {
	if len(c) > 0 {
		O.check = c[0]
	}
	return O.check
}

//SchemaTimeout returns the timeout for fetching the schema,
//and sets it to a new value, if given.
func (O *Options) SchemaTimeout(t ...time.Duration) time.Duration {
	if len(t) > 0 && t[0] > 0 {
		O.schemaTimeout = t[0]
	}
	return O.schemaTimeout
}

//Verbose returns whether the banner messages are logged,
//and sets it to a new value, if given.
func (O *Options) Verbose(v ...bool) bool {
	if len(v) > 0 {
		O.verbose = v[0]
	}
	return O.verbose
}

//Workers returns the number of goroutines used by the models and the
//convolution, and sets it to a new value, if given.
func (O *Options) Workers(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		O.workers = n[0]
	}
	return O.workers
}

//message logs the lines of a banner, if verbose.
func message(verbose bool, lines ...string) {
	if !verbose {
		return
	}
	log.Println(strings.Repeat("=", 57))
	for _, l := range lines {
		log.Println(l)
	}
	log.Println(strings.Repeat("=", 57))
}
