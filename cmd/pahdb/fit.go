/*
 * fit.go, part of gopahdb.
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
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	pahdb "github.com/rmera/gopahdb"
	"github.com/rmera/gopahdb/catalog"
	"github.com/rmera/gopahdb/observation"
	"github.com/rmera/gopahdb/pahplot"
)

const debounce = 500 * time.Millisecond

//metrics are the counters written to the metrics file after each fit.
type metrics struct {
	registry *prometheus.Registry
	fits     *prometheus.CounterVec
	failures prometheus.Counter
	duration prometheus.Histogram
	residual *prometheus.GaugeVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		fits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pahdb_fits_total",
			Help: "Number of spectral fits done, by method.",
		}, []string{"method"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pahdb_fit_failures_total",
			Help: "Number of observations that could not be fitted.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pahdb_fit_duration_seconds",
			Help:    "Time taken to fit one observation, including the Monte Carlo samples.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		residual: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pahdb_fit_error",
			Help: "Relative error of the last fit of each observation.",
		}, []string{"observation"}),
	}
	m.registry.MustRegister(m.fits, m.failures, m.duration, m.residual)
	return m
}

//fitter fits observations against the transitions selected by the configuration.
type fitter struct {
	a       *app
	db      *pahdb.DB
	T       *pahdb.Transitions
	catalog *catalog.Catalog
	metrics *metrics
}

func (a *app) fitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit [OBSERVATION...]",
		Short: "Decompose observed spectra into database spectra",
		Long: `fit reads each observation (IPAC table or ASCII columns; glob patterns,
including **, are expanded), convolves the selected transitions onto its
grid and fits it with non-negative least squares. With --samples, the
observation is also fitted that many times, perturbed within its
uncertainties, to estimate the uncertainties of the breakdown.

The results are written to the output directory as <name>_results.tbl,
<name>_fitted.tbl and, for Monte Carlo fits, <name>_mcfitted.tbl and
<name>_statistics.txt. With --catalog, each fit is also stored in an SQLite
catalog. With --watch, the observations are fitted again whenever they
change, until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				a.cfg.Fit.Observations = args
			}
			if len(a.cfg.Fit.Observations) == 0 {
				return fmt.Errorf("no observations given")
			}
			return a.runFit(cmd.Context())
		},
	}
	a.selectionFlags(cmd)
	a.modelFlags(cmd, true)
	f := cmd.Flags()
	f.IntVar(&a.flags.Fit.Samples, "samples", 0, "number of Monte Carlo samples (0 for none)")
	f.BoolVar(&a.flags.Fit.Uniform, "uniform", false, "perturb the Monte Carlo samples uniformly, instead of normally")
	f.StringVarP(&a.flags.Fit.Output, "output", "o", ".", "directory for the results")
	f.StringVar(&a.flags.Fit.Plot, "plot", "", "extension (png, pdf, svg...) of the plots to write, none if empty")
	f.StringVar(&a.flags.Fit.Kind, "kind", "uids", "components drawn in the plots: uids, charge, size or composition")
	f.StringVar(&a.flags.Fit.Catalog, "catalog", "", "SQLite catalog where to store the fits")
	f.StringVar(&a.flags.Fit.MetricsFile, "metrics-file", "", "file where to write Prometheus metrics after each fit")
	f.BoolVar(&a.flags.Fit.Watch, "watch", false, "fit the observations again when they change")
	return cmd
}

//expand returns the files matching the patterns, sorted and without repetitions.
func expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var r []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", p)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				r = append(r, m)
			}
		}
	}
	sort.Strings(r)
	return r, nil
}

func (a *app) runFit(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	files, err := expand(a.cfg.Fit.Observations)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(a.cfg.Fit.Output, 0o755); err != nil {
		return err
	}
	db, err := a.open()
	if err != nil {
		return err
	}
	T, err := a.transitions(db)
	if err != nil {
		return err
	}
	F := &fitter{a: a, db: db, T: T, metrics: newMetrics()}
	if a.cfg.Fit.Catalog != "" {
		if F.catalog, err = catalog.Open(a.cfg.Fit.Catalog); err != nil {
			return err
		}
		defer F.catalog.Close()
	}
	var failed int
	for _, file := range files {
		if err := F.fitFile(ctx, file); err != nil {
			log.Printf("%s: %v", file, err)
			failed++
		}
	}
	if !a.cfg.Fit.Watch {
		if failed > 0 {
			return fmt.Errorf("%d of %d observations could not be fitted", failed, len(files))
		}
		return nil
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return F.watch(ctx, files)
}

//fitFile fits the observation in file, and writes and records the results.
func (F *fitter) fitFile(ctx context.Context, file string) (err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			F.metrics.failures.Inc()
		}
		F.writeMetrics()
	}()
	obs, err := observation.Read(file)
	if err != nil {
		return err
	}
	if err := obs.AbscissaUnitsTo("1/cm"); err != nil {
		return err
	}
	S, err := F.T.Convolve(F.a.convolveOptions(obs.Grid()))
	if err != nil {
		return err
	}
	fc := F.a.cfg.Fit
	base := filepath.Join(fc.Output, strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)))
	fit, err := S.Fit(obs)
	if err != nil {
		return err
	}
	fit.Run = uuid.NewString()
	if err := fit.Write(base + "_fitted.tbl"); err != nil {
		return err
	}
	if err := fit.WriteResults(base); err != nil {
		return err
	}
	if fc.Plot != "" {
		O := pahplot.FitPlotOptions{Residual: true, Kind: fc.Kind, Small: pahdb.DefaultSmall}
		if err := pahplot.Fit(fit, base+"_fit."+fc.Plot, O); err != nil {
			return err
		}
	}
	F.metrics.fits.WithLabelValues(fit.Method).Inc()
	F.metrics.residual.WithLabelValues(filepath.Base(file)).Set(fit.GetBreakdown(pahdb.DefaultSmall, false)["err"])
	if fc.Samples > 0 {
		if err := F.mcFit(S, obs, base); err != nil {
			return err
		}
	}
	F.metrics.duration.Observe(time.Since(start).Seconds())
	if F.catalog == nil {
		return nil
	}
	id, err := F.catalog.SaveFit(ctx, catalog.Run{UUID: fit.Run, Observation: file}, fit)
	if err != nil {
		return err
	}
	log.Printf("%s: stored as run %d", file, id)
	return nil
}

func (F *fitter) mcFit(S *pahdb.Spectrum, obs pahdb.Observed, base string) error {
	fc := F.a.cfg.Fit
	O := pahdb.DefaultMCOptions()
	O.Samples, O.Uniform = fc.Samples, fc.Uniform
	if F.a.cfg.Workers > 0 {
		O.Workers = F.a.cfg.Workers
	}
	mc, err := S.MCFit(obs, O)
	if errors.Is(err, pahdb.ErrNoUncertainties) {
		log.Printf("%s: no uncertainties, skipping the Monte Carlo fit", base)
		return nil
	}
	if err != nil {
		return err
	}
	F.metrics.fits.WithLabelValues("MC" + pahdb.NNLC).Inc()
	if err := mc.Write(base + "_mcfitted.tbl"); err != nil {
		return err
	}
	f, err := os.Create(base + "_statistics.txt")
	if err != nil {
		return err
	}
	if err := mc.WriteStatistics(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	h, err := os.Create(base + "_weights.json")
	if err != nil {
		return err
	}
	if err := mc.WriteHistograms(h, 0); err != nil {
		h.Close()
		return err
	}
	if err := h.Close(); err != nil {
		return err
	}
	if fc.Plot == "" {
		return nil
	}
	if err := pahplot.WeightHistograms(mc.WeightHistograms(0), base+"_weights."+fc.Plot); err != nil {
		return err
	}
	return pahplot.MCFit(mc, base+"_mcfit."+fc.Plot, fc.Kind)
}

func (F *fitter) writeMetrics() {
	if F.a.cfg.Fit.MetricsFile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(F.a.cfg.Fit.MetricsFile, F.metrics.registry); err != nil {
		log.Printf("writing metrics: %v", err)
	}
}

//watch fits the files again whenever they are written, until ctx is done.
//Changes are collected for debounce before fitting.
func (F *fitter) watch(ctx context.Context, files []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	watched := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watching %s: %w", d, err)
		}
	}
	log.Printf("watching %d observations, interrupt to stop", len(files))
	pending := make(map[string]bool)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if abs, err := filepath.Abs(ev.Name); err == nil && watched[abs] {
				pending[abs] = true
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher error: %v", err)
		case <-ticker.C:
			for _, f := range sortedKeys(pending) {
				delete(pending, f)
				if err := F.fitFile(ctx, f); err != nil {
					log.Printf("%s: %v", f, err)
				}
			}
		}
	}
}

func sortedKeys(m map[string]bool) []string {
	r := make([]string, 0, len(m))
	for k := range m {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}
