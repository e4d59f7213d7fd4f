/*
 * catalog_test.go, part of gopahdb.
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

package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pahdb "github.com/rmera/gopahdb"
)

func testFit(Te *testing.T) *pahdb.Fitted {
	Te.Helper()
	S := pahdb.NewSpectrum([]float64{1, 2, 3}, map[int][]float64{5: {1, 0, 0}, 7: {0, 1, 1}}, nil)
	S.Type, S.Version = "theoretical", "3.20"
	f, err := S.FitArrays([]float64{2, 3, 3}, nil)
	require.NoError(Te, err)
	return f
}

func TestSaveFit(Te *testing.T) {
	ctx := context.Background()
	path := filepath.Join(Te.TempDir(), "catalog.db")
	C, err := Open(path)
	require.NoError(Te, err)
	defer C.Close()

	f := testFit(Te)
	start := time.Now()
	id, err := C.SaveFit(ctx, Run{Observation: "ngc7023.tbl"}, f)
	require.NoError(Te, err)
	created := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	id2, err := C.SaveFit(ctx, Run{UUID: "fixed", Observation: "orion.tbl", Created: created}, f)
	require.NoError(Te, err)
	assert.Greater(Te, id2, id)

	runs, err := C.Runs(ctx)
	require.NoError(Te, err)
	require.Len(Te, runs, 2)
	assert.Equal(Te, id, runs[0].ID)
	assert.Equal(Te, "ngc7023.tbl", runs[0].Observation)
	_, err = uuid.Parse(runs[0].UUID)
	assert.NoError(Te, err)
	assert.Equal(Te, pahdb.NNLS, runs[0].Method)
	assert.Equal(Te, "theoretical", runs[0].DBType)
	assert.Equal(Te, "3.20", runs[0].DBVersion)
	assert.InDelta(Te, 0, runs[0].Err, 1e-9)
	assert.WithinDuration(Te, start, runs[0].Created, time.Minute)
	assert.Equal(Te, "fixed", runs[1].UUID)
	assert.True(Te, created.Equal(runs[1].Created))

	w, err := C.Weights(ctx, id)
	require.NoError(Te, err)
	require.Len(Te, w, 2)
	assert.InDelta(Te, 2, w[5], 1e-9)
	assert.InDelta(Te, 3, w[7], 1e-9)

	b, err := C.Breakdown(ctx, id2)
	require.NoError(Te, err)
	assert.Len(Te, b, len(f.GetBreakdown(0, false)))
	assert.Contains(Te, b, "neutral")
	assert.InDelta(Te, 0, b["err"], 1e-9)

	w, err = C.Weights(ctx, 9999)
	require.NoError(Te, err)
	assert.Empty(Te, w)
}

func TestDuplicateUUID(Te *testing.T) {
	ctx := context.Background()
	C, err := Open(filepath.Join(Te.TempDir(), "catalog.db"))
	require.NoError(Te, err)
	defer C.Close()
	f := testFit(Te)
	_, err = C.SaveFit(ctx, Run{UUID: "same"}, f)
	require.NoError(Te, err)
	_, err = C.SaveFit(ctx, Run{UUID: "same"}, f)
	assert.Error(Te, err)
	//The failed run left nothing behind.
	runs, err := C.Runs(ctx)
	require.NoError(Te, err)
	assert.Len(Te, runs, 1)
}

func TestReopen(Te *testing.T) {
	ctx := context.Background()
	path := filepath.Join(Te.TempDir(), "catalog.db")
	C, err := Open(path)
	require.NoError(Te, err)
	_, err = C.SaveFit(ctx, Run{Observation: "a.tbl"}, testFit(Te))
	require.NoError(Te, err)
	require.NoError(Te, C.Close())

	C, err = Open(path)
	require.NoError(Te, err)
	defer C.Close()
	runs, err := C.Runs(ctx)
	require.NoError(Te, err)
	require.Len(Te, runs, 1)
	assert.Equal(Te, "a.tbl", runs[0].Observation)
}

func TestOpenBadPath(Te *testing.T) {
	_, err := Open(filepath.Join(Te.TempDir(), "missing", "dir", "catalog.db"))
	assert.Error(Te, err)
}
