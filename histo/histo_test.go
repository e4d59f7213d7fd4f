/*
 * histo_test.go, part of gopahdb.
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

package histo

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoCounts(Te *testing.T) {
	rawdata := []float64{1, 6, 3, 2, 4, 5, 7, 6, 3.5, 3, 5, 1, 1, 0, 0, 5, 8, 1, 2, 3, 44, 3, 7, 3, 1, 3, 5, 32, 1}
	D := NewData([]float64{0, 1, 2, 3, 4, 8}, rawdata, 7)
	assert.Equal(Te, 7, D.ID())
	//8, 44 and 32 are at or beyond the last divider.
	assert.Equal(Te, len(rawdata)-3, D.Total())
	assert.Equal(Te, []float64{2, 6, 2, 7, 9}, D.View())
	assert.Equal(Te, 29, len(rawdata), "raw data must not be trimmed")
	assert.Equal(Te, []float64{0.5, 1.5, 2.5, 3.5, 6}, D.Centers())
	assert.Equal(Te, 6.0, D.Mode())
	assert.False(Te, D.Normalized())
	D.Normalize()
	assert.True(Te, D.Normalized())
	assert.InDeltaSlice(Te, []float64{2.0 / 26, 6.0 / 26, 2.0 / 26, 7.0 / 26, 9.0 / 26}, D.View(), 1e-12)
	//A second call changes nothing.
	D.Normalize()
	assert.InDelta(Te, 9.0/26, D.View()[4], 1e-12)
	assert.Equal(Te, 6.0, D.Mode())
	assert.Equal(Te, -1, NewData([]float64{0, 1}, nil).ID())
}

func TestDividers(Te *testing.T) {
	w := []float64{0.1, 0.2, 0.2, 0.9}
	d := Dividers(w, 4)
	require.Len(Te, d, 5)
	assert.Equal(Te, 0.1, d[0])
	D := NewData(d, w)
	assert.Equal(Te, len(w), D.Total())
	same := Dividers([]float64{0, 0, 0}, 2)
	assert.Equal(Te, 3, NewData(same, []float64{0, 0, 0}).Total())
	empty := NewData(same, nil)
	assert.True(Te, math.IsNaN(empty.Mode()))
	empty.Normalize()
	assert.False(Te, empty.Normalized())
	assert.Len(Te, Dividers(nil, 0), 2)
}

func TestSetJSON(Te *testing.T) {
	S := NewSet([]float64{0, 1, 2, 3})
	S.Add(18, []float64{0.5, 1.5, 1.7})
	S.Add(2, []float64{2.5})
	S.Add(5, nil)
	assert.Equal(Te, []int{2, 5, 18}, S.IDs())
	assert.Equal(Te, []float64{1, 2, 0}, S.Get(18).View())
	assert.Nil(Te, S.Get(3))
	S.NormalizeAll()
	assert.InDeltaSlice(Te, []float64{1.0 / 3, 2.0 / 3, 0}, S.Get(18).View(), 1e-12)

	j, err := json.Marshal(S)
	require.NoError(Te, err)
	var decoded struct {
		Dividers []float64 `json:"dividers"`
		Histos   []struct {
			ID         int       `json:"id"`
			Normalized bool      `json:"normalized"`
			Total      int       `json:"total"`
			Mode       *float64  `json:"mode"`
			Histo      []float64 `json:"histo"`
		} `json:"histograms"`
	}
	require.NoError(Te, json.Unmarshal(j, &decoded))
	assert.Equal(Te, []float64{0, 1, 2, 3}, decoded.Dividers)
	require.Len(Te, decoded.Histos, 3)
	assert.Equal(Te, 2, decoded.Histos[0].ID)
	assert.Equal(Te, 2.5, *decoded.Histos[0].Mode)
	assert.Nil(Te, decoded.Histos[1].Mode, "an empty histogram has no mode")
	assert.Equal(Te, 18, decoded.Histos[2].ID)
	assert.True(Te, decoded.Histos[2].Normalized)
	assert.Equal(Te, 3, decoded.Histos[2].Total)
	assert.Equal(Te, 1.5, *decoded.Histos[2].Mode)
}
