/*
 * colors.go, part of gopahdb.
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
	"image/color"
	"math"
)

//Fixed colors for the species classes.
var classColors = map[string]color.RGBA{
	"anion":    {R: 220, G: 40, B: 40, A: 255},
	"neutral":  {R: 40, G: 160, B: 40, A: 255},
	"cation":   {R: 40, G: 80, B: 220, A: 255},
	"small":    {R: 230, G: 140, B: 20, A: 255},
	"large":    {R: 120, G: 40, B: 180, A: 255},
	"pure":     {R: 20, G: 160, B: 170, A: 255},
	"nitrogen": {R: 200, G: 60, B: 160, A: 255},
	"fit":      {R: 30, G: 30, B: 30, A: 255},
	"observed": {R: 120, G: 120, B: 120, A: 255},
}

//hsv2RGB takes hue (0-360), v and s (0-1), returns r,g,b (0-255)
func hsv2RGB(h, v, s float64) (uint8, uint8, uint8) {
	const maxcolor = 255.0
	if s == 0.0 {
		c := uint8(maxcolor * v)
		return c, c, c
	}
	h = h / 60
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	var r, g, b float64
	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default: //case 5
		r, g, b = v, p, q
	}
	return uint8(r * maxcolor), uint8(g * maxcolor), uint8(b * maxcolor)
}

//colors returns the color number key of a palette of steps colors, going
//from red to violet while skipping the hard-to-see yellows.
func colors(key, steps int) color.RGBA {
	if steps < 1 {
		steps = 1
	}
	norm := 260.0 / float64(steps)
	hp := float64(key)*norm + 20.0
	h := hp + 20.0
	if hp < 55 {
		h = hp - 20.0
	}
	r, g, b := hsv2RGB(h, 0.9, 1)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
