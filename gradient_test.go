/*
Copyright © 2013 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package spheremesh

import (
	"math"
	"testing"
)

// buildRegularCGrid builds a small regular interior patch of T centers
// (halo-padded, (nx+2)*(ny+2)) and C corners ((nx+1)*(ny+1)) on a uniform
// lon/lat lattice, for use by the gradient tests below. It does not touch
// any tile boundary, so the on{West,East,South,North}Edge flags are all
// false for every mesh it returns.
func buildRegularCGrid(nx, ny int, lon0, lat0, dlon, dlat float64) (xt, yt, xc, yc []float64) {
	xt = make([]float64, (nx+2)*(ny+2))
	yt = make([]float64, (nx+2)*(ny+2))
	for j := 0; j < ny+2; j++ {
		for i := 0; i < nx+2; i++ {
			xt[tIdx(nx, i, j)] = lon0 + float64(i-1)*dlon
			yt[tIdx(nx, i, j)] = lat0 + float64(j-1)*dlat
		}
	}
	xc = make([]float64, (nx+1)*(ny+1))
	yc = make([]float64, (nx+1)*(ny+1))
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			xc[cIdx(nx, i, j)] = lon0 + (float64(i)-0.5)*dlon
			yc[cIdx(nx, i, j)] = lat0 + (float64(j)-0.5)*dlat
		}
	}
	return xt, yt, xc, yc
}

// TestGradC2LEastwardField is a sanity check grounded in testable
// property 9: a field that increases linearly eastward and is constant in
// latitude should produce a gradient that points east (positive gradX)
// and has negligible north component, at every interior T-cell of a small
// equatorial patch.
func TestGradC2LEastwardField(t *testing.T) {
	const nx, ny = 4, 4
	xt, yt, xc, yc := buildRegularCGrid(nx, ny, 0, 0, 0.05, 0.05)

	pin := make([]float64, len(xt))
	for k := range pin {
		pin[k] = xt[k]
	}

	gi := CalcC2LGridInfo(nx, ny, xt, yt, xc, yc, false, false, false, false)
	gradX, gradY := GradC2L(nx, ny, pin, gi, false, false, false, false)

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			m := j*nx + i
			if gradX[m] <= 0 {
				t.Errorf("gradX[%d,%d] = %v, want > 0 for an eastward-increasing field", j, i, gradX[m])
			}
			if math.Abs(gradY[m]) > 0.1*gradX[m] {
				t.Errorf("gradY[%d,%d] = %v too large relative to gradX = %v", j, i, gradY[m], gradX[m])
			}
		}
	}
}

// TestGradC2LConstantField checks that a spatially constant field produces
// a zero gradient everywhere.
func TestGradC2LConstantField(t *testing.T) {
	const nx, ny = 4, 4
	xt, yt, xc, yc := buildRegularCGrid(nx, ny, 0, 0, 0.05, 0.05)

	pin := make([]float64, len(xt))
	for k := range pin {
		pin[k] = 7.0
	}

	gi := CalcC2LGridInfo(nx, ny, xt, yt, xc, yc, false, false, false, false)
	gradX, gradY := GradC2L(nx, ny, pin, gi, false, false, false, false)

	for m := range gradX {
		if different(gradX[m], 0, 1e-9) {
			t.Errorf("gradX[%d] = %v, want 0 for a constant field", m, gradX[m])
		}
		if different(gradY[m], 0, 1e-9) {
			t.Errorf("gradY[%d] = %v, want 0 for a constant field", m, gradY[m])
		}
	}
}

func TestMidPtSphereEquator(t *testing.T) {
	lon, lat := MidPtSphere(0, 0, math.Pi/2, 0)
	if different(lon, math.Pi/4, 1e-9) {
		t.Errorf("MidPtSphere lon = %v, want pi/4", lon)
	}
	if different(lat, 0, 1e-12) {
		t.Errorf("MidPtSphere lat = %v, want 0", lat)
	}
}
