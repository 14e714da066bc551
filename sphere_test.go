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

// different reports whether a and b differ by more than tol, relative to
// the magnitude of b (or absolutely, if b is 0).
func different(a, b, tol float64) bool {
	if b == 0 {
		return math.Abs(a) > tol
	}
	return math.Abs((a-b)/b) > tol
}

func latLonBox(lon1, lat1, lon2, lat2 float64) ([]float64, []float64) {
	return []float64{lon1, lon2, lon2, lon1}, []float64{lat1, lat1, lat2, lat2}
}

// TestPolyAreaUniformCell is testable property 1: area of an axis-aligned
// lat/lon box equals R^2*(lambda2-lambda1)*(sin(phi2)-sin(phi1)).
func TestPolyAreaUniformCell(t *testing.T) {
	lon1, lon2 := 0.0, math.Pi/2
	lat1, lat2 := -math.Pi/6, math.Pi/6
	x, y := latLonBox(lon1, lat1, lon2, lat2)

	got := PolyArea(x, y) / (Radius * Radius)
	want := (lon2 - lon1) * (math.Sin(lat2) - math.Sin(lat1))
	if different(got, want, 1e-9) {
		t.Errorf("PolyArea/R^2 = %v, want %v", got, want)
	}
}

// TestPolyAreaEquatorialStrip is scenario S3.
func TestPolyAreaEquatorialStrip(t *testing.T) {
	x, y := latLonBox(0, -math.Pi/6, math.Pi/2, math.Pi/6)
	got := PolyAreaNoAdjust(x, y) / (Radius * Radius)
	want := math.Pi / 2
	if different(got, want, 1e-9) {
		t.Errorf("equatorial strip area = %v, want %v", got, want)
	}
}

func TestFixLonIdempotent(t *testing.T) {
	x := []float64{0.1, 0.2, -0.1, -0.2}
	y := []float64{0.1, 0.2, 0.2, 0.1}

	x1, y1, n1 := FixLon(append([]float64(nil), x...), append([]float64(nil), y...), 0)
	x2, y2, n2 := FixLon(append([]float64(nil), x1[:n1]...), append([]float64(nil), y1[:n1]...), 0)
	if n1 != n2 {
		t.Fatalf("FixLon vertex count changed on second pass: %d vs %d", n1, n2)
	}
	for i := 0; i < n1; i++ {
		if different(x1[i], x2[i], 1e-12) || different(y1[i], y2[i], 1e-12) {
			t.Errorf("FixLon is not idempotent at vertex %d: (%v,%v) vs (%v,%v)", i, x1[i], y1[i], x2[i], y2[i])
		}
	}
}

// TestFixLonPolePair checks that FixLon keeps every vertex of a
// quadrilateral whose top edge lies on the pole, and that the resulting
// polar cell has a positive area.
func TestFixLonPolePair(t *testing.T) {
	x := []float64{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2}
	y := []float64{math.Pi/2 - 0.3, math.Pi / 2, math.Pi/2, math.Pi/2 - 0.3}

	xs, ys, n := FixLon(append([]float64(nil), x...), append([]float64(nil), y...), math.Pi)
	if n < len(x) {
		t.Fatalf("FixLon unexpectedly dropped vertices: %d < %d", n, len(x))
	}
	area := PolyArea(xs[:n], ys[:n])
	if area <= 0 {
		t.Errorf("polar cap area should be positive, got %v", area)
	}
}

func TestGreatCircleDistanceQuarterSphere(t *testing.T) {
	d := GreatCircleDistance(0, 0, math.Pi/2, 0)
	want := Radius * math.Pi / 2
	if different(d, want, 1e-9) {
		t.Errorf("GreatCircleDistance = %v, want %v", d, want)
	}
}

func TestSphericalAngleRightTriangle(t *testing.T) {
	v1 := LatLonToXYZ(0, 0)
	v2 := LatLonToXYZ(math.Pi/2, 0)
	v3 := LatLonToXYZ(0, math.Pi/2)
	got := SphericalAngle(v1, v2, v3)
	if different(got, math.Pi/2, 1e-9) {
		t.Errorf("SphericalAngle = %v, want pi/2", got)
	}
}

func TestUnitVectLatLonOrthonormal(t *testing.T) {
	lon, lat := 0.7, 0.3
	r := LatLonToXYZ(lon, lat)
	vlon, vlat := UnitVectLatLon(lon, lat)
	dot := func(a, b Vec3) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
	if different(dot(r, vlon), 0, 1e-12) {
		t.Errorf("vlon not orthogonal to radius: dot=%v", dot(r, vlon))
	}
	if different(dot(r, vlat), 0, 1e-12) {
		t.Errorf("vlat not orthogonal to radius: dot=%v", dot(r, vlat))
	}
	if different(dot(vlon, vlat), 0, 1e-12) {
		t.Errorf("vlon not orthogonal to vlat: dot=%v", dot(vlon, vlat))
	}
}
