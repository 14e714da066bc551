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

	"github.com/gonum/floats"
)

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

// TestXgridTripolarConservation is scenario S4: an 8x4 source aligned with
// a 4x4 destination whose cells each cover exactly two source cells in x.
func TestXgridTripolarConservation(t *testing.T) {
	lat := linspace(-math.Pi/4, math.Pi/4, 5)
	srcLon := linspace(-math.Pi, math.Pi, 9)
	dstLon := linspace(-math.Pi, math.Pi, 5)

	src := (&SeparableMesh{Nx: 8, Ny: 4, Lon: srcLon, Lat: lat}).AsCornerMesh()
	dst := (&SeparableMesh{Nx: 4, Ny: 4, Lon: dstLon, Lat: lat}).AsCornerMesh()

	tuples, err := BuildXgrid2Dx2DOrder1(src, dst, nil, 1000)
	if err != nil {
		t.Fatalf("BuildXgrid2Dx2DOrder1: %v", err)
	}

	s := NewField(4, 8)
	for j := 0; j < 4; j++ {
		for i := 0; i < 8; i++ {
			s.Set(float64(i), j, i)
		}
	}
	areaDst := GridArea(dst)
	d := RemapOrder1(tuples, s, areaDst, 4, 4)

	for j := 0; j < 4; j++ {
		for ip := 0; ip < 4; ip++ {
			want := float64(4*ip+1) / 2
			got := d.Get(j, ip)
			if different(got, want, 1e-9) {
				t.Errorf("D[%d,%d] = %v, want %v", j, ip, got, want)
			}
		}
	}
}

// TestRemapOrder1Conservation is testable property 4: total mass is
// preserved by the order-1 remap for an arbitrary source field.
func TestRemapOrder1Conservation(t *testing.T) {
	lat := linspace(-math.Pi/3, math.Pi/3, 6)
	srcLon := linspace(-math.Pi, math.Pi, 7)
	dstLon := linspace(-math.Pi, math.Pi, 5)

	src := (&SeparableMesh{Nx: 6, Ny: 5, Lon: srcLon, Lat: lat}).AsCornerMesh()
	dst := (&SeparableMesh{Nx: 4, Ny: 5, Lon: dstLon, Lat: lat}).AsCornerMesh()

	tuples, err := BuildXgrid2Dx2DOrder1(src, dst, nil, 1000)
	if err != nil {
		t.Fatalf("BuildXgrid2Dx2DOrder1: %v", err)
	}

	areaSrc := GridArea(src)
	areaDst := GridArea(dst)

	s := NewField(5, 6)
	for j := 0; j < 5; j++ {
		for i := 0; i < 6; i++ {
			s.Set(float64(i*3+j), j, i)
		}
	}
	d := RemapOrder1(tuples, s, areaDst, 5, 4)

	var srcMass, dstMass []float64
	for j := 0; j < 5; j++ {
		for i := 0; i < 6; i++ {
			srcMass = append(srcMass, s.Get(j, i)*areaSrc.Get(j, i))
		}
	}
	for j := 0; j < 5; j++ {
		for i := 0; i < 4; i++ {
			dstMass = append(dstMass, d.Get(j, i)*areaDst.Get(j, i))
		}
	}
	srcTotal, dstTotal := floats.Sum(srcMass), floats.Sum(dstMass)
	if different(dstTotal, srcTotal, 1e-10) {
		t.Errorf("remap order 1 is not conservative: src=%v dst=%v", srcTotal, dstTotal)
	}
}

// TestXgridMask is scenario S5: masking every other source column in x
// halves both the tuple count and the total emitted area.
func TestXgridMask(t *testing.T) {
	lat := linspace(-math.Pi/4, math.Pi/4, 5)
	srcLon := linspace(-math.Pi, math.Pi, 9)
	dstLon := linspace(-math.Pi, math.Pi, 9)

	src := (&SeparableMesh{Nx: 8, Ny: 4, Lon: srcLon, Lat: lat}).AsCornerMesh()
	dst := (&SeparableMesh{Nx: 8, Ny: 4, Lon: dstLon, Lat: lat}).AsCornerMesh()

	full, err := BuildXgrid2Dx2DOrder1(src, dst, nil, 1000)
	if err != nil {
		t.Fatalf("full BuildXgrid2Dx2DOrder1: %v", err)
	}

	mask := NewField(4, 8)
	for j := 0; j < 4; j++ {
		for i := 0; i < 8; i++ {
			if i%2 == 0 {
				mask.Set(1, j, i)
			}
		}
	}
	masked, err := BuildXgrid2Dx2DOrder1(src, dst, mask, 1000)
	if err != nil {
		t.Fatalf("masked BuildXgrid2Dx2DOrder1: %v", err)
	}

	if len(masked) != len(full)/2 {
		t.Errorf("masked tuple count = %d, want %d", len(masked), len(full)/2)
	}

	areaSrc := GridArea(src)
	var totalSrcArea, maskedArea float64
	for j := 0; j < 4; j++ {
		for i := 0; i < 8; i++ {
			totalSrcArea += areaSrc.Get(j, i)
		}
	}
	for _, tup := range masked {
		maskedArea += tup.Area
	}
	if different(maskedArea, 0.5*totalSrcArea, 1e-9) {
		t.Errorf("masked area sum = %v, want %v", maskedArea, 0.5*totalSrcArea)
	}
}

// TestXgridOverflow is scenario S6: a capacity too small for the true
// intersection count must return KindTooManyIntersections.
func TestXgridOverflow(t *testing.T) {
	lat := linspace(-math.Pi/4, math.Pi/4, 5)
	srcLon := linspace(-math.Pi, math.Pi, 9)
	dstLon := linspace(-math.Pi, math.Pi, 5)

	src := (&SeparableMesh{Nx: 8, Ny: 4, Lon: srcLon, Lat: lat}).AsCornerMesh()
	dst := (&SeparableMesh{Nx: 4, Ny: 4, Lon: dstLon, Lat: lat}).AsCornerMesh()

	_, err := BuildXgrid2Dx2DOrder1(src, dst, nil, 3)
	if err == nil {
		t.Fatal("expected KindTooManyIntersections, got nil error")
	}
	se, ok := err.(*Error)
	if !ok || se.Kind != KindTooManyIntersections {
		t.Errorf("expected KindTooManyIntersections, got %v", err)
	}
}

// TestXgridInvalidMeshLatitude verifies that a corner latitude outside
// [-pi/2, pi/2] is rejected with KindInvalidMesh rather than silently
// producing a (wrong) exchange grid.
func TestXgridInvalidMeshLatitude(t *testing.T) {
	lat := linspace(-math.Pi/4, math.Pi/4, 5)
	srcLon := linspace(-math.Pi, math.Pi, 9)
	dstLon := linspace(-math.Pi, math.Pi, 5)

	src := (&SeparableMesh{Nx: 8, Ny: 4, Lon: srcLon, Lat: lat}).AsCornerMesh()
	dst := (&SeparableMesh{Nx: 4, Ny: 4, Lon: dstLon, Lat: lat}).AsCornerMesh()
	dst.Lat[0] = math.Pi // out of range

	_, err := BuildXgrid2Dx2DOrder1(src, dst, nil, 1000)
	if err == nil {
		t.Fatal("expected KindInvalidMesh, got nil error")
	}
	se, ok := err.(*Error)
	if !ok || se.Kind != KindInvalidMesh {
		t.Errorf("expected KindInvalidMesh, got %v", err)
	}
}

// TestSeparableMeshValidateNonMonotone verifies that a non-monotone 1-D
// axis is rejected with KindInvalidMesh at the 1Dx2D/2Dx1D entry points.
func TestSeparableMeshValidateNonMonotone(t *testing.T) {
	lat := linspace(-math.Pi/4, math.Pi/4, 5)
	srcLon := linspace(-math.Pi, math.Pi, 9)
	srcLon[3], srcLon[4] = srcLon[4], srcLon[3] // break monotonicity
	dstLon := linspace(-math.Pi, math.Pi, 5)

	dst := (&SeparableMesh{Nx: 4, Ny: 4, Lon: dstLon, Lat: lat}).AsCornerMesh()
	src := &SeparableMesh{Nx: 8, Ny: 4, Lon: srcLon, Lat: lat}

	_, err := BuildXgrid1Dx2DOrder1(src, dst, nil, 1000)
	if err == nil {
		t.Fatal("expected KindInvalidMesh, got nil error")
	}
	se, ok := err.(*Error)
	if !ok || se.Kind != KindInvalidMesh {
		t.Errorf("expected KindInvalidMesh, got %v", err)
	}
}

// TestXgridWholeSpherePartition is testable property 2.
func TestXgridWholeSpherePartition(t *testing.T) {
	lat := linspace(-math.Pi/2, math.Pi/2, 9)
	lon := linspace(-math.Pi, math.Pi, 13)
	mesh := (&SeparableMesh{Nx: 12, Ny: 8, Lon: lon, Lat: lat}).AsCornerMesh()
	area := GridArea(mesh)

	var total float64
	for j := 0; j < mesh.Ny; j++ {
		for i := 0; i < mesh.Nx; i++ {
			total += area.Get(j, i)
		}
	}
	want := 4 * math.Pi * Radius * Radius
	if different(total, want, 1e-8) {
		t.Errorf("total mesh area = %v, want %v", total, want)
	}
}

// TestBuildXgridSouthExt exercises the cubic-sphere south-extension
// fix-up end to end: an ocean destination mesh whose southernmost row
// starts well north of the atmosphere source mesh's southern edge must
// have one synthetic row inserted, and every tuple emitted against the
// augmented mesh must be rebased back onto the caller's original
// (un-augmented) row numbering with no negative JDst leaking through.
func TestBuildXgridSouthExt(t *testing.T) {
	atmMinLat := -math.Pi / 2
	srcLat := linspace(atmMinLat, math.Pi/4, 5)
	srcLon := linspace(-math.Pi, math.Pi, 9)
	src := (&SeparableMesh{Nx: 8, Ny: 4, Lon: srcLon, Lat: srcLat}).AsCornerMesh()

	dstLat := linspace(-math.Pi/8, math.Pi/4, 4) // starts well north of atmMinLat
	dstLon := linspace(-math.Pi, math.Pi, 5)
	dst := (&SeparableMesh{Nx: 4, Ny: 3, Lon: dstLon, Lat: dstLat}).AsCornerMesh()

	augmented, southExt := ApplySouthExtFix(dst, atmMinLat, 1e-6)
	if southExt != 1 {
		t.Fatalf("southExt = %d, want 1", southExt)
	}
	if augmented.Ny != dst.Ny+1 {
		t.Fatalf("augmented.Ny = %d, want %d", augmented.Ny, dst.Ny+1)
	}

	tuples, err := BuildXgrid2Dx2DOrder1SouthExt(src, dst, nil, 1000, atmMinLat, 1e-6)
	if err != nil {
		t.Fatalf("BuildXgrid2Dx2DOrder1SouthExt: %v", err)
	}
	if len(tuples) == 0 {
		t.Fatal("expected at least one tuple")
	}
	for _, tp := range tuples {
		if tp.JDst < 0 || tp.JDst >= dst.Ny {
			t.Errorf("tuple JDst = %d out of original mesh range [0, %d)", tp.JDst, dst.Ny)
		}
	}

	// No gap: southExt must be 0 and the tuples must match the plain
	// (non-south-ext) builder exactly.
	flushDst := (&SeparableMesh{Nx: 4, Ny: 3, Lon: dstLon, Lat: linspace(atmMinLat, math.Pi/4, 4)}).AsCornerMesh()
	_, southExt2 := ApplySouthExtFix(flushDst, atmMinLat, 1e-6)
	if southExt2 != 0 {
		t.Errorf("southExt = %d, want 0 when dst already reaches atmMinLat", southExt2)
	}
	want, err := BuildXgrid2Dx2DOrder1(src, flushDst, nil, 1000)
	if err != nil {
		t.Fatalf("BuildXgrid2Dx2DOrder1: %v", err)
	}
	got, err := BuildXgrid2Dx2DOrder1SouthExt(src, flushDst, nil, 1000, atmMinLat, 1e-6)
	if err != nil {
		t.Fatalf("BuildXgrid2Dx2DOrder1SouthExt: %v", err)
	}
	if len(got) != len(want) {
		t.Errorf("south-ext no-op path produced %d tuples, want %d", len(got), len(want))
	}
}
