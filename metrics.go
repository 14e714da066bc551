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

	"bitbucket.org/ctessum/sparse"
)

// GridArea computes the spherical area, in square meters, of every cell of
// mesh m, returned as a new ny*nx field. Each cell's corners are
// canonicalized with FixLon (target longitude pi) before PolyArea is
// applied, so cells crossing the antimeridian are handled correctly.
func GridArea(m *CornerMesh) *sparse.DenseArray {
	return gridAreaImpl(m, true)
}

// GridAreaNoAdjust is GridArea without the per-cell FixLon call; it is
// only valid when the mesh is known not to straddle a 2*pi branch cut.
func GridAreaNoAdjust(m *CornerMesh) *sparse.DenseArray {
	return gridAreaImpl(m, false)
}

func gridAreaImpl(m *CornerMesh, adjust bool) *sparse.DenseArray {
	out := NewField(m.Ny, m.Nx)
	for j := 0; j < m.Ny; j++ {
		for i := 0; i < m.Nx; i++ {
			lon, lat := m.CellCorners(i, j)
			x, y := lon[:], lat[:]
			var a float64
			if adjust {
				xs, ys, _ := FixLon(append([]float64(nil), x...), append([]float64(nil), y...), math.Pi)
				a = PolyArea(xs, ys)
			} else {
				a = PolyAreaNoAdjust(x, y)
			}
			out.Set(a, j, i)
		}
	}
	return out
}

// SphericalExcessArea returns the area, in square meters, of the spherical
// quadrilateral with corners pLL, pUL, pLR, pUR (each a (lon, lat) pair in
// radians), computed as the spherical excess: R^2 * (sum of interior
// angles - 2*pi). This is more accurate near the poles than PolyArea's
// line-integral form, and is used for cubed-sphere cell areas.
func SphericalExcessArea(pLL, pUL, pLR, pUR [2]float64) float64 {
	v := func(p [2]float64) Vec3 { return LatLonToXYZ(p[0], p[1]) }
	vLL, vUL, vLR, vUR := v(pLL), v(pUL), v(pLR), v(pUR)

	ang1 := SphericalAngle(vLL, vLR, vUL) // S-W
	ang2 := SphericalAngle(vLR, vUR, vLL) // S-E
	ang3 := SphericalAngle(vUR, vUL, vLR) // N-E
	ang4 := SphericalAngle(vUL, vUR, vLL) // N-W

	return (ang1 + ang2 + ang3 + ang4 - 2*math.Pi) * Radius * Radius
}
