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

import "bitbucket.org/ctessum/sparse"

// CellCentroids returns the normalized centroid longitude and latitude of
// every cell of mesh, for use as the clonSrc/clatSrc inputs to
// RemapOrder2. The longitude moment for each cell is taken about that
// cell's own FixLon-canonicalized mean longitude, matching how the
// exchange-grid builder references clon for its tuples.
func CellCentroids(mesh *CornerMesh) (clon, clat *sparse.DenseArray) {
	clon = NewField(mesh.Ny, mesh.Nx)
	clat = NewField(mesh.Ny, mesh.Nx)
	area := GridArea(mesh)
	for j := 0; j < mesh.Ny; j++ {
		for i := 0; i < mesh.Nx; i++ {
			lon, lat := mesh.CellCorners(i, j)
			x, y := append([]float64(nil), lon[:]...), append([]float64(nil), lat[:]...)
			var n int
			x, y, n = FixLon(x, y, 0)
			ref := 0.0
			for _, xx := range x[:n] {
				ref += xx
			}
			ref /= float64(n)

			a := area.Get(j, i)
			if a == 0 {
				continue
			}
			clon.Set(PolyCtrlon(x[:n], y[:n], ref)/a+ref, j, i)
			clat.Set(PolyCtrlat(x[:n], y[:n])/a, j, i)
		}
	}
	return clon, clat
}

// GradientMask returns a dense ny*nx 0/1 field: 1 wherever all 8 neighbors
// of (j,i) exist and are not flagged missing, 0 otherwise. Cells at the
// mesh boundary are always 0 (spec: "implementations should not
// extrapolate"), matching the order-2 remap's gradient-correction disable
// rule.
func GradientMask(missing func(j, i int) bool, ny, nx int) *sparse.DenseArray {
	out := NewField(ny, nx)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			ok := true
			for dj := -1; dj <= 1 && ok; dj++ {
				for di := -1; di <= 1; di++ {
					if dj == 0 && di == 0 {
						continue
					}
					jj, ii := j+dj, i+di
					if jj < 0 || jj >= ny || ii < 0 || ii >= nx || missing(jj, ii) {
						ok = false
						break
					}
				}
			}
			if ok {
				out.Set(1, j, i)
			}
		}
	}
	return out
}

// RemapOrder1 applies the first-order conservative remap described by
// tuples: D is zero-initialized and accumulated as an area-weighted sum,
// D[j',i'] = sum over tuples of S[j,i] * Area / areaDst[j',i'].
func RemapOrder1(tuples []Tuple, src, areaDst *sparse.DenseArray, dstNy, dstNx int) *sparse.DenseArray {
	d := NewField(dstNy, dstNx)
	for _, t := range tuples {
		contrib := src.Get(t.JSrc, t.ISrc) * t.Area / areaDst.Get(t.JDst, t.IDst)
		d.Set(d.Get(t.JDst, t.IDst)+contrib, t.JDst, t.IDst)
	}
	return d
}

// RemapOrder2 applies the second-order conservative remap: the same
// area-weighted accumulation as RemapOrder1, but each tuple's source value
// is first corrected by a first-order Taylor expansion from the source
// cell's centroid to the intersection polygon's centroid, using per-cell
// gradients gx, gy and centroids clonSrc, clatSrc. gradMask, from
// GradientMask, disables the correction for any source cell with a
// missing neighbor; a nil gradMask applies the correction everywhere.
func RemapOrder2(tuples []Tuple, src, areaDst, gx, gy, clonSrc, clatSrc, gradMask *sparse.DenseArray, dstNy, dstNx int) *sparse.DenseArray {
	d := NewField(dstNy, dstNx)
	for _, t := range tuples {
		s := src.Get(t.JSrc, t.ISrc)
		if gradMask == nil || gradMask.Get(t.JSrc, t.ISrc) > 0.5 {
			s += gx.Get(t.JSrc, t.ISrc)*(t.Clon/t.Area-clonSrc.Get(t.JSrc, t.ISrc)) +
				gy.Get(t.JSrc, t.ISrc)*(t.Clat/t.Area-clatSrc.Get(t.JSrc, t.ISrc))
		}
		contrib := s * t.Area / areaDst.Get(t.JDst, t.IDst)
		d.Set(d.Get(t.JDst, t.IDst)+contrib, t.JDst, t.IDst)
	}
	return d
}
