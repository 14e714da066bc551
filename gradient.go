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

// GridInfo holds the auxiliary C-grid geometry (spec §3 "Auxiliary mesh
// geometry") needed by A2BOrd2 and GradC2L: edge lengths, cell areas,
// edge normals, and center tangent vectors, all built once per mesh by
// CalcC2LGridInfo and reused across every field gradient computed on it.
type GridInfo struct {
	Nx, Ny int

	Dx []float64 // N-cell center, nx*(ny+1)
	Dy []float64 // E-cell center, (nx+1)*ny

	Area []float64 // T-cell center, nx*ny

	EdgeW, EdgeE []float64 // C-cell, ny+1 each
	EdgeS, EdgeN []float64 // C-cell, nx+1 each

	EnN []Vec3 // N-cell center unit normal, nx*(ny+1)
	EnE []Vec3 // E-cell center unit normal, (nx+1)*ny

	Vlon, Vlat []Vec3 // T-cell center tangents, nx*ny
}

// MidPtSphere returns the midpoint, on the sphere, of the great-circle
// segment between (lon1, lat1) and (lon2, lat2): the two endpoints are
// mapped to Cartesian, averaged, renormalized to the unit sphere, and
// mapped back.
func MidPtSphere(lon1, lat1, lon2, lat2 float64) (lon, lat float64) {
	e1 := LatLonToXYZ(lon1, lat1)
	e2 := LatLonToXYZ(lon2, lat2)
	mid := normalizeVect(Vec3{e1[0] + e2[0], e1[1] + e2[1], e1[2] + e2[2]})
	return XYZToLatLon(mid)
}

// halo T-grid indexing: qin has shape (nx+2)*(ny+2), halo width 1, so
// interior T-cell (i,j) (0-based, 0<=i<nx, 0<=j<ny) sits at (i+1, j+1).
func tIdx(nx, i, j int) int { return j*(nx+2) + i }

// C-grid corner indexing: shape (nx+1)*(ny+1).
func cIdx(nx, i, j int) int { return j*(nx+1) + i }

// GetEdge computes the edge_w/edge_e/edge_s/edge_n interpolation weights
// used by A2BOrd2 at tile boundaries: for each boundary corner point, the
// weight is the normalized great-circle distance from the far T-cell-edge
// midpoint, so that A2BOrd2's weighted mean is exact for a linear field
// along the boundary. lonT/latT are the halo-padded T-center arrays
// ((nx+2)*(ny+2)); lonC/latC are the C-corner arrays ((nx+1)*(ny+1)).
func GetEdge(nx, ny int, lonT, latT, lonC, latC []float64, onWest, onEast, onSouth, onNorth bool) (edgeW, edgeE, edgeS, edgeN []float64) {
	nxp, nyp := nx+1, ny+1
	edgeW = make([]float64, nyp)
	edgeE = make([]float64, nyp)
	edgeS = make([]float64, nxp)
	edgeN = make([]float64, nxp)
	for i := range edgeS {
		edgeS[i], edgeN[i] = 0.5, 0.5
	}
	for j := range edgeW {
		edgeW[j], edgeE[j] = 0.5, 0.5
	}

	istart, iend := 0, nxp
	if onWest {
		istart = 1
	}
	if onEast {
		iend = nx
	}
	jstart, jend := 0, nyp
	if onSouth {
		jstart = 1
	}
	if onNorth {
		jend = ny
	}

	if onWest {
		i := 0
		py := make([][2]float64, nyp+1)
		for j := jstart; j <= jend; j++ {
			lon, lat := MidPtSphere(lonT[tIdx(nx, i, j)], latT[tIdx(nx, i, j)], lonT[tIdx(nx, i+1, j)], latT[tIdx(nx, i+1, j)])
			py[j] = [2]float64{lon, lat}
		}
		for j := jstart; j < jend; j++ {
			p1lon, p1lat := lonC[cIdx(nx, i, j)], latC[cIdx(nx, i, j)]
			d1 := GreatCircleDistance(py[j][0], py[j][1], p1lon, p1lat)
			d2 := GreatCircleDistance(py[j+1][0], py[j+1][1], p1lon, p1lat)
			edgeW[j] = d2 / (d1 + d2)
		}
	}
	if onEast {
		i := nx
		py := make([][2]float64, nyp+1)
		for j := jstart; j <= jend; j++ {
			lon, lat := MidPtSphere(lonT[tIdx(nx, i, j)], latT[tIdx(nx, i, j)], lonT[tIdx(nx, i+1, j)], latT[tIdx(nx, i+1, j)])
			py[j] = [2]float64{lon, lat}
		}
		for j := jstart; j < jend; j++ {
			p1lon, p1lat := lonC[cIdx(nx, i, j)], latC[cIdx(nx, i, j)]
			d1 := GreatCircleDistance(py[j][0], py[j][1], p1lon, p1lat)
			d2 := GreatCircleDistance(py[j+1][0], py[j+1][1], p1lon, p1lat)
			edgeE[j] = d2 / (d1 + d2)
		}
	}
	if onSouth {
		j := 0
		px := make([][2]float64, nxp+1)
		for i := istart; i <= iend; i++ {
			lon, lat := MidPtSphere(lonT[tIdx(nx, i, j)], latT[tIdx(nx, i, j)], lonT[tIdx(nx, i, j+1)], latT[tIdx(nx, i, j+1)])
			px[i] = [2]float64{lon, lat}
		}
		for i := istart; i < iend; i++ {
			p1lon, p1lat := lonC[cIdx(nx, i, j)], latC[cIdx(nx, i, j)]
			d1 := GreatCircleDistance(px[i][0], px[i][1], p1lon, p1lat)
			d2 := GreatCircleDistance(px[i+1][0], px[i+1][1], p1lon, p1lat)
			edgeS[i] = d2 / (d1 + d2)
		}
	}
	if onNorth {
		j := ny
		px := make([][2]float64, nxp+1)
		for i := istart; i <= iend; i++ {
			lon, lat := MidPtSphere(lonT[tIdx(nx, i, j)], latT[tIdx(nx, i, j)], lonT[tIdx(nx, i, j+1)], latT[tIdx(nx, i, j+1)])
			px[i] = [2]float64{lon, lat}
		}
		for i := istart; i < iend; i++ {
			p1lon, p1lat := lonC[cIdx(nx, i, j)], latC[cIdx(nx, i, j)]
			d1 := GreatCircleDistance(px[i][0], px[i][1], p1lon, p1lat)
			d2 := GreatCircleDistance(px[i+1][0], px[i+1][1], p1lon, p1lat)
			edgeN[i] = d2 / (d1 + d2)
		}
	}
	return edgeW, edgeE, edgeS, edgeN
}

// A2BOrd2 interpolates a halo-padded T-cell-center (A-grid) scalar field
// qin ((nx+2)*(ny+2)) onto the C-cell corners (B-grid), returning a field
// of shape (nx+1)*(ny+1). Interior corners take the arithmetic mean of
// their four surrounding T-centers; tile corners take a one-third mean of
// their three adjacent T-centers; tile edges take a weighted mean of the
// two boundary-parallel midpoint values, using edgeW/edgeE/edgeS/edgeN
// from GetEdge. The on{West,East,South,North}Edge flags gate the
// corner/edge fix-ups so that interior mesh partitions skip them.
func A2BOrd2(nx, ny int, qin, edgeW, edgeE, edgeS, edgeN []float64, onWest, onEast, onSouth, onNorth bool) []float64 {
	nxp, nyp := nx+1, ny+1
	qout := make([]float64, nxp*nyp)
	const r3 = 1.0 / 3.0

	istart, iend := 0, nxp
	if onWest {
		istart = 1
	}
	if onEast {
		iend = nx
	}
	jstart, jend := 0, nyp
	if onSouth {
		jstart = 1
	}
	if onNorth {
		jend = ny
	}

	for j := jstart; j < jend; j++ {
		for i := istart; i < iend; i++ {
			qout[cIdx(nx, i, j)] = 0.25 * (qin[tIdx(nx, i, j)] + qin[tIdx(nx, i+1, j)] +
				qin[tIdx(nx, i, j+1)] + qin[tIdx(nx, i+1, j+1)])
		}
	}

	if onWest && onSouth {
		qout[cIdx(nx, 0, 0)] = r3 * (qin[tIdx(nx, 1, 1)] + qin[tIdx(nx, 0, 1)] + qin[tIdx(nx, 1, 0)])
	}
	if onEast && onSouth {
		qout[cIdx(nx, nx, 0)] = r3 * (qin[tIdx(nx, nx, 1)] + qin[tIdx(nx, nx, 0)] + qin[tIdx(nx, nxp, 1)])
	}
	if onEast && onNorth {
		qout[cIdx(nx, nx, ny)] = r3 * (qin[tIdx(nx, nx, ny)] + qin[tIdx(nx, nxp, ny)] + qin[tIdx(nx, nx, nyp)])
	}
	if onWest && onNorth {
		qout[cIdx(nx, 0, ny)] = r3 * (qin[tIdx(nx, 1, ny)] + qin[tIdx(nx, 0, ny)] + qin[tIdx(nx, 1, nyp)])
	}

	if onWest {
		q2 := make([]float64, jend+1)
		for j := jstart; j <= jend; j++ {
			q2[j] = 0.5 * (qin[tIdx(nx, 0, j)] + qin[tIdx(nx, 1, j)])
		}
		for j := jstart; j < jend; j++ {
			qout[cIdx(nx, 0, j)] = edgeW[j]*q2[j] + (1-edgeW[j])*q2[j+1]
		}
	}
	if onEast {
		q2 := make([]float64, jend+1)
		for j := jstart; j <= jend; j++ {
			q2[j] = 0.5 * (qin[tIdx(nx, nx, j)] + qin[tIdx(nx, nxp, j)])
		}
		for j := jstart; j < jend; j++ {
			qout[cIdx(nx, nx, j)] = edgeE[j]*q2[j] + (1-edgeE[j])*q2[j+1]
		}
	}
	if onSouth {
		q1 := make([]float64, iend+1)
		for i := istart; i <= iend; i++ {
			q1[i] = 0.5 * (qin[tIdx(nx, i, 0)] + qin[tIdx(nx, i, 1)])
		}
		for i := istart; i < iend; i++ {
			qout[cIdx(nx, i, 0)] = edgeS[i]*q1[i] + (1-edgeS[i])*q1[i+1]
		}
	}
	if onNorth {
		q1 := make([]float64, iend+1)
		for i := istart; i <= iend; i++ {
			q1[i] = 0.5 * (qin[tIdx(nx, i, ny)] + qin[tIdx(nx, i, nyp)])
		}
		for i := istart; i < iend; i++ {
			qout[cIdx(nx, i, ny)] = edgeN[i]*q1[i] + (1-edgeN[i])*q1[i+1]
		}
	}
	return qout
}

// CalcC2LGridInfo assembles the auxiliary geometry GradC2L needs: edge
// lengths (Dx, Dy) and cell areas (via SphericalExcessArea) from the
// C-grid corners xc/yc ((nx+1)*(ny+1)), edge normals (EnN, EnE) from
// cross products of corner Cartesian vectors, and center tangents (Vlon,
// Vlat) from the halo-padded T-centers xt/yt ((nx+2)*(ny+2)). edgeW/e/s/n
// come from GetEdge using the same T/C arrays.
func CalcC2LGridInfo(nx, ny int, xt, yt, xc, yc []float64, onWest, onEast, onSouth, onNorth bool) *GridInfo {
	nxp, nyp := nx+1, ny+1
	gi := &GridInfo{Nx: nx, Ny: ny}

	gi.Dx = make([]float64, nx*nyp)
	for j := 0; j < nyp; j++ {
		for i := 0; i < nx; i++ {
			gi.Dx[j*nx+i] = GreatCircleDistance(xc[cIdx(nx, i, j)], yc[cIdx(nx, i, j)], xc[cIdx(nx, i+1, j)], yc[cIdx(nx, i+1, j)])
		}
	}

	gi.Dy = make([]float64, nxp*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nxp; i++ {
			gi.Dy[j*nxp+i] = GreatCircleDistance(xc[cIdx(nx, i, j)], yc[cIdx(nx, i, j)], xc[cIdx(nx, i, j+1)], yc[cIdx(nx, i, j+1)])
		}
	}

	gi.Area = make([]float64, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			ll := [2]float64{xc[cIdx(nx, i, j)], yc[cIdx(nx, i, j)]}
			ul := [2]float64{xc[cIdx(nx, i, j+1)], yc[cIdx(nx, i, j+1)]}
			lr := [2]float64{xc[cIdx(nx, i+1, j)], yc[cIdx(nx, i+1, j)]}
			ur := [2]float64{xc[cIdx(nx, i+1, j+1)], yc[cIdx(nx, i+1, j+1)]}
			gi.Area[j*nx+i] = SphericalExcessArea(ll, ul, lr, ur)
		}
	}

	xyz := make([]Vec3, nxp*nyp)
	for k := range xyz {
		xyz[k] = LatLonToXYZ(xc[k], yc[k])
	}

	gi.EnN = make([]Vec3, nx*nyp)
	for j := 0; j < nyp; j++ {
		for i := 0; i < nx; i++ {
			e := vectCross(xyz[cIdx(nx, i, j)], xyz[cIdx(nx, i+1, j)])
			gi.EnN[j*nx+i] = normalizeVect(e)
		}
	}

	gi.EnE = make([]Vec3, nxp*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nxp; i++ {
			e := vectCross(xyz[cIdx(nx, i, j+1)], xyz[cIdx(nx, i, j)])
			gi.EnE[j*nxp+i] = normalizeVect(e)
		}
	}

	gi.Vlon = make([]Vec3, nx*ny)
	gi.Vlat = make([]Vec3, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			lon := xt[tIdx(nx, i+1, j+1)]
			lat := yt[tIdx(nx, i+1, j+1)]
			vlon, vlat := UnitVectLatLon(lon, lat)
			gi.Vlon[j*nx+i] = vlon
			gi.Vlat[j*nx+i] = vlat
		}
	}

	gi.EdgeW, gi.EdgeE, gi.EdgeS, gi.EdgeN = GetEdge(nx, ny, xt, yt, xc, yc, onWest, onEast, onSouth, onNorth)

	return gi
}

// GradC2L computes the Green's-theorem gradient of a halo-padded T-center
// scalar field pin ((nx+2)*(ny+2)) using the auxiliary geometry gi, and
// returns the east (gradX) and north (gradY) component fields at T-cell
// centers, in per-radian units scaled by Radius. pin is first interpolated
// to C-cell corners via A2BOrd2, then circulated around each T-cell's
// boundary and projected onto the local east/north tangents.
func GradC2L(nx, ny int, pin []float64, gi *GridInfo, onWest, onEast, onSouth, onNorth bool) (gradX, gradY []float64) {
	nxp, nyp := nx+1, ny+1
	pb := A2BOrd2(nx, ny, pin, gi.EdgeW, gi.EdgeE, gi.EdgeS, gi.EdgeN, onWest, onEast, onSouth, onNorth)

	pdx := make([]Vec3, nx*nyp)
	for j := 0; j < nyp; j++ {
		for i := 0; i < nx; i++ {
			m0 := j*nx + i
			m1 := j*nxp + i
			avg := 0.5 * (pb[m1] + pb[m1+1])
			for n := 0; n < 3; n++ {
				pdx[m0][n] = avg * gi.Dx[m0] * gi.EnN[m0][n]
			}
		}
	}

	pdy := make([]Vec3, nxp*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nxp; i++ {
			m0 := j*nxp + i
			avg := 0.5 * (pb[m0] + pb[m0+nxp])
			for n := 0; n < 3; n++ {
				pdy[m0][n] = avg * gi.Dy[m0] * gi.EnE[m0][n]
			}
		}
	}

	grad3 := make([]Vec3, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			m0 := j*nx + i
			top := pdx[(j+1)*nx+i]
			bottom := pdx[m0]
			left := pdy[j*nxp+i]
			right := pdy[j*nxp+i+1]
			for n := 0; n < 3; n++ {
				grad3[m0][n] = top[n] - bottom[n] - left[n] + right[n]
			}
		}
	}

	gradX = make([]float64, nx*ny)
	gradY = make([]float64, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			m0 := j*nx + i
			g := grad3[m0]
			area := gi.Area[m0]
			vlon, vlat := gi.Vlon[m0], gi.Vlat[m0]
			gradX[m0] = (vlon[0]*g[0] + vlon[1]*g[1] + vlon[2]*g[2]) / area * Radius
			gradY[m0] = (vlat[0]*g[0] + vlat[1]*g[1] + vlat[2]*g[2]) / area * Radius
		}
	}
	return gradX, gradY
}
