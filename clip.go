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

import "math"

// insideEdgeSmall gates the on-edge tie-break of Clip2Dx2D; a vertex
// exactly on the clip edge is treated as inside.
const insideEdgeSmall = Small

// Clip clips the polygon (lonIn, latIn), treated as planar coordinates,
// against the axis-aligned lon/lat box [llLon, urLon] x [llLat, urLat]
// using four sequential Sutherland-Hodgman passes (west, east, south,
// north). It returns the clipped polygon's vertices, at most
// MaxClipVertices long. An empty result (nil slices, 0) means the box and
// polygon do not overlap.
func Clip(lonIn, latIn []float64, llLon, llLat, urLon, urLat float64) ([]float64, []float64, int) {
	n := len(lonIn)
	if n == 0 {
		return nil, nil, 0
	}

	// West boundary: keep points with lon >= llLon.
	xTmp, yTmp, nOut := clipBoundary(lonIn, latIn, n, func(x, y float64) bool { return x >= llLon },
		func(xLast, yLast, xCur, yCur float64) (float64, float64) {
			return llLon, yLast + (llLon-xLast)*(yCur-yLast)/(xCur-xLast)
		})
	if nOut == 0 {
		return nil, nil, 0
	}

	// East boundary: keep points with lon <= urLon.
	lonOut, latOut, nOut2 := clipBoundary(xTmp, yTmp, nOut, func(x, y float64) bool { return x <= urLon },
		func(xLast, yLast, xCur, yCur float64) (float64, float64) {
			return urLon, yLast + (urLon-xLast)*(yCur-yLast)/(xCur-xLast)
		})
	if nOut2 == 0 {
		return nil, nil, 0
	}

	// South boundary: keep points with lat >= llLat.
	xTmp2, yTmp2, nOut3 := clipBoundary(lonOut, latOut, nOut2, func(x, y float64) bool { return y >= llLat },
		func(xLast, yLast, xCur, yCur float64) (float64, float64) {
			return xLast + (llLat-yLast)*(xCur-xLast)/(yCur-yLast), llLat
		})
	if nOut3 == 0 {
		return nil, nil, 0
	}

	// North boundary: keep points with lat <= urLat.
	lonFinal, latFinal, nFinal := clipBoundary(xTmp2, yTmp2, nOut3, func(x, y float64) bool { return y <= urLat },
		func(xLast, yLast, xCur, yCur float64) (float64, float64) {
			return xLast + (urLat-yLast)*(xCur-xLast)/(yCur-yLast), urLat
		})
	if nFinal == 0 {
		return nil, nil, 0
	}
	return lonFinal, latFinal, nFinal
}

// clipBoundary runs one Sutherland-Hodgman pass of (x, y) against a single
// half-plane boundary. inside reports whether a vertex is on the kept side;
// interp computes the boundary-crossing point given the last kept/rejected
// vertex and the current one.
func clipBoundary(x, y []float64, n int, inside func(x, y float64) bool, interp func(xLast, yLast, xCur, yCur float64) (float64, float64)) ([]float64, []float64, int) {
	xOut := make([]float64, 0, n+1)
	yOut := make([]float64, 0, n+1)

	xLast, yLast := x[n-1], y[n-1]
	insideLast := inside(xLast, yLast)
	for i := 0; i < n; i++ {
		cur := inside(x[i], y[i])
		if cur != insideLast {
			ix, iy := interp(xLast, yLast, x[i], y[i])
			xOut = append(xOut, ix)
			yOut = append(yOut, iy)
		}
		if cur {
			xOut = append(xOut, x[i])
			yOut = append(yOut, y[i])
		}
		xLast, yLast = x[i], y[i]
		insideLast = cur
	}
	return xOut, yOut, len(xOut)
}

// insideEdge reports whether point (x, y) lies on the inside of the
// directed edge from (x0, y0) to (x1, y1): <y1-y0, -(x1-x0)> is the
// outward edge normal, so a non-positive (within insideEdgeSmall) inner
// product with <x-x0, y-y0> means inside. A point exactly on the edge is
// treated as inside.
func insideEdge(x0, y0, x1, y1, x, y float64) bool {
	product := (x-x0)*(y1-y0) + (x0-x1)*(y-y0)
	return product <= insideEdgeSmall
}

// Clip2Dx2D clips subject polygon (lon2, lat2) against convex clip polygon
// (lon1, lat1) using the general Sutherland-Hodgman algorithm with signed
// edge tests, treating both as planar (the caller must already have
// resolved both polygons onto the same longitude branch via FixLon). It
// returns a degenerate-clip error if any clip/subject edge pair it needs to
// intersect is nearly parallel.
func Clip2Dx2D(lon1, lat1 []float64, lon2, lat2 []float64) ([]float64, []float64, int, error) {
	n1, n2 := len(lon1), len(lon2)

	// The working polygon (x1*, y1*) starts as the subject, polygon 2; each
	// directed edge (x20, y20)->(x21, y21) of clip polygon 1 cuts it in turn.
	lonTmp := append([]float64(nil), lon2...)
	latTmp := append([]float64(nil), lat2...)
	nOut := n2

	x20, y20 := lon1[n1-1], lat1[n1-1]
	for i2 := 0; i2 < n1; i2++ {
		x21, y21 := lon1[i2], lat1[i2]

		lonOut := make([]float64, 0, MaxClipVertices)
		latOut := make([]float64, 0, MaxClipVertices)

		x10, y10 := lonTmp[nOut-1], latTmp[nOut-1]
		insideLast := insideEdge(x20, y20, x21, y21, x10, y10)
		for i1 := 0; i1 < nOut; i1++ {
			x11, y11 := lonTmp[i1], latTmp[i1]
			inside := insideEdge(x20, y20, x21, y21, x11, y11)
			if inside != insideLast {
				dy1 := y11 - y10
				dy2 := y21 - y20
				dx1 := x11 - x10
				dx2 := x21 - x20
				ds1 := y10*x11 - y11*x10
				ds2 := y20*x21 - y21*x20
				determ := dy2*dx1 - dy1*dx2
				if math.Abs(determ) < Epsln {
					return nil, nil, 0, errDegenerateClip()
				}
				lonOut = append(lonOut, (dx2*ds1-dx1*ds2)/determ)
				latOut = append(latOut, (dy2*ds1-dy1*ds2)/determ)
			}
			if inside {
				lonOut = append(lonOut, x11)
				latOut = append(latOut, y11)
			}
			x10, y10 = x11, y11
			insideLast = inside
		}
		nOut = len(lonOut)
		if nOut == 0 {
			return nil, nil, 0, nil
		}
		lonTmp = lonOut
		latTmp = latOut
		x20, y20 = x21, y21
	}
	return lonTmp, latTmp, nOut, nil
}
