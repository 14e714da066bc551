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

// Package spheremesh builds exchange grids between logically-rectangular
// quadrilateral meshes on the sphere and applies conservative remap
// between them. It covers spherical-polygon area and centroid integrals,
// axis-aligned and general convex clipping, the exchange-grid builder's
// four kernels, first- and second-order remap application, and the
// C-grid to lat/lon Green's-theorem gradient operator that feeds the
// second-order path.
//
// Everything in this package is a pure function of its arguments: there
// is no package-level mutable state, and nothing here performs file or
// network I/O. Mesh and field I/O lives in the meshio package; outer-loop
// partitioning across goroutines lives in the worker package.
package spheremesh

// Numeric constants fixed by the specification this package implements.
const (
	// Radius is the sphere radius used by every area/distance
	// computation, in meters.
	Radius = 6371000.0
	// MaxClipVertices bounds the number of vertices either clipper can
	// produce for a single polygon.
	MaxClipVertices = 20
	// Epsln gates the parallel-edge determinant check in Clip2Dx2D.
	Epsln = 1e-10
	// AreaRatioThresh discards clipper output whose area is numerical
	// noise relative to the smaller of the two source/destination cells.
	AreaRatioThresh = 1e-6
	// MaskThresh is the minimum source-cell mask value for a cell to
	// participate in exchange-grid construction.
	MaskThresh = 0.5
	// Small gates the cheap-vs-trapezoidal branch in PolyArea/PolyCtrlat
	// and the on-edge tie-break in Clip2Dx2D.
	Small = 1e-10
	// TolPole gates pole-vertex detection in FixLon.
	TolPole = 1e-6
)
