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
	"fmt"
	"math"

	"bitbucket.org/ctessum/sparse"
)

// CornerMesh is a logically-rectangular quadrilateral mesh of nx*ny cells
// on the sphere, stored as flat row-major corner vertex arrays of
// (nx+1)*(ny+1) longitudes and latitudes, in radians. Cell (i,j) has
// corners (i,j), (i+1,j), (i+1,j+1), (i,j+1) in counter-clockwise order as
// seen from outside the sphere.
type CornerMesh struct {
	Nx, Ny   int
	Lon, Lat []float64
}

// NewCornerMesh allocates a CornerMesh of nx*ny cells with zeroed corner
// arrays.
func NewCornerMesh(nx, ny int) *CornerMesh {
	n := (nx + 1) * (ny + 1)
	return &CornerMesh{Nx: nx, Ny: ny, Lon: make([]float64, n), Lat: make([]float64, n)}
}

// corner returns the (lon, lat) of corner vertex (i, j), 0 <= i <= Nx,
// 0 <= j <= Ny.
func (m *CornerMesh) corner(i, j int) (float64, float64) {
	idx := j*(m.Nx+1) + i
	return m.Lon[idx], m.Lat[idx]
}

// CellCorners returns the four corner (lon, lat) pairs of cell (i, j) in
// counter-clockwise order: (i,j), (i+1,j), (i+1,j+1), (i,j+1).
func (m *CornerMesh) CellCorners(i, j int) (lon, lat [4]float64) {
	lon[0], lat[0] = m.corner(i, j)
	lon[1], lat[1] = m.corner(i+1, j)
	lon[2], lat[2] = m.corner(i+1, j+1)
	lon[3], lat[3] = m.corner(i, j+1)
	return lon, lat
}

// Validate checks mesh against the mandatory kInvalidMesh conditions of
// spec §7: every corner latitude must lie within [-pi/2, pi/2] (within
// Epsln of either pole). It does not check cell convexity, which spec §7
// marks optional.
func (m *CornerMesh) Validate() error {
	for idx, lat := range m.Lat {
		if lat < -math.Pi/2-Epsln || lat > math.Pi/2+Epsln {
			return errInvalidMesh(fmt.Sprintf("corner %d latitude %g outside [-pi/2, pi/2]", idx, lat))
		}
	}
	return nil
}

// SeparableMesh is the "1D" representation of a mesh whose corners form a
// separable product of nx+1 longitudes and ny+1 latitudes.
type SeparableMesh struct {
	Nx, Ny   int
	Lon, Lat []float64 // length Nx+1, Ny+1 respectively
}

// Validate checks mesh against the mandatory kInvalidMesh conditions of
// spec §7 that apply to a separable 1-D mesh: every latitude must lie
// within [-pi/2, pi/2] (within Epsln of either pole), and both the Lon and
// Lat axes must be strictly monotone, since a separable mesh's cells are
// only well-defined if the 1-D axes they are a product of do not fold
// back on themselves.
func (m *SeparableMesh) Validate() error {
	for idx, lat := range m.Lat {
		if lat < -math.Pi/2-Epsln || lat > math.Pi/2+Epsln {
			return errInvalidMesh(fmt.Sprintf("latitude axis[%d] %g outside [-pi/2, pi/2]", idx, lat))
		}
	}
	if !monotone(m.Lon) {
		return errInvalidMesh("longitude axis is not monotone")
	}
	if !monotone(m.Lat) {
		return errInvalidMesh("latitude axis is not monotone")
	}
	return nil
}

// monotone reports whether v is strictly increasing or strictly
// decreasing throughout. Slices of length < 2 are trivially monotone.
func monotone(v []float64) bool {
	if len(v) < 2 {
		return true
	}
	increasing := v[1] > v[0]
	for i := 1; i < len(v); i++ {
		if increasing && v[i] <= v[i-1] {
			return false
		}
		if !increasing && v[i] >= v[i-1] {
			return false
		}
	}
	return true
}

// AsCornerMesh expands a SeparableMesh into the full row-major CornerMesh
// representation so it can be fed through the same clip/area machinery as
// a curvilinear mesh.
func (m *SeparableMesh) AsCornerMesh() *CornerMesh {
	out := NewCornerMesh(m.Nx, m.Ny)
	for j := 0; j <= m.Ny; j++ {
		for i := 0; i <= m.Nx; i++ {
			idx := j*(m.Nx+1) + i
			out.Lon[idx] = m.Lon[i]
			out.Lat[idx] = m.Lat[j]
		}
	}
	return out
}

// NewField allocates a dense row-major scalar field of shape ny*nx,
// backed by sparse.DenseArray to match the dense-array convention used
// throughout this codebase's domain stack.
func NewField(ny, nx int) *sparse.DenseArray {
	return sparse.ZerosDense(ny, nx)
}

// maskAt returns the value at (j, i) of a mask field, or 1 (fully present)
// if mask is nil.
func maskAt(mask *sparse.DenseArray, j, i int) float64 {
	if mask == nil {
		return 1
	}
	return mask.Get(j, i)
}
