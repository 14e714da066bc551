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
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"

	"bitbucket.org/ctessum/sparse"
)

// Tuple is one non-empty intersection between a source and a destination
// cell: the exchange grid's unit of output. Clon and Clat are populated
// only by the order-2 kernels; they hold the un-normalized centroid
// moments of the intersection polygon (see PolyCtrlon, PolyCtrlat), not
// the normalized centroid.
type Tuple struct {
	ISrc, JSrc int
	IDst, JDst int
	Area       float64
	Clon, Clat float64
}

// destCell is the rtree item used to prune candidate destination cells by
// their latitude band before the exact per-cell longitude and clip tests
// run. Longitude is deliberately left unbounded (see newDestIndex): the
// exact longitude-disjoint test below depends on the per-source-row
// branch reference lonInAvg and cannot be precomputed once for the whole
// index.
type destCell struct {
	i, j           int
	latMin, latMax float64
}

func (d *destCell) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: -math.MaxFloat64 / 4, Y: d.latMin},
		Max: geom.Point{X: math.MaxFloat64 / 4, Y: d.latMax},
	}
}

// newDestIndex builds an rtree over the latitude bands of every cell of
// dst, used to prune the exchange-grid builder's inner destination loop
// by lat/lon bounding-box rejection (spec "enumerate candidate
// destination cells by lat/lon bounding-box rejection"), grounded on
// framework.go's Regrid/CellIntersections use of
// rtree.NewTree(25,50)+SearchIntersect.
func newDestIndex(dst *CornerMesh) *rtree.Rtree {
	tree := rtree.NewTree(25, 50)
	for j := 0; j < dst.Ny; j++ {
		for i := 0; i < dst.Nx; i++ {
			_, lat := dst.CellCorners(i, j)
			lo, hi := minMax(lat[:])
			tree.Insert(&destCell{i: i, j: j, latMin: lo, latMax: hi})
		}
	}
	return tree
}

func minMax(v []float64) (lo, hi float64) {
	lo, hi = v[0], v[0]
	for _, x := range v[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}

// candidateDestCells returns the destination cells whose latitude band
// overlaps [latMin, latMax], sorted into lexicographic (j, i) order so
// that tuple emission follows spec's ordering guarantee regardless of the
// index's internal traversal order.
func candidateDestCells(index *rtree.Rtree, latMin, latMax float64) []*destCell {
	hits := index.SearchIntersect(&geom.Bounds{
		Min: geom.Point{X: 0, Y: latMin},
		Max: geom.Point{X: 0, Y: latMax},
	})
	cells := make([]*destCell, len(hits))
	for k, h := range hits {
		cells[k] = h.(*destCell)
	}
	sort.Slice(cells, func(a, b int) bool {
		if cells[a].j != cells[b].j {
			return cells[a].j < cells[b].j
		}
		return cells[a].i < cells[b].i
	})
	return cells
}

// buildXgrid is the canonical exchange-grid engine behind all six public
// entry points: spec §4.D says the kernels "differ only in how
// source/destination corners are laid out," so the 1D×2D and 2D×1D
// entry points expand their separable side into a full CornerMesh (via
// AsCornerMesh) and call this same engine the 2D×2D entry points use.
// order selects whether centroid moments (Clon, Clat) are emitted.
func buildXgrid(src, dst *CornerMesh, mask *sparse.DenseArray, order, maxXgrid int) ([]Tuple, error) {
	return buildXgridRows(src, dst, mask, order, maxXgrid, 0, src.Ny)
}

// buildXgridRows is buildXgrid restricted to source rows [jStart, jEnd):
// the partitioning hook worker.Pool uses to split the outer source-cell
// loop across goroutines, each with an independent tuple budget.
func buildXgridRows(src, dst *CornerMesh, mask *sparse.DenseArray, order, maxXgrid, jStart, jEnd int) ([]Tuple, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := dst.Validate(); err != nil {
		return nil, err
	}

	areaSrc := GridArea(src)
	areaDst := GridArea(dst)
	destIndex := newDestIndex(dst)

	var tuples []Tuple

	for j := jStart; j < jEnd; j++ {
		for i := 0; i < src.Nx; i++ {
			m := maskAt(mask, j, i)
			if m <= MaskThresh {
				continue
			}

			lon1, lat1 := src.CellCorners(i, j)
			x1, y1 := append([]float64(nil), lon1[:]...), append([]float64(nil), lat1[:]...)
			latInMin, latInMax := minMax(y1)

			var n1 int
			x1, y1, n1 = FixLon(x1, y1, math.Pi)
			lonInMin, lonInMax := minMax(x1[:n1])
			lonInAvg := 0.0
			for _, x := range x1[:n1] {
				lonInAvg += x
			}
			lonInAvg /= float64(n1)

			for _, dc := range candidateDestCells(destIndex, latInMin, latInMax) {
				i2, j2 := dc.i, dc.j
				lon2, lat2 := dst.CellCorners(i2, j2)
				x2, y2 := append([]float64(nil), lon2[:]...), append([]float64(nil), lat2[:]...)

				lat2Min, lat2Max := minMax(y2)
				if lat2Max < latInMin || lat2Min > latInMax {
					continue
				}

				var n2 int
				x2, y2, n2 = FixLon(x2, y2, lonInAvg)
				lon2Min, lon2Max := minMax(x2[:n2])
				if lon2Max < lonInMin || lon2Min > lonInMax {
					continue
				}

				xOut, yOut, nOut, err := Clip2Dx2D(x1[:n1], y1[:n1], x2[:n2], y2[:n2])
				if err != nil {
					return nil, err
				}
				if nOut == 0 {
					continue
				}

				a := PolyArea(xOut[:nOut], yOut[:nOut]) * m
				minArea := math.Min(areaSrc.Get(j, i), areaDst.Get(j2, i2))
				if minArea == 0 {
					continue
				}
				if a/minArea <= AreaRatioThresh {
					continue
				}

				if len(tuples) >= maxXgrid {
					return nil, errTooManyIntersections(maxXgrid)
				}
				t := Tuple{ISrc: i, JSrc: j, IDst: i2, JDst: j2, Area: a}
				if order == 2 {
					t.Clon = PolyCtrlon(xOut[:nOut], yOut[:nOut], lonInAvg)
					t.Clat = PolyCtrlat(xOut[:nOut], yOut[:nOut])
				}
				tuples = append(tuples, t)
			}
		}
	}
	return tuples, nil
}

// BuildXgrid2Dx2DOrder1 builds the order-1 exchange grid between two full
// curvilinear meshes, optionally masked on the source side. mask may be
// nil (every source cell participates).
func BuildXgrid2Dx2DOrder1(src, dst *CornerMesh, mask *sparse.DenseArray, maxXgrid int) ([]Tuple, error) {
	return buildXgrid(src, dst, mask, 1, maxXgrid)
}

// BuildXgrid2Dx2DOrder2 is BuildXgrid2Dx2DOrder1 but additionally emits
// each tuple's centroid moments for use by the order-2 remap path.
func BuildXgrid2Dx2DOrder2(src, dst *CornerMesh, mask *sparse.DenseArray, maxXgrid int) ([]Tuple, error) {
	return buildXgrid(src, dst, mask, 2, maxXgrid)
}

// BuildXgrid1Dx2DOrder1 builds the order-1 exchange grid from a separable
// source mesh onto a full curvilinear destination mesh.
func BuildXgrid1Dx2DOrder1(src *SeparableMesh, dst *CornerMesh, mask *sparse.DenseArray, maxXgrid int) ([]Tuple, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	return buildXgrid(src.AsCornerMesh(), dst, mask, 1, maxXgrid)
}

// BuildXgrid1Dx2DOrder2 is BuildXgrid1Dx2DOrder1 with centroid moments.
func BuildXgrid1Dx2DOrder2(src *SeparableMesh, dst *CornerMesh, mask *sparse.DenseArray, maxXgrid int) ([]Tuple, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	return buildXgrid(src.AsCornerMesh(), dst, mask, 2, maxXgrid)
}

// BuildXgrid2Dx1DOrder1 builds the order-1 exchange grid from a full
// curvilinear source mesh onto a separable destination mesh.
func BuildXgrid2Dx1DOrder1(src *CornerMesh, dst *SeparableMesh, mask *sparse.DenseArray, maxXgrid int) ([]Tuple, error) {
	if err := dst.Validate(); err != nil {
		return nil, err
	}
	return buildXgrid(src, dst.AsCornerMesh(), mask, 1, maxXgrid)
}

// BuildXgrid2Dx1DOrder2 is BuildXgrid2Dx1DOrder1 with centroid moments.
func BuildXgrid2Dx1DOrder2(src *CornerMesh, dst *SeparableMesh, mask *sparse.DenseArray, maxXgrid int) ([]Tuple, error) {
	if err := dst.Validate(); err != nil {
		return nil, err
	}
	return buildXgrid(src, dst.AsCornerMesh(), mask, 2, maxXgrid)
}

// BuildXgridRange is BuildXgrid2Dx2DOrder1/2 restricted to source rows
// [jStart, jEnd): the partitioning hook the worker package uses to split
// the outer source-cell loop across goroutines. Each call builds its own
// destination index, so callers partitioning a single (src, dst) pair
// across many goroutines pay that setup cost once per goroutine; this
// only pays off when the per-row clip work dominates it.
func BuildXgridRange(src, dst *CornerMesh, mask *sparse.DenseArray, order, maxXgrid, jStart, jEnd int) ([]Tuple, error) {
	return buildXgridRows(src, dst, mask, order, maxXgrid, jStart, jEnd)
}

// ApplySouthExtFix implements the cubic-sphere south-extension fix-up for
// 1-tile ocean meshes coupled to a multi-tile atmosphere (spec §4.D): if
// dst's minimum latitude exceeds atmMinLat by more than tol, one synthetic
// southern row of water-free cells is prepended at atmMinLat. It returns
// the (possibly augmented) mesh and the south_ext offset (0 or 1): a JDst
// emitted by the builder run against the returned mesh maps back onto
// dst's row numbering by subtracting that offset (see rebaseSouthExt).
func ApplySouthExtFix(dst *CornerMesh, atmMinLat, tol float64) (mesh *CornerMesh, southExt int) {
	dstMinLat, _ := minMax(dst.Lat)
	if dstMinLat-atmMinLat <= tol {
		return dst, 0
	}

	out := NewCornerMesh(dst.Nx, dst.Ny+1)
	rowW := dst.Nx + 1
	for i := 0; i < rowW; i++ {
		out.Lon[i] = dst.Lon[i]
		out.Lat[i] = atmMinLat
	}
	copy(out.Lon[rowW:], dst.Lon)
	copy(out.Lat[rowW:], dst.Lat)
	return out, 1
}

// rebaseSouthExt subtracts southExt from every tuple's JDst, mapping
// indices emitted against ApplySouthExtFix's augmented mesh back onto
// dst's original row numbering. A tuple that only intersects the
// synthetic water-free row (JDst would go negative) is dropped: that row
// has no counterpart in the caller's un-augmented mesh.
func rebaseSouthExt(tuples []Tuple, southExt int) []Tuple {
	if southExt == 0 {
		return tuples
	}
	out := tuples[:0]
	for _, t := range tuples {
		t.JDst -= southExt
		if t.JDst < 0 {
			continue
		}
		out = append(out, t)
	}
	return out
}

// BuildXgrid2Dx2DOrder1SouthExt is BuildXgrid2Dx2DOrder1 with the
// cubic-sphere south-extension fix-up (spec §4.D) applied to dst first:
// dst is augmented via ApplySouthExtFix if its minimum latitude falls
// short of atmMinLat by more than tol, the builder runs against the
// augmented mesh, and every emitted JDst is rebased back onto dst's
// original row numbering before the tuples are returned.
func BuildXgrid2Dx2DOrder1SouthExt(src, dst *CornerMesh, mask *sparse.DenseArray, maxXgrid int, atmMinLat, tol float64) ([]Tuple, error) {
	augmented, southExt := ApplySouthExtFix(dst, atmMinLat, tol)
	tuples, err := buildXgrid(src, augmented, mask, 1, maxXgrid)
	if err != nil {
		return nil, err
	}
	return rebaseSouthExt(tuples, southExt), nil
}

// BuildXgrid2Dx2DOrder2SouthExt is BuildXgrid2Dx2DOrder1SouthExt with
// centroid moments, for use with RemapOrder2.
func BuildXgrid2Dx2DOrder2SouthExt(src, dst *CornerMesh, mask *sparse.DenseArray, maxXgrid int, atmMinLat, tol float64) ([]Tuple, error) {
	augmented, southExt := ApplySouthExtFix(dst, atmMinLat, tol)
	tuples, err := buildXgrid(src, augmented, mask, 2, maxXgrid)
	if err != nil {
		return nil, err
	}
	return rebaseSouthExt(tuples, southExt), nil
}
