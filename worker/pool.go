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

// Package worker partitions the exchange-grid builder's outer source-cell
// loop across goroutines, one contiguous row range per available processor,
// and merges each partition's tuple stream back into a single ordered
// result.
package worker

import (
	"runtime"
	"sort"
	"sync"

	"bitbucket.org/ctessum/sparse"

	"github.com/ctessum/spheremesh"
)

// Order selects which exchange-grid kernel order Pool.Build invokes.
type Order int

const (
	Order1 Order = 1
	Order2 Order = 2
)

// partition is one goroutine's row range [JStart, JEnd) of the source
// mesh. Its tuple capacity is the Pool's MaxXgridPerWorker.
type partition struct {
	JStart, JEnd int
}

// partitions splits [0, ny) into n roughly-equal, contiguous row ranges,
// dropping any that would be empty.
func partitions(ny, n int) []partition {
	if n > ny {
		n = ny
	}
	if n < 1 {
		n = 1
	}
	out := make([]partition, 0, n)
	base := ny / n
	rem := ny % n
	start := 0
	for k := 0; k < n; k++ {
		size := base
		if k < rem {
			size++
		}
		if size == 0 {
			continue
		}
		out = append(out, partition{JStart: start, JEnd: start + size})
		start += size
	}
	return out
}

// Pool builds one exchange grid by fanning the source mesh's row range out
// across NumWorkers goroutines (default runtime.GOMAXPROCS(0)), each
// independently indexing the destination mesh and clipping its own row
// range, then merges every partition's tuples back into lexicographic
// (JSrc, ISrc, JDst, IDst) order. MaxXgridPerWorker caps each partition's
// own tuple budget; a partition that overflows its share fails the whole
// Build call.
type Pool struct {
	NumWorkers        int
	MaxXgridPerWorker int
}

// NewPool returns a Pool sized to the number of available processors.
func NewPool(maxXgridPerWorker int) *Pool {
	return &Pool{NumWorkers: runtime.GOMAXPROCS(0), MaxXgridPerWorker: maxXgridPerWorker}
}

// Build runs BuildXgridRange once per partition, concurrently, and returns
// the merged tuple list. Every partition runs to completion; if any of
// them returned an error, Build returns the error of the lowest-numbered
// failing partition and discards all tuples.
func (p *Pool) Build(src, dst *spheremesh.CornerMesh, mask *sparse.DenseArray, order Order) ([]spheremesh.Tuple, error) {
	parts := partitions(src.Ny, p.NumWorkers)

	results := make([][]spheremesh.Tuple, len(parts))
	errs := make([]error, len(parts))

	var wg sync.WaitGroup
	wg.Add(len(parts))
	for k, part := range parts {
		go func(k int, part partition) {
			defer wg.Done()
			tuples, err := spheremesh.BuildXgridRange(src, dst, mask, int(order), p.MaxXgridPerWorker, part.JStart, part.JEnd)
			results[k] = tuples
			errs[k] = err
		}(k, part)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var merged []spheremesh.Tuple
	for _, r := range results {
		merged = append(merged, r...)
	}
	sort.Slice(merged, func(a, b int) bool {
		ta, tb := merged[a], merged[b]
		if ta.JSrc != tb.JSrc {
			return ta.JSrc < tb.JSrc
		}
		if ta.ISrc != tb.ISrc {
			return ta.ISrc < tb.ISrc
		}
		if ta.JDst != tb.JDst {
			return ta.JDst < tb.JDst
		}
		return ta.IDst < tb.IDst
	})
	return merged, nil
}

// InterpolateMissingGradients fills holes in a source-side order-2
// gradient field before it is handed to spheremesh.RemapOrder2. Wherever
// gradMask reports a cell's 8-neighbor stencil is incomplete (so the
// Taylor correction there would otherwise just be disabled), this
// interpolates a substitute gx/gy value along that row from its valid
// neighbors using spheremesh.CubicSpline, and marks the cell valid in
// gradMask so RemapOrder2 applies the interpolated correction instead of
// skipping it. Rows with fewer than two valid columns are left untouched;
// their gradMask entries stay 0. Both fields are filled against the
// row's ORIGINAL valid-column set, computed once, so filling gx first
// never makes fillRow mistake a gx-only fill for a cell with genuine gy
// data.
func InterpolateMissingGradients(gx, gy, gradMask *sparse.DenseArray, ny, nx int) {
	for j := 0; j < ny; j++ {
		validCols := validColumns(gradMask, j, nx)
		if len(validCols) < 2 {
			continue
		}
		fillRow(gx, j, nx, validCols)
		fillRow(gy, j, nx, validCols)
		for _, i := range missingColumns(gradMask, j, nx) {
			gradMask.Set(1, j, i)
		}
	}
}

func validColumns(gradMask *sparse.DenseArray, j, nx int) []int {
	var cols []int
	for i := 0; i < nx; i++ {
		if gradMask.Get(j, i) > 0.5 {
			cols = append(cols, i)
		}
	}
	return cols
}

func missingColumns(gradMask *sparse.DenseArray, j, nx int) []int {
	var cols []int
	for i := 0; i < nx; i++ {
		if gradMask.Get(j, i) <= 0.5 {
			cols = append(cols, i)
		}
	}
	return cols
}

func fillRow(field *sparse.DenseArray, j, nx int, validCols []int) {
	validX := make([]float64, len(validCols))
	validY := make([]float64, len(validCols))
	for k, i := range validCols {
		validX[k] = float64(i)
		validY[k] = field.Get(j, i)
	}
	valid := make(map[int]bool, len(validCols))
	for _, i := range validCols {
		valid[i] = true
	}
	for i := 0; i < nx; i++ {
		if valid[i] {
			continue
		}
		filled := spheremesh.CubicSpline(validX, validY, []float64{float64(i)}, 1e30, 1e30)
		field.Set(filled[0], j, i)
	}
}
