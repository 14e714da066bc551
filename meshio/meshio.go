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

// Package meshio reads and writes CornerMesh geometry and dense field
// data to netCDF files, so that spheremesh's pure in-memory types can be
// staged from and checkpointed to disk between pipeline stages.
package meshio

import (
	"fmt"
	"os"

	"bitbucket.org/ctessum/cdf"
	"bitbucket.org/ctessum/sparse"

	"github.com/ctessum/spheremesh"
)

// MeshVersion identifies the netCDF layout this package reads and writes,
// stored as the "mesh_version" global attribute of every file it creates.
const MeshVersion = "spheremesh-mesh-v1"

// LoadMesh reads a CornerMesh previously written by SaveMesh: an "nx" and
// "ny" global attribute give the cell counts, and "x"/"y" variables of
// shape (ny+1, nx+1) give the corner longitudes and latitudes in radians.
func LoadMesh(rw cdf.ReaderWriterAt) (*spheremesh.CornerMesh, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("meshio.LoadMesh: %v", err)
	}

	version := f.Header.GetAttribute("", "mesh_version").(string)
	if version != MeshVersion {
		return nil, fmt.Errorf("meshio.LoadMesh: mesh version %s is incompatible with %s", version, MeshVersion)
	}

	nx := int(f.Header.GetAttribute("", "nx").([]int32)[0])
	ny := int(f.Header.GetAttribute("", "ny").([]int32)[0])

	mesh := spheremesh.NewCornerMesh(nx, ny)
	if err := readCorner(f, "x", mesh.Lon); err != nil {
		return nil, fmt.Errorf("meshio.LoadMesh: %v", err)
	}
	if err := readCorner(f, "y", mesh.Lat); err != nil {
		return nil, fmt.Errorf("meshio.LoadMesh: %v", err)
	}
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

func readCorner(f *cdf.File, name string, dst []float64) error {
	r := f.Reader(name, nil, nil)
	tmp := make([]float32, len(dst))
	if _, err := r.Read(tmp); err != nil {
		return err
	}
	if len(tmp) != len(dst) {
		return fmt.Errorf("variable %s has %d elements, mesh expects %d", name, len(tmp), len(dst))
	}
	for i, v := range tmp {
		dst[i] = float64(v)
	}
	return nil
}

// SaveMesh writes mesh to w as a netCDF file readable by LoadMesh.
func SaveMesh(w *os.File, mesh *spheremesh.CornerMesh) error {
	h := cdf.NewHeader(
		[]string{"xc", "yc"},
		[]int{mesh.Nx + 1, mesh.Ny + 1},
	)
	h.AddAttribute("", "mesh_version", MeshVersion)
	h.AddAttribute("", "nx", []int32{int32(mesh.Nx)})
	h.AddAttribute("", "ny", []int32{int32(mesh.Ny)})
	h.AddVariable("x", []string{"yc", "xc"}, []float32{0})
	h.AddAttribute("x", "units", "radians")
	h.AddVariable("y", []string{"yc", "xc"}, []float32{0})
	h.AddAttribute("y", "units", "radians")
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("meshio.SaveMesh: %v", err)
	}
	if err := writeCorner(f, "x", mesh.Lon); err != nil {
		return fmt.Errorf("meshio.SaveMesh: %v", err)
	}
	if err := writeCorner(f, "y", mesh.Lat); err != nil {
		return fmt.Errorf("meshio.SaveMesh: %v", err)
	}
	return cdf.UpdateNumRecs(w)
}

func writeCorner(f *cdf.File, name string, src []float64) error {
	data32 := make([]float32, len(src))
	for i, v := range src {
		data32[i] = float32(v)
	}
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	_, err := w.Write(data32)
	return err
}

// LoadField reads the ny*nx variable named varName from rw into a dense field.
func LoadField(rw cdf.ReaderWriterAt, varName string, ny, nx int) (*sparse.DenseArray, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("meshio.LoadField: %v", err)
	}
	out := sparse.ZerosDense(ny, nx)
	r := f.Reader(varName, nil, nil)
	tmp := make([]float32, len(out.Elements))
	if _, err := r.Read(tmp); err != nil {
		return nil, fmt.Errorf("meshio.LoadField: %v", err)
	}
	for i, v := range tmp {
		out.Elements[i] = float64(v)
	}
	return out, nil
}

// SaveField writes data as a single ny*nx variable named varName, along
// with mesh's corners, to w.
func SaveField(w *os.File, mesh *spheremesh.CornerMesh, varName string, data *sparse.DenseArray) error {
	h := cdf.NewHeader(
		[]string{"xc", "yc", "x", "y"},
		[]int{mesh.Nx + 1, mesh.Ny + 1, data.Shape[1], data.Shape[0]},
	)
	h.AddAttribute("", "mesh_version", MeshVersion)
	h.AddAttribute("", "nx", []int32{int32(mesh.Nx)})
	h.AddAttribute("", "ny", []int32{int32(mesh.Ny)})
	h.AddVariable("xc", []string{"yc", "xc"}, []float32{0})
	h.AddVariable("yc", []string{"yc", "xc"}, []float32{0})
	h.AddVariable(varName, []string{"y", "x"}, []float32{0})
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("meshio.SaveField: %v", err)
	}
	if err := writeCorner(f, "xc", mesh.Lon); err != nil {
		return fmt.Errorf("meshio.SaveField: %v", err)
	}
	if err := writeCorner(f, "yc", mesh.Lat); err != nil {
		return fmt.Errorf("meshio.SaveField: %v", err)
	}

	data32 := make([]float32, len(data.Elements))
	for i, v := range data.Elements {
		data32[i] = float32(v)
	}
	end := f.Header.Lengths(varName)
	start := make([]int, len(end))
	fw := f.Writer(varName, start, end)
	if _, err := fw.Write(data32); err != nil {
		return fmt.Errorf("meshio.SaveField: writing variable %s: %v", varName, err)
	}
	return cdf.UpdateNumRecs(w)
}
