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

// Package main implements remapctl, a command-line driver that applies a
// conservative remap of a single field between two meshes described by
// netCDF files.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"bitbucket.org/ctessum/sparse"

	"github.com/ctessum/spheremesh"
	"github.com/ctessum/spheremesh/meshio"
	"github.com/ctessum/spheremesh/worker"
)

// ConfigInfo holds the configuration information for a remapctl run.
// The Gx/Gy/ClonSrc/ClatSrc variables are only read when Order is 2; they
// hold per-source-cell gradients and centroids precomputed upstream (for
// example by a separate gradient_c2l pass over a cubed-sphere source
// mesh), since spec §4.F scopes that operator to cubed-sphere sources
// specifically rather than to every remap.
type ConfigInfo struct {
	SrcMeshFile string // netCDF file holding the source CornerMesh
	DstMeshFile string // netCDF file holding the destination CornerMesh
	FieldFile   string // netCDF file holding the source field and, for order 2, its gradient/centroid fields
	FieldVar    string // name of the source field variable
	GxVar       string // order 2 only: name of the source x-gradient variable
	GyVar       string // order 2 only: name of the source y-gradient variable
	ClonSrcVar  string // order 2 only: name of the source centroid-longitude variable
	ClatSrcVar  string // order 2 only: name of the source centroid-latitude variable
	Order       int    // 1 or 2
	MaxXgrid    int    // per-worker tuple capacity
	OutputFile  string // netCDF file to write the remapped field to
	OutputVar   string // name of the output field variable
}

var (
	configFile = flag.String("config", "", "Path to configuration file")
	config     = new(ConfigInfo)
)

func main() {
	flag.Parse()
	if *configFile == "" {
		log.Println("Need to specify configuration file as in " +
			"`remapctl -config=configFile.json`")
		os.Exit(1)
	}
	readConfigFile(*configFile)

	src, err := loadMesh(config.SrcMeshFile)
	if err != nil {
		panic(err)
	}
	dst, err := loadMesh(config.DstMeshFile)
	if err != nil {
		panic(err)
	}

	ff, err := os.Open(config.FieldFile)
	if err != nil {
		panic(err)
	}
	field, err := meshio.LoadField(ff, config.FieldVar, src.Ny, src.Nx)
	if err != nil {
		panic(err)
	}

	pool := worker.NewPool(config.MaxXgrid)
	tuples, err := pool.Build(src, dst, nil, worker.Order(config.Order))
	if err != nil {
		panic(err)
	}
	log.Printf("remapctl: built %d exchange-grid tuples", len(tuples))

	areaDst := spheremesh.GridArea(dst)

	var result *sparse.DenseArray
	if config.Order == 2 {
		gx, gy, clonSrc, clatSrc := loadGradientFields(ff, src.Ny, src.Nx)
		gradMask := spheremesh.GradientMask(func(j, i int) bool { return false }, src.Ny, src.Nx)
		result = spheremesh.RemapOrder2(tuples, field, areaDst, gx, gy, clonSrc, clatSrc, gradMask, dst.Ny, dst.Nx)
	} else {
		result = spheremesh.RemapOrder1(tuples, field, areaDst, dst.Ny, dst.Nx)
	}
	ff.Close()

	outFile, err := os.Create(config.OutputFile)
	if err != nil {
		panic(err)
	}
	defer outFile.Close()
	if err := meshio.SaveField(outFile, dst, config.OutputVar, result); err != nil {
		panic(err)
	}
}

func loadGradientFields(ff *os.File, ny, nx int) (gx, gy, clonSrc, clatSrc *sparse.DenseArray) {
	if config.GxVar == "" || config.GyVar == "" || config.ClonSrcVar == "" || config.ClatSrcVar == "" {
		log.Println("remapctl: order 2 requires GxVar, GyVar, ClonSrcVar, and ClatSrcVar to be set")
		os.Exit(1)
	}
	var err error
	if gx, err = meshio.LoadField(ff, config.GxVar, ny, nx); err != nil {
		panic(err)
	}
	if gy, err = meshio.LoadField(ff, config.GyVar, ny, nx); err != nil {
		panic(err)
	}
	if clonSrc, err = meshio.LoadField(ff, config.ClonSrcVar, ny, nx); err != nil {
		panic(err)
	}
	if clatSrc, err = meshio.LoadField(ff, config.ClatSrcVar, ny, nx); err != nil {
		panic(err)
	}
	return gx, gy, clonSrc, clatSrc
}

func loadMesh(path string) (*spheremesh.CornerMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("remapctl: opening %s: %v", path, err)
	}
	defer f.Close()
	return meshio.LoadMesh(f)
}

func readConfigFile(filename string) {
	file, err := os.Open(filename)
	if err != nil {
		fmt.Printf("The configuration file you have specified, %v, does not "+
			"appear to exist. Please check the file name and location and "+
			"try again.\n", filename)
		os.Exit(1)
	}
	reader := bufio.NewReader(file)
	b, err := ioutil.ReadAll(reader)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(b, config); err != nil {
		panic(err)
	}
	if config.Order != 1 && config.Order != 2 {
		config.Order = 1
	}
	if config.MaxXgrid == 0 {
		config.MaxXgrid = 1000000
	}
}
