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

// Package main implements xgridgen, a command-line driver that builds an
// exchange grid between two meshes stored as netCDF files and writes the
// resulting tuples to a netCDF output file.
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

// ConfigInfo holds the configuration information for an xgridgen run.
// UseSouthExt opts into the cubic-sphere south-extension fix-up (spec
// §4.D), parametrized by AtmMinLat and SouthExtTol: DstMeshFile is treated
// as a 1-tile ocean mesh that may need a synthetic southern row to reach
// AtmMinLat before it is matched against the atmosphere source mesh. This bypasses the worker
// pool's row-range partitioning, since the fix-up's mesh augmentation and
// JDst rebase need to see the whole destination mesh at once.
type ConfigInfo struct {
	SrcMeshFile string  // netCDF file holding the source CornerMesh
	DstMeshFile string  // netCDF file holding the destination CornerMesh
	MaskVar     string  // name of the source mask variable, "" for no mask
	Order       int     // 1 or 2
	MaxXgrid    int     // per-worker tuple capacity
	OutputFile  string  // netCDF file to write the exchange grid tuples to
	AtmMinLat   float64 // south-ext fix-up: atmosphere mesh's minimum latitude, radians
	SouthExtTol float64 // south-ext fix-up: tolerance, radians
	UseSouthExt bool    // south-ext fix-up: explicit opt-in
}

var (
	configFile = flag.String("config", "", "Path to configuration file")
	config     = new(ConfigInfo)
)

func main() {
	flag.Parse()
	if *configFile == "" {
		log.Println("Need to specify configuration file as in " +
			"`xgridgen -config=configFile.json`")
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

	var mask *sparse.DenseArray
	if config.MaskVar != "" {
		f, err := os.Open(config.SrcMeshFile)
		if err != nil {
			panic(err)
		}
		mask, err = meshio.LoadField(f, config.MaskVar, src.Ny, src.Nx)
		if err != nil {
			panic(err)
		}
		f.Close()
	}

	var tuples []spheremesh.Tuple
	if config.UseSouthExt {
		if config.Order == 2 {
			tuples, err = spheremesh.BuildXgrid2Dx2DOrder2SouthExt(src, dst, mask, config.MaxXgrid, config.AtmMinLat, config.SouthExtTol)
		} else {
			tuples, err = spheremesh.BuildXgrid2Dx2DOrder1SouthExt(src, dst, mask, config.MaxXgrid, config.AtmMinLat, config.SouthExtTol)
		}
	} else {
		pool := worker.NewPool(config.MaxXgrid)
		tuples, err = pool.Build(src, dst, mask, worker.Order(config.Order))
	}
	if err != nil {
		panic(err)
	}
	log.Printf("xgridgen: built %d exchange-grid tuples", len(tuples))

	if err := writeTuples(config.OutputFile, dst, tuples); err != nil {
		panic(err)
	}
}

func loadMesh(path string) (*spheremesh.CornerMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("xgridgen: opening %s: %v", path, err)
	}
	defer f.Close()
	return meshio.LoadMesh(f)
}

// writeTuples accumulates the order-1 area-weighted tuple count into a
// dense destination-shaped field (a coverage-fraction proxy) and writes it
// alongside dst's geometry, giving a quick visual sanity check of the
// exchange grid without needing a separate tuple-table file format.
func writeTuples(path string, dst *spheremesh.CornerMesh, tuples []spheremesh.Tuple) error {
	areaDst := spheremesh.GridArea(dst)
	coverage := spheremesh.NewField(dst.Ny, dst.Nx)
	for _, t := range tuples {
		a := areaDst.Get(t.JDst, t.IDst)
		if a == 0 {
			continue
		}
		coverage.Set(coverage.Get(t.JDst, t.IDst)+t.Area/a, t.JDst, t.IDst)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("xgridgen: creating %s: %v", path, err)
	}
	defer out.Close()
	return meshio.SaveField(out, dst, "coverage_fraction", coverage)
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
