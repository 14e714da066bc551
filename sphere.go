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

// Vec3 is a Cartesian point or vector on or around the unit sphere.
type Vec3 [3]float64

// LatLonToXYZ converts a (lon, lat) pair in radians to a unit-sphere
// Cartesian vector.
func LatLonToXYZ(lon, lat float64) Vec3 {
	return Vec3{
		math.Cos(lat) * math.Cos(lon),
		math.Cos(lat) * math.Sin(lon),
		math.Sin(lat),
	}
}

// XYZToLatLon converts a Cartesian vector to (lon, lat) in radians. lon is
// returned in [0, 2*pi). At the poles, where the vector's horizontal
// component vanishes, lon is taken to be 0.
func XYZToLatLon(v Vec3) (lon, lat float64) {
	dist := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	x, y, z := v[0]/dist, v[1]/dist, v[2]/dist

	if math.Abs(x)+math.Abs(y) < Epsln {
		lon = 0
	} else {
		lon = math.Atan2(y, x)
	}
	lat = math.Asin(z)
	if lon < 0 {
		lon += 2 * math.Pi
	}
	return lon, lat
}

// GreatCircleDistance returns the shortest distance in meters between two
// (lon, lat) points in radians, along a great circle of radius Radius.
// The haversine form is used deliberately: the naive acos form loses
// precision for small separations.
func GreatCircleDistance(lon1, lat1, lon2, lat2 float64) float64 {
	sdlat := math.Sin((lat1 - lat2) / 2)
	sdlon := math.Sin((lon1 - lon2) / 2)
	beta := 2 * math.Asin(math.Sqrt(sdlat*sdlat+math.Cos(lat1)*math.Cos(lat2)*sdlon*sdlon))
	return Radius * beta
}

// wrapPi brings an angle difference into [-pi, pi].
func wrapPi(d float64) float64 {
	if d > math.Pi {
		return d - 2*math.Pi
	}
	if d < -math.Pi {
		return d + 2*math.Pi
	}
	return d
}

// PolyArea returns the spherical area, in square meters, of the polygon
// with vertices (x[i], y[i]) (lon, lat in radians) listed counter-clockwise
// as seen from outside the sphere. The area is computed by line-integrating
// -sin(lat) dlon around the boundary. Longitude differences across an edge
// are wrapped into [-pi, pi]; callers whose polygon is already known to not
// cross the antimeridian should use PolyAreaNoAdjust instead.
func PolyArea(x, y []float64) float64 {
	return polyAreaImpl(x, y, true)
}

// PolyAreaNoAdjust is PolyArea without the per-edge longitude wrap; it is
// only valid when the caller guarantees the polygon does not straddle a
// 2*pi branch cut.
func PolyAreaNoAdjust(x, y []float64) float64 {
	return polyAreaImpl(x, y, false)
}

func polyAreaImpl(x, y []float64, adjust bool) float64 {
	n := len(x)
	area := 0.0
	for i := 0; i < n; i++ {
		ip := (i + 1) % n
		dx := x[ip] - x[i]
		lat1, lat2 := y[ip], y[i]
		if adjust {
			dx = wrapPi(dx)
		}
		if dx == 0.0 {
			continue
		}
		if math.Abs(lat1-lat2) < Small {
			area -= dx * math.Sin(0.5*(lat1+lat2))
		} else {
			area += dx * (math.Cos(lat1) - math.Cos(lat2)) / (lat1 - lat2)
		}
	}
	return area * Radius * Radius
}

// PolyCtrlat returns the un-normalized latitude moment (integral of lat dA)
// of the polygon (x, y), in meters^2-radians. Divide by the polygon's area
// to recover the true latitude centroid.
func PolyCtrlat(x, y []float64) float64 {
	n := len(x)
	ctrlat := 0.0
	for i := 0; i < n; i++ {
		ip := (i + 1) % n
		dx := x[ip] - x[i]
		lat1, lat2 := y[ip], y[i]
		hdy := (lat2 - lat1) * 0.5
		avgY := (lat1 + lat2) * 0.5
		if dx == 0.0 {
			continue
		}
		dx = wrapPi(dx)
		if math.Abs(hdy) < Small {
			ctrlat -= dx * (2*math.Cos(avgY) + lat2*math.Sin(avgY) - math.Cos(lat1))
		} else {
			ctrlat -= dx * ((math.Sin(hdy)/hdy)*(2*math.Cos(avgY)+lat2*math.Sin(avgY)) - math.Cos(lat1))
		}
	}
	return ctrlat * Radius * Radius
}

// PolyCtrlon returns the un-normalized longitude moment of the polygon
// (x, y) taken about the reference longitude clon, in meters^2-radians.
// Its integrand is (lon - clon) * cos^2(lat) dlon dlat, one factor of
// cos(lat) more than the area element, so PolyCtrlon(...)/area + clon
// approximates the centroid longitude rather than equalling it: for a
// lat/lon box, the offset from clon is scaled by the box's ratio of the
// integrals of cos^2(lat) and cos(lat).
func PolyCtrlon(x, y []float64, clon float64) float64 {
	n := len(x)
	ctrlon := 0.0
	fOf := func(lat float64) float64 { return 0.5 * (math.Cos(lat)*math.Sin(lat) + lat) }
	for i := 0; i < n; i++ {
		ip := (i + 1) % n
		phi1, phi2 := x[ip], x[i]
		lat1, lat2 := y[ip], y[i]
		dphi := phi1 - phi2
		if dphi == 0.0 {
			continue
		}
		f1 := fOf(lat1)
		f2 := fOf(lat2)

		dphi = wrapPi(dphi)
		dphi1 := wrapPi(phi1 - clon)
		dphi2 := wrapPi(phi2 - clon)

		if math.Abs(dphi2-dphi1) < math.Pi {
			ctrlon -= dphi * (dphi1*f1 + dphi2*f2) / 2.0
		} else {
			fac := math.Pi
			if dphi1 <= 0.0 {
				fac = -math.Pi
			}
			fint := f1 + (f2-f1)*(fac-dphi1)/math.Abs(dphi)
			ctrlon -= 0.5*dphi1*(dphi1-fac)*f1 - 0.5*dphi2*(dphi2+fac)*f2 + 0.5*fac*(dphi1+dphi2)*fint
		}
	}
	return ctrlon * Radius * Radius
}

// FixLon canonicalizes the longitudes of a polygon so that all vertices lie
// on a single 2*pi branch centered near tlon, inserting or deleting
// redundant pole vertices as needed so every pole crossing is represented
// by a paired vertex. It returns the (possibly changed) vertex slices and
// count; x and y may grow by at most one vertex.
func FixLon(x, y []float64, tlon float64) ([]float64, []float64, int) {
	nn := len(x)

	for i := 0; i < nn; i++ {
		if math.Abs(y[i]) < math.Pi/2-TolPole {
			continue
		}
		im := (i - 1 + nn) % nn
		ip := (i + 1) % nn
		switch {
		case y[im] == y[i] && y[ip] == y[i]:
			x, y = deleteVtx(x, y, i)
			nn--
			i--
		case y[im] != y[i] && y[ip] != y[i]:
			x, y = insertVtx(x, y, i, x[i], y[i])
			nn++
			i++
		}
	}

	for i := 0; i < nn; i++ {
		if math.Abs(y[i]) < math.Pi/2-TolPole {
			continue
		}
		im := (i - 1 + nn) % nn
		ip := (i + 1) % nn
		if y[im] != y[i] {
			x[i] = x[im]
		}
		if y[ip] != y[i] {
			x[i] = x[ip]
		}
	}

	if nn == 0 {
		return x, y, 0
	}
	xSum := x[0]
	for i := 1; i < nn; i++ {
		dx := wrapPi(x[i] - x[i-1])
		x[i] = x[i-1] + dx
		xSum += x[i]
	}

	dx := xSum/float64(nn) - tlon
	switch {
	case dx < -math.Pi:
		for i := 0; i < nn; i++ {
			x[i] += 2 * math.Pi
		}
	case dx > math.Pi:
		for i := 0; i < nn; i++ {
			x[i] -= 2 * math.Pi
		}
	}
	return x, y, nn
}

func deleteVtx(x, y []float64, nDel int) ([]float64, []float64) {
	x = append(x[:nDel], x[nDel+1:]...)
	y = append(y[:nDel], y[nDel+1:]...)
	return x, y
}

func insertVtx(x, y []float64, nIns int, lon, lat float64) ([]float64, []float64) {
	x = append(x, 0)
	y = append(y, 0)
	copy(x[nIns+1:], x[nIns:len(x)-1])
	copy(y[nIns+1:], y[nIns:len(y)-1])
	x[nIns] = lon
	y[nIns] = lat
	return x, y
}

// SphericalAngle returns the interior angle at v1 of the spherical triangle
// v1, v2, v3 (unit Cartesian vectors), i.e. the angle between the great
// circles v1-v2 and v1-v3.
func SphericalAngle(v1, v2, v3 Vec3) float64 {
	p := vectCross(v1, v2)
	q := vectCross(v1, v3)
	ddd := math.Sqrt((p[0]*p[0] + p[1]*p[1] + p[2]*p[2]) * (q[0]*q[0] + q[1]*q[1] + q[2]*q[2]))
	if ddd <= 0 {
		return 0
	}
	return math.Acos((p[0]*q[0] + p[1]*q[1] + p[2]*q[2]) / ddd)
}

func vectCross(p1, p2 Vec3) Vec3 {
	return Vec3{
		p1[1]*p2[2] - p1[2]*p2[1],
		p1[2]*p2[0] - p1[0]*p2[2],
		p1[0]*p2[1] - p1[1]*p2[0],
	}
}

func normalizeVect(v Vec3) Vec3 {
	n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	return Vec3{v[0] / n, v[1] / n, v[2] / n}
}

// UnitVectLatLon returns the local east (vlon) and north (vlat) unit
// tangent vectors, in Cartesian coordinates, at the point (lon, lat).
func UnitVectLatLon(lon, lat float64) (vlon, vlat Vec3) {
	sinLon, cosLon := math.Sin(lon), math.Cos(lon)
	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	vlon = Vec3{-sinLon, cosLon, 0}
	vlat = Vec3{-sinLat * cosLon, -sinLat * sinLon, cosLat}
	return vlon, vlat
}
