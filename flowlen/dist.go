package flowlen

import (
	"math"

	"github.com/terraflow/hydrotile/raster"
)

// StepDistance returns the ground distance between adjacent cells a
// and b per spec §4.9: Euclidean in a projected CRS, Haversine (over
// EarthRadiusMeters) in a geographic one, both evaluated at cell
// centers so non-square cells and latitude-dependent geographic
// spacing are handled correctly.
func StepDistance(gt raster.GeoTransform, projected bool, a, b raster.Cell) float64 {
	ax, ay := gt.CellCenter(a)
	bx, by := gt.CellCenter(b)
	if projected {
		dx, dy := bx-ax, by-ay
		return math.Sqrt(dx*dx + dy*dy)
	}
	return haversine(ay, ax, by, bx)
}

// haversine returns the great-circle distance in meters between two
// (lat,lon) points given in degrees.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	phi1, phi2 := lat1*rad, lat2*rad
	dPhi := (lat2 - lat1) * rad
	dLambda := (lon2 - lon1) * rad
	sinDPhi, sinDLambda := math.Sin(dPhi/2), math.Sin(dLambda/2)
	a := sinDPhi*sinDPhi + math.Cos(phi1)*math.Cos(phi2)*sinDLambda*sinDLambda
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(a))
}
