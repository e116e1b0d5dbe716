package geoutil

import (
	"math"
	"math/rand"
)

// WGS84 equatorial radius in meters.
const earthRadius = 6378137.0

// RandomPoint returns a coordinate picked uniformly by area from the
// disc of radiusMeters around (lat, lon), both in degrees.
//
// The radial offset scales by sqrt of a uniform sample so points don't
// cluster at the center, and the longitude delta is divided by cos(lat)
// since meridians converge away from the equator. The rand source is
// injected so callers can pin a seed.
func RandomPoint(rng *rand.Rand, lat, lon, radiusMeters float64) (float64, float64) {
	dist := math.Sqrt(rng.Float64()) * radiusMeters
	angle := 2 * math.Pi * rng.Float64()

	deltaLat := (dist / earthRadius) * math.Sin(angle)
	deltaLon := (dist / (earthRadius * math.Cos(lat*math.Pi/180))) * math.Cos(angle)

	return lat + deltaLat*180/math.Pi, lon + deltaLon*180/math.Pi
}

// Distance returns the great-circle distance between two coordinates
// in meters, using the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := math.Pi / 180
	phi1 := lat1 * toRad
	phi2 := lat2 * toRad
	dPhi := (lat2 - lat1) * toRad
	dLambda := (lon2 - lon1) * toRad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadius * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
