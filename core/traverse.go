package core

import "math"

// EarthRadiusKm is the mean Earth radius used whenever a traverse is
// evaluated against the assumed real-world geography (kilometres).
const EarthRadiusKm = 6371.0

// TravelBetween derives the initial heading (degrees east of north) and the
// great-circle distance between two geographic points on a sphere of the
// given radius, for callers that only know coordinates. The separation
// angle comes from the spherical law of cosines.
func TravelBetween(lat1Deg, long1Deg, lat2Deg, long2Deg, radiusKm float64) (headingDeg, distanceKm float64) {
	phi1 := lat1Deg * math.Pi / 180
	phi2 := lat2Deg * math.Pi / 180
	dLambda := (long2Deg - long1Deg) * math.Pi / 180

	cosSep := math.Sin(phi1)*math.Sin(phi2) + math.Cos(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	sep := math.Acos(clamp(cosSep, -1, 1))
	distanceKm = radiusKm * sep

	sinSep := math.Sin(sep)
	cosPhi1 := math.Cos(phi1)
	if sinSep < 1e-12 || cosPhi1 < 1e-12 {
		// Coincident points, or a start at a pole where every direction is
		// toward the equator.
		if phi1 > 0 && sinSep >= 1e-12 {
			return 180, distanceKm
		}
		return 0, distanceKm
	}

	cosHeading := (math.Sin(phi2) - math.Sin(phi1)*cosSep) / (sinSep * cosPhi1)
	headingDeg = math.Acos(clamp(cosHeading, -1, 1)) * 180 / math.Pi
	if math.Sin(dLambda) < 0 {
		headingDeg = 360 - headingDeg
	}
	if headingDeg >= 360 {
		headingDeg -= 360
	}
	return headingDeg, distanceKm
}
