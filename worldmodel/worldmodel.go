// Package worldmodel provides candidate surfaces for the reconstruction to
// test observations against. Each model is a strategy object exposing a
// point function (lat, long) -> 3-D point in kilometres; the engine never
// sees anything but the point function, so real and hypothetical worlds are
// interchangeable.
package worldmodel

import (
	"fmt"
	"math"
	"strings"

	satellite "github.com/joshuaferrara/go-satellite"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/stellar-geodesy/core"
)

// Sphere is a perfectly round world of the given radius. The equator/prime
// meridian point sits at (0, R, 0) with its local frame equal to the
// nominal frame.
type Sphere struct {
	RadiusKm float64
}

// Point maps geographic coordinates onto the sphere.
func (s Sphere) Point(latDeg, longDeg float64) r3.Vec {
	sinLat, cosLat := math.Sincos(latDeg * math.Pi / 180)
	sinLong, cosLong := math.Sincos(longDeg * math.Pi / 180)
	return r3.Vec{
		X: s.RadiusKm * cosLat * sinLong,
		Y: s.RadiusKm * cosLat * cosLong,
		Z: -s.RadiusKm * sinLat,
	}
}

// Ellipsoid is an oblate world: equatorial radius a, flattening f, polar
// radius a(1-f). The axis orientation matches Sphere.
type Ellipsoid struct {
	EquatorialKm float64
	Flattening   float64
}

// Point maps geodetic coordinates onto the ellipsoid surface using the
// prime-vertical radius of curvature.
func (e Ellipsoid) Point(latDeg, longDeg float64) r3.Vec {
	sinLat, cosLat := math.Sincos(latDeg * math.Pi / 180)
	sinLong, cosLong := math.Sincos(longDeg * math.Pi / 180)

	e2 := e.Flattening * (2 - e.Flattening)
	n := e.EquatorialKm / math.Sqrt(1-e2*sinLat*sinLat)

	return r3.Vec{
		X: n * cosLat * sinLong,
		Y: n * cosLat * cosLong,
		Z: -n * (1 - e2) * sinLat,
	}
}

// Plane is the flat-surface hypothesis: latitude/longitude become a simple
// Cartesian grid with no curvature anywhere.
type Plane struct {
	KmPerDeg float64
}

// Point maps coordinates onto the plane y=0.
func (p Plane) Point(latDeg, longDeg float64) r3.Vec {
	return r3.Vec{
		X: longDeg * p.KmPerDeg,
		Z: -latDeg * p.KmPerDeg,
	}
}

// Earth produces real-Earth positions through the SGP4 library's
// geodetic-to-inertial conversion, evaluated at a fixed epoch so the frame
// does not rotate between calls.
type Earth struct{}

var earthEpochJDay = satellite.JDay(2000, 1, 1, 12, 0, 0)

// Point returns the WGS-72 position of the coordinate at sea level, in km.
func (Earth) Point(latDeg, longDeg float64) r3.Vec {
	pos := satellite.LLAToECI(satellite.LatLong{
		Latitude:  latDeg * math.Pi / 180,
		Longitude: longDeg * math.Pi / 180,
	}, 0, earthEpochJDay)
	return r3.Vec{X: pos.X, Y: pos.Y, Z: pos.Z}
}

// ByName resolves a scenario's world-model name to a point function.
// radiusKm applies to the models that take a scale; zero selects the Earth
// mean radius.
func ByName(name string, radiusKm float64) (core.PointFunc, error) {
	if radiusKm == 0 {
		radiusKm = core.EarthRadiusKm
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sphere":
		return Sphere{RadiusKm: radiusKm}.Point, nil
	case "ellipsoid":
		// Earth-like flattening by default.
		return Ellipsoid{EquatorialKm: radiusKm, Flattening: 1.0 / 298.257223563}.Point, nil
	case "plane", "flat":
		return Plane{KmPerDeg: radiusKm * math.Pi / 180}.Point, nil
	case "earth":
		return Earth{}.Point, nil
	default:
		return nil, fmt.Errorf("unknown world model %q", name)
	}
}
