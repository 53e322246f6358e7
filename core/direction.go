package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Local direction convention: -Z is north, +Y is up, +X is east. Azimuth is
// measured in degrees clockwise from north when viewed from above, so az=90
// points east; elevation is degrees above the horizon.

// ToDirection converts an (azimuth, elevation) pair in degrees to a unit
// direction vector in the local frame.
func ToDirection(azDeg, elDeg float64) r3.Vec {
	az := azDeg * math.Pi / 180
	el := elDeg * math.Pi / 180
	sinAz, cosAz := math.Sincos(az)
	sinEl, cosEl := math.Sincos(el)
	return r3.Vec{
		X: sinAz * cosEl,
		Y: sinEl,
		Z: -cosAz * cosEl,
	}
}

// ElevationOf returns the elevation of dir in degrees. The vertical
// component is clamped so inputs slightly outside unit length stay within
// [-90, 90].
func ElevationOf(dir r3.Vec) float64 {
	return math.Asin(clamp(dir.Y, -1, 1)) * 180 / math.Pi
}

// AzimuthOf returns the azimuth of dir in degrees within [0, 360). At the
// poles (dir straight up or down) the azimuth is undefined and any value
// may be returned.
func AzimuthOf(dir r3.Vec) float64 {
	az := math.Atan2(dir.X, -dir.Z) * 180 / math.Pi
	if az < 0 {
		az += 360
	}
	return az
}
