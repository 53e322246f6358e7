package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// CurvatureInput carries the four sightings and the travel between them:
// stars A and B as seen at the start point and again at the end point, the
// heading at the start (degrees east of north) and the distance travelled.
type CurvatureInput struct {
	StartA Observation `json:"start_a"`
	EndA   Observation `json:"end_a"`
	StartB Observation `json:"start_b"`
	EndB   Observation `json:"end_b"`

	HeadingDeg float64 `json:"heading_deg"`
	DistanceKm float64 `json:"distance_km"`
}

// CurvatureResult is the inferred local bending of the surface along the
// travel direction. Warnings are non-fatal reliability notes; the numbers
// are always populated.
type CurvatureResult struct {
	DeviationBDeg           float64  `json:"deviation_b_deg"`
	NormalCurvaturePerKm    float64  `json:"normal_curvature_per_km"`
	GeodesicTorsionDegPerKm float64  `json:"geodesic_torsion_deg_per_km"`
	Warnings                []string `json:"warnings,omitempty"`
}

// CurvatureCalculator infers normal curvature and geodesic torsion from
// paired star sightings at two locations. It works on raw directions only
// and is independent of the patch machinery. The zero value is not usable;
// construct with NewCurvatureCalculator.
type CurvatureCalculator struct {
	// MinReliableElevationDeg is the elevation below which atmospheric
	// refraction makes a sighting suspect.
	MinReliableElevationDeg float64
	// MaxDeviationDeg bounds the acceptable disagreement between the two
	// stars' mutual separation at the start and end sightings.
	MaxDeviationDeg float64
}

// NewCurvatureCalculator returns a calculator with the standard reliability
// thresholds.
func NewCurvatureCalculator() *CurvatureCalculator {
	return &CurvatureCalculator{
		MinReliableElevationDeg: 20,
		MaxDeviationDeg:         1,
	}
}

// Calculate runs the curvature inference. All warnings are accumulated on
// the result; the computation always proceeds, substituting 1 km for a
// non-positive travel distance.
func (c *CurvatureCalculator) Calculate(in CurvatureInput) CurvatureResult {
	var res CurvatureResult

	lowest := math.Min(
		math.Min(in.StartA.ElDeg, in.EndA.ElDeg),
		math.Min(in.StartB.ElDeg, in.EndB.ElDeg),
	)
	if lowest < c.MinReliableElevationDeg {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"sighting below %.0f° elevation: atmospheric refraction makes low sightings unreliable",
			c.MinReliableElevationDeg))
	}

	distKm := in.DistanceKm
	if distKm <= 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"travel distance %.3f km is not positive; substituting 1 km", in.DistanceKm))
		distKm = 1
	}

	startA := ToDirection(in.StartA.AzDeg, in.StartA.ElDeg)
	endA := ToDirection(in.EndA.AzDeg, in.EndA.ElDeg)
	startB := ToDirection(in.StartB.AzDeg, in.StartB.ElDeg)
	endB := ToDirection(in.EndB.AzDeg, in.EndB.ElDeg)

	// Align the end sky onto the start sky: first carry end-A onto start-A,
	// dragging end-B and the end frame's up-normal along.
	rot1 := RotationToBecome(endA, startA)
	endB = Rotate(endB, rot1)
	endUp := Rotate(NominalUp, rot1)

	// Then twist about the start-A axis until the B stars agree in the
	// plane orthogonal to A.
	projStartB := rejectFrom(startB, startA)
	projEndB := rejectFrom(endB, startA)
	rot2 := RotationToBecome(projEndB, projStartB)
	endB = Rotate(endB, rot2)
	endUp = Rotate(endUp, rot2)

	res.DeviationBDeg = angleBetweenDeg(endB, startB)
	if res.DeviationBDeg > c.MaxDeviationDeg {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"star separation changed by %.3f° between sightings; measurements are inconsistent",
			res.DeviationBDeg))
	}

	forward := Rotate(NominalNorth, NewRotation(NominalUp, -in.HeadingDeg))
	sideways := r3.Cross(NominalUp, forward)

	// The rotation the surface normal underwent along the leg, split into a
	// component about the sideways axis (bending in the travel direction)
	// and a component about the forward axis (twist).
	tilt := RotationToBecome(NominalUp, endUp).Packed()
	curvatureAngleDeg := r3.Dot(tilt, sideways)
	twistAngleDeg := r3.Dot(tilt, forward)

	res.NormalCurvaturePerKm = 2 * math.Pi * curvatureAngleDeg / (360 * distKm)
	res.GeodesicTorsionDegPerKm = twistAngleDeg / distKm

	return res
}

// rejectFrom removes the component of v along axis and normalises the
// remainder. A vector parallel to axis comes back zero.
func rejectFrom(v, axis r3.Vec) r3.Vec {
	rej := r3.Sub(v, r3.Scale(r3.Dot(v, axis), axis))
	n := r3.Norm(rej)
	if n < 1e-12 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, rej)
}

func angleBetweenDeg(a, b r3.Vec) float64 {
	na, nb := r3.Norm(a), r3.Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return math.Acos(clamp(r3.Dot(a, b)/(na*nb), -1, 1)) * 180 / math.Pi
}
