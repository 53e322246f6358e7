package core

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Nominal frame: the reference orientation every patch's absolute rotation
// is expressed against.
var (
	NominalNorth = r3.Vec{Z: -1}
	NominalUp    = r3.Vec{Y: 1}
	NominalEast  = r3.Vec{X: 1}
)

// Observation is a star sighting local to one patch.
type Observation struct {
	AzDeg float64 `json:"az_deg"`
	ElDeg float64 `json:"el_deg"`
}

// PointFunc maps geographic coordinates to a 3-D point (km) on a candidate
// surface. Implementations live in the worldmodel package.
type PointFunc func(latDeg, longDeg float64) r3.Vec

// SurfaceSquare is a labelled point on the surface together with an
// orthonormal local frame and its orientation lineage. Latitude and
// longitude are opaque labels: they identify the patch but never drive the
// geometry. ParentID is a weak reference resolved by the patch store; a
// removed parent leaves the child in place with the reference cleared.
type SurfaceSquare struct {
	ID      string  `json:"id"`
	Center  r3.Vec  `json:"center"`
	North   r3.Vec  `json:"north"`
	Up      r3.Vec  `json:"up"`
	East    r3.Vec  `json:"east"`
	SizeKm  float64 `json:"size_km"`
	LatDeg  float64 `json:"lat_deg"`
	LongDeg float64 `json:"long_deg"`

	ParentID       string   `json:"parent_id,omitempty"`
	RotFromBase    Rotation `json:"rot_from_base"`
	RotFromNominal Rotation `json:"rot_from_nominal"`

	// Stars holds this patch's observed sky, keyed by star name.
	Stars map[string]Observation `json:"stars,omitempty"`
}

// SetObservation records or replaces the sighting of a star on the patch.
func (s *SurfaceSquare) SetObservation(star string, obs Observation) {
	if s.Stars == nil {
		s.Stars = make(map[string]Observation)
	}
	s.Stars[star] = obs
}

// latStepDeg is the finite-difference step used when deriving a patch frame
// from a point function.
const latStepDeg = 0.1

// BuildPatch derives an oriented patch at (latDeg, longDeg) from the point
// function pf.
//
// North comes from a finite difference along latitude. The sample pair is
// chosen on the equator side of the patch (the south neighbour at or above
// the equator, the north neighbour below it) so the step never crosses a
// pole; the difference is oriented toward increasing latitude. East starts
// as the analogous difference along longitude and is then re-orthogonalised
// through up = east_raw × north, east = north × up, which yields an
// orthonormal triad even when pf is not perfectly smooth.
func BuildPatch(pf PointFunc, id string, latDeg, longDeg, sizeKm float64) (*SurfaceSquare, error) {
	if pf == nil {
		return nil, fmt.Errorf("BuildPatch: nil point function")
	}

	center := pf(latDeg, longDeg)

	var northRaw r3.Vec
	if latDeg >= 0 {
		northRaw = r3.Sub(center, pf(latDeg-latStepDeg, longDeg))
	} else {
		northRaw = r3.Sub(pf(latDeg+latStepDeg, longDeg), center)
	}
	if r3.Norm(northRaw) == 0 {
		return nil, fmt.Errorf("BuildPatch: degenerate surface at (%v, %v): zero latitude step", latDeg, longDeg)
	}
	north := r3.Unit(northRaw)

	eastRaw := r3.Sub(pf(latDeg, longDeg+latStepDeg), center)
	if r3.Norm(eastRaw) == 0 {
		return nil, fmt.Errorf("BuildPatch: degenerate surface at (%v, %v): zero longitude step", latDeg, longDeg)
	}
	up := r3.Unit(r3.Cross(eastRaw, north))
	east := r3.Unit(r3.Cross(north, up))

	// Orientation relative to the nominal frame: first carry nominal north
	// onto the computed north, then twist the carried east onto the computed
	// east. The second axis is parallel to north by construction.
	rot1 := RotationToBecome(NominalNorth, north)
	carriedEast := Rotate(NominalEast, rot1)
	rot2 := RotationToBecome(carriedEast, east)
	rot := Compose(rot1, rot2)

	return &SurfaceSquare{
		ID:             id,
		Center:         center,
		North:          north,
		Up:             up,
		East:           east,
		SizeKm:         sizeKm,
		LatDeg:         latDeg,
		LongDeg:        longDeg,
		RotFromBase:    rot,
		RotFromNominal: rot,
	}, nil
}

// DeriveAdjusted creates a child patch whose frame is the parent's rotated
// by rotFromBase. The reconstruction uses this to nudge a patch orientation
// while keeping its lineage.
func DeriveAdjusted(parent *SurfaceSquare, id string, rotFromBase Rotation) *SurfaceSquare {
	rotFromNominal := Compose(parent.RotFromNominal, rotFromBase)
	child := &SurfaceSquare{
		ID:             id,
		Center:         parent.Center,
		North:          Rotate(NominalNorth, rotFromNominal),
		Up:             Rotate(NominalUp, rotFromNominal),
		East:           Rotate(NominalEast, rotFromNominal),
		SizeKm:         parent.SizeKm,
		LatDeg:         parent.LatDeg,
		LongDeg:        parent.LongDeg,
		ParentID:       parent.ID,
		RotFromBase:    rotFromBase,
		RotFromNominal: rotFromNominal,
	}
	return child
}
