package model

// SurveyLeg is one step of an expedition route: travel from the previous
// waypoint to (LatDeg, LongDeg). Heading and distance are normally derived
// from the waypoints; the optional overrides win when supplied, for legs
// whose dead-reckoning log disagrees with the assumed geography.
type SurveyLeg struct {
	LatDeg  float64 `json:"lat_deg"`
	LongDeg float64 `json:"long_deg"`

	HeadingDeg *float64 `json:"heading_deg,omitempty"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}
