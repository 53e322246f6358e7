package model

// StarObservation is a single directional sighting of a named star from a
// point on the surface. Azimuth is degrees clockwise from north, elevation
// degrees above the local horizon.
type StarObservation struct {
	LatDeg  float64 `json:"lat_deg"`
	LongDeg float64 `json:"long_deg"`
	Star    string  `json:"star"`
	AzDeg   float64 `json:"az_deg"`
	ElDeg   float64 `json:"el_deg"`
}

// DistanceTable maps a star name to its assumed distance in kilometres.
// Stars absent from the table are treated as infinitely distant.
type DistanceTable map[string]float64
