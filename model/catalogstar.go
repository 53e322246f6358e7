package model

import "github.com/soniakeys/unit"

// CatalogStar is one entry of the fixed-format star catalog: a name plus
// J2000 equatorial coordinates and an optional apparent magnitude.
type CatalogStar struct {
	Name string
	RA   unit.RA
	Dec  unit.Angle
	Mag  float64
}
