package core

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/stellar-geodesy/model"
)

// StarPosition is a homogeneous 3-D star position in the shared global
// frame: Weight 1 marks a finite position (Pos in km), Weight 0 a
// direction at infinity (Pos is a bare unit direction).
type StarPosition struct {
	Pos    r3.Vec  `json:"pos"`
	Weight float64 `json:"weight"`
}

// AtInfinity reports whether the star has no finite distance assumed.
func (p StarPosition) AtInfinity() bool { return p.Weight == 0 }

// StarGenerator turns one reference patch's sky into absolute star
// positions and re-synthesises observations for any other patch. The
// position map is populated once at construction and read-only afterwards,
// so a generator is safe for concurrent use.
type StarGenerator struct {
	stars map[string]StarPosition
}

// NewStarGenerator builds star positions from the reference patch's
// observations. Stars present in distances get a finite position at the
// assumed range; all others become directions at infinity.
func NewStarGenerator(ref *SurfaceSquare, distances model.DistanceTable) (*StarGenerator, error) {
	if ref == nil {
		return nil, fmt.Errorf("NewStarGenerator: nil reference patch")
	}

	stars := make(map[string]StarPosition, len(ref.Stars))
	for name, obs := range ref.Stars {
		local := ToDirection(obs.AzDeg, obs.ElDeg)
		distKm, finite := distances[name]
		if finite {
			global := Rotate(r3.Scale(distKm, local), ref.RotFromNominal)
			stars[name] = StarPosition{Pos: r3.Add(global, ref.Center), Weight: 1}
		} else {
			stars[name] = StarPosition{Pos: Rotate(local, ref.RotFromNominal), Weight: 0}
		}
	}
	return &StarGenerator{stars: stars}, nil
}

// Position returns the stored position of a star by name.
func (g *StarGenerator) Position(star string) (StarPosition, bool) {
	p, ok := g.stars[star]
	return p, ok
}

// StarNames lists the known stars in a stable order.
func (g *StarGenerator) StarNames() []string {
	names := make([]string, 0, len(g.stars))
	for name := range g.stars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Synthesize computes the sky a patch would observe: one observation per
// known star, expressed in the patch's local frame and tagged with its
// latitude/longitude labels. Synthesising the reference patch's own sky
// reproduces the input observations within numeric tolerance.
func (g *StarGenerator) Synthesize(patch *SurfaceSquare) ([]model.StarObservation, error) {
	if patch == nil {
		return nil, fmt.Errorf("Synthesize: nil patch")
	}

	inv := patch.RotFromNominal.Inverse()
	obs := make([]model.StarObservation, 0, len(g.stars))
	for _, name := range g.StarNames() {
		pos := g.stars[name]

		global := pos.Pos
		if !pos.AtInfinity() {
			global = r3.Sub(pos.Pos, patch.Center)
		}
		if r3.Norm(global) == 0 {
			// Finite star exactly at the patch centre: no direction exists.
			continue
		}
		local := r3.Unit(Rotate(global, inv))

		obs = append(obs, model.StarObservation{
			LatDeg:  patch.LatDeg,
			LongDeg: patch.LongDeg,
			Star:    name,
			AzDeg:   AzimuthOf(local),
			ElDeg:   ElevationOf(local),
		})
	}
	return obs, nil
}
