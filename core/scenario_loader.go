// core/scenario_loader.go
package core

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/signalsfoundry/stellar-geodesy/model"
)

// SurveyScenario describes one reconstruction run: the candidate surface to
// evaluate, where the reference observer stands, which stars have assumed
// distances, and the route the expedition walks.
type SurveyScenario struct {
	WorldModel  string              `json:"world_model"`
	RadiusKm    float64             `json:"radius_km"`
	PatchSizeKm float64             `json:"patch_size_km"`
	Reference   ScenarioPoint       `json:"reference"`
	Distances   model.DistanceTable `json:"star_distances_km"`
	Route       []model.SurveyLeg   `json:"route"`
}

// ScenarioPoint is a bare geographic coordinate in a scenario file.
type ScenarioPoint struct {
	LatDeg  float64 `json:"lat_deg"`
	LongDeg float64 `json:"long_deg"`
}

// LoadSurveyScenario reads a JSON scenario from r. It fails only on JSON /
// structural errors; geometric plausibility is the engine's business, not
// the loader's.
func LoadSurveyScenario(r io.Reader) (*SurveyScenario, error) {
	var sc SurveyScenario
	dec := json.NewDecoder(r)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("LoadSurveyScenario: decode failed: %w", err)
	}

	if sc.WorldModel == "" {
		return nil, fmt.Errorf("LoadSurveyScenario: world_model is required")
	}
	if sc.RadiusKm < 0 {
		return nil, fmt.Errorf("LoadSurveyScenario: radius_km %v is negative", sc.RadiusKm)
	}
	if sc.PatchSizeKm == 0 {
		sc.PatchSizeKm = 1
	}
	for i, leg := range sc.Route {
		if leg.LatDeg < -90 || leg.LatDeg > 90 {
			return nil, fmt.Errorf("LoadSurveyScenario: route[%d] latitude %v out of range", i, leg.LatDeg)
		}
	}
	return &sc, nil
}
