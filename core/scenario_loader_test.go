package core

import (
	"strings"
	"testing"
)

func TestLoadSurveyScenario(t *testing.T) {
	input := `{
		"world_model": "sphere",
		"radius_km": 6371,
		"patch_size_km": 2,
		"reference": {"lat_deg": 10, "long_deg": 20},
		"star_distances_km": {"Sirius": 8.14e13},
		"route": [
			{"lat_deg": 10.5, "long_deg": 20},
			{"lat_deg": 11, "long_deg": 20, "heading_deg": 0, "distance_km": 55.5}
		]
	}`

	sc, err := LoadSurveyScenario(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadSurveyScenario: %v", err)
	}
	if sc.WorldModel != "sphere" || sc.RadiusKm != 6371 || sc.PatchSizeKm != 2 {
		t.Fatalf("scenario header = %+v", sc)
	}
	if sc.Reference.LatDeg != 10 || sc.Reference.LongDeg != 20 {
		t.Fatalf("reference = %+v", sc.Reference)
	}
	if got := sc.Distances["Sirius"]; got != 8.14e13 {
		t.Fatalf("Distances[Sirius] = %v", got)
	}
	if len(sc.Route) != 2 {
		t.Fatalf("route length = %d, want 2", len(sc.Route))
	}
	if sc.Route[0].HeadingDeg != nil || sc.Route[0].DistanceKm != nil {
		t.Fatalf("route[0] should have no overrides: %+v", sc.Route[0])
	}
	if sc.Route[1].HeadingDeg == nil || *sc.Route[1].HeadingDeg != 0 {
		t.Fatalf("route[1] heading override missing: %+v", sc.Route[1])
	}
	if sc.Route[1].DistanceKm == nil || *sc.Route[1].DistanceKm != 55.5 {
		t.Fatalf("route[1] distance override missing: %+v", sc.Route[1])
	}
}

func TestLoadSurveyScenarioDefaultsPatchSize(t *testing.T) {
	sc, err := LoadSurveyScenario(strings.NewReader(`{"world_model": "flat"}`))
	if err != nil {
		t.Fatalf("LoadSurveyScenario: %v", err)
	}
	if sc.PatchSizeKm != 1 {
		t.Fatalf("PatchSizeKm = %v, want default 1", sc.PatchSizeKm)
	}
}

func TestLoadSurveyScenarioRejectsMissingWorldModel(t *testing.T) {
	if _, err := LoadSurveyScenario(strings.NewReader(`{"radius_km": 1}`)); err == nil {
		t.Fatalf("expected error for missing world_model")
	}
}

func TestLoadSurveyScenarioRejectsBadLatitude(t *testing.T) {
	input := `{"world_model": "sphere", "route": [{"lat_deg": 120, "long_deg": 0}]}`
	if _, err := LoadSurveyScenario(strings.NewReader(input)); err == nil {
		t.Fatalf("expected error for out-of-range latitude")
	}
}

func TestLoadSurveyScenarioRejectsMalformedJSON(t *testing.T) {
	if _, err := LoadSurveyScenario(strings.NewReader(`{"world_model": `)); err == nil {
		t.Fatalf("expected error for malformed JSON")
	}
}
