package core

import (
	"math"
	"testing"
)

func TestTravelBetweenCardinalHeadings(t *testing.T) {
	cases := []struct {
		name                      string
		lat1, long1, lat2, long2  float64
		wantHeading, wantDistance float64
	}{
		{"due north", 0, 0, 10, 0, 0, EarthRadiusKm * 10 * math.Pi / 180},
		{"due south", 10, 0, 0, 0, 180, EarthRadiusKm * 10 * math.Pi / 180},
		{"due east on equator", 0, 0, 0, 10, 90, EarthRadiusKm * 10 * math.Pi / 180},
		{"due west on equator", 0, 10, 0, 0, 270, EarthRadiusKm * 10 * math.Pi / 180},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			heading, dist := TravelBetween(tc.lat1, tc.long1, tc.lat2, tc.long2, EarthRadiusKm)
			if math.Abs(heading-tc.wantHeading) > 1e-6 {
				t.Fatalf("heading = %v, want %v", heading, tc.wantHeading)
			}
			if math.Abs(dist-tc.wantDistance) > 1e-6 {
				t.Fatalf("distance = %v, want %v", dist, tc.wantDistance)
			}
		})
	}
}

func TestTravelBetweenCoincidentPoints(t *testing.T) {
	heading, dist := TravelBetween(12, 34, 12, 34, EarthRadiusKm)
	if heading != 0 || dist != 0 {
		t.Fatalf("coincident points gave heading=%v dist=%v", heading, dist)
	}
}

func TestTravelBetweenFromNorthPole(t *testing.T) {
	heading, dist := TravelBetween(90, 0, 0, 45, EarthRadiusKm)
	if heading != 180 {
		t.Fatalf("heading from the north pole = %v, want 180", heading)
	}
	want := EarthRadiusKm * math.Pi / 2
	if math.Abs(dist-want) > 1e-6 {
		t.Fatalf("distance = %v, want %v", dist, want)
	}
}

func TestTravelBetweenDiagonalIsBetweenCardinals(t *testing.T) {
	heading, _ := TravelBetween(0, 0, 10, 10, EarthRadiusKm)
	if heading <= 0 || heading >= 90 {
		t.Fatalf("northeast heading = %v, want within (0, 90)", heading)
	}
}
