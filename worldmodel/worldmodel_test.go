package worldmodel

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/stellar-geodesy/core"
)

func TestSpherePointPlacement(t *testing.T) {
	s := Sphere{RadiusKm: 6371}

	origin := s.Point(0, 0)
	if math.Abs(origin.Y-6371) > 1e-9 || math.Abs(origin.X) > 1e-9 || math.Abs(origin.Z) > 1e-9 {
		t.Fatalf("equator/prime meridian point = %v, want (0, R, 0)", origin)
	}

	north := s.Point(90, 0)
	if math.Abs(north.Z+6371) > 1e-9 {
		t.Fatalf("north pole = %v, want Z = -R", north)
	}

	east := s.Point(0, 90)
	if math.Abs(east.X-6371) > 1e-9 {
		t.Fatalf("(0, 90) = %v, want X = R", east)
	}
}

func TestSpherePointsStayOnSurface(t *testing.T) {
	s := Sphere{RadiusKm: 1000}
	for _, pt := range []struct{ lat, long float64 }{{12, 34}, {-56, 78}, {89, -170}} {
		p := s.Point(pt.lat, pt.long)
		if math.Abs(r3.Norm(p)-1000) > 1e-9 {
			t.Fatalf("Point(%v, %v) is off the sphere: |%v| = %v", pt.lat, pt.long, p, r3.Norm(p))
		}
	}
}

func TestEllipsoidFlattening(t *testing.T) {
	e := Ellipsoid{EquatorialKm: 6378.137, Flattening: 1.0 / 298.257223563}

	eq := e.Point(0, 0)
	if math.Abs(r3.Norm(eq)-6378.137) > 1e-6 {
		t.Fatalf("equator radius = %v, want %v", r3.Norm(eq), 6378.137)
	}

	pole := e.Point(90, 0)
	polar := r3.Norm(pole)
	wantPolar := 6378.137 * (1 - 1.0/298.257223563)
	if math.Abs(polar-wantPolar) > 1e-3 {
		t.Fatalf("polar radius = %v, want ~%v", polar, wantPolar)
	}
}

func TestPlaneHasNoVerticalComponent(t *testing.T) {
	p := Plane{KmPerDeg: 111}
	for _, pt := range []struct{ lat, long float64 }{{0, 0}, {10, 20}, {-45, 170}} {
		v := p.Point(pt.lat, pt.long)
		if v.Y != 0 {
			t.Fatalf("plane point has vertical component: %v", v)
		}
	}
	if v := p.Point(1, 0); math.Abs(r3.Norm(v)-111) > 1e-9 {
		t.Fatalf("one degree of latitude = %v km, want 111", r3.Norm(v))
	}
}

func TestEarthPointIsEarthSized(t *testing.T) {
	e := Earth{}
	eq := e.Point(0, 0)
	if n := r3.Norm(eq); n < 6370 || n > 6385 {
		t.Fatalf("equatorial position magnitude = %v km, want Earth-sized", n)
	}
	pole := e.Point(90, 0)
	if n := r3.Norm(pole); n < 6340 || n > 6380 {
		t.Fatalf("polar position magnitude = %v km, want Earth-sized", n)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"sphere", "Ellipsoid", "plane", "flat", "earth"} {
		pf, err := ByName(name, 0)
		if err != nil {
			t.Fatalf("ByName(%q): %v", name, err)
		}
		if pf == nil {
			t.Fatalf("ByName(%q) returned nil point function", name)
		}
	}
	if _, err := ByName("torus", 0); err == nil {
		t.Fatalf("expected error for an unknown model")
	}
}

func TestByNameDefaultRadius(t *testing.T) {
	pf, err := ByName("sphere", 0)
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}
	if n := r3.Norm(pf(0, 0)); math.Abs(n-core.EarthRadiusKm) > 1e-9 {
		t.Fatalf("default sphere radius = %v, want %v", n, core.EarthRadiusKm)
	}
}
