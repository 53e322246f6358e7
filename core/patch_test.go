package core

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func spherePoint(radiusKm float64) PointFunc {
	return func(latDeg, longDeg float64) r3.Vec {
		sinLat, cosLat := math.Sincos(latDeg * math.Pi / 180)
		sinLong, cosLong := math.Sincos(longDeg * math.Pi / 180)
		return r3.Vec{
			X: radiusKm * cosLat * sinLong,
			Y: radiusKm * cosLat * cosLong,
			Z: -radiusKm * sinLat,
		}
	}
}

func TestBuildPatchEquatorMatchesNominalFrame(t *testing.T) {
	p, err := BuildPatch(spherePoint(6371), "origin", 0, 0, 1)
	if err != nil {
		t.Fatalf("BuildPatch: %v", err)
	}

	// The finite-difference chord tilts the frame by about half the step
	// size, so the match is tight but not exact.
	vecClose(t, p.North, NominalNorth, 2e-3)
	vecClose(t, p.Up, NominalUp, 2e-3)
	vecClose(t, p.East, NominalEast, 2e-3)
	if p.RotFromNominal.AngleDeg > 0.2 {
		t.Fatalf("RotFromNominal.AngleDeg = %v, want ~0 at the equator origin", p.RotFromNominal.AngleDeg)
	}
}

func TestBuildPatchTriadIsOrthonormal(t *testing.T) {
	for _, pt := range []struct{ lat, long float64 }{
		{45, 30}, {-45, 30}, {80, -120}, {-80, 170}, {0.05, 0},
	} {
		p, err := BuildPatch(spherePoint(6371), "p", pt.lat, pt.long, 1)
		if err != nil {
			t.Fatalf("BuildPatch(%v, %v): %v", pt.lat, pt.long, err)
		}
		for name, v := range map[string]r3.Vec{"north": p.North, "up": p.Up, "east": p.East} {
			if math.Abs(r3.Norm(v)-1) > 1e-9 {
				t.Fatalf("(%v, %v) %s is not unit length: %v", pt.lat, pt.long, name, v)
			}
		}
		if math.Abs(r3.Dot(p.North, p.Up)) > 1e-9 || math.Abs(r3.Dot(p.North, p.East)) > 1e-9 || math.Abs(r3.Dot(p.Up, p.East)) > 1e-9 {
			t.Fatalf("(%v, %v) triad is not orthogonal", pt.lat, pt.long)
		}
		// Right-handed: east = north x up.
		vecClose(t, r3.Cross(p.North, p.Up), p.East, 1e-9)
	}
}

func TestBuildPatchRotationReproducesTriad(t *testing.T) {
	for _, pt := range []struct{ lat, long float64 }{
		{0, 0}, {30, 45}, {-30, 45}, {60, -45}, {-60, 10},
	} {
		p, err := BuildPatch(spherePoint(6371), "p", pt.lat, pt.long, 1)
		if err != nil {
			t.Fatalf("BuildPatch(%v, %v): %v", pt.lat, pt.long, err)
		}
		vecClose(t, Rotate(NominalNorth, p.RotFromNominal), p.North, 1e-6)
		vecClose(t, Rotate(NominalUp, p.RotFromNominal), p.Up, 1e-6)
		vecClose(t, Rotate(NominalEast, p.RotFromNominal), p.East, 1e-6)
	}
}

func TestBuildPatchNorthPointsPoleward(t *testing.T) {
	pf := spherePoint(6371)
	p, err := BuildPatch(pf, "n", 45, 0, 1)
	if err != nil {
		t.Fatalf("BuildPatch: %v", err)
	}
	// Walking north from (45, 0) must move the position along p.North.
	step := r3.Sub(pf(45.01, 0), pf(45, 0))
	if r3.Dot(p.North, step) <= 0 {
		t.Fatalf("north %v opposes the poleward step %v", p.North, step)
	}

	s, err := BuildPatch(pf, "s", -45, 0, 1)
	if err != nil {
		t.Fatalf("BuildPatch south: %v", err)
	}
	stepSouth := r3.Sub(pf(-44.99, 0), pf(-45, 0))
	if r3.Dot(s.North, stepSouth) <= 0 {
		t.Fatalf("southern-hemisphere north %v opposes the poleward step %v", s.North, stepSouth)
	}
}

func TestBuildPatchNilPointFunc(t *testing.T) {
	if _, err := BuildPatch(nil, "p", 0, 0, 1); err == nil {
		t.Fatalf("expected error for nil point function")
	}
}

func TestBuildPatchDegenerateSurface(t *testing.T) {
	collapsed := func(latDeg, longDeg float64) r3.Vec { return r3.Vec{} }
	if _, err := BuildPatch(collapsed, "p", 10, 10, 1); err == nil {
		t.Fatalf("expected error for a collapsed surface")
	}
}

func TestDeriveAdjusted(t *testing.T) {
	parent, err := BuildPatch(spherePoint(6371), "parent", 20, 40, 1)
	if err != nil {
		t.Fatalf("BuildPatch: %v", err)
	}

	tweak := NewRotation(r3.Vec{Y: 1}, 5)
	child := DeriveAdjusted(parent, "child", tweak)

	if child.ParentID != parent.ID {
		t.Fatalf("ParentID = %q, want %q", child.ParentID, parent.ID)
	}
	if child.Center != parent.Center {
		t.Fatalf("child center moved: %v vs %v", child.Center, parent.Center)
	}
	vecClose(t, Rotate(NominalNorth, child.RotFromNominal), child.North, 1e-9)
	vecClose(t, Rotate(NominalUp, child.RotFromNominal), child.Up, 1e-9)

	// Composing the parent's orientation with the tweak must land on the
	// child's orientation.
	want := Compose(parent.RotFromNominal, tweak)
	v := r3.Vec{X: 0.4, Y: -0.2, Z: 0.9}
	vecClose(t, Rotate(v, child.RotFromNominal), Rotate(v, want), 1e-9)
}

func TestSetObservation(t *testing.T) {
	p := &SurfaceSquare{ID: "p"}
	p.SetObservation("Vega", Observation{AzDeg: 120, ElDeg: 40})
	p.SetObservation("Vega", Observation{AzDeg: 121, ElDeg: 41})
	if got := p.Stars["Vega"]; got.AzDeg != 121 || got.ElDeg != 41 {
		t.Fatalf("Stars[Vega] = %+v, want replacement to win", got)
	}
}
