package catalog

import (
	"math"
	"strings"
	"testing"
)

const sample = `# bright stars
Sirius 06h45m09s -16°42'58" -1.46

Rigil Kentaurus 14h39m36s -60°50'02" -0.27
Polaris 02h31m49s +89°15'51" 1.98
Unnamed 12h00m00s +00°00'00"
`

func TestLoadParsesCatalog(t *testing.T) {
	stars, err := Load(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(stars) != 4 {
		t.Fatalf("got %d stars, want 4", len(stars))
	}

	sirius := stars[0]
	if sirius.Name != "Sirius" {
		t.Fatalf("Name = %q, want Sirius", sirius.Name)
	}
	wantRA := (6 + 45/60.0 + 9/3600.0) * 15 * math.Pi / 180
	if math.Abs(sirius.RA.Rad()-wantRA) > 1e-9 {
		t.Fatalf("Sirius RA = %v rad, want %v", sirius.RA.Rad(), wantRA)
	}
	wantDec := -(16 + 42/60.0 + 58/3600.0)
	if math.Abs(sirius.Dec.Deg()-wantDec) > 1e-9 {
		t.Fatalf("Sirius Dec = %v°, want %v", sirius.Dec.Deg(), wantDec)
	}
	if sirius.Mag != -1.46 {
		t.Fatalf("Sirius Mag = %v, want -1.46", sirius.Mag)
	}
}

func TestLoadKeepsMultiWordNames(t *testing.T) {
	stars, err := Load(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stars[1].Name != "Rigil Kentaurus" {
		t.Fatalf("Name = %q, want the two-word name intact", stars[1].Name)
	}
}

func TestLoadMagnitudeIsOptional(t *testing.T) {
	stars, err := Load(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stars[3].Name != "Unnamed" || stars[3].Mag != 0 {
		t.Fatalf("star without magnitude = %+v", stars[3])
	}
}

func TestLoadRejectsMalformedLines(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"missing declination", `Sirius 06h45m09s`},
		{"missing sign", `Sirius 06h45m09s 16°42'58"`},
		{"hours out of range", `Bad 25h00m00s +10°00'00"`},
		{"minutes out of range", `Bad 06h61m00s +10°00'00"`},
		{"declination out of range", `Bad 06h00m00s +91°00'00"`},
		{"garbage", `not a star at all`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tc.line + "\n")); err == nil {
				t.Fatalf("expected error for %q", tc.line)
			}
		})
	}
}

func TestLoadSkipsCommentsAndBlanks(t *testing.T) {
	input := "# comment\n\n   \nPolaris 02h31m49s +89°15'51\" 1.98\n"
	stars, err := Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(stars) != 1 {
		t.Fatalf("got %d stars, want 1", len(stars))
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile("does-not-exist.txt"); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}
