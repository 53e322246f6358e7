// Package catalog parses the fixed-format star catalog used to seed
// real-sky observation sources. Each non-comment line reads
//
//	Name HHhMMmSSs ±DD°MM'SS" [magnitude]
//
// with right ascension in hours and declination in degrees, J2000.
package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/soniakeys/unit"

	"github.com/signalsfoundry/stellar-geodesy/model"
)

var lineRE = regexp.MustCompile(
	`^(.*\S)\s+(\d{1,2})h(\d{1,2})m(\d{1,2}(?:\.\d+)?)s\s+([+-])(\d{1,2})°(\d{1,2})'(\d{1,2}(?:\.\d+)?)"(?:\s+(-?\d+(?:\.\d+)?))?$`)

// Load parses a catalog from r. Malformed lines are hard errors: the
// catalog is injected configuration and there is no sensible recovery from
// an angle that cannot be read.
func Load(r io.Reader) ([]model.CatalogStar, error) {
	var stars []model.CatalogStar

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		star, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("catalog line %d: %w", lineNo, err)
		}
		stars = append(stars, star)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("catalog read failed: %w", err)
	}
	return stars, nil
}

// LoadFile parses the catalog at path.
func LoadFile(path string) ([]model.CatalogStar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func parseLine(line string) (model.CatalogStar, error) {
	m := lineRE.FindStringSubmatch(line)
	if m == nil {
		return model.CatalogStar{}, fmt.Errorf("malformed entry %q", line)
	}

	raH, err := strconv.Atoi(m[2])
	if err != nil {
		return model.CatalogStar{}, fmt.Errorf("right ascension hours: %w", err)
	}
	raM, err := strconv.Atoi(m[3])
	if err != nil {
		return model.CatalogStar{}, fmt.Errorf("right ascension minutes: %w", err)
	}
	raS, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return model.CatalogStar{}, fmt.Errorf("right ascension seconds: %w", err)
	}
	if raH >= 24 || raM >= 60 || raS >= 60 {
		return model.CatalogStar{}, fmt.Errorf("right ascension %sh%sm%ss out of range", m[2], m[3], m[4])
	}

	decD, err := strconv.Atoi(m[6])
	if err != nil {
		return model.CatalogStar{}, fmt.Errorf("declination degrees: %w", err)
	}
	decM, err := strconv.Atoi(m[7])
	if err != nil {
		return model.CatalogStar{}, fmt.Errorf("declination minutes: %w", err)
	}
	decS, err := strconv.ParseFloat(m[8], 64)
	if err != nil {
		return model.CatalogStar{}, fmt.Errorf("declination seconds: %w", err)
	}
	if decD > 90 || decM >= 60 || decS >= 60 {
		return model.CatalogStar{}, fmt.Errorf("declination %s%s°%s'%s\" out of range", m[5], m[6], m[7], m[8])
	}

	star := model.CatalogStar{
		Name: m[1],
		RA:   unit.NewRA(raH, raM, raS),
		Dec:  unit.NewAngle(m[5][0], decD, decM, decS),
	}
	if m[9] != "" {
		mag, err := strconv.ParseFloat(m[9], 64)
		if err != nil {
			return model.CatalogStar{}, fmt.Errorf("magnitude: %w", err)
		}
		star.Mag = mag
	}
	return star, nil
}
