// Package skyview synthesises the real sky: given a catalog, a timestamp,
// and an observer position it produces the azimuth/elevation sightings the
// observer would record. It implements the sighting-source capability the
// reconstruction consumes, alongside the hypothetical-world sources built
// on the star generator.
package skyview

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"

	"github.com/signalsfoundry/stellar-geodesy/model"
)

// SunName is the star-map key used for the optional Sun sighting.
const SunName = "Sun"

// SightingSource produces the raw star sightings available at a given time
// and place.
type SightingSource interface {
	Sightings(t time.Time, latDeg, longDeg float64) ([]model.StarObservation, error)
}

// Source computes sightings of catalog stars, and optionally the Sun, from
// their equatorial coordinates. Apparent sidereal time comes from the meeus
// ephemeris routines; accuracy is simple catalog-lookup level, which is all
// the reconstruction needs.
type Source struct {
	Stars []model.CatalogStar

	// IncludeSun adds a Sun sighting from the solar ephemeris.
	IncludeSun bool

	// MinElevationDeg drops sightings below this elevation; a real observer
	// cannot record a star below the horizon.
	MinElevationDeg float64
}

// NewSource builds a source over the given catalog with the horizon as the
// visibility cutoff.
func NewSource(stars []model.CatalogStar, includeSun bool) *Source {
	return &Source{Stars: stars, IncludeSun: includeSun}
}

// Sightings returns the visible sky at (t, latDeg, longDeg), ordered by
// star name.
func (s *Source) Sightings(t time.Time, latDeg, longDeg float64) ([]model.StarObservation, error) {
	if latDeg < -90 || latDeg > 90 {
		return nil, fmt.Errorf("skyview: latitude %v out of range", latDeg)
	}

	jd := julian.TimeToJD(t.UTC())
	gst := sidereal.Apparent(jd).Rad()

	obs := make([]model.StarObservation, 0, len(s.Stars)+1)
	for _, star := range s.Stars {
		az, el := altAz(star.RA.Rad(), star.Dec.Rad(), gst, latDeg, longDeg)
		if el < s.MinElevationDeg {
			continue
		}
		obs = append(obs, model.StarObservation{
			LatDeg:  latDeg,
			LongDeg: longDeg,
			Star:    star.Name,
			AzDeg:   az,
			ElDeg:   el,
		})
	}

	if s.IncludeSun {
		ra, dec := solar.ApparentEquatorial(jd)
		az, el := altAz(ra.Rad(), dec.Rad(), gst, latDeg, longDeg)
		if el >= s.MinElevationDeg {
			obs = append(obs, model.StarObservation{
				LatDeg:  latDeg,
				LongDeg: longDeg,
				Star:    SunName,
				AzDeg:   az,
				ElDeg:   el,
			})
		}
	}

	sort.Slice(obs, func(i, j int) bool { return obs[i].Star < obs[j].Star })
	return obs, nil
}

// altAz converts equatorial coordinates to local azimuth (degrees clockwise
// from north) and elevation for an observer at latDeg/longDeg, longitude
// positive east.
func altAz(raRad, decRad, gstRad float64, latDeg, longDeg float64) (azDeg, elDeg float64) {
	phi := latDeg * math.Pi / 180
	lambda := longDeg * math.Pi / 180

	// Local hour angle, west positive.
	h := gstRad + lambda - raRad

	sinPhi, cosPhi := math.Sincos(phi)
	sinDec, cosDec := math.Sincos(decRad)
	sinH, cosH := math.Sincos(h)

	sinEl := sinPhi*sinDec + cosPhi*cosDec*cosH
	if sinEl > 1 {
		sinEl = 1
	} else if sinEl < -1 {
		sinEl = -1
	}
	elDeg = math.Asin(sinEl) * 180 / math.Pi

	east := -cosDec * sinH
	north := sinDec*cosPhi - cosDec*cosH*sinPhi
	azDeg = unit.PMod(math.Atan2(east, north), 2*math.Pi) * 180 / math.Pi
	return azDeg, elDeg
}
