package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/signalsfoundry/stellar-geodesy/catalog"
	"github.com/signalsfoundry/stellar-geodesy/core"
	"github.com/signalsfoundry/stellar-geodesy/internal/logging"
	"github.com/signalsfoundry/stellar-geodesy/internal/survey"
	"github.com/signalsfoundry/stellar-geodesy/kb"
	"github.com/signalsfoundry/stellar-geodesy/model"
	"github.com/signalsfoundry/stellar-geodesy/skyview"
	"github.com/signalsfoundry/stellar-geodesy/timectrl"
	"github.com/signalsfoundry/stellar-geodesy/worldmodel"
)

func main() {
	scenarioPath := flag.String("scenario", "configs/survey_scenario.json", "path to the survey scenario JSON")
	catalogPath := flag.String("catalog", "configs/star_catalog.txt", "path to the star catalog")
	tick := flag.Duration("tick", 1*time.Second, "tick interval; one route leg is walked per tick")
	accelerated := flag.Bool("accelerated", true, "run in accelerated mode (vs real-time)")
	startAt := flag.String("start", "", "expedition start time, RFC3339 (default: now)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	sc := loadScenario(*scenarioPath)

	radius := sc.RadiusKm
	if radius == 0 {
		radius = core.EarthRadiusKm
	}
	pf, err := worldmodel.ByName(sc.WorldModel, sc.RadiusKm)
	if err != nil {
		fatal("resolve world model: %v", err)
	}

	// True curvature is known only for the constant-curvature models.
	var trueCurv *float64
	switch sc.WorldModel {
	case "sphere":
		c := 1 / radius
		trueCurv = &c
	case "plane", "flat":
		c := 0.0
		trueCurv = &c
	}

	state := survey.NewState(kb.NewPatchStore(), log)
	state.SetWorldModel(pf, sc.PatchSizeKm)

	// ==== Reference patch: record the catalog sky at the start point ====

	ref, err := state.BuildPatch(ctx, "reference", sc.Reference.LatDeg, sc.Reference.LongDeg)
	if err != nil {
		fatal("build reference patch: %v", err)
	}

	stars, err := catalog.LoadFile(*catalogPath)
	if err != nil {
		fatal("load catalog: %v", err)
	}

	start := time.Now().UTC()
	if *startAt != "" {
		start, err = time.Parse(time.RFC3339, *startAt)
		if err != nil {
			fatal("parse -start: %v", err)
		}
	}

	sky := skyview.NewSource(stars, false)
	sightings, err := sky.Sightings(start, ref.LatDeg, ref.LongDeg)
	if err != nil {
		fatal("compute reference sky: %v", err)
	}
	obs := make(map[string]core.Observation, len(sightings))
	for _, s := range sightings {
		obs[s.Star] = core.Observation{AzDeg: s.AzDeg, ElDeg: s.ElDeg}
	}
	if err := state.SetObservations(ctx, "reference", obs); err != nil {
		fatal("record reference sky: %v", err)
	}
	if err := state.SetReference(ctx, "reference", sc.Distances); err != nil {
		fatal("set reference: %v", err)
	}

	fmt.Printf("Loaded survey scenario: model=%s, %d visible stars, %d route legs\n",
		sc.WorldModel, len(obs), len(sc.Route))

	prevSky, err := state.Synthesize(ctx, "reference")
	if err != nil {
		fatal("synthesize reference sky: %v", err)
	}

	// ==== Time controller: one leg per tick ====

	mode := timectrl.RealTime
	if *accelerated {
		mode = timectrl.Accelerated
	}
	tc := timectrl.NewTimeController(start, *tick, mode)

	prevLat, prevLong := ref.LatDeg, ref.LongDeg
	legIdx := 0

	tc.AddListener(func(simTime time.Time) {
		if legIdx >= len(sc.Route) {
			return
		}
		leg := sc.Route[legIdx]
		legIdx++
		id := fmt.Sprintf("leg-%d", legIdx)

		patch, err := state.BuildPatch(ctx, id, leg.LatDeg, leg.LongDeg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: build %s failed: %v\n", id, err)
			return
		}

		heading, dist := core.TravelBetween(prevLat, prevLong, leg.LatDeg, leg.LongDeg, radius)
		if leg.HeadingDeg != nil {
			heading = *leg.HeadingDeg
		}
		if leg.DistanceKm != nil {
			dist = *leg.DistanceKm
		}

		legSky, err := state.Synthesize(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: synthesize %s failed: %v\n", id, err)
			return
		}

		in, ok := pairedInput(prevSky, legSky, heading, dist)
		if !ok {
			fmt.Fprintf(os.Stderr, "warning: %s shares fewer than two stars with the previous stop\n", id)
		} else {
			res := state.Curvature(ctx, in)
			fmt.Printf("[%s] %-8s (%7.2f, %7.2f) heading=%6.1f° dist=%8.2f km curvature=%+.6e /km torsion=%+.6f °/km\n",
				simTime.Format(time.RFC3339), id, patch.LatDeg, patch.LongDeg,
				heading, dist, res.NormalCurvaturePerKm, res.GeodesicTorsionDegPerKm)
			if trueCurv != nil {
				fmt.Printf("↳ model curvature %+.6e /km, error %+.2e\n",
					*trueCurv, res.NormalCurvaturePerKm-*trueCurv)
			}
			for _, w := range res.Warnings {
				fmt.Printf("↳ %s\n", w)
			}
		}

		prevLat, prevLong = leg.LatDeg, leg.LongDeg
		prevSky = legSky
	})

	fmt.Printf("Starting survey: legs=%d, tick=%s, mode=%v\n", len(sc.Route), *tick, mode)
	done := tc.Start(time.Duration(len(sc.Route)) * *tick)
	<-done
	fmt.Println("Survey complete.")
}

func loadScenario(path string) *core.SurveyScenario {
	f, err := os.Open(path)
	if err != nil {
		fatal("open scenario %q: %v", path, err)
	}
	defer f.Close()

	sc, err := core.LoadSurveyScenario(f)
	if err != nil {
		fatal("load scenario: %v", err)
	}
	return sc
}

// pairedInput picks the two best shared stars between the two skies and
// assembles a curvature input from their sightings. Preference goes to the
// pair with the highest worst-case elevation, which keeps the inference away
// from the refraction warning when the sky allows it.
func pairedInput(startSky, endSky []model.StarObservation, headingDeg, distKm float64) (core.CurvatureInput, bool) {
	end := make(map[string]model.StarObservation, len(endSky))
	for _, o := range endSky {
		end[o.Star] = o
	}

	type shared struct {
		start, end model.StarObservation
		worstEl    float64
	}
	var pool []shared
	for _, o := range startSky {
		e, ok := end[o.Star]
		if !ok {
			continue
		}
		worst := o.ElDeg
		if e.ElDeg < worst {
			worst = e.ElDeg
		}
		pool = append(pool, shared{start: o, end: e, worstEl: worst})
	}
	if len(pool) < 2 {
		return core.CurvatureInput{}, false
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].worstEl > pool[j].worstEl })

	a, b := pool[0], pool[1]
	return core.CurvatureInput{
		StartA:     core.Observation{AzDeg: a.start.AzDeg, ElDeg: a.start.ElDeg},
		EndA:       core.Observation{AzDeg: a.end.AzDeg, ElDeg: a.end.ElDeg},
		StartB:     core.Observation{AzDeg: b.start.AzDeg, ElDeg: b.start.ElDeg},
		EndB:       core.Observation{AzDeg: b.end.AzDeg, ElDeg: b.end.ElDeg},
		HeadingDeg: headingDeg,
		DistanceKm: distKm,
	}, true
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
