package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/stellar-geodesy/catalog"
	"github.com/signalsfoundry/stellar-geodesy/core"
	"github.com/signalsfoundry/stellar-geodesy/internal/api"
	"github.com/signalsfoundry/stellar-geodesy/internal/logging"
	"github.com/signalsfoundry/stellar-geodesy/internal/observability"
	"github.com/signalsfoundry/stellar-geodesy/internal/survey"
	"github.com/signalsfoundry/stellar-geodesy/kb"
	"github.com/signalsfoundry/stellar-geodesy/skyview"
	"github.com/signalsfoundry/stellar-geodesy/worldmodel"
)

func main() {
	httpAddr := flag.String("http-addr", ":8080", "TCP address the survey API listens on")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics")
	scenarioPath := flag.String("scenario", "", "optional survey scenario JSON to preload the world model from")
	catalogPath := flag.String("catalog", "", "optional star catalog used to seed a reference sky")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewSurveyCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	state := survey.NewState(
		kb.NewPatchStore(),
		log,
		survey.WithMetricsRecorder(collector),
	)

	if *scenarioPath != "" {
		preloadScenario(ctx, state, *scenarioPath, *catalogPath, log)
	}

	server := api.NewServer(state, log)
	srv := &http.Server{
		Addr:    *httpAddr,
		Handler: server.Router(collector.Middleware()),
	}

	log.Info(ctx, "starting survey API server", logging.String("addr", *httpAddr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "survey API server exited", logging.String("error", err.Error()))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down survey API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

func serveMetrics(addr string, collector *observability.SurveyCollector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

// preloadScenario installs the scenario's world model, builds a reference
// patch, and, when a catalog is given, records the current real sky on it so
// the API starts with a working star generator. Failures here are warnings:
// the API surface can configure everything at runtime.
func preloadScenario(ctx context.Context, state *survey.State, scenarioPath, catalogPath string, log logging.Logger) {
	f, err := os.Open(scenarioPath)
	if err != nil {
		log.Warn(ctx, "skipping scenario preload", logging.String("path", scenarioPath), logging.String("error", err.Error()))
		return
	}
	defer f.Close()

	sc, err := core.LoadSurveyScenario(f)
	if err != nil {
		log.Warn(ctx, "failed to parse scenario", logging.String("path", scenarioPath), logging.String("error", err.Error()))
		return
	}

	pf, err := worldmodel.ByName(sc.WorldModel, sc.RadiusKm)
	if err != nil {
		log.Warn(ctx, "failed to resolve world model", logging.String("model", sc.WorldModel), logging.String("error", err.Error()))
		return
	}
	state.SetWorldModel(pf, sc.PatchSizeKm)

	ref, err := state.BuildPatch(ctx, "reference", sc.Reference.LatDeg, sc.Reference.LongDeg)
	if err != nil {
		log.Warn(ctx, "failed to build reference patch", logging.String("error", err.Error()))
		return
	}

	if catalogPath == "" {
		log.Info(ctx, "scenario preloaded without a reference sky", logging.String("model", sc.WorldModel))
		return
	}

	stars, err := catalog.LoadFile(catalogPath)
	if err != nil {
		log.Warn(ctx, "failed to load catalog", logging.String("path", catalogPath), logging.String("error", err.Error()))
		return
	}
	sightings, err := skyview.NewSource(stars, false).Sightings(time.Now().UTC(), ref.LatDeg, ref.LongDeg)
	if err != nil {
		log.Warn(ctx, "failed to compute reference sky", logging.String("error", err.Error()))
		return
	}
	obs := make(map[string]core.Observation, len(sightings))
	for _, s := range sightings {
		obs[s.Star] = core.Observation{AzDeg: s.AzDeg, ElDeg: s.ElDeg}
	}
	if err := state.SetObservations(ctx, "reference", obs); err != nil {
		log.Warn(ctx, "failed to record reference sky", logging.String("error", err.Error()))
		return
	}
	if err := state.SetReference(ctx, "reference", sc.Distances); err != nil {
		log.Warn(ctx, "failed to set reference", logging.String("error", err.Error()))
		return
	}

	log.Info(ctx, "scenario preloaded",
		logging.String("model", sc.WorldModel),
		logging.Int("stars", len(obs)),
		logging.Int("route_legs", len(sc.Route)),
	)
}
