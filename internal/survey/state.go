// Package survey coordinates the reconstruction engine behind one mutex:
// the patch store, the active world model, and the star generator seeded
// from the reference patch. The API layer and the surveyor binary both
// operate through this facade.
package survey

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/signalsfoundry/stellar-geodesy/core"
	"github.com/signalsfoundry/stellar-geodesy/internal/logging"
	"github.com/signalsfoundry/stellar-geodesy/kb"
	"github.com/signalsfoundry/stellar-geodesy/model"
)

// Re-export patch sentinel errors so callers can depend on survey.* instead
// of kb.* directly if they want to.
var (
	// ErrPatchExists indicates a patch with the same ID is already stored.
	ErrPatchExists = kb.ErrPatchExists
	// ErrPatchNotFound indicates a requested patch was not found.
	ErrPatchNotFound = kb.ErrPatchNotFound
	// ErrParentNotFound indicates a declared parent is not in the store.
	ErrParentNotFound = kb.ErrParentNotFound
	// ErrNoReference indicates no reference patch has been designated yet.
	ErrNoReference = errors.New("no reference patch set")
	// ErrNoWorldModel indicates no candidate surface is loaded.
	ErrNoWorldModel = errors.New("no world model configured")
)

// SurveyMetricsRecorder receives count updates for survey entities.
type SurveyMetricsRecorder interface {
	SetSurveyCounts(patches, stars int)
	RecordCurvature()
}

// State owns the mutable reconstruction state for one survey run.
type State struct {
	// mu is the coarse survey-level lock. Take this before touching the
	// patch store to maintain the lock ordering of State -> store locks.
	mu sync.RWMutex

	patches *kb.PatchStore

	pointFunc   core.PointFunc
	patchSizeKm float64

	// refID names the reference patch; generator is rebuilt whenever the
	// reference or its observations change.
	refID     string
	distances model.DistanceTable
	generator *core.StarGenerator

	calc *core.CurvatureCalculator

	log     logging.Logger
	metrics SurveyMetricsRecorder
}

// Option customises State construction.
type Option func(*State)

// WithMetricsRecorder attaches an optional metrics recorder for entity counts.
func WithMetricsRecorder(m SurveyMetricsRecorder) Option {
	return func(s *State) { s.metrics = m }
}

// WithCurvatureCalculator overrides the default calculator thresholds.
func WithCurvatureCalculator(c *core.CurvatureCalculator) Option {
	return func(s *State) {
		if c != nil {
			s.calc = c
		}
	}
}

// NewState wires the patch store and calculator and prepares an empty
// reconstruction.
func NewState(store *kb.PatchStore, log logging.Logger, opts ...Option) *State {
	if store == nil {
		store = kb.NewPatchStore()
	}
	if log == nil {
		log = logging.Noop()
	}
	s := &State{
		patches:     store,
		patchSizeKm: 1,
		calc:        core.NewCurvatureCalculator(),
		log:         log,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.updateMetricsLocked()
	return s
}

// Patches exposes the underlying patch store.
func (s *State) Patches() *kb.PatchStore { return s.patches }

// SetWorldModel installs the candidate surface and patch size used by
// subsequent BuildPatch calls.
func (s *State) SetWorldModel(pf core.PointFunc, patchSizeKm float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointFunc = pf
	if patchSizeKm > 0 {
		s.patchSizeKm = patchSizeKm
	}
}

// BuildPatch derives a patch on the configured world model and stores it.
func (s *State) BuildPatch(ctx context.Context, id string, latDeg, longDeg float64) (*core.SurfaceSquare, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pointFunc == nil {
		return nil, ErrNoWorldModel
	}
	p, err := core.BuildPatch(s.pointFunc, id, latDeg, longDeg, s.patchSizeKm)
	if err != nil {
		return nil, err
	}
	if err := s.patches.Add(p); err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "patch built",
		logging.String("patch_id", id),
		logging.Float64("lat_deg", latDeg),
		logging.Float64("long_deg", longDeg),
	)
	s.updateMetricsLocked()
	return p, nil
}

// DerivePatch stores a child patch whose frame is the parent's rotated by
// rotFromBase.
func (s *State) DerivePatch(ctx context.Context, parentID, id string, rotFromBase core.Rotation) (*core.SurfaceSquare, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent := s.patches.Get(parentID)
	if parent == nil {
		return nil, fmt.Errorf("patch %q: %w", parentID, ErrPatchNotFound)
	}
	child := core.DeriveAdjusted(parent, id, rotFromBase)
	if err := s.patches.Add(child); err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "patch derived",
		logging.String("patch_id", id),
		logging.String("parent_id", parentID),
	)
	s.updateMetricsLocked()
	return child, nil
}

// RemovePatch deletes a patch. Children survive with their parent link
// cleared. Removing the reference patch drops the star generator.
func (s *State) RemovePatch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.patches.Remove(id); err != nil {
		return err
	}
	if id == s.refID {
		s.refID = ""
		s.generator = nil
		s.log.Warn(ctx, "reference patch removed; star generator dropped",
			logging.String("patch_id", id))
	}
	s.updateMetricsLocked()
	return nil
}

// SetObservations records star sightings on a patch. When the patch is the
// current reference, the star generator is rebuilt from the updated sky.
func (s *State) SetObservations(ctx context.Context, id string, obs map[string]core.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.patches.Get(id)
	if p == nil {
		return fmt.Errorf("patch %q: %w", id, ErrPatchNotFound)
	}
	for star, o := range obs {
		p.SetObservation(star, o)
	}
	if id == s.refID {
		if err := s.rebuildGeneratorLocked(); err != nil {
			return err
		}
	}
	s.updateMetricsLocked()
	return nil
}

// SetReference designates the patch whose sky anchors absolute star
// positions and builds the generator from it.
func (s *State) SetReference(ctx context.Context, id string, distances model.DistanceTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.patches.Get(id)
	if p == nil {
		return fmt.Errorf("patch %q: %w", id, ErrPatchNotFound)
	}
	s.refID = id
	s.distances = distances
	if err := s.rebuildGeneratorLocked(); err != nil {
		return err
	}

	s.log.Info(ctx, "reference patch set",
		logging.String("patch_id", id),
		logging.Int("stars", len(p.Stars)),
	)
	s.updateMetricsLocked()
	return nil
}

// ReferenceID returns the current reference patch ID, or "".
func (s *State) ReferenceID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refID
}

// Synthesize computes the sky the identified patch would observe, using the
// star positions anchored at the reference.
func (s *State) Synthesize(ctx context.Context, id string) ([]model.StarObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.generator == nil {
		return nil, ErrNoReference
	}
	p := s.patches.Get(id)
	if p == nil {
		return nil, fmt.Errorf("patch %q: %w", id, ErrPatchNotFound)
	}
	return s.generator.Synthesize(p)
}

// Curvature runs the curvature inference over the supplied sightings.
func (s *State) Curvature(ctx context.Context, in core.CurvatureInput) core.CurvatureResult {
	s.mu.RLock()
	calc := s.calc
	s.mu.RUnlock()

	res := calc.Calculate(in)
	for _, w := range res.Warnings {
		s.log.Warn(ctx, "curvature warning", logging.String("warning", w))
	}
	if s.metrics != nil {
		s.metrics.RecordCurvature()
	}
	return res
}

func (s *State) rebuildGeneratorLocked() error {
	ref := s.patches.Get(s.refID)
	if ref == nil {
		s.generator = nil
		return fmt.Errorf("patch %q: %w", s.refID, ErrPatchNotFound)
	}
	gen, err := core.NewStarGenerator(ref, s.distances)
	if err != nil {
		return err
	}
	s.generator = gen
	return nil
}

// updateMetricsLocked pushes entity counts to the metrics recorder. Callers
// must hold s.mu.
func (s *State) updateMetricsLocked() {
	if s.metrics == nil {
		return
	}
	stars := 0
	if s.generator != nil {
		stars = len(s.generator.StarNames())
	}
	s.metrics.SetSurveyCounts(s.patches.Len(), stars)
}
