// Package api exposes the survey state over a small JSON/HTTP surface.
// Routes live under /v1; errors come back as {"error": "..."} with a
// status code derived from the survey sentinel errors.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/signalsfoundry/stellar-geodesy/core"
	"github.com/signalsfoundry/stellar-geodesy/internal/logging"
	"github.com/signalsfoundry/stellar-geodesy/internal/survey"
	"github.com/signalsfoundry/stellar-geodesy/model"
	"github.com/signalsfoundry/stellar-geodesy/worldmodel"
)

// Server bundles the survey state with its HTTP handlers.
type Server struct {
	state *survey.State
	log   logging.Logger
}

// NewServer constructs the handler set over the provided state.
func NewServer(state *survey.State, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{state: state, log: log}
}

// Router builds the /v1 route table. Extra middleware (metrics, tracing)
// is applied by the caller.
func (s *Server) Router(middleware ...mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogging(s.log))
	for _, mw := range middleware {
		r.Use(mw)
	}

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	v1.HandleFunc("/worldmodel", s.handleSetWorldModel).Methods(http.MethodPut)
	v1.HandleFunc("/patches", s.handleCreatePatch).Methods(http.MethodPost)
	v1.HandleFunc("/patches", s.handleListPatches).Methods(http.MethodGet)
	v1.HandleFunc("/patches/{id}", s.handleGetPatch).Methods(http.MethodGet)
	v1.HandleFunc("/patches/{id}", s.handleDeletePatch).Methods(http.MethodDelete)
	v1.HandleFunc("/patches/{id}/derive", s.handleDerivePatch).Methods(http.MethodPost)
	v1.HandleFunc("/patches/{id}/observations", s.handleSetObservations).Methods(http.MethodPut)
	v1.HandleFunc("/patches/{id}/sky", s.handleSynthesize).Methods(http.MethodGet)
	v1.HandleFunc("/reference", s.handleSetReference).Methods(http.MethodPut)
	v1.HandleFunc("/reference", s.handleGetReference).Methods(http.MethodGet)
	v1.HandleFunc("/curvature", s.handleCurvature).Methods(http.MethodPost)
	v1.HandleFunc("/traverse", s.handleTraverse).Methods(http.MethodPost)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type worldModelRequest struct {
	Name        string  `json:"name"`
	RadiusKm    float64 `json:"radius_km"`
	PatchSizeKm float64 `json:"patch_size_km"`
}

func (s *Server) handleSetWorldModel(w http.ResponseWriter, r *http.Request) {
	var req worldModelRequest
	if !decodeBody(w, r, &req) {
		return
	}
	pf, err := worldmodel.ByName(req.Name, req.RadiusKm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.state.SetWorldModel(pf, req.PatchSizeKm)
	writeJSON(w, http.StatusOK, map[string]string{"world_model": req.Name})
}

type createPatchRequest struct {
	ID      string  `json:"id"`
	LatDeg  float64 `json:"lat_deg"`
	LongDeg float64 `json:"long_deg"`
}

func (s *Server) handleCreatePatch(w http.ResponseWriter, r *http.Request) {
	var req createPatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, errors.New("id is required"))
		return
	}
	p, err := s.state.BuildPatch(r.Context(), req.ID, req.LatDeg, req.LongDeg)
	if err != nil {
		writeStateError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListPatches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Patches().List())
}

func (s *Server) handleGetPatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	p := s.state.Patches().Get(id)
	if p == nil {
		writeError(w, http.StatusNotFound, survey.ErrPatchNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.state.RemovePatch(r.Context(), id); err != nil {
		writeStateError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type derivePatchRequest struct {
	ChildID     string        `json:"child_id"`
	RotFromBase core.Rotation `json:"rot_from_base"`
}

func (s *Server) handleDerivePatch(w http.ResponseWriter, r *http.Request) {
	parentID := mux.Vars(r)["id"]
	var req derivePatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ChildID == "" {
		writeError(w, http.StatusBadRequest, errors.New("child_id is required"))
		return
	}
	child, err := s.state.DerivePatch(r.Context(), parentID, req.ChildID, req.RotFromBase)
	if err != nil {
		writeStateError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, child)
}

func (s *Server) handleSetObservations(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var obs map[string]core.Observation
	if !decodeBody(w, r, &obs) {
		return
	}
	if err := s.state.SetObservations(r.Context(), id, obs); err != nil {
		writeStateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"stars": len(obs)})
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	obs, err := s.state.Synthesize(r.Context(), id)
	if err != nil {
		writeStateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, obs)
}

type referenceRequest struct {
	PatchID   string              `json:"patch_id"`
	Distances model.DistanceTable `json:"star_distances_km,omitempty"`
}

func (s *Server) handleSetReference(w http.ResponseWriter, r *http.Request) {
	var req referenceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.state.SetReference(r.Context(), req.PatchID, req.Distances); err != nil {
		writeStateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"patch_id": req.PatchID})
}

func (s *Server) handleGetReference(w http.ResponseWriter, r *http.Request) {
	id := s.state.ReferenceID()
	if id == "" {
		writeError(w, http.StatusNotFound, survey.ErrNoReference)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"patch_id": id})
}

func (s *Server) handleCurvature(w http.ResponseWriter, r *http.Request) {
	var in core.CurvatureInput
	if !decodeBody(w, r, &in) {
		return
	}
	writeJSON(w, http.StatusOK, s.state.Curvature(r.Context(), in))
}

type traverseRequest struct {
	FromLatDeg  float64 `json:"from_lat_deg"`
	FromLongDeg float64 `json:"from_long_deg"`
	ToLatDeg    float64 `json:"to_lat_deg"`
	ToLongDeg   float64 `json:"to_long_deg"`
	RadiusKm    float64 `json:"radius_km,omitempty"`
}

type traverseResponse struct {
	HeadingDeg float64 `json:"heading_deg"`
	DistanceKm float64 `json:"distance_km"`
}

func (s *Server) handleTraverse(w http.ResponseWriter, r *http.Request) {
	var req traverseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	radius := req.RadiusKm
	if radius == 0 {
		radius = core.EarthRadiusKm
	}
	heading, dist := core.TravelBetween(req.FromLatDeg, req.FromLongDeg, req.ToLatDeg, req.ToLongDeg, radius)
	writeJSON(w, http.StatusOK, traverseResponse{HeadingDeg: heading, DistanceKm: dist})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

// writeStateError maps survey sentinel errors onto HTTP status codes.
func writeStateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, survey.ErrPatchNotFound), errors.Is(err, survey.ErrParentNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, survey.ErrPatchExists):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, survey.ErrNoReference), errors.Is(err, survey.ErrNoWorldModel):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
