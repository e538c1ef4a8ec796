package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/garage-lab/gearbox/pkg/domain/model"
	"github.com/garage-lab/gearbox/pkg/domain/types"
	"github.com/garage-lab/gearbox/pkg/utils/errutil"
	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
)

type produceGuideRequest struct {
	Year      string `json:"year"`
	Make      string `json:"make"`
	Model     string `json:"model"`
	Task      string `json:"task"`
	SubjectID string `json:"subject_id"`
	Plan      string `json:"plan,omitempty"`
}

type guideResponse struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	VehicleLabel   string             `json:"vehicle_label"`
	SafetyWarnings []string           `json:"safety_warnings"`
	Tools          []string           `json:"tools"`
	Parts          []string           `json:"parts"`
	Steps          []model.RepairStep `json:"steps"`
	Sources        []model.SourceRef  `json:"sources,omitempty"`
}

type paywallResponse struct {
	Paywall bool   `json:"paywall"`
	Message string `json:"message"`
}

func toGuideResponse(guide *model.RepairGuide) guideResponse {
	return guideResponse{
		ID:             guide.ID.String(),
		Title:          guide.Title,
		VehicleLabel:   guide.VehicleLabel,
		SafetyWarnings: guide.SafetyWarnings,
		Tools:          guide.Tools,
		Parts:          guide.Parts,
		Steps:          guide.Steps,
		Sources:        guide.Sources,
	}
}

func (s *Server) produceGuideHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req produceGuideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}
	if req.SubjectID == "" {
		errutil.HandleHTTP(ctx, w, goerr.New("subject_id is required"), http.StatusBadRequest)
		return
	}

	vehicle, err := model.NewVehicle(req.Year, req.Make, req.Model)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	plan := types.Plan(req.Plan)
	if req.Plan == "" {
		plan = types.PlanFree
	}
	if !plan.IsValid() {
		errutil.HandleHTTP(ctx, w, goerr.New("invalid plan", goerr.V("plan", req.Plan)), http.StatusBadRequest)
		return
	}

	subject := types.Subject{
		ID:   types.SubjectID(req.SubjectID),
		Plan: plan,
	}

	guide, err := s.uc.ProduceGuide(ctx, model.GuideRequest{Vehicle: vehicle, Task: req.Task}, subject)
	if err != nil {
		s.writeProduceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toGuideResponse(guide))
}

// writeProduceError maps pipeline outcomes to HTTP statuses. The paywall is
// a distinct, non-error response so callers can show an upgrade prompt.
func (s *Server) writeProduceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	switch {
	case errors.Is(err, types.ErrEmptyTask), errors.Is(err, types.ErrUnknownVehicle):
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)

	case errors.Is(err, types.ErrQuotaExhausted):
		writeJSON(w, r, http.StatusPaymentRequired, paywallResponse{
			Paywall: true,
			Message: "Free guide limit reached. Upgrade to generate unlimited repair guides.",
		})

	case errors.Is(err, types.ErrGenerationInFlight):
		errutil.HandleHTTP(ctx, w, err, http.StatusConflict)

	case errors.Is(err, types.ErrGenerationFailed):
		errutil.HandleHTTP(ctx, w, err, http.StatusBadGateway)

	default:
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
	}
}

func (s *Server) getGuideHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	guide, err := s.uc.GetCached(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
			return
		}
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, toGuideResponse(guide))
}

func (s *Server) catalogHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	makeName := chi.URLParam(r, "make")

	models, ok := s.uc.Catalog().Lookup(makeName)
	if !ok {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(types.ErrUnknownVehicle, "unknown make", goerr.V("make", makeName)), http.StatusNotFound)
		return
	}

	type rangeResponse struct {
		Start int `json:"start"`
		End   int `json:"end"`
	}
	resp := make(map[string]rangeResponse, len(models))
	for name, years := range models {
		resp[name] = rangeResponse{Start: years.Start, End: years.End}
	}

	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) tasksHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string][]string{
		"tasks": s.uc.Catalog().Tasks(),
	})
}
