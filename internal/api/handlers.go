package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rgehrsitz/facplan/internal/breakeven"
	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/planner"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Handler handles planning HTTP requests
type Handler struct {
	planner *planner.Planner
	version string
	log     zerolog.Logger
}

// NewHandler creates a new planning handler
func NewHandler(p *planner.Planner, version string, log zerolog.Logger) *Handler {
	return &Handler{
		planner: p,
		version: version,
		log:     log.With().Str("handler", "planning").Logger(),
	}
}

// RegisterRoutes mounts the planning routes on r
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/metrics", h.HandleMetrics)
		r.Get("/pareto", h.HandlePareto)
		r.Get("/ranking", h.HandleRanking)
		r.Post("/optimize", h.HandleOptimizePortfolio)
		r.Post("/sensitivity", h.HandleSensitivity)
		r.Post("/break-even", h.HandleBreakEven)
	})

	r.Route("/projects/{projectID}", func(r chi.Router) {
		r.Post("/optimize", h.HandleOptimizeProject)
		r.Post("/components/{code}/strategies", h.HandleCompareStrategies)
	})

	r.Route("/scenarios", func(r chi.Router) {
		r.Get("/", h.HandleListScenarios)
		r.Post("/", h.HandleCreateScenario)
		r.Get("/{id}", h.HandleGetScenario)
		r.Delete("/{id}", h.HandleDeleteScenario)
		r.Post("/{id}/run", h.HandleRunScenario)
		r.Post("/{id}/approve", h.HandleApproveScenario)
		r.Post("/{id}/implement", h.HandleImplementScenario)
	})
}

// HandleHealth reports liveness and the build version
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": h.version})
}

// HandleMetrics returns portfolio-wide metrics
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.planner.GetPortfolioMetrics(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, m)
}

// HandlePareto returns the cumulative cost/improvement frontier
func (h *Handler) HandlePareto(w http.ResponseWriter, r *http.Request) {
	points, err := h.planner.CalculateParetoFrontier(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"points": points})
}

// HandleRanking returns eligible projects ordered by cost per CI point
func (h *Handler) HandleRanking(w http.ResponseWriter, r *http.Request) {
	ranked, err := h.planner.GetCostEffectivenessRanking(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"projects": ranked})
}

// HandleOptimizePortfolio selects the projects to fund under the posted constraints
func (h *Handler) HandleOptimizePortfolio(w http.ResponseWriter, r *http.Request) {
	var c domain.OptimizationConstraints
	if !h.decode(w, r, &c, true) {
		return
	}
	result, err := h.planner.OptimizeAcrossProjects(r.Context(), c)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// SensitivityRequest is the body of a budget sweep
type SensitivityRequest struct {
	BaseBudget   decimal.Decimal                 `json:"base_budget"`
	RangePercent *float64                        `json:"range_percent,omitempty"`
	Constraints  *domain.OptimizationConstraints `json:"constraints,omitempty"`
}

// HandleSensitivity sweeps the budget around a base value
func (h *Handler) HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	var req SensitivityRequest
	if !h.decode(w, r, &req, true) {
		return
	}
	rangePercent := 50.0
	if req.RangePercent != nil {
		rangePercent = *req.RangePercent
	}

	var (
		analysis *domain.SensitivityAnalysis
		err      error
	)
	if req.Constraints != nil {
		c := *req.Constraints
		c.MaxBudget = req.BaseBudget
		analysis, err = h.planner.AnalyzeSensitivityWithConstraints(r.Context(), c, rangePercent)
	} else {
		analysis, err = h.planner.AnalyzeSensitivity(r.Context(), req.BaseBudget, rangePercent)
	}
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, analysis)
}

// HandleBreakEven finds the smallest budget that reaches a CI goal
func (h *Handler) HandleBreakEven(w http.ResponseWriter, r *http.Request) {
	var req breakeven.Request
	if !h.decode(w, r, &req, true) {
		return
	}
	if req.Goal == "" {
		req.Goal = breakeven.GoalCIGain
	}
	result, err := h.planner.FindBreakEven(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleOptimizeProject runs single-project optimization; an empty body uses the default configuration
func (h *Handler) HandleOptimizeProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	cfg := domain.DefaultOptimizationConfig(projectID)
	if !h.decode(w, r, &cfg, false) {
		return
	}
	result, err := h.planner.OptimizeSingleProject(r.Context(), projectID, cfg)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleCompareStrategies returns the four strategy options of a component and the recommendation
func (h *Handler) HandleCompareStrategies(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	cfg := domain.DefaultOptimizationConfig(projectID)
	if !h.decode(w, r, &cfg, false) {
		return
	}
	comparison, err := h.planner.CompareStrategies(r.Context(), projectID, chi.URLParam(r, "code"), cfg)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, comparison)
}

// CreateScenarioRequest is the body of a scenario creation
type CreateScenarioRequest struct {
	ProjectID   string                     `json:"project_id"`
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Config      *domain.OptimizationConfig `json:"config,omitempty"`
}

// HandleCreateScenario stores a new draft scenario
func (h *Handler) HandleCreateScenario(w http.ResponseWriter, r *http.Request) {
	var req CreateScenarioRequest
	if !h.decode(w, r, &req, true) {
		return
	}
	cfg := domain.DefaultOptimizationConfig(req.ProjectID)
	if req.Config != nil {
		cfg = *req.Config
	}
	sc, err := h.planner.CreateScenario(r.Context(), req.ProjectID, req.Name, req.Description, cfg)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, sc)
}

// HandleListScenarios lists scenario headers, optionally filtered by project_id
func (h *Handler) HandleListScenarios(w http.ResponseWriter, r *http.Request) {
	list, err := h.planner.ListScenarios(r.Context(), r.URL.Query().Get("project_id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"scenarios": list})
}

// HandleGetScenario returns a scenario with its rows
func (h *Handler) HandleGetScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := h.planner.GetScenario(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sc)
}

// HandleRunScenario optimizes a scenario and persists the outcome
func (h *Handler) HandleRunScenario(w http.ResponseWriter, r *http.Request) {
	sc, _, err := h.planner.RunScenario(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sc)
}

// HandleApproveScenario moves an optimized scenario to approved
func (h *Handler) HandleApproveScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := h.planner.ApproveScenario(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sc)
}

// HandleImplementScenario moves an approved scenario to implemented
func (h *Handler) HandleImplementScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := h.planner.ImplementScenario(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sc)
}

// HandleDeleteScenario removes a scenario
func (h *Handler) HandleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	if err := h.planner.DeleteScenario(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads a JSON body into v. An empty body is accepted unless required is set.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}, required bool) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) && !required {
			return true
		}
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInfeasible):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Request failed")
	}
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
