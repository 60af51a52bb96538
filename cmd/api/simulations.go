package main

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farxc/tlp-lancamento/internal/response"
	"github.com/farxc/tlp-lancamento/internal/simulation"
	"github.com/farxc/tlp-lancamento/internal/store"
	"github.com/farxc/tlp-lancamento/internal/tlp"
)

type ListSimulationsResponse = response.APIResponse[[]store.Simulation]
type CreateSimulationResponse = response.APIResponse[*store.Simulation]
type ProcessSimulationResponse = response.APIResponse[*simulation.Result]
type SimulationResultResponse = response.APIResponse[*SimulationResultData]
type SimulationItemsResponse = response.APIResponse[[]store.SimulationItem]

// SimulationResultData mirrors the shape consumed by the launch front end:
// the simulation header, the aggregate statistics and the per-usage rows.
// Decimal figures become display floats only here, at the boundary.
type SimulationResultData struct {
	Simulation SimulationHeader      `json:"simulacao"`
	Statistics SimulationStatistics  `json:"estatisticas"`
	ByUsage    []UsageBreakdownEntry `json:"por_uso"`
}

type SimulationHeader struct {
	ID          string       `json:"id"`
	FiscalYear  int          `json:"exercicio"`
	Description string       `json:"descricao"`
	Status      string       `json:"status"`
	Parameters  tlp.Snapshot `json:"parametros"`
}

type SimulationStatistics struct {
	TotalProperties int     `json:"total_imoveis"`
	TotalAmount     float64 `json:"total_arrecadado"`
	AverageAmount   float64 `json:"media_tlp"`
	MinAmount       float64 `json:"min_tlp"`
	MaxAmount       float64 `json:"max_tlp"`
	TotalExempt     int     `json:"total_isentos"`
}

type UsageBreakdownEntry struct {
	Usage string  `json:"uso"`
	Count int     `json:"quantidade"`
	Total float64 `json:"total"`
}

// @Summary		List simulations
// @Description	Lists all simulations, newest first.
// @Tags			Simulations
// @Produce		json
// @Success		200	{object}	ListSimulationsResponse	"Successfully listed simulations"
// @Failure		500	{object}	response.ErrorResponse	"Failed to list simulations"
// @Router			/simulations [get]
func (app *application) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data, err := app.store.Simulations.List(ctx)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list simulations: "+err.Error())
		return
	}

	response := &ListSimulationsResponse{
		Success: true,
		Data:    data,
		Message: "Successfully listed simulations",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Create a simulation
// @Description	Creates a draft simulation. The parameter snapshot is frozen from this payload and never re-read from the parameters table.
// @Tags			Simulations
// @Accept			json
// @Produce		json
// @Success		201	{object}	CreateSimulationResponse	"Simulation created as draft"
// @Failure		400	{object}	response.ErrorResponse		"Invalid request payload"
// @Failure		500	{object}	response.ErrorResponse		"Failed to create simulation"
// @Router			/simulations [post]
func (app *application) handleCreateSimulation(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FiscalYear      int              `json:"exercicio"`
		Description     string           `json:"descricao"`
		BaseCost        decimal.Decimal  `json:"custo_tlp_base"`
		FinalCost       *decimal.Decimal `json:"custo_final"`
		IPCAPct         decimal.Decimal  `json:"ipca_percentual"`
		SubsidyPct      decimal.Decimal  `json:"subsidio_percentual"`
		LimitMinBase    decimal.Decimal  `json:"limite_min_base"`
		LimitMaxBase    decimal.Decimal  `json:"limite_max_base"`
		LimitMinUpdated *decimal.Decimal `json:"limite_min_atualizado"`
		LimitMaxUpdated *decimal.Decimal `json:"limite_max_atualizado"`
	}

	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if input.FiscalYear <= 0 {
		writeJSONError(w, http.StatusBadRequest, "exercicio is required")
		return
	}

	sim := &store.Simulation{
		FiscalYear:  input.FiscalYear,
		Description: input.Description,
		Snapshot: tlp.Snapshot{
			BaseCost:        input.BaseCost,
			FinalCost:       input.FinalCost,
			IPCAPct:         input.IPCAPct,
			SubsidyPct:      input.SubsidyPct,
			LimitMinBase:    input.LimitMinBase,
			LimitMaxBase:    input.LimitMaxBase,
			LimitMinUpdated: input.LimitMinUpdated,
			LimitMaxUpdated: input.LimitMaxUpdated,
		},
	}

	ctx := r.Context()
	if err := app.store.Simulations.Create(ctx, sim); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to create simulation: "+err.Error())
		return
	}

	response := &CreateSimulationResponse{
		Success: true,
		Data:    sim,
		Message: "Simulation created as draft",
	}

	if err := writeJSON(w, http.StatusCreated, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Process a simulation
// @Description	Calculates the tariff for every property under the simulation's frozen snapshot and atomically replaces its item set.
// @Tags			Simulations
// @Produce		json
// @Param			id	path		string						true	"Simulation id"
// @Success		200	{object}	ProcessSimulationResponse	"Simulation processed"
// @Failure		400	{object}	response.ErrorResponse		"Already processed or empty catalog"
// @Failure		404	{object}	response.ErrorResponse		"Simulation not found"
// @Failure		500	{object}	response.ErrorResponse		"Processing failed"
// @Router			/simulations/{id}/process [post]
func (app *application) handleProcessSimulation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid simulation id")
		return
	}

	ctx := r.Context()
	result, err := app.processor.Process(ctx, id)
	if err != nil {
		writeDomainError(w, err, "failed to process simulation")
		return
	}

	response := &ProcessSimulationResponse{
		Success: true,
		Data:    result,
		Message: "Simulation processed successfully",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Get a simulation's result
// @Description	Returns the aggregate statistics and per-usage breakdown of a processed simulation.
// @Tags			Simulations
// @Produce		json
// @Param			id	path		string						true	"Simulation id"
// @Success		200	{object}	SimulationResultResponse	"Result statistics"
// @Failure		404	{object}	response.ErrorResponse		"Simulation not found"
// @Failure		500	{object}	response.ErrorResponse		"Failed to load result"
// @Router			/simulations/{id}/result [get]
func (app *application) handleGetSimulationResult(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid simulation id")
		return
	}

	ctx := r.Context()
	sim, err := app.store.Simulations.GetByID(ctx, id)
	if err != nil {
		writeDomainError(w, err, "failed to load simulation")
		return
	}

	summary, err := app.store.SimulationItems.Summary(ctx, id)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to summarize simulation: "+err.Error())
		return
	}

	byUsage, err := app.store.SimulationItems.ByUsage(ctx, id)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to group simulation items: "+err.Error())
		return
	}

	usageEntries := make([]UsageBreakdownEntry, 0, len(byUsage))
	for _, row := range byUsage {
		usageEntries = append(usageEntries, UsageBreakdownEntry{
			Usage: row.Usage,
			Count: row.Count,
			Total: row.Total.InexactFloat64(),
		})
	}

	data := &SimulationResultData{
		Simulation: SimulationHeader{
			ID:          sim.ID.String(),
			FiscalYear:  sim.FiscalYear,
			Description: sim.Description,
			Status:      sim.Status,
			Parameters:  sim.Snapshot,
		},
		Statistics: SimulationStatistics{
			TotalProperties: summary.TotalProperties,
			TotalAmount:     summary.TotalAmount.InexactFloat64(),
			AverageAmount:   summary.AverageAmount.InexactFloat64(),
			MinAmount:       summary.MinAmount.InexactFloat64(),
			MaxAmount:       summary.MaxAmount.InexactFloat64(),
			TotalExempt:     summary.TotalExempt,
		},
		ByUsage: usageEntries,
	}

	response := &SimulationResultResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved simulation result",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		List a simulation's items
// @Description	Lists calculated items for a simulation, highest value first, paginated with skip/limit.
// @Tags			Simulations
// @Produce		json
// @Param			id		path		string					true	"Simulation id"
// @Param			skip	query		int						false	"Offset"	default(0)
// @Param			limit	query		int						false	"Page size"	default(100)
// @Success		200		{object}	SimulationItemsResponse	"Items page"
// @Failure		500		{object}	response.ErrorResponse	"Failed to list items"
// @Router			/simulations/{id}/items [get]
func (app *application) handleGetSimulationItems(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid simulation id")
		return
	}

	skip := 0
	if v := r.URL.Query().Get("skip"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			skip = parsed
		}
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	ctx := r.Context()
	items, err := app.store.SimulationItems.ListPage(ctx, id, skip, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list simulation items: "+err.Error())
		return
	}

	response := &SimulationItemsResponse{
		Success: true,
		Data:    items,
		Message: "Successfully listed simulation items",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
