package main

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/farxc/tlp-lancamento/internal/response"
	"github.com/farxc/tlp-lancamento/internal/store"
)

type ListLotsResponse = response.APIResponse[[]store.Lot]
type CreateLotResponse = response.APIResponse[*store.Lot]
type LatestLotResponse = response.APIResponse[*LatestLotData]

// LatestLotData exposes the updated limits of a fiscal year's newest lot,
// used as the base for the following year's parameters.
type LatestLotData struct {
	FiscalYear      int     `json:"exercicio"`
	Version         int     `json:"versao"`
	LimitMinUpdated float64 `json:"limite_min_atualizado"`
	LimitMaxUpdated float64 `json:"limite_max_atualizado"`
	IPCAPct         float64 `json:"ipca_percentual"`
}

// @Summary		List launch lots
// @Description	Lists all official launch lots, newest first.
// @Tags			Lots
// @Produce		json
// @Success		200	{object}	ListLotsResponse		"Successfully listed lots"
// @Failure		500	{object}	response.ErrorResponse	"Failed to list lots"
// @Router			/lots [get]
func (app *application) handleListLots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data, err := app.store.Lots.List(ctx)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list lots: "+err.Error())
		return
	}

	response := &ListLotsResponse{
		Success: true,
		Data:    data,
		Message: "Successfully listed lots",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Promote a simulation to an official lot
// @Description	Creates a launch lot copying the origin simulation's snapshot verbatim and marks the simulation converted.
// @Tags			Lots
// @Accept			json
// @Produce		json
// @Success		201	{object}	CreateLotResponse		"Lot created"
// @Failure		400	{object}	response.ErrorResponse	"Invalid request payload"
// @Failure		404	{object}	response.ErrorResponse	"Origin simulation not found"
// @Failure		500	{object}	response.ErrorResponse	"Failed to create lot"
// @Router			/lots [post]
func (app *application) handleCreateLot(w http.ResponseWriter, r *http.Request) {
	var input struct {
		OriginSimulationID string `json:"id_simulacao_origem"`
	}

	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	originID, err := uuid.Parse(input.OriginSimulationID)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid origin simulation id")
		return
	}

	ctx := r.Context()
	sim, err := app.store.Simulations.GetByID(ctx, originID)
	if err != nil {
		writeDomainError(w, err, "failed to load origin simulation")
		return
	}

	lot, err := app.store.Lots.Create(ctx, sim)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to create lot: "+err.Error())
		return
	}

	response := &CreateLotResponse{
		Success: true,
		Data:    lot,
		Message: "Lot created from simulation",
	}

	if err := writeJSON(w, http.StatusCreated, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Get the latest lot of a fiscal year
// @Description	Returns the highest-version lot for a fiscal year, or null data when the year has none.
// @Tags			Lots
// @Produce		json
// @Param			year	path		int						true	"Fiscal year"
// @Success		200		{object}	LatestLotResponse		"Latest lot (data is null when absent)"
// @Failure		400		{object}	response.ErrorResponse	"Invalid fiscal year"
// @Failure		500		{object}	response.ErrorResponse	"Failed to get latest lot"
// @Router			/lots/latest/{year} [get]
func (app *application) handleGetLatestLot(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year <= 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid fiscal year")
		return
	}

	ctx := r.Context()
	lot, err := app.store.Lots.LatestByYear(ctx, year)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get latest lot: "+err.Error())
		return
	}

	response := &LatestLotResponse{
		Success: true,
		Message: "Successfully retrieved latest lot",
	}

	if lot != nil {
		limitMin, limitMax := lot.Snapshot.Limits()
		response.Data = &LatestLotData{
			FiscalYear:      lot.FiscalYear,
			Version:         lot.Version,
			LimitMinUpdated: limitMin.InexactFloat64(),
			LimitMaxUpdated: limitMax.InexactFloat64(),
			IPCAPct:         lot.Snapshot.IPCAPct.InexactFloat64(),
		}
	} else {
		response.Message = "No lot recorded for the fiscal year"
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
