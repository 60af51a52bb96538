package main

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/farxc/tlp-lancamento/internal/response"
	"github.com/farxc/tlp-lancamento/internal/store"
)

type ListParametersResponse = response.APIResponse[[]store.Parameter]
type CreateParameterResponse = response.APIResponse[*store.Parameter]

// @Summary		List tariff parameters
// @Description	Lists all parameter versions, newest fiscal year and version first.
// @Tags			Parameters
// @Produce		json
// @Success		200	{object}	ListParametersResponse	"Successfully listed parameters"
// @Failure		500	{object}	response.ErrorResponse	"Failed to list parameters"
// @Router			/parameters [get]
func (app *application) handleListParameters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data, err := app.store.Parameters.List(ctx)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list parameters: "+err.Error())
		return
	}

	response := &ListParametersResponse{
		Success: true,
		Data:    data,
		Message: "Successfully listed parameters",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Create a tariff parameter version
// @Description	Inserts a new immutable parameter version for a fiscal year. Corrections are new versions, never updates.
// @Tags			Parameters
// @Accept			json
// @Produce		json
// @Success		201	{object}	CreateParameterResponse	"Parameter version created"
// @Failure		400	{object}	response.ErrorResponse	"Invalid request payload"
// @Failure		500	{object}	response.ErrorResponse	"Failed to create parameter"
// @Router			/parameters [post]
func (app *application) handleCreateParameter(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FiscalYear      int             `json:"exercicio"`
		BaseCost        decimal.Decimal `json:"custo_tlp_base"`
		IPCAPct         decimal.Decimal `json:"ipca_percentual"`
		SubsidyPct      decimal.Decimal `json:"subsidio_percentual"`
		LimitMinBase    decimal.Decimal `json:"limite_min_base"`
		LimitMaxBase    decimal.Decimal `json:"limite_max_base"`
		LimitMinUpdated decimal.Decimal `json:"limite_min_atualizado"`
		LimitMaxUpdated decimal.Decimal `json:"limite_max_atualizado"`
	}

	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if input.FiscalYear <= 0 {
		writeJSONError(w, http.StatusBadRequest, "exercicio is required")
		return
	}

	param := &store.Parameter{
		FiscalYear:      input.FiscalYear,
		BaseCost:        input.BaseCost,
		IPCAPct:         input.IPCAPct,
		SubsidyPct:      input.SubsidyPct,
		LimitMinBase:    input.LimitMinBase,
		LimitMaxBase:    input.LimitMaxBase,
		LimitMinUpdated: input.LimitMinUpdated,
		LimitMaxUpdated: input.LimitMaxUpdated,
	}

	ctx := r.Context()
	if err := app.store.Parameters.Create(ctx, param); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to create parameter: "+err.Error())
		return
	}

	response := &CreateParameterResponse{
		Success: true,
		Data:    param,
		Message: "Parameter version created",
	}

	if err := writeJSON(w, http.StatusCreated, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
