package main

import (
	"net/http"

	"github.com/farxc/tlp-lancamento/internal/response"
	"github.com/farxc/tlp-lancamento/internal/store"
)

type ListExemptionsResponse = response.APIResponse[[]store.Exemption]
type CreateExemptionResponse = response.APIResponse[*store.Exemption]

// @Summary		List active exemptions
// @Description	Lists active exemption records, newest first. Deactivated rows are retained for audit but never listed.
// @Tags			Exemptions
// @Produce		json
// @Success		200	{object}	ListExemptionsResponse	"Successfully listed exemptions"
// @Failure		500	{object}	response.ErrorResponse	"Failed to list exemptions"
// @Router			/exemptions [get]
func (app *application) handleListExemptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data, err := app.store.Exemptions.ListActive(ctx)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list exemptions: "+err.Error())
		return
	}

	response := &ListExemptionsResponse{
		Success: true,
		Data:    data,
		Message: "Successfully listed exemptions",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Create an exemption
// @Description	Registers an active exemption for a property and fiscal year.
// @Tags			Exemptions
// @Accept			json
// @Produce		json
// @Success		201	{object}	CreateExemptionResponse	"Exemption created"
// @Failure		400	{object}	response.ErrorResponse	"Invalid request payload or missing fields"
// @Failure		500	{object}	response.ErrorResponse	"Failed to create exemption"
// @Router			/exemptions [post]
func (app *application) handleCreateExemption(w http.ResponseWriter, r *http.Request) {
	var input struct {
		PropertyID string  `json:"codg_inscricao_lan"`
		FiscalYear int     `json:"exercicio"`
		Reason     *string `json:"motivo"`
		Source     *string `json:"origem"`
	}

	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if input.PropertyID == "" || input.FiscalYear <= 0 {
		writeJSONError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	exemption := &store.Exemption{
		PropertyID: input.PropertyID,
		FiscalYear: input.FiscalYear,
		Reason:     input.Reason,
		Source:     input.Source,
	}

	ctx := r.Context()
	if err := app.store.Exemptions.Create(ctx, exemption); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to create exemption: "+err.Error())
		return
	}

	response := &CreateExemptionResponse{
		Success: true,
		Data:    exemption,
		Message: "Exemption created",
	}

	if err := writeJSON(w, http.StatusCreated, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
