package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/farxc/tlp-lancamento/internal/response"
	"github.com/farxc/tlp-lancamento/internal/store"
)

type GetPropertyResponse = response.APIResponse[*store.PropertyRecord]

// @Summary		Get a catalog property
// @Description	Returns one classified property record from the read-only catalog view.
// @Tags			Properties
// @Produce		json
// @Param			id	path		string					true	"Property inscription code"
// @Success		200	{object}	GetPropertyResponse		"Property record"
// @Failure		404	{object}	response.ErrorResponse	"Property not found"
// @Failure		500	{object}	response.ErrorResponse	"Failed to get property"
// @Router			/properties/{id} [get]
func (app *application) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "id")
	if propertyID == "" {
		writeJSONError(w, http.StatusBadRequest, "missing property id")
		return
	}

	ctx := r.Context()
	rec, err := app.store.Properties.GetByID(ctx, propertyID)
	if err != nil {
		writeDomainError(w, err, "failed to get property")
		return
	}

	response := &GetPropertyResponse{
		Success: true,
		Data:    rec,
		Message: "Successfully retrieved property",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
