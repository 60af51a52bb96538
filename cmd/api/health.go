package main

import "net/http"

// @Summary		Health check
// @Description	returns the status of the service and its database connection
// @Tags			Health
// @Produce		json
// @Success		200	{object}	map[string]string
// @Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {

	data := map[string]string{
		"status":   "available",
		"database": "connected",
		"version":  "0.0.1",
	}

	if app.db != nil {
		if err := app.db.PingContext(r.Context()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "database unavailable: "+err.Error())
			return
		}
	}

	if err := writeJSON(w, http.StatusOK, data); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
