package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"

	"github.com/farxc/tlp-lancamento/internal/simulation"
	"github.com/farxc/tlp-lancamento/internal/store"
	"github.com/farxc/tlp-lancamento/internal/tlp"
)

type application struct {
	config    config
	db        *sqlx.DB
	store     store.Storage
	processor *simulation.Processor
}

type config struct {
	addr string
	db   dbConfig
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped. Processing a large catalog is the
	// slowest request in the system, hence the generous value.
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("API Sistema TLP Online"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.Route("/parameters", func(r chi.Router) {
			r.Get("/", app.handleListParameters)
			r.Post("/", app.handleCreateParameter)
		})
		r.Route("/simulations", func(r chi.Router) {
			r.Get("/", app.handleListSimulations)
			r.Post("/", app.handleCreateSimulation)
			r.Post("/{id}/process", app.handleProcessSimulation)
			r.Get("/{id}/result", app.handleGetSimulationResult)
			r.Get("/{id}/items", app.handleGetSimulationItems)
		})
		r.Route("/exemptions", func(r chi.Router) {
			r.Get("/", app.handleListExemptions)
			r.Post("/", app.handleCreateExemption)
		})
		r.Route("/lots", func(r chi.Router) {
			r.Get("/", app.handleListLots)
			r.Post("/", app.handleCreateLot)
			r.Get("/latest/{year}", app.handleGetLatestLot)
		})
		r.Get("/properties/{id}", app.handleGetProperty)
	})

	return r
}

func (app *application) run(mux http.Handler) error {

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 40,
		IdleTimeout:  time.Minute,
	}

	log.Printf("Server started on %s", app.config.addr)
	return srv.ListenAndServe()
}

// writeDomainError maps the error taxonomy onto HTTP statuses: not-found →
// 404, invalid-state and empty-catalog → 400, anything else → 500.
func writeDomainError(w http.ResponseWriter, err error, context string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, context+": record not found")
	case errors.Is(err, simulation.ErrInvalidState):
		writeJSONError(w, http.StatusBadRequest, context+": simulation already processed")
	case errors.Is(err, tlp.ErrEmptyCatalog):
		writeJSONError(w, http.StatusBadRequest, context+": no properties found in the catalog")
	default:
		writeJSONError(w, http.StatusInternalServerError, context+": "+err.Error())
	}
}
