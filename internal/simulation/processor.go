package simulation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/farxc/tlp-lancamento/internal/logger"
	"github.com/farxc/tlp-lancamento/internal/store"
	"github.com/farxc/tlp-lancamento/internal/tlp"
)

// ErrInvalidState is returned when processing is requested for a simulation
// that already concluded; a new simulation must be created to recompute.
var ErrInvalidState = errors.New("simulation already processed")

// Store is the slice of storage the processor needs. *store.Storage satisfies
// it through NewProcessor's adapter.
type Store interface {
	Simulation(ctx context.Context, id uuid.UUID) (*store.Simulation, error)
	ExemptionReasons(ctx context.Context, fiscalYear int) (map[string]string, error)
	Properties(ctx context.Context) ([]store.PropertyRecord, error)
	CompleteRun(ctx context.Context, id uuid.UUID, items []store.SimulationItem) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

// Result reports what one processing run produced.
type Result struct {
	TotalProperties int `json:"total_imoveis"`
	ItemsCreated    int `json:"itens_criados"`
	ExemptCount     int `json:"total_isentos"`
}

// ProcessFailure wraps a processing error together with the outcome of the
// compensating ERRO status write. When the compensation itself failed, both
// errors are carried and reported distinctly instead of the second being
// swallowed.
type ProcessFailure struct {
	Cause           error
	CompensationErr error
}

func (f *ProcessFailure) Error() string {
	if f.CompensationErr != nil {
		return fmt.Sprintf("simulation processing failed: %v (and marking the simulation ERRO also failed: %v)", f.Cause, f.CompensationErr)
	}
	return fmt.Sprintf("simulation processing failed: %v", f.Cause)
}

func (f *ProcessFailure) Unwrap() error { return f.Cause }

// Processor drives a simulation through its lifecycle: it loads the frozen
// snapshot, runs the calculation engine over the full catalog and commits the
// resulting item set atomically.
type Processor struct {
	store  Store
	engine *tlp.Engine
	log    *logger.Logger
}

func NewProcessor(storage *store.Storage, engine *tlp.Engine, log *logger.Logger) *Processor {
	return &Processor{
		store:  &storageAdapter{storage: storage},
		engine: engine,
		log:    log,
	}
}

// NewProcessorWithStore wires an explicit Store; used by tests.
func NewProcessorWithStore(s Store, engine *tlp.Engine, log *logger.Logger) *Processor {
	return &Processor{store: s, engine: engine, log: log}
}

// Process recalculates the tariff for every catalog property under the
// simulation's snapshot and replaces the simulation's item set.
//
// Failure semantics: not-found and invalid-state surface before anything is
// written; an empty catalog aborts with no writes and no status change; any
// later failure rolls the run back and best-effort marks the simulation ERRO.
func (p *Processor) Process(ctx context.Context, id uuid.UUID) (*Result, error) {
	const component = "SimulationProcessor"

	sim, err := p.store.Simulation(ctx, id)
	if err != nil {
		return nil, err
	}
	if sim.Status == store.SimulationStatusCompleted {
		return nil, ErrInvalidState
	}

	p.log.Info(component, "Processing simulation: id=%s exercicio=%d status=%s", sim.ID, sim.FiscalYear, sim.Status)

	reasons, err := p.store.ExemptionReasons(ctx, sim.FiscalYear)
	if err != nil {
		return nil, p.fail(ctx, component, id, err)
	}

	records, err := p.store.Properties(ctx)
	if err != nil {
		return nil, p.fail(ctx, component, id, err)
	}

	catalog := make([]tlp.Property, len(records))
	for i, rec := range records {
		catalog[i] = tlp.Property{
			ID:              rec.PropertyID,
			ContributorName: rec.ContributorName,
			Usage:           rec.Usage,
			Activity:        rec.Activity,
		}
	}

	results, totals, err := p.engine.Calculate(sim.Snapshot, reasons, catalog)
	if err != nil {
		// An empty catalog aborts before any write; the simulation keeps its
		// current status.
		if errors.Is(err, tlp.ErrEmptyCatalog) {
			return nil, err
		}
		return nil, p.fail(ctx, component, id, err)
	}

	items := make([]store.SimulationItem, len(results))
	for i, r := range results {
		items[i] = store.SimulationItem{
			SimulationID:    sim.ID,
			PropertyID:      r.PropertyID,
			ContributorName: r.ContributorName,
			Usage:           r.Usage,
			Activity:        r.Activity,
			UsageFactor:     r.Factor,
			GrossValue:      r.Gross,
			CalculatedValue: r.Calculated,
			Exempt:          r.Exempt,
			ExemptionReason: r.ExemptionReason,
		}
	}

	if err := p.store.CompleteRun(ctx, sim.ID, items); err != nil {
		return nil, p.fail(ctx, component, id, err)
	}

	p.log.Info(component, "Simulation concluded: id=%s properties=%d exempt=%d total=%s",
		sim.ID, totals.Properties, totals.Exempt, totals.Sum)

	return &Result{
		TotalProperties: totals.Properties,
		ItemsCreated:    len(items),
		ExemptCount:     totals.Exempt,
	}, nil
}

func (p *Processor) fail(ctx context.Context, component string, id uuid.UUID, cause error) error {
	failure := &ProcessFailure{Cause: cause}
	if compErr := p.store.MarkFailed(ctx, id); compErr != nil {
		failure.CompensationErr = compErr
		p.log.Error(component, "Processing failed: id=%s error=%v", id, cause)
		p.log.Error(component, "Marking simulation ERRO also failed: id=%s error=%v", id, compErr)
		return failure
	}
	p.log.Error(component, "Processing failed, simulation marked ERRO: id=%s error=%v", id, cause)
	return failure
}

// storageAdapter narrows *store.Storage to the processor's Store interface.
type storageAdapter struct {
	storage *store.Storage
}

func (a *storageAdapter) Simulation(ctx context.Context, id uuid.UUID) (*store.Simulation, error) {
	return a.storage.Simulations.GetByID(ctx, id)
}

func (a *storageAdapter) ExemptionReasons(ctx context.Context, fiscalYear int) (map[string]string, error) {
	return a.storage.Exemptions.ReasonsByYear(ctx, fiscalYear)
}

func (a *storageAdapter) Properties(ctx context.Context) ([]store.PropertyRecord, error) {
	return a.storage.Properties.GetAll(ctx)
}

func (a *storageAdapter) CompleteRun(ctx context.Context, id uuid.UUID, items []store.SimulationItem) error {
	return a.storage.Simulations.CompleteRun(ctx, id, items)
}

func (a *storageAdapter) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return a.storage.Simulations.SetStatus(ctx, id, store.SimulationStatusFailed)
}
