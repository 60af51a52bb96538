package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// maxVersionRetries bounds the re-read on a (exercicio, versao) unique
// violation when two creators race for the same next version.
const maxVersionRetries = 3

type Storage struct {
	Parameters interface {
		Create(ctx context.Context, p *Parameter) error
		List(ctx context.Context) ([]Parameter, error)
	}

	Simulations interface {
		Create(ctx context.Context, sim *Simulation) error
		List(ctx context.Context) ([]Simulation, error)
		GetByID(ctx context.Context, id uuid.UUID) (*Simulation, error)
		SetStatus(ctx context.Context, id uuid.UUID, status string) error
		CompleteRun(ctx context.Context, id uuid.UUID, items []SimulationItem) error
	}

	SimulationItems interface {
		ListPage(ctx context.Context, simulationID uuid.UUID, offset, limit int) ([]SimulationItem, error)
		Summary(ctx context.Context, simulationID uuid.UUID) (*ItemSummary, error)
		ByUsage(ctx context.Context, simulationID uuid.UUID) ([]UsageBreakdown, error)
	}

	Exemptions interface {
		Create(ctx context.Context, e *Exemption) error
		ListActive(ctx context.Context) ([]Exemption, error)
		ReasonsByYear(ctx context.Context, fiscalYear int) (map[string]string, error)
	}

	Lots interface {
		Create(ctx context.Context, origin *Simulation) (*Lot, error)
		List(ctx context.Context) ([]Lot, error)
		LatestByYear(ctx context.Context, fiscalYear int) (*Lot, error)
	}

	Properties interface {
		GetAll(ctx context.Context) ([]PropertyRecord, error)
		GetByID(ctx context.Context, propertyID string) (*PropertyRecord, error)
		Insert(ctx context.Context, rec *PropertyRecord) error
	}
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		Parameters:      &ParameterStore{db: db},
		Simulations:     &SimulationStore{db: db},
		SimulationItems: &SimulationItemStore{db: db},
		Exemptions:      &ExemptionStore{db: db},
		Lots:            &LotStore{db: db},
		Properties:      &PropertyStore{db: db},
	}
}

// isUniqueViolation reports a Postgres 23505 error, used by the version
// assignment retry loops.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
