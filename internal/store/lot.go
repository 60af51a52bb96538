package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type LotStore struct {
	db *sqlx.DB
}

// Create promotes a simulation into an official launch lot. The snapshot is
// copied verbatim from the origin simulation, the lot version is the next in
// the fiscal year's own sequence, and the origin simulation is marked
// converted — all in one transaction. Promotion does not require the
// simulation to be concluded.
func (ls *LotStore) Create(ctx context.Context, origin *Simulation) (*Lot, error) {
	query := `INSERT INTO tlp.tlp_lote_lancamento (
		id_lote,
		exercicio,
		versao,
		id_simulacao_origem,
		parametros_snapshot,
		status
	) VALUES (
		:id_lote,
		:exercicio,
		:versao,
		:id_simulacao_origem,
		:parametros_snapshot,
		:status
	) RETURNING created_at`

	var lastErr error
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		tx, err := ls.db.BeginTxx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to begin promotion transaction: %w", err)
		}

		var next int
		if err := tx.GetContext(ctx, &next,
			`SELECT COALESCE(MAX(versao), 0) + 1 FROM tlp.tlp_lote_lancamento WHERE exercicio = $1`,
			origin.FiscalYear); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to resolve next lot version: %w", err)
		}

		lot := &Lot{
			ID:                 uuid.New(),
			FiscalYear:         origin.FiscalYear,
			Version:            next,
			OriginSimulationID: origin.ID,
			Snapshot:           origin.Snapshot,
			Status:             LotStatusGenerated,
		}

		rows, err := sqlx.NamedQueryContext(ctx, tx, query, lot)
		if err != nil {
			tx.Rollback()
			if isUniqueViolation(err) {
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("failed to insert lot: %w", err)
		}
		if rows.Next() {
			if err := rows.Scan(&lot.CreatedAt); err != nil {
				rows.Close()
				tx.Rollback()
				return nil, fmt.Errorf("failed to scan lot row: %w", err)
			}
		}
		rows.Close()

		if _, err := tx.ExecContext(ctx,
			`UPDATE tlp.tlp_simulacao SET status = $1 WHERE id_simulacao = $2`,
			SimulationStatusConvertedToLot, origin.ID); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to mark simulation converted: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit promotion: %w", err)
		}
		return lot, nil
	}
	return nil, fmt.Errorf("failed to insert lot after version conflicts: %w", lastErr)
}

func (ls *LotStore) List(ctx context.Context) ([]Lot, error) {
	query := `
	SELECT id_lote, exercicio, versao, id_simulacao_origem, parametros_snapshot, status, created_at
	FROM tlp.tlp_lote_lancamento
	ORDER BY created_at DESC`

	var lots []Lot
	if err := ls.db.SelectContext(ctx, &lots, query); err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}
	return lots, nil
}

// LatestByYear returns the highest-version lot of a fiscal year, or nil when
// the year has none; callers use it as the base for the next year's limits.
func (ls *LotStore) LatestByYear(ctx context.Context, fiscalYear int) (*Lot, error) {
	query := `
	SELECT id_lote, exercicio, versao, id_simulacao_origem, parametros_snapshot, status, created_at
	FROM tlp.tlp_lote_lancamento
	WHERE exercicio = $1
	ORDER BY versao DESC
	LIMIT 1`

	var lot Lot
	if err := ls.db.GetContext(ctx, &lot, query, fiscalYear); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest lot for year %d: %w", fiscalYear, err)
	}
	return &lot, nil
}
