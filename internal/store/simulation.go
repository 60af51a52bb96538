package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type SimulationStore struct {
	db *sqlx.DB
}

// insertChunkSize keeps bulk item inserts well under the Postgres bind
// parameter limit.
const insertChunkSize = 500

func (ss *SimulationStore) Create(ctx context.Context, sim *Simulation) error {
	query := `INSERT INTO tlp.tlp_simulacao (
		id_simulacao,
		exercicio,
		descricao,
		status,
		parametros_snapshot
	) VALUES (
		:id_simulacao,
		:exercicio,
		:descricao,
		:status,
		:parametros_snapshot
	) RETURNING created_at`

	sim.ID = uuid.New()
	sim.Status = SimulationStatusDraft

	rows, err := sqlx.NamedQueryContext(ctx, ss.db, query, sim)
	if err != nil {
		return fmt.Errorf("failed to insert simulation: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&sim.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan simulation row: %w", err)
		}
	}
	return nil
}

func (ss *SimulationStore) List(ctx context.Context) ([]Simulation, error) {
	query := `
	SELECT id_simulacao, exercicio, COALESCE(descricao, '') AS descricao, status, parametros_snapshot, created_at
	FROM tlp.tlp_simulacao
	ORDER BY created_at DESC`

	var sims []Simulation
	if err := ss.db.SelectContext(ctx, &sims, query); err != nil {
		return nil, fmt.Errorf("failed to list simulations: %w", err)
	}
	return sims, nil
}

func (ss *SimulationStore) GetByID(ctx context.Context, id uuid.UUID) (*Simulation, error) {
	query := `
	SELECT id_simulacao, exercicio, COALESCE(descricao, '') AS descricao, status, parametros_snapshot, created_at
	FROM tlp.tlp_simulacao
	WHERE id_simulacao = $1`

	var sim Simulation
	if err := ss.db.GetContext(ctx, &sim, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get simulation %s: %w", id, err)
	}
	return &sim, nil
}

func (ss *SimulationStore) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := ss.db.ExecContext(ctx,
		`UPDATE tlp.tlp_simulacao SET status = $1 WHERE id_simulacao = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update simulation status: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteRun persists the outcome of one processing run in a single
// transaction: the previous item set is deleted, the new one inserted and the
// simulation concluded, all committed together. A failure anywhere rolls the
// whole run back, so the simulation keeps its prior item set and status and
// can never be observed stuck mid-run.
func (ss *SimulationStore) CompleteRun(ctx context.Context, id uuid.UUID, items []SimulationItem) error {
	tx, err := ss.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin processing transaction: %w", err)
	}

	if err := ss.completeRunTx(ctx, tx, id, items); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit processing transaction: %w", err)
	}
	return nil
}

func (ss *SimulationStore) completeRunTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, items []SimulationItem) error {
	// The intermediate status is recorded inside the transaction; externally
	// only the final CONCLUIDO (or the rolled-back prior status) is visible.
	if _, err := tx.ExecContext(ctx,
		`UPDATE tlp.tlp_simulacao SET status = $1 WHERE id_simulacao = $2`,
		SimulationStatusProcessing, id); err != nil {
		return fmt.Errorf("failed to mark simulation processing: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM tlp.tlp_simulacao_item WHERE id_simulacao = $1`, id); err != nil {
		return fmt.Errorf("failed to clear previous simulation items: %w", err)
	}

	insert := `INSERT INTO tlp.tlp_simulacao_item (
		id_simulacao,
		codg_inscricao_lan,
		nome_contribuinte,
		uso_classificado,
		atividade_considerada,
		fator_uso,
		tlp_bruta,
		tlp_calculada,
		nao_incidencia,
		motivo_nao_incidencia
	) VALUES (
		:id_simulacao,
		:codg_inscricao_lan,
		:nome_contribuinte,
		:uso_classificado,
		:atividade_considerada,
		:fator_uso,
		:tlp_bruta,
		:tlp_calculada,
		:nao_incidencia,
		:motivo_nao_incidencia
	)`

	for start := 0; start < len(items); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(items) {
			end = len(items)
		}
		if _, err := tx.NamedExecContext(ctx, insert, items[start:end]); err != nil {
			return fmt.Errorf("failed to insert simulation items: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE tlp.tlp_simulacao SET status = $1 WHERE id_simulacao = $2`,
		SimulationStatusCompleted, id); err != nil {
		return fmt.Errorf("failed to conclude simulation: %w", err)
	}
	return nil
}
