package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ExemptionStore struct {
	db *sqlx.DB
}

func (es *ExemptionStore) Create(ctx context.Context, e *Exemption) error {
	query := `INSERT INTO tlp.tlp_nao_incidencia (
		id_nao_incidencia,
		codg_inscricao_lan,
		exercicio,
		motivo,
		origem,
		ativo
	) VALUES (
		:id_nao_incidencia,
		:codg_inscricao_lan,
		:exercicio,
		:motivo,
		:origem,
		:ativo
	) RETURNING created_at`

	e.ID = uuid.New()
	e.Active = true

	rows, err := sqlx.NamedQueryContext(ctx, es.db, query, e)
	if err != nil {
		return fmt.Errorf("failed to insert exemption: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&e.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan exemption row: %w", err)
		}
	}
	return nil
}

// ListActive returns active exemptions only, newest first. Deactivated rows
// stay in the table for audit but never surface here.
func (es *ExemptionStore) ListActive(ctx context.Context) ([]Exemption, error) {
	query := `
	SELECT id_nao_incidencia, codg_inscricao_lan, exercicio, motivo, origem, ativo, created_at
	FROM tlp.tlp_nao_incidencia
	WHERE ativo = true
	ORDER BY created_at DESC`

	var exemptions []Exemption
	if err := es.db.SelectContext(ctx, &exemptions, query); err != nil {
		return nil, fmt.Errorf("failed to list exemptions: %w", err)
	}
	return exemptions, nil
}

// ReasonsByYear maps property id to exemption reason for every active
// exemption of the fiscal year, the form the calculation engine consumes.
func (es *ExemptionStore) ReasonsByYear(ctx context.Context, fiscalYear int) (map[string]string, error) {
	query := `
	SELECT codg_inscricao_lan, COALESCE(motivo, '') AS motivo
	FROM tlp.tlp_nao_incidencia
	WHERE exercicio = $1 AND ativo = true`

	rows, err := es.db.QueryxContext(ctx, query, fiscalYear)
	if err != nil {
		return nil, fmt.Errorf("failed to query exemptions for year %d: %w", fiscalYear, err)
	}
	defer rows.Close()

	reasons := make(map[string]string)
	for rows.Next() {
		var propertyID, reason string
		if err := rows.Scan(&propertyID, &reason); err != nil {
			return nil, fmt.Errorf("failed to scan exemption row: %w", err)
		}
		reasons[propertyID] = reason
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return reasons, nil
}
