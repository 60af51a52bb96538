package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type SimulationItemStore struct {
	db *sqlx.DB
}

// ListPage returns one page of a simulation's items, highest calculated value
// first.
func (sis *SimulationItemStore) ListPage(ctx context.Context, simulationID uuid.UUID, offset, limit int) ([]SimulationItem, error) {
	query := `
	SELECT
		id_item,
		id_simulacao,
		codg_inscricao_lan,
		COALESCE(nome_contribuinte, '') AS nome_contribuinte,
		uso_classificado,
		COALESCE(atividade_considerada, '') AS atividade_considerada,
		fator_uso,
		tlp_bruta,
		tlp_calculada,
		nao_incidencia,
		motivo_nao_incidencia,
		created_at
	FROM tlp.tlp_simulacao_item
	WHERE id_simulacao = $1
	ORDER BY tlp_calculada DESC
	OFFSET $2 LIMIT $3`

	var items []SimulationItem
	if err := sis.db.SelectContext(ctx, &items, query, simulationID, offset, limit); err != nil {
		return nil, fmt.Errorf("failed to list simulation items: %w", err)
	}
	return items, nil
}

// Summary aggregates a simulation's items in SQL: count, sum, average, min,
// max of the calculated value plus the exempt count.
func (sis *SimulationItemStore) Summary(ctx context.Context, simulationID uuid.UUID) (*ItemSummary, error) {
	query := `
	SELECT
		COUNT(id_item) AS total_imoveis,
		COALESCE(SUM(tlp_calculada), 0) AS total_arrecadado,
		COALESCE(AVG(tlp_calculada), 0) AS media_tlp,
		COALESCE(MIN(tlp_calculada), 0) AS min_tlp,
		COALESCE(MAX(tlp_calculada), 0) AS max_tlp,
		COALESCE(SUM(CASE WHEN nao_incidencia THEN 1 ELSE 0 END), 0) AS total_isentos
	FROM tlp.tlp_simulacao_item
	WHERE id_simulacao = $1`

	var summary ItemSummary
	if err := sis.db.GetContext(ctx, &summary, query, simulationID); err != nil {
		return nil, fmt.Errorf("failed to summarize simulation items: %w", err)
	}
	return &summary, nil
}

// ByUsage groups a simulation's items by usage classification.
func (sis *SimulationItemStore) ByUsage(ctx context.Context, simulationID uuid.UUID) ([]UsageBreakdown, error) {
	query := `
	SELECT
		uso_classificado,
		COUNT(id_item) AS quantidade,
		COALESCE(SUM(tlp_calculada), 0) AS total
	FROM tlp.tlp_simulacao_item
	WHERE id_simulacao = $1
	GROUP BY uso_classificado
	ORDER BY total DESC`

	var breakdown []UsageBreakdown
	if err := sis.db.SelectContext(ctx, &breakdown, query, simulationID); err != nil {
		return nil, fmt.Errorf("failed to group simulation items by usage: %w", err)
	}
	return breakdown, nil
}
