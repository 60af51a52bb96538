package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ParameterStore struct {
	db *sqlx.DB
}

// Create inserts a new parameter version for its fiscal year. The version is
// always (last version + 1), starting at 1; there is no update path, a
// correction is the next version. A unique index on (exercicio, versao)
// backs the retry loop against concurrent creators.
func (ps *ParameterStore) Create(ctx context.Context, p *Parameter) error {
	query := `INSERT INTO tlp.tlp_parametros (
		id_parametro,
		exercicio,
		versao,
		custo_tlp_base,
		ipca_percentual,
		subsidio_percentual,
		limite_min_base,
		limite_max_base,
		limite_min_atualizado,
		limite_max_atualizado,
		active
	) VALUES (
		:id_parametro,
		:exercicio,
		:versao,
		:custo_tlp_base,
		:ipca_percentual,
		:subsidio_percentual,
		:limite_min_base,
		:limite_max_base,
		:limite_min_atualizado,
		:limite_max_atualizado,
		:active
	) RETURNING created_at`

	var lastErr error
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		var next int
		err := ps.db.GetContext(ctx, &next,
			`SELECT COALESCE(MAX(versao), 0) + 1 FROM tlp.tlp_parametros WHERE exercicio = $1`,
			p.FiscalYear)
		if err != nil {
			return fmt.Errorf("failed to resolve next parameter version: %w", err)
		}

		p.ID = uuid.New()
		p.Version = next
		p.Active = true

		rows, err := sqlx.NamedQueryContext(ctx, ps.db, query, p)
		if err != nil {
			if isUniqueViolation(err) {
				lastErr = err
				continue
			}
			return fmt.Errorf("failed to insert parameter: %w", err)
		}
		if rows.Next() {
			if err := rows.Scan(&p.CreatedAt); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan parameter row: %w", err)
			}
		}
		rows.Close()
		return nil
	}
	return fmt.Errorf("failed to insert parameter after version conflicts: %w", lastErr)
}

func (ps *ParameterStore) List(ctx context.Context) ([]Parameter, error) {
	query := `
	SELECT
		id_parametro,
		exercicio,
		versao,
		custo_tlp_base,
		COALESCE(ipca_percentual, 0) AS ipca_percentual,
		COALESCE(subsidio_percentual, 0) AS subsidio_percentual,
		COALESCE(limite_min_base, 0) AS limite_min_base,
		COALESCE(limite_max_base, 0) AS limite_max_base,
		COALESCE(limite_min_atualizado, 0) AS limite_min_atualizado,
		COALESCE(limite_max_atualizado, 0) AS limite_max_atualizado,
		active,
		created_at
	FROM tlp.tlp_parametros
	ORDER BY exercicio DESC, versao DESC`

	var params []Parameter
	if err := ps.db.SelectContext(ctx, &params, query); err != nil {
		return nil, fmt.Errorf("failed to list parameters: %w", err)
	}
	return params, nil
}
