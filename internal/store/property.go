package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PropertyStore reads the classified catalog view. The engine consumes the
// whole jurisdiction in one materialized slice; no paging.
type PropertyStore struct {
	db *sqlx.DB
}

const propertyColumns = `
	codg_inscricao_lan,
	COALESCE(nome_contribuinte_lan, '') AS nome_contribuinte_lan,
	COALESCE(uso_classificado, '') AS uso_classificado,
	COALESCE(atividade_considerada, '') AS atividade_considerada,
	COALESCE(tem_servico, false) AS tem_servico,
	COALESCE(tem_comercio, false) AS tem_comercio,
	COALESCE(tem_industria, false) AS tem_industria,
	COALESCE(qtde_empresas_distintas, 0) AS qtde_empresas_distintas,
	COALESCE(qtde_cnaes_distintos, 0) AS qtde_cnaes_distintos`

// GetAll returns every catalog record ordered by inscription code. The view
// itself has no stable order; the explicit ordering keeps reprocessing runs
// byte-for-byte reproducible.
func (ps *PropertyStore) GetAll(ctx context.Context) ([]PropertyRecord, error) {
	query := `SELECT ` + propertyColumns + `
	FROM tlp.vw_uso_imovel_por_inscricao
	ORDER BY codg_inscricao_lan`

	var records []PropertyRecord
	if err := ps.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to load property catalog: %w", err)
	}
	return records, nil
}

func (ps *PropertyStore) GetByID(ctx context.Context, propertyID string) (*PropertyRecord, error) {
	query := `SELECT ` + propertyColumns + `
	FROM tlp.vw_uso_imovel_por_inscricao
	WHERE codg_inscricao_lan = $1`

	var rec PropertyRecord
	if err := ps.db.GetContext(ctx, &rec, query, propertyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get property %s: %w", propertyID, err)
	}
	return &rec, nil
}

// Insert loads one record into the base table behind the catalog view; used
// by the ETL importer, never by the request path.
func (ps *PropertyStore) Insert(ctx context.Context, rec *PropertyRecord) error {
	query := `INSERT INTO tlp.uso_imovel_classificado (
		codg_inscricao_lan,
		nome_contribuinte_lan,
		uso_classificado,
		atividade_considerada,
		tem_servico,
		tem_comercio,
		tem_industria,
		qtde_empresas_distintas,
		qtde_cnaes_distintos
	) VALUES (
		:codg_inscricao_lan,
		:nome_contribuinte_lan,
		:uso_classificado,
		:atividade_considerada,
		:tem_servico,
		:tem_comercio,
		:tem_industria,
		:qtde_empresas_distintas,
		:qtde_cnaes_distintos
	)
	ON CONFLICT (codg_inscricao_lan) DO UPDATE SET
		nome_contribuinte_lan = EXCLUDED.nome_contribuinte_lan,
		uso_classificado = EXCLUDED.uso_classificado,
		atividade_considerada = EXCLUDED.atividade_considerada,
		tem_servico = EXCLUDED.tem_servico,
		tem_comercio = EXCLUDED.tem_comercio,
		tem_industria = EXCLUDED.tem_industria,
		qtde_empresas_distintas = EXCLUDED.qtde_empresas_distintas,
		qtde_cnaes_distintos = EXCLUDED.qtde_cnaes_distintos`

	if _, err := ps.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("failed to upsert property %s: %w", rec.PropertyID, err)
	}
	return nil
}
