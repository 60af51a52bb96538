package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"github.com/farxc/tlp-lancamento/internal/logger"
	"github.com/farxc/tlp-lancamento/internal/store"
)

func parseBool(valStr string) bool {
	return strings.EqualFold(valStr, "Sim") || strings.EqualFold(valStr, "true") || valStr == "1"
}

func parseInt(valStr string) int {
	if valStr == "" {
		return 0
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0
	}
	return val
}

func stringField(row map[string]interface{}, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

// LoadCatalog upserts every row of the export into the catalog base table.
// Rows without an inscription code are skipped, not fatal: a partial export
// should still load the records it does carry.
func LoadCatalog(ctx context.Context, df dataframe.DataFrame, storage *store.Storage, appLogger *logger.Logger) (loaded, skipped int) {
	const component = "CatalogLoader"
	appLogger.Info(component, "Starting catalog load: rows=%d", df.Nrow())

	for i, row := range df.Maps() {
		id := stringField(row, "codg_inscricao_lan")
		if id == "" {
			appLogger.Warn(component, "Skipping row %d: missing inscription code", i)
			skipped++
			continue
		}

		rec := &store.PropertyRecord{
			PropertyID:        id,
			ContributorName:   stringField(row, "nome_contribuinte_lan"),
			Usage:             strings.ToUpper(stringField(row, "uso_classificado")),
			Activity:          stringField(row, "atividade_considerada"),
			HasService:        parseBool(stringField(row, "tem_servico")),
			HasCommerce:       parseBool(stringField(row, "tem_comercio")),
			HasIndustry:       parseBool(stringField(row, "tem_industria")),
			DistinctCompanies: parseInt(stringField(row, "qtde_empresas_distintas")),
			DistinctCNAEs:     parseInt(stringField(row, "qtde_cnaes_distintos")),
		}

		if err := storage.Properties.Insert(ctx, rec); err != nil {
			appLogger.Error(component, "Failed to upsert property %s: %v", id, err)
			skipped++
			continue
		}
		loaded++

		if loaded%1000 == 0 {
			appLogger.Info(component, "Progress: %d records loaded", loaded)
		}
	}
	return loaded, skipped
}
