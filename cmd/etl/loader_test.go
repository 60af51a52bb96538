package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farxc/tlp-lancamento/internal/logger"
	"github.com/farxc/tlp-lancamento/internal/store"
)

type fakePropertyStore struct {
	inserted  []store.PropertyRecord
	insertErr map[string]error
}

func (f *fakePropertyStore) GetAll(ctx context.Context) ([]store.PropertyRecord, error) {
	return f.inserted, nil
}

func (f *fakePropertyStore) GetByID(ctx context.Context, propertyID string) (*store.PropertyRecord, error) {
	for i := range f.inserted {
		if f.inserted[i].PropertyID == propertyID {
			return &f.inserted[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakePropertyStore) Insert(ctx context.Context, rec *store.PropertyRecord) error {
	if err := f.insertErr[rec.PropertyID]; err != nil {
		return err
	}
	f.inserted = append(f.inserted, *rec)
	return nil
}

func testCatalogCSV(t *testing.T, csv string) dataframe.DataFrame {
	t.Helper()
	df := dataframe.ReadCSV(strings.NewReader(csv), dataframe.WithDelimiter(';'), dataframe.HasHeader(true))
	require.NoError(t, df.Error())
	return df
}

func TestLoadCatalog(t *testing.T) {
	csv := "codg_inscricao_lan;nome_contribuinte_lan;uso_classificado;atividade_considerada;tem_servico;tem_comercio;tem_industria;qtde_empresas_distintas;qtde_cnaes_distintos\n" +
		"900001;MARIA DA SILVA;residencial;;Nao;Nao;Nao;0;0\n" +
		"900002;PADARIA CENTRAL LTDA;COMERCIO;Padaria;Nao;Sim;Nao;1;2\n"

	fake := &fakePropertyStore{}
	storage := &store.Storage{Properties: fake}
	log := &logger.Logger{MinLevel: logger.LevelError}

	loaded, skipped := LoadCatalog(context.Background(), testCatalogCSV(t, csv), storage, log)

	assert.Equal(t, 2, loaded)
	assert.Equal(t, 0, skipped)
	require.Len(t, fake.inserted, 2)

	first := fake.inserted[0]
	assert.Equal(t, "900001", first.PropertyID)
	assert.Equal(t, "MARIA DA SILVA", first.ContributorName)
	assert.Equal(t, "RESIDENCIAL", first.Usage, "usage is normalized to upper case")
	assert.False(t, first.HasCommerce)

	second := fake.inserted[1]
	assert.Equal(t, "PADARIA CENTRAL LTDA", second.ContributorName)
	assert.True(t, second.HasCommerce)
	assert.Equal(t, 1, second.DistinctCompanies)
	assert.Equal(t, 2, second.DistinctCNAEs)
}

func TestLoadCatalogSkipsFailedRows(t *testing.T) {
	csv := "codg_inscricao_lan;nome_contribuinte_lan;uso_classificado;atividade_considerada;tem_servico;tem_comercio;tem_industria;qtde_empresas_distintas;qtde_cnaes_distintos\n" +
		"900001;MARIA DA SILVA;RESIDENCIAL;;Nao;Nao;Nao;0;0\n" +
		"900002;EMPRESA X;COMERCIO;Loja;Nao;Sim;Nao;1;1\n"

	fake := &fakePropertyStore{insertErr: map[string]error{
		"900002": errors.New("connection reset"),
	}}
	storage := &store.Storage{Properties: fake}
	log := &logger.Logger{MinLevel: logger.LevelError}

	loaded, skipped := LoadCatalog(context.Background(), testCatalogCSV(t, csv), storage, log)

	assert.Equal(t, 1, loaded)
	assert.Equal(t, 1, skipped)
	require.Len(t, fake.inserted, 1)
	assert.Equal(t, "900001", fake.inserted[0].PropertyID)
}

func TestParseBool(t *testing.T) {
	assert.True(t, parseBool("Sim"))
	assert.True(t, parseBool("sim"))
	assert.True(t, parseBool("1"))
	assert.True(t, parseBool("true"))
	assert.False(t, parseBool("Nao"))
	assert.False(t, parseBool(""))
	assert.False(t, parseBool("0"))
}
