package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farxc/tlp-lancamento/internal/store"
	"github.com/farxc/tlp-lancamento/internal/tlp"
)

type fakeParameters struct {
	created []*store.Parameter
	list    []store.Parameter
	listErr error
}

func (f *fakeParameters) Create(ctx context.Context, p *store.Parameter) error {
	p.ID = uuid.New()
	p.Version = len(f.created) + 1
	p.Active = true
	f.created = append(f.created, p)
	return nil
}

func (f *fakeParameters) List(ctx context.Context) ([]store.Parameter, error) {
	return f.list, f.listErr
}

type fakeSimulations struct {
	created []*store.Simulation
	byID    map[uuid.UUID]*store.Simulation
}

func (f *fakeSimulations) Create(ctx context.Context, sim *store.Simulation) error {
	sim.ID = uuid.New()
	sim.Status = store.SimulationStatusDraft
	f.created = append(f.created, sim)
	return nil
}

func (f *fakeSimulations) List(ctx context.Context) ([]store.Simulation, error) {
	return nil, nil
}

func (f *fakeSimulations) GetByID(ctx context.Context, id uuid.UUID) (*store.Simulation, error) {
	sim, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return sim, nil
}

func (f *fakeSimulations) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	return nil
}

func (f *fakeSimulations) CompleteRun(ctx context.Context, id uuid.UUID, items []store.SimulationItem) error {
	return nil
}

type fakeSimulationItems struct {
	lastOffset int
	lastLimit  int
	items      []store.SimulationItem
	summary    *store.ItemSummary
	byUsage    []store.UsageBreakdown
}

func (f *fakeSimulationItems) ListPage(ctx context.Context, simulationID uuid.UUID, offset, limit int) ([]store.SimulationItem, error) {
	f.lastOffset = offset
	f.lastLimit = limit
	return f.items, nil
}

func (f *fakeSimulationItems) Summary(ctx context.Context, simulationID uuid.UUID) (*store.ItemSummary, error) {
	return f.summary, nil
}

func (f *fakeSimulationItems) ByUsage(ctx context.Context, simulationID uuid.UUID) ([]store.UsageBreakdown, error) {
	return f.byUsage, nil
}

type fakeLots struct {
	created   []*store.Lot
	latest    *store.Lot
	latestErr error
}

func (f *fakeLots) Create(ctx context.Context, origin *store.Simulation) (*store.Lot, error) {
	lot := &store.Lot{
		ID:                 uuid.New(),
		FiscalYear:         origin.FiscalYear,
		Version:            len(f.created) + 1,
		OriginSimulationID: origin.ID,
		Snapshot:           origin.Snapshot,
		Status:             store.LotStatusGenerated,
	}
	f.created = append(f.created, lot)
	return lot, nil
}

func (f *fakeLots) List(ctx context.Context) ([]store.Lot, error) {
	return nil, nil
}

func (f *fakeLots) LatestByYear(ctx context.Context, fiscalYear int) (*store.Lot, error) {
	return f.latest, f.latestErr
}

func newTestApp(storage store.Storage) *application {
	return &application{
		config: config{addr: ":0"},
		store:  storage,
	}
}

func doRequest(t *testing.T, app *application, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	app.mount().ServeHTTP(rec, req)
	return rec
}

func TestCreateParameter(t *testing.T) {
	params := &fakeParameters{}
	app := newTestApp(store.Storage{Parameters: params})

	rec := doRequest(t, app, http.MethodPost, "/v1/parameters", `{
		"exercicio": 2025,
		"custo_tlp_base": 120000000,
		"ipca_percentual": 4.5,
		"subsidio_percentual": 10,
		"limite_min_base": 258.00,
		"limite_max_base": 1600.08,
		"limite_min_atualizado": 269.61,
		"limite_max_atualizado": 1672.08
	}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, params.created, 1)
	created := params.created[0]
	assert.Equal(t, 2025, created.FiscalYear)
	assert.True(t, created.BaseCost.Equal(decimal.NewFromInt(120000000)))

	var body CreateParameterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Data.Version)
}

func TestCreateParameterRejectsMissingYear(t *testing.T) {
	params := &fakeParameters{}
	app := newTestApp(store.Storage{Parameters: params})

	rec := doRequest(t, app, http.MethodPost, "/v1/parameters", `{"custo_tlp_base": 100}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, params.created)
}

func TestCreateParameterRejectsMalformedBody(t *testing.T) {
	app := newTestApp(store.Storage{Parameters: &fakeParameters{}})

	rec := doRequest(t, app, http.MethodPost, "/v1/parameters", `{"exercicio": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSimulationFreezesSnapshot(t *testing.T) {
	sims := &fakeSimulations{}
	app := newTestApp(store.Storage{Simulations: sims})

	rec := doRequest(t, app, http.MethodPost, "/v1/simulations", `{
		"exercicio": 2025,
		"descricao": "Cenario base",
		"custo_tlp_base": 1000000,
		"ipca_percentual": 4.5,
		"subsidio_percentual": 0,
		"limite_min_base": 258.00,
		"limite_max_base": 1600.08
	}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, sims.created, 1)
	sim := sims.created[0]
	assert.Equal(t, "Cenario base", sim.Description)
	assert.True(t, sim.Snapshot.BaseCost.Equal(decimal.NewFromInt(1000000)))
	assert.Nil(t, sim.Snapshot.FinalCost)
	assert.Nil(t, sim.Snapshot.LimitMinUpdated, "absent updated limits stay nil in the snapshot")
}

func TestProcessSimulationRejectsBadID(t *testing.T) {
	app := newTestApp(store.Storage{})

	rec := doRequest(t, app, http.MethodPost, "/v1/simulations/not-a-uuid/process", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSimulationItemsPaging(t *testing.T) {
	items := &fakeSimulationItems{}
	app := newTestApp(store.Storage{SimulationItems: items})
	id := uuid.New()

	rec := doRequest(t, app, http.MethodGet, "/v1/simulations/"+id.String()+"/items?skip=200&limit=50", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 200, items.lastOffset)
	assert.Equal(t, 50, items.lastLimit)

	rec = doRequest(t, app, http.MethodGet, "/v1/simulations/"+id.String()+"/items", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, items.lastOffset)
	assert.Equal(t, 100, items.lastLimit, "limit defaults to 100")
}

func TestGetSimulationResult(t *testing.T) {
	simID := uuid.New()
	sims := &fakeSimulations{byID: map[uuid.UUID]*store.Simulation{
		simID: {
			ID:         simID,
			FiscalYear: 2025,
			Status:     store.SimulationStatusCompleted,
			Snapshot:   tlp.Snapshot{BaseCost: decimal.NewFromInt(1000000)},
		},
	}}
	items := &fakeSimulationItems{
		summary: &store.ItemSummary{
			TotalProperties: 3,
			TotalAmount:     decimal.RequireFromString("2600.08"),
			AverageAmount:   decimal.RequireFromString("866.69"),
			MinAmount:       decimal.RequireFromString("1000"),
			MaxAmount:       decimal.RequireFromString("1600.08"),
			TotalExempt:     1,
		},
		byUsage: []store.UsageBreakdown{
			{Usage: tlp.UsageIndustry, Count: 1, Total: decimal.RequireFromString("1600.08")},
			{Usage: tlp.UsageResidential, Count: 1, Total: decimal.NewFromInt(1000)},
		},
	}
	app := newTestApp(store.Storage{Simulations: sims, SimulationItems: items})

	rec := doRequest(t, app, http.MethodGet, "/v1/simulations/"+simID.String()+"/result", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body SimulationResultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Data)
	assert.Equal(t, simID.String(), body.Data.Simulation.ID)
	assert.Equal(t, store.SimulationStatusCompleted, body.Data.Simulation.Status)
	assert.Equal(t, 3, body.Data.Statistics.TotalProperties)
	assert.InDelta(t, 2600.08, body.Data.Statistics.TotalAmount, 0.001)
	require.Len(t, body.Data.ByUsage, 2)
	assert.Equal(t, tlp.UsageIndustry, body.Data.ByUsage[0].Usage)
}

func TestGetSimulationResultNotFound(t *testing.T) {
	app := newTestApp(store.Storage{Simulations: &fakeSimulations{}})

	rec := doRequest(t, app, http.MethodGet, "/v1/simulations/"+uuid.NewString()+"/result", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateLot(t *testing.T) {
	simID := uuid.New()
	sims := &fakeSimulations{byID: map[uuid.UUID]*store.Simulation{
		simID: {
			ID:         simID,
			FiscalYear: 2025,
			Status:     store.SimulationStatusCompleted,
			Snapshot:   tlp.Snapshot{BaseCost: decimal.NewFromInt(1000000)},
		},
	}}
	lots := &fakeLots{}
	app := newTestApp(store.Storage{Simulations: sims, Lots: lots})

	rec := doRequest(t, app, http.MethodPost, "/v1/lots", `{"id_simulacao_origem": "`+simID.String()+`"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, lots.created, 1)
	lot := lots.created[0]
	assert.Equal(t, simID, lot.OriginSimulationID)
	assert.Equal(t, store.LotStatusGenerated, lot.Status)
	assert.True(t, lot.Snapshot.BaseCost.Equal(decimal.NewFromInt(1000000)), "snapshot copied from the origin simulation")
}

func TestCreateLotOriginNotFound(t *testing.T) {
	app := newTestApp(store.Storage{Simulations: &fakeSimulations{}, Lots: &fakeLots{}})

	rec := doRequest(t, app, http.MethodPost, "/v1/lots", `{"id_simulacao_origem": "`+uuid.NewString()+`"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLatestLot(t *testing.T) {
	limitMin := decimal.RequireFromString("269.61")
	limitMax := decimal.RequireFromString("1672.08")
	lots := &fakeLots{latest: &store.Lot{
		FiscalYear: 2025,
		Version:    3,
		Snapshot: tlp.Snapshot{
			IPCAPct:         decimal.RequireFromString("4.5"),
			LimitMinUpdated: &limitMin,
			LimitMaxUpdated: &limitMax,
		},
	}}
	app := newTestApp(store.Storage{Lots: lots})

	rec := doRequest(t, app, http.MethodGet, "/v1/lots/latest/2025", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body LatestLotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Data)
	assert.Equal(t, 2025, body.Data.FiscalYear)
	assert.Equal(t, 3, body.Data.Version)
	assert.InDelta(t, 269.61, body.Data.LimitMinUpdated, 0.001)
	assert.InDelta(t, 1672.08, body.Data.LimitMaxUpdated, 0.001)
}

func TestGetLatestLotAbsentYear(t *testing.T) {
	app := newTestApp(store.Storage{Lots: &fakeLots{}})

	rec := doRequest(t, app, http.MethodGet, "/v1/lots/latest/2030", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body LatestLotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Nil(t, body.Data)
	assert.Equal(t, "No lot recorded for the fiscal year", body.Message)
}

func TestGetLatestLotRejectsBadYear(t *testing.T) {
	app := newTestApp(store.Storage{Lots: &fakeLots{}})

	rec := doRequest(t, app, http.MethodGet, "/v1/lots/latest/abc", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
