package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farxc/tlp-lancamento/internal/tlp"
)

// Simulation lifecycle statuses. CONCLUIDO is terminal for processing; a new
// simulation must be created to recompute after that point.
var (
	SimulationStatusDraft          = "RASCUNHO"
	SimulationStatusProcessing     = "EM_PROCESSAMENTO"
	SimulationStatusCompleted      = "CONCLUIDO"
	SimulationStatusFailed         = "ERRO"
	SimulationStatusConvertedToLot = "CONVERTIDO_LOTE"
)

// Launch lot statuses.
var (
	LotStatusGenerated = "GERADO"
	LotStatusProcessed = "PROCESSADO"
	LotStatusSent      = "ENVIADO"
)

// Parameter represents one immutable row of the 'tlp.tlp_parametros' table.
// Corrections never update a row; they insert the next version for the same
// fiscal year.
type Parameter struct {
	ID              uuid.UUID       `db:"id_parametro" json:"id_parametro"`
	FiscalYear      int             `db:"exercicio" json:"exercicio"`
	Version         int             `db:"versao" json:"versao"`
	BaseCost        decimal.Decimal `db:"custo_tlp_base" json:"custo_tlp_base"`
	IPCAPct         decimal.Decimal `db:"ipca_percentual" json:"ipca_percentual"`
	SubsidyPct      decimal.Decimal `db:"subsidio_percentual" json:"subsidio_percentual"`
	LimitMinBase    decimal.Decimal `db:"limite_min_base" json:"limite_min_base"`
	LimitMaxBase    decimal.Decimal `db:"limite_max_base" json:"limite_max_base"`
	LimitMinUpdated decimal.Decimal `db:"limite_min_atualizado" json:"limite_min_atualizado"`
	LimitMaxUpdated decimal.Decimal `db:"limite_max_atualizado" json:"limite_max_atualizado"`
	Active          bool            `db:"active" json:"active"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// Simulation represents the 'tlp.tlp_simulacao' table. The snapshot column is
// frozen at creation and decoupled from later parameter edits.
type Simulation struct {
	ID          uuid.UUID    `db:"id_simulacao" json:"id_simulacao"`
	FiscalYear  int          `db:"exercicio" json:"exercicio"`
	Description string       `db:"descricao" json:"descricao"`
	Status      string       `db:"status" json:"status"`
	Snapshot    tlp.Snapshot `db:"parametros_snapshot" json:"parametros_snapshot"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

// SimulationItem represents the 'tlp.tlp_simulacao_item' table: one calculated
// outcome per property. The full set for a simulation is replaced atomically
// on each processing run.
type SimulationItem struct {
	ID              int64           `db:"id_item" json:"id_item"`
	SimulationID    uuid.UUID       `db:"id_simulacao" json:"id_simulacao"`
	PropertyID      string          `db:"codg_inscricao_lan" json:"codg_inscricao_lan"`
	ContributorName string          `db:"nome_contribuinte" json:"nome_contribuinte"`
	Usage           string          `db:"uso_classificado" json:"uso_classificado"`
	Activity        string          `db:"atividade_considerada" json:"atividade_considerada"`
	UsageFactor     decimal.Decimal `db:"fator_uso" json:"fator_uso"`
	GrossValue      decimal.Decimal `db:"tlp_bruta" json:"tlp_bruta"`
	CalculatedValue decimal.Decimal `db:"tlp_calculada" json:"tlp_calculada"`
	Exempt          bool            `db:"nao_incidencia" json:"nao_incidencia"`
	ExemptionReason *string         `db:"motivo_nao_incidencia" json:"motivo_nao_incidencia"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// Exemption represents the 'tlp.tlp_nao_incidencia' table. Deactivation flips
// the ativo flag; rows are never deleted, so the history is retained.
type Exemption struct {
	ID         uuid.UUID `db:"id_nao_incidencia" json:"id_nao_incidencia"`
	PropertyID string    `db:"codg_inscricao_lan" json:"codg_inscricao_lan"`
	FiscalYear int       `db:"exercicio" json:"exercicio"`
	Reason     *string   `db:"motivo" json:"motivo"`
	Source     *string   `db:"origem" json:"origem"`
	Active     bool      `db:"ativo" json:"ativo"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Lot represents the 'tlp.tlp_lote_lancamento' table: an official launch batch
// promoted from a simulation. Its version sequence per fiscal year is
// independent from the parameter versions.
type Lot struct {
	ID                 uuid.UUID    `db:"id_lote" json:"id_lote"`
	FiscalYear         int          `db:"exercicio" json:"exercicio"`
	Version            int          `db:"versao" json:"versao"`
	OriginSimulationID uuid.UUID    `db:"id_simulacao_origem" json:"id_simulacao_origem"`
	Snapshot           tlp.Snapshot `db:"parametros_snapshot" json:"parametros_snapshot"`
	Status             string       `db:"status" json:"status"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
}

// PropertyRecord is one row of the read-only classified catalog view
// 'tlp.vw_uso_imovel_por_inscricao'.
type PropertyRecord struct {
	PropertyID        string `db:"codg_inscricao_lan" json:"codg_inscricao_lan"`
	ContributorName   string `db:"nome_contribuinte_lan" json:"nome_contribuinte_lan"`
	Usage             string `db:"uso_classificado" json:"uso_classificado"`
	Activity          string `db:"atividade_considerada" json:"atividade_considerada"`
	HasService        bool   `db:"tem_servico" json:"tem_servico"`
	HasCommerce       bool   `db:"tem_comercio" json:"tem_comercio"`
	HasIndustry       bool   `db:"tem_industria" json:"tem_industria"`
	DistinctCompanies int    `db:"qtde_empresas_distintas" json:"qtde_empresas_distintas"`
	DistinctCNAEs     int    `db:"qtde_cnaes_distintos" json:"qtde_cnaes_distintos"`
}

// ItemSummary carries the aggregate statistics over a simulation's items.
// Amounts stay exact decimals here; conversion to display floats happens at
// the API boundary.
type ItemSummary struct {
	TotalProperties int             `db:"total_imoveis"`
	TotalAmount     decimal.Decimal `db:"total_arrecadado"`
	AverageAmount   decimal.Decimal `db:"media_tlp"`
	MinAmount       decimal.Decimal `db:"min_tlp"`
	MaxAmount       decimal.Decimal `db:"max_tlp"`
	TotalExempt     int             `db:"total_isentos"`
}

// UsageBreakdown is one per-classification row of the summary.
type UsageBreakdown struct {
	Usage string          `db:"uso_classificado"`
	Count int             `db:"quantidade"`
	Total decimal.Decimal `db:"total"`
}
