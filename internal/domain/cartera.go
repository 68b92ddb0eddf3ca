package domain

// CarteraQuery is the input to the accounts-receivable pipeline.
// CustomerID must be a non-empty digits-only identifier; AsOfDate defaults
// to today (YYYY-MM-DD) when left empty; SalesRep empty means "all".
type CarteraQuery struct {
	CustomerID string `json:"customer_id"`
	AsOfDate   string `json:"fecha,omitempty"`
	SalesRep   string `json:"vendedor,omitempty"`
}

// RawLineItem is a single accounts-receivable document exactly as the
// upstream ERP returned it. Field names and types vary by upstream version,
// so it stays a loose mapping until reconciliation.
type RawLineItem map[string]any

// NormalizedLineItem is the canonical shape of one document after
// field-name reconciliation.
type NormalizedLineItem struct {
	DocumentNumber string `json:"documento"`
	DocumentPrefix string `json:"prefijo,omitempty"`
	Balance        int64  `json:"saldo"`
	DaysOverdue    int    `json:"dias_vencido"`
	IssueDate      string `json:"fecha_emision,omitempty"`
	DueDate        string `json:"fecha_vencimiento,omitempty"`
}

// CarteraSummary aggregates all normalized documents for one query.
// TotalBalance == OverdueBalance + CurrentBalance by construction: each
// document contributes to exactly one bucket.
type CarteraSummary struct {
	TotalBalance    int64 `json:"saldo_total"`
	CurrentBalance  int64 `json:"saldo_por_vencer"`
	OverdueBalance  int64 `json:"saldo_vencido"`
	CreditLimit     int64 `json:"cupo"`
	AvailableCredit int64 `json:"cupo_disponible"`
	DocumentCount   int   `json:"documentos"`
}

// FormattedSummary mirrors CarteraSummary with currency-formatted strings
// (e.g. "$1.234.567 COP") for direct display in the app.
type FormattedSummary struct {
	TotalBalance    string `json:"saldo_total"`
	CurrentBalance  string `json:"saldo_por_vencer"`
	OverdueBalance  string `json:"saldo_vencido"`
	CreditLimit     string `json:"cupo"`
	AvailableCredit string `json:"cupo_disponible"`
}

// CarteraItem is one document in the caller-facing payload: the canonical
// fields plus a formatted balance.
type CarteraItem struct {
	NormalizedLineItem
	BalanceFormatted string `json:"saldo_formateado"`
}

// CarteraResponse is the caller-facing payload for a cartera status query.
// A degraded result (upstream returned no parseable data) is still OK=true
// with a zero summary, empty items, and a non-empty Warning.
type CarteraResponse struct {
	OK         bool             `json:"ok"`
	RequestID  string           `json:"request_id,omitempty"`
	Summary    CarteraSummary   `json:"summary"`
	Result     FormattedSummary `json:"result"`
	Items      []CarteraItem    `json:"items"`
	Warning    string           `json:"warning,omitempty"`
	RawSnippet string           `json:"rawSnippet,omitempty"`
}

// ExtractResult is the outcome of locating the JSON payload embedded in the
// upstream SOAP response. It never represents a Go error: OK=false carries a
// diagnostic reason and a short snippet of the raw text instead.
type ExtractResult struct {
	OK      bool
	Items   []RawLineItem
	Reason  string
	Snippet string
}

// BatchEntry is one customer's outcome inside a batch statement request.
// Entries are independent: one customer failing does not affect the rest.
type BatchEntry struct {
	CustomerID string           `json:"customer_id"`
	OK         bool             `json:"ok"`
	Response   *CarteraResponse `json:"response,omitempty"`
	Error      string           `json:"error,omitempty"`
}
