package models

import "time"

// NotAvailable is the sentinel stored in any field that could not be extracted
const NotAvailable = "N/A"

// StockRecord is one ranked stock as recovered from the ranking page.
// Every field is always populated; unknown values hold NotAvailable.
type StockRecord struct {
	Rank          int    `json:"rank"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	Price         string `json:"price"`
	Change        string `json:"change"`
	ChangePercent string `json:"change_percent"`
	High          string `json:"high"`
	Low           string `json:"low"`
	PriceDiff     string `json:"price_diff"`
	Volume        string `json:"volume_shrs"`
	Turnover      string `json:"turnover_B_NTD"`
}

// TopNView is the reduced projection of a StockRecord used for the top-N file
type TopNView struct {
	Rank   int    `json:"rank"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Price  string `json:"price"`
	Volume string `json:"volume"`
}

// View projects the record onto the top-N fields
func (r StockRecord) View() TopNView {
	return TopNView{
		Rank:   r.Rank,
		Symbol: r.Symbol,
		Name:   r.Name,
		Price:  r.Price,
		Volume: r.Volume,
	}
}

// RankingReport is the document written for the full batch
type RankingReport struct {
	Source         string        `json:"source"`
	LastUpdated    string        `json:"last_updated_cst"`
	ExecutionCount int           `json:"execution_count"`
	RankingData    []StockRecord `json:"ranking_data"`
}

// TopReport is the document written for the top-N view
type TopReport struct {
	Source         string     `json:"source"`
	LastUpdated    string     `json:"last_updated_cst"`
	ExecutionCount int        `json:"execution_count"`
	Data           []TopNView `json:"data"`
}

// Page is the raw markup returned by a fetch engine
type Page struct {
	URL          string            `json:"url"`
	StatusCode   int               `json:"status_code"`
	HTML         string            `json:"-"`
	Engine       string            `json:"engine"`
	Headers      map[string]string `json:"headers,omitempty"`
	FetchedAt    time.Time         `json:"fetched_at"`
	ResponseTime int64             `json:"response_time_ms"`
}

// FetchMode defines the engine used to retrieve the page
type FetchMode string

const (
	ModeAuto    FetchMode = "auto"
	ModeStatic  FetchMode = "static"
	ModeBrowser FetchMode = "browser"
)

// RequestOptions contains options for a single page fetch
type RequestOptions struct {
	URL     string
	Mode    FetchMode
	Headers map[string]string
	Timeout time.Duration
	Proxy   string
}
