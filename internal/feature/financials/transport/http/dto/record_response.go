// Package dto defines data transfer objects for the financials HTTP API.
package dto

// RecordResponse represents one financial record in the API response.
type RecordResponse struct {
	Company     string `json:"company"`
	FiscalYear  int    `json:"fiscal_year"`
	Revenue     int64  `json:"revenue"`
	NetIncome   int64  `json:"net_income"`
	TotalAssets int64  `json:"total_assets"`
	TotalEquity int64  `json:"total_equity"`
}

// RankEntry represents one row of a metric ranking.
type RankEntry struct {
	Rank    int    `json:"rank"`
	Company string `json:"company"`
	Value   int64  `json:"value"`
}

// MetadataResponse describes the data currently available in the store.
type MetadataResponse struct {
	Companies   []string `json:"companies"`
	Years       []int    `json:"years"`
	Metrics     []string `json:"metrics"`
	RecordCount int64    `json:"record_count"`
}
