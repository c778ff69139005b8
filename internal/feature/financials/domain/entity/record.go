// Package entity は財務データのドメインエンティティを定義します。
package entity

// FinancialRecord は1企業・1会計年度の報告済み財務数値を表します。
// 金額はすべてドル単位の整数です（セント以下は扱いません）。
type FinancialRecord struct {
	Company     string
	FiscalYear  int
	Revenue     int64
	NetIncome   int64
	TotalAssets int64
	TotalEquity int64
}

// NetMargin は純利益率（純利益 ÷ 売上高 × 100）を返します。
// 売上高が0の場合は計算できないため ok=false を返します。
func (r FinancialRecord) NetMargin() (margin float64, ok bool) {
	if r.Revenue == 0 {
		return 0, false
	}
	return float64(r.NetIncome) / float64(r.Revenue) * 100, true
}

// ReturnOnEquity は自己資本利益率（純利益 ÷ 自己資本 × 100）を返します。
func (r FinancialRecord) ReturnOnEquity() (roe float64, ok bool) {
	if r.TotalEquity == 0 {
		return 0, false
	}
	return float64(r.NetIncome) / float64(r.TotalEquity) * 100, true
}

// EquityRatio は自己資本比率（自己資本 ÷ 総資産 × 100）を返します。
func (r FinancialRecord) EquityRatio() (ratio float64, ok bool) {
	if r.TotalAssets == 0 {
		return 0, false
	}
	return float64(r.TotalEquity) / float64(r.TotalAssets) * 100, true
}

// Value は指定されたメトリクスの値を返します。
func (r FinancialRecord) Value(m Metric) int64 {
	switch m {
	case MetricRevenue:
		return r.Revenue
	case MetricNetIncome:
		return r.NetIncome
	case MetricTotalAssets:
		return r.TotalAssets
	case MetricTotalEquity:
		return r.TotalEquity
	}
	return 0
}

// CompanyValue はランキング結果の1行（企業名とメトリクス値）を表します。
type CompanyValue struct {
	Company string
	Value   int64
}
