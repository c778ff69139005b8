package entity

import "strings"

// Metric は財務テーブルの数値カラムを表す列挙型です。
// SQLのカラム名としてそのまま使用されるため、値はホワイトリストで固定します。
type Metric string

const (
	MetricRevenue     Metric = "revenue"
	MetricNetIncome   Metric = "net_income"
	MetricTotalAssets Metric = "total_assets"
	MetricTotalEquity Metric = "total_equity"
)

// Metrics は利用可能な全メトリクスを定義順で返します。
func Metrics() []Metric {
	return []Metric{MetricRevenue, MetricNetIncome, MetricTotalAssets, MetricTotalEquity}
}

// MetricNames は利用可能な全メトリクス名を返します。
func MetricNames() []string {
	ms := Metrics()
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, string(m))
	}
	return out
}

// ParseMetric は文字列をMetricに変換します。
// 未知のメトリクス名の場合は ok=false を返します。
func ParseMetric(s string) (Metric, bool) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Metrics() {
		if m == known {
			return m, true
		}
	}
	return "", false
}

// Label はメトリクス名を人間向けの表記（アンダースコアをスペースに変換）で返します。
func (m Metric) Label() string {
	return strings.ReplaceAll(string(m), "_", " ")
}
