package entity

import (
	"math"
	"testing"
)

func TestFinancialRecord_Ratios(t *testing.T) {
	rec := FinancialRecord{
		Company:     "Beta Inc",
		FiscalYear:  2020,
		Revenue:     142_000_000,
		NetIncome:   13_774_000,
		TotalAssets: 192_000_000,
		TotalEquity: 83_000_000,
	}

	margin, ok := rec.NetMargin()
	if !ok {
		t.Fatal("NetMargin should be defined")
	}
	// 13,774,000 / 142,000,000 × 100 = 9.7
	if math.Abs(margin-9.7) > 0.0001 {
		t.Errorf("margin mismatch: got %.4f, want 9.7", margin)
	}

	roe, ok := rec.ReturnOnEquity()
	if !ok {
		t.Fatal("ReturnOnEquity should be defined")
	}
	if math.Abs(roe-16.5951) > 0.001 {
		t.Errorf("roe mismatch: got %.4f", roe)
	}

	ratio, ok := rec.EquityRatio()
	if !ok {
		t.Fatal("EquityRatio should be defined")
	}
	if math.Abs(ratio-43.2292) > 0.001 {
		t.Errorf("equity ratio mismatch: got %.4f", ratio)
	}
}

func TestFinancialRecord_RatiosUndefinedOnZeroDenominator(t *testing.T) {
	rec := FinancialRecord{Company: "Shell Co", FiscalYear: 2023}

	if _, ok := rec.NetMargin(); ok {
		t.Error("NetMargin should be undefined with zero revenue")
	}
	if _, ok := rec.ReturnOnEquity(); ok {
		t.Error("ReturnOnEquity should be undefined with zero equity")
	}
	if _, ok := rec.EquityRatio(); ok {
		t.Error("EquityRatio should be undefined with zero assets")
	}
}

func TestFinancialRecord_Value(t *testing.T) {
	rec := FinancialRecord{
		Revenue:     1,
		NetIncome:   2,
		TotalAssets: 3,
		TotalEquity: 4,
	}

	testCases := []struct {
		metric Metric
		want   int64
	}{
		{MetricRevenue, 1},
		{MetricNetIncome, 2},
		{MetricTotalAssets, 3},
		{MetricTotalEquity, 4},
	}
	for _, tc := range testCases {
		if got := rec.Value(tc.metric); got != tc.want {
			t.Errorf("Value(%s) = %d, want %d", tc.metric, got, tc.want)
		}
	}
}

func TestParseMetric(t *testing.T) {
	testCases := []struct {
		input  string
		want   Metric
		wantOK bool
	}{
		{"revenue", MetricRevenue, true},
		{"NET_INCOME", MetricNetIncome, true},
		{"  total_assets  ", MetricTotalAssets, true},
		{"total_equity", MetricTotalEquity, true},
		{"ebitda", "", false},
		{"", "", false},
	}

	for _, tc := range testCases {
		got, ok := ParseMetric(tc.input)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("ParseMetric(%q) = (%q, %v), want (%q, %v)", tc.input, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestMetric_Label(t *testing.T) {
	if got := MetricNetIncome.Label(); got != "net income" {
		t.Errorf("Label mismatch: got %q", got)
	}
	if got := MetricRevenue.Label(); got != "revenue" {
		t.Errorf("Label mismatch: got %q", got)
	}
}
