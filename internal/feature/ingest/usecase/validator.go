// Package usecase implements the CSV ingestion pipeline for financial records.
package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"finqa_backend/internal/feature/financials/domain/entity"
)

// RawRow は取り込み元の1行分の生データです。
// Line はエラー報告用のソースファイル上の行番号です（ヘッダ行が1行目）。
type RawRow struct {
	Line   int
	Fields map[string]string
}

// requiredColumns は必須の6カラムです。すべて存在し non-empty である必要があります。
var requiredColumns = []string{
	"company", "fiscal_year", "revenue", "net_income", "total_assets", "total_equity",
}

// Validator は生の1行を型付き・範囲検証済みの FinancialRecord に変換します。
// 副作用を持たない純粋な検証器で、同じ行に対して常に同じ結果を返します。
type Validator struct {
	roster  map[string]struct{}
	minYear int
	maxYear int
}

// NewValidator は新しい Validator を作成します。
// companies は許可された企業名のロスター、minYear/maxYear は会計年度の許容範囲です。
func NewValidator(companies []string, minYear, maxYear int) *Validator {
	roster := make(map[string]struct{}, len(companies))
	for _, c := range companies {
		roster[strings.TrimSpace(c)] = struct{}{}
	}
	return &Validator{roster: roster, minYear: minYear, maxYear: maxYear}
}

// Validate は1行を検証し、受理された場合はレコードと品質警告を返します。
// 拒否された場合は人間が読める理由を持つエラーを返します。
// 警告（売上を超える純利益、負の自己資本）は拒否理由にはなりません。
func (v *Validator) Validate(row RawRow) (entity.FinancialRecord, []string, error) {
	for _, col := range requiredColumns {
		if val, ok := row.Fields[col]; !ok || strings.TrimSpace(val) == "" {
			return entity.FinancialRecord{}, nil, fmt.Errorf("missing field: %s", col)
		}
	}

	company := strings.TrimSpace(row.Fields["company"])
	if _, ok := v.roster[company]; !ok {
		return entity.FinancialRecord{}, nil, fmt.Errorf("unrecognized company: %s", company)
	}

	year, err := parseAmount(row.Fields["fiscal_year"])
	if err != nil {
		return entity.FinancialRecord{}, nil, fmt.Errorf("invalid type for field fiscal_year: %v", err)
	}
	if year < int64(v.minYear) || year > int64(v.maxYear) {
		return entity.FinancialRecord{}, nil,
			fmt.Errorf("fiscal_year %d out of supported range %d-%d", year, v.minYear, v.maxYear)
	}

	amounts := make(map[string]int64, 4)
	for _, col := range []string{"revenue", "net_income", "total_assets", "total_equity"} {
		n, err := parseAmount(row.Fields[col])
		if err != nil {
			return entity.FinancialRecord{}, nil, fmt.Errorf("invalid type for field %s: %v", col, err)
		}
		amounts[col] = n
	}

	if amounts["revenue"] < 0 {
		return entity.FinancialRecord{}, nil, fmt.Errorf("revenue must be non-negative, got %d", amounts["revenue"])
	}
	if amounts["total_assets"] < 0 {
		return entity.FinancialRecord{}, nil, fmt.Errorf("total_assets must be non-negative, got %d", amounts["total_assets"])
	}

	rec := entity.FinancialRecord{
		Company:     company,
		FiscalYear:  int(year),
		Revenue:     amounts["revenue"],
		NetIncome:   amounts["net_income"],
		TotalAssets: amounts["total_assets"],
		TotalEquity: amounts["total_equity"],
	}

	var warnings []string
	if rec.Revenue > 0 && rec.NetIncome > rec.Revenue {
		warnings = append(warnings, fmt.Sprintf("net_income exceeds revenue for %s %d (possible outlier)", rec.Company, rec.FiscalYear))
	}
	if rec.TotalEquity < 0 {
		warnings = append(warnings, fmt.Sprintf("negative total_equity for %s %d", rec.Company, rec.FiscalYear))
	}

	return rec, warnings, nil
}

// parseAmount はCSV上の数値表現を整数に変換します。
// 桁区切りカンマ（"125,000,000"）と浮動小数表記（"125000000.0"）を受け付けます。
func parseAmount(raw string) (int64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %q to integer", raw)
	}
	return int64(f), nil
}
