// Package usecase implements the business logic for the financials feature.
package usecase

import (
	"context"

	"finqa_backend/internal/feature/financials/domain/entity"
)

// FinancialRepository は財務レコードの永続化層のインターフェイスです。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type FinancialRepository interface {
	// Get は (company, fiscal_year) キーで1件取得します。該当なしは domain.ErrRecordNotFound。
	Get(ctx context.Context, company string, year int) (entity.FinancialRecord, error)
	// FindByCompany は指定企業の全レコードを年度昇順で返します。0件は正常です。
	FindByCompany(ctx context.Context, company string) ([]entity.FinancialRecord, error)
	// ListCompanies は格納済みの企業名をアルファベット順で返します。
	ListCompanies(ctx context.Context) ([]string, error)
	// ListYears は格納済みの会計年度を昇順で返します。
	ListYears(ctx context.Context) ([]int, error)
	// Rank は指定年度のメトリクス値を降順（同値は企業名昇順）で返します。
	Rank(ctx context.Context, metric entity.Metric, year int) ([]entity.CompanyValue, error)
	// RawSelect は検証済みの読み取り専用SQLを実行します。
	RawSelect(ctx context.Context, query string) ([]map[string]any, error)
	// UpsertBatch はバッチ全体を1トランザクションで挿入または更新します。
	UpsertBatch(ctx context.Context, records []entity.FinancialRecord) error
	// Count は格納済みレコード数を返します。
	Count(ctx context.Context) (int64, error)
}
