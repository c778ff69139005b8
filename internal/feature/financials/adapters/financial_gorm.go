// Package adapters は財務レコードの永続化アダプタを提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"finqa_backend/internal/feature/financials/domain"
	"finqa_backend/internal/feature/financials/domain/entity"
	"finqa_backend/internal/feature/financials/usecase"
)

type financialGorm struct {
	db *gorm.DB
}

var _ usecase.FinancialRepository = (*financialGorm)(nil)

// NewFinancialRepository は新しいgormベースの財務リポジトリを作成します。
func NewFinancialRepository(db *gorm.DB) *financialGorm {
	return &financialGorm{db: db}
}

// FinancialModel は financials テーブルのgormモデルです。
// (company, fiscal_year) の複合ユニークインデックスが重複挿入を防ぎます。
type FinancialModel struct {
	ID          uint   `gorm:"primaryKey"`
	Company     string `gorm:"size:100;not null;index;uniqueIndex:fin_company_year,priority:1"`
	FiscalYear  int    `gorm:"not null;index;uniqueIndex:fin_company_year,priority:2"`
	Revenue     int64  `gorm:"not null"`
	NetIncome   int64  `gorm:"not null"`
	TotalAssets int64  `gorm:"not null"`
	TotalEquity int64  `gorm:"not null"`
}

func (FinancialModel) TableName() string {
	return "financials"
}

func toModel(e entity.FinancialRecord) FinancialModel {
	return FinancialModel{
		Company:     e.Company,
		FiscalYear:  e.FiscalYear,
		Revenue:     e.Revenue,
		NetIncome:   e.NetIncome,
		TotalAssets: e.TotalAssets,
		TotalEquity: e.TotalEquity,
	}
}

func toEntity(m FinancialModel) entity.FinancialRecord {
	return entity.FinancialRecord{
		Company:     m.Company,
		FiscalYear:  m.FiscalYear,
		Revenue:     m.Revenue,
		NetIncome:   m.NetIncome,
		TotalAssets: m.TotalAssets,
		TotalEquity: m.TotalEquity,
	}
}

// UpsertBatch はバッチ全体を1トランザクションで書き込みます。
// (company, fiscal_year) が一致する既存行は数値カラムのみ上書きされます。
// 途中でエラーが発生した場合はバッチ全体がロールバックされます。
func (r *financialGorm) UpsertBatch(ctx context.Context, records []entity.FinancialRecord) error {
	if len(records) == 0 {
		return nil
	}
	ms := make([]FinancialModel, 0, len(records))
	for _, e := range records {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company"}, {Name: "fiscal_year"}},
			DoUpdates: clause.AssignmentColumns([]string{"revenue", "net_income", "total_assets", "total_equity"}),
		}).Create(&ms).Error
	})
}

func (r *financialGorm) Get(ctx context.Context, company string, year int) (entity.FinancialRecord, error) {
	var m FinancialModel
	err := r.db.WithContext(ctx).
		Where("company = ? AND fiscal_year = ?", company, year).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.FinancialRecord{}, domain.ErrRecordNotFound
		}
		return entity.FinancialRecord{}, fmt.Errorf("get financial record: %w", err)
	}
	return toEntity(m), nil
}

func (r *financialGorm) FindByCompany(ctx context.Context, company string) ([]entity.FinancialRecord, error) {
	var rows []FinancialModel
	err := r.db.WithContext(ctx).
		Where("company = ?", company).
		Order("fiscal_year ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find records for company: %w", err)
	}
	out := make([]entity.FinancialRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

func (r *financialGorm) ListCompanies(ctx context.Context) ([]string, error) {
	var companies []string
	err := r.db.WithContext(ctx).
		Model(&FinancialModel{}).
		Distinct("company").
		Order("company ASC").
		Pluck("company", &companies).Error
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

func (r *financialGorm) ListYears(ctx context.Context) ([]int, error) {
	var years []int
	err := r.db.WithContext(ctx).
		Model(&FinancialModel{}).
		Distinct("fiscal_year").
		Order("fiscal_year ASC").
		Pluck("fiscal_year", &years).Error
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	return years, nil
}

// Rank は指定年度のメトリクス値を降順で返します。同値は企業名の昇順です。
// メトリクスはentity.Metricのホワイトリストで検証済みのため、カラム名として
// 直接埋め込みます。値はすべてプレースホルダで束縛します。
func (r *financialGorm) Rank(ctx context.Context, metric entity.Metric, year int) ([]entity.CompanyValue, error) {
	query, args, err := sq.Select("company", string(metric)+" AS value").
		From("financials").
		Where(sq.Eq{"fiscal_year": year}).
		OrderBy(string(metric)+" DESC", "company ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build rank query: %w", err)
	}

	var rows []struct {
		Company string
		Value   int64
	}
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("rank query: %w", err)
	}
	out := make([]entity.CompanyValue, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.CompanyValue{Company: row.Company, Value: row.Value})
	}
	return out, nil
}

// RawSelect は読み取り専用SQLを実行し、カラム名→値のマップのスライスを返します。
// クエリの安全性検証は呼び出し側（usecase層のガード）の責務です。
func (r *financialGorm) RawSelect(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := r.db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, fmt.Errorf("raw select: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	out := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			// sqliteドライバはTEXTを[]byteで返すことがある
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func (r *financialGorm) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&FinancialModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// Reset はテーブルを作り直してストアを空にします。全件再取り込みの前処理です。
func (r *financialGorm) Reset(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if db.Migrator().HasTable(&FinancialModel{}) {
		if err := db.Migrator().DropTable(&FinancialModel{}); err != nil {
			return fmt.Errorf("drop financials table: %w", err)
		}
	}
	if err := db.AutoMigrate(&FinancialModel{}); err != nil {
		return fmt.Errorf("recreate financials table: %w", err)
	}
	return nil
}
