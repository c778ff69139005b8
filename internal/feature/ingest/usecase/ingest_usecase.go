package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finqa_backend/internal/feature/financials/domain/entity"
)

// RowSource は取り込み元（CSVファイルなど）のインターフェイスです。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type RowSource interface {
	// Name はレポート用のソース識別子（ファイルパスなど）を返します。
	Name() string
	// Rows は全行をファイル上の順序で返します。ソースが読めない場合のみエラーです。
	Rows(ctx context.Context) ([]RawRow, error)
}

// RecordStore は検証済みレコードの書き込み先のインターフェイスです。
type RecordStore interface {
	UpsertBatch(ctx context.Context, records []entity.FinancialRecord) error
	Count(ctx context.Context) (int64, error)
}

// RecordResetter は全件再取り込みの前にストアを空にするインターフェイスです。
type RecordResetter interface {
	Reset(ctx context.Context) error
}

// IngestUsecase はCSV取り込みパイプラインを定義します。
// 全行を検証し、有効なレコードを1回のバッチアップサートでストアへ書き込みます。
// 不正な行はレポートに記録してスキップし、実行自体は中断しません。
type IngestUsecase struct {
	source    RowSource
	store     RecordStore
	validator *Validator
}

// NewIngestUsecase は新しい IngestUsecase を作成します。
func NewIngestUsecase(source RowSource, store RecordStore, validator *Validator) *IngestUsecase {
	return &IngestUsecase{source: source, store: store, validator: validator}
}

// Run はパイプラインを実行し、集計レポートを返します。
// ソースが読めない場合とストアへ書き込めない場合のみ致命的エラーになります。
func (iu *IngestUsecase) Run(ctx context.Context) (*Report, error) {
	report := &Report{Source: iu.source.Name(), StartedAt: time.Now()}

	rows, err := iu.source.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	report.TotalRows = len(rows)
	slog.Info("ingestion started", "source", report.Source, "rows", len(rows))

	// 各行は独立に検証される。行順は他の行の有効性に影響しない。
	// 同一 (company, fiscal_year) はファイル内の後の行が優先される。
	// バッチ内で先に重複を解消しておく。単一のINSERT文が同じ行を
	// 二度更新することをPostgreSQLのON CONFLICTは許さないため。
	valid := make([]entity.FinancialRecord, 0, len(rows))
	index := make(map[string]int, len(rows))
	for _, row := range rows {
		rec, warnings, err := iu.validator.Validate(row)
		if err != nil {
			report.Rejections = append(report.Rejections, RowError{Line: row.Line, Reason: err.Error()})
			slog.Warn("row rejected", "line", row.Line, "reason", err.Error())
			continue
		}
		report.Warnings = append(report.Warnings, warnings...)
		key := fmt.Sprintf("%s|%d", rec.Company, rec.FiscalYear)
		if i, ok := index[key]; ok {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("line %d: duplicate entry for %s %d overrides an earlier row", row.Line, rec.Company, rec.FiscalYear))
			valid[i] = rec
			continue
		}
		index[key] = len(valid)
		valid = append(valid, rec)
	}
	report.ValidCount = len(valid)

	if len(valid) > 0 {
		if err := iu.store.UpsertBatch(ctx, valid); err != nil {
			return nil, fmt.Errorf("write records to store: %w", err)
		}
	} else {
		slog.Warn("no valid records to insert")
	}

	stored, err := iu.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count stored records: %w", err)
	}
	report.Stored = stored
	report.FinishedAt = time.Now()

	slog.Info("ingestion complete",
		"valid", report.ValidCount,
		"rejected", report.RejectedCount(),
		"stored", report.Stored,
	)
	return report, nil
}
