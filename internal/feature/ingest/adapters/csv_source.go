// Package adapters は取り込みパイプラインのデータソース実装を提供します。
package adapters

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"finqa_backend/internal/feature/ingest/usecase"
)

type csvSource struct {
	path string
}

var _ usecase.RowSource = (*csvSource)(nil)

// NewCSVSource はカンマ区切りファイルを読み込む RowSource を作成します。
// 先頭行は固定ヘッダ（company, fiscal_year, revenue, net_income, total_assets, total_equity）です。
func NewCSVSource(path string) *csvSource {
	return &csvSource{path: path}
}

func (s *csvSource) Name() string {
	return s.path
}

// Rows はCSVの全行をヘッダでマップ化して返します。
// 完全な空行はスキップします。行番号はヘッダを1行目として数えます。
func (s *csvSource) Rows(ctx context.Context) ([]usecase.RawRow, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // カラム数の検証はValidatorの責務

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var rows []usecase.RawRow
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		line++

		if isEmptyRow(record) {
			continue
		}

		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				fields[col] = record[i]
			}
		}
		rows = append(rows, usecase.RawRow{Line: line, Fields: fields})
	}
	return rows, nil
}

func isEmptyRow(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
