package usecase

import (
	"fmt"
	"strings"

	finusecase "finqa_backend/internal/feature/financials/usecase"
)

// BuildSystemPrompt はストアの現在の内容を埋め込んだシステムプロンプトを生成します。
// スキーマ情報は静的な定数ではなく実データから導出されるため、
// 再取り込み後も常に正しい企業・年度の一覧をLLMへ提示できます。
func BuildSystemPrompt(summary finusecase.DataSummary) string {
	schema := schemaDescription(summary)
	return fmt.Sprintf(`You are a Senior Financial Analyst AI assistant. Your job is to answer questions about company financials using ONLY the data in the database.

CRITICAL RULES:
1. NEVER make up or hallucinate financial numbers
2. ALWAYS use the provided tools to get data
3. If data is not available, say so clearly
4. Show source numbers when answering questions
5. Format currency with dollar signs and commas (e.g., $125,000,000)

%s

When answering questions:
1. First understand what data you need
2. Use the appropriate tool to retrieve the data
3. If calculations are needed, use the calculation tools
4. Provide a clear answer with supporting numbers`, schema)
}

// FallbackSystemPrompt はストアのメタデータが取得できない場合のプロンプトです。
const FallbackSystemPrompt = `You are a Senior Financial Analyst AI assistant. Answer questions about company financials using ONLY the provided tools. Never make up numbers. The database may not be initialized; use the get_available_data tool to explore what is present.`

func schemaDescription(s finusecase.DataSummary) string {
	years := make([]string, 0, len(s.Years))
	for _, y := range s.Years {
		years = append(years, fmt.Sprintf("%d", y))
	}
	yearRange := "none"
	if len(s.Years) > 0 {
		yearRange = fmt.Sprintf("%d-%d", s.Years[0], s.Years[len(s.Years)-1])
	}

	return fmt.Sprintf(`DATABASE SCHEMA:
================

Table: financials
-----------------
Contains financial data for %d companies across fiscal years %s.

Columns:
- company (TEXT): Company name. Available: %s
- fiscal_year (INTEGER): Fiscal year
- revenue (INTEGER): Total revenue in dollars
- net_income (INTEGER): Net income in dollars (can be negative for losses)
- total_assets (INTEGER): Total assets in dollars
- total_equity (INTEGER): Total equity in dollars

Available Years: %s
Available Metrics: %s
Total Records: %d

IMPORTANT: Always use exact company names as listed above.`,
		len(s.Companies), yearRange,
		strings.Join(s.Companies, ", "),
		strings.Join(years, ", "),
		strings.Join(s.Metrics, ", "),
		s.RecordCount)
}
