package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"google.golang.org/genai"

	"finqa_backend/internal/feature/financials/domain/entity"
	finusecase "finqa_backend/internal/feature/financials/usecase"
)

// FinancialTools は財務データへの照会・計算操作のインターフェイスです。
// Following Go convention: interfaces are defined by the consumer (assistant), not the provider (financials usecase).
type FinancialTools interface {
	Lookup(ctx context.Context, company string, year int) (entity.FinancialRecord, error)
	History(ctx context.Context, company string) ([]entity.FinancialRecord, error)
	FilteredQuery(ctx context.Context, query string) ([]map[string]any, error)
	GrowthRate(ctx context.Context, company, metric string, startYear, endYear int) (finusecase.GrowthResult, error)
	NetMargin(ctx context.Context, company string, year int) (finusecase.MarginResult, error)
	CompareCompanies(ctx context.Context, companies []string, metric string, year int) (finusecase.Ranking, error)
	AvailableData(ctx context.Context) (finusecase.DataSummary, error)
	MarginTrend(ctx context.Context, companyA, companyB string, startYear, endYear int) (finusecase.MarginTrendResult, error)
}

// NewToolset はLLMへ公開する7つのツールを組み立てます。
// 各ツールはストアを変更せず、結果を自然言語の文字列として返します。
func NewToolset(fin FinancialTools) []Function {
	return []Function{
		newSQLQueryTool(fin),
		newCompanyFinancialsTool(fin),
		newGrowthRateTool(fin),
		newNetMarginTool(fin),
		newCompareCompaniesTool(fin),
		newAvailableDataTool(fin),
		newMarginTrendTool(fin),
	}
}

func newSQLQueryTool(fin FinancialTools) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "execute_sql_query",
			Description: "Execute a read-only SQL SELECT query against the financial database. " +
				"Table: financials. Columns: company (TEXT), fiscal_year (INTEGER), revenue (INTEGER), " +
				"net_income (INTEGER), total_assets (INTEGER), total_equity (INTEGER). " +
				"Example: SELECT revenue FROM financials WHERE company = 'Alpha Corp' AND fiscal_year = 2022",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"sql_query": {Type: genai.TypeString, Description: "A valid SQL SELECT query. Only SELECT statements are allowed."},
				},
				Required: []string{"sql_query"},
			},
		},
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			query, err := stringArg(args, "sql_query")
			if err != nil {
				return "", err
			}
			rows, err := fin.FilteredQuery(ctx, query)
			if err != nil {
				return "", err
			}
			if len(rows) == 0 {
				return "No results found for this query.", nil
			}
			return formatRows(rows), nil
		},
	}
}

func newCompanyFinancialsTool(fin FinancialTools) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "get_company_financials",
			Description: "Get financial data for a specific company, either for one fiscal year " +
				"or for all available years.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"company": {Type: genai.TypeString, Description: "Company name, e.g. 'Alpha Corp'"},
					"year":    {Type: genai.TypeInteger, Description: "Optional fiscal year. Omit for all years."},
				},
				Required: []string{"company"},
			},
		},
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			company, err := stringArg(args, "company")
			if err != nil {
				return "", err
			}
			if year, ok, err := optionalIntArg(args, "year"); err != nil {
				return "", err
			} else if ok {
				rec, err := fin.Lookup(ctx, company, year)
				if err != nil {
					return "", err
				}
				return formatRecord(rec), nil
			}
			recs, err := fin.History(ctx, company)
			if err != nil {
				return "", err
			}
			if len(recs) == 0 {
				return fmt.Sprintf("No financial data found for %s.", company), nil
			}
			lines := make([]string, 0, len(recs))
			for _, r := range recs {
				lines = append(lines, formatRecord(r))
			}
			return strings.Join(lines, "\n"), nil
		},
	}
}

func newGrowthRateTool(fin FinancialTools) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "calculate_growth_rate",
			Description: "Calculate the growth rate of a financial metric between two years. " +
				"Growth rate = ((end_value - start_value) / start_value) * 100.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"company":    {Type: genai.TypeString, Description: "Company name, e.g. 'Alpha Corp'"},
					"metric":     {Type: genai.TypeString, Description: "One of: revenue, net_income, total_assets, total_equity"},
					"start_year": {Type: genai.TypeInteger, Description: "Starting fiscal year, e.g. 2019"},
					"end_year":   {Type: genai.TypeInteger, Description: "Ending fiscal year, e.g. 2023"},
				},
				Required: []string{"company", "metric", "start_year", "end_year"},
			},
		},
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			company, err := stringArg(args, "company")
			if err != nil {
				return "", err
			}
			metric, err := stringArg(args, "metric")
			if err != nil {
				return "", err
			}
			startYear, err := intArg(args, "start_year")
			if err != nil {
				return "", err
			}
			endYear, err := intArg(args, "end_year")
			if err != nil {
				return "", err
			}
			g, err := fin.GrowthRate(ctx, company, metric, startYear, endYear)
			if err != nil {
				return "", err
			}
			direction := "grew"
			kind := "growth"
			switch {
			case g.Rate < 0:
				direction = "declined"
				kind = "decline"
			case g.Rate == 0:
				direction = "remained unchanged"
			}
			return fmt.Sprintf("%s's %s %s from %s (%d) to %s (%d), a %s of %s",
				g.Company, g.Metric.Label(), direction,
				formatMoney(g.StartValue), g.StartYear,
				formatMoney(g.EndValue), g.EndYear,
				kind, formatPercent(absFloat(g.Rate))), nil
		},
	}
}

func newNetMarginTool(fin FinancialTools) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "calculate_net_margin",
			Description: "Calculate the net profit margin (net_income / revenue * 100) for a company " +
				"in a specific fiscal year.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"company": {Type: genai.TypeString, Description: "Company name, e.g. 'Alpha Corp'"},
					"year":    {Type: genai.TypeInteger, Description: "Fiscal year, e.g. 2022"},
				},
				Required: []string{"company", "year"},
			},
		},
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			company, err := stringArg(args, "company")
			if err != nil {
				return "", err
			}
			year, err := intArg(args, "year")
			if err != nil {
				return "", err
			}
			m, err := fin.NetMargin(ctx, company, year)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s's net margin in %d was %s (Net Income: %s, Revenue: %s)",
				m.Company, m.Year, formatPercent(m.Margin),
				formatMoney(m.NetIncome), formatMoney(m.Revenue)), nil
		},
	}
}

func newCompareCompaniesTool(fin FinancialTools) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "compare_companies",
			Description: "Compare and rank companies by a financial metric for a specific year, " +
				"from highest to lowest.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"companies": {Type: genai.TypeString, Description: "Comma-separated company names, or 'all' for every company"},
					"metric":    {Type: genai.TypeString, Description: "One of: revenue, net_income, total_assets, total_equity"},
					"year":      {Type: genai.TypeInteger, Description: "Fiscal year, e.g. 2023"},
				},
				Required: []string{"companies", "metric", "year"},
			},
		},
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			companiesArg, err := stringArg(args, "companies")
			if err != nil {
				return "", err
			}
			metric, err := stringArg(args, "metric")
			if err != nil {
				return "", err
			}
			year, err := intArg(args, "year")
			if err != nil {
				return "", err
			}
			ranking, err := fin.CompareCompanies(ctx, splitCompanies(companiesArg), metric, year)
			if err != nil {
				return "", err
			}
			if len(ranking.Entries) == 0 {
				return fmt.Sprintf("No data found for year %d.", year), nil
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Comparison of %s in %d (highest to lowest):\n", ranking.Metric.Label(), ranking.Year)
			for i, e := range ranking.Entries {
				fmt.Fprintf(&b, "  %d. %s: %s\n", i+1, e.Company, formatMoney(e.Value))
			}
			if len(ranking.Entries) > 1 {
				highest, _ := ranking.Highest()
				lowest, _ := ranking.Lowest()
				fmt.Fprintf(&b, "\nHighest: %s (%s)\n", highest.Company, formatMoney(highest.Value))
				fmt.Fprintf(&b, "Lowest: %s (%s)", lowest.Company, formatMoney(lowest.Value))
			}
			return b.String(), nil
		},
	}
}

func newAvailableDataTool(fin FinancialTools) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "get_available_data",
			Description: "Get information about what data is available: companies, fiscal years, " +
				"metrics and the total record count. Use this before querying when unsure.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{},
			},
		},
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			s, err := fin.AvailableData(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf(
				"Available Data Summary:\n\nCompanies (%d):\n  %s\n\nYears (%d):\n  %s\n\nMetrics:\n  %s\n\nTotal Records: %d",
				len(s.Companies), strings.Join(s.Companies, ", "),
				len(s.Years), joinInts(s.Years),
				strings.Join(s.Metrics, ", "),
				s.RecordCount), nil
		},
	}
}

func newMarginTrendTool(fin FinancialTools) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "compare_margin_trend",
			Description: "Compare the net profit margins of two companies across an inclusive range " +
				"of fiscal years, including the net change in percentage points for each.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"company_a":  {Type: genai.TypeString, Description: "First company name"},
					"company_b":  {Type: genai.TypeString, Description: "Second company name"},
					"start_year": {Type: genai.TypeInteger, Description: "Starting fiscal year, e.g. 2020"},
					"end_year":   {Type: genai.TypeInteger, Description: "Ending fiscal year, e.g. 2023"},
				},
				Required: []string{"company_a", "company_b", "start_year", "end_year"},
			},
		},
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			companyA, err := stringArg(args, "company_a")
			if err != nil {
				return "", err
			}
			companyB, err := stringArg(args, "company_b")
			if err != nil {
				return "", err
			}
			startYear, err := intArg(args, "start_year")
			if err != nil {
				return "", err
			}
			endYear, err := intArg(args, "end_year")
			if err != nil {
				return "", err
			}
			trend, err := fin.MarginTrend(ctx, companyA, companyB, startYear, endYear)
			if err != nil {
				return "", err
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Net Margin Comparison (%d-%d):\n", trend.StartYear, trend.EndYear)
			for _, s := range trend.Series {
				fmt.Fprintf(&b, "\n%s:\n", s.Company)
				for _, p := range s.Points {
					fmt.Fprintf(&b, "  %d: %s\n", p.Year, formatPercent(p.Margin))
				}
				if len(s.MissingYears) > 0 {
					fmt.Fprintf(&b, "  (no data for: %s)\n", joinInts(s.MissingYears))
				}
				if s.HasChange {
					fmt.Fprintf(&b, "  Net change: %+.1f percentage points\n", s.NetChange)
				}
			}
			return b.String(), nil
		},
	}
}

// --- argument helpers ---

func stringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", fmt.Errorf("missing argument %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", name, v)
	}
	return s, nil
}

// intArg は整数引数を取り出します。JSON経由の数値はfloat64で届くため両方を受け付けます。
func intArg(args map[string]any, name string) (int, error) {
	n, ok, err := optionalIntArg(args, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("missing argument %q", name)
	}
	return n, nil
}

func optionalIntArg(args map[string]any, name string) (int, bool, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		return int(n), true, nil
	case int:
		return n, true, nil
	case int64:
		return int(n), true, nil
	case string:
		if strings.TrimSpace(n) == "" {
			return 0, false, nil
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false, fmt.Errorf("argument %q must be an integer, got %q", name, n)
		}
		return parsed, true, nil
	default:
		return 0, false, fmt.Errorf("argument %q must be an integer, got %T", name, v)
	}
}

func splitCompanies(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// --- formatting helpers ---

// formatMoney は整数の金額を $1,234,567 形式で返します。負数は -$1,234,567 です。
func formatMoney(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + "$" + b.String()
}

// formatPercent は百分率を小数第1位で丸めて返します。
func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func joinInts(ns []int) string {
	parts := make([]string, 0, len(ns))
	for _, n := range ns {
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, ", ")
}

func formatRecord(r entity.FinancialRecord) string {
	return fmt.Sprintf("%s (%d): Revenue %s, Net Income %s, Total Assets %s, Total Equity %s",
		r.Company, r.FiscalYear,
		formatMoney(r.Revenue), formatMoney(r.NetIncome),
		formatMoney(r.TotalAssets), formatMoney(r.TotalEquity))
}

// formatRows はSQL結果をLLMが読み取りやすいkey=valueの行形式で返します。
func formatRows(rows []map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d row(s):\n", len(rows))
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, row[k]))
		}
		fmt.Fprintf(&b, "  %s\n", strings.Join(parts, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}
