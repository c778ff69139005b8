package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"finqa_backend/internal/feature/financials/domain"
	"finqa_backend/internal/feature/financials/domain/entity"
)

// GrowthResult は2年度間のメトリクス成長率の計算結果です。
type GrowthResult struct {
	Company    string
	Metric     entity.Metric
	StartYear  int
	EndYear    int
	StartValue int64
	EndValue   int64
	// Rate は ((end - start) / |start|) × 100 で計算された成長率（%）です。
	Rate float64
}

// MarginResult は純利益率の計算結果です。
type MarginResult struct {
	Company   string
	Year      int
	Revenue   int64
	NetIncome int64
	Margin    float64
}

// Ranking は指定年度のメトリクス値による企業ランキングです。
// Entries は値の降順、同値は企業名の昇順で並びます。
type Ranking struct {
	Metric  entity.Metric
	Year    int
	Entries []entity.CompanyValue
}

// Highest はランキングの先頭エントリを返します。
func (r Ranking) Highest() (entity.CompanyValue, bool) {
	if len(r.Entries) == 0 {
		return entity.CompanyValue{}, false
	}
	return r.Entries[0], true
}

// Lowest はランキングの末尾エントリを返します。
func (r Ranking) Lowest() (entity.CompanyValue, bool) {
	if len(r.Entries) == 0 {
		return entity.CompanyValue{}, false
	}
	return r.Entries[len(r.Entries)-1], true
}

// DataSummary はストアの現在の内容から導出されるメタデータです。
// 再取り込み後も常に実データを反映します。
type DataSummary struct {
	Companies   []string
	Years       []int
	Metrics     []string
	RecordCount int64
}

// MarginPoint は1年度分の純利益率です。
type MarginPoint struct {
	Year   int
	Margin float64
}

// MarginSeries は1企業の期間内の純利益率の推移です。
// データが存在しない（または売上高0の）年度は MissingYears に記録され、Pointsからは除外されます。
type MarginSeries struct {
	Company      string
	Points       []MarginPoint
	MissingYears []int
	// NetChange は期間内の最初と最後の利益率の差（パーセントポイント）です。
	// 有効なポイントが2つ未満の場合 HasChange=false になります。
	NetChange float64
	HasChange bool
}

// MarginTrendResult は2社の純利益率推移の比較結果です。
type MarginTrendResult struct {
	StartYear int
	EndYear   int
	Series    []MarginSeries
}

// FinancialsUsecase は財務データに対する照会・計算ツール群を定義します。
// 各操作は純粋関数であり、ストアが変化しない限り同じ引数で同じ結果を返します。
type FinancialsUsecase struct {
	repo FinancialRepository
}

// NewFinancialsUsecase は新しい FinancialsUsecase を作成します。
func NewFinancialsUsecase(repo FinancialRepository) *FinancialsUsecase {
	return &FinancialsUsecase{repo: repo}
}

// Lookup は (company, year) キーで1レコードを取得します。
// 企業名は大文字小文字を区別せず正規化されます。
func (u *FinancialsUsecase) Lookup(ctx context.Context, company string, year int) (entity.FinancialRecord, error) {
	company, err := u.normalizeCompany(ctx, company)
	if err != nil {
		return entity.FinancialRecord{}, err
	}
	rec, err := u.repo.Get(ctx, company, year)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return entity.FinancialRecord{}, fmt.Errorf("%w: no data for %s in %d", domain.ErrRecordNotFound, company, year)
		}
		return entity.FinancialRecord{}, translateStoreError(err)
	}
	return rec, nil
}

// History は指定企業の全レコードを年度昇順で返します。
func (u *FinancialsUsecase) History(ctx context.Context, company string) ([]entity.FinancialRecord, error) {
	company, err := u.normalizeCompany(ctx, company)
	if err != nil {
		return nil, err
	}
	recs, err := u.repo.FindByCompany(ctx, company)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return recs, nil
}

// FilteredQuery は読み取り専用ガードを通過したSQLをストアに対して実行します。
// ガード違反のクエリはストアに到達する前に拒否されます。
func (u *FinancialsUsecase) FilteredQuery(ctx context.Context, query string) ([]map[string]any, error) {
	if err := ValidateReadOnlyQuery(query); err != nil {
		slog.Warn("filtered query rejected", "query", query, "error", err)
		return nil, err
	}
	rows, err := u.repo.RawSelect(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return rows, nil
}

// GrowthRate は2年度間のメトリクス成長率を計算します。
// 計算式: ((end - start) / |start|) × 100
func (u *FinancialsUsecase) GrowthRate(ctx context.Context, company, metric string, startYear, endYear int) (GrowthResult, error) {
	m, ok := entity.ParseMetric(metric)
	if !ok {
		return GrowthResult{}, fmt.Errorf("%w: %q (valid options: %s)",
			domain.ErrUnknownMetric, metric, strings.Join(entity.MetricNames(), ", "))
	}
	if startYear >= endYear {
		return GrowthResult{}, fmt.Errorf("%w: start year %d must be before end year %d",
			domain.ErrInsufficientData, startYear, endYear)
	}
	company, err := u.normalizeCompany(ctx, company)
	if err != nil {
		return GrowthResult{}, err
	}

	start, err := u.recordForGrowth(ctx, company, startYear)
	if err != nil {
		return GrowthResult{}, err
	}
	end, err := u.recordForGrowth(ctx, company, endYear)
	if err != nil {
		return GrowthResult{}, err
	}

	startValue := start.Value(m)
	endValue := end.Value(m)
	if startValue == 0 {
		return GrowthResult{}, fmt.Errorf("%w: %s was $0 in %d, growth rate is undefined",
			domain.ErrZeroBase, m.Label(), startYear)
	}

	rate := float64(endValue-startValue) / math.Abs(float64(startValue)) * 100
	return GrowthResult{
		Company:    company,
		Metric:     m,
		StartYear:  startYear,
		EndYear:    endYear,
		StartValue: startValue,
		EndValue:   endValue,
		Rate:       rate,
	}, nil
}

func (u *FinancialsUsecase) recordForGrowth(ctx context.Context, company string, year int) (entity.FinancialRecord, error) {
	rec, err := u.repo.Get(ctx, company, year)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return entity.FinancialRecord{}, fmt.Errorf("%w: no data for %s in %d", domain.ErrInsufficientData, company, year)
		}
		return entity.FinancialRecord{}, translateStoreError(err)
	}
	return rec, nil
}

// NetMargin は指定企業・年度の純利益率を計算します。
// 計算式: (net_income / revenue) × 100
func (u *FinancialsUsecase) NetMargin(ctx context.Context, company string, year int) (MarginResult, error) {
	rec, err := u.Lookup(ctx, company, year)
	if err != nil {
		return MarginResult{}, err
	}
	margin, ok := rec.NetMargin()
	if !ok {
		return MarginResult{}, fmt.Errorf("%w: %s had $0 revenue in %d, margin is undefined",
			domain.ErrZeroBase, rec.Company, year)
	}
	return MarginResult{
		Company:   rec.Company,
		Year:      year,
		Revenue:   rec.Revenue,
		NetIncome: rec.NetIncome,
		Margin:    margin,
	}, nil
}

// CompareCompanies は指定年度のメトリクス値で企業をランキングします。
// companies が空、または "all" を含む場合は全企業を対象にします。
// 同値の場合は企業名の昇順で安定した順序を保ちます。
func (u *FinancialsUsecase) CompareCompanies(ctx context.Context, companies []string, metric string, year int) (Ranking, error) {
	m, ok := entity.ParseMetric(metric)
	if !ok {
		return Ranking{}, fmt.Errorf("%w: %q (valid options: %s)",
			domain.ErrUnknownMetric, metric, strings.Join(entity.MetricNames(), ", "))
	}

	entries, err := u.repo.Rank(ctx, m, year)
	if err != nil {
		return Ranking{}, translateStoreError(err)
	}

	if !wantsAll(companies) {
		selected := make(map[string]struct{}, len(companies))
		for _, c := range companies {
			normalized, err := u.normalizeCompany(ctx, c)
			if err != nil {
				return Ranking{}, err
			}
			selected[normalized] = struct{}{}
		}
		filtered := make([]entity.CompanyValue, 0, len(selected))
		for _, e := range entries {
			if _, ok := selected[e.Company]; ok {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	return Ranking{Metric: m, Year: year, Entries: entries}, nil
}

func wantsAll(companies []string) bool {
	if len(companies) == 0 {
		return true
	}
	for _, c := range companies {
		if strings.EqualFold(strings.TrimSpace(c), "all") {
			return true
		}
	}
	return false
}

// AvailableData はストアの現在の内容（企業・年度・メトリクス・件数）を返します。
func (u *FinancialsUsecase) AvailableData(ctx context.Context) (DataSummary, error) {
	companies, err := u.repo.ListCompanies(ctx)
	if err != nil {
		return DataSummary{}, translateStoreError(err)
	}
	years, err := u.repo.ListYears(ctx)
	if err != nil {
		return DataSummary{}, translateStoreError(err)
	}
	count, err := u.repo.Count(ctx)
	if err != nil {
		return DataSummary{}, translateStoreError(err)
	}
	return DataSummary{
		Companies:   companies,
		Years:       years,
		Metrics:     entity.MetricNames(),
		RecordCount: count,
	}, nil
}

// MarginTrend は2社の純利益率を指定期間（両端を含む）で比較します。
// データのない年度はその企業の MissingYears に記録され、処理は継続します。
func (u *FinancialsUsecase) MarginTrend(ctx context.Context, companyA, companyB string, startYear, endYear int) (MarginTrendResult, error) {
	if startYear > endYear {
		return MarginTrendResult{}, fmt.Errorf("%w: start year %d must not be after end year %d",
			domain.ErrInsufficientData, startYear, endYear)
	}

	result := MarginTrendResult{StartYear: startYear, EndYear: endYear}
	for _, name := range []string{companyA, companyB} {
		series, err := u.marginSeries(ctx, name, startYear, endYear)
		if err != nil {
			return MarginTrendResult{}, err
		}
		result.Series = append(result.Series, series)
	}
	return result, nil
}

func (u *FinancialsUsecase) marginSeries(ctx context.Context, company string, startYear, endYear int) (MarginSeries, error) {
	company, err := u.normalizeCompany(ctx, company)
	if err != nil {
		return MarginSeries{}, err
	}
	recs, err := u.repo.FindByCompany(ctx, company)
	if err != nil {
		return MarginSeries{}, translateStoreError(err)
	}

	byYear := make(map[int]entity.FinancialRecord, len(recs))
	for _, r := range recs {
		byYear[r.FiscalYear] = r
	}

	series := MarginSeries{Company: company}
	for year := startYear; year <= endYear; year++ {
		rec, ok := byYear[year]
		if !ok {
			series.MissingYears = append(series.MissingYears, year)
			continue
		}
		margin, ok := rec.NetMargin()
		if !ok {
			// 売上高0の年度は利益率が定義できないため欠損扱いにする
			series.MissingYears = append(series.MissingYears, year)
			continue
		}
		series.Points = append(series.Points, MarginPoint{Year: year, Margin: margin})
	}

	if len(series.Points) >= 2 {
		series.NetChange = series.Points[len(series.Points)-1].Margin - series.Points[0].Margin
		series.HasChange = true
	}
	return series, nil
}

// normalizeCompany は企業名を正規化します。完全一致を優先し、
// なければ大文字小文字を無視して照合します。該当がない場合は
// 利用可能な企業名の一覧を含むエラーを返します。
func (u *FinancialsUsecase) normalizeCompany(ctx context.Context, company string) (string, error) {
	company = strings.TrimSpace(company)
	available, err := u.repo.ListCompanies(ctx)
	if err != nil {
		return "", translateStoreError(err)
	}
	for _, c := range available {
		if c == company {
			return c, nil
		}
	}
	for _, c := range available {
		if strings.EqualFold(c, company) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q (available companies: %s)",
		domain.ErrUnknownCompany, company, strings.Join(available, ", "))
}

// translateStoreError はストア層の低レベルエラーをドメインエラーへ変換します。
// ツール境界より下のエラーがそのまま上位層へ伝播しないようにします。
func translateStoreError(err error) error {
	if errors.Is(err, domain.ErrRecordNotFound) || errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
