package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"finqa_backend/internal/feature/financials/domain"
	"finqa_backend/internal/feature/financials/domain/entity"
	"finqa_backend/internal/feature/financials/transport/handler"
	finusecase "finqa_backend/internal/feature/financials/usecase"
)

// mockFinancialsUsecase はFinancialsUsecaseインターフェースのモック実装です。
type mockFinancialsUsecase struct {
	LookupFunc           func(ctx context.Context, company string, year int) (entity.FinancialRecord, error)
	HistoryFunc          func(ctx context.Context, company string) ([]entity.FinancialRecord, error)
	CompareCompaniesFunc func(ctx context.Context, companies []string, metric string, year int) (finusecase.Ranking, error)
	AvailableDataFunc    func(ctx context.Context) (finusecase.DataSummary, error)
}

func (m *mockFinancialsUsecase) Lookup(ctx context.Context, company string, year int) (entity.FinancialRecord, error) {
	return m.LookupFunc(ctx, company, year)
}

func (m *mockFinancialsUsecase) History(ctx context.Context, company string) ([]entity.FinancialRecord, error) {
	return m.HistoryFunc(ctx, company)
}

func (m *mockFinancialsUsecase) CompareCompanies(ctx context.Context, companies []string, metric string, year int) (finusecase.Ranking, error) {
	return m.CompareCompaniesFunc(ctx, companies, metric, year)
}

func (m *mockFinancialsUsecase) AvailableData(ctx context.Context) (finusecase.DataSummary, error) {
	return m.AvailableDataFunc(ctx)
}

func newTestRouter(mockUC *mockFinancialsUsecase) *gin.Engine {
	h := handler.NewFinancialsHandler(mockUC)
	router := gin.New()
	router.GET("/records/:company", h.GetRecords)
	router.GET("/rank", h.Rank)
	router.GET("/metadata", h.Metadata)
	return router
}

func TestFinancialsHandler_GetRecords(t *testing.T) {
	gin.SetMode(gin.TestMode)

	record := entity.FinancialRecord{
		Company: "Alpha Corp", FiscalYear: 2022,
		Revenue: 168_000_000, NetIncome: 23_500_000,
		TotalAssets: 251_000_000, TotalEquity: 120_000_000,
	}

	tests := []struct {
		name           string
		url            string
		mockLookup     func(ctx context.Context, company string, year int) (entity.FinancialRecord, error)
		mockHistory    func(ctx context.Context, company string) ([]entity.FinancialRecord, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: single year lookup",
			url:  "/records/Alpha%20Corp?year=2022",
			mockLookup: func(ctx context.Context, company string, year int) (entity.FinancialRecord, error) {
				assert.Equal(t, "Alpha Corp", company)
				assert.Equal(t, 2022, year)
				return record, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"company":"Alpha Corp","fiscal_year":2022,"revenue":168000000,"net_income":23500000,"total_assets":251000000,"total_equity":120000000}`,
		},
		{
			name: "success: all years without year parameter",
			url:  "/records/Alpha%20Corp",
			mockHistory: func(ctx context.Context, company string) ([]entity.FinancialRecord, error) {
				assert.Equal(t, "Alpha Corp", company)
				return []entity.FinancialRecord{record}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[{"company":"Alpha Corp","fiscal_year":2022,"revenue":168000000,"net_income":23500000,"total_assets":251000000,"total_equity":120000000}]`,
		},
		{
			name: "success: empty history returns empty array",
			url:  "/records/Alpha%20Corp",
			mockHistory: func(ctx context.Context, company string) ([]entity.FinancialRecord, error) {
				return nil, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name:           "error: non-integer year",
			url:            "/records/Alpha%20Corp?year=abc",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"year must be an integer"}`,
		},
		{
			name: "error: record not found maps to 404",
			url:  "/records/Alpha%20Corp?year=1999",
			mockLookup: func(ctx context.Context, company string, year int) (entity.FinancialRecord, error) {
				return entity.FinancialRecord{}, domain.ErrRecordNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"financial record not found"}`,
		},
		{
			name: "error: unknown company maps to 404",
			url:  "/records/Nobody%20Inc",
			mockHistory: func(ctx context.Context, company string) ([]entity.FinancialRecord, error) {
				return nil, domain.ErrUnknownCompany
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"unknown company"}`,
		},
		{
			name: "error: store failure maps to 500",
			url:  "/records/Alpha%20Corp",
			mockHistory: func(ctx context.Context, company string) ([]entity.FinancialRecord, error) {
				return nil, domain.ErrStoreUnavailable
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"financial store unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockFinancialsUsecase{
				LookupFunc:  tt.mockLookup,
				HistoryFunc: tt.mockHistory,
			}
			router := newTestRouter(mockUC)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, tt.url, nil)

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestFinancialsHandler_Rank(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		url            string
		mockCompare    func(ctx context.Context, companies []string, metric string, year int) (finusecase.Ranking, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: ranking with positions",
			url:  "/rank?metric=net_income&year=2023",
			mockCompare: func(ctx context.Context, companies []string, metric string, year int) (finusecase.Ranking, error) {
				assert.Nil(t, companies, "rank endpoint should always rank all companies")
				assert.Equal(t, "net_income", metric)
				assert.Equal(t, 2023, year)
				return finusecase.Ranking{
					Metric: entity.MetricNetIncome,
					Year:   2023,
					Entries: []entity.CompanyValue{
						{Company: "Epsilon Holdings", Value: 36_400_000},
						{Company: "Alpha Corp", Value: 26_600_000},
					},
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[{"rank":1,"company":"Epsilon Holdings","value":36400000},{"rank":2,"company":"Alpha Corp","value":26600000}]`,
		},
		{
			name: "success: metric defaults to revenue",
			url:  "/rank?year=2023",
			mockCompare: func(ctx context.Context, companies []string, metric string, year int) (finusecase.Ranking, error) {
				assert.Equal(t, "revenue", metric)
				return finusecase.Ranking{Metric: entity.MetricRevenue, Year: 2023}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name:           "error: missing year",
			url:            "/rank?metric=revenue",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"year must be an integer"}`,
		},
		{
			name: "error: unknown metric maps to 400",
			url:  "/rank?metric=ebitda&year=2023",
			mockCompare: func(ctx context.Context, companies []string, metric string, year int) (finusecase.Ranking, error) {
				return finusecase.Ranking{}, domain.ErrUnknownMetric
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"unknown metric"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockFinancialsUsecase{CompareCompaniesFunc: tt.mockCompare}
			router := newTestRouter(mockUC)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, tt.url, nil)

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestFinancialsHandler_Metadata(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockUC := &mockFinancialsUsecase{
		AvailableDataFunc: func(ctx context.Context) (finusecase.DataSummary, error) {
			return finusecase.DataSummary{
				Companies:   []string{"Alpha Corp", "Beta Inc"},
				Years:       []int{2019, 2020},
				Metrics:     []string{"revenue", "net_income", "total_assets", "total_equity"},
				RecordCount: 4,
			}, nil
		},
	}
	router := newTestRouter(mockUC)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metadata", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"companies":["Alpha Corp","Beta Inc"],"years":[2019,2020],"metrics":["revenue","net_income","total_assets","total_equity"],"record_count":4}`, w.Body.String())
}
