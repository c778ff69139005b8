// Package handler はfinancialsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"finqa_backend/internal/api"
	"finqa_backend/internal/feature/financials/domain"
	"finqa_backend/internal/feature/financials/domain/entity"
	"finqa_backend/internal/feature/financials/transport/http/dto"
	finusecase "finqa_backend/internal/feature/financials/usecase"
)

// FinancialsUsecase は財務データ操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type FinancialsUsecase interface {
	Lookup(ctx context.Context, company string, year int) (entity.FinancialRecord, error)
	History(ctx context.Context, company string) ([]entity.FinancialRecord, error)
	CompareCompanies(ctx context.Context, companies []string, metric string, year int) (finusecase.Ranking, error)
	AvailableData(ctx context.Context) (finusecase.DataSummary, error)
}

// FinancialsHandler は財務データのHTTPリクエストを処理します。
type FinancialsHandler struct {
	uc FinancialsUsecase
}

// NewFinancialsHandler は指定されたusecaseでFinancialsHandlerの新しいインスタンスを生成します。
func NewFinancialsHandler(uc FinancialsUsecase) *FinancialsHandler {
	return &FinancialsHandler{uc: uc}
}

// GetRecords は企業の財務レコードをJSONで返します。
//
// エンドポイント例:
// GET /records/Alpha%20Corp          → 全年度
// GET /records/Alpha%20Corp?year=2022 → 1年度のみ
func (h *FinancialsHandler) GetRecords(c *gin.Context) {
	company := c.Param("company")

	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "year must be an integer"})
			return
		}
		rec, err := h.uc.Lookup(c.Request.Context(), company, year)
		if err != nil {
			status := statusForError(err)
			c.JSON(status, api.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, toRecordResponse(rec))
		return
	}

	recs, err := h.uc.History(c.Request.Context(), company)
	if err != nil {
		c.JSON(statusForError(err), api.ErrorResponse{Error: err.Error()})
		return
	}
	out := make([]dto.RecordResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, toRecordResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

// Rank はメトリクスによる企業ランキングをJSONで返します。
//
// エンドポイント例:
// GET /rank?metric=revenue&year=2023
func (h *FinancialsHandler) Rank(c *gin.Context) {
	metric := c.DefaultQuery("metric", "revenue")
	yearStr := c.Query("year")
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "year must be an integer"})
		return
	}

	ranking, err := h.uc.CompareCompanies(c.Request.Context(), nil, metric, year)
	if err != nil {
		c.JSON(statusForError(err), api.ErrorResponse{Error: err.Error()})
		return
	}
	out := make([]dto.RankEntry, 0, len(ranking.Entries))
	for i, e := range ranking.Entries {
		out = append(out, dto.RankEntry{Rank: i + 1, Company: e.Company, Value: e.Value})
	}
	c.JSON(http.StatusOK, out)
}

// Metadata はストアの現在の内容（企業・年度・メトリクス・件数）を返します。
func (h *FinancialsHandler) Metadata(c *gin.Context) {
	s, err := h.uc.AvailableData(c.Request.Context())
	if err != nil {
		c.JSON(statusForError(err), api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.MetadataResponse{
		Companies:   s.Companies,
		Years:       s.Years,
		Metrics:     s.Metrics,
		RecordCount: s.RecordCount,
	})
}

func toRecordResponse(r entity.FinancialRecord) dto.RecordResponse {
	return dto.RecordResponse{
		Company:     r.Company,
		FiscalYear:  r.FiscalYear,
		Revenue:     r.Revenue,
		NetIncome:   r.NetIncome,
		TotalAssets: r.TotalAssets,
		TotalEquity: r.TotalEquity,
	}
}

// statusForError はドメインエラーをHTTPステータスコードへ変換します。
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound), errors.Is(err, domain.ErrUnknownCompany):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownMetric), errors.Is(err, domain.ErrInsufficientData),
		errors.Is(err, domain.ErrZeroBase), errors.Is(err, domain.ErrUnsafeQuery):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
