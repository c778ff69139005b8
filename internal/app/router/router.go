package router

import (
	"github.com/gin-gonic/gin"

	assistanthandler "finqa_backend/internal/feature/assistant/transport/handler"
	financialshandler "finqa_backend/internal/feature/financials/transport/handler"
	platformhandler "finqa_backend/internal/platform/http/handler"
)

// NewRouter はAPIの全ルートを組み立てます。
// 認証ミドルウェアは意図的に持ちません（このサービスの対象外）。
func NewRouter(financials *financialshandler.FinancialsHandler, assistant *assistanthandler.AssistantHandler) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", platformhandler.Health)

	// 財務データの直接照会
	r.GET("/records/:company", financials.GetRecords)
	r.GET("/rank", financials.Rank)
	r.GET("/metadata", financials.Metadata)

	// 自然言語の質問応答
	r.POST("/ask", assistant.Ask)

	return r
}
