// Package handler はassistantフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"finqa_backend/internal/api"
	"finqa_backend/internal/feature/assistant/transport/http/dto"
	"finqa_backend/internal/feature/assistant/usecase"
)

// AssistantUsecase は質問応答ユースケースのインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type AssistantUsecase interface {
	Answer(ctx context.Context, question string) (string, error)
}

// AssistantHandler は自然言語の質問リクエストを処理します。
type AssistantHandler struct {
	uc AssistantUsecase
}

// NewAssistantHandler は新しい AssistantHandler を作成します。
func NewAssistantHandler(uc AssistantUsecase) *AssistantHandler {
	return &AssistantHandler{uc: uc}
}

// Ask は質問を受け取り、アシスタントの回答をJSONで返します。
//
// エンドポイント例:
// POST /ask {"question": "What was Alpha Corp's revenue in 2022?"}
func (h *AssistantHandler) Ask(c *gin.Context) {
	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "question is required"})
		return
	}

	answer, err := h.uc.Answer(c.Request.Context(), req.Question)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmptyQuestion):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "question must not be empty"})
		case errors.Is(err, usecase.ErrAssistantUnavailable):
			// 内部の詳細はログに残し、利用者には短いメッセージのみ返す
			c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "the assistant is currently unavailable, please try again later"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to answer the question"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.AskResponse{Answer: answer})
}
