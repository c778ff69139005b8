package handler_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"finqa_backend/internal/feature/assistant/transport/handler"
	"finqa_backend/internal/feature/assistant/usecase"
)

// mockAssistantUsecase はAssistantUsecaseインターフェースのモック実装です。
type mockAssistantUsecase struct {
	AnswerFunc func(ctx context.Context, question string) (string, error)
}

func (m *mockAssistantUsecase) Answer(ctx context.Context, question string) (string, error) {
	return m.AnswerFunc(ctx, question)
}

func TestAssistantHandler_Ask(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		body           string
		mockAnswer     func(ctx context.Context, question string) (string, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: question answered",
			body: `{"question":"What was Beta Inc's net margin in 2020?"}`,
			mockAnswer: func(ctx context.Context, question string) (string, error) {
				assert.Equal(t, "What was Beta Inc's net margin in 2020?", question)
				return "Beta Inc's net margin in 2020 was 9.7%.", nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"answer":"Beta Inc's net margin in 2020 was 9.7%."}`,
		},
		{
			name:           "error: malformed JSON",
			body:           `{"question":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"question is required"}`,
		},
		{
			name:           "error: missing question field",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"question is required"}`,
		},
		{
			name: "error: blank question maps to 400",
			body: `{"question":"   "}`,
			mockAnswer: func(ctx context.Context, question string) (string, error) {
				return "", usecase.ErrEmptyQuestion
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"question must not be empty"}`,
		},
		{
			name: "error: assistant unavailable maps to 502",
			body: `{"question":"anything"}`,
			mockAnswer: func(ctx context.Context, question string) (string, error) {
				return "", usecase.ErrAssistantUnavailable
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error":"the assistant is currently unavailable, please try again later"}`,
		},
		{
			name: "error: unexpected failure maps to 500 without detail",
			body: `{"question":"anything"}`,
			mockAnswer: func(ctx context.Context, question string) (string, error) {
				return "", errors.New("secret internal detail")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"failed to answer the question"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockAssistantUsecase{AnswerFunc: tt.mockAnswer}
			h := handler.NewAssistantHandler(mockUC)

			router := gin.New()
			router.POST("/ask", h.Ask)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, "/ask", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
