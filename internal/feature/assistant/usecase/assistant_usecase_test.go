package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	finusecase "finqa_backend/internal/feature/financials/usecase"
)

var ErrUpstream = errors.New("upstream API error")

// mockLLM is a mock implementation of the LLM interface.
type mockLLM struct {
	AnswerFunc  func(ctx context.Context, systemPrompt, question string) (string, error)
	AnswerCalls int
}

func (m *mockLLM) Answer(ctx context.Context, systemPrompt, question string) (string, error) {
	m.AnswerCalls++
	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, systemPrompt, question)
	}
	return "", errors.New("AnswerFunc is not implemented")
}

func summaryTools() *mockFinancialTools {
	return &mockFinancialTools{
		AvailableDataFunc: func(ctx context.Context) (finusecase.DataSummary, error) {
			return finusecase.DataSummary{
				Companies:   []string{"Alpha Corp", "Beta Inc"},
				Years:       []int{2019, 2020, 2021},
				Metrics:     []string{"revenue", "net_income", "total_assets", "total_equity"},
				RecordCount: 6,
			}, nil
		},
	}
}

func TestAssistantUsecase_Answer(t *testing.T) {
	ctx := context.Background()

	t.Run("success: answer passed through", func(t *testing.T) {
		llm := &mockLLM{
			AnswerFunc: func(ctx context.Context, systemPrompt, question string) (string, error) {
				if question != "What was Alpha Corp's revenue in 2021?" {
					t.Errorf("question mismatch: %q", question)
				}
				if !strings.Contains(systemPrompt, "Alpha Corp, Beta Inc") {
					t.Errorf("system prompt should embed the live data summary:\n%s", systemPrompt)
				}
				return "Alpha Corp's revenue in 2021 was $152,000,000.", nil
			},
		}
		uc := NewAssistantUsecase(llm, summaryTools())

		answer, err := uc.Answer(ctx, "What was Alpha Corp's revenue in 2021?")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if answer != "Alpha Corp's revenue in 2021 was $152,000,000." {
			t.Errorf("answer mismatch: %q", answer)
		}
	})

	t.Run("error: empty question", func(t *testing.T) {
		llm := &mockLLM{}
		uc := NewAssistantUsecase(llm, summaryTools())

		_, err := uc.Answer(ctx, "   ")
		if !errors.Is(err, ErrEmptyQuestion) {
			t.Fatalf("expected ErrEmptyQuestion, got %v", err)
		}
		if llm.AnswerCalls != 0 {
			t.Errorf("LLM was called %d times, expected 0", llm.AnswerCalls)
		}
	})

	t.Run("error: nil llm means unavailable", func(t *testing.T) {
		uc := NewAssistantUsecase(nil, summaryTools())

		_, err := uc.Answer(ctx, "anything")
		if !errors.Is(err, ErrAssistantUnavailable) {
			t.Fatalf("expected ErrAssistantUnavailable, got %v", err)
		}
	})

	t.Run("error: llm failure wrapped as unavailable", func(t *testing.T) {
		llm := &mockLLM{
			AnswerFunc: func(ctx context.Context, systemPrompt, question string) (string, error) {
				return "", ErrUpstream
			},
		}
		uc := NewAssistantUsecase(llm, summaryTools())

		_, err := uc.Answer(ctx, "anything")
		if !errors.Is(err, ErrAssistantUnavailable) {
			t.Fatalf("expected ErrAssistantUnavailable, got %v", err)
		}
	})

	t.Run("success: empty answer replaced with a canned message", func(t *testing.T) {
		llm := &mockLLM{
			AnswerFunc: func(ctx context.Context, systemPrompt, question string) (string, error) {
				return "  ", nil
			},
		}
		uc := NewAssistantUsecase(llm, summaryTools())

		answer, err := uc.Answer(ctx, "anything")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(answer, "rephrasing") {
			t.Errorf("answer mismatch: %q", answer)
		}
	})

	t.Run("success: summary failure falls back to static prompt", func(t *testing.T) {
		tools := &mockFinancialTools{
			AvailableDataFunc: func(ctx context.Context) (finusecase.DataSummary, error) {
				return finusecase.DataSummary{}, errors.New("store down")
			},
		}
		llm := &mockLLM{
			AnswerFunc: func(ctx context.Context, systemPrompt, question string) (string, error) {
				if systemPrompt != FallbackSystemPrompt {
					t.Errorf("expected fallback system prompt, got:\n%s", systemPrompt)
				}
				return "answer", nil
			},
		}
		uc := NewAssistantUsecase(llm, tools)

		answer, err := uc.Answer(ctx, "anything")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if answer != "answer" {
			t.Errorf("answer mismatch: %q", answer)
		}
	})
}

func TestBuildSystemPrompt(t *testing.T) {
	summary := finusecase.DataSummary{
		Companies:   []string{"Alpha Corp", "Beta Inc"},
		Years:       []int{2019, 2023},
		Metrics:     []string{"revenue", "net_income", "total_assets", "total_equity"},
		RecordCount: 4,
	}

	prompt := BuildSystemPrompt(summary)

	for _, want := range []string{"Alpha Corp, Beta Inc", "financials", "revenue"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
