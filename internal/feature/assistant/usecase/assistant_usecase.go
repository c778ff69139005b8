package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// LLM は自然言語の質問に回答する言語モデルクライアントのインターフェイスです。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type LLM interface {
	Answer(ctx context.Context, systemPrompt, question string) (string, error)
}

// AssistantUsecase は自然言語の質問をLLMとツール群で回答へ変換します。
// 1つの質問につき1つのツール呼び出しチェーンが同期実行されます。
type AssistantUsecase struct {
	llm  LLM
	meta FinancialTools
}

// NewAssistantUsecase は新しい AssistantUsecase を作成します。
// llm が nil の場合（APIキー未設定など）、Answer は ErrAssistantUnavailable を返します。
func NewAssistantUsecase(llm LLM, meta FinancialTools) *AssistantUsecase {
	return &AssistantUsecase{llm: llm, meta: meta}
}

// Answer は質問に回答します。失敗は常にドメインエラーへ変換され、
// 低レベルのエラーがそのまま利用者へ届くことはありません。
func (a *AssistantUsecase) Answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	if a.llm == nil {
		return "", ErrAssistantUnavailable
	}

	system := FallbackSystemPrompt
	if summary, err := a.meta.AvailableData(ctx); err != nil {
		// スキーマ情報なしでも回答は試みる
		slog.Warn("failed to load data summary for system prompt", "error", err)
	} else {
		system = BuildSystemPrompt(summary)
	}

	answer, err := a.llm.Answer(ctx, system, question)
	if err != nil {
		slog.Error("LLM request failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
	}
	if strings.TrimSpace(answer) == "" {
		return "I couldn't generate a response. Please try rephrasing your question.", nil
	}
	return answer, nil
}
