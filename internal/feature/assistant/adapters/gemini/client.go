// Package gemini はGoogle Gemini APIを使用した財務アシスタントクライアントを提供します。
package gemini

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"finqa_backend/internal/feature/assistant/usecase"
	"finqa_backend/internal/shared/ratelimiter"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"

	// maxToolTurns は1つの質問で許可するツール呼び出しの最大回数です。
	// ループするLLMがAPIを叩き続けるのを防ぎます。
	maxToolTurns = 10
)

// Config はGemini APIクライアントの設定です。
type Config struct {
	APIKey string // API key for authentication
	Model  string // Model name, e.g. "gemini-2.5-flash"
}

// LoadConfig は環境変数からGemini設定を読み込みます。
// GEMINI_API_KEY が優先され、なければ GOOGLE_API_KEY を使用します。
// GEMINI_MODEL でモデル名を上書きできます。
func LoadConfig() Config {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = DefaultModel
	}
	return Config{APIKey: key, Model: model}
}

// Assistant はGemini APIで質問に回答するLLMクライアントです。
// ツール呼び出しはレジストリ（Library）経由でディスパッチされます。
type Assistant struct {
	client  *genai.Client
	model   string
	decls   []*genai.FunctionDeclaration
	library usecase.Library
	limiter ratelimiter.RateLimiterInterface
}

// AssistantがLLMを実装していることをコンパイル時に検証します。
var _ usecase.LLM = (*Assistant)(nil)

// NewAssistant は新しいAssistantを作成します。APIキーが未設定の場合はエラーです。
func NewAssistant(ctx context.Context, cfg Config, functions []usecase.Function, limiter ratelimiter.RateLimiterInterface) (*Assistant, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY (or GOOGLE_API_KEY) is not set")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Assistant{
		client:  client,
		model:   model,
		decls:   usecase.Declarations(functions),
		library: usecase.NewLibrary(functions),
		limiter: limiter,
	}, nil
}

// Answer は質問をチャットセッションで送信し、最終的なテキスト回答を返します。
// モデルがFunctionCallを返した場合はツールを実行し、その結果を
// FunctionResponseとして送り返すことをテキスト回答が得られるまで繰り返します。
func (a *Assistant) Answer(ctx context.Context, systemPrompt, question string) (string, error) {
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{FunctionDeclarations: a.decls},
		},
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		// 事実ベースの回答のため温度は低めに固定
		Temperature: genai.Ptr[float32](0.1),
	}

	chat, err := a.client.Chats.Create(ctx, a.model, config, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create chat session: %w", err)
	}

	parts := []*genai.Part{{Text: question}}
	for turn := 0; turn < maxToolTurns; turn++ {
		if a.limiter != nil {
			a.limiter.WaitIfNeeded()
		}
		resp, err := chat.Send(ctx, parts...)
		if err != nil {
			return "", fmt.Errorf("gemini API request failed: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return "", fmt.Errorf("no response candidates from model")
		}

		if fc := firstFunctionCall(resp.Candidates[0].Content.Parts); fc != nil {
			fresp := a.library(ctx, fc)
			parts = []*genai.Part{{FunctionResponse: fresp}}
			continue
		}
		return resp.Text(), nil
	}
	return "", fmt.Errorf("model did not produce an answer after %d tool calls", maxToolTurns)
}

func firstFunctionCall(parts []*genai.Part) *genai.FunctionCall {
	for _, p := range parts {
		if p.FunctionCall != nil {
			return p.FunctionCall
		}
	}
	return nil
}
