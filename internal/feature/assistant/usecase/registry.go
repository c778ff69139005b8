// Package usecase implements the LLM-driven assistant for financial questions.
package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// Function はLLMへ公開されるツール1つを表します。
// 宣言（名前・引数スキーマ）と、検証済み引数での呼び出しを提供します。
type Function interface {
	Declaration() *genai.FunctionDeclaration
	Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

// Library はツール名でディスパッチする関数レジストリです。
// 未知のツール名はエラーのFunctionResponseとして返し、panicしません。
type Library func(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse

// NewLibrary は固定のツール群から名前→関数のレジストリを作成します。
func NewLibrary(functions []Function) Library {
	return func(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
		for _, f := range functions {
			if f.Declaration().Name == call.Name {
				slog.Info("tool call", "tool", call.Name, "args", call.Args)
				return f.Call(ctx, call.ID, call.Args)
			}
		}
		slog.Warn("unknown tool requested", "tool", call.Name)
		return &genai.FunctionResponse{
			ID:   call.ID,
			Name: call.Name,
			Response: map[string]any{
				"error": fmt.Sprintf("unknown tool %q", call.Name),
			},
		}
	}
}

// Declarations は全ツールのFunctionDeclarationを返します。
func Declarations(functions []Function) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(functions))
	for _, f := range functions {
		out = append(out, f.Declaration())
	}
	return out
}

// Func は宣言と実装の組で Function を実装する便利型です。
type Func struct {
	Decl *genai.FunctionDeclaration
	Fn   func(ctx context.Context, args map[string]any) (string, error)
}

var _ Function = (*Func)(nil)

// Declaration はツールの宣言を返します。
func (f *Func) Declaration() *genai.FunctionDeclaration {
	return f.Decl
}

// Call はツールを実行します。実装のエラーはFunctionResponseの
// errorフィールドに変換され、呼び出し側（LLM）にそのまま返されます。
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	resp := &genai.FunctionResponse{ID: id, Name: f.Decl.Name}
	out, err := f.Fn(ctx, args)
	if err != nil {
		resp.Response = map[string]any{"error": err.Error()}
		return resp
	}
	resp.Response = map[string]any{"output": out}
	return resp
}
