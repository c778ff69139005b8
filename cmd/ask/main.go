package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"finqa_backend/internal/feature/assistant/adapters/gemini"
	assistantusecase "finqa_backend/internal/feature/assistant/usecase"
	finadapters "finqa_backend/internal/feature/financials/adapters"
	finusecase "finqa_backend/internal/feature/financials/usecase"
	"finqa_backend/internal/platform/config"
	infradb "finqa_backend/internal/platform/db"
	"finqa_backend/internal/shared/ratelimiter"
)

// askは自然言語の質問を1回（または対話的に）回答するCLIです。
//
// 使用例:
//
//	ask "What was Alpha Corp's revenue in 2022?"
//	ask            (REPLモード。exit で終了)
func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	gdb, err := infradb.Open(infradb.LoadConfig())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	finUC := finusecase.NewFinancialsUsecase(finadapters.NewFinancialRepository(gdb))
	toolset := assistantusecase.NewToolset(finUC)

	var limiter ratelimiter.RateLimiterInterface
	if cfg.Assistant.RequestsPerMinute > 0 {
		limiter = ratelimiter.NewRateLimiter(cfg.Assistant.RequestsPerMinute, time.Minute)
	}

	ctx := context.Background()
	llm, err := gemini.NewAssistant(ctx, gemini.LoadConfig(), toolset, limiter)
	if err != nil {
		log.Fatalf("failed to initialize assistant: %v", err)
	}
	assistant := assistantusecase.NewAssistantUsecase(llm, finUC)

	if len(os.Args) > 1 {
		question := strings.Join(os.Args[1:], " ")
		answer, err := assistant.Answer(ctx, question)
		if err != nil {
			log.Fatalf("failed to answer: %v", err)
		}
		fmt.Println(answer)
		return
	}

	// REPLモード
	fmt.Println("Financial Q&A assistant. Type 'exit' to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return
		}
		answer, err := assistant.Answer(ctx, question)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Println(answer)
	}
}
