package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"finqa_backend/internal/app/router"
	"finqa_backend/internal/feature/assistant/adapters/gemini"
	assistanthandler "finqa_backend/internal/feature/assistant/transport/handler"
	assistantusecase "finqa_backend/internal/feature/assistant/usecase"
	finadapters "finqa_backend/internal/feature/financials/adapters"
	financialshandler "finqa_backend/internal/feature/financials/transport/handler"
	finusecase "finqa_backend/internal/feature/financials/usecase"
	"finqa_backend/internal/platform/cache"
	"finqa_backend/internal/platform/config"
	infradb "finqa_backend/internal/platform/db"
	infraredis "finqa_backend/internal/platform/redis"
	"finqa_backend/internal/shared/ratelimiter"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// db
	gdb, err := infradb.Open(infradb.LoadConfig())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	// Redis（任意。未設定ならキャッシュなしで継続）
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	finRepo := finadapters.NewFinancialRepository(gdb)
	cachedRepo := cache.NewCachingFinancialRepository(rdb, 5*time.Minute, finRepo, "financials")

	// Usecase
	finUC := finusecase.NewFinancialsUsecase(cachedRepo)

	// Gemini（APIキー未設定でも読み取りAPIは提供し続ける）
	var llm assistantusecase.LLM
	toolset := assistantusecase.NewToolset(finUC)
	var limiter ratelimiter.RateLimiterInterface
	if cfg.Assistant.RequestsPerMinute > 0 {
		limiter = ratelimiter.NewRateLimiter(cfg.Assistant.RequestsPerMinute, time.Minute)
	}
	if assistant, err := gemini.NewAssistant(context.Background(), gemini.LoadConfig(), toolset, limiter); err != nil {
		log.Println("[WARN] Gemini unavailable; /ask will return 502:", err)
	} else {
		llm = assistant
	}
	assistantUC := assistantusecase.NewAssistantUsecase(llm, finUC)

	// Handler
	finH := financialshandler.NewFinancialsHandler(finUC)
	assistantH := assistanthandler.NewAssistantHandler(assistantUC)

	// ルータ生成
	r := router.NewRouter(finH, assistantH)

	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
