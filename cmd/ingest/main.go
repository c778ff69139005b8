package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	finadapters "finqa_backend/internal/feature/financials/adapters"
	ingestadapters "finqa_backend/internal/feature/ingest/adapters"
	ingestusecase "finqa_backend/internal/feature/ingest/usecase"
	"finqa_backend/internal/platform/config"
	infradb "finqa_backend/internal/platform/db"
)

func main() {
	csvPath := flag.String("csv", "", "path to the source CSV (defaults to the configured path)")
	configPath := flag.String("config", "", "path to config.yaml")
	report := flag.Bool("report", false, "print the full ingestion report")
	reset := flag.Bool("reset", false, "empty the store before ingesting, removing rows absent from the source")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	path := *csvPath
	if path == "" {
		path = cfg.Ingest.CSVPath
	}

	gdb, err := infradb.Open(infradb.LoadConfig())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	source := ingestadapters.NewCSVSource(path)
	store := finadapters.NewFinancialRepository(gdb)
	validator := ingestusecase.NewValidator(cfg.Companies, cfg.Ingest.MinYear, cfg.Ingest.MaxYear)
	uc := ingestusecase.NewIngestUsecase(source, store, validator)

	// 取り込みはオフラインの排他的処理。クエリトラフィック開始前に完了させる。
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *reset {
		var resetter ingestusecase.RecordResetter = store
		if err := resetter.Reset(ctx); err != nil {
			log.Fatalf("failed to reset the store: %v", err)
		}
		log.Println("[INFO] store reset; ingesting from an empty table")
	}

	result, err := uc.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}

	if *report {
		fmt.Print(result.Summary())
	}
	log.Printf("ingest ok: %d valid, %d rejected, %d stored",
		result.ValidCount, result.RejectedCount(), result.Stored)
}
