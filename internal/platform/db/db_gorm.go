// Package db はgormデータベース接続の初期化を提供します。
package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	gpostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	finadapters "finqa_backend/internal/feature/financials/adapters"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds database connection settings.
type Config struct {
	Driver   string // "sqlite" (default) or "postgres"
	Path     string // SQLite file path
	User     string
	Password string
	Name     string
	Host     string
	Port     string
}

// LoadConfig loads database configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		Driver:   os.Getenv("DB_DRIVER"),
		Path:     os.Getenv("DB_PATH"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if cfg.Path == "" {
		cfg.Path = "./data/financials.db"
	}
	return cfg
}

// BuildPostgresDSN はPostgres接続用のDSN文字列を生成します。
func BuildPostgresDSN(cfg Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User, cfg.Password, host, port, cfg.Name)
}

// Open はデータベースへ接続し、financialsテーブルをマイグレーションします。
// スキーマが存在しない場合は初回取り込み時に自動で作成されます。
func Open(cfg Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.Driver {
	case DriverPostgres:
		dsn := BuildPostgresDSN(cfg)
		// pgxでDSNを検証してからstdlib経由の*sql.DBをgormに渡す
		connCfg, perr := pgx.ParseConfig(dsn)
		if perr != nil {
			return nil, fmt.Errorf("invalid postgres DSN: %w", perr)
		}
		sqlDB := stdlib.OpenDB(*connCfg)

		deadline := time.Now().Add(60 * time.Second)
		for {
			db, err = gorm.Open(gpostgres.New(gpostgres.Config{Conn: sqlDB}), &gorm.Config{})
			if err == nil {
				break
			}
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("postgres connect failed after 60s: %w", err)
			}
			log.Printf("DB connect failed, retrying...: %v", err)
			time.Sleep(3 * time.Second)
		}
	case DriverSQLite, "":
		db, err = gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("sqlite open failed: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported DB driver: %q", cfg.Driver)
	}

	// マイグレーション
	if err := db.AutoMigrate(&finadapters.FinancialModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return db, nil
}
