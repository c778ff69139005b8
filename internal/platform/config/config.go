// Package config はYAMLファイルと環境変数からアプリケーション設定を読み込みます。
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// デフォルト値。設定ファイルで未指定の項目に適用されます。
const (
	defaultCSVPath = "./data/financials.csv"
	defaultMinYear = 1900
	defaultMaxYear = 2100
)

// Config はアプリケーション全体の設定です。
type Config struct {
	// Companies は取り込みを許可する企業名のロスターです。
	// ロスター外の企業名を持つ行は検証で拒否されます。
	Companies []string `yaml:"companies"`

	Ingest struct {
		CSVPath string `yaml:"csv_path"`
		MinYear int    `yaml:"min_year"`
		MaxYear int    `yaml:"max_year"`
	} `yaml:"ingest"`

	Assistant struct {
		// RequestsPerMinute はGemini API呼び出しのレートリミットです。0で無制限。
		RequestsPerMinute int `yaml:"requests_per_minute"`
	} `yaml:"assistant"`
}

// Load は指定パスのYAML設定ファイルを読み込みます。
// パスが空の場合は CONFIG_PATH 環境変数、それも空なら ./config.yaml を使用します。
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "./config.yaml"
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	cfg.applyDefaults()

	if len(cfg.Companies) == 0 {
		return nil, fmt.Errorf("config must declare at least one company in the roster")
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Ingest.CSVPath == "" {
		c.Ingest.CSVPath = defaultCSVPath
	}
	if c.Ingest.MinYear == 0 {
		c.Ingest.MinYear = defaultMinYear
	}
	if c.Ingest.MaxYear == 0 {
		c.Ingest.MaxYear = defaultMaxYear
	}
}
