package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Reddit API（アプリ専用OAuth）
	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string

	// Gemini API
	GoogleAPIKey string
	GeminiModel  string

	// Fetch（取得件数の上限はポリシーとして設定可能。デフォルトは200/50）
	FetchCommentLimit    int
	FetchSubmissionLimit int
	FetchTimeout         time.Duration

	// Build（ペルソナ生成1回あたりの全体の制限時間）
	BuildTimeout time.Duration

	// Rate Limit（req/min単位）
	RateLimitGeneral int
	RateLimitBuild   int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合は不足している変数名をまとめてエラーで返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.RedditClientID = os.Getenv("REDDIT_CLIENT_ID")
	if cfg.RedditClientID == "" {
		missing = append(missing, "REDDIT_CLIENT_ID")
	}

	cfg.RedditClientSecret = os.Getenv("REDDIT_CLIENT_SECRET")
	if cfg.RedditClientSecret == "" {
		missing = append(missing, "REDDIT_CLIENT_SECRET")
	}

	cfg.RedditUserAgent = os.Getenv("REDDIT_USER_AGENT")
	if cfg.RedditUserAgent == "" {
		missing = append(missing, "REDDIT_USER_AGENT")
	}

	cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	if cfg.GoogleAPIKey == "" {
		missing = append(missing, "GOOGLE_API_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.GeminiModel = getEnvString("GEMINI_MODEL", "gemini-1.5-pro-latest")
	cfg.FetchCommentLimit = getEnvInt("FETCH_COMMENT_LIMIT", 200)
	cfg.FetchSubmissionLimit = getEnvInt("FETCH_SUBMISSION_LIMIT", 50)
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 10*time.Second)
	cfg.BuildTimeout = getEnvDuration("BUILD_TIMEOUT", 300*time.Second)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitBuild = getEnvInt("RATE_LIMIT_BUILD", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8000")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:8501")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
