package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"doc-verify-bot/internal/entity"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Telegram TelegramConfig
	OCR      OCRConfig
	Analysis AnalysisConfig
	CRM      CRMConfig
	Storage  StorageConfig
}

type AppConfig struct {
	Port         string
	Environment  string
	LogFilePath  string
	RedisURL     string
	SessionStore string // "redis" or "memory"
	PhotoTopic   string
	PhotoWorkers int
}

type DatabaseConfig struct {
	Connection string // audit trail DSN, optional
}

type TelegramConfig struct {
	BotToken   string
	APIBaseURL string
}

type OCRConfig struct {
	APIKey   string
	Endpoint string
}

type AnalysisConfig struct {
	APIKey   string
	Endpoint string
	Model    string
}

type CRMConfig struct {
	WebhookURL   string
	EntityTypeID int
}

type StorageConfig struct {
	URL        string
	ServiceKey string
	Bucket     string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:         getEnv("APP_PORT", "3000"),
			Environment:  getEnv("GO_ENV", "development"),
			LogFilePath:  getEnv("LOG_FILE_PATH", "app.log"),
			RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionStore: getEnv("SESSION_STORE", "memory"),
			PhotoTopic:   getEnv("PHOTO_TASK_TOPIC_NAME", "PROCESS_DOCUMENT_PHOTO"),
			PhotoWorkers: getEnvAsInt("PHOTO_WORKERS", 4),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Telegram: TelegramConfig{
			BotToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
			APIBaseURL: getEnv("TELEGRAM_API_BASE_URL", "https://api.telegram.org"),
		},
		OCR: OCRConfig{
			APIKey:   getEnv("OCR_SPACE_API_KEY", ""),
			Endpoint: getEnv("OCR_SPACE_ENDPOINT", "https://api.ocr.space/parse/image"),
		},
		Analysis: AnalysisConfig{
			APIKey:   getEnv("DEEPSEEK_API_KEY", ""),
			Endpoint: getEnv("DEEPSEEK_API_URL", "https://api.deepseek.com/v1/chat/completions"),
			Model:    getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		},
		CRM: CRMConfig{
			WebhookURL:   getEnv("BITRIX24_WEBHOOK_URL", ""),
			EntityTypeID: getEnvAsInt("BITRIX24_ENTITY_TYPE_ID", 1086),
		},
		Storage: StorageConfig{
			URL:        getEnv("SUPABASE_URL", ""),
			ServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
			Bucket:     getEnv("SUPABASE_STORAGE_BUCKET", "documents"),
		},
	}
}

// Validate fails fast on missing credentials before the server starts.
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"TELEGRAM_BOT_TOKEN", c.Telegram.BotToken},
		{"OCR_SPACE_API_KEY", c.OCR.APIKey},
		{"DEEPSEEK_API_KEY", c.Analysis.APIKey},
		{"BITRIX24_WEBHOOK_URL", c.CRM.WebhookURL},
		{"SUPABASE_URL", c.Storage.URL},
		{"SUPABASE_SERVICE_KEY", c.Storage.ServiceKey},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s is not set", entity.ErrConfiguration, r.key)
		}
	}
	if c.App.SessionStore != "redis" && c.App.SessionStore != "memory" {
		return fmt.Errorf("%w: SESSION_STORE must be redis or memory, got %q", entity.ErrConfiguration, c.App.SessionStore)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
