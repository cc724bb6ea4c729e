package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration (serve mode)
	Server ServerConfig

	// Column-name mapping for input tables
	Columns ColumnsConfig

	// LLM endpoint configuration
	LLM LLMConfig

	// Batch profile-generation configuration
	Batch BatchConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxUploadSize   int64 // in bytes
	UploadDir       string
}

// ColumnsConfig maps the logical comment/metadata fields onto the CSV
// header names actually present in an export. Every field is overridable
// because exports from different platforms name their columns differently.
type ColumnsConfig struct {
	UID             string
	ArticleID       string
	CommentID       string
	ParentCommentID string
	Content         string
	ImgURLs         string
	VideoURLs       string
	CreatedTime     string
	QuestionID      string
	AnswerID        string
}

// LLMConfig holds the chat-completion endpoint settings
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	VLModel     string
	Temperature float64
	Timeout     time.Duration
}

// BatchConfig holds profile-generation batch settings
type BatchConfig struct {
	CheckpointEvery int
	Strategy        string
	UserCount       int
	RandomSeed      int64
	OutputDir       string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// DashScope's OpenAI-compatible endpoint, the default upstream for qwen models.
const defaultBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 300*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			MaxUploadSize:   getInt64Env("MAX_UPLOAD_SIZE", 500*1024*1024), // 500MB
			UploadDir:       getEnv("UPLOAD_DIR", "./data/uploads"),
		},
		Columns: ColumnsConfig{
			UID:             getEnv("UID_COLUMN", "uid"),
			ArticleID:       getEnv("ARTICLE_ID_COLUMN", "article_id"),
			CommentID:       getEnv("COMMENT_ID_COLUMN", "comment_id"),
			ParentCommentID: getEnv("PARENT_COMMENT_ID_COLUMN", "parent_comment_id"),
			Content:         getEnv("CONTENT_COLUMN", "content"),
			ImgURLs:         getEnv("IMG_URLS_COLUMN", "img_urls"),
			VideoURLs:       getEnv("VIDEO_URLS_COLUMN", "video_urls"),
			CreatedTime:     getEnv("CREATED_TIME_COLUMN", "created_time"),
			QuestionID:      getEnv("QUESTION_ID_COLUMN", "question_id"),
			AnswerID:        getEnv("ANSWER_ID_COLUMN", "answer_id"),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("LLM_BASE_URL", defaultBaseURL),
			APIKey:      getEnv("QWEN_API_KEY", ""),
			Model:       getEnv("LLM_MODEL", "qwen-max"),
			VLModel:     getEnv("LLM_VL_MODEL", "qwen-vl-max"),
			Temperature: getFloatEnv("LLM_TEMPERATURE", 0.3),
			Timeout:     getDurationEnv("LLM_TIMEOUT", 120*time.Second),
		},
		Batch: BatchConfig{
			CheckpointEvery: getIntEnv("BATCH_CHECKPOINT_EVERY", 10),
			Strategy:        getEnv("SELECT_STRATEGY", "top"),
			UserCount:       getIntEnv("SELECT_COUNT", 100),
			RandomSeed:      getInt64Env("RANDOM_SEED", 42),
			OutputDir:       getEnv("OUTPUT_DIR", "./data/output"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Columns.UID == "" {
		return fmt.Errorf("UID_COLUMN is required")
	}
	if c.Columns.CommentID == "" {
		return fmt.Errorf("COMMENT_ID_COLUMN is required")
	}
	if c.Columns.Content == "" {
		return fmt.Errorf("CONTENT_COLUMN is required")
	}
	if c.Batch.CheckpointEvery < 1 {
		return fmt.Errorf("BATCH_CHECKPOINT_EVERY must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
