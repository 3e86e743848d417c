// Package config loads the service's frozen configuration record once
// at startup, layering env > .env file > default.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the single frozen configuration record populated once at
// startup and passed by pointer everywhere else.
type Config struct {
	DBURL string

	LLMAPIURL    string
	LLMModelName string
	LLMAPIKey    string
	LLMTimeout   time.Duration

	ASRModelName         string
	DiarizationModelName string
	MLCredentialsToken   string
	ComputeDevice        string

	UploadDir           string
	TranscriptDir       string
	TranscriptEditedDir string
	SummaryDir          string
	ExportDir           string
	LogsDir             string

	MaxFileSize       int64
	AllowedAudioTypes []string

	CleanupIntervalHours float64
	JobRetentionHours    float64
	ExportRetentionHours float64
	TimezoneOffset       int

	DBPoolMin int
	DBPoolMax int
	LogLevel  string

	Host string
	Port int
}

// Load builds a Config from (in increasing precedence) defaults, a .env
// file in the working directory, and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("db_url", "meetflow.db")
	v.SetDefault("llm_api_url", "https://api.openai.com")
	v.SetDefault("llm_model_name", "gpt-4o-mini")
	v.SetDefault("llm_timeout", 60)
	v.SetDefault("asr_model_name", "")
	v.SetDefault("diarization_model_name", "")
	v.SetDefault("ml_credentials_token", "")
	v.SetDefault("compute_device", "cpu")
	v.SetDefault("upload_dir", "data/uploads")
	v.SetDefault("transcript_dir", "data/transcripts")
	v.SetDefault("transcript_edited_dir", "data/transcripts_edited")
	v.SetDefault("summary_dir", "data/summaries")
	v.SetDefault("export_dir", "data/exports")
	v.SetDefault("logs_dir", "data/logs")
	v.SetDefault("max_file_size", 100*1024*1024)
	v.SetDefault("allowed_audio_types", ".wav,.mp3,.mp4,.m4a,.webm,.flac,.ogg")
	v.SetDefault("cleanup_interval_hours", 1.0)
	v.SetDefault("job_retention_hours", 12.0)
	v.SetDefault("export_retention_hours", 24.0)
	v.SetDefault("timezone_offset", 0)
	v.SetDefault("db_pool_min", 1)
	v.SetDefault("db_pool_max", 10)
	v.SetDefault("log_level", "info")

	cfg := &Config{
		DBURL:                v.GetString("db_url"),
		LLMAPIURL:            v.GetString("llm_api_url"),
		LLMModelName:         v.GetString("llm_model_name"),
		LLMAPIKey:            v.GetString("llm_api_key"),
		LLMTimeout:           time.Duration(v.GetInt("llm_timeout")) * time.Second,
		ASRModelName:         v.GetString("asr_model_name"),
		DiarizationModelName: v.GetString("diarization_model_name"),
		MLCredentialsToken:   v.GetString("ml_credentials_token"),
		ComputeDevice:        v.GetString("compute_device"),
		UploadDir:            v.GetString("upload_dir"),
		TranscriptDir:        v.GetString("transcript_dir"),
		TranscriptEditedDir:  v.GetString("transcript_edited_dir"),
		SummaryDir:           v.GetString("summary_dir"),
		ExportDir:            v.GetString("export_dir"),
		LogsDir:              v.GetString("logs_dir"),
		MaxFileSize:          v.GetInt64("max_file_size"),
		AllowedAudioTypes:    strings.Split(v.GetString("allowed_audio_types"), ","),
		CleanupIntervalHours: v.GetFloat64("cleanup_interval_hours"),
		JobRetentionHours:    v.GetFloat64("job_retention_hours"),
		ExportRetentionHours: v.GetFloat64("export_retention_hours"),
		TimezoneOffset:       v.GetInt("timezone_offset"),
		DBPoolMin:            v.GetInt("db_pool_min"),
		DBPoolMax:            v.GetInt("db_pool_max"),
		LogLevel:             v.GetString("log_level"),
		Host:                 v.GetString("host"),
		Port:                 v.GetInt("port"),
	}

	if cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("config: max_file_size must be positive")
	}
	if cfg.DBPoolMax < cfg.DBPoolMin {
		return nil, fmt.Errorf("config: db_pool_max must be >= db_pool_min")
	}

	return cfg, nil
}

// RetentionInterval converts CleanupIntervalHours into a time.Duration.
func (c *Config) RetentionInterval() time.Duration {
	return time.Duration(c.CleanupIntervalHours * float64(time.Hour))
}

// JobRetention converts JobRetentionHours into a time.Duration.
func (c *Config) JobRetention() time.Duration {
	return time.Duration(c.JobRetentionHours * float64(time.Hour))
}

// ExportRetention converts ExportRetentionHours into a time.Duration.
func (c *Config) ExportRetention() time.Duration {
	return time.Duration(c.ExportRetentionHours * float64(time.Hour))
}
