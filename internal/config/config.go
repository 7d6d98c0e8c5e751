package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App     AppConfig     `toml:"app"`
	Ollama  OllamaConfig  `toml:"ollama"`
	Upload  UploadConfig  `toml:"upload"`
	Session SessionConfig `toml:"session"`
	Redis   RedisConfig   `toml:"redis"`
	OCR     OCRConfig     `toml:"ocr"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type OllamaConfig struct {
	BaseURL             string   `toml:"base_url"`
	Model               string   `toml:"model"`
	TimeoutSeconds      int      `toml:"timeout_seconds"`
	CheckTimeoutSeconds int      `toml:"check_timeout_seconds"`
	Temperature         float64  `toml:"temperature"`
	TopP                float64  `toml:"top_p"`
	TopK                int      `toml:"top_k"`
	NumPredict          int      `toml:"num_predict"`
	Stop                []string `toml:"stop"`
}

type UploadConfig struct {
	Dir               string   `toml:"dir"`
	MaxFileSizeBytes  int64    `toml:"max_file_size_bytes"`
	AllowedExtensions []string `toml:"allowed_extensions"`
}

type SessionConfig struct {
	TTLSeconds           int `toml:"ttl_seconds"`
	SweepIntervalSeconds int `toml:"sweep_interval_seconds"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type OCRConfig struct {
	TesseractCmd string `toml:"tesseract_cmd"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLSeconds) * time.Second
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Session.SweepIntervalSeconds) * time.Second
}

func (c *Config) OllamaTimeout() time.Duration {
	return time.Duration(c.Ollama.TimeoutSeconds) * time.Second
}

func (c *Config) OllamaCheckTimeout() time.Duration {
	return time.Duration(c.Ollama.CheckTimeoutSeconds) * time.Second
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "legalai-assistant",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    8080,
			GinMode: "debug",
		},
		Ollama: OllamaConfig{
			BaseURL:             "http://localhost:11434",
			Model:               "deepseek-r1:8b",
			TimeoutSeconds:      120,
			CheckTimeoutSeconds: 10,
			Temperature:         0.7,
			TopP:                0.9,
			TopK:                40,
			NumPredict:          2048,
			Stop:                []string{"Human:", "User:", "Assistant:"},
		},
		Upload: UploadConfig{
			Dir:               "./uploads",
			MaxFileSizeBytes:  10 << 20,
			AllowedExtensions: []string{"pdf", "jpg", "jpeg", "png", "txt"},
		},
		Session: SessionConfig{
			TTLSeconds:           3600,
			SweepIntervalSeconds: 300,
		},
		Redis: RedisConfig{
			Addr:     "127.0.0.1:6379",
			Password: "",
			DB:       0,
		},
		OCR: OCRConfig{
			TesseractCmd: "tesseract",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)

	cfg.Ollama.BaseURL = getEnv("OLLAMA_BASE_URL", cfg.Ollama.BaseURL)
	cfg.Ollama.Model = getEnv("OLLAMA_MODEL", cfg.Ollama.Model)
	cfg.Ollama.TimeoutSeconds = getEnvAsInt("OLLAMA_TIMEOUT_SECONDS", cfg.Ollama.TimeoutSeconds)
	cfg.Ollama.CheckTimeoutSeconds = getEnvAsInt("OLLAMA_CHECK_TIMEOUT_SECONDS", cfg.Ollama.CheckTimeoutSeconds)

	cfg.Upload.Dir = getEnv("UPLOAD_DIR", cfg.Upload.Dir)
	cfg.Upload.MaxFileSizeBytes = getEnvAsInt64("UPLOAD_MAX_FILE_SIZE_BYTES", cfg.Upload.MaxFileSizeBytes)
	if raw := getEnv("UPLOAD_ALLOWED_EXTENSIONS", ""); raw != "" {
		cfg.Upload.AllowedExtensions = splitCSV(raw)
	}

	cfg.Session.TTLSeconds = getEnvAsInt("SESSION_TTL_SECONDS", cfg.Session.TTLSeconds)
	cfg.Session.SweepIntervalSeconds = getEnvAsInt("SESSION_SWEEP_INTERVAL_SECONDS", cfg.Session.SweepIntervalSeconds)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)

	cfg.OCR.TesseractCmd = getEnv("TESSERACT_CMD", cfg.OCR.TesseractCmd)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt64(key string, fallback int64) int64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
