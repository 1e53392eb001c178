package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv       = "REFERENT_CONFIG"
	apiKeyEnv           = "OPENROUTER_API_KEY"
	baseURLEnv          = "OPENAI_BASE_URL"
	modelEnv            = "LLM_MODEL"
	httpAddrEnv         = "HTTP_ADDR"
	logLevelEnv         = "LOG_LEVEL"
	logFileEnv          = "LOG_FILE"
	telegramTokenEnv    = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv   = "TELEGRAM_CHAT_ID"
	defaultBaseURL      = "https://openrouter.ai/api/v1"
	defaultModel        = "deepseek/deepseek-chat"
	defaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultOutputLocale = "Russian"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Extractor ExtractorConfig `yaml:"extractor"`
	LLM       LLMConfig       `yaml:"llm"`
	Telegram  TelegramConfig  `yaml:"telegram"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// LoggingConfig selects level, format and an optional rotating file.
type LoggingConfig struct {
	Level  string     `yaml:"level"`
	Format string     `yaml:"format"`
	File   FileConfig `yaml:"file"`
}

// FileConfig is passed to the log rotator; an empty path disables it.
type FileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// ExtractorConfig tunes article download and content heuristics.
type ExtractorConfig struct {
	Timeout             time.Duration `yaml:"timeout"`
	UserAgent           string        `yaml:"userAgent"`
	MaxBodyBytes        int64         `yaml:"maxBodyBytes"`
	MinBodyLength       int           `yaml:"minBodyLength"`
	MaxContentLength    int           `yaml:"maxContentLength"`
	ReadabilityFallback bool          `yaml:"readabilityFallback"`
	SkipLanguageCheck   bool          `yaml:"skipLanguageCheck"`
}

// LLMConfig defines how to contact the chat-completion API.
type LLMConfig struct {
	BaseURL         string        `yaml:"baseUrl"`
	APIKey          string        `yaml:"apiKey"`
	Model           string        `yaml:"model"`
	Timeout         time.Duration `yaml:"timeout"`
	Referer         string        `yaml:"referer"`
	Title           string        `yaml:"title"`
	MaxPromptLength int           `yaml:"maxPromptLength"`
	OutputLanguage  string        `yaml:"outputLanguage"`
}

// TelegramConfig wires all data required to publish posts.
type TelegramConfig struct {
	BotToken    string `yaml:"botToken"`
	ChatID      string `yaml:"chatId"`
	APIEndpoint string `yaml:"apiEndpoint"`
}

// Enabled reports whether both the token and the chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Load reads .env and YAML configuration (if present) and applies environment overrides.
// An explicit path wins over REFERENT_CONFIG.
func Load(path string) Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: cannot load .env: %v", err)
	}

	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.LLM.APIKey = CleanAPIKey(cfg.LLM.APIKey)

	return cfg
}

// CleanAPIKey drops whitespace and the square brackets often pasted around keys.
func CleanAPIKey(key string) string {
	key = strings.NewReplacer("[", "", "]", "").Replace(key)
	return strings.TrimSpace(key)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(apiKeyEnv); v != "" {
		c.LLM.APIKey = v
	}

	if v := os.Getenv(baseURLEnv); v != "" {
		c.LLM.BaseURL = v
	}

	if v := os.Getenv(modelEnv); v != "" {
		c.LLM.Model = v
	}

	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(logFileEnv); v != "" {
		c.Logging.File.Path = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.ReadTimeout > 0 {
		base.Server.ReadTimeout = override.Server.ReadTimeout
	}
	if override.Server.WriteTimeout > 0 {
		base.Server.WriteTimeout = override.Server.WriteTimeout
	}
	if override.Server.ShutdownTimeout > 0 {
		base.Server.ShutdownTimeout = override.Server.ShutdownTimeout
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}
	if override.Logging.File.Path != "" {
		base.Logging.File = override.Logging.File
	}

	if override.Extractor.Timeout > 0 {
		base.Extractor.Timeout = override.Extractor.Timeout
	}
	if override.Extractor.UserAgent != "" {
		base.Extractor.UserAgent = override.Extractor.UserAgent
	}
	if override.Extractor.MaxBodyBytes > 0 {
		base.Extractor.MaxBodyBytes = override.Extractor.MaxBodyBytes
	}
	if override.Extractor.MinBodyLength > 0 {
		base.Extractor.MinBodyLength = override.Extractor.MinBodyLength
	}
	if override.Extractor.MaxContentLength > 0 {
		base.Extractor.MaxContentLength = override.Extractor.MaxContentLength
	}
	base.Extractor.ReadabilityFallback = base.Extractor.ReadabilityFallback || override.Extractor.ReadabilityFallback
	base.Extractor.SkipLanguageCheck = base.Extractor.SkipLanguageCheck || override.Extractor.SkipLanguageCheck

	if override.LLM.BaseURL != "" {
		base.LLM.BaseURL = override.LLM.BaseURL
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.Timeout > 0 {
		base.LLM.Timeout = override.LLM.Timeout
	}
	if override.LLM.Referer != "" {
		base.LLM.Referer = override.LLM.Referer
	}
	if override.LLM.Title != "" {
		base.LLM.Title = override.LLM.Title
	}
	if override.LLM.MaxPromptLength > 0 {
		base.LLM.MaxPromptLength = override.LLM.MaxPromptLength
	}
	if override.LLM.OutputLanguage != "" {
		base.LLM.OutputLanguage = override.LLM.OutputLanguage
	}

	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}
	if override.Telegram.ChatID != "" {
		base.Telegram.ChatID = override.Telegram.ChatID
	}
	if override.Telegram.APIEndpoint != "" {
		base.Telegram.APIEndpoint = override.Telegram.APIEndpoint
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":3000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   FileConfig{MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 14, Compress: true},
		},
		Extractor: ExtractorConfig{
			Timeout:          30 * time.Second,
			UserAgent:        defaultUserAgent,
			MaxBodyBytes:     5 << 20,
			MinBodyLength:    100,
			MaxContentLength: 10000,
		},
		LLM: LLMConfig{
			BaseURL:         defaultBaseURL,
			Model:           defaultModel,
			Timeout:         60 * time.Second,
			Referer:         "http://localhost:3000",
			Title:           "Referent AI Actions",
			MaxPromptLength: 8000,
			OutputLanguage:  defaultOutputLocale,
		},
	}
}
