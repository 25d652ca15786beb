package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendOpenAI = "openai"
	BackendClaude = "claude"
	BackendGemini = "gemini"
	BackendOllama = "ollama"
)

type Config struct {
	ListenAddr         string
	ModelBackend       string
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIBaseURL      string
	ClaudeAPIKey       string
	ClaudeModel        string
	GeminiAPIKey       string
	GeminiModel        string
	OllamaHost         string
	OllamaModel        string
	ModelTimeout       time.Duration
	MaxImageDimension  int
	SessionTTL         time.Duration
	SessionMax         int
	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
	LogLevel           string
	LogFormat          string
	LogFile            string
}

// LoadEnvFile loads variables from a .env style file without overriding
// variables already set in the environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func Load() (*Config, error) {
	p := &parser{}
	cfg := &Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		ModelBackend:       strings.ToLower(getEnv("MODEL_BACKEND", BackendOpenAI)),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		ClaudeAPIKey:       getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:        getEnv("CLAUDE_MODEL", "claude-sonnet-4-5"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OllamaHost:         getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:        getEnv("OLLAMA_MODEL", "llava"),
		ModelTimeout:       p.duration("MODEL_TIMEOUT", 45*time.Second),
		MaxImageDimension:  p.int("MAX_IMAGE_DIMENSION", 1568),
		SessionTTL:         p.duration("SESSION_TTL", 30*time.Minute),
		SessionMax:         p.int("SESSION_MAX", 1000),
		RateLimitRPS:       p.float("RATE_LIMIT_RPS", 1),
		RateLimitBurst:     p.int("RATE_LIMIT_BURST", 5),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		LogFile:            getEnv("LOG_FILE", ""),
	}

	switch cfg.ModelBackend {
	case BackendOpenAI, BackendClaude, BackendGemini, BackendOllama:
	default:
		p.errs = append(p.errs, fmt.Errorf("MODEL_BACKEND: unknown backend %q", cfg.ModelBackend))
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

// parser collects every malformed variable so they can be reported together.
type parser struct {
	errs []error
}

func (p *parser) duration(key string, defaultVal time.Duration) time.Duration {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a positive duration", key, val))
		return defaultVal
	}
	return d
}

func (p *parser) int(key string, defaultVal int) int {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a non-negative integer", key, val))
		return defaultVal
	}
	return n
}

func (p *parser) float(key string, defaultVal float64) float64 {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f < 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a non-negative number", key, val))
		return defaultVal
	}
	return f
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
