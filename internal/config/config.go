package config

import (
	"log"
	"os"
	"strings"
)

// Default model priority list, highest priority first.
var defaultModels = []string{
	"gemini-2.5-flash",
	"gemini-3.0-flash",
	"gemini-2.5-flash-lite",
}

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	GeminiAPIKey    string
	GeminiModels    []string
	TemplateDir     string
	UsageLogPath    string
	DatabaseURL     string
	CORSAllowOrigin []string
	ExtractPDFText  bool
}

// Load reads configuration from environment variables.
func Load() Config {
	env := normalizeEnv(getEnv("ENV", "development"))
	apiKey := os.Getenv("GEMINI_API_KEY")

	if env == "production" && apiKey == "" {
		log.Fatal("GEMINI_API_KEY is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		GeminiAPIKey:    apiKey,
		GeminiModels:    splitList(getEnv("GEMINI_MODELS", strings.Join(defaultModels, ","))),
		TemplateDir:     getEnv("TEMPLATE_DIR", "assets/templates"),
		UsageLogPath:    getEnv("USAGE_LOG_PATH", "usage_log.json"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		CORSAllowOrigin: splitList(getEnv("CORS_ALLOW_ORIGIN", "http://localhost:5173")),
		ExtractPDFText:  parseBool(os.Getenv("EXTRACT_PDF_TEXT")),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	default:
		return "development"
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
