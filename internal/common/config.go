package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	OCR      OCRConfig
	AI       AIConfig
	Pipeline PipelineConfig
}

// OCRConfig holds native-tool configuration for the extraction strategies.
type OCRConfig struct {
	Pdftotext string
	Mutool    string
	Pdftoppm  string
	Tesseract string
	Lang      string
	Scale     float64
	MaxPages  int
}

// AIConfig holds the augmentation-service configuration.
type AIConfig struct {
	Provider    string // "openai" | "gemini" | "" (augmentation disabled)
	Model       string
	APIKey      string
	Temperature float64
	Timeout     time.Duration
}

// PipelineConfig holds the confidence thresholds.
type PipelineConfig struct {
	HighConfidenceThreshold float64
	AIThreshold             float64
	ReviewThreshold         float64
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Mutool:    getEnv("MUTOOL_BIN", "mutool"),
			Pdftoppm:  getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract: getEnv("TESSERACT_BIN", "tesseract"),
			Lang:      getEnv("OCR_LANG", "eng"),
			Scale:     getEnvAsFloat64("OCR_SCALE", 2.0),
			MaxPages:  getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		AI: AIConfig{
			Provider:    getEnv("AI_PROVIDER", ""),
			Model:       getEnv("AI_MODEL", ""),
			APIKey:      getEnv("AI_API_KEY", ""),
			Temperature: getEnvAsFloat64("AI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("AI_TIMEOUT", 30*time.Second),
		},
		Pipeline: PipelineConfig{
			HighConfidenceThreshold: getEnvAsFloat64("HIGH_CONFIDENCE_THRESHOLD", 0.98),
			AIThreshold:             getEnvAsFloat64("AI_THRESHOLD", 0.85),
			ReviewThreshold:         getEnvAsFloat64("REVIEW_THRESHOLD", 0.75),
		},
	}
}

// Helper functions for environment variable parsing.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
