package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Paths   PathsConfig
	Extract ExtractConfig
	LLM     LLMConfig
	Retry   RetryConfig
}

// PathsConfig holds directory layout configuration
type PathsConfig struct {
	InputDir       string
	OutputDir      string
	UnprocessedDir string // subdirectory of OutputDir for failed files
	ProcessingDir  string // state directory created under InputDir
	ProgressFile   string // filename inside ProcessingDir
}

// ExtractConfig holds content-extraction configuration
type ExtractConfig struct {
	Pdftotext     string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm      string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit
	MinTextLen    int    // below this, a PDF text layer is treated as scanned
	MaxFileBytes  int64  // size ceiling; oversized files get sentinel text
}

// LLMConfig holds provider configuration. The API key is resolved from the
// environment by the provider client itself and is never written to disk.
type LLMConfig struct {
	Provider        string
	Model           string
	BaseURL         string
	Temperature     float32
	Timeout         time.Duration
	MaxContentChars int
}

// RetryConfig holds bounded-retry configuration
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// LoadConfig loads configuration from environment variables. If
// CONTENT_TAMER_SETTINGS names a YAML settings file, its non-secret fields
// are overlaid on top of the environment defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Paths: PathsConfig{
			InputDir:       getEnv("CT_INPUT_DIR", ""),
			OutputDir:      getEnv("CT_OUTPUT_DIR", ""),
			UnprocessedDir: getEnv("CT_UNPROCESSED_DIR", "unprocessed"),
			ProcessingDir:  getEnv("CT_PROCESSING_DIR", ".processing"),
			ProgressFile:   getEnv("CT_PROGRESS_FILE", "progress.log"),
		},
		Extract: ExtractConfig{
			Pdftotext:     getEnv("CT_PDFTOTEXT", "pdftotext"),
			Pdftoppm:      getEnv("CT_PDFTOPPM", "pdftoppm"),
			Tesseract:     getEnv("CT_TESSERACT", "tesseract"),
			TesseractLang: getEnv("CT_TESSERACT_LANG", "eng"),
			DPI:           getEnvAsInt("CT_OCR_DPI", 300),
			MaxPages:      getEnvAsInt("CT_OCR_MAX_PAGES", 0),
			MinTextLen:    getEnvAsInt("CT_MIN_TEXT_LEN", 50),
			MaxFileBytes:  getEnvAsInt64("CT_MAX_FILE_BYTES", 50<<20),
		},
		LLM: LLMConfig{
			Provider:        getEnv("CT_PROVIDER", "openai"),
			Model:           getEnv("CT_MODEL", ""),
			BaseURL:         getEnv("CT_BASE_URL", ""),
			Temperature:     getEnvAsFloat32("CT_TEMPERATURE", 0.0),
			Timeout:         getEnvAsDuration("CT_LLM_TIMEOUT", 30*time.Second),
			MaxContentChars: getEnvAsInt("CT_MAX_CONTENT_CHARS", 8000),
		},
		Retry: RetryConfig{
			MaxAttempts: getEnvAsInt("CT_RETRY_MAX_ATTEMPTS", 3),
			BaseDelay:   getEnvAsDuration("CT_RETRY_BASE_DELAY", 500*time.Millisecond),
			MaxDelay:    getEnvAsDuration("CT_RETRY_MAX_DELAY", 10*time.Second),
		},
	}

	if path := os.Getenv("CONTENT_TAMER_SETTINGS"); path != "" {
		if err := cfg.applySettingsFile(path); err != nil {
			return nil, WrapError(err, "load settings file")
		}
	}
	return cfg, nil
}

// Settings is the YAML settings file shape. Secrets (API keys) are
// intentionally absent: keys come only from the environment.
type Settings struct {
	InputDirectory  string `yaml:"input_directory"`
	OutputDirectory string `yaml:"output_directory"`
	Provider        string `yaml:"provider"`
	Model           string `yaml:"model"`
	BaseURL         string `yaml:"base_url"`
	OCRLanguage     string `yaml:"ocr_language"`
	MaxFileBytes    int64  `yaml:"max_file_bytes"`
	RetryAttempts   int    `yaml:"retry_attempts"`
}

func (c *Config) applySettingsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if s.InputDirectory != "" {
		c.Paths.InputDir = s.InputDirectory
	}
	if s.OutputDirectory != "" {
		c.Paths.OutputDir = s.OutputDirectory
	}
	if s.Provider != "" {
		c.LLM.Provider = s.Provider
	}
	if s.Model != "" {
		c.LLM.Model = s.Model
	}
	if s.BaseURL != "" {
		c.LLM.BaseURL = s.BaseURL
	}
	if s.OCRLanguage != "" {
		c.Extract.TesseractLang = s.OCRLanguage
	}
	if s.MaxFileBytes > 0 {
		c.Extract.MaxFileBytes = s.MaxFileBytes
	}
	if s.RetryAttempts > 0 {
		c.Retry.MaxAttempts = s.RetryAttempts
	}
	return nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Paths.InputDir == "" {
		return NewAppError(KindExtraction, "input directory is required", ErrInvalidInput)
	}
	if c.Paths.OutputDir == "" {
		return NewAppError(KindExtraction, "output directory is required", ErrInvalidInput)
	}
	if c.LLM.Provider == "" {
		return NewAppError(KindPermanentProvider, "provider is required", ErrInvalidInput)
	}
	if c.Retry.MaxAttempts < 1 {
		return NewAppError(KindExtraction, "retry attempts must be >= 1", ErrInvalidInput)
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

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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
