package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataDir             string
	HTMLFiles           []string
	CatalogPath         string
	AdsRawPath          string
	AdsEnrichedPath     string
	MissingCoveragePath string

	APIURL     string
	APIKey     string
	APISource  string
	APITimeout time.Duration
	BatchSize  int
	BatchDelay time.Duration
	MaxRetries int

	ExtractRender  bool
	ExtractWorkers int
	ChromeBin      string

	LogLevel        string
	LogFile         string
	MetricsTextfile string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	dataDir := getEnv("DATA_DIR", "data")
	return &Config{
		DataDir:             dataDir,
		HTMLFiles:           getEnvList("HTML_FILES", []string{dataDir + "/site1.html", dataDir + "/site2.html"}),
		CatalogPath:         getEnv("CATALOG_PATH", dataDir+"/output.csv"),
		AdsRawPath:          getEnv("ADS_RAW_PATH", dataDir+"/ads_raw.csv"),
		AdsEnrichedPath:     getEnv("ADS_ENRICHED_PATH", dataDir+"/ads_enriched.csv"),
		MissingCoveragePath: getEnv("MISSING_COVERAGE_PATH", dataDir+"/missing_coverage.csv"),

		APIURL:     getEnv("TOP505_API_URL", "https://top505.ru/api/item_batch"),
		APIKey:     getEnv("TOP505_API_KEY", ""),
		APISource:  getEnv("API_SOURCE", "1c"),
		APITimeout: getEnvDuration("API_TIMEOUT", 30*time.Second),
		BatchSize:  getEnvInt("BATCH_SIZE", 200),
		BatchDelay: getEnvDuration("BATCH_DELAY", 500*time.Millisecond),
		MaxRetries: getEnvInt("MAX_RETRIES", 3),

		ExtractRender:  getEnvBool("EXTRACT_RENDER", false),
		ExtractWorkers: getEnvInt("EXTRACT_WORKERS", 1),
		ChromeBin:      getEnv("CHROME_BIN", ""),

		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFile:         getEnv("LOG_FILE", "logs/api_log.txt"),
		MetricsTextfile: getEnv("METRICS_TEXTFILE", ""),
	}
}

// Validate reports settings the enrichment stage cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, errors.New("TOP505_API_KEY environment variable is not set; "+
			"set it in a .env file or your environment"))
	}
	if c.BatchSize <= 0 {
		errs = append(errs, errors.New("BATCH_SIZE must be positive"))
	}
	if c.MaxRetries <= 0 {
		errs = append(errs, errors.New("MAX_RETRIES must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("500ms") and bare seconds ("0.5").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(val, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
