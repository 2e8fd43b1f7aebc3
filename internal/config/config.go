package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lumadev/amazon-product-scout/internal/region"
)

type Config struct {
	Server     ServerConfig
	Fetcher    FetcherConfig
	Browser    BrowserConfig
	OCR        OCRConfig
	Extract    ExtractConfig
	Automation AutomationConfig
	Redis      RedisConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type FetcherConfig struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MinDelay   time.Duration
	MaxDelay   time.Duration
	MaxResults int
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
	ActionPause    time.Duration
}

type OCRConfig struct {
	Language   string
	Preprocess bool
}

type ExtractConfig struct {
	CurrencyMarker  string
	SponsoredMarker string
	CurrencySuffix  string
}

// AutomationConfig carries the screen-path calibration: the storefront entry
// point, the search control selector, and the hand-tuned product bounding
// boxes with the resolution they were measured at. Swapping calibration for a
// different environment means swapping this structure, not touching code.
type AutomationConfig struct {
	StoreURL          string
	SearchBoxSelector string
	SettleDelay       time.Duration
	ScreenshotDir     string
	ReferenceWidth    int
	ReferenceHeight   int
	ProductBoxes      []region.Box
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	boxes, err := parseBoxes(getEnvOrDefault("AUTOMATION_PRODUCT_BOXES", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTOMATION_PRODUCT_BOXES: %w", err)
	}
	if len(boxes) == 0 {
		boxes = defaultProductBoxes()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Fetcher: FetcherConfig{
			BaseURL:    getEnvOrDefault("FETCHER_BASE_URL", "https://www.amazon.es/s"),
			UserAgent:  getEnvOrDefault("FETCHER_USER_AGENT", ""),
			Timeout:    getDurationOrDefault("FETCHER_TIMEOUT", 15*time.Second),
			MinDelay:   getDurationOrDefault("FETCHER_MIN_DELAY", 1*time.Second),
			MaxDelay:   getDurationOrDefault("FETCHER_MAX_DELAY", 3*time.Second),
			MaxResults: getIntOrDefault("FETCHER_MAX_RESULTS", 10),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "es-ES,es;q=0.9,en;q=0.8"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "Europe/Madrid"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "es-ES"),
			ActionPause:    getDurationOrDefault("BROWSER_ACTION_PAUSE", 500*time.Millisecond),
		},
		OCR: OCRConfig{
			Language:   getEnvOrDefault("OCR_LANGUAGE", "spa"),
			Preprocess: getBoolOrDefault("OCR_PREPROCESS", true),
		},
		Extract: ExtractConfig{
			CurrencyMarker:  getEnvOrDefault("EXTRACT_CURRENCY_MARKER", "€"),
			SponsoredMarker: getEnvOrDefault("EXTRACT_SPONSORED_MARKER", "Anuncio patrocinado"),
			CurrencySuffix:  getEnvOrDefault("EXTRACT_CURRENCY_SUFFIX", "€"),
		},
		Automation: AutomationConfig{
			StoreURL:          getEnvOrDefault("AUTOMATION_STORE_URL", "https://www.amazon.es"),
			SearchBoxSelector: getEnvOrDefault("AUTOMATION_SEARCH_BOX", "input#twotabsearchtextbox"),
			SettleDelay:       getDurationOrDefault("AUTOMATION_SETTLE_DELAY", 5*time.Second),
			ScreenshotDir:     getEnvOrDefault("AUTOMATION_SCREENSHOT_DIR", "screenshots"),
			ReferenceWidth:    getIntOrDefault("AUTOMATION_REFERENCE_WIDTH", 1920),
			ReferenceHeight:   getIntOrDefault("AUTOMATION_REFERENCE_HEIGHT", 1080),
			ProductBoxes:      boxes,
		},
		Redis: RedisConfig{
			Enabled:  getBoolOrDefault("REDIS_ENABLED", false),
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
			CacheTTL: getDurationOrDefault("REDIS_CACHE_TTL", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Fetcher.MinDelay > c.Fetcher.MaxDelay {
		return fmt.Errorf("FETCHER_MIN_DELAY cannot be greater than FETCHER_MAX_DELAY")
	}

	if c.Fetcher.MaxResults < 1 {
		return fmt.Errorf("FETCHER_MAX_RESULTS must be at least 1")
	}

	for i, box := range c.Automation.ProductBoxes {
		if !box.Valid() {
			return fmt.Errorf("product box %d is degenerate: %+v", i, box)
		}
	}

	return nil
}

// defaultProductBoxes are the calibrated positions of the first four visible
// result tiles at the reference 1920x1080 viewport.
func defaultProductBoxes() []region.Box {
	return []region.Box{
		{Left: 272, Top: 356, Right: 510, Bottom: 794},
		{Left: 523, Top: 350, Right: 760, Bottom: 788},
		{Left: 773, Top: 350, Right: 1011, Bottom: 788},
		{Left: 1024, Top: 349, Right: 1261, Bottom: 787},
	}
}

// parseBoxes reads "l,t,r,b;l,t,r,b;..." into bounding boxes.
func parseBoxes(raw string) ([]region.Box, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var boxes []region.Box
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			// Tolerate a trailing or doubled separator.
			continue
		}

		fields := strings.Split(part, ",")
		if len(fields) != 4 {
			return nil, fmt.Errorf("expected 4 coordinates, got %d in %q", len(fields), part)
		}

		coords := make([]int, 4)
		for i, f := range fields {
			v, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return nil, fmt.Errorf("bad coordinate %q: %w", f, err)
			}
			coords[i] = v
		}

		boxes = append(boxes, region.Box{
			Left:   coords[0],
			Top:    coords[1],
			Right:  coords[2],
			Bottom: coords[3],
		})
	}

	return boxes, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
