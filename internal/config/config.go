package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Storage
	Storage    string // sqlite | redis | memory
	StorageKey string // namespace key of the collection
	DataDir    string // sqlite database directory

	// Redis (only read when Storage == redis)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	// Favicons
	FaviconService  string        // favicon-by-domain service, empty = origin only
	FaviconSize     int           // requested pixel size
	FaviconTimeout  time.Duration // per-image check timeout
	FaviconParallel int           // concurrent checks for batch resolution

	// Outbound fetches of user supplied URLs
	FetchPrivate bool // true => allow loopback, private and link-local targets

	// Metadata autofill
	MetadataURL     string        // remote collaborator, empty = built-in scraper
	MetadataTimeout time.Duration // per-lookup timeout

	// Homepage import (optional)
	BookmarkFile   string        // bookmarks.yaml, empty = disabled
	ServicesFile   string        // services.yaml, empty = disabled
	ImportInterval time.Duration // 0 = no periodic import
	WatchFiles     bool          // re-import when the files change

	// Access restrictions
	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	// Rate limit of the metadata endpoint, which fetches third-party pages
	ScrapeBurst  int
	ScrapePerMin int
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SHELF_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SHELF_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("SHELF_REQUEST_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("SHELF_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SHELF_PRETTY_LOG", true),

		// Storage
		Storage:    strings.ToLower(getenv("SHELF_STORAGE", StorageSQLite)),
		StorageKey: getenv("SHELF_STORAGE_KEY", "shelf:resources"),
		DataDir:    getenv("SHELF_DATA_DIR", "./data"),

		// Redis settings
		RedisUser:           getenv("SHELF_REDIS_USERNAME", ""),
		RedisPassword:       getenv("SHELF_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("SHELF_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Favicons
		FaviconService:  getenv("SHELF_FAVICON_SERVICE", "https://www.google.com/s2/favicons"),
		FaviconSize:     getenvInt("SHELF_FAVICON_SIZE", 64),
		FaviconTimeout:  mustDuration("SHELF_FAVICON_TIMEOUT", 3*time.Second),
		FaviconParallel: getenvInt("SHELF_FAVICON_PARALLEL", 8),

		FetchPrivate: mustBool("SHELF_FETCH_PRIVATE", false),

		// Metadata
		MetadataURL:     getenv("SHELF_METADATA_URL", ""),
		MetadataTimeout: mustDuration("SHELF_METADATA_TIMEOUT", 5*time.Second),

		// Homepage import
		BookmarkFile:   getenv("SHELF_BOOKMARK_FILE", ""),
		ServicesFile:   getenv("SHELF_SERVICES_FILE", ""),
		ImportInterval: mustDuration("SHELF_IMPORT_INTERVAL", 0),
		WatchFiles:     mustBool("SHELF_WATCH_BOOKMARKS", true),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("SHELF_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("SHELF_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("SHELF_TRUST_PROXY", false),

		ScrapeBurst:  getenvInt("SHELF_SCRAPE_BURST", 10),
		ScrapePerMin: getenvInt("SHELF_SCRAPE_PER_MIN", 30),
	}

	if cfg.Storage == StorageRedis {
		cfg.RedisAddr = requireEnv("SHELF_REDIS_ADDR")
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageSQLite:
		if c.DataDir == "" {
			return fmt.Errorf("SHELF_DATA_DIR is required for sqlite storage")
		}
	case StorageRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("SHELF_REDIS_ADDR is required for redis storage")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown SHELF_STORAGE %q (want sqlite, redis or memory)", c.Storage)
	}
	if c.StorageKey == "" {
		return fmt.Errorf("SHELF_STORAGE_KEY must not be empty")
	}
	if c.FaviconSize <= 0 {
		return fmt.Errorf("SHELF_FAVICON_SIZE must be positive, got %d", c.FaviconSize)
	}
	if c.ImportInterval < 0 {
		return fmt.Errorf("SHELF_IMPORT_INTERVAL must not be negative")
	}
	return nil
}

// ImportEnabled reports whether any Homepage file is configured.
func (c *Config) ImportEnabled() bool {
	return c.BookmarkFile != "" || c.ServicesFile != ""
}

// DatabasePath is where the sqlite backend keeps its file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "shelf.db")
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
