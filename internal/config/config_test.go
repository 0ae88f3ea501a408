package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a.example, b.example", []string{"a.example", "b.example"}},
		{` "10.0.0.0/8" ,,'127.0.0.1'`, []string{"10.0.0.0/8", "127.0.0.1"}},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitAndTrim(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SHELF_STORAGE", "")
	t.Setenv("SHELF_LOG_LEVEL", "info")
	t.Setenv("SHELF_FETCH_PRIVATE", "")

	cfg := Load()
	if cfg.Storage != StorageSQLite {
		t.Errorf("Storage = %q, want %q", cfg.Storage, StorageSQLite)
	}
	if cfg.StorageKey != "shelf:resources" {
		t.Errorf("StorageKey = %q", cfg.StorageKey)
	}
	if cfg.FaviconSize != 64 || cfg.FaviconService == "" {
		t.Errorf("unexpected favicon settings %d %q", cfg.FaviconSize, cfg.FaviconService)
	}
	if cfg.ImportEnabled() {
		t.Error("ImportEnabled() should be false without files")
	}
	if cfg.FetchPrivate {
		t.Error("FetchPrivate should default to false")
	}
	if cfg.DatabasePath() != filepath.Join(cfg.DataDir, "shelf.db") {
		t.Errorf("DatabasePath() = %q", cfg.DatabasePath())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SHELF_STORAGE", "Memory")
	t.Setenv("SHELF_IMPORT_INTERVAL", "1h")
	t.Setenv("SHELF_BOOKMARK_FILE", "/etc/homepage/bookmarks.yaml")
	t.Setenv("SHELF_ALLOWED_CIDRS", "10.0.0.0/8, 192.168.1.10")
	t.Setenv("SHELF_FETCH_PRIVATE", "true")

	cfg := Load()
	if cfg.Storage != StorageMemory {
		t.Errorf("Storage = %q, want %q", cfg.Storage, StorageMemory)
	}
	if cfg.ImportInterval != time.Hour {
		t.Errorf("ImportInterval = %v, want 1h", cfg.ImportInterval)
	}
	if !cfg.ImportEnabled() {
		t.Error("ImportEnabled() should be true")
	}
	if len(cfg.AllowedCIDRS) != 2 {
		t.Errorf("AllowedCIDRS = %v", cfg.AllowedCIDRS)
	}
	if !cfg.FetchPrivate {
		t.Error("FetchPrivate should be true")
	}
}

func TestLoadRedisRequiresAddr(t *testing.T) {
	t.Setenv("SHELF_STORAGE", "redis")
	t.Setenv("SHELF_REDIS_ADDR", "")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Load() should panic without SHELF_REDIS_ADDR")
		}
	}()
	Load()
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{Storage: StorageSQLite, StorageKey: "k", DataDir: "d", FaviconSize: 32}
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown storage", func(c *Config) { c.Storage = "postgres" }, true},
		{"sqlite without dir", func(c *Config) { c.DataDir = "" }, true},
		{"redis without addr", func(c *Config) { c.Storage = StorageRedis }, true},
		{"redis with addr", func(c *Config) { c.Storage = StorageRedis; c.RedisAddr = "localhost:6379" }, false},
		{"memory", func(c *Config) { c.Storage = StorageMemory; c.DataDir = "" }, false},
		{"empty key", func(c *Config) { c.StorageKey = "" }, true},
		{"zero favicon size", func(c *Config) { c.FaviconSize = 0 }, true},
		{"negative interval", func(c *Config) { c.ImportInterval = -time.Second }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{
			name:     "true value",
			key:      "TEST_BOOL",
			value:    "true",
			def:      false,
			expected: true,
		},
		{
			name:     "false value",
			key:      "TEST_BOOL_FALSE",
			value:    "false",
			def:      true,
			expected: false,
		},
		{
			name:     "invalid value uses default",
			key:      "TEST_BOOL_INVALID",
			value:    "invalid",
			def:      true,
			expected: true,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_BOOL_MISSING",
			value:    "",
			def:      false,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}
