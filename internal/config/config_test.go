package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid config",
			config: Config{
				Port:               "8082",
				SQLiteDBPath:       "./test.db",
				CurrencyCode:       "GBP",
				LogLevel:           "info",
				RateLimitPerMinute: 120,
			},
			wantErr: false,
		},
		{
			name: "invalid port - non-numeric",
			config: Config{
				Port:               "abc",
				SQLiteDBPath:       "./test.db",
				CurrencyCode:       "GBP",
				LogLevel:           "info",
				RateLimitPerMinute: 120,
			},
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name: "invalid port - out of range",
			config: Config{
				Port:               "70000",
				SQLiteDBPath:       "./test.db",
				CurrencyCode:       "GBP",
				LogLevel:           "info",
				RateLimitPerMinute: 120,
			},
			wantErr:     true,
			errorString: "must be between 1 and 65535",
		},
		{
			name: "empty db path",
			config: Config{
				Port:               "8082",
				SQLiteDBPath:       "",
				CurrencyCode:       "GBP",
				LogLevel:           "info",
				RateLimitPerMinute: 120,
			},
			wantErr:     true,
			errorString: "database path cannot be empty",
		},
		{
			name: "bad currency code",
			config: Config{
				Port:               "8082",
				SQLiteDBPath:       "./test.db",
				CurrencyCode:       "POUNDS",
				LogLevel:           "info",
				RateLimitPerMinute: 120,
			},
			wantErr:     true,
			errorString: "must be a 3-letter code",
		},
		{
			name: "bad log level",
			config: Config{
				Port:               "8082",
				SQLiteDBPath:       "./test.db",
				CurrencyCode:       "GBP",
				LogLevel:           "verbose",
				RateLimitPerMinute: 120,
			},
			wantErr:     true,
			errorString: "invalid log level",
		},
		{
			name: "bad rate limit",
			config: Config{
				Port:               "8082",
				SQLiteDBPath:       "./test.db",
				CurrencyCode:       "GBP",
				LogLevel:           "info",
				RateLimitPerMinute: 0,
			},
			wantErr:     true,
			errorString: "invalid rate limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Keep db files inside the test's temp dir.
			if tt.config.SQLiteDBPath != "" {
				tt.config.SQLiteDBPath = filepath.Join(t.TempDir(), "test.db")
			}

			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errorString)
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Fatalf("expected error containing %q, got %q", tt.errorString, err.Error())
				}
			} else if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8082" {
		t.Fatalf("default port: got %s", cfg.Port)
	}
	if cfg.CurrencyCode != "GBP" {
		t.Fatalf("default currency: got %s", cfg.CurrencyCode)
	}
	if cfg.RateLimitPerMinute != 120 {
		t.Fatalf("default rate limit: got %d", cfg.RateLimitPerMinute)
	}
}
