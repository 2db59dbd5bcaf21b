package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"time"
)

// RateLimitConfig bounds how many flip frames a single WebSocket
// connection may send in a burst (golang.org/x/time/rate semantics:
// PerSecond tokens refill the bucket, Burst caps it).
type RateLimitConfig struct {
	PerSecond float64 `json:"per_second"`
	Burst     int     `json:"burst"`
}

// Config holds all configurable server parameters.
type Config struct {
	// DefaultBoardRows/Cols size a freshly generated board when a session
	// is created without an explicit board file.
	DefaultBoardRows int `json:"default_board_rows"`
	DefaultBoardCols int `json:"default_board_cols"`

	// MaxNameLength bounds a player's display name, set via the
	// wire-level setName message.
	MaxNameLength int `json:"max_name_length"`

	// WSPort is the port the HTTP/WebSocket listener binds.
	WSPort int `json:"ws_port"`

	// FlipWaitTimeoutMS bounds how long a suspended FlipUp call issued by
	// the WebSocket transport may wait before it is cancelled with a
	// timeout error. Zero disables the bound.
	FlipWaitTimeoutMS int `json:"flip_wait_timeout_ms"`

	// FlipRateLimit throttles inbound flip frames per connection.
	FlipRateLimit RateLimitConfig `json:"flip_rate_limit"`

	// AuthBaseURL is the JWKS-backed issuer used to validate player
	// bearer tokens; empty disables token auth (connections are then
	// anonymous, identified by a generated id).
	AuthBaseURL string `json:"auth_base_url"`

	// BoardFiles maps a session name to a board-file path (the format
	// boardfile.Parse reads). Each entry is loaded and installed under
	// its session name at startup, before any client has joined it; a
	// session name absent from this map still gets a fresh random board
	// on first join, as usual.
	BoardFiles map[string]string `json:"board_files"`
}

// FlipWaitTimeout returns FlipWaitTimeoutMS as a time.Duration, or 0 (no
// bound) when unset.
func (c *Config) FlipWaitTimeout() time.Duration {
	if c.FlipWaitTimeoutMS <= 0 {
		return 0
	}
	return time.Duration(c.FlipWaitTimeoutMS) * time.Millisecond
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		DefaultBoardRows:  4,
		DefaultBoardCols:  4,
		MaxNameLength:     24,
		WSPort:            8080,
		FlipWaitTimeoutMS: 10_000,
		FlipRateLimit:     RateLimitConfig{PerSecond: 5, Burst: 10},
	}
}

// Load reads configuration from an optional config.json file,
// then applies environment variable overrides. Fields not set
// in either source retain their default values.
func Load() *Config {
	cfg := Defaults()

	// Try to load from config.json
	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			log.Printf("Warning: failed to parse config.json: %v", err)
		}
	}

	// Environment variable overrides
	overrideInt(&cfg.DefaultBoardRows, "BOARD_ROWS")
	overrideInt(&cfg.DefaultBoardCols, "BOARD_COLS")
	overrideInt(&cfg.MaxNameLength, "MAX_NAME_LENGTH")
	overrideInt(&cfg.WSPort, "WS_PORT")
	overrideInt(&cfg.FlipWaitTimeoutMS, "FLIP_WAIT_TIMEOUT_MS")
	overrideFloat(&cfg.FlipRateLimit.PerSecond, "FLIP_RATE_PER_SECOND")
	overrideInt(&cfg.FlipRateLimit.Burst, "FLIP_RATE_BURST")
	overrideString(&cfg.AuthBaseURL, "AUTH_BASE_URL")

	return cfg
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideFloat(field *float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*field = f
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
