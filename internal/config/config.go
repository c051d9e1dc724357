package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Game      GameConfig
	Database  DatabaseConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port      string
	Host      string
	Env       string // "development" or "production"
	PublicURL string // Base URL used in invite links; empty means derive from the request
}

// GameConfig holds game-related configuration
type GameConfig struct {
	MinPlayers           int
	MaxPlayers           int
	RoomCodeLength       int
	DefaultDifficulty    string
	DefaultTotalRounds   int
	DefaultResponseTime  time.Duration
	DefaultVotingTime    time.Duration
	RoundAnnounceDelay   time.Duration
	ResultDisplayDelay   time.Duration
	StartDelay           time.Duration
	EarlyAdvanceBuffer   time.Duration
	ReconnectGracePeriod time.Duration
	CatchRule            string // "plurality" or "majority"
}

// DatabaseConfig holds the room-metadata database configuration
type DatabaseConfig struct {
	URL     string // Empty disables the database; rooms use default settings
	Timeout time.Duration
}

// RateLimitConfig bounds inbound WebSocket events per connection
type RateLimitConfig struct {
	EventsPerSecond float64
	Burst           int
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load loads configuration from environment variables with defaults. A .env
// file in the working directory is read first when present; variables
// already set in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:      getEnv("PORT", "8080"),
			Host:      getEnv("HOST", "0.0.0.0"),
			Env:       getEnv("ENV", "development"),
			PublicURL: strings.TrimRight(getEnv("PUBLIC_URL", ""), "/"),
		},
		Game: GameConfig{
			MinPlayers:           getEnvInt("MIN_PLAYERS", 3),
			MaxPlayers:           getEnvInt("MAX_PLAYERS", 12),
			RoomCodeLength:       getEnvInt("ROOM_CODE_LENGTH", 6),
			DefaultDifficulty:    getEnv("DEFAULT_DIFFICULTY", "medium"),
			DefaultTotalRounds:   getEnvInt("DEFAULT_TOTAL_ROUNDS", 5),
			DefaultResponseTime:  getEnvSeconds("DEFAULT_RESPONSE_SECONDS", 40),
			DefaultVotingTime:    getEnvSeconds("DEFAULT_VOTING_SECONDS", 20),
			RoundAnnounceDelay:   getEnvSeconds("ROUND_ANNOUNCE_SECONDS", 3),
			ResultDisplayDelay:   getEnvSeconds("RESULT_DISPLAY_SECONDS", 8),
			StartDelay:           getEnvSeconds("START_DELAY_SECONDS", 3),
			EarlyAdvanceBuffer:   time.Duration(getEnvInt("EARLY_ADVANCE_MILLIS", 750)) * time.Millisecond,
			ReconnectGracePeriod: getEnvSeconds("RECONNECT_GRACE_PERIOD_SECONDS", 120),
			CatchRule:            getEnv("CATCH_RULE", "plurality"),
		},
		Database: DatabaseConfig{
			URL:     getEnv("DATABASE_URL", ""),
			Timeout: getEnvSeconds("DATABASE_TIMEOUT_SECONDS", 2),
		},
		RateLimit: RateLimitConfig{
			EventsPerSecond: getEnvFloat("WS_RATE_PER_SECOND", 10),
			Burst:           getEnvInt("WS_BURST", 20),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// Validate rejects configurations the game cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Game.MinPlayers < 3 {
		errs = append(errs, fmt.Errorf("MIN_PLAYERS must be at least 3, got %d", c.Game.MinPlayers))
	}
	if c.Game.MaxPlayers < c.Game.MinPlayers {
		errs = append(errs, fmt.Errorf("MAX_PLAYERS (%d) must not be below MIN_PLAYERS (%d)", c.Game.MaxPlayers, c.Game.MinPlayers))
	}
	if c.Game.RoomCodeLength < 4 || c.Game.RoomCodeLength > 12 {
		errs = append(errs, fmt.Errorf("ROOM_CODE_LENGTH must be between 4 and 12, got %d", c.Game.RoomCodeLength))
	}
	if c.Game.CatchRule != "plurality" && c.Game.CatchRule != "majority" {
		errs = append(errs, fmt.Errorf("CATCH_RULE must be plurality or majority, got %q", c.Game.CatchRule))
	}
	for name, d := range map[string]time.Duration{
		"ROUND_ANNOUNCE_SECONDS": c.Game.RoundAnnounceDelay,
		"RESULT_DISPLAY_SECONDS": c.Game.ResultDisplayDelay,
		"START_DELAY_SECONDS":    c.Game.StartDelay,
		"EARLY_ADVANCE_MILLIS":   c.Game.EarlyAdvanceBuffer,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	if c.RateLimit.EventsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("WS_RATE_PER_SECOND and WS_BURST must be positive"))
	}

	return errors.Join(errs...)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// getEnv returns an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as an integer or a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvInt(key, defaultValue)) * time.Second
}
