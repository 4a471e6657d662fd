package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all server configuration
type Config struct {
	Port           int
	RetellPort     int    // Port for the Retell LLM server (used when ServerType is "both")
	ServerType     string // "relay", "retell", or "both"
	RedisURL       string
	RedisPassword  string
	MaxSessions    int
	SessionTimeout time.Duration
	AllowedOrigins []string

	OpenAIAPIKey string
	OpenAIOrgID  string
	OpenAIModel  string

	RetellAPIKey  string
	RetellAPIBase string
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	config := &Config{
		Port:           8080,
		RetellPort:     8081,
		ServerType:     "relay",
		RedisURL:       "localhost:6379",
		RedisPassword:  "",
		MaxSessions:    100,
		SessionTimeout: 30 * time.Minute,
		AllowedOrigins: []string{"*"},
		OpenAIModel:    "gpt-4",
		RetellAPIBase:  "https://api.retellai.com",
	}

	// Required: OPENAI_API_KEY
	config.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if config.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	// Required: RETELL_API_KEY
	config.RetellAPIKey = os.Getenv("RETELL_API_KEY")
	if config.RetellAPIKey == "" {
		return nil, fmt.Errorf("RETELL_API_KEY environment variable is required")
	}

	// Optional: OPENAI_ORGANIZATION_ID
	if org := os.Getenv("OPENAI_ORGANIZATION_ID"); org != "" {
		config.OpenAIOrgID = org
	}

	// Optional: OPENAI_LLM_MODEL
	if model := os.Getenv("OPENAI_LLM_MODEL"); model != "" {
		config.OpenAIModel = model
	}

	// Optional: RETELL_API_BASE
	if base := os.Getenv("RETELL_API_BASE"); base != "" {
		config.RetellAPIBase = strings.TrimRight(base, "/")
	}

	// Optional: PORT
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		config.Port = p
	}

	// Optional: REDIS_URL
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		config.RedisURL = redisURL
	}

	// Optional: REDIS_PASSWORD
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.RedisPassword = redisPassword
	}

	// Optional: MAX_SESSIONS
	if maxSessions := os.Getenv("MAX_SESSIONS"); maxSessions != "" {
		m, err := strconv.Atoi(maxSessions)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_SESSIONS: %w", err)
		}
		config.MaxSessions = m
	}

	// Optional: SESSION_TIMEOUT (in minutes)
	if timeout := os.Getenv("SESSION_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TIMEOUT: %w", err)
		}
		config.SessionTimeout = time.Duration(t) * time.Minute
	}

	// Optional: ALLOWED_ORIGINS (comma-separated)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	// Optional: SERVER_TYPE ("relay", "retell", or "both")
	if serverType := os.Getenv("SERVER_TYPE"); serverType != "" {
		switch serverType {
		case "relay", "retell", "both":
			config.ServerType = serverType
		default:
			return nil, fmt.Errorf("invalid SERVER_TYPE: must be 'relay', 'retell', or 'both'")
		}
	}

	// Optional: RETELL_PORT (used when SERVER_TYPE is "both")
	if retellPort := os.Getenv("RETELL_PORT"); retellPort != "" {
		rp, err := strconv.Atoi(retellPort)
		if err != nil {
			return nil, fmt.Errorf("invalid RETELL_PORT: %w", err)
		}
		config.RetellPort = rp
	}

	return config, nil
}
