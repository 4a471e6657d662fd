package config

import (
	"testing"
	"time"
)

// setRequired provides the two mandatory keys and clears the optional
// variables so host environment leakage cannot skew assertions.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("RETELL_API_KEY", "rk-test")
	for _, k := range []string{
		"OPENAI_ORGANIZATION_ID", "OPENAI_LLM_MODEL", "RETELL_API_BASE",
		"PORT", "RETELL_PORT", "SERVER_TYPE", "REDIS_URL", "REDIS_PASSWORD",
		"MAX_SESSIONS", "SESSION_TIMEOUT", "ALLOWED_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Port != 8080 || cfg.RetellPort != 8081 {
		t.Errorf("ports = %d/%d, want 8080/8081", cfg.Port, cfg.RetellPort)
	}
	if cfg.ServerType != "relay" {
		t.Errorf("ServerType = %q, want relay", cfg.ServerType)
	}
	if cfg.MaxSessions != 100 {
		t.Errorf("MaxSessions = %d, want 100", cfg.MaxSessions)
	}
	if cfg.SessionTimeout != 30*time.Minute {
		t.Errorf("SessionTimeout = %v, want 30m", cfg.SessionTimeout)
	}
	if cfg.OpenAIModel != "gpt-4" {
		t.Errorf("OpenAIModel = %q, want gpt-4", cfg.OpenAIModel)
	}
	if cfg.RetellAPIBase != "https://api.retellai.com" {
		t.Errorf("RetellAPIBase = %q", cfg.RetellAPIBase)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
}

func TestLoadConfigMissingRequiredKeys(t *testing.T) {
	setRequired(t)
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := LoadConfig(); err == nil {
		t.Error("expected an error without OPENAI_API_KEY")
	}

	setRequired(t)
	t.Setenv("RETELL_API_KEY", "")
	if _, err := LoadConfig(); err == nil {
		t.Error("expected an error without RETELL_API_KEY")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("RETELL_PORT", "9001")
	t.Setenv("SERVER_TYPE", "both")
	t.Setenv("MAX_SESSIONS", "5")
	t.Setenv("SESSION_TIMEOUT", "10")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("OPENAI_LLM_MODEL", "gpt-4o")
	t.Setenv("OPENAI_ORGANIZATION_ID", "org-42")
	t.Setenv("RETELL_API_BASE", "https://retell.test/")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Port != 9000 || cfg.RetellPort != 9001 {
		t.Errorf("ports = %d/%d, want 9000/9001", cfg.Port, cfg.RetellPort)
	}
	if cfg.ServerType != "both" {
		t.Errorf("ServerType = %q, want both", cfg.ServerType)
	}
	if cfg.MaxSessions != 5 {
		t.Errorf("MaxSessions = %d, want 5", cfg.MaxSessions)
	}
	if cfg.SessionTimeout != 10*time.Minute {
		t.Errorf("SessionTimeout = %v, want 10m", cfg.SessionTimeout)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://a.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.OpenAIModel != "gpt-4o" || cfg.OpenAIOrgID != "org-42" {
		t.Errorf("OpenAI settings = %q/%q", cfg.OpenAIModel, cfg.OpenAIOrgID)
	}
	if cfg.RetellAPIBase != "https://retell.test" {
		t.Errorf("RetellAPIBase = %q, trailing slash should be trimmed", cfg.RetellAPIBase)
	}
}

func TestLoadConfigInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":            "not-a-number",
		"RETELL_PORT":     "81x",
		"MAX_SESSIONS":    "many",
		"SESSION_TIMEOUT": "soon",
		"SERVER_TYPE":     "proxy",
	}
	for key, value := range cases {
		setRequired(t)
		t.Setenv(key, value)
		if _, err := LoadConfig(); err == nil {
			t.Errorf("expected an error for %s=%q", key, value)
		}
	}
}
