package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func envOf(values map[string]string) func(string) string {
	return func(name string) string { return values[name] }
}

func TestFromEnv_Defaults(t *testing.T) {
	req := require.New(t)

	cfg, err := FromEnv(envOf(nil))

	req.NoError(err)
	req.True(cfg.IsDevelopment())
	req.Equal(8080, cfg.Port)
	req.Empty(cfg.AllowedOrigins)
	req.NotEmpty(cfg.JWTSecret)
	req.Equal(StorePostgres, cfg.MessageStore)
	req.NotEmpty(cfg.DatabaseDSN)
	req.Equal(500*time.Millisecond, cfg.JoinInterval)
	req.Equal(50, cfg.HistoryDefaultLimit)
	req.Equal(200, cfg.HistoryMaxLimit)
}

func TestFromEnv_Production(t *testing.T) {
	req := require.New(t)

	cfg, err := FromEnv(envOf(map[string]string{
		"ENVIRONMENT":      "production",
		"PORT":             "9000",
		"ALLOWED_ORIGINS":  " https://a.example , ,https://b.example",
		"JWT_SECRET":       "s3cret",
		"MESSAGE_STORE":    "Memory",
		"JOIN_INTERVAL_MS": "250",
	}))

	req.NoError(err)
	req.False(cfg.IsDevelopment())
	req.Equal(9000, cfg.Port)
	req.Equal([]string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	req.Equal(StoreMemory, cfg.MessageStore)
	req.Empty(cfg.DatabaseDSN)
	req.Equal(250*time.Millisecond, cfg.JoinInterval)
}

func TestFromEnv_Rejects_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"privileged port":         {"PORT": "80"},
		"non numeric port":        {"PORT": "http"},
		"missing secret in prod":  {"ENVIRONMENT": "production", "MESSAGE_STORE": "memory"},
		"missing dsn in prod":     {"ENVIRONMENT": "production", "JWT_SECRET": "s"},
		"unknown store":           {"MESSAGE_STORE": "redis"},
		"zero join interval":      {"JOIN_INTERVAL_MS": "0"},
		"default above max":       {"HISTORY_DEFAULT_LIMIT": "500"},
		"non positive history":    {"HISTORY_DEFAULT_LIMIT": "-1"},
		"non numeric history max": {"HISTORY_MAX_LIMIT": "many"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envOf(env))
			require.Error(t, err)
		})
	}
}
