package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryDriverDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("APP_ENV", "test")

	cfg := Load()
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, 2*time.Second, cfg.SourceRequestDelay)
	assert.Equal(t, time.Second, cfg.AnalysisDelay)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.HasRedditCredentials())
	assert.False(t, cfg.SchedulingEnabled())
}

func TestLoad_DurationAcceptsMilliseconds(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("SOURCE_REQUEST_DELAY", "250")
	t.Setenv("ANALYSIS_DELAY", "1500ms")

	cfg := Load()
	assert.Equal(t, 250*time.Millisecond, cfg.SourceRequestDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.AnalysisDelay)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"supabase without key", Config{StoreDriver: "supabase", SupabaseURL: "http://x"}, true},
		{"supabase ok", Config{StoreDriver: "supabase", SupabaseURL: "http://x", SupabaseServiceKey: "k"}, false},
		{"postgres without url", Config{StoreDriver: "postgres"}, true},
		{"memory in production", Config{StoreDriver: "memory", AppEnv: "production"}, true},
		{"schedule without redis", Config{StoreDriver: "memory", CrawlSchedule: "@every 6h"}, true},
		{"unknown driver", Config{StoreDriver: "mongo"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.validate()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
