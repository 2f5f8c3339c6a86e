package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithConfig_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithConfig("Orchestrator", Config{IsProduction: true, AppEnv: "production", Out: &buf})

	l.Info().Str("job_id", "j-1").Int("items_new", 3).Msg("job completed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Orchestrator", line["component"])
	assert.Equal(t, "j-1", line["job_id"])
	assert.Equal(t, float64(3), line["items_new"])
	assert.Equal(t, "job completed", line["message"])
}

func TestNewWithConfig_ConsolePrefixesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithConfig("ForumConnector", Config{AppEnv: "development", Out: &buf})

	l.LogWarnf("subreddit %s failed", "ChatGPT")

	assert.Contains(t, buf.String(), "[ForumConnector] subreddit ChatGPT failed")
}

func TestNewWithConfig_TestEnvSuppressesInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithConfig("Quiet", Config{IsProduction: true, AppEnv: "test", Out: &buf})

	l.LogInfo("hidden")
	assert.Empty(t, buf.String())

	l.LogError("shown", nil)
	assert.Contains(t, buf.String(), "shown")
}
