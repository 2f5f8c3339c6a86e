package crawlconfig

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"promptcrawler/internal/core/source"
	"promptcrawler/internal/store"
)

type failingReader struct{}

func (failingReader) ListConfig(context.Context) ([]store.ConfigEntry, error) {
	return nil, errors.New("connection refused")
}

func TestLoad_EmptyStoreReturnsDefaults(t *testing.T) {
	cfg := NewLoader(store.NewMemory()).Load(context.Background())
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_StoreErrorReturnsDefaults(t *testing.T) {
	cfg := NewLoader(failingReader{}).Load(context.Background())
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_OverlaysJSONValues(t *testing.T) {
	m := store.NewMemory()
	m.SetConfig(KeyRedditSubreddits, `["PromptDesign", "  ", "ChatGPT"]`)
	m.SetConfig(KeyMinRedditScore, `25`)
	m.SetConfig(KeyGitHubQueries, `["cursor rules"]`)
	m.SetConfig(KeyMinGitHubStars, `"200"`)
	m.SetConfig(KeyQualityThreshold, `8.5`)
	m.SetConfig(KeyRedditSearchQuery, `"system prompt"`)

	cfg := NewLoader(m).Load(context.Background())

	assert.Equal(t, []string{"PromptDesign", "ChatGPT"}, cfg.RedditSubreddits)
	assert.Equal(t, 25, cfg.MinRedditScore)
	assert.Equal(t, []string{"cursor rules"}, cfg.GitHubQueries)
	assert.Equal(t, 200, cfg.MinGitHubStars)
	assert.Equal(t, 8.5, cfg.QualityThreshold)
	assert.Equal(t, "system prompt", cfg.RedditSearchQuery)
	assert.Equal(t, Defaults().RedditLimit, cfg.RedditLimit)
}

func TestLoad_RawStringFallback(t *testing.T) {
	m := store.NewMemory()
	m.SetConfig(KeyRedditSubreddits, `ChatGPT, LocalLLaMA`)
	m.SetConfig(KeyRedditSearchQuery, `prompt template`)

	cfg := NewLoader(m).Load(context.Background())

	assert.Equal(t, []string{"ChatGPT", "LocalLLaMA"}, cfg.RedditSubreddits)
	assert.Equal(t, "prompt template", cfg.RedditSearchQuery)
}

func TestLoad_BadValueDefaultsOnlyThatKey(t *testing.T) {
	m := store.NewMemory()
	m.SetConfig(KeyMinRedditScore, `lots`)
	m.SetConfig(KeyQualityThreshold, `42`)
	m.SetConfig(KeyGitHubPerPage, `2.5`)
	m.SetConfig(KeyGitHubQueries, `[1, 2]`)
	m.SetConfig(KeyMinGitHubStars, `75`)

	cfg := NewLoader(m).Load(context.Background())
	def := Defaults()

	assert.Equal(t, def.MinRedditScore, cfg.MinRedditScore)
	assert.Equal(t, def.QualityThreshold, cfg.QualityThreshold)
	assert.Equal(t, def.GitHubPerPage, cfg.GitHubPerPage)
	assert.Equal(t, def.GitHubQueries, cfg.GitHubQueries)
	assert.Equal(t, 75, cfg.MinGitHubStars)
}

func TestQueryFor(t *testing.T) {
	cfg := Defaults()

	forum := cfg.QueryFor(source.TypeForum)
	assert.Equal(t, cfg.RedditSubreddits, forum.Units)
	assert.Equal(t, "prompt", forum.Keyword)
	assert.Equal(t, 10, forum.MinScore)

	repo := cfg.QueryFor(source.TypeRepo)
	assert.Equal(t, cfg.GitHubQueries, repo.Units)
	assert.Equal(t, 50, repo.MinScore)
	assert.Equal(t, 10, repo.Limit)
}
