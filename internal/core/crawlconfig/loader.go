package crawlconfig

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"promptcrawler/internal/core/source"
	"promptcrawler/internal/logger"
	"promptcrawler/internal/store"
)

// Keys of the crawl_config table.
const (
	KeyRedditSubreddits  = "reddit_subreddits"
	KeyRedditSearchQuery = "reddit_search_query"
	KeyRedditLimit       = "reddit_limit"
	KeyMinRedditScore    = "min_reddit_score"
	KeyGitHubQueries     = "github_queries"
	KeyGitHubPerPage     = "github_per_page"
	KeyMinGitHubStars    = "min_github_stars"
	KeyQualityThreshold  = "quality_threshold"
)

// CrawlConfig holds the tuning parameters of one run.
type CrawlConfig struct {
	RedditSubreddits  []string `json:"reddit_subreddits"`
	RedditSearchQuery string   `json:"reddit_search_query"`
	RedditLimit       int      `json:"reddit_limit"`
	MinRedditScore    int      `json:"min_reddit_score"`
	GitHubQueries     []string `json:"github_queries"`
	GitHubPerPage     int      `json:"github_per_page"`
	MinGitHubStars    int      `json:"min_github_stars"`
	QualityThreshold  float64  `json:"quality_threshold"`
}

func Defaults() CrawlConfig {
	return CrawlConfig{
		RedditSubreddits:  []string{"ChatGPT", "PromptEngineering", "ChatGPTPromptGenius", "ClaudeAI", "LocalLLaMA"},
		RedditSearchQuery: "prompt",
		RedditLimit:       25,
		MinRedditScore:    10,
		GitHubQueries:     []string{"awesome prompts", "chatgpt prompts", "prompt engineering", "system prompts"},
		GitHubPerPage:     10,
		MinGitHubStars:    50,
		QualityThreshold:  7,
	}
}

// QueryFor returns the connector query for a source type.
func (c CrawlConfig) QueryFor(t source.Type) source.Query {
	switch t {
	case source.TypeForum:
		return source.Query{Units: c.RedditSubreddits, Keyword: c.RedditSearchQuery, MinScore: c.MinRedditScore, Limit: c.RedditLimit}
	case source.TypeRepo:
		return source.Query{Units: c.GitHubQueries, MinScore: c.MinGitHubStars, Limit: c.GitHubPerPage}
	default:
		return source.Query{}
	}
}

// Reader is the part of the store the loader needs.
type Reader interface {
	ListConfig(ctx context.Context) ([]store.ConfigEntry, error)
}

type Loader struct {
	store Reader
	log   *logger.Logger
}

func NewLoader(r Reader) *Loader {
	return &Loader{store: r, log: logger.New("ConfigLoader")}
}

// Load never fails: a store error yields the defaults, an unusable value
// yields the default for that key only.
func (l *Loader) Load(ctx context.Context) CrawlConfig {
	cfg := Defaults()
	entries, err := l.store.ListConfig(ctx)
	if err != nil {
		l.log.LogWarnf("reading crawl_config failed, using defaults: %v", err)
		return cfg
	}
	for _, e := range entries {
		v := decode(e.Value)
		ok := true
		switch e.Key {
		case KeyRedditSubreddits:
			ok = setStrings(&cfg.RedditSubreddits, v)
		case KeyRedditSearchQuery:
			ok = setString(&cfg.RedditSearchQuery, v)
		case KeyRedditLimit:
			ok = setInt(&cfg.RedditLimit, v, 1, 100)
		case KeyMinRedditScore:
			ok = setInt(&cfg.MinRedditScore, v, 0, math.MaxInt32)
		case KeyGitHubQueries:
			ok = setStrings(&cfg.GitHubQueries, v)
		case KeyGitHubPerPage:
			ok = setInt(&cfg.GitHubPerPage, v, 1, 100)
		case KeyMinGitHubStars:
			ok = setInt(&cfg.MinGitHubStars, v, 0, math.MaxInt32)
		case KeyQualityThreshold:
			ok = setFloat(&cfg.QualityThreshold, v, 0, 10)
		default:
			l.log.LogDebugf("ignoring unknown crawl_config key %q", e.Key)
		}
		if !ok {
			l.log.LogWarnf("crawl_config %s=%q unusable, keeping default", e.Key, e.Value)
		}
	}
	return cfg
}

// decode parses a stored value as JSON, falling back to the raw string.
func decode(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

func setStrings(dst *[]string, v any) bool {
	var out []string
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return false
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	default:
		return false
	}
	if len(out) == 0 {
		return false
	}
	*dst = out
	return true
}

func setString(dst *string, v any) bool {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return false
	}
	*dst = strings.TrimSpace(s)
	return true
}

func setInt(dst *int, v any, lo, hi int) bool {
	var n int
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return false
		}
		n = int(t)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return false
		}
		n = i
	default:
		return false
	}
	if n < lo || n > hi {
		return false
	}
	*dst = n
	return true
}

func setFloat(dst *float64, v any, lo, hi float64) bool {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return false
		}
		f = p
	default:
		return false
	}
	if f < lo || f > hi {
		return false
	}
	*dst = f
	return true
}
