package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	StoreDriver        string
	SupabaseURL        string
	SupabaseServiceKey string
	DatabaseURL        string

	RedisAddr     string
	RedisPassword string
	CrawlSchedule string

	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string
	RedditAuthURL      string
	RedditAPIBase      string
	GitHubToken        string
	GitHubAPIBase      string

	LLMProvider     string
	GeminiAPIKey    string
	DefaultLLMModel string

	SourceRequestDelay time.Duration
	AnalysisDelay      time.Duration
	HTTPTimeout        time.Duration
}

// HasRedditCredentials reports whether forum crawling can run at all.
func (c Config) HasRedditCredentials() bool {
	return c.RedditClientID != "" && c.RedditClientSecret != ""
}

// SchedulingEnabled reports whether the periodic crawl task should be registered.
func (c Config) SchedulingEnabled() bool {
	return c.RedisAddr != "" && c.CrawlSchedule != ""
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// bare integers are milliseconds
		if ms, convErr := strconv.Atoi(v); convErr == nil {
			return time.Duration(ms) * time.Millisecond
		}
		return def
	}
	return d
}

func Load() Config {
	cfg := Config{
		AppEnv:   getenv("APP_ENV", "development"),
		HTTPAddr: getenv("HTTP_ADDR", ":8081"),

		StoreDriver:        getenv("STORE_DRIVER", "supabase"),
		SupabaseURL:        getenv("SUPABASE_URL", os.Getenv("NEXT_PUBLIC_SUPABASE_URL")),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CrawlSchedule: os.Getenv("CRAWL_SCHEDULE"),

		RedditClientID:     os.Getenv("REDDIT_CLIENT_ID"),
		RedditClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
		RedditUserAgent:    getenv("REDDIT_USER_AGENT", "promptcrawler/1.0"),
		RedditAuthURL:      getenv("REDDIT_AUTH_URL", "https://www.reddit.com/api/v1/access_token"),
		RedditAPIBase:      getenv("REDDIT_API_BASE", "https://oauth.reddit.com"),
		GitHubToken:        os.Getenv("GITHUB_TOKEN"),
		GitHubAPIBase:      getenv("GITHUB_API_BASE", "https://api.github.com"),

		LLMProvider:     getenv("LLM_PROVIDER", "gemini"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		DefaultLLMModel: getenv("DEFAULT_LLM_MODEL", "gemini-1.5-flash"),

		SourceRequestDelay: getenvDuration("SOURCE_REQUEST_DELAY", 2*time.Second),
		AnalysisDelay:      getenvDuration("ANALYSIS_DELAY", time.Second),
		HTTPTimeout:        time.Duration(getenvInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
	}
	if err := cfg.validate(); err != nil {
		panic(err)
	}
	return cfg
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case "supabase":
		if c.SupabaseURL == "" || c.SupabaseServiceKey == "" {
			return fmt.Errorf("STORE_DRIVER=supabase requires SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("STORE_DRIVER=postgres requires DATABASE_URL")
		}
	case "memory":
		if c.AppEnv == "production" {
			return fmt.Errorf("STORE_DRIVER=memory is not allowed in production")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.CrawlSchedule != "" && c.RedisAddr == "" {
		return fmt.Errorf("CRAWL_SCHEDULE requires REDIS_ADDR")
	}
	return nil
}
