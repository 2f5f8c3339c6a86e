package store

import (
	"encoding/json"
	"time"
)

// JobStatus for crawl job tracking
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// CrawlJob is one row of crawl_jobs. Counters are only meaningful once the
// job has left the running state.
type CrawlJob struct {
	ID               string     `json:"id"`
	JobType          string     `json:"job_type"`
	Status           JobStatus  `json:"status"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	ItemsFound       int        `json:"items_found"`
	ItemsNew         int        `json:"items_new"`
	PromptsExtracted int        `json:"prompts_extracted"`
}

// ConfigEntry is one row of crawl_config. Value holds the raw column text,
// normally JSON encoded.
type ConfigEntry struct {
	Key   string `json:"config_key"`
	Value string `json:"config_value"`
}

// PromptSource is the dedup registry record for one accepted raw item.
type PromptSource struct {
	ID         string          `json:"id"`
	SourceType string          `json:"source_type"`
	SourceID   string          `json:"source_id"`
	SourceURL  string          `json:"source_url"`
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	Author     string          `json:"author"`
	Score      int             `json:"score"`
	RawData    json.RawMessage `json:"raw_data"`
}

// ExtractedPrompt belongs to exactly one PromptSource (SourceID is the
// prompt_sources primary key, not the platform id).
type ExtractedPrompt struct {
	ID                string          `json:"id"`
	SourceID          string          `json:"source_id"`
	Title             string          `json:"prompt_title"`
	Content           string          `json:"prompt_content"`
	SuggestedCategory string          `json:"suggested_category"`
	QualityScore      float64         `json:"quality_score"`
	AIAnalysis        json.RawMessage `json:"ai_analysis"`
	Language          string          `json:"language"`
}
