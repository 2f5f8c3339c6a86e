package job

import (
	"errors"
	"fmt"
	"strings"

	"promptcrawler/internal/core/source"
)

// ErrUnknownType is returned for a job type outside all|reddit|github.
var ErrUnknownType = errors.New("unknown job type")

// Type selects which source types a run crawls.
type Type string

const (
	TypeAll    Type = "all"
	TypeReddit Type = Type(source.TypeForum)
	TypeGitHub Type = Type(source.TypeRepo)
)

// ParseType maps request input to a Type. Empty input means TypeAll;
// "forum" and "repo" are accepted as aliases.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(TypeAll):
		return TypeAll, nil
	case string(TypeReddit), "forum":
		return TypeReddit, nil
	case string(TypeGitHub), "repo":
		return TypeGitHub, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Sources lists the source types of a run in crawl order.
func (t Type) Sources() []source.Type {
	switch t {
	case TypeReddit:
		return []source.Type{source.TypeForum}
	case TypeGitHub:
		return []source.Type{source.TypeRepo}
	default:
		return []source.Type{source.TypeForum, source.TypeRepo}
	}
}

// Result carries the counters of a finished run.
type Result struct {
	JobID string `json:"jobId"`
	Stats `json:"stats"`
}

// ItemsFound is the number of items that passed the connectors' score filter.
func (r *Result) ItemsFound() int { return r.RedditPosts + r.GitHubRepos }

func (r *Result) count(t source.Type, n int) {
	switch t {
	case source.TypeForum:
		r.RedditPosts += n
	case source.TypeRepo:
		r.GitHubRepos += n
	}
}

// RunRequest is the body of POST /v1/crawl. The body may be empty.
type RunRequest struct {
	JobType string `json:"jobType"`
}

type Stats struct {
	RedditPosts      int `json:"redditPosts"`
	GitHubRepos      int `json:"githubRepos"`
	ItemsNew         int `json:"itemsNew"`
	PromptsExtracted int `json:"promptsExtracted"`
}

type RunResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"jobId"`
	Stats   Stats  `json:"stats"`
}

// QueuedResponse answers an async run request. The job row appears once the
// worker picks the task up.
type QueuedResponse struct {
	Success bool   `json:"success"`
	Queued  bool   `json:"queued"`
	JobType string `json:"jobType"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
