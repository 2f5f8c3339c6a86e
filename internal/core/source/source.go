package source

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Type identifies a content platform. The values double as the
// prompt_sources.source_type column and the job types of single-source runs.
type Type string

const (
	TypeForum Type = "reddit"
	TypeRepo  Type = "github"
)

// Query is what a connector is asked to search for. Units are processed one
// at a time: subreddits for the forum connector, search queries for the
// repository connector. Items scoring below MinScore are dropped.
type Query struct {
	Units    []string
	Keyword  string
	MinScore int
	Limit    int
}

// Connector retrieves raw candidate items from one external platform.
// A failure of a single unit is logged and yields zero items for that unit;
// an error return means the connector could not run at all.
type Connector interface {
	Type() Type
	Fetch(ctx context.Context, q Query) ([]Item, error)
}

// Post is a forum search result.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	URL       string    `json:"url"`
	Score     int       `json:"score"`
	Subreddit string    `json:"subreddit"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// Repo is a code-hosting search result.
type Repo struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	FullName      string   `json:"full_name"`
	Description   string   `json:"description"`
	URL           string   `json:"url"`
	Stars         int      `json:"stars"`
	Topics        []string `json:"topics"`
	Owner         string   `json:"owner"`
	ReadmeExcerpt string   `json:"readme_excerpt"`
}

// Item holds exactly one of Post or Repo.
type Item struct {
	Post *Post
	Repo *Repo
}

func (i Item) Type() Type {
	if i.Repo != nil {
		return TypeRepo
	}
	return TypeForum
}

func (i Item) SourceID() string {
	if i.Repo != nil {
		return i.Repo.ID
	}
	if i.Post != nil {
		return i.Post.ID
	}
	return ""
}

func (i Item) URL() string {
	if i.Repo != nil {
		return i.Repo.URL
	}
	if i.Post != nil {
		return i.Post.URL
	}
	return ""
}

func (i Item) Title() string {
	if i.Repo != nil {
		return i.Repo.FullName
	}
	if i.Post != nil {
		return i.Post.Title
	}
	return ""
}

func (i Item) Author() string {
	if i.Repo != nil {
		return i.Repo.Owner
	}
	if i.Post != nil {
		return i.Post.Author
	}
	return ""
}

// Score is the platform popularity metric: post score or star count.
func (i Item) Score() int {
	if i.Repo != nil {
		return i.Repo.Stars
	}
	if i.Post != nil {
		return i.Post.Score
	}
	return 0
}

// Content is the text stored on the prompt source row. It is never empty
// for a well-formed item: posts fall back to the title, repositories to
// their description and then their name.
func (i Item) Content() string {
	switch {
	case i.Repo != nil:
		parts := make([]string, 0, 2)
		if d := strings.TrimSpace(i.Repo.Description); d != "" {
			parts = append(parts, d)
		}
		if r := strings.TrimSpace(i.Repo.ReadmeExcerpt); r != "" {
			parts = append(parts, r)
		}
		if len(parts) == 0 {
			return i.Repo.FullName
		}
		return strings.Join(parts, "\n\n")
	case i.Post != nil:
		if b := strings.TrimSpace(i.Post.Body); b != "" {
			return b
		}
		return i.Post.Title
	}
	return ""
}

// Text is the normalized text handed to the extraction stage.
func (i Item) Text() string {
	var b strings.Builder
	b.WriteString("Title: ")
	b.WriteString(i.Title())
	if i.Repo != nil && len(i.Repo.Topics) > 0 {
		b.WriteString("\nTopics: ")
		b.WriteString(strings.Join(i.Repo.Topics, ", "))
	}
	b.WriteString("\n\n")
	b.WriteString(i.Content())
	return b.String()
}

// Raw is the JSON snapshot stored as raw_data.
func (i Item) Raw() json.RawMessage {
	var v any = i.Post
	if i.Repo != nil {
		v = i.Repo
	}
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}
