package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"promptcrawler/internal/logger"
	"promptcrawler/internal/utils/markdown"
	"promptcrawler/internal/utils/pace"
)

// readmeExcerptLen bounds the README text carried on a raw item.
const readmeExcerptLen = 2000

type RepoConfig struct {
	// Token is optional; it raises the API rate limit.
	Token      string
	APIBase    string
	UserAgent  string
	Delay      time.Duration
	HTTPClient *http.Client
}

// RepoConnector runs repository searches and fetches README excerpts.
type RepoConnector struct {
	cfg    RepoConfig
	client *http.Client
	pacer  *pace.Pacer
	log    *logger.Logger
}

func NewRepoConnector(cfg RepoConfig) *RepoConnector {
	ua := cfg.UserAgent
	if ua == "" {
		ua = "promptcrawler/1.0"
	}
	return &RepoConnector{
		cfg:    cfg,
		client: withUserAgent(cfg.HTTPClient, ua),
		pacer:  pace.New(cfg.Delay),
		log:    logger.New("RepoConnector"),
	}
}

func (r *RepoConnector) Type() Type { return TypeRepo }

// Fetch runs one search per query. A repository returned by several queries
// is only emitted once per fetch.
func (r *RepoConnector) Fetch(ctx context.Context, q Query) ([]Item, error) {
	seen := make(map[string]struct{})
	var items []Item
	for _, query := range q.Units {
		if err := r.pacer.Wait(ctx); err != nil {
			return items, err
		}
		repos, err := r.search(ctx, query, q.Limit)
		if err != nil {
			if ctx.Err() != nil {
				return items, ctx.Err()
			}
			r.log.Warn().Err(err).Str("query", query).Msg("repository search failed, skipping")
			continue
		}
		kept := 0
		for _, repo := range repos {
			if repo.Stars < q.MinScore {
				continue
			}
			if _, dup := seen[repo.ID]; dup {
				continue
			}
			seen[repo.ID] = struct{}{}
			repo.ReadmeExcerpt = r.readme(ctx, repo.FullName)
			items = append(items, Item{Repo: repo})
			kept++
		}
		r.log.Info().Str("query", query).Int("found", len(repos)).Int("kept", kept).Msg("repositories searched")
	}
	return items, nil
}

func (r *RepoConnector) headers(accept string) map[string]string {
	h := map[string]string{
		"Accept":               accept,
		"X-GitHub-Api-Version": "2022-11-28",
	}
	if r.cfg.Token != "" {
		h["Authorization"] = "Bearer " + r.cfg.Token
	}
	return h
}

type githubSearch struct {
	Items []struct {
		ID          int64    `json:"id"`
		Name        string   `json:"name"`
		FullName    string   `json:"full_name"`
		Description string   `json:"description"`
		HTMLURL     string   `json:"html_url"`
		Stars       int      `json:"stargazers_count"`
		Topics      []string `json:"topics"`
		Owner       struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"items"`
}

func (r *RepoConnector) search(ctx context.Context, query string, perPage int) ([]*Repo, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "stars")
	params.Set("order", "desc")
	if perPage > 0 {
		params.Set("per_page", strconv.Itoa(perPage))
	}
	endpoint := fmt.Sprintf("%s/search/repositories?%s", strings.TrimRight(r.cfg.APIBase, "/"), params.Encode())

	var res githubSearch
	if err := getJSON(ctx, r.client, endpoint, r.headers("application/vnd.github+json"), &res); err != nil {
		return nil, err
	}

	repos := make([]*Repo, 0, len(res.Items))
	for _, it := range res.Items {
		repos = append(repos, &Repo{
			ID:          strconv.FormatInt(it.ID, 10),
			Name:        it.Name,
			FullName:    it.FullName,
			Description: it.Description,
			URL:         it.HTMLURL,
			Stars:       it.Stars,
			Topics:      it.Topics,
			Owner:       it.Owner.Login,
		})
	}
	return repos, nil
}

// readme is best effort: any failure leaves the excerpt empty.
func (r *RepoConnector) readme(ctx context.Context, fullName string) string {
	endpoint := fmt.Sprintf("%s/repos/%s/readme", strings.TrimRight(r.cfg.APIBase, "/"), fullName)
	body, err := get(ctx, r.client, endpoint, r.headers("application/vnd.github.raw"))
	if err != nil {
		r.log.LogDebugf("no README for %s: %v", fullName, err)
		return ""
	}
	text := markdown.CleanMarkdownBoilerplate(string(body))
	return markdown.Truncate(text, readmeExcerptLen, "...")
}
