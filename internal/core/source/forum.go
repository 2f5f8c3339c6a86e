package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"promptcrawler/internal/logger"
	"promptcrawler/internal/utils/markdown"
	"promptcrawler/internal/utils/pace"
)

// tokenExpiryMargin is subtracted from the token lifetime so a token is never
// used in its last minute.
const tokenExpiryMargin = 60 * time.Second

type ForumConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	AuthURL      string
	APIBase      string
	Delay        time.Duration
	HTTPClient   *http.Client
}

// ForumConnector searches subreddits. One instance serves one job run; the
// access token it caches is never shared with another run.
type ForumConnector struct {
	cfg    ForumConfig
	client *http.Client
	oauth  clientcredentials.Config
	pacer  *pace.Pacer
	log    *logger.Logger
	now    func() time.Time

	token       string
	tokenExpiry time.Time
}

func NewForumConnector(cfg ForumConfig) *ForumConnector {
	return &ForumConnector{
		cfg:    cfg,
		client: withUserAgent(cfg.HTTPClient, cfg.UserAgent),
		oauth: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.AuthURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		pacer: pace.New(cfg.Delay),
		log:   logger.New("ForumConnector"),
		now:   time.Now,
	}
}

func (f *ForumConnector) Type() Type { return TypeForum }

func (f *ForumConnector) Fetch(ctx context.Context, q Query) ([]Item, error) {
	if _, err := f.accessToken(ctx); err != nil {
		return nil, fmt.Errorf("reddit token exchange: %w", err)
	}

	var items []Item
	for _, sub := range q.Units {
		if err := f.pacer.Wait(ctx); err != nil {
			return items, err
		}
		posts, err := f.search(ctx, sub, q)
		if err != nil {
			if ctx.Err() != nil {
				return items, ctx.Err()
			}
			f.log.Warn().Err(err).Str("subreddit", sub).Msg("subreddit search failed, skipping")
			continue
		}
		kept := 0
		for _, p := range posts {
			if p.Score < q.MinScore {
				continue
			}
			items = append(items, Item{Post: p})
			kept++
		}
		f.log.Info().Str("subreddit", sub).Int("found", len(posts)).Int("kept", kept).Msg("subreddit searched")
	}
	return items, nil
}

// accessToken returns the cached token or exchanges the client credentials
// for a new one.
func (f *ForumConnector) accessToken(ctx context.Context) (string, error) {
	if f.token != "" && f.now().Before(f.tokenExpiry) {
		return f.token, nil
	}
	tok, err := f.oauth.Token(context.WithValue(ctx, oauth2.HTTPClient, f.client))
	if err != nil {
		return "", err
	}
	f.token = tok.AccessToken
	f.tokenExpiry = f.now().Add(tokenValidity(tok.ExpiresIn))
	f.log.LogDebugf("obtained reddit access token valid until %s", f.tokenExpiry.Format(time.RFC3339))
	return f.token, nil
}

// tokenValidity is how long a token with the given expires_in may be reused.
// A missing lifetime counts as one hour. Lifetimes within the expiry margin
// are halved instead of reduced to nothing.
func tokenValidity(expiresIn int64) time.Duration {
	lifetime := time.Duration(expiresIn) * time.Second
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	if lifetime <= tokenExpiryMargin {
		return lifetime / 2
	}
	return lifetime - tokenExpiryMargin
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Selftext     string  `json:"selftext"`
	SelftextHTML string  `json:"selftext_html"`
	Permalink    string  `json:"permalink"`
	URL          string  `json:"url"`
	Score        int     `json:"score"`
	Subreddit    string  `json:"subreddit"`
	Author       string  `json:"author"`
	CreatedUTC   float64 `json:"created_utc"`
}

func (f *ForumConnector) search(ctx context.Context, sub string, q Query) ([]*Post, error) {
	token, err := f.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", q.Keyword)
	params.Set("restrict_sr", "1")
	params.Set("sort", "top")
	params.Set("t", "week")
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	endpoint := fmt.Sprintf("%s/r/%s/search?%s", strings.TrimRight(f.cfg.APIBase, "/"), url.PathEscape(sub), params.Encode())

	var listing redditListing
	err = getJSON(ctx, f.client, endpoint, map[string]string{"Authorization": "Bearer " + token}, &listing)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized {
			// next unit re-exchanges credentials
			f.token = ""
		}
		return nil, err
	}

	posts := make([]*Post, 0, len(listing.Data.Children))
	for _, c := range listing.Data.Children {
		posts = append(posts, toPost(c.Data))
	}
	return posts, nil
}

func toPost(d redditPost) *Post {
	body := d.Selftext
	if strings.TrimSpace(body) == "" && d.SelftextHTML != "" {
		body = markdown.ConvertHTMLToMarkdown(d.SelftextHTML)
	}
	link := d.URL
	if d.Permalink != "" {
		link = "https://www.reddit.com" + d.Permalink
	}
	sec := int64(d.CreatedUTC)
	return &Post{
		ID:        d.ID,
		Title:     d.Title,
		Body:      body,
		URL:       link,
		Score:     d.Score,
		Subreddit: d.Subreddit,
		Author:    d.Author,
		CreatedAt: time.Unix(sec, 0).UTC(),
	}
}
