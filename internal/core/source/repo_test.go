package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGitHub struct {
	searches atomic.Int32
	readmes  atomic.Int32
	token    string
	results  map[string]string
	readme   map[string]string
}

func (f *fakeGitHub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/repositories", func(w http.ResponseWriter, r *http.Request) {
		f.searches.Add(1)
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))
		if f.token != "" {
			assert.Equal(t, "Bearer "+f.token, r.Header.Get("Authorization"))
		} else {
			assert.Empty(t, r.Header.Get("Authorization"))
		}
		assert.Equal(t, "stars", r.URL.Query().Get("sort"))
		assert.Equal(t, "desc", r.URL.Query().Get("order"))

		body, ok := f.results[r.URL.Query().Get("q")]
		if !ok {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message":"API rate limit exceeded"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	})
	mux.HandleFunc("/repos/", func(w http.ResponseWriter, r *http.Request) {
		f.readmes.Add(1)
		assert.Equal(t, "application/vnd.github.raw", r.Header.Get("Accept"))
		full := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/repos/"), "/readme")
		text, ok := f.readme[full]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
			return
		}
		fmt.Fprint(w, text)
	})
	return mux
}

func searchResult(repos ...string) string {
	return `{"total_count":` + fmt.Sprint(len(repos)) + `,"items":[` + strings.Join(repos, ",") + `]}`
}

func repoJSON(id int, full string, stars int, desc string) string {
	owner := strings.SplitN(full, "/", 2)[0]
	return fmt.Sprintf(`{"id":%d,"name":%q,"full_name":%q,"description":%q,"html_url":"https://github.com/%s","stargazers_count":%d,"topics":["prompts","llm"],"owner":{"login":%q}}`,
		id, strings.SplitN(full, "/", 2)[1], full, desc, full, stars, owner)
}

func TestRepoConnector_StarsThresholdAndReadme(t *testing.T) {
	fake := &fakeGitHub{
		token: "ghp_test",
		results: map[string]string{
			"awesome prompts": searchResult(
				repoJSON(1, "alice/awesome-prompts", 900, "A curated list"),
				repoJSON(2, "bob/tiny", 12, "Too small"),
				repoJSON(3, "carol/system-prompts", 51, "System prompts"),
			),
		},
		readme: map[string]string{
			"alice/awesome-prompts": "# Awesome\n\n\n\nAct as a Linux terminal.",
		},
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	conn := NewRepoConnector(RepoConfig{Token: "ghp_test", APIBase: srv.URL})
	items, err := conn.Fetch(context.Background(), Query{Units: []string{"awesome prompts"}, MinScore: 50, Limit: 10})
	require.NoError(t, err)

	require.Len(t, items, 2)
	first := items[0]
	assert.Equal(t, TypeRepo, first.Type())
	assert.Equal(t, "1", first.SourceID())
	assert.Equal(t, "alice/awesome-prompts", first.Title())
	assert.Equal(t, "alice", first.Author())
	assert.Equal(t, 900, first.Score())
	assert.Equal(t, "https://github.com/alice/awesome-prompts", first.URL())
	assert.Contains(t, first.Repo.ReadmeExcerpt, "Act as a Linux terminal.")
	assert.Contains(t, first.Content(), "A curated list")
	assert.Contains(t, first.Content(), "Act as a Linux terminal.")
	assert.Contains(t, first.Text(), "Topics: prompts, llm")

	// README 404 leaves the excerpt empty and content falls back to the description
	second := items[1]
	assert.Equal(t, "3", second.SourceID())
	assert.Empty(t, second.Repo.ReadmeExcerpt)
	assert.Equal(t, "System prompts", second.Content())

	// below-threshold repositories never trigger a README request
	assert.Equal(t, int32(2), fake.readmes.Load())
}

func TestRepoConnector_NoTokenSendsNoAuthorization(t *testing.T) {
	fake := &fakeGitHub{results: map[string]string{"q": searchResult(repoJSON(7, "dan/p", 100, "d"))}}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	items, err := NewRepoConnector(RepoConfig{APIBase: srv.URL}).Fetch(context.Background(), Query{Units: []string{"q"}, MinScore: 50})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRepoConnector_FailedQuerySkippedAndDuplicatesDropped(t *testing.T) {
	shared := repoJSON(1, "alice/awesome-prompts", 900, "A curated list")
	fake := &fakeGitHub{
		results: map[string]string{
			"awesome prompts": searchResult(shared),
			"chatgpt prompts": searchResult(shared, repoJSON(4, "erin/gpt", 300, "")),
		},
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	units := []string{"awesome prompts", "rate limited", "chatgpt prompts"}
	items, err := NewRepoConnector(RepoConfig{APIBase: srv.URL}).Fetch(context.Background(), Query{Units: units, MinScore: 50})
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].SourceID())
	assert.Equal(t, "4", items[1].SourceID())
	// no description and no README: the name stands in
	assert.Equal(t, "erin/gpt", items[1].Content())
	assert.Equal(t, int32(3), fake.searches.Load())
}

func TestRepoConnector_ReadmeTruncated(t *testing.T) {
	fake := &fakeGitHub{
		results: map[string]string{"q": searchResult(repoJSON(1, "alice/long", 100, ""))},
		readme:  map[string]string{"alice/long": strings.Repeat("x", 5000)},
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	items, err := NewRepoConnector(RepoConfig{APIBase: srv.URL}).Fetch(context.Background(), Query{Units: []string{"q"}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	excerpt := items[0].Repo.ReadmeExcerpt
	assert.True(t, strings.HasSuffix(excerpt, "..."))
	assert.LessOrEqual(t, len([]rune(excerpt)), readmeExcerptLen+3)
}

func TestRepoConnector_CancelledContextStops(t *testing.T) {
	fake := &fakeGitHub{results: map[string]string{"q": searchResult()}}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRepoConnector(RepoConfig{APIBase: srv.URL}).Fetch(ctx, Query{Units: []string{"q", "q"}})
	require.ErrorIs(t, err, context.Canceled)
}
