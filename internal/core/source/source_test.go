package source

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_PostContentFallsBackToTitle(t *testing.T) {
	it := Item{Post: &Post{ID: "p1", Title: "Only a title", Body: "   ", Score: 12, Author: "u"}}

	assert.Equal(t, TypeForum, it.Type())
	assert.Equal(t, "Only a title", it.Content())
	assert.Equal(t, "Title: Only a title\n\nOnly a title", it.Text())
}

func TestItem_RawSnapshot(t *testing.T) {
	it := Item{Repo: &Repo{ID: "9", FullName: "a/b", Stars: 70, Topics: []string{"x"}}}

	var raw map[string]any
	require.NoError(t, json.Unmarshal(it.Raw(), &raw))
	assert.Equal(t, "a/b", raw["full_name"])
	assert.Equal(t, float64(70), raw["stars"])
}

func TestFactory_Build(t *testing.T) {
	withCreds := NewFactory(ForumConfig{ClientID: "id", ClientSecret: "secret"}, RepoConfig{})
	conns := withCreds.Build([]Type{TypeForum, TypeRepo})
	require.Len(t, conns, 2)
	assert.Equal(t, TypeForum, conns[0].Type())
	assert.Equal(t, TypeRepo, conns[1].Type())

	// every build hands out new instances
	again := withCreds.Build([]Type{TypeForum})
	assert.NotSame(t, conns[0], again[0])

	noCreds := NewFactory(ForumConfig{}, RepoConfig{})
	conns = noCreds.Build([]Type{TypeForum, TypeRepo})
	require.Len(t, conns, 1)
	assert.Equal(t, TypeRepo, conns[0].Type())
}
