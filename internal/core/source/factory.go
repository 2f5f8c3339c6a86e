package source

import (
	"promptcrawler/internal/logger"
)

// Factory builds fresh connectors for every job run.
type Factory struct {
	forum ForumConfig
	repo  RepoConfig
	log   *logger.Logger
}

func NewFactory(forum ForumConfig, repo RepoConfig) *Factory {
	return &Factory{forum: forum, repo: repo, log: logger.New("ConnectorFactory")}
}

// Build returns one new connector per requested type, in order. The forum
// connector is left out when its credentials are not configured.
func (f *Factory) Build(types []Type) []Connector {
	out := make([]Connector, 0, len(types))
	for _, t := range types {
		switch t {
		case TypeForum:
			if f.forum.ClientID == "" || f.forum.ClientSecret == "" {
				f.log.LogWarn("reddit credentials not configured, skipping forum crawl")
				continue
			}
			out = append(out, NewForumConnector(f.forum))
		case TypeRepo:
			out = append(out, NewRepoConnector(f.repo))
		default:
			f.log.LogWarnf("no connector for source type %q", t)
		}
	}
	return out
}
