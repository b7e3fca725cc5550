package github

import (
	"context"
	"net/url"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fataldecomp/roller-installer/pkg/domain/interfaces"
	"github.com/fataldecomp/roller-installer/pkg/domain/model"
)

type client struct {
	gh    *github.Client
	owner string
	repo  string
}

type Option func(*client) error

// WithBaseURL points the client at a non-default API endpoint. Used by
// tests to target a local server.
func WithBaseURL(raw string) Option {
	return func(c *client) error {
		u, err := url.Parse(raw)
		if err != nil {
			return goerr.Wrap(err, "invalid API base URL", goerr.V("url", raw))
		}
		c.gh.BaseURL = u
		return nil
	}
}

// NewClient creates a release client for owner/repo. token may be empty:
// the ROLLER release endpoints are public and the token only raises rate
// limits.
func NewClient(owner, repo, token string, opts ...Option) (interfaces.ReleaseClient, error) {
	gh := github.NewClient(nil)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}

	c := &client{gh: gh, owner: owner, repo: repo}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LatestRelease returns the newest published release. With
// includePrerelease the newest of any kind wins (the API lists newest
// first); otherwise GitHub's latest-release endpoint picks the newest
// stable one.
func (c *client) LatestRelease(ctx context.Context, includePrerelease bool) (*model.ReleaseInfo, error) {
	if !includePrerelease {
		rel, _, err := c.gh.Repositories.GetLatestRelease(ctx, c.owner, c.repo)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to fetch latest release",
				goerr.V("owner", c.owner), goerr.V("repo", c.repo))
		}
		return convertRelease(rel), nil
	}

	releases, err := c.ListReleases(ctx, 1, true)
	if err != nil {
		return nil, err
	}
	if len(releases) == 0 {
		return nil, goerr.New("no releases found",
			goerr.V("owner", c.owner), goerr.V("repo", c.repo))
	}
	return releases[0], nil
}

func (c *client) ReleaseByTag(ctx context.Context, tag string) (*model.ReleaseInfo, error) {
	rel, _, err := c.gh.Repositories.GetReleaseByTag(ctx, c.owner, c.repo, tag)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch release",
			goerr.V("owner", c.owner), goerr.V("repo", c.repo), goerr.V("tag", tag))
	}
	return convertRelease(rel), nil
}

func (c *client) ListReleases(ctx context.Context, limit int, includePrerelease bool) ([]*model.ReleaseInfo, error) {
	opts := &github.ListOptions{PerPage: 100}

	var result []*model.ReleaseInfo
	for {
		releases, resp, err := c.gh.Repositories.ListReleases(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list releases",
				goerr.V("owner", c.owner), goerr.V("repo", c.repo))
		}

		for _, rel := range releases {
			if rel.GetDraft() {
				continue
			}
			if !includePrerelease && rel.GetPrerelease() {
				continue
			}
			result = append(result, convertRelease(rel))
			if limit > 0 && len(result) >= limit {
				return result, nil
			}
		}

		if resp.NextPage == 0 {
			return result, nil
		}
		opts.Page = resp.NextPage
	}
}

func convertRelease(rel *github.RepositoryRelease) *model.ReleaseInfo {
	info := &model.ReleaseInfo{
		TagName:     rel.GetTagName(),
		Name:        rel.GetName(),
		Prerelease:  rel.GetPrerelease(),
		PublishedAt: rel.GetPublishedAt().Time,
		Body:        rel.GetBody(),
	}
	for _, asset := range rel.Assets {
		info.Assets = append(info.Assets, model.ReleaseAsset{
			Name:        asset.GetName(),
			Size:        int64(asset.GetSize()),
			DownloadURL: asset.GetBrowserDownloadURL(),
		})
	}
	return info
}
