package github_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	githubinfra "github.com/fataldecomp/roller-installer/pkg/infra/github"
)

const releasesJSON = `[
  {
    "tag_name": "v1.3.0-rc1",
    "name": "Release Candidate",
    "prerelease": true,
    "draft": false,
    "published_at": "2026-07-20T10:00:00Z",
    "assets": [
      {"name": "roller-data.zip", "size": 1024, "browser_download_url": "https://example.com/roller-data.zip"}
    ]
  },
  {
    "tag_name": "v1.2.0",
    "name": "Stable",
    "prerelease": false,
    "draft": false,
    "published_at": "2026-06-01T10:00:00Z",
    "assets": []
  },
  {
    "tag_name": "v1.1.0-draft",
    "name": "Draft",
    "prerelease": false,
    "draft": true,
    "published_at": "2026-05-01T10:00:00Z",
    "assets": []
  },
  {
    "tag_name": "v1.0.0",
    "name": "First",
    "prerelease": false,
    "draft": false,
    "published_at": "2026-04-01T10:00:00Z",
    "assets": []
  }
]`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/FatalDecomp/ROLLER/releases", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(releasesJSON))
	})
	mux.HandleFunc("/repos/FatalDecomp/ROLLER/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name": "v1.2.0", "name": "Stable", "prerelease": false, "published_at": "2026-06-01T10:00:00Z"}`))
	})
	mux.HandleFunc("/repos/FatalDecomp/ROLLER/releases/tags/v1.0.0", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name": "v1.0.0", "name": "First", "prerelease": false, "published_at": "2026-04-01T10:00:00Z"}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient_ListReleases(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	client, err := githubinfra.NewClient("FatalDecomp", "ROLLER", "",
		githubinfra.WithBaseURL(server.URL+"/"))
	gt.NoError(t, err)

	t.Run("includes prereleases, skips drafts", func(t *testing.T) {
		releases, err := client.ListReleases(ctx, 10, true)
		gt.NoError(t, err)
		gt.Array(t, releases).Length(3)
		gt.Value(t, releases[0].TagName).Equal("v1.3.0-rc1")
		gt.Value(t, releases[0].Prerelease).Equal(true)
		gt.Value(t, releases[1].TagName).Equal("v1.2.0")
		gt.Value(t, releases[2].TagName).Equal("v1.0.0")
	})

	t.Run("stable only", func(t *testing.T) {
		releases, err := client.ListReleases(ctx, 10, false)
		gt.NoError(t, err)
		gt.Array(t, releases).Length(2)
		gt.Value(t, releases[0].TagName).Equal("v1.2.0")
	})

	t.Run("limit", func(t *testing.T) {
		releases, err := client.ListReleases(ctx, 1, true)
		gt.NoError(t, err)
		gt.Array(t, releases).Length(1)
		gt.Value(t, releases[0].TagName).Equal("v1.3.0-rc1")
	})
}

func TestClient_LatestRelease(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	client, err := githubinfra.NewClient("FatalDecomp", "ROLLER", "",
		githubinfra.WithBaseURL(server.URL+"/"))
	gt.NoError(t, err)

	t.Run("with prereleases", func(t *testing.T) {
		rel, err := client.LatestRelease(ctx, true)
		gt.NoError(t, err)
		gt.Value(t, rel.TagName).Equal("v1.3.0-rc1")
		gt.Array(t, rel.Assets).Length(1)
		gt.Value(t, rel.Assets[0].Name).Equal("roller-data.zip")
		gt.Value(t, rel.Assets[0].Size).Equal(int64(1024))
	})

	t.Run("stable only", func(t *testing.T) {
		rel, err := client.LatestRelease(ctx, false)
		gt.NoError(t, err)
		gt.Value(t, rel.TagName).Equal("v1.2.0")
	})
}

func TestClient_ReleaseByTag(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	client, err := githubinfra.NewClient("FatalDecomp", "ROLLER", "",
		githubinfra.WithBaseURL(server.URL+"/"))
	gt.NoError(t, err)

	rel, err := client.ReleaseByTag(ctx, "v1.0.0")
	gt.NoError(t, err)
	gt.Value(t, rel.TagName).Equal("v1.0.0")

	_, err = client.ReleaseByTag(ctx, "v9.9.9")
	gt.Error(t, err)
}
