package interfaces

import (
	"context"

	"github.com/fataldecomp/roller-installer/pkg/domain/model"
)

// ReleaseClient defines operations for resolving ROLLER releases on GitHub.
type ReleaseClient interface {
	// LatestRelease returns the newest published release, optionally
	// considering prereleases.
	LatestRelease(ctx context.Context, includePrerelease bool) (*model.ReleaseInfo, error)

	// ReleaseByTag returns the release published under tag.
	ReleaseByTag(ctx context.Context, tag string) (*model.ReleaseInfo, error)

	// ListReleases returns up to limit recent releases, newest first.
	ListReleases(ctx context.Context, limit int, includePrerelease bool) ([]*model.ReleaseInfo, error)
}

// AssetDownloader fetches a release asset into destDir and returns the
// local file path.
type AssetDownloader interface {
	Download(ctx context.Context, url, destDir string) (string, error)
}
