package model

import "time"

// ReleaseInfo represents a published ROLLER release on GitHub.
type ReleaseInfo struct {
	TagName     string
	Name        string
	Prerelease  bool
	PublishedAt time.Time
	Body        string
	Assets      []ReleaseAsset
}

// ReleaseAsset is a downloadable file attached to a release.
type ReleaseAsset struct {
	Name        string
	Size        int64
	DownloadURL string
}

// UpdateCheck is the result of comparing the installed version against the
// newest published release.
type UpdateCheck struct {
	CurrentTag      string
	LatestTag       string
	UpdateAvailable bool
	Release         *ReleaseInfo
}
