package usecase_test

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/m-mizutani/gt"

	"github.com/fataldecomp/roller-installer/pkg/domain/model"
	"github.com/fataldecomp/roller-installer/pkg/extract"
	"github.com/fataldecomp/roller-installer/pkg/usecase"
	"github.com/fataldecomp/roller-installer/pkg/utils/platform"
	"github.com/fataldecomp/roller-installer/pkg/utils/toolpath"
)

type mockReleaseClient struct {
	latestFn func(ctx context.Context, includePrerelease bool) (*model.ReleaseInfo, error)
	byTagFn  func(ctx context.Context, tag string) (*model.ReleaseInfo, error)
	listFn   func(ctx context.Context, limit int, includePrerelease bool) ([]*model.ReleaseInfo, error)
}

func (m *mockReleaseClient) LatestRelease(ctx context.Context, includePrerelease bool) (*model.ReleaseInfo, error) {
	return m.latestFn(ctx, includePrerelease)
}

func (m *mockReleaseClient) ReleaseByTag(ctx context.Context, tag string) (*model.ReleaseInfo, error) {
	return m.byTagFn(ctx, tag)
}

func (m *mockReleaseClient) ListReleases(ctx context.Context, limit int, includePrerelease bool) ([]*model.ReleaseInfo, error) {
	return m.listFn(ctx, limit, includePrerelease)
}

// mockDownloader copies pre-built fixture files into the destination
// instead of touching the network. Keys are download URLs.
type mockDownloader struct {
	files map[string]string
	calls []string
}

func (m *mockDownloader) Download(ctx context.Context, url, destDir string) (string, error) {
	m.calls = append(m.calls, url)

	src, ok := m.files[url]
	if !ok {
		return "", os.ErrNotExist
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	dst := filepath.Join(destDir, filepath.Base(src))
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", err
	}
	return dst, nil
}

// createDataZip builds a release-asset style archive with a FATDATA tree.
func createDataZip(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "roller-data.zip")
	f, err := os.Create(path)
	gt.NoError(t, err)
	w := zip.NewWriter(f)

	for name, body := range map[string]string{
		"FATDATA/TRACK01.TRK": "track data",
		"FATDATA/CARS.DAT":    "car data",
	} {
		entry, err := w.Create(name)
		gt.NoError(t, err)
		_, err = entry.Write([]byte(body))
		gt.NoError(t, err)
	}

	gt.NoError(t, w.Close())
	gt.NoError(t, f.Close())
	return path
}

func stableRelease(url string) *model.ReleaseInfo {
	return &model.ReleaseInfo{
		TagName:     "v1.2.0",
		Name:        "Stable",
		PublishedAt: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Assets: []model.ReleaseAsset{
			{Name: "roller-data.zip", Size: 1024, DownloadURL: url},
		},
	}
}

func TestInstall(t *testing.T) {
	ctx := context.Background()
	zipPath := createDataZip(t)

	const url = "https://example.com/roller-data.zip"
	releases := &mockReleaseClient{
		latestFn: func(ctx context.Context, includePrerelease bool) (*model.ReleaseInfo, error) {
			return stableRelease(url), nil
		},
	}
	downloader := &mockDownloader{files: map[string]string{url: zipPath}}
	uc := usecase.NewInstall(releases, downloader, extract.NewRegistry(toolpath.New()))

	installDir := t.TempDir()
	state, err := uc.Install(ctx, &model.InstallRequest{InstallDir: installDir})
	gt.NoError(t, err)
	gt.Value(t, state.Tag).Equal("v1.2.0")
	gt.Array(t, downloader.calls).Length(1)

	data, err := os.ReadFile(filepath.Join(state.AssetDir, "CARS.DAT"))
	gt.NoError(t, err)
	gt.Value(t, string(data)).Equal("car data")

	saved, err := model.LoadInstallState(installDir)
	gt.NoError(t, err)
	gt.Value(t, saved).NotNil()
	gt.Value(t, saved.Tag).Equal("v1.2.0")

	// data-only release, no executable installed
	gt.Value(t, saved.Executable).Equal("")
}

func TestInstall_BinaryAsset(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures are not available on windows")
	}

	ctx := context.Background()
	zipPath := createDataZip(t)

	binName := "roller-" + platform.Identifier() + platform.ExeSuffix()
	binPath := filepath.Join(t.TempDir(), binName)
	gt.NoError(t, os.WriteFile(binPath, []byte("#!/bin/sh\nexit 0\n"), 0o755))

	const zipURL = "https://example.com/roller-data.zip"
	binURL := "https://example.com/" + binName
	releases := &mockReleaseClient{
		latestFn: func(ctx context.Context, includePrerelease bool) (*model.ReleaseInfo, error) {
			return &model.ReleaseInfo{
				TagName: "v1.2.0",
				Assets: []model.ReleaseAsset{
					{Name: "roller-data.zip", DownloadURL: zipURL},
					{Name: binName, DownloadURL: binURL},
				},
			}, nil
		},
	}
	downloader := &mockDownloader{files: map[string]string{
		zipURL: zipPath,
		binURL: binPath,
	}}
	uc := usecase.NewInstall(releases, downloader, extract.NewRegistry(toolpath.New()))

	installDir := t.TempDir()
	state, err := uc.Install(ctx, &model.InstallRequest{InstallDir: installDir})
	gt.NoError(t, err)
	gt.Value(t, state.Executable).Equal(filepath.Join(installDir, "roller"))
	gt.Array(t, downloader.calls).Length(2)

	info, err := os.Stat(state.Executable)
	gt.NoError(t, err)
	gt.Value(t, info.Mode().Perm()&0o100 != 0).Equal(true)

	saved, err := model.LoadInstallState(installDir)
	gt.NoError(t, err)
	gt.Value(t, saved.Executable).Equal(state.Executable)
}

func TestInstall_LockedDirectory(t *testing.T) {
	ctx := context.Background()

	const url = "https://example.com/roller-data.zip"
	releases := &mockReleaseClient{
		latestFn: func(ctx context.Context, includePrerelease bool) (*model.ReleaseInfo, error) {
			return stableRelease(url), nil
		},
	}
	uc := usecase.NewInstall(releases, &mockDownloader{}, extract.NewRegistry(toolpath.New()))

	installDir := t.TempDir()
	prior := &model.InstallState{Tag: "v1.2.0", InstalledAt: time.Now().UTC()}
	gt.NoError(t, prior.Save(installDir))

	// Hold the install lock as a concurrent install would. Even an
	// already-satisfied request must wait for the lock rather than trust
	// state it read while another install may be rewriting it.
	lock := flock.New(filepath.Join(installDir, ".install.lock"))
	locked, err := lock.TryLock()
	gt.NoError(t, err)
	gt.Value(t, locked).Equal(true)
	defer func() {
		_ = lock.Unlock()
	}()

	_, err = uc.Install(ctx, &model.InstallRequest{InstallDir: installDir})
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("another install is already running")
}

func TestInstall_AlreadyInstalled(t *testing.T) {
	ctx := context.Background()
	zipPath := createDataZip(t)

	const url = "https://example.com/roller-data.zip"
	releases := &mockReleaseClient{
		latestFn: func(ctx context.Context, includePrerelease bool) (*model.ReleaseInfo, error) {
			return stableRelease(url), nil
		},
	}
	downloader := &mockDownloader{files: map[string]string{url: zipPath}}
	uc := usecase.NewInstall(releases, downloader, extract.NewRegistry(toolpath.New()))

	installDir := t.TempDir()
	prior := &model.InstallState{Tag: "v1.2.0", InstalledAt: time.Now().UTC()}
	gt.NoError(t, prior.Save(installDir))

	state, err := uc.Install(ctx, &model.InstallRequest{InstallDir: installDir})
	gt.NoError(t, err)
	gt.Value(t, state.Tag).Equal("v1.2.0")
	gt.Array(t, downloader.calls).Length(0)
}

func TestInstall_ForceReinstalls(t *testing.T) {
	ctx := context.Background()
	zipPath := createDataZip(t)

	const url = "https://example.com/roller-data.zip"
	releases := &mockReleaseClient{
		latestFn: func(ctx context.Context, includePrerelease bool) (*model.ReleaseInfo, error) {
			return stableRelease(url), nil
		},
	}
	downloader := &mockDownloader{files: map[string]string{url: zipPath}}
	uc := usecase.NewInstall(releases, downloader, extract.NewRegistry(toolpath.New()))

	installDir := t.TempDir()
	prior := &model.InstallState{Tag: "v1.2.0", InstalledAt: time.Now().UTC()}
	gt.NoError(t, prior.Save(installDir))

	_, err := uc.Install(ctx, &model.InstallRequest{InstallDir: installDir, Force: true})
	gt.NoError(t, err)
	gt.Array(t, downloader.calls).Length(1)
}

func TestInstall_ByTag(t *testing.T) {
	ctx := context.Background()
	zipPath := createDataZip(t)

	const url = "https://example.com/roller-data.zip"
	releases := &mockReleaseClient{
		byTagFn: func(ctx context.Context, tag string) (*model.ReleaseInfo, error) {
			gt.Value(t, tag).Equal("v1.2.0")
			return stableRelease(url), nil
		},
	}
	downloader := &mockDownloader{files: map[string]string{url: zipPath}}
	uc := usecase.NewInstall(releases, downloader, extract.NewRegistry(toolpath.New()))

	state, err := uc.Install(ctx, &model.InstallRequest{
		Tag:        "v1.2.0",
		InstallDir: t.TempDir(),
	})
	gt.NoError(t, err)
	gt.Value(t, state.Tag).Equal("v1.2.0")
}

func TestInstall_NoDataAsset(t *testing.T) {
	ctx := context.Background()

	releases := &mockReleaseClient{
		latestFn: func(ctx context.Context, includePrerelease bool) (*model.ReleaseInfo, error) {
			return &model.ReleaseInfo{
				TagName: "v1.2.0",
				Assets: []model.ReleaseAsset{
					{Name: "README.md", DownloadURL: "https://example.com/README.md"},
				},
			}, nil
		},
	}
	uc := usecase.NewInstall(releases, &mockDownloader{}, extract.NewRegistry(toolpath.New()))

	_, err := uc.Install(ctx, &model.InstallRequest{InstallDir: t.TempDir()})
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("no game data asset")
}

func TestInstall_CueWithoutBin(t *testing.T) {
	ctx := context.Background()

	releases := &mockReleaseClient{
		latestFn: func(ctx context.Context, includePrerelease bool) (*model.ReleaseInfo, error) {
			return &model.ReleaseInfo{
				TagName: "v1.2.0",
				Assets: []model.ReleaseAsset{
					{Name: "roller-data.cue", DownloadURL: "https://example.com/roller-data.cue"},
				},
			}, nil
		},
	}
	uc := usecase.NewInstall(releases, &mockDownloader{}, extract.NewRegistry(toolpath.New()))

	_, err := uc.Install(ctx, &model.InstallRequest{InstallDir: t.TempDir()})
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("no matching bin track")
}

func TestInstall_PrefersZipOverDiscImages(t *testing.T) {
	ctx := context.Background()
	zipPath := createDataZip(t)

	const zipURL = "https://example.com/roller-data.zip"
	releases := &mockReleaseClient{
		latestFn: func(ctx context.Context, includePrerelease bool) (*model.ReleaseInfo, error) {
			return &model.ReleaseInfo{
				TagName: "v1.2.0",
				Assets: []model.ReleaseAsset{
					{Name: "roller-data.iso", DownloadURL: "https://example.com/roller-data.iso"},
					{Name: "roller-data.zip", DownloadURL: zipURL},
				},
			}, nil
		},
	}
	downloader := &mockDownloader{files: map[string]string{zipURL: zipPath}}
	uc := usecase.NewInstall(releases, downloader, extract.NewRegistry(toolpath.New()))

	_, err := uc.Install(ctx, &model.InstallRequest{InstallDir: t.TempDir()})
	gt.NoError(t, err)
	gt.Array(t, downloader.calls).Length(1)
	gt.Value(t, downloader.calls[0]).Equal(zipURL)
}
