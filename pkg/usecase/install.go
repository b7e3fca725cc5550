package usecase

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fataldecomp/roller-installer/pkg/domain/interfaces"
	"github.com/fataldecomp/roller-installer/pkg/domain/model"
	"github.com/fataldecomp/roller-installer/pkg/utils/platform"
	"github.com/fataldecomp/roller-installer/pkg/utils/toolpath"
)

type installUseCase struct {
	releases   interfaces.ReleaseClient
	downloader interfaces.AssetDownloader
	extractor  interfaces.Extractor
}

// NewInstall creates the install use case.
func NewInstall(releases interfaces.ReleaseClient, downloader interfaces.AssetDownloader, extractor interfaces.Extractor) interfaces.InstallUseCase {
	return &installUseCase{
		releases:   releases,
		downloader: downloader,
		extractor:  extractor,
	}
}

// Install resolves the requested release, downloads its game-data asset,
// extracts the FATDATA tree into the install directory, installs the
// platform's game executable when the release ships one, and records the
// installed version. A file lock on the install directory keeps two
// installs from interleaving.
func (uc *installUseCase) Install(ctx context.Context, req *model.InstallRequest) (*model.InstallState, error) {
	logger := ctxlog.From(ctx)

	release, err := uc.resolveRelease(ctx, req)
	if err != nil {
		return nil, err
	}
	logger.Info("resolved release",
		"tag", release.TagName, "prerelease", release.Prerelease)

	if err := os.MkdirAll(req.InstallDir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create install directory",
			goerr.V("dir", req.InstallDir))
	}

	lock := flock.New(filepath.Join(req.InstallDir, ".install.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to acquire install lock",
			goerr.V("dir", req.InstallDir))
	}
	if !locked {
		return nil, goerr.New("another install is already running",
			goerr.V("dir", req.InstallDir))
	}
	defer func() {
		_ = lock.Unlock()
	}()

	// The state check happens under the lock so a waiting install sees
	// what a concurrent one just wrote.
	if !req.Force {
		state, err := model.LoadInstallState(req.InstallDir)
		if err != nil {
			return nil, err
		}
		if state != nil && state.Tag == release.TagName {
			logger.Info("already installed, nothing to do", "tag", state.Tag)
			return state, nil
		}
	}

	primary, companions, err := pickDataAssets(release)
	if err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp("", "roller-install-*")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create download directory")
	}
	defer func() {
		_ = os.RemoveAll(workDir)
	}()

	src, err := uc.downloader.Download(ctx, primary.DownloadURL, workDir)
	if err != nil {
		return nil, err
	}
	for _, companion := range companions {
		if _, err := uc.downloader.Download(ctx, companion.DownloadURL, workDir); err != nil {
			return nil, err
		}
	}

	result, err := uc.extractor.Extract(ctx, src, req.InstallDir)
	if err != nil {
		return nil, err
	}

	executable, err := uc.installBinary(ctx, release, workDir, req.InstallDir)
	if err != nil {
		return nil, err
	}

	state := &model.InstallState{
		Tag:         release.TagName,
		InstalledAt: time.Now().UTC(),
		AssetDir:    result.TargetDir,
		Executable:  executable,
		AudioTracks: result.AudioTracks,
	}
	if err := state.Save(req.InstallDir); err != nil {
		return nil, err
	}

	logger.Info("install complete",
		"tag", state.Tag, "asset_dir", state.AssetDir,
		"audio_tracks", len(state.AudioTracks))

	return state, nil
}

// installBinary downloads the game executable matching this platform into
// the install directory and names it roller (roller.exe on Windows). A
// release may ship game data only; the step is then skipped.
func (uc *installUseCase) installBinary(ctx context.Context, release *model.ReleaseInfo, workDir, installDir string) (string, error) {
	logger := ctxlog.From(ctx)

	asset, ok := pickBinaryAsset(release)
	if !ok {
		logger.Warn("release has no executable for this platform, skipping binary install",
			"tag", release.TagName, "platform", platform.Identifier())
		return "", nil
	}

	src, err := uc.downloader.Download(ctx, asset.DownloadURL, workDir)
	if err != nil {
		return "", err
	}

	target := filepath.Join(installDir, "roller"+platform.ExeSuffix())
	if err := installExecutable(src, target); err != nil {
		return "", err
	}

	// A failed probe is only a hint: the game may not support --version.
	if !toolpath.Verify(ctx, target, "--version") {
		logger.Warn("installed executable failed its version probe", "path", target)
	}

	logger.Info("installed game executable", "path", target)
	return target, nil
}

// pickBinaryAsset chooses the release asset carrying the executable for
// the running platform, matched by the platform identifier in its name.
func pickBinaryAsset(release *model.ReleaseInfo) (model.ReleaseAsset, bool) {
	id := platform.Identifier()
	for _, asset := range release.Assets {
		if strings.Contains(strings.ToLower(asset.Name), id) {
			return asset, true
		}
	}
	return model.ReleaseAsset{}, false
}

func installExecutable(src, target string) error {
	in, err := os.Open(src)
	if err != nil {
		return goerr.Wrap(err, "failed to open downloaded executable",
			goerr.V("path", src))
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return goerr.Wrap(err, "failed to create executable",
			goerr.V("path", target))
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return goerr.Wrap(err, "failed to write executable",
			goerr.V("path", target))
	}
	return nil
}

func (uc *installUseCase) resolveRelease(ctx context.Context, req *model.InstallRequest) (*model.ReleaseInfo, error) {
	if req.Tag != "" {
		return uc.releases.ReleaseByTag(ctx, req.Tag)
	}
	return uc.releases.LatestRelease(ctx, req.IncludePrerelease)
}

// dataAssetExts lists supported container extensions in preference order:
// a ZIP archive beats a plain ISO beats a raw CUE/BIN image.
var dataAssetExts = []string{".zip", ".iso", ".cue"}

// pickDataAssets chooses the release asset holding the game data. When the
// chosen asset is a cue sheet its bin companion must also be downloaded.
func pickDataAssets(release *model.ReleaseInfo) (model.ReleaseAsset, []model.ReleaseAsset, error) {
	for _, ext := range dataAssetExts {
		for _, asset := range release.Assets {
			if !strings.EqualFold(filepath.Ext(asset.Name), ext) {
				continue
			}
			if ext != ".cue" {
				return asset, nil, nil
			}

			base := strings.TrimSuffix(asset.Name, filepath.Ext(asset.Name))
			for _, cand := range release.Assets {
				if strings.EqualFold(cand.Name, base+".bin") {
					return asset, []model.ReleaseAsset{cand}, nil
				}
			}
			return model.ReleaseAsset{}, nil, goerr.New(
				"release has a cue sheet but no matching bin track",
				goerr.V("tag", release.TagName), goerr.V("asset", asset.Name))
		}
	}

	return model.ReleaseAsset{}, nil, goerr.New("release has no game data asset",
		goerr.V("tag", release.TagName))
}
