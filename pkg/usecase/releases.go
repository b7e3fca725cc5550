package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"

	"github.com/fataldecomp/roller-installer/pkg/domain/interfaces"
	"github.com/fataldecomp/roller-installer/pkg/domain/model"
)

type releaseUseCase struct {
	releases interfaces.ReleaseClient
}

// NewRelease creates the read-only release use case.
func NewRelease(releases interfaces.ReleaseClient) interfaces.ReleaseUseCase {
	return &releaseUseCase{releases: releases}
}

func (uc *releaseUseCase) List(ctx context.Context, limit int, includePrerelease bool) ([]*model.ReleaseInfo, error) {
	return uc.releases.ListReleases(ctx, limit, includePrerelease)
}

// CheckUpdates compares the version recorded in installDir against the
// newest published release.
func (uc *releaseUseCase) CheckUpdates(ctx context.Context, installDir string, includePrerelease bool) (*model.UpdateCheck, error) {
	logger := ctxlog.From(ctx)

	state, err := model.LoadInstallState(installDir)
	if err != nil {
		return nil, err
	}

	latest, err := uc.releases.LatestRelease(ctx, includePrerelease)
	if err != nil {
		return nil, err
	}

	check := &model.UpdateCheck{
		LatestTag: latest.TagName,
		Release:   latest,
	}
	if state != nil {
		check.CurrentTag = state.Tag
	}
	check.UpdateAvailable = check.CurrentTag != check.LatestTag

	if check.UpdateAvailable {
		logger.Info("update available",
			"current", check.CurrentTag, "latest", check.LatestTag)
	} else {
		logger.Info("already up to date", "tag", check.CurrentTag)
	}

	return check, nil
}
