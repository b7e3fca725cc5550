package interfaces

import (
	"context"

	"github.com/fataldecomp/roller-installer/pkg/domain/model"
)

// InstallUseCase defines the install flow: resolve a release, download its
// game-data asset, extract FATDATA and record the installed version.
type InstallUseCase interface {
	Install(ctx context.Context, req *model.InstallRequest) (*model.InstallState, error)
}

// ReleaseUseCase defines read-only release operations for the CLI.
type ReleaseUseCase interface {
	List(ctx context.Context, limit int, includePrerelease bool) ([]*model.ReleaseInfo, error)
	CheckUpdates(ctx context.Context, installDir string, includePrerelease bool) (*model.UpdateCheck, error)
}
