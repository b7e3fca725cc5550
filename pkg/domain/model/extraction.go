package model

import (
	"context"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fataldecomp/roller-installer/pkg/domain/types"
)

// ExtractionResult is the outcome of extracting the FATDATA directory from
// a container. TargetDir is the materialized asset tree; AudioTracks are
// side-channel audio files copied next to it (CUE/BIN images only).
type ExtractionResult struct {
	TargetDir   string
	AudioTracks []string
}

// HasMusic reports whether any audio tracks survived validation.
func (x *ExtractionResult) HasMusic() bool {
	return len(x.AudioTracks) > 0
}

// Validate checks the result after extraction: TargetDir must exist, be a
// directory and contain at least one entry. Audio track entries that no
// longer reference a regular file are dropped with a diagnostic instead of
// failing the extraction.
func (x *ExtractionResult) Validate(ctx context.Context) error {
	info, err := os.Stat(x.TargetDir)
	if err != nil {
		return goerr.Wrap(err, "asset directory missing after extraction",
			goerr.T(types.TagExtraction), goerr.V("dir", x.TargetDir))
	}
	if !info.IsDir() {
		return goerr.New("asset path is not a directory",
			goerr.T(types.TagExtraction), goerr.V("path", x.TargetDir))
	}

	entries, err := os.ReadDir(x.TargetDir)
	if err != nil {
		return goerr.Wrap(err, "failed to read asset directory",
			goerr.T(types.TagExtraction), goerr.V("dir", x.TargetDir))
	}
	if len(entries) == 0 {
		return goerr.New("asset directory is empty after extraction",
			goerr.T(types.TagExtraction), goerr.V("dir", x.TargetDir))
	}

	valid := x.AudioTracks[:0]
	for _, track := range x.AudioTracks {
		info, err := os.Stat(track)
		if err != nil || !info.Mode().IsRegular() {
			ctxlog.From(ctx).Warn("dropping invalid audio track",
				"track", track)
			continue
		}
		valid = append(valid, track)
	}
	x.AudioTracks = valid

	return nil
}
