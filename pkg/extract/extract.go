// Package extract locates and extracts the FATDATA asset directory from
// game-distribution containers: ZIP archives, ISO9660 disc images and raw
// CUE/BIN disc images.
package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fataldecomp/roller-installer/pkg/domain/interfaces"
	"github.com/fataldecomp/roller-installer/pkg/domain/model"
	"github.com/fataldecomp/roller-installer/pkg/domain/types"
)

// Handler is the capability set every container format implements.
type Handler interface {
	// Detect reports whether src parses as this handler's format. It must
	// open src read-only, release all resources and never mutate the
	// source; any parse failure yields false.
	Detect(ctx context.Context, src string) bool

	// Locate searches src for a directory whose name equals FATDATA,
	// compared case-insensitively per path segment. ok is false when the
	// container holds no such directory.
	Locate(ctx context.Context, src string) (path string, ok bool)

	// Extract materializes the FATDATA tree under outDir. It fails with a
	// not_found tagged error when Locate yields nothing, and with an
	// extraction tagged error on I/O or format corruption.
	Extract(ctx context.Context, src, outDir string) (*model.ExtractionResult, error)
}

// Registry dispatches a source file to a format handler by extension, then
// confirms the match with Detect before extraction.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns a registry with the built-in formats registered. The
// CUE/BIN handler needs tools to resolve the external disc converter.
func NewRegistry(tools interfaces.ToolResolver) *Registry {
	r := &Registry{handlers: map[string]Handler{}}

	iso := NewISOHandler()
	cuebin := NewCueBinHandler(tools, iso)

	r.Register(".zip", NewZIPHandler())
	r.Register(".iso", iso)
	r.Register(".cue", cuebin)
	r.Register(".bin", cuebin)

	return r
}

// Register binds an extension to a handler. The extension is normalized to
// lower case with a leading dot; the last registration for an extension
// wins. Third-party formats register here without touching dispatch.
func (r *Registry) Register(ext string, h Handler) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	r.handlers[ext] = h
}

// Resolve returns the handler for src. Extension match alone is not
// sufficient: the candidate's Detect must also accept the file, so a
// renamed file with a mismatched extension is rejected.
func (r *Registry) Resolve(ctx context.Context, src string) (Handler, error) {
	ext := strings.ToLower(filepath.Ext(src))

	h, ok := r.handlers[ext]
	if !ok {
		return nil, goerr.New("unsupported archive format",
			goerr.T(types.TagUnsupportedFormat),
			goerr.V("path", src), goerr.V("ext", ext))
	}

	if !h.Detect(ctx, src) {
		return nil, goerr.New("file does not match its extension's format",
			goerr.T(types.TagUnsupportedFormat),
			goerr.V("path", src), goerr.V("ext", ext))
	}

	return h, nil
}

// Extract resolves a handler for src, extracts the FATDATA tree into
// outDir and validates the result. outDir is created if absent.
func (r *Registry) Extract(ctx context.Context, src, outDir string) (*model.ExtractionResult, error) {
	logger := ctxlog.From(ctx)

	if _, err := os.Stat(src); err != nil {
		return nil, goerr.Wrap(err, "source file not found",
			goerr.T(types.TagExtraction), goerr.V("path", src))
	}

	h, err := r.Resolve(ctx, src)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create output directory",
			goerr.T(types.TagExtraction), goerr.V("dir", outDir))
	}

	logger.Info("extracting game assets", "src", src, "out", outDir)

	result, err := h.Extract(ctx, src, outDir)
	if err != nil {
		return nil, err
	}

	if err := result.Validate(ctx); err != nil {
		return nil, err
	}

	if result.HasMusic() {
		logger.Info("extracted audio tracks", "count", len(result.AudioTracks))
	}

	return result, nil
}
