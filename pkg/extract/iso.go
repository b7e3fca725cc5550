package extract

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kdomanski/iso9660"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fataldecomp/roller-installer/pkg/domain/model"
	"github.com/fataldecomp/roller-installer/pkg/domain/types"
)

// ISOHandler extracts the FATDATA directory from an ISO9660 disc image.
// Source names are conventionally upper case; output names are folded to
// lower case for cross-platform friendliness.
type ISOHandler struct{}

func NewISOHandler() *ISOHandler { return &ISOHandler{} }

func (h *ISOHandler) Detect(ctx context.Context, src string) bool {
	f, err := os.Open(src)
	if err != nil {
		return false
	}
	defer f.Close()

	if _, err := iso9660.OpenImage(f); err != nil {
		return false
	}
	return true
}

func (h *ISOHandler) Locate(ctx context.Context, src string) (string, bool) {
	f, err := os.Open(src)
	if err != nil {
		return "", false
	}
	defer f.Close()

	img, err := iso9660.OpenImage(f)
	if err != nil {
		return "", false
	}

	if _, err := findAssetRoot(img); err != nil {
		return "", false
	}
	// canonical uppercase path convention for ISO images
	return "/" + types.AssetDirName, true
}

func (h *ISOHandler) Extract(ctx context.Context, src, outDir string) (*model.ExtractionResult, error) {
	logger := ctxlog.From(ctx)

	f, err := os.Open(src)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open disc image",
			goerr.T(types.TagExtraction), goerr.V("path", src))
	}
	defer f.Close()

	img, err := iso9660.OpenImage(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse disc image",
			goerr.T(types.TagExtraction), goerr.V("path", src))
	}

	root, err := findAssetRoot(img)
	if err != nil {
		return nil, err
	}

	dest := filepath.Join(outDir, types.AssetOutputDir)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create asset directory",
			goerr.T(types.TagExtraction), goerr.V("dir", dest))
	}

	// Depth-first, fully sequential. Any node failure aborts the walk;
	// partially written output stays on disk and a rerun recovers it.
	if err := extractISODir(ctx, root, dest); err != nil {
		return nil, err
	}

	logger.Info("extracted asset directory from disc image", "dest", dest)

	return &model.ExtractionResult{TargetDir: dest}, nil
}

// findAssetRoot scans the image's root directory for the FATDATA entry.
func findAssetRoot(img *iso9660.Image) (*iso9660.File, error) {
	root, err := img.RootDir()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read image root directory",
			goerr.T(types.TagExtraction))
	}

	children, err := root.GetChildren()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list image root directory",
			goerr.T(types.TagExtraction))
	}

	for _, child := range children {
		name := decodeISOName(child.Name())
		if child.IsDir() && strings.EqualFold(name, types.AssetDirName) {
			return child, nil
		}
	}

	return nil, goerr.New("FATDATA directory not found in disc image",
		goerr.T(types.TagNotFound))
}

func extractISODir(ctx context.Context, dir *iso9660.File, dest string) error {
	children, err := dir.GetChildren()
	if err != nil {
		return goerr.Wrap(err, "failed to list image directory",
			goerr.T(types.TagExtraction), goerr.V("dir", dest))
	}

	for _, child := range children {
		name := decodeISOName(child.Name())
		if name == "" || name == "." || name == ".." {
			continue // self/parent pseudo-entries
		}

		target := filepath.Join(dest, strings.ToLower(name))

		if child.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return goerr.Wrap(err, "failed to create directory",
					goerr.T(types.TagExtraction), goerr.V("path", target))
			}
			if err := extractISODir(ctx, child, target); err != nil {
				return err
			}
			continue
		}

		out, err := os.Create(target)
		if err != nil {
			return goerr.Wrap(err, "failed to create output file",
				goerr.T(types.TagExtraction), goerr.V("path", target))
		}
		if _, err := io.Copy(out, child.Reader()); err != nil {
			_ = out.Close()
			return goerr.Wrap(err, "failed to stream file from image",
				goerr.T(types.TagExtraction), goerr.V("path", target))
		}
		if err := out.Close(); err != nil {
			return goerr.Wrap(err, "failed to finish output file",
				goerr.T(types.TagExtraction), goerr.V("path", target))
		}
	}

	return nil
}

// decodeISOName normalizes an ISO9660 identifier: the 0x00/0x01 pseudo
// identifiers map to "."/"..", the ";N" version suffix and a dangling dot
// are stripped.
func decodeISOName(name string) string {
	switch name {
	case "\x00":
		return "."
	case "\x01":
		return ".."
	}
	if idx := strings.IndexByte(name, ';'); idx >= 0 {
		name = name[:idx]
	}
	return strings.TrimSuffix(name, ".")
}
