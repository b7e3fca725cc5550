package extract

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fataldecomp/roller-installer/pkg/domain/model"
	"github.com/fataldecomp/roller-installer/pkg/domain/types"
)

// ZIPHandler extracts the FATDATA directory from a standard ZIP archive.
// Entry names keep their original case in the output.
type ZIPHandler struct{}

func NewZIPHandler() *ZIPHandler { return &ZIPHandler{} }

func (h *ZIPHandler) Detect(ctx context.Context, src string) bool {
	r, err := zip.OpenReader(src)
	if err != nil {
		return false
	}
	_ = r.Close()
	return true
}

func (h *ZIPHandler) Locate(ctx context.Context, src string) (string, bool) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return "", false
	}
	defer r.Close()

	return locateInZip(&r.Reader)
}

// locateInZip builds the set of all directory paths named by the archive,
// including implicit parents, and picks the one containing a FATDATA
// segment. When several candidates exist the shallowest path wins, ties
// broken lexicographically, so the choice is deterministic regardless of
// entry order.
func locateInZip(zr *zip.Reader) (string, bool) {
	dirs := map[string]struct{}{}
	for _, f := range zr.File {
		name := strings.Trim(f.Name, "/")
		if name == "" {
			continue
		}
		parts := strings.Split(name, "/")
		n := len(parts)
		if !strings.HasSuffix(f.Name, "/") {
			n-- // last segment is a file
		}
		for i := 1; i <= n; i++ {
			dirs[strings.Join(parts[:i], "/")] = struct{}{}
		}
	}

	var candidates []string
	for dir := range dirs {
		segs := strings.Split(dir, "/")
		for i, seg := range segs {
			if strings.EqualFold(seg, types.AssetDirName) {
				candidates = append(candidates, strings.Join(segs[:i+1], "/"))
				break
			}
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	sort.Slice(candidates, func(i, j int) bool {
		di := strings.Count(candidates[i], "/")
		dj := strings.Count(candidates[j], "/")
		if di != dj {
			return di < dj
		}
		return candidates[i] < candidates[j]
	})
	return candidates[0], true
}

func (h *ZIPHandler) Extract(ctx context.Context, src, outDir string) (*model.ExtractionResult, error) {
	logger := ctxlog.From(ctx)

	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open zip archive",
			goerr.T(types.TagExtraction), goerr.V("path", src))
	}
	defer r.Close()

	found, ok := locateInZip(&r.Reader)
	if !ok {
		return nil, goerr.New("FATDATA directory not found in archive",
			goerr.T(types.TagNotFound), goerr.V("path", src))
	}
	logger.Debug("found asset directory in archive", "dir", found)

	dest := filepath.Join(outDir, types.AssetOutputDir)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create asset directory",
			goerr.T(types.TagExtraction), goerr.V("dir", dest))
	}

	var count int
	for _, f := range r.File {
		if strings.HasSuffix(f.Name, "/") {
			continue // directory marker
		}
		name := strings.Trim(f.Name, "/")

		var rel string
		switch {
		case name == found:
			rel = path.Base(name)
		case strings.HasPrefix(name, found+"/"):
			rel = name[len(found)+1:]
		default:
			continue
		}

		if err := writeZipEntry(f, dest, rel); err != nil {
			return nil, err
		}
		count++
	}

	if count == 0 {
		// A container can declare an empty directory.
		return nil, goerr.New("no files under FATDATA directory",
			goerr.T(types.TagNotFound),
			goerr.V("path", src), goerr.V("dir", found))
	}

	logger.Info("extracted asset files from archive",
		"files", count, "dest", dest)

	return &model.ExtractionResult{TargetDir: dest}, nil
}

// writeZipEntry writes one archive entry verbatim under dest. File bytes
// are copied without transcoding and no metadata is preserved.
func writeZipEntry(f *zip.File, dest, rel string) error {
	target := filepath.Join(dest, filepath.FromSlash(rel))

	// path traversal guard
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return goerr.New("illegal entry path in archive",
			goerr.T(types.TagExtraction), goerr.V("entry", f.Name))
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return goerr.Wrap(err, "failed to create parent directory",
			goerr.T(types.TagExtraction), goerr.V("path", target))
	}

	rc, err := f.Open()
	if err != nil {
		return goerr.Wrap(err, "failed to open archive entry",
			goerr.T(types.TagExtraction), goerr.V("entry", f.Name))
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return goerr.Wrap(err, "failed to create output file",
			goerr.T(types.TagExtraction), goerr.V("path", target))
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return goerr.Wrap(err, "failed to write output file",
			goerr.T(types.TagExtraction), goerr.V("path", target))
	}
	return nil
}
