package extract

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fataldecomp/roller-installer/pkg/domain/interfaces"
	"github.com/fataldecomp/roller-installer/pkg/domain/model"
	"github.com/fataldecomp/roller-installer/pkg/domain/types"
)

// CueBinHandler supports two-file raw disc images (cue sheet + binary
// data). It converts the pair to an ISO plus audio tracks with an external
// converter, delegates the directory extraction to the ISO handler and
// copies the audio tracks into an "audio" subdirectory of the output.
type CueBinHandler struct {
	tools interfaces.ToolResolver
	iso   *ISOHandler
}

func NewCueBinHandler(tools interfaces.ToolResolver, iso *ISOHandler) *CueBinHandler {
	return &CueBinHandler{tools: tools, iso: iso}
}

// Detect requires both sibling files and a resolvable converter. Either
// extension may be the entry point; the sibling is derived by shared base
// name, tolerating upper-case extensions.
func (h *CueBinHandler) Detect(ctx context.Context, src string) bool {
	if _, _, ok := discPair(src); !ok {
		return false
	}
	if _, ok := h.tools.Resolve(types.ConverterName); !ok {
		ctxlog.From(ctx).Warn("disc converter not found, cannot handle CUE/BIN images",
			"converter", types.ConverterName)
		return false
	}
	return true
}

// Locate cannot cheaply inspect a raw image without a full conversion, so
// the asset directory is assumed present whenever Detect succeeds. This is
// a heuristic: the delegated extraction may still report not_found.
func (h *CueBinHandler) Locate(ctx context.Context, src string) (string, bool) {
	if !h.Detect(ctx, src) {
		return "", false
	}
	return "/" + types.AssetDirName, true
}

func (h *CueBinHandler) Extract(ctx context.Context, src, outDir string) (*model.ExtractionResult, error) {
	logger := ctxlog.From(ctx)

	binPath, cuePath, ok := discPair(src)
	if !ok {
		return nil, goerr.New("missing cue/bin sibling file",
			goerr.T(types.TagUnsupportedFormat), goerr.V("path", src))
	}
	converter, ok := h.tools.Resolve(types.ConverterName)
	if !ok {
		return nil, goerr.New("disc converter not available",
			goerr.T(types.TagUnsupportedFormat),
			goerr.V("converter", types.ConverterName))
	}

	scratch, err := os.MkdirTemp("", "roller-cuebin-*")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create scratch directory",
			goerr.T(types.TagConversion))
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logger.Warn("failed to remove scratch directory",
				"dir", scratch, "error", err)
		}
	}()

	logger.Info("converting disc image", "bin", binPath, "cue", cuePath)

	imagePath, audioTracks, err := convertDiscImage(ctx, converter, binPath, cuePath, scratch)
	if err != nil {
		return nil, err
	}

	result, err := h.iso.Extract(ctx, imagePath, outDir)
	if err != nil {
		return nil, err
	}

	if len(audioTracks) > 0 {
		copied, err := copyAudioTracks(audioTracks, outDir)
		if err != nil {
			return nil, err
		}
		result.AudioTracks = append(result.AudioTracks, copied...)
	}

	return result, nil
}

// convertDiscImage runs the external converter and classifies its output
// files. The converter's exit status is a diagnostic only: some builds
// signal non-zero under benign conditions, so the files it produced are
// the authoritative success signal. A missing data-track image is the only
// hard failure.
func convertDiscImage(ctx context.Context, converter, binPath, cuePath, scratch string) (string, []string, error) {
	logger := ctxlog.From(ctx)
	outputBase := filepath.Join(scratch, "track")

	cmd := exec.CommandContext(ctx, converter, "-w", binPath, cuePath, outputBase)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logger.Warn("disc converter exited abnormally, checking output anyway",
			"converter", converter, "error", err, "stderr", stderr.String())
	}

	entries, err := os.ReadDir(scratch)
	if err != nil {
		return "", nil, goerr.Wrap(err, "failed to read scratch directory",
			goerr.T(types.TagConversion), goerr.V("dir", scratch))
	}

	var imagePath string
	var audioTracks []string
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		full := filepath.Join(scratch, name)
		switch strings.ToLower(filepath.Ext(name)) {
		case ".iso":
			if imagePath != "" {
				logger.Warn("converter produced multiple data tracks, keeping the first",
					"kept", imagePath, "extra", full)
				continue
			}
			imagePath = full
		case ".wav", ".cdr":
			audioTracks = append(audioTracks, full)
		}
	}

	if imagePath == "" {
		return "", nil, goerr.New("no data track found in disc image",
			goerr.T(types.TagConversion),
			goerr.V("bin", binPath), goerr.V("stderr", stderr.String()))
	}

	logger.Debug("classified converter output",
		"image", imagePath, "audio_tracks", len(audioTracks))

	return imagePath, audioTracks, nil
}

// copyAudioTracks copies the converted audio tracks into the audio
// subdirectory of outDir, preserving their names.
func copyAudioTracks(tracks []string, outDir string) ([]string, error) {
	audioDir := filepath.Join(outDir, types.AudioOutputDir)
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create audio directory",
			goerr.T(types.TagExtraction), goerr.V("dir", audioDir))
	}

	copied := make([]string, 0, len(tracks))
	for _, track := range tracks {
		dest := filepath.Join(audioDir, filepath.Base(track))
		if err := copyFile(track, dest); err != nil {
			return nil, err
		}
		copied = append(copied, dest)
	}
	return copied, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return goerr.Wrap(err, "failed to open audio track",
			goerr.T(types.TagExtraction), goerr.V("path", src))
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return goerr.Wrap(err, "failed to create audio track",
			goerr.T(types.TagExtraction), goerr.V("path", dest))
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return goerr.Wrap(err, "failed to copy audio track",
			goerr.T(types.TagExtraction), goerr.V("path", dest))
	}
	return nil
}

// discPair derives the bin+cue pair from either file of a raw disc image,
// tolerant of extension case.
func discPair(src string) (binPath, cuePath string, ok bool) {
	if !fileExists(src) {
		return "", "", false
	}
	switch strings.ToLower(filepath.Ext(src)) {
	case ".cue":
		cuePath = src
		binPath, ok = siblingWithExt(src, ".bin")
	case ".bin":
		binPath = src
		cuePath, ok = siblingWithExt(src, ".cue")
	default:
		return "", "", false
	}
	if !ok {
		return "", "", false
	}
	return binPath, cuePath, true
}

func siblingWithExt(src, ext string) (string, bool) {
	base := strings.TrimSuffix(src, filepath.Ext(src))
	for _, cand := range []string{base + ext, base + strings.ToUpper(ext)} {
		if fileExists(cand) {
			return cand, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
