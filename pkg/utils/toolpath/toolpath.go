// Package toolpath resolves external tool binaries with a fallback search:
// next to the installer executable, then any configured extra directories,
// then the system PATH.
package toolpath

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// Resolver implements interfaces.ToolResolver.
type Resolver struct {
	// ExtraDirs are searched after the executable's own directory and
	// before PATH.
	ExtraDirs []string
}

func New(extraDirs ...string) *Resolver {
	return &Resolver{ExtraDirs: extraDirs}
}

// Resolve finds the named tool. On Windows the .exe suffix is appended for
// the directory probes.
func (r *Resolver) Resolve(name string) (string, bool) {
	full := name
	if runtime.GOOS == "windows" {
		full += ".exe"
	}

	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	dirs = append(dirs, r.ExtraDirs...)

	for _, dir := range dirs {
		cand := filepath.Join(dir, full)
		if info, err := os.Stat(cand); err == nil && info.Mode().IsRegular() {
			return cand, true
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, true
	}
	return "", false
}

// Verify runs the tool with args and reports whether it looks functional.
// Exit statuses 0 and 1 both pass: many tools exit 1 when printing usage.
func Verify(ctx context.Context, path string, args ...string) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, args...)
	err := cmd.Run()
	if err == nil {
		return true
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode() == 1
	}
	return false
}
