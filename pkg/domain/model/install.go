package model

import (
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/fataldecomp/roller-installer/pkg/domain/types"
)

// InstallRequest carries the parameters of an install operation.
type InstallRequest struct {
	Tag               string // empty means latest
	InstallDir        string
	IncludePrerelease bool
	Force             bool
}

// InstallState records what is installed in an install directory. It is
// persisted as state.toml inside the directory.
type InstallState struct {
	Tag         string    `toml:"tag"`
	InstalledAt time.Time `toml:"installed_at"`
	AssetDir    string    `toml:"asset_dir"`
	Executable  string    `toml:"executable,omitempty"`
	AudioTracks []string  `toml:"audio_tracks,omitempty"`
}

// LoadInstallState reads the state file from dir. A missing file is not an
// error; it returns (nil, nil) so callers can treat it as "not installed".
func LoadInstallState(dir string) (*InstallState, error) {
	data, err := os.ReadFile(filepath.Join(dir, types.StateFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read install state", goerr.V("dir", dir))
	}

	var state InstallState
	if err := toml.Unmarshal(data, &state); err != nil {
		return nil, goerr.Wrap(err, "failed to parse install state", goerr.V("dir", dir))
	}
	return &state, nil
}

// Save writes the state file into dir.
func (s *InstallState) Save(dir string) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return goerr.Wrap(err, "failed to encode install state")
	}
	path := filepath.Join(dir, types.StateFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write install state", goerr.V("path", path))
	}
	return nil
}
