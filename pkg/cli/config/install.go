package config

import (
	"github.com/urfave/cli/v3"

	"github.com/fataldecomp/roller-installer/pkg/utils/platform"
)

// Install holds install target configuration
type Install struct {
	Dir        string
	Prerelease bool
}

// Flags returns CLI flags for install configuration
func (c *Install) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "install-dir",
			Usage:       "Installation directory (defaults to the per-user location)",
			Destination: &c.Dir,
			Sources:     cli.EnvVars("ROLLER_INSTALL_DIR"),
		},
		&cli.BoolFlag{
			Name:        "prerelease",
			Usage:       "Consider prereleases when resolving the latest version",
			Value:       true,
			Destination: &c.Prerelease,
			Sources:     cli.EnvVars("ROLLER_PRERELEASE"),
		},
	}
}

// ResolveDir returns the configured install directory, falling back to the
// platform default.
func (c *Install) ResolveDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	return platform.DefaultInstallDir()
}
