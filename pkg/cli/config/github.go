package config

import (
	"github.com/urfave/cli/v3"

	"github.com/fataldecomp/roller-installer/pkg/domain/types"
)

// GitHub holds GitHub configuration
type GitHub struct {
	Owner string
	Repo  string
	Token string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-owner",
			Usage:       "GitHub repository owner",
			Value:       types.DefaultOwner,
			Destination: &c.Owner,
			Sources:     cli.EnvVars("ROLLER_GITHUB_OWNER"),
		},
		&cli.StringFlag{
			Name:        "github-repo",
			Usage:       "GitHub repository name",
			Value:       types.DefaultRepo,
			Destination: &c.Repo,
			Sources:     cli.EnvVars("ROLLER_GITHUB_REPO"),
		},
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token (optional, raises rate limits)",
			Destination: &c.Token,
			Sources:     cli.EnvVars("ROLLER_GITHUB_TOKEN"),
		},
	}
}
