package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/fataldecomp/roller-installer/pkg/cli/config"
	githubinfra "github.com/fataldecomp/roller-installer/pkg/infra/github"
	"github.com/fataldecomp/roller-installer/pkg/usecase"
)

func cmdListReleases() *cli.Command {
	var (
		githubCfg config.GitHub
		limit     int
		stable    bool
	)

	flags := append(githubCfg.Flags(),
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of releases to show",
			Value:       10,
			Destination: &limit,
		},
		&cli.BoolFlag{
			Name:        "stable",
			Usage:       "Hide prereleases",
			Destination: &stable,
		},
	)

	return &cli.Command{
		Name:  "list-releases",
		Usage: "List available ROLLER releases",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			client, err := githubinfra.NewClient(githubCfg.Owner, githubCfg.Repo, githubCfg.Token)
			if err != nil {
				return goerr.Wrap(err, "failed to create GitHub client")
			}

			releases, err := usecase.NewRelease(client).List(ctx, int(limit), !stable)
			if err != nil {
				return err
			}

			if len(releases) == 0 {
				printWarn("no releases found")
				return nil
			}

			for _, rel := range releases {
				marker := ""
				if rel.Prerelease {
					marker = " (prerelease)"
				}
				fmt.Printf("%-20s %s%s\n", rel.TagName,
					rel.PublishedAt.Format("2006-01-02"), marker)
			}
			return nil
		},
	}
}

func cmdCheckUpdates() *cli.Command {
	var (
		githubCfg  config.GitHub
		installCfg config.Install
	)

	flags := append(githubCfg.Flags(), installCfg.Flags()...)

	return &cli.Command{
		Name:  "check-updates",
		Usage: "Check whether a newer ROLLER release is available",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			installDir, err := installCfg.ResolveDir()
			if err != nil {
				return err
			}

			client, err := githubinfra.NewClient(githubCfg.Owner, githubCfg.Repo, githubCfg.Token)
			if err != nil {
				return goerr.Wrap(err, "failed to create GitHub client")
			}

			check, err := usecase.NewRelease(client).CheckUpdates(ctx, installDir, installCfg.Prerelease)
			if err != nil {
				return err
			}

			switch {
			case check.CurrentTag == "":
				printWarn("ROLLER is not installed in %s (latest release: %s)", installDir, check.LatestTag)
			case check.UpdateAvailable:
				printInfo("update available: %s -> %s", check.CurrentTag, check.LatestTag)
			default:
				printSuccess("up to date: %s", check.CurrentTag)
			}
			return nil
		},
	}
}
