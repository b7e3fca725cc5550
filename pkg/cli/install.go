package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/fataldecomp/roller-installer/pkg/cli/config"
	"github.com/fataldecomp/roller-installer/pkg/domain/model"
	"github.com/fataldecomp/roller-installer/pkg/extract"
	"github.com/fataldecomp/roller-installer/pkg/infra/download"
	githubinfra "github.com/fataldecomp/roller-installer/pkg/infra/github"
	"github.com/fataldecomp/roller-installer/pkg/usecase"
	"github.com/fataldecomp/roller-installer/pkg/utils/toolpath"
)

func cmdInstall() *cli.Command {
	var (
		githubCfg  config.GitHub
		installCfg config.Install
		tag        string
		force      bool
	)

	flags := append(githubCfg.Flags(), installCfg.Flags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "tag",
			Aliases:     []string{"t"},
			Usage:       "Specific release tag to install (default: latest)",
			Destination: &tag,
		},
		&cli.BoolFlag{
			Name:        "force",
			Usage:       "Reinstall even if the tag is already installed",
			Destination: &force,
		},
	)

	return &cli.Command{
		Name:    "install",
		Aliases: []string{"i"},
		Usage:   "Install ROLLER game data from a GitHub release",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			installDir, err := installCfg.ResolveDir()
			if err != nil {
				return err
			}

			client, err := githubinfra.NewClient(githubCfg.Owner, githubCfg.Repo, githubCfg.Token)
			if err != nil {
				return goerr.Wrap(err, "failed to create GitHub client")
			}

			uc := usecase.NewInstall(client, download.New(), extract.NewRegistry(toolpath.New()))

			state, err := uc.Install(ctx, &model.InstallRequest{
				Tag:               tag,
				InstallDir:        installDir,
				IncludePrerelease: installCfg.Prerelease,
				Force:             force,
			})
			if err != nil {
				printError("install failed: %v", err)
				return err
			}

			printSuccess("installed ROLLER %s", state.Tag)
			printInfo("game assets: %s", state.AssetDir)
			if state.Executable != "" {
				printInfo("executable: %s", state.Executable)
			}
			if len(state.AudioTracks) > 0 {
				printInfo("audio tracks: %d", len(state.AudioTracks))
			}
			return nil
		},
	}
}
