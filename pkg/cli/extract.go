package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/fataldecomp/roller-installer/pkg/domain/types"
	"github.com/fataldecomp/roller-installer/pkg/extract"
	"github.com/fataldecomp/roller-installer/pkg/utils/toolpath"
)

func cmdExtract() *cli.Command {
	var outDir string

	return &cli.Command{
		Name:      "extract",
		Usage:     "Extract the FATDATA directory from a local archive or disc image",
		ArgsUsage: "<archive>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "Output directory",
				Value:       ".",
				Destination: &outDir,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			src := c.Args().First()
			if src == "" {
				return goerr.New("archive path is required")
			}

			registry := extract.NewRegistry(toolpath.New())

			result, err := registry.Extract(ctx, src, outDir)
			if err != nil {
				switch {
				case types.IsUnsupportedFormat(err):
					printError("unsupported archive format: %s", src)
				case types.IsNotFound(err):
					printError("no FATDATA directory in %s", src)
				default:
					printError("extraction failed: %v", err)
				}
				return err
			}

			printSuccess("extracted game assets to %s", result.TargetDir)
			if result.HasMusic() {
				printInfo("audio tracks: %d", len(result.AudioTracks))
			}
			return nil
		},
	}
}
