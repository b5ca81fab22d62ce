package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/mnemo-ai/mnemo/pkg/cli/config"
	"github.com/mnemo-ai/mnemo/pkg/service/archival"
	"github.com/mnemo-ai/mnemo/pkg/utils/safe"
)

func cmdArchive() *cli.Command {
	var repoCfg config.Repository
	var indexCfg config.Index
	var memoryCfg config.Memory

	var flags []cli.Flag
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, indexCfg.Flags()...)
	flags = append(flags, memoryCfg.Flags()...)

	return &cli.Command{
		Name:  "archive",
		Usage: "Run one archival cycle and report its stats",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo)

			index, err := indexCfg.Configure()
			if err != nil {
				return err
			}

			worker := archival.New(repo, index, memoryCfg.ArchivalOptions()...)
			stats, err := worker.RunOnce(ctx)
			if err != nil {
				return err
			}

			bold := color.New(color.Bold)
			bold.Println("Archival cycle completed")
			fmt.Printf("  Scanned:   %d\n", stats.Scanned)
			fmt.Printf("  Archived:  %s\n", color.CyanString("%d", stats.Archived))
			fmt.Printf("  Expired:   %s\n", color.YellowString("%d", stats.Expired))
			fmt.Printf("  Deleted:   %s\n", color.RedString("%d", stats.Deleted))
			fmt.Printf("  Conflicts: %d\n", stats.Conflicts)
			fmt.Printf("  Errors:    %d\n", stats.Errors)
			fmt.Printf("  Duration:  %s\n", stats.Duration)

			return nil
		},
	}
}
