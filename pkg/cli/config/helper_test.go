package config_test

import (
	"context"

	"github.com/urfave/cli/v3"
)

// testCommand builds a no-op command carrying the given flags so tests can
// exercise flag parsing and defaults
func testCommand(flags []cli.Flag) *cli.Command {
	return &cli.Command{
		Name:  "test",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			return nil
		},
	}
}
