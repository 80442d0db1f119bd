package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/veldtlabs/websnap/internal/snapshot"
)

// VerifyCommand returns the verify command.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Check that a snapshot file decodes cleanly",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Suppress output, exit status only",
			},
		},
		Action: verifyAction,
	}
}

func verifyAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("snapshot file required")
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	summary, err := snapshot.Inspect(buf)
	if err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}

	if !c.Bool("quiet") {
		fmt.Fprintf(c.App.Writer, "%s: OK (%d bytes, %d exports)\n", path, summary.Bytes, len(summary.Exports))
	}
	return nil
}
