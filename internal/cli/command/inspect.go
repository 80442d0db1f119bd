package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/veldtlabs/websnap/internal/snapshot"
)

// InspectCommand returns the inspect command.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Summarize a snapshot file's exports",
		ArgsUsage: "FILE",
		Action:    inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
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
		return fmt.Errorf("inspect %s: %w", path, err)
	}

	return formatterFor(c).Format(c.App.Writer, summary)
}
