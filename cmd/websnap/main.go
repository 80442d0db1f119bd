// Command websnap inspects, verifies, and manages web snapshot files.
package main

import (
	"fmt"
	"os"

	"github.com/veldtlabs/websnap/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
