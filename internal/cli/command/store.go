package command

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/veldtlabs/websnap/internal/snapshot"
	"github.com/veldtlabs/websnap/internal/store"
)

// StoreCommand returns the store subcommand group.
func StoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "store",
		Usage: "Manage the snapshot store",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List stored snapshots",
				Action: storeList,
			},
			{
				Name:      "info",
				Usage:     "Show one snapshot's metadata",
				ArgsUsage: "ID",
				Action:    storeInfo,
			},
			{
				Name:      "import",
				Usage:     "Validate a snapshot file and add it to the store",
				ArgsUsage: "FILE",
				Action:    storeImport,
			},
			{
				Name:      "export",
				Usage:     "Write a stored snapshot to a file",
				ArgsUsage: "ID FILE",
				Action:    storeExport,
			},
			{
				Name:   "prune",
				Usage:  "Apply the retention policy",
				Action: storePrune,
			},
			{
				Name:      "delete",
				Usage:     "Delete a stored snapshot",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: storeDelete,
			},
		},
	}
}

// listRow is the store listing shape shared by list and info.
type listRow struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Exports   []string  `json:"exports"`
	Encrypted bool      `json:"encrypted"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum,omitempty" table:"wide"`
	Path      string    `json:"path,omitempty" table:"wide"`
}

func toRow(info *store.Info) listRow {
	return listRow{
		ID:        info.ID,
		CreatedAt: time.UnixMilli(info.CreatedAt),
		Exports:   info.Exports,
		Encrypted: info.Encrypted,
		Size:      info.Size,
		Checksum:  info.Checksum,
		Path:      info.Path,
	}
}

func storeList(c *cli.Context) error {
	s, err := openStore(c)
	if err != nil {
		return err
	}

	infos, err := s.List()
	if err != nil {
		return err
	}

	rows := make([]listRow, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, toRow(info))
	}
	return formatterFor(c).Format(c.App.Writer, rows)
}

func storeInfo(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("snapshot ID required")
	}

	s, err := openStore(c)
	if err != nil {
		return err
	}

	info, err := s.Stat(id)
	if err != nil {
		return err
	}
	row := toRow(info)
	return formatterFor(c).Format(c.App.Writer, &row)
}

func storeImport(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("snapshot file required")
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	// Reject files that do not decode before they reach the store.
	summary, err := snapshot.Inspect(buf)
	if err != nil {
		return fmt.Errorf("invalid snapshot %s: %w", path, err)
	}
	exports := make([]string, 0, len(summary.Exports))
	for _, exp := range summary.Exports {
		exports = append(exports, exp.Name)
	}

	s, err := openStore(c)
	if err != nil {
		return err
	}
	info, err := s.Save(buf, exports)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Imported %s as %s (%d bytes, %d exports)\n",
		path, info.ID, info.Size, len(exports))
	return nil
}

func storeExport(c *cli.Context) error {
	id := c.Args().Get(0)
	path := c.Args().Get(1)
	if id == "" || path == "" {
		return fmt.Errorf("snapshot ID and output file required")
	}

	s, err := openStore(c)
	if err != nil {
		return err
	}

	payload, info, err := s.Load(id)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Exported %s to %s (%d bytes)\n", info.ID, path, len(payload))
	return nil
}

func storePrune(c *cli.Context) error {
	s, err := openStore(c)
	if err != nil {
		return err
	}

	deleted, err := s.Prune()
	if err != nil {
		return err
	}
	if len(deleted) == 0 {
		fmt.Fprintln(c.App.Writer, "Nothing to prune.")
		return nil
	}

	for _, info := range deleted {
		fmt.Fprintf(c.App.Writer, "Deleted %s\n", info.ID)
	}
	fmt.Fprintf(c.App.Writer, "%d snapshots pruned.\n", len(deleted))
	return nil
}

func storeDelete(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("snapshot ID required")
	}

	if !c.Bool("force") {
		fmt.Fprintf(c.App.Writer, "Are you sure you want to delete snapshot '%s'? [y/N]: ", id)
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Fprintln(c.App.Writer, "Cancelled.")
			return nil
		}
	}

	s, err := openStore(c)
	if err != nil {
		return err
	}
	if err := s.Delete(id); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Snapshot %s deleted.\n", id)
	return nil
}
