package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/veldtlabs/websnap/internal/cli/config"
	"github.com/veldtlabs/websnap/internal/cli/output"
	"github.com/veldtlabs/websnap/internal/infra/buildinfo"
	"github.com/veldtlabs/websnap/internal/store"
	"github.com/veldtlabs/websnap/internal/telemetry/logger"
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:     "websnap",
		Usage:    "Inspect, verify, and manage web snapshot files",
		Version:  buildinfo.String(),
		Flags:    globalFlags(),
		Metadata: map[string]any{},
		Commands: []*cli.Command{
			InspectCommand(),
			VerifyCommand(),
			StoreCommand(),
			VersionCommand(),
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			c.App.Metadata["config"] = cfg

			level := cfg.Log.Level
			if c.Bool("verbose") {
				level = "debug"
			}
			log, err := logger.New(logger.Config{Level: level, Format: cfg.Log.Format})
			if err != nil {
				return err
			}
			logger.SetDefault(log)
			return nil
		},
	}

	return app
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file path",
			EnvVars: []string{"WEBSNAP_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "store-dir",
			Aliases: []string{"d"},
			Usage:   "Snapshot store directory",
			EnvVars: []string{"WEBSNAP_STORE_DIR"},
		},
		&cli.StringFlag{
			Name:    "passphrase",
			Aliases: []string{"p"},
			Usage:   "Passphrase for encrypted containers",
			EnvVars: []string{"WEBSNAP_PASSPHRASE"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable verbose logging",
		},
	}
}

// getConfig retrieves the loaded configuration from app metadata.
func getConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata["config"].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// openStore builds a Store from the configuration and global flags.
func openStore(c *cli.Context) (*store.Store, error) {
	cfg := getConfig(c)

	sc := store.Config{
		Dir:            cfg.Store.Dir,
		RetentionCount: cfg.Store.RetentionCount,
		RetentionDays:  cfg.Store.RetentionDays,
	}
	if dir := c.String("store-dir"); dir != "" {
		sc.Dir = dir
	}
	if pass := c.String("passphrase"); pass != "" {
		sc.Encryption = store.EncryptionConfig{
			Passphrase: []byte(pass),
			Algorithm:  cfg.Store.Algorithm,
		}
	}

	return store.New(sc)
}

// formatterFor builds the output formatter from flags and config.
func formatterFor(c *cli.Context) output.Formatter {
	format := c.String("output")
	if format == "" {
		format = getConfig(c).Output
	}
	return output.NewFormatter(output.Format(format), c.Bool("wide"))
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
