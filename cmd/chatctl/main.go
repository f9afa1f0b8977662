// Command chatctl talks to the chat engine and its tables directly, without
// the HTTP API: ask questions, seed the catalog, run maintenance sweeps.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/suPer8Hu/jewelry-assistant/internal/app"
	"github.com/suPer8Hu/jewelry-assistant/internal/config"
	"github.com/suPer8Hu/jewelry-assistant/internal/logging"
	"go.uber.org/zap"
)

type cli struct {
	cfgFile    string
	outputJSON bool
	verbose    bool

	app *app.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "chatctl",
		Short:         "Jewelry assistant command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.cfgFile != "" {
				if err := os.Setenv("CONFIG_FILE", c.cfgFile); err != nil {
					return err
				}
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			level := "warn"
			if c.verbose {
				level = "debug"
			}
			log, err := logging.New(level, "console")
			if err != nil {
				return err
			}

			c.app, err = app.New(cmd.Context(), cfg, log)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app == nil {
				return nil
			}
			_ = c.app.Log.Sync()
			return c.app.Close()
		},
	}

	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	root.PersistentFlags().BoolVar(&c.outputJSON, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		c.newAskCmd(),
		c.newSeedCmd(),
		c.newExpireCmd(),
		c.newPurgeCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "chatctl: %v\n", err)
		os.Exit(1)
	}
}

func (c *cli) logger() *zap.Logger {
	if c.app == nil {
		return zap.NewNop()
	}
	return c.app.Log
}
