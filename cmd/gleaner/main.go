// Command gleaner scrapes URL lists into normalized records, either from
// the command line or behind an HTTP API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/use-agent/gleaner/config"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "gleaner",
		Short:         "Fetch, extract and normalize web content",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (overrides GLEANER_CONFIG)")

	load := func() (*config.Config, error) {
		if cfgFile != "" {
			if err := os.Setenv("GLEANER_CONFIG", cfgFile); err != nil {
				return nil, err
			}
		}
		return config.Load()
	}

	root.AddCommand(
		newServeCommand(load),
		newScrapeCommand(load),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "gleaner %s\n", version)
			},
		},
	)
	return root
}
