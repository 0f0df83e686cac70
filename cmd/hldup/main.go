package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/autobrr/hldup/cmd"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "hldup [ROOT...]",
		Short: "Replace duplicate files with hardlinks",
		Long: `A CLI application that finds byte-identical files beneath the given roots
and replaces the duplicates with hardlinks to a single copy.
`,
		Args: cobra.ArbitraryArgs,
		Run:  cmd.RunDedup,
	}

	// Parse persistent flags
	rootCmd.PersistentFlags().StringVar(&cmd.FlagConfigFolder, "config-dir", cmd.FlagConfigFolder, "Config folder")
	rootCmd.PersistentFlags().StringVarP(&cmd.FlagConfigFile, "config", "c", cmd.FlagConfigFile, "Config file")
	rootCmd.PersistentFlags().StringVarP(&cmd.FlagLogFile, "log", "l", cmd.FlagLogFile, "Log file")
	rootCmd.PersistentFlags().CountVarP(&cmd.FlagLogLevel, "verbose", "v", "Verbose level")

	rootCmd.Flags().BoolVar(&cmd.FlagDryRun, "dry-run", false, "Dry run mode")
	cmd.AddModeFlags(rootCmd.Flags(), &cmd.FlagMode)

	rootCmd.AddCommand(cmd.VersionCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}
