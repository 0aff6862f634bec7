package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "biasbotd",
	Short: "Idle-aware companion chat service",
	Long: `biasbotd tracks a conversation session per client address, enforces a
daily message quota, and nudges idle clients with proactive follow-up
prompts delivered through a polling queue.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("biasbotd %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (optional)")
	rootCmd.AddCommand(serveCmd, versionCmd)
}
