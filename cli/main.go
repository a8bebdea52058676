package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cogctl",
	Short: "cogctl - tooling for cog slash commands",
	Long: `Developer tooling for bots built on cogext.
Generate doc registrations for command handlers and list the slash commands
declared in a source tree.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(docgenCmd)
	rootCmd.AddCommand(listCmd)
}
