package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List the slash commands declared in a source tree",
	Long:  `Scan Go sources for cogext.Slash and cogext.Subcommand declarations and print the commands they declare.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

var (
	listJSON   bool
	filterBase string
)

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print the declarations as JSON")
	listCmd.Flags().StringVarP(&filterBase, "base", "b", "", "Only list subcommands of this base command")
}

func runList(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	decls, err := discoverCommands(root)
	if err != nil {
		return fmt.Errorf("discover commands: %w", err)
	}
	if filterBase != "" {
		filtered := decls[:0]
		for _, d := range decls {
			if d.Kind == "subcommand" && d.Base == filterBase {
				filtered = append(filtered, d)
			}
		}
		decls = filtered
	}

	out := cmd.OutOrStdout()
	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(decls)
	}
	displayCommands(out, decls)
	return nil
}

func displayCommands(w io.Writer, decls []CommandDecl) {
	if len(decls) == 0 {
		fmt.Fprintln(w, "No slash commands found.")
		return
	}

	slash, sub := 0, 0
	for _, d := range decls {
		fmt.Fprintf(w, "/%s", d.Path())
		if d.Description != "" {
			fmt.Fprintf(w, " - %s", d.Description)
		}
		fmt.Fprintf(w, "\n    %s (%s:%d)\n", d.Handler, d.File, d.Line)
		if d.Kind == "slash" {
			slash++
		} else {
			sub++
		}
	}
	fmt.Fprintf(w, "\nSummary: %d commands, %d subcommands\n", slash, sub)
}
