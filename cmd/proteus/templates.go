package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List available templates",
	Long:  `Templates lists built-in templates, templates found under --templates-dir and those declared in proteus.json config files.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runTemplates())
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates() int {
	registry, err := loadTemplateRegistry()
	if err != nil {
		slog.Error("failed to load templates", "error", err)
		return exitLoadTemplatesFailed
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, id := range registry.IDs() {
		tmpl, err := registry.Get(id)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%d steps\t%s\n", id, len(tmpl.Steps), tmpl.Description)
	}
	if err := w.Flush(); err != nil {
		slog.Error("failed to write templates", "error", err)
		return exitCommandFailed
	}
	return 0
}
