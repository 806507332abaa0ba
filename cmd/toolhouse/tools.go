package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/aretw0/toolhouse/internal/presentation/tui"
	"github.com/aretw0/toolhouse/pkg/domain"
	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools this configuration exposes",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")

		host, _, err := newServer(cmd)
		if err != nil {
			return err
		}
		defer host.Close()

		out := cmd.OutOrStdout()
		if jsonMode {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(host.Registry.List())
		}

		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stderr)
		}
		return printTools(out, host.Registry.List())
	},
}

func printTools(out io.Writer, tools []domain.Tool) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION")
	for _, t := range tools {
		fmt.Fprintf(w, "%s\t%s\n", t.Name, t.Description)
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.Flags().Bool("json", false, "Print the catalogue as JSON")
}
