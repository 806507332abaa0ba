package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/toolhouse/internal/presentation/tui"
	"github.com/aretw0/toolhouse/pkg/tools/dicetool"
	"github.com/spf13/cobra"
)

var rollCmd = &cobra.Command{
	Use:   "roll <notation>",
	Short: "Roll dice from the command line",
	Long: `Rolls a dice expression such as 2d6, 1d20+5 or 4d6kh3 and prints the report.
On a terminal the session is also rendered as a table.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		numRolls, _ := cmd.Flags().GetInt("num-rolls")
		jsonMode, _ := cmd.Flags().GetBool("json")

		host, _, err := newServer(cmd)
		if err != nil {
			return err
		}
		defer host.Close()

		roll := host.Registry.Wrap(dicetool.RollToolName, func(ctx context.Context, in map[string]any) (any, error) {
			return host.Dice.Roll(ctx, in["notation"].(string), in["num_rolls"])
		})
		out, err := roll(cmd.Context(), map[string]any{"notation": args[0], "num_rolls": numRolls})
		if err != nil {
			return err
		}
		res := out.(dicetool.Result)

		out := cmd.OutOrStdout()
		if jsonMode {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		if !tui.IsTerminal(os.Stdout) {
			fmt.Fprint(out, res.Report)
			return nil
		}
		render, err := tui.NewRenderer()
		if err != nil {
			fmt.Fprint(out, res.Report)
			return nil
		}
		table, err := render(tui.SessionMarkdown(res.Session))
		if err != nil {
			return err
		}
		fmt.Fprint(out, table)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rollCmd)

	rollCmd.Flags().IntP("num-rolls", "n", 1, "How many times to roll the expression")
	rollCmd.Flags().Bool("json", false, "Print the session as JSON")
}
