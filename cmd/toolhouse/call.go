package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/toolhouse/pkg/domain"
	"github.com/aretw0/toolhouse/pkg/runner"
	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call [tool]",
	Short: "Call a tool directly",
	Long: `Calls one tool with JSON arguments and prints its result, e.g.

  toolhouse call roll_dice --args '{"notation":"4d6kh3","num_rolls":6}'

With --stdin, reads one JSON tool call per line ({"id":"1","name":"roll_dice","args":{...}})
and writes one JSON result per line.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stdin, _ := cmd.Flags().GetBool("stdin")
		rawArgs, _ := cmd.Flags().GetString("args")
		if stdin == (len(args) == 1) {
			return errors.New("give either a tool name or --stdin")
		}

		host, _, err := newServer(cmd)
		if err != nil {
			return err
		}
		defer host.Close()

		if stdin {
			h := runner.NewJSONHandler(cmd.InOrStdin(), cmd.OutOrStdout())
			return h.Serve(cmd.Context(), host.Registry)
		}

		call := domain.ToolCall{Name: args[0]}
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &call.Args); err != nil {
				return fmt.Errorf("%w: --args: %v", domain.ErrInvalidArguments, err)
			}
		}
		res, err := host.Registry.Call(cmd.Context(), call)
		if err != nil {
			return err
		}
		if res.IsError {
			return errors.New(res.Error)
		}

		out := cmd.OutOrStdout()
		if s, ok := res.Result.(string); ok {
			fmt.Fprintln(out, s)
			return nil
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Result)
	},
}

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().String("args", "", "Tool arguments as a JSON object")
	callCmd.Flags().Bool("stdin", false, "Read JSON Lines tool calls from stdin")
}
