package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/flixlens-cli/internal/run"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List or inspect saved runs (see --save)",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := runsDir()
		if err != nil {
			return err
		}
		runs, err := run.List(dir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "(no runs)")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(out, "- %s  %s  %-9s %s (%d artifacts)\n", r.ID[:8], stamp(r.CreatedAt), r.Command, r.Source, len(r.Artifacts))
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id-prefix>",
	Short: "Show a saved run's parameters and artifacts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := runsDir()
		if err != nil {
			return err
		}
		r, err := run.Find(dir, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "id: %s\n", r.ID)
		fmt.Fprintf(out, "command: %s\n", r.Command)
		fmt.Fprintf(out, "source: %s\n", r.Source)
		fmt.Fprintf(out, "created: %s\n", stamp(r.CreatedAt))
		fmt.Fprintf(out, "dir: %s\n", r.RootDir())
		if len(r.Params) > 0 {
			keys := make([]string, 0, len(r.Params))
			for k := range r.Params {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(out, "params:")
			for _, k := range keys {
				fmt.Fprintf(out, "  %s: %s\n", k, r.Params[k])
			}
		}
		if len(r.Artifacts) == 0 {
			fmt.Fprintln(out, "(no artifacts)")
			return nil
		}
		fmt.Fprintln(out, "artifacts:")
		for _, a := range r.Artifacts {
			fmt.Fprintf(out, "- %s (%s)\n", a.Name, a.Kind)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsShowCmd)
}
