package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/psantana5/loadtime/internal/render"
	"github.com/psantana5/loadtime/internal/store"
)

var historyOutput string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded durations",
	Long:  `List every operation with a stored record and the duration of its last successful run.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var clearCmd = &cobra.Command{
	Use:   "clear <name>...",
	Short: "Forget recorded durations",
	Long:  `Reset the stored duration so the next run of each named operation starts without an estimate.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(clearCmd)

	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "table", "Output format: table, json, yaml")
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	entries, err := s.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch historyOutput {
	case "json":
		if entries == nil {
			entries = []store.Entry{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(entries)
	case "table":
		if len(entries) == 0 {
			fmt.Fprintf(out, "No recorded durations in %s\n", s.Dir())
			return nil
		}

		table := tablewriter.NewWriter(out)
		table.Header("Key", "Last Duration", "Seconds", "Updated")
		for _, e := range entries {
			duration, seconds := "-", "-"
			if e.TotalTime != nil {
				duration = render.FormatDuration(*e.TotalTime)
				seconds = fmt.Sprintf("%.2f", *e.TotalTime)
			}
			table.Append([]string{e.Key, duration, seconds, e.UpdatedAt.Format("2006-01-02 15:04:05")})
		}
		return table.Render()
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", historyOutput)
	}
}

func runClear(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	for _, name := range args {
		s.Clear(name)
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", s.Path(name))
	}
	return nil
}
