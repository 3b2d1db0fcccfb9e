package main

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"mosaic/internal/library"
	"mosaic/internal/query"
)

func newQueryCommand(cmdCtx *commandContext) *cobra.Command {
	var orientation string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "query EXPRESSION",
		Short: "Evaluate a label expression against the library",
		Long:  "Scans the media directory and prints the items matched by a label\nexpression, for example: mosaic query '🥗.!👎'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, cmdCtx, args[0], orientation, jsonOutput)
		},
	}
	cmd.Flags().StringVar(&orientation, "orientation", "", "Restrict matches to one orientation")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func runQuery(cmd *cobra.Command, cmdCtx *commandContext, expression, orientation string, jsonOutput bool) error {
	store, _, err := cmdCtx.loadLibrary()
	if err != nil {
		return err
	}
	snap := store.Snapshot()

	matches, err := query.Match(expression, snap)
	if err != nil {
		return err
	}
	if orientation != "" {
		filtered := make([]string, 0, len(matches))
		for _, id := range matches {
			if library.ItemOrientation(id) == orientation {
				filtered = append(filtered, id)
			}
		}
		matches = filtered
	}

	if jsonOutput {
		return writeJSON(cmd, struct {
			Expression string   `json:"expression"`
			Matches    []string `json:"matches"`
			Count      int      `json:"count"`
		}{expression, matches, len(matches)})
	}

	out := cmd.OutOrStdout()
	if len(matches) == 0 {
		fmt.Fprintln(out, "No matches.")
		return nil
	}

	rows := make([][]string, 0, len(matches))
	for _, id := range matches {
		rows = append(rows, []string{library.ItemOrientation(id), path.Base(id)})
	}
	fmt.Fprintln(out, renderTable(out, []string{"Orientation", "File"}, rows, nil))
	fmt.Fprintf(out, "%d of %d items match\n", len(matches), snap.Len())
	return nil
}
