package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mosaic/internal/config"
)

type labelTally struct {
	Label string `json:"label"`
	Yes   int    `json:"yes"`
	No    int    `json:"no"`
	Unset int    `json:"unset"`
}

func newLibraryCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "library",
		Short: "Summarize the scanned library",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLibrary(cmd, cmdCtx, jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of tables")
	return cmd
}

func runLibrary(cmd *cobra.Command, cmdCtx *commandContext, jsonOutput bool) error {
	store, stats, err := cmdCtx.loadLibrary()
	if err != nil {
		return err
	}
	snap := store.Snapshot()
	total := snap.Len()

	tallies := make([]labelTally, 0, len(snap.Labels()))
	for _, name := range snap.Labels() {
		yes, no, ok := snap.Vectors(name)
		if !ok {
			continue
		}
		yesCount := int(yes.GetCardinality())
		noCount := int(no.GetCardinality())
		tallies = append(tallies, labelTally{
			Label: name,
			Yes:   yesCount,
			No:    noCount,
			Unset: total - yesCount - noCount,
		})
	}

	if jsonOutput {
		return writeJSON(cmd, struct {
			Items   map[string]int `json:"items"`
			Total   int            `json:"total"`
			Records int            `json:"records"`
			Skipped int            `json:"skipped"`
			Labels  []labelTally   `json:"labels"`
		}{stats.Items, total, stats.Records, stats.Skipped, tallies})
	}

	out := cmd.OutOrStdout()

	orientationRows := make([][]string, 0, len(config.Orientations)+1)
	for _, orientation := range config.Orientations {
		orientationRows = append(orientationRows, []string{orientation, strconv.Itoa(stats.Items[orientation])})
	}
	orientationRows = append(orientationRows, []string{"total", strconv.Itoa(total)})
	fmt.Fprintln(out, renderTable(out, []string{"Orientation", "Items"}, orientationRows, []columnAlignment{alignLeft, alignRight}))

	if len(tallies) == 0 {
		fmt.Fprintln(out, "No labels registered.")
		return nil
	}

	labelRows := make([][]string, 0, len(tallies))
	for _, tally := range tallies {
		labelRows = append(labelRows, []string{
			tally.Label,
			strconv.Itoa(tally.Yes),
			strconv.Itoa(tally.No),
			strconv.Itoa(tally.Unset),
		})
	}
	fmt.Fprintln(out, renderTable(out, []string{"Label", "Yes", "No", "Unset"}, labelRows, []columnAlignment{alignLeft, alignRight, alignRight, alignRight}))

	if stats.Skipped > 0 {
		fmt.Fprintf(out, "%d corrupt record file(s) skipped\n", stats.Skipped)
	}
	return nil
}
