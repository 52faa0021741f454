package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/worker-profile-wizard/internal/wizard"
)

var stepsJSON bool

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "Print the wizard step registry",
	RunE:  runSteps,
}

func init() {
	stepsCmd.Flags().BoolVar(&stepsJSON, "json", false, "Print as JSON")
	rootCmd.AddCommand(stepsCmd)
}

type stepRow struct {
	Index       int      `json:"index"`
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Fields      []string `json:"fields"`
	Recommended []string `json:"recommended"`
}

func runSteps(cmd *cobra.Command, _ []string) error {
	rows := make([]stepRow, 0, wizard.TotalSteps)
	for _, def := range wizard.Steps() {
		rows = append(rows, stepRow{
			Index:       int(def.Index),
			ID:          def.ID,
			Label:       def.Label,
			Fields:      []string{},
			Recommended: def.Recommended,
		})
	}
	for _, f := range wizard.Fields() {
		rows[f.Step].Fields = append(rows[f.Step].Fields, f.Name)
	}

	out := cmd.OutOrStdout()
	if stepsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tLABEL\tRECOMMENDED\tFIELDS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.Index, r.ID, r.Label,
			strings.Join(r.Recommended, ","), strings.Join(r.Fields, ","))
	}
	return tw.Flush()
}
