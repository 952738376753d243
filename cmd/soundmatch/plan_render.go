package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"soundmatch/internal/resolve"
)

func printPlan(cmd *cobra.Command, ctx *commandContext, variants []resolve.QueryVariant) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, variants)
	}
	rows := make([][]string, 0, len(variants))
	for _, v := range variants {
		rows = append(rows, []string{strconv.Itoa(v.Tier), orDash(v.Scope), v.Text})
	}
	out := cmd.OutOrStdout()
	_, err := out.Write([]byte(renderTable(
		[]string{"Tier", "Scope", "Query"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft},
		shouldColorize(out),
	) + "\n"))
	return err
}
