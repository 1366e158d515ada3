package formatter

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/k8sec/kubegate/internal/types"
)

// Format formats data as a table using go-pretty/v6/table
func (t *Table) Format(data types.Result) (string, error) {
	// Create summary table
	summaryTable := table.NewWriter()
	summaryTable.SetOutputMirror(nil)
	summaryTable.SetStyle(table.StyleLight)
	summaryTable.Style().Options.SeparateColumns = true

	summaryTable.SetTitle("SCAN SUMMARY")
	summaryTable.AppendHeader(table.Row{
		"KEY",
		"VALUE",
	})
	summaryTable.AppendRow(table.Row{"SOURCE", data.Source})
	summaryTable.AppendRow(table.Row{"FILES SCANNED", data.FilesScanned})
	summaryTable.AppendRow(table.Row{"FINDINGS", len(data.Findings)})
	summaryTable.AppendRow(table.Row{"WARNINGS", len(data.Warnings)})
	summaryTable.AppendRow(table.Row{"TIMESTAMP", data.Timestamp})

	// Create findings table
	findingsTable := table.NewWriter()
	findingsTable.SetOutputMirror(nil)
	findingsTable.SetStyle(table.StyleLight)
	findingsTable.Style().Options.SeparateColumns = true

	findingsTable.SetTitle("FINDINGS")
	findingsTable.AppendHeader(table.Row{
		"FILE",
		"LINE",
		"RESOURCE",
		"CONTAINER",
		"SEVERITY",
		"ISSUE",
	})

	for _, f := range SortFindings(data.Findings) {
		line := "?"
		if f.Line > 0 {
			line = fmt.Sprintf("%d", f.Line)
		}
		findingsTable.AppendRow(table.Row{
			f.File,
			line,
			f.Resource,
			f.Container,
			f.Severity.String(),
			f.Message,
		})
	}

	return summaryTable.Render() + "\n\n" + findingsTable.Render() + "\n", nil
}
