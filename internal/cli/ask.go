package cli

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the database a natural-language question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		question := strings.TrimSpace(strings.Join(args, " "))

		spinner, _ := pterm.DefaultSpinner.Start("thinking...")
		outcome, err := client.Ask(cmd.Context(), question)
		if err != nil {
			spinner.Fail("request failed")
			return err
		}
		spinner.Stop()

		renderOutcome(outcome)
		return nil
	},
}

func renderOutcome(outcome Outcome) {
	if !outcome.Success {
		pterm.Error.Println(outcome.Error)
		return
	}

	pterm.DefaultSection.Println("Answer")
	pterm.Println(strings.TrimSpace(outcome.AgentResponse))

	if outcome.SQL == "" {
		pterm.Println()
		pterm.Info.Println("no SQL statement was found in the answer")
		return
	}

	pterm.DefaultSection.Println("SQL")
	pterm.DefaultBox.Println(outcome.SQL)

	switch {
	case outcome.DataError != "":
		pterm.Warning.Printfln("the statement failed when re-executed: %s", outcome.DataError)
	case outcome.Data == nil || outcome.RowCount == 0:
		pterm.Info.Println("the query returned no rows")
	default:
		pterm.DefaultSection.Println("Result")
		renderTable(*outcome.Data)
		note := fmt.Sprintf("%d rows, %d columns (%d ms)", outcome.RowCount, outcome.ColumnCount, outcome.DurationMS)
		if len(outcome.Data.Rows) < outcome.RowCount {
			note += fmt.Sprintf(", showing first %d", len(outcome.Data.Rows))
		}
		pterm.Println(pterm.Gray(note))
	}
}

func renderTable(data TableData) {
	table := pterm.TableData{data.Columns}
	for _, row := range data.Rows {
		cells := make([]string, len(row))
		for i, value := range row {
			if value == nil {
				cells[i] = ""
				continue
			}
			cells[i] = fmt.Sprint(value)
		}
		table = append(table, cells)
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(table).Render()
}

func init() {
	rootCmd.AddCommand(askCmd)
}
