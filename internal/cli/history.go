package cli

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show answered questions from this server session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		entries, err := client.History(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			pterm.Info.Println("history is empty")
			return nil
		}

		table := pterm.TableData{{"id", "question", "rows", "status"}}
		for _, entry := range entries {
			status := "ok"
			switch {
			case !entry.Success:
				status = "agent failed"
			case entry.DataError != "":
				status = "sql failed"
			case entry.SQL == "":
				status = "no sql"
			}
			table = append(table, []string{
				entry.ID,
				entry.UserQuestion,
				fmt.Sprint(entry.RowCount),
				status,
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the server-side history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.ClearHistory(cmd.Context()); err != nil {
			return err
		}
		pterm.Success.Println("history cleared")
		return nil
	},
}

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Download the result set of a history entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		payload, err := client.Export(cmd.Context(), args[0], exportFormat)
		if err != nil {
			return err
		}

		output := exportOutput
		if output == "" {
			output = args[0] + "." + exportFormat
		}
		if err := os.WriteFile(output, payload, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		pterm.Success.Printfln("wrote %s (%d bytes)", output, len(payload))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "export format: csv or parquet")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (defaults to <id>.<format>)")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd, exportCmd)
}
