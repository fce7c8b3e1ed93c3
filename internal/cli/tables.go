package cli

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables in the connected database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		names, err := client.Tables(cmd.Context())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			pterm.Info.Println("no tables found")
			return nil
		}
		items := make([]pterm.BulletListItem, 0, len(names))
		for _, name := range names {
			items = append(items, pterm.BulletListItem{Level: 0, Text: name})
		}
		return pterm.DefaultBulletList.WithItems(items).Render()
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the schema of every table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		info, err := client.Schema(cmd.Context())
		if err != nil {
			return err
		}
		pterm.Println(info)
		return nil
	},
}

var sampleLimit int

var sampleCmd = &cobra.Command{
	Use:   "sample <table>",
	Short: "Show sample rows from a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		data, err := client.Sample(cmd.Context(), args[0], sampleLimit)
		if err != nil {
			return err
		}
		if len(data.Rows) == 0 {
			pterm.Info.Println("table is empty")
			return nil
		}
		renderTable(data)
		return nil
	},
}

func init() {
	sampleCmd.Flags().IntVar(&sampleLimit, "limit", 0, "number of rows to sample (server default when 0)")
	rootCmd.AddCommand(tablesCmd, schemaCmd, sampleCmd)
}
