package cli

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the server and its dependencies are up",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.Health(cmd.Context()); err != nil {
			return err
		}
		pterm.Success.Println("server is up")
		if err := client.Ready(cmd.Context()); err != nil {
			pterm.Warning.Printfln("server is not ready: %v", err)
			return nil
		}
		pterm.Success.Println("server is ready")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
