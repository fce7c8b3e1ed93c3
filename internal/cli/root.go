package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var (
	serverURL      string
	requestTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "sqlsage",
	Short:         "Ask a database questions in natural language",
	Long:          "sqlsage is a terminal client for the sqlsage API: it sends natural-language questions, shows the generated SQL and its result set, and browses the connected schema.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClient() (*Client, error) {
	return NewClient(serverURL, requestTimeout)
}

func init() {
	defaultServer := "http://localhost:8080"
	if env := strings.TrimSpace(os.Getenv("SQLSAGE_SERVER")); env != "" {
		defaultServer = env
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "sqlsage API base URL")
	rootCmd.PersistentFlags().DurationVar(&requestTimeout, "timeout", 2*time.Minute, "HTTP request timeout")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("sqlsage %s\n", Version)
	},
}
