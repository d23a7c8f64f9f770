package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/scholardesk/internal/app"
	"github.com/MrSnakeDoc/scholardesk/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "scholardesk",
		Short:        "Scholarship discovery service",
		Long:         "scholardesk serves the scholarship catalog, deadline calendar and per-user favorites over HTTP.",
		Version:      version.Version,
		SilenceUsage: true,
		// Running without a subcommand starts the service
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.New().Run()
		},
	}
	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(deadlineCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service (configured through SCHOLARDESK_* variables)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.New().Run()
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.String())
		},
	}
}
