package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/scholardesk/internal/domain"
)

func deadlineCmd() *cobra.Command {
	var today string

	cmd := &cobra.Command{
		Use:   "deadline [text]",
		Short: "Parse a free-text deadline",
		Example: `  scholardesk deadline "Early December normally the 1st"
  scholardesk deadline --today 2026-10-18 "November 15/ December 2"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseNow(today)
			if err != nil {
				return fmt.Errorf("invalid --today: %w", err)
			}

			dl := domain.ParseDeadline(strings.Join(args, " "), now)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "kind:  %s\n", dl.Kind)
			if dl.IsExact() {
				fmt.Fprintf(out, "date:  %s (%s)\n", dl.Date.Format(time.DateOnly), dl.Date.Weekday())
			}
			if dl.Rule != "" {
				fmt.Fprintf(out, "rule:  %s\n", dl.Rule)
			}
			fmt.Fprintf(out, "label: %s\n", dl.Label())
			return nil
		},
	}

	cmd.Flags().StringVar(&today, "today", "", "reference date (YYYY-MM-DD), defaults to today")
	return cmd
}
