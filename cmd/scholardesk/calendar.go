package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/scholardesk/internal/calendar"
)

func calendarCmd() *cobra.Command {
	var (
		source  string
		year    int
		month   int
		sixRows bool
		today   string
	)

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print the deadline grid of a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseNow(today)
			if err != nil {
				return fmt.Errorf("invalid --today: %w", err)
			}
			if year == 0 {
				year = now.Year()
			}
			if month == 0 {
				month = int(now.Month())
			}
			if month < 1 || month > 12 {
				return fmt.Errorf("--month must be between 1 and 12, got %d", month)
			}

			list, err := loadCatalog(cmd.Context(), source)
			if err != nil {
				return err
			}

			grid := calendar.BuildMonth(list, year, time.Month(month), now, sixRows)
			printMonth(cmd.OutOrStdout(), grid)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "catalog", "", "catalog file (.json/.yaml) or http(s) URL")
	cmd.Flags().IntVar(&year, "year", 0, "year, defaults to the current one")
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12, defaults to the current one")
	cmd.Flags().BoolVar(&sixRows, "six-rows", false, "always print six weeks")
	cmd.Flags().StringVar(&today, "today", "", "reference date (YYYY-MM-DD) for yearless deadlines")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}

func printMonth(w io.Writer, m calendar.Month) {
	fmt.Fprintf(w, "%s %d\n\n", m.Month, m.Year)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Sun\tMon\tTue\tWed\tThu\tFri\tSat\t")
	for _, week := range m.Weeks() {
		for _, c := range week {
			switch {
			case !c.InMonth:
				fmt.Fprintf(tw, "(%d)\t", c.Day)
			case len(c.Scholarships) > 0:
				fmt.Fprintf(tw, "%d*%d\t", c.Day, len(c.Scholarships))
			default:
				fmt.Fprintf(tw, "%d\t", c.Day)
			}
		}
		fmt.Fprintln(tw)
	}
	_ = tw.Flush()

	fmt.Fprintln(w)
	for _, c := range m.Cells {
		if len(c.Scholarships) == 0 {
			continue
		}
		names := make([]string, 0, len(c.Scholarships))
		for _, s := range c.Scholarships {
			names = append(names, s.Name)
		}
		fmt.Fprintf(w, "%s  %s\n", c.Date.Format(time.DateOnly), strings.Join(names, "; "))
	}
}
