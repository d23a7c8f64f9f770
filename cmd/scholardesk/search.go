package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/scholardesk/internal/domain"
)

func searchCmd() *cobra.Command {
	var (
		source  string
		based   string
		suggest bool
		limit   int
		today   string
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Filter a catalog the way the scholarships page does",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseNow(today)
			if err != nil {
				return fmt.Errorf("invalid --today: %w", err)
			}
			list, err := loadCatalog(cmd.Context(), source)
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			var found []*domain.Scholarship
			if suggest {
				found = domain.Suggest(query, list, limit)
			} else {
				found = domain.FilterScholarships(list, query, based)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDEADLINE\tAWARD\tBASED")
			for _, s := range found {
				dl := domain.ParseDeadline(s.Deadline, now)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, dl.Label(), s.AwardLabel(), s.Based)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			cmd.Printf("\n%d of %d scholarships\n", len(found), len(list))
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "catalog", "", "catalog file (.json/.yaml) or http(s) URL")
	cmd.Flags().StringVar(&based, "based", "all", "need, merit, both or all")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "rank like the search box instead of filtering")
	cmd.Flags().IntVar(&limit, "limit", domain.DefaultSuggestLimit, "suggestion count with --suggest")
	cmd.Flags().StringVar(&today, "today", "", "reference date (YYYY-MM-DD) for deadline labels")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}
