package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/skipera/skipera/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent solve outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		itemID, _ := cmd.Flags().GetString("item")

		s, err := openEventLog(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		outcomes, err := s.EventRepo().QuerySolveOutcomes(cmd.Context(), store.QueryOpts{Limit: limit, ItemID: itemID})
		if err != nil {
			return fmt.Errorf("query outcomes: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(outcomes) == 0 {
			fmt.Fprintln(out, "No solve outcomes recorded.")
			return nil
		}

		rows := make([][]string, 0, len(outcomes))
		for _, o := range outcomes {
			grade := "-"
			if o.EarnedGrade != nil {
				grade = fmt.Sprintf("%.2f", *o.EarnedGrade)
			}
			rows = append(rows, []string{
				strconv.Itoa(o.ID),
				timestamp(o.Timestamp),
				shortRun(o.RunID),
				truncate(o.CourseID, 14),
				truncate(o.ItemID, 18),
				o.Strategy,
				o.Status,
				strconv.Itoa(o.Answered),
				grade,
				truncate(o.Detail, 40),
			})
		}
		printTable(out, []string{"ID", "Time", "Run", "Course", "Item", "Strategy", "Status", "Ans", "Grade", "Detail"}, rows, nil)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of outcomes to show")
	historyCmd.Flags().String("item", "", "Filter by item id")
}
