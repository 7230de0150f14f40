package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skipera/skipera/internal/assessment"
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve one graded item",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		courseID, _ := cmd.Flags().GetString("course-id")
		itemID, _ := cmd.Flags().GetString("item-id")

		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = e.logger.Sync() }()

		if strategy, _ := cmd.Flags().GetString("strategy"); strategy != "" {
			e.cfg.Solver.Strategy = strategy
			if err := e.cfg.Validate(); err != nil {
				return err
			}
		}

		sess, err := e.session()
		if err != nil {
			return err
		}
		st, err := e.openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		solver, err := e.newSolver(ctx, sess, st.EventRepo())
		if err != nil {
			return err
		}

		res, err := solver.Solve(ctx, assessment.Ref{CourseID: courseID, ItemID: itemID})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Run:      %s\n", res.RunID)
		fmt.Fprintf(out, "Status:   %s\n", res.Status)
		fmt.Fprintf(out, "Answered: %d\n", res.Answered)
		if res.Outcome != nil {
			fmt.Fprintf(out, "Grade:    %.2f (passed: %v)\n", res.Outcome.EarnedGrade, res.Outcome.IsPassed)
		}
		if res.Err != nil {
			fmt.Fprintf(out, "Detail:   %v\n", res.Err)
		}
		return nil
	},
}

func init() {
	solveCmd.Flags().String("course-id", "", "Course id")
	solveCmd.Flags().String("item-id", "", "Graded item id")
	solveCmd.Flags().String("strategy", "", "Override solver.strategy (sequential or single_page)")
	_ = solveCmd.MarkFlagRequired("course-id")
	_ = solveCmd.MarkFlagRequired("item-id")
}
