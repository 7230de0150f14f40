package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skipera/skipera/internal/course"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Complete every item of a course",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		slug, _ := cmd.Flags().GetString("slug")
		solve, _ := cmd.Flags().GetBool("llm")

		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = e.logger.Sync() }()

		sess, err := e.session()
		if err != nil {
			return err
		}
		st, err := e.openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		var (
			solver course.ItemSolver
			runID  string
		)
		if solve {
			s, err := e.newSolver(ctx, sess, st.EventRepo())
			if err != nil {
				return err
			}
			solver = s
			runID = s.RunID()
		}

		sum, err := course.NewWalker(sess, solver, e.logger).Run(ctx, slug)
		if sum != nil {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Videos watched:   %d\n", sum.Videos)
			fmt.Fprintf(out, "Readings done:    %d\n", sum.Readings)
			fmt.Fprintf(out, "Graded submitted: %d\n", sum.Solved)
			fmt.Fprintf(out, "Skipped:          %d\n", sum.Skipped)
			fmt.Fprintf(out, "Failed:           %d\n", sum.Failed)
			if runID != "" {
				fmt.Fprintf(out, "Oracle cost:      skipera llm stats --run %s\n", runID)
			}
		}
		return err
	},
}

func init() {
	runCmd.Flags().String("slug", "", "The course slug from the course URL")
	runCmd.Flags().Bool("llm", false, "Solve graded assignments with a language model")
	_ = runCmd.MarkFlagRequired("slug")
}
