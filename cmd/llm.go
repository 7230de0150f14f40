package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skipera/skipera/internal/config"
	"github.com/skipera/skipera/internal/llm"
	"github.com/skipera/skipera/internal/store"
	"github.com/skipera/skipera/internal/ui/theme"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded oracle requests and what they cost",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent oracle requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		opts := store.QueryOpts{Limit: limit}
		opts.Purpose, _ = cmd.Flags().GetString("purpose")
		opts.RunID, _ = cmd.Flags().GetString("run")
		opts.ItemID, _ = cmd.Flags().GetString("item")

		s, err := openEventLog(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No oracle requests recorded.")
			return nil
		}

		rows := make([][]string, 0, len(events))
		for _, e := range events {
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			rows = append(rows, []string{
				strconv.Itoa(e.ID),
				timestamp(e.Timestamp),
				orDash(shortRun(e.RunID)),
				orDash(truncate(e.ItemID, 20)),
				truncate(e.Model, 24),
				fmt.Sprintf("%d/%d", e.InputTokens, e.OutputTokens),
				fmt.Sprintf("%dms", e.LatencyMs),
				ok,
			})
		}
		printTable(out, []string{"ID", "Time", "Run", "Item", "Model", "Tokens in/out", "Latency", "OK"}, rows, nil)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply of one oracle request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openEventLog(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		writeEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show estimated oracle cost per item, per run and per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, _ := cmd.Flags().GetString("run")

		s, err := openEventLog(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byItem, err := s.EventRepo().LLMUsageByItem(ctx, store.QueryOpts{RunID: runID})
		if err != nil {
			return fmt.Errorf("query item usage: %w", err)
		}
		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(byItem) == 0 && len(byModel) == 0 {
			fmt.Fprintln(out, "No oracle usage recorded yet.")
			return nil
		}

		runs, unpriced := summarizeCost(byItem)
		writeRunCosts(out, runs)
		if runID == "" {
			writeModelCosts(out, byModel)
		}
		if len(unpriced) > 0 {
			fmt.Fprintln(out, theme.Hint.Render("No pricing for "+strings.Join(unpriced, ", ")+"; costs marked +? are lower bounds."))
		}
		return nil
	},
}

func writeEvent(w io.Writer, e *store.LLMEvent) {
	fields := [][2]string{
		{"ID", strconv.Itoa(e.ID)},
		{"Time", timestamp(e.Timestamp)},
		{"Model", e.Provider + "/" + e.Model},
		{"Purpose", e.Purpose},
	}
	if e.RunID != "" {
		fields = append(fields, [2]string{"Run", e.RunID}, [2]string{"Item", e.ItemID})
	}
	tokens := fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)
	if c := llm.LookupCost(e.Model); c != nil {
		tokens += " (" + formatCost(c.Cost(e.InputTokens, e.OutputTokens)) + ")"
	}
	fields = append(fields, [2]string{"Tokens", tokens}, [2]string{"Latency", fmt.Sprintf("%dms", e.LatencyMs)})
	if e.Success {
		fields = append(fields, [2]string{"Result", "ok"})
	} else {
		fields = append(fields, [2]string{"Result", "failed: " + e.ErrorMessage})
	}
	for _, f := range fields {
		fmt.Fprintf(w, "%-8s %s\n", f[0]+":", f[1])
	}

	for _, section := range []struct{ title, body string }{
		{"Prompt", e.RequestBody},
		{"Reply", e.ResponseBody},
	} {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Title.Render(section.title))
		if section.body == "" {
			fmt.Fprintln(w, theme.Hint.Render("(not captured)"))
			continue
		}
		fmt.Fprintln(w, section.body)
	}
}

func writeRunCosts(w io.Writer, runs []runCost) {
	for _, run := range runs {
		fmt.Fprintln(w, theme.Title.Render("Run "+run.RunID))
		rows := make([][]string, 0, len(run.Items))
		for _, it := range run.Items {
			rows = append(rows, usageRow(it.ItemID, it.usageTotals))
		}
		printTable(w, usageHeaders("Item"), rows, usageRow("run total", run.Total))
		fmt.Fprintln(w)
	}
}

func writeModelCosts(w io.Writer, usage []store.ModelUsage) {
	if len(usage) == 0 {
		return
	}
	var total usageTotals
	rows := make([][]string, 0, len(usage))
	for _, mu := range usage {
		u := usageTotals{Calls: mu.Calls, InputTokens: mu.InputTokens, OutputTokens: mu.OutputTokens}
		if c := llm.LookupCost(mu.Model); c != nil {
			u.Cost = c.Cost(mu.InputTokens, mu.OutputTokens)
		} else {
			u.Partial = true
		}
		total.add(u)
		rows = append(rows, usageRow(truncate(mu.Model, 32), u))
	}
	fmt.Fprintln(w, theme.Title.Render("All requests by model"))
	printTable(w, usageHeaders("Model"), rows, usageRow("total", total))
}

func usageHeaders(first string) []string {
	return []string{first, "Calls", "Failed", "Input", "Output", "Cost"}
}

func usageRow(label string, u usageTotals) []string {
	return []string{
		label,
		strconv.Itoa(u.Calls),
		strconv.Itoa(u.Failed),
		strconv.Itoa(u.InputTokens),
		strconv.Itoa(u.OutputTokens),
		u.costString(),
	}
}

func shortRun(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// openEventLog opens the event log for read-only commands, which need
// neither a platform session nor a model key.
func openEventLog(cmd *cobra.Command) (*store.Store, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return (&env{cfg: cfg}).openStore(cmd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. answer)")
	llmListCmd.Flags().String("run", "", "Filter by solver run id")
	llmListCmd.Flags().String("item", "", "Filter by item id")
	llmStatsCmd.Flags().String("run", "", "Only show one solver run")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
