package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"llm_request_events", "solve_events", "global_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("query sqlite_master for %s: %v", table, err)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestLLMEventsAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "answer", InputTokens: 100, OutputTokens: 20, LatencyMs: 300, Success: true, RequestBody: "[user]\nq1", ResponseBody: `{"responses":[]}`},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "answer", InputTokens: 50, OutputTokens: 10, LatencyMs: 100, Success: false, ErrorMessage: "rate limited"},
		{Provider: "openai", Model: "gpt-4o", Purpose: "other", InputTokens: 10, OutputTokens: 5, LatencyMs: 50, Success: true},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
	if all[0].Model != "gpt-4o" {
		t.Errorf("newest event model = %q, want gpt-4o", all[0].Model)
	}
	if all[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	answers, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "answer", Limit: 1})
	if err != nil {
		t.Fatalf("query by purpose: %v", err)
	}
	if len(answers) != 1 || answers[0].Success {
		t.Fatalf("expected the failed answer event, got %+v", answers)
	}
	if answers[0].ErrorMessage != "rate limited" {
		t.Errorf("error message = %q", answers[0].ErrorMessage)
	}

	after, err := repo.QueryLLMEvents(ctx, QueryOpts{After: all[1].Sequence})
	if err != nil {
		t.Fatalf("query after: %v", err)
	}
	if len(after) != 1 {
		t.Errorf("got %d events after sequence %d, want 1", len(after), all[1].Sequence)
	}

	first := all[2]
	got, err := repo.GetLLMEvent(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.RequestBody != "[user]\nq1" || got.ResponseBody != `{"responses":[]}` {
		t.Fatalf("unexpected event: %+v", got)
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing event")
	}
}

func TestLLMUsageAggregates(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, e := range []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "answer", InputTokens: 100, OutputTokens: 20, LatencyMs: 200, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "answer", InputTokens: 60, OutputTokens: 10, LatencyMs: 400, Success: true},
		{Provider: "openai", Model: "gpt-4o", Purpose: "other", InputTokens: 10, OutputTokens: 5, LatencyMs: 50, Success: true},
	} {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("got %d purposes, want 2", len(byPurpose))
	}
	ans := byPurpose[0]
	if ans.Purpose != "answer" || ans.Calls != 2 || ans.InputTokens != 160 || ans.OutputTokens != 30 || ans.AvgLatencyMs != 300 {
		t.Errorf("unexpected answer usage: %+v", ans)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "gemini-2.5-flash" || byModel[0].Calls != 2 {
		t.Errorf("unexpected model usage: %+v", byModel)
	}
}

func TestLLMUsageByItem(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, e := range []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "answer", RunID: "r1", ItemID: "quiz-1", InputTokens: 100, OutputTokens: 20, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "answer", RunID: "r1", ItemID: "quiz-1", InputTokens: 40, OutputTokens: 5, Success: false},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "answer", RunID: "r1", ItemID: "quiz-2", InputTokens: 30, OutputTokens: 3, Success: true},
		{Provider: "openai", Model: "gpt-4o", Purpose: "answer", RunID: "r2", ItemID: "quiz-1", InputTokens: 10, OutputTokens: 2, Success: true},
		{Provider: "mock", Model: "mock", Purpose: "other", InputTokens: 7, OutputTokens: 1, Success: true},
	} {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.LLMUsageByItem(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("usage by item: %v", err)
	}
	want := []ItemUsage{
		{RunID: "r2", ItemID: "quiz-1", Model: "gpt-4o", Calls: 1, InputTokens: 10, OutputTokens: 2},
		{RunID: "r1", ItemID: "quiz-1", Model: "gemini-2.5-flash", Calls: 2, Failed: 1, InputTokens: 140, OutputTokens: 25},
		{RunID: "r1", ItemID: "quiz-2", Model: "gemini-2.5-flash", Calls: 1, InputTokens: 30, OutputTokens: 3},
	}
	if len(all) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(all), len(want), all)
	}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, all[i], want[i])
		}
	}

	r1, err := repo.LLMUsageByItem(ctx, QueryOpts{RunID: "r1", ItemID: "quiz-2"})
	if err != nil {
		t.Fatalf("usage by item filtered: %v", err)
	}
	if len(r1) != 1 || r1[0].Calls != 1 {
		t.Errorf("unexpected filtered usage: %+v", r1)
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{RunID: "r1"})
	if err != nil {
		t.Fatalf("query by run: %v", err)
	}
	if len(events) != 3 || events[0].ItemID != "quiz-2" {
		t.Errorf("unexpected run events: %+v", events)
	}
}

func TestSolveOutcomes(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	grade := 0.9
	records := []SolveOutcomeData{
		{RunID: "r1", CourseID: "c1", ItemID: "quiz-1", Strategy: "sequential", Status: "passed", EarnedGrade: &grade, Passed: true, Answered: 5},
		{RunID: "r1", CourseID: "c1", ItemID: "survey-1", Strategy: "sequential", Status: "unavailable", Detail: "no query state"},
	}
	for _, r := range records {
		if err := repo.AppendSolveOutcome(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QuerySolveOutcomes(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(all))
	}
	if all[0].ItemID != "survey-1" || all[0].EarnedGrade != nil {
		t.Errorf("unexpected newest outcome: %+v", all[0])
	}

	quiz, err := repo.QuerySolveOutcomes(ctx, QueryOpts{ItemID: "quiz-1"})
	if err != nil {
		t.Fatalf("query by item: %v", err)
	}
	if len(quiz) != 1 {
		t.Fatalf("got %d outcomes for quiz-1, want 1", len(quiz))
	}
	q := quiz[0]
	if !q.Passed || q.Answered != 5 || q.EarnedGrade == nil || *q.EarnedGrade != 0.9 {
		t.Errorf("unexpected quiz outcome: %+v", q)
	}
}

func TestSequenceSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: "answer", Success: true}); err != nil {
		t.Fatalf("append llm: %v", err)
	}
	if err := repo.AppendSolveOutcome(ctx, SolveOutcomeData{RunID: "r", CourseID: "c", ItemID: "i", Strategy: "sequential", Status: "passed"}); err != nil {
		t.Fatalf("append solve: %v", err)
	}

	llmEvents, _ := repo.QueryLLMEvents(ctx, QueryOpts{})
	solves, _ := repo.QuerySolveOutcomes(ctx, QueryOpts{})
	if len(llmEvents) != 1 || len(solves) != 1 {
		t.Fatalf("expected one event in each table")
	}
	if solves[0].Sequence <= llmEvents[0].Sequence {
		t.Errorf("solve sequence %d should follow llm sequence %d", solves[0].Sequence, llmEvents[0].Sequence)
	}
}
