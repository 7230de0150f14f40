package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/skipera/skipera/internal/llm"
	"github.com/skipera/skipera/internal/oracle"
	"github.com/skipera/skipera/internal/store"
)

type stateReply struct {
	state *AttemptState
	err   error
}

// fakeAPI replays scripted states; the last reply repeats once the script
// runs out.
type fakeAPI struct {
	states []stateReply
	grades []*Outcome

	startErr  error
	saveErr   error
	submitErr error
	gradeErr  error

	ops       []string
	queries   int
	saves     [][]ResponsePayload
	attemptID []string
	submitted []string
	gradeHits int
}

func (f *fakeAPI) QueryState(_ context.Context, _ Ref) (*AttemptState, error) {
	f.ops = append(f.ops, "state")
	i := min(f.queries, len(f.states)-1)
	f.queries++
	if i < 0 {
		return nil, ErrStateUnavailable
	}
	return f.states[i].state, f.states[i].err
}

func (f *fakeAPI) StartAttempt(_ context.Context, _ Ref) error {
	f.ops = append(f.ops, "start")
	return f.startErr
}

func (f *fakeAPI) SaveResponses(_ context.Context, _ Ref, attemptID string, responses []ResponsePayload) error {
	f.ops = append(f.ops, "save")
	f.saves = append(f.saves, responses)
	f.attemptID = append(f.attemptID, attemptID)
	return f.saveErr
}

func (f *fakeAPI) SubmitDraft(_ context.Context, _ Ref, submissionID string) error {
	f.ops = append(f.ops, "submit")
	f.submitted = append(f.submitted, submissionID)
	return f.submitErr
}

func (f *fakeAPI) Grade(_ context.Context, _ Ref) (*Outcome, error) {
	f.ops = append(f.ops, "grade")
	i := f.gradeHits
	f.gradeHits++
	if f.gradeErr != nil {
		return nil, f.gradeErr
	}
	if i < len(f.grades) {
		return f.grades[i], nil
	}
	return nil, nil
}

// fakeOracle answers from a table keyed by question id.
type fakeOracle struct {
	answers map[string]oracle.Answer
	extra   []oracle.Answer
	err     error
	calls   []map[string]oracle.Question
	tags    [][2]string // run and item ids carried by each call's context
}

func (f *fakeOracle) Answer(ctx context.Context, questions map[string]oracle.Question) ([]oracle.Answer, error) {
	f.calls = append(f.calls, questions)
	runID, itemID := llm.ItemFrom(ctx)
	f.tags = append(f.tags, [2]string{runID, itemID})
	if f.err != nil {
		return nil, f.err
	}
	ids := make([]string, 0, len(questions))
	for id := range questions {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var out []oracle.Answer
	for _, id := range ids {
		if a, ok := f.answers[id]; ok {
			out = append(out, a)
		}
	}
	return append(out, f.extra...), nil
}

func (f *fakeOracle) askedIDs() [][]string {
	var out [][]string
	for _, call := range f.calls {
		ids := make([]string, 0, len(call))
		for id := range call {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		out = append(out, ids)
	}
	return out
}

type fakeRecorder struct {
	outcomes []store.SolveOutcomeData
	err      error
}

func (f *fakeRecorder) AppendSolveOutcome(_ context.Context, data store.SolveOutcomeData) error {
	f.outcomes = append(f.outcomes, data)
	return f.err
}

func single(id string, options ...string) oracle.Answer {
	return oracle.Answer{QuestionID: id, Type: oracle.KindSingle, OptionIDs: options}
}

func multi(id string, options ...string) oracle.Answer {
	return oracle.Answer{QuestionID: id, Type: oracle.KindMulti, OptionIDs: options}
}

func text(id, s string) oracle.Answer {
	return oracle.Answer{QuestionID: id, Type: oracle.KindText, Text: &s}
}

// part builds a wire question part. A nil resp is sent as null.
func part(v Variant, id string, resp map[string]any, options ...string) map[string]any {
	opts := make([]map[string]any, 0, len(options))
	for _, o := range options {
		opts = append(opts, map[string]any{"optionId": o, "display": map[string]any{"cmlValue": "<text>" + o + "</text>"}})
	}
	schema := map[string]any{"prompt": map[string]any{"cmlValue": "<text>Question " + id + "</text>"}}
	if len(opts) > 0 {
		schema["options"] = opts
	}
	return map[string]any{
		"__typename":       v.TypeName(),
		"partId":           id,
		"questionSchema":   schema,
		v.ResponseField(): resp,
	}
}

func unknownPart(id string) map[string]any {
	return map[string]any{"__typename": "Submission_WidgetQuestion", "partId": id}
}

func decodeState(v map[string]any) *AttemptState {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var st AttemptState
	if err := json.Unmarshal(raw, &st); err != nil {
		panic(err)
	}
	return &st
}

// draftState is an in-progress attempt with the given parts.
func draftState(action Action, parts ...map[string]any) stateReply {
	return stateReply{state: decodeState(map[string]any{
		"allowedAction": action,
		"outcome":       nil,
		"attempts": map[string]any{
			"attemptsRemaining": 3,
			"inProgressAttempt": map[string]any{
				"id":    "attempt-1",
				"draft": map[string]any{"id": "draft-1", "parts": parts},
			},
		},
	})}
}

// freshState is an item with no attempt in progress.
func freshState(outcome *Outcome, remaining int) stateReply {
	state := map[string]any{
		"allowedAction": ActionStartNewAttempt,
		"attempts":      map[string]any{"attemptsRemaining": remaining, "inProgressAttempt": nil},
	}
	if outcome != nil {
		state["outcome"] = map[string]any{"earnedGrade": outcome.EarnedGrade, "isPassed": outcome.IsPassed}
	}
	return stateReply{state: decodeState(state)}
}

var errBoom = errors.New("boom")

const (
	testStartDelay    = 1 * time.Second
	testSaveDelay     = 2 * time.Second
	testGradeInterval = 3 * time.Second
)
