package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/skipera/skipera/internal/llm"
)

// ErrNoAnswers means the reply held no usable entry under "responses".
var ErrNoAnswers = errors.New("oracle returned no answers")

// ServiceError is an error object the service embedded in its reply.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return "oracle service error: " + e.Message
}

// Options tunes each oracle request.
type Options struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Client turns formatted questions into validated answers.
type Client struct {
	provider llm.Provider
	opts     Options
	logger   *zap.Logger
}

func New(provider llm.Provider, opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{provider: provider, opts: opts, logger: logger.Named("oracle")}
}

// Answer sends every question in one request. It fails with ErrNoAnswers,
// a *ServiceError or a wrapped provider error; it never retries.
func (c *Client) Answer(ctx context.Context, questions map[string]Question) ([]Answer, error) {
	if len(questions) == 0 {
		return nil, ErrNoAnswers
	}

	// encoding/json sorts map keys, so the prompt is deterministic.
	body, err := json.Marshal(questions)
	if err != nil {
		return nil, fmt.Errorf("encode questions: %w", err)
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	c.logger.Debug("requesting answers", zap.Int("questions", len(questions)), zap.String("model", c.provider.ModelID()))

	resp, err := c.provider.Generate(llm.WithPurpose(ctx, llm.PurposeAnswer), llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: string(body)}},
		Schema:      responseSchema,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	answers, err := c.parse(resp.Content, questions)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("received answers", zap.Int("answers", len(answers)))
	return answers, nil
}

// parse locates the answer list in the reply and keeps only entries that are
// structurally sound and refer to a question that was asked.
func (c *Client) parse(raw json.RawMessage, asked map[string]Question) ([]Answer, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: reply is not valid JSON", ErrNoAnswers)
	}
	root := gjson.ParseBytes(raw)

	if e := root.Get("error"); e.Exists() && e.Type != gjson.Null {
		msg := e.Get("message").String()
		if msg == "" {
			msg = e.String()
		}
		return nil, &ServiceError{Message: msg}
	}

	list := root.Get("responses")
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: reply has no responses list", ErrNoAnswers)
	}

	var answers []Answer
	seen := make(map[string]bool)
	for i, item := range list.Array() {
		a, err := decodeAnswer(item)
		if err != nil {
			c.logger.Warn("discarding malformed answer", zap.Int("index", i), zap.Error(err))
			continue
		}
		if _, ok := asked[a.QuestionID]; !ok {
			c.logger.Warn("discarding answer to a question that was not asked", zap.String("question_id", a.QuestionID))
			continue
		}
		if seen[a.QuestionID] {
			c.logger.Warn("discarding duplicate answer", zap.String("question_id", a.QuestionID))
			continue
		}
		seen[a.QuestionID] = true
		answers = append(answers, a)
	}

	if len(answers) == 0 {
		return nil, ErrNoAnswers
	}
	return answers, nil
}

func decodeAnswer(item gjson.Result) (Answer, error) {
	if !item.IsObject() {
		return Answer{}, errors.New("entry is not an object")
	}

	a := Answer{
		QuestionID: item.Get("question_id").String(),
		Type:       Kind(item.Get("type").String()),
	}
	if a.QuestionID == "" {
		return a, errors.New("missing question_id")
	}

	switch a.Type {
	case KindSingle, KindMulti:
		ids := item.Get("option_id")
		if !ids.IsArray() {
			return a, fmt.Errorf("%s answer without option_id list", a.Type)
		}
		for _, id := range ids.Array() {
			if id.Type == gjson.String && id.Str != "" {
				a.OptionIDs = append(a.OptionIDs, id.Str)
			}
		}
		if len(a.OptionIDs) == 0 {
			return a, fmt.Errorf("%s answer with no option ids", a.Type)
		}
		if present(item.Get("answer")) {
			return a, fmt.Errorf("%s answer also carries answer text", a.Type)
		}
	case KindText:
		text := item.Get("answer")
		if text.Type != gjson.String {
			return a, errors.New("text answer without answer string")
		}
		if present(item.Get("option_id")) {
			return a, errors.New("text answer also carries option_id")
		}
		s := text.Str
		a.Text = &s
	default:
		return a, fmt.Errorf("unknown answer type %q", a.Type)
	}
	return a, nil
}

// present reports whether a field exists with a non-null value.
func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}
