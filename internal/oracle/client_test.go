package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/skipera/skipera/internal/llm"
)

func questions() map[string]Question {
	return map[string]Question{
		"q1": {
			Question: "Which is prime?",
			Options:  []Option{{OptionID: "a", Value: "4"}, {OptionID: "b", Value: "7"}},
			Type:     SingleChoice,
		},
		"q2": {Question: "2 + 3 = ?", Type: TextEntry},
	}
}

func reply(s string) llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(s)}
}

func TestAnswer_ParsesResponses(t *testing.T) {
	mock := llm.NewMockProvider(reply(`{"responses":[
		{"question_id":"q1","type":"Single","option_id":["b"],"answer":null},
		{"question_id":"q2","type":"Text","option_id":null,"answer":"5"}
	]}`))
	c := New(mock, Options{MaxTokens: 512}, nil)

	answers, err := c.Answer(context.Background(), questions())
	require.NoError(t, err)
	require.Len(t, answers, 2)

	assert.Equal(t, "q1", answers[0].QuestionID)
	assert.Equal(t, KindSingle, answers[0].Type)
	assert.Equal(t, []string{"b"}, answers[0].OptionIDs)
	assert.Nil(t, answers[0].Text)

	require.NotNil(t, answers[1].Text)
	assert.Equal(t, "5", *answers[1].Text)
}

func TestAnswer_RequestShape(t *testing.T) {
	mock := llm.NewMockProvider(reply(`{"responses":[{"question_id":"q2","type":"Text","option_id":null,"answer":"5"}]}`))
	c := New(mock, Options{MaxTokens: 512, Temperature: 0.2}, nil)

	_, err := c.Answer(context.Background(), map[string]Question{"q2": questions()["q2"]})
	require.NoError(t, err)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Equal(t, systemPrompt, req.System)
	assert.Equal(t, responseSchema, req.Schema)
	assert.Equal(t, 512, req.MaxTokens)
	require.Len(t, req.Messages, 1)
	assert.JSONEq(t, `{"q2":{"Question":"2 + 3 = ?","Type":"Text-Entry"}}`, req.Messages[0].Content)
}

func TestAnswer_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "malformed",
			content: `{"responses": [`,
			check:   func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNoAnswers) },
		},
		{
			name:    "missing responses",
			content: `{"answers":[]}`,
			check:   func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNoAnswers) },
		},
		{
			name:    "empty responses",
			content: `{"responses":[]}`,
			check:   func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNoAnswers) },
		},
		{
			name:    "only invalid entries",
			content: `{"responses":[{"question_id":"q1","type":"Single","option_id":null,"answer":"b"}]}`,
			check:   func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNoAnswers) },
		},
		{
			name:    "choice answer with text",
			content: `{"responses":[{"question_id":"q1","type":"Single","option_id":["b"],"answer":"7"}]}`,
			check:   func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNoAnswers) },
		},
		{
			name:    "text answer with option ids",
			content: `{"responses":[{"question_id":"q2","type":"Text","option_id":["a"],"answer":"5"}]}`,
			check:   func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNoAnswers) },
		},
		{
			name:    "service error",
			content: `{"error":{"code":400,"message":"API key not valid"}}`,
			check: func(t *testing.T, err error) {
				var se *ServiceError
				require.True(t, errors.As(err, &se), "got %v", err)
				assert.Equal(t, "API key not valid", se.Message)
				assert.NotErrorIs(t, err, ErrNoAnswers)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(llm.NewMockProvider(reply(tt.content)), Options{}, nil)
			_, err := c.Answer(context.Background(), questions())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestAnswer_ProviderError(t *testing.T) {
	c := New(llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{}}), Options{}, nil)

	_, err := c.Answer(context.Background(), questions())
	var rl *llm.ErrRateLimit
	assert.True(t, errors.As(err, &rl), "got %v", err)
}

func TestAnswer_DropsUnaskedAndDuplicates(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	mock := llm.NewMockProvider(reply(`{"responses":[
		{"question_id":"q1","type":"Multi","option_id":["a","b"],"answer":null},
		{"question_id":"q1","type":"Single","option_id":["a"],"answer":null},
		{"question_id":"zzz","type":"Text","option_id":null,"answer":"x"},
		{"question_id":"q2","type":"Essay","option_id":null,"answer":"x"}
	]}`))
	c := New(mock, Options{}, zap.New(core))

	answers, err := c.Answer(context.Background(), questions())
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, []string{"a", "b"}, answers[0].OptionIDs)
	assert.Equal(t, 3, logs.Len())
}

func TestAnswer_NoQuestions(t *testing.T) {
	mock := llm.NewMockProvider()
	c := New(mock, Options{}, nil)

	_, err := c.Answer(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoAnswers)
	assert.Equal(t, 0, mock.CallCount())
}
