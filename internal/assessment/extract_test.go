package assessment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skipera/skipera/internal/oracle"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{"empty", "", ""},
		{"plain", "  What   is\n2+2? ", "What is 2+2?"},
		{"inline tags", "<p>Hello <b>world</b></p>", "Hello world"},
		{"block boundary", "<p>first</p><p>second</p>", "first second"},
		{"cml", `<co-content><text>Pick the <strong>prime</strong>:</text></co-content>`, "Pick the prime :"},
		{"entities", "a &amp; b &lt; c", "a & b < c"},
		{"script dropped", "<script>alert(1)</script>visible", "visible"},
		{"self closing", "line<br/>break", "line break"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripMarkup(tt.markup)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, StripMarkup(tt.markup), "must be deterministic")
		})
	}
}

func decodePart(t *testing.T, raw string) QuestionPart {
	t.Helper()
	var p QuestionPart
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func TestFormatQuestion(t *testing.T) {
	choice := decodePart(t, `{
		"__typename": "Submission_MultipleChoiceQuestion",
		"partId": "q1",
		"questionSchema": {
			"prompt": {"cmlValue": "<text>Which is <b>prime</b>?</text>"},
			"options": [
				{"optionId": "o1", "display": {"cmlValue": "<text>4</text>"}},
				{"optionId": "o2", "display": {"cmlValue": "<text>7</text>"}}
			]
		}
	}`)

	got := FormatQuestion(choice, MultipleChoice)
	assert.Equal(t, oracle.Question{
		Question: "Which is prime ?",
		Options:  []oracle.Option{{OptionID: "o1", Value: "4"}, {OptionID: "o2", Value: "7"}},
		Type:     oracle.SingleChoice,
	}, got)

	assert.Equal(t, oracle.MultiChoice, FormatQuestion(choice, Checkbox).Type)

	text := decodePart(t, `{"__typename":"Submission_NumericQuestion","partId":"q2","questionSchema":{"prompt":{"cmlValue":"2 + 3 = ?"}}}`)
	assert.Equal(t, oracle.Question{Question: "2 + 3 = ?", Type: oracle.TextEntry}, FormatQuestion(text, Numeric))

	noPrompt := decodePart(t, `{"__typename":"Submission_MathQuestion","partId":"q3","questionSchema":{}}`)
	assert.Equal(t, "", FormatQuestion(noPrompt, Math).Question)
}

func TestQuestionPart_Response(t *testing.T) {
	p := decodePart(t, `{
		"__typename": "Submission_CheckboxQuestion",
		"partId": "q1",
		"checkboxResponse": {"__typename": "Submission_CheckboxResponse", "chosen": ["a", "b"]},
		"plainTextResponse": null
	}`)

	assert.Equal(t, map[string]any{
		"__typename": "Submission_CheckboxResponse",
		"chosen":     []any{"a", "b"},
	}, p.Response("checkboxResponse"))
	assert.Nil(t, p.Response("plainTextResponse"))
	assert.Nil(t, p.Response("missingResponse"))
	assert.Nil(t, QuestionPart{}.Response("checkboxResponse"))
}
