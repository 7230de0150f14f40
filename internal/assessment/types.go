package assessment

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Action is the next step the platform allows on an item.
type Action string

const (
	ActionResumeDraft     Action = "RESUME_DRAFT"
	ActionStartNewAttempt Action = "START_NEW_ATTEMPT"
)

// Ref addresses one graded item.
type Ref struct {
	CourseID string
	ItemID   string
}

// AttemptState is the platform's view of the user's progress on an item.
type AttemptState struct {
	AllowedAction Action    `json:"allowedAction"`
	Outcome       *Outcome  `json:"outcome"`
	Attempts      *Attempts `json:"attempts"`
}

// Attempts summarizes attempt bookkeeping.
type Attempts struct {
	AttemptsRemaining *int   `json:"attemptsRemaining"`
	InProgressAttempt *Draft `json:"inProgressAttempt"`
}

// Draft is an in-progress attempt. ID addresses saves; Draft.ID addresses
// the submit call.
type Draft struct {
	ID    string `json:"id"`
	Draft struct {
		ID    string         `json:"id"`
		Parts []QuestionPart `json:"parts"`
	} `json:"draft"`
}

// SubmissionID is the id the submit call expects.
func (d *Draft) SubmissionID() string { return d.Draft.ID }

// Parts returns the ordered questions.
func (d *Draft) Parts() []QuestionPart { return d.Draft.Parts }

// Outcome is the grade of a submitted attempt.
type Outcome struct {
	EarnedGrade float64 `json:"earnedGrade"`
	IsPassed    bool    `json:"isPassed"`
}

// ActiveDraft returns the in-progress attempt or nil.
func (s *AttemptState) ActiveDraft() *Draft {
	if s == nil || s.Attempts == nil {
		return nil
	}
	return s.Attempts.InProgressAttempt
}

// CML is platform markup.
type CML struct {
	CMLValue string `json:"cmlValue"`
}

// Option is one choice of a choice question.
type Option struct {
	OptionID string `json:"optionId"`
	Display  CML    `json:"display"`
}

// QuestionSchema is the prompt and options of a question.
type QuestionSchema struct {
	Prompt  *CML     `json:"prompt"`
	Options []Option `json:"options"`
}

// PromptMarkup returns the prompt markup, or "" when absent.
func (s QuestionSchema) PromptMarkup() string {
	if s.Prompt == nil {
		return ""
	}
	return s.Prompt.CMLValue
}

// QuestionPart is one question in a draft. The saved response sits under a
// variant-specific key, so the raw object is kept for lookup.
type QuestionPart struct {
	TypeName string         `json:"__typename"`
	PartID   string         `json:"partId"`
	Schema   QuestionSchema `json:"questionSchema"`

	raw json.RawMessage
}

func (p *QuestionPart) UnmarshalJSON(b []byte) error {
	type plain QuestionPart
	var decoded plain
	if err := json.Unmarshal(b, &decoded); err != nil {
		return err
	}
	*p = QuestionPart(decoded)
	p.raw = append(json.RawMessage(nil), b...)
	return nil
}

// Response returns the saved response under field, or nil when it is
// absent, null or not an object.
func (p QuestionPart) Response(field string) map[string]any {
	if len(p.raw) == 0 {
		return nil
	}
	r := gjson.GetBytes(p.raw, escapePath(field))
	if !r.IsObject() {
		return nil
	}
	m, _ := r.Value().(map[string]any)
	return m
}

func escapePath(field string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return r.Replace(field)
}

// ResponsePayload is one entry of a save call.
type ResponsePayload struct {
	QuestionID       string         `json:"questionId"`
	QuestionType     string         `json:"questionType"`
	QuestionResponse map[string]any `json:"questionResponse"`
}

// answerFields are the response keys whose content marks a part answered.
var answerFields = []string{"chosen", "answer", "plainText", "richText", "fileUrl"}

// internalFields are server-only keys that must not be sent back.
var internalFields = []string{"__typename"}

// isAnswered reports whether any answer field holds content.
func isAnswered(resp map[string]any) bool {
	for _, f := range answerFields {
		if hasContent(resp[f]) {
			return true
		}
	}
	return false
}

// hasContent is true for a non-empty string, list or object with content,
// a true bool or a non-zero number. Nested objects count only if a leaf
// has content, so a deep-blanked body reads as unanswered.
func hasContent(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		for _, sub := range t {
			if hasContent(sub) {
				return true
			}
		}
		return false
	}
	return true
}

// stripInternal removes internal-only keys at every depth, in place.
func stripInternal(v any) {
	switch t := v.(type) {
	case map[string]any:
		for _, f := range internalFields {
			delete(t, f)
		}
		for _, sub := range t {
			stripInternal(sub)
		}
	case []any:
		for _, sub := range t {
			stripInternal(sub)
		}
	}
}
