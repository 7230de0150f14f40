// Package oracle asks a language model to answer formatted assessment
// questions under a fixed response schema.
package oracle

// QuestionType tells the model how to answer a question.
type QuestionType string

const (
	SingleChoice QuestionType = "Single-Choice"
	MultiChoice  QuestionType = "Multi-Choice"
	TextEntry    QuestionType = "Text-Entry"
)

// Option is one selectable choice with its markup stripped.
type Option struct {
	OptionID string `json:"option_id"`
	Value    string `json:"value"`
}

// Question is the plain-text form of one question sent to the model.
type Question struct {
	Question string       `json:"Question"`
	Options  []Option     `json:"Options,omitempty"`
	Type     QuestionType `json:"Type"`
}

// Kind is the answer shape the model reports.
type Kind string

const (
	KindSingle Kind = "Single"
	KindMulti  Kind = "Multi"
	KindText   Kind = "Text"
)

// Choice reports whether k carries option ids.
func (k Kind) Choice() bool {
	return k == KindSingle || k == KindMulti
}

// Answer is one validated model answer. Choice kinds carry OptionIDs and a
// nil Text; KindText carries Text and no OptionIDs.
type Answer struct {
	QuestionID string   `json:"question_id"`
	Type       Kind     `json:"type"`
	OptionIDs  []string `json:"option_id"`
	Text       *string  `json:"answer"`
}
