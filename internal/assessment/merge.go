package assessment

import (
	"go.uber.org/zap"

	"github.com/skipera/skipera/internal/oracle"
)

// merge turns oracle answers into save entries using the classification
// cached when the question was formatted. Answers that cannot be shaped for
// their question are dropped.
func (r *run) merge(answers []oracle.Answer, targets map[string]oracle.Question) []ResponsePayload {
	out := make([]ResponsePayload, 0, len(answers))
	done := make(map[string]bool, len(answers))

	for _, a := range answers {
		cls, ok := r.cache[a.QuestionID]
		if !ok {
			r.log.Debug("dropping answer for untracked question", zap.String("question_id", a.QuestionID))
			continue
		}
		if _, asked := targets[a.QuestionID]; !asked || done[a.QuestionID] {
			r.log.Debug("dropping answer that was not requested", zap.String("question_id", a.QuestionID))
			continue
		}

		body, ok := r.shape(a, cls)
		if !ok {
			continue
		}
		done[a.QuestionID] = true
		out = append(out, ResponsePayload{
			QuestionID:       a.QuestionID,
			QuestionType:     cls.variant.Code(),
			QuestionResponse: map[string]any{cls.variant.ResponseField(): body},
		})
	}
	return out
}

// shape builds the response body for one answer, or reports false when the
// answer does not fit the question.
func (r *run) shape(a oracle.Answer, cls classification) (map[string]any, bool) {
	log := r.log.With(zap.String("question_id", a.QuestionID), zap.String("variant", cls.variant.String()))
	v := cls.variant

	switch {
	case v.IsChoice():
		if !a.Type.Choice() {
			log.Warn("dropping answer: text answer for a choice question", zap.String("type", string(a.Type)))
			return nil, false
		}
		chosen := make([]string, 0, len(a.OptionIDs))
		for _, id := range a.OptionIDs {
			if cls.options != nil && !cls.options[id] {
				log.Warn("discarding unknown option id", zap.String("option_id", id))
				continue
			}
			chosen = append(chosen, id)
		}
		if len(chosen) == 0 {
			log.Warn("dropping answer: no usable option selected")
			return nil, false
		}
		if a.Type == oracle.KindSingle && len(chosen) > 1 {
			chosen = chosen[:1]
		}
		if v == MultipleChoice {
			return map[string]any{"chosen": chosen[0]}, true
		}
		return map[string]any{"chosen": chosen}, true

	case v.IsText():
		if a.Type != oracle.KindText {
			log.Warn("dropping answer: choice answer for a text question", zap.String("type", string(a.Type)))
			return nil, false
		}
		if a.Text == nil || *a.Text == "" {
			log.Warn("dropping answer: empty text")
			return nil, false
		}
		if v == PlainText {
			return map[string]any{"plainText": *a.Text}, true
		}
		return map[string]any{"answer": *a.Text}, true
	}

	log.Warn("dropping answer for a variant the oracle does not answer")
	return nil, false
}
