package assessment

import (
	"go.uber.org/zap"

	"github.com/skipera/skipera/internal/oracle"
)

// classification is what the save step needs to know about a question after
// the state it came from may have gone stale.
type classification struct {
	variant Variant
	options map[string]bool
}

// plan is one pass over a draft.
type plan struct {
	targets map[string]oracle.Question
	order   []string
	// others holds answered parts carried forward and blanked parts.
	others []ResponsePayload
}

// classify scans parts once. At most limit unanswered eligible parts become
// targets (no limit when limit <= 0); the remaining unanswered parts are
// blanked. Unrecognized variants are left out of the plan entirely.
func (r *run) classify(parts []QuestionPart, limit int) plan {
	p := plan{targets: make(map[string]oracle.Question)}

	for _, part := range parts {
		v, ok := LookupVariant(part.TypeName)
		if !ok {
			if !r.unknown[part.PartID] {
				r.unknown[part.PartID] = true
				r.log.Warn("leaving unrecognized question out of the save payload",
					zap.String("question_id", part.PartID),
					zap.String("typename", part.TypeName))
			}
			continue
		}

		cls := classification{variant: v}
		if len(part.Schema.Options) > 0 {
			cls.options = make(map[string]bool, len(part.Schema.Options))
			for _, opt := range part.Schema.Options {
				cls.options[opt.OptionID] = true
			}
		}
		r.cache[part.PartID] = cls

		field := v.ResponseField()
		resp := part.Response(field)

		switch {
		case isAnswered(resp):
			stripInternal(resp)
			p.others = append(p.others, ResponsePayload{
				QuestionID:       part.PartID,
				QuestionType:     v.Code(),
				QuestionResponse: map[string]any{field: resp},
			})
		case v.Eligible() && (limit <= 0 || len(p.order) < limit):
			p.targets[part.PartID] = FormatQuestion(part, v)
			p.order = append(p.order, part.PartID)
		default:
			p.others = append(p.others, blankPayload(part.PartID, v))
		}
	}
	return p
}

func blankPayload(partID string, v Variant) ResponsePayload {
	return ResponsePayload{
		QuestionID:       partID,
		QuestionType:     v.Code(),
		QuestionResponse: map[string]any{v.ResponseField(): v.Blank()},
	}
}
