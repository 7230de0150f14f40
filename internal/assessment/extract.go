package assessment

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/skipera/skipera/internal/oracle"
)

// StripMarkup removes tags from markup and joins its words with single spaces.
// Block boundaries separate words, so "<p>a</p><p>b</p>" yields "a b".
func StripMarkup(markup string) string {
	if markup == "" {
		return ""
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(markup))
	skip := 0
loop:
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a tokenizer error; either way the text so far stands.
			break loop
		case html.StartTagToken:
			name, _ := z.TagName()
			if isRawTextTag(string(name)) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			name, _ := z.TagName()
			if isRawTextTag(string(name)) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isRawTextTag(name string) bool {
	return name == "script" || name == "style"
}

// FormatQuestion renders part as the oracle sees it.
func FormatQuestion(part QuestionPart, v Variant) oracle.Question {
	q := oracle.Question{Question: StripMarkup(part.Schema.PromptMarkup())}

	if !v.IsChoice() {
		q.Type = oracle.TextEntry
		return q
	}

	q.Type = oracle.MultiChoice
	if v == MultipleChoice {
		q.Type = oracle.SingleChoice
	}
	q.Options = make([]oracle.Option, 0, len(part.Schema.Options))
	for _, opt := range part.Schema.Options {
		q.Options = append(q.Options, oracle.Option{
			OptionID: opt.OptionID,
			Value:    StripMarkup(opt.Display.CMLValue),
		})
	}
	return q
}
