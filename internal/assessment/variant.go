package assessment

// Variant is a question shape the platform can present. The set is closed:
// a wire tag outside it does not map to a Variant.
type Variant int

const (
	MultipleChoice Variant = iota + 1
	Checkbox
	PlainText
	Numeric
	Regex
	TextExactMatch
	Math
	RichText
	FileUpload
	TextReflect
)

type family int

const (
	familyChoice family = iota
	familyText
	familyOther
)

type variantInfo struct {
	name          string
	typeName      string
	responseField string
	code          string
	eligible      bool
	family        family
	blank         func() map[string]any
}

var variants = map[Variant]variantInfo{
	MultipleChoice: {
		name: "MultipleChoice", typeName: "Submission_MultipleChoiceQuestion",
		responseField: "multipleChoiceResponse", code: "MULTIPLE_CHOICE",
		eligible: true, family: familyChoice,
		blank: func() map[string]any { return map[string]any{"chosen": ""} },
	},
	Checkbox: {
		name: "Checkbox", typeName: "Submission_CheckboxQuestion",
		responseField: "checkboxResponse", code: "CHECKBOX",
		eligible: true, family: familyChoice,
		blank: func() map[string]any { return map[string]any{"chosen": []any{}} },
	},
	PlainText: {
		name: "PlainText", typeName: "Submission_PlainTextQuestion",
		responseField: "plainTextResponse", code: "PLAIN_TEXT",
		eligible: true, family: familyText,
		blank: func() map[string]any { return map[string]any{"plainText": ""} },
	},
	Numeric: {
		name: "Numeric", typeName: "Submission_NumericQuestion",
		responseField: "numericResponse", code: "NUMERIC",
		eligible: true, family: familyText,
		blank: func() map[string]any { return map[string]any{"answer": ""} },
	},
	Regex: {
		name: "Regex", typeName: "Submission_RegexQuestion",
		responseField: "regexResponse", code: "REGEX",
		eligible: true, family: familyText,
		blank: func() map[string]any { return map[string]any{"answer": ""} },
	},
	TextExactMatch: {
		name: "TextExactMatch", typeName: "Submission_TextExactMatchQuestion",
		responseField: "textExactMatchResponse", code: "TEXT_EXACT_MATCH",
		eligible: true, family: familyText,
		blank: func() map[string]any { return map[string]any{"answer": ""} },
	},
	Math: {
		name: "Math", typeName: "Submission_MathQuestion",
		responseField: "mathResponse", code: "MATH",
		eligible: true, family: familyText,
		blank: func() map[string]any { return map[string]any{"answer": ""} },
	},
	RichText: {
		name: "RichText", typeName: "Submission_RichTextQuestion",
		responseField: "richTextResponse", code: "RICH_TEXT",
		family: familyOther,
		blank: func() map[string]any {
			return map[string]any{
				"richText": map[string]any{
					"typeName": "",
					"definition": map[string]any{
						"dtdId": "",
						"value": "",
					},
				},
			}
		},
	},
	FileUpload: {
		name: "FileUpload", typeName: "Submission_FileUploadQuestion",
		responseField: "fileUploadResponse", code: "FILE_UPLOAD",
		family: familyOther,
		blank: func() map[string]any {
			return map[string]any{"fileUrl": "", "title": "", "caption": ""}
		},
	},
	TextReflect: {
		name: "TextReflect", typeName: "Submission_TextReflectQuestion",
		responseField: "textReflectResponse", code: "TEXT_REFLECT",
		family: familyOther,
		blank: func() map[string]any { return map[string]any{"answer": ""} },
	},
}

var variantsByTypeName = func() map[string]Variant {
	m := make(map[string]Variant, len(variants))
	for v, info := range variants {
		m[info.typeName] = v
	}
	return m
}()

// LookupVariant maps a wire __typename to its Variant.
func LookupVariant(typeName string) (Variant, bool) {
	v, ok := variantsByTypeName[typeName]
	return v, ok
}

func (v Variant) String() string {
	if info, ok := variants[v]; ok {
		return info.name
	}
	return "Unknown"
}

// TypeName is the wire __typename.
func (v Variant) TypeName() string { return variants[v].typeName }

// ResponseField is the key under which the part carries, and the save call
// expects, this variant's response.
func (v Variant) ResponseField() string { return variants[v].responseField }

// Code is the questionType enum of the save protocol.
func (v Variant) Code() string { return variants[v].code }

// Eligible reports whether the variant may be sent to the oracle.
func (v Variant) Eligible() bool { return variants[v].eligible }

// IsChoice reports whether answers are option ids.
func (v Variant) IsChoice() bool { return variants[v].family == familyChoice }

// IsText reports whether answers are free text.
func (v Variant) IsText() bool { return variants[v].family == familyText }

// Blank returns a fresh response body with every leaf at its zero value.
func (v Variant) Blank() map[string]any {
	info, ok := variants[v]
	if !ok {
		return map[string]any{}
	}
	return info.blank()
}
