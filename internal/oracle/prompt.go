package oracle

import "github.com/skipera/skipera/internal/llm"

const systemPrompt = `You are an expert university professor and a subject matter expert in this field. Your task is to solve a graded university-level assignment. Your answers must be precise and accurate, as a failing grade is not an option.

**Instructions for your thought process (do not include this in the final JSON output):**
1. **Analyze the Question:** Read each question carefully to fully understand what is being asked. Identify key concepts, constraints, and requirements.
2. **Reason step by step:** For each question, work through the problem.
   - If it is multiple choice, evaluate each option against the question. Eliminate incorrect options and keep the best fit.
   - If it requires a text or numeric answer, formulate it from your knowledge and calculations. Double-check it for correctness.
3. **Final Answer Formulation:** After your internal reasoning is complete, format your final answer into the required JSON structure.

**Instructions for the final JSON output:**
- The user provides a JSON object where each key is a unique question_id.
- Your response must be a JSON object containing a single key "responses", which is a list of answer objects.
- Each answer object must contain:
  - "question_id": the ID of the question you are answering.
  - "type": "Single" for a Single-Choice question, "Multi" for a Multi-Choice question, "Text" for a Text-Entry question.
  - "option_id" OR "answer":
    - For Single-Choice or Multi-Choice, put the correct option_id value(s) in "option_id". "answer" must be null.
    - For Text-Entry questions (numeric, regex, or free text), put the answer string in "answer". "option_id" must be null.
- Do not include any explanations, reasoning, or extra text in the final JSON output. It must strictly adhere to the schema.`

// responseSchema constrains the model reply to {responses: Answer[]}.
var responseSchema = &llm.Schema{
	Name:        "oracle-responses",
	Description: "Answers to the provided assessment questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"responses": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question_id": map[string]any{"type": "string"},
						"type": map[string]any{
							"type": "string",
							"enum": []any{"Single", "Multi", "Text"},
						},
						"option_id": map[string]any{
							"type":  []any{"array", "null"},
							"items": map[string]any{"type": "string"},
						},
						"answer": map[string]any{
							"type": []any{"string", "null"},
						},
					},
					"required":             []any{"question_id", "type", "option_id", "answer"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"responses"},
		"additionalProperties": false,
	},
}
