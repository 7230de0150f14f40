package assessment

const (
	opQueryState   = "QueryState"
	opStartAttempt = "Submission_StartAttempt"
	opSaveResponse = "Submission_SaveResponses"
	opSubmitDraft  = "Submission_SubmitLatestDraft"
)

const queryStateDoc = `query QueryState($courseId: ID!, $itemId: ID!) {
  SubmissionState {
    queryState(courseId: $courseId, itemId: $itemId) {
      ... on Submission_SubmissionState {
        allowedAction
        outcome {
          earnedGrade
          isPassed
        }
        attempts {
          attemptsRemaining
          inProgressAttempt {
            id
            draft {
              id
              parts {
                __typename
                partId
                ... on Submission_MultipleChoiceQuestion {
                  questionSchema { prompt { cmlValue } options { optionId display { cmlValue } } }
                  multipleChoiceResponse { chosen }
                }
                ... on Submission_CheckboxQuestion {
                  questionSchema { prompt { cmlValue } options { optionId display { cmlValue } } }
                  checkboxResponse { chosen }
                }
                ... on Submission_PlainTextQuestion {
                  questionSchema { prompt { cmlValue } }
                  plainTextResponse { plainText }
                }
                ... on Submission_NumericQuestion {
                  questionSchema { prompt { cmlValue } }
                  numericResponse { answer }
                }
                ... on Submission_RegexQuestion {
                  questionSchema { prompt { cmlValue } }
                  regexResponse { answer }
                }
                ... on Submission_TextExactMatchQuestion {
                  questionSchema { prompt { cmlValue } }
                  textExactMatchResponse { answer }
                }
                ... on Submission_MathQuestion {
                  questionSchema { prompt { cmlValue } }
                  mathResponse { answer }
                }
                ... on Submission_RichTextQuestion {
                  questionSchema { prompt { cmlValue } }
                  richTextResponse { richText { typeName definition { dtdId value } } }
                }
                ... on Submission_FileUploadQuestion {
                  questionSchema { prompt { cmlValue } }
                  fileUploadResponse { fileUrl title caption }
                }
                ... on Submission_TextReflectQuestion {
                  questionSchema { prompt { cmlValue } }
                  textReflectResponse { answer }
                }
              }
            }
          }
        }
      }
    }
  }
}`

const startAttemptDoc = `mutation Submission_StartAttempt($courseId: ID!, $itemId: ID!) {
  Submission_StartAttempt(input: {courseId: $courseId, itemId: $itemId}) {
    ... on Submission_StartAttemptSuccess { __typename }
    ... on Submission_StartAttemptError { __typename errorCode }
  }
}`

const saveResponsesDoc = `mutation Submission_SaveResponses($input: Submission_SaveResponsesInput!) {
  Submission_SaveResponses(input: $input) {
    ... on Submission_SaveResponsesSuccess { __typename }
    ... on Submission_SaveResponsesError { __typename errorCode }
  }
}`

const submitDraftDoc = `mutation Submission_SubmitLatestDraft($input: Submission_SubmitLatestDraftInput!) {
  Submission_SubmitLatestDraft(input: $input) {
    ... on Submission_SubmitLatestDraftSuccess { __typename }
    ... on Submission_SubmitLatestDraftError { __typename errorCode }
  }
}`
