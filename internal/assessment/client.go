package assessment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/skipera/skipera/internal/remote"
)

const statePath = "data.SubmissionState.queryState"

// GraphQLDoer sends one GraphQL operation. *remote.Session implements it.
type GraphQLDoer interface {
	GraphQL(ctx context.Context, op remote.Operation) (*remote.Response, error)
}

// Client implements API over the platform GraphQL gateway.
type Client struct {
	gql    GraphQLDoer
	logger *zap.Logger
}

func NewClient(gql GraphQLDoer, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{gql: gql, logger: logger.Named("attempt")}
}

func itemVars(ref Ref) map[string]any {
	return map[string]any{"courseId": ref.CourseID, "itemId": ref.ItemID}
}

func (c *Client) QueryState(ctx context.Context, ref Ref) (*AttemptState, error) {
	resp, err := c.gql.GraphQL(ctx, remote.Operation{
		Name:      opQueryState,
		Query:     queryStateDoc,
		Variables: itemVars(ref),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateUnavailable, err)
	}
	if !gjson.ValidBytes(resp.Body) {
		return nil, fmt.Errorf("%w: malformed response (status %d)", ErrStateUnavailable, resp.Status)
	}

	node := gjson.GetBytes(resp.Body, statePath)
	if !node.IsObject() {
		c.logger.Debug("response without query state",
			zap.String("item_id", ref.ItemID),
			zap.ByteString("body", resp.Body))
		return nil, fmt.Errorf("%w: response has no queryState", ErrStateUnavailable)
	}

	var state AttemptState
	if err := json.Unmarshal([]byte(node.Raw), &state); err != nil {
		return nil, fmt.Errorf("%w: decode queryState: %v", ErrStateUnavailable, err)
	}
	return &state, nil
}

func (c *Client) StartAttempt(ctx context.Context, ref Ref) error {
	resp, err := c.gql.GraphQL(ctx, remote.Operation{
		Name:      opStartAttempt,
		Query:     startAttemptDoc,
		Variables: itemVars(ref),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAttemptStart, err)
	}
	if !resp.Contains(opStartAttempt + "Success") {
		return &RejectedError{Op: opStartAttempt, Body: string(resp.Body), kind: ErrAttemptStart}
	}
	return nil
}

func (c *Client) SaveResponses(ctx context.Context, ref Ref, attemptID string, responses []ResponsePayload) error {
	if len(responses) == 0 {
		c.logger.Debug("no responses to save")
		return nil
	}

	resp, err := c.gql.GraphQL(ctx, remote.Operation{
		Name:  opSaveResponse,
		Query: saveResponsesDoc,
		Variables: map[string]any{
			"input": map[string]any{
				"courseId":          ref.CourseID,
				"itemId":            ref.ItemID,
				"attemptId":         attemptID,
				"questionResponses": responses,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveRejected, err)
	}
	if !resp.Contains(opSaveResponse + "Success") {
		return &RejectedError{Op: opSaveResponse, Payload: responses, Body: string(resp.Body), kind: ErrSaveRejected}
	}
	return nil
}

func (c *Client) SubmitDraft(ctx context.Context, ref Ref, submissionID string) error {
	resp, err := c.gql.GraphQL(ctx, remote.Operation{
		Name:  opSubmitDraft,
		Query: submitDraftDoc,
		Variables: map[string]any{
			"input": map[string]any{
				"courseId":     ref.CourseID,
				"itemId":       ref.ItemID,
				"submissionId": submissionID,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubmitRejected, err)
	}
	if !resp.Contains(opSubmitDraft + "Success") {
		return &RejectedError{Op: opSubmitDraft, Body: string(resp.Body), kind: ErrSubmitRejected}
	}
	return nil
}

func (c *Client) Grade(ctx context.Context, ref Ref) (*Outcome, error) {
	state, err := c.QueryState(ctx, ref)
	if err != nil {
		return nil, err
	}
	return state.Outcome, nil
}
