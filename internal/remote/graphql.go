package remote

import "context"

// Operation is one named GraphQL request.
type Operation struct {
	Name      string
	Query     string
	Variables map[string]any
}

type graphqlRequest struct {
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
	Query         string         `json:"query"`
}

// GraphQL posts op to the gateway with ?opname=<name>. A non-2xx status is
// returned as a Response, not an error: callers decide success from the body.
func (s *Session) GraphQL(ctx context.Context, op Operation) (*Response, error) {
	u := *s.graphqlURL
	q := u.Query()
	q.Set("opname", op.Name)
	u.RawQuery = q.Encode()

	vars := op.Variables
	if vars == nil {
		vars = map[string]any{}
	}
	return s.post(ctx, &u, graphqlRequest{
		OperationName: op.Name,
		Variables:     vars,
		Query:         op.Query,
	})
}
