package graphql

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/alexwatever/wept/internal/domain/apperror"
)

// ErrorLocation is a position in the GraphQL document.
type ErrorLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// ServerError is one entry of a response's errors array.
type ServerError struct {
	Message    string          `json:"message"`
	Path       []any           `json:"path,omitempty"`
	Locations  []ErrorLocation `json:"locations,omitempty"`
	Extensions map[string]any  `json:"extensions,omitempty"`
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []ServerError   `json:"errors"`
}

// RawResponse is an undecoded backend response.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// SessionToken returns the value of the session header, if present.
// The value is used verbatim as the next token.
func (r *RawResponse) SessionToken(header string) string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.Header.Get(header))
}

// Decode decodes the response envelope. GraphQL errors fail with a
// GraphQL-kind error. A null or missing data object is not an error for
// mutations: Decode then reports false and leaves out untouched.
func (r *RawResponse) Decode(op string, out any) (bool, error) {
	env, err := parseEnvelope(op, r.Body)
	if err != nil {
		return false, err
	}
	if len(env.Errors) > 0 {
		return false, graphQLError(op, env.Errors)
	}
	if isNull(env.Data) {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return false, &Error{Kind: apperror.KindParse, Op: op, Message: "decode data", Err: err}
	}
	return true, nil
}

// decodeData decodes a query response into out. Unlike Decode, a missing
// data object is a failure.
func decodeData(op string, body []byte, out any) error {
	env, err := parseEnvelope(op, body)
	if err != nil {
		return err
	}
	if len(env.Errors) > 0 {
		return graphQLError(op, env.Errors)
	}
	if isNull(env.Data) {
		return &Error{Kind: apperror.KindGraphQL, Op: op, Message: "no data in response"}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{Kind: apperror.KindParse, Op: op, Message: "decode data", Err: err}
	}
	return nil
}

func parseEnvelope(op string, body []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return envelope{}, &Error{Kind: apperror.KindParse, Op: op, Message: "decode response", Err: err}
	}
	return env, nil
}

func graphQLError(op string, errs []ServerError) *Error {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return &Error{
		Kind:         apperror.KindGraphQL,
		Op:           op,
		Message:      strings.Join(msgs, "; "),
		ServerErrors: errs,
	}
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
