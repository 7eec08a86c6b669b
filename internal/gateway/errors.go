package gateway

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// TransportError reports that the request never produced an HTTP response
// (DNS failure, refused connection, ...). Its message is the cause verbatim.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// APIError reports a non-2xx response from the upstream API.
type APIError struct {
	StatusCode int
	StatusText string
}

// Error keeps the "GitHub API error: <status> <statusText>" format stable;
// callers parse it.
func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API error: %d %s", e.StatusCode, e.StatusText)
}

func newAPIError(resp *http.Response) *APIError {
	return &APIError{StatusCode: resp.StatusCode, StatusText: statusText(resp.StatusCode, resp.Status)}
}

// statusText strips the numeric prefix from an http.Response Status line.
func statusText(code int, status string) string {
	text := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
	if text == "" {
		text = http.StatusText(code)
	}
	return text
}

// The GraphQL client only reports HTTP failures through its error string.
var graphqlStatusPattern = regexp.MustCompile(`non-200 OK status code: (\d{3})\s?(.*?) body:`)

func classifyGraphQLError(err error) error {
	m := graphqlStatusPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return &TransportError{Err: err}
	}
	code, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return &TransportError{Err: err}
	}
	return &APIError{StatusCode: code, StatusText: statusText(code, m[1]+" "+m[2])}
}
