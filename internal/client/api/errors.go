package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	pkgapi "github.com/alshehri12/grc/pkg/api"
)

const maxErrorBody = 512

// NetworkError means no response reached the client
// (DNS, connection refused, timeout, canceled context).
type NetworkError struct {
	Err    error
	Method string
	URL    string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request failed: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError means the server responded with a non-2xx status
type HTTPError struct {
	Header http.Header
	Method string
	Path   string
	Body   []byte
	Status int
}

func (e *HTTPError) Error() string {
	if detail := e.Detail(); detail != "" {
		return fmt.Sprintf("server error (%d): %s", e.Status, detail)
	}
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, string(body))
}

// Detail извлекает человекочитаемое сообщение из тела ошибки:
// сначала "detail", затем первый элемент "non_field_errors".
// Пустая строка, если сервер ничего не сообщил.
func (e *HTTPError) Detail() string {
	var resp pkgapi.ErrorResponse
	if err := json.Unmarshal(e.Body, &resp); err != nil {
		return ""
	}
	if resp.Detail != "" {
		return resp.Detail
	}
	if len(resp.NonFieldErrors) > 0 {
		return resp.NonFieldErrors[0]
	}
	return ""
}

// IsStatus reports whether err carries an HTTPError with the given status
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == status
}

// IsUnauthorized reports whether err is a 401 response
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

// ErrorDetail returns the server-provided message of err, if any
func ErrorDetail(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Detail()
	}
	return ""
}
