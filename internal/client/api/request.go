package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Request is an outbound call captured in a replayable form.
// Body is kept as bytes so the same request can be sent again after
// the access token has been refreshed.
type Request struct {
	Header http.Header
	Query  url.Values
	Method string
	Path   string
	Body   []byte
	// Retried отмечает, что для запроса уже была попытка восстановления после 401
	Retried bool
}

// NewRequest создает запрос; body сериализуется в JSON, если не nil
func NewRequest(method, path string, body any) (*Request, error) {
	req := &Request{
		Method: method,
		Path:   path,
		Header: make(http.Header),
	}

	if body != nil {
		switch b := body.(type) {
		case []byte:
			req.Body = b
		case json.RawMessage:
			req.Body = b
		default:
			data, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal request body: %w", err)
			}
			req.Body = data
		}
	}

	return req, nil
}

// SetHeader sets a header on the request, allocating the map when needed
func (r *Request) SetHeader(key, value string) {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(key, value)
}

// Response is a successful (2xx) server response
type Response struct {
	Header http.Header
	Data   []byte
	Status int
}

// Decode unmarshals the response body into v
func (r *Response) Decode(v any) error {
	if len(r.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
