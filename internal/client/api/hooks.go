package api

import (
	"context"

	"github.com/google/uuid"
)

// HeaderRequestID correlates client log lines with server logs
const HeaderRequestID = "X-Request-Id"

// RequestIDHook sets X-Request-Id when the request has none yet.
// A replayed request keeps the id of the original attempt.
func RequestIDHook(_ context.Context, req *Request) error {
	if req.Header.Get(HeaderRequestID) == "" {
		req.SetHeader(HeaderRequestID, uuid.NewString())
	}
	return nil
}
