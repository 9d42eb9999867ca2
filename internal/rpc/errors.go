package rpc

import (
	"errors"
	"fmt"
)

// codeProcessingLimit is the protocol error code the node returns when a
// query exceeds its processing limits. It must stay distinguishable so
// callers can narrow the query instead of retrying it.
const codeProcessingLimit = -32001

// TransportError is a timeout, connection failure, or 5xx/429 response.
// Transport errors are retryable.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport: %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError is a JSON-RPC application-level error. Protocol errors are
// not retryable.
type ProtocolError struct {
	Method  string
	Code    int
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("rpc %s: code %d: %s", e.Method, e.Code, e.Message)
}

// ProcessingLimitExceeded reports whether this error is the node's
// result-size/cost cap being hit.
func (e *ProtocolError) ProcessingLimitExceeded() bool {
	return e.Code == codeProcessingLimit
}

// IsRetryable reports whether err is worth retrying on the same endpoint.
func IsRetryable(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// IsProcessingLimit reports whether err is the processing-limit protocol
// error.
func IsProcessingLimit(err error) bool {
	var protocolErr *ProtocolError
	return errors.As(err, &protocolErr) && protocolErr.ProcessingLimitExceeded()
}
