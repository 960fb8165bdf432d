package jsonrpc

import (
	"encoding/json"
)

const (
	// OutcomeSuccess indicates the server returned a result.
	OutcomeSuccess OutcomeKind = "success"

	// OutcomeApplicationError indicates the server returned a JSON-RPC error object.
	OutcomeApplicationError OutcomeKind = "application_error"

	// OutcomeTransportError indicates the exchange failed before a valid response
	// was decoded: I/O failure, malformed frame, or timeout.
	OutcomeTransportError OutcomeKind = "transport_error"
)

// OutcomeKind tags the result of a single RPC exchange.
type OutcomeKind string

// Outcome is the single, fully-populated result of one RPC exchange.
// Every call produces exactly one Outcome; use the constructors below.
type Outcome struct {
	kind   OutcomeKind
	result json.RawMessage
	appErr *RPCError
	err    error
}

// SuccessOutcome wraps a server result. A nil result is normalized to an
// empty object so callers always receive valid JSON.
func SuccessOutcome(result json.RawMessage) Outcome {
	if len(result) == 0 || string(result) == "null" {
		result = json.RawMessage(`{}`)
	}
	return Outcome{kind: OutcomeSuccess, result: result}
}

// ApplicationOutcome wraps a server-reported JSON-RPC error.
func ApplicationOutcome(e *RPCError) Outcome {
	return Outcome{kind: OutcomeApplicationError, appErr: e}
}

// TransportOutcome wraps a wire-level failure.
func TransportOutcome(err error) Outcome {
	return Outcome{kind: OutcomeTransportError, err: err}
}

// Kind reports which variant this outcome holds.
func (o Outcome) Kind() OutcomeKind {
	return o.kind
}

// AppError returns the server's error object for application-error outcomes, otherwise nil.
func (o Outcome) AppError() *RPCError {
	return o.appErr
}

// Result collapses the outcome into Go's (value, error) convention.
// Application errors surface as *RPCError; transport errors surface as the
// wrapped wire-level error.
func (o Outcome) Result() (json.RawMessage, error) {
	switch o.kind {
	case OutcomeSuccess:
		return o.result, nil
	case OutcomeApplicationError:
		return nil, o.appErr
	default:
		return nil, o.err
	}
}
