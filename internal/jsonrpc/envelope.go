package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// Version is the JSON-RPC protocol version sent on every request.
const Version = "2.0"

// Request is the envelope written to a server for a single call.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// NewRequest builds a request envelope for the given correlation ID.
// A nil params is sent as an empty object, matching what stdio MCP servers expect.
func NewRequest(id uint64, method string, params any) Request {
	if params == nil {
		params = struct{}{}
	}
	return Request{
		JSONRPC: Version,
		ID:      id,
		Method:  method,
		Params:  params,
	}
}

// Response is the envelope decoded from a server's reply.
// Exactly one of Result or Error is expected to be populated.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the application-level error object a server may return.
// It is passed through verbatim and never retried.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// DecodeResponse parses a raw frame body into a response envelope.
func DecodeResponse(raw json.RawMessage) (Response, error) {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Response{}, fmt.Errorf("failed to decode response envelope: %w", err)
	}
	return resp, nil
}
