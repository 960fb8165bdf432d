// Package errors defines domain-level errors used throughout the application.
// These errors represent supervision and protocol failures and are mapped to
// appropriate HTTP status codes at the API boundary.
//
// Unmapped errors will default to HTTP 500 Internal Server Error.
//
// When adding a new error here, remember to:
// 1. Add your error to apiError (internal/api/error_types.go)
// 2. Add a test case to TestAPIError
package errors

import (
	"errors"
)

var (
	// ErrBadRequest indicates that the client provided invalid input or made a malformed request.
	// Recommended to map to HTTP 400 Bad Request.
	ErrBadRequest = errors.New("bad request")

	// ErrServerNotFound indicates that the requested MCP server does not exist in the configuration.
	// Recommended to map to HTTP 404 Not Found.
	ErrServerNotFound = errors.New("server not found")

	// ErrServerNotRunning indicates that the requested MCP server has no live process.
	// Calls cannot be dispatched to a stopped server; it must be started first.
	// Recommended to map to HTTP 409 Conflict.
	ErrServerNotRunning = errors.New("server not running")

	// ErrSpawnFailed indicates that the OS process for an MCP server could not be started,
	// e.g. the executable is missing or permission was denied. No partial state is left behind.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrSpawnFailed = errors.New("failed to spawn server process")

	// ErrTransportFailed indicates a wire-level failure on the stdio channel to a running
	// server: broken pipe, malformed frame, or an undecodable response body.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrTransportFailed = errors.New("transport failure")

	// ErrRequestTimeout indicates that a server did not produce a response within the
	// deadline for a single call. The server process is left running.
	// Recommended to map to HTTP 504 Gateway Timeout.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrToolListFailed indicates that listing tools from an MCP server failed.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrToolListFailed = errors.New("tool list failed")

	// ErrToolCallFailed indicates that calling a tool on an MCP server failed.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrToolCallFailed = errors.New("tool call failed")

	// ErrToolArgsInvalid indicates that tool call arguments failed validation against
	// the tool's declared input schema. The call was never dispatched to the server.
	// Recommended to map to HTTP 400 Bad Request.
	ErrToolArgsInvalid = errors.New("tool arguments failed schema validation")

	// ErrResourceListFailed indicates that listing resources from an MCP server failed.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrResourceListFailed = errors.New("resource list failed")

	// ErrResourceReadFailed indicates that reading a resource from an MCP server failed.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrResourceReadFailed = errors.New("resource read failed")

	// ErrPromptListFailed indicates that listing prompts from an MCP server failed.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrPromptListFailed = errors.New("prompt list failed")

	// ErrPromptGetFailed indicates that getting a prompt from an MCP server failed.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrPromptGetFailed = errors.New("prompt generation from template failed")

	// ErrHealthNotTracked indicates that health monitoring is not enabled for the specified server.
	// Recommended to map to HTTP 404 Not Found.
	ErrHealthNotTracked = errors.New("server health is not being tracked")

	// ErrConfigLoadFailed indicates that the configuration file could not be loaded or validated.
	ErrConfigLoadFailed = errors.New("failed to load configuration")
)
