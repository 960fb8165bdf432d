package api

import (
	stdErrors "errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/mcpherd/mcpherd/internal/errors"
)

// apiError maps application domain errors to appropriate HTTP status codes.
//
// This function is the central place where domain errors from internal/errors
// are converted to HTTP responses. When adding new errors to
// internal/errors/errors.go, you MUST add them here to prevent them from
// falling through to the default case which returns HTTP 500.
//
// Mapping guidelines:
//   - 400: Client errors (bad input, invalid requests)
//   - 404: Resource not found errors
//   - 409: Requests that conflict with current server state
//   - 502: MCP server/process failures
//   - 504: MCP server response deadline exceeded
//   - 500: Unexpected internal errors (default case)
//
// Don't forget to:
// 1. Add test cases to TestAPIError (internal/api/error_types_test.go)
// 2. Update the documentation in internal/errors/errors.go
func apiError(logger hclog.Logger, err error) huma.StatusError {
	switch {
	case stdErrors.Is(err, errors.ErrBadRequest):
		return huma.Error400BadRequest(err.Error())
	case stdErrors.Is(err, errors.ErrToolArgsInvalid):
		return huma.Error400BadRequest(err.Error())
	case stdErrors.Is(err, errors.ErrServerNotFound):
		return huma.Error404NotFound(err.Error())
	case stdErrors.Is(err, errors.ErrHealthNotTracked):
		return huma.Error404NotFound(err.Error())
	case stdErrors.Is(err, errors.ErrServerNotRunning):
		return huma.Error409Conflict(err.Error())
	case stdErrors.Is(err, errors.ErrRequestTimeout):
		// Checked before the wrapping 502 classes so a slow server is
		// reported as a timeout, not a generic upstream failure.
		logger.Error("MCP server request timed out", "error", err)
		return huma.Error504GatewayTimeout("MCP server did not respond in time", err)
	case stdErrors.Is(err, errors.ErrSpawnFailed):
		logger.Error("Server spawn failed", "error", err)
		return huma.Error502BadGateway("MCP server process could not be started", err)
	case stdErrors.Is(err, errors.ErrTransportFailed):
		logger.Error("Server transport failed", "error", err)
		return huma.Error502BadGateway("MCP server connection failed", err)
	case stdErrors.Is(err, errors.ErrToolListFailed):
		logger.Error("Tool list failed", "error", err)
		return huma.Error502BadGateway("MCP server error listing tools", err)
	case stdErrors.Is(err, errors.ErrToolCallFailed):
		logger.Error("Tool call failed", "error", err)
		return huma.Error502BadGateway("MCP server error calling tool", err)
	case stdErrors.Is(err, errors.ErrResourceListFailed):
		logger.Error("Resource list failed", "error", err)
		return huma.Error502BadGateway("MCP server error listing resources", err)
	case stdErrors.Is(err, errors.ErrResourceReadFailed):
		logger.Error("Resource read failed", "error", err)
		return huma.Error502BadGateway("MCP server error reading resource", err)
	case stdErrors.Is(err, errors.ErrPromptListFailed):
		logger.Error("Prompt list failed", "error", err)
		return huma.Error502BadGateway("MCP server error listing prompts", err)
	case stdErrors.Is(err, errors.ErrPromptGetFailed):
		logger.Error("Prompt render failed", "error", err)
		return huma.Error502BadGateway("MCP server error rendering prompt", err)
	default:
		logger.Error("Unexpected error interacting with MCP server", "error", err)
		return huma.Error500InternalServerError("Internal server error", err)
	}
}

// ErrorHandler wraps error handling for the application when converting to
// API friendly errors. It allows the logger to be supplied to functions that
// resolve huma.StatusError, and it supports different behaviors based on the
// variadic errors parameter.
func ErrorHandler(logger hclog.Logger) func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
	return func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		switch len(errs) {
		case 0:
			// No errors provided; return a generic error.
			return huma.NewError(status, msg)
		case 1:
			// Single error; map it directly.
			return apiError(logger, errs[0])
		default:
			// Multiple errors; join them and map.
			return apiError(logger, stdErrors.Join(errs...))
		}
	}
}
