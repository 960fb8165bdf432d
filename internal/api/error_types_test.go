package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/mcpherd/mcpherd/internal/errors"
)

func TestAPIError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "bad request",
			err:        errors.ErrBadRequest,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid tool arguments",
			err:        fmt.Errorf("%w: 'echo': text is required", errors.ErrToolArgsInvalid),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "server not found",
			err:        fmt.Errorf("%w: 'ghost'", errors.ErrServerNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "health not tracked",
			err:        errors.ErrHealthNotTracked,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "server not running",
			err:        fmt.Errorf("%w: 'time'", errors.ErrServerNotRunning),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "spawn failed",
			err:        errors.ErrSpawnFailed,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "transport failed",
			err:        errors.ErrTransportFailed,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "tool list failed",
			err:        errors.ErrToolListFailed,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "tool call failed",
			err:        errors.ErrToolCallFailed,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "resource list failed",
			err:        errors.ErrResourceListFailed,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "resource read failed",
			err:        errors.ErrResourceReadFailed,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "prompt list failed",
			err:        errors.ErrPromptListFailed,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "prompt get failed",
			err:        errors.ErrPromptGetFailed,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "request timeout",
			err:        fmt.Errorf("%w after 30s", errors.ErrRequestTimeout),
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "timeout wrapped inside tool call failure maps to 504",
			err:        fmt.Errorf("%w: 'echo': %w", errors.ErrToolCallFailed, errors.ErrRequestTimeout),
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "unmapped error defaults to 500",
			err:        fmt.Errorf("something unexpected"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	logger := hclog.NewNullLogger()

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			statusErr := apiError(logger, tc.err)
			require.Equal(t, tc.wantStatus, statusErr.GetStatus())
		})
	}
}
