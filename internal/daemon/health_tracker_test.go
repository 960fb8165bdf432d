package daemon

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mcpherd/mcpherd/internal/domain"
	"github.com/mcpherd/mcpherd/internal/errors"
)

func TestNewHealthTracker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		serverNames []string
		wantLen     int
	}{
		{
			name:        "empty server list",
			serverNames: []string{},
			wantLen:     0,
		},
		{
			name:        "nil server list",
			serverNames: nil,
			wantLen:     0,
		},
		{
			name:        "single server",
			serverNames: []string{"time"},
			wantLen:     1,
		},
		{
			name:        "multiple servers",
			serverNames: []string{"time", "fetch", "git"},
			wantLen:     3,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tracker := NewHealthTracker(tc.serverNames)
			require.NotNil(t, tracker)
			require.Len(t, tracker.statuses, tc.wantLen)

			// Every server starts in the unknown state.
			for _, name := range tc.serverNames {
				health, exists := tracker.statuses[name]
				require.True(t, exists)
				require.Equal(t, name, health.Name)
				require.Equal(t, domain.HealthStatusUnknown, health.Status)
				require.Nil(t, health.Latency)
				require.Nil(t, health.LastChecked)
				require.Nil(t, health.LastSuccessful)
			}
		})
	}
}

func TestHealthTracker_Status(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		serverNames []string
		queryName   string
		wantError   bool
	}{
		{
			name:        "existing server",
			serverNames: []string{"time", "fetch"},
			queryName:   "time",
			wantError:   false,
		},
		{
			name:        "non-existing server",
			serverNames: []string{"time", "fetch"},
			queryName:   "git",
			wantError:   true,
		},
		{
			name:        "empty tracker",
			serverNames: []string{},
			queryName:   "time",
			wantError:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tracker := NewHealthTracker(tc.serverNames)
			health, err := tracker.Status(tc.queryName)

			if tc.wantError {
				require.ErrorIs(t, err, errors.ErrHealthNotTracked)
				require.Equal(t, domain.ServerHealth{}, health)
			} else {
				require.NoError(t, err)
				require.Equal(t, tc.queryName, health.Name)
				require.Equal(t, domain.HealthStatusUnknown, health.Status)
			}
		})
	}
}

func TestHealthTracker_Update(t *testing.T) {
	t.Parallel()

	t.Run("successful updates", func(t *testing.T) {
		t.Parallel()

		tracker := NewHealthTracker([]string{"time", "fetch"})
		latency := 50 * time.Millisecond

		tests := []struct {
			name         string
			serverName   string
			status       domain.HealthStatus
			latency      *time.Duration
			wantError    bool
			checkSuccess bool
		}{
			{
				name:         "update with OK status and latency",
				serverName:   "time",
				status:       domain.HealthStatusOK,
				latency:      &latency,
				checkSuccess: true,
			},
			{
				name:       "update with timeout status and latency",
				serverName: "time",
				status:     domain.HealthStatusTimeout,
				latency:    &latency,
			},
			{
				name:       "update with unreachable status and nil latency",
				serverName: "time",
				status:     domain.HealthStatusUnreachable,
				latency:    nil,
			},
			{
				name:       "update non-existing server",
				serverName: "git",
				status:     domain.HealthStatusOK,
				latency:    &latency,
				wantError:  true,
			},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				beforeUpdate := time.Now().UTC()
				err := tracker.Update(tc.serverName, tc.status, tc.latency)

				if tc.wantError {
					require.ErrorIs(t, err, errors.ErrHealthNotTracked)
					return
				}

				require.NoError(t, err)

				health, err := tracker.Status(tc.serverName)
				require.NoError(t, err)
				require.Equal(t, tc.serverName, health.Name)
				require.Equal(t, tc.status, health.Status)

				require.NotNil(t, health.LastChecked)
				require.False(t, health.LastChecked.Before(beforeUpdate))

				if tc.latency != nil {
					require.NotNil(t, health.Latency)
					require.Equal(t, *tc.latency, *health.Latency)
				} else {
					require.Nil(t, health.Latency)
				}

				if tc.checkSuccess {
					require.NotNil(t, health.LastSuccessful)
					require.False(t, health.LastSuccessful.Before(beforeUpdate))
				}
			})
		}
	})

	t.Run("LastSuccessful preserved across failures", func(t *testing.T) {
		t.Parallel()

		tracker := NewHealthTracker([]string{"time"})
		latency := 50 * time.Millisecond

		require.NoError(t, tracker.Update("time", domain.HealthStatusOK, &latency))

		health, err := tracker.Status("time")
		require.NoError(t, err)
		originalLastSuccessful := health.LastSuccessful
		require.NotNil(t, originalLastSuccessful)

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, tracker.Update("time", domain.HealthStatusTimeout, &latency))

		health, err = tracker.Status("time")
		require.NoError(t, err)
		require.Equal(t, domain.HealthStatusTimeout, health.Status)
		require.Equal(t, originalLastSuccessful, health.LastSuccessful)
	})
}

func TestHealthTracker_List(t *testing.T) {
	t.Parallel()

	tracker := NewHealthTracker([]string{"time", "fetch", "git"})

	list := tracker.List()
	require.Len(t, list, 3)

	seen := make(map[string]bool, len(list))
	for _, health := range list {
		seen[health.Name] = true
	}
	for _, name := range []string{"time", "fetch", "git"} {
		require.True(t, seen[name], "server %s should be in the list", name)
	}
}

func TestHealthTracker_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	tracker := NewHealthTracker([]string{"server1", "server2", "server3"})

	const numGoroutines = 100
	const numOperations = 10

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := range numGoroutines {
		go func(id int) {
			defer wg.Done()

			for j := range numOperations {
				serverName := fmt.Sprintf("server%d", (id%3)+1)
				latency := time.Duration(id*j) * time.Millisecond

				switch j % 3 {
				case 0:
					require.NoError(t, tracker.Update(serverName, domain.HealthStatusOK, &latency))
				case 1:
					_, err := tracker.Status(serverName)
					require.NoError(t, err)
				case 2:
					require.GreaterOrEqual(t, len(tracker.List()), 1)
				}
			}
		}(i)
	}

	wg.Wait()
}
