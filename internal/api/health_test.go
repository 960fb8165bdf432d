package api

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mcpherd/mcpherd/internal/domain"
	"github.com/mcpherd/mcpherd/internal/errors"
)

// stubMonitor implements contracts.MCPHealthMonitor over a fixed record set.
type stubMonitor struct {
	records map[string]domain.ServerHealth
}

func (m *stubMonitor) Status(name string) (domain.ServerHealth, error) {
	if h, ok := m.records[name]; ok {
		return h, nil
	}
	return domain.ServerHealth{}, fmt.Errorf("%w: %s", errors.ErrHealthNotTracked, name)
}

func (m *stubMonitor) List() []domain.ServerHealth {
	out := make([]domain.ServerHealth, 0, len(m.records))
	for _, h := range m.records {
		out = append(out, h)
	}
	return out
}

func (m *stubMonitor) Update(string, domain.HealthStatus, *time.Duration) error { return nil }

func TestHandleHealthServers_SortedByName(t *testing.T) {
	t.Parallel()

	latency := 12 * time.Millisecond
	monitor := &stubMonitor{
		records: map[string]domain.ServerHealth{
			"time":  {Name: "time", Status: domain.HealthStatusOK, Latency: &latency},
			"fetch": {Name: "fetch", Status: domain.HealthStatusUnknown},
		},
	}

	resp, err := handleHealthServers(monitor)
	require.NoError(t, err)

	servers := resp.Body.Servers
	require.Len(t, servers, 2)
	require.Equal(t, "fetch", servers[0].Name)
	require.Equal(t, "time", servers[1].Name)

	require.Equal(t, HealthStatusUnknown, servers[0].Status)
	require.Nil(t, servers[0].Latency)

	require.Equal(t, HealthStatusOK, servers[1].Status)
	require.NotNil(t, servers[1].Latency)
	require.Equal(t, "12ms", *servers[1].Latency)
}

func TestHandleHealthServer(t *testing.T) {
	t.Parallel()

	monitor := &stubMonitor{
		records: map[string]domain.ServerHealth{
			"time": {Name: "time", Status: domain.HealthStatusTimeout},
		},
	}

	resp, err := handleHealthServer(monitor, "time")
	require.NoError(t, err)
	require.Equal(t, "time", resp.Body.Name)
	require.Equal(t, HealthStatusTimeout, resp.Body.Status)

	_, err = handleHealthServer(monitor, "ghost")
	require.ErrorIs(t, err, errors.ErrHealthNotTracked)
}

func TestDomainServerHealth_ToAPIType_UnknownStatus(t *testing.T) {
	t.Parallel()

	_, err := DomainServerHealth(domain.ServerHealth{Name: "x", Status: "bogus"}).ToAPIType()
	require.Error(t, err)
}
