package daemon

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-hclog"

	"github.com/mcpherd/mcpherd/internal/contracts"
)

// Dependencies contains required dependencies for the Daemon.
// NewDependencies should be used to create instances of Dependencies.
type Dependencies struct {
	// APIAddr specifies the network address for the APIServer to bind (e.g., "0.0.0.0:8090").
	APIAddr string

	// Logger for daemon and subcomponent (API server) operations.
	Logger hclog.Logger

	// Supervisor manages the configured MCP server processes.
	Supervisor contracts.ServerSupervisor
}

// NewDependencies creates and validates Dependencies.
func NewDependencies(
	logger hclog.Logger,
	sup contracts.ServerSupervisor,
	apiAddr string,
) (Dependencies, error) {
	deps := Dependencies{
		APIAddr:    apiAddr,
		Logger:     logger,
		Supervisor: sup,
	}

	if err := deps.Validate(); err != nil {
		return Dependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d Dependencies) Validate() error {
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}

	if d.Supervisor == nil || reflect.ValueOf(d.Supervisor).IsNil() {
		return fmt.Errorf("supervisor cannot be nil")
	}

	if err := validateAddr(d.APIAddr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.APIAddr, err)
	}

	return nil
}
