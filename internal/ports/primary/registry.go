package primary

import "context"

// DefinitionService defines the primary port for config definition management.
type DefinitionService interface {
	// AddDefinition registers a new logical config path.
	AddDefinition(ctx context.Context, req AddDefinitionRequest) (*Definition, error)

	// GetDefinition retrieves a definition by path.
	GetDefinition(ctx context.Context, path string) (*Definition, error)

	// ListDefinitions lists definitions with optional filters.
	ListDefinitions(ctx context.Context, filters DefinitionFilters) ([]*Definition, error)

	// AdoptCanonical makes a content hash the authoritative state for a
	// definition. This is the only way the canonical reference changes.
	AdoptCanonical(ctx context.Context, req AdoptCanonicalRequest) error

	// RetireDefinition soft-retires a definition.
	RetireDefinition(ctx context.Context, path string) error
}

// AddDefinitionRequest contains parameters for registering a definition.
type AddDefinitionRequest struct {
	Path string
	Tags []string
}

// AdoptCanonicalRequest contains parameters for adopting a canonical hash.
// Exactly one of ContentHash or FromSnapshotID should be set.
type AdoptCanonicalRequest struct {
	Path           string
	ContentHash    string
	FromSnapshotID string
}

// Definition represents a config definition at the port boundary.
type Definition struct {
	Path          string
	CanonicalHash string
	Tags          []string
	Status        string
	CreatedAt     string
	UpdatedAt     string
}

// DefinitionFilters contains filter options for listing definitions.
type DefinitionFilters struct {
	Status string
	Tag    string
}

// MachineService defines the primary port for machine management.
type MachineService interface {
	// RegisterMachine registers a machine with baseline attributes.
	RegisterMachine(ctx context.Context, req RegisterMachineRequest) (*Machine, error)

	// GetMachine retrieves a machine by id.
	GetMachine(ctx context.Context, id string) (*Machine, error)

	// ListMachines lists machines with optional filters.
	ListMachines(ctx context.Context, filters MachineFilters) ([]*Machine, error)

	// RetireMachine soft-retires a machine; it stays in the graph so past
	// drift reports remain explainable.
	RetireMachine(ctx context.Context, id string) error
}

// RegisterMachineRequest contains parameters for registering a machine.
type RegisterMachineRequest struct {
	ID            string
	Hostname      string
	HardwareClass string
}

// Machine represents a machine at the port boundary.
type Machine struct {
	ID            string
	Hostname      string
	HardwareClass string
	Status        string
	LastSeenAt    string
	CreatedAt     string
}

// MachineFilters contains filter options for listing machines.
type MachineFilters struct {
	Status string
}
