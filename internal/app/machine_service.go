package app

import (
	"context"
	"fmt"

	"github.com/example/dotgraph/internal/ports/primary"
	"github.com/example/dotgraph/internal/ports/secondary"
)

// MachineServiceImpl implements the MachineService interface.
type MachineServiceImpl struct {
	machineRepo secondary.MachineRepository
}

// NewMachineService creates a new MachineService with injected dependencies.
func NewMachineService(machineRepo secondary.MachineRepository) *MachineServiceImpl {
	return &MachineServiceImpl{machineRepo: machineRepo}
}

// RegisterMachine registers a machine with baseline attributes.
func (s *MachineServiceImpl) RegisterMachine(ctx context.Context, req primary.RegisterMachineRequest) (*primary.Machine, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("machine id is required")
	}

	record := &secondary.MachineRecord{
		ID:            req.ID,
		Hostname:      req.Hostname,
		HardwareClass: req.HardwareClass,
	}
	if err := s.machineRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return s.GetMachine(ctx, req.ID)
}

// GetMachine retrieves a machine by id.
func (s *MachineServiceImpl) GetMachine(ctx context.Context, id string) (*primary.Machine, error) {
	record, err := s.machineRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return machineToPort(record), nil
}

// ListMachines lists machines with optional filters.
func (s *MachineServiceImpl) ListMachines(ctx context.Context, filters primary.MachineFilters) ([]*primary.Machine, error) {
	records, err := s.machineRepo.List(ctx, secondary.MachineFilters{Status: filters.Status})
	if err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}

	machines := make([]*primary.Machine, len(records))
	for i, r := range records {
		machines[i] = machineToPort(r)
	}
	return machines, nil
}

// RetireMachine soft-retires a machine. The row stays so historical drift
// reports and snapshots remain explainable.
func (s *MachineServiceImpl) RetireMachine(ctx context.Context, id string) error {
	if _, err := s.machineRepo.Get(ctx, id); err != nil {
		return err
	}
	return s.machineRepo.Retire(ctx, id)
}

func machineToPort(r *secondary.MachineRecord) *primary.Machine {
	return &primary.Machine{
		ID:            r.ID,
		Hostname:      r.Hostname,
		HardwareClass: r.HardwareClass,
		Status:        r.Status,
		LastSeenAt:    r.LastSeenAt,
		CreatedAt:     r.CreatedAt,
	}
}
