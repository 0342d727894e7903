// Package service defines the contract a shared-service implementation must
// satisfy and the bound handle the registry hands to consumers.
//
// Ownership boundaries:
//   - candidate instances are owned by the module that registered them
//   - capability discovery happens once, at bind time, never per call
//   - lifecycle tokens are built by the coordinator, not by modules
package service

import (
	"errors"

	"github.com/peterhaneve/ONIMods-sub014/internal/version"
)

var (
	ErrNilInstance     = errors.New("service: nil instance")
	ErrMissingContract = errors.New("service: instance does not satisfy the provider contract")
	ErrInvalidVersion  = errors.New("service: invalid provider version")
)

// Phase identifies one of the three host-driven startup points.
type Phase int

const (
	PhaseBootstrap Phase = iota
	PhaseInitialize
	PhasePostInitialize
)

func (p Phase) String() string {
	switch p {
	case PhaseBootstrap:
		return "bootstrap"
	case PhaseInitialize:
		return "initialize"
	case PhasePostInitialize:
		return "postinitialize"
	default:
		return "unknown"
	}
}

// Locator is the registry view handed to services during lifecycle calls.
type Locator interface {
	Resolve(serviceID string) (*Handle, bool)
	SharedData(serviceID string) (any, bool)
	SetSharedData(serviceID string, value any)
	SharedDataOrStore(serviceID string, value any) any
}

// Token carries the current phase and the registry view into a lifecycle call.
type Token struct {
	Phase    Phase
	Services Locator
}

// Provider is the minimum contract a candidate must satisfy to be electable.
type Provider interface {
	ServiceVersion() version.Version
	Initialize(tok Token) error
}

// Bootstrapper receives the earliest startup phase, before any service
// resolution by consumers is expected.
type Bootstrapper interface {
	Bootstrap(tok Token) error
}

// PostInitializer receives the final startup phase.
type PostInitializer interface {
	PostInitialize(tok Token) error
}

// Processor accepts opaque operation requests forwarded by consumers that
// only hold a handle.
type Processor interface {
	Process(op uint32, args any) error
}

// DataHolder exposes an instance-scoped data payload through the handle.
type DataHolder interface {
	InstanceData() any
	SetInstanceData(value any)
}
