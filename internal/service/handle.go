package service

import (
	"fmt"

	"github.com/peterhaneve/ONIMods-sub014/internal/version"
)

// Handle is the bound view of an elected service instance. Required
// operations are always callable; optional capabilities degrade to no-ops
// when the instance never implemented them.
type Handle struct {
	ver      version.Version
	instance any

	initialize      func(Token) error
	bootstrap       func(Token) error
	postInitialize  func(Token) error
	process         func(uint32, any) error
	instanceData    func() any
	setInstanceData func(any)
}

// Bind probes an instance against the provider contract and the optional
// capability interfaces, capturing each discovered operation once.
func Bind(instance any) (*Handle, error) {
	if instance == nil {
		return nil, ErrNilInstance
	}
	provider, ok := instance.(Provider)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrMissingContract, instance)
	}
	ver := provider.ServiceVersion()
	if err := ver.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVersion, err)
	}

	h := &Handle{
		ver:        ver,
		instance:   instance,
		initialize: provider.Initialize,
	}
	if b, ok := instance.(Bootstrapper); ok {
		h.bootstrap = b.Bootstrap
	}
	if p, ok := instance.(PostInitializer); ok {
		h.postInitialize = p.PostInitialize
	}
	if p, ok := instance.(Processor); ok {
		h.process = p.Process
	}
	if d, ok := instance.(DataHolder); ok {
		h.instanceData = d.InstanceData
		h.setInstanceData = d.SetInstanceData
	}
	return h, nil
}

// Version reports the version the instance declared at bind time.
func (h *Handle) Version() version.Version {
	return h.ver
}

// Instance exposes the raw instance for consumers compiled against its
// concrete type. Cross-module consumers stay on the handle operations.
func (h *Handle) Instance() any {
	return h.instance
}

// Bootstrap forwards the bootstrap phase, or does nothing when the instance
// never implemented it.
func (h *Handle) Bootstrap(tok Token) error {
	if h.bootstrap == nil {
		return nil
	}
	return h.bootstrap(tok)
}

// Initialize forwards the initialize phase. Always bound.
func (h *Handle) Initialize(tok Token) error {
	return h.initialize(tok)
}

// PostInitialize forwards the final phase, or does nothing when the instance
// never implemented it.
func (h *Handle) PostInitialize(tok Token) error {
	if h.postInitialize == nil {
		return nil
	}
	return h.postInitialize(tok)
}

// Process forwards an opaque operation, or does nothing when the instance
// never implemented it.
func (h *Handle) Process(op uint32, args any) error {
	if h.process == nil {
		return nil
	}
	return h.process(op, args)
}

// InstanceData returns the instance payload, or nil without the capability.
func (h *Handle) InstanceData() any {
	if h.instanceData == nil {
		return nil
	}
	return h.instanceData()
}

// SetInstanceData stores the instance payload when the capability exists.
func (h *Handle) SetInstanceData(value any) {
	if h.setInstanceData == nil {
		return
	}
	h.setInstanceData(value)
}
