// Package lifecycle drives the three host startup phases over every elected
// service exactly once, in order.
package lifecycle

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/peterhaneve/ONIMods-sub014/internal/registry"
	"github.com/peterhaneve/ONIMods-sub014/internal/service"
)

var ErrPhaseOrder = errors.New("lifecycle: phases must run once, in order")

// Coordinator delivers bootstrap, initialize, and postinitialize to service
// winners at the host's three fixed startup points. Each phase forces the
// election of every service registered so far; losers receive nothing.
type Coordinator struct {
	reg *registry.Registry

	mu    sync.Mutex
	stage int
}

// New creates a coordinator over the given registry.
func New(reg *registry.Registry) *Coordinator {
	return &Coordinator{reg: reg}
}

func (c *Coordinator) RunBootstrapPhase() error {
	return c.runPhase(service.PhaseBootstrap)
}

func (c *Coordinator) RunInitializePhase() error {
	return c.runPhase(service.PhaseInitialize)
}

func (c *Coordinator) RunPostInitializePhase() error {
	return c.runPhase(service.PhasePostInitialize)
}

// Started reports whether the first phase has begun.
func (c *Coordinator) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage > 0
}

// runPhase walks the sorted service ids, electing and delivering one phase
// per winner. A winner's failure is logged and folded into the aggregate
// without stopping delivery to the remaining winners.
func (c *Coordinator) runPhase(phase service.Phase) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stage != int(phase) {
		return fmt.Errorf("%w: %s requested at stage %d", ErrPhaseOrder, phase, c.stage)
	}

	tok := service.Token{Phase: phase, Services: c.reg}
	delivered := 0
	var errs []error
	for _, id := range c.reg.ServiceIDs() {
		handle, ok := c.reg.Resolve(id)
		if !ok {
			continue
		}
		if err := c.deliver(handle, phase, tok); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", id, phase, err))
			log.Error().
				Str("service", id).
				Str("phase", phase.String()).
				Err(err).
				Msg("lifecycle delivery failed")
			continue
		}
		delivered++
	}
	c.stage = int(phase) + 1

	log.Info().
		Str("phase", phase.String()).
		Int("delivered", delivered).
		Int("failed", len(errs)).
		Msg("lifecycle phase complete")
	return errors.Join(errs...)
}

func (c *Coordinator) deliver(handle *service.Handle, phase service.Phase, tok service.Token) error {
	switch phase {
	case service.PhaseBootstrap:
		return handle.Bootstrap(tok)
	case service.PhaseInitialize:
		return handle.Initialize(tok)
	case service.PhasePostInitialize:
		return handle.PostInitialize(tok)
	default:
		return fmt.Errorf("%w: unknown phase %d", ErrPhaseOrder, phase)
	}
}
