package lifecycle

import (
	"errors"
	"reflect"
	"testing"

	"github.com/peterhaneve/ONIMods-sub014/internal/registry"
	"github.com/peterhaneve/ONIMods-sub014/internal/service"
	"github.com/peterhaneve/ONIMods-sub014/internal/testutil/testlog"
	"github.com/peterhaneve/ONIMods-sub014/internal/version"
)

type recordingProvider struct {
	ver    version.Version
	phases []service.Phase
	errOn  map[service.Phase]error
}

func (p *recordingProvider) ServiceVersion() version.Version { return p.ver }

func (p *recordingProvider) Initialize(tok service.Token) error {
	return p.record(service.PhaseInitialize)
}

func (p *recordingProvider) Bootstrap(tok service.Token) error {
	return p.record(service.PhaseBootstrap)
}

func (p *recordingProvider) PostInitialize(tok service.Token) error {
	return p.record(service.PhasePostInitialize)
}

func (p *recordingProvider) record(phase service.Phase) error {
	p.phases = append(p.phases, phase)
	if p.errOn != nil {
		return p.errOn[phase]
	}
	return nil
}

func runAllPhases(t *testing.T, c *Coordinator) {
	t.Helper()
	if err := c.RunBootstrapPhase(); err != nil {
		t.Fatalf("bootstrap phase: %v", err)
	}
	if err := c.RunInitializePhase(); err != nil {
		t.Fatalf("initialize phase: %v", err)
	}
	if err := c.RunPostInitializePhase(); err != nil {
		t.Fatalf("postinitialize phase: %v", err)
	}
}

func TestWinnerReceivesPhasesInOrder(t *testing.T) {
	testlog.Start(t)
	reg := registry.New()
	winner := &recordingProvider{ver: version.New(2, 0, 0, 0)}
	loser := &recordingProvider{ver: version.New(1, 0, 0, 0)}
	_, _ = reg.Register("sim.test", loser.ver, "mod.old", loser)
	_, _ = reg.Register("sim.test", winner.ver, "mod.new", winner)

	c := New(reg)
	if c.Started() {
		t.Fatalf("coordinator started before any phase")
	}
	runAllPhases(t, c)
	if !c.Started() {
		t.Fatalf("coordinator should report started")
	}

	want := []service.Phase{service.PhaseBootstrap, service.PhaseInitialize, service.PhasePostInitialize}
	if !reflect.DeepEqual(winner.phases, want) {
		t.Fatalf("winner phases: got=%v want=%v", winner.phases, want)
	}
	if len(loser.phases) != 0 {
		t.Fatalf("loser must receive no lifecycle calls, got %v", loser.phases)
	}
}

func TestPhaseOrderEnforced(t *testing.T) {
	testlog.Start(t)
	c := New(registry.New())

	if err := c.RunInitializePhase(); !errors.Is(err, ErrPhaseOrder) {
		t.Fatalf("expected ErrPhaseOrder, got %v", err)
	}
	if err := c.RunBootstrapPhase(); err != nil {
		t.Fatalf("bootstrap phase: %v", err)
	}
	if err := c.RunBootstrapPhase(); !errors.Is(err, ErrPhaseOrder) {
		t.Fatalf("expected ErrPhaseOrder on repeat, got %v", err)
	}
	if err := c.RunPostInitializePhase(); !errors.Is(err, ErrPhaseOrder) {
		t.Fatalf("expected ErrPhaseOrder on skip, got %v", err)
	}
}

func TestWinnerFailureDoesNotStopThePhase(t *testing.T) {
	testlog.Start(t)
	reg := registry.New()
	bad := errors.New("init exploded")
	failing := &recordingProvider{
		ver:   version.New(1, 0, 0, 0),
		errOn: map[service.Phase]error{service.PhaseInitialize: bad},
	}
	healthy := &recordingProvider{ver: version.New(1, 0, 0, 0)}
	_, _ = reg.Register("sim.alpha", failing.ver, "mod.a", failing)
	_, _ = reg.Register("sim.beta", healthy.ver, "mod.b", healthy)

	c := New(reg)
	if err := c.RunBootstrapPhase(); err != nil {
		t.Fatalf("bootstrap phase: %v", err)
	}

	err := c.RunInitializePhase()
	if !errors.Is(err, bad) {
		t.Fatalf("aggregate must carry the winner error, got %v", err)
	}
	// The healthy winner still received the phase.
	want := []service.Phase{service.PhaseBootstrap, service.PhaseInitialize}
	if !reflect.DeepEqual(healthy.phases, want) {
		t.Fatalf("healthy winner phases: got=%v want=%v", healthy.phases, want)
	}

	// The failed phase still counts as run; the next phase proceeds.
	if err := c.RunPostInitializePhase(); err != nil {
		t.Fatalf("postinitialize phase: %v", err)
	}
}

func TestLateRegistrantGetsRemainingPhasesOnly(t *testing.T) {
	testlog.Start(t)
	reg := registry.New()
	early := &recordingProvider{ver: version.New(1, 0, 0, 0)}
	_, _ = reg.Register("sim.early", early.ver, "mod.a", early)

	c := New(reg)
	if err := c.RunBootstrapPhase(); err != nil {
		t.Fatalf("bootstrap phase: %v", err)
	}

	late := &recordingProvider{ver: version.New(1, 0, 0, 0)}
	_, _ = reg.Register("sim.late", late.ver, "mod.b", late)

	if err := c.RunInitializePhase(); err != nil {
		t.Fatalf("initialize phase: %v", err)
	}
	if err := c.RunPostInitializePhase(); err != nil {
		t.Fatalf("postinitialize phase: %v", err)
	}

	want := []service.Phase{service.PhaseInitialize, service.PhasePostInitialize}
	if !reflect.DeepEqual(late.phases, want) {
		t.Fatalf("late registrant phases: got=%v want=%v", late.phases, want)
	}
}

func TestEmptyRegistryPhasesSucceed(t *testing.T) {
	testlog.Start(t)
	c := New(registry.New())
	runAllPhases(t, c)
}
