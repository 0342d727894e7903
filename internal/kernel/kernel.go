package kernel

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sort"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/peterhaneve/ONIMods-sub014/internal/lifecycle"
	"github.com/peterhaneve/ONIMods-sub014/internal/lighting"
	"github.com/peterhaneve/ONIMods-sub014/internal/mods"
	"github.com/peterhaneve/ONIMods-sub014/internal/mods/forbid"
	"github.com/peterhaneve/ONIMods-sub014/internal/mods/lights"
	"github.com/peterhaneve/ONIMods-sub014/internal/mods/radiant"
	"github.com/peterhaneve/ONIMods-sub014/internal/registry"
	"github.com/peterhaneve/ONIMods-sub014/internal/server"
)

var (
	ErrInvalidHeartbeatInterval = errors.New("kernel: invalid heartbeat interval")
	ErrAttachClosed             = errors.New("kernel: attach window closed")
	ErrUnknownBuiltinMod        = errors.New("kernel: unknown builtin module")
)

var (
	_ mods.Host           = (*Kernel)(nil)
	_ server.StatusSource = (*Kernel)(nil)
)

// Kernel is the host runtime: it attaches modules, drives the startup
// phases over the shared service registry, and serves until signaled.
type Kernel struct {
	cfg      Config
	services *registry.Registry
	mods     *mods.Registry
	phases   *lifecycle.Coordinator
	started  atomic.Bool
}

// New creates a kernel with an empty service registry and module set.
func New(cfg Config) *Kernel {
	reg := registry.New()
	return &Kernel{
		cfg:      cfg,
		services: reg,
		mods:     mods.NewRegistry(),
		phases:   lifecycle.New(reg),
	}
}

// HostID reports the configured host identity.
func (k *Kernel) HostID() string {
	return k.cfg.HostID
}

// Services exposes the shared service registry.
func (k *Kernel) Services() *registry.Registry {
	return k.services
}

// Attach adds a module and runs its Register hook. The attach window
// closes when the first lifecycle phase begins.
func (k *Kernel) Attach(mod mods.Mod) error {
	if k.started.Load() {
		return ErrAttachClosed
	}
	if err := k.mods.Register(mod); err != nil {
		return err
	}
	meta := mod.Metadata()
	if err := mod.Register(k); err != nil {
		return fmt.Errorf("attach %s: %w", meta.ID, err)
	}
	log.Info().
		Str("mod", meta.ID).
		Str("name", meta.Name).
		Msg("module attached")
	return nil
}

// StartPhases closes the attach window and delivers the three startup
// phases in order. Per-winner failures are folded into the returned
// aggregate; delivery to the remaining winners continues regardless.
func (k *Kernel) StartPhases() error {
	k.started.Store(true)

	var errs []error
	for _, run := range []func() error{
		k.phases.RunBootstrapPhase,
		k.phases.RunInitializePhase,
		k.phases.RunPostInitializePhase,
	} {
		if err := run(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run blocks until a process signal stops the host.
func (k *Kernel) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := k.bootstrap(); err != nil {
		return err
	}
	return k.serve(ctx)
}

// bootstrap attaches the configured builtin modules and runs the startup
// phases. Phase failures degrade the affected services but keep the host
// up.
func (k *Kernel) bootstrap() error {
	if k.cfg.HeartbeatInterval <= 0 {
		return ErrInvalidHeartbeatInterval
	}

	builtins, err := buildBuiltinMods(k.cfg.Mods, k.cfg.SmoothLight)
	if err != nil {
		return err
	}
	for _, mod := range builtins {
		if err := k.Attach(mod); err != nil {
			return err
		}
	}

	if err := k.StartPhases(); err != nil {
		log.Warn().Err(err).Msg("startup phases completed with failures")
	}

	log.Info().
		Str("host_id", k.cfg.HostID).
		Int("mods", k.mods.Len()).
		Int("services", len(k.services.ServiceIDs())).
		Int("elected", k.services.ElectedCount()).
		Msg("modhost ready")
	return nil
}

// serve runs the heartbeat loop and the optional ops endpoint.
func (k *Kernel) serve(ctx context.Context) error {
	ticker := time.NewTicker(k.cfg.HeartbeatInterval)
	defer ticker.Stop()

	opsErr := make(chan error, 1)
	if strings.TrimSpace(k.cfg.OpsListenAddr) != "" {
		ops := server.New(server.Config{
			ListenAddr: k.cfg.OpsListenAddr,
			HostID:     k.cfg.HostID,
			AuthToken:  k.cfg.OpsToken,
		}, k)
		go func() {
			opsErr <- ops.Run(ctx)
		}()
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("host_id", k.cfg.HostID).Msg("modhost shutdown")
			return nil
		case err := <-opsErr:
			if err != nil {
				return err
			}
		case <-ticker.C:
			log.Info().
				Str("host_id", k.cfg.HostID).
				Int("mods", k.mods.Len()).
				Int("services", len(k.services.ServiceIDs())).
				Int("elected", k.services.ElectedCount()).
				Msg("heartbeat")
		}
	}
}

// ServiceSnapshot reports the registry state for the ops endpoint.
func (k *Kernel) ServiceSnapshot() []registry.ServiceStatus {
	return k.services.Snapshot()
}

// ModList reports attached module metadata for the ops endpoint.
func (k *Kernel) ModList() []mods.Metadata {
	return k.mods.ListMetadata()
}

// ShapeList reports the shared shape catalog without forcing an election.
func (k *Kernel) ShapeList() []lighting.ShapeInfo {
	if v, ok := k.services.SharedData(lighting.ServiceID); ok {
		if cat, ok := v.(*lighting.Catalog); ok {
			return cat.List()
		}
	}
	return nil
}

// PreviewLight resolves the lighting winner and runs a one-shot preview
// cast of the named shape, collecting lit cells in row order.
func (k *Kernel) PreviewLight(req server.PreviewRequest) (server.PreviewResult, bool) {
	handle, ok := k.services.Resolve(lighting.ServiceID)
	if !ok {
		return server.PreviewResult{}, false
	}
	mgr, ok := handle.Instance().(*lighting.Manager)
	if !ok {
		return server.PreviewResult{}, false
	}
	cat := mgr.Catalog()
	if cat == nil {
		return server.PreviewResult{}, false
	}
	shape, ok := cat.ByID(strings.TrimSpace(req.ShapeID))
	if !ok {
		return server.PreviewResult{}, false
	}

	sink := &collectSink{cells: make(map[lighting.Cell]int)}
	mgr.RequestPreview(k)
	origin := lighting.Cell{X: req.OriginX, Y: req.OriginY}
	if !mgr.PreviewLight(origin, req.Radius, shape.GridShape(), req.Lux, sink) {
		return server.PreviewResult{}, false
	}

	cells := make([]server.PreviewCell, 0, len(sink.cells))
	for cell, lux := range sink.cells {
		cells = append(cells, server.PreviewCell{X: cell.X, Y: cell.Y, Lux: lux})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
	return server.PreviewResult{Shape: shape.ID(), Cells: cells}, true
}

type collectSink struct {
	cells map[lighting.Cell]int
}

func (s *collectSink) SetLux(cell lighting.Cell, lux int) {
	s.cells[cell] = lux
}

// buildBuiltinMods resolves configured module ids to builtin constructors.
func buildBuiltinMods(ids []string, smoothLight bool) ([]mods.Mod, error) {
	out := make([]mods.Mod, 0, len(ids))
	seen := make(map[string]struct{})
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" || id == "none" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		switch id {
		case "mod.lights", "lights":
			out = append(out, lights.New(smoothLight))
		case "mod.radiant", "radiant":
			out = append(out, radiant.New())
		case "mod.forbid", "forbid":
			out = append(out, forbid.New())
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownBuiltinMod, id)
		}
	}
	return out, nil
}
