package lighting

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/peterhaneve/ONIMods-sub014/internal/observability"
	"github.com/peterhaneve/ONIMods-sub014/internal/service"
	"github.com/peterhaneve/ONIMods-sub014/internal/version"
)

// ServiceID is the shared service id lighting providers compete under.
const ServiceID = "sim.lights"

var (
	ErrInvalidEmitter = errors.New("lighting: invalid emitter key")
	ErrNilOwner       = errors.New("lighting: nil emitter owner")
)

// EmitterKey identifies one light emitter in the brightness cache.
type EmitterKey uint64

// State mirrors one emitter's light parameters for a recompute or lookup.
type State struct {
	Origin      Cell
	Radius      int
	Shape       GridShape
	Intensity   int
	FalloffRate float64
}

// PreviewSink receives per-cell lux values of a one-shot preview cast.
type PreviewSink interface {
	SetLux(cell Cell, lux int)
}

// entryData is one emitter's immutable ratio snapshot. Recomputes publish a
// fresh value; readers hold whichever snapshot they loaded.
type entryData struct {
	ratios map[Cell]float64
}

type cacheEntry struct {
	owner any
	data  atomic.Pointer[entryData]
}

type previewTarget struct {
	owner any
}

// ManagerConfig configures one lighting provider instance.
type ManagerConfig struct {
	Version version.Version
	Smooth  bool
}

// DefaultManagerConfig is the current-generation provider configuration.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{Version: version.New(2, 3, 0, 0)}
}

// Manager is the lighting service implementation: shape dispatch over the
// shared catalog plus the concurrent per-emitter brightness cache. Cache
// reads are safe against simultaneous recomputes; background workers may
// call GetBrightness at any time.
type Manager struct {
	cfg     ManagerConfig
	smooth  atomic.Bool
	catalog atomic.Pointer[Catalog]

	cache    sync.Map // EmitterKey -> *cacheEntry
	cacheLen atomic.Int64

	preview atomic.Pointer[previewTarget]
}

// NewManager creates a provider with the given configuration.
func NewManager(cfg ManagerConfig) *Manager {
	m := &Manager{cfg: cfg}
	m.smooth.Store(cfg.Smooth)
	return m
}

// ServiceVersion reports the provider's contract version.
func (m *Manager) ServiceVersion() version.Version {
	return m.cfg.Version
}

// Bootstrap settles the shared shape catalog before consumers resolve the
// service.
func (m *Manager) Bootstrap(tok service.Token) error {
	cat := SharedCatalog(tok.Services)
	m.catalog.Store(cat)
	log.Debug().
		Str("version", m.cfg.Version.String()).
		Int("shapes", cat.Len()).
		Msg("lighting bootstrap")
	return nil
}

// Initialize reports the provider ready for shape registration traffic.
func (m *Manager) Initialize(tok service.Token) error {
	cat := m.catalog.Load()
	if cat == nil {
		cat = SharedCatalog(tok.Services)
		m.catalog.Store(cat)
	}
	log.Info().
		Str("version", m.cfg.Version.String()).
		Int("shapes", cat.Len()).
		Bool("smooth", m.smooth.Load()).
		Msg("lighting initialized")
	return nil
}

// PostInitialize logs the settled catalog once every module finished
// contributing shapes.
func (m *Manager) PostInitialize(tok service.Token) error {
	log.Info().
		Int("shapes", m.ShapeCount()).
		Int64("emitters", m.cacheLen.Load()).
		Msg("lighting ready")
	return nil
}

// InstanceData exposes the shape catalog through the service handle.
func (m *Manager) InstanceData() any {
	if cat := m.catalog.Load(); cat != nil {
		return cat
	}
	return nil
}

// SetInstanceData accepts a replacement catalog, ignoring other payloads.
func (m *Manager) SetInstanceData(value any) {
	if cat, ok := value.(*Catalog); ok && cat != nil {
		m.catalog.Store(cat)
	}
}

// Catalog returns the settled shared catalog, or nil before bootstrap.
func (m *Manager) Catalog() *Catalog {
	return m.catalog.Load()
}

// ShapeCount reports the number of registered custom shapes.
func (m *Manager) ShapeCount() int {
	if cat := m.catalog.Load(); cat != nil {
		return cat.Len()
	}
	return 0
}

// CacheSize reports the number of live emitters.
func (m *Manager) CacheSize() int64 {
	return m.cacheLen.Load()
}

// SetSmoothFalloff toggles the continuous falloff path for built-in shapes.
func (m *Manager) SetSmoothFalloff(on bool) {
	m.smooth.Store(on)
}

// AddLight registers an emitter in the brightness cache. Adding an already
// live key keeps the existing entry.
func (m *Manager) AddLight(key EmitterKey, owner any) error {
	if key == 0 {
		return ErrInvalidEmitter
	}
	if owner == nil {
		return ErrNilOwner
	}

	entry := &cacheEntry{owner: owner}
	entry.data.Store(&entryData{})
	if _, loaded := m.cache.LoadOrStore(key, entry); loaded {
		log.Debug().Uint64("emitter", uint64(key)).Msg("emitter already tracked")
		return nil
	}
	observability.SetLightingCacheEntries(m.cacheLen.Add(1))
	log.Debug().Uint64("emitter", uint64(key)).Msg("emitter tracked")
	return nil
}

// DestroyLight removes an emitter from the cache. Unknown keys are ignored.
func (m *Manager) DestroyLight(key EmitterKey) {
	if _, loaded := m.cache.LoadAndDelete(key); loaded {
		observability.SetLightingCacheEntries(m.cacheLen.Add(-1))
		log.Debug().Uint64("emitter", uint64(key)).Msg("emitter destroyed")
	}
}

// UpdateLitCells recomputes an emitter's lit set from scratch through its
// custom shape handler and atomically publishes the fresh ratios. Cells the
// handler touched are added to out when out is non-nil. Returns false when
// the shape is not a catalog shape or the emitter is not tracked.
func (m *Manager) UpdateLitCells(key EmitterKey, st State, out map[Cell]struct{}) bool {
	shape, ok := m.shapeFor(st.Shape)
	if !ok {
		log.Debug().
			Uint64("emitter", uint64(key)).
			Int("shape", int(st.Shape)).
			Msg("lit cell update skipped: no catalog shape")
		return false
	}
	v, ok := m.cache.Load(key)
	if !ok {
		log.Debug().Uint64("emitter", uint64(key)).Msg("lit cell update skipped: emitter not tracked")
		return false
	}
	entry := v.(*cacheEntry)

	args := &CastArgs{
		Owner:      entry.owner,
		Origin:     st.Origin,
		Radius:     st.Radius,
		Brightness: make(map[Cell]float64),
	}
	start := time.Now()
	shape.Cast(args)
	entry.data.Store(&entryData{ratios: args.Brightness})

	if out != nil {
		for cell := range args.Brightness {
			out[cell] = struct{}{}
		}
	}
	observability.RecordLitCellUpdate(shape.ID(), time.Since(start))
	return true
}

// GetBrightness reads one cell's brightness for an emitter. Custom shapes
// answer from the cached ratio snapshot scaled by the state's intensity;
// built-in shapes answer only in smooth mode. Every miss is (0, false),
// never an error.
func (m *Manager) GetBrightness(key EmitterKey, cell Cell, st State) (int, bool) {
	if st.Shape > ShapeCone {
		v, ok := m.cache.Load(key)
		if !ok {
			log.Debug().Uint64("emitter", uint64(key)).Msg("brightness miss: emitter not tracked")
			return 0, false
		}
		data := v.(*cacheEntry).data.Load()
		ratio, ok := data.ratios[cell]
		if !ok {
			return 0, false
		}
		return int(math.Round(float64(st.Intensity) * ratio)), true
	}

	if m.smooth.Load() {
		ratio := SmoothFalloff(st.FalloffRate, cell, st.Origin)
		return int(math.Round(float64(st.Intensity) * ratio)), true
	}
	return 0, false
}

// RequestPreview marks owner as the next preview target. The newest request
// wins; there is no queue. A nil owner clears the pending target.
func (m *Manager) RequestPreview(owner any) {
	if owner == nil {
		m.preview.Store(nil)
		return
	}
	m.preview.Swap(&previewTarget{owner: owner})
}

// PreviewLight consumes the pending preview target and runs a one-shot cast
// of the given catalog shape, writing rounded lux values into sink. Returns
// false without consuming the target when the shape is not a catalog shape
// or no sink is given; returns false after clearing when no target is
// pending.
func (m *Manager) PreviewLight(origin Cell, radius int, gs GridShape, lux int, sink PreviewSink) bool {
	shape, ok := m.shapeFor(gs)
	if !ok {
		return false
	}
	if sink == nil {
		return false
	}
	target := m.preview.Swap(nil)
	if target == nil {
		log.Debug().Int("shape", int(gs)).Msg("preview skipped: no pending target")
		return false
	}

	args := &CastArgs{
		Owner:      target.owner,
		Origin:     origin,
		Radius:     radius,
		Brightness: make(map[Cell]float64),
	}
	shape.Cast(args)
	for cell, ratio := range args.Brightness {
		sink.SetLux(cell, int(math.Round(float64(lux)*ratio)))
	}
	return true
}

func (m *Manager) shapeFor(gs GridShape) (*Shape, bool) {
	if gs <= ShapeCone {
		return nil, false
	}
	cat := m.catalog.Load()
	if cat == nil {
		return nil, false
	}
	return cat.ByGridShape(gs)
}
