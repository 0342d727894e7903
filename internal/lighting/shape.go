package lighting

import (
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/peterhaneve/ONIMods-sub014/internal/observability"
	"github.com/peterhaneve/ONIMods-sub014/internal/service"
)

var (
	ErrEmptyShapeID = errors.New("lighting: empty shape id")
	ErrNilCastFunc  = errors.New("lighting: nil cast handler")
)

// RayMode selects which built-in occlusion pass the host runs before a
// custom handler fills brightness.
type RayMode int

const (
	RaysNone   RayMode = -1
	RaysCircle RayMode = 0
	RaysCone   RayMode = 1
)

func (m RayMode) String() string {
	switch m {
	case RaysNone:
		return "none"
	case RaysCircle:
		return "circle"
	case RaysCone:
		return "cone"
	default:
		return "unknown"
	}
}

// GridShape is the host's numeric shape space. Built-in shapes occupy the
// low values; catalog ordinals map to the values beyond them.
type GridShape int

const (
	ShapeCircle GridShape = 0
	ShapeCone   GridShape = 1
)

// CastFunc fills args.Brightness with per-cell ratios for one emitter.
type CastFunc func(args *CastArgs)

// CastArgs is the payload handed to a shape's cast handler.
type CastArgs struct {
	Owner      any
	Origin     Cell
	Radius     int
	Brightness map[Cell]float64
}

// Shape is one immutable catalog entry. Ordinals start at one and follow
// registration order.
type Shape struct {
	id      string
	cast    CastFunc
	rays    RayMode
	ordinal int
}

func (s *Shape) ID() string { return s.id }

func (s *Shape) Rays() RayMode { return s.rays }

func (s *Shape) Ordinal() int { return s.ordinal }

// GridShape maps the ordinal into the host numeric range after the
// built-in shapes.
func (s *Shape) GridShape() GridShape {
	return ShapeCone + GridShape(s.ordinal)
}

// Cast runs the shape's handler.
func (s *Shape) Cast(args *CastArgs) {
	s.cast(args)
}

// ShapeInfo is the status-view projection of one catalog entry.
type ShapeInfo struct {
	ID        string `json:"id"`
	Ordinal   int    `json:"ordinal"`
	Rays      string `json:"rays"`
	GridShape int    `json:"grid_shape"`
}

// Catalog is the append-only shape table. Entries are never removed or
// replaced, so ordinals stay stable for the life of the process.
type Catalog struct {
	mu      sync.RWMutex
	entries []*Shape
	byID    map[string]*Shape
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byID: make(map[string]*Shape)}
}

// Register adds a shape under an id. When the id is already taken the
// existing entry is returned unchanged; the first registration wins.
func (c *Catalog) Register(id string, cast CastFunc, rays RayMode) (*Shape, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrEmptyShapeID
	}
	if cast == nil {
		return nil, ErrNilCastFunc
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.byID[id]; ok {
		log.Debug().
			Str("shape", id).
			Int("ordinal", existing.ordinal).
			Msg("light shape already registered")
		return existing, nil
	}

	s := &Shape{id: id, cast: cast, rays: rays, ordinal: len(c.entries) + 1}
	c.entries = append(c.entries, s)
	c.byID[id] = s
	observability.SetLightingShapes(len(c.entries))
	log.Info().
		Str("shape", id).
		Int("ordinal", s.ordinal).
		Str("rays", rays.String()).
		Msg("light shape registered")
	return s, nil
}

// ByID looks a shape up by its string id.
func (c *Catalog) ByID(id string) (*Shape, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.byID[id]
	return s, ok
}

// ByOrdinal looks a shape up by its one-based ordinal.
func (c *Catalog) ByOrdinal(n int) (*Shape, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n < 1 || n > len(c.entries) {
		return nil, false
	}
	return c.entries[n-1], true
}

// ByGridShape resolves a host shape value to a catalog entry, when the value
// lies beyond the built-in shapes.
func (c *Catalog) ByGridShape(gs GridShape) (*Shape, bool) {
	return c.ByOrdinal(int(gs - ShapeCone))
}

// Len reports the number of registered shapes.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// List projects every entry in ordinal order.
func (c *Catalog) List() []ShapeInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ShapeInfo, 0, len(c.entries))
	for _, s := range c.entries {
		out = append(out, ShapeInfo{
			ID:        s.id,
			Ordinal:   s.ordinal,
			Rays:      s.rays.String(),
			GridShape: int(s.GridShape()),
		})
	}
	return out
}

// SharedCatalog returns the catalog settled in the lighting service's shared
// data slot, installing a fresh one on first use. Every module copy calling
// this converges on the same instance.
func SharedCatalog(services service.Locator) *Catalog {
	return services.SharedDataOrStore(ServiceID, NewCatalog()).(*Catalog)
}
