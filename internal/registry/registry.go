// Package registry stores competing service implementations from unrelated
// modules and elects one winner per service id.
//
// Ownership boundaries:
//   - candidate instances stay owned by their registering module
//   - elections are computed lazily on first resolve and never revisited
//   - shared data slots are opaque; the registry never inspects the payload
package registry

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/peterhaneve/ONIMods-sub014/internal/observability"
	"github.com/peterhaneve/ONIMods-sub014/internal/service"
	"github.com/peterhaneve/ONIMods-sub014/internal/version"
)

var (
	ErrEmptyServiceID = errors.New("registry: empty service id")
	ErrNilCandidate   = errors.New("registry: nil candidate instance")
)

// Candidate reports one accepted registration.
type Candidate struct {
	ID        string
	ServiceID string
	Module    string
	Version   version.Version
}

type candidate struct {
	id       string
	module   string
	version  version.Version
	instance any
	dropped  atomic.Bool
}

// election is the frozen result of one service id's contest. A nil handle
// means every candidate failed to bind.
type election struct {
	handle *service.Handle
	winner *candidate
}

func (e *election) result() (*service.Handle, bool) {
	if e.handle == nil {
		return nil, false
	}
	return e.handle, true
}

// Registry is the per-process service table. Safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	candidates map[string][]*candidate

	elections sync.Map // service id -> *election
	shared    sync.Map // service id -> any
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{candidates: make(map[string][]*candidate)}
}

// Register appends a candidate implementation for a service id. Registration
// never triggers an election; a registration arriving after the id's
// election is accepted and stays inert.
func (r *Registry) Register(serviceID string, ver version.Version, module string, instance any) (Candidate, error) {
	id := strings.TrimSpace(serviceID)
	if id == "" {
		return Candidate{}, ErrEmptyServiceID
	}
	if instance == nil {
		return Candidate{}, ErrNilCandidate
	}

	cand := &candidate{
		id:       uuid.NewString(),
		module:   strings.TrimSpace(module),
		version:  ver,
		instance: instance,
	}
	r.mu.Lock()
	r.candidates[id] = append(r.candidates[id], cand)
	total := len(r.candidates[id])
	r.mu.Unlock()

	observability.RecordCandidateRegistered(id)
	log.Debug().
		Str("service", id).
		Str("candidate", cand.id).
		Str("module", cand.module).
		Str("version", ver.String()).
		Int("candidates", total).
		Msg("service candidate registered")
	return Candidate{ID: cand.id, ServiceID: id, Module: cand.module, Version: ver}, nil
}

// Resolve returns the bound handle of the service's elected winner. The
// first resolve with at least one candidate freezes the election; a resolve
// with no candidates reports a miss without freezing anything.
func (r *Registry) Resolve(serviceID string) (*service.Handle, bool) {
	if v, ok := r.elections.Load(serviceID); ok {
		return v.(*election).result()
	}

	r.mu.RLock()
	pool := r.candidates[serviceID]
	r.mu.RUnlock()
	if len(pool) == 0 {
		log.Debug().Str("service", serviceID).Msg("service resolve miss")
		return nil, false
	}

	elect := r.runElection(serviceID, pool)
	stored, _ := r.elections.LoadOrStore(serviceID, elect)
	return stored.(*election).result()
}

// runElection scans the candidate pool keeping the highest version, with the
// earliest registration winning ties. A presumptive winner that fails to
// bind is dropped for good and the scan repeats over the survivors.
func (r *Registry) runElection(serviceID string, pool []*candidate) *election {
	for {
		var best *candidate
		for _, cand := range pool {
			if cand.dropped.Load() {
				continue
			}
			if best == nil || version.Compare(cand.version, best.version) > 0 {
				best = cand
			}
		}
		if best == nil {
			observability.RecordElection(serviceID, "empty")
			log.Warn().Str("service", serviceID).Msg("service election exhausted all candidates")
			return &election{}
		}

		handle, err := service.Bind(best.instance)
		if err != nil {
			best.dropped.Store(true)
			observability.RecordCandidateDropped(serviceID)
			log.Warn().
				Str("service", serviceID).
				Str("candidate", best.id).
				Str("module", best.module).
				Err(err).
				Msg("service candidate dropped")
			continue
		}

		observability.RecordElection(serviceID, "elected")
		log.Info().
			Str("service", serviceID).
			Str("module", best.module).
			Str("version", best.version.String()).
			Msg("service elected")
		return &election{handle: handle, winner: best}
	}
}

// SharedData reads a service's shared slot.
func (r *Registry) SharedData(serviceID string) (any, bool) {
	return r.shared.Load(serviceID)
}

// SetSharedData overwrites a service's shared slot. Slots carry no ownership;
// any module may write them.
func (r *Registry) SetSharedData(serviceID string, value any) {
	r.shared.Store(serviceID, value)
}

// SharedDataOrStore installs value when the slot is empty and returns the
// slot's settled content, letting racing module copies agree on one payload.
func (r *Registry) SharedDataOrStore(serviceID string, value any) any {
	actual, _ := r.shared.LoadOrStore(serviceID, value)
	return actual
}

// ServiceIDs lists every service id with at least one registration, sorted.
func (r *Registry) ServiceIDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.candidates))
	for id := range r.candidates {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

var _ service.Locator = (*Registry)(nil)
