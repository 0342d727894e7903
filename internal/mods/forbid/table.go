package forbid

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/peterhaneve/ONIMods-sub014/internal/lighting"
	"github.com/peterhaneve/ONIMods-sub014/internal/service"
	"github.com/peterhaneve/ONIMods-sub014/internal/version"
)

var (
	ErrUnknownOp = errors.New("forbid: unknown process opcode")
	ErrBadArgs   = errors.New("forbid: process args must be ProcessArgs")
)

// ProcessArgs is the payload for the allow and revoke opcodes.
type ProcessArgs struct {
	Object   uint64
	Resource string
}

// Entry is one allow-table row in snapshot form.
type Entry struct {
	Object   uint64 `json:"object"`
	Resource string `json:"resource"`
}

type tableKey struct {
	object   uint64
	resource string
}

// Table is the allow-table service implementation. Delivery workers probe
// IsAllowed from their own goroutines while the simulation mutates rows, so
// the row set lives in a sync.Map.
type Table struct {
	rows sync.Map // tableKey -> struct{}
	size atomic.Int64
}

// NewTable creates an empty allow table.
func NewTable() *Table {
	return &Table{}
}

// ServiceVersion reports the table's contract version.
func (t *Table) ServiceVersion() version.Version {
	return version.New(1, 0, 2, 0)
}

// Initialize resolves the lighting service to confirm cross-service
// consumption works from inside a lifecycle call.
func (t *Table) Initialize(tok service.Token) error {
	if handle, ok := tok.Services.Resolve(lighting.ServiceID); ok {
		log.Info().
			Str("lighting_version", handle.Version().String()).
			Msg("forbid table sees lighting service")
	} else {
		log.Debug().Msg("forbid table initialized without lighting service")
	}
	return nil
}

// Allow grants object access to resource.
func (t *Table) Allow(object uint64, resource string) {
	if _, loaded := t.rows.LoadOrStore(tableKey{object, resource}, struct{}{}); !loaded {
		t.size.Add(1)
	}
}

// Revoke removes a grant. Unknown rows are ignored.
func (t *Table) Revoke(object uint64, resource string) {
	if _, loaded := t.rows.LoadAndDelete(tableKey{object, resource}); loaded {
		t.size.Add(-1)
	}
}

// IsAllowed reports whether object may use resource. Safe to call from any
// worker goroutine.
func (t *Table) IsAllowed(object uint64, resource string) bool {
	_, ok := t.rows.Load(tableKey{object, resource})
	return ok
}

// Size reports the current number of grants.
func (t *Table) Size() int64 {
	return t.size.Load()
}

// Process maps handle-forwarded opcodes onto table mutations.
func (t *Table) Process(op uint32, args any) error {
	a, ok := args.(ProcessArgs)
	if !ok {
		return fmt.Errorf("%w: got %T", ErrBadArgs, args)
	}
	switch op {
	case OpAllow:
		t.Allow(a.Object, a.Resource)
		return nil
	case OpRevoke:
		t.Revoke(a.Object, a.Resource)
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrUnknownOp, op)
	}
}

// InstanceData snapshots the table as sorted entries.
func (t *Table) InstanceData() any {
	entries := make([]Entry, 0, t.size.Load())
	t.rows.Range(func(k, _ any) bool {
		key := k.(tableKey)
		entries = append(entries, Entry{Object: key.object, Resource: key.resource})
		return true
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Object != entries[j].Object {
			return entries[i].Object < entries[j].Object
		}
		return entries[i].Resource < entries[j].Resource
	})
	return entries
}

// SetInstanceData restores grants from a snapshot, ignoring other payloads.
func (t *Table) SetInstanceData(value any) {
	entries, ok := value.([]Entry)
	if !ok {
		return
	}
	for _, e := range entries {
		t.Allow(e.Object, e.Resource)
	}
}
