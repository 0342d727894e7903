package registry

import "sort"

// CandidateStatus is one candidate's registration state for status views.
type CandidateStatus struct {
	ID      string `json:"id"`
	Module  string `json:"module"`
	Version string `json:"version"`
	Dropped bool   `json:"dropped"`
}

// ServiceStatus is one service id's registration and election state.
type ServiceStatus struct {
	ServiceID      string            `json:"service_id"`
	Candidates     []CandidateStatus `json:"candidates"`
	Elected        bool              `json:"elected"`
	ElectedModule  string            `json:"elected_module,omitempty"`
	ElectedVersion string            `json:"elected_version,omitempty"`
}

// Snapshot reports every service's candidates and election outcome, sorted
// by service id. Snapshotting never triggers elections.
func (r *Registry) Snapshot() []ServiceStatus {
	r.mu.RLock()
	out := make([]ServiceStatus, 0, len(r.candidates))
	for id, pool := range r.candidates {
		status := ServiceStatus{ServiceID: id, Candidates: make([]CandidateStatus, 0, len(pool))}
		for _, cand := range pool {
			status.Candidates = append(status.Candidates, CandidateStatus{
				ID:      cand.id,
				Module:  cand.module,
				Version: cand.version.String(),
				Dropped: cand.dropped.Load(),
			})
		}
		out = append(out, status)
	}
	r.mu.RUnlock()

	for i := range out {
		if v, ok := r.elections.Load(out[i].ServiceID); ok {
			elect := v.(*election)
			if elect.winner != nil {
				out[i].Elected = true
				out[i].ElectedModule = elect.winner.module
				out[i].ElectedVersion = elect.winner.version.String()
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ServiceID < out[j].ServiceID
	})
	return out
}

// ElectedCount reports how many services have a settled winner.
func (r *Registry) ElectedCount() int {
	count := 0
	r.elections.Range(func(_, v any) bool {
		if _, ok := v.(*election).result(); ok {
			count++
		}
		return true
	})
	return count
}
