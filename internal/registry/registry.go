// Package registry holds the agent capability table: per-agent profiles
// describing specialization strengths, baseline configuration, and
// cross-agent relationships. Profiles load from YAML and can be reloaded
// live when the table file changes.
package registry

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/Dixter999/agentmux/pkg/models"
)

// Registry provides thread-safe access to agent capability profiles.
// Reads are concurrent; the table is replaced wholesale on reload.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]*models.AgentProfile
	path     string
	loadedAt time.Time

	watcher *watcher
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{profiles: make(map[string]*models.AgentProfile)}
}

// Load reads the capability table from the given YAML file, replacing any
// existing profiles.
func Load(path string) (*Registry, error) {
	r := New()
	if err := r.reload(path); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadDefault builds a registry from the built-in capability table, used
// when no table file is configured.
func LoadDefault() *Registry {
	r := New()
	for _, p := range defaultProfiles() {
		r.Register(p)
	}
	return r
}

func (r *Registry) reload(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read capability table: %w", err)
	}

	profiles, err := parseTable(data)
	if err != nil {
		return fmt.Errorf("parse capability table %s: %w", path, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles = profiles
	r.path = path
	r.loadedAt = time.Now()
	return nil
}

// Register adds or replaces one profile. The base config is clipped to its
// safe bounds on the way in.
func (r *Registry) Register(p *models.AgentProfile) {
	clipped := *p
	clipped.BaseConfig = p.BaseConfig.Clip()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = &clipped
}

// Get retrieves a profile by agent ID. Returns nil when unknown.
func (r *Registry) Get(agentID string) *models.AgentProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profiles[agentID]
}

// All returns every profile sorted by agent ID.
func (r *Registry) All() []*models.AgentProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*models.AgentProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// IDs returns every registered agent ID, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of registered profiles.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}

// Substitutes returns the profiles listed as substitutes for the given
// agent, best first, skipping unknown IDs.
func (r *Registry) Substitutes(agentID string) []*models.AgentProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p := r.profiles[agentID]
	if p == nil {
		return nil
	}
	subs := make([]*models.AgentProfile, 0, len(p.Substitutes))
	for _, id := range p.Substitutes {
		if sub := r.profiles[id]; sub != nil {
			subs = append(subs, sub)
		}
	}
	return subs
}

// SubstituteIDs returns the IDs of the known substitutes for the given
// agent, best first.
func (r *Registry) SubstituteIDs(agentID string) []string {
	subs := r.Substitutes(agentID)
	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.ID)
	}
	return ids
}

// Incompatible reports whether two agents must not run concurrently
// against the same artifact. The relation is symmetric.
func (r *Registry) Incompatible(a, b string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listedIncompatible(a, b) || r.listedIncompatible(b, a)
}

func (r *Registry) listedIncompatible(a, b string) bool {
	p := r.profiles[a]
	if p == nil {
		return false
	}
	for _, id := range p.IncompatibleWith {
		if id == b {
			return true
		}
	}
	return false
}

// Complementary reports whether two agents have a declared complementary
// relationship. The relation is symmetric.
func (r *Registry) Complementary(a, b string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listedComplementary(a, b) || r.listedComplementary(b, a)
}

func (r *Registry) listedComplementary(a, b string) bool {
	p := r.profiles[a]
	if p == nil {
		return false
	}
	for _, id := range p.ComplementaryWith {
		if id == b {
			return true
		}
	}
	return false
}

// Similar reports whether two agents are near-duplicates for fallback
// ordering: same backend, or a declared substitute relationship.
func (r *Registry) Similar(a, b string) bool {
	r.mu.RLock()
	pa, pb := r.profiles[a], r.profiles[b]
	r.mu.RUnlock()

	if pa == nil || pb == nil {
		return false
	}
	if pa.Backend == pb.Backend {
		return true
	}
	return pa.IsSubstituteFor(pb) || pb.IsSubstituteFor(pa)
}

// LoadedAt returns when the table was last loaded; zero for built-ins.
func (r *Registry) LoadedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadedAt
}
