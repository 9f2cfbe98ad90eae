package chart

import (
	"log"
	"time"
)

// defaultGrace tolerates UI frameworks that unmount and immediately
// remount the same container, as development modes tend to do.
const defaultGrace = 500 * time.Millisecond

// Container is the host's handle for one chart slot. The registry tags
// it with a stable identifier on first use, so the same container value
// always resolves to the same chart instance across remounts. The zero
// value is untagged.
type Container struct {
	id uint64
}

// Tagged reports whether the container has been bound to an instance.
func (c *Container) Tagged() bool { return c.id != 0 }

type registryEntry struct {
	chart      *Chart
	released   bool
	releasedAt time.Time
}

// Registry owns the mapping from containers to chart instances and their
// lifecycle. Instances survive release for a grace period, so remount
// churn neither flickers nor loses zoom state; only a release that
// nothing reclaims before the next sweep actually destroys.
type Registry struct {
	entries map[uint64]*registryEntry
	nextID  uint64
	grace   time.Duration
}

// NewRegistry builds a registry. A zero grace uses the default.
func NewRegistry(grace time.Duration) *Registry {
	if grace == 0 {
		grace = defaultGrace
	}
	return &Registry{
		entries: make(map[uint64]*registryEntry),
		grace:   grace,
	}
}

// Acquire returns the container's instance, constructing one on first
// use. Reacquiring a released container cancels its pending destruction.
func (r *Registry) Acquire(ct *Container, cfg Config, opts Options) *Chart {
	if ct.id != 0 {
		if e, ok := r.entries[ct.id]; ok {
			e.released = false
			return e.chart
		}
		// The container outlived its instance; rebind it.
	}
	r.nextID++
	ct.id = r.nextID
	e := &registryEntry{chart: New(cfg, opts)}
	r.entries[ct.id] = e
	return e.chart
}

// Get returns the container's instance without constructing one.
func (r *Registry) Get(ct *Container) (*Chart, bool) {
	if ct.id == 0 {
		return nil, false
	}
	e, ok := r.entries[ct.id]
	if !ok {
		return nil, false
	}
	return e.chart, true
}

// Update applies a new config to the container's instance in place,
// preserving zoom and plugin state. Updating an unbound container is a
// warning, not an error: the chart simply keeps its old data.
func (r *Registry) Update(ct *Container, cfg Config) {
	ch, ok := r.Get(ct)
	if !ok {
		log.Printf("chart: update for untracked container ignored")
		return
	}
	ch.UpdateConfig(cfg)
}

// Release schedules the container's instance for destruction after the
// grace period. Safe to call on unbound or already released containers.
func (r *Registry) Release(ct *Container, now time.Time) {
	if ct.id == 0 {
		return
	}
	e, ok := r.entries[ct.id]
	if !ok || e.released {
		return
	}
	e.released = true
	e.releasedAt = now
}

// Sweep destroys every instance whose grace period has expired and
// returns how many were destroyed. Hosts call it once per frame.
func (r *Registry) Sweep(now time.Time) int {
	destroyed := 0
	for id, e := range r.entries {
		if !e.released || now.Sub(e.releasedAt) < r.grace {
			continue
		}
		e.chart.Destroy()
		delete(r.entries, id)
		destroyed++
	}
	return destroyed
}

// Destroy tears down the container's instance immediately, bypassing the
// grace period. Safe to call twice.
func (r *Registry) Destroy(ct *Container) {
	if ct.id == 0 {
		return
	}
	if e, ok := r.entries[ct.id]; ok {
		e.chart.Destroy()
		delete(r.entries, ct.id)
	}
	ct.id = 0
}

// Len reports the number of live instances.
func (r *Registry) Len() int { return len(r.entries) }
