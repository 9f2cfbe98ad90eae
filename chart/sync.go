package chart

// SyncContext links charts that share an X window: a zoom or pan on one
// member pushes the same bounds to the others. It is passed explicitly
// at construction instead of living in package state, so independent
// dashboards (and tests) get independent sync domains.
type SyncContext struct {
	groups map[string][]*Chart
	// applying breaks the write cycle: a scale pushed to a member must
	// not re-broadcast to the group.
	applying bool
}

func NewSyncContext() *SyncContext {
	return &SyncContext{groups: make(map[string][]*Chart)}
}

func (sc *SyncContext) join(key string, c *Chart) {
	if key == "" {
		return
	}
	for _, member := range sc.groups[key] {
		if member == c {
			return
		}
	}
	sc.groups[key] = append(sc.groups[key], c)
}

func (sc *SyncContext) leave(key string, c *Chart) {
	members := sc.groups[key]
	for i, member := range members {
		if member == c {
			sc.groups[key] = append(members[:i], members[i+1:]...)
			return
		}
	}
}

// publish pushes a new window to every other member of the group. Each
// member clamps to its own data length, so charts of different lengths
// can still share a key.
func (sc *SyncContext) publish(from *Chart, key string, s Scale) {
	if sc.applying || key == "" {
		return
	}
	sc.applying = true
	defer func() { sc.applying = false }()
	for _, member := range sc.groups[key] {
		if member != from {
			member.applySyncedScale(s)
		}
	}
}
