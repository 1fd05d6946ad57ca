package jscore

import "time"

// CollectStats describes one collection cycle.
type CollectStats struct {
	LiveObjects           int
	LiveEnvironments      int
	ReclaimedObjects      int
	ReclaimedEnvironments int
	Duration              time.Duration
}

// Reclaimed is the total number of nodes the cycle freed.
func (s CollectStats) Reclaimed() int {
	return s.ReclaimedObjects + s.ReclaimedEnvironments
}

// marker holds the mark phase state: the visited set and the work queue.
type marker struct {
	visited map[heapID]struct{}
	queue   []heapID
}

func (m *marker) push(id heapID) {
	if id != 0 {
		m.queue = append(m.queue, id)
	}
}

func (m *marker) markObject(ref ObjectRef) {
	m.push(heapID(ref))
}

func (m *marker) markEnv(ref EnvRef) {
	m.push(heapID(ref))
}

func (m *marker) markValue(v Value) {
	if ref, ok := v.(ObjectRef); ok {
		m.markObject(ref)
	}
}

func (m *marker) markProp(v Value) {
	if p, ok := v.(*valueProperty); ok {
		m.markValue(p.value)
		m.markObject(p.getterFunc)
		m.markObject(p.setterFunc)
		return
	}
	m.markValue(v)
}

func (m *marker) drain(h *heap) {
	for len(m.queue) > 0 {
		id := m.queue[len(m.queue)-1]
		m.queue = m.queue[:len(m.queue)-1]
		if _, done := m.visited[id]; done {
			continue
		}
		n, ok := h.nodes[id]
		if !ok {
			// A stale handle stored by the host; there is nothing to trace.
			continue
		}
		m.visited[id] = struct{}{}
		n.trace(m)
	}
}

// roots returns the root set: the global environment, the intrinsics, every
// environment on the call stack and whatever the host's root enumerator
// reports. It is rebuilt on every cycle.
func (r *Runtime) roots() []heapID {
	ids := []heapID{
		heapID(r.globalEnv),
		heapID(r.global.ObjectPrototype),
		heapID(r.global.FunctionPrototype),
	}
	for _, env := range r.stack {
		ids = append(ids, heapID(env))
	}
	if r.opts.rootEnumerator != nil {
		for _, env := range r.opts.rootEnumerator() {
			ids = append(ids, heapID(env))
		}
	}
	return ids
}

// Collect runs one stop-the-world mark and sweep cycle. Every object and
// environment not reachable from the root set is reclaimed, including
// unreachable cycles; handles to reclaimed nodes become invalid. It must be
// called between top-level operations, not from a function body.
func (r *Runtime) Collect() (CollectStats, error) {
	if r.callDepth > 0 {
		return CollectStats{}, ErrCollectDuringCall
	}
	start := time.Now()
	m := &marker{
		visited: make(map[heapID]struct{}, len(r.heap.nodes)),
	}
	for _, id := range r.roots() {
		m.push(id)
	}
	m.drain(&r.heap)

	var stats CollectStats
	for id, n := range r.heap.nodes {
		if _, live := m.visited[id]; live {
			continue
		}
		if _, ok := n.(*environment); ok {
			stats.ReclaimedEnvironments++
		} else {
			stats.ReclaimedObjects++
		}
		r.heap.free(id)
	}
	r.heap.allocated = 0
	stats.LiveObjects = r.heap.objects
	stats.LiveEnvironments = r.heap.envs
	stats.Duration = time.Since(start)
	r.cycles++

	r.log.Debug("collection cycle",
		"cycle", r.cycles,
		"live_objects", stats.LiveObjects,
		"live_environments", stats.LiveEnvironments,
		"reclaimed_objects", stats.ReclaimedObjects,
		"reclaimed_environments", stats.ReclaimedEnvironments,
		"duration", stats.Duration,
	)
	return stats, nil
}

// MaybeCollect runs a cycle if the number of allocations since the previous
// one has reached the configured threshold. ran is false when no cycle was
// due, the threshold is zero, or a call is in progress.
func (r *Runtime) MaybeCollect() (stats CollectStats, ran bool, err error) {
	if r.opts.collectThreshold <= 0 || r.heap.allocated < r.opts.collectThreshold || r.callDepth > 0 {
		return CollectStats{}, false, nil
	}
	stats, err = r.Collect()
	return stats, err == nil, err
}

// HeapStats reports the current node counts without collecting.
type HeapStats struct {
	Objects      int
	Environments int
	Allocated    int
	Cycles       int
}

func (r *Runtime) HeapStats() HeapStats {
	return HeapStats{
		Objects:      r.heap.objects,
		Environments: r.heap.envs,
		Allocated:    r.heap.allocated,
		Cycles:       r.cycles,
	}
}

// IsLive reports whether obj still refers to an object on the heap.
func (r *Runtime) IsLive(obj ObjectRef) bool {
	_, err := r.heap.object(obj)
	return err == nil
}

// IsLiveEnv reports whether env still refers to an environment on the heap.
func (r *Runtime) IsLiveEnv(env EnvRef) bool {
	_, err := r.heap.env(env)
	return err == nil
}
