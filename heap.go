package jscore

type heapID uint64

// ObjectRef is a handle to an object on a Runtime's heap. It is a Value.
// Handles are never reused, so a handle to a reclaimed object stays invalid.
type ObjectRef heapID

// EnvRef is a handle to an environment on a Runtime's heap.
type EnvRef heapID

const (
	// NoObject terminates a prototype chain.
	NoObject ObjectRef = 0
	// NoEnv is the outer link of the global environment.
	NoEnv EnvRef = 0
)

// heapNode is anything the collector can trace.
type heapNode interface {
	trace(m *marker)
}

// heap owns every object and environment. Edges between nodes are plain
// handles; nodes live until a collection cycle finds them unreachable.
type heap struct {
	next  heapID
	nodes map[heapID]heapNode

	objects, envs int

	// allocated counts allocations since the last collection cycle.
	allocated int
}

func (h *heap) init() {
	h.nodes = make(map[heapID]heapNode, 64)
	h.next = 1
}

func (h *heap) alloc(n heapNode) heapID {
	id := h.next
	h.next++
	h.nodes[id] = n
	h.allocated++
	if _, ok := n.(*environment); ok {
		h.envs++
	} else {
		h.objects++
	}
	return id
}

func (h *heap) allocObject(o objectImpl) ObjectRef {
	return ObjectRef(h.alloc(o))
}

func (h *heap) allocEnv(e *environment) EnvRef {
	return EnvRef(h.alloc(e))
}

func (h *heap) object(ref ObjectRef) (objectImpl, error) {
	if o, ok := h.nodes[heapID(ref)].(objectImpl); ok {
		return o, nil
	}
	return nil, &InvalidReferenceError{ID: uint64(ref), Kind: "object"}
}

func (h *heap) env(ref EnvRef) (*environment, error) {
	if e, ok := h.nodes[heapID(ref)].(*environment); ok {
		return e, nil
	}
	return nil, &InvalidReferenceError{ID: uint64(ref), Kind: "environment"}
}

func (h *heap) free(id heapID) {
	n, ok := h.nodes[id]
	if !ok {
		return
	}
	delete(h.nodes, id)
	if _, ok := n.(*environment); ok {
		h.envs--
	} else {
		h.objects--
	}
}
