package scene

import "github.com/oklog/ulid/v2"

// Registry maps numeric handles to live nodes for one renderer instance.
// Handles start at 1; the hit grid uses 0 as its empty marker. Handles are
// assigned at registration and released on destroy, never reused.
type Registry struct {
	nextHandle uint32
	nodes      map[uint32]Node
}

// NewRegistry creates an empty node registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[uint32]Node)}
}

// Register assigns the node a handle and records it. Nodes without an id
// get a generated ULID. Registering an already registered node returns its
// existing handle.
func (r *Registry) Register(n Node) uint32 {
	b := n.base()
	if b.registry == r && b.handle != 0 {
		return b.handle
	}
	if b.id == "" {
		b.id = ulid.Make().String()
	}
	r.nextHandle++
	b.handle = r.nextHandle
	b.registry = r
	r.nodes[b.handle] = n
	return b.handle
}

// Node returns the live node for a handle, or nil if the handle was never
// assigned or has been released.
func (r *Registry) Node(h uint32) Node {
	return r.nodes[h]
}

// Len returns the number of live nodes.
func (r *Registry) Len() int {
	return len(r.nodes)
}

func (r *Registry) release(h uint32) {
	delete(r.nodes, h)
}
