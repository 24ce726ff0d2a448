package scene

import (
	"sort"
	"time"

	"github.com/okanek/tessera/pkg/buffer"
)

// RenderTree draws the tree rooted at root into buf in compositing order:
// each node draws itself, registers its hit region, then its children
// follow in ascending z-order with insertion order breaking ties. An
// invisible node's whole subtree is skipped. Hit regions go to the root's
// attached context, so traversal and hit registration can never disagree.
func RenderTree(root Node, buf *buffer.Buffer, dt time.Duration) {
	if root == nil {
		return
	}
	renderNode(root, buf, dt, root.base().ctx)
}

func renderNode(n Node, buf *buffer.Buffer, dt time.Duration, ctx Context) {
	b := n.base()
	if !b.visible {
		return
	}

	n.Draw(buf, dt)

	if ctx != nil {
		ctx.AddHitRegion(b.Bounds(), b.handle)
	}

	if b.childrenNeedSort {
		sort.SliceStable(b.children, func(i, j int) bool {
			return b.children[i].base().z < b.children[j].base().z
		})
		b.childrenNeedSort = false
	}
	for _, child := range b.children {
		renderNode(child, buf, dt, ctx)
	}
	b.dirty = false
}

// Visit walks the visible tree in traversal order, calling fn for every
// node. Returning false from fn skips that node's children. Invisible
// subtrees are not visited.
func Visit(root Node, fn func(Node) bool) {
	if root == nil {
		return
	}
	b := root.base()
	if !b.visible {
		return
	}
	if !fn(root) {
		return
	}
	for _, child := range b.children {
		Visit(child, fn)
	}
}
