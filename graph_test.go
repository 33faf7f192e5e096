package noob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func namedNode(name string) *Node {
	return &Node{Kind: StaticLibrary, LibName: name}
}

func TestLineariseOrdersPrerequisitesBeforeDependents(t *testing.T) {
	base := namedNode("base")
	mid := namedNode("mid")
	top := namedNode("top")

	mid.Depends(base)
	top.Depends(mid)

	order := top.Linearise()
	assert.Len(t, order, 2)
	assert.Equal(t, base, order[0])
	assert.Equal(t, mid, order[1])
}

func TestLineariseSharedDependencyAppearsOnce(t *testing.T) {
	common := namedNode("common")
	left := namedNode("left")
	right := namedNode("right")
	top := namedNode("top")

	left.Depends(common)
	right.Depends(common)
	top.Depends(left)
	top.Depends(right)

	order := top.Linearise()
	count := 0
	for _, n := range order {
		if n == common {
			count++
		}
	}
	assert.Equal(t, 1, count, "a node shared by two branches must appear exactly once")
	assert.Len(t, order, 3)
}

func TestDependsIsIdempotent(t *testing.T) {
	a := namedNode("a")
	b := namedNode("b")

	a.Depends(b)
	a.Depends(b)
	a.Depends(b)

	assert.Len(t, a.Parents, 1)
	assert.Len(t, b.Children, 1)
}

func TestDependsMaintainsReverseEdge(t *testing.T) {
	a := namedNode("a")
	b := namedNode("b")
	a.Depends(b)

	assert.Contains(t, a.Parents, b)
	assert.Contains(t, b.Children, a)
}
