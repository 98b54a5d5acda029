package spatial

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// requireKDInvariant walks the whole tree checking the split rule against
// every ancestor, not just the parent.
func requireKDInvariant(t *testing.T, tree *KDTree[Coords]) {
	t.Helper()
	type bound struct {
		axis  int
		value float64
		left  bool
	}
	var walk func(n *kdNode[Coords], depth int, bounds []bound)
	walk = func(n *kdNode[Coords], depth int, bounds []bound) {
		if n == nil {
			return
		}
		require.GreaterOrEqual(t, n.count, 1)
		for _, b := range bounds {
			v := n.item.Coordinate(b.axis)
			if b.left {
				require.Less(t, v, b.value, "left subtree item %v on axis %d", n.item, b.axis)
			} else {
				require.GreaterOrEqual(t, v, b.value, "right subtree item %v on axis %d", n.item, b.axis)
			}
		}
		axis := depth % tree.dims
		v := n.item.Coordinate(axis)
		walk(n.left, depth+1, append(bounds[:len(bounds):len(bounds)], bound{axis, v, true}))
		walk(n.right, depth+1, append(bounds[:len(bounds):len(bounds)], bound{axis, v, false}))
	}
	walk(tree.root, 0, nil)
}

func TestKDTreeDuplicatesDoNotGrow(t *testing.T) {
	tree, err := NewKDTree[Coords](2)
	require.NoError(t, err)

	for range 5 {
		tree.Insert(Coords{4, 4})
	}
	require.Equal(t, 1, tree.Depth())
	require.Equal(t, 5, tree.Len())
}

func TestKDTreeCollapsesByPosition(t *testing.T) {
	type tagged struct {
		Coords
		tag string
	}
	tree, err := NewKDTree[tagged](2)
	require.NoError(t, err)

	tree.Insert(tagged{Coords{1, 1}, "first"})
	tree.Insert(tagged{Coords{1, 1}, "second"})
	tree.Remove(tagged{Coords{1, 1}, "first"})

	m, ok := tree.Search(tagged{Coords{1, 1}, ""})
	require.True(t, ok)
	require.Equal(t, 1, m.Count)
	// The survivor is the representative, whichever item was removed.
	require.Equal(t, "first", m.Item.tag)
}

func TestKDTreeRemoveRootWithOnlyLeftSubtree(t *testing.T) {
	tree, err := NewKDTree[Coords](2)
	require.NoError(t, err)

	for _, p := range []Coords{{10, 10}, {5, 12}, {3, 4}, {7, 20}, {5, 1}} {
		tree.Insert(p)
	}
	tree.Remove(Coords{10, 10})

	require.Nil(t, tree.root.left)
	require.Equal(t, Coords{3, 4}, tree.root.item)
	requireKDInvariant(t, tree)
	require.Equal(t, 4, tree.Len())
	for _, p := range []Coords{{5, 12}, {3, 4}, {7, 20}, {5, 1}} {
		_, ok := tree.Search(p)
		require.True(t, ok, "missing %v", p)
	}
}

func TestKDTreeSuccessorKeepsCount(t *testing.T) {
	tree, err := NewKDTree[Coords](2)
	require.NoError(t, err)

	tree.Insert(Coords{5, 5})
	tree.Insert(Coords{8, 1})
	tree.Insert(Coords{6, 9})
	tree.Insert(Coords{6, 9})
	tree.Insert(Coords{6, 9})

	tree.Remove(Coords{5, 5})

	m, ok := tree.Search(Coords{6, 9})
	require.True(t, ok)
	require.Equal(t, 3, m.Count)
	require.Equal(t, 4, tree.Len())
	requireKDInvariant(t, tree)
}

func TestKDTreeInvariantUnderRandomChurn(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 42))
	for _, dims := range []int{1, 2, 3} {
		tree, err := NewKDTree[Coords](dims)
		require.NoError(t, err)

		var live []Coords
		for range 3000 {
			if len(live) > 0 && rng.IntN(2) == 0 {
				i := rng.IntN(len(live))
				tree.Remove(live[i])
				live = append(live[:i], live[i+1:]...)
			} else {
				p := make(Coords, dims)
				for axis := range p {
					p[axis] = float64(rng.IntN(15))
				}
				tree.Insert(p)
				live = append(live, p)
			}
		}
		requireKDInvariant(t, tree)
		require.Equal(t, len(live), tree.Len())
	}
}

func TestKDTreeLenCachedUntilMutation(t *testing.T) {
	tree, err := NewKDTree[Coords](2)
	require.NoError(t, err)

	tree.Insert(Coords{1, 2})
	require.True(t, tree.dirty)
	require.Equal(t, 1, tree.Len())
	require.False(t, tree.dirty)

	tree.Remove(Coords{1, 2})
	require.True(t, tree.dirty)
	require.Zero(t, tree.Len())
}

func TestKDTreeAllInOrderOnOneAxis(t *testing.T) {
	tree, err := NewKDTree[Coords](1)
	require.NoError(t, err)

	for _, v := range []float64{5, 2, 8, 2, 9, 1} {
		tree.Insert(Coords{v})
	}
	var got []float64
	for p := range tree.All() {
		got = append(got, p[0])
	}
	require.Equal(t, []float64{1, 2, 2, 5, 8, 9}, got)
}
