package menutree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id, pid int64
	sort    int
	name    string
}

func rowKey(r row) (int64, int64, int) { return r.id, r.pid, r.sort }

func ids[T any](nodes []*Node[T]) []int64 {
	out := make([]int64, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

// 1 -> {2,3}, 2 -> {4}
func sampleTree() *Tree[row] {
	return Build([]row{
		{id: 4, pid: 2},
		{id: 3, pid: 1},
		{id: 1, pid: 0},
		{id: 2, pid: 1},
	}, rowKey)
}

func TestBuild_OrdersBySortThenID(t *testing.T) {
	tree := Build([]row{
		{id: 5, pid: 0, sort: 2},
		{id: 3, pid: 0, sort: 1},
		{id: 1, pid: 0, sort: 2},
		{id: 9, pid: 3, sort: 0},
		{id: 7, pid: 3, sort: 0},
		{id: 8, pid: 3, sort: -1},
	}, rowKey)

	assert.Equal(t, []int64{3, 1, 5}, ids(tree.Roots))
	assert.Equal(t, []int64{8, 7, 9}, ids(tree.Find(3).Children))
	assert.Empty(t, tree.Orphans)
	assert.Equal(t, 6, tree.Len())
}

func TestBuild_EveryRowAppearsOnceUnderItsParent(t *testing.T) {
	tree := sampleTree()
	seen := map[int64]int{}
	Walk(tree.Roots, func(n *Node[row]) {
		seen[n.ID]++
		for _, c := range n.Children {
			assert.Equal(t, n.ID, c.ParentID)
		}
	})
	assert.Equal(t, map[int64]int{1: 1, 2: 1, 3: 1, 4: 1}, seen)
}

func TestBuild_ReportsOrphansAndCycles(t *testing.T) {
	tree := Build([]row{
		{id: 1, pid: 0},
		{id: 2, pid: 99}, // 父节点不存在
		{id: 3, pid: 4},  // 3 <-> 4 成环
		{id: 4, pid: 3},
		{id: 5, pid: 2}, // 挂在孤儿下面
	}, rowKey)

	assert.Equal(t, []int64{1}, ids(tree.Roots))
	orphanIDs := make([]int64, 0, len(tree.Orphans))
	for _, o := range tree.Orphans {
		orphanIDs = append(orphanIDs, o.id)
	}
	assert.ElementsMatch(t, []int64{2, 3, 4, 5}, orphanIDs)
	assert.Nil(t, tree.Find(5))
}

func TestBuild_Empty(t *testing.T) {
	tree := Build[row](nil, rowKey)
	require.NotNil(t, tree.Roots)
	assert.Len(t, tree.Roots, 0)
	assert.Empty(t, tree.IDs())
}

func TestMap(t *testing.T) {
	type out struct {
		ID       int64
		Children []out
	}
	got := Map(sampleTree().Roots, func(v row, children []out) out {
		return out{ID: v.id, Children: children}
	})
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
	require.Len(t, got[0].Children, 2)
	assert.Equal(t, int64(2), got[0].Children[0].ID)
	assert.Equal(t, int64(4), got[0].Children[0].Children[0].ID)
	assert.Empty(t, got[0].Children[1].Children)
}
