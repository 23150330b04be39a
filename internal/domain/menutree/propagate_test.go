package menutree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescendantIDs(t *testing.T) {
	tree := sampleTree()
	assert.ElementsMatch(t, []int64{1, 2, 3, 4}, tree.DescendantIDs(1))
	assert.ElementsMatch(t, []int64{2, 4}, tree.DescendantIDs(2))
	assert.Equal(t, []int64{4}, tree.DescendantIDs(4))
	assert.Nil(t, tree.DescendantIDs(42))
}

func TestAncestorIDs(t *testing.T) {
	tree := sampleTree()
	assert.Equal(t, []int64{2, 1}, tree.AncestorIDs(4))
	assert.Equal(t, []int64{1}, tree.AncestorIDs(3))
	assert.Empty(t, tree.AncestorIDs(1))
	assert.Empty(t, tree.AncestorIDs(42))
}

func TestCheckThenUncheck(t *testing.T) {
	tree := sampleTree()

	checked := tree.Check(nil, 2)
	assert.Equal(t, []int64{1, 2, 4}, checked)

	unchecked := tree.Uncheck(checked, 2)
	assert.Equal(t, []int64{1}, unchecked)
}

func TestCheck_IsIdempotent(t *testing.T) {
	tree := sampleTree()
	once := tree.Check([]int64{3}, 4)
	twice := tree.Check(once, 4)
	assert.Equal(t, once, twice)
	assert.Equal(t, []int64{1, 2, 3, 4}, once)
}

func TestUncheck_LeavesSiblingsAndAncestors(t *testing.T) {
	tree := sampleTree()
	got := tree.Uncheck([]int64{1, 2, 3, 4}, 4)
	assert.Equal(t, []int64{1, 2, 3}, got)
}

func TestToggle_UnknownNode(t *testing.T) {
	tree := sampleTree()
	assert.Equal(t, []int64{3}, tree.Toggle([]int64{3}, 99, true))
	assert.Equal(t, []int64{3}, tree.Toggle([]int64{3, 99}, 99, false))
}

func TestSelectAll_AlternatesWithPeriodTwo(t *testing.T) {
	tree := sampleTree()
	start := []int64{2}

	first := tree.SelectAll(start)
	assert.Equal(t, []int64{1, 2, 3, 4}, first)

	second := tree.SelectAll(first)
	assert.Empty(t, second)

	third := tree.SelectAll(second)
	assert.Equal(t, first, third)
	assert.Equal(t, second, tree.SelectAll(third))
}

func TestSelectAll_IgnoresIDsOutsideTree(t *testing.T) {
	tree := sampleTree()
	// 4 个节点里只选了 3 个，另外一个 id 不在树上，不算全选
	assert.Equal(t, []int64{1, 2, 3, 4}, tree.SelectAll([]int64{1, 2, 3, 77}))
}
