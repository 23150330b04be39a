// Package menutree 把扁平的菜单行组装为父子森林，并在森林上计算勾选传播。
package menutree

import "sort"

// RootParentID 顶级节点的 parentId
const RootParentID int64 = 0

// Key 从任意行类型中取出 id / parentId / sort
type Key[T any] func(row T) (id, parentID int64, sortNo int)

type Node[T any] struct {
	ID       int64
	ParentID int64
	Sort     int
	Value    T
	Children []*Node[T]
}

// Tree 一次 Build 的结果；Orphans 为无法挂到任何根节点下的行（父节点不存在或成环）
type Tree[T any] struct {
	Roots   []*Node[T]
	Orphans []T

	index  map[int64]*Node[T]
	parent map[int64]int64
}

// Build 按 sort 升序、id 升序组装每一层
func Build[T any](rows []T, key Key[T]) *Tree[T] {
	t := &Tree[T]{
		index:  make(map[int64]*Node[T], len(rows)),
		parent: make(map[int64]int64, len(rows)),
	}
	all := make([]*Node[T], 0, len(rows))
	byParent := make(map[int64][]*Node[T])
	for _, row := range rows {
		id, pid, s := key(row)
		n := &Node[T]{ID: id, ParentID: pid, Sort: s, Value: row}
		all = append(all, n)
		byParent[pid] = append(byParent[pid], n)
	}
	for pid := range byParent {
		sortNodes(byParent[pid])
	}

	// 从根开始广度遍历，能走到的才算挂在树上
	t.Roots = byParent[RootParentID]
	queue := append([]*Node[T](nil), t.Roots...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if _, seen := t.index[n.ID]; seen {
			continue
		}
		t.index[n.ID] = n
		t.parent[n.ID] = n.ParentID
		n.Children = byParent[n.ID]
		queue = append(queue, n.Children...)
	}
	for _, n := range all {
		if t.index[n.ID] != n {
			t.Orphans = append(t.Orphans, n.Value)
		}
	}
	if t.Roots == nil {
		t.Roots = []*Node[T]{}
	}
	return t
}

func sortNodes[T any](nodes []*Node[T]) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Sort != nodes[j].Sort {
			return nodes[i].Sort < nodes[j].Sort
		}
		return nodes[i].ID < nodes[j].ID
	})
}

// Find 返回 id 对应节点，不在树上返回 nil
func (t *Tree[T]) Find(id int64) *Node[T] { return t.index[id] }

// Len 树上节点数（不含孤儿）
func (t *Tree[T]) Len() int { return len(t.index) }

// IDs 深度优先先序的全部节点 id
func (t *Tree[T]) IDs() []int64 {
	out := make([]int64, 0, len(t.index))
	Walk(t.Roots, func(n *Node[T]) { out = append(out, n.ID) })
	return out
}

// Walk 先序遍历
func Walk[T any](nodes []*Node[T], fn func(n *Node[T])) {
	for _, n := range nodes {
		fn(n)
		Walk(n.Children, fn)
	}
}

// Map 自底向上把节点转换为输出结构，children 为已转换好的子节点
func Map[T, R any](nodes []*Node[T], fn func(v T, children []R) R) []R {
	out := make([]R, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, fn(n.Value, Map(n.Children, fn)))
	}
	return out
}
