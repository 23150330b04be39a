package menutree

import "sort"

// DescendantIDs 节点自身及全部后代；id 不在树上时返回 nil
func (t *Tree[T]) DescendantIDs(id int64) []int64 {
	n := t.index[id]
	if n == nil {
		return nil
	}
	out := []int64{n.ID}
	Walk(n.Children, func(c *Node[T]) { out = append(out, c.ID) })
	return out
}

// AncestorIDs 自下而上的祖先链（不含自身）
func (t *Tree[T]) AncestorIDs(id int64) []int64 {
	var out []int64
	seen := map[int64]struct{}{id: {}}
	cur, ok := t.parent[id]
	for ok && cur != RootParentID {
		if _, dup := seen[cur]; dup {
			break
		}
		seen[cur] = struct{}{}
		out = append(out, cur)
		cur, ok = t.parent[cur]
	}
	return out
}

// Check 勾选：selected ∪ 后代 ∪ 祖先
func (t *Tree[T]) Check(selected []int64, id int64) []int64 {
	set := toSet(selected)
	desc := t.DescendantIDs(id)
	if desc == nil {
		return fromSet(set)
	}
	for _, d := range desc {
		set[d] = struct{}{}
	}
	for _, a := range t.AncestorIDs(id) {
		set[a] = struct{}{}
	}
	return fromSet(set)
}

// Uncheck 取消勾选：selected \ 后代，祖先保持不变
func (t *Tree[T]) Uncheck(selected []int64, id int64) []int64 {
	set := toSet(selected)
	desc := t.DescendantIDs(id)
	if desc == nil {
		delete(set, id)
	}
	for _, d := range desc {
		delete(set, d)
	}
	return fromSet(set)
}

func (t *Tree[T]) Toggle(selected []int64, id int64, checked bool) []int64 {
	if checked {
		return t.Check(selected, id)
	}
	return t.Uncheck(selected, id)
}

// SelectAll 全选/清空：已全选则清空，否则选中全部节点
func (t *Tree[T]) SelectAll(selected []int64) []int64 {
	on := 0
	for id := range toSet(selected) {
		if _, ok := t.index[id]; ok {
			on++
		}
	}
	if on == len(t.index) {
		return []int64{}
	}
	return fromSet(toSet(t.IDs()))
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func fromSet(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
