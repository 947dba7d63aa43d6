// Package system 提供系统管理域服务
package system

import (
	"sort"

	"github.com/qingliu2025/stock-admin-backend/internal/models"
)

// MenuNode 菜单树节点
type MenuNode struct {
	*models.Menu
	Children []*MenuNode `json:"children,omitempty"`
}

// BuildMenuTree 将平铺的菜单列表构建为树
// 两遍遍历：先建 id 索引，再挂接父子关系。parent_id 为 0 的节点为根；
// 父节点不存在的孤儿节点提升为根，不会丢弃。兄弟节点按 sort 升序稳定排序
func BuildMenuTree(menus []*models.Menu) []*MenuNode {
	nodes := make(map[int64]*MenuNode, len(menus))
	for _, m := range menus {
		nodes[m.ID] = &MenuNode{Menu: m}
	}

	var roots []*MenuNode
	for _, m := range menus {
		node := nodes[m.ID]
		if m.ParentID == models.MenuRootParentID {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[m.ParentID]
		if !ok || m.ParentID == m.ID {
			// 悬挂的父引用：保留为孤儿根节点
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortForest(roots)
	return roots
}

// sortForest 递归按 sort 升序稳定排序
func sortForest(nodes []*MenuNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Sort < nodes[j].Sort
	})
	for _, n := range nodes {
		sortForest(n.Children)
	}
}

// FlattenTree 展平菜单树，返回全部节点 ID 和 child→parent 映射
func FlattenTree(forest []*MenuNode) (ids []int64, parents map[int64]int64) {
	parents = make(map[int64]int64)
	var walk func(node *MenuNode, parentID int64)
	walk = func(node *MenuNode, parentID int64) {
		ids = append(ids, node.ID)
		if parentID != models.MenuRootParentID {
			parents[node.ID] = parentID
		}
		for _, child := range node.Children {
			walk(child, node.ID)
		}
	}
	for _, root := range forest {
		walk(root, models.MenuRootParentID)
	}
	return ids, parents
}

// buildChildrenIndex 构建 parent → children 索引
func buildChildrenIndex(menus []*models.Menu) map[int64][]int64 {
	children := make(map[int64][]int64, len(menus))
	for _, m := range menus {
		if m.ParentID != models.MenuRootParentID && m.ParentID != m.ID {
			children[m.ParentID] = append(children[m.ParentID], m.ID)
		}
	}
	return children
}

// buildParentIndex 构建 child → parent 索引
func buildParentIndex(menus []*models.Menu) map[int64]int64 {
	parents := make(map[int64]int64, len(menus))
	for _, m := range menus {
		if m.ParentID != models.MenuRootParentID && m.ParentID != m.ID {
			parents[m.ID] = m.ParentID
		}
	}
	return parents
}

// PropagateCheck 勾选传播：选中节点本身、其全部后代及全部祖先
func PropagateCheck(checked map[int64]struct{}, parents map[int64]int64, children map[int64][]int64, id int64) {
	checked[id] = struct{}{}

	// 向下：全部后代
	// 已勾选的中间节点不能截断遍历，环检测用独立的 visited 集合
	visited := map[int64]struct{}{id: {}}
	stack := append([]int64(nil), children[id]...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[cur]; ok {
			continue
		}
		visited[cur] = struct{}{}
		checked[cur] = struct{}{}
		stack = append(stack, children[cur]...)
	}

	// 向上：全部祖先，同样不依赖 checked 终止
	cur := id
	for {
		parent, ok := parents[cur]
		if !ok {
			break
		}
		if _, seen := visited[parent]; seen {
			break
		}
		visited[parent] = struct{}{}
		checked[parent] = struct{}{}
		cur = parent
	}
}

// PropagateUncheck 取消勾选传播：移除节点本身及其全部后代，祖先保持不变
func PropagateUncheck(checked map[int64]struct{}, children map[int64][]int64, id int64) {
	delete(checked, id)

	stack := append([]int64(nil), children[id]...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		delete(checked, cur)
		stack = append(stack, children[cur]...)
	}
}

// NormalizeMenuSelection 规范化菜单选择集：补齐缺失的祖先节点
// 子节点不允许在没有父节点的情况下落库
func NormalizeMenuSelection(selected []int64, menus []*models.Menu) []int64 {
	parents := buildParentIndex(menus)
	exists := make(map[int64]struct{}, len(menus))
	for _, m := range menus {
		exists[m.ID] = struct{}{}
	}

	result := make(map[int64]struct{}, len(selected))
	for _, id := range selected {
		if _, ok := exists[id]; !ok {
			continue
		}
		result[id] = struct{}{}
		cur := id
		for {
			parent, ok := parents[cur]
			if !ok {
				break
			}
			if _, done := result[parent]; done {
				break
			}
			result[parent] = struct{}{}
			cur = parent
		}
	}

	normalized := make([]int64, 0, len(result))
	for id := range result {
		normalized = append(normalized, id)
	}
	sort.Slice(normalized, func(i, j int) bool { return normalized[i] < normalized[j] })
	return normalized
}
