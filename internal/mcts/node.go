package mcts

import (
	"xiangqi/internal/xiangqi"
)

// NodeID 节点在 Tree.nodes 中的下标，相当于 *Node，但不持有所有权
type NodeID int32

const NilNode NodeID = -1

func (id NodeID) IsValid() bool { return id >= 0 }

// Node 一个局面。分数恒为红方视角，选择时才按走子方翻转。
type Node struct {
	State  *xiangqi.State
	Move   xiangqi.Move // 根节点为 xiangqi.NoMove
	Parent NodeID

	Visits int
	Score  float64
	Prior  float64 // 仅 Guided 使用

	children map[string]NodeID // 指纹 → 子节点
	order    []NodeID          // 创建顺序，保证同种子下结果可复现
	legal    int               // 合法走法数缓存，-1 表示未计算
}

// Tree 整棵树放在一个切片里，一次决策后整体丢弃
type Tree struct {
	nodes []Node
}

func newTree(root *xiangqi.State) *Tree {
	t := &Tree{nodes: make([]Node, 0, 256)}
	t.nodes = append(t.nodes, Node{
		State:    root,
		Move:     xiangqi.NoMove,
		Parent:   NilNode,
		children: make(map[string]NodeID),
		legal:    -1,
	})
	return t
}

func (t *Tree) Root() NodeID { return 0 }

func (t *Tree) Len() int { return len(t.nodes) }

// Node 返回的指针在下一次 add 之前有效
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Children 按创建顺序
func (t *Tree) Children(id NodeID) []NodeID {
	return t.nodes[id].order
}

// Child 按指纹查子节点
func (t *Tree) Child(id NodeID, fingerprint string) (NodeID, bool) {
	c, ok := t.nodes[id].children[fingerprint]
	return c, ok
}

func (t *Tree) add(parent NodeID, st *xiangqi.State, mv xiangqi.Move, prior, score float64) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		State:    st,
		Move:     mv,
		Parent:   parent,
		Prior:    prior,
		Score:    score,
		children: make(map[string]NodeID),
		legal:    -1,
	})
	p := &t.nodes[parent]
	p.children[st.Encode()] = id
	p.order = append(p.order, id)
	return id
}

func (t *Tree) legalCount(id NodeID) int {
	n := &t.nodes[id]
	if n.legal < 0 {
		n.legal = len(n.State.LegalMoves())
	}
	return n.legal
}

// fullyExpanded 子节点数 == 合法走法数（无合法走法时也为 true）
func (t *Tree) fullyExpanded(id NodeID) bool {
	return len(t.nodes[id].order) == t.legalCount(id)
}

// Value 平均分（红方视角），未访问为 0
func (n *Node) Value() float64 {
	if n.Visits == 0 {
		return 0
	}
	return n.Score / float64(n.Visits)
}
