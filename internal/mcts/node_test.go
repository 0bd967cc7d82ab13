package mcts

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"xiangqi/internal/xiangqi"
)

// chain 根 → 红走一步 → 黑走一步
func chain(t *testing.T) (*Tree, NodeID, NodeID) {
	t.Helper()
	root := xiangqi.NewInitialState()
	tree := newTree(root)

	redMove := xiangqi.Move{From: xiangqi.Coord{Row: 6, Col: 0}, To: xiangqi.Coord{Row: 5, Col: 0}}
	afterRed := root.ApplyMove(redMove.From, redMove.To)
	a := tree.add(tree.Root(), afterRed, redMove, 0.2, 0.1)

	blackMove := xiangqi.Move{From: xiangqi.Coord{Row: 3, Col: 0}, To: xiangqi.Coord{Row: 4, Col: 0}}
	afterBlack := afterRed.ApplyMove(blackMove.From, blackMove.To)
	b := tree.add(a, afterBlack, blackMove, 0.3, 0.3)
	return tree, a, b
}

func TestTreeAdd(t *testing.T) {
	tree, a, b := chain(t)

	require.Equal(t, 3, tree.Len())
	require.Equal(t, NilNode, tree.Node(tree.Root()).Parent)
	require.Equal(t, tree.Root(), tree.Node(a).Parent)
	require.Equal(t, a, tree.Node(b).Parent)
	require.Equal(t, []NodeID{a}, tree.Children(tree.Root()))

	got, ok := tree.Child(a, tree.Node(b).State.Encode())
	require.True(t, ok)
	require.Equal(t, b, got)

	require.Equal(t, 44, tree.legalCount(tree.Root()))
	require.False(t, tree.fullyExpanded(tree.Root()))
}

func TestBackupRollout(t *testing.T) {
	tree, a, b := chain(t)
	tree.Node(a).Score = 0
	tree.Node(b).Score = 0

	backupRollout(tree, b, -1)
	backupRollout(tree, a, 1)

	require.Equal(t, 1, tree.Node(b).Visits)
	require.Equal(t, -1.0, tree.Node(b).Score)
	require.Equal(t, 2, tree.Node(a).Visits)
	require.Equal(t, 0.0, tree.Node(a).Score)
	require.Equal(t, 2, tree.Node(tree.Root()).Visits)
	require.Equal(t, 0.0, tree.Node(tree.Root()).Score)
}

func TestBackupGuided(t *testing.T) {
	tree, a, b := chain(t)

	backupGuided(tree, b)

	// 叶子只加访问，分数保持预置值
	require.Equal(t, 1, tree.Node(b).Visits)
	require.InDelta(t, 0.3, tree.Node(b).Score, 1e-12)
	// 祖先累加叶子的分数
	require.Equal(t, 1, tree.Node(a).Visits)
	require.InDelta(t, 0.4, tree.Node(a).Score, 1e-12)
	require.Equal(t, 1, tree.Node(tree.Root()).Visits)
	require.InDelta(t, 0.3, tree.Node(tree.Root()).Score, 1e-12)
}

func TestExplorationTerms(t *testing.T) {
	require.InDelta(t, 2*math.Sqrt(math.Log(10)), uct(2, 100, 10), 1e-12)
	require.Equal(t, 0.0, uct(2, 7, 7))
	require.True(t, math.IsInf(uct(2, 7, 0), 1))

	require.InDelta(t, 0.625, puct(1.25, 0.5, 16, 3), 1e-12)
	require.Equal(t, 0.0, puct(1.25, 0, 16, 3))
}

func TestChildScorePerspective(t *testing.T) {
	tree, a, b := chain(t)
	s := NewRollout(WithSeed(1))

	tree.Node(a).Visits, tree.Node(a).Score = 4, 2
	tree.Node(b).Visits, tree.Node(b).Score = 4, 2

	// a 由红走出，b 由黑走出
	require.InDelta(t, 0.5, s.childScore(8, tree.Node(a), 0), 1e-12)
	require.InDelta(t, -0.5, s.childScore(8, tree.Node(b), 0), 1e-12)
	require.InDelta(t, 0.5+2*math.Sqrt(math.Log(2)), s.childScore(8, tree.Node(a), 2), 1e-12)

	g := NewGuided(uniformEvaluator(0), WithSeed(1))
	require.InDelta(t, 0.5+1.25*0.2*math.Sqrt(16)/5, g.childScore(16, tree.Node(a), 1.25), 1e-12)

	// 未访问：利用项为 0
	tree.Node(a).Visits, tree.Node(a).Score = 0, 0.9
	require.Equal(t, 0.0, g.childScore(16, tree.Node(a), 0))
}

func TestPickMaxTies(t *testing.T) {
	ids := []NodeID{1, 2, 3, 4}

	s := NewRollout(WithSeed(3))
	require.Equal(t, NodeID(3), s.pickMax(ids, []float64{0.1, 0.2, 0.9, 0.3}))

	seen := map[NodeID]bool{}
	for i := 0; i < 200; i++ {
		got := s.pickMax(ids, []float64{0.5, 0.5 + TieEpsilon/2, 0.1, 0.5 - TieEpsilon/4})
		require.NotEqual(t, NodeID(3), got)
		seen[got] = true
	}
	require.Len(t, seen, 3, "every tied child should be picked eventually")

	inf := math.Inf(1)
	for i := 0; i < 20; i++ {
		got := s.pickMax(ids, []float64{inf, 1, inf, 2})
		require.Contains(t, []NodeID{1, 3}, got)
	}
}

func TestDump(t *testing.T) {
	tree, a, b := chain(t)
	root := tree.Node(tree.Root()).State

	sideMove := xiangqi.Move{From: xiangqi.Coord{Row: 6, Col: 2}, To: xiangqi.Coord{Row: 5, Col: 2}}
	c := tree.add(tree.Root(), root.ApplyMove(sideMove.From, sideMove.To), sideMove, 0, 0)

	tree.Node(tree.Root()).Visits, tree.Node(tree.Root()).Score = 3, 1
	tree.Node(a).Visits, tree.Node(a).Score = 2, 1.5
	tree.Node(b).Visits, tree.Node(b).Score = 1, -0.25

	var buf bytes.Buffer
	require.NoError(t, tree.Dump(&buf, 0))

	want := strings.Join([]string{
		"1 / 3, " + root.Encode(),
		"├── 1.5 / 2, " + tree.Node(a).State.Encode(),
		"│   └── -0.25 / 1, " + tree.Node(b).State.Encode(),
		"└── 0 / 0, " + tree.Node(c).State.Encode(),
	}, "\n") + "\n"
	require.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, tree.Dump(&buf, 1))
	require.Equal(t, 3, strings.Count(buf.String(), "\n"))
}
