package mcts

import (
	"fmt"
	"math"

	"xiangqi/internal/xiangqi"
)

// selectLeaf 从根往下走：终局停下；已完全展开则选最佳子节点继续；
// 否则展开当前节点并立刻返回新节点。
func (s *Searcher) selectLeaf(t *Tree) (NodeID, error) {
	cur := t.Root()
	for {
		if t.Node(cur).State.Terminal {
			return cur, nil
		}
		if !t.fullyExpanded(cur) {
			return s.expand(t, cur)
		}
		next, err := s.bestChild(t, cur, s.cfg.Exploration)
		if err != nil {
			return NilNode, err
		}
		cur = next
	}
}

func (s *Searcher) expand(t *Tree, id NodeID) (NodeID, error) {
	if s.variant == Guided {
		return s.expandGuided(t, id)
	}
	return s.expandRollout(t, id)
}

// expandRollout 按走法顺序，加入第一个指纹还不在子节点表里的局面
func (s *Searcher) expandRollout(t *Tree, id NodeID) (NodeID, error) {
	st := t.Node(id).State
	for _, mv := range st.LegalMoves() {
		next := st.ApplyMove(mv.From, mv.To)
		if _, ok := t.Child(id, next.Encode()); ok {
			continue
		}
		return t.add(id, next, mv, 0, 0), nil
	}
	return NilNode, ErrNoExpandableChild
}

// expandGuided 调一次评估器，一次性挂上全部子节点：
// 先验取策略向量中该走法标签的那一格，分数预置为本节点的估值。
// 返回先验最大的子节点。
func (s *Searcher) expandGuided(t *Tree, id NodeID) (NodeID, error) {
	st := t.Node(id).State
	pred, err := s.eval.Evaluate(st)
	if err != nil {
		return NilNode, fmt.Errorf("evaluate: %w", err)
	}
	if len(pred.Policy) != s.labels.Size() {
		return NilNode, fmt.Errorf("%w: got %d want %d", ErrPolicySize, len(pred.Policy), s.labels.Size())
	}

	value := float64(pred.Value)
	for _, mv := range st.LegalMoves() {
		next := st.ApplyMove(mv.From, mv.To)
		if _, ok := t.Child(id, next.Encode()); ok {
			continue
		}
		idx, err := s.labels.Index(mv.From, mv.To)
		if err != nil {
			return NilNode, err
		}
		t.add(id, next, mv, float64(pred.Policy[idx]), value)
	}

	kids := t.Children(id)
	if len(kids) == 0 {
		return NilNode, ErrNoExpandableChild
	}
	priors := make([]float64, len(kids))
	for i, c := range kids {
		priors[i] = t.Node(c).Prior
	}
	return s.pickMax(kids, priors), nil
}

// bestChild 按 exploitation + exploration 打分，并列的随机选一个
func (s *Searcher) bestChild(t *Tree, id NodeID, c float64) (NodeID, error) {
	kids := t.Children(id)
	if len(kids) == 0 {
		return NilNode, ErrNoBestChild
	}
	parentVisits := t.Node(id).Visits
	scores := make([]float64, len(kids))
	for i, k := range kids {
		scores[i] = s.childScore(parentVisits, t.Node(k), c)
	}
	return s.pickMax(kids, scores), nil
}

// childScore 子节点分数按"走这一步的一方"翻转
func (s *Searcher) childScore(parentVisits int, child *Node, c float64) float64 {
	perspective := -1.0
	if child.State.LastMover == xiangqi.Red {
		perspective = 1.0
	}

	exploitation := 0.0
	if child.Visits != 0 {
		exploitation = perspective * child.Score / float64(child.Visits)
	}

	exploration := 0.0
	if c != 0 {
		switch s.variant {
		case Guided:
			exploration = puct(c, child.Prior, parentVisits, child.Visits)
		default:
			exploration = uct(c, parentVisits, child.Visits)
		}
	}
	return exploitation + exploration
}

// uct C * sqrt(ln(N / n))，注意是除法，不是 ln N / n
func uct(c float64, parentVisits, visits int) float64 {
	if visits == 0 {
		return math.Inf(1)
	}
	return c * math.Sqrt(math.Log(float64(parentVisits)/float64(visits)))
}

// puct C * P * sqrt(N) / (1 + n)
func puct(c, prior float64, parentVisits, visits int) float64 {
	return c * prior * math.Sqrt(float64(parentVisits)) / (1 + float64(visits))
}

// pickMax 与最大值相差 TieEpsilon 以内的都算并列，用种子随机挑一个
func (s *Searcher) pickMax(ids []NodeID, scores []float64) NodeID {
	best := math.Inf(-1)
	for _, v := range scores {
		if v > best {
			best = v
		}
	}
	ties := make([]NodeID, 0, len(ids))
	for i, v := range scores {
		if v == best || best-v < TieEpsilon {
			ties = append(ties, ids[i])
		}
	}
	if len(ties) == 0 {
		// 全是 NaN
		ties = ids
	}
	if len(ties) == 1 {
		return ties[0]
	}
	return ties[s.rng.Intn(len(ties))]
}

// rollout 随机走到终局，红胜 +1、黑胜 -1、和 0
func (s *Searcher) rollout(st *xiangqi.State) (float64, error) {
	cur := st
	for depth := 0; !cur.Terminal; depth++ {
		if s.cfg.RolloutCutoff > 0 && depth >= s.cfg.RolloutCutoff {
			return 0, nil
		}
		moves := cur.LegalMoves()
		if len(moves) == 0 {
			return 0, xiangqi.ErrNoLegalMoves
		}
		mv := moves[s.rng.Intn(len(moves))]
		cur = cur.ApplyMove(mv.From, mv.To)
	}
	return cur.Outcome()
}

// backupRollout 叶子和所有祖先都 +1 次访问、+outcome，不翻转
func backupRollout(t *Tree, leaf NodeID, outcome float64) {
	for id := leaf; id.IsValid(); id = t.Node(id).Parent {
		n := t.Node(id)
		n.Visits++
		n.Score += outcome
	}
}

// backupGuided 叶子只加访问；祖先加访问并累加叶子的预置分数
func backupGuided(t *Tree, leaf NodeID) {
	n := t.Node(leaf)
	n.Visits++
	value := n.Score
	for id := n.Parent; id.IsValid(); id = t.Node(id).Parent {
		p := t.Node(id)
		p.Visits++
		p.Score += value
	}
}
