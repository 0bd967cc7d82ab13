package mcts

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"xiangqi/internal/labels"
	"xiangqi/internal/xiangqi"
)

var (
	ErrNoBestChild       = errors.New("no child to choose from")
	ErrNoExpandableChild = errors.New("no unexpanded child available")
	ErrTerminalRoot      = errors.New("root position is terminal")
	ErrPolicySize        = errors.New("policy size does not match label vocabulary")
	ErrEvaluatorRequired = errors.New("guided search requires an evaluator")
)

// Variant 两种搜索：随机对局，或由评估器给先验和估值
type Variant int

const (
	Rollout Variant = iota
	Guided
)

func (v Variant) String() string {
	switch v {
	case Rollout:
		return "rollout"
	case Guided:
		return "guided"
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// Searcher 单线程；每次 Search 新建一棵树，结束后丢弃。
// 同一个 Searcher 不能被多个 goroutine 同时使用。
type Searcher struct {
	variant Variant
	cfg     Config
	eval    Evaluator
	labels  LabelIndexer
	log     zerolog.Logger

	seeded bool
	rng    *rand.Rand
}

// SearchResult 一次搜索的结果
type SearchResult struct {
	Move       xiangqi.Move
	Iterations int
	Nodes      int
	RootVisits int
	Value      float64 // 根节点平均分，红方视角
	TimeUsed   time.Duration
	Tree       *Tree
}

func NewRollout(opts ...Option) *Searcher {
	return newSearcher(Rollout, nil, DefaultRolloutExploration, opts)
}

func NewGuided(ev Evaluator, opts ...Option) *Searcher {
	return newSearcher(Guided, ev, DefaultGuidedExploration, opts)
}

func newSearcher(v Variant, ev Evaluator, c float64, opts []Option) *Searcher {
	s := &Searcher{ // 默认值
		variant: v,
		cfg: Config{
			Iterations:  DefaultIterations,
			Exploration: c,
		},
		eval:   ev,
		labels: labels.Default(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.seeded {
		s.cfg.Seed = uint64(time.Now().UnixNano())
	}
	s.rng = rand.New(rand.NewSource(s.cfg.Seed))
	return s
}

func (s *Searcher) Variant() Variant { return s.variant }

func (s *Searcher) Config() Config { return s.cfg }

// Search 跑满 Iterations 次模拟，然后以 C=0 选根节点的最佳子节点。
// 根局面已终局时返回 ErrTerminalRoot，调用方应先检查。
func (s *Searcher) Search(state *xiangqi.State) (SearchResult, error) {
	if state.Terminal {
		return SearchResult{}, ErrTerminalRoot
	}
	if s.variant == Guided && s.eval == nil {
		return SearchResult{}, ErrEvaluatorRequired
	}

	start := time.Now()
	tree := newTree(state)

	// 1. 模拟循环
	for i := 0; i < s.cfg.Iterations; i++ {
		if err := s.simulate(tree); err != nil {
			return SearchResult{Iterations: i, Nodes: tree.Len(), Tree: tree}, fmt.Errorf("simulation %d: %w", i, err)
		}
	}

	// 2. 纯利用选着
	best, err := s.bestChild(tree, tree.Root(), 0)
	if err != nil {
		return SearchResult{Iterations: s.cfg.Iterations, Nodes: tree.Len(), Tree: tree}, err
	}

	root := tree.Node(tree.Root())
	res := SearchResult{
		Move:       tree.Node(best).Move,
		Iterations: s.cfg.Iterations,
		Nodes:      tree.Len(),
		RootVisits: root.Visits,
		Value:      root.Value(),
		TimeUsed:   time.Since(start),
		Tree:       tree,
	}
	s.log.Debug().
		Str("variant", s.variant.String()).
		Int("iterations", res.Iterations).
		Int("nodes", res.Nodes).
		Int("root_visits", res.RootVisits).
		Float64("value", res.Value).
		Dur("took", res.TimeUsed).
		Msgf("search chose %v -> %v", res.Move.From, res.Move.To)
	return res, nil
}

// simulate 单次模拟：Select/Expand -> Evaluate -> Backup
func (s *Searcher) simulate(t *Tree) error {
	leaf, err := s.selectLeaf(t)
	if err != nil {
		return err
	}

	switch s.variant {
	case Guided:
		// 展开时已经把估值写进了 leaf.Score
		backupGuided(t, leaf)
	default:
		outcome, err := s.rollout(t.Node(leaf).State)
		if err != nil {
			return err
		}
		backupRollout(t, leaf, outcome)
	}
	return nil
}
