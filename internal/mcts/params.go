package mcts

import (
	"github.com/rs/zerolog"
)

const (
	DefaultIterations = 400

	// Rollout 用 UCT，Guided 用 PUCT，常数各自不同
	DefaultRolloutExploration = 2.0
	DefaultGuidedExploration  = 1.25

	// 分数差在此之内视为并列，随机挑一个
	TieEpsilon = 1e-4
)

// Config 一次搜索的预算与参数
type Config struct {
	Iterations    int
	Exploration   float64
	Seed          uint64
	RolloutCutoff int // 随机对局最多走多少步，0 为不限；到达上限记和棋
}

type Option func(s *Searcher)

func WithIterations(iterations int) Option {
	return func(s *Searcher) {
		if iterations > 0 {
			s.cfg.Iterations = iterations
		}
	}
}

// WithExploration 0 表示纯利用
func WithExploration(c float64) Option {
	return func(s *Searcher) {
		if c >= 0 {
			s.cfg.Exploration = c
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(s *Searcher) {
		s.cfg.Seed = seed
		s.seeded = true
	}
}

func WithRolloutCutoff(depth int) Option {
	return func(s *Searcher) {
		if depth >= 0 {
			s.cfg.RolloutCutoff = depth
		}
	}
}

func WithLabels(labels LabelIndexer) Option {
	return func(s *Searcher) {
		if labels != nil {
			s.labels = labels
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Searcher) {
		s.log = logger
	}
}
