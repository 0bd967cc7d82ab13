package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"xiangqi/internal/labels"
	"xiangqi/internal/mcts"
	"xiangqi/internal/xiangqi"
)

// Mode 搜索方式
type Mode string

const (
	ModeRollout Mode = "rollout"
	ModeGuided  Mode = "guided"
)

// SearchConfig 搜索配置
type SearchConfig struct {
	Mode          Mode    `yaml:"mode"`
	Iterations    int     `yaml:"iterations"`     // 模拟次数
	Exploration   float64 `yaml:"exploration"`    // 0 用各自默认值
	Seed          uint64  `yaml:"seed"`           // 0 随机
	RolloutCutoff int     `yaml:"rollout_cutoff"` // 0 不限
}

func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Mode:       ModeRollout,
		Iterations: mcts.DefaultIterations,
	}
}

// 搜索结果
type SearchResult struct {
	BestMove   xiangqi.Move
	Mode       Mode
	Value      float64 // 根节点平均分，红方视角 [-1, 1]
	WinProb    float32 // 红方胜率
	Iterations int
	Nodes      int
	RootVisits int
	TimeUsed   time.Duration
	NNFailed   bool
	Tree       *mcts.Tree
}

type Engine struct {
	UseNN bool

	nn    *ONNXEvaluator
	eval  mcts.Evaluator
	cache *EvalCache

	log zerolog.Logger
}

func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{log: log}
}

// InitNN 加载 ONNX 模型；CacheSize > 0 时套一层按哈希缓存
func (e *Engine) InitNN(cfg ModelConfig) error {
	nn, err := NewONNXEvaluator(cfg, e.log)
	if err != nil {
		return err
	}
	e.nn = nn
	e.SetEvaluator(nn, cfg.CacheSize)
	return nil
}

// SetEvaluator 替换评估器（测试或无模型时用 Uniform）
func (e *Engine) SetEvaluator(ev mcts.Evaluator, cacheSize int) {
	e.cache = nil
	if cacheSize > 0 {
		e.cache = NewEvalCache(cacheSize)
		ev = e.cache.Wrap(ev)
	}
	e.eval = ev
	e.UseNN = ev != nil
}

func (e *Engine) Cache() *EvalCache { return e.cache }

func (e *Engine) Close() {
	if e.nn != nil {
		e.nn.Close()
		e.nn = nil
	}
	e.eval = nil
	e.UseNN = false
}

// Search 只思考不落子
func (e *Engine) Search(s *xiangqi.State, cfg SearchConfig) (SearchResult, error) {
	opts := []mcts.Option{
		mcts.WithIterations(cfg.Iterations),
		mcts.WithRolloutCutoff(cfg.RolloutCutoff),
		mcts.WithLogger(e.log),
	}
	if cfg.Exploration > 0 {
		opts = append(opts, mcts.WithExploration(cfg.Exploration))
	}
	if cfg.Seed != 0 {
		opts = append(opts, mcts.WithSeed(cfg.Seed))
	}

	mode := cfg.Mode
	if mode == "" {
		mode = ModeRollout
	}

	var searcher *mcts.Searcher
	switch mode {
	case ModeRollout:
		searcher = mcts.NewRollout(opts...)
	case ModeGuided:
		if !e.UseNN || e.eval == nil {
			return SearchResult{Mode: mode}, mcts.ErrEvaluatorRequired
		}
		searcher = mcts.NewGuided(e.eval, opts...)
	default:
		return SearchResult{Mode: mode}, fmt.Errorf("unknown search mode %q", mode)
	}

	res, err := searcher.Search(s)
	out := SearchResult{
		BestMove:   res.Move,
		Mode:       mode,
		Value:      res.Value,
		WinProb:    float32((res.Value + 1) / 2),
		Iterations: res.Iterations,
		Nodes:      res.Nodes,
		RootVisits: res.RootVisits,
		TimeUsed:   res.TimeUsed,
		Tree:       res.Tree,
	}
	if err != nil {
		// 评估器出错与规则层面的错误分开报告
		var ruleErr bool
		for _, target := range []error{mcts.ErrNoBestChild, mcts.ErrTerminalRoot, mcts.ErrNoExpandableChild, xiangqi.ErrNoLegalMoves, labels.ErrUnknownLabel} {
			if errors.Is(err, target) {
				ruleErr = true
				break
			}
		}
		out.NNFailed = mode == ModeGuided && !ruleErr
		e.log.Error().Err(err).Str("mode", string(mode)).Msg("search failed")
		return out, err
	}
	return out, nil
}

// Uniform 均匀策略、固定估值，没有模型时给 Guided 用
func Uniform(value float32) mcts.Evaluator {
	policy := make([]float32, labels.Size)
	for i := range policy {
		policy[i] = 1.0 / labels.Size
	}
	return mcts.EvaluatorFunc(func(*xiangqi.State) (mcts.Prediction, error) {
		return mcts.Prediction{Policy: policy, Value: value}, nil
	})
}
