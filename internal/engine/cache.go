package engine

import (
	"sync"
	"sync/atomic"

	"xiangqi/internal/mcts"
	"xiangqi/internal/xiangqi"
)

const evalCacheCap = 500_000

// EvalCache 以 PositionKey（棋子、走子方、上一步）为键缓存评估结果。满了直接整表清空。
type EvalCache struct {
	mu  sync.RWMutex
	m   map[uint64]mcts.Prediction
	cap int

	hits   atomic.Int64
	misses atomic.Int64
}

func NewEvalCache(capacity int) *EvalCache {
	if capacity <= 0 {
		capacity = evalCacheCap
	}
	return &EvalCache{
		m:   make(map[uint64]mcts.Prediction, min(capacity, 1<<16)),
		cap: capacity,
	}
}

func (c *EvalCache) get(key uint64) (mcts.Prediction, bool) {
	c.mu.RLock()
	v, ok := c.m[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

func (c *EvalCache) store(key uint64, p mcts.Prediction) {
	c.mu.Lock()
	if len(c.m) >= c.cap {
		c.m = make(map[uint64]mcts.Prediction, min(c.cap, 1<<16))
	}
	c.m[key] = p
	c.mu.Unlock()
}

func (c *EvalCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// Stats 命中 / 未命中次数
func (c *EvalCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Wrap 包一层缓存；同一键只调用一次底层评估器。
// 缓存的策略切片是共享的，调用方不要修改。
func (c *EvalCache) Wrap(ev mcts.Evaluator) mcts.Evaluator {
	return mcts.EvaluatorFunc(func(s *xiangqi.State) (mcts.Prediction, error) {
		key := s.PositionKey()
		if p, ok := c.get(key); ok {
			return p, nil
		}
		p, err := ev.Evaluate(s)
		if err != nil {
			return p, err
		}
		c.store(key, p)
		return p, nil
	})
}
