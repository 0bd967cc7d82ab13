package mcts

import (
	"xiangqi/internal/xiangqi"
)

// Prediction 评估器输出：策略向量按标签表下标排列，Value 为红方视角 [-1, 1]
type Prediction struct {
	Policy []float32
	Value  float32
}

// Evaluator 同步调用；同一局面应返回同样的结果
type Evaluator interface {
	Evaluate(s *xiangqi.State) (Prediction, error)
}

type EvaluatorFunc func(s *xiangqi.State) (Prediction, error)

func (f EvaluatorFunc) Evaluate(s *xiangqi.State) (Prediction, error) {
	return f(s)
}

// LabelIndexer 走法 → 策略向量下标
type LabelIndexer interface {
	Index(from, to xiangqi.Coord) (int, error)
	Size() int
}
