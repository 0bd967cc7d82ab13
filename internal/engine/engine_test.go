package engine

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"xiangqi/internal/labels"
	"xiangqi/internal/mcts"
	"xiangqi/internal/xiangqi"
)

func at(r, c int) xiangqi.Coord { return xiangqi.Coord{Row: r, Col: c} }

func TestEncodeTensorInitial(t *testing.T) {
	s := xiangqi.NewInitialState()
	x := NewTensor(s)
	require.Len(t, x, TensorSize)

	require.Equal(t, float32(1), x[tensorIndex(9, 0, 0)], "red chariot")
	require.Equal(t, float32(-1), x[tensorIndex(0, 0, 0)], "black chariot")
	require.Equal(t, float32(1), x[tensorIndex(9, 4, 4)], "red general")
	require.Equal(t, float32(-1), x[tensorIndex(0, 4, 4)], "black general")
	require.Equal(t, float32(1), x[tensorIndex(7, 1, 5)], "red cannon")
	require.Equal(t, float32(-1), x[tensorIndex(3, 8, 6)], "black soldier")

	var pieces, lastMove, turn int
	for r := 0; r < TensorRows; r++ {
		for c := 0; c < TensorCols; c++ {
			for p := 0; p < planeLastMove; p++ {
				if x[tensorIndex(r, c, p)] != 0 {
					pieces++
				}
			}
			if x[tensorIndex(r, c, planeLastMove)] != 0 {
				lastMove++
			}
			if x[tensorIndex(r, c, planeTurn)] == 1 {
				turn++
			}
		}
	}
	require.Equal(t, 32, pieces)
	require.Zero(t, lastMove)
	require.Equal(t, TensorRows*TensorCols, turn)
}

func TestEncodeTensorAfterMove(t *testing.T) {
	s := xiangqi.NewInitialState().ApplyMove(at(6, 0), at(5, 0))
	x := NewTensor(s)

	require.Equal(t, float32(1), x[tensorIndex(5, 0, 6)])
	require.Zero(t, x[tensorIndex(6, 0, 6)])
	require.Equal(t, float32(-1), x[tensorIndex(6, 0, planeLastMove)])
	require.Equal(t, float32(1), x[tensorIndex(5, 0, planeLastMove)])
	for r := 0; r < TensorRows; r++ {
		for c := 0; c < TensorCols; c++ {
			require.Zero(t, x[tensorIndex(r, c, planeTurn)])
		}
	}

	// 复用缓冲区要先清零
	buf := NewTensor(xiangqi.NewInitialState())
	EncodeTensor(s, buf)
	require.Equal(t, x, buf)
}

func TestSoftmaxInPlace(t *testing.T) {
	xs := []float32{0, float32(math.Log(2))}
	softmaxInPlace(xs)
	require.InDelta(t, 1.0/3, xs[0], 1e-6)
	require.InDelta(t, 2.0/3, xs[1], 1e-6)

	big := []float32{1000, 1000, 1000, 1000}
	softmaxInPlace(big)
	for _, v := range big {
		require.InDelta(t, 0.25, v, 1e-6)
	}

	softmaxInPlace(nil)
}

func countingEvaluator(calls *int, policy []float32, value float32) mcts.Evaluator {
	return mcts.EvaluatorFunc(func(*xiangqi.State) (mcts.Prediction, error) {
		*calls++
		return mcts.Prediction{Policy: policy, Value: value}, nil
	})
}

func TestEvalCache(t *testing.T) {
	calls := 0
	policy := make([]float32, labels.Size)
	c := NewEvalCache(8)
	ev := c.Wrap(countingEvaluator(&calls, policy, 0.25))

	s := xiangqi.NewInitialState()
	p, err := ev.Evaluate(s)
	require.NoError(t, err)
	require.Equal(t, float32(0.25), p.Value)

	_, err = ev.Evaluate(s.Clone())
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, 1, c.Len())

	hits, misses := c.Stats()
	require.Equal(t, int64(1), hits)
	require.Equal(t, int64(1), misses)

	_, err = ev.Evaluate(s.ApplyMove(at(6, 0), at(5, 0)))
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.Equal(t, 2, c.Len())
}

func TestEvalCacheResetsWhenFull(t *testing.T) {
	calls := 0
	c := NewEvalCache(1)
	ev := c.Wrap(countingEvaluator(&calls, nil, 0))

	s := xiangqi.NewInitialState()
	_, _ = ev.Evaluate(s)
	_, _ = ev.Evaluate(s.ApplyMove(at(6, 0), at(5, 0)))
	require.Equal(t, 1, c.Len())
	require.Equal(t, 2, calls)
}

func TestEvalCacheSkipsErrors(t *testing.T) {
	c := NewEvalCache(0)
	boom := errors.New("boom")
	ev := c.Wrap(mcts.EvaluatorFunc(func(*xiangqi.State) (mcts.Prediction, error) {
		return mcts.Prediction{}, boom
	}))
	_, err := ev.Evaluate(xiangqi.NewInitialState())
	require.ErrorIs(t, err, boom)
	require.Zero(t, c.Len())
}

// 车来回走一趟回到开局盘面：哈希相同，上一步平面不同
func TestEvalCacheTranspositionKeepsLastMove(t *testing.T) {
	lastMoveCells := mcts.EvaluatorFunc(func(s *xiangqi.State) (mcts.Prediction, error) {
		x := NewTensor(s)
		n := 0
		for r := 0; r < TensorRows; r++ {
			for c := 0; c < TensorCols; c++ {
				if x[tensorIndex(r, c, planeLastMove)] != 0 {
					n++
				}
			}
		}
		return mcts.Prediction{Value: float32(n) / 4}, nil
	})

	start := xiangqi.NewInitialState()
	back := start.
		ApplyMove(at(9, 0), at(8, 0)).
		ApplyMove(at(0, 0), at(1, 0)).
		ApplyMove(at(8, 0), at(9, 0)).
		ApplyMove(at(1, 0), at(0, 0))
	require.Equal(t, start.Hash, back.Hash)
	require.Equal(t, start.SideToMove, back.SideToMove)

	direct, err := lastMoveCells.Evaluate(back)
	require.NoError(t, err)
	require.Equal(t, float32(0.5), direct.Value)

	ev := NewEvalCache(16).Wrap(lastMoveCells)
	p, err := ev.Evaluate(start)
	require.NoError(t, err)
	require.Zero(t, p.Value)

	p, err = ev.Evaluate(back)
	require.NoError(t, err)
	require.Equal(t, direct.Value, p.Value)
	require.NotEqual(t, start.PositionKey(), back.PositionKey())
}

func TestEngineRollout(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	root := xiangqi.NewInitialState()

	res, err := e.Search(root, SearchConfig{Iterations: 30, Seed: 3, RolloutCutoff: 20})
	require.NoError(t, err)
	require.Equal(t, ModeRollout, res.Mode)
	require.Equal(t, 30, res.Iterations)
	require.Equal(t, 30, res.RootVisits)
	require.Greater(t, res.Nodes, 1)
	require.True(t, root.IsValidMove(res.BestMove.From, res.BestMove.To))
	require.False(t, res.NNFailed)
}

func TestEngineGuided(t *testing.T) {
	want := xiangqi.Move{From: at(7, 1), To: at(7, 4)}
	idx, err := labels.Default().Index(want.From, want.To)
	require.NoError(t, err)
	policy := make([]float32, labels.Size)
	for i := range policy {
		policy[i] = 0.001
	}
	policy[idx] = 0.9

	calls := 0
	e := NewEngine(zerolog.Nop())
	e.SetEvaluator(countingEvaluator(&calls, policy, 0.5), 16)
	require.True(t, e.UseNN)

	cfg := SearchConfig{Mode: ModeGuided, Iterations: 1, Seed: 5}
	res, err := e.Search(xiangqi.NewInitialState(), cfg)
	require.NoError(t, err)
	require.Equal(t, want, res.BestMove)
	require.InDelta(t, 0.75, res.WinProb, 1e-6)

	// 同一根局面第二次搜索命中缓存
	_, err = e.Search(xiangqi.NewInitialState(), cfg)
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	hits, _ := e.Cache().Stats()
	require.Equal(t, int64(1), hits)
}

func TestEngineErrors(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	root := xiangqi.NewInitialState()

	_, err := e.Search(root, SearchConfig{Mode: ModeGuided, Iterations: 1})
	require.ErrorIs(t, err, mcts.ErrEvaluatorRequired)

	_, err = e.Search(root, SearchConfig{Mode: "alphabeta"})
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "alphabeta"))

	e.SetEvaluator(mcts.EvaluatorFunc(func(*xiangqi.State) (mcts.Prediction, error) {
		return mcts.Prediction{}, errors.New("device lost")
	}), 0)
	res, err := e.Search(root, SearchConfig{Mode: ModeGuided, Iterations: 1})
	require.Error(t, err)
	require.True(t, res.NNFailed)

	e.Close()
	require.False(t, e.UseNN)
}

func TestEngineTerminalRoot(t *testing.T) {
	s, err := xiangqi.Decode(strings.Join([]string{
		"____k____",
		"_________",
		"_________",
		"_________",
		"____R____",
		"_________",
		"_________",
		"_________",
		"_________",
		"___K_____",
	}, ""), xiangqi.Red)
	require.NoError(t, err)
	s = s.ApplyMove(at(4, 4), at(0, 4))
	require.True(t, s.Terminal)

	res, err := NewEngine(zerolog.Nop()).Search(s, SearchConfig{Iterations: 5})
	require.ErrorIs(t, err, mcts.ErrTerminalRoot)
	require.False(t, res.NNFailed)
}

func TestUniform(t *testing.T) {
	p, err := Uniform(0.2).Evaluate(xiangqi.NewInitialState())
	require.NoError(t, err)
	require.Len(t, p.Policy, labels.Size)
	require.Equal(t, float32(0.2), p.Value)
	var sum float64
	for _, v := range p.Policy {
		sum += float64(v)
	}
	require.InDelta(t, 1.0, sum, 1e-3)
}

func TestResolveModelPath(t *testing.T) {
	_, err := resolveModelPath("")
	require.ErrorIs(t, err, ErrModelNotFound)

	_, err = resolveModelPath(filepath.Join(t.TempDir(), "missing.onnx"))
	require.ErrorIs(t, err, ErrModelNotFound)

	p := filepath.Join(t.TempDir(), "xiangqi.onnx")
	require.NoError(t, os.WriteFile(p, []byte("onnx"), 0o644))
	got, err := resolveModelPath(p)
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestPrependPathEnv(t *testing.T) {
	const key = "XIANGQI_TEST_LIB_PATH"
	t.Setenv(key, "")
	a, b := filepath.Join("opt", "a"), filepath.Join("opt", "b")

	require.NoError(t, prependPathEnv(key, a))
	require.Equal(t, a, os.Getenv(key))
	require.NoError(t, prependPathEnv(key, b))
	require.Equal(t, b+string(os.PathListSeparator)+a, os.Getenv(key))
	require.NoError(t, prependPathEnv(key, a))
	require.Equal(t, b+string(os.PathListSeparator)+a, os.Getenv(key))
}
