package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"xiangqi/internal/config"
	"xiangqi/internal/engine"
	"xiangqi/internal/record"
	"xiangqi/internal/xiangqi"
)

func quick(seed uint64) engine.SearchConfig {
	return engine.SearchConfig{Mode: engine.ModeRollout, Iterations: 8, Seed: seed, RolloutCutoff: 10}
}

func TestPlayGame(t *testing.T) {
	eng := engine.NewEngine(zerolog.Nop())
	g, err := playGame(context.Background(), eng, 3, quick(1), quick(2), 6)
	require.NoError(t, err)
	require.Equal(t, 3, g.ID)
	require.NotEmpty(t, g.Plies)
	require.LessOrEqual(t, len(g.Plies), 6)

	s := xiangqi.NewInitialState()
	for i, p := range g.Plies {
		require.Equal(t, s.SideToMove, p.Side, "ply %d", i)
		require.True(t, s.IsValidMove(p.Move.From, p.Move.To), "ply %d", i)
		s = s.ApplyMove(p.Move.From, p.Move.To)
		require.Equal(t, s.Encode(), p.Fingerprint)
	}
	require.Equal(t, record.ResultOf(s), g.Result)
}

func TestPlayGameCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := playGame(ctx, engine.NewEngine(zerolog.Nop()), 1, quick(1), quick(2), 10)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun(t *testing.T) {
	sp := config.SelfPlay{Games: 3, Parallel: 2, MaxPlies: 4, Red: quick(5), Black: quick(9)}
	var buf bytes.Buffer
	w := record.NewWriter(&buf)

	score, err := run(context.Background(), engine.NewEngine(zerolog.Nop()), sp, w, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.Equal(t, 3, score.A+score.B+score.Draws)

	games, err := record.Read(&buf)
	require.NoError(t, err)
	require.Len(t, games, 3)
	for _, g := range games {
		require.NotEmpty(t, g.Plies)
	}
}
