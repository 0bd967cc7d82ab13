package main

import (
	"context"
	"errors"

	"xiangqi/internal/engine"
	"xiangqi/internal/mcts"
	"xiangqi/internal/record"
	"xiangqi/internal/xiangqi"
)

// playGame 下到终局、判和或 maxPlies；无子可走时记为未完成
func playGame(ctx context.Context, eng *engine.Engine, id int, red, black engine.SearchConfig, maxPlies int) (record.Game, error) {
	s := xiangqi.NewInitialState()
	g := record.Game{ID: id}

	for ply := 0; ply < maxPlies && !s.Terminal && !s.IsDraw(); ply++ {
		if err := ctx.Err(); err != nil {
			return g, err
		}
		cfg := red
		if s.SideToMove == xiangqi.Black {
			cfg = black
		}

		res, err := eng.Search(s, cfg)
		if errors.Is(err, mcts.ErrNoBestChild) || errors.Is(err, xiangqi.ErrNoLegalMoves) {
			break
		}
		if err != nil {
			return g, err
		}

		side := s.SideToMove
		s = s.ApplyMove(res.BestMove.From, res.BestMove.To)
		g.Plies = append(g.Plies, record.Ply{
			Side:        side,
			Move:        res.BestMove,
			Fingerprint: s.Encode(),
			Value:       res.Value,
			Iterations:  res.Iterations,
			Nodes:       res.Nodes,
			Took:        res.TimeUsed,
		})
	}
	g.Result = record.ResultOf(s)
	return g, nil
}
