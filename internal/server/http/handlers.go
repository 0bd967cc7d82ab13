package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"xiangqi/internal/engine"
	"xiangqi/internal/mcts"
	"xiangqi/internal/server/game"
	"xiangqi/internal/xiangqi"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return false
	}
	return true
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	g := s.games.NewGame()
	writeJSON(w, http.StatusOK, gameToDTO(g))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var req StateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := s.games.Get(req.GameID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, gameToDTO(g))
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req PlayRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := s.games.Play(req.GameID, req.Move.move())
	if err != nil {
		writeError(w, playErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, gameToDTO(g))
}

func playErrorStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrIllegalMove):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrGameOver), errors.Is(err, game.ErrStale):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) handleAiMove(w http.ResponseWriter, r *http.Request) {
	var req AiMoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// 1. 局面：对局优先，其次请求里的局面串
	var pos *xiangqi.State
	ply := -1
	switch {
	case req.GameID != "":
		g, err := s.games.Get(req.GameID)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		pos = g.State
		ply = len(g.History)
	case req.Position != "":
		p, err := xiangqi.Decode(req.Position, intToSide(req.ToMove))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid position")
			return
		}
		pos = p
	default:
		writeError(w, http.StatusBadRequest, "missing game_id or position")
		return
	}

	resp := AiMoveResponse{
		Position: pos.Encode(),
		ToMove:   sideToInt(pos.SideToMove),
	}
	if pos.Terminal {
		resp.Status = game.StatusOf(pos)
		writeJSON(w, http.StatusOK, resp)
		return
	}

	// 2. 搜索参数
	cfg := s.search
	if req.Mode != "" {
		cfg.Mode = engine.Mode(req.Mode)
	}
	if cfg.Mode == "" {
		cfg.Mode = engine.ModeRollout
	}
	if cfg.Mode != engine.ModeRollout && cfg.Mode != engine.ModeGuided {
		writeError(w, http.StatusBadRequest, "unknown mode")
		return
	}
	if req.Iterations > 0 {
		cfg.Iterations = min(req.Iterations, maxIterations)
	}
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}
	resp.Mode = string(cfg.Mode)

	// 3. 只思考；apply 时再落子
	res, err := s.engine.Search(pos, cfg)
	resp.Iterations = res.Iterations
	resp.Nodes = res.Nodes
	resp.TimeMs = res.TimeUsed.Milliseconds()
	if err != nil {
		switch {
		case errors.Is(err, mcts.ErrEvaluatorRequired):
			writeError(w, http.StatusServiceUnavailable, "guided search needs a model")
		case res.NNFailed:
			resp.Status = "nn_error"
			writeJSON(w, http.StatusOK, resp)
		case errors.Is(err, mcts.ErrNoBestChild), errors.Is(err, xiangqi.ErrNoLegalMoves):
			resp.Status = game.StatusNoMoves
			writeJSON(w, http.StatusOK, resp)
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	best := moveToDTO(res.BestMove)
	resp.BestMove = &best
	resp.Value = res.Value
	resp.WinProb = res.WinProb
	resp.Status = "ok"

	if req.Apply && req.GameID != "" {
		// 搜索期间对局若已变化，不能把旧局面的着法落上去
		g, err := s.games.PlayAt(req.GameID, ply, res.BestMove)
		if err != nil {
			writeError(w, playErrorStatus(err), err.Error())
			return
		}
		gr := gameToDTO(g)
		resp.Game = &gr
	}
	writeJSON(w, http.StatusOK, resp)
}
