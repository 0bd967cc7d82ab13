package httpserver

import (
	"xiangqi/internal/server/game"
	"xiangqi/internal/xiangqi"
)

// 坐标一律 {row, col}，row 0 是黑方底线
type MoveDTO struct {
	From xiangqi.Coord `json:"from"`
	To   xiangqi.Coord `json:"to"`
}

func (m MoveDTO) move() xiangqi.Move {
	return xiangqi.Move{From: m.From, To: m.To}
}

// GameResponse new_game / state / play 共用
type GameResponse struct {
	GameID     string                     `json:"game_id"`
	Position   string                     `json:"position"` // 90 字符局面串
	ToMove     int                        `json:"to_move"`  // 0=红, 1=黑
	LegalMoves []MoveDTO                  `json:"legal_moves"`
	Status     string                     `json:"status"` // ongoing / red_win / black_win / draw / no_moves
	Check      bool                       `json:"check"`
	NoCapture  int                        `json:"no_capture"`
	LastMove   *MoveDTO                   `json:"last_move,omitempty"`
	Pieces     map[string][]xiangqi.Coord `json:"pieces"`
	History    []MoveDTO                  `json:"history"`
}

type StateRequest struct {
	GameID string `json:"game_id"`
}

type PlayRequest struct {
	GameID string  `json:"game_id"`
	Move   MoveDTO `json:"move"`
}

// AiMoveRequest 给 game_id 时用对局当前局面，否则用 position + to_move
type AiMoveRequest struct {
	GameID     string `json:"game_id"`
	Position   string `json:"position"`
	ToMove     int    `json:"to_move"`
	Mode       string `json:"mode"` // rollout / guided，空则用服务端配置
	Iterations int    `json:"iterations"`
	Seed       uint64 `json:"seed"`
	Apply      bool   `json:"apply"` // 搜完直接在对局里落子
}

type AiMoveResponse struct {
	BestMove   *MoveDTO      `json:"best_move"`
	Mode       string        `json:"mode"`
	Value      float64       `json:"value"`
	WinProb    float32       `json:"win_prob"` // 红方胜率
	Iterations int           `json:"iterations"`
	Nodes      int           `json:"nodes"`
	TimeMs     int64         `json:"time_ms"`
	Position   string        `json:"position"` // 搜索时的局面
	ToMove     int           `json:"to_move"`
	Status     string        `json:"status"` // ok / no_moves / nn_error / 终局状态
	Game       *GameResponse `json:"game,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func sideToInt(s xiangqi.Side) int {
	switch s {
	case xiangqi.Red:
		return 0
	case xiangqi.Black:
		return 1
	default:
		return -1
	}
}

func intToSide(v int) xiangqi.Side {
	if v == 1 {
		return xiangqi.Black
	}
	return xiangqi.Red
}

func moveToDTO(m xiangqi.Move) MoveDTO {
	return MoveDTO{From: m.From, To: m.To}
}

func movesToDTO(ms []xiangqi.Move) []MoveDTO {
	out := make([]MoveDTO, len(ms))
	for i, m := range ms {
		out[i] = moveToDTO(m)
	}
	return out
}

func piecesToDTO(s *xiangqi.State) map[string][]xiangqi.Coord {
	pos := s.PiecePositions()
	out := make(map[string][]xiangqi.Coord, len(pos))
	for pc, cs := range pos {
		out[pc.String()] = cs
	}
	return out
}

func gameToDTO(g *game.GameState) GameResponse {
	s := g.State
	resp := GameResponse{
		GameID:     g.ID,
		Position:   s.Encode(),
		ToMove:     sideToInt(s.SideToMove),
		LegalMoves: movesToDTO(s.LegalMoves()),
		Status:     g.Status(),
		Check:      !s.Terminal && s.InCheck(s.SideToMove),
		NoCapture:  s.NoCapture,
		Pieces:     piecesToDTO(s),
		History:    movesToDTO(g.History),
	}
	if s.Terminal {
		resp.LegalMoves = []MoveDTO{}
	}
	if s.LastMove != xiangqi.NoMove {
		lm := moveToDTO(s.LastMove)
		resp.LastMove = &lm
	}
	return resp
}
