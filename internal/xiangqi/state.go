package xiangqi

import "errors"

// DrawNoCaptureLimit 连续不吃子步数达到该值即判和（不终局）
const DrawNoCaptureLimit = 60

var (
	ErrNotTerminal  = errors.New("game is ongoing")
	ErrNoLegalMoves = errors.New("side to move has no legal moves")
)

// State = 棋盘 + 轮到谁走 + 计数器。每步走子产生新的 State，旧的不变。
type State struct {
	Board      Board
	SideToMove Side
	LastMover  Side
	NoCapture  int
	Terminal   bool
	Winner     Side
	LastMove   Move
	Hash       uint64
}

func (s *State) Clone() *State {
	ns := *s
	return &ns
}

func (s *State) IsDraw() bool {
	return s.NoCapture >= DrawNoCaptureLimit
}

// ApplyMove 走子。
// 已终局：返回原样拷贝（不换边）。
// 非法走法：棋盘不动，但计数器照常 +1、照常换边。调用方必须先用 IsValidMove 校验。
func (s *State) ApplyMove(from, to Coord) *State {
	ns := s.Clone()
	if s.Terminal {
		return ns
	}

	z := keys()
	h := s.Hash
	if h == 0 {
		h = s.CalculateHash()
	}
	captured := false
	if s.IsValidMove(from, to) {
		fromSq := indexOf(from.Row, from.Col)
		toSq := indexOf(to.Row, to.Col)
		pc := s.Board.Squares[fromSq]
		target := s.Board.Squares[toSq]

		ns.Board.Squares[toSq] = pc
		ns.Board.Squares[fromSq] = 0
		ns.LastMove = Move{From: from, To: to}

		// 增量哈希：起点的子挪到终点，吃掉的子（空位键为 0）一并去掉
		h ^= z.at(pc, fromSq) ^ z.at(pc, toSq) ^ z.at(target, toSq)
		captured = target != 0

		if target.Type() == PieceGeneral {
			ns.Terminal = true
			ns.Winner = opposite(target.Side())
		}
	}

	if captured {
		ns.NoCapture = 0
	} else {
		ns.NoCapture++
	}
	ns.SideToMove, ns.LastMover = s.LastMover, s.SideToMove
	ns.Hash = h ^ z.black
	return ns
}

// IsValidMove 起点无子、不是当前方的子、或终点不在该子走法集合内 → false
func (s *State) IsValidMove(from, to Coord) bool {
	if !from.OnBoard() || !to.OnBoard() {
		return false
	}
	pc := s.Board.At(from)
	if pc == 0 || pc.Side() != s.SideToMove {
		return false
	}
	for _, d := range s.Destinations(from) {
		if d == to {
			return true
		}
	}
	return false
}

// Transitions 按行优先遍历当前方的子，逐个生成 (结果局面, 起点, 终点)
func (s *State) Transitions() []Transition {
	moves := s.LegalMoves()
	out := make([]Transition, 0, len(moves))
	for _, mv := range moves {
		out = append(out, Transition{
			State: s.ApplyMove(mv.From, mv.To),
			From:  mv.From,
			To:    mv.To,
		})
	}
	return out
}

// Outcome 终局得分：红胜 +1，黑胜 -1，和 0
func (s *State) Outcome() (float64, error) {
	if !s.Terminal {
		return 0, ErrNotTerminal
	}
	if s.IsDraw() {
		return 0, nil
	}
	switch s.Winner {
	case Red:
		return 1, nil
	case Black:
		return -1, nil
	}
	return 0, errors.New("terminal state without winner")
}

// PiecePositions 子 → 坐标列表（行优先）
func (s *State) PiecePositions() map[Piece][]Coord {
	out := make(map[Piece][]Coord)
	for sq, pc := range s.Board.Squares {
		if pc == 0 {
			continue
		}
		out[pc] = append(out[pc], coordOf(sq))
	}
	return out
}

func (s *State) GeneralExists(side Side) bool {
	return s.generalSquare(side) >= 0
}

func (s *State) generalSquare(side Side) int {
	for sq, pc := range s.Board.Squares {
		if pc != 0 && pc.Type() == PieceGeneral && pc.Side() == side {
			return sq
		}
	}
	return -1
}
