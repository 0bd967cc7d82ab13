package game

import (
	"time"

	"xiangqi/internal/xiangqi"
)

type GameState struct {
	ID        string
	State     *xiangqi.State
	History   []xiangqi.Move
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status 前端用的对局状态
func (g *GameState) Status() string {
	return StatusOf(g.State)
}

const (
	StatusOngoing  = "ongoing"
	StatusRedWin   = "red_win"
	StatusBlackWin = "black_win"
	StatusDraw     = "draw"
	StatusNoMoves  = "no_moves"
)

// StatusOf 没有困毙规则，无子可走单独报告
func StatusOf(s *xiangqi.State) string {
	switch {
	case s.Terminal && s.Winner == xiangqi.Red:
		return StatusRedWin
	case s.Terminal && s.Winner == xiangqi.Black:
		return StatusBlackWin
	case s.IsDraw():
		return StatusDraw
	case len(s.LegalMoves()) == 0:
		return StatusNoMoves
	}
	return StatusOngoing
}
