// Package render 终端棋盘
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"xiangqi/internal/xiangqi"
)

var (
	redGlyphs = map[xiangqi.PieceType]string{
		xiangqi.PieceGeneral:  "帥",
		xiangqi.PieceAdvisor:  "仕",
		xiangqi.PieceElephant: "相",
		xiangqi.PieceChariot:  "俥",
		xiangqi.PieceHorse:    "傌",
		xiangqi.PieceCannon:   "炮",
		xiangqi.PieceSoldier:  "兵",
	}
	blackGlyphs = map[xiangqi.PieceType]string{
		xiangqi.PieceGeneral:  "將",
		xiangqi.PieceAdvisor:  "士",
		xiangqi.PieceElephant: "象",
		xiangqi.PieceChariot:  "車",
		xiangqi.PieceHorse:    "馬",
		xiangqi.PieceCannon:   "砲",
		xiangqi.PieceSoldier:  "卒",
	}
)

type Options struct {
	ASCII    bool // 用 KABRNCP 字母，终端不支持中文时
	LastMove bool // 高亮上一步的起点终点
}

type Renderer struct {
	opts  Options
	red   *color.Color
	black *color.Color
	mark  *color.Color
	dim   *color.Color
}

func New(opts Options) *Renderer {
	return &Renderer{
		opts:  opts,
		red:   color.New(color.FgRed, color.Bold),
		black: color.New(color.FgHiWhite, color.Bold),
		mark:  color.New(color.BgYellow),
		dim:   color.New(color.FgHiBlack),
	}
}

// Render 行号用 9..0，列号 a..i，与走法标签一致
func (r *Renderer) Render(w io.Writer, s *xiangqi.State) error {
	var cells [xiangqi.Rows][xiangqi.Cols]string
	for row := range cells {
		for col := range cells[row] {
			cells[row][col] = r.empty()
		}
	}
	for pc, coords := range s.PiecePositions() {
		for _, c := range coords {
			cells[c.Row][c.Col] = r.piece(pc)
		}
	}
	if r.opts.LastMove && s.LastMove != xiangqi.NoMove {
		for _, c := range []xiangqi.Coord{s.LastMove.From, s.LastMove.To} {
			if c.OnBoard() {
				cells[c.Row][c.Col] = r.mark.Sprint(cells[c.Row][c.Col])
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(r.fileHeader())
	for row := 0; row < xiangqi.Rows; row++ {
		fmt.Fprintf(&sb, "%d ", xiangqi.Rows-1-row)
		sb.WriteString(strings.Join(cells[row][:], " "))
		sb.WriteByte('\n')
		if row == 4 {
			sb.WriteString(r.dim.Sprint(r.river()))
			sb.WriteByte('\n')
		}
	}
	sb.WriteString(r.fileHeader())
	_, err := io.WriteString(w, sb.String())
	return err
}

// Status 一行局面状态
func Status(s *xiangqi.State) string {
	switch {
	case s.Terminal && s.Winner == xiangqi.Red:
		return "红方胜"
	case s.Terminal && s.Winner == xiangqi.Black:
		return "黑方胜"
	case s.IsDraw():
		return "和棋"
	}
	side := "红方"
	if s.SideToMove == xiangqi.Black {
		side = "黑方"
	}
	if s.InCheck(s.SideToMove) {
		return side + "走（被将军）"
	}
	return side + "走"
}

func (r *Renderer) piece(pc xiangqi.Piece) string {
	if r.opts.ASCII {
		if pc.Side() == xiangqi.Red {
			return r.red.Sprint(pc.String())
		}
		return r.black.Sprint(pc.String())
	}
	if pc.Side() == xiangqi.Red {
		return r.red.Sprint(redGlyphs[pc.Type()])
	}
	return r.black.Sprint(blackGlyphs[pc.Type()])
}

func (r *Renderer) empty() string {
	if r.opts.ASCII {
		return r.dim.Sprint(".")
	}
	return r.dim.Sprint("．")
}

func (r *Renderer) fileHeader() string {
	var sb strings.Builder
	sb.WriteString("  ")
	for col := 0; col < xiangqi.Cols; col++ {
		if col > 0 {
			sb.WriteByte(' ')
		}
		if r.opts.ASCII {
			sb.WriteByte(byte('a' + col))
		} else {
			// 全角字母与棋子同宽
			sb.WriteRune(rune('ａ' + col))
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}

func (r *Renderer) river() string {
	if r.opts.ASCII {
		return "  " + strings.Repeat("~", 2*xiangqi.Cols-1)
	}
	return "  ～～～～楚河　　漢界～～～～"
}
