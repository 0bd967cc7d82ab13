package xiangqi

import (
	"strings"
	"unicode"
)

const (
	Rows       = 10
	Cols       = 9
	NumSquares = Rows * Cols

	// 河界：黑方 0-4 行，红方 5-9 行
	RiverBlack = 4
	RiverRed   = 5
)

func indexOf(row, col int) int { return row*Cols + col }
func rowOf(sq int) int         { return sq / Cols }
func colOf(sq int) int         { return sq % Cols }

func coordOf(sq int) Coord { return Coord{Row: rowOf(sq), Col: colOf(sq)} }

func onBoard(row, col int) bool {
	return row >= 0 && row < Rows && col >= 0 && col < Cols
}

func opposite(side Side) Side {
	if side == Red {
		return Black
	}
	if side == Black {
		return Red
	}
	return NoSide
}

// 兵的前进方向：红向上(-1)，黑向下(+1)
func soldierDir(side Side) int {
	if side == Red {
		return -1
	}
	if side == Black {
		return +1
	}
	return 0
}

// 是否已经过河
func soldierCrossed(side Side, row int) bool {
	if side == Red {
		return row <= RiverBlack
	}
	if side == Black {
		return row >= RiverRed
	}
	return false
}

// 象不能过河：只能停在己方半场
func inOwnHalf(side Side, row int) bool {
	if side == Black {
		return row >= 0 && row <= RiverBlack
	}
	if side == Red {
		return row >= RiverRed && row < Rows
	}
	return false
}

// 是否在九宫
func inPalace(side Side, row, col int) bool {
	if col < 3 || col > 5 {
		return false
	}
	if side == Black {
		return row >= 0 && row <= 2
	}
	if side == Red {
		return row >= 7 && row <= 9
	}
	return false
}

const emptyChar = '_'

var letterToPieceType = map[rune]PieceType{
	'k': PieceGeneral,  // 将 general
	'a': PieceAdvisor,  // 士 advisor
	'b': PieceElephant, // 象 elephant
	'r': PieceChariot,  // 车 chariot
	'n': PieceHorse,    // 马 horse
	'c': PieceCannon,   // 炮 cannon
	'p': PieceSoldier,  // 卒 soldier
}

var pieceTypeToLetter = [numPieceTypes]rune{
	PieceGeneral:  'k',
	PieceAdvisor:  'a',
	PieceElephant: 'b',
	PieceChariot:  'r',
	PieceHorse:    'n',
	PieceCannon:   'c',
	PieceSoldier:  'p',
}

func pieceToChar(p Piece) rune {
	if p == 0 {
		return emptyChar
	}
	pt := p.Type()
	if pt <= PieceNone || int(pt) >= numPieceTypes {
		return emptyChar
	}
	base := pieceTypeToLetter[pt]
	if p.Side() == Red {
		return unicode.ToUpper(base)
	}
	return base
}

func charToPiece(ch rune) (Piece, bool) {
	if ch == emptyChar {
		return 0, true
	}
	pt, ok := letterToPieceType[unicode.ToLower(ch)]
	if !ok {
		return 0, false
	}
	side := Black
	if unicode.IsUpper(ch) {
		side = Red
	}
	return MakePiece(side, pt), true
}

// 标准开局
const initialBoardString = `rnbakabnr
_________
_c_____c_
p_p_p_p_p
_________
_________
P_P_P_P_P
_C_____C_
_________
RNBAKABNR`

func parseInitialBoard() Board {
	var b Board
	lines := make([]string, 0, Rows)
	for _, line := range strings.Split(initialBoardString, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) != Rows {
		panic("initialBoardString 行数不为 10")
	}
	for r := 0; r < Rows; r++ {
		if len(lines[r]) != Cols {
			panic("initialBoardString 列数不为 9")
		}
		for c, ch := range lines[r] {
			pc, ok := charToPiece(ch)
			if !ok {
				panic("unknown piece letter: " + string(ch))
			}
			b.Squares[indexOf(r, c)] = pc
		}
	}
	return b
}

// NewInitialState 红先
func NewInitialState() *State {
	s := &State{
		Board:      parseInitialBoard(),
		SideToMove: Red,
		LastMover:  Black,
		Winner:     NoSide,
		LastMove:   NoMove,
	}
	s.Hash = s.CalculateHash()
	return s
}
