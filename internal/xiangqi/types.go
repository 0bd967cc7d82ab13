package xiangqi

type Side int8

const (
	NoSide Side = -1
	Red    Side = 0
	Black  Side = 1
)

func (s Side) String() string {
	switch s {
	case Red:
		return "red"
	case Black:
		return "black"
	}
	return "none"
}

// Opponent 返回对方；NoSide 仍为 NoSide
func (s Side) Opponent() Side {
	return opposite(s)
}

type PieceType int8

const (
	PieceNone     PieceType = iota
	PieceGeneral            // 将 / 帅
	PieceAdvisor            // 士 / 仕
	PieceElephant           // 象 / 相
	PieceChariot            // 车
	PieceHorse              // 马
	PieceCannon             // 炮
	PieceSoldier            // 卒 / 兵

	numPieceTypes = iota
)

type Piece int8 // 0=空；>0 红；<0 黑；abs=PieceType

func MakePiece(side Side, pt PieceType) Piece {
	if pt == PieceNone || side == NoSide {
		return 0
	}
	if side == Red {
		return Piece(pt)
	}
	return -Piece(pt)
}

func (p Piece) Type() PieceType {
	if p < 0 {
		return PieceType(-p)
	}
	return PieceType(p)
}

func (p Piece) Side() Side {
	if p == 0 {
		return NoSide
	}
	if p > 0 {
		return Red
	}
	return Black
}

func (p Piece) String() string {
	return string(pieceToChar(p))
}

// Coord 棋盘坐标：Row 0 是黑方底线，Row 9 是红方底线
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coord) OnBoard() bool {
	return onBoard(c.Row, c.Col)
}

type Board struct {
	Squares [NumSquares]Piece
}

func (b *Board) At(c Coord) Piece {
	return b.Squares[indexOf(c.Row, c.Col)]
}

type Move struct {
	From Coord `json:"from"`
	To   Coord `json:"to"`
}

// NoMove 初始局面（或解码局面）的 LastMove
var NoMove = Move{From: Coord{-1, -1}, To: Coord{-1, -1}}

// Transition 一个合法走法及其结果局面
type Transition struct {
	State *State
	From  Coord
	To    Coord
}

func (t Transition) Move() Move {
	return Move{From: t.From, To: t.To}
}
