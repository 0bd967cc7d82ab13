package xiangqi

import (
	"errors"
	"strings"
)

// Encode 90 个字符，行优先，一格一个字符；'_' 为空。
// 不包含走子方与计数器，所以走子方不同而子力相同的局面指纹相同。
func (s *State) Encode() string {
	var sb strings.Builder
	sb.Grow(NumSquares)
	for sq := 0; sq < NumSquares; sq++ {
		sb.WriteRune(pieceToChar(s.Board.Squares[sq]))
	}
	return sb.String()
}

var ErrInvalidFingerprint = errors.New("invalid fingerprint")

// Decode 由指纹和走子方还原局面；计数器清零，LastMove 为 NoMove
func Decode(fingerprint string, side Side) (*State, error) {
	if len(fingerprint) != NumSquares {
		return nil, ErrInvalidFingerprint
	}
	if side != Red && side != Black {
		return nil, ErrInvalidFingerprint
	}
	var b Board
	for sq, ch := range fingerprint {
		pc, ok := charToPiece(ch)
		if !ok {
			return nil, ErrInvalidFingerprint
		}
		b.Squares[sq] = pc
	}
	s := &State{
		Board:      b,
		SideToMove: side,
		LastMover:  opposite(side),
		Winner:     NoSide,
		LastMove:   NoMove,
	}
	s.Hash = s.CalculateHash()
	return s, nil
}

// String 每行一个 rank，方便日志和测试失败时查看
func (s *State) String() string {
	enc := s.Encode()
	var sb strings.Builder
	for r := 0; r < Rows; r++ {
		sb.WriteString(enc[r*Cols : (r+1)*Cols])
		sb.WriteByte('\n')
	}
	return sb.String()
}
