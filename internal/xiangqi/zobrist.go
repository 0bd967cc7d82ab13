package xiangqi

import (
	"sync"

	"golang.org/x/exp/rand"
)

// 固定种子：同一局面在任何进程里哈希相同，记录和日志里的哈希可以互相对照
const zobristSeed = 0x5851F42D4C957F2D

// 键表按 Piece 的取值直接下标：Piece(-7..7) + pieceOffset
const pieceOffset = numPieceTypes - 1

type zobristKeys struct {
	piece    [2*numPieceTypes - 1][NumSquares]uint64
	black    uint64 // 黑方走
	from, to [NumSquares]uint64
}

var (
	zkeys     zobristKeys
	zkeysOnce sync.Once
)

func keys() *zobristKeys {
	zkeysOnce.Do(func() {
		r := rand.New(rand.NewSource(zobristSeed))
		for i := range zkeys.piece {
			if i == pieceOffset {
				continue // 空位恒为 0
			}
			for sq := range zkeys.piece[i] {
				zkeys.piece[i][sq] = r.Uint64()
			}
		}
		zkeys.black = r.Uint64()
		for sq := 0; sq < NumSquares; sq++ {
			zkeys.from[sq] = r.Uint64()
			zkeys.to[sq] = r.Uint64()
		}
	})
	return &zkeys
}

func (z *zobristKeys) at(pc Piece, sq int) uint64 {
	return z.piece[int(pc)+pieceOffset][sq]
}

// CalculateHash 从头算 Zobrist 哈希：棋子 + 走子方。计数器、上一步都不算在内。
// ApplyMove 增量维护 State.Hash，结果应与这里一致。
func (s *State) CalculateHash() uint64 {
	z := keys()
	var h uint64
	for sq, pc := range s.Board.Squares {
		h ^= z.at(pc, sq)
	}
	if s.SideToMove == Black {
		h ^= z.black
	}
	return h
}

// PositionKey 在 Hash 之上再混入上一步。
// 评估网络的输入含上一步，所以按评估结果做缓存时要用它而不是 Hash。
func (s *State) PositionKey() uint64 {
	h := s.Hash
	if h == 0 {
		h = s.CalculateHash()
	}
	if s.LastMove == NoMove {
		return h
	}
	z := keys()
	return h ^ z.from[indexOf(s.LastMove.From.Row, s.LastMove.From.Col)] ^ z.to[indexOf(s.LastMove.To.Row, s.LastMove.To.Col)]
}
