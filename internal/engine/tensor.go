package engine

import (
	"xiangqi/internal/xiangqi"
)

// 网络输入 [1, 10, 9, 9]：行 × 列 × 特征平面（通道在最后）
const (
	TensorRows   = xiangqi.Rows
	TensorCols   = xiangqi.Cols
	TensorPlanes = 9
	TensorSize   = TensorRows * TensorCols * TensorPlanes

	planeLastMove = 7
	planeTurn     = 8
)

// 平面顺序 R N B A K C P
var piecePlane = [...]int{
	xiangqi.PieceChariot:  0,
	xiangqi.PieceHorse:    1,
	xiangqi.PieceElephant: 2,
	xiangqi.PieceAdvisor:  3,
	xiangqi.PieceGeneral:  4,
	xiangqi.PieceCannon:   5,
	xiangqi.PieceSoldier:  6,
}

func tensorIndex(row, col, plane int) int {
	return (row*TensorCols+col)*TensorPlanes + plane
}

// EncodeTensor 写入 dst（长度至少 TensorSize），会先清零。
// 0-6：子力，红 +1 黑 -1；7：上一步，起点 -1 终点 +1；8：红方走棋时全 1。
func EncodeTensor(s *xiangqi.State, dst []float32) {
	dst = dst[:TensorSize]
	for i := range dst {
		dst[i] = 0
	}

	for r := 0; r < xiangqi.Rows; r++ {
		for c := 0; c < xiangqi.Cols; c++ {
			pc := s.Board.At(xiangqi.Coord{Row: r, Col: c})
			if pc == 0 {
				continue
			}
			v := float32(1)
			if pc.Side() == xiangqi.Black {
				v = -1
			}
			dst[tensorIndex(r, c, piecePlane[pc.Type()])] = v
		}
	}

	if lm := s.LastMove; lm != xiangqi.NoMove && lm.From.OnBoard() && lm.To.OnBoard() {
		dst[tensorIndex(lm.From.Row, lm.From.Col, planeLastMove)] = -1
		dst[tensorIndex(lm.To.Row, lm.To.Col, planeLastMove)] = 1
	}

	if s.SideToMove == xiangqi.Red {
		for r := 0; r < TensorRows; r++ {
			for c := 0; c < TensorCols; c++ {
				dst[tensorIndex(r, c, planeTurn)] = 1
			}
		}
	}
}

// NewTensor 分配并编码
func NewTensor(s *xiangqi.State) []float32 {
	out := make([]float32, TensorSize)
	EncodeTensor(s, out)
	return out
}
