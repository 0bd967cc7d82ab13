package xiangqi

// 马 8 种"日"字：终点 + 马腿（落在走两格的那条轴上）
var horseLegMoves = [8]struct {
	Dr, Dc int // 终点
	Br, Bc int // 马腿
}{
	{-1, -2, 0, -1},
	{+1, -2, 0, -1},
	{-1, +2, 0, +1},
	{+1, +2, 0, +1},
	{-2, -1, -1, 0},
	{-2, +1, -1, 0},
	{+2, -1, +1, 0},
	{+2, +1, +1, 0},
}

func genHorseMoves(s *State, from Coord, out *[]Coord) {
	side := s.Board.At(from).Side()
	for _, m := range horseLegMoves {
		r := from.Row + m.Dr
		c := from.Col + m.Dc
		if !onBoard(r, c) {
			continue
		}
		if s.Board.Squares[indexOf(from.Row+m.Br, from.Col+m.Bc)] != 0 {
			continue // 憋马腿
		}
		if canLand(s, side, r, c) {
			*out = append(*out, Coord{r, c})
		}
	}
}
