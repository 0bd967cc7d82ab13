package xiangqi

// 兵：只进不退；过河后可左右平移一格
func genSoldierMoves(s *State, from Coord, out *[]Coord) {
	pc := s.Board.At(from)
	if pc == 0 {
		return
	}
	side := pc.Side()

	dirs := make([][2]int, 0, 3)
	dirs = append(dirs, [2]int{soldierDir(side), 0})
	if soldierCrossed(side, from.Row) {
		dirs = append(dirs, [2]int{0, 1}, [2]int{0, -1})
	}

	for _, d := range dirs {
		r, c := from.Row+d[0], from.Col+d[1]
		if !onBoard(r, c) {
			continue
		}
		if canLand(s, side, r, c) {
			*out = append(*out, Coord{r, c})
		}
	}
}
