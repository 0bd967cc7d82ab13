package xiangqi

var orthogonalDirs = [4][2]int{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}

var advisorDirs = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}

var elephantDirs = [4][2]int{{-2, -2}, {-2, 2}, {2, -2}, {2, 2}}

// 终点为空或为敌子
func canLand(s *State, side Side, r, c int) bool {
	dst := s.Board.Squares[indexOf(r, c)]
	return dst == 0 || dst.Side() != side
}

// 车：横竖随便走，遇子停，敌子可吃
func genChariotMoves(s *State, from Coord, out *[]Coord) {
	side := s.Board.At(from).Side()
	for _, d := range orthogonalDirs {
		r, c := from.Row+d[0], from.Col+d[1]
		for onBoard(r, c) {
			pc := s.Board.Squares[indexOf(r, c)]
			if pc == 0 {
				*out = append(*out, Coord{r, c})
			} else {
				if pc.Side() != side {
					*out = append(*out, Coord{r, c})
				}
				break
			}
			r += d[0]
			c += d[1]
		}
	}
}

// 炮：空格照走；隔一个炮架后遇到的第一个子若是敌子可吃
func genCannonMoves(s *State, from Coord, out *[]Coord) {
	side := s.Board.At(from).Side()
	for _, d := range orthogonalDirs {
		r, c := from.Row+d[0], from.Col+d[1]
		screened := false
		for onBoard(r, c) {
			pc := s.Board.Squares[indexOf(r, c)]
			if !screened {
				if pc == 0 {
					*out = append(*out, Coord{r, c})
				} else {
					screened = true
				}
			} else if pc != 0 {
				if pc.Side() != side {
					*out = append(*out, Coord{r, c})
				}
				break
			}
			r += d[0]
			c += d[1]
		}
	}
}

// 象：田字，不过河，塞象眼
func genElephantMoves(s *State, from Coord, out *[]Coord) {
	side := s.Board.At(from).Side()
	for _, d := range elephantDirs {
		r, c := from.Row+d[0], from.Col+d[1]
		if !onBoard(r, c) || !inOwnHalf(side, r) {
			continue
		}
		if s.Board.Squares[indexOf(from.Row+d[0]/2, from.Col+d[1]/2)] != 0 {
			continue
		}
		if canLand(s, side, r, c) {
			*out = append(*out, Coord{r, c})
		}
	}
}

// 士：九宫内斜走一格
func genAdvisorMoves(s *State, from Coord, out *[]Coord) {
	side := s.Board.At(from).Side()
	for _, d := range advisorDirs {
		r, c := from.Row+d[0], from.Col+d[1]
		if !onBoard(r, c) || !inPalace(side, r, c) {
			continue
		}
		if canLand(s, side, r, c) {
			*out = append(*out, Coord{r, c})
		}
	}
}

// 将：九宫内上下左右一格。
// 飞将只单向扫描：红帅只在考虑"向上一步"时往上找黑将，黑将只在"向下一步"时往下找红帅。
func genGeneralMoves(s *State, from Coord, out *[]Coord) {
	side := s.Board.At(from).Side()
	for _, d := range orthogonalDirs {
		r, c := from.Row+d[0], from.Col+d[1]
		if !onBoard(r, c) {
			continue
		}
		if inPalace(side, r, c) && canLand(s, side, r, c) {
			*out = append(*out, Coord{r, c})
		}

		flying := (side == Red && d[0] == -1) || (side == Black && d[0] == 1)
		if !flying {
			continue
		}
		enemy := MakePiece(opposite(side), PieceGeneral)
		for fr := r; onBoard(fr, c); fr += d[0] {
			pc := s.Board.Squares[indexOf(fr, c)]
			if pc == enemy {
				*out = append(*out, Coord{fr, c})
				break
			}
			if pc != 0 {
				break
			}
		}
	}
}
