package xiangqi

// IsAttacked 判断 c 这个格子是否被 bySide 这一方攻击。
// 采用走法模拟：只要对方任何一个棋子能"走到"这个位置，就说明该位置被攻击。
func (s *State) IsAttacked(c Coord, bySide Side) bool {
	var dests []Coord
	for sq := 0; sq < NumSquares; sq++ {
		pc := s.Board.Squares[sq]
		if pc == 0 || pc.Side() != bySide {
			continue
		}

		// 士、象过不了河，也进不了对方九宫，不可能攻击到对方的将
		pt := pc.Type()
		if pt == PieceAdvisor || pt == PieceElephant {
			if !inOwnHalf(bySide, c.Row) {
				continue
			}
		}

		rule := ruleFor(pc)
		if rule == nil {
			continue
		}
		dests = dests[:0]
		rule(s, coordOf(sq), &dests)
		for _, d := range dests {
			if d == c {
				return true
			}
		}
	}
	return false
}

// InCheck 判断 side 这一方的将是否被将军。只用于展示，不参与走法过滤。
func (s *State) InCheck(side Side) bool {
	sq := s.generalSquare(side)
	if sq == -1 {
		return false
	}
	return s.IsAttacked(coordOf(sq), opposite(side))
}
