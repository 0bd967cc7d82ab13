package xiangqi

type destinationRule func(s *State, from Coord, out *[]Coord)

// 按子的种类查表
var destinationRules = [numPieceTypes]destinationRule{
	PieceGeneral:  genGeneralMoves,
	PieceAdvisor:  genAdvisorMoves,
	PieceElephant: genElephantMoves,
	PieceChariot:  genChariotMoves,
	PieceHorse:    genHorseMoves,
	PieceCannon:   genCannonMoves,
	PieceSoldier:  genSoldierMoves,
}

func ruleFor(pc Piece) destinationRule {
	pt := pc.Type()
	if pt <= PieceNone || int(pt) >= numPieceTypes {
		return nil
	}
	return destinationRules[pt]
}

// Destinations 返回 from 上那个子的所有落点（不管是否轮到它走）
func (s *State) Destinations(from Coord) []Coord {
	if !from.OnBoard() {
		return nil
	}
	pc := s.Board.At(from)
	if pc == 0 {
		return nil
	}
	rule := ruleFor(pc)
	if rule == nil {
		return nil
	}
	var out []Coord
	rule(s, from, &out)
	return out
}

// 生成指定一方的走法（伪合法：不过滤送将）
func (s *State) MovesForSide(side Side) []Move {
	var moves []Move
	var dests []Coord
	for sq := 0; sq < NumSquares; sq++ {
		pc := s.Board.Squares[sq]
		if pc == 0 || pc.Side() != side {
			continue
		}
		rule := ruleFor(pc)
		if rule == nil {
			continue
		}
		from := coordOf(sq)
		dests = dests[:0]
		rule(s, from, &dests)
		for _, to := range dests {
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}

// LegalMoves 当前走子方的全部走法，顺序与 Transitions 一致
func (s *State) LegalMoves() []Move {
	return s.MovesForSide(s.SideToMove)
}
