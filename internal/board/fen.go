package board

import (
	"strconv"
	"strings"
)

// StartFEN describes the initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN builds a Position from FEN text. The halfmove clock and fullmove
// number fields may be left out; they default to 0 and 1.
func ParseFEN(fen string) (*Position, error) {
	given := strings.Fields(fen)
	if n := len(given); n < 4 || n > 6 {
		return nil, fenError("need 4 to 6 fields, got %d", n)
	}
	fields := [6]string{4: "0", 5: "1"}
	copy(fields[:], given)

	pos := &Position{}
	if err := parsePiecePlacement(&pos.Board, fields[0]); err != nil {
		return nil, err
	}

	switch fields[1] {
	case "w", "b":
		pos.SideToMove = Color(strings.Index("wb", fields[1]))
	default:
		return nil, fenError("invalid side to move %q", fields[1])
	}

	var err error
	if pos.CastlingRights, err = parseCastlingRights(fields[2]); err != nil {
		return nil, err
	}
	if pos.EnPassant, err = parseEnPassant(&pos.Board, pos.SideToMove, fields[3]); err != nil {
		return nil, err
	}
	if pos.halfMoveBase, err = parseCounter(fields[4], "half-move clock"); err != nil {
		return nil, err
	}
	if pos.FullMoveNumber, err = parseCounter(fields[5], "full-move number"); err != nil {
		return nil, err
	}
	pos.FullMoveNumber = max(pos.FullMoveNumber, 1)

	if err := pos.Validate(); err != nil {
		return nil, fenError("%v", err)
	}
	pos.hash = pos.baseHash()
	return pos, nil
}

// parseEnPassant accepts a target only directly behind a pawn of the side
// that just moved, with both squares it crossed empty.
func parseEnPassant(b *Board, stm Color, field string) (Bitboard, error) {
	if field == "-" {
		return Empty, nil
	}
	sq, err := ParseSquare(field)
	if err != nil {
		return Empty, fenError("invalid en passant square %q", field)
	}
	mover := stm.Other()
	pawn, origin := sq+8, sq-8
	if mover == White {
		pawn, origin = sq-8, sq+8
	}
	if sq.RelativeRank(mover) != 2 {
		return Empty, fenError("en passant square %s does not fit %s to move", sq, stm)
	}
	if b.PieceAt(pawn) != NewPiece(Pawn, mover) || !b.IsEmpty(sq) || !b.IsEmpty(origin) {
		return Empty, fenError("en passant square %s without a double-pushed pawn", sq)
	}
	return SquareBB(sq), nil
}

func parseCounter(field, name string) (int, error) {
	n, err := strconv.Atoi(field)
	if err != nil || n < 0 {
		return 0, fenError("invalid %s %q", name, field)
	}
	return n, nil
}

// SetFEN replaces the position with the one described by fen and clears
// the history. On error the position is left untouched.
func (p *Position) SetFEN(fen string) error {
	next, err := ParseFEN(fen)
	if err != nil {
		return err
	}
	next.RecordSAN = p.RecordSAN
	next.pool = p.pool
	*p = *next
	return nil
}

// parsePiecePlacement fills b from the first FEN field, rank 8 first.
func parsePiecePlacement(b *Board, placement string) error {
	rows := strings.Split(placement, "/")
	if len(rows) != 8 {
		return fenError("need 8 ranks, got %d", len(rows))
	}

	for i, row := range rows {
		rank, file := 7-i, 0
		for j := 0; j < len(row); j++ {
			ch := row[j]
			if file > 7 {
				return fenError("too many squares in rank %d", rank+1)
			}
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			pc := PieceFromChar(ch)
			switch {
			case pc == NoPiece:
				return fenError("invalid piece character %q", ch)
			case pc.Type() == Pawn && (rank == 0 || rank == 7):
				return fenError("pawn on rank %d", rank+1)
			}
			b.AddPiece(pc.Type(), pc.Color(), NewSquare(file, rank))
			file++
		}
		if file != 8 {
			return fenError("rank %d has %d squares", rank+1, file)
		}
	}

	for _, c := range [...]Color{White, Black} {
		if n := b.PiecesOf(King, c).PopCount(); n != 1 {
			if n == 0 {
				return fenError("%s king missing", c)
			}
			return fenError("%s has %d kings", c, n)
		}
	}
	return nil
}

// ToFEN writes the position as FEN. The halfmove clock is rebuilt from the
// move history.
func (p *Position) ToFEN() string {
	return strings.Join([]string{
		p.Board.placement(),
		string("wb"[p.SideToMove]),
		p.CastlingRights.String(),
		p.EnPassantSquare().String(),
		strconv.Itoa(p.HalfMoveClock()),
		strconv.Itoa(p.FullMoveNumber),
	}, " ")
}

// placement renders the first FEN field.
func (b *Board) placement() string {
	buf := make([]byte, 0, 72)
	for rank := 7; rank >= 0; rank-- {
		gap := byte(0)
		for file := 0; file < 8; file++ {
			pc := b.PieceAt(NewSquare(file, rank))
			if pc == NoPiece {
				gap++
				continue
			}
			if gap > 0 {
				buf = append(buf, '0'+gap)
				gap = 0
			}
			buf = append(buf, pieceLetters[pc])
		}
		if gap > 0 {
			buf = append(buf, '0'+gap)
		}
		if rank > 0 {
			buf = append(buf, '/')
		}
	}
	return string(buf)
}
