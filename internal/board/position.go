package board

import (
	"fmt"
	"log"
	"strings"
)

// Position is a chess position with its move history. It owns scratch
// buffers for move verification and is not safe for concurrent use; callers
// wanting parallelism work on separate copies.
type Position struct {
	Board

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Bitboard // target square behind a pawn that just double-pushed, or Empty
	FullMoveNumber int

	// RecordSAN makes the Make* methods keep a SAN record of played moves.
	RecordSAN bool

	halfMoveBase int    // halfmove clock of the position the history starts from
	hash         uint64 // incremental key, castling rights folded in by Hash
	history      []Move
	sanHistory   []string
	pool         scratchPool
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	pos, _ := ParseFEN(StartFEN)
	return pos
}

// Copy returns an independent deep copy of the position.
func (p *Position) Copy() *Position {
	c := &Position{
		Board:          p.Board,
		SideToMove:     p.SideToMove,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		FullMoveNumber: p.FullMoveNumber,
		RecordSAN:      p.RecordSAN,
		halfMoveBase:   p.halfMoveBase,
		hash:           p.hash,
	}
	c.history = append([]Move(nil), p.history...)
	c.sanHistory = append([]string(nil), p.sanHistory...)
	return c
}

// Hash returns the Zobrist key of the position.
func (p *Position) Hash() uint64 {
	return p.hash ^ zobrist.castlingKey(p.CastlingRights)
}

// ComputeHash computes the Zobrist key from scratch.
func (p *Position) ComputeHash() uint64 {
	return p.baseHash() ^ zobrist.castlingKey(p.CastlingRights)
}

// baseHash hashes everything except castling rights.
func (p *Position) baseHash() uint64 {
	var h uint64
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.PiecesOf(pt, c)
			for bb != 0 {
				h ^= zobrist.piece[c][pt][bb.PopLSB()]
			}
		}
	}
	if p.EnPassant != 0 {
		h ^= zobrist.enPassant[p.EnPassant.LSB().File()]
	}
	if p.SideToMove == Black {
		h ^= zobrist.blackToMove
	}
	return h
}

// EnPassantSquare returns the en-passant target square, or NoSquare.
func (p *Position) EnPassantSquare() Square {
	return p.EnPassant.LSB()
}

func (p *Position) addPiece(pt PieceType, c Color, sq Square) {
	p.AddPiece(pt, c, sq)
	p.hash ^= zobrist.piece[c][pt][sq]
}

func (p *Position) removePiece(pt PieceType, c Color, sq Square) {
	p.RemovePiece(pt, c, sq)
	p.hash ^= zobrist.piece[c][pt][sq]
}

func (p *Position) setEnPassant(ep Bitboard) {
	if p.EnPassant != 0 {
		p.hash ^= zobrist.enPassant[p.EnPassant.LSB().File()]
	}
	p.EnPassant = ep
	if ep != 0 {
		p.hash ^= zobrist.enPassant[ep.LSB().File()]
	}
}

// play applies a generated move. The move is trusted; legality is the
// caller's business.
func (p *Position) play(m Move) {
	us := m.Side()
	them := us.Other()
	from, to := m.From(), m.To()

	p.setEnPassant(Empty)

	switch m.Kind() {
	case KindNull:
	case KindCastleShort, KindCastleLong:
		rookFrom, rookTo := m.CastlingRookSquares()
		p.removePiece(King, us, from)
		p.removePiece(Rook, us, rookFrom)
		p.addPiece(King, us, to)
		p.addPiece(Rook, us, rookTo)
		p.CastlingRights = p.CastlingRights.Without(us)
	default:
		if m.IsEnPassant() {
			p.removePiece(Pawn, them, m.EnPassantCaptureSquare())
		} else if captured := m.Captured(); captured != NoPieceType {
			p.removePiece(captured, them, to)
		}
		p.removePiece(m.Piece(), us, from)
		p.addPiece(m.PlacedPiece(), us, to)

		if m.Kind() == KindKing {
			p.CastlingRights = p.CastlingRights.Without(us)
		}
		p.CastlingRights = p.CastlingRights.WithoutRookSquare(from).WithoutRookSquare(to)

		if m.IsDoublePush() {
			p.setEnPassant(SquareBB(Square((int(from) + int(to)) / 2)))
		}
	}

	p.SideToMove = them
	p.hash ^= zobrist.blackToMove
	if us == Black && !m.IsNull() {
		p.FullMoveNumber++
	}
	p.history = append(p.history, m)
}

// unplay reverts the last move of the history.
func (p *Position) unplay() Move {
	m := p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]

	us := m.Side()
	them := us.Other()
	from, to := m.From(), m.To()

	p.SideToMove = us
	p.hash ^= zobrist.blackToMove
	if us == Black && !m.IsNull() {
		p.FullMoveNumber--
	}

	switch m.Kind() {
	case KindNull:
	case KindCastleShort, KindCastleLong:
		rookFrom, rookTo := m.CastlingRookSquares()
		p.removePiece(King, us, to)
		p.removePiece(Rook, us, rookTo)
		p.addPiece(King, us, from)
		p.addPiece(Rook, us, rookFrom)
	default:
		p.removePiece(m.PlacedPiece(), us, to)
		p.addPiece(m.Piece(), us, from)
		if m.IsEnPassant() {
			p.addPiece(Pawn, them, m.EnPassantCaptureSquare())
		} else if captured := m.Captured(); captured != NoPieceType {
			p.addPiece(captured, them, to)
		}
	}

	p.CastlingRights = m.CastlingBefore()
	ep := Empty
	if sq := m.EnPassantBefore(); sq != NoSquare {
		ep = SquareBB(sq)
	}
	p.setEnPassant(ep)
	return m
}

// MakeMove plays m if it matches a legal move of the position (by Same) and
// returns the fully annotated legal move.
func (p *Position) MakeMove(m Move) (Move, error) {
	legal := p.GenerateLegalMoves()
	found, ok := legal.Find(m)
	if !ok {
		return NoMove, p.invalidMove(m.String())
	}
	p.commit(found, legal)
	return found, nil
}

// MakeMoveCoords plays the legal move with the given coordinates. promo must
// name the promotion piece for promotions and be NoPieceType otherwise.
func (p *Position) MakeMoveCoords(from, to Square, promo PieceType) (Move, error) {
	legal := p.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		if m.From() != from || m.To() != to {
			continue
		}
		if m.IsPromotion() != (promo != NoPieceType) || (promo != NoPieceType && m.Promotion() != promo) {
			continue
		}
		p.commit(m, legal)
		return m, nil
	}
	text := from.String() + to.String()
	if promo != NoPieceType {
		text += strings.ToLower(string(promo.Letter()))
	}
	return NoMove, p.invalidMove(text)
}

// MakeMoveUCI plays a move given in coordinate notation ("e2e4", "e7e8q").
func (p *Position) MakeMoveUCI(s string) (Move, error) {
	from, to, promo, err := ParseMove(s)
	if err != nil {
		return NoMove, p.invalidMove(s)
	}
	return p.MakeMoveCoords(from, to, promo)
}

// MakeMoveSAN plays a move given in standard algebraic notation. The text
// is matched against the SAN of every legal move, first exactly and then
// with check and mate suffixes ignored; text matching several moves is
// rejected.
func (p *Position) MakeMoveSAN(s string) (Move, error) {
	legal := p.GenerateLegalMoves()
	moves := legal.Slice()
	want := strings.TrimRight(s, "+#")

	match, matches := NoMove, 0
	for _, m := range moves {
		san := FormatSAN(m, moves)
		if san == s {
			p.commit(m, legal)
			return m, nil
		}
		if strings.TrimRight(san, "+#") == want {
			match = m
			matches++
		}
	}
	if matches != 1 {
		return NoMove, p.invalidMove(s)
	}
	p.commit(match, legal)
	return match, nil
}

func (p *Position) commit(m Move, legal *MoveList) {
	san := ""
	if p.RecordSAN {
		san = FormatSAN(m, legal.Slice())
	}
	p.play(m)
	p.sanHistory = append(p.sanHistory, san)
	p.checkHash("make", m)
}

func (p *Position) invalidMove(text string) error {
	if DebugMoveValidation {
		log.Printf("MAKEMOVE: rejected %q in %s", text, p.ToFEN())
	}
	return &InvalidMoveError{Move: text, FEN: p.ToFEN()}
}

// UndoMove reverts the last move and returns it. With an empty history it
// does nothing and returns false.
func (p *Position) UndoMove() (Move, bool) {
	if len(p.history) == 0 {
		return NoMove, false
	}
	m := p.unplay()
	p.sanHistory = p.sanHistory[:len(p.sanHistory)-1]
	p.checkHash("undo", m)
	return m, true
}

// MakeNullMove passes the turn. The null move is recorded in the history
// and reverted by UndoMove like any other move.
func (p *Position) MakeNullMove() Move {
	m := newMove(0, 0, KindNull, p.SideToMove, NoPieceType, p.CastlingRights, p.EnPassant)
	p.play(m)
	san := ""
	if p.RecordSAN {
		san = "--"
	}
	p.sanHistory = append(p.sanHistory, san)
	return m
}

func (p *Position) checkHash(op string, m Move) {
	if !DebugMoveValidation {
		return
	}
	if want := p.ComputeHash(); want != p.Hash() {
		log.Printf("%s %s: hash drift, have=%016x want=%016x fen=%s", op, m, p.Hash(), want, p.ToFEN())
	}
	if err := p.Board.Validate(); err != nil {
		log.Printf("%s %s: %v", op, m, err)
	}
}

// History returns a copy of the moves played, oldest first.
func (p *Position) History() []Move {
	return append([]Move(nil), p.history...)
}

// LastMove returns the most recent move, or NoMove.
func (p *Position) LastMove() Move {
	if len(p.history) == 0 {
		return NoMove
	}
	return p.history[len(p.history)-1]
}

// SANHistory returns the SAN record of the moves played. Entries are empty
// for moves played while RecordSAN was off.
func (p *Position) SANHistory() []string {
	return append([]string(nil), p.sanHistory...)
}

// HalfMoveClock returns the number of halfmoves since the last pawn move or
// capture, counting back through the history to the starting position.
func (p *Position) HalfMoveClock() int {
	n := 0
	for i := len(p.history) - 1; i >= 0; i-- {
		m := p.history[i]
		if !m.IsNull() && (m.Piece() == Pawn || m.IsCapture()) {
			return n
		}
		n++
	}
	return p.halfMoveBase + n
}

// GenerateLegalMoves returns every legal move, each flagged for check and
// mate.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generate(ml, NoPieceType, true)
	return ml
}

// GenerateLegalMovesOf returns the legal moves of one piece class. Castling
// belongs to the king, promotions to the pawn.
func (p *Position) GenerateLegalMovesOf(pt PieceType) *MoveList {
	ml := NewMoveList()
	p.generate(ml, pt, true)
	return ml
}

func (p *Position) generate(dst *MoveList, only PieceType, annotate bool) {
	g := newGenerator(&p.Board, p.SideToMove, p.CastlingRights, p.EnPassant)
	g.only = only
	g.flagChecks = annotate

	pseudo := p.pool.get()
	g.generate(pseudo)
	g.verify(dst, pseudo, annotate, &p.pool)
	p.pool.put(pseudo)
}

// CheckState reports whether the side to move is in check, and by how many
// pieces.
func (p *Position) CheckState() CheckState {
	g := newGenerator(&p.Board, p.SideToMove, p.CastlingRights, p.EnPassant)
	return g.checkState()
}

// Checkers returns the enemy pieces giving check to the side to move.
func (p *Position) Checkers() Bitboard {
	ksq := p.KingSquare(p.SideToMove)
	if ksq == NoSquare {
		return Empty
	}
	return p.AttackersOf(ksq, p.SideToMove.Other())
}

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	return p.Checkers() != 0
}

// HasLegalMoves returns true if the side to move has at least one legal move.
func (p *Position) HasLegalMoves() bool {
	return hasLegalMove(&p.Board, p.SideToMove, p.CastlingRights, p.EnPassant, &p.pool)
}

// IsCheckmate returns true if the side to move is checkmated.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the side to move is stalemated.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsInsufficientMaterial returns true if neither side can mate: bare kings,
// a single minor piece, or bishops all on one square color.
func (p *Position) IsInsufficientMaterial() bool {
	if p.Pieces[Pawn]|p.Pieces[Rook]|p.Pieces[Queen] != 0 {
		return false
	}
	knights := p.Pieces[Knight]
	bishops := p.Pieces[Bishop]
	minors := (knights | bishops).PopCount()
	if minors <= 1 {
		return true
	}
	if knights == 0 {
		return bishops&LightSquares == 0 || bishops&DarkSquares == 0
	}
	return false
}

// Validate checks the board invariants and that the side not to move is not
// in check.
func (p *Position) Validate() error {
	if err := p.Board.Validate(); err != nil {
		return err
	}
	them := p.SideToMove.Other()
	if p.AttackersOf(p.KingSquare(them), p.SideToMove) != 0 {
		return fmt.Errorf("%s is in check but not to move", them)
	}
	return nil
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString(p.Board.String())
	fmt.Fprintf(&sb, "\nFEN: %s\n", p.ToFEN())
	fmt.Fprintf(&sb, "Key: %016X\n", p.Hash())
	if cs := p.CheckState(); cs != NoCheck {
		fmt.Fprintf(&sb, "Check: %s\n", cs)
	}
	return sb.String()
}
