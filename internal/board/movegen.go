package board

import "log"

// DebugMoveValidation enables invariant traces in generation, make and undo.
var DebugMoveValidation = false

// CheckState classifies the side to move with respect to check.
type CheckState uint8

const (
	NoCheck CheckState = iota
	SingleCheck
	DoubleCheck
)

func (cs CheckState) String() string {
	switch cs {
	case SingleCheck:
		return "check"
	case DoubleCheck:
		return "double check"
	}
	return "none"
}

// generator holds the per-call state of move generation for one side of a
// Board. It is built fresh for every call and never cached across moves.
type generator struct {
	b        *Board
	us, them Color
	own      Bitboard
	ksq      Square
	enemyKsq Square
	castling CastlingRights
	ep       Bitboard
	pinned   Bitboard
	checkers Bitboard

	only       PieceType // NoPieceType generates every class
	flagChecks bool
}

func newGenerator(b *Board, us Color, castling CastlingRights, ep Bitboard) generator {
	g := generator{
		b:          b,
		us:         us,
		them:       us.Other(),
		own:        b.Occupied[us],
		ksq:        b.KingSquare(us),
		enemyKsq:   b.KingSquare(us.Other()),
		castling:   castling,
		ep:         ep,
		only:       NoPieceType,
		flagChecks: true,
	}
	if g.ksq != NoSquare {
		g.checkers = b.attackersOf(g.ksq, g.them, b.AllOccupied)
		g.pinned = b.PinnedPieces(us)
	} else if DebugMoveValidation {
		log.Printf("MOVEGEN: %v has no king, occupied=%x", us, uint64(b.AllOccupied))
	}
	return g
}

func (g *generator) checkState() CheckState {
	switch {
	case g.checkers == 0:
		return NoCheck
	case g.checkers.Several():
		return DoubleCheck
	}
	return SingleCheck
}

func (g *generator) wants(pt PieceType) bool {
	return g.only == NoPieceType || g.only == pt
}

// generate emits pseudo-legal moves shaped by the check state: with two
// checkers only king moves, with one checker king moves plus moves that
// capture or block the checker, otherwise everything including castling.
// Pins are already honored; only en-passant captures still need a probe.
func (g *generator) generate(ml *MoveList) {
	if g.wants(King) && g.ksq != NoSquare {
		g.kingMoves(ml)
	}

	switch g.checkState() {
	case DoubleCheck:
		return
	case SingleCheck:
		g.checkDefenses(ml)
	default:
		g.pieceMoves(ml, ^g.own)
		if g.wants(King) {
			g.castlingMoves(ml)
		}
	}
}

// checkDefenses emits non-king moves that capture the single checker or step
// onto the ray between it and the king. Knight and pawn checkers have an
// empty ray, so they can only be captured.
func (g *generator) checkDefenses(ml *MoveList) {
	checker := g.checkers.LSB()
	g.pieceMoves(ml, SquareBB(checker)|Between(checker, g.ksq))
}

// pieceMoves emits pawn, knight, bishop, rook and queen moves landing on
// targets.
func (g *generator) pieceMoves(ml *MoveList, targets Bitboard) {
	if g.wants(Pawn) {
		g.pawnMoves(ml, targets)
	}
	for pt := Knight; pt <= Queen; pt++ {
		if !g.wants(pt) {
			continue
		}
		pieces := g.b.PiecesOf(pt, g.us)
		for pieces != 0 {
			from := pieces.PopLSB()
			attacks := pieceAttacks(pt, g.us, from, g.b.AllOccupied) & targets &^ g.own
			if g.pinned.IsSet(from) {
				if pt == Knight {
					continue
				}
				attacks &= Line(from, g.ksq)
			}
			for attacks != 0 {
				to := attacks.PopLSB()
				g.add(ml, from, to, MoveKind(pt), g.b.PieceTypeAt(to))
			}
		}
	}
}

// kingMoves emits king steps to squares that stay unattacked once the king
// has left its square. In check these are the king evasions.
func (g *generator) kingMoves(ml *MoveList) {
	occ := g.b.AllOccupied &^ SquareBB(g.ksq)
	attacks := KingAttacks(g.ksq) &^ g.own
	for attacks != 0 {
		to := attacks.PopLSB()
		if g.b.attackersOf(to, g.them, occ) != 0 {
			continue
		}
		g.add(ml, g.ksq, to, KindKing, g.b.PieceTypeAt(to))
	}
}

// castlingMoves emits castling when the right is held, the king is not in
// check, the squares between king and rook are empty and the squares the
// king crosses or lands on are not attacked.
func (g *generator) castlingMoves(ml *MoveList) {
	if g.checkers != 0 || g.ksq == NoSquare {
		return
	}
	base := Square(0)
	if g.us == Black {
		base = A8
	}
	if g.ksq != base+E1 {
		return
	}
	rooks := g.b.PiecesOf(Rook, g.us)
	occ := g.b.AllOccupied &^ SquareBB(g.ksq)

	for _, kingSide := range [2]bool{true, false} {
		if !g.castling.CanCastle(g.us, kingSide) {
			continue
		}
		rookFrom, kingTo, kind := base+A1, base+C1, KindCastleLong
		if kingSide {
			rookFrom, kingTo, kind = base+H1, base+G1, KindCastleShort
		}
		if !rooks.IsSet(rookFrom) || g.b.AllOccupied&Between(g.ksq, rookFrom) != 0 {
			continue
		}
		path := Between(g.ksq, kingTo) | SquareBB(kingTo)
		safe := true
		for path != 0 {
			if g.b.IsSquareAttacked(path.PopLSB(), g.them) {
				safe = false
				break
			}
		}
		if !safe {
			continue
		}
		m := newMove(g.ksq, kingTo, kind, g.us, NoPieceType, g.castling, g.ep)
		if g.flagChecks && g.enemyKsq != NoSquare {
			rFrom, rTo := m.CastlingRookSquares()
			after := occ&^SquareBB(rFrom) | SquareBB(kingTo) | SquareBB(rTo)
			if RookAttacks(rTo, after).IsSet(g.enemyKsq) {
				m = m.WithCheck()
			}
		}
		ml.Add(m)
	}
}

// pawnMoves handles the four pawn move shapes, each with its promotion
// variant. A pinned pawn keeps only the targets on its pin line: a file pin
// leaves pushes, a diagonal pin leaves the capture along that diagonal and a
// rank pin leaves nothing.
func (g *generator) pawnMoves(ml *MoveList, targets Bitboard) {
	pawns := g.b.PiecesOf(Pawn, g.us)
	empty := ^g.b.AllOccupied
	enemy := g.b.Occupied[g.them]

	for pawns != 0 {
		from := pawns.PopLSB()
		allowed := Universe
		if g.pinned.IsSet(from) {
			allowed = Line(from, g.ksq)
		}

		one := from + 8
		if g.us == Black {
			one = from - 8
		}
		if empty.IsSet(one) {
			if (targets & allowed).IsSet(one) {
				g.addPawn(ml, from, one, NoPieceType)
			}
			if from.RelativeRank(g.us) == 1 {
				two := one + 8
				if g.us == Black {
					two = one - 8
				}
				if (empty & targets & allowed).IsSet(two) {
					g.addPawn(ml, from, two, NoPieceType)
				}
			}
		}

		attacks := PawnAttacks(from, g.us) & allowed
		captures := attacks & enemy & targets
		for captures != 0 {
			to := captures.PopLSB()
			g.addPawn(ml, from, to, g.b.PieceTypeAt(to))
		}

		if attacks&g.ep != 0 {
			to := g.ep.LSB()
			captured := to - 8
			if g.us == Black {
				captured = to + 8
			}
			if targets.IsSet(to) || g.checkers.IsSet(captured) {
				g.add(ml, from, to, KindPawn, Pawn)
			}
		}
	}
}

func (g *generator) addPawn(ml *MoveList, from, to Square, captured PieceType) {
	if to.RelativeRank(g.us) == 7 {
		g.add(ml, from, to, KindPromoteQueen, captured)
		g.add(ml, from, to, KindPromoteRook, captured)
		g.add(ml, from, to, KindPromoteBishop, captured)
		g.add(ml, from, to, KindPromoteKnight, captured)
		return
	}
	g.add(ml, from, to, KindPawn, captured)
}

// add appends a move, flagging it as check when the moved piece attacks the
// enemy king from its new square. Discovered checks are left to verify.
func (g *generator) add(ml *MoveList, from, to Square, kind MoveKind, captured PieceType) {
	m := newMove(from, to, kind, g.us, captured, g.castling, g.ep)
	if g.flagChecks && g.enemyKsq != NoSquare {
		pt := m.PlacedPiece()
		if pt != King {
			occ := g.b.AllOccupied&^SquareBB(from) | SquareBB(to)
			if pieceAttacks(pt, g.us, to, occ).IsSet(g.enemyKsq) {
				m = m.WithCheck()
			}
		}
	}
	ml.Add(m)
}

// discoverers returns our pieces that alone shield the enemy king from one of
// our sliders; moving one of them off the line gives discovered check.
func (g *generator) discoverers() Bitboard {
	if g.enemyKsq == NoSquare {
		return Empty
	}
	snipers := RookAttacks(g.enemyKsq, Empty) & (g.b.Pieces[Rook] | g.b.Pieces[Queen]) & g.own
	snipers |= BishopAttacks(g.enemyKsq, Empty) & (g.b.Pieces[Bishop] | g.b.Pieces[Queen]) & g.own

	var found Bitboard
	for snipers != 0 {
		blockers := Between(snipers.PopLSB(), g.enemyKsq) & g.b.AllOccupied
		if blockers.PopCount() == 1 && blockers&g.own != 0 {
			found |= blockers
		}
	}
	return found
}

// verify copies the legal moves of src into dst. Each candidate that is an
// en-passant capture, may uncover a check, or already gives check is played
// on a scratch copy of the board: an en-passant capture that exposes our
// king is dropped, an attacked enemy king flags the move as check, and with
// annotate a check that leaves the opponent no legal reply is flagged mate.
// The replying side is in check there, so its castling rights are moot.
func (g *generator) verify(dst, src *MoveList, annotate bool, pool *scratchPool) {
	var disc Bitboard
	if annotate {
		disc = g.discoverers()
	}

	for i := 0; i < src.Len(); i++ {
		m := src.Get(i)
		ep := m.IsEnPassant()
		probeCheck := annotate && g.enemyKsq != NoSquare && !m.IsCheck() && (ep || disc.IsSet(m.From()))
		probeMate := annotate && m.IsCheck()

		if ep || probeCheck || probeMate {
			scratch := *g.b
			nextEP := scratch.applyMove(m)

			if ep && g.ksq != NoSquare && scratch.AttackersOf(g.ksq, g.them) != 0 {
				continue
			}
			if probeCheck && scratch.AttackersOf(g.enemyKsq, g.us) != 0 {
				m = m.WithCheck()
			}
			if annotate && m.IsCheck() && !hasLegalMove(&scratch, g.them, NoCastling, nextEP, pool) {
				m = m.WithMate()
			}
		}
		dst.Add(m.WithLegal())
	}
}

// hasLegalMove reports whether side has any legal move on b. Used as the one
// ply lookahead of mate detection, it never recurses further.
func hasLegalMove(b *Board, side Color, castling CastlingRights, ep Bitboard, pool *scratchPool) bool {
	g := newGenerator(b, side, castling, ep)
	g.flagChecks = false

	ml := pool.get()
	defer pool.put(ml)
	g.generate(ml)

	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if !m.IsEnPassant() {
			return true
		}
		scratch := *b
		scratch.applyMove(m)
		if g.ksq == NoSquare || scratch.AttackersOf(g.ksq, g.them) == 0 {
			return true
		}
	}
	return false
}

// scratchPool recycles move buffers for verification lookahead. Each
// Position owns its own pool; it must not be shared between goroutines.
type scratchPool struct {
	free []*MoveList
}

func (sp *scratchPool) get() *MoveList {
	if n := len(sp.free); n > 0 {
		ml := sp.free[n-1]
		sp.free = sp.free[:n-1]
		ml.Clear()
		return ml
	}
	return NewMoveList()
}

func (sp *scratchPool) put(ml *MoveList) {
	sp.free = append(sp.free, ml)
}

// Perft counts the leaf nodes of the legal move tree to the given depth.
// Check and mate flags are not computed on this path.
func (p *Position) Perft(depth int) uint64 {
	if depth <= 0 {
		return 1
	}

	ml := p.pool.get()
	defer p.pool.put(ml)
	p.generate(ml, NoPieceType, false)

	if depth == 1 {
		return uint64(ml.Len())
	}

	var nodes uint64
	for i := 0; i < ml.Len(); i++ {
		p.play(ml.Get(i))
		nodes += p.Perft(depth - 1)
		p.unplay()
	}
	return nodes
}
