package board

import "strings"

// Move encodes a chess move and the state needed to undo it in 32 bits:
//
//	bits 0-5:   from square
//	bits 6-11:  to square
//	bits 12-15: MoveKind
//	bit  16:    side that moves
//	bit  17:    gives check
//	bit  18:    gives mate
//	bits 19-21: captured piece type + 1 (0 = no capture)
//	bits 22-26: en-passant square before the move (0 = none, else 1+file, +8 on rank 6)
//	bits 27-30: castling rights before the move
//	bit  31:    verified legal
//
// Two moves are the same move when source, target and kind match; see Same.
type Move uint32

// MoveKind tags the shape of a move. The first six values coincide with the
// PieceType of the piece that moves.
type MoveKind uint8

const (
	KindPawn MoveKind = iota
	KindKnight
	KindBishop
	KindRook
	KindQueen
	KindKing
	KindPromoteKnight
	KindPromoteBishop
	KindPromoteRook
	KindPromoteQueen
	KindCastleShort
	KindCastleLong
	KindNull
)

const (
	moveSideShift     = 16
	moveCheckBit      = 1 << 17
	moveMateBit       = 1 << 18
	moveCapturedShift = 19
	moveEPShift       = 22
	moveCastlingShift = 27
	moveLegalBit      = 1 << 31

	moveIdentityMask = 0xFFFF
)

// NoMove represents an invalid move.
const NoMove Move = 0

// NewMove builds a move key from its identity fields. The result compares
// equal under Same to the generated legal move with these coordinates.
func NewMove(from, to Square, kind MoveKind) Move {
	return Move(from) | Move(to)<<6 | Move(kind)<<12
}

// newMove builds a fully populated move during generation.
func newMove(from, to Square, kind MoveKind, side Color, captured PieceType, castling CastlingRights, ep Bitboard) Move {
	m := NewMove(from, to, kind) | Move(side)<<moveSideShift | Move(castling)<<moveCastlingShift
	if captured != NoPieceType {
		m |= Move(captured+1) << moveCapturedShift
	}
	return m | Move(encodeEnPassant(ep))<<moveEPShift
}

// encodeEnPassant packs an en-passant mask into 5 bits. Only ranks 3 and 6
// can hold a target, so the file plus one rank bit suffice.
func encodeEnPassant(ep Bitboard) uint32 {
	if ep == 0 {
		return 0
	}
	sq := ep.LSB()
	code := uint32(1 + sq.File())
	if sq.Rank() == 5 {
		code += 8
	}
	return code
}

func decodeEnPassant(code uint32) Square {
	if code == 0 {
		return NoSquare
	}
	code--
	rank := 2
	if code >= 8 {
		rank = 5
	}
	return NewSquare(int(code&7), rank)
}

// PromotionKind returns the move kind promoting to pt.
func PromotionKind(pt PieceType) MoveKind {
	switch pt {
	case Knight:
		return KindPromoteKnight
	case Bishop:
		return KindPromoteBishop
	case Rook:
		return KindPromoteRook
	case Queen:
		return KindPromoteQueen
	}
	return KindPawn
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Kind returns the move shape tag.
func (m Move) Kind() MoveKind {
	return MoveKind((m >> 12) & 0xF)
}

// Side returns the color making the move.
func (m Move) Side() Color {
	return Color((m >> moveSideShift) & 1)
}

// Captured returns the type of the captured piece, or NoPieceType.
func (m Move) Captured() PieceType {
	v := (m >> moveCapturedShift) & 7
	if v == 0 {
		return NoPieceType
	}
	return PieceType(v - 1)
}

// CastlingBefore returns the castling rights held before the move.
func (m Move) CastlingBefore() CastlingRights {
	return CastlingRights((m >> moveCastlingShift) & 0xF)
}

// EnPassantBefore returns the en-passant target before the move, or NoSquare.
func (m Move) EnPassantBefore() Square {
	return decodeEnPassant(uint32(m>>moveEPShift) & 0x1F)
}

// IsCheck reports whether the move gives check.
func (m Move) IsCheck() bool {
	return m&moveCheckBit != 0
}

// IsMate reports whether the move gives checkmate.
func (m Move) IsMate() bool {
	return m&moveMateBit != 0
}

// IsLegal reports whether the move passed legality verification.
func (m Move) IsLegal() bool {
	return m&moveLegalBit != 0
}

// WithCheck returns a copy of m flagged as giving check.
func (m Move) WithCheck() Move {
	return m | moveCheckBit
}

// WithMate returns a copy of m flagged as giving check and mate.
func (m Move) WithMate() Move {
	return m | moveCheckBit | moveMateBit
}

// WithLegal returns a copy of m marked as verified legal.
func (m Move) WithLegal() Move {
	return m | moveLegalBit
}

// Same reports whether two moves share source, target and kind.
func (m Move) Same(o Move) bool {
	return m&moveIdentityMask == o&moveIdentityMask
}

// IsNull reports whether this is a null move.
func (m Move) IsNull() bool {
	return m.Kind() == KindNull
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	k := m.Kind()
	return k == KindCastleShort || k == KindCastleLong
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	k := m.Kind()
	return k >= KindPromoteKnight && k <= KindPromoteQueen
}

// Promotion returns the promotion piece type, or NoPieceType.
func (m Move) Promotion() PieceType {
	if !m.IsPromotion() {
		return NoPieceType
	}
	return PieceType(m.Kind()-KindPromoteKnight) + Knight
}

// Piece returns the type of the piece that moves.
func (m Move) Piece() PieceType {
	k := m.Kind()
	switch {
	case k <= KindKing:
		return PieceType(k)
	case k <= KindPromoteQueen:
		return Pawn
	case k <= KindCastleLong:
		return King
	}
	return NoPieceType
}

// PlacedPiece returns the type of the piece standing on To after the move.
func (m Move) PlacedPiece() PieceType {
	if m.IsPromotion() {
		return m.Promotion()
	}
	return m.Piece()
}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture() bool {
	return m.Captured() != NoPieceType
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Kind() == KindPawn && m.From().File() != m.To().File() && m.EnPassantBefore() == m.To()
}

// EnPassantCaptureSquare returns the square of the pawn taken en passant.
func (m Move) EnPassantCaptureSquare() Square {
	if m.Side() == White {
		return m.To() - 8
	}
	return m.To() + 8
}

// IsDoublePush reports a two-square pawn advance.
func (m Move) IsDoublePush() bool {
	return m.Kind() == KindPawn && (m.To()-m.From() == 16 || m.From()-m.To() == 16)
}

// CastlingRookSquares returns the rook's origin and destination for a
// castling move.
func (m Move) CastlingRookSquares() (from, to Square) {
	if m.Kind() == KindCastleShort {
		return m.To() + 1, m.To() - 1
	}
	return m.To() - 2, m.To() + 1
}

// String returns the coordinate form of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove || m.IsNull() {
		return "0000"
	}

	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += strings.ToLower(string(m.Promotion().Letter()))
	}
	return s
}

// ParseMove splits coordinate move text like "e7e8q" into its squares and
// promotion piece (NoPieceType when absent). Resolving it to a legal move
// needs a position; see Position.MakeMoveUCI.
func ParseMove(s string) (from, to Square, promo PieceType, err error) {
	promo = NoPieceType
	if len(s) != 4 && len(s) != 5 {
		return NoSquare, NoSquare, promo, ErrInvalidSquare
	}
	if from, err = ParseSquare(s[0:2]); err != nil {
		return
	}
	if to, err = ParseSquare(s[2:4]); err != nil {
		return
	}
	if len(s) == 5 {
		promo = pieceTypeFromLetter(s[4])
		if promo == NoPieceType || promo == Pawn || promo == King {
			return from, to, NoPieceType, ErrInvalidSquare
		}
	}
	return from, to, promo, nil
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Find returns the listed move that is the Same as m.
func (ml *MoveList) Find(m Move) (Move, bool) {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i].Same(m) {
			return ml.moves[i], true
		}
	}
	return NoMove, false
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
