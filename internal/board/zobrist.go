package board

// zobristKeys holds the random values XORed into a position hash. They are
// drawn from a fixed seed so hashes are stable across runs.
type zobristKeys struct {
	piece       [2][6][64]uint64 // [Color][PieceType][Square]
	enPassant   [8]uint64        // by file of the target square
	castling    [4]uint64        // by CastlingRights bit
	blackToMove uint64
}

var zobrist = newZobristKeys(0x98F107A2BEEF1234)

func newZobristKeys(seed uint64) *zobristKeys {
	rng := newPRNG(seed)
	k := new(zobristKeys)
	for c := range k.piece {
		for pt := range k.piece[c] {
			for sq := range k.piece[c][pt] {
				k.piece[c][pt][sq] = rng.next()
			}
		}
	}
	for i := range k.enPassant {
		k.enPassant[i] = rng.next()
	}
	for i := range k.castling {
		k.castling[i] = rng.next()
	}
	k.blackToMove = rng.next()
	return k
}

// castlingKey folds the keys of every right in cr.
func (k *zobristKeys) castlingKey(cr CastlingRights) uint64 {
	var key uint64
	for i, v := range k.castling {
		if cr&(1<<i) != 0 {
			key ^= v
		}
	}
	return key
}

// prng is an xorshift64* generator.
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}
