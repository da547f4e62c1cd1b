// Package perft counts legal move tree leaves for move generator testing and
// cross-checks the counts against an independent generator.
package perft

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/storage"
)

// Cache stores perft results keyed by position hash and depth.
// *storage.Storage implements it.
type Cache interface {
	LoadPerft(hash uint64, depth int) (*storage.PerftRecord, error)
	SavePerft(rec *storage.PerftRecord) error
}

// Result is the outcome of one perft run.
type Result struct {
	Nodes    uint64
	Duration time.Duration
	Cached   bool
}

// NPS returns nodes per second, or 0 for cached or instant runs.
func (r Result) NPS() uint64 {
	if r.Cached || r.Duration <= 0 {
		return 0
	}
	return uint64(float64(r.Nodes) / r.Duration.Seconds())
}

// DivideEntry is the subtree count below one root move.
type DivideEntry struct {
	Move  string
	Nodes uint64
}

// Mismatch describes a root move on which two generators disagree. A count
// of zero together with a false presence flag means the move is missing.
type Mismatch struct {
	Move      string
	Nodes     uint64
	Reference uint64
	InOurs    bool
	InRef     bool
}

func (m Mismatch) String() string {
	switch {
	case !m.InOurs:
		return fmt.Sprintf("%s: missing (reference %d)", m.Move, m.Reference)
	case !m.InRef:
		return fmt.Sprintf("%s: not legal in reference (ours %d)", m.Move, m.Nodes)
	}
	return fmt.Sprintf("%s: %d, reference %d", m.Move, m.Nodes, m.Reference)
}

// Perft counts leaf nodes of p to depth. p is restored before returning.
func Perft(p *board.Position, depth int) uint64 {
	return p.Perft(depth)
}

// Run counts leaf nodes of p to depth, consulting and filling cache when it
// is not nil.
func Run(p *board.Position, depth int, cache Cache) (Result, error) {
	hash := p.Hash()
	if cache != nil {
		rec, err := cache.LoadPerft(hash, depth)
		if err == nil {
			return Result{Nodes: rec.Nodes, Duration: rec.Duration, Cached: true}, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return Result{}, err
		}
	}

	start := time.Now()
	nodes, err := parallelCount(p, depth)
	if err != nil {
		return Result{}, err
	}
	res := Result{Nodes: nodes, Duration: time.Since(start)}

	if cache != nil {
		rec := &storage.PerftRecord{
			FEN:        p.ToFEN(),
			Hash:       hash,
			Depth:      depth,
			Nodes:      nodes,
			Duration:   res.Duration,
			RecordedAt: time.Now(),
		}
		if err := cache.SavePerft(rec); err != nil {
			return res, err
		}
	}
	return res, nil
}

func parallelCount(p *board.Position, depth int) (uint64, error) {
	if depth <= 2 {
		return p.Perft(depth), nil
	}
	entries, err := divide(p, depth)
	if err != nil {
		return 0, err
	}
	var nodes uint64
	for _, e := range entries {
		nodes += e.Nodes
	}
	return nodes, nil
}

// Divide returns the subtree count below each legal root move, sorted by
// move text. Root moves are counted in parallel on private copies.
func Divide(p *board.Position, depth int) ([]DivideEntry, error) {
	if depth < 1 {
		return nil, fmt.Errorf("perft: depth %d, want at least 1", depth)
	}
	return divide(p, depth)
}

func divide(p *board.Position, depth int) ([]DivideEntry, error) {
	moves := p.GenerateLegalMoves().Slice()
	counts := make([]uint64, len(moves))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, m := range moves {
		i, m := i, m
		g.Go(func() error {
			c := p.Copy()
			if _, err := c.MakeMove(m); err != nil {
				return err
			}
			counts[i] = c.Perft(depth - 1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byMove := make(map[string]uint64, len(moves))
	for i, m := range moves {
		byMove[m.String()] = counts[i]
	}
	return sortedEntries(byMove), nil
}

func sortedEntries(byMove map[string]uint64) []DivideEntry {
	keys := maps.Keys(byMove)
	slices.Sort(keys)

	entries := make([]DivideEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, DivideEntry{Move: k, Nodes: byMove[k]})
	}
	return entries
}

// referenceDivide divides with dragontoothmg.
func referenceDivide(fen string, depth int) map[string]uint64 {
	b := dragontoothmg.ParseFen(fen)
	out := make(map[string]uint64)
	for _, m := range b.GenerateLegalMoves() {
		mv := m
		undo := b.Apply(mv)
		out[mv.String()] = referencePerft(&b, depth-1)
		undo()
	}
	return out
}

func referencePerft(b *dragontoothmg.Board, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		undo := b.Apply(m)
		nodes += referencePerft(b, depth-1)
		undo()
	}
	return nodes
}

// Verify divides the position at depth with both generators and returns
// every root move on which they disagree, sorted by move text. An empty
// result means the trees match.
func Verify(fen string, depth int) ([]Mismatch, error) {
	if depth < 1 {
		return nil, fmt.Errorf("perft: depth %d, want at least 1", depth)
	}
	p, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	// The reference parser wants every FEN field.
	full := p.ToFEN()

	entries, err := divide(p, depth)
	if err != nil {
		return nil, err
	}
	ours := make(map[string]uint64, len(entries))
	for _, e := range entries {
		ours[e.Move] = e.Nodes
	}
	ref := referenceDivide(full, depth)

	all := maps.Keys(ours)
	for k := range ref {
		if _, ok := ours[k]; !ok {
			all = append(all, k)
		}
	}
	slices.Sort(all)

	var out []Mismatch
	for _, k := range all {
		n, inOurs := ours[k]
		r, inRef := ref[k]
		if inOurs && inRef && n == r {
			continue
		}
		out = append(out, Mismatch{Move: k, Nodes: n, Reference: r, InOurs: inOurs, InRef: inRef})
	}
	return out, nil
}
