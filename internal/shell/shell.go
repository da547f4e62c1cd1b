// Package shell implements a line-oriented command protocol that drives a
// single position: set it up, play and take back moves, list legal moves,
// count perft trees and persist or render the result.
package shell

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/diagram"
	"github.com/hailam/chessrules/internal/perft"
	"github.com/hailam/chessrules/internal/storage"
)

// Shell reads commands and applies them to one position.
type Shell struct {
	position *board.Position
	store    *storage.Storage // nil disables save, load and perft caching
	out      io.Writer

	// CPU profiling
	profileFile *os.File
}

// New creates a shell on the starting position. store may be nil.
func New(out io.Writer, store *storage.Storage) *Shell {
	pos := board.NewPosition()
	pos.RecordSAN = true
	return &Shell{
		position: pos,
		store:    store,
		out:      out,
	}
}

// Position returns the position the shell is driving.
func (s *Shell) Position() *board.Position {
	return s.position
}

// SetPosition replaces the current position from a FEN string.
func (s *Shell) SetPosition(fen string) error {
	return s.position.SetFEN(fen)
}

// Run executes commands read from r until "quit" or end of input.
func (s *Shell) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		if !s.Execute(scanner.Text()) {
			return nil
		}
	}
	s.stopProfile()
	return scanner.Err()
}

// Execute runs one command line. It returns false after "quit".
func (s *Shell) Execute(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return true
	}

	parts := strings.Fields(line)
	cmd := parts[0]
	args := parts[1:]

	var err error
	switch cmd {
	case "position":
		err = s.handlePosition(args)
	case "move", "m":
		err = s.handleMove(args)
	case "undo":
		err = s.handleUndo(args)
	case "null":
		s.position.MakeNullMove()
		fmt.Fprintf(s.out, "%s passes\n", s.position.SideToMove.Other())
	case "d":
		fmt.Fprint(s.out, s.position.String())
	case "fen":
		fmt.Fprintln(s.out, s.position.ToFEN())
	case "hash":
		fmt.Fprintf(s.out, "%016x\n", s.position.Hash())
	case "legal":
		err = s.handleLegal(args)
	case "history":
		s.handleHistory()
	case "status":
		s.handleStatus()
	case "perft":
		err = s.handlePerft(args)
	case "divide":
		err = s.handleDivide(args)
	case "verify":
		err = s.handleVerify(args)
	case "save":
		err = s.handleSave()
	case "load":
		err = s.handleLoad(args)
	case "saved":
		err = s.handleSaved()
	case "compact":
		err = s.handleCompact()
	case "decode":
		err = s.handleDecode(args)
	case "diagram":
		err = s.handleDiagram(args)
	case "debug":
		err = s.handleDebug(args)
	case "profile":
		err = s.handleProfile(args)
	case "help":
		s.handleHelp()
	case "quit", "exit":
		s.stopProfile()
		return false
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
	return true
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (s *Shell) handlePosition(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: position startpos|fen <fen> [moves ...]")
	}

	setup, moves := args, []string(nil)
	for i, arg := range args {
		if arg == "moves" {
			setup, moves = args[:i], args[i+1:]
			break
		}
	}
	if len(setup) == 0 {
		return fmt.Errorf("missing position type")
	}

	var fen string
	switch setup[0] {
	case "startpos":
		fen = board.StartFEN
	case "fen":
		fen = strings.Join(setup[1:], " ")
	default:
		return fmt.Errorf("unknown position type %q", setup[0])
	}

	// A bad move leaves the current position untouched.
	next, err := board.ParseFEN(fen)
	if err != nil {
		return err
	}
	next.RecordSAN = true
	for _, text := range moves {
		if _, err := playText(next, text); err != nil {
			return err
		}
	}
	s.position = next

	if board.DebugMoveValidation {
		fmt.Fprintf(s.out, "debug: position set, hash=%016x inCheck=%v legal=%d\n",
			s.position.Hash(), s.position.InCheck(), s.position.GenerateLegalMoves().Len())
	}
	return nil
}

// playText plays a move given in coordinate notation or SAN.
func playText(p *board.Position, text string) (board.Move, error) {
	if _, _, _, err := board.ParseMove(text); err == nil {
		return p.MakeMoveUCI(text)
	}
	return p.MakeMoveSAN(text)
}

func (s *Shell) handleMove(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: move <move> [move ...]")
	}
	for _, text := range args {
		m, err := playText(s.position, text)
		if err != nil {
			return err
		}
		sans := s.position.SANHistory()
		san := sans[len(sans)-1]
		fmt.Fprintf(s.out, "played %s (%s)\n", san, m)
	}
	s.reportGameEnd()
	return nil
}

func (s *Shell) reportGameEnd() {
	switch {
	case s.position.IsCheckmate():
		fmt.Fprintf(s.out, "checkmate, %s wins\n", s.position.SideToMove.Other())
	case s.position.IsStalemate():
		fmt.Fprintln(s.out, "stalemate")
	case s.position.IsInsufficientMaterial():
		fmt.Fprintln(s.out, "insufficient material")
	}
}

func (s *Shell) handleUndo(args []string) error {
	n := 1
	if len(args) > 0 {
		var err error
		if n, err = strconv.Atoi(args[0]); err != nil || n < 1 {
			return fmt.Errorf("bad undo count %q", args[0])
		}
	}
	for i := 0; i < n; i++ {
		m, ok := s.position.UndoMove()
		if !ok {
			return fmt.Errorf("no move to undo")
		}
		fmt.Fprintf(s.out, "undid %s\n", m)
	}
	return nil
}

// handleLegal lists legal moves in SAN, optionally for one piece class
// given by its letter.
func (s *Shell) handleLegal(args []string) error {
	var moves *board.MoveList
	if len(args) > 0 {
		pt := pieceTypeArg(args[0])
		if pt == board.NoPieceType {
			return fmt.Errorf("unknown piece %q", args[0])
		}
		moves = s.position.GenerateLegalMovesOf(pt)
	} else {
		moves = s.position.GenerateLegalMoves()
	}

	all := s.position.GenerateLegalMoves().Slice()
	sans := make([]string, 0, moves.Len())
	for _, m := range moves.Slice() {
		sans = append(sans, board.FormatSAN(m, all))
	}
	fmt.Fprintf(s.out, "%d: %s\n", len(sans), strings.Join(sans, " "))
	return nil
}

func pieceTypeArg(arg string) board.PieceType {
	if len(arg) != 1 {
		return board.NoPieceType
	}
	return board.PieceFromChar(strings.ToUpper(arg)[0]).Type()
}

func (s *Shell) handleHistory() {
	sans := s.position.SANHistory()
	moves := s.position.History()
	var sb strings.Builder
	for i, m := range moves {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if sans[i] != "" {
			sb.WriteString(sans[i])
		} else {
			sb.WriteString(m.String())
		}
	}
	fmt.Fprintln(s.out, sb.String())
}

func (s *Shell) handleStatus() {
	p := s.position
	fmt.Fprintf(s.out, "side %s, check %s, halfmove clock %d, move %d\n",
		p.SideToMove, p.CheckState(), p.HalfMoveClock(), p.FullMoveNumber)
	s.reportGameEnd()
}

func depthArg(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil || depth < 1 {
		return 0, fmt.Errorf("bad depth %q", args[0])
	}
	return depth, nil
}

// handlePerft runs a perft test.
func (s *Shell) handlePerft(args []string) error {
	depth, err := depthArg(args, 5)
	if err != nil {
		return err
	}

	var cache perft.Cache
	if s.store != nil {
		cache = s.store
	}
	res, err := perft.Run(s.position, depth, cache)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Nodes: %s\n", humanize.Comma(int64(res.Nodes)))
	if res.Cached {
		fmt.Fprintf(s.out, "Cached: recorded in %v\n", res.Duration)
		return nil
	}
	fmt.Fprintf(s.out, "Time: %v\n", res.Duration)
	if nps := res.NPS(); nps > 0 {
		fmt.Fprintf(s.out, "NPS: %s\n", humanize.Comma(int64(nps)))
	}
	return nil
}

func (s *Shell) handleDivide(args []string) error {
	depth, err := depthArg(args, 1)
	if err != nil {
		return err
	}
	entries, err := perft.Divide(s.position, depth)
	if err != nil {
		return err
	}
	var total uint64
	for _, e := range entries {
		fmt.Fprintf(s.out, "%s: %d\n", e.Move, e.Nodes)
		total += e.Nodes
	}
	fmt.Fprintf(s.out, "Moves: %d\nNodes: %d\n", len(entries), total)
	return nil
}

func (s *Shell) handleVerify(args []string) error {
	depth, err := depthArg(args, 3)
	if err != nil {
		return err
	}
	mismatches, err := perft.Verify(s.position.ToFEN(), depth)
	if err != nil {
		return err
	}
	if len(mismatches) == 0 {
		fmt.Fprintf(s.out, "ok: depth %d matches reference\n", depth)
		return nil
	}
	for _, m := range mismatches {
		fmt.Fprintf(s.out, "mismatch %v\n", m)
	}
	return fmt.Errorf("%d root moves disagree", len(mismatches))
}

func (s *Shell) requireStore() error {
	if s.store == nil {
		return fmt.Errorf("no database open")
	}
	return nil
}

func (s *Shell) handleSave() error {
	if err := s.requireStore(); err != nil {
		return err
	}
	hash, err := s.store.SavePosition(s.position)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "saved %016x\n", hash)
	return nil
}

func (s *Shell) handleLoad(args []string) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: load <hash>")
	}
	hash, err := strconv.ParseUint(args[0], 16, 64)
	if err != nil {
		return fmt.Errorf("bad hash %q", args[0])
	}
	pos, err := s.store.LoadPosition(hash)
	if err != nil {
		return err
	}
	pos.RecordSAN = true
	s.position = pos
	fmt.Fprintln(s.out, pos.ToFEN())
	return nil
}

func (s *Shell) handleSaved() error {
	if err := s.requireStore(); err != nil {
		return err
	}
	hashes, err := s.store.Positions()
	if err != nil {
		return err
	}
	for _, h := range hashes {
		fmt.Fprintf(s.out, "%016x\n", h)
	}
	fmt.Fprintf(s.out, "%d positions\n", len(hashes))
	return nil
}

func (s *Shell) handleCompact() error {
	data, err := board.EncodeCompact(s.position)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, hex.EncodeToString(data[:]))
	return nil
}

func (s *Shell) handleDecode(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: decode <hex>")
	}
	data, err := hex.DecodeString(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", board.ErrInvalidCompact, err)
	}
	pos, err := board.DecodeCompact(data)
	if err != nil {
		return err
	}
	pos.RecordSAN = true
	s.position = pos
	fmt.Fprintln(s.out, pos.ToFEN())
	return nil
}

func (s *Shell) handleDiagram(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: diagram <file> [size]")
	}
	size := diagram.DefaultSize
	if len(args) > 1 {
		var err error
		if size, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("bad size %q", args[1])
		}
	}
	if err := diagram.SaveFile(args[0], s.position, size); err != nil {
		return err
	}
	if fi, err := os.Stat(args[0]); err == nil {
		fmt.Fprintf(s.out, "wrote %s (%s)\n", args[0], humanize.Bytes(uint64(fi.Size())))
	}
	return nil
}

func (s *Shell) handleDebug(args []string) error {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return fmt.Errorf("usage: debug on|off")
	}
	board.DebugMoveValidation = args[0] == "on"
	fmt.Fprintf(s.out, "debug %s\n", args[0])
	return nil
}

// handleProfile starts CPU profiling into a file, or stops it.
func (s *Shell) handleProfile(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: profile <file>|stop")
	}
	s.stopProfile()
	if args[0] == "stop" {
		return nil
	}

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to start profile: %w", err)
	}
	s.profileFile = f
	fmt.Fprintf(s.out, "CPU profiling to %s\n", args[0])
	return nil
}

func (s *Shell) stopProfile() {
	if s.profileFile == nil {
		return
	}
	pprof.StopCPUProfile()
	s.profileFile.Close()
	s.profileFile = nil
	fmt.Fprintln(s.out, "CPU profile saved")
}

func (s *Shell) handleHelp() {
	fmt.Fprint(s.out, `commands:
  position startpos|fen <fen> [moves ...]
  move <move> ...        play moves in SAN or coordinate notation
  undo [n]               take back moves
  null                   pass the turn
  d | fen | hash         show the position
  legal [piece]          list legal moves
  history | status
  perft [depth] | divide [depth] | verify [depth]
  save | load <hash> | saved
  compact | decode <hex>
  diagram <file> [size]  write a .png, .bmp or .tiff board
  debug on|off
  profile <file>|stop
  quit
`)
}
