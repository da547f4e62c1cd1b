package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/chessrules/internal/board"
)

// Storage key prefixes
const (
	prefixPosition = "pos/"
	prefixPerft    = "perft/"
)

// ErrNotFound is returned when no record exists for a key.
var ErrNotFound = errors.New("storage: not found")

// PerftRecord stores the outcome of one perft run
type PerftRecord struct {
	FEN        string        `json:"fen"`
	Hash       uint64        `json:"hash"`
	Depth      int           `json:"depth"`
	Nodes      uint64        `json:"nodes"`
	Duration   time.Duration `json:"duration"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the store in the platform database directory
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens or creates a store in dir
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	log.Printf("storage: opened %s", dir)

	return &Storage{db: db}, nil
}

// OpenInMemory opens a store that lives only as long as the process
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func positionKey(hash uint64) []byte {
	return []byte(fmt.Sprintf("%s%016x", prefixPosition, hash))
}

func perftKey(hash uint64, depth int) []byte {
	return []byte(fmt.Sprintf("%s%016x/%02d", prefixPerft, hash, depth))
}

// SavePosition stores the compact encoding of p under its hash and returns
// the hash.
func (s *Storage) SavePosition(p *board.Position) (uint64, error) {
	data, err := board.EncodeCompact(p)
	if err != nil {
		return 0, err
	}
	hash := p.Hash()

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(positionKey(hash), data[:])
	})
	return hash, err
}

// LoadPosition decodes the position stored under hash
func (s *Storage) LoadPosition(hash uint64) (*board.Position, error) {
	var pos *board.Position

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(positionKey(hash))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			pos, err = board.DecodeCompact(val)
			return err
		})
	})

	return pos, err
}

// Positions returns the hashes of all stored positions in key order
func (s *Storage) Positions() ([]uint64, error) {
	var hashes []uint64

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixPosition)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			hash, err := strconv.ParseUint(strings.TrimPrefix(key, prefixPosition), 16, 64)
			if err != nil {
				return fmt.Errorf("storage: bad key %q: %w", key, err)
			}
			hashes = append(hashes, hash)
		}
		return nil
	})

	return hashes, err
}

// SavePerft stores a perft record
func (s *Storage) SavePerft(rec *PerftRecord) error {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(perftKey(rec.Hash, rec.Depth), data)
	})
}

// LoadPerft loads the perft record for a position hash and depth
func (s *Storage) LoadPerft(hash uint64, depth int) (*PerftRecord, error) {
	rec := &PerftRecord{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(perftKey(hash, depth))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, rec)
		})
	})

	if err != nil {
		return nil, err
	}
	return rec, nil
}

// PerftRecords returns every stored perft record for a position hash,
// shallowest first
func (s *Storage) PerftRecords(hash uint64) ([]*PerftRecord, error) {
	var recs []*PerftRecord

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(fmt.Sprintf("%s%016x/", prefixPerft, hash))
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rec := &PerftRecord{}
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, rec)
			})
			if err != nil {
				return err
			}
			recs = append(recs, rec)
		}
		return nil
	})

	return recs, err
}
