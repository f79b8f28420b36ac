// Package kv implements ledger.Ledger on top of tm-db's leveldb driver,
// the way the teacher's store.KVStore wraps tmdb.DB: a constructor pair
// (New/NewWithDB), a logger field, and batched writes on commit.
package kv

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/crypto/merkle"
	"github.com/tendermint/tendermint/libs/log"
	tmdb "github.com/tendermint/tm-db"

	"github.com/mrsmuneton/iroha/types"
	"github.com/mrsmuneton/iroha/wsv"
)

const (
	committedPrefix = "committed/"
	rootKey         = "chain/root"
)

// Ledger is a leveldb-backed ledger.Ledger. A single writer is enforced
// by mtx — per §5, "Ledger — single-writer discipline enforced by the
// ledger itself."
type Ledger struct {
	mtx sync.Mutex

	db     tmdb.DB
	wsv    wsv.Command
	logger log.Logger

	lastRoot []byte
}

// New opens (or creates) a leveldb-backed ledger at dir/name.
func New(name, dir string, command wsv.Command, logger log.Logger) (*Ledger, error) {
	db, err := tmdb.NewGoLevelDB(name, dir)
	if err != nil {
		return nil, errors.Wrap(err, "open leveldb ledger")
	}
	return NewWithDB(db, command, logger)
}

// NewWithDB constructs a Ledger over an already-open tmdb.DB, letting
// tests supply an in-memory implementation instead of leveldb.
func NewWithDB(db tmdb.DB, command wsv.Command, logger log.Logger) (*Ledger, error) {
	l := &Ledger{db: db, wsv: command, logger: logger}

	root, err := db.Get([]byte(rootKey))
	if err != nil {
		return nil, errors.Wrap(err, "load chain root")
	}
	l.lastRoot = root

	return l, nil
}

// AppendTentative computes the Merkle root over (last committed root,
// this block's body hash) without persisting anything — "tentative"
// means the write only lands at Commit time. The returned root is not
// signed: BlockProcessor signs the block's body hash and uses this call
// only to catch an append failure.
func (l *Ledger) AppendTentative(block *types.Block) ([]byte, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	root := merkle.HashFromByteSlices([][]byte{l.lastRoot, block.BodyHash()})
	return root, nil
}

// IsCommitted reports whether blockID has already been committed.
func (l *Ledger) IsCommitted(blockID string) bool {
	ok, err := l.db.Has([]byte(committedPrefix + blockID))
	if err != nil {
		l.logger.Error("ledger: committed lookup failed", "err", err, "block", blockID)
		return false
	}
	return ok
}

// Commit persists the block as committed, advances the chain root, and
// routes the body to the world-state-view write path.
func (l *Ledger) Commit(block *types.Block) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	root := merkle.HashFromByteSlices([][]byte{l.lastRoot, block.BodyHash()})

	batch := l.db.NewBatch()
	defer batch.Close()

	if err := batch.Set([]byte(committedPrefix+block.ID()), block.Body); err != nil {
		return errors.Wrap(err, "stage committed block")
	}
	if err := batch.Set([]byte(rootKey), root); err != nil {
		return errors.Wrap(err, "stage chain root")
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "write commit batch")
	}

	l.lastRoot = root

	if l.wsv != nil {
		if err := l.wsv.Apply(block); err != nil {
			l.logger.Error("ledger: wsv apply failed", "err", err, "block", block.ID())
		}
	}

	return nil
}

// Close releases the underlying database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}
