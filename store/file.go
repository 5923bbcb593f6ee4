package store

import (
	"encoding/binary"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/dusk-network/rusk-vm/log"
)

// seqKey and rootKey are the two reserved keyspaces inside the leveldb
// file: one counter tracking the next identifier offset to hand out, and
// one holding the current root identifier's encoded bytes.
var (
	seqKey  = []byte("\x00seq")
	rootKey = []byte("\x00root")
)

func dataKey(offset uint64) []byte {
	k := make([]byte, 9)
	k[0] = 'd'
	binary.BigEndian.PutUint64(k[1:], offset)
	return k
}

// FileBackend is the stable, on-disk backend, grounded directly on
// ethdb/database.go's NewLDBDatabase: same leveldb.OpenFile options
// (bloom filter, corruption recovery via RecoverFile), same "one logical
// database directory" shape, repurposed from an account/state trie
// keyspace to the store's append-only value keyspace.
type FileBackend struct {
	dir string
	db  *leveldb.DB
	seq uint64
}

// NewFileBackend opens (or creates) a leveldb-backed store rooted at dir.
func NewFileBackend(dir string) (*FileBackend, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{
		OpenFilesCacheCapacity: 64,
		Filter:                 filter.NewBloomFilter(10),
	})
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		log.Warnf("store: %s: recovering corrupted leveldb", dir)
		db, err = leveldb.RecoverFile(dir, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", dir, err)
	}

	fb := &FileBackend{dir: dir, db: db}
	if v, err := db.Get(seqKey, nil); err == nil {
		fb.seq = binary.BigEndian.Uint64(v)
	} else if err != leveldb.ErrNotFound {
		db.Close()
		return nil, fmt.Errorf("store: reading sequence counter: %w", err)
	}
	return fb, nil
}

func (b *FileBackend) Put(value []byte) (Identifier, error) {
	offset := b.seq
	if err := b.db.Put(dataKey(offset), value, nil); err != nil {
		return Identifier{}, err
	}
	b.seq++
	seqBuf := make([]byte, 8)
	binary.BigEndian.PutUint64(seqBuf, b.seq)
	if err := b.db.Put(seqKey, seqBuf, nil); err != nil {
		return Identifier{}, err
	}
	return Identifier{Offset: offset, Length: uint64(len(value))}, nil
}

func (b *FileBackend) Get(id Identifier) ([]byte, error) {
	v, err := b.db.Get(dataKey(id.Offset), nil)
	if err != nil {
		return nil, err
	}
	if uint64(len(v)) != id.Length {
		return nil, fmt.Errorf("store: identifier length mismatch: stored %d, identifier says %d", len(v), id.Length)
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (b *FileBackend) PersistRoot(id Identifier) error {
	return b.db.Put(rootKey, id.Bytes(), nil)
}

func (b *FileBackend) LoadRoot() (Identifier, error) {
	v, err := b.db.Get(rootKey, nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return Identifier{}, fmt.Errorf("store: no root identifier has been persisted")
		}
		return Identifier{}, err
	}
	return IdentifierFromBytes(v)
}

func (b *FileBackend) Kind() Kind { return FileBacked }

func (b *FileBackend) Close() error {
	return b.db.Close()
}
