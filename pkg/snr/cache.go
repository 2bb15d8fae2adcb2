package snr

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
)

// ErrCacheMiss is returned by Cache.Get for templates that have not
// been materialized yet.
var ErrCacheMiss = errors.New("snr: template not cached")

// Cache stores materialized frequency-domain templates keyed by their
// physical parameters and grid. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(key string) ([]complex128, error)
	Put(key string, series []complex128) error
}

// MemoryCache is a process-local Cache. Good for single runs; job
// arrays on shared storage should use the badger cache so templates are
// materialized once per node.
type MemoryCache struct {
	mu sync.RWMutex
	m  map[string][]complex128
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{m: make(map[string][]complex128)}
}

func (c *MemoryCache) Get(key string) ([]complex128, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (c *MemoryCache) Put(key string, series []complex128) error {
	cp := make([]complex128, len(series))
	copy(cp, series)
	c.mu.Lock()
	c.m[key] = cp
	c.mu.Unlock()
	return nil
}

// BadgerCache persists templates in a badger database so repeated jobs
// over the same bank skip waveform generation.
type BadgerCache struct {
	db *badger.DB
}

// OpenBadgerCache opens (or creates) the cache database at dir.
func OpenBadgerCache(dir string) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("snr: open template cache: %w", err)
	}
	return &BadgerCache{db: db}, nil
}

func (c *BadgerCache) Get(key string) ([]complex128, error) {
	var out []complex128
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = decodeSeries(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("snr: cache get: %w", err)
	}
	return out, nil
}

func (c *BadgerCache) Put(key string, series []complex128) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), encodeSeries(series))
	})
	if err != nil {
		return fmt.Errorf("snr: cache put: %w", err)
	}
	return nil
}

func (c *BadgerCache) Close() error { return c.db.Close() }

func encodeSeries(s []complex128) []byte {
	buf := make([]byte, 16*len(s))
	for i, v := range s {
		binary.LittleEndian.PutUint64(buf[16*i:], math.Float64bits(real(v)))
		binary.LittleEndian.PutUint64(buf[16*i+8:], math.Float64bits(imag(v)))
	}
	return buf
}

func decodeSeries(buf []byte) []complex128 {
	out := make([]complex128, len(buf)/16)
	for i := range out {
		re := math.Float64frombits(binary.LittleEndian.Uint64(buf[16*i:]))
		im := math.Float64frombits(binary.LittleEndian.Uint64(buf[16*i+8:]))
		out[i] = complex(re, im)
	}
	return out
}
