package cache

import (
	"sync"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tilesolver/board"
	"github.com/domino14/tilesolver/minimax"
	"github.com/domino14/tilesolver/zobrist"
)

// The cache remembers root search results, so a server answering the same
// position at the same depth twice only searches once. A search is a pure
// function of (board, score, depth), which is what the key covers.

// rough per-entry footprint of the map: key, value and bucket overhead.
const entrySize = 64

// MinEntries is the smallest capacity a cache is given.
const MinEntries = 1 << 10

type Key struct {
	Hash  uint64
	Depth int
}

type loadFunc func(b board.Board, depth int) minimax.Result

type HintCache struct {
	sync.Mutex
	objects  map[Key]minimax.Result
	zobrists map[int]*zobrist.Zobrist
	capacity int

	lookups atomic.Uint64
	hits    atomic.Uint64
	resets  atomic.Uint64
}

// New sizes a cache to use about fractionOfMemory of system memory.
func New(fractionOfMemory float64) *HintCache {
	totalMem := memory.TotalMemory()
	desired := int(fractionOfMemory * float64(totalMem) / entrySize)
	c := NewWithCapacity(desired)
	log.Info().Int("num-elems", c.capacity).
		Int("estimated-total-memory-bytes", c.capacity*entrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("hint-cache-size")
	return c
}

// NewWithCapacity makes a cache holding at most n results (at least
// MinEntries).
func NewWithCapacity(n int) *HintCache {
	if n < MinEntries {
		n = MinEntries
	}
	return &HintCache{
		objects:  make(map[Key]minimax.Result),
		zobrists: make(map[int]*zobrist.Zobrist),
		capacity: n,
	}
}

func (c *HintCache) key(b board.Board, depth int) Key {
	z, ok := c.zobrists[b.Dim()]
	if !ok {
		log.Info().Int("dim", b.Dim()).Msg("creating zobrist hash")
		z = &zobrist.Zobrist{}
		z.Initialize(b.Dim())
		c.zobrists[b.Dim()] = z
	}
	return Key{Hash: z.Hash(b), Depth: depth}
}

// Load returns the cached result for (b, depth), computing and storing it
// with load on a miss. The lock is not held while load runs, so two
// goroutines may compute the same result; they store the same value.
func (c *HintCache) Load(b board.Board, depth int, load loadFunc) (minimax.Result, bool) {
	c.lookups.Add(1)
	c.Lock()
	k := c.key(b, depth)
	res, ok := c.objects[k]
	c.Unlock()
	if ok {
		c.hits.Add(1)
		log.Debug().Uint64("key", k.Hash).Int("depth", depth).Msg("getting result from cache")
		return res, true
	}

	res = load(b, depth)

	c.Lock()
	defer c.Unlock()
	if len(c.objects) >= c.capacity {
		// just start over when full.
		clear(c.objects)
		c.resets.Add(1)
	}
	c.objects[k] = res
	return res, false
}

func (c *HintCache) Len() int {
	c.Lock()
	defer c.Unlock()
	return len(c.objects)
}

func (c *HintCache) Capacity() int {
	return c.capacity
}

// Stats returns lookups, hits and resets so far.
func (c *HintCache) Stats() (uint64, uint64, uint64) {
	return c.lookups.Load(), c.hits.Load(), c.resets.Load()
}
