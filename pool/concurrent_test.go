package pool_test

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/willf/bitset"

	"github.com/momentics/hioload-mempool/pool"
)

type stamped struct {
	Owner uint64
	Seq   uint64
}

// slotLedger records which pooled slots are currently held by a test goroutine.
type slotLedger struct {
	mu   sync.Mutex
	held *bitset.BitSet
}

func (l *slotLedger) acquire(tag pool.Tag) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held.Test(uint(tag)) {
		return false
	}
	l.held.Set(uint(tag))
	return true
}

func (l *slotLedger) release(tag pool.Tag) {
	l.mu.Lock()
	l.held.Clear(uint(tag))
	l.mu.Unlock()
}

// Scenario D: 8 goroutines, 1000 allocations, random interleaving.
func TestConcurrent_NoDuplicateSlots(t *testing.T) {
	const (
		workers  = 8
		perGoro  = 125
		maxLocal = 16
	)
	p, alloc := newCountingPool(t, 64)
	ledger := &slotLedger{held: bitset.New(pool.SlotCount)}

	var wg sync.WaitGroup
	errs := make(chan string, workers*perGoro)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(owner uint64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(owner)))
			type held struct {
				obj *stamped
				seq uint64
			}
			var live []held

			free := func(obj *stamped, seq uint64) {
				if obj.Owner != owner || obj.Seq != seq {
					errs <- "object contents clobbered while live"
				}
				if tag := pool.TagOf(obj); tag.IsSlot() {
					ledger.release(tag)
				}
				if err := pool.Deallocate(p, obj); err != nil {
					errs <- err.Error()
				}
			}

			for i := 0; i < perGoro; i++ {
				seq := uint64(i)
				obj, err := pool.Allocate(p, func(s *stamped) {
					s.Owner = owner
					s.Seq = seq
				})
				if err != nil {
					errs <- err.Error()
					return
				}
				if tag := pool.TagOf(obj); tag.IsSlot() && !ledger.acquire(tag) {
					errs <- "slot handed to two live objects"
				}
				live = append(live, held{obj: obj, seq: seq})

				for len(live) > 0 && (len(live) >= maxLocal || rng.Intn(3) == 0) {
					j := rng.Intn(len(live))
					victim := live[j]
					live[j] = live[len(live)-1]
					live = live[:len(live)-1]
					free(victim.obj, victim.seq)
				}
			}
			for _, h := range live {
				free(h.obj, h.seq)
			}
		}(uint64(w + 1))
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}
	assert.Zero(t, p.Bitmap())
	assert.True(t, ledger.held.None())
	assert.LessOrEqual(t, p.Materialized(), pool.SlotCount)
	assert.Equal(t, int64(alloc.Live()), int64(p.Materialized()))
}

func TestConcurrent_SaturatedPoolOverflows(t *testing.T) {
	const workers = 8
	p, _ := newCountingPool(t, 64)

	results := make(chan *stamped, workers*pool.SlotCount)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < pool.SlotCount; i++ {
				obj, err := pool.Allocate[stamped](p, nil)
				if err == nil {
					results <- obj
				}
			}
		}()
	}
	wg.Wait()
	close(results)

	slots := bitset.New(pool.SlotCount)
	var pooled, extended int
	var objs []*stamped
	for obj := range results {
		objs = append(objs, obj)
		tag := pool.TagOf(obj)
		if tag == pool.ExtendTag {
			extended++
			continue
		}
		require.False(t, slots.Test(uint(tag)), "slot %d claimed twice", tag)
		slots.Set(uint(tag))
		pooled++
	}
	assert.Equal(t, pool.SlotCount, pooled)
	assert.Equal(t, workers*pool.SlotCount-pool.SlotCount, extended)
	assert.True(t, slots.All())
	assert.Equal(t, ^uint64(0), p.Bitmap())

	for _, obj := range objs {
		require.NoError(t, pool.Deallocate(p, obj))
	}
	assert.Zero(t, p.Bitmap())
}
