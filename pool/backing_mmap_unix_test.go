//go:build unix

package pool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-mempool/pool"
)

func TestMmapAllocator_RoundTrip(t *testing.T) {
	a := pool.NewMmapAllocator()
	buf, err := a.Alloc(4096+3, -1)
	require.NoError(t, err)
	require.Len(t, buf, 4096+3)
	for _, b := range buf {
		require.Zero(t, b)
	}
	buf[len(buf)-1] = 1
	require.NoError(t, a.Free(buf))
	assert.NoError(t, a.Free(nil))

	_, err = a.Alloc(0, -1)
	assert.Error(t, err)
}

func TestMmapPool_Lifecycle(t *testing.T) {
	p, err := pool.New(pool.WithPageSize(128), pool.WithAllocator(pool.NewMmapAllocator()))
	require.NoError(t, err)

	var objs []*record16
	for i := 0; i < pool.SlotCount+4; i++ {
		obj, err := pool.Allocate(p, func(r *record16) { r.A = uint64(i) })
		require.NoError(t, err)
		objs = append(objs, obj)
	}
	big, err := pool.Allocate[[200]byte](p, nil)
	require.NoError(t, err)
	assert.Equal(t, pool.ExtendTag, pool.TagOf(big))

	require.NoError(t, pool.Deallocate(p, big))
	for i, obj := range objs {
		require.EqualValues(t, i, obj.A)
		require.NoError(t, pool.Deallocate(p, obj))
	}
	assert.Zero(t, p.Bitmap())
	assert.NoError(t, p.Close())
}
