package ordindex

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndGet(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Insert(100, 1))
	require.NoError(t, tr.Insert(200, 2))
	require.NoError(t, tr.Insert(50, 3))

	v, ok := tr.Get(200)
	require.True(t, ok)
	assert.Equal(t, uint64(2), v)
	assert.Equal(t, 3, tr.Size())

	_, ok = tr.Get(150)
	assert.False(t, ok)
}

func TestInsertDuplicateKey(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Insert(100, 1))
	err := tr.Insert(100, 2)
	require.Error(t, err)
	assert.Equal(t, ErrDuplicateKey, err)
	assert.Equal(t, 1, tr.Size())

	// Original value must survive the rejected insert.
	v, ok := tr.Get(100)
	require.True(t, ok)
	assert.Equal(t, uint64(1), v)
}

func TestRemove(t *testing.T) {
	tr := New()
	for i, k := range []int64{100, 200, 300, 400} {
		require.NoError(t, tr.Insert(k, uint64(i+1)))
	}
	require.NoError(t, tr.Remove(200))
	assert.Equal(t, 3, tr.Size())
	_, ok := tr.Get(200)
	assert.False(t, ok)

	err := tr.Remove(200)
	require.Error(t, err)
	assert.Equal(t, ErrKeyNotFound, err)
}

func TestRemoveFromEmpty(t *testing.T) {
	tr := New()
	assert.Equal(t, ErrKeyNotFound, tr.Remove(1))
}

func TestFloorCeilingHigher(t *testing.T) {
	tr := New()
	for i, k := range []int64{100, 300, 500} {
		require.NoError(t, tr.Insert(k, uint64(i+1)))
	}

	e, ok := tr.Floor(300)
	require.True(t, ok)
	assert.Equal(t, int64(300), e.Key)

	e, ok = tr.Floor(299)
	require.True(t, ok)
	assert.Equal(t, int64(100), e.Key)

	_, ok = tr.Floor(99)
	assert.False(t, ok)

	e, ok = tr.Ceiling(300)
	require.True(t, ok)
	assert.Equal(t, int64(300), e.Key)

	e, ok = tr.Ceiling(301)
	require.True(t, ok)
	assert.Equal(t, int64(500), e.Key)

	_, ok = tr.Ceiling(501)
	assert.False(t, ok)

	e, ok = tr.Higher(300)
	require.True(t, ok)
	assert.Equal(t, int64(500), e.Key)

	e, ok = tr.Higher(99)
	require.True(t, ok)
	assert.Equal(t, int64(100), e.Key)

	_, ok = tr.Higher(500)
	assert.False(t, ok)
}

func TestSelectByRank(t *testing.T) {
	tr := New()
	keys := []int64{500, 100, 300, 200, 400}
	for i, k := range keys {
		require.NoError(t, tr.Insert(k, uint64(i+1)))
	}

	for i, want := range []int64{100, 200, 300, 400, 500} {
		e, ok := tr.SelectByRank(i)
		require.True(t, ok)
		assert.Equal(t, want, e.Key)
	}

	_, ok := tr.SelectByRank(5)
	assert.False(t, ok)
	_, ok = tr.SelectByRank(-1)
	assert.False(t, ok)
}

// Randomized sweep against a sorted-slice reference model.
func TestRandomizedAgainstReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tr := New()
	ref := map[int64]uint64{}

	for i := 0; i < 5000; i++ {
		k := int64(rng.Intn(1000))
		if rng.Intn(3) == 0 {
			err := tr.Remove(k)
			if _, ok := ref[k]; ok {
				require.NoError(t, err)
				delete(ref, k)
			} else {
				assert.Equal(t, ErrKeyNotFound, err)
			}
		} else {
			v := uint64(i)
			err := tr.Insert(k, v)
			if _, ok := ref[k]; ok {
				assert.Equal(t, ErrDuplicateKey, err)
			} else {
				require.NoError(t, err)
				ref[k] = v
			}
		}
	}

	require.Equal(t, len(ref), tr.Size())

	sorted := make([]int64, 0, len(ref))
	for k := range ref {
		sorted = append(sorted, k)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for i, k := range sorted {
		e, ok := tr.SelectByRank(i)
		require.True(t, ok)
		assert.Equal(t, k, e.Key)
		assert.Equal(t, ref[k], e.Value)
	}

	for probe := int64(-1); probe <= 1000; probe += 7 {
		wantFloor, haveFloor := refFloor(sorted, probe)
		e, ok := tr.Floor(probe)
		require.Equal(t, haveFloor, ok, "floor(%d)", probe)
		if ok {
			assert.Equal(t, wantFloor, e.Key)
		}

		wantCeil, haveCeil := refCeiling(sorted, probe)
		e, ok = tr.Ceiling(probe)
		require.Equal(t, haveCeil, ok, "ceiling(%d)", probe)
		if ok {
			assert.Equal(t, wantCeil, e.Key)
		}

		wantHigher, haveHigher := refCeiling(sorted, probe+1)
		e, ok = tr.Higher(probe)
		require.Equal(t, haveHigher, ok, "higher(%d)", probe)
		if ok {
			assert.Equal(t, wantHigher, e.Key)
		}
	}
}

func refFloor(sorted []int64, key int64) (int64, bool) {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] > key })
	if i == 0 {
		return 0, false
	}
	return sorted[i-1], true
}

func refCeiling(sorted []int64, key int64) (int64, bool) {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= key })
	if i == len(sorted) {
		return 0, false
	}
	return sorted[i], true
}
