package tick

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlabInsertGetRemove(t *testing.T) {
	s := newSlab[string](4)

	id1, err := s.Insert("a")
	require.NoError(t, err)
	id2, err := s.Insert("b")
	require.NoError(t, err)

	v, ok := s.Get(id1)
	require.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok = s.Get(id2)
	require.True(t, ok)
	assert.Equal(t, "b", v)

	assert.Equal(t, 2, s.Len())

	require.True(t, s.Remove(id1))
	assert.Equal(t, 1, s.Len())
	_, ok = s.Get(id1)
	assert.False(t, ok)
}

func TestSlabGenerationPreventsStaleAccess(t *testing.T) {
	s := newSlab[string](4)

	id, err := s.Insert("a")
	require.NoError(t, err)
	require.True(t, s.Remove(id))

	id2, err := s.Insert("b")
	require.NoError(t, err)
	assert.Equal(t, id.index, id2.index, "freed slot should be reused")
	assert.NotEqual(t, id.gen, id2.gen, "generation must advance on reuse")

	_, ok := s.Get(id)
	assert.False(t, ok, "stale Id must not resolve after slot reuse")

	v, ok := s.Get(id2)
	require.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestSlabCapacityExhausted(t *testing.T) {
	s := newSlab[int](2)

	_, err := s.Insert(1)
	require.NoError(t, err)
	_, err = s.Insert(2)
	require.NoError(t, err)

	_, err = s.Insert(3)
	assert.ErrorIs(t, err, ErrTooManySockets)
}

func TestSlabSet(t *testing.T) {
	s := newSlab[int](2)
	id, err := s.Insert(1)
	require.NoError(t, err)

	require.True(t, s.Set(id, 42))
	v, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, 42, v)

	require.True(t, s.Remove(id))
	assert.False(t, s.Set(id, 7), "Set on a removed Id must fail")
}

func TestSlabEach(t *testing.T) {
	s := newSlab[int](4)
	ids := make([]Id, 0, 3)
	for i := 0; i < 3; i++ {
		id, err := s.Insert(i)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.True(t, s.Remove(ids[1]))

	seen := map[int]bool{}
	s.Each(func(id Id, value int) {
		seen[value] = true
	})
	assert.Equal(t, map[int]bool{0: true, 2: true}, seen)
}

func TestIdValid(t *testing.T) {
	var zero Id
	assert.False(t, zero.Valid())

	s := newSlab[int](1)
	id, err := s.Insert(1)
	require.NoError(t, err)
	assert.True(t, id.Valid())
}
