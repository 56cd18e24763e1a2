package resource

import (
	"errors"
	"testing"

	"github.com/gekko3d/outline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTexture struct {
	key      Key
	released bool
}

type fakeAllocator struct {
	live      map[*fakeTexture]bool
	failAfter int // allocations allowed before failing; <0 never fails
	count     int
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{live: map[*fakeTexture]bool{}, failAfter: -1}
}

func (a *fakeAllocator) Allocate(key Key) (*fakeTexture, error) {
	if a.failAfter >= 0 && a.count >= a.failAfter {
		return nil, errors.New("out of memory")
	}
	a.count++
	t := &fakeTexture{key: key}
	a.live[t] = true
	return t, nil
}

func (a *fakeAllocator) Release(t *fakeTexture) {
	t.released = true
	delete(a.live, t)
}

var testTemplates = []Template{
	{Purpose: Mask, Format: outline.FormatMask, SampleCount: 1},
	{Purpose: SeedPrimary, Format: outline.FormatSeed, SampleCount: 1},
	{Purpose: SeedSecondary, Format: outline.FormatSeed, SampleCount: 1},
}

func dims(t *testing.T, w, h uint32) outline.Dimensions {
	d, err := outline.NewDimensions(w, h)
	require.NoError(t, err)
	return d
}

func TestCache_EnsureAllocatesAllTemplates(t *testing.T) {
	alloc := newFakeAllocator()
	c := NewCache[*fakeTexture](alloc, testTemplates, nil)

	changed, err := c.Ensure(dims(t, 64, 32), nil)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, alloc.live, 3)

	set := c.Current()
	require.NotNil(t, set)
	assert.Equal(t, []Purpose{Mask, SeedPrimary, SeedSecondary}, set.Purposes())
	for _, p := range set.Purposes() {
		e, ok := set.Get(p)
		require.True(t, ok)
		assert.Equal(t, uint32(64), e.Key.Width)
		assert.Equal(t, uint32(32), e.Key.Height)
	}
	assert.NoError(t, set.Validate(dims(t, 64, 32)))
}

func TestCache_SameDimensionsIsNoop(t *testing.T) {
	alloc := newFakeAllocator()
	c := NewCache[*fakeTexture](alloc, testTemplates, nil)
	_, err := c.Ensure(dims(t, 10, 10), nil)
	require.NoError(t, err)
	first := c.Current()

	binds := 0
	changed, err := c.Ensure(dims(t, 10, 10), func(*Set[*fakeTexture]) error { binds++; return nil })
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Zero(t, binds)
	assert.Same(t, first, c.Current())
	assert.Equal(t, uint64(1), c.Generation())
}

func TestCache_ResizeReplacesEverythingAndRebinds(t *testing.T) {
	alloc := newFakeAllocator()
	c := NewCache[*fakeTexture](alloc, testTemplates, nil)
	_, err := c.Ensure(dims(t, 10, 10), nil)
	require.NoError(t, err)
	old := c.Current()
	oldBinding := old.Bind("jfa_primary_bind_group", SeedSecondary)

	var bound *Set[*fakeTexture]
	changed, err := c.Ensure(dims(t, 20, 15), func(s *Set[*fakeTexture]) error {
		// The old set is still alive while bindings are rebuilt.
		assert.Len(t, alloc.live, 6)
		bound = s
		return nil
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Same(t, bound, c.Current())
	assert.Len(t, alloc.live, 3)
	for _, p := range old.Purposes() {
		assert.True(t, old.Texture(p).released, "%s not released", p)
	}

	cur := c.Current()
	assert.NoError(t, cur.Validate(dims(t, 20, 15)))
	assert.ErrorIs(t, cur.Validate(dims(t, 10, 10)), outline.ErrResourceMismatch)

	err = cur.CheckBinding(oldBinding)
	assert.ErrorIs(t, err, outline.ErrStaleBinding)
	assert.ErrorIs(t, err, outline.ErrResourceMismatch)
	assert.NoError(t, cur.CheckBinding(cur.Bind("jfa_primary_bind_group", SeedSecondary)))
}

func TestCache_AllocationFailureKeepsOldSet(t *testing.T) {
	alloc := newFakeAllocator()
	c := NewCache[*fakeTexture](alloc, testTemplates, nil)
	_, err := c.Ensure(dims(t, 8, 8), nil)
	require.NoError(t, err)
	old := c.Current()

	alloc.failAfter = alloc.count + 2
	_, err = c.Ensure(dims(t, 16, 16), nil)
	require.Error(t, err)
	assert.Same(t, old, c.Current())
	assert.Len(t, alloc.live, 3, "partially allocated textures are released")
	assert.NoError(t, c.Current().Validate(dims(t, 8, 8)))
}

func TestCache_BindFailureKeepsOldSet(t *testing.T) {
	alloc := newFakeAllocator()
	c := NewCache[*fakeTexture](alloc, testTemplates, nil)
	_, err := c.Ensure(dims(t, 8, 8), nil)
	require.NoError(t, err)
	old := c.Current()

	bindErr := errors.New("bind group creation failed")
	_, err = c.Ensure(dims(t, 16, 16), func(*Set[*fakeTexture]) error { return bindErr })
	assert.ErrorIs(t, err, bindErr)
	assert.Same(t, old, c.Current())
	assert.Len(t, alloc.live, 3)
	assert.Equal(t, uint64(1), c.Generation())
}

func TestCache_ZeroDimensionsRejected(t *testing.T) {
	c := NewCache[*fakeTexture](newFakeAllocator(), testTemplates, nil)
	_, err := c.Ensure(outline.Dimensions{}, nil)
	assert.ErrorIs(t, err, outline.ErrInvalidConfig)
	assert.Nil(t, c.Current())
}

func TestCache_Release(t *testing.T) {
	alloc := newFakeAllocator()
	c := NewCache[*fakeTexture](alloc, testTemplates, nil)
	_, err := c.Ensure(dims(t, 4, 4), nil)
	require.NoError(t, err)
	c.Release()
	assert.Empty(t, alloc.live)
	assert.Nil(t, c.Current())
}

func TestSet_ValidatePingPongPair(t *testing.T) {
	d := dims(t, 4, 4)
	mk := func(p Purpose, w, h uint32, f outline.TextureFormat) *Entry[int] {
		return &Entry[int]{Key: Key{Purpose: p, Width: w, Height: h, Format: f, SampleCount: 1}}
	}

	t.Run("format mismatch", func(t *testing.T) {
		s := &Set[int]{dims: d, entries: map[Purpose]*Entry[int]{
			SeedPrimary:   mk(SeedPrimary, 4, 4, outline.FormatSeed),
			SeedSecondary: mk(SeedSecondary, 4, 4, outline.FormatMask),
		}, order: []Purpose{SeedPrimary, SeedSecondary}}
		assert.ErrorIs(t, s.Validate(d), outline.ErrResourceMismatch)
	})

	t.Run("missing secondary", func(t *testing.T) {
		s := &Set[int]{dims: d, entries: map[Purpose]*Entry[int]{
			SeedPrimary: mk(SeedPrimary, 4, 4, outline.FormatSeed),
		}, order: []Purpose{SeedPrimary}}
		assert.ErrorIs(t, s.Validate(d), outline.ErrResourceMismatch)
	})

	t.Run("nil set", func(t *testing.T) {
		var s *Set[int]
		assert.ErrorIs(t, s.Validate(d), outline.ErrResourceMismatch)
	})
}
