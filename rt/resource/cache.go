// Package resource owns the per-resolution transient textures of the outline
// pipeline. Textures are keyed by purpose and current dimensions; a change of
// dimensions rebuilds the whole set together with the binding state derived
// from it, or leaves the previous set untouched if anything fails.
package resource

import (
	"fmt"

	"github.com/gekko3d/outline"
	"github.com/google/uuid"
)

// Purpose names what a texture is used for. It doubles as its label.
type Purpose string

const (
	MaskMultisample Purpose = "outline_mask_multisample"
	Mask            Purpose = "outline_mask_output"
	SeedPrimary     Purpose = "outline_jfa_primary_output"
	SeedSecondary   Purpose = "outline_jfa_secondary_output"
)

// Template is a texture request without a size.
type Template struct {
	Purpose     Purpose
	Format      outline.TextureFormat
	SampleCount uint32
}

// Key fully describes an allocation.
type Key struct {
	Purpose     Purpose
	Width       uint32
	Height      uint32
	Format      outline.TextureFormat
	SampleCount uint32
}

func (k Key) String() string {
	return fmt.Sprintf("%s %dx%d %s x%d", k.Purpose, k.Width, k.Height, k.Format, k.SampleCount)
}

// Allocator creates and destroys backend textures.
type Allocator[T any] interface {
	Allocate(key Key) (T, error)
	Release(tex T)
}

// Entry is one allocated texture. ID changes on every allocation.
type Entry[T any] struct {
	ID      uuid.UUID
	Key     Key
	Texture T
}

// Set is the group of textures valid for one resolution.
type Set[T any] struct {
	dims    outline.Dimensions
	entries map[Purpose]*Entry[T]
	order   []Purpose
}

func (s *Set[T]) Dimensions() outline.Dimensions { return s.dims }

func (s *Set[T]) Get(p Purpose) (*Entry[T], bool) {
	e, ok := s.entries[p]
	return e, ok
}

// Texture returns the texture for p or the zero value.
func (s *Set[T]) Texture(p Purpose) T {
	if e, ok := s.entries[p]; ok {
		return e.Texture
	}
	var zero T
	return zero
}

// Purposes lists the set's purposes in allocation order.
func (s *Set[T]) Purposes() []Purpose {
	return append([]Purpose(nil), s.order...)
}

// Validate checks every texture against dims and the seed ping-pong pair
// against each other and the single-sample mask.
func (s *Set[T]) Validate(dims outline.Dimensions) error {
	if s == nil {
		return fmt.Errorf("%w: no resources prepared", outline.ErrResourceMismatch)
	}
	w, h := dims.Size()
	for _, p := range s.order {
		k := s.entries[p].Key
		if k.Width != w || k.Height != h {
			return fmt.Errorf("%w: %s is %dx%d, dimensions are %s", outline.ErrResourceMismatch, p, k.Width, k.Height, dims)
		}
	}
	primary, ok1 := s.entries[SeedPrimary]
	secondary, ok2 := s.entries[SeedSecondary]
	if !ok1 || !ok2 {
		return fmt.Errorf("%w: seed ping-pong pair incomplete", outline.ErrResourceMismatch)
	}
	a, b := primary.Key, secondary.Key
	if a.Width != b.Width || a.Height != b.Height || a.Format != b.Format || a.SampleCount != b.SampleCount {
		return fmt.Errorf("%w: ping-pong buffers differ: %s vs %s", outline.ErrResourceMismatch, a, b)
	}
	if mask, ok := s.entries[Mask]; ok {
		if mask.Key.Width != a.Width || mask.Key.Height != a.Height {
			return fmt.Errorf("%w: mask %s vs seeds %s", outline.ErrResourceMismatch, mask.Key, a)
		}
	}
	return nil
}

// Binding records which texture allocations a piece of binding state (a bind
// group, a pass input) was built from.
type Binding struct {
	Label   string
	Sources map[Purpose]uuid.UUID
}

// Bind captures the current identities of the given purposes.
func (s *Set[T]) Bind(label string, purposes ...Purpose) Binding {
	b := Binding{Label: label, Sources: make(map[Purpose]uuid.UUID, len(purposes))}
	for _, p := range purposes {
		if e, ok := s.entries[p]; ok {
			b.Sources[p] = e.ID
		}
	}
	return b
}

// CheckBinding fails if b refers to a texture that is no longer current.
func (s *Set[T]) CheckBinding(b Binding) error {
	for p, id := range b.Sources {
		e, ok := s.entries[p]
		if !ok || e.ID != id {
			return fmt.Errorf("%w: %s refers to a released %s", outline.ErrStaleBinding, b.Label, p)
		}
	}
	return nil
}

// Cache keeps the current Set and rebuilds it on resize.
type Cache[T any] struct {
	alloc      Allocator[T]
	templates  []Template
	current    *Set[T]
	generation uint64
	log        outline.Logger
}

func NewCache[T any](alloc Allocator[T], templates []Template, log outline.Logger) *Cache[T] {
	return &Cache[T]{
		alloc:     alloc,
		templates: templates,
		log:       outline.LoggerOrNop(log),
	}
}

// Current returns the live set, or nil before the first Ensure.
func (c *Cache[T]) Current() *Set[T] { return c.current }

// Generation counts successful rebuilds.
func (c *Cache[T]) Generation() uint64 { return c.generation }

// Ensure makes the cache hold textures of the given dimensions. When a
// rebuild is needed, all textures are allocated first, then bind rebuilds
// the dependent binding state against the new set, and only after both
// succeed is the old set released. On failure the new textures are released
// and the old set stays current.
func (c *Cache[T]) Ensure(dims outline.Dimensions, bind func(*Set[T]) error) (bool, error) {
	if dims.IsZero() {
		return false, fmt.Errorf("%w: zero dimensions", outline.ErrInvalidConfig)
	}
	if c.current != nil && c.current.dims == dims {
		return false, nil
	}

	w, h := dims.Size()
	next := &Set[T]{dims: dims, entries: make(map[Purpose]*Entry[T], len(c.templates))}
	for _, t := range c.templates {
		key := Key{Purpose: t.Purpose, Width: w, Height: h, Format: t.Format, SampleCount: t.SampleCount}
		tex, err := c.alloc.Allocate(key)
		if err != nil {
			c.release(next)
			return false, fmt.Errorf("allocate %s: %w", key, err)
		}
		next.entries[t.Purpose] = &Entry[T]{ID: uuid.New(), Key: key, Texture: tex}
		next.order = append(next.order, t.Purpose)
	}

	if bind != nil {
		if err := bind(next); err != nil {
			c.release(next)
			return false, fmt.Errorf("rebind for %s: %w", dims, err)
		}
	}

	old := c.current
	c.current = next
	c.generation++
	if old != nil {
		c.release(old)
		c.log.Infof("outline resources resized %s -> %s", old.dims, dims)
	} else {
		c.log.Infof("outline resources created at %s", dims)
	}
	return true, nil
}

// Release frees the current set.
func (c *Cache[T]) Release() {
	if c.current != nil {
		c.release(c.current)
		c.current = nil
	}
}

func (c *Cache[T]) release(s *Set[T]) {
	for _, p := range s.order {
		c.alloc.Release(s.entries[p].Texture)
	}
}
