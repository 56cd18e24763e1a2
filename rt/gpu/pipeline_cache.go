package gpu

import (
	"fmt"
	"sync"

	"github.com/gekko3d/outline"
)

type pipelineState int

const (
	pipelineQueued pipelineState = iota
	pipelineReady
	pipelineFailed
)

type pipelineEntry[P any] struct {
	state    pipelineState
	pipeline P
	err      error
}

// pipelineCache compiles programs off the render thread. Get reports
// outline.ErrNotReady until the program is available.
type pipelineCache[P any] struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	entries map[string]*pipelineEntry[P]
	log     outline.Logger
}

func newPipelineCache[P any](log outline.Logger) *pipelineCache[P] {
	return &pipelineCache[P]{
		entries: make(map[string]*pipelineEntry[P]),
		log:     outline.LoggerOrNop(log),
	}
}

// Queue starts compiling name in the background. Queuing a known name is a
// no-op.
func (c *pipelineCache[P]) Queue(name string, build func() (P, error)) {
	c.mu.Lock()
	if _, ok := c.entries[name]; ok {
		c.mu.Unlock()
		return
	}
	entry := &pipelineEntry[P]{state: pipelineQueued}
	c.entries[name] = entry
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		p, err := build()

		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			entry.state = pipelineFailed
			entry.err = err
			c.log.Errorf("pipeline %s failed to compile: %v", name, err)
			return
		}
		entry.state = pipelineReady
		entry.pipeline = p
		c.log.Debugf("pipeline %s ready", name)
	}()
}

func (c *pipelineCache[P]) Get(name string) (P, error) {
	var zero P
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[name]
	if !ok {
		return zero, fmt.Errorf("pipeline %s was never queued", name)
	}
	switch entry.state {
	case pipelineReady:
		return entry.pipeline, nil
	case pipelineFailed:
		return zero, fmt.Errorf("pipeline %s: %w", name, entry.err)
	default:
		return zero, fmt.Errorf("pipeline %s: %w", name, outline.ErrNotReady)
	}
}

// Wait blocks until every queued program has finished compiling.
func (c *pipelineCache[P]) Wait() {
	c.wg.Wait()
}

// Each calls fn for every compiled pipeline.
func (c *pipelineCache[P]) Each(fn func(name string, p P)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, e := range c.entries {
		if e.state == pipelineReady {
			fn(name, e.pipeline)
		}
	}
}
