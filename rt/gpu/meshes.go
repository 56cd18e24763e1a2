package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/outline"
	"github.com/google/uuid"
)

type gpuMesh struct {
	vertex     *wgpu.Buffer
	index      *wgpu.Buffer
	indexCount uint32
	lastFrame  uint64
}

// meshCache uploads each outline.Mesh once, keyed by its ID, and frees
// uploads that have not been drawn for a while.
type meshCache struct {
	device *wgpu.Device
	meshes map[uuid.UUID]*gpuMesh
	frame  uint64
}

// meshIdleFrames is how long an unused upload is kept.
const meshIdleFrames = 120

func newMeshCache(device *wgpu.Device) *meshCache {
	return &meshCache{device: device, meshes: make(map[uuid.UUID]*gpuMesh)}
}

func (c *meshCache) get(m *outline.Mesh) (*gpuMesh, error) {
	if g, ok := c.meshes[m.ID]; ok {
		g.lastFrame = c.frame
		return g, nil
	}
	vertex, err := c.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    m.Label + " outline vertices",
		Contents: wgpu.ToBytes(m.Positions),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, fmt.Errorf("upload mesh %s: %w", m.Label, err)
	}
	index, err := c.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    m.Label + " outline indices",
		Contents: wgpu.ToBytes(m.Indices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		vertex.Release()
		return nil, fmt.Errorf("upload mesh %s: %w", m.Label, err)
	}
	g := &gpuMesh{vertex: vertex, index: index, indexCount: uint32(len(m.Indices)), lastFrame: c.frame}
	c.meshes[m.ID] = g
	return g, nil
}

// endFrame releases meshes idle for more than meshIdleFrames.
func (c *meshCache) endFrame() {
	for id, g := range c.meshes {
		if c.frame-g.lastFrame > meshIdleFrames {
			g.release()
			delete(c.meshes, id)
		}
	}
	c.frame++
}

func (c *meshCache) release() {
	for id, g := range c.meshes {
		g.release()
		delete(c.meshes, id)
	}
}

func (g *gpuMesh) release() {
	g.vertex.Release()
	g.index.Release()
}
