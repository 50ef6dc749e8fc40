package world

import (
	"context"
	"sync"
)

// Memory is an in-process world. Mutations run on its Queue; reads may
// happen from any goroutine.
type Memory struct {
	q      *Queue
	mu     sync.RWMutex
	blocks map[Pos]string
}

// NewMemory creates an empty world.
func NewMemory() *Memory {
	return &Memory{q: NewQueue(), blocks: make(map[Pos]string)}
}

// SolidAt reports whether any block is stored at the position.
func (m *Memory) SolidAt(x, y, z int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blocks[Pos{x, y, z}]
	return ok
}

// Execute runs fn on the world queue.
func (m *Memory) Execute(ctx context.Context, fn func(Tx) error) error {
	return m.q.Submit(ctx, func() error { return fn(memTx{m}) })
}

// Block returns the block name at the position.
func (m *Memory) Block(x, y, z int) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.blocks[Pos{x, y, z}]
	return name, ok
}

// Len returns the number of stored blocks.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blocks)
}

// Snapshot returns a copy of all blocks.
func (m *Memory) Snapshot() map[Pos]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[Pos]string, len(m.blocks))
	for p, name := range m.blocks {
		out[p] = name
	}
	return out
}

// Close stops the world queue.
func (m *Memory) Close() error {
	m.q.Close()
	return nil
}

type memTx struct{ m *Memory }

func (t memTx) SetBlock(x, y, z int, name string) error {
	t.m.mu.Lock()
	t.m.blocks[Pos{x, y, z}] = name
	t.m.mu.Unlock()
	return nil
}
