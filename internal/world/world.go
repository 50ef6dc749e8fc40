// Package world holds the block store an import writes into.
package world

import "context"

// Pos is a block position in world coordinates.
type Pos struct {
	X, Y, Z int
}

// Prober answers whether a world cell holds a solid block.
type Prober interface {
	SolidAt(x, y, z int) bool
}

// Tx mutates blocks. It is only valid inside the function passed to Execute.
type Tx interface {
	SetBlock(x, y, z int, name string) error
}

// World is a block store that serializes all mutation through Execute.
type World interface {
	Prober
	// Execute runs fn exclusively with respect to every other Execute call
	// and returns once fn has finished.
	Execute(ctx context.Context, fn func(Tx) error) error
}
