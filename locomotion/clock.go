package locomotion

// Clock reports the current tick of the host loop. Ticks increase monotonically.
type Clock interface {
	CurrentTick() uint64
}

// FrameCounter is a Clock advanced by the host once at the start of every tick.
type FrameCounter struct {
	tick uint64
}

// CurrentTick ...
func (c *FrameCounter) CurrentTick() uint64 {
	return c.tick
}

// Advance moves the counter to the next tick and returns it.
func (c *FrameCounter) Advance() uint64 {
	c.tick++
	return c.tick
}
