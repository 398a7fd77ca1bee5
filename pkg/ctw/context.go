package ctw

import "fmt"

// Context is the sliding window of the most recent bits a Predictor conditions on.
// The window is owned by the caller and passed explicitly to every query,
// so a predictor holds no transient "current path" state between calls.
type Context struct {
	bits  []bool
	head  int // index of the next write
	count int // how many bits were pushed since the last reset (saturates at len(bits))
}

func NewContext(length int) *Context {
	if length <= 0 {
		panic(fmt.Sprintf("ctw: context length must be positive, got %d", length))
	}
	return &Context{bits: make([]bool, length)}
}

// Capacity of the window, equal to the predictor's context length
func (c *Context) Capacity() int {
	return len(c.bits)
}

// Number of valid bits, bits past it read as 0
func (c *Context) Len() int {
	return c.count
}

// Forget every pushed bit
func (c *Context) Reset() {
	c.head = 0
	c.count = 0
}

// Append bits in order, only the newest Capacity() bits are kept
func (c *Context) Push(bits ...bool) {
	for _, b := range bits {
		c.bits[c.head] = b
		c.head++
		if c.head == len(c.bits) {
			c.head = 0
		}
		if c.count < len(c.bits) {
			c.count++
		}
	}
}

// Bit i back in time, 0 being the most recently pushed one
func (c *Context) Bit(i int) bool {
	if i < 0 || i >= c.count {
		return false
	}
	idx := c.head - 1 - i
	if idx < 0 {
		idx += len(c.bits)
	}
	return c.bits[idx]
}

// Bits in push order (oldest first), mostly for debugging
func (c *Context) Bits() []bool {
	out := make([]bool, c.count)
	for i := 0; i < c.count; i++ {
		out[c.count-1-i] = c.Bit(i)
	}
	return out
}
