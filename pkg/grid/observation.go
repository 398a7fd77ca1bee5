package grid

import (
	"hash/fnv"
)

// Observation is a fixed-size binary image stored row-major,
// pixel (x, y) lives at index y*width + x and holds 0 or 1
type Observation []uint8

func New(size int) Observation {
	return make(Observation, size)
}

func (o Observation) Clone() Observation {
	if o == nil {
		return nil
	}
	clone := make(Observation, len(o))
	copy(clone, o)
	return clone
}

func (o Observation) Equal(other Observation) bool {
	if len(o) != len(other) {
		return false
	}
	for i := range o {
		if o[i] != other[i] {
			return false
		}
	}
	return true
}

// Bit reports whether pixel i is set
func (o Observation) Bit(i int) bool {
	return o[i] != 0
}

// Set writes a pixel, any non-zero value is stored as 1
func (o Observation) Set(i int, on bool) {
	if on {
		o[i] = 1
	} else {
		o[i] = 0
	}
}

// Count of the set pixels
func (o Observation) Count() int {
	n := 0
	for _, p := range o {
		if p != 0 {
			n++
		}
	}
	return n
}

// Hash of the observation, stable across runs (FNV-1a over the packed bits),
// used to key search-tree children and memoised policy decisions
func (o Observation) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	n := 0
	for i := 0; i < len(o); i += 8 {
		var b byte
		for j := 0; j < 8 && i+j < len(o); j++ {
			if o[i+j] != 0 {
				b |= 1 << j
			}
		}
		buf[n] = b
		n++
		if n == len(buf) {
			_, _ = h.Write(buf[:])
			n = 0
		}
	}
	if n > 0 {
		_, _ = h.Write(buf[:n])
	}
	// Mix in the length, so that trailing zeros of different sizes don't collide
	buf[0] = byte(len(o))
	buf[1] = byte(len(o) >> 8)
	_, _ = h.Write(buf[:2])
	return h.Sum64()
}
