package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidConfig = errors.New("model: invalid config")

type Config struct {
	Width              int
	Height             int
	NeighborhoodWidth  int
	NeighborhoodHeight int
	NumActions         int
	// Markov order, how many past (action, observation) pairs are in the context
	Order int
}

// Defaults used for the 15x15 shooter game
func DefaultConfig() Config {
	return Config{
		Width:              15,
		Height:             15,
		NeighborhoodWidth:  7,
		NeighborhoodHeight: 7,
		NumActions:         4,
		Order:              1,
	}
}

func (c Config) String() string {
	builder := strings.Builder{}
	_ = json.NewEncoder(&builder).Encode(c)
	return builder.String()
}

func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.NeighborhoodWidth <= 0 || c.NeighborhoodHeight <= 0:
		return fmt.Errorf("%w: neighborhood %dx%d", ErrInvalidConfig, c.NeighborhoodWidth, c.NeighborhoodHeight)
	case c.NumActions <= 0:
		return fmt.Errorf("%w: %d actions", ErrInvalidConfig, c.NumActions)
	case c.Order <= 0:
		return fmt.Errorf("%w: order %d", ErrInvalidConfig, c.Order)
	}
	return nil
}

// ceil(log2(numActions))
func bitsForActions(numActions int) int {
	bits := 0
	for i := 1; i < numActions; i *= 2 {
		bits++
	}
	return bits
}
