package board

import (
	"fmt"
	"time"
)

// Config describes a board before its first reveal.
type Config struct {
	Width  uint16
	Height uint16
	Mines  uint32

	// RNG seed (0 => time-based)
	Seed int64
}

// ValidateConfig reports whether a board of the given shape can be built.
// The dimension cap is a rendering policy, not an algorithm limit.
func ValidateConfig(width, height uint16, mines uint32) bool {
	if width < 1 || height < 1 {
		return false
	}
	if width > MaxDimension || height > MaxDimension {
		return false
	}
	return mines <= uint32(width)*uint32(height)
}

func (c Config) Validate() error {
	if !ValidateConfig(c.Width, c.Height, c.Mines) {
		return fmt.Errorf("%w: %dx%d with %d mines", ErrInvalidConfig, c.Width, c.Height, c.Mines)
	}
	return nil
}

// Cells is the number of cells on the board.
func (c Config) Cells() uint32 {
	return uint32(c.Width) * uint32(c.Height)
}

func (c Config) seedOrNow() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}
