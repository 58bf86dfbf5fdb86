package engine

import (
	"github.com/cespare/xxhash/v2"
)

// Spawn rule constants. A cell spawns a token when its roll lands below the
// spawn probability; rolls below half the probability yield the low value,
// the rest the high value. With the default probability 0.15 that means:
// roll < 0.075 spawns a 1, 0.075 <= roll < 0.15 spawns a 2, roll >= 0.15
// leaves the cell empty.
const (
	DefaultSpawnProbability = 0.15

	LowTokenValue  TokenValue = 1
	HighTokenValue TokenValue = 2
)

// Roller produces the deterministic [0,1) roll for a cell. Implementations
// must return the same value for the same coordinate on every call.
type Roller interface {
	Roll(cell CellCoord) float64
}

// hashRoller derives the roll from a 64-bit hash of the canonical cell key,
// so a cell rolls the same value across calls and process restarts without
// any persisted seed.
type hashRoller struct{}

// Roll hashes the canonical "i:j" key and scales the top 53 bits of the hash
// to [0,1)
func (hashRoller) Roll(cell CellCoord) float64 {
	h := xxhash.Sum64String(cell.Key())
	return float64(h>>11) / float64(1<<53)
}

// Generator decides which cells spawn tokens and with what value
type Generator struct {
	roller      Roller
	probability float64
}

// NewGenerator creates a Generator backed by the deterministic hash roller,
// using the spawn probability from the configuration
func NewGenerator(config *GameConfig) *Generator {
	return &Generator{roller: hashRoller{}, probability: config.SpawnProbability}
}

// NewGeneratorWithRoller creates a Generator with a custom roller. Tests and
// tooling use this to script exact rolls.
func NewGeneratorWithRoller(roller Roller, probability float64) *Generator {
	return &Generator{roller: roller, probability: probability}
}

// Roll returns the deterministic [0,1) roll for a cell
func (g *Generator) Roll(cell CellCoord) float64 {
	return g.roller.Roll(cell)
}

// SpawnValue returns the token a cell spawns before any override is recorded:
// the low value for rolls under half the spawn probability, the high value for
// rolls under the full probability, and NoToken otherwise
func (g *Generator) SpawnValue(cell CellCoord) TokenValue {
	roll := g.roller.Roll(cell)
	switch {
	case roll < g.probability/2:
		return LowTokenValue
	case roll < g.probability:
		return HighTokenValue
	default:
		return NoToken
	}
}
