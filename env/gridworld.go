package env

import "math/rand"

// GridWorld actions, matching the original's GUP/GRIGHT/GDOWN/GLEFT.
const (
	GridUp = iota
	GridRight
	GridDown
	GridLeft
)

const gridSize = 4

// GridWorld is a small fixed maze: the agent moves on a 5x5 grid (corners
// clamped) and is rewarded for reaching the destination corner, after
// which it is teleported to a new random cell. The observation is always
// zero: the agent must learn the maze from the reward signal alone.
type GridWorld struct {
	x, y   int
	reward float64
}

// NewGridWorld constructs a GridWorld environment at a random starting
// cell.
func NewGridWorld(rng *rand.Rand) *GridWorld {
	return &GridWorld{
		x: rng.Intn(gridSize + 1),
		y: rng.Intn(gridSize + 1),
	}
}

func (g *GridWorld) Observation() uint64 { return 0 }
func (g *GridWorld) Reward() float64     { return g.reward }
func (g *GridWorld) IsFinished() bool    { return false }

// PerformAction moves the agent one cell in the requested direction,
// clamped to the grid's edges. If the agent was standing on the
// destination cell at the start of the move, it is rewarded and
// relocated to a new random cell before the move is applied, matching the
// original's reward-then-move ordering.
func (g *GridWorld) PerformAction(rng *rand.Rand, action uint) {
	g.reward = 0

	if g.x == gridSize && g.y == gridSize {
		g.reward = 1
		g.x = rng.Intn(gridSize + 1)
		g.y = rng.Intn(gridSize + 1)
	}

	switch action {
	case GridUp:
		g.x++
	case GridRight:
		g.y++
	case GridDown:
		g.x--
	case GridLeft:
		g.y--
	}

	g.clamp()
}

func (g *GridWorld) clamp() {
	switch {
	case g.x > gridSize:
		g.x = gridSize
	case g.x < 0:
		g.x = 0
	}
	switch {
	case g.y > gridSize:
		g.y = gridSize
	case g.y < 0:
		g.y = 0
	}
}
