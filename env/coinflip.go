package env

import (
	"math/rand"

	"github.com/fumin/mcaixi/config"
)

// CoinFlip flips a biased coin each cycle and asks the agent to predict the
// next flip. The observation is independent of the agent's actions; the
// agent is rewarded 1 for guessing correctly, 0 otherwise.
type CoinFlip struct {
	p           float64 // probability of observing 1 (heads)
	observation uint64
	reward      float64
}

// NewCoinFlip constructs a CoinFlip environment, reading the "coin-flip-p"
// option (default 1.0, an always-heads coin) and producing the initial
// observation.
func NewCoinFlip(rng *rand.Rand, opts config.Options) (*CoinFlip, error) {
	p, err := opts.Float64Default("coin-flip-p", 1.0)
	if err != nil {
		return nil, err
	}
	if p < 0 || p > 1 {
		panic("env: CoinFlip: coin-flip-p must be in [0, 1]")
	}

	c := &CoinFlip{p: p}
	c.observation = flip(rng, p)
	return c, nil
}

func flip(rng *rand.Rand, p float64) uint64 {
	if rng.Float64() < p {
		return 1
	}
	return 0
}

func (c *CoinFlip) Observation() uint64 { return c.observation }
func (c *CoinFlip) Reward() float64     { return c.reward }
func (c *CoinFlip) IsFinished() bool    { return false }

// PerformAction flips the coin again and rewards the agent for correctly
// having predicted it via action.
func (c *CoinFlip) PerformAction(rng *rand.Rand, action uint) {
	c.observation = flip(rng, c.p)
	if uint64(action) == c.observation {
		c.reward = 1
	} else {
		c.reward = 0
	}
}
