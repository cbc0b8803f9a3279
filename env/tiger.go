package env

import (
	"math/rand"

	"github.com/fumin/mcaixi/config"
)

// Tiger actions.
const (
	TigerOpenLeft  = 0
	TigerOpenRight = 1
	TigerListen    = 2
)

// Tiger observations.
const (
	tigerObsLeft  = 0
	tigerObsRight = 1
	tigerObsNone  = 2
)

// tigerRewardOffset shifts the game's signed rewards (-100, -1, +10) up
// into the nonnegative range the agent's reward-bits encoding requires,
// the same trick the original's RPS environment uses for its own
// signed-reward range.
const tigerRewardOffset = 100

// Tiger is the classic tiger-door POMDP: a tiger is behind one of two
// doors and gold behind the other. The agent can listen for an
// unreliable hint, or open a door; opening the gold door pays off well,
// opening the tiger's door is a heavy penalty, and listening costs a
// small, certain amount.
type Tiger struct {
	goldDoorP   float64 // probability gold is behind the left door
	listenP     float64 // probability listening reports the correct door
	goldDoor    uint64
	observation uint64
	reward      float64
}

// NewTiger constructs a Tiger environment, reading the "left-door-p" (door
// placement prior, default 1.0) and "listen-p" (listen accuracy, default
// 0.85) options.
func NewTiger(rng *rand.Rand, opts config.Options) (*Tiger, error) {
	p, err := opts.Float64Default("left-door-p", 1.0)
	if err != nil {
		return nil, err
	}
	listenP, err := opts.Float64Default("listen-p", 0.85)
	if err != nil {
		return nil, err
	}
	if p < 0 || p > 1 || listenP < 0 || listenP > 1 {
		panic("env: Tiger: door and listen probabilities must be in [0, 1]")
	}

	t := &Tiger{goldDoorP: p, listenP: listenP}
	t.goldDoor = 1 - flip(rng, p)
	t.observation = tigerObsNone
	return t, nil
}

func (t *Tiger) Observation() uint64 { return t.observation }
func (t *Tiger) Reward() float64     { return t.reward }
func (t *Tiger) IsFinished() bool    { return false }

// PerformAction resolves one round: listening reports a possibly-wrong
// door hint at a small cost, while opening a door ends the round, pays off
// according to whether gold or the tiger was behind it, and reseeds which
// door hides the gold for the next round.
func (t *Tiger) PerformAction(rng *rand.Rand, action uint) {
	var signedReward float64
	switch action {
	case TigerListen:
		signedReward = -1
		if rng.Float64() < t.listenP {
			t.observation = 1 - t.goldDoor // correctly hears the tiger behind the other door
		} else {
			t.observation = t.goldDoor
		}
	default:
		if uint64(action) == t.goldDoor {
			signedReward = 10
		} else {
			signedReward = -100
		}
		t.observation = tigerObsNone
		t.goldDoor = 1 - flip(rng, t.goldDoorP)
	}
	t.reward = signedReward + tigerRewardOffset
}
