package env

import (
	"math/rand"

	"github.com/fumin/mcaixi/config"
)

// ExtendedTiger actions. Unlike plain Tiger, a door can only be opened
// while standing; opening from a sitting position fails.
const (
	ExtendedTigerListen    = 0
	ExtendedTigerStand     = 1
	ExtendedTigerOpenLeft  = 2
	ExtendedTigerOpenRight = 3
)

// extendedTigerRewardOffset keeps the signed payoffs below nonnegative,
// same convention as Tiger.
const extendedTigerRewardOffset = 100

// ExtendedTiger is Tiger with a stand-up precondition: the agent must
// stand before attempting to open a door, and standing itself has a small
// cost (mirroring the penalty for listening), turning the single-decision
// problem into one the agent must sequence correctly to recover reward.
type ExtendedTiger struct {
	goldDoorP   float64
	listenP     float64
	goldDoor    uint64
	standing    bool
	observation uint64
	reward      float64
}

// NewExtendedTiger constructs an ExtendedTiger environment, reading the
// same "left-door-p" and "listen-p" options as Tiger.
func NewExtendedTiger(rng *rand.Rand, opts config.Options) (*ExtendedTiger, error) {
	p, err := opts.Float64Default("left-door-p", 1.0)
	if err != nil {
		return nil, err
	}
	listenP, err := opts.Float64Default("listen-p", 0.85)
	if err != nil {
		return nil, err
	}
	if p < 0 || p > 1 || listenP < 0 || listenP > 1 {
		panic("env: ExtendedTiger: door and listen probabilities must be in [0, 1]")
	}

	t := &ExtendedTiger{goldDoorP: p, listenP: listenP}
	t.goldDoor = 1 - flip(rng, p)
	t.observation = t.encodeObservation(tigerObsNone)
	return t, nil
}

// encodeObservation folds the standing/sitting state into the door hint so
// the fixed-width observation captures both (baseObs in {0,1,2}, plus 3
// when standing, so 0-5, fitting within the 3 observation bits ExtendedTiger
// uses).
func (t *ExtendedTiger) encodeObservation(baseObs uint64) uint64 {
	if t.standing {
		return baseObs + 3
	}
	return baseObs
}

func (t *ExtendedTiger) Observation() uint64 { return t.observation }
func (t *ExtendedTiger) Reward() float64     { return t.reward }
func (t *ExtendedTiger) IsFinished() bool    { return false }

// PerformAction resolves one step. Listening behaves as in Tiger. Standing
// costs the same small amount as listening and changes posture. Opening a
// door only resolves the game while standing; attempted from sitting, it
// is a wasted, mildly penalized move that leaves the round unchanged.
func (t *ExtendedTiger) PerformAction(rng *rand.Rand, action uint) {
	var signedReward float64
	var baseObs uint64 = tigerObsNone

	switch action {
	case ExtendedTigerListen:
		signedReward = -1
		if rng.Float64() < t.listenP {
			baseObs = 1 - t.goldDoor
		} else {
			baseObs = t.goldDoor
		}
	case ExtendedTigerStand:
		signedReward = -1
		t.standing = true
	case ExtendedTigerOpenLeft, ExtendedTigerOpenRight:
		if !t.standing {
			signedReward = -1
			break
		}
		doorOpened := uint64(action - ExtendedTigerOpenLeft)
		if doorOpened == t.goldDoor {
			signedReward = 10
		} else {
			signedReward = -100
		}
		t.standing = false
		t.goldDoor = 1 - flip(rng, t.goldDoorP)
	}

	t.observation = t.encodeObservation(baseObs)
	t.reward = signedReward + extendedTigerRewardOffset
}
