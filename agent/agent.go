// Package agent implements the MC-AIXI-CTW agent: a context tree belief
// over the agent's interaction history, together with the bookkeeping that
// turns observation/reward/action values into the binary symbols the tree
// actually models.
package agent

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/fumin/mcaixi/ctw"
)

// Config carries the agent's construction parameters, usually read from a
// config file (see package config).
type Config struct {
	Actions     uint   // number of distinct actions
	ObsBits     uint   // bits needed to encode one observation
	RewardBits  uint   // bits needed to encode one reward
	Horizon     uint   // planning horizon, in cycles
	ContextDepth int   // maximum context tree depth
}

// actionBits returns the number of bits needed to represent n distinct
// actions, following the original's doubling-counter formula: the smallest
// c such that 2^c >= n (c==0 when n<=1).
func actionBits(n uint) uint {
	var bits uint
	for i := uint(1); i < n; i *= 2 {
		bits++
	}
	return bits
}

// Agent holds the context tree belief and the bookkeeping needed to convert
// between typed percepts/actions and the binary symbols the tree models.
//
// Calls to ModelUpdatePercept and ModelUpdateAction must strictly
// alternate, starting with a percept update: this mirrors the environment
// interaction cycle of spec.md §2 (perceive, then act, then perceive...).
// Violating the alternation is a programming error and panics, matching the
// original's assert(m_last_update_percept == ...).
type Agent struct {
	ct *ctw.ContextTree

	numActions  uint
	actionBits  uint
	obsBits     uint
	rewardBits  uint
	horizon     uint

	age                 uint64
	totalReward         float64
	lastUpdateWasPercept bool
}

// New constructs an agent with an empty context tree.
func New(cfg Config) (*Agent, error) {
	if cfg.Actions == 0 {
		return nil, errors.New("agent: Config.Actions must be > 0")
	}
	if cfg.ObsBits == 0 {
		return nil, errors.New("agent: Config.ObsBits must be > 0")
	}
	if cfg.RewardBits == 0 {
		return nil, errors.New("agent: Config.RewardBits must be > 0")
	}

	a := &Agent{
		ct:          ctw.NewContextTree(cfg.ContextDepth),
		numActions:  cfg.Actions,
		actionBits:  actionBits(cfg.Actions),
		obsBits:     cfg.ObsBits,
		rewardBits:  cfg.RewardBits,
		horizon:     cfg.Horizon,
		// The cycle starts by receiving a percept, so the agent begins in
		// the "last update was an action" state to allow the first
		// ModelUpdatePercept call through.
		lastUpdateWasPercept: false,
	}
	return a, nil
}

// Age returns the number of action/percept cycles completed.
func (a *Agent) Age() uint64 { return a.age }

// Reward returns the total reward accumulated across the agent's lifespan.
func (a *Agent) Reward() float64 { return a.totalReward }

// AverageReward returns the mean reward per cycle, 0 before the first cycle.
func (a *Agent) AverageReward() float64 {
	if a.age == 0 {
		return 0
	}
	return a.totalReward / float64(a.age)
}

// MaxReward returns the largest reward value representable in RewardBits
// bits, i.e. (2^RewardBits)-1.
func (a *Agent) MaxReward() float64 {
	return float64((uint64(1) << a.rewardBits) - 1)
}

// MinReward returns the smallest representable reward, always 0.
func (a *Agent) MinReward() float64 { return 0 }

// MaxObservation returns the largest observation value representable in
// ObsBits bits, i.e. (2^ObsBits)-1.
func (a *Agent) MaxObservation() uint64 {
	return (uint64(1) << a.obsBits) - 1
}

// NumActions returns the number of distinct actions.
func (a *Agent) NumActions() uint { return a.numActions }

// Horizon returns the planning horizon in cycles.
func (a *Agent) Horizon() uint { return a.horizon }

// RewardBits returns the number of bits used to encode one reward, the
// width a composite percept key must shift the observation by to keep the
// reward's bits distinct.
func (a *Agent) RewardBits() uint { return a.rewardBits }

// HistorySize returns the number of bits in the agent's observed history.
func (a *Agent) HistorySize() int { return a.ct.HistorySize() }

// ContextTree exposes the underlying belief model, for use by the planner.
func (a *Agent) ContextTree() *ctw.ContextTree { return a.ct }

func (a *Agent) isActionOk(action uint) bool { return action < a.numActions }

func (a *Agent) isRewardOk(reward float64) bool {
	return reward >= a.MinReward() && reward <= a.MaxReward()
}

func (a *Agent) isObservationOk(observation uint64) bool {
	return observation <= a.MaxObservation()
}

// GenRandomAction returns an action sampled uniformly at random.
func (a *Agent) GenRandomAction(rng *rand.Rand) uint {
	return uint(rng.Int31n(int32(a.numActions)))
}

// ModelUpdatePercept folds an observation/reward pair into the belief model.
// It must be called when the agent is expecting a percept (i.e. right after
// construction, or right after an action update); calling it out of turn
// panics.
func (a *Agent) ModelUpdatePercept(observation uint64, reward float64) {
	if a.lastUpdateWasPercept {
		panic("agent: ModelUpdatePercept called out of turn: an action update must come first")
	}
	if !a.isRewardOk(reward) {
		panic("agent: ModelUpdatePercept: reward out of range")
	}
	if !a.isObservationOk(observation) {
		panic("agent: ModelUpdatePercept: observation out of range")
	}

	symbols := a.encodePercept(observation, reward)
	a.ct.UpdateSeq(symbols)

	a.totalReward += reward
	a.lastUpdateWasPercept = true
}

// ModelUpdateAction folds a performed action into the belief model. It must
// be called right after a percept update; calling it out of turn panics.
// Unlike percept bits, action bits are appended to history without being
// modelled by the tree: the agent chooses its own actions, so there is
// nothing to predict.
func (a *Agent) ModelUpdateAction(action uint) {
	if !a.isActionOk(action) {
		panic("agent: ModelUpdateAction: action out of range")
	}
	if !a.lastUpdateWasPercept {
		panic("agent: ModelUpdateAction called out of turn: a percept update must come first")
	}

	symbols := ctw.Encode(nil, uint64(action), a.actionBits)
	a.ct.UpdateHistory(symbols)

	a.age++
	a.lastUpdateWasPercept = false
}

// encodePercept returns the observation bits followed by the reward bits,
// both LSB-first, matching original_source/agent.cpp's encodePercept.
func (a *Agent) encodePercept(observation uint64, reward float64) []int {
	var symbols []int
	symbols = ctw.Encode(symbols, observation, a.obsBits)
	symbols = ctw.Encode(symbols, uint64(reward), a.rewardBits)
	return symbols
}

// GenPerceptAndUpdate samples one observation/reward pair from the agent's
// predictive model, folds it into the model exactly as ModelUpdatePercept
// would, and returns the decoded values. This is the simulator the planner
// uses to imagine future percepts during search.
func (a *Agent) GenPerceptAndUpdate(rng *rand.Rand) (observation uint64, reward float64) {
	if a.lastUpdateWasPercept {
		panic("agent: GenPerceptAndUpdate called out of turn: an action update must come first")
	}

	bits := a.obsBits + a.rewardBits
	symbols := a.ct.GenRandomSymbolsAndUpdate(rng, int(bits))

	observation = ctw.Decode(symbols[:a.obsBits], a.obsBits)
	reward = float64(ctw.Decode(symbols[a.obsBits:], a.rewardBits))

	a.totalReward += reward
	a.lastUpdateWasPercept = true
	return observation, reward
}

// ModelUndo is a save point for Agent.Revert: enough scalar state to detect
// when a revert is legal and to restore the agent's bookkeeping fields,
// combined with the context tree's own history length to know how far to
// replay reverts.
type ModelUndo struct {
	age                  uint64
	reward               float64
	historySize          int
	lastUpdateWasPercept bool
}

// SavePoint captures the agent's current state for a later Revert.
func (a *Agent) SavePoint() ModelUndo {
	return ModelUndo{
		age:                  a.age,
		reward:               a.totalReward,
		historySize:          a.ct.HistorySize(),
		lastUpdateWasPercept: a.lastUpdateWasPercept,
	}
}

// Revert restores the agent to the state captured by a prior SavePoint
// call. It works by replaying ctw.ContextTree reverts, one cycle at a time
// (a percept unit of obsBits+rewardBits tree-reverts, then one
// action-history-only revert), from the current history length back down
// to the saved length; this mirrors spec.md §4.3's revert procedure rather
// than the original's unimplemented Agent::modelRevert stub.
//
// Reverting past the save point (due to a corrupted or stale ModelUndo) is
// a programming error and panics.
func (a *Agent) Revert(mu ModelUndo) {
	if mu.historySize > a.ct.HistorySize() {
		panic("agent: Revert: save point is from the future")
	}

	cur := a.lastUpdateWasPercept
	for a.ct.HistorySize() > mu.historySize {
		if cur {
			// Last step was a percept update: the most recent bits are the
			// percept's obsBits+rewardBits, which were folded into the tree.
			n := int(a.obsBits + a.rewardBits)
			for i := 0; i < n; i++ {
				a.ct.Revert()
			}
		} else {
			// Last step was an action update: the most recent bits are
			// history-only action bits, never folded into the tree.
			newSize := a.ct.HistorySize() - int(a.actionBits)
			if newSize < mu.historySize {
				newSize = mu.historySize
			}
			a.ct.RevertHistory(newSize)
		}
		cur = !cur
	}
	if a.ct.HistorySize() != mu.historySize {
		panic("agent: Revert: reverted past the save point")
	}

	a.age = mu.age
	a.totalReward = mu.reward
	a.lastUpdateWasPercept = mu.lastUpdateWasPercept
}
