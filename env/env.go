// Package env implements the fixed environments the agent can be run
// against: small, fully self-contained state machines that turn an action
// into the next observation/reward percept.
package env

import "math/rand"

// Environment is anything that can receive an agent's action and produce
// the next observation/reward percept. Implementations hold their own
// internal state and advance it in PerformAction.
type Environment interface {
	// Observation returns the most recently produced observation.
	Observation() uint64
	// Reward returns the most recently produced reward.
	Reward() float64
	// PerformAction advances the environment's state in response to action,
	// updating the values Observation and Reward will subsequently return.
	PerformAction(rng *rand.Rand, action uint)
	// IsFinished reports whether the environment can no longer interact
	// with the agent.
	IsFinished() bool
}
