// Package search implements rho-UCT: a Monte Carlo tree search over an
// agent's context tree belief, alternating decision nodes (indexed by
// action) and chance nodes (indexed by the percept sampled from the
// agent's model), used to pick the agent's next action.
package search

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/fumin/mcaixi/agent"
)

// explorationConstant is the UCB1 exploration weight, C in the UCB bound
// win_value + C*sqrt(ln(N)/n).
const explorationConstant = 1.0

// revertTolerance bounds how far the model's log block probability may move
// across one simulation and its revert before Search panics.
const revertTolerance = 1e-4

// searchNode is one node of the search tree: a decision node (keyed by
// action) or a chance node (keyed by the composite (observation, reward)
// percept sampled at that point, so percepts that share an observation but
// differ in reward are never conflated), holding the running mean reward
// and visit count used by selectAction.
type searchNode struct {
	isChance bool
	mean     float64
	visits   uint64
	children map[uint64]*searchNode
}

func (n *searchNode) updateStats(reward float64) {
	n.mean = (reward + float64(n.visits)*n.mean) / (float64(n.visits) + 1.0)
	n.visits++
}

// Planner runs repeated rho-UCT simulations to select an action. Its search
// tree is rebuilt fresh for every call to Search and freed wholesale once
// the best action has been chosen; a sync.Pool amortizes the resulting
// allocation churn across calls, the same technique
// fumin-ctw/app/taifx/mcts uses for its plain MCTS node pool.
type Planner struct {
	pool sync.Pool
}

// NewPlanner returns a Planner ready to search.
func NewPlanner() *Planner {
	p := &Planner{}
	p.pool.New = func() interface{} { return &searchNode{} }
	return p
}

func (p *Planner) getNode(isChance bool) *searchNode {
	n := p.pool.Get().(*searchNode)
	n.isChance = isChance
	n.mean = 0
	n.visits = 0
	for k := range n.children {
		delete(n.children, k)
	}
	return n
}

func (p *Planner) release(n *searchNode) {
	for _, child := range n.children {
		p.release(child)
	}
	p.pool.Put(n)
}

// Search runs numSimulations rho-UCT simulations from the agent's current
// state and returns the action with the highest estimated expected reward,
// or a uniformly random action if none of the root's children were ever
// explored.
//
// Each simulation is bracketed by exactly one agent save point and one
// revert, taken immediately before and after the single top-level call to
// sample: unlike the search this is grounded on, intermediate recursive
// calls never save or revert on their own. By the time Search returns, the
// agent is restored to exactly the state it was in when Search was called
// (invariant 6): the agent never observes its own imagined rollouts.
func (p *Planner) Search(ag *agent.Agent, rng *rand.Rand, numSimulations int) uint {
	root := p.getNode(false)
	before := ag.ContextTree().LogBlockProbability()

	for i := 0; i < numSimulations; i++ {
		save := ag.SavePoint()
		p.sample(root, ag, rng, ag.Horizon())
		ag.Revert(save)
		if after := ag.ContextTree().LogBlockProbability(); math.Abs(after-before) > revertTolerance {
			panic(fmt.Sprintf("search: Search: model drifted across a simulation revert: log block probability %v -> %v", before, after))
		}
	}

	bestAction := ag.GenRandomAction(rng)
	bestScore := math.Inf(-1)
	for a := uint(0); a < ag.NumActions(); a++ {
		child, ok := root.children[uint64(a)]
		if !ok {
			continue
		}
		if child.mean > bestScore {
			bestScore = child.mean
			bestAction = a
		}
	}

	p.release(root)
	return bestAction
}

// sample performs one simulated playthrough of dfr (distance from root)
// more cycles below n, mutating the agent's model as it imagines actions
// and percepts, and returns the accumulated reward of the simulated path.
func (p *Planner) sample(n *searchNode, ag *agent.Agent, rng *rand.Rand, dfr uint) float64 {
	if dfr == 0 {
		return 0
	}

	var reward float64
	switch {
	case n.isChance:
		obs, r := ag.GenPerceptAndUpdate(rng)
		key := obs<<ag.RewardBits() | uint64(r)
		child := p.child(n, key, false)
		reward = r + p.sample(child, ag, rng, dfr-1)
	case n.visits == 0:
		reward = p.playout(ag, rng, dfr)
	default:
		a := p.selectAction(n, ag, rng)
		ag.ModelUpdateAction(a)
		child := p.child(n, uint64(a), true)
		reward = p.sample(child, ag, rng, dfr)
	}

	n.updateStats(reward)
	return reward
}

// child returns n's child keyed by key, creating a fresh node of the given
// chance-ness if it has never been visited before (T(hor)==0 in the
// planner's notation).
func (p *Planner) child(n *searchNode, key uint64, childIsChance bool) *searchNode {
	if n.children == nil {
		n.children = make(map[uint64]*searchNode)
	}
	child, ok := n.children[key]
	if !ok {
		child = p.getNode(childIsChance)
		n.children[key] = child
	}
	return child
}

// selectAction picks the next action to explore from a decision node: any
// action whose child is missing or unvisited is explored first (ties
// broken uniformly at random), and only once every action has at least one
// visit does it fall back to the UCB1 bound.
func (p *Planner) selectAction(n *searchNode, ag *agent.Agent, rng *rand.Rand) uint {
	numActions := ag.NumActions()

	var unexplored []uint
	for a := uint(0); a < numActions; a++ {
		child, ok := n.children[uint64(a)]
		if !ok || child.visits == 0 {
			unexplored = append(unexplored, a)
		}
	}
	if len(unexplored) > 0 {
		return unexplored[rng.Intn(len(unexplored))]
	}

	normalizer := float64(ag.Horizon()) * ag.MaxReward()
	var best []uint
	bestScore := math.Inf(-1)
	logN := math.Log(float64(n.visits))
	for a := uint(0); a < numActions; a++ {
		child := n.children[uint64(a)]
		winValue := child.mean / normalizer
		ucbBound := explorationConstant * math.Sqrt(logN/float64(child.visits))
		score := winValue + ucbBound
		switch {
		case score > bestScore:
			bestScore = score
			best = best[:0]
			best = append(best, a)
		case score == bestScore:
			best = append(best, a)
		}
	}
	return best[rng.Intn(len(best))]
}

// playout simulates playoutLen further cycles by picking actions uniformly
// at random rather than maximizing, used to bootstrap the reward estimate
// the first time a decision node is reached.
func (p *Planner) playout(ag *agent.Agent, rng *rand.Rand, playoutLen uint) float64 {
	var reward float64
	for i := uint(0); i < playoutLen; i++ {
		a := ag.GenRandomAction(rng)
		ag.ModelUpdateAction(a)
		_, r := ag.GenPerceptAndUpdate(rng)
		reward += r
	}
	return reward
}
