package ctw

import (
	"math"
	"math/rand"
)

// ContextTree is a Context Tree Weighting mixture model over binary
// sequences: a root node, the observed bit history, and a fixed maximum
// context depth D.
//
// Update and Revert are exact inverses of one another: any prefix of calls
// to Update can be undone, in reverse order, by an equal number of calls to
// Revert, leaving the tree bit-for-bit identical to before (invariant 3 of
// spec.md §8).
type ContextTree struct {
	root    *node
	history []int
	depth   int
}

// NewContextTree returns an empty context tree with maximum depth D. D==0
// is the degenerate case of a single root node, used to test the bare KT
// estimator in isolation (spec.md §8 scenario S1); ordinary agents use
// D >= 1 so the mixture has room to weigh deeper contexts.
func NewContextTree(depth int) *ContextTree {
	if depth < 0 {
		panic("ctw: NewContextTree: depth must be >= 0")
	}
	return &ContextTree{root: &node{}, depth: depth}
}

// Depth returns the tree's maximum context depth.
func (t *ContextTree) Depth() int { return t.depth }

// HistorySize returns the number of bits observed so far.
func (t *ContextTree) HistorySize() int { return len(t.history) }

// NodeCount returns the number of allocated nodes in the tree.
func (t *ContextTree) NodeCount() int { return t.root.size() }

// LogBlockProbability returns the log of the CTW mixture probability of the
// entire observed bit sequence: the root's log-weighted probability.
func (t *ContextTree) LogBlockProbability() float64 { return t.root.logPW }

// contextPath walks from the root through the D most recent bits of history,
// most-recent-first, returning the D+1 nodes visited (path[0] is the root).
// It creates nodes that do not yet exist when create is true; with create
// false it assumes the path already exists (the revert side of an update).
func (t *ContextTree) contextPath(history []int, create bool) []*node {
	path := make([]*node, t.depth+1)
	path[0] = t.root
	cur := t.root
	L := len(history)
	for d := 0; d < t.depth; d++ {
		bit := history[L-1-d]
		child := cur.child[bit]
		if child == nil {
			if !create {
				panic("ctw: contextPath: missing node on a path expected to exist")
			}
			child = &node{}
			cur.child[bit] = child
		}
		path[d+1] = child
		cur = child
	}
	return path
}

// Update extends the model with one new bit. If there is not yet D bits of
// history, the bit is appended to history with no tree update (there is no
// usable context yet). Otherwise the D+1 nodes on the current context path
// are updated bottom-up (deepest first, so that a parent's recomputed
// log-weighted probability sees its children's already-updated values), and
// then the bit is appended to history.
func (t *ContextTree) Update(sym int) {
	if len(t.history) >= t.depth {
		path := t.contextPath(t.history, true)
		for i := len(path) - 1; i >= 0; i-- {
			path[i].update(sym)
			path[i].recomputeLogPW()
		}
	}
	t.history = append(t.history, sym)
}

// UpdateSeq updates the model with each bit of seq in order.
func (t *ContextTree) UpdateSeq(seq []int) {
	for _, sym := range seq {
		t.Update(sym)
	}
}

// UpdateHistory appends seq to the history without touching the tree. Used
// for action bits: actions are part of the context other bits are predicted
// against, but their own distribution is never itself modelled.
func (t *ContextTree) UpdateHistory(seq []int) {
	t.history = append(t.history, seq...)
}

// Revert undoes the most recent Update call. If the history is empty this
// is a no-op (spec.md §4.2's failure model). Otherwise it pops the most
// recent history bit and, if that bit's original Update touched the tree,
// walks the same context path and reverses the KT and mixture updates,
// freeing any node whose visit count has fallen to zero.
func (t *ContextTree) Revert() {
	L := len(t.history)
	if L == 0 {
		return
	}
	sym := t.history[L-1]
	newLen := L - 1
	t.history = t.history[:newLen]

	if newLen >= t.depth {
		path := t.contextPath(t.history, false)
		for i := len(path) - 1; i >= 0; i-- {
			path[i].revert(sym)
			path[i].recomputeLogPW()
		}
		for i := 0; i < len(path)-1; i++ {
			bit := t.history[newLen-1-i]
			if child := path[i].child[bit]; child != nil && child.visits() == 0 {
				path[i].child[bit] = nil
			}
		}
	}
}

// RevertHistory shrinks the history to a former, shorter length without
// touching the tree. newSize must not exceed the current history length;
// violating this is a programming error (spec.md §7) and panics.
func (t *ContextTree) RevertHistory(newSize int) {
	if newSize > len(t.history) {
		panic("ctw: RevertHistory: new size exceeds current history length")
	}
	t.history = t.history[:newSize]
}

// PredictNext samples one bit from the predictive distribution, leaving the
// tree exactly as it found it. If there is not yet D bits of history, it
// returns 0 or 1 with equal probability.
func (t *ContextTree) PredictNext(rng *rand.Rand) int {
	if len(t.history) < t.depth {
		return int(rng.Int31n(2))
	}

	logPH := t.LogBlockProbability()
	t.Update(1)
	logPH1 := t.LogBlockProbability()
	t.Revert()

	p1 := math.Exp(logPH1 - logPH)
	if rng.Float64() < p1 {
		return 1
	}
	return 0
}

// GenRandomSymbolsAndUpdate draws n bits from the predictive distribution,
// updating the tree with each bit as it is produced so that later bits are
// conditioned on the earlier ones.
func (t *ContextTree) GenRandomSymbolsAndUpdate(rng *rand.Rand, n int) []int {
	syms := make([]int, n)
	for i := 0; i < n; i++ {
		sym := t.PredictNext(rng)
		t.Update(sym)
		syms[i] = sym
	}
	return syms
}

// GenRandomSymbols draws n bits the same way as GenRandomSymbolsAndUpdate,
// then reverts all n updates, leaving the tree's state unchanged overall.
func (t *ContextTree) GenRandomSymbols(rng *rand.Rand, n int) []int {
	syms := t.GenRandomSymbolsAndUpdate(rng, n)
	for i := 0; i < n; i++ {
		t.Revert()
	}
	return syms
}

// Clone returns a deep structural copy of the tree: its own root, history,
// and depth, entirely independent of the receiver. Required for workloads
// that parallelize simulations by cloning the model per worker (spec.md
// §5); the core decision loop itself uses Revert-based undo instead.
func (t *ContextTree) Clone() *ContextTree {
	cp := &ContextTree{
		root:  t.root.clone(),
		depth: t.depth,
	}
	cp.history = make([]int, len(t.history))
	copy(cp.history, t.history)
	return cp
}
