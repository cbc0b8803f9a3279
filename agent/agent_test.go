package agent

import (
	"math/rand"
	"testing"
)

func testConfig() Config {
	return Config{
		Actions:      4,
		ObsBits:      4,
		RewardBits:   3,
		Horizon:      6,
		ContextDepth: 4,
	}
}

func TestActionBits(t *testing.T) {
	t.Parallel()
	cases := []struct {
		n    uint
		want uint
	}{
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{8, 3},
		{9, 4},
	}
	for _, c := range cases {
		if got := actionBits(c.n); got != c.want {
			t.Errorf("actionBits(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	t.Parallel()
	bad := []Config{
		{Actions: 0, ObsBits: 1, RewardBits: 1},
		{Actions: 1, ObsBits: 0, RewardBits: 1},
		{Actions: 1, ObsBits: 1, RewardBits: 0},
	}
	for i, cfg := range bad {
		if _, err := New(cfg); err == nil {
			t.Errorf("case %d: New(%+v) = nil error, want error", i, cfg)
		}
	}
}

func TestTurnParityEnforced(t *testing.T) {
	t.Parallel()
	a, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	// First call must be a percept update; an action update out of turn panics.
	func() {
		defer func() {
			if recover() == nil {
				t.Error("ModelUpdateAction before any percept should panic")
			}
		}()
		a.ModelUpdateAction(0)
	}()

	a.ModelUpdatePercept(1, 2)

	// A second consecutive percept update (skipping the action) should panic.
	func() {
		defer func() {
			if recover() == nil {
				t.Error("consecutive ModelUpdatePercept calls should panic")
			}
		}()
		a.ModelUpdatePercept(1, 2)
	}()

	a.ModelUpdateAction(1)

	// A second consecutive action update should panic.
	func() {
		defer func() {
			if recover() == nil {
				t.Error("consecutive ModelUpdateAction calls should panic")
			}
		}()
		a.ModelUpdateAction(1)
	}()
}

func TestModelUpdateActionRejectsOutOfRange(t *testing.T) {
	t.Parallel()
	a, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	a.ModelUpdatePercept(0, 0)

	defer func() {
		if recover() == nil {
			t.Error("out-of-range action should panic")
		}
	}()
	a.ModelUpdateAction(a.NumActions())
}

func TestModelUpdatePerceptRejectsOutOfRangeObservation(t *testing.T) {
	t.Parallel()
	a, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	defer func() {
		if recover() == nil {
			t.Error("out-of-range observation should panic")
		}
	}()
	a.ModelUpdatePercept(a.MaxObservation()+1, 0)
}

// TestSaveRevertRoundTrip is scenario S4: after a sequence of percept/action
// updates, saving a point, doing more updates, and reverting must restore
// the agent bit-for-bit (age, reward, history size, turn parity, and the
// context tree's block probability).
func TestSaveRevertRoundTrip(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(42))
	a, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	cycle := func(ag *Agent) {
		obs := uint64(rng.Int31n(1 << ag.obsBits))
		rew := float64(rng.Int31n(int32(ag.MaxReward()) + 1))
		ag.ModelUpdatePercept(obs, rew)
		ag.ModelUpdateAction(ag.GenRandomAction(rng))
	}

	for i := 0; i < 5; i++ {
		cycle(a)
	}

	save := a.SavePoint()
	savedAge := a.Age()
	savedReward := a.Reward()
	savedHistSize := a.HistorySize()
	savedLogPW := a.ContextTree().LogBlockProbability()

	for i := 0; i < 5; i++ {
		cycle(a)
	}

	a.Revert(save)

	if a.Age() != savedAge {
		t.Errorf("age = %d, want %d", a.Age(), savedAge)
	}
	if a.Reward() != savedReward {
		t.Errorf("reward = %f, want %f", a.Reward(), savedReward)
	}
	if a.HistorySize() != savedHistSize {
		t.Errorf("history size = %d, want %d", a.HistorySize(), savedHistSize)
	}
	if a.ContextTree().LogBlockProbability() != savedLogPW {
		t.Errorf("log_pw = %f, want %f", a.ContextTree().LogBlockProbability(), savedLogPW)
	}

	// The save point was taken right after an action update, so the agent
	// must accept a percept update next, proving turn parity was restored too.
	a.ModelUpdatePercept(0, 0)
}

func TestGenPerceptAndUpdateAdvancesHistory(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))
	a, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	a.ModelUpdatePercept(0, 0)
	a.ModelUpdateAction(0)

	before := a.HistorySize()
	obs, rew := a.GenPerceptAndUpdate(rng)
	if a.HistorySize() != before+int(a.obsBits+a.rewardBits) {
		t.Errorf("history size advanced by %d, want %d", a.HistorySize()-before, a.obsBits+a.rewardBits)
	}
	if obs >= uint64(1)<<a.obsBits {
		t.Errorf("observation %d out of range for %d bits", obs, a.obsBits)
	}
	if rew < a.MinReward() || rew > a.MaxReward() {
		t.Errorf("reward %f out of range [%f, %f]", rew, a.MinReward(), a.MaxReward())
	}
}

func TestMaxRewardMatchesRewardBits(t *testing.T) {
	t.Parallel()
	a, err := New(Config{Actions: 2, ObsBits: 1, RewardBits: 2, ContextDepth: 1})
	if err != nil {
		t.Fatal(err)
	}
	if a.MaxReward() != 3 {
		t.Errorf("MaxReward = %f, want 3", a.MaxReward())
	}
	if a.MinReward() != 0 {
		t.Errorf("MinReward = %f, want 0", a.MinReward())
	}
}
