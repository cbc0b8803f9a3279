// Command mcaixi runs an MC-AIXI-CTW agent against one of this module's
// built-in environments, following a configuration file of the original
// driver's "key = value" shape.
package main

import (
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/fumin/mcaixi/agent"
	"github.com/fumin/mcaixi/config"
	"github.com/fumin/mcaixi/env"
	"github.com/fumin/mcaixi/search"
)

var (
	flagConfig      = flag.String("c", "", "path to a key=value configuration file")
	flagEnvironment = flag.String("env", "coin-flip", "environment name: coin-flip, tiger, extended-tiger, 4x4-grid, biased-rock-paper-scissor, kuhn-poker")
	flagCycles      = flag.Int("cycles", 1000, "number of agent/environment interaction cycles to run")
	flagSeed        = flag.Int64("seed", 0, "random seed; 0 picks one from the current time")
)

// newEnvironment constructs the named built-in environment, passing opts to
// the environments that read their own options. The per-environment default
// option bundle (ct-depth, agent-horizon, bit widths) is applied by
// loadConfig, not here.
func newEnvironment(rng *rand.Rand, name string, opts config.Options) (env.Environment, error) {
	switch name {
	case "coin-flip":
		return env.NewCoinFlip(rng, opts)
	case "tiger":
		return env.NewTiger(rng, opts)
	case "extended-tiger":
		return env.NewExtendedTiger(rng, opts)
	case "4x4-grid":
		return env.NewGridWorld(rng), nil
	case "biased-rock-paper-scissor":
		return env.NewRockPaperScissors(), nil
	case "kuhn-poker":
		return env.NewKuhnPoker(rng), nil
	default:
		return nil, errors.Errorf("mcaixi: unknown environment %q", name)
	}
}

func loadConfig(path, environmentName string) (config.Options, error) {
	opts, err := config.EnvironmentDefaults(environmentName)
	if err != nil {
		return nil, err
	}
	opts["mc-simulations"] = "100"
	opts["exploration"] = "0"
	opts["explore-decay"] = "1.0"

	if path == "" {
		return opts, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "mcaixi: opening config %q", path)
	}
	defer f.Close()
	if err := config.Parse(f, opts); err != nil {
		return nil, err
	}
	return opts, nil
}

func buildAgent(opts config.Options) (*agent.Agent, error) {
	actions, err := opts.Int("agent-actions")
	if err != nil {
		return nil, err
	}
	obsBits, err := opts.Int("observation-bits")
	if err != nil {
		return nil, err
	}
	rewardBits, err := opts.Int("reward-bits")
	if err != nil {
		return nil, err
	}
	horizon, err := opts.Int("agent-horizon")
	if err != nil {
		return nil, err
	}
	depth, err := opts.Int("ct-depth")
	if err != nil {
		return nil, err
	}

	return agent.New(agent.Config{
		Actions:      uint(actions),
		ObsBits:      uint(obsBits),
		RewardBits:   uint(rewardBits),
		Horizon:      uint(horizon),
		ContextDepth: depth,
	})
}

// run executes the agent/environment interaction loop: perceive, update the
// belief model, plan (or explore), act, update the model again, and log
// progress every time the cycle count reaches a power of two.
func run(opts config.Options, environmentName string, numCycles int, rng *rand.Rand) error {
	simulations, err := opts.Int("mc-simulations")
	if err != nil {
		return err
	}
	exploreRate, err := opts.Float64("exploration")
	if err != nil {
		return err
	}
	exploreDecay, err := opts.Float64("explore-decay")
	if err != nil {
		return err
	}
	terminateAge, hasTerminateAge, err := terminateAgeOption(opts)
	if err != nil {
		return err
	}

	ag, err := buildAgent(opts)
	if err != nil {
		return err
	}
	environment, err := newEnvironment(rng, environmentName, opts)
	if err != nil {
		return err
	}
	planner := search.NewPlanner()

	for cycle := 1; !environment.IsFinished(); cycle++ {
		if numCycles > 0 && cycle > numCycles {
			break
		}
		if hasTerminateAge && ag.Age() > terminateAge {
			log.Printf("info: terminating agent at age %d", ag.Age())
			break
		}

		observation := environment.Observation()
		reward := environment.Reward()
		ag.ModelUpdatePercept(observation, reward)

		explored := false
		var action uint
		if exploreRate > 0 && rng.Float64() < exploreRate {
			explored = true
			action = ag.GenRandomAction(rng)
		} else {
			action = planner.Search(ag, rng, simulations)
		}

		environment.PerformAction(rng, action)
		ag.ModelUpdateAction(action)

		if cycle&(cycle-1) == 0 { // cycle is a power of two
			log.Printf("cycle %d: average reward %.4f, explored %v, explore rate %.4f",
				cycle, ag.AverageReward(), explored, exploreRate)
		}

		if exploreRate > 0 {
			exploreRate *= exploreDecay
		}
	}

	log.Printf("SUMMARY: agent age %d, average reward %.4f", ag.Age(), ag.AverageReward())
	return nil
}

func terminateAgeOption(opts config.Options) (uint64, bool, error) {
	if _, ok := opts["terminate-age"]; !ok {
		return 0, false, nil
	}
	n, err := opts.Int("terminate-age")
	if err != nil {
		return 0, false, err
	}
	return uint64(n), true, nil
}

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	seed := *flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	opts, err := loadConfig(*flagConfig, *flagEnvironment)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	if err := run(opts, *flagEnvironment, *flagCycles, rng); err != nil {
		log.Fatalf("%+v", err)
	}
}
