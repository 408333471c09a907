// Command bcdr loads a JSON problem description and runs the planner
// against it, printing the accepted assignment/reward or the residual
// conflicts that made the problem unsatisfiable.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/tpnx/bcdr"
	"github.com/tpnx/bcdr/internal/model"
	"github.com/tpnx/bcdr/internal/relax"
	"github.com/tpnx/bcdr/internal/search"
)

var flagCPUProfile = flag.Bool(
	"cpuprof",
	false,
	"save pprof CPU profile in cpuprof",
)

var flagMaxExpansions = flag.Int64(
	"max_expansions",
	0,
	"bound the number of frontier pops before giving up (0 = unbounded)",
)

var flagLog = flag.Bool(
	"log",
	false,
	"log search progress to stderr",
)

type config struct {
	instanceFile  string
	cpuProfile    bool
	maxExpansions int64
	logging       bool
}

func parseConfig() (*config, error) {
	flag.Parse()
	if flag.NArg() == 0 || flag.Arg(0) == "" {
		return nil, fmt.Errorf("missing instance file")
	}
	return &config{
		instanceFile:  flag.Arg(0),
		cpuProfile:    *flagCPUProfile,
		maxExpansions: *flagMaxExpansions,
		logging:       *flagLog,
	}, nil
}

// instanceFile is the on-disk JSON shape consumed by the CLI: variables,
// propositional constraints, rewards, and temporal constraints, matching
// the Problem API one-to-one.
type instanceFile struct {
	Variables []struct {
		Name       string   `json:"name"`
		Kind       string   `json:"kind"` // "binary" | "finite_domain"
		Domain     []string `json:"domain,omitempty"`
		IsDecision bool     `json:"is_decision"`
	} `json:"variables"`

	Constraints []string `json:"constraints"`

	Rewards []struct {
		Variable string  `json:"variable"`
		Value    string  `json:"value"`
		Reward   float64 `json:"reward"`
	} `json:"rewards"`

	Temporal []struct {
		Start       string  `json:"start"`
		End         string  `json:"end"`
		Label       string  `json:"label,omitempty"`
		LB          float64 `json:"lb"`
		UB          float64 `json:"ub"`
		Name        string  `json:"name"`
		LBRelaxable bool    `json:"lb_relaxable"`
		UBRelaxable bool    `json:"ub_relaxable"`
		LBLinCost   float64 `json:"lb_lin_cost"`
		UBLinCost   float64 `json:"ub_lin_cost"`
	} `json:"temporal_constraints"`
}

func loadProblem(path string) (*bcdr.Problem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read instance: %w", err)
	}
	var inst instanceFile
	if err := json.Unmarshal(raw, &inst); err != nil {
		return nil, fmt.Errorf("could not parse instance: %w", err)
	}

	p := bcdr.New()
	for _, v := range inst.Variables {
		kind := model.FiniteDomain
		var domain []string
		if v.Kind == "binary" {
			kind = model.Binary
		} else {
			domain = v.Domain
		}
		if _, err := p.AddVariable(v.Name, kind, domain, v.IsDecision); err != nil {
			return nil, err
		}
	}
	for _, c := range inst.Constraints {
		if err := p.AddConstraint(c); err != nil {
			return nil, err
		}
	}
	for _, r := range inst.Rewards {
		if err := p.AddReward(r.Variable, r.Value, r.Reward); err != nil {
			return nil, err
		}
	}
	for _, t := range inst.Temporal {
		err := p.AddTemporalConstraint(bcdr.TemporalConstraintSpec{
			Start:       t.Start,
			End:         t.End,
			Label:       t.Label,
			LB:          t.LB,
			UB:          t.UB,
			Name:        t.Name,
			LBRelaxable: t.LBRelaxable,
			UBRelaxable: t.UBRelaxable,
			LBLinCost:   t.LBLinCost,
			UBLinCost:   t.UBLinCost,
		})
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

func run(cfg *config) error {
	p, err := loadProblem(cfg.instanceFile)
	if err != nil {
		return fmt.Errorf("could not build problem: %w", err)
	}
	p.Options(search.Options{MaxExpansions: cfg.maxExpansions, Logging: cfg.logging}, relax.DefaultOptions)

	t := time.Now()
	result, err := p.Run()
	elapsed := time.Since(t)
	if err != nil {
		return fmt.Errorf("solver failure: %w", err)
	}

	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("c solvable:   %t\n", result.Solvable)
	if !result.Solvable {
		fmt.Printf("c residual conflicts: %d\n", len(result.Residual))
		return nil
	}

	fmt.Printf("c reward:     %f\n", result.Reward)
	for v, a := range result.Assignment {
		fmt.Printf("a %d = %s\n", v, a.Val)
	}
	if result.Relaxation != nil {
		fmt.Printf("c relaxation objective: %f\n", result.Relaxation.Objective)
		for k, amount := range result.Relaxation.Sol {
			fmt.Printf("r constraint=%d bound=%s amount=%f\n", k.Constraint, k.Bound, amount)
		}
	}
	return nil
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.cpuProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}
