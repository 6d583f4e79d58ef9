package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bnbsearch/pkg/bnb"
	"github.com/matzehuels/bnbsearch/pkg/config"
)

// searchFlags override the [solver] and [orderer] config sections.
type searchFlags struct {
	solver     string
	orderer    string
	childOrder string
	epsilon    float64
	timeout    time.Duration
	nodeLimit  int
	maxDepth   int
	seed       int64
}

func addSearchFlags(cmd *cobra.Command, f *searchFlags) {
	kinds := make([]string, len(bnb.OrdererKinds))
	for i, k := range bnb.OrdererKinds {
		kinds[i] = string(k)
	}

	fs := cmd.Flags()
	fs.StringVar(&f.solver, "solver", "", "solver: lazy or eager")
	fs.StringVarP(&f.orderer, "orderer", "o", "", "node orderer: "+strings.Join(kinds, ", "))
	fs.StringVar(&f.childOrder, "child-order", "", "child order: lp-guided or fixed")
	fs.Float64Var(&f.epsilon, "epsilon", bnb.DefaultEpsilon, "optimality gap (relative for lazy, absolute for eager)")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "search timeout (0 = none)")
	fs.IntVarP(&f.nodeLimit, "node-limit", "n", 0, "stop after this many nodes (0 = none)")
	fs.IntVar(&f.maxDepth, "max-depth", bnb.DefaultMaxDepth, "dive depth of the sampling orderers")
	fs.Int64Var(&f.seed, "seed", 0, "random seed (0 = fixed default)")
	completeSearchFlags(cmd)
}

// apply copies the flags the user set onto cfg.
func (f *searchFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("solver") {
		cfg.Solver.Solver = f.solver
	}
	if changed("orderer") {
		cfg.Orderer.Kind = f.orderer
	}
	if changed("child-order") {
		cfg.Solver.ChildOrder = f.childOrder
	}
	if changed("epsilon") {
		cfg.Solver.Epsilon = f.epsilon
	}
	if changed("timeout") {
		cfg.Solver.TimeoutSeconds = f.timeout.Seconds()
	}
	if changed("node-limit") {
		cfg.Solver.NodeLimit = f.nodeLimit
	}
	if changed("max-depth") {
		cfg.Orderer.MaxDepth = f.maxDepth
	}
	if changed("seed") {
		cfg.Orderer.Seed = f.seed
	}
}

// resolveConfig loads the config file, applies flag overrides and
// validates the result.
func (c *CLI) resolveConfig(cmd *cobra.Command, f *searchFlags) (*config.Config, bnb.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, bnb.Config{}, err
	}
	f.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, bnb.Config{}, err
	}
	sc, err := cfg.ToSolverConfig()
	if err != nil {
		return nil, bnb.Config{}, err
	}
	return cfg, sc, nil
}
