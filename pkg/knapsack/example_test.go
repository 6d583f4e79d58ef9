package knapsack_test

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bnbsearch/pkg/bnb"
	"github.com/matzehuels/bnbsearch/pkg/knapsack"
)

func Example() {
	p, err := knapsack.Parse([]byte(`
capacity = 50

[[items]]
name = "map"
weight = 10
value = 60

[[items]]
name = "compass"
weight = 20
value = 100

[[items]]
name = "water"
weight = 30
value = 120
`))
	if err != nil {
		panic(err)
	}

	ws, _ := knapsack.NewWorkspace(p, 0)
	solver, _ := bnb.New(ws, bnb.DefaultConfig(), bnb.Options{Logger: log.New(io.Discard)})
	res, _ := solver.Solve(context.Background(), ws.Root(), nil, bnb.WorstScore)

	sol := res.Incumbent.(*knapsack.Solution)
	fmt.Println(res.Status, sol.Value, sol.Names(p))
	// Output: optimal 220 [compass water]
}
