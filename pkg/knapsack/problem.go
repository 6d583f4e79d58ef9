// Package knapsack solves 0/1 knapsack instances with the bnb engine.
//
// The bound oracle is the Dantzig relaxation: items are taken greedily by
// value density and the first item that does not fit is taken
// fractionally. Nodes branch on that fractional item.
//
// Problems are read from TOML:
//
//	name = "camping"
//	capacity = 15
//
//	[[items]]
//	name = "tent"
//	weight = 12
//	value = 4
package knapsack

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/bnbsearch/pkg/cache"
	errs "github.com/matzehuels/bnbsearch/pkg/errors"
)

// Item is one object that can be packed.
type Item struct {
	Name   string  `toml:"name" json:"name"`
	Weight float64 `toml:"weight" json:"weight"`
	Value  float64 `toml:"value" json:"value"`
}

// Problem is a 0/1 knapsack instance.
type Problem struct {
	Name     string  `toml:"name" json:"name"`
	Capacity float64 `toml:"capacity" json:"capacity"`
	Items    []Item  `toml:"items" json:"items"`
}

// Load reads and validates a problem file.
func Load(path string) (*Problem, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "problem file %s", path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidProblem, err, "read %s", path)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = path
	}
	return p, nil
}

// Parse decodes and validates a TOML problem.
func Parse(data []byte) (*Problem, error) {
	var p Problem
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidProblem, err, "parse problem")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the instance and names unnamed items.
func (p *Problem) Validate() error {
	if err := errs.ValidateNonNegative("capacity", p.Capacity); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidProblem, err, "invalid capacity")
	}
	if len(p.Items) == 0 {
		return errs.New(errs.ErrCodeInvalidProblem, "problem has no items")
	}
	for i := range p.Items {
		it := &p.Items[i]
		if it.Name == "" {
			it.Name = fmt.Sprintf("item-%d", i)
		}
		if err := errs.ValidateName(it.Name); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidProblem, err, "item %d", i)
		}
		if err := errs.ValidatePositive("weight", it.Weight); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidProblem, err, "item %s", it.Name)
		}
		if err := errs.ValidateNonNegative("value", it.Value); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidProblem, err, "item %s", it.Name)
		}
	}
	return nil
}

// Hash identifies the instance content. Two problems with the same
// capacity and items hash equally regardless of their names.
func (p *Problem) Hash() string {
	items := make([][2]float64, len(p.Items))
	for i, it := range p.Items {
		items[i] = [2]float64{it.Weight, it.Value}
	}
	data, _ := json.Marshal(struct {
		Capacity float64      `json:"capacity"`
		Items    [][2]float64 `json:"items"`
	}{p.Capacity, items})
	return cache.Hash(data)
}

// Solution is a feasible packing.
type Solution struct {
	Items  []int   `json:"items"` // ascending item indices
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// Score implements bnb.Solution.
func (s *Solution) Score() float64 { return s.Value }

// Names returns the names of the packed items.
func (s *Solution) Names(p *Problem) []string {
	names := make([]string, len(s.Items))
	for i, idx := range s.Items {
		names[i] = p.Items[idx].Name
	}
	return names
}
