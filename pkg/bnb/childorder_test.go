package bnb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func deltaChildren(key int) (*stubNode, *stubNode) {
	c1 := stub(1, 1, 0)
	c2 := stub(2, 1, 0)
	c1.key, c2.key = key, key
	return c1, c2
}

func TestLPGuidedChildOrderer(t *testing.T) {
	root := &RelaxedSolution{Status: StatusOptimal, Values: deltaMap{4: 0.5}}

	tests := []struct {
		name   string
		parent float64
		want   []int
	}{
		{"parent below root", 0.2, []int{1, 2}},
		{"parent above root", 0.8, []int{2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c1, c2 := deltaChildren(4)
			relaxed := &RelaxedSolution{Status: StatusOptimal, Values: deltaMap{4: tt.parent}}
			got := NewLPGuidedChildOrderer(NewRand(1)).OrderChildren(relaxed, root, []Node{c1, c2})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestLPGuidedChildOrdererTies(t *testing.T) {
	root := &RelaxedSolution{Values: deltaMap{4: 0.5}}
	tied := &RelaxedSolution{Values: deltaMap{4: 0.5 + 1e-12}}
	missing := &RelaxedSolution{Values: deltaMap{}}

	for name, relaxed := range map[string]*RelaxedSolution{"tie": tied, "missing": missing, "nil values": {}} {
		t.Run(name, func(t *testing.T) {
			o := NewLPGuidedChildOrderer(NewRand(11))
			seen := map[int]bool{}
			for range 64 {
				c1, c2 := deltaChildren(4)
				got := o.OrderChildren(relaxed, root, []Node{c1, c2})
				assert.ElementsMatch(t, []int{1, 2}, ids(got))
				seen[got[0].ID()] = true
			}
			assert.Len(t, seen, 2, "ties are broken both ways")
		})
	}
}

func TestLPGuidedChildOrdererNonBinary(t *testing.T) {
	o := NewLPGuidedChildOrderer(NewRand(1))
	in := []Node{stub(1, 1, 0), stub(2, 1, 0), stub(3, 1, 0)}
	got := o.OrderChildren(nil, nil, in)
	assert.Equal(t, []int{1, 2, 3}, ids(got))

	got[0] = nil
	assert.NotNil(t, in[0], "input slice is not modified")
}

func TestFixedChildOrderer(t *testing.T) {
	got := FixedChildOrderer{}.OrderChildren(nil, nil, []Node{stub(2, 1, 0), stub(1, 1, 0)})
	assert.Equal(t, []int{2, 1}, ids(got))
}
