package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func set(members ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(members))
	for _, m := range members {
		out[m] = struct{}{}
	}
	return out
}

func TestAlgebra(t *testing.T) {
	a := set("1", "2", "3")
	b := set("2", "3", "4")
	c := set("3", "5")

	tests := []struct {
		name string
		got  map[string]struct{}
		want map[string]struct{}
	}{
		{"diff", Diff(a, b), set("1")},
		{"diff folds in order", Diff(b, a, c), set("4")},
		{"inter", Inter(a, b), set("2", "3")},
		{"inter three", Inter(a, b, c), set("3")},
		{"union", Union(a, b, c), set("1", "2", "3", "4", "5")},
		{"single input", Diff(a), set("1", "2", "3")},
		{"no input", Union(), set()},
		{"empty first set", Inter(set(), a), set()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}

	assert.Equal(t, set("1", "2", "3"), a, "inputs are never mutated")
}
