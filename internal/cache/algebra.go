package cache

// memberSet is the contents of one set container.
type memberSet map[string]struct{}

func (s memberSet) clone() memberSet {
	out := make(memberSet, len(s))
	for m := range s {
		out[m] = struct{}{}
	}
	return out
}

func (s memberSet) slice() []string {
	out := make([]string, 0, len(s))
	for m := range s {
		out = append(out, m)
	}
	return out
}

type setOp func(acc, next memberSet) memberSet

func difference(acc, next memberSet) memberSet {
	for m := range next {
		delete(acc, m)
	}
	return acc
}

func intersection(acc, next memberSet) memberSet {
	for m := range acc {
		if _, ok := next[m]; !ok {
			delete(acc, m)
		}
	}
	return acc
}

func union(acc, next memberSet) memberSet {
	for m := range next {
		acc[m] = struct{}{}
	}
	return acc
}

// fold seeds with a copy of the first set and applies op with each later set in order.
// The inputs are never mutated. An empty input yields an empty set.
func fold(sets []memberSet, op setOp) memberSet {
	if len(sets) == 0 {
		return memberSet{}
	}
	acc := sets[0].clone()
	for _, next := range sets[1:] {
		acc = op(acc, next)
	}
	return acc
}

// Diff returns the members of the first set absent from every later set.
func Diff(sets ...map[string]struct{}) map[string]struct{} {
	return fold(asMemberSets(sets), difference)
}

// Inter returns the members present in every set.
func Inter(sets ...map[string]struct{}) map[string]struct{} {
	return fold(asMemberSets(sets), intersection)
}

// Union returns the members present in any set.
func Union(sets ...map[string]struct{}) map[string]struct{} {
	return fold(asMemberSets(sets), union)
}

func asMemberSets(sets []map[string]struct{}) []memberSet {
	out := make([]memberSet, len(sets))
	for i, s := range sets {
		out[i] = s
	}
	return out
}
