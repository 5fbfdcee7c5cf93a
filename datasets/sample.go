package datasets

import "math/rand"

// Sample draws n examples without replacement. The pool is not modified;
// rest holds the examples which were not drawn, in their original order.
// When n exceeds the pool everything is drawn.
func Sample(pool []Example, n int, rng *rand.Rand) (drawn, rest []Example) {
	if n <= 0 {
		return nil, Clone(pool)
	}
	if n >= len(pool) {
		n = len(pool)
	}
	order := rng.Perm(len(pool))
	picked := make([]bool, len(pool))
	drawn = make([]Example, 0, n)
	for _, i := range order[:n] {
		picked[i] = true
		drawn = append(drawn, pool[i])
	}
	rest = make([]Example, 0, len(pool)-n)
	for i, e := range pool {
		if !picked[i] {
			rest = append(rest, e)
		}
	}
	return drawn, rest
}

// Shuffled returns a shuffled copy of the examples
func Shuffled(d []Example, rng *rand.Rand) []Example {
	d = Clone(d)
	rng.Shuffle(len(d), func(i, j int) { d[i], d[j] = d[j], d[i] })
	return d
}
