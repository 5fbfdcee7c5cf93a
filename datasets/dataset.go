// Package datasets implements the records, examples and sampling used by co-training
package datasets

import "math/rand"

// SplittedDataset holds the negative examples at 0 and the positive at 1
type SplittedDataset [2][]Example

// SplitDataset splits labeled examples into a false set and a true set. Unlabeled examples are dropped.
func SplitDataset(d []Example) (o SplittedDataset) {
	for _, e := range d {
		switch e.Label {
		case Positive:
			o[1] = append(o[1], e)
		case Negative:
			o[0] = append(o[0], e)
		}
	}
	return
}

// BalanceDataset oversamples the smaller class with random picks of its own members until it matches the bigger one.
// A class without any member can't be balanced and is left empty.
func BalanceDataset(d SplittedDataset, rng *rand.Rand) SplittedDataset {
	if len(d[0]) == len(d[1]) || len(d[0]) == 0 || len(d[1]) == 0 {
		return d
	}
	small, big := 0, 1
	if len(d[1]) < len(d[0]) {
		small, big = 1, 0
	}
	var grown = Clone(d[small])
	for len(grown) < len(d[big]) {
		grown = append(grown, d[small][rng.Intn(len(d[small]))])
	}
	d[small] = grown
	return d
}

// Balance returns the examples with the minority class oversampled, negatives first
func Balance(d []Example, rng *rand.Rand) []Example {
	sd := BalanceDataset(SplitDataset(d), rng)
	return append(Clone(sd[0]), sd[1]...)
}
