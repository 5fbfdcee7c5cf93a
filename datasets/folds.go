package datasets

import "math/rand"

import "github.com/pkg/errors"

// Fold is one cross-validation split of tagged examples
type Fold struct {
	Training []Example
	Testing  []Example
}

// StratifiedFolds shuffles each class and deals it round-robin into k test
// parts, so every part keeps the class ratio. Fold i tests on part i and
// trains on all the other parts.
func StratifiedFolds(d []Example, k int, rng *rand.Rand) ([]Fold, error) {
	if k < 2 {
		return nil, errors.Errorf("need at least 2 folds, got %d", k)
	}
	sd := SplitDataset(d)
	for class, members := range sd {
		if len(members) < k {
			return nil, errors.Errorf("%d %s examples can't fill %d folds",
				len(members), LabelOf(class == 1), k)
		}
	}

	parts := make([][]Example, k)
	var next int
	for _, members := range sd {
		members = Clone(members)
		rng.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
		for _, e := range members {
			parts[next%k] = append(parts[next%k], e)
			next++
		}
	}

	folds := make([]Fold, k)
	for i := range folds {
		folds[i].Testing = parts[i]
		for j := range parts {
			if j != i {
				folds[i].Training = append(folds[i].Training, parts[j]...)
			}
		}
	}
	return folds, nil
}
