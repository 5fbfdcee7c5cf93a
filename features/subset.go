package features

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/neurlang/cotrain/datasets"
)

// Subset is an ordered group of view names fed to one classifier
type Subset []string

// Name joins the view names with '+'
func (s Subset) Name() string {
	return strings.Join(s, "+")
}

// ParseSubset is the inverse of Name
func ParseSubset(name string) Subset {
	var s Subset
	for _, v := range strings.Split(name, "+") {
		if v = strings.TrimSpace(v); v != "" {
			s = append(s, v)
		}
	}
	return s
}

// Names returns the names of all subsets, in order
func Names(subsets []Subset) []string {
	names := make([]string, len(subsets))
	for i, s := range subsets {
		names[i] = s.Name()
	}
	return names
}

// ValidateSubsets checks that there are at least two non-empty subsets and that no view is used twice
func ValidateSubsets(subsets []Subset) error {
	if len(subsets) < 2 {
		return errors.Errorf("co-training needs at least 2 view subsets, got %d", len(subsets))
	}
	owner := make(map[string]int)
	for i, s := range subsets {
		if len(s) == 0 {
			return errors.Errorf("view subset %d is empty", i)
		}
		for _, v := range s {
			if j, dup := owner[v]; dup {
				return errors.Errorf("view %q is shared by subsets %d and %d", v, j, i)
			}
			owner[v] = i
		}
	}
	return nil
}

// Views lists every view named by the subsets, sorted
func Views(subsets []Subset) []string {
	var views []string
	for _, s := range subsets {
		views = append(views, s...)
	}
	sort.Strings(views)
	return views
}

// Restrict merges the views named by the subset into one vector. Keys are
// prefixed with the view name so that equal feature names of different views
// stay apart.
func Restrict(views map[string]datasets.Vector, s Subset) datasets.Vector {
	var size int
	for _, v := range s {
		size += len(views[v])
	}
	out := make(datasets.Vector, size)
	for _, v := range s {
		for k, x := range views[v] {
			out[v+":"+k] = x
		}
	}
	return out
}

// RestrictAll restricts every example to the subset
func RestrictAll(examples []datasets.Example, s Subset) []datasets.Vector {
	out := make([]datasets.Vector, len(examples))
	for i, e := range examples {
		out[i] = Restrict(e.Views, s)
	}
	return out
}
