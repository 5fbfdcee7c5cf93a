package trainer

import "github.com/pkg/errors"

import "github.com/neurlang/cotrain/cotrain"
import "github.com/neurlang/cotrain/learning"

// Resume restores the handler from a snapshot when load names one
func Resume(h *cotrain.Handler, load string) (bool, error) {
	if load == "" {
		return false, nil
	}
	if err := h.LoadJSON(load); err != nil {
		return false, err
	}
	return true, nil
}

// SaveModels writes the model of every view as prefix.<view subset>, each
// with its vectorizer companion
func SaveModels(c *cotrain.Cotrainer, prefix string) ([]string, error) {
	var written []string
	for _, v := range c.Views() {
		if v.Model == nil {
			return written, errors.Errorf("view %s is not trained", v.Subset.Name())
		}
		name := prefix + "." + v.Subset.Name()
		if err := learning.Save(name, v.Model); err != nil {
			return written, errors.Wrapf(err, "saving view %s", v.Subset.Name())
		}
		written = append(written, name)
	}
	return written, nil
}
