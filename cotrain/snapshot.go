package cotrain

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/neurlang/cotrain/datasets"
	"github.com/neurlang/cotrain/features"
)

// SnapshotVersion is the version of the dump format written by WriteJSON
const SnapshotVersion = 1

// CompressedSuffix selects snappy framed snapshots
const CompressedSuffix = ".sz"

type snapshot struct {
	Version   int               `json:"version"`
	RunID     string            `json:"run_id"`
	Unlabeled int               `json:"unlabeled"`
	Limit     int               `json:"limit"`
	Subsets   []features.Subset `json:"subsets"`
	Folds     []Fold            `json:"folds"`
}

// WriteJSON dumps the state of every fold. Paths ending in .sz are snappy compressed.
func (h *Handler) WriteJSON(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating snapshot")
	}
	var w io.Writer = file
	var sw *snappy.Writer
	if strings.HasSuffix(path, CompressedSuffix) {
		sw = snappy.NewBufferedWriter(file)
		w = sw
	}
	err = h.Encode(w)
	if sw != nil {
		if cerr := sw.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrapf(err, "writing snapshot %s", path)
	}
	h.logger.Info("snapshot written", zap.String("path", path), zap.String("run_id", h.runID))
	return nil
}

// Encode writes the snapshot JSON to w
func (h *Handler) Encode(w io.Writer) error {
	s := snapshot{
		Version:   SnapshotVersion,
		RunID:     h.runID,
		Unlabeled: h.unlabeled,
		Limit:     h.limit,
		Subsets:   h.Subsets(),
	}
	for i := 0; i < h.NumFolds(); i++ {
		s.Folds = append(s.Folds, h.Fold(i))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	return enc.Encode(&s)
}

// LoadJSON replaces the state of the handler with a snapshot written by WriteJSON
func (h *Handler) LoadJSON(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening snapshot")
	}
	defer file.Close()
	var r io.Reader = file
	if strings.HasSuffix(path, CompressedSuffix) {
		r = snappy.NewReader(file)
	}
	if err := h.Decode(r); err != nil {
		return errors.Wrapf(err, "reading snapshot %s", path)
	}
	h.logger.Info("snapshot loaded",
		zap.String("path", path),
		zap.String("run_id", h.runID),
		zap.Int("folds", h.NumFolds()))
	return nil
}

// Decode reads the snapshot JSON from r
func (h *Handler) Decode(r io.Reader) error {
	var s snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return err
	}
	if s.Version != SnapshotVersion {
		return errors.Errorf("unsupported snapshot version %d", s.Version)
	}
	if len(s.Folds) == 0 {
		return errors.New("snapshot has no folds")
	}
	if s.Unlabeled <= 0 {
		return errors.Errorf("invalid unlabeled batch size %d", s.Unlabeled)
	}
	if err := features.ValidateSubsets(s.Subsets); err != nil {
		return err
	}
	for i, f := range s.Folds {
		if err := f.validate(); err != nil {
			return errors.Wrapf(err, "fold %d", i)
		}
	}
	folds := make([]*foldState, len(s.Folds))
	for i := range s.Folds {
		folds[i] = &foldState{fold: s.Folds[i]}
	}
	h.runID = s.RunID
	h.unlabeled = s.Unlabeled
	h.limit = s.Limit
	h.install(s.Subsets, folds)
	return nil
}

// validate checks that the four sets are disjoint, that Training and
// Testing are labeled and that Untagged and Reserve are not
func (f Fold) validate() error {
	owner := make(map[string]string)
	for _, set := range []struct {
		name    string
		labeled bool
		members []datasets.Example
	}{
		{"training", true, f.Training},
		{"testing", true, f.Testing},
		{"untagged", false, f.Untagged},
		{"reserve", false, f.Reserve},
	} {
		for _, e := range set.members {
			if other, dup := owner[e.ID]; dup {
				return errors.Errorf("example %s is in %s and %s", e.ID, other, set.name)
			}
			owner[e.ID] = set.name
			if labeled := e.Label != datasets.Unlabeled; labeled != set.labeled {
				return errors.Errorf("example %s in %s has label %v", e.ID, set.name, e.Label)
			}
		}
	}
	return nil
}
