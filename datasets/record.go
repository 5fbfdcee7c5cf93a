package datasets

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/neurlang/cotrain/hash"
)

// Record is one raw input example: a sentence plus whatever metadata the
// feature extractor needs. Tagged records carry the ground truth in Tag.
type Record struct {
	ID       string                 `json:"id,omitempty"`
	Sentence string                 `json:"sentence"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Tag      *bool                  `json:"tag,omitempty"`
}

// Label returns the ground truth label of a tagged record, Unlabeled otherwise
func (r Record) Label() Label {
	if r.Tag == nil {
		return Unlabeled
	}
	return LabelOf(*r.Tag)
}

// fingerprint identifies a record without an explicit id by its content
func (r Record) fingerprint() string {
	meta, err := json.Marshal(r.Metadata)
	if err != nil {
		meta = []byte(fmt.Sprint(r.Metadata))
	}
	return hash.FingerprintHex(r.Sentence + "\x00" + string(meta))
}

// AssignIDs gives every record without an id a content fingerprint, and
// disambiguates repeated identities with a numeric suffix so that each
// record can key a map.
func AssignIDs(records []Record) {
	seen := make(map[string]int, len(records))
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = records[i].fingerprint()
		}
		base := records[i].ID
		if n, dup := seen[base]; dup {
			for {
				n++
				id := fmt.Sprintf("%s-%d", base, n)
				if _, taken := seen[id]; !taken {
					seen[base] = n
					records[i].ID = id
					seen[id] = 0
					break
				}
			}
			continue
		}
		seen[base] = 0
	}
}

// ReadRecords decodes a JSON array of records and assigns identities
func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, errors.Wrap(err, "decoding records")
	}
	AssignIDs(records)
	return records, nil
}

// LoadRecords reads a JSON array of records from a file
func LoadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	records, err := ReadRecords(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return records, nil
}
