package tiers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/okian/tierlist/internal/domain/model"
)

// Sentinel kinds for shape validation.
var (
	ErrNotObject      = errors.New("tiers must be an object")
	ErrBucketNotList  = errors.New("bucket is not a list")
	ErrDuplicateEntry = errors.New("contestant appears more than once")
	ErrEmptyBucket    = errors.New("bucket name is empty")
	ErrMissingID      = model.ErrMissingID
)

// ValidateShape decodes raw tiers from external data, requiring named buckets,
// every bucket value to be a list and every contestant id to be present and unique.
func ValidateShape(raw json.RawMessage) (Tiers, error) {
	var buckets map[string]json.RawMessage
	if err := json.Unmarshal(raw, &buckets); err != nil || buckets == nil {
		return nil, ErrNotObject
	}

	out := make(Tiers, len(buckets)+1)
	seen := make(map[string]string)
	for name, value := range buckets {
		if name == "" {
			return nil, ErrEmptyBucket
		}
		var list []model.Contestant
		if err := json.Unmarshal(value, &list); errors.Is(err, ErrMissingID) {
			return nil, fmt.Errorf("%w: in %q", ErrMissingID, name)
		} else if err != nil || list == nil {
			return nil, fmt.Errorf("%w: %q", ErrBucketNotList, name)
		}
		for i := range list {
			if list[i].ID == "" {
				return nil, fmt.Errorf("%w: entry %d of %q", ErrMissingID, i, name)
			}
			if prev, dup := seen[list[i].ID]; dup {
				return nil, fmt.Errorf("%w: %q in %q and %q", ErrDuplicateEntry, list[i].ID, prev, name)
			}
			seen[list[i].ID] = name
		}
		out[name] = list
	}
	if _, ok := out[model.Unranked]; !ok {
		out[model.Unranked] = []Contestant{}
	}
	return out, nil
}
