package dataset

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrNoGroups     = errors.New("dataset defines no groups")
	ErrDuplicateGrp = errors.New("duplicate group name")
	ErrEmptyGroup   = errors.New("group has no name")
)
