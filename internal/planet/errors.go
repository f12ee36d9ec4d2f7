package planet

import "errors"

var (
	// ErrNotTerrestrial marks a tile whose body is not one of the playable
	// kinds. Scans treat it as a skip.
	ErrNotTerrestrial = errors.New("not a terrestrial planet")
	ErrCacheMiss      = errors.New("planet cache miss")
)
