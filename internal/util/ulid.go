package util

import (
	"github.com/oklog/ulid/v2"
)

// NewULID returns a new lexically sortable ULID string. It is safe for
// concurrent use; ids made within the same millisecond are monotonic.
func NewULID() string {
	return ulid.Make().String()
}
