package models

import "time"

// Epoch is the cursor value before the first successful sync.
var Epoch = time.Unix(0, 0).UTC()

// Now returns the mutation timestamp: UTC, truncated to microseconds so it
// survives both the SQLite text encoding and Postgres timestamptz unchanged.
var Now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
