package timex

import (
	"fmt"
	"time"
)

// TimestampLayout is fixed width so that lexicographic order of the encoded
// strings equals chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// FormatTimestamp encodes t in UTC with microsecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp decodes a stored timestamp. RFC 3339 values written by
// other tools are accepted as well.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
